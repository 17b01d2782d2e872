package hw

// opdef describes an opcode: its mnemonic, addressing mode and handler.
type opdef struct {
	name    string
	mode    Mode
	fn      func(*CPU, Mode)
	illegal bool // undocumented opcode
}

// ops maps each opcode to its definition. Undocumented opcodes without a
// combined operation are NOPs consuming their operand.
var ops = [256]opdef{
	0x00: {"BRK", imp, brk, false},
	0x01: {"ORA", izx, ora, false},
	0x02: {"NOP", imp, nop, true},
	0x03: {"SLO", izx, slo, true},
	0x04: {"NOP", zp, nop, true},
	0x05: {"ORA", zp, ora, false},
	0x06: {"ASL", zp, asl, false},
	0x07: {"SLO", zp, slo, true},
	0x08: {"PHP", imp, php, false},
	0x09: {"ORA", imm, ora, false},
	0x0A: {"ASL", acc, asl, false},
	0x0B: {"NOP", imm, nop, true},
	0x0C: {"NOP", abs, nop, true},
	0x0D: {"ORA", abs, ora, false},
	0x0E: {"ASL", abs, asl, false},
	0x0F: {"SLO", abs, slo, true},
	0x10: {"BPL", rel, bpl, false},
	0x11: {"ORA", izy, ora, false},
	0x12: {"NOP", imp, nop, true},
	0x13: {"SLO", izy, slo, true},
	0x14: {"NOP", zpx, nop, true},
	0x15: {"ORA", zpx, ora, false},
	0x16: {"ASL", zpx, asl, false},
	0x17: {"SLO", zpx, slo, true},
	0x18: {"CLC", imp, clc, false},
	0x19: {"ORA", aby, ora, false},
	0x1A: {"NOP", imp, nop, true},
	0x1B: {"SLO", aby, slo, true},
	0x1C: {"NOP", abx, nop, true},
	0x1D: {"ORA", abx, ora, false},
	0x1E: {"ASL", abx, asl, false},
	0x1F: {"SLO", abx, slo, true},
	0x20: {"JSR", abs, jsr, false},
	0x21: {"AND", izx, and, false},
	0x22: {"NOP", imp, nop, true},
	0x23: {"RLA", izx, rla, true},
	0x24: {"BIT", zp, bit, false},
	0x25: {"AND", zp, and, false},
	0x26: {"ROL", zp, rol, false},
	0x27: {"RLA", zp, rla, true},
	0x28: {"PLP", imp, plp, false},
	0x29: {"AND", imm, and, false},
	0x2A: {"ROL", acc, rol, false},
	0x2B: {"NOP", imm, nop, true},
	0x2C: {"BIT", abs, bit, false},
	0x2D: {"AND", abs, and, false},
	0x2E: {"ROL", abs, rol, false},
	0x2F: {"RLA", abs, rla, true},
	0x30: {"BMI", rel, bmi, false},
	0x31: {"AND", izy, and, false},
	0x32: {"NOP", imp, nop, true},
	0x33: {"RLA", izy, rla, true},
	0x34: {"NOP", zpx, nop, true},
	0x35: {"AND", zpx, and, false},
	0x36: {"ROL", zpx, rol, false},
	0x37: {"RLA", zpx, rla, true},
	0x38: {"SEC", imp, sec, false},
	0x39: {"AND", aby, and, false},
	0x3A: {"NOP", imp, nop, true},
	0x3B: {"RLA", aby, rla, true},
	0x3C: {"NOP", abx, nop, true},
	0x3D: {"AND", abx, and, false},
	0x3E: {"ROL", abx, rol, false},
	0x3F: {"RLA", abx, rla, true},
	0x40: {"RTI", imp, rti, false},
	0x41: {"EOR", izx, eor, false},
	0x42: {"NOP", imp, nop, true},
	0x43: {"SRE", izx, sre, true},
	0x44: {"NOP", zp, nop, true},
	0x45: {"EOR", zp, eor, false},
	0x46: {"LSR", zp, lsr, false},
	0x47: {"SRE", zp, sre, true},
	0x48: {"PHA", imp, pha, false},
	0x49: {"EOR", imm, eor, false},
	0x4A: {"LSR", acc, lsr, false},
	0x4B: {"NOP", imm, nop, true},
	0x4C: {"JMP", abs, jmp, false},
	0x4D: {"EOR", abs, eor, false},
	0x4E: {"LSR", abs, lsr, false},
	0x4F: {"SRE", abs, sre, true},
	0x50: {"BVC", rel, bvc, false},
	0x51: {"EOR", izy, eor, false},
	0x52: {"NOP", imp, nop, true},
	0x53: {"SRE", izy, sre, true},
	0x54: {"NOP", zpx, nop, true},
	0x55: {"EOR", zpx, eor, false},
	0x56: {"LSR", zpx, lsr, false},
	0x57: {"SRE", zpx, sre, true},
	0x58: {"CLI", imp, cli, false},
	0x59: {"EOR", aby, eor, false},
	0x5A: {"NOP", imp, nop, true},
	0x5B: {"SRE", aby, sre, true},
	0x5C: {"NOP", abx, nop, true},
	0x5D: {"EOR", abx, eor, false},
	0x5E: {"LSR", abx, lsr, false},
	0x5F: {"SRE", abx, sre, true},
	0x60: {"RTS", imp, rts, false},
	0x61: {"ADC", izx, adc, false},
	0x62: {"NOP", imp, nop, true},
	0x63: {"RRA", izx, rra, true},
	0x64: {"NOP", zp, nop, true},
	0x65: {"ADC", zp, adc, false},
	0x66: {"ROR", zp, ror, false},
	0x67: {"RRA", zp, rra, true},
	0x68: {"PLA", imp, pla, false},
	0x69: {"ADC", imm, adc, false},
	0x6A: {"ROR", acc, ror, false},
	0x6B: {"NOP", imm, nop, true},
	0x6C: {"JMP", ind, jmp, false},
	0x6D: {"ADC", abs, adc, false},
	0x6E: {"ROR", abs, ror, false},
	0x6F: {"RRA", abs, rra, true},
	0x70: {"BVS", rel, bvs, false},
	0x71: {"ADC", izy, adc, false},
	0x72: {"NOP", imp, nop, true},
	0x73: {"RRA", izy, rra, true},
	0x74: {"NOP", zpx, nop, true},
	0x75: {"ADC", zpx, adc, false},
	0x76: {"ROR", zpx, ror, false},
	0x77: {"RRA", zpx, rra, true},
	0x78: {"SEI", imp, sei, false},
	0x79: {"ADC", aby, adc, false},
	0x7A: {"NOP", imp, nop, true},
	0x7B: {"RRA", aby, rra, true},
	0x7C: {"NOP", abx, nop, true},
	0x7D: {"ADC", abx, adc, false},
	0x7E: {"ROR", abx, ror, false},
	0x7F: {"RRA", abx, rra, true},
	0x80: {"NOP", imm, nop, true},
	0x81: {"STA", izx, sta, false},
	0x82: {"NOP", imm, nop, true},
	0x83: {"SAX", izx, sax, true},
	0x84: {"STY", zp, sty, false},
	0x85: {"STA", zp, sta, false},
	0x86: {"STX", zp, stx, false},
	0x87: {"SAX", zp, sax, true},
	0x88: {"DEY", imp, dey, false},
	0x89: {"NOP", imm, nop, true},
	0x8A: {"TXA", imp, txa, false},
	0x8B: {"NOP", imm, nop, true},
	0x8C: {"STY", abs, sty, false},
	0x8D: {"STA", abs, sta, false},
	0x8E: {"STX", abs, stx, false},
	0x8F: {"SAX", abs, sax, true},
	0x90: {"BCC", rel, bcc, false},
	0x91: {"STA", izy, sta, false},
	0x92: {"NOP", imp, nop, true},
	0x93: {"NOP", izy, nop, true},
	0x94: {"STY", zpx, sty, false},
	0x95: {"STA", zpx, sta, false},
	0x96: {"STX", zpy, stx, false},
	0x97: {"SAX", zpy, sax, true},
	0x98: {"TYA", imp, tya, false},
	0x99: {"STA", aby, sta, false},
	0x9A: {"TXS", imp, txs, false},
	0x9B: {"NOP", aby, nop, true},
	0x9C: {"NOP", abx, nop, true},
	0x9D: {"STA", abx, sta, false},
	0x9E: {"NOP", aby, nop, true},
	0x9F: {"NOP", aby, nop, true},
	0xA0: {"LDY", imm, ldy, false},
	0xA1: {"LDA", izx, lda, false},
	0xA2: {"LDX", imm, ldx, false},
	0xA3: {"LAX", izx, lax, true},
	0xA4: {"LDY", zp, ldy, false},
	0xA5: {"LDA", zp, lda, false},
	0xA6: {"LDX", zp, ldx, false},
	0xA7: {"LAX", zp, lax, true},
	0xA8: {"TAY", imp, tay, false},
	0xA9: {"LDA", imm, lda, false},
	0xAA: {"TAX", imp, tax, false},
	0xAB: {"NOP", imm, nop, true},
	0xAC: {"LDY", abs, ldy, false},
	0xAD: {"LDA", abs, lda, false},
	0xAE: {"LDX", abs, ldx, false},
	0xAF: {"LAX", abs, lax, true},
	0xB0: {"BCS", rel, bcs, false},
	0xB1: {"LDA", izy, lda, false},
	0xB2: {"NOP", imp, nop, true},
	0xB3: {"LAX", izy, lax, true},
	0xB4: {"LDY", zpx, ldy, false},
	0xB5: {"LDA", zpx, lda, false},
	0xB6: {"LDX", zpy, ldx, false},
	0xB7: {"LAX", zpy, lax, true},
	0xB8: {"CLV", imp, clv, false},
	0xB9: {"LDA", aby, lda, false},
	0xBA: {"TSX", imp, tsx, false},
	0xBB: {"LAX", aby, lax, true},
	0xBC: {"LDY", abx, ldy, false},
	0xBD: {"LDA", abx, lda, false},
	0xBE: {"LDX", aby, ldx, false},
	0xBF: {"LAX", aby, lax, true},
	0xC0: {"CPY", imm, cpy, false},
	0xC1: {"CMP", izx, cmp, false},
	0xC2: {"NOP", imm, nop, true},
	0xC3: {"DCP", izx, dcp, true},
	0xC4: {"CPY", zp, cpy, false},
	0xC5: {"CMP", zp, cmp, false},
	0xC6: {"DEC", zp, dec, false},
	0xC7: {"DCP", zp, dcp, true},
	0xC8: {"INY", imp, iny, false},
	0xC9: {"CMP", imm, cmp, false},
	0xCA: {"DEX", imp, dex, false},
	0xCB: {"NOP", imm, nop, true},
	0xCC: {"CPY", abs, cpy, false},
	0xCD: {"CMP", abs, cmp, false},
	0xCE: {"DEC", abs, dec, false},
	0xCF: {"DCP", abs, dcp, true},
	0xD0: {"BNE", rel, bne, false},
	0xD1: {"CMP", izy, cmp, false},
	0xD2: {"NOP", imp, nop, true},
	0xD3: {"DCP", izy, dcp, true},
	0xD4: {"NOP", zpx, nop, true},
	0xD5: {"CMP", zpx, cmp, false},
	0xD6: {"DEC", zpx, dec, false},
	0xD7: {"DCP", zpx, dcp, true},
	0xD8: {"CLD", imp, cld, false},
	0xD9: {"CMP", aby, cmp, false},
	0xDA: {"NOP", imp, nop, true},
	0xDB: {"DCP", aby, dcp, true},
	0xDC: {"NOP", abx, nop, true},
	0xDD: {"CMP", abx, cmp, false},
	0xDE: {"DEC", abx, dec, false},
	0xDF: {"DCP", abx, dcp, true},
	0xE0: {"CPX", imm, cpx, false},
	0xE1: {"SBC", izx, sbc, false},
	0xE2: {"NOP", imm, nop, true},
	0xE3: {"ISB", izx, isb, true},
	0xE4: {"CPX", zp, cpx, false},
	0xE5: {"SBC", zp, sbc, false},
	0xE6: {"INC", zp, inc, false},
	0xE7: {"ISB", zp, isb, true},
	0xE8: {"INX", imp, inx, false},
	0xE9: {"SBC", imm, sbc, false},
	0xEA: {"NOP", imp, nop, false},
	0xEB: {"SBC", imm, sbc, true},
	0xEC: {"CPX", abs, cpx, false},
	0xED: {"SBC", abs, sbc, false},
	0xEE: {"INC", abs, inc, false},
	0xEF: {"ISB", abs, isb, true},
	0xF0: {"BEQ", rel, beq, false},
	0xF1: {"SBC", izy, sbc, false},
	0xF2: {"NOP", imp, nop, true},
	0xF3: {"ISB", izy, isb, true},
	0xF4: {"NOP", zpx, nop, true},
	0xF5: {"SBC", zpx, sbc, false},
	0xF6: {"INC", zpx, inc, false},
	0xF7: {"ISB", zpx, isb, true},
	0xF8: {"SED", imp, sed, false},
	0xF9: {"SBC", aby, sbc, false},
	0xFA: {"NOP", imp, nop, true},
	0xFB: {"ISB", aby, isb, true},
	0xFC: {"NOP", abx, nop, true},
	0xFD: {"SBC", abx, sbc, false},
	0xFE: {"INC", abx, inc, false},
	0xFF: {"ISB", abx, isb, true},
}

// approximated lists the undocumented opcodes whose behaviour on silicon is
// not reproduced: they execute as NOPs (or LAX for $BB).
var approximated = [256]bool{
	// JAM
	0x02: true, 0x12: true, 0x22: true, 0x32: true,
	0x42: true, 0x52: true, 0x62: true, 0x72: true,
	0x92: true, 0xB2: true, 0xD2: true, 0xF2: true,

	0x0B: true, // ANC
	0x2B: true, // ANC
	0x4B: true, // ALR
	0x6B: true, // ARR
	0x8B: true, // XAA
	0xAB: true, // LXA
	0xCB: true, // AXS
	0x93: true, // AHX
	0x9F: true, // AHX
	0x9B: true, // TAS
	0x9C: true, // SHY
	0x9E: true, // SHX
	0xBB: true, // LAS
}

// Mnemonic returns the 3-letter mnemonic of opcode.
func Mnemonic(opcode uint8) string {
	return ops[opcode].name
}

// AddrModeOf returns the addressing mode of opcode.
func AddrModeOf(opcode uint8) Mode {
	return ops[opcode].mode
}

// Illegal reports whether opcode is undocumented.
func Illegal(opcode uint8) bool {
	return ops[opcode].illegal
}

// Approximated reports whether opcode is an undocumented opcode whose real
// behaviour differs from what this CPU does.
func Approximated(opcode uint8) bool {
	return approximated[opcode]
}
