package hw

import (
	"fmt"
	"strings"
)

// DisasmOp is a disassembled instruction.
type DisasmOp struct {
	Opcode string // mnemonic, prefixed with '*' for undocumented opcodes
	Oper   string // formatted operand, if any
	Buf    []byte // instruction bytes
	PC     uint16
}

// Len returns the instruction length in bytes.
func (d DisasmOp) Len() int {
	return len(d.Buf)
}

func (d DisasmOp) String() string {
	return strings.TrimRight(string(d.Bytes()), " ")
}

// Bytes returns the instruction formatted as a fixed-width column, address
// first, then the instruction bytes and the assembly.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen, totalLen+16)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	// undocumented opcodes have their marker in the last padding column.
	col := 16
	if strings.HasPrefix(d.Opcode, "*") {
		col = 15
	}
	for ; off < col; off++ {
		buf[off] = ' '
	}

	buf = append(buf[:off], d.Opcode...)
	if d.Oper != "" {
		buf = append(buf, ' ')
		buf = append(buf, d.Oper...)
	}
	for len(buf) < totalLen {
		buf = append(buf, ' ')
	}
	if buf[len(buf)-1] != ' ' {
		buf = append(buf, ' ')
	}
	return buf
}

// Disasm disassembles the instruction at pc. Memory is read with Peek8 and
// thus with no side effects nor cycles.
func Disasm(p Peeker, pc uint16) DisasmOp {
	opcode := p.Peek8(pc)
	op := &ops[opcode]

	d := DisasmOp{
		PC:     pc,
		Opcode: op.name,
		Buf:    make([]byte, 1+op.mode.OperandLen()),
	}
	if op.illegal {
		d.Opcode = "*" + op.name
	}
	for i := range d.Buf {
		d.Buf[i] = p.Peek8(pc + uint16(i))
	}

	var oper8 uint8
	var oper16 uint16
	switch len(d.Buf) {
	case 2:
		oper8 = d.Buf[1]
	case 3:
		oper16 = uint16(d.Buf[2])<<8 | uint16(d.Buf[1])
	}

	switch op.mode {
	case Implied:
	case Accumulator:
		d.Oper = "A"
	case Immediate:
		d.Oper = fmt.Sprintf("#$%02X", oper8)
	case ZeroPage:
		d.Oper = fmt.Sprintf("$%02X", oper8)
	case ZeroPageX:
		d.Oper = fmt.Sprintf("$%02X,X", oper8)
	case ZeroPageY:
		d.Oper = fmt.Sprintf("$%02X,Y", oper8)
	case Absolute:
		d.Oper = fmt.Sprintf("$%04X", oper16)
	case AbsoluteX:
		d.Oper = fmt.Sprintf("$%04X,X", oper16)
	case AbsoluteY:
		d.Oper = fmt.Sprintf("$%04X,Y", oper16)
	case Indirect:
		d.Oper = fmt.Sprintf("($%04X)", oper16)
	case IndexedIndirect:
		d.Oper = fmt.Sprintf("($%02X,X)", oper8)
	case IndirectIndexed:
		d.Oper = fmt.Sprintf("($%02X),Y", oper8)
	case Relative:
		target := pc + 2 + uint16(int16(int8(oper8)))
		d.Oper = fmt.Sprintf("$%04X", target)
	}
	return d
}
