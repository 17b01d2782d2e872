package hw

// Mode is an addressing mode.
type Mode uint8

const (
	Implied         Mode = iota // CLC
	Accumulator                 // ASL A
	Immediate                   // LDA #$12
	ZeroPage                    // LDA $12
	ZeroPageX                   // LDA $12,X
	ZeroPageY                   // LDX $12,Y
	Absolute                    // LDA $1234
	AbsoluteX                   // LDA $1234,X
	AbsoluteY                   // LDA $1234,Y
	Indirect                    // JMP ($1234)
	IndexedIndirect             // LDA ($12,X)
	IndirectIndexed             // LDA ($12),Y
	Relative                    // BNE $1234
)

// short names, used in the opcode table.
const (
	imp = Implied
	acc = Accumulator
	imm = Immediate
	zp  = ZeroPage
	zpx = ZeroPageX
	zpy = ZeroPageY
	abs = Absolute
	abx = AbsoluteX
	aby = AbsoluteY
	ind = Indirect
	izx = IndexedIndirect
	izy = IndirectIndexed
	rel = Relative
)

var modeNames = [...]string{
	Implied:         "imp",
	Accumulator:     "acc",
	Immediate:       "imm",
	ZeroPage:        "zp",
	ZeroPageX:       "zpx",
	ZeroPageY:       "zpy",
	Absolute:        "abs",
	AbsoluteX:       "abx",
	AbsoluteY:       "aby",
	Indirect:        "ind",
	IndexedIndirect: "izx",
	IndirectIndexed: "izy",
	Relative:        "rel",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "???"
}

// OperandLen returns the number of operand bytes following the opcode.
func (m Mode) OperandLen() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	}
	return 1
}

// access describes what an instruction does with its operand, which decides
// whether indexed modes pay for a page crossing.
type access uint8

const (
	rd  access = iota // extra cycle only on page crossing
	wr                // extra cycle always
	rmw               // read-modify-write, as wr
)

// addr consumes the operand bytes of an instruction using addressing mode m,
// and returns the effective address. Immediate operands are addressed in place.
func (c *CPU) addr(m Mode, a access) uint16 {
	switch m {
	case Immediate:
		pc := c.PC
		c.PC++
		return pc
	case ZeroPage:
		return uint16(c.fetch8())
	case ZeroPageX:
		base := c.fetch8()
		return uint16(base + c.readX())
	case ZeroPageY:
		base := c.fetch8()
		return uint16(base + c.readY())
	case Absolute:
		return c.fetch16()
	case AbsoluteX:
		return c.indexed(c.fetch16(), c.X, a)
	case AbsoluteY:
		return c.indexed(c.fetch16(), c.Y, a)
	case Indirect:
		// The pointer high byte is read from the same page as its low byte.
		ptr := c.fetch16()
		lo := c.Read8(ptr)
		hi := c.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		return uint16(hi)<<8 | uint16(lo)
	case IndexedIndirect:
		base := c.fetch8()
		return c.zpRead16(base + c.readX())
	case IndirectIndexed:
		base := c.zpRead16(c.fetch8())
		return c.indexed(base, c.Y, a)
	}
	panic("addressing mode has no effective address: " + m.String())
}

// zpRead16 reads a pointer from the zero page, wrapping around at $FF.
func (c *CPU) zpRead16(zp uint8) uint16 {
	lo := c.Read8(uint16(zp))
	hi := c.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) indexed(base uint16, idx uint8, a access) uint16 {
	if a != rd || pageCrossed(base, idx) {
		c.tick()
	}
	return base + uint16(idx)
}

// pageCrossed reports whether base+idx lies in another page than base.
func pageCrossed(base uint16, idx uint8) bool {
	return uint16(uint8(base))+uint16(idx) > 0xFF
}

// operand reads the operand of a read instruction.
func (c *CPU) operand(m Mode) uint8 {
	return c.Read8(c.addr(m, rd))
}

// modify runs a read-modify-write cycle on the operand, either the
// accumulator or memory.
func (c *CPU) modify(m Mode, f func(uint8) uint8) uint8 {
	if m == Accumulator {
		c.A = f(c.readA())
		return c.A
	}
	addr := c.addr(m, rmw)
	val := c.Read8(addr)
	c.tick() // unmodified value written back
	val = f(val)
	c.Write8(addr, val)
	return val
}

// store writes val at the operand address.
func (c *CPU) store(m Mode, val uint8) {
	c.Write8(c.addr(m, wr), val)
}
