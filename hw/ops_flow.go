package hw

/* branches */

func bcc(c *CPU, _ Mode) { c.branch(!c.P.C()) }
func bcs(c *CPU, _ Mode) { c.branch(c.P.C()) }
func bne(c *CPU, _ Mode) { c.branch(!c.P.Z()) }
func beq(c *CPU, _ Mode) { c.branch(c.P.Z()) }
func bpl(c *CPU, _ Mode) { c.branch(!c.P.N()) }
func bmi(c *CPU, _ Mode) { c.branch(c.P.N()) }
func bvc(c *CPU, _ Mode) { c.branch(!c.P.V()) }
func bvs(c *CPU, _ Mode) { c.branch(c.P.V()) }

// branch reads the relative offset and jumps if cond is true. A taken branch
// costs an extra cycle, and another one if the target is on another page.
func (c *CPU) branch(cond bool) {
	off := int8(c.fetch8())
	if !cond {
		return
	}
	c.tick()
	target := c.PC + uint16(int16(off))
	if target&0xFF00 != c.PC&0xFF00 {
		c.tick()
	}
	c.PC = target
}

/* jumps and subroutines */

func jmp(c *CPU, m Mode) {
	c.PC = c.addr(m, rd)
}

func jsr(c *CPU, _ Mode) {
	lo := c.fetch8()
	c.tick()
	// PC points to the last byte of the instruction.
	c.push16(c.PC)
	hi := c.fetch8()
	c.PC = uint16(hi)<<8 | uint16(lo)
}

func rts(c *CPU, _ Mode) {
	c.tick()
	c.tick()
	c.PC = c.pull16()
	c.tick()
	c.PC++
}

func rti(c *CPU, _ Mode) {
	c.tick()
	c.tick()
	c.P = unpacked(c.pull8())
	c.PC = c.pull16()
}

func brk(c *CPU, _ Mode) {
	c.fetch8() // padding byte
	c.push16(c.PC)
	c.push8(c.P.packed(true))
	c.P |= IntDisable | Break
	c.PC = c.Read16(IRQVector)
}

/* status flags */

func clc(c *CPU, _ Mode) { c.tick(); c.P &^= Carry }
func sec(c *CPU, _ Mode) { c.tick(); c.P |= Carry }
func cli(c *CPU, _ Mode) { c.tick(); c.P &^= IntDisable }
func sei(c *CPU, _ Mode) { c.tick(); c.P |= IntDisable }
func cld(c *CPU, _ Mode) { c.tick(); c.P &^= Decimal }
func sed(c *CPU, _ Mode) { c.tick(); c.P |= Decimal }
func clv(c *CPU, _ Mode) { c.tick(); c.P &^= Overflow }

// nop reads its operand, if any, and discards it.
func nop(c *CPU, m Mode) {
	if m == Implied {
		c.tick()
		return
	}
	c.operand(m)
}
