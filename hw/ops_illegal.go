package hw

// Undocumented opcodes with stable behavior. Each combines a read-modify-write
// with an ALU operation on the accumulator, or two loads/stores.

// SLO: ASL then ORA.
func slo(c *CPU, m Mode) {
	val := c.modify(m, c.shl)
	c.A |= val
	c.P.checkNZ(c.A)
}

// RLA: ROL then AND.
func rla(c *CPU, m Mode) {
	val := c.modify(m, c.rotl)
	c.A &= val
	c.P.checkNZ(c.A)
}

// SRE: LSR then EOR.
func sre(c *CPU, m Mode) {
	val := c.modify(m, c.shr)
	c.A ^= val
	c.P.checkNZ(c.A)
}

// RRA: ROR then ADC.
func rra(c *CPU, m Mode) {
	c.add(c.modify(m, c.rotr))
}

// SAX: stores A&X.
func sax(c *CPU, m Mode) {
	c.store(m, c.A&c.X)
}

// LAX: LDA then TAX.
func lax(c *CPU, m Mode) {
	c.A = c.operand(m)
	c.X = c.A
	c.P.checkNZ(c.A)
}

// DCP: DEC then CMP.
func dcp(c *CPU, m Mode) {
	val := c.modify(m, func(v uint8) uint8 { return v - 1 })
	c.compare(c.A, val)
}

// ISB: INC then SBC.
func isb(c *CPU, m Mode) {
	c.sub(c.modify(m, func(v uint8) uint8 { return v + 1 }))
}
