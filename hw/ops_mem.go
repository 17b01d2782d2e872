package hw

/* loads */

func lda(c *CPU, m Mode) {
	c.A = c.operand(m)
	c.P.checkNZ(c.A)
}

func ldx(c *CPU, m Mode) {
	c.X = c.operand(m)
	c.P.checkNZ(c.X)
}

func ldy(c *CPU, m Mode) {
	c.Y = c.operand(m)
	c.P.checkNZ(c.Y)
}

/* stores */

func sta(c *CPU, m Mode) { c.store(m, c.A) }
func stx(c *CPU, m Mode) { c.store(m, c.X) }
func sty(c *CPU, m Mode) { c.store(m, c.Y) }

/* register transfers */

func tax(c *CPU, _ Mode) {
	c.X = c.readA()
	c.P.checkNZ(c.X)
}

func tay(c *CPU, _ Mode) {
	c.Y = c.readA()
	c.P.checkNZ(c.Y)
}

func txa(c *CPU, _ Mode) {
	c.A = c.readX()
	c.P.checkNZ(c.A)
}

func tya(c *CPU, _ Mode) {
	c.A = c.readY()
	c.P.checkNZ(c.A)
}

func tsx(c *CPU, _ Mode) {
	c.tick()
	c.X = c.SP
	c.P.checkNZ(c.X)
}

// TXS is the only transfer which doesn't affect flags.
func txs(c *CPU, _ Mode) {
	c.SP = c.readX()
}

/* stack */

func pha(c *CPU, _ Mode) {
	c.push8(c.readA())
}

func php(c *CPU, _ Mode) {
	c.tick()
	c.push8(c.P.packed(true))
}

func pla(c *CPU, _ Mode) {
	c.tick()
	c.tick()
	c.A = c.pull8()
	c.P.checkNZ(c.A)
}

func plp(c *CPU, _ Mode) {
	c.tick()
	c.tick()
	c.P = unpacked(c.pull8())
}
