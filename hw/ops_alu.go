package hw

/* arithmetic */

func adc(c *CPU, m Mode) { c.add(c.operand(m)) }
func sbc(c *CPU, m Mode) { c.sub(c.operand(m)) }

func (c *CPU) add(val uint8) {
	if c.P.D() && c.Model.hasBCD() {
		c.addDecimal(val)
		return
	}
	c.addBinary(val)
}

func (c *CPU) sub(val uint8) {
	if c.P.D() && c.Model.hasBCD() {
		c.subDecimal(val)
		return
	}
	c.addBinary(^val)
}

func (c *CPU) addBinary(val uint8) {
	sum := uint16(c.A) + uint16(val) + uint16(b2i(c.P.C()))
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

// addDecimal is the NMOS decimal mode addition. Z reflects the binary sum,
// N and V the sum after the low nibble adjustment.
func (c *CPU) addDecimal(val uint8) {
	a, carry := c.A, b2i(c.P.C())

	lo := a&0x0F + val&0x0F + carry
	if lo >= 0x0A {
		lo = ((lo + 0x06) & 0x0F) + 0x10
	}
	sum := uint16(a&0xF0) + uint16(val&0xF0) + uint16(lo)
	ssum := int(int8(a&0xF0)) + int(int8(val&0xF0)) + int(lo)

	c.P.checkZ(a + val + carry)
	c.P.checkN(uint8(sum))
	c.P.writeBit(pbitV, ssum < -128 || ssum > 127)

	if sum >= 0xA0 {
		sum += 0x60
	}
	c.P.writeBit(pbitC, sum >= 0x100)
	c.A = uint8(sum)
}

// subDecimal is the NMOS decimal mode subtraction. Flags are those of the
// binary subtraction, only the accumulator is adjusted.
func (c *CPU) subDecimal(val uint8) {
	a, borrow := c.A, 1-b2i(c.P.C())

	bin := uint16(a) - uint16(val) - uint16(borrow)
	c.P.writeBit(pbitC, bin < 0x100)
	c.P.writeBit(pbitV, (a^val)&(a^uint8(bin))&0x80 != 0)
	c.P.checkNZ(uint8(bin))

	lo := int(a&0x0F) - int(val&0x0F) - int(borrow)
	if lo < 0 {
		lo = ((lo - 0x06) & 0x0F) - 0x10
	}
	res := int(a&0xF0) - int(val&0xF0) + lo
	if res < 0 {
		res -= 0x60
	}
	c.A = uint8(res)
}

/* logic */

func and(c *CPU, m Mode) {
	c.A &= c.operand(m)
	c.P.checkNZ(c.A)
}

func ora(c *CPU, m Mode) {
	c.A |= c.operand(m)
	c.P.checkNZ(c.A)
}

func eor(c *CPU, m Mode) {
	c.A ^= c.operand(m)
	c.P.checkNZ(c.A)
}

func bit(c *CPU, m Mode) {
	val := c.operand(m)
	c.P.checkZ(c.A & val)
	c.P.writeBit(pbitN, val&(1<<7) != 0)
	c.P.writeBit(pbitV, val&(1<<6) != 0)
}

/* compare */

func cmp(c *CPU, m Mode) { c.compare(c.A, c.operand(m)) }
func cpx(c *CPU, m Mode) { c.compare(c.X, c.operand(m)) }
func cpy(c *CPU, m Mode) { c.compare(c.Y, c.operand(m)) }

func (c *CPU) compare(reg, val uint8) {
	c.P.checkNZ(reg - val)
	c.P.writeBit(pbitC, reg >= val)
}

/* shifts and rotations */

func asl(c *CPU, m Mode) { c.modify(m, c.shl) }
func lsr(c *CPU, m Mode) { c.modify(m, c.shr) }
func rol(c *CPU, m Mode) { c.modify(m, c.rotl) }
func ror(c *CPU, m Mode) { c.modify(m, c.rotr) }

func (c *CPU) shl(val uint8) uint8 {
	c.P.writeBit(pbitC, val&0x80 != 0)
	val <<= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) shr(val uint8) uint8 {
	c.P.writeBit(pbitC, val&0x01 != 0)
	val >>= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rotl(val uint8) uint8 {
	carry := b2i(c.P.C())
	c.P.writeBit(pbitC, val&0x80 != 0)
	val = val<<1 | carry
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rotr(val uint8) uint8 {
	carry := b2i(c.P.C())
	c.P.writeBit(pbitC, val&0x01 != 0)
	val = val>>1 | carry<<7
	c.P.checkNZ(val)
	return val
}

/* increments and decrements */

func inc(c *CPU, m Mode) { c.modify(m, c.incr) }
func dec(c *CPU, m Mode) { c.modify(m, c.decr) }

func (c *CPU) incr(val uint8) uint8 {
	val++
	c.P.checkNZ(val)
	return val
}

func (c *CPU) decr(val uint8) uint8 {
	val--
	c.P.checkNZ(val)
	return val
}

func inx(c *CPU, _ Mode) { c.X = c.incr(c.readX()) }
func iny(c *CPU, _ Mode) { c.Y = c.incr(c.readY()) }
func dex(c *CPU, _ Mode) { c.X = c.decr(c.readX()) }
func dey(c *CPU, _ Mode) { c.Y = c.decr(c.readY()) }
