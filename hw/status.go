package hw

// P is the processor status register.
type P uint8

// Status flags masks.
const (
	Carry P = 1 << iota
	Zero
	IntDisable
	Decimal
	Break
	Unused // always reads 1
	Overflow
	Negative
)

const (
	pbitN = 7 - iota // Negative flag
	pbitV            // oVerflow flag
	pbitU            // Unused
	pbitB            // Break flag
	pbitD            // Decimal mode flag
	pbitI            // Interrupt disable flag
	pbitZ            // Zero flag
	pbitC            // Carry flag
)

func (p P) N() bool { return p&(1<<pbitN) != 0 }
func (p P) V() bool { return p&(1<<pbitV) != 0 }
func (p P) B() bool { return p&(1<<pbitB) != 0 }
func (p P) D() bool { return p&(1<<pbitD) != 0 }
func (p P) I() bool { return p&(1<<pbitI) != 0 }
func (p P) Z() bool { return p&(1<<pbitZ) != 0 }
func (p P) C() bool { return p&(1<<pbitC) != 0 }

func (p *P) checkNZ(v uint8) {
	p.checkN(v)
	p.checkZ(v)
}

// sets N flag if bit 7 of v is set, clears it otherwise.
func (p *P) checkN(v uint8) {
	p.writeBit(pbitN, v&(1<<7) != 0)
}

// sets Z flag if v == 0, clears it otherwise.
func (p *P) checkZ(v uint8) {
	p.writeBit(pbitZ, v == 0)
}

func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	p.writeBit(pbitC, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	p.writeBit(pbitV, v != 0)
}

func (p *P) writeBit(i int, v bool) {
	if v {
		*p |= P(1 << i)
	} else {
		*p &^= P(1 << i)
	}
}

func (p P) ibit(i int) uint8 {
	return (uint8(p) >> i) & 1
}

// packed returns the byte pushed on the stack: U is always set, B depends on
// whether the push comes from an instruction (PHP, BRK) or an interrupt.
func (p P) packed(brk bool) uint8 {
	v := p | Unused
	if brk {
		v |= Break
	} else {
		v &^= Break
	}
	return uint8(v)
}

// unpacked returns the status loaded from a pulled byte (PLP, RTI). Every flag
// takes the pulled value.
func unpacked(v uint8) P {
	return P(v) | Unused
}

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		s[i] = bits[i+int(8*p.ibit(7-i))]
	}
	return string(s)
}

func b2i(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
