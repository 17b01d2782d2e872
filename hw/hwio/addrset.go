package hwio

import (
	"math/bits"

	"github.com/go-faster/errors"
)

const (
	numAddrs = 0x10000
	wordSize = 64
	numWords = numAddrs / wordSize
)

// AddrSet is a set of 16-bit addresses. The zero value is an empty set.
type AddrSet struct {
	words [numWords]uint64
}

func (s *AddrSet) Add(addr uint16) {
	s.words[addr/wordSize] |= 1 << (addr % wordSize)
}

func (s *AddrSet) Remove(addr uint16) {
	s.words[addr/wordSize] &^= 1 << (addr % wordSize)
}

func (s *AddrSet) Has(addr uint16) bool {
	return s.words[addr/wordSize]&(1<<(addr%wordSize)) != 0
}

// AddRange adds all addresses in the half-open interval [start, end).
func (s *AddrSet) AddRange(start, end int) error {
	if start < 0 || start >= end || end > numAddrs {
		return errors.Wrapf(ErrInvalidAddress, "range [%#x, %#x)", start, end)
	}

	first, last := start/wordSize, (end-1)/wordSize
	lo, hi := uint(start%wordSize), uint((end-1)%wordSize)
	if first == last {
		s.words[first] |= (^uint64(0) >> (wordSize - 1 - hi + lo)) << lo
		return nil
	}

	s.words[first] |= ^uint64(0) << lo
	for i := first + 1; i < last; i++ {
		s.words[i] = ^uint64(0)
	}
	s.words[last] |= ^uint64(0) >> (wordSize - 1 - hi)
	return nil
}

// Len returns the number of addresses in the set.
func (s *AddrSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Addrs returns the addresses in the set, in ascending order.
func (s *AddrSet) Addrs() []uint16 {
	var addrs []uint16
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			addrs = append(addrs, uint16(i*wordSize+b))
			w &= w - 1
		}
	}
	return addrs
}

// Clear removes all addresses.
func (s *AddrSet) Clear() {
	clear(s.words[:])
}
