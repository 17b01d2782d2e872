package hwio

import (
	"github.com/go-faster/errors"

	"mos6502/emu/log"
)

// Memory sizes. MaxSize is 0x10000, not 0xFFFF, so that $FFFF (the high
// byte of the IRQ vector) can be backed by memory.
const (
	MinSize     = 0x0200  // zero page and stack page
	MaxSize     = 0x10000 // the whole 16-bit address space
	DefaultSize = MaxSize
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidValue   = errors.New("invalid value")
	ErrInvalidSize    = errors.New("invalid memory size")
)

// Mem is a flat byte-addressable memory, starting at address 0. Accesses
// beyond its size fail with ErrInvalidAddress.
type Mem struct {
	Name string // name of the memory area (for debugging)

	// OnWrite is called after each successful Write8.
	OnWrite func(addr uint16, val uint8)

	data []byte
	ro   AddrSet // read-only addresses, writes are dropped
}

// New returns a zeroed memory of the given size.
func New(size int) (*Mem, error) {
	if size < MinSize || size > MaxSize {
		return nil, errors.Wrapf(ErrInvalidSize, "%#x not in [%#x, %#x]", size, MinSize, MaxSize)
	}
	return &Mem{
		Name: "ram",
		data: make([]byte, size),
	}, nil
}

// Size returns the number of addressable bytes.
func (m *Mem) Size() int { return len(m.data) }

func (m *Mem) Read8(addr uint16) (uint8, error) {
	if int(addr) >= len(m.data) {
		return 0, errors.Wrapf(ErrInvalidAddress, "read $%04X", addr)
	}
	return m.data[addr], nil
}

// Peek8 reads a byte without side effects, out of range addresses read as 0.
func (m *Mem) Peek8(addr uint16) uint8 {
	if int(addr) >= len(m.data) {
		return 0
	}
	return m.data[addr]
}

func (m *Mem) Write8(addr uint16, val uint8) error {
	if int(addr) >= len(m.data) {
		return errors.Wrapf(ErrInvalidAddress, "write $%04X", addr)
	}
	if m.ro.Has(addr) {
		log.ModMem.DebugZ("Write8 to readonly memory").
			String("mem", m.Name).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return nil
	}
	m.data[addr] = val
	if m.OnWrite != nil {
		m.OnWrite(addr, val)
	}
	return nil
}

// Get is the host side read: addr is checked against the memory size.
func (m *Mem) Get(addr int) (uint8, error) {
	if addr < 0 || addr >= len(m.data) {
		return 0, errors.Wrapf(ErrInvalidAddress, "get %#x", addr)
	}
	return m.data[addr], nil
}

// Set is the host side write: addr is checked against the memory size and
// val must fit in a byte. It returns the stored value. Read-only protection
// doesn't apply to the host.
func (m *Mem) Set(addr, val int) (uint8, error) {
	if addr < 0 || addr >= len(m.data) {
		return 0, errors.Wrapf(ErrInvalidAddress, "set %#x", addr)
	}
	if val < 0 || val > 0xFF {
		return 0, errors.Wrapf(ErrInvalidValue, "set %#x at %#x", val, addr)
	}
	m.data[addr] = uint8(val)
	return m.data[addr], nil
}

// Load copies data at addr.
func (m *Mem) Load(addr int, data []byte) error {
	if addr < 0 || addr+len(data) > len(m.data) {
		return errors.Wrapf(ErrInvalidAddress, "load %d bytes at %#x (size %#x)", len(data), addr, len(m.data))
	}
	copy(m.data[addr:], data)
	return nil
}

// LoadDump copies all lines of a parsed dump.
func (m *Mem) LoadDump(lines []DumpLine) error {
	for _, l := range lines {
		if err := m.Load(int(l.Addr), l.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// SetReadOnly write-protects the half-open range [start, end).
func (m *Mem) SetReadOnly(start, end int) error {
	if end > len(m.data) {
		return errors.Wrapf(ErrInvalidAddress, "readonly range [%#x, %#x)", start, end)
	}
	return m.ro.AddRange(start, end)
}

// Slice returns the underlying memory.
func (m *Mem) Slice() []byte { return m.data }
