package hw

import (
	"strings"

	"github.com/go-faster/errors"
)

// Model selects the 6502 variant to emulate.
type Model uint8

const (
	// NMOS is the original MOS 6502: ADC and SBC honour the decimal flag.
	NMOS Model = iota
	// Ricoh2A03 is the NES CPU, whose decimal mode is disconnected.
	Ricoh2A03
)

func (m Model) String() string {
	switch m {
	case NMOS:
		return "nmos"
	case Ricoh2A03:
		return "2a03"
	}
	return "unknown"
}

func (m Model) hasBCD() bool { return m == NMOS }

// ParseModel parses a model name, as found in configuration files and on the
// command line.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(s) {
	case "", "nmos", "6502", "mos6502":
		return NMOS, nil
	case "2a03", "ricoh", "ricoh2a03", "nes":
		return Ricoh2A03, nil
	}
	return 0, errors.Errorf("unknown cpu model %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(text []byte) error {
	v, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
