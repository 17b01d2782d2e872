// Package tests runs single-step processor conformance vectors, as published
// by the SingleStepTests project (one JSON file per opcode, each holding
// thousands of initial/final CPU and memory states).
package tests

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"mos6502/hw"
	"mos6502/hw/hwio"
)

var ErrMismatch = errors.New("state mismatch")

type RAMCell struct {
	Addr uint16
	Val  uint8
}

// State is a CPU and memory state.
type State struct {
	PC         uint16
	S, A, X, Y uint8
	P          uint8
	RAM        []RAMCell
}

// Vector is a single instruction test.
type Vector struct {
	Name    string
	Initial State
	Final   State
	Cycles  int // expected number of bus cycles
}

// DecodeVectors decodes a JSON vector file.
func DecodeVectors(buf []byte) ([]Vector, error) {
	var vecs []Vector
	err := jx.DecodeBytes(buf).Arr(func(d *jx.Decoder) error {
		var v Vector
		if err := decodeVector(d, &v); err != nil {
			return errors.Wrapf(err, "vector %d", len(vecs))
		}
		vecs = append(vecs, v)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode vectors")
	}
	return vecs, nil
}

func decodeVector(d *jx.Decoder, v *Vector) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			v.Name = s
			return err
		case "initial":
			return decodeState(d, &v.Initial)
		case "final":
			return decodeState(d, &v.Final)
		case "cycles":
			return d.Arr(func(d *jx.Decoder) error {
				v.Cycles++
				return d.Skip()
			})
		}
		return d.Skip()
	})
}

func decodeInt(d *jx.Decoder, max int) (int, error) {
	v, err := d.Int()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > max {
		return 0, errors.Errorf("value %d out of range [0, %d]", v, max)
	}
	return v, nil
}

func decodeState(d *jx.Decoder, s *State) error {
	reg8 := func(dst *uint8) error {
		v, err := decodeInt(d, 0xFF)
		*dst = uint8(v)
		return err
	}

	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "pc":
			v, err := decodeInt(d, 0xFFFF)
			s.PC = uint16(v)
			return err
		case "s":
			return reg8(&s.S)
		case "a":
			return reg8(&s.A)
		case "x":
			return reg8(&s.X)
		case "y":
			return reg8(&s.Y)
		case "p":
			return reg8(&s.P)
		case "ram":
			return d.Arr(func(d *jx.Decoder) error {
				var (
					cell RAMCell
					idx  int
				)
				err := d.Arr(func(d *jx.Decoder) error {
					defer func() { idx++ }()
					switch idx {
					case 0:
						v, err := decodeInt(d, 0xFFFF)
						cell.Addr = uint16(v)
						return err
					case 1:
						v, err := decodeInt(d, 0xFF)
						cell.Val = uint8(v)
						return err
					}
					return d.Skip()
				})
				s.RAM = append(s.RAM, cell)
				return err
			})
		}
		return d.Skip()
	})
}

// Opcode returns the opcode tested by v, which is the first byte of its name.
func (v *Vector) Opcode() (uint8, error) {
	var op uint8
	if _, err := fmt.Sscanf(v.Name, "%02x", &op); err != nil {
		return 0, errors.Wrapf(err, "vector %q", v.Name)
	}
	return op, nil
}

// status bits compared between the expected and actual states. B and U don't
// exist in the processor, they're only visible on the stack.
const pmask = ^uint8(hw.Break | hw.Unused)

// Run executes the instruction described by v on a fresh CPU of the given
// model and compares the resulting state with the expected one.
func (v *Vector) Run(model hw.Model) error {
	mem, err := hwio.New(hwio.MaxSize)
	if err != nil {
		return err
	}
	for _, c := range v.Initial.RAM {
		if _, err := mem.Set(int(c.Addr), int(c.Val)); err != nil {
			return err
		}
	}

	cpu := hw.NewCPU(mem)
	cpu.Model = model
	cpu.PC = v.Initial.PC
	cpu.SP = v.Initial.S
	cpu.A = v.Initial.A
	cpu.X = v.Initial.X
	cpu.Y = v.Initial.Y
	cpu.P = hw.P(v.Initial.P)

	if err := cpu.Step(); err != nil {
		return errors.Wrapf(err, "%s", v.Name)
	}

	var diffs []string
	check := func(name string, got, want int) {
		if got != want {
			diffs = append(diffs, fmt.Sprintf("%s=$%02X want $%02X", name, got, want))
		}
	}
	check("PC", int(cpu.PC), int(v.Final.PC))
	check("S", int(cpu.SP), int(v.Final.S))
	check("A", int(cpu.A), int(v.Final.A))
	check("X", int(cpu.X), int(v.Final.X))
	check("Y", int(cpu.Y), int(v.Final.Y))
	check("P", int(uint8(cpu.P)&pmask), int(v.Final.P&pmask))
	for _, c := range v.Final.RAM {
		got, err := mem.Get(int(c.Addr))
		if err != nil {
			return err
		}
		check(fmt.Sprintf("[$%04X]", c.Addr), int(got), int(c.Val))
	}
	if cpu.Cycles != uint64(v.Cycles) {
		diffs = append(diffs, fmt.Sprintf("cycles=%d want %d", cpu.Cycles, v.Cycles))
	}

	if len(diffs) > 0 {
		return errors.Wrapf(ErrMismatch, "%s: %s", v.Name, strings.Join(diffs, ", "))
	}
	return nil
}

// maximum number of failures kept per file.
const maxFailures = 5

// Result summarizes the run of a vector file.
type Result struct {
	Opcode   uint8
	Total    int
	Failed   int
	Skipped  bool
	Failures []error
}

// RunFile runs all vectors in the file at path.
func RunFile(path string, model hw.Model) (Result, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	vecs, err := DecodeVectors(buf)
	if err != nil {
		return Result{}, errors.Wrapf(err, "%s", path)
	}

	var res Result
	for i := range vecs {
		if i == 0 {
			if res.Opcode, err = vecs[i].Opcode(); err != nil {
				return Result{}, err
			}
		}
		res.Total++
		if err := vecs[i].Run(model); err != nil {
			res.Failed++
			if len(res.Failures) < maxFailures {
				res.Failures = append(res.Failures, err)
			}
		}
	}
	return res, nil
}
