package hw

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
	gocmp "github.com/google/go-cmp/cmp"

	"mos6502/hw/hwio"
)

type tbwriter struct {
	tb testing.TB
}

func (w tbwriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// loadCPUWith returns a reset CPU connected to a 64K memory initialized with
// the given dump.
func loadCPUWith(tb testing.TB, dump string) *CPU {
	tb.Helper()

	mem, err := hwio.New(hwio.DefaultSize)
	if err != nil {
		tb.Fatal(err)
	}
	lines, err := hwio.ParseDumpString(dump)
	if err != nil {
		tb.Fatal(err)
	}
	if err := mem.LoadDump(lines); err != nil {
		tb.Fatal(err)
	}

	cpu := NewCPU(mem)
	cpu.Reset()
	return cpu
}

func wantMem8(t *testing.T, cpu *CPU, addr uint16, want uint8) {
	t.Helper()

	if got := cpu.Bus.Peek8(addr); got != want {
		t.Errorf("$%04X = %02X want %02X", addr, got, want)
	}
}

func wantMem(t *testing.T, cpu *CPU, dump string) {
	t.Helper()

	lines, err := hwio.ParseDumpString(dump)
	if err != nil {
		t.Fatal(err)
	}
	for _, dl := range lines {
		got := make([]byte, len(dl.Bytes))
		for i := range got {
			got[i] = cpu.Bus.Peek8(dl.Addr + uint16(i))
		}
		if diff := gocmp.Diff(dl.Bytes, got); diff != "" {
			t.Errorf("mem mismatch at $%04X (-want +got):\n%s", dl.Addr, diff)
		}
	}
}

// runAndCheckState runs the CPU for ncycles then checks its state against
// the (name, value) pairs of states. Names are registers (A, X, Y, SP, PC, P),
// single status bits (Pn, Pv, Pb, Pd, Pi, Pz, Pc), the cycle count (cycles)
// or a memory dump (mem).
func runAndCheckState(t *testing.T, cpu *CPU, ncycles uint64, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	if testing.Verbose() {
		cpu.SetTraceOutput(tbwriter{t})
		defer cpu.SetTraceOutput(nil)
	}

	if err := cpu.Execute(ncycles); err != nil {
		t.Fatalf("execute: %v", err)
	}

	checkuint8 := func(name string, got uint8, want int) {
		t.Helper()
		if int(got) != want {
			t.Errorf("got %s=$%02X, want $%02X", name, got, want)
		}
	}

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch {
		case s == "A":
			checkuint8("A", cpu.A, states[i+1].(int))
		case s == "X":
			checkuint8("X", cpu.X, states[i+1].(int))
		case s == "Y":
			checkuint8("Y", cpu.Y, states[i+1].(int))
		case s == "SP":
			checkuint8("SP", cpu.SP, states[i+1].(int))
		case s == "PC":
			if got, want := cpu.PC, states[i+1].(int); int(got) != want {
				t.Errorf("got PC=$%04X, want $%04X", got, want)
			}
		case s == "cycles":
			if got, want := cpu.Cycles, states[i+1].(int); got != uint64(want) {
				t.Errorf("got %d cycles, want %d", got, want)
			}
		case s == "P":
			if got, want := uint8(cpu.P), uint8(states[i+1].(int)); got != want {
				t.Errorf("got P=$%02X(%s), want $%02X(%s)", got, P(got), want, P(want))
			}
		case len(s) == 2 && s[0] == 'P':
			want := states[i+1].(int) != 0
			var got bool
			switch s[1] {
			case 'n':
				got = cpu.P.N()
			case 'v':
				got = cpu.P.V()
			case 'b':
				got = cpu.P.B()
			case 'd':
				got = cpu.P.D()
			case 'i':
				got = cpu.P.I()
			case 'z':
				got = cpu.P.Z()
			case 'c':
				got = cpu.P.C()
			default:
				panic("unknown P bit: " + s)
			}
			if got != want {
				t.Errorf("got %s=%t, want %t", s, got, want)
			}
		case s == "mem":
			wantMem(t, cpu, states[i+1].(string))
		default:
			panic("unknown state: " + s)
		}
	}

	if t.Failed() {
		t.Logf("cpu state:\n%s", spew.Sdump(snapshot(cpu)))
		t.FailNow()
	}
}

type regs struct {
	A, X, Y, SP uint8
	PC          uint16
	P           P
	Cycles      uint64
}

func snapshot(cpu *CPU) regs {
	return regs{
		A:      cpu.A,
		X:      cpu.X,
		Y:      cpu.Y,
		SP:     cpu.SP,
		PC:     cpu.PC,
		P:      cpu.P,
		Cycles: cpu.Cycles,
	}
}
