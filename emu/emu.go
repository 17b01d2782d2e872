package emu

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-faster/errors"

	"mos6502/emu/log"
	"mos6502/hw"
	"mos6502/hw/hwio"
)

var (
	// ErrTrapped is returned by Run when the program is stuck on an
	// instruction jumping to itself, other than the success trap.
	ErrTrapped = errors.New("program trapped")

	// ErrMaxCycles is returned by Run when the cycle limit is reached.
	ErrMaxCycles = errors.New("cycle limit reached")
)

// number of cycles executed between two checks of the run context.
const runSlice = 1 << 16

// Machine is a CPU connected to a flat memory.
type Machine struct {
	CPU *hw.CPU
	Mem *hwio.Mem

	cfg     MachineConfig
	console io.Writer
	trap    trapDetector
}

// New creates a machine, loads its images and resets its CPU.
func New(cfg Config) (*Machine, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	mem, err := hwio.New(cfg.Machine.MemorySize)
	if err != nil {
		return nil, err
	}
	for _, img := range cfg.Images {
		if err := loadImage(mem, img); err != nil {
			return nil, err
		}
	}

	m := &Machine{
		CPU:     hw.NewCPU(mem),
		Mem:     mem,
		cfg:     cfg.Machine,
		console: os.Stdout,
	}
	m.CPU.Model = cfg.Machine.Model
	m.trap.cpu = m.CPU
	m.trap.enabled = cfg.Machine.StopOnTrap
	m.SetDebugger(nil)

	if out := cfg.Console.Out; out != -1 {
		port := uint16(out)
		mem.OnWrite = func(addr uint16, val uint8) {
			if addr == port {
				m.console.Write([]byte{val})
			}
		}
	}
	if cfg.TraceOut != nil {
		m.CPU.SetTraceOutput(cfg.TraceOut)
	}

	if err := m.Reset(); err != nil {
		return nil, err
	}

	log.ModEmu.InfoZ("Machine created").
		Stringer("model", m.CPU.Model).
		Int("memory", mem.Size()).
		Hex16("pc", m.CPU.PC).
		End()
	return m, nil
}

func loadImage(mem *hwio.Mem, img ImageConfig) error {
	switch img.Format {
	case FormatDump:
		f, err := os.Open(img.Path)
		if err != nil {
			return errors.Wrap(err, "load image")
		}
		defer f.Close()

		lines, err := hwio.ParseDump(f)
		if err != nil {
			return errors.Wrapf(err, "image %s", img.Path)
		}
		if err := mem.LoadDump(lines); err != nil {
			return errors.Wrapf(err, "image %s", img.Path)
		}
		if img.ReadOnly {
			for _, l := range lines {
				if err := protect(mem, int(l.Addr), len(l.Bytes)); err != nil {
					return errors.Wrapf(err, "image %s", img.Path)
				}
			}
		}
	default:
		buf, err := os.ReadFile(img.Path)
		if err != nil {
			return errors.Wrap(err, "load image")
		}
		if err := mem.Load(img.Address, buf); err != nil {
			return errors.Wrapf(err, "image %s", img.Path)
		}
		if img.ReadOnly {
			if err := protect(mem, img.Address, len(buf)); err != nil {
				return errors.Wrapf(err, "image %s", img.Path)
			}
		}
	}

	log.ModEmu.InfoZ("Loaded image").
		String("path", img.Path).
		String("format", img.Format).
		Hex16("addr", uint16(img.Address)).
		Bool("readonly", img.ReadOnly).
		End()
	return nil
}

func protect(mem *hwio.Mem, addr, n int) error {
	if n == 0 {
		return nil
	}
	return mem.SetReadOnly(addr, addr+n)
}

// SetConsole sets the writer receiving the bytes written to the console port.
func (m *Machine) SetConsole(w io.Writer) {
	m.console = w
}

// SetDebugger installs dbg on the CPU, behind the trap detector.
func (m *Machine) SetDebugger(dbg hw.Debugger) {
	m.trap.next = dbg
	m.CPU.SetDebugger(&m.trap)
}

// Reset resets the CPU then sets the PC to the configured entry point.
func (m *Machine) Reset() error {
	m.CPU.Reset()

	if m.cfg.UseResetVector {
		lo, err := m.Mem.Get(int(hw.ResetVector))
		if err != nil {
			return err
		}
		hi, err := m.Mem.Get(int(hw.ResetVector) + 1)
		if err != nil {
			return err
		}
		m.CPU.PC = uint16(hi)<<8 | uint16(lo)
	}
	if m.cfg.Entry != -1 {
		m.CPU.PC = uint16(m.cfg.Entry)
	}
	return nil
}

// Trapped reports whether the CPU stopped on a trap.
func (m *Machine) Trapped() bool {
	return m.trap.trapped
}

// Run executes the program until it traps, reaches the cycle limit, is halted
// by a debugger or ctx is done. Reaching the success trap is not an error.
func (m *Machine) Run(ctx context.Context) error {
	log.AddContext(m.CPU)
	defer log.RemoveContext(m.CPU)

	start := time.Now()
	startCycles := m.CPU.Cycles
	defer func() {
		log.ModEmu.InfoZ("Run finished").
			Uint("cycles", m.CPU.Cycles-startCycles).
			Duration("elapsed", time.Since(start)).
			End()
	}()

	m.trap.trapped = false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		budget := m.CPU.Cycles + runSlice
		if limit := m.cfg.MaxCycles; limit != 0 {
			if m.CPU.Cycles >= limit {
				return errors.Wrapf(ErrMaxCycles, "%d cycles, PC=$%04X", m.CPU.Cycles, m.CPU.PC)
			}
			budget = min(budget, limit)
		}

		if err := m.CPU.Execute(budget); err != nil {
			log.ModEmu.ErrorZ("Execution aborted").Error("err", err).End()
			return err
		}

		if m.trap.trapped {
			pc := m.CPU.PC
			if m.cfg.SuccessPC != -1 && pc == uint16(m.cfg.SuccessPC) {
				log.ModEmu.InfoZ("Success").Hex16("pc", pc).End()
				return nil
			}
			return errors.Wrapf(ErrTrapped, "at $%04X", pc)
		}
		if m.CPU.IsHalted() {
			return nil
		}
	}
}
