package emu

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-faster/errors"

	"mos6502/hw"
	"mos6502/hw/hwio"
)

// newMachine returns a machine with the image and config given, the image
// being a binary loaded at 0x0400, which is also the entry point.
func newMachine(t *testing.T, image []byte, tweak func(*Config)) *Machine {
	t.Helper()

	path := writeFile(t, t.TempDir(), "prog.bin", string(image))

	cfg := DefaultConfig()
	cfg.Machine.Entry = 0x0400
	cfg.Images = []ImageConfig{{Path: path, Address: 0x0400}}
	if tweak != nil {
		tweak(&cfg)
	}

	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMachineConsole(t *testing.T) {
	prog := []byte{
		0xA9, 'H', // LDA #'H'
		0x8D, 0x01, 0xF0, // STA $F001
		0xA9, 'I', // LDA #'I'
		0x8D, 0x01, 0xF0, // STA $F001
		0x4C, 0x0A, 0x04, // JMP $040A
	}
	m := newMachine(t, prog, func(cfg *Config) {
		cfg.Machine.SuccessPC = 0x040A
		cfg.Console.Out = 0xF001
	})
	var console bytes.Buffer
	m.SetConsole(&console)

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if console.String() != "HI" {
		t.Errorf("console = %q, want %q", console.String(), "HI")
	}
	if m.CPU.PC != 0x040A || !m.Trapped() {
		t.Errorf("PC = $%04X trapped=%t, want $040A and trapped", m.CPU.PC, m.Trapped())
	}
}

func TestMachineTrap(t *testing.T) {
	prog := []byte{
		0xA2, 0x00, // LDX #0
		0xF0, 0xFE, // BEQ *
	}
	m := newMachine(t, prog, func(cfg *Config) {
		cfg.Machine.SuccessPC = 0x3469
	})

	err := m.Run(context.Background())
	if !errors.Is(err, ErrTrapped) {
		t.Fatalf("Run() = %v, want %v", err, ErrTrapped)
	}
	if m.CPU.PC != 0x0402 {
		t.Errorf("trapped at $%04X, want $0402", m.CPU.PC)
	}
}

func TestMachineMaxCycles(t *testing.T) {
	prog := []byte{
		0xE8,             // INX
		0x4C, 0x00, 0x04, // JMP $0400
	}
	m := newMachine(t, prog, func(cfg *Config) {
		cfg.Machine.MaxCycles = 100
	})

	err := m.Run(context.Background())
	if !errors.Is(err, ErrMaxCycles) {
		t.Fatalf("Run() = %v, want %v", err, ErrMaxCycles)
	}
	if m.CPU.Cycles < 100 {
		t.Errorf("stopped after %d cycles, want at least 100", m.CPU.Cycles)
	}
}

func TestMachineCanceled(t *testing.T) {
	m := newMachine(t, []byte{0x4C, 0x00, 0x04}, func(cfg *Config) {
		cfg.Machine.StopOnTrap = false
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want %v", err, context.Canceled)
	}
}

func TestMachineBusError(t *testing.T) {
	prog := []byte{0xAD, 0x00, 0x08} // LDA $0800
	m := newMachine(t, prog, func(cfg *Config) {
		cfg.Machine.MemorySize = 0x0800
	})

	err := m.Run(context.Background())
	if !errors.Is(err, hwio.ErrInvalidAddress) {
		t.Errorf("Run() = %v, want %v", err, hwio.ErrInvalidAddress)
	}
}

func TestMachineImages(t *testing.T) {
	dir := t.TempDir()
	dump := writeFile(t, dir, "vectors.txt", `
# reset vector
FFFC: 00 04
0400: ea ea`)

	cfg := DefaultConfig()
	cfg.Machine.UseResetVector = true
	cfg.Images = []ImageConfig{{Path: dump, Format: FormatDump}}

	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if m.CPU.PC != 0x0400 {
		t.Errorf("PC = $%04X, want $0400", m.CPU.PC)
	}
	if got := m.Mem.Peek8(0x0401); got != 0xEA {
		t.Errorf("$0401 = %02X, want EA", got)
	}

	t.Run("default entry", func(t *testing.T) {
		m, err := New(DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if m.CPU.PC != hw.ResetPC {
			t.Errorf("PC = $%04X, want $%04X", m.CPU.PC, hw.ResetPC)
		}
	})

	t.Run("image too large", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Machine.MemorySize = hwio.MinSize
		cfg.Images = []ImageConfig{{Path: writeFile(t, dir, "big.bin", string(make([]byte, 0x100))), Address: 0x180}}
		if _, err := New(cfg); !errors.Is(err, hwio.ErrInvalidAddress) {
			t.Errorf("New() = %v, want %v", err, hwio.ErrInvalidAddress)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Images = []ImageConfig{{Path: "/nonexistent/prog.bin"}}
		if _, err := New(cfg); err == nil {
			t.Error("New() should fail")
		}
	})
}

func TestMachineReadOnlyImage(t *testing.T) {
	dir := t.TempDir()
	rom := writeFile(t, dir, "rom.bin", "\x42\x43")
	prog := writeFile(t, dir, "prog.bin", string([]byte{
		0xA9, 0x00, // LDA #0
		0x8D, 0x00, 0x80, // STA $8000
		0x8D, 0x00, 0x02, // STA $0200
		0x4C, 0x08, 0x04, // JMP $0408
	}))

	cfg := DefaultConfig()
	cfg.Machine.Entry = 0x0400
	cfg.Images = []ImageConfig{
		{Path: prog, Address: 0x0400},
		{Path: rom, Address: 0x8000, ReadOnly: true},
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m.Mem.Set(0x0200, 0xFF)

	if err := m.Run(context.Background()); !errors.Is(err, ErrTrapped) {
		t.Fatalf("Run() = %v, want %v", err, ErrTrapped)
	}
	if got := m.Mem.Peek8(0x8000); got != 0x42 {
		t.Errorf("$8000 = %02X, want 42 (read-only)", got)
	}
	if got := m.Mem.Peek8(0x0200); got != 0x00 {
		t.Errorf("$0200 = %02X, want 00", got)
	}
}
