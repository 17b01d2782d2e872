package debugger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"

	"mos6502/emu"
	"mos6502/emu/log"
	"mos6502/hw"
	"mos6502/hw/hwio"
)

var modDbg = log.NewModule("dbg")

// errQuit is returned by the quit command to end the command loop.
var errQuit = errors.New("quit")

// Monitor is an interactive, line oriented, machine monitor. It's also the
// CPU debugger, breaking execution on breakpoints and watchpoints, and keeping
// track of the call stack.
type Monitor struct {
	m   *emu.Machine
	cpu *hw.CPU
	out io.Writer

	cmds *commands

	breakpoints hwio.AddrSet
	watchpoints hwio.AddrSet
	cstack      callStack

	// last traced instruction.
	prevPC     uint16
	prevOpcode uint8
	prevCycles uint64
	traced     bool

	stop    string // why the CPU last stopped, if it did on its own
	lastCmd string
}

// NewMonitor creates a monitor for m, printing to out, and installs it as the
// CPU debugger.
func NewMonitor(m *emu.Machine, out io.Writer) *Monitor {
	mon := &Monitor{
		m:    m,
		cpu:  m.CPU,
		out:  out,
		cmds: newCommands(commandList),
	}
	mon.Reset()
	m.SetDebugger(mon)
	return mon
}

// Run reads and executes commands from in until it's exhausted, the quit
// command or ctx is done. An empty line repeats the last command.
func (mon *Monitor) Run(ctx context.Context, in io.Reader, prompt bool) error {
	scan := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprintf(mon.out, "%04X> ", mon.cpu.PC)
		}
		if !scan.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := mon.Exec(ctx, scan.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(mon.out, "error: %v\n", err)
		}
	}
	return scan.Err()
}

// Exec executes a single command line.
func (mon *Monitor) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = mon.lastCmd
	}
	if line == "" {
		return nil
	}

	fields := strings.Fields(line)
	cmd, err := mon.cmds.find(fields[0])
	if err != nil {
		return err
	}
	mon.lastCmd = line

	modDbg.DebugZ("command").String("cmd", cmd.name).String("line", line).End()
	return cmd.handler(ctx, mon, fields[1:])
}

func (mon *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(mon.out, format, args...)
}

func (mon *Monitor) printRegs() {
	c := mon.cpu
	mon.printf("PC=$%04X A=$%02X X=$%02X Y=$%02X SP=$%02X P=$%02X (%s) CYC=%d\n",
		c.PC, c.A, c.X, c.Y, c.SP, uint8(c.P), c.P, c.Cycles)
}

func (mon *Monitor) printNext() {
	mon.printf("%s\n", mon.cpu.Disasm(mon.cpu.PC))
}

// reportStop prints why the CPU stopped, if it stopped on its own.
func (mon *Monitor) reportStop() {
	switch {
	case mon.stop != "":
		mon.printf("%s\n", mon.stop)
	case mon.m.Trapped():
		mon.printf("trapped at $%04X\n", mon.cpu.PC)
	}
	mon.stop = ""
}

/* hw.Debugger implementation */

func (mon *Monitor) Reset() {
	mon.cstack.reset()
	mon.traced = false
	mon.prevOpcode = 0xFF
}

func (mon *Monitor) Trace(pc uint16) {
	// Execution resumes on the instruction we stopped at.
	if mon.traced && pc == mon.prevPC && mon.cpu.Cycles == mon.prevCycles {
		return
	}

	mon.updateStack(pc)
	mon.traced = true
	mon.prevPC = pc
	mon.prevOpcode = mon.cpu.Bus.Peek8(pc)
	mon.prevCycles = mon.cpu.Cycles

	if mon.breakpoints.Has(pc) {
		mon.stop = fmt.Sprintf("breakpoint at $%04X", pc)
		mon.cpu.Halt()
	}
}

func (mon *Monitor) updateStack(pc uint16) {
	switch mon.prevOpcode {
	case 0x20: // JSR
		mon.cstack.push(frame{caller: mon.prevPC, entry: pc, ret: mon.prevPC + 3})
	case 0x00: // BRK
		mon.cstack.push(frame{caller: mon.prevPC, entry: pc, ret: mon.prevPC + 2, kind: frameBRK})
	case 0x40, 0x60: // RTI RTS
		mon.cstack.pop()
	}
}

func (mon *Monitor) Interrupt(prevpc, curpc uint16, isNMI bool) {
	kind := frameIRQ
	if isNMI {
		kind = frameNMI
	}
	mon.updateStack(prevpc)
	mon.prevOpcode = 0xFF
	mon.cstack.push(frame{caller: prevpc, entry: curpc, ret: prevpc, kind: kind})
}

func (mon *Monitor) WatchRead(addr uint16) {
	if mon.watchpoints.Has(addr) {
		mon.stop = fmt.Sprintf("watchpoint: read $%04X", addr)
		mon.cpu.Halt()
	}
}

func (mon *Monitor) WatchWrite(addr uint16, val uint8) {
	if mon.watchpoints.Has(addr) {
		mon.stop = fmt.Sprintf("watchpoint: write $%02X to $%04X", val, addr)
		mon.cpu.Halt()
	}
}
