package hw

import (
	"io"

	"github.com/go-faster/errors"

	"mos6502/emu/log"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// Register values after Reset.
const (
	ResetPC = uint16(0xFCE2)
	ResetSP = uint8(0xFD)
)

const stackBase = uint16(0x0100)

// Peeker reads memory without side effects nor cycles.
type Peeker interface {
	Peek8(addr uint16) uint8
}

// Bus is the memory the CPU is connected to. An access error aborts the
// instruction being executed.
type Bus interface {
	Read8(addr uint16) (uint8, error)
	Write8(addr uint16, val uint8) error
	Peeker
}

type CPU struct {
	Bus   Bus
	Model Model

	// Non-nil when execution tracing is enabled.
	tracer *tracer
	dbg    Debugger

	Cycles uint64 // elapsed bus cycles since reset

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	// interrupt lines
	irqLine    bool
	nmiPending bool

	halted bool
	phase  phase
	opPC   uint16 // address of the instruction being executed
	opcode uint8
}

// phase tells what the CPU is doing, to describe bus errors.
type phase uint8

const (
	phaseFetch phase = iota
	phaseExec
	phaseInterrupt
)

// NewCPU creates a CPU connected to bus. Registers are cleared and all status
// flags are set; Reset must be called before relying on them.
func NewCPU(bus Bus) *CPU {
	return &CPU{
		Bus: bus,
		P:   0xFF,
		dbg: nopDebugger{},
	}
}

// Reset puts the CPU in its reset state. Memory and the A, X, Y registers are
// left untouched.
func (c *CPU) Reset() {
	c.PC = ResetPC
	c.SP = ResetSP
	c.Cycles = 0
	c.P |= IntDisable | Break | Unused
	c.P &^= Decimal

	c.irqLine = false
	c.nmiPending = false
	c.halted = false
	c.dbg.Reset()

	log.ModCPU.DebugZ("reset").
		Hex16("PC", c.PC).
		Hex8("SP", c.SP).
		End()
}

// Execute runs whole instructions while Cycles is lower than budget. A zero
// budget never stops by itself, only a halt or a bus error do. The returned
// error wraps the bus error which aborted the faulting instruction.
func (c *CPU) Execute(budget uint64) (err error) {
	defer c.recoverBusError(&err)

	c.halted = false
	for budget == 0 || c.Cycles < budget {
		c.step()
		if c.halted {
			log.ModCPU.DebugZ("CPU halted").
				Hex16("PC", c.PC).
				Uint("cycles", c.Cycles).
				End()
			break
		}
	}
	return nil
}

// Step executes a single instruction, or services a pending interrupt.
func (c *CPU) Step() (err error) {
	defer c.recoverBusError(&err)

	c.halted = false
	c.step()
	return nil
}

func (c *CPU) step() {
	if c.nmiPending || (c.irqLine && !c.P.I()) {
		c.interrupt()
		return
	}

	c.opPC = c.PC
	c.traceOp()
	if c.halted {
		return
	}
	c.phase = phaseFetch
	c.opcode = c.fetch8()
	c.phase = phaseExec
	op := &ops[c.opcode]
	if op.fn == nil {
		panic(errors.Errorf("opcode %02X has no handler", c.opcode))
	}
	op.fn(c, op.mode)
}

// Halt stops the current Execute call before the next instruction. It's meant
// to be called from a Debugger.
func (c *CPU) Halt() {
	c.halted = true
}

// IsHalted reports whether the last Execute or Step stopped on a halt.
func (c *CPU) IsHalted() bool {
	return c.halted
}

// busError carries a bus access error up to Execute or Step.
type busError struct{ err error }

func (c *CPU) recoverBusError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	be, ok := r.(busError)
	if !ok {
		panic(r)
	}
	switch c.phase {
	case phaseFetch:
		*err = errors.Wrapf(be.err, "opcode fetch at $%04X", c.opPC)
	case phaseInterrupt:
		*err = errors.Wrapf(be.err, "interrupt entry from $%04X", c.opPC)
	default:
		*err = errors.Wrapf(be.err, "%s at $%04X", Mnemonic(c.opcode), c.opPC)
	}
}

func (c *CPU) traceOp() {
	c.dbg.Trace(c.PC)
	if c.halted {
		return
	}

	if c.tracer != nil {
		c.tracer.write(cpuState{
			A:     c.A,
			X:     c.X,
			Y:     c.Y,
			P:     c.P,
			SP:    c.SP,
			PC:    c.PC,
			Clock: c.Cycles,
		})
	}
}

/* bus primitives: each byte transferred costs one cycle */

func (c *CPU) Read8(addr uint16) uint8 {
	c.Cycles++
	c.dbg.WatchRead(addr)
	val, err := c.Bus.Read8(addr)
	if err != nil {
		panic(busError{err})
	}
	return val
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Cycles++
	c.dbg.WatchWrite(addr, val)
	if err := c.Bus.Write8(addr, val); err != nil {
		panic(busError{err})
	}
}

func (c *CPU) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) Write16(addr uint16, val uint16) {
	c.Write8(addr, uint8(val))
	c.Write8(addr+1, uint8(val>>8))
}

func (c *CPU) fetch8() uint8 {
	val := c.Read8(c.PC)
	c.PC++
	return val
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

// tick burns an internal cycle.
func (c *CPU) tick() {
	c.Cycles++
}

// register reads on the internal bus cost a cycle.

func (c *CPU) readA() uint8 { c.tick(); return c.A }
func (c *CPU) readX() uint8 { c.tick(); return c.X }
func (c *CPU) readY() uint8 { c.tick(); return c.Y }

/* stack operations */

func (c *CPU) push8(val uint8) {
	top := stackBase + uint16(c.SP)
	c.Write8(top, val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	top := stackBase + uint16(c.SP)
	return c.Read8(top)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt handling */

// SetIRQ sets the level of the IRQ line. While high, an interrupt is serviced
// before each instruction, unless interrupts are disabled.
func (c *CPU) SetIRQ(high bool) {
	c.irqLine = high
}

// NMI signals a non-maskable interrupt, serviced before the next instruction.
func (c *CPU) NMI() {
	c.nmiPending = true
}

func (c *CPU) interrupt() {
	c.phase = phaseInterrupt
	c.opPC = c.PC
	c.tick()
	c.tick()

	prevpc := c.PC
	c.push16(c.PC)
	c.push8(c.P.packed(false))
	c.P |= IntDisable

	isNMI := c.nmiPending
	if isNMI {
		c.nmiPending = false
		c.PC = c.Read16(NMIVector)
	} else {
		c.PC = c.Read16(IRQVector)
	}

	log.ModCPU.DebugZ("interrupt").
		Bool("nmi", isNMI).
		Hex16("from", prevpc).
		Hex16("to", c.PC).
		End()
	c.dbg.Interrupt(prevpc, c.PC, isNMI)
}

/* tracing / debugging */

// SetTraceOutput enables the execution trace, a line per instruction. A nil
// writer disables it.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

// Disasm disassembles the instruction at pc.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	return Disasm(c.Bus, pc)
}

// AddLogContext implements log.LogContextAdder.
func (c *CPU) AddLogContext(z *log.EntryZ) {
	z.Hex16("pc", c.PC).Uint("cycles", c.Cycles)
}

type nopDebugger struct{}

func (nopDebugger) Reset()                                     {}
func (nopDebugger) Trace(pc uint16)                            {}
func (nopDebugger) Interrupt(prevpc, curpc uint16, isNMI bool) {}
func (nopDebugger) WatchRead(addr uint16)                      {}
func (nopDebugger) WatchWrite(addr uint16, val uint8)          {}
