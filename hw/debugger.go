package hw

// A Debugger controls and monitors a CPU.
type Debugger interface {
	// Reset is called when the CPU is reset.
	Reset()

	// Trace is called before each instruction is executed. The debugger can
	// call Halt to stop the CPU before the instruction at pc.
	Trace(pc uint16)

	// Interrupt is called when an interrupt has been taken. prevpc is the
	// address of the instruction that was about to be executed, curpc is the
	// address of the interrupt handler.
	Interrupt(prevpc, curpc uint16, isNMI bool)

	// WatchRead/WatchWrite are called before each memory access, they can be
	// used to implement watchpoints.
	WatchRead(addr uint16)
	WatchWrite(addr uint16, val uint8)
}
