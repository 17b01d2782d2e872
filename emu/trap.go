package emu

import (
	"mos6502/emu/log"
	"mos6502/hw"
)

// trapDetector halts the CPU when an instruction transfers control to itself,
// the way test programs signal their end. Other events are forwarded to the
// next debugger, if any.
type trapDetector struct {
	cpu     *hw.CPU
	enabled bool
	next    hw.Debugger

	trapped  bool
	valid    bool
	prevPC   uint16
	prevCycl uint64
}

func (t *trapDetector) Reset() {
	t.valid = false
	t.trapped = false
	if t.next != nil {
		t.next.Reset()
	}
}

func (t *trapDetector) Trace(pc uint16) {
	if t.enabled {
		// Same PC with elapsed cycles: the previous instruction went nowhere.
		if t.valid && pc == t.prevPC && t.cpu.Cycles != t.prevCycl {
			log.ModEmu.DebugZ("Trap").Hex16("pc", pc).End()
			t.trapped = true
			t.cpu.Halt()
			return
		}
		t.valid = true
		t.prevPC = pc
		t.prevCycl = t.cpu.Cycles
	}
	if t.next != nil {
		t.next.Trace(pc)
	}
}

func (t *trapDetector) Interrupt(prevpc, curpc uint16, isNMI bool) {
	if t.next != nil {
		t.next.Interrupt(prevpc, curpc, isNMI)
	}
}

func (t *trapDetector) WatchRead(addr uint16) {
	if t.next != nil {
		t.next.WatchRead(addr)
	}
}

func (t *trapDetector) WatchWrite(addr uint16, val uint8) {
	if t.next != nil {
		t.next.WatchWrite(addr, val)
	}
}
