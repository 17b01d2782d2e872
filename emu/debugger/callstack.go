package debugger

import (
	"fmt"
	"slices"
)

type frameKind uint8

const (
	frameCall frameKind = iota
	frameBRK
	frameIRQ
	frameNMI
)

// frame is a subroutine or interrupt handler invocation.
type frame struct {
	caller uint16 // address of the calling instruction
	entry  uint16 // subroutine or handler address
	ret    uint16 // where execution resumes
	kind   frameKind
}

type callStack []frame

func (cs *callStack) push(f frame) {
	*cs = append(*cs, f)
}

func (cs *callStack) pop() {
	if len(*cs) == 0 {
		return
	}
	*cs = (*cs)[:len(*cs)-1]
}

func (cs *callStack) reset() {
	*cs = (*cs)[:0]
}

// frameInfo is a row of a backtrace: the function (entry point) and the
// current location in it.
type frameInfo [2]string

// build returns the backtrace, innermost frame first, pc being the current
// location.
func (cs callStack) build(pc uint16) []frameInfo {
	nfos := make([]frameInfo, 0, len(cs)+1)

	where := pc
	for _, f := range slices.Backward(cs) {
		nfos = append(nfos, frameInfo{f.String(), fmt.Sprintf("$%04X", where)})
		where = f.caller
	}
	return append(nfos, frameInfo{"[bottom of stack]", fmt.Sprintf("$%04X", where)})
}

func (f frame) String() string {
	switch f.kind {
	case frameBRK:
		return fmt.Sprintf("[brk] %04X", f.entry)
	case frameIRQ:
		return fmt.Sprintf("[irq] %04X", f.entry)
	case frameNMI:
		return fmt.Sprintf("[nmi] %04X", f.entry)
	}
	return fmt.Sprintf("%04X", f.entry)
}
