package hw

import (
	"io"
	"strconv"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock uint64
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer

	buf []byte
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// appendReg appends "name:XX ".
func appendReg(buf []byte, name string, v uint8) []byte {
	buf = append(buf, name...)
	buf = append(buf, ':', 0, 0, ' ')
	hexEncode(buf[len(buf)-3:], v)
	return buf
}

// write the trace line of the instruction about to be executed.
func (t *tracer) write(state cpuState) {
	dis := t.d.Disasm(state.PC)

	buf := append(t.buf[:0], dis.Bytes()...)
	buf = appendReg(buf, "A", state.A)
	buf = appendReg(buf, "X", state.X)
	buf = appendReg(buf, "Y", state.Y)
	buf = appendReg(buf, "P", uint8(state.P))
	buf = appendReg(buf, "S", state.SP)
	buf = append(buf, "CYC:"...)
	buf = strconv.AppendUint(buf, state.Clock, 10)
	buf = append(buf, '\n')

	t.w.Write(buf)
	t.buf = buf
}
