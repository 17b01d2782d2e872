package hw

import (
	"fmt"
	"testing"

	"mos6502/hw/hwio"
)

func TestDisasm(t *testing.T) {
	tests := []struct {
		dump string
		pc   uint16
		want string
		len  int
	}{
		{`C000: a9 32`, 0xC000, "C000  A9 32     LDA #$32", 2},
		{`C000: 4c f5 c5`, 0xC000, "C000  4C F5 C5  JMP $C5F5", 3},
		{`C000: 6c 00 02`, 0xC000, "C000  6C 00 02  JMP ($0200)", 3},
		{`C000: b5 80`, 0xC000, "C000  B5 80     LDA $80,X", 2},
		{`C000: b6 80`, 0xC000, "C000  B6 80     LDX $80,Y", 2},
		{`C000: 1d 34 12`, 0xC000, "C000  1D 34 12  ORA $1234,X", 3},
		{`C000: a1 80`, 0xC000, "C000  A1 80     LDA ($80,X)", 2},
		{`C000: 91 80`, 0xC000, "C000  91 80     STA ($80),Y", 2},
		{`C000: 0a`, 0xC000, "C000  0A        ASL A", 1},
		{`C000: 18`, 0xC000, "C000  18        CLC", 1},
		{`C000: d0 03`, 0xC000, "C000  D0 03     BNE $C005", 2},
		{`C000: f0 fe`, 0xC000, "C000  F0 FE     BEQ $C000", 2},
		{`C000: a7 10`, 0xC000, "C000  A7 10    *LAX $10", 2},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			mem, err := hwio.New(hwio.DefaultSize)
			if err != nil {
				t.Fatal(err)
			}
			lines, err := hwio.ParseDumpString(tt.dump)
			if err != nil {
				t.Fatal(err)
			}
			if err := mem.LoadDump(lines); err != nil {
				t.Fatal(err)
			}

			op := Disasm(mem, tt.pc)
			if got := op.String(); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
			if op.Len() != tt.len {
				t.Errorf("Len() = %d, want %d", op.Len(), tt.len)
			}
		})
	}
}

func TestDisasmOpBytes(t *testing.T) {
	op := DisasmOp{
		Opcode: "JMP",
		Oper:   "$C5F5",
		Buf:    []byte{0x4c, 0xf5, 0xc5},
		PC:     0xC000,
	}
	want := fmt.Sprintf("%-48s", "C000  4C F5 C5  JMP $C5F5")
	if got := string(op.Bytes()); got != want {
		t.Errorf("\ngot:  %q\nwant: %q", got, want)
	}
}

func BenchmarkDisasmOpBytes(b *testing.B) {
	op := DisasmOp{
		Opcode: "JMP",
		Oper:   "$C5F5",
		Buf:    []byte{0x4c, 0xf5, 0xc5},
		PC:     0xC000,
	}
	for range b.N {
		op.Bytes()
	}
}
