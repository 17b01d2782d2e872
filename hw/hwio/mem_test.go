package hwio

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/go-cmp/cmp"
)

func TestNewSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{size: 0x01FF, wantErr: true},
		{size: 0x0200},
		{size: 0xFFFF},
		{size: 0x10000}, // $FFFF included
		{size: 0x10001, wantErr: true},
		{size: -1, wantErr: true},
	}
	for _, tt := range tests {
		m, err := New(tt.size)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("New(%#x) error = %v, want ErrInvalidSize", tt.size, err)
			}
			if m != nil {
				t.Errorf("New(%#x) returned a memory on error", tt.size)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%#x) error = %v", tt.size, err)
		}
		if m.Size() != tt.size {
			t.Errorf("Size() = %#x, want %#x", m.Size(), tt.size)
		}
	}
}

func TestMemZeroed(t *testing.T) {
	m, err := New(DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	for addr := range m.Size() {
		if v, _ := m.Get(addr); v != 0 {
			t.Fatalf("mem[%#x] = %#x, want 0", addr, v)
		}
	}
}

func TestMemReadWrite(t *testing.T) {
	m, err := New(0x0200)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Write8(0x01FF, 0xA5); err != nil {
		t.Fatal(err)
	}
	if v, err := m.Read8(0x01FF); err != nil || v != 0xA5 {
		t.Errorf("Read8(0x01FF) = %#x, %v, want 0xa5, nil", v, err)
	}

	if _, err := m.Read8(0x0200); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Read8(0x0200) error = %v, want ErrInvalidAddress", err)
	}
	if err := m.Write8(0xFFFF, 1); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Write8(0xFFFF) error = %v, want ErrInvalidAddress", err)
	}
	if v := m.Peek8(0xFFFF); v != 0 {
		t.Errorf("Peek8(0xFFFF) = %#x, want 0", v)
	}
}

func TestMemHostAccess(t *testing.T) {
	m, err := New(0x1000)
	if err != nil {
		t.Fatal(err)
	}

	v, err := m.Set(0x0FFF, 0xFF)
	if err != nil || v != 0xFF {
		t.Fatalf("Set(0x0FFF, 0xFF) = %#x, %v", v, err)
	}
	if _, err := m.Set(0x10, 0x100); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Set(0x10, 0x100) error = %v, want ErrInvalidValue", err)
	}
	if _, err := m.Set(0x10, -1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Set(0x10, -1) error = %v, want ErrInvalidValue", err)
	}
	if _, err := m.Set(0x1000, 0); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Set(0x1000, 0) error = %v, want ErrInvalidAddress", err)
	}
	if _, err := m.Get(-1); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Get(-1) error = %v, want ErrInvalidAddress", err)
	}
}

func TestMemReadOnly(t *testing.T) {
	m, err := New(DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	var writes int
	m.OnWrite = func(uint16, uint8) { writes++ }

	if err := m.Load(0xE000, []byte{0x12, 0x34}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetReadOnly(0xE000, 0x10000); err != nil {
		t.Fatal(err)
	}

	if err := m.Write8(0xE000, 0xFF); err != nil {
		t.Fatal(err)
	}
	if err := m.Write8(0xDFFF, 0xFF); err != nil {
		t.Fatal(err)
	}
	if got := m.Peek8(0xE000); got != 0x12 {
		t.Errorf("readonly byte overwritten: got %#x", got)
	}
	if got := m.Peek8(0xDFFF); got != 0xFF {
		t.Errorf("mem[0xDFFF] = %#x, want 0xff", got)
	}
	if writes != 1 {
		t.Errorf("OnWrite called %d times, want 1", writes)
	}
}

func TestMemLoad(t *testing.T) {
	m, err := New(0x0800)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(0x07FE, []byte{1, 2, 3}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Load past the end error = %v, want ErrInvalidAddress", err)
	}
	if err := m.Load(0x07FE, []byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0, 1, 2}, m.Slice()[0x07FD:]); diff != "" {
		t.Errorf("memory differs (-want +got):\n%s", diff)
	}
}

func TestParseDump(t *testing.T) {
	tests := []struct {
		dump string
		want []DumpLine
	}{
		{
			dump: `01f0: 0f 0e 0d`,
			want: []DumpLine{{0x01f0, []byte{0x0f, 0x0e, 0x0d}}},
		},
		{
			dump: `
# stack
01f0: 0f 0e 0d 0c 0b 0a 09 08 07 06 05 04 03 02 01 00

0210: 0f0e 0d0c
`,
			want: []DumpLine{
				{0x01f0, []byte{0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00}},
				{0x0210, []byte{0x0f, 0x0e, 0x0d, 0x0c}},
			},
		},
	}

	for _, tt := range tests {
		got, err := ParseDumpString(tt.dump)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("dump differs (-want +got):\n%s", diff)
		}
	}
}

func TestParseDumpErrors(t *testing.T) {
	for _, dump := range []string{
		`0600 a9 01`,
		`zz00: a9`,
		`0600: a9 0`,
		`FFFF: 00 00`,
	} {
		if _, err := ParseDumpString(dump); err == nil {
			t.Errorf("ParseDump(%q) should fail", dump)
		}
	}
}
