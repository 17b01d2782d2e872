package hwio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddrSet(t *testing.T) {
	var s AddrSet
	for i := range numAddrs {
		if s.Has(uint16(i)) {
			t.Fatalf("address %#x is set", i)
		}
	}

	s.Add(0x0000)
	s.Add(0x0041)
	s.Add(0xFFFF)
	if diff := cmp.Diff([]uint16{0x0000, 0x0041, 0xFFFF}, s.Addrs()); diff != "" {
		t.Errorf("Addrs() differs (-want +got):\n%s", diff)
	}

	s.Remove(0x0041)
	if s.Has(0x0041) || s.Len() != 2 {
		t.Errorf("after Remove: Has = %t, Len = %d", s.Has(0x0041), s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear", s.Len())
	}
}

func TestAddrSetRange(t *testing.T) {
	tests := []struct {
		start, end int
	}{
		{0, 1},
		{3, 17},
		{60, 70},
		{0, 64},
		{64, 128},
		{100, 1000},
		{0xFFF0, 0x10000},
		{0, 0x10000},
	}

	for _, tt := range tests {
		var s AddrSet
		if err := s.AddRange(tt.start, tt.end); err != nil {
			t.Fatalf("AddRange(%#x, %#x) = %v", tt.start, tt.end, err)
		}
		for i := range numAddrs {
			want := i >= tt.start && i < tt.end
			if s.Has(uint16(i)) != want {
				t.Fatalf("AddRange(%#x, %#x): Has(%#x) = %t, want %t", tt.start, tt.end, i, !want, want)
			}
		}
		if s.Len() != tt.end-tt.start {
			t.Errorf("Len() = %d, want %d", s.Len(), tt.end-tt.start)
		}
	}

	var s AddrSet
	for _, r := range [][2]int{{5, 5}, {6, 5}, {-1, 4}, {0, 0x10001}} {
		if err := s.AddRange(r[0], r[1]); err == nil {
			t.Errorf("AddRange(%#x, %#x) should fail", r[0], r[1])
		}
	}
}
