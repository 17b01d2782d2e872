package tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/go-cmp/cmp"

	"mos6502/hw"
)

const ldaVectors = `[
{
	"name": "a9 42 00",
	"initial": {"pc": 512, "s": 253, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[512, 169], [513, 66]]},
	"final": {"pc": 514, "s": 253, "a": 66, "x": 0, "y": 0, "p": 36, "ram": [[512, 169], [513, 66]]},
	"cycles": [[512, 169, "read"], [513, 66, "read"]]
},
{
	"name": "a9 00 00",
	"initial": {"pc": 1024, "s": 16, "a": 7, "x": 1, "y": 2, "p": 164, "ram": [[1024, 169], [1025, 0]]},
	"final": {"pc": 1026, "s": 16, "a": 0, "x": 1, "y": 2, "p": 38, "ram": [[1024, 169], [1025, 0]]},
	"cycles": [[1024, 169, "read"], [1025, 0, "read"]]
}
]`

// wrong accumulator and cycle count.
const badVector = `[
{
	"name": "a9 42 00",
	"initial": {"pc": 512, "s": 253, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[512, 169], [513, 66]]},
	"final": {"pc": 514, "s": 253, "a": 67, "x": 0, "y": 0, "p": 36, "ram": [[512, 169], [513, 66]]},
	"cycles": [[512, 169, "read"], [513, 66, "read"], [514, 0, "read"]]
}
]`

// PHP: the pushed status has B and U set, P itself only differs in those.
const phpVector = `[
{
	"name": "08 00 00",
	"initial": {"pc": 768, "s": 255, "a": 0, "x": 0, "y": 0, "p": 195, "ram": [[768, 8]]},
	"final": {"pc": 769, "s": 254, "a": 0, "x": 0, "y": 0, "p": 227, "ram": [[768, 8], [511, 243]]},
	"cycles": [[768, 8, "read"], [769, 0, "read"], [511, 243, "write"]]
}
]`

func TestDecodeVectors(t *testing.T) {
	vecs, err := DecodeVectors([]byte(ldaVectors))
	if err != nil {
		t.Fatal(err)
	}

	want := Vector{
		Name: "a9 42 00",
		Initial: State{
			PC: 512, S: 253, P: 36,
			RAM: []RAMCell{{512, 169}, {513, 66}},
		},
		Final: State{
			PC: 514, S: 253, A: 66, P: 36,
			RAM: []RAMCell{{512, 169}, {513, 66}},
		},
		Cycles: 2,
	}
	if len(vecs) != 2 {
		t.Fatalf("decoded %d vectors, want 2", len(vecs))
	}
	if diff := cmp.Diff(want, vecs[0]); diff != "" {
		t.Errorf("vector differs (-want +got):\n%s", diff)
	}

	op, err := vecs[0].Opcode()
	if err != nil || op != 0xA9 {
		t.Errorf("Opcode() = %02X, %v, want A9", op, err)
	}
}

func TestDecodeVectorsErrors(t *testing.T) {
	for _, in := range []string{
		`{}`,
		`[{"initial": {"pc": 65536}}]`,
		`[{"initial": {"a": -1}}]`,
		`[{"name": 12}]`,
	} {
		if _, err := DecodeVectors([]byte(in)); err == nil {
			t.Errorf("DecodeVectors(%s) should fail", in)
		}
	}
}

func TestRunVectors(t *testing.T) {
	for _, js := range []string{ldaVectors, phpVector} {
		vecs, err := DecodeVectors([]byte(js))
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range vecs {
			if err := v.Run(hw.NMOS); err != nil {
				t.Errorf("%s: %v", v.Name, err)
			}
		}
	}

	vecs, err := DecodeVectors([]byte(badVector))
	if err != nil {
		t.Fatal(err)
	}
	if err := vecs[0].Run(hw.NMOS); !errors.Is(err, ErrMismatch) {
		t.Errorf("Run() = %v, want %v", err, ErrMismatch)
	}
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a9.json"), []byte(ldaVectors), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a5.json"), []byte(badVector), 0o644); err != nil {
		t.Fatal(err)
	}
	// approximated opcode, skipped.
	if err := os.WriteFile(filepath.Join(dir, "02.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := RunDir(context.Background(), dir, Options{Model: hw.NMOS, Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}

	if r := results[0xA9]; r.Skipped || r.Total != 2 || r.Failed != 0 {
		t.Errorf("a9: %+v", r)
	}
	if r := results[0x02]; !r.Skipped {
		t.Errorf("02 should be skipped")
	}

	failed := Failed(results)
	if len(failed) != 1 || failed[0].Opcode != 0xA5 || failed[0].Failed != 1 {
		t.Fatalf("Failed() = %+v", failed)
	}
	if !errors.Is(failed[0].Failures[0], ErrMismatch) {
		t.Errorf("failure = %v, want %v", failed[0].Failures[0], ErrMismatch)
	}
}

// TestSingleStepSuites runs the full suites found under testdata, fetched with
// 'mos6502 check --fetch testdata'.
func TestSingleStepSuites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long test")
	}

	for suite, model := range Suites {
		t.Run(suite, func(t *testing.T) {
			dir := filepath.Join("testdata", suite)
			if _, err := os.Stat(dir); err != nil {
				t.Skipf("%s not found", dir)
			}

			results, err := RunDir(context.Background(), dir, Options{Model: model})
			if err != nil {
				t.Fatal(err)
			}
			for _, r := range Failed(results) {
				t.Errorf("opcode %02X (%s): %d/%d failed, first: %v",
					r.Opcode, hw.Mnemonic(r.Opcode), r.Failed, r.Total, r.Failures[0])
			}
		})
	}
}
