package tests

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"mos6502/emu/log"
	"mos6502/hw"
)

var modTests = log.NewModule("tests")

// Suites maps the name of a SingleStepTests suite to its CPU model.
var Suites = map[string]hw.Model{
	"6502":    hw.NMOS,
	"nes6502": hw.Ricoh2A03,
}

const urlfmt = `https://raw.githubusercontent.com/SingleStepTests/65x02/main/%s/v1/%02x.json`

// Options controls RunDir.
type Options struct {
	Model hw.Model
	Jobs  int  // number of files run in parallel, 0 means one per CPU
	All   bool // also run opcodes whose behaviour is approximated
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.NumCPU()
	}
	return o.Jobs
}

// RunDir runs the vector files of dir, one per opcode and named after it
// (a9.json). Missing files and approximated opcodes are reported as skipped.
func RunDir(ctx context.Context, dir string, opts Options) ([]Result, error) {
	results := make([]Result, 256)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs())

	for opcode := range 256 {
		results[opcode] = Result{Opcode: uint8(opcode), Skipped: true}
		if !opts.All && hw.Approximated(uint8(opcode)) {
			continue
		}

		path := filepath.Join(dir, fmt.Sprintf("%02x.json", opcode))
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := RunFile(path, opts.Model)
			if err != nil {
				return err
			}
			res.Opcode = uint8(opcode)
			results[opcode] = res

			modTests.DebugZ("Vector file done").
				String("file", path).
				Int("total", res.Total).
				Int("failed", res.Failed).
				End()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Failed returns the results with failures, in opcode order.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Failed > 0 {
			failed = append(failed, r)
		}
	}
	slices.SortFunc(failed, func(a, b Result) int { return int(a.Opcode) - int(b.Opcode) })
	return failed
}

// Fetch downloads the 256 vector files of suite into dest. Files are first
// downloaded in a temporary directory which is then renamed, so that dest is
// either complete or absent.
func Fetch(ctx context.Context, suite, dest string, jobs int) error {
	if _, ok := Suites[suite]; !ok {
		return errors.Errorf("unknown suite %q", suite)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmpdir, err := os.MkdirTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpdir)

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for opcode := range 256 {
		url := fmt.Sprintf(urlfmt, suite, opcode)
		path := filepath.Join(tmpdir, fmt.Sprintf("%02x.json", opcode))
		g.Go(func() error {
			return download(ctx, url, path)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "fetch vectors")
	}

	if err := os.Rename(tmpdir, dest); err != nil {
		return err
	}
	modTests.InfoZ("Vectors downloaded").String("suite", suite).String("dir", dest).End()
	return nil
}

func download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET %s: %s", url, resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	modTests.DebugZ("Downloaded").String("url", url).End()
	return f.Close()
}
