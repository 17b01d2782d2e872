package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"

	"github.com/go-faster/errors"
	"golang.org/x/term"

	"mos6502/emu"
	"mos6502/emu/debugger"
	"mos6502/emu/log"
	"mos6502/hw"
	"mos6502/hw/hwio"
	"mos6502/tests"
)

func main() {
	cfg := parseArgs(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.mode {
	case runMode:
		runMachine(ctx, cfg.Run)
	case monitorMode:
		runMonitor(ctx, cfg.Monitor)
	case disasmMode:
		disasmFile(cfg.Disasm)
	case checkMode:
		runCheck(ctx, cfg.Check)
	case configMode:
		checkf(emu.EncodeConfig(os.Stdout, emu.DefaultConfig()), "failed to encode config")
	case versionMode:
		printVersion()
	}
}

func loadMachine(path string, trace *outfile, maxCycles uint64) *emu.Machine {
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration")
	if maxCycles != 0 {
		cfg.Machine.MaxCycles = maxCycles
	}
	if trace != nil {
		cfg.TraceOut = trace
	}

	m, err := emu.New(cfg)
	checkf(err, "failed to create machine")
	return m
}

func runMachine(ctx context.Context, args Run) {
	m := loadMachine(args.ConfigPath, args.Trace, args.MaxCycles)

	err := m.Run(ctx)
	if args.Trace != nil {
		args.Trace.Close()
	}

	log.ModEmu.InfoZ("Machine stopped").
		Hex16("pc", m.CPU.PC).
		Uint("cycles", m.CPU.Cycles).
		End()
	fmt.Fprintf(os.Stderr, "stopped at $%04X after %d cycles\n", m.CPU.PC, m.CPU.Cycles)
	checkf(err, "execution failed")
}

func runMonitor(ctx context.Context, args Monitor) {
	m := loadMachine(args.ConfigPath, args.Trace, 0)
	if args.Trace != nil {
		defer args.Trace.Close()
	}

	mon := debugger.NewMonitor(m, os.Stdout)
	prompt := term.IsTerminal(int(os.Stdin.Fd()))
	if prompt {
		fmt.Println("Type 'help' for the list of commands.")
	}
	if err := mon.Run(ctx, os.Stdin, prompt); err != nil && !errors.Is(err, context.Canceled) {
		checkf(err, "monitor")
	}
}

func disasmFile(args Disasm) {
	buf, err := os.ReadFile(args.Path)
	checkf(err, "failed to read file")

	mem, err := hwio.New(hwio.MaxSize)
	checkf(err, "failed to create memory")
	checkf(mem.Load(int(args.Org), buf), "failed to load file")

	pc := int(max(args.Start, args.Org))
	end := int(args.Org) + len(buf)
	for n := 0; pc < end && (args.Count == 0 || n < args.Count); n++ {
		op := hw.Disasm(mem, uint16(pc))
		fmt.Println(op)
		pc += op.Len()
	}
}

func runCheck(ctx context.Context, args Check) {
	failed := false
	for _, suite := range args.Suite {
		model := tests.Suites[suite]
		dir := filepath.Join(args.Dir, suite)

		if _, err := os.Stat(dir); err != nil {
			if !args.Fetch {
				fatalf("%s not found (use --fetch to download it)", dir)
			}
			fmt.Fprintf(os.Stderr, "downloading %s vectors into %s\n", suite, dir)
			checkf(tests.Fetch(ctx, suite, dir, args.Jobs), "failed to fetch %s vectors", suite)
		}

		results, err := tests.RunDir(ctx, dir, tests.Options{
			Model: model,
			Jobs:  args.Jobs,
			All:   args.All,
		})
		checkf(err, "failed to run %s vectors", suite)

		var nfiles, nvecs, nskipped int
		for _, r := range results {
			if r.Skipped {
				nskipped++
				continue
			}
			nfiles++
			nvecs += r.Total
		}
		fails := tests.Failed(results)
		for _, r := range fails {
			fmt.Printf("%s: opcode %02X (%s): %d/%d failed\n", suite, r.Opcode, hw.Mnemonic(r.Opcode), r.Failed, r.Total)
			for _, err := range r.Failures {
				fmt.Printf("\t%v\n", err)
			}
		}
		fmt.Printf("%s: %d opcodes (%d vectors), %d failed, %d skipped\n", suite, nfiles, nvecs, len(fails), nskipped)
		failed = failed || len(fails) > 0
	}

	if failed {
		os.Exit(1)
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("mos6502", version)
}
