package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-faster/errors"

	"mos6502/emu/log"
)

type mode byte

const (
	runMode     mode = iota // Run a machine
	monitorMode             // Run a machine in the monitor
	disasmMode              // Disassemble a binary
	checkMode               // Run conformance vectors
	configMode              // Print default config
	versionMode             // Show version
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run a machine until it traps or stops."`
		Monitor Monitor `cmd:"" help:"Run a machine in the interactive monitor."`
		Disasm  Disasm  `cmd:"" help:"Disassemble a binary file."`
		Check   Check   `cmd:"" help:"Run the single-step processor conformance vectors."`
		Config  Config  `cmd:"" help:"Print the default machine configuration."`
		Version Version `cmd:"" help:"Show version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		ConfigPath string   `arg:"" name:"config" help:"${config_help}" type:"existingfile"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		MaxCycles  uint64   `name:"max-cycles" help:"Stop after that many cycles (overrides the configuration)."`
	}

	Monitor struct {
		ConfigPath string   `arg:"" name:"config" help:"${config_help}" type:"existingfile"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
	}

	Disasm struct {
		Path  string `arg:"" name:"file" help:"Raw binary file." type:"existingfile"`
		Org   addr   `name:"org" help:"Load address of the file." default:"0"`
		Start addr   `name:"start" help:"Address of the first instruction (defaults to org)."`
		Count int    `name:"count" help:"Number of instructions, 0 for the whole file." default:"0"`
	}

	Check struct {
		Dir   string   `arg:"" name:"dir" help:"Directory holding a sub-directory per suite." type:"path"`
		Suite []string `name:"suite" help:"Suites to run." default:"6502,nes6502" enum:"6502,nes6502"`
		Fetch bool     `name:"fetch" help:"Download missing suites."`
		Jobs  int      `name:"jobs" help:"Number of vector files run in parallel (0: one per CPU)." default:"0"`
		All   bool     `name:"all" help:"Also run opcodes whose behaviour is approximated."`
	}

	Config  struct{}
	Version struct{}
)

var vars = kong.Vars{
	"config_help": "Machine configuration file (TOML).",
	"log_help":    "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("mos6502"),
		kong.Description("Cycle-counting MOS 6502 emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "run <config>":
		cfg.mode = runMode
	case "monitor <config>":
		cfg.mode = monitorMode
	case "disasm <file>":
		cfg.mode = disasmMode
	case "check <dir>":
		cfg.mode = checkMode
	case "config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	default:
		fatalf("unexpected command %q", ctx.Command())
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return errors.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return errors.New("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return errors.New("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

// addr is a 16-bit address given in hexadecimal, with an optional $ or 0x
// prefix.
type addr uint16

// Decode implements kong.MapperValue interface.
func (a *addr) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("address", &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return errors.Errorf("invalid address %q", s)
	}
	*a = addr(v)
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
