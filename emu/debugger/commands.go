package debugger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/go-faster/errors"

	"mos6502/emu"
)

type handlerFunc func(ctx context.Context, mon *Monitor, args []string) error

type command struct {
	name    string
	args    string
	help    string
	handler handlerFunc
}

// commands finds commands by name or by any unambiguous prefix of it.
type commands struct {
	list  []command
	exact map[string]*command
	tree  *prefixtree.Tree[*command]
}

func newCommands(list []command) *commands {
	c := &commands{
		list:  list,
		exact: make(map[string]*command, len(list)),
		tree:  prefixtree.New[*command](),
	}
	for i := range c.list {
		c.exact[c.list[i].name] = &c.list[i]
		c.tree.Add(c.list[i].name, &c.list[i])
	}
	return c
}

func (c *commands) find(name string) (*command, error) {
	name = strings.ToLower(name)
	if cmd, ok := c.exact[name]; ok {
		return cmd, nil
	}
	cmd, err := c.tree.FindValue(name)
	if err != nil {
		return nil, errors.Wrapf(err, "command %q", name)
	}
	return cmd, nil
}

var commandList []command

func init() {
	// help refers to commandList, hence the init.
	commandList = []command{
		{"registers", "", "show CPU registers", cmdRegisters},
		{"step", "[n]", "execute n instructions (default 1)", cmdStep},
		{"continue", "[cycles]", "run until stopped, or for a number of cycles", cmdContinue},
		{"break", "ADDR", "set a breakpoint", cmdBreak},
		{"delete", "ADDR", "delete a breakpoint", cmdDelete},
		{"breakpoints", "", "list breakpoints and watchpoints", cmdBreakpoints},
		{"watch", "ADDR", "stop on memory accesses at ADDR", cmdWatch},
		{"unwatch", "ADDR", "delete a watchpoint", cmdUnwatch},
		{"mem", "ADDR [LEN]", "dump memory", cmdMem},
		{"poke", "ADDR VAL", "write a byte to memory", cmdPoke},
		{"disasm", "[ADDR] [N]", "disassemble N instructions (default 10)", cmdDisasm},
		{"stack", "", "show the call stack", cmdStack},
		{"irq", "on|off", "set the IRQ line level", cmdIRQ},
		{"nmi", "", "trigger a non-maskable interrupt", cmdNMI},
		{"reset", "", "reset the machine", cmdReset},
		{"help", "", "show this help", cmdHelp},
		{"quit", "", "exit the monitor", cmdQuit},
	}
}

// parseAddr parses an hexadecimal address, with an optional $ or 0x prefix.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid address %q", s)
	}
	return uint16(v), nil
}

// parseCount parses a decimal count, def if args has no element at index i.
func parseCount(args []string, i int, def uint64) (uint64, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid count %q", args[i])
	}
	return v, nil
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return errors.Errorf("usage: %s", usage)
	}
	return nil
}

func cmdRegisters(_ context.Context, mon *Monitor, _ []string) error {
	mon.printRegs()
	return nil
}

func cmdStep(_ context.Context, mon *Monitor, args []string) error {
	n, err := parseCount(args, 0, 1)
	if err != nil {
		return err
	}
	for range n {
		if err := mon.cpu.Step(); err != nil {
			return err
		}
		if mon.cpu.IsHalted() {
			break
		}
	}
	mon.reportStop()
	mon.printRegs()
	mon.printNext()
	return nil
}

func cmdContinue(ctx context.Context, mon *Monitor, args []string) error {
	if len(args) > 0 {
		n, err := parseCount(args, 0, 0)
		if err != nil {
			return err
		}
		// Cycles+0 is an unbounded budget right after a reset.
		if n == 0 {
			return errors.New("usage: continue [cycles], cycles > 0")
		}
		if err := mon.cpu.Execute(mon.cpu.Cycles + n); err != nil {
			return err
		}
	} else {
		if err := mon.m.Run(ctx); err != nil && !errors.Is(err, emu.ErrTrapped) {
			return err
		}
	}
	mon.reportStop()
	mon.printRegs()
	mon.printNext()
	return nil
}

func cmdBreak(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 1, "break ADDR"); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	mon.breakpoints.Add(addr)
	mon.printf("breakpoint set at $%04X\n", addr)
	return nil
}

func cmdDelete(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 1, "delete ADDR"); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if !mon.breakpoints.Has(addr) {
		return errors.Errorf("no breakpoint at $%04X", addr)
	}
	mon.breakpoints.Remove(addr)
	return nil
}

func cmdBreakpoints(_ context.Context, mon *Monitor, _ []string) error {
	for _, addr := range mon.breakpoints.Addrs() {
		mon.printf("break $%04X\n", addr)
	}
	for _, addr := range mon.watchpoints.Addrs() {
		mon.printf("watch $%04X\n", addr)
	}
	return nil
}

func cmdWatch(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 1, "watch ADDR"); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	mon.watchpoints.Add(addr)
	mon.printf("watchpoint set at $%04X\n", addr)
	return nil
}

func cmdUnwatch(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 1, "unwatch ADDR"); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if !mon.watchpoints.Has(addr) {
		return errors.Errorf("no watchpoint at $%04X", addr)
	}
	mon.watchpoints.Remove(addr)
	return nil
}

func cmdMem(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 1, "mem ADDR [LEN]"); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	n, err := parseCount(args, 1, 64)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for i := uint64(0); i < n; i++ {
		a := int(addr) + int(i)
		val, err := mon.m.Mem.Get(a)
		if err != nil {
			return err
		}
		if i%16 == 0 {
			if i != 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%04X:", a)
		}
		fmt.Fprintf(&sb, " %02X", val)
	}
	mon.printf("%s\n", sb.String())
	return nil
}

func cmdPoke(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 2, "poke ADDR VAL"); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	val, err := strconv.ParseInt(strings.TrimPrefix(args[1], "$"), 16, 32)
	if err != nil {
		return errors.Wrapf(err, "invalid value %q", args[1])
	}
	_, err = mon.m.Mem.Set(int(addr), int(val))
	return err
}

func cmdDisasm(_ context.Context, mon *Monitor, args []string) error {
	addr := mon.cpu.PC
	if len(args) > 0 {
		var err error
		if addr, err = parseAddr(args[0]); err != nil {
			return err
		}
	}
	n, err := parseCount(args, 1, 10)
	if err != nil {
		return err
	}
	for range n {
		op := mon.cpu.Disasm(addr)
		mon.printf("%s\n", op)
		addr += uint16(op.Len())
	}
	return nil
}

func cmdStack(_ context.Context, mon *Monitor, _ []string) error {
	for i, fi := range mon.cstack.build(mon.cpu.PC) {
		mon.printf("#%-2d %s in %s\n", i, fi[1], fi[0])
	}
	return nil
}

func cmdIRQ(_ context.Context, mon *Monitor, args []string) error {
	if err := needArgs(args, 1, "irq on|off"); err != nil {
		return err
	}
	switch strings.ToLower(args[0]) {
	case "on", "1":
		mon.cpu.SetIRQ(true)
	case "off", "0":
		mon.cpu.SetIRQ(false)
	default:
		return errors.New("usage: irq on|off")
	}
	return nil
}

func cmdNMI(_ context.Context, mon *Monitor, _ []string) error {
	mon.cpu.NMI()
	return nil
}

func cmdReset(_ context.Context, mon *Monitor, _ []string) error {
	if err := mon.m.Reset(); err != nil {
		return err
	}
	mon.printRegs()
	return nil
}

func cmdHelp(_ context.Context, mon *Monitor, _ []string) error {
	mon.printf("Commands (any unambiguous prefix is accepted):\n")
	for _, c := range commandList {
		mon.printf("  %-24s %s\n", strings.TrimSpace(c.name+" "+c.args), c.help)
	}
	return nil
}

func cmdQuit(context.Context, *Monitor, []string) error {
	return errQuit
}
