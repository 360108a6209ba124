// Package debug implements an interactive line-oriented monitor on top of a
// running machine: breakpoints, stepping, memory inspection and listings.
package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/disasm"
)

const (
	defaultListing = 16
	dumpRowBytes   = 8

	// continue checks for cancellation every this many instructions
	cancelCheckInterval = 1024
)

// Target is the machine being debugged.
type Target interface {
	Step() (int, error)
	Registers() cpu.Registers
	Peek(address uint16) uint8
	Poke(address uint16, value uint8)
	AddBreakpoint(pc uint16)
	RemoveBreakpoint(pc uint16)
	Breakpoints() []uint16
}

// Debugger reads commands from in and writes results to out.
type Debugger struct {
	target Target
	in     *bufio.Scanner
	out    io.Writer

	lastCmd  string
	lastArgs []string
	nextList uint16
	quit     bool
}

// New creates a debugger attached to target.
func New(target Target, in io.Reader, out io.Writer) *Debugger {
	return &Debugger{
		target: target,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run reads and executes commands until q, end of input, or ctx is done.
// Machine errors such as illegal opcodes are reported and the session goes on.
func (d *Debugger) Run(ctx context.Context) error {
	slog.Info("debugger started")
	fmt.Fprintln(d.out, "Type q or CTRL+D to quit, h for help.")

	for !d.quit {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if !strings.HasPrefix(d.lastCmd, "l") {
			d.list(d.target.Registers().PC, 1)
		}
		fmt.Fprintf(d.out, "@$%04x > ", d.target.Registers().PC)
		if !d.in.Scan() {
			fmt.Fprintln(d.out)
			return d.in.Err()
		}

		fields := strings.Fields(strings.ToLower(d.in.Text()))
		if len(fields) == 0 {
			d.Repeat(ctx)
			continue
		}
		d.Execute(ctx, fields[0], fields[1:])
	}
	return nil
}

// Repeat runs the previous command again. A listing continues where the
// previous one ended.
func (d *Debugger) Repeat(ctx context.Context) {
	if d.lastCmd == "" {
		return
	}
	if strings.HasPrefix(d.lastCmd, "l") {
		d.Execute(ctx, "l", []string{fmt.Sprintf("$%x", d.nextList)})
		return
	}
	d.Execute(ctx, d.lastCmd, d.lastArgs)
}

// Execute runs a single command. Only the first letter of cmd matters.
func (d *Debugger) Execute(ctx context.Context, cmd string, args []string) {
	if cmd == "" {
		return
	}

	switch cmd[0] {
	case 'q':
		d.quit = true
	case 's', 'n':
		d.step()
	case 'b':
		d.breakpoints(args)
	case 'c':
		target := numberArg(args, 0, -1)
		if target >= 0 {
			target &= 0xFFFF
		}
		d.continueTo(ctx, target)
	case 'r':
		fmt.Fprintln(d.out, d.target.Registers())
	case 'h', '?':
		d.help()
	case 'm':
		start := numberArg(args, 0, 0)
		end := numberArg(args, 1, start+dumpRowBytes)
		d.dump(start, end)
	case 'z':
		if len(args) == 0 {
			fmt.Fprintln(d.out, "usage: z address [value]")
			return
		}
		address, err := ParseNumber(args[0])
		if err != nil {
			fmt.Fprintln(d.out, err)
			return
		}
		d.target.Poke(uint16(address), uint8(numberArg(args, 1, 0)))
	case 'l':
		address := int(d.target.Registers().PC)
		count := defaultListing
		var err error
		if len(args) > 0 {
			if address, err = ParseNumber(args[0]); err != nil {
				fmt.Fprintln(d.out, err)
				return
			}
		}
		if len(args) > 1 {
			if count, err = ParseNumber(args[1]); err != nil {
				fmt.Fprintln(d.out, err)
				return
			}
		}
		d.nextList = d.list(uint16(address), count)
	default:
		fmt.Fprintf(d.out, "Unknown command: %s\n", cmd)
		return
	}

	d.lastCmd, d.lastArgs = cmd, args
}

func (d *Debugger) step() bool {
	if _, err := d.target.Step(); err != nil {
		fmt.Fprintf(d.out, "\n*** %v\n\n", err)
		return false
	}
	return true
}

// continueTo steps until PC reaches a breakpoint or target (when not -1).
func (d *Debugger) continueTo(ctx context.Context, target int) {
	stops := make(map[uint16]struct{})
	for _, bp := range d.target.Breakpoints() {
		stops[bp] = struct{}{}
	}
	if target >= 0 {
		stops[uint16(target)] = struct{}{}
	}

	for n := 1; ; n++ {
		if !d.step() {
			return
		}
		if _, ok := stops[d.target.Registers().PC]; ok {
			return
		}
		if n%cancelCheckInterval == 0 && ctx.Err() != nil {
			fmt.Fprintln(d.out, "interrupted")
			return
		}
	}
}

func (d *Debugger) breakpoints(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, "Breakpoints:")
		for _, bp := range d.target.Breakpoints() {
			fmt.Fprintf(d.out, "  $%04x\n", bp)
		}
		return
	}

	for _, arg := range args {
		n, err := ParseNumber(arg)
		if err != nil {
			fmt.Fprintln(d.out, err)
			continue
		}
		if n < 0 {
			d.target.RemoveBreakpoint(uint16(-n))
			fmt.Fprintf(d.out, "Removed $%04x\n", uint16(-n))
			continue
		}
		d.target.AddBreakpoint(uint16(n))
		fmt.Fprintf(d.out, "Breaking on $%04x\n", uint16(n))
	}
}

// dump prints [start, end) eight bytes per row.
func (d *Debugger) dump(start, end int) {
	for row := start; row < end; row += dumpRowBytes {
		cells := make([]string, 0, dumpRowBytes)
		for a := row; a < min(row+dumpRowBytes, end); a++ {
			cells = append(cells, fmt.Sprintf("0x%02x", d.target.Peek(uint16(a))))
		}
		fmt.Fprintf(d.out, "$%04x:  %s\n", uint16(row), strings.Join(cells, " "))
	}
}

// list prints count instructions from address and returns the address
// following the last one.
func (d *Debugger) list(address uint16, count int) uint16 {
	lines := disasm.DisassembleRange(address, count, d.target)
	pc := d.target.Registers().PC
	next := address
	for _, line := range lines {
		fmt.Fprintln(d.out, disasm.FormatDisassemblyLine(line, line.Address == pc))
		next = line.Address + uint16(line.Length)
	}
	return next
}

func (d *Debugger) help() {
	fmt.Fprint(d.out, `COMMANDS
  b [address / -address]  list, add and remove breakpoints
  c [address]             continue until a breakpoint or address
  enter                   repeat last command
  l [address] [N]         disassemble N instructions from address
  m start [end]           dump memory, eight bytes by default
  q or ctrl+d             quit
  r                       show registers
  s or n                  run the next instruction
  z address [value]       set memory location to value (default zero)

Numbers can be written in decimal, binary or hexadecimal: 123 0x7b $7b 0b1111011.
`)
}
