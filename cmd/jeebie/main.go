package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/disasm"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A simple gameboy emulator"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a 256 byte boot ROM, the post-boot state is used when omitted",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots (default: temp directory in headless mode, working directory otherwise)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Start the interactive debugger instead of the display",
		},
		cli.BoolFlag{
			Name:  "disassemble",
			Usage: "Print a disassembly of the ROM and exit",
		},
		cli.StringFlag{
			Name:  "start-address",
			Usage: "First address to disassemble (default: 0x0000 for a boot rom, 0x0100 otherwise)",
		},
		cli.BoolFlag{
			Name:  "serial",
			Usage: "Print bytes sent over the link port to stdout",
		},
		cli.BoolFlag{
			Name:  "randomize-ram",
			Usage: "Fill work RAM with noise at power on",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "Seed for --randomize-ram",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	setupLogging(c.Bool("verbose"))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	if c.Bool("disassemble") {
		return disassemble(romPath, c.String("start-address"))
	}

	opts, err := machineOptions(c)
	if err != nil {
		return err
	}
	emu, err := jeebie.NewWithFile(romPath, opts...)
	if err != nil {
		return err
	}
	slog.Info("cartridge ready", "title", emu.Cartridge().Title())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case c.Bool("debug"):
		return debug.New(emu, os.Stdin, os.Stdout).Run(ctx)
	case c.Bool("headless"):
		snapshots, err := render.NewSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return err
		}
		return render.RunHeadless(ctx, emu, c.Int("frames"), snapshots)
	default:
		renderer, err := render.NewTerminalRenderer(emu, c.String("snapshot-dir"))
		if err != nil {
			return err
		}
		return renderer.Run(ctx)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func machineOptions(c *cli.Context) ([]jeebie.Option, error) {
	var opts []jeebie.Option

	if path := c.String("boot-rom"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading boot rom: %w", err)
		}
		opts = append(opts, jeebie.WithBootROM(data))
	}
	if c.Bool("randomize-ram") {
		opts = append(opts, jeebie.WithRandomizedRAM(c.Int64("seed")))
	}
	if c.Bool("serial") {
		opts = append(opts, jeebie.WithSerialOutput(os.Stdout))
	}

	return opts, nil
}

func disassemble(romPath, start string) error {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}
	address, err := startAddress(start, len(data))
	if err != nil {
		return err
	}
	return disasm.WriteImage(os.Stdout, data, address)
}

// startAddress parses --start-address. Without one, a boot rom is listed from
// 0x0000 and a cartridge from its entry point.
func startAddress(flag string, size int) (uint16, error) {
	if flag == "" {
		if size == memory.BootROMSize {
			return 0x0000, nil
		}
		return 0x0100, nil
	}
	address, err := debug.ParseNumber(flag)
	if err != nil || address < 0 || address > 0xFFFF {
		return 0, fmt.Errorf("invalid start address %q", flag)
	}
	return uint16(address), nil
}
