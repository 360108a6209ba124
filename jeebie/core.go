package jeebie

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/serial"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// ErrInvalidBootROM is returned when the boot program is not 256 bytes long.
var ErrInvalidBootROM = errors.New("invalid boot rom")

// dividerSeed is the internal counter value the boot program leaves behind.
const dividerSeed = 0xABCC

// BreakpointError is returned by RunUntilFrame when execution reaches a
// breakpoint. The instruction at PC has not been executed yet.
type BreakpointError struct {
	PC uint16
}

func (e *BreakpointError) Error() string {
	return fmt.Sprintf("breakpoint at 0x%04X", e.PC)
}

// postBootIO is the I/O state left behind by the boot program.
var postBootIO = []struct {
	address uint16
	value   uint8
}{
	{addr.P1, 0xCF},
	{addr.TIMA, 0x00},
	{addr.TMA, 0x00},
	{addr.TAC, 0x00},
	{addr.NR10, 0x80},
	{addr.NR11, 0xBF},
	{addr.NR12, 0xF3},
	{addr.NR14, 0xBF},
	{addr.NR21, 0x3F},
	{addr.NR22, 0x00},
	{addr.NR24, 0xBF},
	{addr.NR30, 0x7F},
	{addr.NR31, 0xFF},
	{addr.NR32, 0x9F},
	{addr.NR33, 0xBF},
	{addr.NR41, 0xFF},
	{addr.NR42, 0x00},
	{addr.NR43, 0x00},
	{addr.NR44, 0xBF},
	{addr.NR50, 0x77},
	{addr.NR51, 0xF3},
	{addr.NR52, 0xF1},
	{addr.LCDC, 0x91},
	{addr.SCY, 0x00},
	{addr.SCX, 0x00},
	{addr.LYC, 0x00},
	{addr.BGP, 0xFC},
	{addr.OBP0, 0xFF},
	{addr.OBP1, 0xFF},
	{addr.WY, 0x00},
	{addr.WX, 0x00},
	{addr.IF, 0xE1},
	{addr.IE, 0x00},
}

// DMG is a complete console: CPU, bus, PPU, timer, interrupts, joypad and
// link port around one cartridge.
type DMG struct {
	cfg  config
	cart *memory.Cartridge

	cpu *cpu.CPU
	mem *memory.MMU
	gpu *video.GPU

	breakpoints map[uint16]struct{}
	frameReady  bool
}

// New creates a machine running the given cartridge image.
func New(rom []byte, opts ...Option) (*DMG, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.useBootROM && len(cfg.bootROM) != memory.BootROMSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBootROM, len(cfg.bootROM), memory.BootROMSize)
	}

	cart, err := memory.ParseCartridge(rom)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	d := &DMG{
		cfg:         cfg,
		cart:        cart,
		breakpoints: make(map[uint16]struct{}),
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithFile creates a machine running the cartridge image at path.
func NewWithFile(path string, opts ...Option) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	slog.Info("rom read", "path", path, "bytes", len(data))
	return New(data, opts...)
}

func (d *DMG) init() error {
	d.mem = memory.NewWithCartridge(d.cart)

	d.gpu = video.New(d.mem.Interrupts())
	if d.cfg.strict {
		d.gpu.EnableStrictChecks()
	}
	d.mem.AttachVideo(d.gpu)

	var serialOpts []serial.LogSinkOption
	if d.cfg.serialOut != nil {
		serialOpts = append(serialOpts, serial.WithOutput(d.cfg.serialOut))
	}
	mem := d.mem
	d.mem.AttachSerial(serial.NewLogSink(func() { mem.RequestInterrupt(addr.SerialInterrupt) }, serialOpts...))

	d.cpu = cpu.New(d.mem, d.mem.Interrupts())
	d.frameReady = false

	if d.cfg.randomize {
		seed := uint64(d.cfg.seed)
		d.mem.Randomize(rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)))
	}

	if d.cfg.useBootROM {
		return d.mem.SetBootROM(d.cfg.bootROM)
	}
	d.skipBoot()
	return nil
}

// skipBoot applies the state the boot program leaves behind when it hands
// control to the cartridge at 0x0100.
func (d *DMG) skipBoot() {
	for _, reg := range postBootIO {
		d.mem.Poke(reg.address, reg.value)
	}
	d.mem.Timer().SetSeed(dividerSeed)
	d.cpu.SkipBoot()
}

// Reset power-cycles the machine with the same cartridge and options.
// Breakpoints are kept, cartridge RAM is not.
func (d *DMG) Reset() {
	if err := d.init(); err != nil {
		// the boot ROM was validated by New
		panic(err)
	}
}

// Step executes one CPU instruction (or interrupt dispatch) and advances the
// rest of the machine by the same number of cycles.
func (d *DMG) Step() (int, error) {
	cycles, err := d.cpu.Step()
	if err != nil {
		return 0, err
	}
	d.mem.Tick(cycles)
	d.gpu.Advance(cycles)
	if d.gpu.FrameReady() {
		d.frameReady = true
	}
	return cycles, nil
}

// RunUntilFrame runs until a frame completes. It stops early with a
// *BreakpointError when PC reaches a breakpoint, or with the CPU error when
// an illegal opcode is executed. The instruction at the current PC always
// runs, so calling it again continues past a breakpoint.
func (d *DMG) RunUntilFrame() error {
	start := d.gpu.Frames()
	for first := true; ; first = false {
		if !first && len(d.breakpoints) > 0 {
			pc := d.cpu.Registers().PC
			if _, ok := d.breakpoints[pc]; ok {
				return &BreakpointError{PC: pc}
			}
		}
		if _, err := d.Step(); err != nil {
			return err
		}
		if d.gpu.Frames() != start {
			return nil
		}
	}
}

// Registers returns a snapshot of the CPU registers.
func (d *DMG) Registers() cpu.Registers {
	return d.cpu.Registers()
}

// SetRegisters replaces the CPU registers and clears HALT, STOP and any fault.
func (d *DMG) SetRegisters(r cpu.Registers) {
	d.cpu.SetRegisters(r)
}

// Halted reports whether the CPU is waiting in HALT.
func (d *DMG) Halted() bool {
	return d.cpu.Halted()
}

// Stopped reports whether the CPU is in STOP mode.
func (d *DMG) Stopped() bool {
	return d.cpu.Stopped()
}

// Peek reads memory without side effects.
func (d *DMG) Peek(address uint16) uint8 {
	return d.mem.Peek(address)
}

// Poke writes memory without side effects. ROM ignores pokes.
func (d *DMG) Poke(address uint16, value uint8) {
	d.mem.Poke(address, value)
}

// AddBreakpoint stops RunUntilFrame before the instruction at pc executes.
func (d *DMG) AddBreakpoint(pc uint16) {
	d.breakpoints[pc] = struct{}{}
}

// RemoveBreakpoint removes a breakpoint, if set.
func (d *DMG) RemoveBreakpoint(pc uint16) {
	delete(d.breakpoints, pc)
}

// Breakpoints returns every breakpoint address in ascending order.
func (d *DMG) Breakpoints() []uint16 {
	return slices.Sorted(maps.Keys(d.breakpoints))
}

// Frame returns the last completed frame.
func (d *DMG) Frame() *video.FrameBuffer {
	return d.gpu.Frame()
}

// FrameReady reports whether a frame completed since the last call.
func (d *DMG) FrameReady() bool {
	ready := d.frameReady
	d.frameReady = false
	return ready
}

// FrameCount returns the number of frames completed since power on.
func (d *DMG) FrameCount() uint64 {
	return d.gpu.Frames()
}

// InstructionCount returns the number of instructions executed since power on.
func (d *DMG) InstructionCount() uint64 {
	return d.cpu.Instructions()
}

// Cartridge returns the inserted cartridge.
func (d *DMG) Cartridge() *memory.Cartridge {
	return d.cart
}

// BankState reports the cartridge banking registers.
func (d *DMG) BankState() memory.BankState {
	return d.mem.BankState()
}

// Press holds a joypad key down. A new press wakes the CPU from STOP.
func (d *DMG) Press(key memory.JoypadKey) {
	if d.mem.Joypad().Press(key) {
		d.cpu.ResumeFromStop()
	}
}

// Release lets go of a joypad key.
func (d *DMG) Release(key memory.JoypadKey) {
	d.mem.Joypad().Release(key)
}
