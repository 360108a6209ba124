package video

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// GpuMode is the PPU mode as reported in STAT bits 1-0.
type GpuMode uint8

const (
	hblank GpuMode = iota
	vblank
	oamRead
	vramRead
)

func (m GpuMode) String() string {
	switch m {
	case hblank:
		return "HBlank"
	case vblank:
		return "VBlank"
	case oamRead:
		return "OAM"
	case vramRead:
		return "Transfer"
	}
	return fmt.Sprintf("GpuMode(%d)", uint8(m))
}

const (
	hblankCycles       = 204
	oamScanlineCycles  = 80
	vramScanlineCycles = 172
	scanlineCycles     = oamScanlineCycles + vramScanlineCycles + hblankCycles

	visibleLines = FramebufferHeight
	totalLines   = 154

	// FrameCycles is the length of one frame: 154 lines of 456 cycles.
	FrameCycles = scanlineCycles * totalLines
)

// LCDC (LCD Control) Register bit values
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On)
const (
	lcdDisplayEnable       uint8 = 7
	windowTileMapSelect    uint8 = 6
	windowDisplayEnable    uint8 = 5
	bgWindowTileDataSelect uint8 = 4
	bgTileMapDisplaySelect uint8 = 3
	spriteSize             uint8 = 2
	spriteDisplayEnable    uint8 = 1
	bgDisplay              uint8 = 0
)

// STAT interrupt source selects.
const (
	statHBlank    uint8 = 3
	statVBlank    uint8 = 4
	statOAM       uint8 = 5
	statLYC       uint8 = 6
	statWriteMask uint8 = 0x78
)

// Requester receives the VBlank and STAT interrupts.
type Requester interface {
	Request(addr.Interrupt)
}

// GPU is the DMG picture processing unit. It owns VRAM, OAM and the LCD
// registers and is attached to the bus as its video device.
type GPU struct {
	irq Requester

	vram [0x2000]uint8
	oam  [addr.OAMSize]uint8

	lcdc, stat      uint8
	scy, scx        uint8
	ly, lyc         uint8
	bgp, obp0, obp1 uint8
	wy, wx          uint8

	mode GpuMode
	// cycles into the current line
	dots       int
	windowLine int
	statSignal bool
	// cycles counted while the LCD is off
	offCycles int

	frameReady  bool
	frames      uint64
	back, front *FrameBuffer

	// raw BG/window colour indices of the line being drawn
	bgIndex        [FramebufferWidth]uint8
	priorityBuffer SpritePriorityBuffer
	spriteBuffer   [maxLineSprites]Sprite

	strictChecks bool
}

// New creates a PPU with the LCD off. Interrupts are raised on irq.
func New(irq Requester) *GPU {
	g := &GPU{
		irq:   irq,
		back:  NewFrameBuffer(),
		front: NewFrameBuffer(),
	}
	g.Reset()
	return g
}

// Reset returns the PPU to its power-on state: LCD off, VRAM and OAM cleared.
func (g *GPU) Reset() {
	clear(g.vram[:])
	clear(g.oam[:])
	g.lcdc, g.stat = 0, 0
	g.scy, g.scx = 0, 0
	g.ly, g.lyc = 0, 0
	g.bgp, g.obp0, g.obp1 = 0, 0, 0
	g.wy, g.wx = 0, 0
	g.mode = hblank
	g.dots = 0
	g.windowLine = 0
	g.statSignal = false
	g.offCycles = 0
	g.frameReady = false
	g.frames = 0
	g.back.Clear()
	g.front.Clear()
}

// EnableStrictChecks makes the PPU panic as soon as LY, the mode and the dot
// counter disagree.
func (g *GPU) EnableStrictChecks() {
	g.strictChecks = true
}

// Advance simulates the PPU for a number of clock cycles.
func (g *GPU) Advance(cycles int) {
	if !g.lcdEnabled() {
		g.advanceOff(cycles)
		return
	}

	for cycles > 0 {
		remaining := g.modeEnd() - g.dots
		if cycles < remaining {
			g.dots += cycles
			break
		}
		cycles -= remaining
		g.dots += remaining
		g.endMode()
		g.updateStatSignal()
	}

	if g.strictChecks {
		g.checkInvariants()
	}
}

// advanceOff keeps presenting blank frames at the normal rate while the LCD
// is off, without touching LY or raising interrupts.
func (g *GPU) advanceOff(cycles int) {
	g.offCycles += cycles
	for g.offCycles >= FrameCycles {
		g.offCycles -= FrameCycles
		g.front.Clear()
		g.frameReady = true
		g.frames++
	}
}

func (g *GPU) modeEnd() int {
	switch g.mode {
	case oamRead:
		return oamScanlineCycles
	case vramRead:
		return oamScanlineCycles + vramScanlineCycles
	}
	return scanlineCycles
}

func (g *GPU) endMode() {
	switch g.mode {
	case oamRead:
		g.mode = vramRead
	case vramRead:
		g.drawScanline()
		g.mode = hblank
	case hblank:
		g.dots = 0
		g.ly++
		if g.ly == visibleLines {
			g.enterVBlank()
		} else {
			g.mode = oamRead
		}
	case vblank:
		g.dots = 0
		g.ly++
		if g.ly == totalLines {
			g.ly = 0
			g.windowLine = 0
			g.mode = oamRead
		}
	}
}

func (g *GPU) enterVBlank() {
	g.mode = vblank
	g.irq.Request(addr.VBlankInterrupt)
	g.back, g.front = g.front, g.back
	g.frameReady = true
	g.frames++
}

// statLine is the internal STAT interrupt line, the OR of every enabled source.
func (g *GPU) statLine() bool {
	if !g.lcdEnabled() {
		return false
	}
	return (g.mode == hblank && bit.IsSet(statHBlank, g.stat)) ||
		(g.mode == vblank && bit.IsSet(statVBlank, g.stat)) ||
		(g.mode == oamRead && bit.IsSet(statOAM, g.stat)) ||
		(g.ly == g.lyc && bit.IsSet(statLYC, g.stat))
}

// updateStatSignal requests the STAT interrupt on a rising edge of the line.
func (g *GPU) updateStatSignal() {
	line := g.statLine()
	if line && !g.statSignal {
		g.irq.Request(addr.LCDSTATInterrupt)
	}
	g.statSignal = line
}

func (g *GPU) lcdEnabled() bool {
	return bit.IsSet(lcdDisplayEnable, g.lcdc)
}

// setLCDC applies a new LCDC value. Turning the display off forces LY 0 and
// mode 0, turning it on restarts the frame at line 0.
func (g *GPU) setLCDC(value uint8) {
	wasOn := g.lcdEnabled()
	g.lcdc = value
	isOn := g.lcdEnabled()

	switch {
	case wasOn && !isOn:
		g.ly = 0
		g.dots = 0
		g.mode = hblank
		g.windowLine = 0
		g.statSignal = false
		g.offCycles = 0
	case !wasOn && isOn:
		g.ly = 0
		g.dots = 0
		g.mode = oamRead
		g.windowLine = 0
	}
}

// checkInvariants panics when the mode, LY and dot counter are inconsistent.
func (g *GPU) checkInvariants() {
	fail := func(reason string) {
		panic(fmt.Sprintf("video: %s (ly=%d mode=%s dots=%d lcdc=0x%02X)", reason, g.ly, g.mode, g.dots, g.lcdc))
	}

	if !g.lcdEnabled() {
		if g.ly != 0 || g.mode != hblank || g.dots != 0 {
			fail("LCD off but PPU is running")
		}
		return
	}
	if g.ly >= totalLines {
		fail("LY out of range")
	}
	if g.dots < 0 || g.dots >= scanlineCycles {
		fail("dot counter out of range")
	}

	want := hblank
	switch {
	case g.ly >= visibleLines:
		want = vblank
	case g.dots < oamScanlineCycles:
		want = oamRead
	case g.dots < oamScanlineCycles+vramScanlineCycles:
		want = vramRead
	}
	if g.mode != want {
		fail("mode does not match the dot counter")
	}
}

// Frame returns the last completed frame. It stays unchanged until the next
// frame completes.
func (g *GPU) Frame() *FrameBuffer {
	return g.front
}

// FrameReady reports whether a frame completed since the last call.
func (g *GPU) FrameReady() bool {
	ready := g.frameReady
	g.frameReady = false
	return ready
}

// Frames returns the number of completed frames.
func (g *GPU) Frames() uint64 {
	return g.frames
}

// LY returns the current scanline.
func (g *GPU) LY() uint8 {
	return g.ly
}

// Mode returns the current PPU mode.
func (g *GPU) Mode() GpuMode {
	return g.mode
}

func (g *GPU) vramLocked() bool {
	return g.lcdEnabled() && g.mode == vramRead
}

func (g *GPU) oamLocked() bool {
	return g.lcdEnabled() && (g.mode == oamRead || g.mode == vramRead)
}

// Read returns a byte of VRAM, OAM or an LCD register as the CPU sees it.
// VRAM reads 0xFF during transfer and OAM reads 0xFF during OAM scan and
// transfer.
func (g *GPU) Read(address uint16) uint8 {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		if g.vramLocked() {
			return 0xFF
		}
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		if g.oamLocked() {
			return 0xFF
		}
	}
	return g.Peek(address)
}

// Write stores a byte as the CPU would, honouring the access locks.
func (g *GPU) Write(address uint16, value uint8) {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		if !g.vramLocked() {
			g.vram[address-addr.VRAMStart] = value
		}
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		if !g.oamLocked() {
			g.oam[address-addr.OAMStart] = value
		}
	case address == addr.LCDC:
		g.setLCDC(value)
		g.updateStatSignal()
	case address == addr.STAT:
		g.stat = value & statWriteMask
		g.updateStatSignal()
	case address == addr.LY:
		// read only
	case address == addr.LYC:
		g.lyc = value
		g.updateStatSignal()
	default:
		g.writeRegister(address, value)
	}

	if g.strictChecks {
		g.checkInvariants()
	}
}

// Peek reads without the access locks.
func (g *GPU) Peek(address uint16) uint8 {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		return g.vram[address-addr.VRAMStart]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return g.oam[address-addr.OAMStart]
	}

	switch address {
	case addr.LCDC:
		return g.lcdc
	case addr.STAT:
		value := 0x80 | g.stat | uint8(g.mode)
		if g.ly == g.lyc {
			value = bit.Set(2, value)
		}
		return value
	case addr.SCY:
		return g.scy
	case addr.SCX:
		return g.scx
	case addr.LY:
		return g.ly
	case addr.LYC:
		return g.lyc
	case addr.BGP:
		return g.bgp
	case addr.OBP0:
		return g.obp0
	case addr.OBP1:
		return g.obp1
	case addr.WY:
		return g.wy
	case addr.WX:
		return g.wx
	}
	return 0xFF
}

// Poke stores a byte without locks or interrupts. LY is derived from the dot
// counter and ignores pokes.
func (g *GPU) Poke(address uint16, value uint8) {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		g.vram[address-addr.VRAMStart] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		g.oam[address-addr.OAMStart] = value
	case address == addr.LCDC:
		g.setLCDC(value)
		g.statSignal = g.statLine()
	case address == addr.STAT:
		g.stat = value & statWriteMask
		g.statSignal = g.statLine()
	case address == addr.LY:
	case address == addr.LYC:
		g.lyc = value
		g.statSignal = g.statLine()
	default:
		g.writeRegister(address, value)
	}
}

// WriteOAM stores one byte of an OAM DMA transfer. DMA ignores the OAM lock.
func (g *GPU) WriteOAM(index int, value uint8) {
	if index >= 0 && index < len(g.oam) {
		g.oam[index] = value
	}
}

func (g *GPU) writeRegister(address uint16, value uint8) {
	switch address {
	case addr.SCY:
		g.scy = value
	case addr.SCX:
		g.scx = value
	case addr.BGP:
		g.bgp = value
	case addr.OBP0:
		g.obp0 = value
	case addr.OBP1:
		g.obp1 = value
	case addr.WY:
		g.wy = value
	case addr.WX:
		g.wx = value
	}
}
