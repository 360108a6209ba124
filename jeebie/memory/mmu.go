package memory

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/interrupt"
	"github.com/valerio/jeebie-core/jeebie/serial"
	"github.com/valerio/jeebie-core/jeebie/timer"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// BootROMSize is the size of the DMG boot program mapped over 0x0000-0x00FF.
const BootROMSize = 0x100

// Video is the PPU side of the bus: VRAM, OAM and the LCD registers.
// Read and Write honour the PPU access locks, Peek and Poke do not.
type Video interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Peek(address uint16) uint8
	Poke(address uint16, value uint8)
	// WriteOAM stores one byte of an OAM DMA transfer.
	WriteOAM(index int, value uint8)
}

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Poke(address uint16, value byte)
	Tick(cycles int)
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	regionMap [256]memRegion

	bootROM     []byte
	bootEnabled bool

	wram [0x2000]byte
	hram [0x7F]byte
	io   [0x80]byte // plain storage for registers without a device (audio)
	dma  byte

	irq    *interrupt.Controller
	timer  *timer.Timer
	joypad *Joypad
	serial SerialPort
	video  Video
}

// New creates a new memory unit with nothing attached to the cartridge slot;
// ROM and external RAM read as 0xFF.
func New() *MMU {
	mmu := &MMU{
		irq: interrupt.New(),
	}
	mmu.timer = timer.New(mmu.irq)
	mmu.joypad = NewJoypad(mmu.irq.Request)
	mmu.serial = serial.NewLogSink(func() { mmu.irq.Request(addr.SerialInterrupt) })
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge
// inserted, its controller in the power-on state.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart
	mmu.mbc = cart.NewMBC()
	slog.Info("cartridge loaded", "title", cart.Title(), "type", cart.Type().String(),
		"rom_banks", cart.ROMBanks(), "ram_bytes", cart.RAMSize(),
		"version", cart.Version(), "global_checksum", fmt.Sprintf("0x%04X", cart.GlobalChecksum()))
	return mmu
}

func initRegionMap(m *MMU) {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM + IE: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// AttachVideo connects the PPU. Until then VRAM, OAM and the LCD registers
// read as 0xFF.
func (m *MMU) AttachVideo(v Video) {
	m.video = v
}

// AttachSerial replaces the serial device.
func (m *MMU) AttachSerial(s SerialPort) {
	m.serial = s
}

// SetBootROM maps a boot program over 0x0000-0x00FF until 0xFF50 is written.
func (m *MMU) SetBootROM(data []byte) error {
	if len(data) != BootROMSize {
		return fmt.Errorf("boot rom must be %d bytes, got %d", BootROMSize, len(data))
	}
	m.bootROM = append(m.bootROM[:0], data...)
	m.bootEnabled = true
	return nil
}

// BootROMMapped reports whether the boot program still overlays the cartridge.
func (m *MMU) BootROMMapped() bool {
	return m.bootEnabled
}

// Randomize fills work RAM and high RAM with noise, like real hardware at power on.
func (m *MMU) Randomize(rng *rand.Rand) {
	for i := range m.wram {
		m.wram[i] = uint8(rng.UintN(256))
	}
	for i := range m.hram {
		m.hram[i] = uint8(rng.UintN(256))
	}
}

// Tick advances any i/o that needs it: the timer and the serial port.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
}

// Interrupts is the interrupt controller behind IF/IE.
func (m *MMU) Interrupts() *interrupt.Controller { return m.irq }

// Timer is the timer behind DIV/TIMA/TMA/TAC.
func (m *MMU) Timer() *timer.Timer { return m.timer }

// Joypad is the joypad behind P1.
func (m *MMU) Joypad() *Joypad { return m.joypad }

// Cartridge is the inserted cartridge, nil when the slot is empty.
func (m *MMU) Cartridge() *Cartridge { return m.cart }

// BankState reports the banking registers of the cartridge controller.
func (m *MMU) BankState() BankState {
	if m.mbc == nil {
		return BankState{}
	}
	return m.mbc.State()
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.irq.Request(interrupt)
}

func (m *MMU) Read(address uint16) byte {
	return m.read(address, false)
}

// Peek reads like Read but ignores the PPU access locks. Reads have no side
// effects anywhere on the bus, so this is safe for debuggers.
func (m *MMU) Peek(address uint16) byte {
	return m.read(address, true)
}

func (m *MMU) read(address uint16, peek bool) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.bootEnabled && address <= addr.BootROMEnd {
			return m.bootROM[address]
		}
		if m.mbc == nil {
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionExtRAM:
		if m.mbc == nil {
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM:
		return m.readVideo(address, peek)
	case regionWRAM:
		return m.wram[address-addr.WRAMStart]
	case regionEcho:
		return m.wram[address-addr.EchoStart]
	case regionOAM:
		if address > addr.OAMEnd {
			return 0xFF
		}
		return m.readVideo(address, peek)
	case regionIO:
		return m.readIO(address, peek)
	default:
		panic(fmt.Sprintf("Attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) readVideo(address uint16, peek bool) byte {
	if m.video == nil {
		return 0xFF
	}
	if peek {
		return m.video.Peek(address)
	}
	return m.video.Read(address)
}

func (m *MMU) readIO(address uint16, peek bool) byte {
	switch {
	case address == addr.IE, address == addr.IF:
		return m.irq.Read(address)
	case address >= addr.HRAMStart:
		return m.hram[address-addr.HRAMStart]
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB, address == addr.SC:
		if m.serial == nil {
			return 0xFF
		}
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.io[address-addr.IOStart]
	case address == addr.DMA:
		return m.dma
	case address >= addr.LCDC && address <= addr.WX:
		return m.readVideo(address, peek)
	case address == addr.BootOff:
		if m.bootEnabled {
			return 0xFE
		}
		return 0xFF
	}
	// holes in the I/O map
	return 0xFF
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			return
		}
		if address <= 0x7FFF {
			before := m.mbc.State()
			m.mbc.Write(address, value)
			if after := m.mbc.State(); after != before {
				slog.Debug("bank switch", "addr", fmt.Sprintf("0x%04X", address),
					"value", fmt.Sprintf("0x%02X", value), "rom", after.ROMBank, "ram", after.RAMBank)
			}
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM:
		if m.video != nil {
			m.video.Write(address, value)
		}
	case regionWRAM:
		m.wram[address-addr.WRAMStart] = value
	case regionEcho:
		m.wram[address-addr.EchoStart] = value
	case regionOAM:
		if address <= addr.OAMEnd && m.video != nil {
			m.video.Write(address, value)
		}
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("Attempted write at unmapped address: 0x%X", address))
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address == addr.IE, address == addr.IF:
		m.irq.Write(address, value)
	case address >= addr.HRAMStart:
		m.hram[address-addr.HRAMStart] = value
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB, address == addr.SC:
		if m.serial != nil {
			m.serial.Write(address, value)
		}
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.io[address-addr.IOStart] = value
	case address == addr.DMA:
		m.dma = value
		m.startDMA(value)
	case address >= addr.LCDC && address <= addr.WX:
		if m.video != nil {
			m.video.Write(address, value)
		}
	case address == addr.BootOff:
		if value != 0 && m.bootEnabled {
			m.bootEnabled = false
			slog.Debug("boot rom unmapped")
		}
	}
}

// startDMA copies 160 bytes from value<<8 into OAM. The copy happens at once
// instead of over 640 cycles.
func (m *MMU) startDMA(value byte) {
	if m.video == nil {
		return
	}
	source := uint16(value) << 8
	for i := range uint16(addr.OAMSize) {
		m.video.WriteOAM(int(i), m.Peek(source+i))
	}
}

// Poke stores a byte without any of the side effects a CPU write has: no
// bank switching, no DMA, no DIV reset, no boot ROM unmap and no PPU locks.
// Writes to ROM are ignored.
func (m *MMU) Poke(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		return
	case regionExtRAM:
		if m.mbc != nil {
			m.mbc.Write(address, value)
		}
	case regionVRAM:
		if m.video != nil {
			m.video.Poke(address, value)
		}
	case regionOAM:
		if address <= addr.OAMEnd && m.video != nil {
			m.video.Poke(address, value)
		}
	case regionIO:
		m.pokeIO(address, value)
	default:
		m.Write(address, value)
	}
}

func (m *MMU) pokeIO(address uint16, value byte) {
	switch {
	case address == addr.SB, address == addr.SC:
		if m.serial != nil {
			m.serial.Poke(address, value)
		}
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Poke(address, value)
	case address == addr.DMA:
		m.dma = value
	case address >= addr.LCDC && address <= addr.WX:
		if m.video != nil {
			m.video.Poke(address, value)
		}
	case address == addr.BootOff:
	default:
		m.writeIO(address, value)
	}
}
