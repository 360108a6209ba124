package addr

// memory map boundaries
const (
	ROMBank0Start   uint16 = 0x0000
	ROMBankNStart   uint16 = 0x4000
	VRAMStart       uint16 = 0x8000
	VRAMEnd         uint16 = 0x9FFF
	ExtRAMStart     uint16 = 0xA000
	ExtRAMEnd       uint16 = 0xBFFF
	WRAMStart       uint16 = 0xC000
	WRAMEnd         uint16 = 0xDFFF
	EchoStart       uint16 = 0xE000
	EchoEnd         uint16 = 0xFDFF
	UnusableStart   uint16 = 0xFEA0
	UnusableEnd     uint16 = 0xFEFF
	IOStart         uint16 = 0xFF00
	HRAMStart       uint16 = 0xFF80
	HRAMEnd         uint16 = 0xFFFE
	BootROMEnd      uint16 = 0x00FF
	CartHeaderStart uint16 = 0x0100
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// BootOff unmaps the boot ROM when written with a non-zero value.
const BootOff uint16 = 0xFF50

// Audio registers. The APU is not emulated, the bus keeps them as plain storage
// so software reading back its own writes sees consistent values.
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	NR10 uint16 = 0xFF10
	NR11 uint16 = 0xFF11
	NR12 uint16 = 0xFF12
	NR14 uint16 = 0xFF14
	NR21 uint16 = 0xFF16
	NR22 uint16 = 0xFF17
	NR24 uint16 = 0xFF19
	NR30 uint16 = 0xFF1A
	NR31 uint16 = 0xFF1B
	NR32 uint16 = 0xFF1C
	NR33 uint16 = 0xFF1E
	NR41 uint16 = 0xFF20
	NR42 uint16 = 0xFF21
	NR43 uint16 = 0xFF22
	NR44 uint16 = 0xFF23
	NR50 uint16 = 0xFF24
	NR51 uint16 = 0xFF25
	NR52 uint16 = 0xFF26
)

// OAM (Object Attribute Memory) - sprite data
const (
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of OAM memory
	OAMEnd uint16 = 0xFE9F
	// OAMSize is the number of bytes copied by a DMA transfer.
	OAMSize = 160
)

// tile data and tile maps
const (
	// TileData0 is the start of unsigned tile data (tiles 0-255)
	TileData0 uint16 = 0x8000
	// TileData2 is the base of signed tile data (tile 0 of the -128..127 range)
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB holds the byte being shifted out; after a transfer it holds the received
	// byte (0xFF when nothing is connected).
	SB uint16 = 0xFF01
	// SC is the serial control register. Bit 7 starts a transfer and is cleared
	// when it completes, bit 0 selects the internal clock.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// Interrupt is one of the five interrupt sources, valued as its bit in IE/IF.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = 1 << iota
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt
	// TimerInterrupt is fired when the timer register (TIMA) overflows (i.e. goes from 0xFF to 0x00).
	TimerInterrupt
	// SerialInterrupt is fired when a serial transfer has completed on the game link port.
	SerialInterrupt
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt
)

// Interrupts lists every source in dispatch priority order.
var Interrupts = [...]Interrupt{VBlankInterrupt, LCDSTATInterrupt, TimerInterrupt, SerialInterrupt, JoypadInterrupt}

// Vector returns the fixed service routine address of the interrupt.
// Handlers are 8 bytes apart starting at 0x40.
func (i Interrupt) Vector() uint16 {
	for n, src := range Interrupts {
		if src == i {
			return 0x40 + uint16(n)*8
		}
	}
	return 0
}

func (i Interrupt) String() string {
	switch i {
	case VBlankInterrupt:
		return "vblank"
	case LCDSTATInterrupt:
		return "lcdstat"
	case TimerInterrupt:
		return "timer"
	case SerialInterrupt:
		return "serial"
	case JoypadInterrupt:
		return "joypad"
	}
	return "unknown"
}
