package memory

import "time"

// BankState is a snapshot of the banking registers of a controller, used by
// debuggers and tests. Fields a controller does not have stay zero.
type BankState struct {
	ROMBank    int   // bank mapped at 0x4000-0x7FFF
	ROMBank0   int   // bank mapped at 0x0000-0x3FFF
	RAMBank    int   // bank mapped at 0xA000-0xBFFF
	RAMEnabled bool  // external RAM gate
	Mode       uint8 // MBC1 banking mode, MBC3 selected register
}

// MBC represents a Memory Bank Controller interface that all MBC types must implement.
// It sees the ROM area 0x0000-0x7FFF and the external RAM area 0xA000-0xBFFF.
type MBC interface {
	// Read reads a byte from the specified address. It never changes state.
	Read(addr uint16) uint8
	// Write writes a byte to the specified address, writes to the ROM area
	// drive the banking registers.
	Write(addr uint16, value uint8)
	// Type identifies the controller.
	Type() MBCType
	// State reports the current banking registers.
	State() BankState
}

// romBankCount is the number of whole banks in the image, at least one.
func romBankCount(rom []uint8) int {
	return max(len(rom)/romBankSize, 1)
}

// readROM reads from a bank, wrapping banks past the end of the image.
func readROM(rom []uint8, bank int, addr uint16) uint8 {
	offset := (bank%romBankCount(rom))*romBankSize + int(addr&0x3FFF)
	if offset >= len(rom) {
		return 0xFF
	}
	return rom[offset]
}

// ramOffset locates addr in banked RAM, wrapping banks past the end of the
// chip. ok is false when the cartridge has no RAM.
func ramOffset(ram []uint8, bank int, addr uint16) (int, bool) {
	if len(ram) == 0 {
		return 0, false
	}
	banks := max(len(ram)/ramBankSize, 1)
	offset := (bank%banks)*ramBankSize + int(addr-0xA000)
	return offset % len(ram), true
}

func ramEnableValue(value uint8) bool {
	return value&0x0F == 0x0A
}

// NoMBC represents cartridges with no memory banking capabilities.
// The cartridge ROM is directly mapped to 0x0000-0x7FFF and cannot be
// banked/switched. Types 0x08/0x09 add up to 8 KiB of RAM.
type NoMBC struct {
	rom []uint8
	ram []uint8
}

// NewNoMBC creates a new NoMBC controller
func NewNoMBC(romData []uint8, hasRAM bool) *NoMBC {
	m := &NoMBC{rom: romData}
	if hasRAM {
		m.ram = make([]uint8, ramBankSize)
	}
	return m
}

func (m *NoMBC) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		if int(addr) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[addr]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if off, ok := ramOffset(m.ram, 0, addr); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *NoMBC) Write(addr uint16, value uint8) {
	if addr >= 0xA000 && addr <= 0xBFFF {
		if off, ok := ramOffset(m.ram, 0, addr); ok {
			m.ram[off] = value
		}
	}
}

func (m *NoMBC) Type() MBCType { return NoMBCType }

func (m *NoMBC) State() BankState {
	return BankState{ROMBank: 1, RAMEnabled: len(m.ram) > 0}
}

// MBC1 is the first and most common MBC chip. Features include:
//   - Supports up to 2MB ROM (125 usable 16KB banks)
//   - Up to 32KB RAM (4 8KB banks)
//   - A 5 bit bank register (0 reads as 1) and a 2 bit register that is
//     either the upper ROM bank bits or the RAM bank
//   - Mode 0: the 2 bit register only affects 0x4000-0x7FFF
//   - Mode 1: it also banks 0x0000-0x3FFF and the RAM area
type MBC1 struct {
	rom        []uint8
	ram        []uint8
	bank1      uint8 // 5 bits, never 0
	bank2      uint8 // 2 bits
	mode       uint8
	ramEnabled bool
}

// NewMBC1 creates a new MBC1 controller
func NewMBC1(romData []uint8, ramBankCount int) *MBC1 {
	return &MBC1{
		rom:   romData,
		ram:   make([]uint8, ramBankCount*ramBankSize),
		bank1: 1,
	}
}

func (m *MBC1) romBank0() int {
	if m.mode == 1 {
		return int(m.bank2) << 5
	}
	return 0
}

func (m *MBC1) romBankN() int {
	return int(m.bank2)<<5 | int(m.bank1)
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bank2)
	}
	return 0
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return readROM(m.rom, m.romBank0(), addr)
	case addr >= 0x4000 && addr <= 0x7FFF:
		return readROM(m.rom, m.romBankN(), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if off, ok := ramOffset(m.ram, m.ramBank(), addr); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = ramEnableValue(value)
	case addr >= 0x2000 && addr <= 0x3FFF:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.bank2 = value & 0x03
	case addr >= 0x6000 && addr <= 0x7FFF:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if off, ok := ramOffset(m.ram, m.ramBank(), addr); ok {
			m.ram[off] = value
		}
	}
}

func (m *MBC1) Type() MBCType { return MBC1Type }

func (m *MBC1) State() BankState {
	banks := romBankCount(m.rom)
	return BankState{
		ROMBank:    m.romBankN() % banks,
		ROMBank0:   m.romBank0() % banks,
		RAMBank:    m.ramBank(),
		RAMEnabled: m.ramEnabled,
		Mode:       m.mode,
	}
}

// MBC2 is a simpler MBC chip with built-in RAM. Features include:
//   - Supports up to 256KB ROM (16 16KB banks)
//   - Built-in 512x4 bits RAM, echoed through 0xA000-0xBFFF
//   - Address bit 8 selects between the RAM gate (clear) and the ROM bank
//     register (set) anywhere in 0x0000-0x3FFF
//   - RAM values only keep the low nibble, the upper one reads as 1s
type MBC2 struct {
	rom        []uint8
	ram        [512]uint8
	romBank    uint8
	ramEnabled bool
}

// NewMBC2 creates a new MBC2 controller
func NewMBC2(romData []uint8) *MBC2 {
	return &MBC2{
		rom:     romData,
		romBank: 1,
	}
}

func (m *MBC2) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return readROM(m.rom, 0, addr)
	case addr >= 0x4000 && addr <= 0x7FFF:
		return readROM(m.rom, int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[addr&0x01FF] | 0xF0
	}
	return 0xFF
}

func (m *MBC2) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x3FFF:
		if addr&0x0100 == 0 {
			m.ramEnabled = ramEnableValue(value)
			return
		}
		m.romBank = value & 0x0F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[addr&0x01FF] = value & 0x0F
	}
}

func (m *MBC2) Type() MBCType { return MBC2Type }

func (m *MBC2) State() BankState {
	return BankState{
		ROMBank:    int(m.romBank) % romBankCount(m.rom),
		RAMEnabled: m.ramEnabled,
	}
}

// Clock is the time source of the MBC3 real time clock.
type Clock interface {
	Now() time.Time
}

type systemClockFunc func() time.Time

func (s systemClockFunc) Now() time.Time {
	return s()
}

// rtc register indexes, selected by writing 0x08-0x0C to 0x4000-0x5FFF.
const (
	rtcSeconds = iota
	rtcMinutes
	rtcHours
	rtcDaysLow
	rtcDaysHigh // bit 0: day bit 8, bit 6: halt, bit 7: day carry
)

// MBC3 is an advanced MBC chip with RTC support. Features include:
//   - Supports up to 2MB ROM (128 16KB banks), 7 bit bank register
//   - Up to 32KB RAM (4 8KB banks)
//   - Real-Time Clock (RTC) with 5 registers mapped in place of a RAM bank
//   - Writing 0x00 then 0x01 to 0x6000-0x7FFF latches the clock into the
//     readable registers
type MBC3 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint8
	ramBank    uint8 // 0x00-0x03 RAM, 0x08-0x0C RTC
	ramEnabled bool

	hasRTC    bool
	clock     Clock
	rtc       [5]uint8 // running registers as of rtcBase
	rtcBase   time.Time
	latched   [5]uint8
	lastLatch uint8
}

// NewMBC3 creates a new MBC3 controller. A nil clock uses the system time.
func NewMBC3(romData []uint8, ramBankCount int, hasRTC bool, clock Clock) *MBC3 {
	if clock == nil {
		clock = systemClockFunc(time.Now)
	}

	return &MBC3{
		rom:       romData,
		ram:       make([]uint8, ramBankCount*ramBankSize),
		romBank:   1,
		hasRTC:    hasRTC,
		clock:     clock,
		rtcBase:   clock.Now(),
		lastLatch: 0xFF,
	}
}

func (m *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return readROM(m.rom, 0, addr)
	case addr >= 0x4000 && addr <= 0x7FFF:
		return readROM(m.rom, int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramBank <= 0x03 {
			if off, ok := ramOffset(m.ram, int(m.ramBank), addr); ok {
				return m.ram[off]
			}
		} else if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			return m.latched[m.ramBank-0x08]
		}
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = ramEnableValue(value)
	case addr >= 0x2000 && addr <= 0x3FFF:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value & 0x0F
	case addr >= 0x6000 && addr <= 0x7FFF:
		if m.lastLatch == 0x00 && value == 0x01 && m.hasRTC {
			m.updateRTC()
			m.latched = m.rtc
		}
		m.lastLatch = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.ramBank <= 0x03 {
			if off, ok := ramOffset(m.ram, int(m.ramBank), addr); ok {
				m.ram[off] = value
			}
		} else if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.updateRTC()
			m.rtc[m.ramBank-0x08] = value
			m.latched[m.ramBank-0x08] = value
		}
	}
}

// updateRTC folds the time elapsed since rtcBase into the running registers.
func (m *MBC3) updateRTC() {
	now := m.clock.Now()
	elapsed := int64(now.Sub(m.rtcBase) / time.Second)
	if elapsed <= 0 {
		return
	}
	m.rtcBase = m.rtcBase.Add(time.Duration(elapsed) * time.Second)
	if m.rtc[rtcDaysHigh]&0x40 != 0 {
		// halted
		return
	}

	days := int64(m.rtc[rtcDaysHigh]&0x01)<<8 | int64(m.rtc[rtcDaysLow])
	total := int64(m.rtc[rtcSeconds]) + int64(m.rtc[rtcMinutes])*60 +
		int64(m.rtc[rtcHours])*3600 + days*86400 + elapsed

	m.rtc[rtcSeconds] = uint8(total % 60)
	m.rtc[rtcMinutes] = uint8(total / 60 % 60)
	m.rtc[rtcHours] = uint8(total / 3600 % 24)
	days = total / 86400

	high := m.rtc[rtcDaysHigh] & 0xC0
	if days > 0x1FF {
		high |= 0x80
		days &= 0x1FF
	}
	m.rtc[rtcDaysLow] = uint8(days)
	m.rtc[rtcDaysHigh] = high | uint8(days>>8)
}

func (m *MBC3) Type() MBCType { return MBC3Type }

func (m *MBC3) State() BankState {
	return BankState{
		ROMBank:    int(m.romBank) % romBankCount(m.rom),
		RAMBank:    int(m.ramBank),
		RAMEnabled: m.ramEnabled,
		Mode:       m.ramBank,
	}
}

// MBC5 is the most advanced MBC chip. Features include:
//   - Supports up to 8MB ROM (512 16KB banks)
//   - Up to 128KB RAM (16 8KB banks)
//   - 9-bit ROM bank number, bank 0 can be mapped at 0x4000 too
//   - Optional rumble motor, driven by bit 3 of the RAM bank register
type MBC5 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint16
	ramBank    uint8
	ramEnabled bool
	hasRumble  bool
	rumble     bool
}

// NewMBC5 creates a new MBC5 controller
func NewMBC5(romData []uint8, hasRumble bool, ramBankCount int) *MBC5 {
	return &MBC5{
		rom:       romData,
		ram:       make([]uint8, ramBankCount*ramBankSize),
		romBank:   1,
		hasRumble: hasRumble,
	}
}

func (m *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return readROM(m.rom, 0, addr)
	case addr >= 0x4000 && addr <= 0x7FFF:
		return readROM(m.rom, int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if off, ok := ramOffset(m.ram, int(m.ramBank), addr); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = ramEnableValue(value)
	case addr >= 0x2000 && addr <= 0x2FFF:
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case addr >= 0x3000 && addr <= 0x3FFF:
		m.romBank = (m.romBank & 0xFF) | (uint16(value&0x01) << 8)
	case addr >= 0x4000 && addr <= 0x5FFF:
		if m.hasRumble {
			m.rumble = value&0x08 != 0
			value &= 0x07
		}
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if off, ok := ramOffset(m.ram, int(m.ramBank), addr); ok {
			m.ram[off] = value
		}
	}
}

// Rumble reports whether the rumble motor is on.
func (m *MBC5) Rumble() bool { return m.rumble }

func (m *MBC5) Type() MBCType { return MBC5Type }

func (m *MBC5) State() BankState {
	return BankState{
		ROMBank:    int(m.romBank) % romBankCount(m.rom),
		RAMBank:    int(m.ramBank),
		RAMEnabled: m.ramEnabled,
	}
}
