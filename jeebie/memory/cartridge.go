package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000

	// the header ends at 0x14F, anything shorter cannot be a cartridge image.
	minROMSize = 0x150
)

const (
	titleAddress          = 0x134
	titleEnd              = 0x143
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D
	globalChecksumAddress = 0x14E
)

var (
	// ErrROMTooSmall is returned for images shorter than the cartridge header.
	ErrROMTooSmall = errors.New("rom image too small")
	// ErrUnsupportedMBC is returned when the cartridge type byte names a mapper
	// outside NoMBC, MBC1, MBC2, MBC3 and MBC5.
	ErrUnsupportedMBC = errors.New("unsupported cartridge type")
	// ErrInvalidROMSize is returned for an unknown ROM size code.
	ErrInvalidROMSize = errors.New("invalid rom size code")
	// ErrInvalidRAMSize is returned for an unknown RAM size code.
	ErrInvalidRAMSize = errors.New("invalid ram size code")
)

// MBCType identifies the memory bank controller of a cartridge.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC2Type
	MBC3Type
	MBC5Type
)

func (t MBCType) String() string {
	switch t {
	case NoMBCType:
		return "ROM ONLY"
	case MBC1Type:
		return "MBC1"
	case MBC2Type:
		return "MBC2"
	case MBC3Type:
		return "MBC3"
	case MBC5Type:
		return "MBC5"
	}
	return fmt.Sprintf("MBC(%d)", uint8(t))
}

type cartFeatures struct {
	mbc     MBCType
	ram     bool
	battery bool
	rtc     bool
	rumble  bool
}

// cartTypes maps the header type byte to the mapper and the chips on board.
var cartTypes = map[uint8]cartFeatures{
	0x00: {mbc: NoMBCType},
	0x08: {mbc: NoMBCType, ram: true},
	0x09: {mbc: NoMBCType, ram: true, battery: true},
	0x01: {mbc: MBC1Type},
	0x02: {mbc: MBC1Type, ram: true},
	0x03: {mbc: MBC1Type, ram: true, battery: true},
	0x05: {mbc: MBC2Type},
	0x06: {mbc: MBC2Type, battery: true},
	0x0F: {mbc: MBC3Type, rtc: true, battery: true},
	0x10: {mbc: MBC3Type, rtc: true, ram: true, battery: true},
	0x11: {mbc: MBC3Type},
	0x12: {mbc: MBC3Type, ram: true},
	0x13: {mbc: MBC3Type, ram: true, battery: true},
	0x19: {mbc: MBC5Type},
	0x1A: {mbc: MBC5Type, ram: true},
	0x1B: {mbc: MBC5Type, ram: true, battery: true},
	0x1C: {mbc: MBC5Type, rumble: true},
	0x1D: {mbc: MBC5Type, ram: true, rumble: true},
	0x1E: {mbc: MBC5Type, ram: true, battery: true, rumble: true},
}

// ramSizes maps the header RAM size code to a byte count. Code 1 is an
// unofficial 2 KiB size used by a few homebrew images.
var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 0x800,
	0x02: 0x2000,
	0x03: 0x8000,
	0x04: 0x20000,
	0x05: 0x10000,
}

// Cartridge is a parsed cartridge image.
type Cartridge struct {
	data           []byte
	title          string
	cartType       uint8
	mbcType        MBCType
	features       cartFeatures
	romBanks       int
	ramSize        int
	version        uint8
	headerChecksum uint8
	globalChecksum uint16
}

// ParseCartridge validates the header of a cartridge image and returns the
// parsed cartridge. The image is copied.
func ParseCartridge(data []byte) (*Cartridge, error) {
	if len(data) < minROMSize {
		return nil, fmt.Errorf("%d bytes: %w", len(data), ErrROMTooSmall)
	}

	cartType := data[cartridgeTypeAddress]
	features, ok := cartTypes[cartType]
	if !ok {
		return nil, fmt.Errorf("type 0x%02X: %w", cartType, ErrUnsupportedMBC)
	}

	romCode := data[romSizeAddress]
	if romCode > 8 {
		return nil, fmt.Errorf("code 0x%02X: %w", romCode, ErrInvalidROMSize)
	}

	ramCode := data[ramSizeAddress]
	ramSize, ok := ramSizes[ramCode]
	if !ok {
		return nil, fmt.Errorf("code 0x%02X: %w", ramCode, ErrInvalidRAMSize)
	}
	if features.mbc == MBC2Type {
		// built into the mapper, the header reports 0
		ramSize = 512
	}

	declared := 0x8000 << romCode
	size := max(declared, len(data))
	// whole banks only, short images are padded with open bus
	if rem := size % romBankSize; rem != 0 {
		size += romBankSize - rem
	}
	image := make([]byte, size)
	for i := copy(image, data); i < size; i++ {
		image[i] = 0xFF
	}
	if len(data) != declared {
		slog.Warn("rom size does not match header", "declared", declared, "actual", len(data))
	}

	cart := &Cartridge{
		data:           image,
		title:          cleanGameboyTitle(data[titleAddress : titleEnd+1]),
		cartType:       cartType,
		mbcType:        features.mbc,
		features:       features,
		romBanks:       size / romBankSize,
		ramSize:        ramSize,
		version:        data[versionNumberAddress],
		headerChecksum: data[headerChecksumAddress],
		globalChecksum: uint16(data[globalChecksumAddress])<<8 | uint16(data[globalChecksumAddress+1]),
	}

	if sum := computeHeaderChecksum(data); sum != cart.headerChecksum {
		slog.Warn("header checksum mismatch", "title", cart.title,
			"want", fmt.Sprintf("0x%02X", cart.headerChecksum), "got", fmt.Sprintf("0x%02X", sum))
	}

	return cart, nil
}

func computeHeaderChecksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data[titleAddress:headerChecksumAddress] {
		sum = sum - b - 1
	}
	return sum
}

// Title is the cleaned header title.
func (c *Cartridge) Title() string { return c.title }

// Type is the mapper on the cartridge.
func (c *Cartridge) Type() MBCType { return c.mbcType }

// TypeCode is the raw header type byte.
func (c *Cartridge) TypeCode() uint8 { return c.cartType }

// ROMBanks is the number of 16 KiB banks in the image.
func (c *Cartridge) ROMBanks() int { return c.romBanks }

// RAMSize is the external RAM size in bytes.
func (c *Cartridge) RAMSize() int { return c.ramSize }

// HasBattery reports whether the external RAM is battery backed.
func (c *Cartridge) HasBattery() bool { return c.features.battery }

// HasRTC reports whether the cartridge carries an MBC3 real time clock.
func (c *Cartridge) HasRTC() bool { return c.features.rtc }

// Version is the mask ROM version number.
func (c *Cartridge) Version() uint8 { return c.version }

// HeaderChecksum is the checksum byte stored in the header.
func (c *Cartridge) HeaderChecksum() uint8 { return c.headerChecksum }

// GlobalChecksum is the big-endian checksum stored at 0x14E.
func (c *Cartridge) GlobalChecksum() uint16 { return c.globalChecksum }

// NewMBC builds a fresh controller for the cartridge, in its power-on state.
func (c *Cartridge) NewMBC() MBC {
	ramBanks := c.ramSize / ramBankSize
	if c.ramSize > 0 && ramBanks == 0 {
		ramBanks = 1
	}
	switch c.mbcType {
	case MBC1Type:
		return NewMBC1(c.data, ramBanks)
	case MBC2Type:
		return NewMBC2(c.data)
	case MBC3Type:
		return NewMBC3(c.data, ramBanks, c.features.rtc, nil)
	case MBC5Type:
		return NewMBC5(c.data, c.features.rumble, ramBanks)
	default:
		return NewNoMBC(c.data, c.features.ram)
	}
}
