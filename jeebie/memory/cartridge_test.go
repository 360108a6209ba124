package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCartridge(t *testing.T) {
	rom := buildROM(0x03, 0x03, 8)
	rom[versionNumberAddress] = 0x01
	rom[headerChecksumAddress] = computeHeaderChecksum(rom)
	rom[globalChecksumAddress] = 0xBE
	rom[globalChecksumAddress+1] = 0xEF
	cart, err := ParseCartridge(rom)
	require.NoError(t, err)

	assert.Equal(t, "TESTCART", cart.Title())
	assert.Equal(t, MBC1Type, cart.Type())
	assert.Equal(t, uint8(0x03), cart.TypeCode())
	assert.Equal(t, 8, cart.ROMBanks())
	assert.Equal(t, 0x8000, cart.RAMSize())
	assert.True(t, cart.HasBattery())
	assert.False(t, cart.HasRTC())
	assert.Equal(t, computeHeaderChecksum(rom), cart.HeaderChecksum())
	assert.Equal(t, uint8(0x01), cart.Version())
	assert.Equal(t, uint16(0xBEEF), cart.GlobalChecksum())
	assert.Equal(t, MBC1Type, cart.NewMBC().Type())

	rom[0x4000] = 0x99
	assert.Equal(t, uint8(1), cart.NewMBC().Read(0x4000), "image is copied")
}

func TestParseCartridgeErrors(t *testing.T) {
	testCases := []struct {
		desc string
		rom  func() []byte
		want error
	}{
		{
			desc: "too small",
			rom:  func() []byte { return make([]byte, 0x100) },
			want: ErrROMTooSmall,
		},
		{
			desc: "unsupported mapper",
			rom:  func() []byte { return buildROM(0x22, 0, 2) },
			want: ErrUnsupportedMBC,
		},
		{
			desc: "huc1 is unsupported",
			rom:  func() []byte { return buildROM(0xFF, 0, 2) },
			want: ErrUnsupportedMBC,
		},
		{
			desc: "rom size code",
			rom: func() []byte {
				rom := buildROM(0x00, 0, 2)
				rom[romSizeAddress] = 0x09
				return rom
			},
			want: ErrInvalidROMSize,
		},
		{
			desc: "ram size code",
			rom:  func() []byte { return buildROM(0x02, 0x06, 2) },
			want: ErrInvalidRAMSize,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cart, err := ParseCartridge(tC.rom())
			assert.Nil(t, cart)
			assert.ErrorIs(t, err, tC.want)
		})
	}
}

func TestParseCartridgePadsShortImages(t *testing.T) {
	rom := buildROM(0x00, 0, 2)[:0x5000]
	rom[0x4FFF] = 0x77

	cart, err := ParseCartridge(rom)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ROMBanks())

	mbc := cart.NewMBC()
	assert.Equal(t, uint8(0x77), mbc.Read(0x4FFF))
	assert.Equal(t, uint8(0xFF), mbc.Read(0x7FFF))
}

func TestChecksumMismatchIsNotFatal(t *testing.T) {
	rom := buildROM(0x00, 0, 2)
	rom[headerChecksumAddress]++

	_, err := ParseCartridge(rom)
	assert.NoError(t, err)
}

func TestCleanGameboyTitle(t *testing.T) {
	testCases := []struct {
		desc  string
		input []byte
		want  string
	}{
		{desc: "nul padded", input: []byte("TETRIS\x00\x00\x00\x00\x00"), want: "TETRIS"},
		{desc: "cgb flag ends the title", input: []byte("POKEMON\x00\x00\x00\x00\x80"), want: "POKEMON"},
		{desc: "non printable", input: []byte("AB\x01CD"), want: "AB?CD"},
		{desc: "empty", input: []byte{0, 0, 0}, want: "(Untitled)"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, cleanGameboyTitle(tC.input))
		})
	}
}
