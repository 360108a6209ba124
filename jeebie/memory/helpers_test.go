package memory

import "github.com/valerio/jeebie-core/jeebie/addr"

// buildROM returns an image of the given number of banks where every byte of
// the switchable area holds its bank number, with a valid header.
func buildROM(cartType, ramCode uint8, banks int) []byte {
	rom := make([]byte, banks*romBankSize)
	for i := range rom {
		rom[i] = uint8(i / romBankSize)
	}
	romCode := uint8(0)
	for 2<<romCode < banks {
		romCode++
	}
	copy(rom[titleAddress:], "TESTCART")
	for i := titleAddress + len("TESTCART"); i <= titleEnd; i++ {
		rom[i] = 0
	}
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = romCode
	rom[ramSizeAddress] = ramCode
	rom[versionNumberAddress] = 0
	rom[headerChecksumAddress] = computeHeaderChecksum(rom)
	return rom
}

// fakeVideo is a flat VRAM/OAM/register store with a switchable lock.
type fakeVideo struct {
	mem    [0x10000]uint8
	locked bool
}

func (v *fakeVideo) Read(address uint16) uint8 {
	if v.locked {
		return 0xFF
	}
	return v.mem[address]
}

func (v *fakeVideo) Write(address uint16, value uint8) {
	if !v.locked {
		v.mem[address] = value
	}
}

func (v *fakeVideo) Peek(address uint16) uint8        { return v.mem[address] }
func (v *fakeVideo) Poke(address uint16, value uint8) { v.mem[address] = value }
func (v *fakeVideo) WriteOAM(index int, value uint8)  { v.mem[int(addr.OAMStart)+index] = value }
