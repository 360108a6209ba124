package memory

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

func newTestMMU(t *testing.T, rom []byte) (*MMU, *fakeVideo) {
	t.Helper()
	cart, err := ParseCartridge(rom)
	require.NoError(t, err)
	mmu := NewWithCartridge(cart)
	video := &fakeVideo{}
	mmu.AttachVideo(video)
	return mmu, video
}

func TestEchoRAM(t *testing.T) {
	mmu, _ := newTestMMU(t, buildROM(0x00, 0, 2))

	mmu.Write(0xC123, 0x42)
	assert.Equal(t, uint8(0x42), mmu.Read(0xE123))

	mmu.Write(0xFDFF, 0x24)
	assert.Equal(t, uint8(0x24), mmu.Read(0xDDFF))
}

func TestUnmappedReads(t *testing.T) {
	mmu, _ := newTestMMU(t, buildROM(0x00, 0, 2))

	for _, address := range []uint16{0xFEA0, 0xFEFF, 0xFF03, 0xFF08, 0xFF4C, 0xFF7F, 0xA000} {
		mmu.Write(address, 0x12)
		assert.Equal(t, uint8(0xFF), mmu.Read(address), "0x%04X", address)
	}
}

func TestEmptySlot(t *testing.T) {
	mmu := New()
	assert.Equal(t, uint8(0xFF), mmu.Read(0x0100))
	assert.Equal(t, uint8(0xFF), mmu.Read(0xA000))
	assert.Equal(t, uint8(0xFF), mmu.Read(0x8000), "no video attached")
	mmu.Write(0x2000, 0x01)
	assert.Equal(t, BankState{}, mmu.BankState())
}

func TestBankSwitchThroughBus(t *testing.T) {
	mmu, _ := newTestMMU(t, buildROM(0x19, 0, 64))

	for bank := range 64 {
		mmu.Write(0x2000, uint8(bank))
		require.Equal(t, uint8(bank), mmu.Read(0x4000))
		require.Equal(t, bank, mmu.BankState().ROMBank)
	}
}

func TestVideoLock(t *testing.T) {
	mmu, video := newTestMMU(t, buildROM(0x00, 0, 2))

	mmu.Write(0x8000, 0x11)
	mmu.Write(0xFE00, 0x22)

	video.locked = true
	assert.Equal(t, uint8(0xFF), mmu.Read(0x8000))
	assert.Equal(t, uint8(0x11), mmu.Peek(0x8000), "peek ignores the lock")
	mmu.Write(0x8000, 0x33)
	assert.Equal(t, uint8(0x11), mmu.Peek(0x8000))

	mmu.Poke(0xFE00, 0x44)
	assert.Equal(t, uint8(0x44), mmu.Peek(0xFE00), "poke ignores the lock")
}

func TestOAMDMA(t *testing.T) {
	mmu, video := newTestMMU(t, buildROM(0x00, 0, 2))
	for i := range uint16(addr.OAMSize) {
		mmu.Write(0xC100+i, uint8(i))
	}
	video.locked = true

	mmu.Write(addr.DMA, 0xC1)

	for i := range addr.OAMSize {
		require.Equal(t, uint8(i), video.mem[int(addr.OAMStart)+i])
	}
	assert.Equal(t, uint8(0xC1), mmu.Read(addr.DMA))
}

func TestBootROMOverlay(t *testing.T) {
	mmu, _ := newTestMMU(t, buildROM(0x00, 0, 2))
	boot := make([]byte, BootROMSize)
	for i := range boot {
		boot[i] = 0xB0
	}
	require.NoError(t, mmu.SetBootROM(boot))
	assert.Error(t, mmu.SetBootROM(boot[:10]))

	assert.Equal(t, uint8(0xB0), mmu.Read(0x0000))
	assert.Equal(t, uint8(0xB0), mmu.Read(0x00FF))
	assert.Equal(t, uint8(0x00), mmu.Read(0x0100), "cartridge visible past the overlay")

	mmu.Write(addr.BootOff, 0x00)
	assert.True(t, mmu.BootROMMapped(), "zero writes are ignored")

	mmu.Write(addr.BootOff, 0x01)
	assert.False(t, mmu.BootROMMapped())
	assert.Equal(t, uint8(0x00), mmu.Read(0x0000))

	mmu.Write(addr.BootOff, 0x00)
	assert.False(t, mmu.BootROMMapped(), "cannot be remapped")
}

func TestIORouting(t *testing.T) {
	mmu, video := newTestMMU(t, buildROM(0x00, 0, 2))

	mmu.Write(addr.IF, 0x01)
	assert.Equal(t, uint8(0xE1), mmu.Read(addr.IF))
	mmu.Write(addr.IE, 0x1F)
	assert.Equal(t, uint8(0x01), mmu.Interrupts().Pending())

	mmu.Write(addr.TMA, 0x42)
	assert.Equal(t, uint8(0x42), mmu.Read(addr.TMA))

	mmu.Write(addr.NR50, 0x77)
	assert.Equal(t, uint8(0x77), mmu.Read(addr.NR50))

	mmu.Write(addr.SCX, 0x05)
	assert.Equal(t, uint8(0x05), video.mem[addr.SCX])

	mmu.Write(0xFF80, 0x99)
	assert.Equal(t, uint8(0x99), mmu.Read(0xFF80))

	mmu.Write(addr.P1, 0x20)
	mmu.Joypad().Press(JoypadRight)
	assert.Equal(t, uint8(0xEE), mmu.Read(addr.P1))
	assert.NotZero(t, mmu.Interrupts().Flags()&uint8(addr.JoypadInterrupt))
}

func TestTickDrivesTimer(t *testing.T) {
	mmu := New()
	mmu.Tick(512)
	assert.Equal(t, uint8(2), mmu.Read(addr.DIV))
	mmu.Write(addr.DIV, 0x50)
	assert.Equal(t, uint8(0), mmu.Read(addr.DIV))
}

func TestPeekIsIdempotent(t *testing.T) {
	mmu, _ := newTestMMU(t, buildROM(0x10, 0x03, 8))
	mmu.Write(0x0000, 0x0A)
	mmu.Write(0x2000, 0x03)
	mmu.Write(addr.TAC, 0x05)
	mmu.Tick(100)

	snapshot := func() []uint8 {
		out := make([]uint8, 0x10000)
		for a := range 0x10000 {
			out[a] = mmu.Peek(uint16(a))
		}
		return out
	}

	first := snapshot()
	state := mmu.BankState()
	second := snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, state, mmu.BankState())
}

func TestPokeHasNoSideEffects(t *testing.T) {
	mmu, video := newTestMMU(t, buildROM(0x01, 0, 8))
	mmu.Tick(1024)

	mmu.Poke(0x2000, 0x05)
	assert.Equal(t, 1, mmu.BankState().ROMBank, "no bank switch")

	mmu.Poke(addr.DIV, 0x33)
	assert.Equal(t, uint8(0x33), mmu.Read(addr.DIV), "no DIV reset")

	mmu.Poke(addr.DMA, 0xC0)
	assert.Equal(t, uint8(0xC0), mmu.Read(addr.DMA))
	assert.Equal(t, uint8(0x00), video.mem[addr.OAMStart], "no DMA")

	mmu.Poke(0xC000, 0x5A)
	assert.Equal(t, uint8(0x5A), mmu.Read(0xE000))
}

func TestRandomize(t *testing.T) {
	a := New()
	b := New()
	a.Randomize(rand.New(rand.NewPCG(7, 0)))
	b.Randomize(rand.New(rand.NewPCG(7, 0)))

	same := true
	nonZero := false
	for address := uint16(0xC000); address < 0xE000; address++ {
		same = same && a.Read(address) == b.Read(address)
		nonZero = nonZero || a.Read(address) != 0
	}
	assert.True(t, same, "same seed, same noise")
	assert.True(t, nonZero)
}
