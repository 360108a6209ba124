package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

func TestRequestAndPending(t *testing.T) {
	c := New()

	c.Request(addr.TimerInterrupt)
	assert.Equal(t, uint8(0), c.Pending(), "disabled sources are not pending")
	assert.Equal(t, uint8(0xE4), c.Read(addr.IF))

	c.Write(addr.IE, uint8(addr.TimerInterrupt))
	assert.Equal(t, uint8(addr.TimerInterrupt), c.Pending())

	c.Acknowledge(addr.TimerInterrupt)
	assert.Equal(t, uint8(0), c.Pending())
	assert.Equal(t, uint8(0xE0), c.Read(addr.IF))
}

func TestNextPriority(t *testing.T) {
	testCases := []struct {
		desc   string
		flags  uint8
		enable uint8
		want   addr.Interrupt
		wantOK bool
		vector uint16
	}{
		{desc: "nothing requested", flags: 0x00, enable: 0x1F},
		{desc: "requested but disabled", flags: 0x1F, enable: 0x00},
		{desc: "all pending picks vblank", flags: 0x1F, enable: 0x1F, want: addr.VBlankInterrupt, wantOK: true, vector: 0x40},
		{desc: "stat over timer", flags: 0x06, enable: 0x1F, want: addr.LCDSTATInterrupt, wantOK: true, vector: 0x48},
		{desc: "timer over serial", flags: 0x0C, enable: 0x1F, want: addr.TimerInterrupt, wantOK: true, vector: 0x50},
		{desc: "serial when vblank masked", flags: 0x09, enable: 0x1E, want: addr.SerialInterrupt, wantOK: true, vector: 0x58},
		{desc: "joypad alone", flags: 0x10, enable: 0xFF, want: addr.JoypadInterrupt, wantOK: true, vector: 0x60},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := New()
			c.Write(addr.IF, tC.flags)
			c.Write(addr.IE, tC.enable)

			got, ok := c.Next()
			assert.Equal(t, tC.wantOK, ok)
			if tC.wantOK {
				assert.Equal(t, tC.want, got)
				assert.Equal(t, tC.vector, got.Vector())
			}
		})
	}
}

func TestRegisterMasks(t *testing.T) {
	c := New()
	c.Write(addr.IF, 0xFF)
	c.Write(addr.IE, 0xFF)

	assert.Equal(t, uint8(0xFF), c.Read(addr.IF))
	assert.Equal(t, uint8(0x1F), c.Flags())
	assert.Equal(t, uint8(0xFF), c.Read(addr.IE))
	assert.Equal(t, uint8(0x1F), c.Pending())

	c.Reset()
	assert.Equal(t, uint8(0xE0), c.Read(addr.IF))
	assert.Equal(t, uint8(0x00), c.Read(addr.IE))
}
