package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

func TestJoypadSelection(t *testing.T) {
	j := NewJoypad(nil)
	j.Press(JoypadA)
	j.Press(JoypadDown)

	testCases := []struct {
		desc string
		sel  uint8
		want uint8
	}{
		{desc: "none selected", sel: 0x30, want: 0xFF},
		{desc: "buttons", sel: 0x10, want: 0xDE},
		{desc: "dpad", sel: 0x20, want: 0xE7},
		{desc: "both", sel: 0x00, want: 0xC6},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			j.Write(tC.sel)
			assert.Equal(t, tC.want, j.Read())
		})
	}
}

func TestJoypadInterrupt(t *testing.T) {
	var got []addr.Interrupt
	j := NewJoypad(func(i addr.Interrupt) { got = append(got, i) })

	assert.True(t, j.Press(JoypadStart))
	assert.False(t, j.Press(JoypadStart), "holding a key is not a new transition")
	assert.True(t, j.Pressed(JoypadStart))

	j.Release(JoypadStart)
	assert.False(t, j.Pressed(JoypadStart))
	assert.Equal(t, []addr.Interrupt{addr.JoypadInterrupt}, got)
}
