package memory

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// JoypadKey represents a key on the joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

var joypadKeyNames = [...]string{"right", "left", "up", "down", "a", "b", "select", "start"}

func (k JoypadKey) String() string {
	if int(k) < len(joypadKeyNames) {
		return joypadKeyNames[k]
	}
	return "unknown"
}

// Joypad is the P1 register and the state of the eight keys behind it.
// Key bits are active low: 1 is released, 0 is pressed.
type Joypad struct {
	irq     func(addr.Interrupt)
	buttons uint8 // A, B, Select, Start in bits 0-3
	dpad    uint8 // Right, Left, Up, Down in bits 0-3
	line    uint8 // selection bits 4-5 as written
}

// NewJoypad creates a joypad with every key released. irq is called with
// the joypad interrupt when a key goes down, it may be nil.
func NewJoypad(irq func(addr.Interrupt)) *Joypad {
	j := &Joypad{irq: irq}
	j.Reset()
	return j
}

// Reset releases every key and deselects both groups.
func (j *Joypad) Reset() {
	j.buttons = 0x0F
	j.dpad = 0x0F
	j.line = 0x30
}

// Read returns P1 according to selection bits and key status.
//
// The mapping:
//   - if bit 4 is clear, bits 0-3 are mapped to the 4 d-pad directions
//   - if bit 5 is clear, bits 0-3 are mapped to A, B, Select, Start
//   - if both are clear, hw does an AND of both key sets
//   - if neither is clear, return 0x0F (high impedance state)
//
// Bits 6-7 are unused, they always read as 1.
func (j *Joypad) Read() uint8 {
	result := uint8(0b11000000) | j.line

	selectDpad := !bit.IsSet(4, j.line)
	selectButtons := !bit.IsSet(5, j.line)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}
	return result
}

// Write sets the selection lines, only bits 4-5 are writable.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0b00110000
}

func (j *Joypad) keyBit(key JoypadKey) (*uint8, uint8) {
	if key >= JoypadA {
		return &j.buttons, uint8(key - JoypadA)
	}
	return &j.dpad, uint8(key)
}

// Press marks the key as held. A key going down requests the joypad
// interrupt; it reports whether the key state changed.
func (j *Joypad) Press(key JoypadKey) bool {
	if key > JoypadStart {
		return false
	}
	group, index := j.keyBit(key)
	if !bit.IsSet(index, *group) {
		return false
	}
	*group = bit.Reset(index, *group)
	if j.irq != nil {
		j.irq(addr.JoypadInterrupt)
	}
	return true
}

// Release marks the key as released.
func (j *Joypad) Release(key JoypadKey) {
	if key > JoypadStart {
		return
	}
	group, index := j.keyBit(key)
	*group = bit.Set(index, *group)
}

// Pressed reports whether the key is held.
func (j *Joypad) Pressed(key JoypadKey) bool {
	if key > JoypadStart {
		return false
	}
	group, index := j.keyBit(key)
	return !bit.IsSet(index, *group)
}
