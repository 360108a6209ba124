// Package timer implements the DIV/TIMA/TMA/TAC block driven by the 16-bit
// system counter.
package timer

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// tacLookup maps TAC input clock select (bits 1-0) to the bit position
// of the 16-bit internal divider (systemCounter) used as the timer's
// clock source. The timer increments on falling edges of this selected
// bit when the timer is enabled (TAC bit 2 = 1).
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var tacLookup = [4]uint8{9, 3, 5, 7}

// overflowDelay is the number of cycles TIMA reads 0 after overflowing,
// before TMA is loaded and the interrupt is requested.
const overflowDelay = 4

// Requester receives the timer interrupt.
type Requester interface {
	Request(addr.Interrupt)
}

// Timer encapsulates the DIV/TIMA/TMA/TAC behavior.
type Timer struct {
	irq Requester

	systemCounter uint16 // DIV is the upper 8 bits
	timaOverflow  int    // cycles left before the TMA reload

	tima byte
	tma  byte
	tac  byte
}

// New creates a timer that raises its interrupt on irq.
func New(irq Requester) *Timer {
	return &Timer{irq: irq}
}

// SetSeed initializes the internal divider counter, used for the post-boot state.
func (t *Timer) SetSeed(seed uint16) {
	t.systemCounter = seed
	t.timaOverflow = 0
}

// Reset returns every register to its power-on value.
func (t *Timer) Reset() {
	t.systemCounter = 0
	t.timaOverflow = 0
	t.tima, t.tma, t.tac = 0, 0, 0
}

// Counter returns the full 16-bit system counter.
func (t *Timer) Counter() uint16 {
	return t.systemCounter
}

// ResetDivider clears the system counter, as a DIV write or STOP does.
func (t *Timer) ResetDivider() {
	before := t.input()
	t.systemCounter = 0
	t.edge(before)
}

// Tick advances the timer by the given number of cycles.
func (t *Timer) Tick(cycles int) {
	for range cycles {
		if t.timaOverflow > 0 {
			t.timaOverflow--
			if t.timaOverflow == 0 {
				t.tima = t.tma
				if t.irq != nil {
					t.irq.Request(addr.TimerInterrupt)
				}
			}
		}

		before := t.input()
		t.systemCounter++
		t.edge(before)
	}
}

// input is the AND of the enable bit and the selected counter bit; TIMA
// counts on its falling edge.
func (t *Timer) input() bool {
	return bit.IsSet(2, t.tac) && bit.IsSet16(tacLookup[t.tac&0x03], t.systemCounter)
}

func (t *Timer) edge(before bool) {
	if before && !t.input() {
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.timaOverflow = overflowDelay
	}
	t.tima++
}

// Read serves bus reads of the timer registers.
func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return byte(t.systemCounter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

// Write serves bus writes of the timer registers. DIV and TAC writes can
// produce a falling edge on the timer input and tick TIMA once.
func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.ResetDivider()
	case addr.TIMA:
		// a write during the overflow window cancels the pending reload
		t.timaOverflow = 0
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		before := t.input()
		t.tac = value & 0x07
		t.edge(before)
	}
}

// Poke stores a register value without edge effects: DIV sets the upper byte
// of the counter, TIMA does not cancel a pending reload.
func (t *Timer) Poke(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.systemCounter = uint16(value) << 8
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
