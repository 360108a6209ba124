// Package interrupt holds the IE/IF register pair and the priority logic
// shared by every interrupt source.
package interrupt

import "github.com/valerio/jeebie-core/jeebie/addr"

// only the low five bits of IF/IE are backed by latches.
const sourceMask = 0x1F

// Controller is the interrupt request (IF) and enable (IE) state.
// Devices call Request, the CPU polls Pending/Next and calls Acknowledge when
// it dispatches.
type Controller struct {
	flags  uint8
	enable uint8
}

// New returns a controller with no requests and every source disabled.
func New() *Controller {
	return &Controller{}
}

// Request latches the source in IF.
func (c *Controller) Request(src addr.Interrupt) {
	c.flags |= uint8(src) & sourceMask
}

// Acknowledge clears the source from IF.
func (c *Controller) Acknowledge(src addr.Interrupt) {
	c.flags &^= uint8(src)
}

// Pending returns the requested and enabled sources.
func (c *Controller) Pending() uint8 {
	return c.flags & c.enable & sourceMask
}

// Next returns the highest priority pending source.
func (c *Controller) Next() (addr.Interrupt, bool) {
	pending := c.Pending()
	if pending == 0 {
		return 0, false
	}
	for _, src := range addr.Interrupts {
		if pending&uint8(src) != 0 {
			return src, true
		}
	}
	return 0, false
}

// Flags returns the raw IF latches.
func (c *Controller) Flags() uint8 {
	return c.flags
}

// Enabled returns the raw IE value.
func (c *Controller) Enabled() uint8 {
	return c.enable
}

// Read serves bus reads of IF and IE. The three unused IF bits read as 1.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case addr.IF:
		return c.flags | 0xE0
	case addr.IE:
		return c.enable
	}
	return 0xFF
}

// Write serves bus writes of IF and IE. IE keeps all eight bits, software can
// read back what it wrote.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case addr.IF:
		c.flags = value & sourceMask
	case addr.IE:
		c.enable = value
	}
}

// Reset clears both registers.
func (c *Controller) Reset() {
	c.flags = 0
	c.enable = 0
}
