package cpu

import (
	"github.com/valerio/jeebie-core/jeebie/interrupt"
)

type testBus struct {
	mem    [0x10000]uint8
	writes map[uint16]int
}

func (b *testBus) Read(address uint16) uint8 { return b.mem[address] }

func (b *testBus) Write(address uint16, value uint8) {
	if b.writes == nil {
		b.writes = make(map[uint16]int)
	}
	b.writes[address]++
	b.mem[address] = value
}

// newTestCPU returns a CPU in the post-boot state with program at 0x0100.
func newTestCPU(program ...uint8) (*CPU, *testBus, *interrupt.Controller) {
	bus := &testBus{}
	irq := interrupt.New()
	c := New(bus, irq)
	c.SkipBoot()
	copy(bus.mem[0x0100:], program)
	return c, bus, irq
}

func mustStep(c *CPU) int {
	cycles, err := c.Step()
	if err != nil {
		panic(err)
	}
	return cycles
}
