package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestALUFlagTruthTables(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode uint8
		a, b   uint8
		fIn    uint8
		wantA  uint8
		wantB  uint8
		wantF  uint8
	}{
		{desc: "ADD 00+00", opcode: 0x80, a: 0x00, b: 0x00, wantA: 0x00, wantF: 0x80},
		{desc: "ADD FF+FF", opcode: 0x80, a: 0xFF, b: 0xFF, wantA: 0xFE, wantF: 0x30},
		{desc: "ADD 0F+01", opcode: 0x80, a: 0x0F, b: 0x01, wantA: 0x10, wantF: 0x20},
		{desc: "ADD 7F+01", opcode: 0x80, a: 0x7F, b: 0x01, wantA: 0x80, wantF: 0x20},
		{desc: "ADD FF+01", opcode: 0x80, a: 0xFF, b: 0x01, wantA: 0x00, wantF: 0xB0},

		{desc: "ADC 00+00+c", opcode: 0x88, a: 0x00, b: 0x00, fIn: 0x10, wantA: 0x01, wantF: 0x00},
		{desc: "ADC FF+FF+c", opcode: 0x88, a: 0xFF, b: 0xFF, fIn: 0x10, wantA: 0xFF, wantF: 0x30},
		{desc: "ADC 0F+00+c", opcode: 0x88, a: 0x0F, b: 0x00, fIn: 0x10, wantA: 0x10, wantF: 0x20},
		{desc: "ADC FF+00+c", opcode: 0x88, a: 0xFF, b: 0x00, fIn: 0x10, wantA: 0x00, wantF: 0xB0},
		{desc: "ADC ignores clear carry", opcode: 0x88, a: 0x0F, b: 0x01, wantA: 0x10, wantF: 0x20},

		{desc: "SUB 00-00", opcode: 0x90, a: 0x00, b: 0x00, wantA: 0x00, wantF: 0xC0},
		{desc: "SUB FF-FF", opcode: 0x90, a: 0xFF, b: 0xFF, wantA: 0x00, wantF: 0xC0},
		{desc: "SUB 10-01", opcode: 0x90, a: 0x10, b: 0x01, wantA: 0x0F, wantF: 0x60},
		{desc: "SUB 00-01", opcode: 0x90, a: 0x00, b: 0x01, wantA: 0xFF, wantF: 0x70},
		{desc: "SUB 80-01", opcode: 0x90, a: 0x80, b: 0x01, wantA: 0x7F, wantF: 0x60},

		{desc: "SBC 00-00-c", opcode: 0x98, a: 0x00, b: 0x00, fIn: 0x10, wantA: 0xFF, wantF: 0x70},
		{desc: "SBC 10-0F-c", opcode: 0x98, a: 0x10, b: 0x0F, fIn: 0x10, wantA: 0x00, wantF: 0xE0},
		{desc: "SBC FF-FF-c", opcode: 0x98, a: 0xFF, b: 0xFF, fIn: 0x10, wantA: 0xFF, wantF: 0x70},

		{desc: "AND 00&00", opcode: 0xA0, a: 0x00, b: 0x00, wantA: 0x00, wantF: 0xA0},
		{desc: "AND FF&FF", opcode: 0xA0, a: 0xFF, b: 0xFF, fIn: 0xD0, wantA: 0xFF, wantF: 0x20},
		{desc: "AND F0&0F", opcode: 0xA0, a: 0xF0, b: 0x0F, wantA: 0x00, wantF: 0xA0},

		{desc: "XOR FF^FF", opcode: 0xA8, a: 0xFF, b: 0xFF, fIn: 0x70, wantA: 0x00, wantF: 0x80},
		{desc: "XOR 0F^F0", opcode: 0xA8, a: 0x0F, b: 0xF0, fIn: 0x70, wantA: 0xFF, wantF: 0x00},

		{desc: "OR 00|00", opcode: 0xB0, a: 0x00, b: 0x00, wantA: 0x00, wantF: 0x80},
		{desc: "OR 7F|80", opcode: 0xB0, a: 0x7F, b: 0x80, fIn: 0xF0, wantA: 0xFF, wantF: 0x00},

		{desc: "CP equal", opcode: 0xB8, a: 0x00, b: 0x00, wantA: 0x00, wantF: 0xC0},
		{desc: "CP borrow", opcode: 0xB8, a: 0x0F, b: 0x10, wantA: 0x0F, wantF: 0x50},
		{desc: "CP half borrow", opcode: 0xB8, a: 0x10, b: 0x01, wantA: 0x10, wantF: 0x60},

		{desc: "INC FF keeps carry", opcode: 0x04, b: 0xFF, fIn: 0x10, wantB: 0x00, wantF: 0xB0},
		{desc: "INC 0F", opcode: 0x04, b: 0x0F, fIn: 0x10, wantB: 0x10, wantF: 0x30},
		{desc: "INC 7F", opcode: 0x04, b: 0x7F, wantB: 0x80, wantF: 0x20},
		{desc: "INC 00 clears N", opcode: 0x04, b: 0x00, fIn: 0x40, wantB: 0x01, wantF: 0x00},

		{desc: "DEC 01", opcode: 0x05, b: 0x01, wantB: 0x00, wantF: 0xC0},
		{desc: "DEC 00", opcode: 0x05, b: 0x00, fIn: 0x10, wantB: 0xFF, wantF: 0x70},
		{desc: "DEC 10", opcode: 0x05, b: 0x10, wantB: 0x0F, wantF: 0x60},
		{desc: "DEC 80", opcode: 0x05, b: 0x80, wantB: 0x7F, wantF: 0x60},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _, _ := newTestCPU(tC.opcode)
			c.a, c.b, c.f = tC.a, tC.b, tC.fIn

			mustStep(c)

			if tC.opcode == 0x04 || tC.opcode == 0x05 {
				assert.Equal(t, tC.wantB, c.b, "B")
			} else {
				assert.Equal(t, tC.wantA, c.a, "A")
			}
			assert.Equal(t, flagString(tC.wantF), flagString(c.f), "F")
		})
	}
}

func TestDAA(t *testing.T) {
	testCases := []struct {
		desc  string
		op    uint8 // ADD A,B or SUB B
		a, b  uint8
		wantA uint8
		wantF uint8
	}{
		{desc: "15+27", op: 0x80, a: 0x15, b: 0x27, wantA: 0x42, wantF: 0x00},
		{desc: "99+01", op: 0x80, a: 0x99, b: 0x01, wantA: 0x00, wantF: 0x90},
		{desc: "09+08", op: 0x80, a: 0x09, b: 0x08, wantA: 0x17, wantF: 0x00},
		{desc: "42-15", op: 0x90, a: 0x42, b: 0x15, wantA: 0x27, wantF: 0x40},
		{desc: "10-20", op: 0x90, a: 0x10, b: 0x20, wantA: 0x90, wantF: 0x50},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _, _ := newTestCPU(tC.op, 0x27)
			c.a, c.b = tC.a, tC.b
			mustStep(c)
			mustStep(c)
			assert.Equal(t, tC.wantA, c.a)
			assert.Equal(t, flagString(tC.wantF), flagString(c.f))
		})
	}
}

func TestSixteenBitArithmetic(t *testing.T) {
	t.Run("ADD HL,BC half carry from bit 11", func(t *testing.T) {
		c, _, _ := newTestCPU(0x09)
		c.setHL(0x0FFF)
		c.setBC(0x0001)
		c.f = 0x80
		mustStep(c)
		assert.Equal(t, uint16(0x1000), c.getHL())
		assert.Equal(t, "Z-H-", c.FlagString(), "Z untouched")
	})

	t.Run("ADD HL,HL carry", func(t *testing.T) {
		c, _, _ := newTestCPU(0x29)
		c.setHL(0x8000)
		c.f = 0
		mustStep(c)
		assert.Equal(t, uint16(0x0000), c.getHL())
		assert.Equal(t, "---C", c.FlagString())
	})

	t.Run("ADD SP,-1", func(t *testing.T) {
		c, _, _ := newTestCPU(0xE8, 0xFF)
		c.sp = 0x0001
		c.f = 0xF0
		assert.Equal(t, 16, mustStep(c))
		assert.Equal(t, uint16(0x0000), c.sp)
		assert.Equal(t, "--HC", c.FlagString())
	})

	t.Run("LD HL,SP+2", func(t *testing.T) {
		c, _, _ := newTestCPU(0xF8, 0x02)
		c.sp = 0xFFF8
		c.f = 0xF0
		assert.Equal(t, 12, mustStep(c))
		assert.Equal(t, uint16(0xFFFA), c.getHL())
		assert.Equal(t, "----", c.FlagString())
	})

	t.Run("INC BC wraps without flags", func(t *testing.T) {
		c, _, _ := newTestCPU(0x03)
		c.setBC(0xFFFF)
		c.f = 0
		assert.Equal(t, 8, mustStep(c))
		assert.Equal(t, uint16(0x0000), c.getBC())
		assert.Equal(t, "----", c.FlagString())
	})
}

func TestShiftsAndBits(t *testing.T) {
	testCases := []struct {
		desc  string
		cb    uint8
		in    uint8
		fIn   uint8
		want  uint8
		wantF string
	}{
		{desc: "RLC 80", cb: 0x00, in: 0x80, want: 0x01, wantF: "---C"},
		{desc: "RRC 01", cb: 0x08, in: 0x01, want: 0x80, wantF: "---C"},
		{desc: "RL with carry", cb: 0x10, in: 0x80, fIn: 0x10, want: 0x01, wantF: "---C"},
		{desc: "RL to zero", cb: 0x10, in: 0x80, want: 0x00, wantF: "Z--C"},
		{desc: "RR with carry", cb: 0x18, in: 0x01, fIn: 0x10, want: 0x80, wantF: "---C"},
		{desc: "SLA", cb: 0x20, in: 0xC0, want: 0x80, wantF: "---C"},
		{desc: "SRA keeps sign", cb: 0x28, in: 0x81, want: 0xC0, wantF: "---C"},
		{desc: "SWAP", cb: 0x30, in: 0xA5, fIn: 0x70, want: 0x5A, wantF: "----"},
		{desc: "SWAP zero", cb: 0x30, in: 0x00, want: 0x00, wantF: "Z---"},
		{desc: "SRL", cb: 0x38, in: 0x01, want: 0x00, wantF: "Z--C"},
		{desc: "BIT 7 set", cb: 0x78, in: 0x80, fIn: 0x10, want: 0x80, wantF: "--HC"},
		{desc: "BIT 0 clear", cb: 0x40, in: 0xFE, want: 0xFE, wantF: "Z-H-"},
		{desc: "RES 7", cb: 0xB8, in: 0xFF, want: 0x7F, wantF: "----"},
		{desc: "SET 0", cb: 0xC0, in: 0x00, fIn: 0xF0, want: 0x01, wantF: "ZNHC"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _, _ := newTestCPU(0xCB, tC.cb)
			c.b = tC.in
			c.f = tC.fIn
			assert.Equal(t, 8, mustStep(c))
			assert.Equal(t, tC.want, c.b)
			assert.Equal(t, tC.wantF, c.FlagString())
		})
	}
}

func TestAccumulatorRotatesClearZero(t *testing.T) {
	for _, op := range []uint8{0x07, 0x0F, 0x17, 0x1F} {
		t.Run(fmt.Sprintf("0x%02X", op), func(t *testing.T) {
			c, _, _ := newTestCPU(op)
			c.a = 0x00
			c.f = 0x80
			mustStep(c)
			assert.Equal(t, "----", c.FlagString())
		})
	}
}

func TestMiscFlagOps(t *testing.T) {
	c, _, _ := newTestCPU(0x2F, 0x37, 0x3F, 0x3F)
	c.a = 0x35
	c.f = 0x80

	mustStep(c) // CPL
	assert.Equal(t, uint8(0xCA), c.a)
	assert.Equal(t, "ZNH-", c.FlagString())

	mustStep(c) // SCF
	assert.Equal(t, "Z--C", c.FlagString())

	mustStep(c) // CCF
	assert.Equal(t, "Z---", c.FlagString())

	mustStep(c) // CCF
	assert.Equal(t, "Z--C", c.FlagString())
}
