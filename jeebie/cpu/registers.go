package cpu

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/bit"
)

// Registers is a copy of the register file, used to inspect or replace the
// CPU state from outside.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
	IME  bool
}

func (r Registers) AF() uint16 { return bit.Combine(r.A, r.F) }
func (r Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r Registers) HL() uint16 { return bit.Combine(r.H, r.L) }

// SetAF sets A and F, the low nibble of F is always zero.
func (r *Registers) SetAF(value uint16) {
	r.A = bit.High(value)
	r.F = bit.Low(value) & 0xF0
}

func (r *Registers) SetBC(value uint16) { r.B, r.C = bit.Split(value) }
func (r *Registers) SetDE(value uint16) { r.D, r.E = bit.Split(value) }
func (r *Registers) SetHL(value uint16) { r.H, r.L = bit.Split(value) }

func (r Registers) String() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X %s IME=%t",
		r.AF(), r.BC(), r.DE(), r.HL(), r.SP, r.PC, flagString(r.F), r.IME)
}

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers {
	return Registers{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP:  c.sp,
		PC:  c.pc,
		IME: c.interruptsEnabled,
	}
}

// SetRegisters replaces the register file. It clears any pending EI, HALT,
// STOP or fault, so a faulted CPU can be moved past the bad opcode.
func (c *CPU) SetRegisters(r Registers) {
	c.a, c.f = r.A, r.F&0xF0
	c.b, c.c = r.B, r.C
	c.d, c.e = r.D, r.E
	c.h, c.l = r.H, r.L
	c.sp = r.SP
	c.pc = r.PC
	c.interruptsEnabled = r.IME
	c.eiPending = false
	c.halted = false
	c.stopped = false
	c.haltBug = false
	c.fault = nil
}
