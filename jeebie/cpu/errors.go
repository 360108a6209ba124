package cpu

import "fmt"

// IllegalOpcodeError is returned by Step when the byte at PC is one of the
// eleven unassigned opcodes. Real hardware locks up.
type IllegalOpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}
