// Package disasm renders machine code as text using the CPU instruction tables.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/bit"
	"github.com/valerio/jeebie-core/jeebie/cpu"
)

// Memory is read by the disassembler. Implementations must not have side
// effects, a machine's Peek is the intended source.
type Memory interface {
	Peek(address uint16) uint8
}

// Bytes adapts a flat image to Memory. Base is the address of the first byte;
// addresses outside the image read as 0xFF.
type Bytes struct {
	Base uint16
	Data []byte
}

func (b Bytes) Peek(address uint16) uint8 {
	offset := int(address) - int(b.Base)
	if offset < 0 || offset >= len(b.Data) {
		return 0xFF
	}
	return b.Data[offset]
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Bytes       []uint8
	Instruction string
	Length      int
}

// DisassembleAt disassembles the instruction at the given program counter
func DisassembleAt(pc uint16, mem Memory) DisassemblyLine {
	opcode := mem.Peek(pc)
	instr := cpu.Lookup(opcode)
	if opcode == 0xCB {
		instr = cpu.LookupCB(mem.Peek(pc + 1))
	}

	length := instr.Length()
	raw := make([]uint8, length)
	for i := range raw {
		raw[i] = mem.Peek(pc + uint16(i))
	}

	var arg uint16
	switch instr.Operand.Size() {
	case 1:
		arg = uint16(raw[length-1])
	case 2:
		arg = bit.Combine(raw[length-1], raw[length-2])
	}

	return DisassemblyLine{
		Address:     pc,
		Bytes:       raw,
		Instruction: cpu.FormatMnemonic(instr, arg, pc+uint16(length)),
		Length:      length,
	}
}

// DisassembleRange disassembles count instructions starting at startPC.
// It stops early instead of wrapping past 0xFFFF.
func DisassembleRange(startPC uint16, count int, mem Memory) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	pc := int(startPC)

	for i := 0; i < count && pc <= 0xFFFF; i++ {
		line := DisassembleAt(uint16(pc), mem)
		lines = append(lines, line)
		pc += line.Length
	}

	return lines
}

// FormatDisassemblyLine formats a disassembly line for display
func FormatDisassemblyLine(line DisassemblyLine, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = ">"
	}

	hex := make([]string, len(line.Bytes))
	for i, b := range line.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}

	return fmt.Sprintf("%s0x%04X: %-9s %s", prefix, line.Address, strings.Join(hex, " "), line.Instruction)
}

// WriteImage writes a listing of a cartridge image from start to the end of
// the image, one instruction per line.
func WriteImage(w io.Writer, image []byte, start uint16) error {
	mem := Bytes{Data: image}
	for pc := int(start); pc < len(image) && pc <= 0xFFFF; {
		line := DisassembleAt(uint16(pc), mem)
		if _, err := fmt.Fprintln(w, FormatDisassemblyLine(line, false)); err != nil {
			return err
		}
		pc += line.Length
	}
	return nil
}
