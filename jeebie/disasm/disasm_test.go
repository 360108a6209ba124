package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleAt(t *testing.T) {
	testCases := []struct {
		desc   string
		code   []byte
		want   string
		length int
	}{
		{desc: "no operand", code: []byte{0x00}, want: "NOP", length: 1},
		{desc: "byte immediate", code: []byte{0x3E, 0x42}, want: "LD A,$42", length: 2},
		{desc: "word immediate is little endian", code: []byte{0xC3, 0x50, 0x01}, want: "JP $0150", length: 3},
		{desc: "high page", code: []byte{0xE0, 0x44}, want: "LDH ($FF44),A", length: 2},
		{desc: "relative jump target", code: []byte{0x18, 0xFE}, want: "JR $0100", length: 2},
		{desc: "prefixed", code: []byte{0xCB, 0x7C}, want: "BIT 7,H", length: 2},
		{desc: "prefixed swap", code: []byte{0xCB, 0x37}, want: "SWAP A", length: 2},
		{desc: "illegal", code: []byte{0xD3}, want: "ILLEGAL_D3", length: 1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			line := DisassembleAt(0x0100, Bytes{Base: 0x0100, Data: tC.code})
			assert.Equal(t, tC.want, line.Instruction)
			assert.Equal(t, tC.length, line.Length)
			assert.Equal(t, tC.code, line.Bytes)
			assert.Equal(t, uint16(0x0100), line.Address)
		})
	}
}

func TestDisassembleRange(t *testing.T) {
	mem := Bytes{Base: 0x0100, Data: []byte{0x00, 0x3E, 0x01, 0xC3, 0x00, 0x01}}

	lines := DisassembleRange(0x0100, 3, mem)
	require.Len(t, lines, 3)
	assert.Equal(t, uint16(0x0100), lines[0].Address)
	assert.Equal(t, uint16(0x0101), lines[1].Address)
	assert.Equal(t, uint16(0x0103), lines[2].Address)
	assert.Equal(t, "JP $0100", lines[2].Instruction)

	lines = DisassembleRange(0xFFFF, 5, mem)
	assert.Len(t, lines, 1, "stops at the end of the address space")
}

func TestFormatDisassemblyLine(t *testing.T) {
	line := DisassembleAt(0x0150, Bytes{Base: 0x0150, Data: []byte{0xC3, 0x50, 0x01}})
	assert.Equal(t, " 0x0150: C3 50 01  JP $0150", FormatDisassemblyLine(line, false))
	assert.Equal(t, ">0x0150: C3 50 01  JP $0150", FormatDisassemblyLine(line, true))
}

func TestWriteImage(t *testing.T) {
	image := make([]byte, 0x106)
	copy(image[0x100:], []byte{0x00, 0xC3, 0x50, 0x01, 0x18, 0xFE})

	var out bytes.Buffer
	require.NoError(t, WriteImage(&out, image, 0x100))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NOP")
	assert.Contains(t, lines[1], "JP $0150")
	assert.Contains(t, lines[2], "JR $0104")
}

func TestBytesOutOfRange(t *testing.T) {
	mem := Bytes{Base: 0x8000, Data: []byte{0x12}}
	assert.Equal(t, uint8(0x12), mem.Peek(0x8000))
	assert.Equal(t, uint8(0xFF), mem.Peek(0x7FFF))
	assert.Equal(t, uint8(0xFF), mem.Peek(0x8001))
}
