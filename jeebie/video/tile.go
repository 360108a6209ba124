package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// TileRow represents one row of a tile pattern (8 pixels).
//
// Game Boy tiles are 8x8 pixels, with 2 bits per pixel allowing 4 colors.
// Each tile row uses 2 bytes in a bit-plane format:
//
//	Byte 1 (Low):  Bit plane 0 - provides bit 0 of each pixel's color
//	Byte 2 (High): Bit plane 1 - provides bit 1 of each pixel's color
//
// Bit 7 represents the leftmost pixel, bit 0 the rightmost:
//
//	Bit:     7 6 5 4 3 2 1 0
//	Pixel:   0 1 2 3 4 5 6 7
//
// Example: Bytes $3C and $7E represent a row:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// The colour index is mapped to a shade by BGP for the background and window
// and by OBP0/OBP1 for sprites, where index 0 is transparent.
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel extracts a pixel color (0-3) from the tile row.
// pixelX should be 0-7, where 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	return t.colorAt(uint8(7 - pixelX))
}

// GetPixelFlipped extracts a pixel color with horizontal flip.
func (t TileRow) GetPixelFlipped(pixelX int) uint8 {
	return t.colorAt(uint8(pixelX))
}

func (t TileRow) colorAt(bitIndex uint8) uint8 {
	return bit.Value(bitIndex, t.High)<<1 | bit.Value(bitIndex, t.Low)
}

// tileDataAddress returns the address of a tile's first byte. With unsigned
// addressing (LCDC bit 4 set) tiles 0-255 start at 0x8000, otherwise the index
// is signed and relative to 0x9000.
func tileDataAddress(index uint8, unsigned bool) uint16 {
	if unsigned {
		return addr.TileData0 + uint16(index)*16
	}
	return uint16(int(addr.TileData2) + int(int8(index))*16)
}

// tileRow reads row (0-7, or 0-15 for tall sprites) of the tile at base.
func (g *GPU) tileRow(base uint16, row int) TileRow {
	offset := base - addr.VRAMStart + uint16(row*2)
	return TileRow{Low: g.vram[offset], High: g.vram[offset+1]}
}
