package video

import (
	"github.com/valerio/jeebie-core/jeebie/bit"
)

const (
	spriteCount      = 40
	maxLineSprites   = 10
	spriteAttrSize   = 4
	spriteYOffset    = 16
	spriteXOffset    = 8
	spriteTileHeight = 8
)

// Sprite represents a single sprite/object in OAM memory.
// The Game Boy has 40 sprites stored in OAM (Object Attribute Memory) from 0xFE00-0xFE9F.
type Sprite struct {
	Y         int   // screen Y of the top row, raw value minus 16
	X         int   // screen X of the left column, raw value minus 8
	TileIndex uint8 // Tile/pattern number (0-255)
	Flags     uint8 // Attribute flags byte
	OAMIndex  int   // OAM index (0-39)
	Height    int   // Sprite height (8 or 16 pixels, from LCDC bit 2)

	// parsed attribute flags for convenience
	PaletteOBP1 bool // false = OBP0, true = OBP1
	FlipX       bool // horizontally flip the sprite
	FlipY       bool // vertically flip the sprite
	BehindBG    bool // true = sprite is behind background colours 1-3

	// pixel priority mask - bit 7 is leftmost pixel, bit 0 is rightmost.
	// A bit is set if the pixel is opaque and this sprite won it after
	// sprite-to-sprite priority resolution.
	PixelMask uint8

	row TileRow // decoded pattern row for the current scanline
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

// HasPriorityForPixel returns true if this sprite has priority for the pixel at the given X position (0-7).
// Pixel 0 is the leftmost pixel, pixel 7 is the rightmost.
func (s *Sprite) HasPriorityForPixel(pixelX int) bool {
	if pixelX < 0 || pixelX > 7 {
		return false
	}
	pixelBit := uint8(1 << (7 - pixelX))
	return s.PixelMask&pixelBit != 0
}

// colorAt returns the colour index of the sprite's pixel (0-7) on the
// scanline it was selected for, honouring horizontal flip.
func (s *Sprite) colorAt(pixelX int) uint8 {
	if s.FlipX {
		return s.row.GetPixelFlipped(pixelX)
	}
	return s.row.GetPixel(pixelX)
}

func (g *GPU) spriteHeight() int {
	if bit.IsSet(spriteSize, g.lcdc) {
		return 2 * spriteTileHeight
	}
	return spriteTileHeight
}

func (g *GPU) readSprite(index, height int) Sprite {
	base := index * spriteAttrSize
	sprite := Sprite{
		Y:         int(g.oam[base]) - spriteYOffset,
		X:         int(g.oam[base+1]) - spriteXOffset,
		TileIndex: g.oam[base+2],
		Flags:     g.oam[base+3],
		OAMIndex:  index,
		Height:    height,
	}
	sprite.parseFlags()
	return sprite
}

// spritesForScanline returns the sprites that overlap the given scanline.
// Selection walks OAM in order and stops at 10, off-screen X positions
// included. Pixel ownership is then resolved by (X, OAM index) over opaque
// pixels only, so a transparent pixel never hides a lower priority sprite.
func (g *GPU) spritesForScanline(scanline int) []Sprite {
	sprites := g.spriteBuffer[:0]
	g.priorityBuffer.Reset()
	height := g.spriteHeight()

	for i := range spriteCount {
		spriteY := int(g.oam[i*spriteAttrSize]) - spriteYOffset
		if scanline < spriteY || scanline >= spriteY+height {
			continue
		}

		sprite := g.readSprite(i, height)
		row := scanline - sprite.Y
		if sprite.FlipY {
			row = height - 1 - row
		}
		tile := sprite.TileIndex
		if height == 2*spriteTileHeight {
			tile &^= 0x01
		}
		sprite.row = g.tileRow(tileDataAddress(tile, true), row)

		for pixelX := range 8 {
			if sprite.colorAt(pixelX) != 0 {
				g.priorityBuffer.Claim(sprite.X+pixelX, sprite.OAMIndex, sprite.X)
			}
		}

		sprites = append(sprites, sprite)
		if len(sprites) == maxLineSprites {
			break
		}
	}

	for i := range sprites {
		var mask uint8
		for pixelX := range 8 {
			if g.priorityBuffer.Owner(sprites[i].X+pixelX) == sprites[i].OAMIndex {
				mask |= 1 << (7 - pixelX)
			}
		}
		sprites[i].PixelMask = mask
	}

	return sprites
}

// Sprite returns the decoded attributes of OAM entry index (0-39), or nil.
func (g *GPU) Sprite(index int) *Sprite {
	if index < 0 || index >= spriteCount {
		return nil
	}
	sprite := g.readSprite(index, g.spriteHeight())
	return &sprite
}
