package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// drawScanline composites the current line into the back buffer: background,
// then window, then sprites.
func (g *GPU) drawScanline() {
	line := int(g.ly)
	if line >= visibleLines {
		return
	}

	if bit.IsSet(bgDisplay, g.lcdc) {
		g.drawBackground(line)
		g.drawWindow(line)
	} else {
		// BG and window blank to shade 0 regardless of BGP
		clear(g.bgIndex[:])
		for x := range FramebufferWidth {
			g.back.setShade(x, line, 0)
		}
	}

	if bit.IsSet(spriteDisplayEnable, g.lcdc) {
		g.drawSprites(line)
	}
}

func (g *GPU) tileMap(selectBit uint8) uint16 {
	if bit.IsSet(selectBit, g.lcdc) {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// mapPixel returns the colour index at (x, y) of the 256x256 map at mapBase.
func (g *GPU) mapPixel(mapBase uint16, x, y int) uint8 {
	unsigned := bit.IsSet(bgWindowTileDataSelect, g.lcdc)
	entry := mapBase + uint16((y/8)*32+x/8)
	tile := g.vram[entry-addr.VRAMStart]
	row := g.tileRow(tileDataAddress(tile, unsigned), y%8)
	return row.GetPixel(x % 8)
}

func (g *GPU) drawBackground(line int) {
	mapBase := g.tileMap(bgTileMapDisplaySelect)
	y := (line + int(g.scy)) & 0xFF

	for x := range FramebufferWidth {
		color := g.mapPixel(mapBase, (x+int(g.scx))&0xFF, y)
		g.bgIndex[x] = color
		g.back.setShade(x, line, applyPalette(g.bgp, color))
	}
}

// drawWindow draws the window over the background. The window keeps its own
// line counter, which only advances on lines where the window was drawn.
func (g *GPU) drawWindow(line int) {
	if !bit.IsSet(windowDisplayEnable, g.lcdc) {
		return
	}
	if line < int(g.wy) || g.wx > 166 {
		return
	}

	mapBase := g.tileMap(windowTileMapSelect)
	start := int(g.wx) - 7
	for x := max(start, 0); x < FramebufferWidth; x++ {
		color := g.mapPixel(mapBase, x-start, g.windowLine)
		g.bgIndex[x] = color
		g.back.setShade(x, line, applyPalette(g.bgp, color))
	}
	g.windowLine++
}

func (g *GPU) drawSprites(line int) {
	for _, sprite := range g.spritesForScanline(line) {
		if sprite.PixelMask == 0 {
			continue
		}

		palette := g.obp0
		if sprite.PaletteOBP1 {
			palette = g.obp1
		}

		for pixelX := range 8 {
			x := sprite.X + pixelX
			if x < 0 || x >= FramebufferWidth || !sprite.HasPriorityForPixel(pixelX) {
				continue
			}
			if sprite.BehindBG && g.bgIndex[x] != 0 {
				continue
			}
			g.back.setShade(x, line, applyPalette(palette, sprite.colorAt(pixelX)))
		}
	}
}
