package video

import (
	"image"
	"image/color"
)

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// GBColor is a display colour in 0xAARRGGBB form.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// Palette maps the four DMG shades, lightest first, to display colours.
type Palette [4]GBColor

// DefaultPalette is the grey ramp used when the presenter does not pick one.
var DefaultPalette = Palette{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// Color returns the display colour of a shade.
func (p Palette) Color(shade uint8) GBColor {
	return p[shade&0x03]
}

// RGBA returns the shade as a color.RGBA.
func (p Palette) RGBA(shade uint8) color.RGBA {
	c := p.Color(shade)
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)}
}

// FrameBuffer holds one 160x144 frame of shades (0-3) with the palette
// registers already applied.
type FrameBuffer struct {
	shades [FramebufferWidth * FramebufferHeight]uint8
}

// NewFrameBuffer creates a blank frame.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Shade returns the shade at (x, y). Out of range coordinates return 0.
func (fb *FrameBuffer) Shade(x, y int) uint8 {
	if x < 0 || x >= FramebufferWidth || y < 0 || y >= FramebufferHeight {
		return 0
	}
	return fb.shades[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) setShade(x, y int, shade uint8) {
	fb.shades[y*FramebufferWidth+x] = shade & 0x03
}

// Shades returns the frame in row-major order. The slice aliases the buffer.
func (fb *FrameBuffer) Shades() []uint8 {
	return fb.shades[:]
}

// Clear fills the frame with shade 0.
func (fb *FrameBuffer) Clear() {
	clear(fb.shades[:])
}

// Image converts the frame to an RGBA image using the given palette.
func (fb *FrameBuffer) Image(p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FramebufferWidth, FramebufferHeight))
	for y := range FramebufferHeight {
		for x := range FramebufferWidth {
			img.SetRGBA(x, y, p.RGBA(fb.shades[y*FramebufferWidth+x]))
		}
	}
	return img
}

// applyPalette maps a 2-bit colour index through a BGP/OBP register.
func applyPalette(palette, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}
