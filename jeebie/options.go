package jeebie

import "io"

type config struct {
	bootROM    []byte
	useBootROM bool
	randomize  bool
	seed       int64
	serialOut  io.Writer
	strict     bool
}

// Option configures a DMG at construction time.
type Option func(*config)

// WithBootROM runs the given 256 byte boot program instead of starting from
// the post-boot state.
func WithBootROM(data []byte) Option {
	return func(c *config) {
		c.bootROM = append([]byte(nil), data...)
		c.useBootROM = true
	}
}

// WithRandomizedRAM fills work RAM and high RAM with noise at power on, like
// real hardware. The same seed always produces the same contents.
func WithRandomizedRAM(seed int64) Option {
	return func(c *config) {
		c.randomize = true
		c.seed = seed
	}
}

// WithSerialOutput copies every byte sent over the link port to w.
func WithSerialOutput(w io.Writer) Option {
	return func(c *config) { c.serialOut = w }
}

// WithStrictChecks makes the PPU panic on inconsistent internal state.
func WithStrictChecks() Option {
	return func(c *config) { c.strict = true }
}
