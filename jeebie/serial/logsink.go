// Package serial implements the link port as seen by software that has no
// partner on the other end of the cable.
package serial

import (
	"io"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// bytePeriod is the internal clock transfer time of one byte (8192 Hz bit clock).
const bytePeriod = 4096

const (
	scStart    = 7
	scInternal = 0

	// bits 1-6 of SC are unused and read as 1
	scUnused = 0x7E

	// what shifts in when nothing is plugged in
	disconnected = 0xFF
)

// LogSink is a link port with nothing attached. Bytes sent with the internal
// clock are logged line by line and optionally copied to a writer, which is
// how test programs usually report their results.
type LogSink struct {
	sb, sc byte

	// remaining cycles of the byte in flight, 0 when idle
	pending int
	fixed   bool

	irq    func()
	out    io.Writer
	logger *slog.Logger
	line   []byte
}

type LogSinkOption func(*LogSink)

// WithFixedTiming completes transfers after 4096 cycles per byte instead of
// immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.fixed = true } }

// WithOutput copies every transmitted byte to w, unbuffered.
func WithOutput(w io.Writer) LogSinkOption { return func(s *LogSink) { s.out = w } }

// WithLogger replaces the default logger used for completed lines.
func WithLogger(l *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = l } }

// NewLogSink creates a disconnected link port. irq is called when a transfer
// completes and should request the serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{irq: irq, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc | scUnused
	}
	panic("serial: read outside SB/SC")
}

func (s *LogSink) Write(address uint16, value byte) {
	s.Poke(address, value)
	if address == addr.SC && s.pending == 0 && bit.IsSet(scStart, value) && bit.IsSet(scInternal, value) {
		s.transmit(s.sb)
	}
}

// Poke stores a register value without starting a transfer.
func (s *LogSink) Poke(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
	default:
		panic("serial: write outside SB/SC")
	}
}

func (s *LogSink) Tick(cycles int) {
	if s.pending == 0 {
		return
	}
	s.pending -= cycles
	if s.pending <= 0 {
		s.finish()
	}
}

// Flush logs any partial line.
func (s *LogSink) Flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

func (s *LogSink) transmit(b byte) {
	if s.out != nil {
		if _, err := s.out.Write([]byte{b}); err != nil {
			s.logger.Warn("serial output failed", "err", err)
			s.out = nil
		}
	}

	switch b {
	case 0, '\n', '\r':
		s.Flush()
	default:
		s.line = append(s.line, b)
	}

	if s.fixed {
		s.pending = bytePeriod
		return
	}
	s.finish()
}

func (s *LogSink) finish() {
	s.pending = 0
	s.sb = disconnected
	s.sc = bit.Reset(scStart, s.sc)
	if s.irq != nil {
		s.irq()
	}
}
