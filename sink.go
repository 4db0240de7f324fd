package docpack

import (
	"fmt"
	"io"

	"github.com/rawbytedev/docpack/internal/wire"
)

// Sink is the serializer's output: sequential writes with position
// tracking, padding, and alignment so scalar fields land on native
// offsets. Positions are relative to the start of the current frame.
type Sink interface {
	// Pos returns the number of bytes written so far.
	Pos() int
	// Write appends p at the current position.
	Write(p []byte) error
	// Pad appends n zero bytes.
	Pad(n int) error
	// Align pads until the position is a multiple of n (a power of
	// two) and returns the aligned position.
	Align(n int) (int, error)
}

var zeroPadding [32]byte

// BufferSink is an in-memory Sink backed by a growable byte slice.
type BufferSink struct {
	buf []byte
}

// NewBufferSink returns a BufferSink with the given initial capacity.
func NewBufferSink(capacity int) *BufferSink {
	return &BufferSink{buf: make([]byte, 0, capacity)}
}

func (b *BufferSink) Pos() int { return len(b.buf) }

func (b *BufferSink) Write(p []byte) error {
	b.buf = append(b.buf, p...)
	return nil
}

func (b *BufferSink) Pad(n int) error {
	for n > len(zeroPadding) {
		b.buf = append(b.buf, zeroPadding[:]...)
		n -= len(zeroPadding)
	}
	b.buf = append(b.buf, zeroPadding[:n]...)
	return nil
}

func (b *BufferSink) Align(n int) (int, error) {
	if err := b.Pad(wire.AlignUp(len(b.buf), n) - len(b.buf)); err != nil {
		return 0, err
	}
	return len(b.buf), nil
}

// Bytes returns the written bytes. The slice is invalidated by the
// next Write or Reset.
func (b *BufferSink) Bytes() []byte { return b.buf }

// Reset discards the written bytes, keeping the allocation.
func (b *BufferSink) Reset() { b.buf = b.buf[:0] }

// StreamSink adapts an arbitrary sequential io.Writer into a Sink. It
// tracks the write position itself and buffers nothing, for use when
// the destination is a stream rather than an in-memory buffer.
type StreamSink struct {
	w   io.Writer
	pos int
}

// NewStreamSink returns a StreamSink writing to w.
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Pos() int { return s.pos }

func (s *StreamSink) Write(p []byte) error {
	n, err := s.w.Write(p)
	s.pos += n
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}

func (s *StreamSink) Pad(n int) error {
	for n > len(zeroPadding) {
		if err := s.Write(zeroPadding[:]); err != nil {
			return err
		}
		n -= len(zeroPadding)
	}
	return s.Write(zeroPadding[:n])
}

func (s *StreamSink) Align(n int) (int, error) {
	if err := s.Pad(wire.AlignUp(s.pos, n) - s.pos); err != nil {
		return 0, err
	}
	return s.pos, nil
}
