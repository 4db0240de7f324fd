package docpack

import (
	"hash/crc32"
	"io"

	"github.com/rawbytedev/docpack/internal/wire"
)

// DefaultScratchCapacity is the serializer scratch size used when no
// explicit capacity is given. It bounds how much nested table state a
// single document may need; deeply nested documents may need more.
const DefaultScratchCapacity = 1024

// FooterSize is the fixed length of the frame footer: a 4-byte
// little-endian checksum followed by the 4-byte little-endian length
// of the frame's data bytes.
const FooterSize = wire.FooterSize

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC-32C checksum used in frame footers.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// Encoder turns Documents into checksum-framed byte frames. It reuses
// its output buffer, scratch, and registry across calls; it is not
// safe for concurrent use.
type Encoder struct {
	sink *BufferSink
	ser  *Serializer
}

// NewEncoder returns an Encoder with DefaultScratchCapacity.
func NewEncoder() *Encoder {
	return NewEncoderSize(DefaultScratchCapacity)
}

// NewEncoderSize returns an Encoder with an explicit scratch capacity.
func NewEncoderSize(scratchCapacity int) *Encoder {
	sink := NewBufferSink(256)
	return &Encoder{sink: sink, ser: NewSerializer(sink, scratchCapacity)}
}

// Encode serializes doc into one frame: the aligned data bytes plus
// the 8-byte footer. The returned slice aliases the encoder's internal
// buffer and is only valid until the next call.
func (e *Encoder) Encode(doc *Document) ([]byte, error) {
	e.sink.Reset()
	e.ser.Reset(e.sink)
	n, err := e.ser.SerializeDocument(doc)
	if err != nil {
		return nil, err
	}
	sum := Checksum(e.sink.Bytes())
	var footer [wire.FooterSize]byte
	wire.PutFooter(footer[:], sum, uint32(n))
	if err := e.sink.Write(footer[:]); err != nil {
		return nil, err
	}
	return e.sink.Bytes(), nil
}

// EncodeAppend serializes doc and appends the frame to dst. Frames
// concatenate with no separator beyond their own footers, so repeated
// calls build a multi-frame buffer incrementally without rewriting
// prior bytes. On error dst is returned unchanged.
func (e *Encoder) EncodeAppend(dst []byte, doc *Document) ([]byte, error) {
	frame, err := e.Encode(doc)
	if err != nil {
		return dst, err
	}
	return append(dst, frame...), nil
}

// EncodeTo serializes doc straight to w, computing the checksum and
// length incrementally so non-seekable sinks need no second pass.
// Returns the total bytes written including the footer. On error the
// destination's trailing bytes are unspecified; the caller must
// discard or truncate them.
func (e *Encoder) EncodeTo(w io.Writer, doc *Document) (int, error) {
	cw := NewChecksumLenWriter(w)
	e.ser.Reset(NewStreamSink(cw))
	n, err := e.ser.SerializeDocument(doc)
	if err != nil {
		return int(cw.Count()), err
	}
	if err := cw.Finish(); err != nil {
		return int(cw.Count()), err
	}
	return n + wire.FooterSize, nil
}

// ChecksumLenWriter wraps a stream and folds every written byte into a
// running CRC-32C and length. Finish appends the frame footer.
type ChecksumLenWriter struct {
	w   io.Writer
	crc uint32
	n   uint32
}

// NewChecksumLenWriter returns a ChecksumLenWriter over w.
func NewChecksumLenWriter(w io.Writer) *ChecksumLenWriter {
	return &ChecksumLenWriter{w: w}
}

func (c *ChecksumLenWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.crc = crc32.Update(c.crc, crcTable, p[:n])
	c.n += uint32(n)
	return n, err
}

// Sum32 returns the running checksum.
func (c *ChecksumLenWriter) Sum32() uint32 { return c.crc }

// Count returns the number of data bytes written so far.
func (c *ChecksumLenWriter) Count() uint32 { return c.n }

// Finish writes the 8-byte footer for the bytes streamed so far. The
// footer itself is not folded into the counts, so a following frame
// can reuse the writer after ResetState.
func (c *ChecksumLenWriter) Finish() error {
	var footer [wire.FooterSize]byte
	wire.PutFooter(footer[:], c.crc, c.n)
	_, err := c.w.Write(footer[:])
	return err
}

// ResetState clears the running checksum and length for the next
// frame, keeping the destination.
func (c *ChecksumLenWriter) ResetState() {
	c.crc = 0
	c.n = 0
}
