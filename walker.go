package docpack

import (
	"fmt"
	"io"

	"github.com/rawbytedev/docpack/internal/wire"
)

// BufferWalker scans a multi-frame buffer using the footers to find
// frame boundaries, no external index needed. Footers trail their
// frames, so the walker anchors at the end of the buffer and steps
// backward, yielding frames from last-encoded to first-encoded. Use
// the iterators for encode-order traversal.
type BufferWalker struct {
	buf    []byte
	cursor int
}

// NewBufferWalker returns a walker positioned after the last frame.
func NewBufferWalker(buf []byte) *BufferWalker {
	return &BufferWalker{buf: buf, cursor: len(buf)}
}

// Next reads the footer at the current boundary, recomputes the
// checksum over the declared data bytes, and on match yields the
// frame's data slice. On checksum mismatch it reports
// ErrChecksumMismatch for that frame after stepping past it using the
// declared length, so the caller may keep calling Next to skip bad
// frames. Truncation (not enough bytes for the declared frame) is
// ErrTruncatedFrame and terminal. End of buffer is io.EOF.
func (w *BufferWalker) Next() ([]byte, error) {
	if w.cursor == 0 {
		return nil, io.EOF
	}
	if w.cursor < wire.FooterSize {
		n := w.cursor
		w.cursor = 0
		return nil, fmt.Errorf("%w: %d trailing bytes, footer needs %d", ErrTruncatedFrame, n, wire.FooterSize)
	}
	sum, length := wire.Footer(w.buf[w.cursor-wire.FooterSize:])
	if int(length) > w.cursor-wire.FooterSize {
		avail := w.cursor - wire.FooterSize
		w.cursor = 0
		return nil, fmt.Errorf("%w: footer claims %d data bytes, %d available", ErrTruncatedFrame, length, avail)
	}
	end := w.cursor - wire.FooterSize
	data := w.buf[end-int(length) : end]
	w.cursor = end - int(length)
	if Checksum(data) != sum {
		return nil, fmt.Errorf("%w: frame ending at %d", ErrChecksumMismatch, end)
	}
	return data, nil
}

// Offset returns the boundary the walker will read next; zero means
// the scan is complete.
func (w *BufferWalker) Offset() int { return w.cursor }

type frame struct {
	data []byte
	sum  uint32
}

// splitFrames discovers every frame boundary using declared lengths
// only (checksums are verified lazily per frame, so one corrupt frame
// cannot hide the others) and returns the frames in encode order.
func splitFrames(buf []byte) ([]frame, error) {
	var frames []frame
	cursor := len(buf)
	for cursor > 0 {
		if cursor < wire.FooterSize {
			return nil, fmt.Errorf("%w: %d trailing bytes, footer needs %d", ErrTruncatedFrame, cursor, wire.FooterSize)
		}
		sum, length := wire.Footer(buf[cursor-wire.FooterSize:])
		if int(length) > cursor-wire.FooterSize {
			return nil, fmt.Errorf("%w: footer claims %d data bytes, %d available", ErrTruncatedFrame, length, cursor-wire.FooterSize)
		}
		end := cursor - wire.FooterSize
		frames = append(frames, frame{data: buf[end-int(length) : end], sum: sum})
		cursor = end - int(length)
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames, nil
}

// ArchiveIter is a lazy, finite, forward-only sequence of zero-copy
// views over all frames of a buffer, in encode order. Each step may
// fail independently without poisoning later steps; keep calling Next
// to skip a corrupt frame, or stop to abort. The backing buffer must
// outlive every view the iterator yields.
type ArchiveIter struct {
	frames  []frame
	idx     int
	trusted bool
}

// IterArchived returns a validated-mode iterator over buf: each
// frame's checksum is verified and its structure walked before a view
// is produced.
func IterArchived(buf []byte) (*ArchiveIter, error) {
	frames, err := splitFrames(buf)
	if err != nil {
		return nil, err
	}
	return &ArchiveIter{frames: frames, idx: -1}, nil
}

// IterArchivedUnchecked returns a trusted-mode iterator: no checksum
// or structural verification. Only for buffers that never left the
// trust domain that encoded them.
func IterArchivedUnchecked(buf []byte) (*ArchiveIter, error) {
	frames, err := splitFrames(buf)
	if err != nil {
		return nil, err
	}
	return &ArchiveIter{frames: frames, idx: -1, trusted: true}, nil
}

// Next advances to the next frame. It returns false at end of buffer.
func (it *ArchiveIter) Next() bool {
	it.idx++
	return it.idx < len(it.frames)
}

// Len returns the total number of frames discovered.
func (it *ArchiveIter) Len() int { return len(it.frames) }

// Document returns the view of the current frame, or the decode error
// for exactly this frame.
func (it *ArchiveIter) Document() (*ArchivedDocument, error) {
	f := it.frames[it.idx]
	if it.trusted {
		return AccessUnchecked(f.data)
	}
	if Checksum(f.data) != f.sum {
		return nil, fmt.Errorf("%w: frame %d", ErrChecksumMismatch, it.idx)
	}
	return Access(f.data)
}

// DocumentIter walks frames like ArchiveIter but eagerly deep-copies
// each view into an owned Document, for consumers that outlive the
// buffer. Always validated.
type DocumentIter struct {
	it *ArchiveIter
}

// IterDocuments returns an owned-document iterator over buf.
func IterDocuments(buf []byte) (*DocumentIter, error) {
	it, err := IterArchived(buf)
	if err != nil {
		return nil, err
	}
	return &DocumentIter{it: it}, nil
}

// Next advances to the next frame. It returns false at end of buffer.
func (d *DocumentIter) Next() bool { return d.it.Next() }

// Len returns the total number of frames discovered.
func (d *DocumentIter) Len() int { return d.it.Len() }

// Document materializes the current frame, or returns the decode
// error for exactly this frame.
func (d *DocumentIter) Document() (*Document, error) {
	view, err := d.it.Document()
	if err != nil {
		return nil, err
	}
	return view.Deserialize(), nil
}
