package docpack

import "fmt"

// Scratch is a fixed-capacity bump arena used while serializing nested
// structures: entry and slot tables are assembled here, then written
// to the sink in one piece. Scratch memory is never part of the
// output.
//
// Capacity is fixed on purpose. Alloc hands out subslices of one
// backing array, and outstanding tables stay live across nested
// serialize calls; growing the array would move it and invalidate
// them. Requesting more than the capacity is a hard
// ErrScratchExhausted, never silent growth.
type Scratch struct {
	buf  []byte
	used int
}

// NewScratch returns a scratch arena with the given capacity in bytes.
func NewScratch(capacity int) *Scratch {
	return &Scratch{buf: make([]byte, capacity)}
}

// Cap returns the total capacity in bytes.
func (s *Scratch) Cap() int { return len(s.buf) }

// Used returns the number of bytes currently allocated.
func (s *Scratch) Used() int { return s.used }

// Mark returns the current allocation point for a later Release.
func (s *Scratch) Mark() int { return s.used }

// Release frees every allocation made since the matching Mark.
func (s *Scratch) Release(mark int) { s.used = mark }

// Alloc returns a zeroed n-byte region, valid until the matching
// Release.
func (s *Scratch) Alloc(n int) ([]byte, error) {
	if n < 0 || s.used+n > len(s.buf) {
		return nil, fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrScratchExhausted, n, s.used, len(s.buf))
	}
	b := s.buf[s.used : s.used+n]
	s.used += n
	clear(b)
	return b, nil
}

// Reset frees all allocations.
func (s *Scratch) Reset() { s.used = 0 }
