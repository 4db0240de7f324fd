package docpack

import "fmt"

// SharedRegistry maps a value's content identity to the offset where
// it was first written, so a second occurrence of the same payload
// writes only a back-reference instead of duplicating bytes. Entries
// are write-once and never overwritten.
//
// Identity is the payload's content, not its address, so structurally
// equal payloads deduplicate even when they come from distinct
// allocations.
type SharedRegistry struct {
	offsets map[string]uint32
}

// NewSharedRegistry returns an empty registry.
func NewSharedRegistry() *SharedRegistry {
	return &SharedRegistry{offsets: make(map[string]uint32)}
}

// Lookup returns the first-written offset for payload b, if any.
func (r *SharedRegistry) Lookup(b []byte) (uint32, bool) {
	off, ok := r.offsets[string(b)]
	return off, ok
}

// Register records off as the first-written offset for payload b.
// Re-registering an already-registered identity is ErrSharedConflict.
func (r *SharedRegistry) Register(b []byte, off uint32) error {
	if prev, ok := r.offsets[string(b)]; ok {
		return fmt.Errorf("%w: identity already at offset %d", ErrSharedConflict, prev)
	}
	r.offsets[string(b)] = off
	return nil
}

// Len returns the number of registered identities.
func (r *SharedRegistry) Len() int { return len(r.offsets) }

// Reset forgets all identities, keeping the allocation.
func (r *SharedRegistry) Reset() { clear(r.offsets) }
