// Package wire holds the fixed-size layout primitives shared by the
// serializer and the decoder. All multi-byte integers are little-endian.
package wire

import "encoding/binary"

// Layout sizes in bytes.
const (
	SlotSize   = 16 // tagged value slot: tag(1) + zero(7) + payload(8)
	RefSize    = 8  // blob reference: offset(4) + length(4)
	EntrySize  = 24 // field entry: key ref(8) + value slot(16)
	RootSize   = 16 // root struct: id(8) + fields ref(8)
	FooterSize = 8  // frame footer: checksum(4) + length(4)
)

// AlignUp rounds pos up to the next multiple of align (a power of two).
func AlignUp(pos, align int) int {
	return (pos + align - 1) &^ (align - 1)
}

// PutRef encodes an (offset, length-or-count) pair into b.
func PutRef(b []byte, off, n uint32) {
	binary.LittleEndian.PutUint32(b, off)
	binary.LittleEndian.PutUint32(b[4:], n)
}

// Ref decodes an (offset, length-or-count) pair from b.
func Ref(b []byte) (off, n uint32) {
	return binary.LittleEndian.Uint32(b), binary.LittleEndian.Uint32(b[4:])
}

// PutSlotScalar fills a value slot with an inline 8-byte payload.
func PutSlotScalar(slot []byte, tag byte, payload uint64) {
	slot[0] = tag
	binary.LittleEndian.PutUint64(slot[8:], payload)
}

// PutSlotRef fills a value slot with a reference payload.
func PutSlotRef(slot []byte, tag byte, off, n uint32) {
	slot[0] = tag
	PutRef(slot[8:], off, n)
}

// SlotScalar reads the inline payload of a value slot.
func SlotScalar(slot []byte) uint64 {
	return binary.LittleEndian.Uint64(slot[8:])
}

// PutFooter encodes a frame footer.
func PutFooter(b []byte, sum, length uint32) {
	binary.LittleEndian.PutUint32(b, sum)
	binary.LittleEndian.PutUint32(b[4:], length)
}

// Footer decodes a frame footer.
func Footer(b []byte) (sum, length uint32) {
	return binary.LittleEndian.Uint32(b), binary.LittleEndian.Uint32(b[4:])
}
