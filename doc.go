// Package docpack is a binary serialization engine for a JSON-like
// document model with a zero-copy read path: encoded bytes are
// interpreted in place, no deserialization pass, or deep-copied into
// owned Documents when the buffer's lifetime is shorter than the
// consumer's.
//
// # Frame format
//
// One encoded Document plus its footer is a frame:
//
//	[data: N bytes][checksum: u32 LE][length: u32 LE]
//
// The footer is always 8 bytes and length == N. Frames concatenate in
// one buffer with no separator, magic, or version tag; the footers
// alone recover the boundaries (BufferWalker, IterArchived).
//
// # Data layout
//
// All integers are little-endian; offsets are relative to the frame's
// data start and always point backward, because children are written
// before the structures that reference them. The 16-byte root struct
// occupies the last bytes of the data region:
//
//	root:  [id: u64][fields offset: u32][field count: u32]
//	entry: [key offset: u32][key length: u32][value slot: 16 bytes]
//	slot:  [tag: 1][zero: 7][payload: 8]
//
// A slot's payload is either an inline scalar (bool, u64, i64, f64
// bits, date millis) or an (offset, length-or-count) reference to
// variable-length data: raw bytes for strings and byte blobs, packed
// element runs for homogeneous arrays, slot tables for dynamic arrays,
// entry tables for objects. Entry and slot tables are 8-aligned and
// 64-bit element runs are 8-aligned, so a reader dereferences scalar
// fields at native alignment with no marshalling.
//
// # Trust levels
//
// Access validates the whole structure before returning a view;
// AccessUnchecked trusts the bytes outright and is only for
// same-trust-domain round trips. Validated iteration additionally
// verifies each frame's checksum; trusted iteration skips both.
//
// Encoders, Serializers, and their scratch/registry state are
// single-goroutine; share buffers, not instances.
package docpack
