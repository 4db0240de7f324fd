package docpack

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rawbytedev/docpack/internal/wire"
)

// Serializer turns an owned Document into aligned frame data. It
// composes an output sink, a fixed-capacity scratch arena for building
// nested tables, and a shared-value registry for back-referencing
// duplicated payloads.
//
// Layout is children-first: blob payloads and element runs are written
// before the table that references them, so every stored offset points
// strictly backward and a stream sink needs no seeking. The 16-byte
// root struct lands last.
//
// A Serializer holds scratch and registry state and is not safe for
// concurrent use; give each worker its own instance.
type Serializer struct {
	sink    Sink
	scratch *Scratch
	shared  *SharedRegistry
}

// NewSerializer returns a Serializer writing to sink with the given
// scratch capacity.
func NewSerializer(sink Sink, scratchCapacity int) *Serializer {
	return &Serializer{
		sink:    sink,
		scratch: NewScratch(scratchCapacity),
		shared:  NewSharedRegistry(),
	}
}

// Reset points the serializer at a new sink and clears scratch and
// registry state. Offsets are frame-relative, so the registry never
// survives across frames.
func (s *Serializer) Reset(sink Sink) {
	s.sink = sink
	s.scratch.Reset()
	s.shared.Reset()
}

// SerializeDocument writes doc to the sink and returns the total data
// length. The sink must be at position zero.
func (s *Serializer) SerializeDocument(doc *Document) (int, error) {
	off, err := s.writeEntries(doc.fields)
	if err != nil {
		return 0, err
	}
	if _, err := s.sink.Align(8); err != nil {
		return 0, err
	}
	var root [wire.RootSize]byte
	binary.LittleEndian.PutUint64(root[0:], doc.id)
	wire.PutRef(root[8:], off, uint32(len(doc.fields)))
	if err := s.sink.Write(root[:]); err != nil {
		return 0, err
	}
	n := s.sink.Pos()
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d data bytes", ErrFrameTooLarge, n)
	}
	return n, nil
}

// writeEntries serializes an ordered field list: key payloads and
// value children first, then the 8-aligned entry table. Returns the
// table offset. Shared by the document root and Object values.
func (s *Serializer) writeEntries(fields []Field) (uint32, error) {
	mark := s.scratch.Mark()
	defer s.scratch.Release(mark)
	tbl, err := s.scratch.Alloc(len(fields) * wire.EntrySize)
	if err != nil {
		return 0, err
	}
	for i, f := range fields {
		entry := tbl[i*wire.EntrySize:]
		koff, err := s.writeBlob(f.Key)
		if err != nil {
			return 0, err
		}
		wire.PutRef(entry, koff, uint32(len(f.Key)))
		if err := s.serializeValue(f.Value, entry[wire.RefSize:]); err != nil {
			return 0, err
		}
	}
	return s.writeTable(tbl, 8)
}

// serializeValue writes v's out-of-line data to the sink and resolves
// the 16-byte slot.
func (s *Serializer) serializeValue(v Value, slot []byte) error {
	switch v.kind {
	case KindNull:
		slot[0] = byte(KindNull)
	case KindBool, KindU64, KindI64, KindF64, KindDate:
		wire.PutSlotScalar(slot, byte(v.kind), v.num)
	case KindString, KindBytes:
		off, err := s.writeBlob(v.blob)
		if err != nil {
			return err
		}
		wire.PutSlotRef(slot, byte(v.kind), off, uint32(len(v.blob)))
	case KindArrayBool:
		elems := v.Bools()
		off, err := s.pos32()
		if err != nil {
			return err
		}
		var b [1]byte
		for _, e := range elems {
			b[0] = 0
			if e {
				b[0] = 1
			}
			if err := s.sink.Write(b[:]); err != nil {
				return err
			}
		}
		wire.PutSlotRef(slot, byte(v.kind), off, uint32(len(elems)))
	case KindArrayU64, KindArrayI64, KindArrayF64, KindArrayDate:
		off, n, err := s.writeScalarRun(v)
		if err != nil {
			return err
		}
		wire.PutSlotRef(slot, byte(v.kind), off, n)
	case KindArrayString, KindArrayBytes:
		var blobs [][]byte
		switch v.kind {
		case KindArrayString:
			for _, t := range v.Texts() {
				blobs = append(blobs, t)
			}
		default:
			for _, b := range v.Blobs() {
				blobs = append(blobs, b)
			}
		}
		off, err := s.writeRefTable(blobs)
		if err != nil {
			return err
		}
		wire.PutSlotRef(slot, byte(v.kind), off, uint32(len(blobs)))
	case KindArrayDynamic:
		elems := v.Values()
		mark := s.scratch.Mark()
		tbl, err := s.scratch.Alloc(len(elems) * wire.SlotSize)
		if err != nil {
			return err
		}
		for i, e := range elems {
			if err := s.serializeValue(e, tbl[i*wire.SlotSize:]); err != nil {
				s.scratch.Release(mark)
				return err
			}
		}
		off, err := s.writeTable(tbl, 8)
		s.scratch.Release(mark)
		if err != nil {
			return err
		}
		wire.PutSlotRef(slot, byte(v.kind), off, uint32(len(elems)))
	case KindObject:
		fields := v.Fields()
		off, err := s.writeEntries(fields)
		if err != nil {
			return err
		}
		wire.PutSlotRef(slot, byte(v.kind), off, uint32(len(fields)))
	default:
		return fmt.Errorf("%w: kind %d", ErrMalformedTag, v.kind)
	}
	return nil
}

// writeBlob writes a byte payload, deduplicating through the shared
// registry: a payload seen before yields its first-written offset and
// no new bytes.
func (s *Serializer) writeBlob(b []byte) (uint32, error) {
	if off, ok := s.shared.Lookup(b); ok {
		return off, nil
	}
	off, err := s.pos32()
	if err != nil {
		return 0, err
	}
	if err := s.sink.Write(b); err != nil {
		return 0, err
	}
	if err := s.shared.Register(b, off); err != nil {
		return 0, err
	}
	return off, nil
}

// writeScalarRun writes a homogeneous 64-bit element run, 8-aligned.
func (s *Serializer) writeScalarRun(v Value) (uint32, uint32, error) {
	pos, err := s.sink.Align(8)
	if err != nil {
		return 0, 0, err
	}
	if pos > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: %d data bytes", ErrFrameTooLarge, pos)
	}
	var b [8]byte
	write := func(u uint64) error {
		binary.LittleEndian.PutUint64(b[:], u)
		return s.sink.Write(b[:])
	}
	var n uint32
	switch v.kind {
	case KindArrayU64:
		for _, e := range v.U64s() {
			if err := write(e); err != nil {
				return 0, 0, err
			}
		}
		n = uint32(len(v.U64s()))
	case KindArrayI64:
		for _, e := range v.I64s() {
			if err := write(uint64(e)); err != nil {
				return 0, 0, err
			}
		}
		n = uint32(len(v.I64s()))
	case KindArrayF64:
		for _, e := range v.F64s() {
			if err := write(math.Float64bits(e)); err != nil {
				return 0, 0, err
			}
		}
		n = uint32(len(v.F64s()))
	case KindArrayDate:
		for _, e := range v.Dates() {
			if err := write(uint64(e)); err != nil {
				return 0, 0, err
			}
		}
		n = uint32(len(v.Dates()))
	}
	return uint32(pos), n, nil
}

// writeRefTable writes each blob payload, then a 4-aligned table of
// (offset, length) refs.
func (s *Serializer) writeRefTable(blobs [][]byte) (uint32, error) {
	mark := s.scratch.Mark()
	defer s.scratch.Release(mark)
	tbl, err := s.scratch.Alloc(len(blobs) * wire.RefSize)
	if err != nil {
		return 0, err
	}
	for i, b := range blobs {
		off, err := s.writeBlob(b)
		if err != nil {
			return 0, err
		}
		wire.PutRef(tbl[i*wire.RefSize:], off, uint32(len(b)))
	}
	return s.writeTable(tbl, 4)
}

// writeTable aligns the sink and writes an assembled table, returning
// its offset.
func (s *Serializer) writeTable(tbl []byte, align int) (uint32, error) {
	pos, err := s.sink.Align(align)
	if err != nil {
		return 0, err
	}
	if pos > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d data bytes", ErrFrameTooLarge, pos)
	}
	if err := s.sink.Write(tbl); err != nil {
		return 0, err
	}
	return uint32(pos), nil
}

func (s *Serializer) pos32() (uint32, error) {
	pos := s.sink.Pos()
	if pos > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d data bytes", ErrFrameTooLarge, pos)
	}
	return uint32(pos), nil
}
