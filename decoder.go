package docpack

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rawbytedev/docpack/internal/wire"
)

// ArchivedDocument is a zero-copy, read-only view of one frame's data
// bytes. No payload is copied during construction; every accessor
// reads the backing buffer directly, so the buffer must outlive the
// view and every sub-view derived from it. Views cannot be mutated;
// materialize with Deserialize, mutate the owned Document, re-encode.
type ArchivedDocument struct {
	data []byte
	root int
}

// AccessUnchecked interprets data as a frame's data bytes without any
// structural validation beyond the minimum root size. It trusts the
// bytes to be exactly what the Encoder produced: reading a field of a
// malformed frame through the returned view may panic or yield
// garbage. Restrict it to bytes that never left the trust domain that
// encoded them; anything that crossed transport or storage goes
// through Access instead.
func AccessUnchecked(data []byte) (*ArchivedDocument, error) {
	if len(data) < wire.RootSize {
		return nil, fmt.Errorf("%w: %d bytes, root needs %d", ErrTruncatedFrame, len(data), wire.RootSize)
	}
	return &ArchivedDocument{data: data, root: len(data) - wire.RootSize}, nil
}

// Access interprets data as a frame's data bytes, walking the whole
// structure first: every variant tag must be known, every reference in
// bounds and pointing strictly backward, every length claim consistent
// with the bytes that precede it. On success all subsequent accesses
// through the view are safe; otherwise a decode error is returned and
// no view is produced.
func Access(data []byte) (*ArchivedDocument, error) {
	d, err := AccessUnchecked(data)
	if err != nil {
		return nil, err
	}
	off, count := wire.Ref(data[d.root+8:])
	if err := validateEntries(data, uint64(off), uint64(count), uint64(d.root)); err != nil {
		return nil, err
	}
	return d, nil
}

// checkRegion verifies that [off, off+size) lies within data, ends at
// or before limit (the referencing structure's start), and is aligned.
// Backward-only references are what guarantee the walk terminates.
func checkRegion(data []byte, off, size, align, limit uint64) error {
	end := off + size
	if end > limit || end > uint64(len(data)) {
		return fmt.Errorf("%w: region [%d,%d) beyond limit %d", ErrOutOfBounds, off, end, limit)
	}
	if size > 0 && off%align != 0 {
		return fmt.Errorf("%w: offset %d not %d-aligned", ErrOutOfBounds, off, align)
	}
	return nil
}

func validateEntries(data []byte, off, count, limit uint64) error {
	if err := checkRegion(data, off, count*wire.EntrySize, 8, limit); err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		entry := off + i*wire.EntrySize
		koff, klen := wire.Ref(data[entry:])
		if err := checkRegion(data, uint64(koff), uint64(klen), 1, off); err != nil {
			return err
		}
		if err := validateSlot(data, entry+wire.RefSize, off); err != nil {
			return err
		}
	}
	return nil
}

func validateSlot(data []byte, slot, limit uint64) error {
	tag := Kind(data[slot])
	if !tag.Valid() {
		return fmt.Errorf("%w: tag %d at offset %d", ErrMalformedTag, data[slot], slot)
	}
	switch tag {
	case KindNull, KindBool, KindU64, KindI64, KindF64, KindDate:
		return nil
	}
	off, n := wire.Ref(data[slot+8:])
	o, cnt := uint64(off), uint64(n)
	switch tag {
	case KindString, KindBytes:
		return checkRegion(data, o, cnt, 1, limit)
	case KindArrayBool:
		return checkRegion(data, o, cnt, 1, limit)
	case KindArrayU64, KindArrayI64, KindArrayF64, KindArrayDate:
		return checkRegion(data, o, cnt*8, 8, limit)
	case KindArrayString, KindArrayBytes:
		if err := checkRegion(data, o, cnt*wire.RefSize, 4, limit); err != nil {
			return err
		}
		for i := uint64(0); i < cnt; i++ {
			roff, rlen := wire.Ref(data[o+i*wire.RefSize:])
			if err := checkRegion(data, uint64(roff), uint64(rlen), 1, o); err != nil {
				return err
			}
		}
		return nil
	case KindArrayDynamic:
		if err := checkRegion(data, o, cnt*wire.SlotSize, 8, limit); err != nil {
			return err
		}
		for i := uint64(0); i < cnt; i++ {
			if err := validateSlot(data, o+i*wire.SlotSize, o); err != nil {
				return err
			}
		}
		return nil
	default: // KindObject
		return validateEntries(data, o, cnt, limit)
	}
}

// ID returns the document id.
func (d *ArchivedDocument) ID() uint64 {
	return binary.LittleEndian.Uint64(d.data[d.root:])
}

// Len returns the number of fields.
func (d *ArchivedDocument) Len() int {
	_, count := wire.Ref(d.data[d.root+8:])
	return int(count)
}

func (d *ArchivedDocument) entry(i int) int {
	off, _ := wire.Ref(d.data[d.root+8:])
	return int(off) + i*wire.EntrySize
}

// Key returns field i's key without copying.
func (d *ArchivedDocument) Key(i int) Text {
	e := d.entry(i)
	off, n := wire.Ref(d.data[e:])
	return Text(d.data[off : off+n])
}

// Value returns field i's value view.
func (d *ArchivedDocument) Value(i int) ArchivedValue {
	return ArchivedValue{data: d.data, pos: d.entry(i) + wire.RefSize}
}

// Field returns field i as a (key, value) pair.
func (d *ArchivedDocument) Field(i int) (Text, ArchivedValue) {
	return d.Key(i), d.Value(i)
}

// Deserialize deep-copies the view into a fully owned Document whose
// lifetime is independent of the backing buffer.
func (d *ArchivedDocument) Deserialize() *Document {
	doc := NewDocument(d.Len())
	doc.SetID(d.ID())
	for i := 0; i < d.Len(); i++ {
		key, val := d.Field(i)
		doc.InsertField(Field{Key: cloneBytes(key), Value: val.Deserialize()})
	}
	return doc
}

// ArchivedValue is a zero-copy view of one encoded value slot. Scalars
// decode on demand at fixed offsets; Text, Bytes, and element accessors
// return subslices of the backing buffer.
type ArchivedValue struct {
	data []byte
	pos  int
}

// Kind returns the variant tag.
func (v ArchivedValue) Kind() Kind { return Kind(v.data[v.pos]) }

func (v ArchivedValue) scalar() uint64 {
	return binary.LittleEndian.Uint64(v.data[v.pos+8:])
}

func (v ArchivedValue) ref() (int, int) {
	off, n := wire.Ref(v.data[v.pos+8:])
	return int(off), int(n)
}

// Bool returns the bool payload. Valid only for KindBool.
func (v ArchivedValue) Bool() bool { return v.data[v.pos+8] != 0 }

// U64 returns the unsigned integer payload. Valid only for KindU64.
func (v ArchivedValue) U64() uint64 { return v.scalar() }

// I64 returns the signed integer payload. Valid only for KindI64.
func (v ArchivedValue) I64() int64 { return int64(v.scalar()) }

// F64 returns the float payload. Valid only for KindF64.
func (v ArchivedValue) F64() float64 { return math.Float64frombits(v.scalar()) }

// Date returns the date payload. Valid only for KindDate.
func (v ArchivedValue) Date() Date { return Date(v.scalar()) }

// Text returns the text payload without copying. Valid only for
// KindString.
func (v ArchivedValue) Text() Text {
	off, n := v.ref()
	return Text(v.data[off : off+n])
}

// Bytes returns the bytes payload without copying. Valid only for
// KindBytes.
func (v ArchivedValue) Bytes() Bytes {
	off, n := v.ref()
	return Bytes(v.data[off : off+n])
}

// Len returns the element count for array and object values.
func (v ArchivedValue) Len() int {
	switch v.Kind() {
	case KindArrayBool, KindArrayString, KindArrayBytes,
		KindArrayU64, KindArrayI64, KindArrayF64, KindArrayDate,
		KindArrayDynamic, KindObject:
		_, n := v.ref()
		return n
	default:
		return 0
	}
}

// BoolAt returns element i of a bool array.
func (v ArchivedValue) BoolAt(i int) bool {
	off, _ := v.ref()
	return v.data[off+i] != 0
}

func (v ArchivedValue) scalarAt(i int) uint64 {
	off, _ := v.ref()
	return binary.LittleEndian.Uint64(v.data[off+i*8:])
}

// U64At returns element i of a u64 array.
func (v ArchivedValue) U64At(i int) uint64 { return v.scalarAt(i) }

// I64At returns element i of an i64 array.
func (v ArchivedValue) I64At(i int) int64 { return int64(v.scalarAt(i)) }

// F64At returns element i of an f64 array.
func (v ArchivedValue) F64At(i int) float64 { return math.Float64frombits(v.scalarAt(i)) }

// DateAt returns element i of a date array.
func (v ArchivedValue) DateAt(i int) Date { return Date(v.scalarAt(i)) }

func (v ArchivedValue) refAt(i int) (int, int) {
	tbl, _ := v.ref()
	off, n := wire.Ref(v.data[tbl+i*wire.RefSize:])
	return int(off), int(n)
}

// TextAt returns element i of a string array without copying.
func (v ArchivedValue) TextAt(i int) Text {
	off, n := v.refAt(i)
	return Text(v.data[off : off+n])
}

// BytesAt returns element i of a bytes array without copying.
func (v ArchivedValue) BytesAt(i int) Bytes {
	off, n := v.refAt(i)
	return Bytes(v.data[off : off+n])
}

// ElemAt returns element i of a dynamic array.
func (v ArchivedValue) ElemAt(i int) ArchivedValue {
	off, _ := v.ref()
	return ArchivedValue{data: v.data, pos: off + i*wire.SlotSize}
}

func (v ArchivedValue) entryAt(i int) int {
	off, _ := v.ref()
	return off + i*wire.EntrySize
}

// KeyAt returns entry i's key of an object without copying.
func (v ArchivedValue) KeyAt(i int) Text {
	e := v.entryAt(i)
	off, n := wire.Ref(v.data[e:])
	return Text(v.data[off : off+n])
}

// ValueAt returns entry i's value of an object.
func (v ArchivedValue) ValueAt(i int) ArchivedValue {
	return ArchivedValue{data: v.data, pos: v.entryAt(i) + wire.RefSize}
}

// Deserialize deep-copies the view into an owned Value.
func (v ArchivedValue) Deserialize() Value {
	switch v.Kind() {
	case KindNull:
		return Null()
	case KindBool:
		return Bool(v.Bool())
	case KindString:
		return TextValue(Text(cloneBytes(v.Text())))
	case KindBytes:
		return Binary(cloneBytes(v.Bytes()))
	case KindU64:
		return U64(v.U64())
	case KindI64:
		return I64(v.I64())
	case KindF64:
		return F64(v.F64())
	case KindDate:
		return DateMillis(int64(v.Date()))
	case KindArrayBool:
		out := make([]bool, v.Len())
		for i := range out {
			out[i] = v.BoolAt(i)
		}
		return ArrayBool(out)
	case KindArrayString:
		out := make([]Text, v.Len())
		for i := range out {
			out[i] = cloneBytes(v.TextAt(i))
		}
		return ArrayText(out)
	case KindArrayBytes:
		out := make([]Bytes, v.Len())
		for i := range out {
			out[i] = Bytes(cloneBytes(v.BytesAt(i)))
		}
		return ArrayBinary(out)
	case KindArrayU64:
		out := make([]uint64, v.Len())
		for i := range out {
			out[i] = v.U64At(i)
		}
		return ArrayU64(out)
	case KindArrayI64:
		out := make([]int64, v.Len())
		for i := range out {
			out[i] = v.I64At(i)
		}
		return ArrayI64(out)
	case KindArrayF64:
		out := make([]float64, v.Len())
		for i := range out {
			out[i] = v.F64At(i)
		}
		return ArrayF64(out)
	case KindArrayDate:
		out := make([]Date, v.Len())
		for i := range out {
			out[i] = v.DateAt(i)
		}
		return ArrayDate(out)
	case KindArrayDynamic:
		out := make([]Value, v.Len())
		for i := range out {
			out[i] = v.ElemAt(i).Deserialize()
		}
		return Array(out...)
	default: // KindObject
		out := make([]Field, v.Len())
		for i := range out {
			out[i] = Field{Key: cloneBytes(v.KeyAt(i)), Value: v.ValueAt(i).Deserialize()}
		}
		return Object(out...)
	}
}

func cloneBytes[T ~[]byte](b T) T {
	if b == nil {
		return nil
	}
	out := make(T, len(b))
	copy(out, b)
	return out
}
