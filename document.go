package docpack

import "strconv"

// Document is an identifier plus an ordered sequence of (key, value)
// pairs. Field order is significant and survives encode/decode. Key
// uniqueness is not enforced: duplicate keys are allowed, kept in
// insertion order, and all of them round-trip.
type Document struct {
	id     uint64
	fields []Field
}

// NewDocument returns an empty document with room for capacity fields.
// The id defaults to zero.
func NewDocument(capacity int) *Document {
	return &Document{fields: make([]Field, 0, capacity)}
}

// ID returns the caller-assigned document id.
func (d *Document) ID() uint64 { return d.id }

// SetID assigns the document id.
func (d *Document) SetID(id uint64) { d.id = id }

// Insert appends a (key, value) pair, preserving insertion order.
func (d *Document) Insert(key string, v Value) {
	d.fields = append(d.fields, Field{Key: Text(key), Value: v})
}

// InsertField appends a prebuilt field.
func (d *Document) InsertField(f Field) {
	d.fields = append(d.fields, f)
}

// Fields returns the ordered field sequence without copying. The
// returned slice is owned by the document.
func (d *Document) Fields() []Field { return d.fields }

// IntoFields consumes the document and returns its fields. The
// document is left empty.
func (d *Document) IntoFields() []Field {
	f := d.fields
	d.fields = nil
	return f
}

// Len returns the number of fields.
func (d *Document) Len() int { return len(d.fields) }

// Equal reports structural equality: same id and pair-wise equal
// fields in order.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.id == o.id && fieldsEqual(d.fields, o.fields)
}

// String renders the document for diagnostics.
func (d *Document) String() string {
	out := append([]byte("doc:"), strconv.FormatUint(d.id, 10)...)
	return string(appendFieldsString(out, d.fields))
}
