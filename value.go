package docpack

import (
	"bytes"
	"encoding/hex"
	"math"
	"strconv"
	"time"
)

// Kind identifies the variant held by a Value. The numeric values are
// the on-wire tags and must not be reordered.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindBytes
	KindU64
	KindI64
	KindF64
	KindDate
	KindArrayBool
	KindArrayString
	KindArrayBytes
	KindArrayU64
	KindArrayI64
	KindArrayF64
	KindArrayDate
	KindArrayDynamic
	KindObject
)

var kindNames = [...]string{
	"null",
	"bool",
	"string",
	"bytes",
	"u64",
	"i64",
	"f64",
	"date",
	"array_bool",
	"array_string",
	"array_bytes",
	"array_u64",
	"array_i64",
	"array_f64",
	"array_date",
	"array_dynamic",
	"object",
}

// String returns the stable short type name for diagnostics and schema
// reporting. It never affects comparison.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Valid reports whether k is a known variant tag.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Text is an immutable byte sequence the producer guarantees is valid
// UTF-8. The guarantee is never re-checked on the trusted read path.
type Text []byte

// Bytes is an immutable, uninterpreted byte sequence.
type Bytes []byte

// Date is a duration since the Unix epoch in milliseconds.
type Date int64

// Time converts d to a UTC time.Time.
func (d Date) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// Field is one (key, value) pair of a Document or Object.
type Field struct {
	Key   Text
	Value Value
}

// F builds a Field. Convenience for Object literals.
func F(key string, v Value) Field {
	return Field{Key: Text(key), Value: v}
}

// Value is a tagged union over the document variants. The zero Value
// is Null. Values constructed directly own their data; []byte payloads
// passed to constructors are adopted, not copied, so the caller must
// not mutate them afterwards.
type Value struct {
	kind Kind
	num  uint64
	blob []byte
	arr  any
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a bool value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// String returns a text value copied from s.
func String(s string) Value { return Value{kind: KindString, blob: []byte(s)} }

// TextValue returns a text value adopting t.
func TextValue(t Text) Value { return Value{kind: KindString, blob: t} }

// Binary returns a bytes value adopting b.
func Binary(b []byte) Value { return Value{kind: KindBytes, blob: b} }

// U64 returns an unsigned integer value.
func U64(v uint64) Value { return Value{kind: KindU64, num: v} }

// I64 returns a signed integer value.
func I64(v int64) Value { return Value{kind: KindI64, num: uint64(v)} }

// F64 returns a float value.
func F64(v float64) Value { return Value{kind: KindF64, num: math.Float64bits(v)} }

// DateMillis returns a date value from milliseconds since the Unix epoch.
func DateMillis(ms int64) Value { return Value{kind: KindDate, num: uint64(ms)} }

// DateOf returns a date value truncated to millisecond precision.
func DateOf(t time.Time) Value { return DateMillis(t.UnixMilli()) }

// ArrayBool returns a homogeneous bool array value.
func ArrayBool(v []bool) Value { return Value{kind: KindArrayBool, arr: v} }

// ArrayString returns a homogeneous text array value copied from v.
func ArrayString(v []string) Value {
	ts := make([]Text, len(v))
	for i, s := range v {
		ts[i] = Text(s)
	}
	return Value{kind: KindArrayString, arr: ts}
}

// ArrayText returns a homogeneous text array value adopting v.
func ArrayText(v []Text) Value { return Value{kind: KindArrayString, arr: v} }

// ArrayBinary returns a homogeneous bytes array value adopting v.
func ArrayBinary(v []Bytes) Value { return Value{kind: KindArrayBytes, arr: v} }

// ArrayU64 returns a homogeneous u64 array value.
func ArrayU64(v []uint64) Value { return Value{kind: KindArrayU64, arr: v} }

// ArrayI64 returns a homogeneous i64 array value.
func ArrayI64(v []int64) Value { return Value{kind: KindArrayI64, arr: v} }

// ArrayF64 returns a homogeneous f64 array value.
func ArrayF64(v []float64) Value { return Value{kind: KindArrayF64, arr: v} }

// ArrayDate returns a homogeneous date array value.
func ArrayDate(v []Date) Value { return Value{kind: KindArrayDate, arr: v} }

// Array returns a heterogeneous array value. Use the typed array
// constructors when elements are uniformly typed; they encode flatter
// and smaller.
func Array(v ...Value) Value { return Value{kind: KindArrayDynamic, arr: v} }

// Object returns a nested ordered (key, value) list.
func Object(fields ...Field) Value { return Value{kind: KindObject, arr: fields} }

// Kind returns the variant tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the bool payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.num != 0 }

// U64 returns the unsigned integer payload. Valid only for KindU64.
func (v Value) U64() uint64 { return v.num }

// I64 returns the signed integer payload. Valid only for KindI64.
func (v Value) I64() int64 { return int64(v.num) }

// F64 returns the float payload. Valid only for KindF64.
func (v Value) F64() float64 { return math.Float64frombits(v.num) }

// Date returns the date payload. Valid only for KindDate.
func (v Value) Date() Date { return Date(v.num) }

// Text returns the text payload without copying. Valid only for KindString.
func (v Value) Text() Text { return Text(v.blob) }

// Bytes returns the bytes payload without copying. Valid only for KindBytes.
func (v Value) Bytes() Bytes { return Bytes(v.blob) }

// Bools returns the bool array payload without copying.
func (v Value) Bools() []bool { a, _ := v.arr.([]bool); return a }

// Texts returns the text array payload without copying.
func (v Value) Texts() []Text { a, _ := v.arr.([]Text); return a }

// Blobs returns the bytes array payload without copying.
func (v Value) Blobs() []Bytes { a, _ := v.arr.([]Bytes); return a }

// U64s returns the u64 array payload without copying.
func (v Value) U64s() []uint64 { a, _ := v.arr.([]uint64); return a }

// I64s returns the i64 array payload without copying.
func (v Value) I64s() []int64 { a, _ := v.arr.([]int64); return a }

// F64s returns the f64 array payload without copying.
func (v Value) F64s() []float64 { a, _ := v.arr.([]float64); return a }

// Dates returns the date array payload without copying.
func (v Value) Dates() []Date { a, _ := v.arr.([]Date); return a }

// Values returns the dynamic array payload without copying.
func (v Value) Values() []Value { a, _ := v.arr.([]Value); return a }

// Fields returns the object payload without copying.
func (v Value) Fields() []Field { a, _ := v.arr.([]Field); return a }

// Len returns the element count for array and object values, zero
// otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArrayBool:
		return len(v.Bools())
	case KindArrayString:
		return len(v.Texts())
	case KindArrayBytes:
		return len(v.Blobs())
	case KindArrayU64:
		return len(v.U64s())
	case KindArrayI64:
		return len(v.I64s())
	case KindArrayF64:
		return len(v.F64s())
	case KindArrayDate:
		return len(v.Dates())
	case KindArrayDynamic:
		return len(v.Values())
	case KindObject:
		return len(v.Fields())
	default:
		return 0
	}
}

// Equal reports structural equality: same kind, pair-wise equal
// elements in order, case-sensitive byte comparison for Text and
// Bytes. Floats compare by bit pattern.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindU64, KindI64, KindF64, KindDate:
		return v.num == o.num
	case KindString, KindBytes:
		return bytes.Equal(v.blob, o.blob)
	case KindArrayBool:
		a, b := v.Bools(), o.Bools()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case KindArrayString:
		return textsEqual(v.Texts(), o.Texts())
	case KindArrayBytes:
		a, b := v.Blobs(), o.Blobs()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !bytes.Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case KindArrayU64:
		a, b := v.U64s(), o.U64s()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case KindArrayI64:
		a, b := v.I64s(), o.I64s()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case KindArrayF64:
		a, b := v.F64s(), o.F64s()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
				return false
			}
		}
		return true
	case KindArrayDate:
		a, b := v.Dates(), o.Dates()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case KindArrayDynamic:
		a, b := v.Values(), o.Values()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return fieldsEqual(v.Fields(), o.Fields())
	default:
		return false
	}
}

func textsEqual(a, b []Text) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].Key, b[i].Key) || !a[i].Value.Equal(b[i].Value) {
			return false
		}
	}
	return true
}

// String renders v for diagnostics.
func (v Value) String() string {
	return string(v.appendString(nil))
}

func (v Value) appendString(dst []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case KindString:
		return strconv.AppendQuote(dst, string(v.blob))
	case KindBytes:
		dst = append(dst, "0x"...)
		return append(dst, hex.EncodeToString(v.blob)...)
	case KindU64:
		return strconv.AppendUint(dst, v.num, 10)
	case KindI64:
		return strconv.AppendInt(dst, v.I64(), 10)
	case KindF64:
		return strconv.AppendFloat(dst, v.F64(), 'g', -1, 64)
	case KindDate:
		return v.Date().Time().AppendFormat(dst, time.RFC3339Nano)
	case KindArrayBool:
		dst = append(dst, '[')
		for i, e := range v.Bools() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = strconv.AppendBool(dst, e)
		}
		return append(dst, ']')
	case KindArrayString:
		dst = append(dst, '[')
		for i, e := range v.Texts() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = strconv.AppendQuote(dst, string(e))
		}
		return append(dst, ']')
	case KindArrayBytes:
		dst = append(dst, '[')
		for i, e := range v.Blobs() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, "0x"...)
			dst = append(dst, hex.EncodeToString(e)...)
		}
		return append(dst, ']')
	case KindArrayU64:
		dst = append(dst, '[')
		for i, e := range v.U64s() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = strconv.AppendUint(dst, e, 10)
		}
		return append(dst, ']')
	case KindArrayI64:
		dst = append(dst, '[')
		for i, e := range v.I64s() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = strconv.AppendInt(dst, e, 10)
		}
		return append(dst, ']')
	case KindArrayF64:
		dst = append(dst, '[')
		for i, e := range v.F64s() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = strconv.AppendFloat(dst, e, 'g', -1, 64)
		}
		return append(dst, ']')
	case KindArrayDate:
		dst = append(dst, '[')
		for i, e := range v.Dates() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = e.Time().AppendFormat(dst, time.RFC3339Nano)
		}
		return append(dst, ']')
	case KindArrayDynamic:
		dst = append(dst, '[')
		for i, e := range v.Values() {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = e.appendString(dst)
		}
		return append(dst, ']')
	case KindObject:
		return appendFieldsString(dst, v.Fields())
	default:
		return append(dst, "invalid"...)
	}
}

func appendFieldsString(dst []byte, fields []Field) []byte {
	dst = append(dst, '{')
	for i, f := range fields {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = strconv.AppendQuote(dst, string(f.Key))
		dst = append(dst, ": "...)
		dst = f.Value.appendString(dst)
	}
	return append(dst, '}')
}
