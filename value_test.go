package docpack

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNames(t *testing.T) {
	names := map[Kind]string{
		KindNull:         "null",
		KindBool:         "bool",
		KindString:       "string",
		KindBytes:        "bytes",
		KindU64:          "u64",
		KindI64:          "i64",
		KindF64:          "f64",
		KindDate:         "date",
		KindArrayBool:    "array_bool",
		KindArrayString:  "array_string",
		KindArrayBytes:   "array_bytes",
		KindArrayU64:     "array_u64",
		KindArrayI64:     "array_i64",
		KindArrayF64:     "array_f64",
		KindArrayDate:    "array_date",
		KindArrayDynamic: "array_dynamic",
		KindObject:       "object",
	}
	for k, want := range names {
		assert.Equal(t, want, k.String())
		assert.True(t, k.Valid())
	}
	assert.Equal(t, "invalid", Kind(200).String())
	assert.False(t, Kind(17).Valid())
}

func TestValueAccessors(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.Equal(t, KindNull, Value{}.Kind())
	assert.True(t, Bool(true).Bool())
	assert.False(t, Bool(false).Bool())
	assert.Equal(t, uint64(42), U64(42).U64())
	assert.Equal(t, int64(-7), I64(-7).I64())
	assert.Equal(t, 2.5, F64(2.5).F64())
	assert.Equal(t, Text("hi"), String("hi").Text())
	assert.Equal(t, Bytes{1, 2}, Binary([]byte{1, 2}).Bytes())

	ts := time.Date(2021, 5, 3, 1, 20, 0, 0, time.UTC)
	assert.Equal(t, ts, DateOf(ts).Date().Time())
}

func TestValueEquality(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", Null(), Null(), true},
		{"null vs bool", Null(), Bool(false), false},
		{"bool", Bool(true), Bool(true), true},
		{"u64", U64(1), U64(1), true},
		{"u64 vs i64 same bits", U64(1), I64(1), false},
		{"text", String("abc"), String("abc"), true},
		{"text case sensitive", String("ABC"), String("abc"), false},
		{"text vs bytes", String("abc"), Binary([]byte("abc")), false},
		{"nan bit pattern", F64(math.NaN()), F64(math.NaN()), true},
		{"array u64", ArrayU64([]uint64{1, 2}), ArrayU64([]uint64{1, 2}), true},
		{"array u64 order", ArrayU64([]uint64{2, 1}), ArrayU64([]uint64{1, 2}), false},
		{"typed vs dynamic", ArrayU64([]uint64{1}), Array(U64(1)), false},
		{"dynamic", Array(U64(1), String("x")), Array(U64(1), String("x")), true},
		{
			"object",
			Object(F("a", U64(1)), F("b", Null())),
			Object(F("a", U64(1)), F("b", Null())),
			true,
		},
		{
			"object order matters",
			Object(F("a", U64(1)), F("b", Null())),
			Object(F("b", Null()), F("a", U64(1))),
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Equal(tc.b))
			assert.Equal(t, tc.want, tc.b.Equal(tc.a))
		})
	}
}

func TestValueLen(t *testing.T) {
	assert.Equal(t, 3, ArrayU64([]uint64{1, 2, 3}).Len())
	assert.Equal(t, 2, Array(Null(), Null()).Len())
	assert.Equal(t, 1, Object(F("a", Null())).Len())
	assert.Equal(t, 0, U64(9).Len())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, `"a"`, String("a").String())
	assert.Equal(t, "0x0aff", Binary([]byte{0x0a, 0xff}).String())
	assert.Equal(t, "[1, 2]", ArrayU64([]uint64{1, 2}).String())
	assert.Equal(t, `{"k": -3}`, Object(F("k", I64(-3))).String())
}

func TestDocumentBuilder(t *testing.T) {
	doc := NewDocument(4)
	assert.Equal(t, uint64(0), doc.ID())
	doc.SetID(99)
	doc.Insert("name", String("a"))
	doc.Insert("age", U64(3))

	require.Equal(t, 2, doc.Len())
	fields := doc.Fields()
	assert.Equal(t, Text("name"), fields[0].Key)
	assert.Equal(t, Text("age"), fields[1].Key)
	assert.Equal(t, uint64(99), doc.ID())
}

func TestDocumentDuplicateKeysAllowed(t *testing.T) {
	doc := NewDocument(2)
	doc.Insert("k", U64(1))
	doc.Insert("k", U64(2))

	require.Equal(t, 2, doc.Len())
	assert.Equal(t, uint64(1), doc.Fields()[0].Value.U64())
	assert.Equal(t, uint64(2), doc.Fields()[1].Value.U64())
}

func TestDocumentIntoFields(t *testing.T) {
	doc := NewDocument(1)
	doc.Insert("k", Null())
	fields := doc.IntoFields()
	require.Len(t, fields, 1)
	assert.Equal(t, 0, doc.Len())
}

func TestDocumentEqual(t *testing.T) {
	a := NewDocument(1)
	a.SetID(7)
	a.Insert("x", U64(1))
	b := NewDocument(1)
	b.SetID(7)
	b.Insert("x", U64(1))
	assert.True(t, a.Equal(b))

	b.SetID(8)
	assert.False(t, a.Equal(b))
}
