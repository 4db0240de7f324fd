package jsondoc

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/docpack"
)

func TestDecodePreservesOrderAndDuplicates(t *testing.T) {
	in := `{"z":1,"a":2,"z":3}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())

	fields := doc.Fields()
	assert.Equal(t, docpack.Text("z"), fields[0].Key)
	assert.Equal(t, docpack.Text("a"), fields[1].Key)
	assert.Equal(t, docpack.Text("z"), fields[2].Key)
	assert.Equal(t, uint64(1), fields[0].Value.U64())
	assert.Equal(t, uint64(3), fields[2].Value.U64())
}

func TestDecodeNumberInference(t *testing.T) {
	in := `{"u":18446744073709551615,"i":-5,"f":1.5,"e":2e3}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	fields := doc.Fields()
	assert.Equal(t, docpack.KindU64, fields[0].Value.Kind())
	assert.Equal(t, uint64(18446744073709551615), fields[0].Value.U64())
	assert.Equal(t, docpack.KindI64, fields[1].Value.Kind())
	assert.Equal(t, int64(-5), fields[1].Value.I64())
	assert.Equal(t, docpack.KindF64, fields[2].Value.Kind())
	assert.Equal(t, docpack.KindF64, fields[3].Value.Kind())
	assert.Equal(t, 2000.0, fields[3].Value.F64())
}

func TestDecodeHomogenizesArrays(t *testing.T) {
	in := `{"u":[1,2,3],"i":[-1,-2],"s":["a","b"],"b":[true,false],"mixed":[1,"x"],"neg_mix":[1,-2],"empty":[]}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	fields := doc.Fields()
	assert.Equal(t, docpack.KindArrayU64, fields[0].Value.Kind())
	assert.Equal(t, docpack.KindArrayI64, fields[1].Value.Kind())
	assert.Equal(t, docpack.KindArrayString, fields[2].Value.Kind())
	assert.Equal(t, docpack.KindArrayBool, fields[3].Value.Kind())
	// Mixed element kinds stay dynamic, including u64 next to i64.
	assert.Equal(t, docpack.KindArrayDynamic, fields[4].Value.Kind())
	assert.Equal(t, docpack.KindArrayDynamic, fields[5].Value.Kind())
	assert.Equal(t, docpack.KindArrayDynamic, fields[6].Value.Kind())
	assert.Equal(t, 0, fields[6].Value.Len())
}

func TestDecodeNested(t *testing.T) {
	in := `{"obj":{"inner":{"deep":null}},"arr":[{"k":true},[1,2]]}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	obj := doc.Fields()[0].Value
	require.Equal(t, docpack.KindObject, obj.Kind())
	inner := obj.Fields()[0].Value
	assert.True(t, inner.Fields()[0].Value.IsNull())

	arr := doc.Fields()[1].Value
	require.Equal(t, docpack.KindArrayDynamic, arr.Kind())
	assert.Equal(t, docpack.KindObject, arr.Values()[0].Kind())
	assert.Equal(t, docpack.KindArrayU64, arr.Values()[1].Kind())
}

func TestDecodeRejectsNonObject(t *testing.T) {
	_, err := Decode(strings.NewReader(`[1,2]`))
	require.ErrorIs(t, err, ErrNotObject)
	_, err = Decode(strings.NewReader(`"hi"`))
	require.ErrorIs(t, err, ErrNotObject)
}

func TestDecodeAll(t *testing.T) {
	in := "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n"
	docs, err := DecodeAll(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, doc := range docs {
		assert.Equal(t, uint64(i+1), doc.Fields()[0].Value.U64())
	}
}

func TestEncode(t *testing.T) {
	doc := docpack.NewDocument(8)
	doc.Insert("s", docpack.String("he\"llo"))
	doc.Insert("b", docpack.Binary([]byte{0xDE, 0xAD}))
	doc.Insert("n", docpack.Null())
	doc.Insert("zero", docpack.F64(0))
	doc.Insert("date", docpack.DateMillis(1700000000000))
	doc.Insert("xs", docpack.ArrayI64([]int64{-1, 0, 1}))
	doc.Insert("obj", docpack.Object(docpack.F("k", docpack.Bool(true))))

	var sb strings.Builder
	require.NoError(t, Encode(&sb, doc))
	assert.Equal(t,
		`{"s":"he\"llo","b":"3q0=","n":null,"zero":0,"date":1700000000000,"xs":[-1,0,1],"obj":{"k":true}}`+"\n",
		sb.String())
}

func TestEncodeNonFiniteFloatsAsNull(t *testing.T) {
	doc := docpack.NewDocument(1)
	doc.Insert("fs", docpack.ArrayF64([]float64{1.5, math.Inf(1), math.Inf(-1), math.NaN()}))

	var sb strings.Builder
	require.NoError(t, Encode(&sb, doc))
	assert.Equal(t, `{"fs":[1.5,null,null,null]}`+"\n", sb.String())
}

func TestEncodeArchivedMatchesEncode(t *testing.T) {
	in := `{"name":"ada","tags":["x","y"],"nested":{"ok":true,"ids":[1,2,3]},"z":null}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	frame, err := docpack.NewEncoder().Encode(doc)
	require.NoError(t, err)
	view, err := docpack.Access(frame[:len(frame)-docpack.FooterSize])
	require.NoError(t, err)

	var owned, archived strings.Builder
	require.NoError(t, Encode(&owned, doc))
	require.NoError(t, EncodeArchived(&archived, view))
	assert.Equal(t, owned.String(), archived.String())
}

func TestRoundTripThroughJSON(t *testing.T) {
	in := `{"a":1,"b":[true,true],"c":{"d":"x"},"a":-2}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Encode(&sb, doc))
	again, err := Decode(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.True(t, doc.Equal(again), "decode/encode/decode must be stable\nfirst  %v\nsecond %v", doc, again)
}
