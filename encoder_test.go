package docpack

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWorkedExample(t *testing.T) {
	doc := NewDocument(2)
	doc.SetID(7)
	doc.Insert("name", String("a"))
	doc.Insert("age", U64(3))

	enc := NewEncoder()
	frame, err := enc.Encode(doc)
	require.NoError(t, err)
	require.Greater(t, len(frame), FooterSize)

	data := frame[:len(frame)-FooterSize]
	sum := binary.LittleEndian.Uint32(frame[len(frame)-8:])
	length := binary.LittleEndian.Uint32(frame[len(frame)-4:])

	assert.Equal(t, uint32(len(data)), length, "footer length must equal the data byte count")
	assert.Equal(t, Checksum(data), sum, "footer checksum must recompute identically")
	assert.Zero(t, len(data)%8, "data region ends 8-aligned")

	view, err := Access(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), view.ID())
	require.Equal(t, 2, view.Len())

	key, val := view.Field(0)
	assert.Equal(t, Text("name"), key)
	assert.Equal(t, KindString, val.Kind())
	assert.Equal(t, Text("a"), val.Text())

	key, val = view.Field(1)
	assert.Equal(t, Text("age"), key)
	assert.Equal(t, KindU64, val.Kind())
	assert.Equal(t, uint64(3), val.U64())
}

func TestEncodeAppendBuildsMultiFrameBuffer(t *testing.T) {
	enc := NewEncoder()
	var buf []byte
	var frameLens []int
	for i := 0; i < 3; i++ {
		doc := NewDocument(1)
		doc.SetID(uint64(i))
		doc.Insert("i", U64(uint64(i)))
		before := len(buf)
		var err error
		buf, err = enc.EncodeAppend(buf, doc)
		require.NoError(t, err)
		frameLens = append(frameLens, len(buf)-before)
	}

	total := 0
	for _, n := range frameLens {
		total += n
	}
	assert.Equal(t, len(buf), total)
}

func TestEncodeToMatchesEncode(t *testing.T) {
	doc := NewDocument(3)
	doc.SetID(11)
	doc.Insert("s", String("stream me"))
	doc.Insert("xs", ArrayU64([]uint64{5, 6, 7}))
	doc.Insert("nested", Object(F("inner", Bool(true))))

	enc := NewEncoder()
	frame, err := enc.Encode(doc)
	require.NoError(t, err)
	want := bytes.Clone(frame)

	var streamed bytes.Buffer
	n, err := enc.EncodeTo(&streamed, doc)
	require.NoError(t, err)
	assert.Equal(t, len(want), n)
	assert.Equal(t, want, streamed.Bytes(), "buffered and streaming encode must produce identical frames")
}

func TestChecksumLenWriterIncremental(t *testing.T) {
	var out bytes.Buffer
	cw := NewChecksumLenWriter(&out)
	payload := []byte("incrementally checksummed payload")
	for _, b := range payload {
		_, err := cw.Write([]byte{b})
		require.NoError(t, err)
	}
	assert.Equal(t, Checksum(payload), cw.Sum32())
	assert.Equal(t, uint32(len(payload)), cw.Count())

	require.NoError(t, cw.Finish())
	assert.Equal(t, len(payload)+FooterSize, out.Len())

	cw.ResetState()
	assert.Zero(t, cw.Sum32())
	assert.Zero(t, cw.Count())
}

func TestEncodeDedupShrinksFrame(t *testing.T) {
	shared := "a reasonably long shared payload string"
	distinct := "b reasonably long shared payload string"

	dup := NewDocument(2)
	dup.Insert("first", String(shared))
	dup.Insert("second", String(shared))

	uniq := NewDocument(2)
	uniq.Insert("first", String(shared))
	uniq.Insert("second", String(distinct))

	enc := NewEncoder()
	frame, err := enc.Encode(dup)
	require.NoError(t, err)
	// Encode reuses its buffer; keep a copy across the next call.
	dupFrame := bytes.Clone(frame)

	uniqFrame, err := enc.Encode(uniq)
	require.NoError(t, err)

	assert.Less(t, len(dupFrame), len(uniqFrame),
		"identical payloads must back-reference instead of duplicating")

	// Both fields still decode to equal content.
	view, err := Access(dupFrame[:len(dupFrame)-FooterSize])
	require.NoError(t, err)
	assert.Equal(t, Text(shared), view.Value(0).Text())
	assert.Equal(t, Text(shared), view.Value(1).Text())
}

func TestEncodeEmptyDocument(t *testing.T) {
	doc := NewDocument(0)
	enc := NewEncoder()
	frame, err := enc.Encode(doc)
	require.NoError(t, err)

	view, err := Access(frame[:len(frame)-FooterSize])
	require.NoError(t, err)
	assert.Equal(t, uint64(0), view.ID())
	assert.Equal(t, 0, view.Len())
}
