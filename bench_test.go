package docpack

import (
	"testing"
)

func benchDocument() *Document {
	doc := NewDocument(8)
	doc.SetID(42)
	doc.Insert("name", String("benchmark document"))
	doc.Insert("tags", ArrayString([]string{"alpha", "beta", "gamma", "delta"}))
	doc.Insert("counts", ArrayU64([]uint64{100, 250, 300, 1024, 65536}))
	doc.Insert("ratios", ArrayF64([]float64{12.13, 16.23, 75.1, 100.5}))
	doc.Insert("active", Bool(true))
	doc.Insert("meta", Object(
		F("created", DateMillis(1700000000000)),
		F("payload", Binary([]byte{1, 2, 3, 4, 5, 6, 7, 8})),
	))
	return doc
}

func BenchmarkEncode(b *testing.B) {
	doc := benchDocument()
	enc := NewEncoder()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = enc.Encode(doc)
	}
}

func BenchmarkAccessUnchecked(b *testing.B) {
	frame, _ := NewEncoder().Encode(benchDocument())
	data := frame[:len(frame)-FooterSize]
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		view, _ := AccessUnchecked(data)
		_ = view.ID()
	}
}

func BenchmarkAccessValidated(b *testing.B) {
	frame, _ := NewEncoder().Encode(benchDocument())
	data := frame[:len(frame)-FooterSize]
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Access(data)
	}
}

func BenchmarkDeserialize(b *testing.B) {
	frame, _ := NewEncoder().Encode(benchDocument())
	data := frame[:len(frame)-FooterSize]
	view, _ := AccessUnchecked(data)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = view.Deserialize()
	}
}

func BenchmarkIterArchived(b *testing.B) {
	var buf []byte
	enc := NewEncoder()
	for i := 0; i < 16; i++ {
		buf, _ = enc.EncodeAppend(buf, benchDocument())
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		it, _ := IterArchived(buf)
		for it.Next() {
			_, _ = it.Document()
		}
	}
}
