// Package jsondoc converts between JSON text and documents. Decoding
// preserves field order and duplicate keys, which the encoding/json
// map types cannot do, so values are built from the raw token stream.
//
// The document model is richer than JSON, so the mapping is lossy in
// one direction: bytes encode as base64 strings, dates as millisecond
// integers, and NaN or infinite floats as null. Decoded numbers become
// u64 when they are non-negative integers, i64 when negative integers,
// f64 otherwise. Document ids have no JSON representation and are left
// untouched.
package jsondoc

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rawbytedev/docpack"
)

var (
	ErrNotObject = errors.New("jsondoc: top-level value is not an object")
	ErrBadToken  = errors.New("jsondoc: unexpected token")
)

// Decode reads one JSON object from r and builds a document with its
// fields in source order. The document id is zero; callers assign it.
func Decode(r io.Reader) (*docpack.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return decodeDocument(dec)
}

// DecodeAll reads a stream of whitespace-separated JSON objects from r
// until EOF, one document each.
func DecodeAll(r io.Reader) ([]*docpack.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var docs []*docpack.Document
	for {
		doc, err := decodeDocument(dec)
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
}

func decodeDocument(dec *json.Decoder) (*docpack.Document, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: got %v", ErrNotObject, tok)
	}
	fields, err := decodeFields(dec)
	if err != nil {
		return nil, err
	}
	doc := docpack.NewDocument(len(fields))
	for _, f := range fields {
		doc.InsertField(f)
	}
	return doc, nil
}

// decodeFields consumes key/value pairs up to and including the
// closing brace.
func decodeFields(dec *json.Decoder) ([]docpack.Field, error) {
	var fields []docpack.Field
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if tok == json.Delim('}') {
			return fields, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", ErrBadToken, tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, docpack.F(key, val))
	}
}

func decodeValue(dec *json.Decoder) (docpack.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return docpack.Null(), err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			fields, err := decodeFields(dec)
			if err != nil {
				return docpack.Null(), err
			}
			return docpack.Object(fields...), nil
		case '[':
			return decodeArray(dec)
		}
		return docpack.Null(), fmt.Errorf("%w: %v", ErrBadToken, t)
	case string:
		return docpack.String(t), nil
	case bool:
		return docpack.Bool(t), nil
	case json.Number:
		return numberValue(t)
	case nil:
		return docpack.Null(), nil
	}
	return docpack.Null(), fmt.Errorf("%w: %T", ErrBadToken, tok)
}

func numberValue(n json.Number) (docpack.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return docpack.U64(u), nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return docpack.I64(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return docpack.Null(), err
	}
	return docpack.F64(f), nil
}

// decodeArray consumes elements up to and including the closing
// bracket, then collapses homogeneous scalar runs into typed arrays.
func decodeArray(dec *json.Decoder) (docpack.Value, error) {
	var elems []docpack.Value
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return docpack.Null(), err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return docpack.Null(), err
	}
	return homogenize(elems), nil
}

func homogenize(elems []docpack.Value) docpack.Value {
	if len(elems) == 0 {
		return docpack.Array()
	}
	kind := elems[0].Kind()
	for _, e := range elems[1:] {
		if e.Kind() != kind {
			return docpack.Array(elems...)
		}
	}
	switch kind {
	case docpack.KindBool:
		out := make([]bool, len(elems))
		for i, e := range elems {
			out[i] = e.Bool()
		}
		return docpack.ArrayBool(out)
	case docpack.KindString:
		out := make([]docpack.Text, len(elems))
		for i, e := range elems {
			out[i] = e.Text()
		}
		return docpack.ArrayText(out)
	case docpack.KindU64:
		out := make([]uint64, len(elems))
		for i, e := range elems {
			out[i] = e.U64()
		}
		return docpack.ArrayU64(out)
	case docpack.KindI64:
		out := make([]int64, len(elems))
		for i, e := range elems {
			out[i] = e.I64()
		}
		return docpack.ArrayI64(out)
	case docpack.KindF64:
		out := make([]float64, len(elems))
		for i, e := range elems {
			out[i] = e.F64()
		}
		return docpack.ArrayF64(out)
	}
	return docpack.Array(elems...)
}

// Encode writes doc as one compact JSON object followed by a newline.
func Encode(w io.Writer, doc *docpack.Document) error {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range doc.Fields() {
		if i > 0 {
			sb.WriteByte(',')
		}
		appendKey(&sb, string(f.Key))
		appendValue(&sb, f.Value)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// EncodeArchived writes a zero-copy view as one compact JSON object
// followed by a newline, without materializing an owned document.
func EncodeArchived(w io.Writer, view *docpack.ArchivedDocument) error {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < view.Len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		key, val := view.Field(i)
		appendKey(&sb, string(key))
		appendArchived(&sb, val)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func appendKey(sb *strings.Builder, key string) {
	appendQuoted(sb, key)
	sb.WriteByte(':')
}

func appendQuoted(sb *strings.Builder, s string) {
	b, _ := json.Marshal(s)
	sb.Write(b)
}

func appendFloat(sb *strings.Builder, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		sb.WriteString("null")
		return
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func appendValue(sb *strings.Builder, v docpack.Value) {
	switch v.Kind() {
	case docpack.KindNull:
		sb.WriteString("null")
	case docpack.KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case docpack.KindString:
		appendQuoted(sb, string(v.Text()))
	case docpack.KindBytes:
		appendQuoted(sb, base64.StdEncoding.EncodeToString(v.Bytes()))
	case docpack.KindU64:
		sb.WriteString(strconv.FormatUint(v.U64(), 10))
	case docpack.KindI64:
		sb.WriteString(strconv.FormatInt(v.I64(), 10))
	case docpack.KindF64:
		appendFloat(sb, v.F64())
	case docpack.KindDate:
		sb.WriteString(strconv.FormatInt(int64(v.Date()), 10))
	case docpack.KindArrayBool:
		sb.WriteByte('[')
		for i, b := range v.Bools() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatBool(b))
		}
		sb.WriteByte(']')
	case docpack.KindArrayString:
		sb.WriteByte('[')
		for i, t := range v.Texts() {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendQuoted(sb, string(t))
		}
		sb.WriteByte(']')
	case docpack.KindArrayBytes:
		sb.WriteByte('[')
		for i, b := range v.Blobs() {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendQuoted(sb, base64.StdEncoding.EncodeToString(b))
		}
		sb.WriteByte(']')
	case docpack.KindArrayU64:
		sb.WriteByte('[')
		for i, u := range v.U64s() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(u, 10))
		}
		sb.WriteByte(']')
	case docpack.KindArrayI64:
		sb.WriteByte('[')
		for i, n := range v.I64s() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(n, 10))
		}
		sb.WriteByte(']')
	case docpack.KindArrayF64:
		sb.WriteByte('[')
		for i, f := range v.F64s() {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendFloat(sb, f)
		}
		sb.WriteByte(']')
	case docpack.KindArrayDate:
		sb.WriteByte('[')
		for i, d := range v.Dates() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(d), 10))
		}
		sb.WriteByte(']')
	case docpack.KindArrayDynamic:
		sb.WriteByte('[')
		for i, e := range v.Values() {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendValue(sb, e)
		}
		sb.WriteByte(']')
	case docpack.KindObject:
		sb.WriteByte('{')
		for i, f := range v.Fields() {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendKey(sb, string(f.Key))
			appendValue(sb, f.Value)
		}
		sb.WriteByte('}')
	}
}

func appendArchived(sb *strings.Builder, v docpack.ArchivedValue) {
	switch v.Kind() {
	case docpack.KindNull:
		sb.WriteString("null")
	case docpack.KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case docpack.KindString:
		appendQuoted(sb, string(v.Text()))
	case docpack.KindBytes:
		appendQuoted(sb, base64.StdEncoding.EncodeToString(v.Bytes()))
	case docpack.KindU64:
		sb.WriteString(strconv.FormatUint(v.U64(), 10))
	case docpack.KindI64:
		sb.WriteString(strconv.FormatInt(v.I64(), 10))
	case docpack.KindF64:
		appendFloat(sb, v.F64())
	case docpack.KindDate:
		sb.WriteString(strconv.FormatInt(int64(v.Date()), 10))
	case docpack.KindArrayBool:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatBool(v.BoolAt(i)))
		}
		sb.WriteByte(']')
	case docpack.KindArrayString:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendQuoted(sb, string(v.TextAt(i)))
		}
		sb.WriteByte(']')
	case docpack.KindArrayBytes:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendQuoted(sb, base64.StdEncoding.EncodeToString(v.BytesAt(i)))
		}
		sb.WriteByte(']')
	case docpack.KindArrayU64:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(v.U64At(i), 10))
		}
		sb.WriteByte(']')
	case docpack.KindArrayI64:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(v.I64At(i), 10))
		}
		sb.WriteByte(']')
	case docpack.KindArrayF64:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendFloat(sb, v.F64At(i))
		}
		sb.WriteByte(']')
	case docpack.KindArrayDate:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(v.DateAt(i)), 10))
		}
		sb.WriteByte(']')
	case docpack.KindArrayDynamic:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendArchived(sb, v.ElemAt(i))
		}
		sb.WriteByte(']')
	case docpack.KindObject:
		sb.WriteByte('{')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendKey(sb, string(v.KeyAt(i)))
			appendArchived(sb, v.ValueAt(i))
		}
		sb.WriteByte('}')
	}
}
