/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package codec

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"dirpx.dev/polyx/apis"
)

type jsonFormat struct{}

// JSON returns a JSON format (RFC 8259). Content-Type: application/json
func JSON() Format { return jsonFormat{} }

func (jsonFormat) Name() string                       { return "json" }
func (jsonFormat) ContentType() string                { return "application/json" }
func (jsonFormat) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonFormat) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonFormat) MapWriter() Writer                  { return NewJSONWriter() }

func (jsonFormat) MapReader(data []byte) (apis.MapReader, error) {
	return NewJSONMapReader(data), nil
}

func (jsonFormat) SeqReader(data []byte) (apis.SeqReader, error) {
	return &jsonSeqReader{dec: newJSONDecoder(data)}, nil
}

func newJSONDecoder(data []byte) *json.Decoder {
	return json.NewDecoder(bytes.NewReader(data))
}

// NewJSONMapReader returns a reader over a JSON document holding one object.
func NewJSONMapReader(data []byte) apis.MapReader {
	return &jsonMapReader{dec: newJSONDecoder(data), top: true}
}

// jsonMapReader walks one object with the token API of json.Decoder.
type jsonMapReader struct {
	dec    *json.Decoder
	top    bool
	opened bool
	closed bool
	cur    value
}

func (r *jsonMapReader) open() error {
	if r.opened {
		return nil
	}
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("codec(json): %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &apis.ShapeError{Entries: -1, Found: describeJSON(tok)}
	}
	r.opened = true
	return nil
}

// skip discards a value left unconsumed by the previous entry.
func (r *jsonMapReader) skip() error {
	if !r.cur.pending {
		return nil
	}
	r.cur.pending = false
	var raw json.RawMessage
	return r.dec.Decode(&raw)
}

func (r *jsonMapReader) Next(key any) (bool, error) {
	if err := r.open(); err != nil {
		return false, err
	}
	if err := r.skip(); err != nil {
		return false, err
	}
	if !r.dec.More() {
		return false, nil
	}
	tok, err := r.dec.Token()
	if err != nil {
		return false, fmt.Errorf("codec(json): %w", err)
	}
	s, ok := tok.(string)
	if !ok {
		return false, fmt.Errorf("codec(json): unexpected token %v in object", tok)
	}
	if err := decodeTextKey(s, key); err != nil {
		return false, fmt.Errorf("codec(json): %w", err)
	}
	r.cur.pending = true
	return true, nil
}

func (r *jsonMapReader) Value() apis.Decoder { return jsonValue{r} }

func (r *jsonMapReader) More() (bool, error) {
	if err := r.skip(); err != nil {
		return false, err
	}
	return r.dec.More(), nil
}

func (r *jsonMapReader) Close() error {
	if r.closed {
		return nil
	}
	if err := r.open(); err != nil {
		return err
	}
	if err := r.skip(); err != nil {
		return err
	}
	tok, err := r.dec.Token()
	if err != nil {
		return fmt.Errorf("codec(json): %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '}' {
		return fmt.Errorf("codec(json): unexpected token %v at end of object", tok)
	}
	r.closed = true
	if r.top {
		return jsonEOF(r.dec)
	}
	return nil
}

type jsonValue struct{ r *jsonMapReader }

func (v jsonValue) Decode(dst any) error {
	if err := v.r.cur.take(); err != nil {
		return err
	}
	return v.r.dec.Decode(dst)
}

// jsonSeqReader walks a JSON array of objects.
type jsonSeqReader struct {
	dec    *json.Decoder
	opened bool
}

func (s *jsonSeqReader) Next() (apis.MapReader, bool, error) {
	if !s.opened {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, false, fmt.Errorf("codec(json): %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return nil, false, fmt.Errorf("%w, found %s", ErrNotSequence, describeJSON(tok))
		}
		s.opened = true
	}
	if !s.dec.More() {
		return nil, false, nil
	}
	return &jsonMapReader{dec: s.dec}, true, nil
}

func (s *jsonSeqReader) Close() error {
	tok, err := s.dec.Token()
	if err != nil {
		return fmt.Errorf("codec(json): %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != ']' {
		return fmt.Errorf("codec(json): unexpected token %v at end of array", tok)
	}
	return jsonEOF(s.dec)
}

func jsonEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

func describeJSON(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			return "an array"
		}
		return fmt.Sprintf("%q", string(t))
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

// JSONWriter writes a single JSON object.
type JSONWriter struct {
	buf   bytes.Buffer
	first bool
	done  bool
}

// NewJSONWriter returns an empty JSONWriter.
func NewJSONWriter() *JSONWriter { return &JSONWriter{} }

// BeginMap implements apis.MapWriter.
func (w *JSONWriter) BeginMap(int) error {
	w.buf.WriteByte('{')
	w.first = true
	return nil
}

// Key implements apis.MapWriter.
func (w *JSONWriter) Key(k any) error {
	s, err := KeyText(k)
	if err != nil {
		return fmt.Errorf("codec(json): %w", err)
	}
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	w.buf.WriteByte(':')
	return nil
}

// Value implements apis.MapWriter.
func (w *JSONWriter) Value(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

// EndMap implements apis.MapWriter.
func (w *JSONWriter) EndMap() error {
	w.buf.WriteByte('}')
	w.done = true
	return nil
}

// Bytes returns the encoded object.
func (w *JSONWriter) Bytes() ([]byte, error) {
	if !w.done {
		return nil, errors.New("codec(json): map not closed")
	}
	return w.buf.Bytes(), nil
}

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// KeyText renders k as a text map key following the encoding/json rules for
// map keys: string kinds, encoding.TextMarshaler, then integers. Other
// types fail with ErrUnsupportedKey.
func KeyText(k any) (string, error) {
	rv := reflect.ValueOf(k)
	if !rv.IsValid() {
		return "", fmt.Errorf("%w: nil", ErrUnsupportedKey)
	}
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	if rv.Type().Implements(textMarshalerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", fmt.Errorf("%w: nil %T", ErrUnsupportedKey, k)
		}
		b, err := k.(encoding.TextMarshaler).MarshalText()
		return string(b), err
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedKey, k)
}

// decodeTextKey is the inverse of KeyText; key must be a pointer.
func decodeTextKey(s string, key any) error {
	rv := reflect.ValueOf(key)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: %T is not a non-nil pointer", ErrUnsupportedKey, key)
	}
	ev := rv.Elem()
	switch {
	case ev.Kind() == reflect.String:
		ev.SetString(s)
		return nil
	case rv.Type().Implements(textUnmarshalerType):
		return key.(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	case ev.Kind() == reflect.Interface && ev.NumMethod() == 0:
		ev.Set(reflect.ValueOf(s))
		return nil
	}
	switch ev.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, ev.Type().Bits())
		if err != nil {
			return fmt.Errorf("decode key %q: %w", s, err)
		}
		ev.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, ev.Type().Bits())
		if err != nil {
			return fmt.Errorf("decode key %q: %w", s, err)
		}
		ev.SetUint(n)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedKey, ev.Type())
}
