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
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"dirpx.dev/polyx/apis"
)

// msgpackTag makes struct fields share their names with the JSON encoding.
const msgpackTag = "json"

type msgpackFormat struct{}

// MsgPack returns a MessagePack format with sorted map keys.
// Content-Type: application/msgpack
func MsgPack() Format { return msgpackFormat{} }

func (msgpackFormat) Name() string        { return "msgpack" }
func (msgpackFormat) ContentType() string { return "application/msgpack" }

func (msgpackFormat) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewMsgPackEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackFormat) Unmarshal(data []byte, v any) error {
	dec := NewMsgPackDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return msgpackEOF(dec)
}

func (msgpackFormat) MapWriter() Writer {
	w := &msgpackDocWriter{}
	w.MsgPackWriter = NewMsgPackWriter(NewMsgPackEncoder(&w.buf))
	return w
}

func (msgpackFormat) MapReader(data []byte) (apis.MapReader, error) {
	r := NewMsgPackMapReader(NewMsgPackDecoder(bytes.NewReader(data))).(*msgpackMapReader)
	r.top = true
	return r, nil
}

func (msgpackFormat) SeqReader(data []byte) (apis.SeqReader, error) {
	dec := NewMsgPackDecoder(bytes.NewReader(data))
	c, err := dec.PeekCode()
	if err != nil {
		return nil, fmt.Errorf("codec(msgpack): %w", err)
	}
	if !isMsgPackArray(c) {
		return nil, fmt.Errorf("%w, found %s", ErrNotSequence, describeMsgPack(c))
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, fmt.Errorf("codec(msgpack): %w", err)
	}
	return &msgpackSeqReader{dec: dec, n: n}, nil
}

// NewMsgPackEncoder returns an encoder configured like the MsgPack format.
func NewMsgPackEncoder(w io.Writer) *msgpack.Encoder {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	enc.SetCustomStructTag(msgpackTag)
	return enc
}

// NewMsgPackDecoder returns a decoder configured like the MsgPack format.
func NewMsgPackDecoder(r io.Reader) *msgpack.Decoder {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag(msgpackTag)
	return dec
}

func isMsgPackMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isMsgPackArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}

func describeMsgPack(c byte) string {
	switch {
	case c == msgpcode.Nil:
		return "null"
	case isMsgPackArray(c):
		return "an array"
	case msgpcode.IsString(c):
		return "a string"
	case c == msgpcode.True || c == msgpcode.False:
		return "a boolean"
	default:
		return fmt.Sprintf("a value with code 0x%02x", c)
	}
}

func msgpackEOF(dec *msgpack.Decoder) error {
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// NewMsgPackMapReader returns a reader over the map at the current
// position of dec. The decoder is shared, so values are decoded in place.
func NewMsgPackMapReader(dec *msgpack.Decoder) apis.MapReader {
	return &msgpackMapReader{dec: dec}
}

type msgpackMapReader struct {
	dec    *msgpack.Decoder
	top    bool
	opened bool
	closed bool
	n      int
	read   int
	cur    value
}

func (r *msgpackMapReader) open() error {
	if r.opened {
		return nil
	}
	c, err := r.dec.PeekCode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("codec(msgpack): %w", err)
	}
	if !isMsgPackMap(c) {
		return &apis.ShapeError{Entries: -1, Found: describeMsgPack(c)}
	}
	n, err := r.dec.DecodeMapLen()
	if err != nil {
		return fmt.Errorf("codec(msgpack): %w", err)
	}
	r.n, r.opened = n, true
	return nil
}

func (r *msgpackMapReader) skip() error {
	if !r.cur.pending {
		return nil
	}
	r.cur.pending = false
	return r.dec.Skip()
}

func (r *msgpackMapReader) Next(key any) (bool, error) {
	if err := r.open(); err != nil {
		return false, err
	}
	if err := r.skip(); err != nil {
		return false, err
	}
	if r.read >= r.n {
		return false, nil
	}
	if err := r.dec.Decode(key); err != nil {
		return false, fmt.Errorf("codec(msgpack): decode key: %w", err)
	}
	r.read++
	r.cur.pending = true
	return true, nil
}

func (r *msgpackMapReader) Value() apis.Decoder { return msgpackValue{r} }

func (r *msgpackMapReader) More() (bool, error) {
	if err := r.skip(); err != nil {
		return false, err
	}
	return r.read < r.n, nil
}

func (r *msgpackMapReader) Close() error {
	if r.closed {
		return nil
	}
	if err := r.open(); err != nil {
		return err
	}
	if err := r.skip(); err != nil {
		return err
	}
	if r.read < r.n {
		return errors.New("codec(msgpack): map closed before its last entry")
	}
	r.closed = true
	if r.top {
		return msgpackEOF(r.dec)
	}
	return nil
}

type msgpackValue struct{ r *msgpackMapReader }

func (v msgpackValue) Decode(dst any) error {
	if err := v.r.cur.take(); err != nil {
		return err
	}
	return v.r.dec.Decode(dst)
}

type msgpackSeqReader struct {
	dec  *msgpack.Decoder
	n    int
	read int
}

func (s *msgpackSeqReader) Next() (apis.MapReader, bool, error) {
	if s.read >= s.n {
		return nil, false, nil
	}
	s.read++
	return NewMsgPackMapReader(s.dec), true, nil
}

func (s *msgpackSeqReader) Close() error {
	if s.read < s.n {
		return errors.New("codec(msgpack): array closed before its last element")
	}
	return msgpackEOF(s.dec)
}

// MsgPackWriter writes a map straight into an encoder.
type MsgPackWriter struct {
	enc *msgpack.Encoder
}

// NewMsgPackWriter returns a writer over enc.
func NewMsgPackWriter(enc *msgpack.Encoder) *MsgPackWriter {
	return &MsgPackWriter{enc: enc}
}

// BeginMap implements apis.MapWriter.
func (w *MsgPackWriter) BeginMap(n int) error { return w.enc.EncodeMapLen(n) }

// Key implements apis.MapWriter.
func (w *MsgPackWriter) Key(k any) error { return w.enc.Encode(k) }

// Value implements apis.MapWriter.
func (w *MsgPackWriter) Value(v any) error { return w.enc.Encode(v) }

// EndMap implements apis.MapWriter. Map lengths are written up front, so
// there is nothing to close.
func (w *MsgPackWriter) EndMap() error { return nil }

// msgpackDocWriter collects a MsgPackWriter's output into a document.
type msgpackDocWriter struct {
	*MsgPackWriter
	buf  bytes.Buffer
	done bool
}

func (w *msgpackDocWriter) EndMap() error {
	w.done = true
	return nil
}

func (w *msgpackDocWriter) Bytes() ([]byte, error) {
	if !w.done {
		return nil, errors.New("codec(msgpack): map not closed")
	}
	return w.buf.Bytes(), nil
}
