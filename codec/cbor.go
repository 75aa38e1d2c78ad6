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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	cbor "github.com/fxamacker/cbor/v2"

	"dirpx.dev/polyx/apis"
)

const (
	cborMajorArray = 4
	cborMajorMap   = 5
	cborBreak      = 0xff
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	if cborEnc, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDec, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

type cborFormat struct{}

// CBOR returns a deterministic CBOR format (RFC 8949) with the canonical
// encoding profile. Content-Type: application/cbor
func CBOR() Format { return cborFormat{} }

func (cborFormat) Name() string                       { return "cbor" }
func (cborFormat) ContentType() string                { return "application/cbor" }
func (cborFormat) Marshal(v any) ([]byte, error)      { return cborEnc.Marshal(v) }
func (cborFormat) Unmarshal(data []byte, v any) error { return cborDec.Unmarshal(data, v) }
func (cborFormat) MapWriter() Writer                  { return NewCBORWriter() }

func (cborFormat) MapReader(data []byte) (apis.MapReader, error) {
	return NewCBORMapReader(data), nil
}

func (cborFormat) SeqReader(data []byte) (apis.SeqReader, error) {
	c := &cborCursor{data: data}
	major, n, indef, err := c.head()
	if err != nil {
		return nil, err
	}
	if major != cborMajorArray {
		return nil, fmt.Errorf("%w, found %s", ErrNotSequence, describeCBOR(data[0]))
	}
	return &cborSeqReader{c: c, n: n, indef: indef}, nil
}

// cborCursor is the remaining input shared by nested readers.
type cborCursor struct {
	data []byte
}

// peek returns the initial byte of the next item.
func (c *cborCursor) peek() (byte, error) {
	if len(c.data) == 0 {
		return 0, fmt.Errorf("codec(cbor): %w", io.ErrUnexpectedEOF)
	}
	return c.data[0], nil
}

// head consumes the head of a map or array and returns its major type and
// length. indef is set for indefinite-length containers.
func (c *cborCursor) head() (major byte, n uint64, indef bool, err error) {
	b, err := c.peek()
	if err != nil {
		return 0, 0, false, err
	}
	major, info := b>>5, b&0x1f
	if major != cborMajorMap && major != cborMajorArray {
		return major, 0, false, nil
	}

	var size int
	switch {
	case info < 24:
		n = uint64(info)
	case info == 24:
		size = 1
	case info == 25:
		size = 2
	case info == 26:
		size = 4
	case info == 27:
		size = 8
	case info == 31:
		indef = true
	default:
		return 0, 0, false, fmt.Errorf("codec(cbor): invalid additional information %d", info)
	}
	if len(c.data) < 1+size {
		return 0, 0, false, fmt.Errorf("codec(cbor): %w", io.ErrUnexpectedEOF)
	}
	switch size {
	case 1:
		n = uint64(c.data[1])
	case 2:
		n = uint64(binary.BigEndian.Uint16(c.data[1:3]))
	case 4:
		n = uint64(binary.BigEndian.Uint32(c.data[1:5]))
	case 8:
		n = binary.BigEndian.Uint64(c.data[1:9])
	}
	c.data = c.data[1+size:]
	return major, n, indef, nil
}

// decode consumes one item into v.
func (c *cborCursor) decode(v any) error {
	rest, err := cborDec.UnmarshalFirst(c.data, v)
	if err != nil {
		return fmt.Errorf("codec(cbor): %w", err)
	}
	c.data = rest
	return nil
}

// atBreak reports whether a break marker is next.
func (c *cborCursor) atBreak() (bool, error) {
	b, err := c.peek()
	if err != nil {
		return false, err
	}
	return b == cborBreak, nil
}

func describeCBOR(b byte) string {
	switch b >> 5 {
	case 0, 1:
		return "an integer"
	case 2:
		return "a byte string"
	case 3:
		return "a text string"
	case cborMajorArray:
		return "an array"
	case 6:
		return "a tagged item"
	}
	switch b {
	case 0xf4, 0xf5:
		return "a boolean"
	case 0xf6, 0xf7:
		return "null"
	default:
		return "a float"
	}
}

// NewCBORMapReader returns a reader over a CBOR document holding one map.
func NewCBORMapReader(data []byte) apis.MapReader {
	return &cborMapReader{c: &cborCursor{data: data}, top: true}
}

// cborMapReader walks a definite or indefinite-length map.
type cborMapReader struct {
	c      *cborCursor
	top    bool
	opened bool
	closed bool
	n      uint64
	indef  bool
	read   uint64
	cur    value
}

func (r *cborMapReader) open() error {
	if r.opened {
		return nil
	}
	b, err := r.c.peek()
	if err != nil {
		return err
	}
	major, n, indef, err := r.c.head()
	if err != nil {
		return err
	}
	if major != cborMajorMap {
		return &apis.ShapeError{Entries: -1, Found: describeCBOR(b)}
	}
	r.n, r.indef, r.opened = n, indef, true
	return nil
}

func (r *cborMapReader) skip() error {
	if !r.cur.pending {
		return nil
	}
	r.cur.pending = false
	var raw cbor.RawMessage
	return r.c.decode(&raw)
}

func (r *cborMapReader) more() (bool, error) {
	if r.indef {
		brk, err := r.c.atBreak()
		return !brk, err
	}
	return r.read < r.n, nil
}

func (r *cborMapReader) Next(key any) (bool, error) {
	if err := r.open(); err != nil {
		return false, err
	}
	if err := r.skip(); err != nil {
		return false, err
	}
	if ok, err := r.more(); !ok || err != nil {
		return false, err
	}
	if err := r.c.decode(key); err != nil {
		return false, err
	}
	r.read++
	r.cur.pending = true
	return true, nil
}

func (r *cborMapReader) Value() apis.Decoder { return cborValue{r} }

func (r *cborMapReader) More() (bool, error) {
	if err := r.skip(); err != nil {
		return false, err
	}
	return r.more()
}

func (r *cborMapReader) Close() error {
	if r.closed {
		return nil
	}
	if err := r.open(); err != nil {
		return err
	}
	if err := r.skip(); err != nil {
		return err
	}
	if more, err := r.more(); err != nil {
		return err
	} else if more {
		return errors.New("codec(cbor): map closed before its last entry")
	}
	if r.indef {
		r.c.data = r.c.data[1:]
	}
	r.closed = true
	if r.top && len(r.c.data) > 0 {
		return ErrTrailingData
	}
	return nil
}

type cborValue struct{ r *cborMapReader }

func (v cborValue) Decode(dst any) error {
	if err := v.r.cur.take(); err != nil {
		return err
	}
	return v.r.c.decode(dst)
}

type cborSeqReader struct {
	c     *cborCursor
	n     uint64
	indef bool
	read  uint64
}

func (s *cborSeqReader) more() (bool, error) {
	if s.indef {
		brk, err := s.c.atBreak()
		return !brk, err
	}
	return s.read < s.n, nil
}

func (s *cborSeqReader) Next() (apis.MapReader, bool, error) {
	if ok, err := s.more(); !ok || err != nil {
		return nil, false, err
	}
	s.read++
	return &cborMapReader{c: s.c}, true, nil
}

func (s *cborSeqReader) Close() error {
	if more, err := s.more(); err != nil {
		return err
	} else if more {
		return errors.New("codec(cbor): array closed before its last element")
	}
	if s.indef {
		s.c.data = s.c.data[1:]
	}
	if len(s.c.data) > 0 {
		return ErrTrailingData
	}
	return nil
}

// CBORWriter writes a single definite-length CBOR map.
type CBORWriter struct {
	buf  []byte
	done bool
}

// NewCBORWriter returns an empty CBORWriter.
func NewCBORWriter() *CBORWriter { return &CBORWriter{} }

// BeginMap implements apis.MapWriter.
func (w *CBORWriter) BeginMap(n int) error {
	w.buf = appendCBORHead(w.buf, cborMajorMap, uint64(n))
	return nil
}

// Key implements apis.MapWriter.
func (w *CBORWriter) Key(k any) error { return w.append(k) }

// Value implements apis.MapWriter.
func (w *CBORWriter) Value(v any) error { return w.append(v) }

func (w *CBORWriter) append(v any) error {
	b, err := cborEnc.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec(cbor): %w", err)
	}
	w.buf = append(w.buf, b...)
	return nil
}

// EndMap implements apis.MapWriter.
func (w *CBORWriter) EndMap() error {
	w.done = true
	return nil
}

// Bytes returns the encoded map.
func (w *CBORWriter) Bytes() ([]byte, error) {
	if !w.done {
		return nil, errors.New("codec(cbor): map not closed")
	}
	return w.buf, nil
}

func appendCBORHead(buf []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(buf, m|byte(n))
	case n <= 0xff:
		return append(buf, m|24, byte(n))
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16(append(buf, m|25), uint16(n))
	case n <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(buf, m|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(buf, m|27), n)
	}
}
