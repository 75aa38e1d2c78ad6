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

package polyx

import (
	"bytes"
	"errors"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"gopkg.in/yaml.v3"

	"dirpx.dev/polyx/codec"
)

// Box holds a value of interface type T and encodes it as {id: value}
// using the domain bound for I and T.
//
// Box implements the encoding hooks of encoding/json, gopkg.in/yaml.v3,
// github.com/fxamacker/cbor/v2 and github.com/vmihailenco/msgpack/v5, so it
// can be used as a struct field, slice element or map value with any of
// them. The Proto format goes through JSON and needs no hook of its own.
//
// A Box with a nil Value encodes as null in JSON, CBOR and MessagePack, and
// null decodes to a nil Value. yaml.v3 never hands a null node to a struct
// hook, so inside a YAML sequence a null would be dropped; a nil Box
// therefore fails to encode as YAML with ErrNilBox. Struct fields tagged
// omitempty skip it.
type Box[I comparable, T any] struct {
	Value T
}

// NewBox returns a Box holding v.
func NewBox[I comparable, T any](v T) Box[I, T] {
	return Box[I, T]{Value: v}
}

// ErrNilBox is returned when a Box with a nil Value is encoded as YAML.
var ErrNilBox = errors.New("polyx: nil Box has no YAML form")

// IsZero reports whether the Box holds no value.
func (b Box[I, T]) IsZero() bool { return b.empty() }

// boxed marks values that are themselves boxes. A box never stands behind
// an identifier, so encoding one through another is rejected.
type boxed interface{ polyxBox() }

func (Box[I, T]) polyxBox() {}

func (b Box[I, T]) empty() bool { return any(b.Value) == nil }

// MarshalJSON implements json.Marshaler.
func (b Box[I, T]) MarshalJSON() ([]byte, error) {
	if b.empty() {
		return []byte("null"), nil
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return nil, err
	}
	return marshalJSON(d, b.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Box[I, T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = Box[I, T]{}
		return nil
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return err
	}
	v, err := d.Deserialize(codec.NewJSONMapReader(data))
	if err != nil {
		return err
	}
	b.Value = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b Box[I, T]) MarshalYAML() (any, error) {
	if b.empty() {
		return nil, ErrNilBox
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return nil, err
	}
	return marshalYAML(d, b.Value)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Box[I, T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		*b = Box[I, T]{}
		return nil
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return err
	}
	v, err := d.Deserialize(codec.NewYAMLMapReader(n))
	if err != nil {
		return err
	}
	b.Value = v
	return nil
}

// MarshalCBOR implements cbor.Marshaler.
func (b Box[I, T]) MarshalCBOR() ([]byte, error) {
	if b.empty() {
		return []byte{0xf6}, nil
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return nil, err
	}
	return marshalCBOR(d, b.Value)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (b *Box[I, T]) UnmarshalCBOR(data []byte) error {
	if len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7) {
		*b = Box[I, T]{}
		return nil
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return err
	}
	v, err := d.Deserialize(codec.NewCBORMapReader(data))
	if err != nil {
		return err
	}
	b.Value = v
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (b Box[I, T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if b.empty() {
		return enc.EncodeNil()
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return err
	}
	return d.Serialize(codec.NewMsgPackWriter(enc), b.Value)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (b *Box[I, T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if c == msgpcode.Nil {
		*b = Box[I, T]{}
		return dec.DecodeNil()
	}
	d, err := mustBound[I, T]()
	if err != nil {
		return err
	}
	v, err := d.Deserialize(codec.NewMsgPackMapReader(dec))
	if err != nil {
		return err
	}
	b.Value = v
	return nil
}

// tagged encodes one element of Domain.MarshalSeq with an explicit domain.
type tagged[I comparable, T any] struct {
	d *Domain[I, T]
	v T
}

func (t tagged[I, T]) MarshalJSON() ([]byte, error) { return marshalJSON(t.d, t.v) }
func (t tagged[I, T]) MarshalYAML() (any, error)    { return marshalYAML(t.d, t.v) }
func (t tagged[I, T]) MarshalCBOR() ([]byte, error) { return marshalCBOR(t.d, t.v) }

func (t tagged[I, T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return t.d.Serialize(codec.NewMsgPackWriter(enc), t.v)
}

func marshalJSON[I comparable, T any](d *Domain[I, T], v T) ([]byte, error) {
	w := codec.NewJSONWriter()
	if err := d.Serialize(w, v); err != nil {
		return nil, err
	}
	return w.Bytes()
}

func marshalYAML[I comparable, T any](d *Domain[I, T], v T) (any, error) {
	w := codec.NewYAMLWriter()
	if err := d.Serialize(w, v); err != nil {
		return nil, err
	}
	return w.Node()
}

func marshalCBOR[I comparable, T any](d *Domain[I, T], v T) ([]byte, error) {
	w := codec.NewCBORWriter()
	if err := d.Serialize(w, v); err != nil {
		return nil, err
	}
	return w.Bytes()
}
