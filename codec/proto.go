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
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"dirpx.dev/polyx/apis"
)

type protoFormat struct {
	mo proto.MarshalOptions
	uo proto.UnmarshalOptions
}

// Proto returns a Protocol Buffers format carrying the JSON data model in a
// google.protobuf.Value, with deterministic marshaling.
// Content-Type: application/x-protobuf
//
// Payloads go through their JSON encoding, so JSON struct tags and
// json.Marshaler implementations apply. Numbers are doubles on the wire.
func Proto() Format {
	return protoFormat{
		mo: proto.MarshalOptions{Deterministic: true},
		uo: proto.UnmarshalOptions{},
	}
}

func (protoFormat) Name() string        { return "proto" }
func (protoFormat) ContentType() string { return "application/x-protobuf" }

func (p protoFormat) Marshal(v any) ([]byte, error) {
	j, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return p.fromJSON(j)
}

func (p protoFormat) Unmarshal(data []byte, v any) error {
	j, err := p.toJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(j, v)
}

func (p protoFormat) MapReader(data []byte) (apis.MapReader, error) {
	j, err := p.toJSON(data)
	if err != nil {
		return nil, err
	}
	return NewJSONMapReader(j), nil
}

func (p protoFormat) SeqReader(data []byte) (apis.SeqReader, error) {
	j, err := p.toJSON(data)
	if err != nil {
		return nil, err
	}
	return JSON().SeqReader(j)
}

func (p protoFormat) MapWriter() Writer {
	return &protoWriter{JSONWriter: NewJSONWriter(), p: p}
}

func (p protoFormat) fromJSON(j []byte) ([]byte, error) {
	var pv structpb.Value
	if err := protojson.Unmarshal(j, &pv); err != nil {
		return nil, fmt.Errorf("codec(proto): %w", err)
	}
	return p.mo.Marshal(&pv)
}

func (p protoFormat) toJSON(data []byte) ([]byte, error) {
	var pv structpb.Value
	if err := p.uo.Unmarshal(data, &pv); err != nil {
		return nil, fmt.Errorf("codec(proto): %w", err)
	}
	j, err := protojson.Marshal(&pv)
	if err != nil {
		return nil, fmt.Errorf("codec(proto): %w", err)
	}
	return j, nil
}

// protoWriter writes JSON and converts it once the map is complete.
type protoWriter struct {
	*JSONWriter
	p protoFormat
}

func (w *protoWriter) Bytes() ([]byte, error) {
	j, err := w.JSONWriter.Bytes()
	if err != nil {
		return nil, err
	}
	return w.p.fromJSON(j)
}
