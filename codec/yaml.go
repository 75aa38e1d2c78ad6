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
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"dirpx.dev/polyx/apis"
)

type yamlFormat struct{}

// YAML returns a YAML 1.2 format. Content-Type: application/yaml
func YAML() Format { return yamlFormat{} }

func (yamlFormat) Name() string                       { return "yaml" }
func (yamlFormat) ContentType() string                { return "application/yaml" }
func (yamlFormat) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlFormat) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (yamlFormat) MapWriter() Writer                  { return NewYAMLWriter() }

func (yamlFormat) MapReader(data []byte) (apis.MapReader, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("codec(yaml): %w", err)
	}
	return NewYAMLMapReader(&doc), nil
}

func (yamlFormat) SeqReader(data []byte) (apis.SeqReader, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("codec(yaml): %w", err)
	}
	n := resolveYAML(&doc)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w, found %s", ErrNotSequence, describeYAML(n))
	}
	return &yamlSeqReader{items: n.Content}, nil
}

// resolveYAML strips document and alias indirections.
func resolveYAML(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func describeYAML(n *yaml.Node) string {
	if n == nil {
		return "an empty document"
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return "null"
		}
		return "a scalar " + n.Tag
	default:
		return fmt.Sprintf("node kind %d", n.Kind)
	}
}

// NewYAMLMapReader returns a reader over a mapping node. Document and alias
// nodes are resolved first.
func NewYAMLMapReader(n *yaml.Node) apis.MapReader {
	return &yamlMapReader{node: n, pos: -1}
}

// yamlMapReader walks the key/value pairs of a parsed mapping node.
// Values are decoded straight from their subtree.
type yamlMapReader struct {
	node   *yaml.Node
	opened bool
	pos    int
	cur    value
}

func (r *yamlMapReader) open() error {
	if r.opened {
		return nil
	}
	n := resolveYAML(r.node)
	if n == nil || n.Kind != yaml.MappingNode {
		return &apis.ShapeError{Entries: -1, Found: describeYAML(n)}
	}
	r.node = n
	r.opened = true
	return nil
}

func (r *yamlMapReader) Next(key any) (bool, error) {
	if err := r.open(); err != nil {
		return false, err
	}
	r.pos++
	r.cur.pending = false
	if 2*r.pos+1 >= len(r.node.Content) {
		return false, nil
	}
	if err := r.node.Content[2*r.pos].Decode(key); err != nil {
		return false, fmt.Errorf("codec(yaml): decode key: %w", err)
	}
	r.cur.pending = true
	return true, nil
}

func (r *yamlMapReader) Value() apis.Decoder { return yamlValue{r} }

func (r *yamlMapReader) More() (bool, error) {
	if err := r.open(); err != nil {
		return false, err
	}
	return 2*(r.pos+1)+1 < len(r.node.Content), nil
}

func (r *yamlMapReader) Close() error { return r.open() }

type yamlValue struct{ r *yamlMapReader }

func (v yamlValue) Decode(dst any) error {
	if err := v.r.cur.take(); err != nil {
		return err
	}
	return v.r.node.Content[2*v.r.pos+1].Decode(dst)
}

type yamlSeqReader struct {
	items []*yaml.Node
	pos   int
}

func (s *yamlSeqReader) Next() (apis.MapReader, bool, error) {
	if s.pos >= len(s.items) {
		return nil, false, nil
	}
	n := s.items[s.pos]
	s.pos++
	return NewYAMLMapReader(n), true, nil
}

func (s *yamlSeqReader) Close() error { return nil }

// YAMLWriter builds a mapping node.
type YAMLWriter struct {
	node *yaml.Node
	done bool
}

// NewYAMLWriter returns an empty YAMLWriter.
func NewYAMLWriter() *YAMLWriter { return &YAMLWriter{} }

// BeginMap implements apis.MapWriter.
func (w *YAMLWriter) BeginMap(n int) error {
	w.node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*n)}
	return nil
}

// Key implements apis.MapWriter.
func (w *YAMLWriter) Key(k any) error {
	return w.append(k)
}

// Value implements apis.MapWriter.
func (w *YAMLWriter) Value(v any) error {
	return w.append(v)
}

func (w *YAMLWriter) append(v any) error {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return fmt.Errorf("codec(yaml): %w", err)
	}
	w.node.Content = append(w.node.Content, n)
	return nil
}

// EndMap implements apis.MapWriter.
func (w *YAMLWriter) EndMap() error {
	w.done = true
	return nil
}

// Node returns the mapping node once the map is closed.
func (w *YAMLWriter) Node() (*yaml.Node, error) {
	if !w.done {
		return nil, errors.New("codec(yaml): map not closed")
	}
	return w.node, nil
}

// Bytes returns the encoded document.
func (w *YAMLWriter) Bytes() ([]byte, error) {
	n, err := w.Node()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(n)
}
