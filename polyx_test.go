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

package polyx_test

import (
	"bytes"
	"encoding/json"
	"testing"

	cbor "github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"dirpx.dev/polyx"
	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/codec"
	"dirpx.dev/polyx/config"
	"dirpx.dev/polyx/registry"
)

// Named is the interface type shared by the test payloads.
type Named interface {
	apis.Object[string]
	Describe() string
}

type Foo string

func (Foo) TypeID() string     { return "Foo" }
func (f Foo) Describe() string { return "foo " + string(f) }

type Bar uint32

func (Bar) TypeID() string     { return "Bar" }
func (b Bar) Describe() string { return "bar" }

type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (*Point) TypeID() string     { return "Point" }
func (p *Point) Describe() string { return "point" }

// Pair is generic; each instantiation gets an identifier of its own.
type Pair[V any] struct {
	A V `json:"a" yaml:"a"`
	B V `json:"b" yaml:"b"`
}

func (Pair[V]) TypeID() string   { return "Pair[" + typeName[V]() + "]" }
func (Pair[V]) Describe() string { return "pair" }

func typeName[V any]() string {
	var v V
	switch any(v).(type) {
	case int:
		return "int"
	case string:
		return "string"
	default:
		return "?"
	}
}

func buildNamed(reg apis.Registry[string, Named]) {
	registry.AddObject[Foo](reg)
	registry.AddObject[Bar](reg)
	registry.AddObject[*Point](reg)
	registry.AddObject[Pair[int]](reg)
	registry.AddObject[Pair[string]](reg)
}

var named = polyx.Define("named", buildNamed)

func allFormats() []codec.Format {
	return []codec.Format{codec.JSON(), codec.YAML(), codec.CBOR(), codec.MsgPack(), codec.Proto()}
}

func TestFooBarScenario(t *testing.T) {
	values := []Named{Foo("A"), Bar(0)}

	out, err := named.MarshalSeq(codec.JSON(), values)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Foo":"A"},{"Bar":0}]`, string(out))

	back, err := named.UnmarshalSeq(codec.JSON(), out)
	require.NoError(t, err)
	assert.Equal(t, values, back)
}

func TestRoundTrip_AllFormats(t *testing.T) {
	values := []Named{
		Foo("A"),
		Bar(7),
		&Point{X: 1, Y: 2},
		Pair[int]{A: 1, B: 2},
		Pair[string]{A: "x", B: "y"},
	}

	for _, f := range allFormats() {
		t.Run(f.Name(), func(t *testing.T) {
			for _, v := range values {
				data, err := named.Marshal(f, v)
				require.NoError(t, err)

				got, err := named.Unmarshal(f, data)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}

			data, err := named.MarshalSeq(f, values)
			require.NoError(t, err)
			got, err := named.UnmarshalSeq(f, data)
			require.NoError(t, err)
			assert.Equal(t, values, got)
		})
	}
}

func TestMarshal_YAMLShape(t *testing.T) {
	out, err := named.Marshal(codec.YAML(), &Point{X: 3, Y: 4})
	require.NoError(t, err)

	var doc map[string]map[string]int
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, map[string]map[string]int{"Point": {"x": 3, "y": 4}}, doc)
}

func TestUnmarshal_UnknownIdentifier(t *testing.T) {
	for _, f := range allFormats() {
		t.Run(f.Name(), func(t *testing.T) {
			data, err := f.Marshal(map[string]int{"Baz": 1})
			require.NoError(t, err)

			v, err := named.Unmarshal(f, data)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, apis.ErrNotRegistered)
		})
	}
}

func TestUnmarshalSeq_NoPartialResult(t *testing.T) {
	v, err := named.UnmarshalSeq(codec.JSON(), []byte(`[{"Foo":"A"},{"Baz":1},{"Bar":2}]`))
	assert.Nil(t, v)
	require.ErrorIs(t, err, apis.ErrNotRegistered)
	assert.Contains(t, err.Error(), "element 1")
}

func TestUnmarshalSeq_Empty(t *testing.T) {
	v, err := named.UnmarshalSeq(codec.JSON(), []byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMarshal_NoIdentifier(t *testing.T) {
	type Anonymous interface{ Describe() string }
	d := polyx.NewDomain[string, Anonymous]("anon", nil)

	_, err := d.Marshal(codec.JSON(), Foo("x"))
	assert.NoError(t, err, "Foo reports its identifier through TypeID")

	_, err = d.Marshal(codec.JSON(), plain{})
	assert.ErrorIs(t, err, apis.ErrNoIdentifier)

	_, err = d.Marshal(codec.JSON(), nil)
	assert.ErrorIs(t, err, apis.ErrNoIdentifier)
}

type plain struct{}

func (plain) Describe() string { return "plain" }

func TestMarshal_DerivedIdentifiers(t *testing.T) {
	type Anonymous interface{ Describe() string }
	d := polyx.NewDomain("derived", func(reg apis.Registry[string, Anonymous]) {
		require.NoError(t, registry.AddDerived[plain](reg))
	}, config.WithDeriveIdentifiers(true))

	out, err := d.Marshal(codec.JSON(), plain{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"polyx_test.plain":{}}`, string(out))

	v, err := d.Unmarshal(codec.JSON(), out)
	require.NoError(t, err)
	assert.Equal(t, plain{}, v)
}

func TestMarshal_RegisteredTypeWithoutTypeID(t *testing.T) {
	type Anonymous interface{ Describe() string }
	d := polyx.NewDomain("recorded", func(reg apis.Registry[string, Anonymous]) {
		registry.Add[plain](reg, "plain")
	})

	out, err := d.Marshal(codec.JSON(), plain{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"plain":{}}`, string(out))
}

type Document struct {
	Title  string                              `json:"title" yaml:"title"`
	Main   polyx.Box[string, Named]            `json:"main" yaml:"main"`
	Items  []polyx.Box[string, Named]          `json:"items" yaml:"items"`
	ByName map[string]polyx.Box[string, Named] `json:"by_name" yaml:"by_name"`
	Empty  polyx.Box[string, Named]            `json:"empty" yaml:"empty,omitempty"`
}

func sampleDocument() Document {
	return Document{
		Title: "doc",
		Main:  polyx.NewBox[string, Named](&Point{X: 1, Y: 2}),
		Items: []polyx.Box[string, Named]{
			polyx.NewBox[string, Named](Foo("A")),
			polyx.NewBox[string, Named](Bar(0)),
		},
		ByName: map[string]polyx.Box[string, Named]{
			"pair": polyx.NewBox[string, Named](Pair[int]{A: 3, B: 4}),
		},
	}
}

func TestBox_JSON(t *testing.T) {
	doc := sampleDocument()

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "doc",
		"main": {"Point": {"x": 1, "y": 2}},
		"items": [{"Foo": "A"}, {"Bar": 0}],
		"by_name": {"pair": {"Pair[int]": {"a": 3, "b": 4}}},
		"empty": null
	}`, string(out))

	var back Document
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, doc, back)
}

func TestBox_YAML(t *testing.T) {
	doc := sampleDocument()

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, doc, back)
}

func TestBox_YAMLRejectsNil(t *testing.T) {
	type list struct {
		S []polyx.Box[string, Named] `yaml:"s"`
	}
	in := list{S: []polyx.Box[string, Named]{
		polyx.NewBox[string, Named](Bar(7)),
		{},
		polyx.NewBox[string, Named](Foo("z")),
	}}

	_, err := yaml.Marshal(in)
	assert.ErrorIs(t, err, polyx.ErrNilBox)

	type field struct {
		B polyx.Box[string, Named] `yaml:"b"`
	}
	_, err = yaml.Marshal(field{})
	assert.ErrorIs(t, err, polyx.ErrNilBox)

	assert.True(t, polyx.Box[string, Named]{}.IsZero())
	assert.False(t, polyx.NewBox[string, Named](Foo("A")).IsZero())

	out, err := yaml.Marshal(sampleDocument())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "empty")
}

func TestBox_NilKeepsSequenceOrder(t *testing.T) {
	in := []polyx.Box[string, Named]{
		polyx.NewBox[string, Named](Bar(7)),
		{},
		polyx.NewBox[string, Named](Foo("z")),
	}

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Bar":7},null,{"Foo":"z"}]`, string(out))

	var back []polyx.Box[string, Named]
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, in, back)

	raw, err := cbor.Marshal(in)
	require.NoError(t, err)
	back = nil
	require.NoError(t, cbor.Unmarshal(raw, &back))
	assert.Equal(t, in, back)
}

func TestBox_CBOR(t *testing.T) {
	doc := sampleDocument()

	out, err := cbor.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, cbor.Unmarshal(out, &back))
	assert.Equal(t, doc, back)
}

func TestBox_MsgPack(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	require.NoError(t, codec.NewMsgPackEncoder(&buf).Encode(doc))

	var back Document
	require.NoError(t, codec.NewMsgPackDecoder(&buf).Decode(&back))
	assert.Equal(t, doc, back)

	// A plain msgpack encoder works too; only field names differ.
	raw, err := msgpack.Marshal(doc.Items)
	require.NoError(t, err)
	var items []polyx.Box[string, Named]
	require.NoError(t, msgpack.Unmarshal(raw, &items))
	assert.Equal(t, doc.Items, items)
}

func TestBox_Proto(t *testing.T) {
	doc := sampleDocument()
	f := codec.Proto()

	out, err := f.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, f.Unmarshal(out, &back))
	assert.Equal(t, doc, back)
}

func TestBox_DecodeErrors(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"main":{"Baz":{}}}`), &doc)
	assert.ErrorIs(t, err, apis.ErrNotRegistered)

	err = json.Unmarshal([]byte(`{"main":{}}`), &doc)
	assert.ErrorIs(t, err, apis.ErrShape)

	err = json.Unmarshal([]byte(`{"main":{"Foo":"A","Bar":0}}`), &doc)
	assert.ErrorIs(t, err, apis.ErrShape)

	err = json.Unmarshal([]byte(`{"main":"Foo"}`), &doc)
	assert.ErrorIs(t, err, apis.ErrShape)
}

// Unbound is never bound to a domain.
type Unbound interface{ Unbound() }

func TestBox_UnboundDomain(t *testing.T) {
	_, err := json.Marshal(polyx.NewBox[string, Unbound](unboundValue{}))
	assert.ErrorIs(t, err, apis.ErrUnboundDomain)

	var b polyx.Box[string, Unbound]
	err = json.Unmarshal([]byte(`{"x":1}`), &b)
	assert.ErrorIs(t, err, apis.ErrUnboundDomain)

	// A different identifier type is a different binding.
	_, err = json.Marshal(polyx.NewBox[int, Named](Foo("A")))
	assert.ErrorIs(t, err, apis.ErrUnboundDomain)
}

type unboundValue struct{}

func (unboundValue) Unbound() {}

func TestBox_RecursiveBoxRejected(t *testing.T) {
	d := polyx.NewDomain[string, any]("anything", func(reg apis.Registry[string, any]) {
		registry.Add[Foo](reg, "Foo")
	})

	_, err := d.Marshal(codec.JSON(), polyx.NewBox[string, any](Foo("A")))
	assert.ErrorIs(t, err, apis.ErrRecursiveBox)
}

func TestBindUnbind(t *testing.T) {
	type Local interface{ Describe() string }

	_, ok := polyx.Bound[string, Local]()
	assert.False(t, ok)

	first := polyx.Define("first", func(reg apis.Registry[string, Local]) {
		registry.Add[Foo](reg, "first")
	})
	second := polyx.Define("second", func(reg apis.Registry[string, Local]) {
		registry.Add[Foo](reg, "second")
	})

	got, ok := polyx.Bound[string, Local]()
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)

	polyx.Unbind[string, Local]()
	_, ok = polyx.Bound[string, Local]()
	assert.False(t, ok)
}

func TestGlobalMarshalUsesConfiguredFormat(t *testing.T) {
	prev := polyx.Config()
	t.Cleanup(func() { polyx.SetConfig(prev) })

	out, err := polyx.Marshal[string, Named](Foo("A"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Foo":"A"}`, string(out))

	polyx.SetConfig(config.NewConfig(config.WithFormat("cbor")))
	out, err = polyx.Marshal[string, Named](Foo("A"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa1, 0x63, 'F', 'o', 'o', 0x61, 'A'}, out)

	v, err := polyx.Unmarshal[string, Named](out)
	require.NoError(t, err)
	assert.Equal(t, Foo("A"), v)

	polyx.SetConfig(config.NewConfig(config.WithFormat("xml")))
	_, err = polyx.Marshal[string, Named](Foo("A"))
	assert.ErrorIs(t, err, codec.ErrUnknownFormat)
}

func TestFormatLookup(t *testing.T) {
	f, err := polyx.Format("application/msgpack")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", f.Name())

	f, err = polyx.Format("")
	require.NoError(t, err)
	assert.Equal(t, polyx.Config().Format, f.Name())
}

func TestDomain_BuildsOnceWithConfig(t *testing.T) {
	type Local interface{ Describe() string }
	core, logs := observer.New(zap.DebugLevel)

	prev := polyx.Config()
	t.Cleanup(func() { polyx.SetConfig(prev) })
	polyx.SetLogger(zap.New(core))

	calls := 0
	d := polyx.NewDomain("counted", func(reg apis.Registry[string, Local]) {
		calls++
		reg.Register("dup", func(apis.Decoder) (Local, error) { return Foo("one"), nil })
		reg.Register("dup", func(apis.Decoder) (Local, error) { return Foo("two"), nil })
	}, config.WithPolicy(apis.LastWins))

	assert.Equal(t, apis.LastWins, d.Config().Policy)
	assert.Equal(t, "counted", d.Registry().Name())
	_ = d.Resolver()
	assert.Equal(t, 1, calls)

	v, err := d.Unmarshal(codec.JSON(), []byte(`{"dup":null}`))
	require.NoError(t, err)
	assert.Equal(t, Foo("two"), v)

	assert.Equal(t, 1, logs.FilterMessage("domain built").Len())
	assert.Equal(t, 1, logs.FilterMessage("identifier registered more than once").Len())
}
