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

package apis_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/polyx/apis"
)

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "Strict", apis.Strict.String())
	assert.Equal(t, "FirstWins", apis.FirstWins.String())
	assert.Equal(t, "LastWins", apis.LastWins.String())
	assert.Equal(t, "Unknown(9)", apis.Policy(9).String())
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]apis.Policy{
		"strict":     apis.Strict,
		" Strict ":   apis.Strict,
		"first-wins": apis.FirstWins,
		"FIRST_WINS": apis.FirstWins,
		"FirstWins":  apis.FirstWins,
		"first":      apis.FirstWins,
		"last_wins":  apis.LastWins,
		"LastWins":   apis.LastWins,
	}
	for in, want := range cases {
		got, err := apis.ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "   ", "random", "first-loses"} {
		got, err := apis.ParsePolicy(in)
		assert.Error(t, err, in)
		assert.Equal(t, apis.Strict, got, in)
	}
}

func TestMustParsePolicy(t *testing.T) {
	assert.Equal(t, apis.LastWins, apis.MustParsePolicy("last"))
	assert.Panics(t, func() { apis.MustParsePolicy("nope") })
}

func TestPolicy_Text(t *testing.T) {
	type doc struct {
		Policy apis.Policy `json:"policy"`
	}

	b, err := json.Marshal(doc{Policy: apis.FirstWins})
	require.NoError(t, err)
	assert.JSONEq(t, `{"policy":"FirstWins"}`, string(b))

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"policy":"last-wins"}`), &d))
	assert.Equal(t, apis.LastWins, d.Policy)

	_, err = json.Marshal(doc{Policy: apis.Policy(42)})
	assert.Error(t, err)

	p := apis.FirstWins
	assert.Error(t, p.UnmarshalText([]byte("bogus")))
	assert.Equal(t, apis.FirstWins, p)
}
