// Copyright 2024 The Weft Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualLiteralNotNormalised(t *testing.T) {
	require := require.New(t)

	a := TypedLiteral("5", XSDInteger)
	b := TypedLiteral("05", XSDInteger)
	require.False(Equal(a, b), `"5"^^xsd:integer must not equal "05"^^xsd:integer`)
	require.True(Equal(a, TypedLiteral("5", XSDInteger)))
}

func TestSimpleLiteralIsXSDString(t *testing.T) {
	require := require.New(t)

	l := SimpleLiteral("hello")
	require.Equal(XSDString, l.EffectiveDatatype())
	require.Equal("", l.Lang())
	require.Equal("", l.Datatype())
}

func TestStringRoundTrip(t *testing.T) {
	require := require.New(t)

	tests := []Term{
		PlainIRI("http://example.org/a"),
		Blank("b0"),
		SimpleLiteral(`hello "world"`),
		LangLiteral("bonjour", "fr"),
		TypedLiteral("42", XSDInteger),
		Variable("x"),
	}
	for _, tm := range tests {
		s := tm.String()
		require.NotEmpty(s)
		if tm.IsVariable() {
			continue // "?x" is query syntax, not a term Parse accepts
		}
		back, err := Parse(s, nil, "")
		require.NoError(err, s)
		require.True(Equal(tm, back), s)
	}
}

func TestIsAnonymousVariable(t *testing.T) {
	require := require.New(t)
	require.True(IsAnonymousVariable(Variable("_:var0")))
	require.False(IsAnonymousVariable(Variable("x")))
}

func TestParseDispatch(t *testing.T) {
	require := require.New(t)
	ns := map[string]string{"ex": "http://example.org/"}

	iri, err := Parse("<http://example.org/a>", ns, "")
	require.NoError(err)
	require.True(iri.IsIRI())
	require.Equal("http://example.org/a", iri.Value())

	prefixed, err := Parse("ex:a", ns, "")
	require.NoError(err)
	require.True(prefixed.IsIRI())
	require.Equal("http://example.org/a", prefixed.Value())

	blank, err := Parse("_:b0", ns, "")
	require.NoError(err)
	require.True(blank.IsBlank())
	require.Equal("b0", blank.LocalName())

	lit, err := Parse(`"hello"@en`, ns, "")
	require.NoError(err)
	require.True(lit.IsLiteral())
	require.Equal("en", lit.Lang())

	typed, err := Parse(`"42"^^<http://www.w3.org/2001/XMLSchema#integer>`, ns, "")
	require.NoError(err)
	require.Equal(XSDInteger, typed.Datatype())

	long, err := Parse(`"""multi
line"""`, ns, "")
	require.NoError(err)
	require.Equal("multi\nline", long.Lexical())
}

func TestParseUnknownPrefix(t *testing.T) {
	require := require.New(t)
	_, err := Parse("bogus:a", map[string]string{}, "")
	require.Error(err)
}

func TestUnescapeLiteralSurrogatePair(t *testing.T) {
	require := require.New(t)
	// U+1F600 GRINNING FACE, as a UTF-16 surrogate pair.
	s, err := UnescapeLiteral("\\uD83D\\uDE00")
	require.NoError(err)
	require.Equal("😀", s)
}

func TestResolveRelativeRFC3986Examples(t *testing.T) {
	require := require.New(t)
	base := "http://a/b/c/d;p?q"

	tests := map[string]string{
		"g:h":     "g:h",
		"g":       "http://a/b/c/g",
		"./g":     "http://a/b/c/g",
		"g/":      "http://a/b/c/g/",
		"/g":      "http://a/g",
		"//g":     "http://g",
		"?y":      "http://a/b/c/d;p?y",
		"g?y":     "http://a/b/c/g?y",
		"#s":      "http://a/b/c/d;p?q#s",
		"g#s":     "http://a/b/c/g#s",
		"":        "http://a/b/c/d;p?q",
		".":       "http://a/b/c/",
		"./":      "http://a/b/c/",
		"..":      "http://a/b/",
		"../":     "http://a/b/",
		"../g":    "http://a/b/g",
		"../..":   "http://a/",
		"../../g": "http://a/g",
	}

	for ref, want := range tests {
		got, err := ResolveRelative(ref, base)
		require.NoError(err, ref)
		require.Equal(want, got, ref)
	}
}

func TestResolveRelativeNoSchemeBase(t *testing.T) {
	require := require.New(t)
	_, err := ResolveRelative("g", "no-scheme")
	require.Error(err)
}

func TestShortForm(t *testing.T) {
	require := require.New(t)
	tm := IRI("rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#", "type")
	require.Equal("rdf:type", ShortForm(tm))
}
