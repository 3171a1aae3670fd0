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

package turtle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleTriple(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob .`
	triples, err := Parse(strings.NewReader(doc), "http://example.org/")
	require.NoError(err)
	require.Len(triples, 1)
	require.Equal("http://example.org/alice", triples[0].Subject.Value())
	require.Equal("http://example.org/knows", triples[0].Predicate.Value())
	require.Equal("http://example.org/bob", triples[0].Object.Value())
}

func TestParsePredicateObjectList(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob , ex:carol ; ex:age "30"^^<http://www.w3.org/2001/XMLSchema#integer> .`
	triples, err := Parse(strings.NewReader(doc), "http://example.org/")
	require.NoError(err)
	require.Len(triples, 3)
}

func TestParseKeywordAAsRDFType(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice a ex:Person .`
	triples, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	require.Len(triples, 1)
	require.Equal(rdfType, triples[0].Predicate.Value())
}

func TestParseBlankNodePropertyListAsObject(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:address [ ex:city "Springfield" ] .`
	triples, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	require.Len(triples, 2)
}

func TestParseCollection(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:favourites ( "a" "b" ) .`
	triples, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	// head rdf:first, head rdf:rest node2, node2 rdf:first, node2 rdf:rest nil,
	// plus the outer ex:favourites triple.
	require.Len(triples, 5)
}

func TestParseLiteralWithLangTag(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:name "Alice"@en .`
	triples, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	require.Len(triples, 1)
	require.Equal("en", triples[0].Object.Lang())
}

func TestParseNumericLiteral(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:age 30 .`
	triples, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	require.Equal("http://www.w3.org/2001/XMLSchema#integer", triples[0].Object.Datatype())
}

func TestParseAbortsWholeDocumentOnFailure(t *testing.T) {
	require := require.New(t)

	doc := `@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob .
this is not valid turtle !!! ***`
	_, err := Parse(strings.NewReader(doc), "")
	require.Error(err)
}

func TestParseBlankNodeLabelsDoNotCollideAcrossDocuments(t *testing.T) {
	require := require.New(t)

	doc := `_:b0 <http://example.org/p> <http://example.org/o> .`
	t1, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	t2, err := Parse(strings.NewReader(doc), "")
	require.NoError(err)
	require.NotEqual(t1[0].Subject.Value(), t2[0].Subject.Value())
}
