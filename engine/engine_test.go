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

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTurtle(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.ttl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEngineLoadAndQuery(t *testing.T) {
	path := writeTurtle(t, `
		@prefix ex: <http://example.org/> .
		ex:alice ex:knows ex:bob .
		ex:bob ex:knows ex:carol .
	`)

	e := New(Config{})
	require.NoError(t, e.LoadTurtleFile("default", path))

	result, err := e.Query(`
		PREFIX ex: <http://example.org/>
		SELECT ?who WHERE { ex:alice ex:knows ?who }
	`)
	require.NoError(t, err)
	require.NotNil(t, result.Table)
	require.Len(t, result.Table.Rows, 1)
	require.Equal(t, "<http://example.org/bob>", result.Table.Rows[0][result.Table.ColumnIndex("who")])
}

func TestEngineQueryParseError(t *testing.T) {
	e := New(Config{})
	_, err := e.Query("SELECT ?x WHERE {")
	require.Error(t, err)
	require.True(t, ErrParseQuery.Is(err))
}

func TestEngineReadOnlyRejectsLoad(t *testing.T) {
	path := writeTurtle(t, `<http://example.org/s> <http://example.org/p> <http://example.org/o> .`)

	e := New(Config{IsReadOnly: true})
	err := e.LoadTurtleFile("default", path)
	require.Error(t, err)
	require.True(t, ErrReadOnly.Is(err))
}

func TestEngineAskQuery(t *testing.T) {
	path := writeTurtle(t, `
		@prefix ex: <http://example.org/> .
		ex:alice ex:knows ex:bob .
	`)

	e := New(Config{})
	require.NoError(t, e.LoadTurtleFile("default", path))

	result, err := e.Query(`
		PREFIX ex: <http://example.org/>
		ASK { ex:alice ex:knows ex:bob }
	`)
	require.NoError(t, err)
	require.NotNil(t, result.Ask)
	require.True(t, *result.Ask)
}

// TestEngineOptionalLeftJoin is spec.md §8 scenario 3.
func TestEngineOptionalLeftJoin(t *testing.T) {
	path := writeTurtle(t, `
		@prefix ex: <http://example.org/> .
		ex:a ex:name "A" .
		ex:b ex:name "B" .
		ex:a ex:mail "a@x" .
	`)

	e := New(Config{})
	require.NoError(t, e.LoadTurtleFile("default", path))

	result, err := e.Query(`
		PREFIX ex: <http://example.org/>
		SELECT ?s ?m WHERE { ?s ex:name ?n OPTIONAL { ?s ex:mail ?m } }
	`)
	require.NoError(t, err)

	got := map[string]string{}
	sIdx, mIdx := result.Table.ColumnIndex("s"), result.Table.ColumnIndex("m")
	for _, row := range result.Table.Rows {
		got[row[sIdx]] = row[mIdx]
	}
	require.Equal(t, map[string]string{
		"<http://example.org/a>": `"a@x"`,
		"<http://example.org/b>": "",
	}, got)
}

// TestEngineFilterArithmetic is spec.md §8 scenario 4.
func TestEngineFilterArithmetic(t *testing.T) {
	path := writeTurtle(t, `
		@prefix ex: <http://example.org/> .
		ex:i ex:v 3 .
		ex:j ex:v 5 .
	`)

	e := New(Config{})
	require.NoError(t, e.LoadTurtleFile("default", path))

	result, err := e.Query(`
		PREFIX ex: <http://example.org/>
		SELECT ?x WHERE { ?x ex:v ?n FILTER (?n + 1 > 3) }
	`)
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 1)
	require.Equal(t, "<http://example.org/j>", result.Table.Rows[0][result.Table.ColumnIndex("x")])
}

// TestEngineGroupByAggregate is spec.md §8 scenario 5.
func TestEngineGroupByAggregate(t *testing.T) {
	path := writeTurtle(t, `
		@prefix ex: <http://example.org/> .
		ex:p1 ex:age 20 .
		ex:p2 ex:age 20 .
		ex:p3 ex:age 30 .
	`)

	e := New(Config{})
	require.NoError(t, e.LoadTurtleFile("default", path))

	result, err := e.Query(`
		PREFIX ex: <http://example.org/>
		SELECT ?a (COUNT(*) AS ?n) WHERE { ?p ex:age ?a } GROUP BY ?a
	`)
	require.NoError(t, err)

	got := map[string]string{}
	aIdx, nIdx := result.Table.ColumnIndex("a"), result.Table.ColumnIndex("n")
	for _, row := range result.Table.Rows {
		got[row[aIdx]] = row[nIdx]
	}
	require.Equal(t, map[string]string{
		`"20"^^<http://www.w3.org/2001/XMLSchema#integer>`: `"2"^^<http://www.w3.org/2001/XMLSchema#integer>`,
		`"30"^^<http://www.w3.org/2001/XMLSchema#integer>`: `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`,
	}, got)
}

// TestEngineConstructBlankNodes is spec.md §8 scenario 6.
func TestEngineConstructBlankNodes(t *testing.T) {
	path := writeTurtle(t, `
		@prefix ex: <http://example.org/> .
		ex:s1 ex:label "one" .
		ex:s2 ex:label "two" .
	`)

	e := New(Config{})
	require.NoError(t, e.LoadTurtleFile("default", path))

	result, err := e.Query(`
		PREFIX ex: <http://example.org/>
		CONSTRUCT { _:b ex:name ?n } WHERE { ?s ex:label ?n }
	`)
	require.NoError(t, err)
	require.Len(t, result.Triples, 2)
	require.NotEqual(t, result.Triples[0].Subject.String(), result.Triples[1].Subject.String())
	for _, tr := range result.Triples {
		require.True(t, tr.Subject.IsBlank())
	}
}
