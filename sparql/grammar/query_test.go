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

package grammar_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weftdb/weft/sparql/exec"
	"github.com/weftdb/weft/sparql/grammar"
	"github.com/weftdb/weft/store"
)

// newFixtureDataset builds the small social-graph dataset every test
// query below runs against: a default graph of ex:alice/ex:bob/ex:carol
// knows-edges plus ages, and a second named graph ex:other.
func newFixtureDataset(t *testing.T) *store.Dataset {
	t.Helper()
	ds := store.NewDataset(store.Config{})
	g := ds.Active()

	iri := func(local string) string { return "<http://example.org/" + local + ">" }
	g.Assert(iri("alice"), iri("knows"), iri("bob"))
	g.Assert(iri("bob"), iri("knows"), iri("carol"))
	g.Assert(iri("alice"), iri("age"), `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	g.Assert(iri("bob"), iri("age"), `"25"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	g.Assert(iri("carol"), iri("age"), `"40"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	g.Assert(iri("alice"), iri("name"), `"Alice"`)

	other := ds.Graph("http://example.org/other")
	other.Assert(iri("dave"), iri("knows"), iri("alice"))

	return ds
}

// runQuery parses and executes query against ds, failing the test on
// any parse error.
func runQuery(t *testing.T, ds *store.Dataset, query string) *exec.Result {
	t.Helper()
	root, err := grammar.Parse(query)
	require.NoError(t, err, "query: %s", query)
	return exec.Execute(ds, root)
}

func columnValues(t *testing.T, result *exec.Result, col string) []string {
	t.Helper()
	require.NotNil(t, result.Table)
	idx := result.Table.ColumnIndex(col)
	require.GreaterOrEqual(t, idx, 0, "no column %q", col)
	out := make([]string, len(result.Table.Rows))
	for i, row := range result.Table.Rows {
		out[i] = row[idx]
	}
	sort.Strings(out)
	return out
}

func TestSelectBasicGraphPattern(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?who WHERE { ex:alice ex:knows ?who }
	`)
	require.Equal(t, []string{"<http://example.org/bob>"}, columnValues(t, result, "who"))
}

func TestSelectDistinctAndOrderAndLimit(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT DISTINCT ?p WHERE { ?s ex:knows ?p } ORDER BY ?p LIMIT 1
	`)
	require.Len(t, result.Table.Rows, 1)
}

func TestSelectFilter(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE { ?s ex:age ?a . FILTER(?a > 28) }
	`)
	require.ElementsMatch(t, []string{
		"<http://example.org/alice>",
		"<http://example.org/carol>",
	}, columnValues(t, result, "s"))
}

func TestSelectOptional(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s ?name WHERE { ?s ex:age ?a . OPTIONAL { ?s ex:name ?name } }
	`)
	require.Len(t, result.Table.Rows, 3)
	idxName := result.Table.ColumnIndex("name")
	var boundCount int
	for _, row := range result.Table.Rows {
		if row[idxName] != "" {
			boundCount++
		}
	}
	require.Equal(t, 1, boundCount)
}

func TestSelectUnion(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE {
			{ ?s ex:name ?n } UNION { ?s ex:age "40"^^<http://www.w3.org/2001/XMLSchema#integer> }
		}
	`)
	require.ElementsMatch(t, []string{
		"<http://example.org/alice>",
		"<http://example.org/carol>",
	}, columnValues(t, result, "s"))
}

func TestSelectMinus(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE {
			?s ex:age ?a
			MINUS { ?s ex:name ?n }
		}
	`)
	require.ElementsMatch(t, []string{
		"<http://example.org/bob>",
		"<http://example.org/carol>",
	}, columnValues(t, result, "s"))
}

func TestSelectGraphClause(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE { GRAPH <http://example.org/other> { ?s ex:knows ex:alice } }
	`)
	require.Equal(t, []string{"<http://example.org/dave>"}, columnValues(t, result, "s"))
}

func TestSelectValues(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?who WHERE {
			ex:alice ex:knows ?who
		}
		VALUES ?who { ex:bob ex:carol }
	`)
	require.Equal(t, []string{"<http://example.org/bob>"}, columnValues(t, result, "who"))
}

func TestSelectBind(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s ?decade WHERE { ?s ex:age ?a . BIND(?a - 5 AS ?decade) }
	`)
	require.Len(t, result.Table.Rows, 3)
}

func TestSelectGroupByAggregateHaving(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s (COUNT(?o) AS ?c) WHERE { ?s ?p ?o } GROUP BY ?s HAVING (COUNT(?o) > 1)
	`)
	require.Equal(t, []string{
		"<http://example.org/alice>",
		"<http://example.org/bob>",
	}, columnValues(t, result, "s"))
}

func TestSelectAggregateInOrderBy(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE { ?s ?p ?o } GROUP BY ?s ORDER BY DESC(COUNT(?o))
	`)
	require.Equal(t, "<http://example.org/alice>", result.Table.Rows[0][result.Table.ColumnIndex("s")])
}

func TestSelectFilterExists(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE { ?s ex:age ?a . FILTER EXISTS { ?s ex:name ?n } }
	`)
	require.Equal(t, []string{"<http://example.org/alice>"}, columnValues(t, result, "s"))
}

func TestSelectFilterNotExists(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE { ?s ex:age ?a . FILTER NOT EXISTS { ?s ex:name ?n } }
	`)
	require.ElementsMatch(t, []string{
		"<http://example.org/bob>",
		"<http://example.org/carol>",
	}, columnValues(t, result, "s"))
}

func TestAskQuery(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		ASK { ex:alice ex:knows ex:bob }
	`)
	require.NotNil(t, result.Ask)
	require.True(t, *result.Ask)

	result = runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		ASK { ex:bob ex:knows ex:alice }
	`)
	require.False(t, *result.Ask)
}

func TestConstructQuery(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		CONSTRUCT { ?s ex:hasFriend ?o } WHERE { ?s ex:knows ?o }
	`)
	require.Len(t, result.Triples, 2)
}

func TestDescribeQuery(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		DESCRIBE ex:alice
	`)
	require.NotEmpty(t, result.Triples)
	for _, tr := range result.Triples {
		require.Equal(t, "<http://example.org/alice>", tr.Subject.String())
	}
}

func TestSubSelect(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE {
			{ SELECT ?s WHERE { ?s ex:age ?a } ORDER BY DESC(?a) LIMIT 1 }
		}
	`)
	require.Equal(t, []string{"<http://example.org/carol>"}, columnValues(t, result, "s"))
}

func TestBaseAndPrefixDecl(t *testing.T) {
	ds := newFixtureDataset(t)
	result := runQuery(t, ds, `
		BASE <http://example.org/>
		PREFIX ex: <http://example.org/>
		SELECT ?who WHERE { <alice> ex:knows ?who }
	`)
	require.Equal(t, []string{"<http://example.org/bob>"}, columnValues(t, result, "who"))
}

func TestParseErrorOnMalformedQuery(t *testing.T) {
	_, err := grammar.Parse("SELECT ?x WHERE {")
	require.Error(t, err)
}
