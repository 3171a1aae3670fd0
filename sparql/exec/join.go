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

// Package exec implements the SPARQL query executor (spec.md §4.10): a
// recursive descent over a sparql.Group tree that produces a sparql.Table,
// built on the same graph pattern-matching primitives store.Graph exposes
// to the rest of weft.
package exec

import (
	"github.com/weftdb/weft/index"
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/store"
	"github.com/weftdb/weft/term"
)

// evalClauses joins g's basic graph pattern clauses into seed (typically
// the identity table, one empty row), reordering clauses greedily by how
// many of their positions are already bound, as spec.md §4.10 rule 1
// describes ("plan each group's own clauses by bound-position count, most
// bound first; this is a heuristic, not a cost-based optimiser").
func evalClauses(g *store.Graph, clauses []sparql.TriplePattern, seed *sparql.Table) *sparql.Table {
	remaining := append([]sparql.TriplePattern(nil), clauses...)
	table := seed

	for len(remaining) > 0 {
		best := 0
		bestScore := -1
		for i, pat := range remaining {
			if s := boundScore(pat, table.Columns); s > bestScore {
				bestScore = s
				best = i
			}
		}
		pat := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
		table = joinClause(g, pat, table)
		if len(table.Rows) == 0 {
			break
		}
	}
	return table
}

func boundScore(pat sparql.TriplePattern, cols []string) int {
	return boundPosition(pat.S, cols) + boundPosition(pat.P, cols) + boundPosition(pat.O, cols)
}

func boundPosition(t term.Term, cols []string) int {
	if !t.IsVariable() {
		return 1
	}
	name := t.LocalName()
	for _, c := range cols {
		if c == name {
			return 1
		}
	}
	return 0
}

// joinClause matches one triple pattern against g for every row of
// table, producing the wider table of combined rows (spec.md §4.10's
// per-clause join step).
func joinClause(g *store.Graph, pat sparql.TriplePattern, table *sparql.Table) *sparql.Table {
	newCols := newColumnsFor(pat, table.Columns)
	out := sparql.NewTable(append(append([]string(nil), table.Columns...), newCols...))

	for _, row := range table.Rows {
		binding := sparql.Row{Columns: table.Columns, Values: row}
		cs, varS := positionConstraint(pat.S, binding)
		cp, varP := positionConstraint(pat.P, binding)
		co, varO := positionConstraint(pat.O, binding)

		sol := g.Enumerate(cs, cp, co)
		it := sol.Rows()
		for {
			vals, ok := it.Next()
			if !ok {
				break
			}
			extra, ok := bindFreeVars([3]string{varS, varP, varO}, vals, newCols)
			if !ok {
				continue
			}
			newRow := make([]string, 0, len(row)+len(newCols))
			newRow = append(newRow, row...)
			newRow = append(newRow, extra...)
			out.Rows = append(out.Rows, newRow)
		}
		it.Close()
	}
	return out
}

// newColumnsFor determines which of pat's variable positions are not
// already columns of cols, in s/p/o order, deduplicating a variable that
// appears at more than one position.
func newColumnsFor(pat sparql.TriplePattern, cols []string) []string {
	existing := make(map[string]bool, len(cols))
	for _, c := range cols {
		existing[c] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, t := range [3]term.Term{pat.S, pat.P, pat.O} {
		if !t.IsVariable() {
			continue
		}
		name := t.LocalName()
		if existing[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// positionConstraint computes the constraint store.Graph.Enumerate should
// apply at one triple position: a bound term (or an already-bound
// variable) becomes Specific; a fresh variable becomes Any, and its name
// is returned so the caller can line the result column back up with it.
func positionConstraint(t term.Term, row sparql.Bindings) (index.Constraint, string) {
	if !t.IsVariable() {
		return index.Specific(t.String()), ""
	}
	name := t.LocalName()
	if v := row.Lookup(name); v.IsBound() {
		return index.Specific(sparql.CellOf(v)), ""
	}
	return index.Any(), name
}

// bindFreeVars aligns one Enumerate result row (vals, in s/p/o order minus
// specific positions) against the pattern's free variable names in the
// same order, then re-projects onto newCols. A variable occurring twice
// in one pattern (e.g. "?x ?p ?x") must see the same value at both
// occurrences, or the row is rejected.
func bindFreeVars(varNames [3]string, vals []string, newCols []string) ([]string, bool) {
	seen := map[string]string{}
	var freeIdx int
	for _, name := range varNames {
		if name == "" {
			continue
		}
		v := vals[freeIdx]
		freeIdx++
		if prior, ok := seen[name]; ok {
			if prior != v {
				return nil, false
			}
			continue
		}
		seen[name] = v
	}
	out := make([]string, len(newCols))
	for i, c := range newCols {
		out[i] = seen[c]
	}
	return out, true
}
