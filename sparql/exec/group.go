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

package exec

import (
	"sort"

	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/store"
	"github.com/weftdb/weft/term"
)

// evalGroupContents evaluates grp's own pattern — its basic graph pattern,
// nested Children, VALUES, FILTER [NOT] EXISTS checks, FILTER clauses and
// BIND clauses, in that order — seeded onto seed (spec.md §4.10). seed
// carries correlated outer bindings into a FILTER EXISTS subpattern;
// every other caller seeds with identityTable.
func evalGroupContents(ds *store.Dataset, g *store.Graph, grp *sparql.Group, seed *sparql.Table) *sparql.Table {
	table := evalClauses(g, grp.Clauses, seed)

	for _, child := range grp.Children {
		table = foldChild(ds, g, child, table)
	}

	if grp.Values != nil {
		table = naturalJoin(table, materializeValues(grp.Values))
	}

	table = applyExistsChecks(ds, g, grp.ExistsChecks, table)
	table = applyFilters(grp.Filters, table)
	table = applyBinders(grp.Binders, table)

	return table
}

// foldChild combines one nested Group into the running table, per its
// Label (spec.md §4.10 rules 4-7).
func foldChild(ds *store.Dataset, g *store.Graph, child *sparql.Group, table *sparql.Table) *sparql.Table {
	switch child.Label {
	case sparql.LabelOptional:
		rhs := evalGroupContents(ds, g, child, identityTable())
		return leftOuterJoin(table, rhs)
	case sparql.LabelMinus:
		rhs := evalGroupContents(ds, g, child, identityTable())
		return antiJoin(table, rhs)
	case sparql.LabelUnion:
		parts := make([]*sparql.Table, 0, len(child.Children))
		for _, alt := range child.Children {
			parts = append(parts, evalGroupContents(ds, g, alt, identityTable()))
		}
		return naturalJoin(table, unionAll(parts))
	case sparql.LabelGraph:
		return foldGraph(ds, child, table)
	case sparql.LabelValues:
		if child.Values != nil {
			return naturalJoin(table, materializeValues(child.Values))
		}
		return table
	default:
		rhs := evalGroupContents(ds, g, child, identityTable())
		return naturalJoin(table, rhs)
	}
}

// foldGraph implements GRAPH (spec.md §4.3, §4.10): a bound graph name
// selects one named graph directly; a variable graph name unions the
// pattern's evaluation across every graph in the dataset, binding the
// variable to each graph's IRI in turn.
func foldGraph(ds *store.Dataset, child *sparql.Group, table *sparql.Table) *sparql.Table {
	if !child.GraphTerm.IsVariable() {
		g2, ok := ds.GraphNamed(child.GraphTerm.Value())
		if !ok {
			return naturalJoin(table, sparql.NewTable(nil))
		}
		rhs := evalGroupContentsNoGraphLabel(ds, g2, child, identityTable())
		return naturalJoin(table, rhs)
	}

	varName := child.GraphTerm.LocalName()
	var parts []*sparql.Table
	for _, name := range ds.Names() {
		g2, _ := ds.GraphNamed(name)
		rhs := evalGroupContentsNoGraphLabel(ds, g2, child, identityTable())
		rhs = bindColumn(rhs, varName, term.PlainIRI(name).String())
		parts = append(parts, rhs)
	}
	return naturalJoin(table, unionAll(parts))
}

// evalGroupContentsNoGraphLabel evaluates child's own clauses/children/
// filters against g without re-dispatching child.Label == LabelGraph
// again (child here is being evaluated as the graph pattern itself, not
// folded as someone else's nested child).
func evalGroupContentsNoGraphLabel(ds *store.Dataset, g *store.Graph, child *sparql.Group, seed *sparql.Table) *sparql.Table {
	plain := *child
	plain.Label = sparql.LabelPlain
	return evalGroupContents(ds, g, &plain, seed)
}

func bindColumn(t *sparql.Table, name, value string) *sparql.Table {
	if t.ColumnIndex(name) >= 0 {
		return t
	}
	out := sparql.NewTable(append(append([]string(nil), t.Columns...), name))
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append(append([]string(nil), row...), value))
	}
	return out
}

// applyExistsChecks implements FILTER [NOT] EXISTS (spec.md §4.10 rule 8):
// each check is evaluated per-row, correlated against that row's current
// bindings.
func applyExistsChecks(ds *store.Dataset, g *store.Graph, checks []sparql.ExistsCheck, table *sparql.Table) *sparql.Table {
	if len(checks) == 0 {
		return table
	}
	out := sparql.NewTable(table.Columns)
	for _, row := range table.Rows {
		keep := true
		for _, chk := range checks {
			seed := singleRowTable(table.Columns, row)
			sub := evalGroupContents(ds, g, chk.Pattern, seed)
			exists := len(sub.Rows) > 0
			if chk.Negate {
				exists = !exists
			}
			if !exists {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func applyFilters(filters []sparql.Filter, table *sparql.Table) *sparql.Table {
	if len(filters) == 0 {
		return table
	}
	out := sparql.NewTable(table.Columns)
	for _, row := range table.Rows {
		b := sparql.Row{Columns: table.Columns, Values: row}
		keep := true
		for _, f := range filters {
			if !f(b) {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func applyBinders(binders []sparql.Binder, table *sparql.Table) *sparql.Table {
	if len(binders) == 0 {
		return table
	}
	// slotOf maps a binder's Var to its position in newCols, so the value
	// computed for each binder lands in the new column that binder itself
	// introduced — not the new column at the binder's ordinal position,
	// which diverges as soon as any binder's Var already exists as a
	// column and is therefore skipped in newCols.
	slotOf := make(map[string]int, len(binders))
	newCols := make([]string, 0, len(binders))
	for _, bd := range binders {
		if table.ColumnIndex(bd.Var) < 0 {
			if _, ok := slotOf[bd.Var]; !ok {
				slotOf[bd.Var] = len(newCols)
				newCols = append(newCols, bd.Var)
			}
		}
	}
	out := sparql.NewTable(append(append([]string(nil), table.Columns...), newCols...))
	for _, row := range table.Rows {
		b := sparql.Row{Columns: table.Columns, Values: row}
		vals := make([]string, len(newCols))
		for _, bd := range binders {
			v := sparql.CellOf(bd.Expr(b))
			if slot, ok := slotOf[bd.Var]; ok {
				vals[slot] = v
			}
		}
		newRow := append(append([]string(nil), row...), vals...)
		out.Rows = append(out.Rows, newRow)
	}
	return out
}

// sortTable implements ORDER BY (spec.md §3, §4.10): keys are compared
// using the SPARQL total order (function.Compare), an error/incomparable
// comparison sorting as equal so sort.SliceStable preserves prior
// relative order for ties.
func sortTable(table *sparql.Table, keys []sparql.OrderKey) *sparql.Table {
	if len(keys) == 0 {
		return table
	}
	rows := append([][]string(nil), table.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		bi := sparql.Row{Columns: table.Columns, Values: rows[i]}
		bj := sparql.Row{Columns: table.Columns, Values: rows[j]}
		for _, k := range keys {
			vi, vj := k.Expr(bi), k.Expr(bj)
			cmp, ok := function.Compare(vi, vj)
			if !ok || cmp == 0 {
				continue
			}
			if k.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return &sparql.Table{Columns: table.Columns, Rows: rows}
}
