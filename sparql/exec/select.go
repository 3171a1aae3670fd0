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
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/store"
	"github.com/weftdb/weft/term"
)

// evalSelect implements the SELECT pipeline (spec.md §4.10 rule 2): join
// the pattern, apply SELECT-level (expr AS ?var) projections, fold GROUP
// BY/aggregates, sort, de-duplicate, page, then project onto the final
// column list.
func evalSelect(ds *store.Dataset, g *store.Graph, grp *sparql.Group) *sparql.Table {
	table := evalGroupContents(ds, g, grp, identityTable())
	table = applyBinders(grp.SelectBinders, table)

	if len(grp.Aggregates) > 0 || len(grp.GroupByVars) > 0 {
		table = evalAggregate(table, grp)
	}
	table = applyFilters(grp.HavingFilters, table)

	table = sortTable(table, grp.OrderBy)
	if grp.Distinct {
		table = distinctRows(table)
	}
	table = sliceOffsetLimit(table, grp.Offset, grp.Limit)
	return project(table, grp.SelectVars)
}

func project(table *sparql.Table, vars []string) *sparql.Table {
	out := sparql.NewTable(vars)
	for _, row := range table.Rows {
		b := sparql.Row{Columns: table.Columns, Values: row}
		newRow := make([]string, len(vars))
		for i, v := range vars {
			newRow[i] = sparql.CellOf(b.Lookup(v))
		}
		out.Rows = append(out.Rows, newRow)
	}
	return out
}

// evalAggregate implements GROUP BY + aggregate projections (spec.md
// §4.8, §4.10 rule 2): rows sharing the same GroupByVars tuple fold into
// one output row via each AggregateBinder's Accumulate.
func evalAggregate(table *sparql.Table, grp *sparql.Group) *sparql.Table {
	order := []string{}
	members := map[string][]int{}
	for i, row := range table.Rows {
		key := groupKey(row, table.Columns, grp.GroupByVars)
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], i)
	}
	if len(order) == 0 && len(grp.GroupByVars) == 0 {
		// An aggregate with no GROUP BY over zero input rows still
		// produces exactly one output row (spec.md §4.8's COUNT(*) of an
		// empty pattern is 0, not "no rows").
		order = []string{""}
		members[""] = nil
	}

	outCols := append(append([]string(nil), grp.GroupByVars...), aggregateVarNames(grp.Aggregates)...)
	out := sparql.NewTable(outCols)
	for _, key := range order {
		idxs := members[key]
		row := make([]string, len(outCols))
		if len(idxs) > 0 {
			for gi, v := range grp.GroupByVars {
				row[gi] = table.Rows[idxs[0]][table.ColumnIndex(v)]
			}
		}
		for ai, agg := range grp.Aggregates {
			acc := term.Unbound
			var seen map[string]struct{}
			if agg.Distinct {
				seen = function.NewDistinctSet()
			}
			for _, idx := range idxs {
				b := sparql.Row{Columns: table.Columns, Values: table.Rows[idx]}
				acc = agg.Accumulate(agg.Arg(b), acc, seen)
			}
			row[len(grp.GroupByVars)+ai] = sparql.CellOf(acc)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func aggregateVarNames(aggs []sparql.AggregateBinder) []string {
	out := make([]string, len(aggs))
	for i, a := range aggs {
		out[i] = a.Var
	}
	return out
}

func groupKey(row, cols, groupByVars []string) string {
	vals := make([]string, len(groupByVars))
	for i, v := range groupByVars {
		idx := -1
		for j, c := range cols {
			if c == v {
				idx = j
				break
			}
		}
		if idx >= 0 {
			vals[i] = row[idx]
		}
	}
	return rowKey(vals)
}
