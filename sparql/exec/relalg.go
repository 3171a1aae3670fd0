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

import "github.com/weftdb/weft/sparql"

// identityTable is the join identity: one column-less row, so folding any
// pattern into it via naturalJoin reduces to evaluating that pattern alone.
func identityTable() *sparql.Table {
	return &sparql.Table{Columns: []string{}, Rows: [][]string{{}}}
}

func singleRowTable(cols, vals []string) *sparql.Table {
	return &sparql.Table{Columns: append([]string(nil), cols...), Rows: [][]string{append([]string(nil), vals...)}}
}

func colMap(cols, vals []string) map[string]string {
	m := make(map[string]string, len(cols))
	for i, c := range cols {
		m[c] = vals[i]
	}
	return m
}

func unionColumns(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]bool, len(a))
	for _, c := range a {
		seen[c] = true
	}
	for _, c := range b {
		if !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	return out
}

func commonColumns(a, b []string) []string {
	bs := make(map[string]bool, len(b))
	for _, c := range b {
		bs[c] = true
	}
	var out []string
	for _, c := range a {
		if bs[c] {
			out = append(out, c)
		}
	}
	return out
}

// mergeBindings combines two row bindings (spec.md §4.10 rule 4,
// "compatible" meaning every shared variable that both bind agrees):
// an unbound ("") value on either side is not a conflict.
func mergeBindings(l, r map[string]string) (map[string]string, bool) {
	merged := make(map[string]string, len(l)+len(r))
	for k, v := range l {
		merged[k] = v
	}
	for k, v := range r {
		if v == "" {
			continue
		}
		if existing, ok := merged[k]; ok && existing != "" && existing != v {
			return nil, false
		}
		merged[k] = v
	}
	return merged, true
}

func projectRow(cols []string, bind map[string]string) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = bind[c]
	}
	return row
}

// naturalJoin combines two independently evaluated patterns on their
// shared variables (spec.md §4.10 rule for a nested "{ }" group and for
// UNION's result joined back into its enclosing pattern).
func naturalJoin(left, right *sparql.Table) *sparql.Table {
	allCols := unionColumns(left.Columns, right.Columns)
	out := sparql.NewTable(allCols)
	for _, lRow := range left.Rows {
		lBind := colMap(left.Columns, lRow)
		for _, rRow := range right.Rows {
			rBind := colMap(right.Columns, rRow)
			merged, ok := mergeBindings(lBind, rBind)
			if !ok {
				continue
			}
			out.Rows = append(out.Rows, projectRow(allCols, merged))
		}
	}
	return out
}

// leftOuterJoin implements OPTIONAL (spec.md §4.10 rule 5): every left row
// is kept; rows of right compatible with it extend it, and if none are
// compatible the left row survives unextended, with right-only columns
// left unbound.
func leftOuterJoin(left, right *sparql.Table) *sparql.Table {
	allCols := unionColumns(left.Columns, right.Columns)
	out := sparql.NewTable(allCols)
	for _, lRow := range left.Rows {
		lBind := colMap(left.Columns, lRow)
		matched := false
		for _, rRow := range right.Rows {
			rBind := colMap(right.Columns, rRow)
			merged, ok := mergeBindings(lBind, rBind)
			if !ok {
				continue
			}
			matched = true
			out.Rows = append(out.Rows, projectRow(allCols, merged))
		}
		if !matched {
			out.Rows = append(out.Rows, projectRow(allCols, lBind))
		}
	}
	return out
}

// antiJoin implements MINUS (spec.md §4.10 rule 6): a left row is removed
// only if it shares at least one variable with right and some right row
// is compatible with it on those shared variables; disjoint patterns
// never remove anything.
func antiJoin(left, right *sparql.Table) *sparql.Table {
	shared := commonColumns(left.Columns, right.Columns)
	if len(shared) == 0 {
		return left
	}
	out := sparql.NewTable(left.Columns)
	for _, lRow := range left.Rows {
		lBind := colMap(left.Columns, lRow)
		excluded := false
		for _, rRow := range right.Rows {
			rBind := colMap(right.Columns, rRow)
			if compatibleOn(lBind, rBind, shared) {
				excluded = true
				break
			}
		}
		if !excluded {
			out.Rows = append(out.Rows, lRow)
		}
	}
	return out
}

func compatibleOn(l, r map[string]string, cols []string) bool {
	for _, c := range cols {
		lv, rv := l[c], r[c]
		if lv == "" || rv == "" {
			continue
		}
		if lv != rv {
			return false
		}
	}
	return true
}

// unionAll implements UNION (spec.md §4.10 rule: "the outer union of both
// branches' rows, column set widened to their combined columns").
func unionAll(tables []*sparql.Table) *sparql.Table {
	var allCols []string
	for _, t := range tables {
		allCols = unionColumns(allCols, t.Columns)
	}
	out := sparql.NewTable(allCols)
	for _, t := range tables {
		for _, row := range t.Rows {
			bind := colMap(t.Columns, row)
			out.Rows = append(out.Rows, projectRow(allCols, bind))
		}
	}
	return out
}

// materializeValues turns a parsed VALUES clause into a Table (spec.md
// §4.10 rule 7).
func materializeValues(v *sparql.ValuesTable) *sparql.Table {
	out := sparql.NewTable(v.Columns)
	out.Rows = append(out.Rows, v.Rows...)
	return out
}

// distinctRows implements DISTINCT (spec.md §3): rows are deduplicated by
// their full tuple of cell strings.
func distinctRows(t *sparql.Table) *sparql.Table {
	out := sparql.NewTable(t.Columns)
	seen := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out
}

func rowKey(row []string) string {
	key := make([]byte, 0, 32)
	for _, v := range row {
		key = append(key, byte(len(v)), byte(len(v)>>8))
		key = append(key, v...)
		key = append(key, 0)
	}
	return string(key)
}

// sliceOffsetLimit applies OFFSET then LIMIT (-1 meaning "none", spec.md
// §3).
func sliceOffsetLimit(t *sparql.Table, offset, limit int) *sparql.Table {
	rows := t.Rows
	if offset > 0 {
		if offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[offset:]
		}
	}
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return &sparql.Table{Columns: t.Columns, Rows: rows}
}
