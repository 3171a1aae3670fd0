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

package sparql

import (
	"strings"

	"github.com/weftdb/weft/term"
)

// Table is the tabular result of a query (spec.md §3): Rows are kept
// fully materialised rather than as a lazy sequence, for the same reason
// store.Solution's rows are (see store/solution.go's doc comment) — the
// executor composes many relational primitives per query, and
// materialising between each one is the straightforward way to do that
// correctly without a stackful-coroutine-shaped row iterator, which Go
// does not have. Columns is stable across every operation that does not
// rename a column, per spec.md §3.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds an empty table with the given column names.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of name in t.Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ParseCell reconstructs the term.Term a row cell's canonical string
// represents; "" denotes an unbound column. Row cells always hold a
// term's canonical, fully-resolved syntax (absolute "<iri>", "_:label",
// or a literal with an absolute ^^<iri>), so reparsing never needs a
// namespace table or base IRI (term.Parse's namespaces/base arguments are
// only relevant to non-canonical, prefixed input).
func ParseCell(s string) term.Term {
	if s == "" {
		return term.Unbound
	}
	t, err := term.Parse(s, nil, "")
	if err != nil {
		return term.Err("sparql: malformed stored term %q: %s", s, err)
	}
	return t
}

// CellOf renders t as a row cell: its canonical string, or "" for
// term.Unbound.
func CellOf(t term.Term) string {
	if !t.IsBound() {
		return ""
	}
	return t.String()
}

// Row is one materialised row together with the column names needed to
// look values up by name; it implements Bindings for compiled Expr/Filter
// closures.
type Row struct {
	Columns []string
	Values  []string
}

// Lookup implements Bindings.
func (r Row) Lookup(name string) term.Term {
	for i, c := range r.Columns {
		if c == name {
			return ParseCell(r.Values[i])
		}
	}
	return term.Unbound
}

// RowAt returns row i of t as a Row bound to t's column names.
func (t *Table) RowAt(i int) Row {
	return Row{Columns: t.Columns, Values: t.Rows[i]}
}

// String renders an aligned text table, used by the CLI and by tests
// comparing expected vs. actual result tables.
func (t *Table) String() string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(c)
			b.WriteString(strings.Repeat(" ", widths[i]-len(c)))
		}
		b.WriteByte('\n')
	}
	writeRow(t.Columns)
	for i := range t.Columns {
		b.WriteString(strings.Repeat("-", widths[i]))
		if i < len(t.Columns)-1 {
			b.WriteString("-+-")
		}
	}
	b.WriteByte('\n')
	for _, row := range t.Rows {
		writeRow(row)
	}
	return b.String()
}
