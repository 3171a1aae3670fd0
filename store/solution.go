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

// Package store implements the graph and dataset layer (spec.md §4.2,
// §4.3): three redundant SPO/POS/OSP indices behind a reader/writer lock,
// a pattern-matching dispatcher, and a named collection of graphs.
package store

import "github.com/weftdb/weft/index"

// RowIter yields the rows of a Solution one at a time. A RowIter is always
// already exhausted-safe to Close multiple times.
type RowIter interface {
	// Next returns the next row and true, or (nil, false) once exhausted.
	Next() ([]string, bool)
	// Close releases any resources held by the iterator. Safe to call more
	// than once and safe to call without having exhausted Next.
	Close()
}

// Solution is a lazy pattern-match result (spec.md glossary): a thunk
// producing a restartable row iterator, a thunk producing per-axis Views
// for the planner, and the column width. Per spec.md §9 ("solution
// laziness") Rows must be restartable — calling it again (e.g. once per
// left row for FILTER EXISTS) produces an independent, fresh iteration.
type Solution struct {
	Width int
	rows  func() RowIter
	views func() []index.View
}

// Rows starts a fresh iteration over the solution's rows.
func (s *Solution) Rows() RowIter {
	if s.rows == nil {
		return emptyRowIter{}
	}
	return s.rows()
}

// Views returns one index.View per output column, for join-order planning.
func (s *Solution) Views() []index.View {
	if s.views == nil {
		return nil
	}
	return s.views()
}

type emptyRowIter struct{}

func (emptyRowIter) Next() ([]string, bool) { return nil, false }
func (emptyRowIter) Close()                 {}

// sliceRowIter adapts a pre-materialised slice of rows to RowIter. Rows are
// materialised while the graph's read lock is held (see graph.go), which
// gives every iterator a single consistent snapshot (spec.md G2) without
// requiring a suspendable generator — Go has no coroutines, and spawning a
// goroutine per iterator to hold a lock open across Next calls would leak
// goroutines whenever a caller abandons an iterator early. This is recorded
// as an open-question resolution in DESIGN.md.
type sliceRowIter struct {
	rows []([]string)
	pos  int
}

func newSliceRowIter(rows [][]string) *sliceRowIter {
	return &sliceRowIter{rows: rows, pos: -1}
}

func (it *sliceRowIter) Next() ([]string, bool) {
	it.pos++
	if it.pos >= len(it.rows) {
		return nil, false
	}
	return it.rows[it.pos], true
}

func (it *sliceRowIter) Close() {}
