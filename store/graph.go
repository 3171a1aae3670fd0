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

package store

import (
	"sync"

	"github.com/weftdb/weft/index"
)

// Rule is the graph's one extensibility point (spec.md §4.2, "Inference
// hook"): a closure invoked with the graph and the triple about to be
// asserted, in insertion order, before the physical add. Rules never fire
// on retraction.
type Rule func(g *Graph, s, p, o string)

// Graph holds the three redundant indices SPO/POS/OSP for one named graph,
// behind a reader/writer lock with recursive reads (spec.md §4.2, §5).
type Graph struct {
	mu sync.RWMutex

	spo *index.Index
	pos *index.Index
	osp *index.Index

	rules []Rule
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		spo: index.New(),
		pos: index.New(),
		osp: index.New(),
	}
}

// AddRule appends an inference rule, fired on every subsequent Assert in
// insertion order (spec.md §4.2).
func (g *Graph) AddRule(r Rule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, r)
}

// Assert adds (s, p, o) to the graph, first invoking every registered rule.
// Asserting a triple already present is a no-op (spec.md G3).
func (g *Graph) Assert(s, p, o string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.assertLocked(s, p, o)
}

// assertLocked requires the caller to already hold the write lock; rules
// may themselves call it to derive further triples without deadlocking.
func (g *Graph) assertLocked(s, p, o string) {
	for _, r := range g.rules {
		r(g, s, p, o)
	}
	g.spo.Add(s, p, o)
	g.pos.Add(p, o, s)
	g.osp.Add(o, s, p)
}

// Retract removes every triple matching (s, p, o); nil positions are
// wildcards (spec.md §4.2). Retraction does not fire rules.
func (g *Graph) Retract(s, p, o *string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spo.Remove(s, p, o)
	g.pos.Remove(p, o, s)
	g.osp.Remove(o, s, p)
}

// Clear removes every triple from the graph.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spo.Clear()
	g.pos.Clear()
	g.osp.Clear()
}

// IsTrue reports whether (s, p, o) is asserted in the graph.
func (g *Graph) IsTrue(s, p, o string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.spo.Contains(s, p, o)
}

// Enumerate dispatches a pattern query on the cheapest index for the given
// specifics, per the table in spec.md §4.2. cs/cp/co being index.Specific
// constraints is what determines "specific"; any other Constraint kind
// (including index.Any) counts as non-specific for dispatch purposes, but
// is still applied to filter candidate values.
func (g *Graph) Enumerate(cs, cp, co index.Constraint) *Solution {
	g.mu.RLock()
	defer g.mu.RUnlock()

	switch {
	case cs.IsSpecific() && cp.IsSpecific() && co.IsSpecific():
		return g.enumerateAllSpecific(cs.Value(), cp.Value(), co.Value())
	case cs.IsSpecific() && cp.IsSpecific():
		return g.enumerateTwoSpecific(g.spo, cs.Value(), cp.Value(), co)
	case cp.IsSpecific() && co.IsSpecific():
		return g.enumerateTwoSpecific(g.pos, cp.Value(), co.Value(), cs)
	case co.IsSpecific() && cs.IsSpecific():
		return g.enumerateTwoSpecific(g.osp, co.Value(), cs.Value(), cp)
	case cs.IsSpecific():
		return g.enumerateOneSpecific(g.spo, cs.Value(), cp, co, false)
	case cp.IsSpecific():
		return g.enumerateOneSpecific(g.pos, cp.Value(), co, cs, true)
	case co.IsSpecific():
		return g.enumerateOneSpecific(g.osp, co.Value(), cs, cp, false)
	default:
		return g.enumerateNoneSpecific(cs, cp, co)
	}
}

func (g *Graph) enumerateAllSpecific(s, p, o string) *Solution {
	present := g.spo.Contains(s, p, o)
	return &Solution{
		Width: 0,
		rows: func() RowIter {
			if present {
				return newSliceRowIter([][]string{{}})
			}
			return newSliceRowIter(nil)
		},
	}
}

// enumerateTwoSpecific handles the three (specific,specific,constraint)
// dispatch cases: ix is the index whose outer/mid axes are the two
// specifics (k1, k2), and c3 constrains the remaining axis.
func (g *Graph) enumerateTwoSpecific(ix *index.Index, k1, k2 string, c3 index.Constraint) *Solution {
	rows := ix.Enumerate(index.Specific(k1), index.Specific(k2), c3)
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.K3}
	}
	return &Solution{
		Width: 1,
		rows:  func() RowIter { return newSliceRowIter(out) },
		views: func() []index.View { return []index.View{ix.InnerView(k1, k2, c3)} },
	}
}

// enumerateOneSpecific handles the three (specific,constraint,constraint)
// dispatch cases: ix is the index whose outer axis is the one specific
// value k1; c2/c3 constrain the mid/inner axes. reversed true means the
// natural (mid,inner) column order must be swapped in the output (the POS
// case, per spec.md §4.2's dispatch table).
func (g *Graph) enumerateOneSpecific(ix *index.Index, k1 string, c2, c3 index.Constraint, reversed bool) *Solution {
	rows := ix.Enumerate(index.Specific(k1), c2, c3)
	out := make([][]string, len(rows))
	for i, r := range rows {
		if reversed {
			out[i] = []string{r.K3, r.K2}
		} else {
			out[i] = []string{r.K2, r.K3}
		}
	}
	return &Solution{
		Width: 2,
		rows:  func() RowIter { return newSliceRowIter(out) },
		views: func() []index.View {
			midView := ix.MidView(k1, c2)
			unionInner := unionInnerViews(ix, k1, midView, c3)
			if reversed {
				return []index.View{unionInner, midView}
			}
			return []index.View{midView, unionInner}
		},
	}
}

func (g *Graph) enumerateNoneSpecific(cs, cp, co index.Constraint) *Solution {
	rows := g.spo.Enumerate(cs, cp, co)
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.K1, r.K2, r.K3}
	}
	return &Solution{
		Width: 3,
		rows:  func() RowIter { return newSliceRowIter(out) },
		views: func() []index.View {
			outerView := g.spo.OuterView(cs)
			midUnion := unionMidViews(g.spo, outerView, cp)
			innerUnion := unionInnerAcrossOuter(g.spo, outerView, cp, co)
			return []index.View{outerView, midUnion, innerUnion}
		},
	}
}

// unionInnerViews unions ix's inner views for k1 across every k2 value
// matched by midView, filtered by c3 (spec.md §4.4, View.union).
func unionInnerViews(ix *index.Index, k1 string, midView index.View, c3 index.Constraint) index.View {
	var views []index.View
	it := midView.Enumerate()
	for it.Next() {
		views = append(views, ix.InnerView(k1, it.Value(), c3))
	}
	return index.NewUnionView(views, index.Any())
}

func unionMidViews(ix *index.Index, outerView index.View, c2 index.Constraint) index.View {
	var views []index.View
	it := outerView.Enumerate()
	for it.Next() {
		views = append(views, ix.MidView(it.Value(), c2))
	}
	return index.NewUnionView(views, index.Any())
}

func unionInnerAcrossOuter(ix *index.Index, outerView index.View, c2, c3 index.Constraint) index.View {
	var views []index.View
	outerIt := outerView.Enumerate()
	for outerIt.Next() {
		k1 := outerIt.Value()
		mid := ix.MidView(k1, c2)
		views = append(views, unionInnerViews(ix, k1, mid, c3))
	}
	return index.NewUnionView(views, index.Any())
}
