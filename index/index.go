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

package index

import (
	"github.com/weftdb/weft/keystore"
)

// Index is a three-level ordered map (k1, k2, k3) over a keystore,
// representing one of the SPO/POS/OSP permutations of a graph (spec.md
// §4.1). Callers serialise access externally (the graph holds the lock);
// Index itself is not safe for concurrent use.
type Index struct {
	outer *keystore.Set
	mid   map[string]*keystore.Set
	inner map[string]map[string]*keystore.Set
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		outer: keystore.NewSet(),
		mid:   make(map[string]*keystore.Set),
		inner: make(map[string]map[string]*keystore.Set),
	}
}

// Add inserts the ordered triple (k1, k2, k3). Adding a triple already
// present is a no-op (spec.md G3).
func (ix *Index) Add(k1, k2, k3 string) {
	ix.outer.Add(k1)

	mid, ok := ix.mid[k1]
	if !ok {
		mid = keystore.NewSet()
		ix.mid[k1] = mid
	}
	mid.Add(k2)

	innerForK1, ok := ix.inner[k1]
	if !ok {
		innerForK1 = make(map[string]*keystore.Set)
		ix.inner[k1] = innerForK1
	}
	inner, ok := innerForK1[k2]
	if !ok {
		inner = keystore.NewSet()
		innerForK1[k2] = inner
	}
	inner.Add(k3)
}

// Remove deletes every (k1, k2, k3) matching the given pattern; nil
// positions are wildcards (spec.md §4.1).
func (ix *Index) Remove(k1, k2, k3 *string) {
	for _, outerKey := range ix.matchingOuter(k1) {
		for _, midKey := range ix.matchingMid(outerKey, k2) {
			inner := ix.inner[outerKey][midKey]
			for _, innerKey := range ix.matchingInner(inner, k3) {
				inner.Remove(innerKey)
			}
			if inner.Magnitude() == 0 {
				delete(ix.inner[outerKey], midKey)
				ix.mid[outerKey].Remove(midKey)
			}
		}
		if len(ix.inner[outerKey]) == 0 {
			delete(ix.inner, outerKey)
			delete(ix.mid, outerKey)
			ix.outer.Remove(outerKey)
		}
	}
}

// Clear empties the index.
func (ix *Index) Clear() {
	ix.outer = keystore.NewSet()
	ix.mid = make(map[string]*keystore.Set)
	ix.inner = make(map[string]map[string]*keystore.Set)
}

// Contains reports whether (k1, k2, k3) is present.
func (ix *Index) Contains(k1, k2, k3 string) bool {
	innerForK1, ok := ix.inner[k1]
	if !ok {
		return false
	}
	inner, ok := innerForK1[k2]
	if !ok {
		return false
	}
	return inner.Contains(k3)
}

func (ix *Index) matchingOuter(k1 *string) []string {
	if k1 != nil {
		if !ix.outer.Contains(*k1) {
			return nil
		}
		return []string{*k1}
	}
	var out []string
	it := ix.outer.Enumerate()
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}

func (ix *Index) matchingMid(k1 string, k2 *string) []string {
	mid, ok := ix.mid[k1]
	if !ok {
		return nil
	}
	if k2 != nil {
		if !mid.Contains(*k2) {
			return nil
		}
		return []string{*k2}
	}
	var out []string
	it := mid.Enumerate()
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}

func (ix *Index) matchingInner(inner *keystore.Set, k3 *string) []string {
	if inner == nil {
		return nil
	}
	if k3 != nil {
		if !inner.Contains(*k3) {
			return nil
		}
		return []string{*k3}
	}
	var out []string
	it := inner.Enumerate()
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// Row is one matched (k1, k2, k3) triple.
type Row struct {
	K1, K2, K3 string
}

// Enumerate returns every stored triple matching (c1, c2, c3), in ascending
// order on k1, then ascending on k2 within k1, then ascending on k3 within
// k2 (spec.md §4.1). Callers that know one or more positions are Specific
// project the constant columns away themselves (spec.md §4.2's dispatch
// table); Enumerate always yields full triples so the ordering guarantee
// holds regardless of which constraints are specific.
func (ix *Index) Enumerate(c1, c2, c3 Constraint) []Row {
	var out []Row
	outerIt := ix.OuterView(c1).Enumerate()
	for outerIt.Next() {
		k1 := outerIt.Value()
		midIt := ix.MidView(k1, c2).Enumerate()
		for midIt.Next() {
			k2 := midIt.Value()
			innerIt := ix.InnerView(k1, k2, c3).Enumerate()
			for innerIt.Next() {
				out = append(out, Row{K1: k1, K2: k2, K3: innerIt.Value()})
			}
		}
	}
	return out
}

// OuterView returns a View over the k1 axis filtered by c.
func (ix *Index) OuterView(c Constraint) View {
	return NewConstrainedView(ix.outer, c)
}

// MidView returns a View over the k2 axis (for a fixed k1) filtered by c.
func (ix *Index) MidView(k1 string, c Constraint) View {
	mid, ok := ix.mid[k1]
	if !ok {
		return NullView{}
	}
	return NewConstrainedView(mid, c)
}

// InnerView returns a View over the k3 axis (for a fixed k1, k2) filtered
// by c.
func (ix *Index) InnerView(k1, k2 string, c Constraint) View {
	innerForK1, ok := ix.inner[k1]
	if !ok {
		return NullView{}
	}
	inner, ok := innerForK1[k2]
	if !ok {
		return NullView{}
	}
	return NewConstrainedView(inner, c)
}
