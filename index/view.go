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
	"sort"

	"github.com/weftdb/weft/keystore"
)

// View is a set-like handle over a keystore filtered by a Constraint
// (spec.md §3, §4.4). Magnitude guides the query planner's join ordering.
type View interface {
	Min() string
	Max() string
	Magnitude() int64
	Contains(v string) bool
	Between(lo, hi string) keystore.Iterator
	Enumerate() keystore.Iterator
}

// NullView is the always-empty View.
type NullView struct{}

func (NullView) Min() string                              { return "" }
func (NullView) Max() string                              { return "" }
func (NullView) Magnitude() int64                         { return 0 }
func (NullView) Contains(string) bool                     { return false }
func (NullView) Between(string, string) keystore.Iterator { return keystore.NewSet().Enumerate() }
func (NullView) Enumerate() keystore.Iterator             { return keystore.NewSet().Enumerate() }

// ConstrainedView lazily wraps a keystore.Store: it walks the underlying
// store once at construction to compute magnitude/min/max under the
// constraint, then filters Between/Enumerate on demand (spec.md §4.4).
type ConstrainedView struct {
	store      keystore.Store
	constraint Constraint
	magnitude  int64
	min, max   string
}

// NewConstrainedView builds a ConstrainedView over store filtered by c.
func NewConstrainedView(store keystore.Store, c Constraint) *ConstrainedView {
	v := &ConstrainedView{store: store, constraint: c}
	if c.IsSpecific() {
		if store.Contains(c.Value()) {
			v.magnitude, v.min, v.max = 1, c.Value(), c.Value()
		}
		return v
	}
	it := store.Enumerate()
	for it.Next() {
		val := it.Value()
		if !c.Match(val) {
			continue
		}
		if v.magnitude == 0 {
			v.min = val
		}
		v.max = val
		v.magnitude++
	}
	return v
}

func (v *ConstrainedView) Min() string      { return v.min }
func (v *ConstrainedView) Max() string      { return v.max }
func (v *ConstrainedView) Magnitude() int64 { return v.magnitude }

func (v *ConstrainedView) Contains(s string) bool {
	return v.constraint.Match(s) && v.store.Contains(s)
}

func (v *ConstrainedView) Between(lo, hi string) keystore.Iterator {
	return &filteredIterator{inner: v.store.Between(lo, hi), match: v.constraint.Match}
}

func (v *ConstrainedView) Enumerate() keystore.Iterator {
	return &filteredIterator{inner: v.store.Enumerate(), match: v.constraint.Match}
}

type filteredIterator struct {
	inner keystore.Iterator
	match func(string) bool
	cur   string
}

func (it *filteredIterator) Next() bool {
	for it.inner.Next() {
		v := it.inner.Value()
		if it.match(v) {
			it.cur = v
			return true
		}
	}
	return false
}

func (it *filteredIterator) Value() string { return it.cur }

// UnionView eagerly materialises a sorted set over several Views, filtered
// by an additional constraint (spec.md §4.4).
type UnionView struct {
	values []string
}

// NewUnionView unions the values of views, keeping only those matching c.
func NewUnionView(views []View, c Constraint) *UnionView {
	seen := make(map[string]struct{})
	for _, v := range views {
		it := v.Enumerate()
		for it.Next() {
			val := it.Value()
			if c.Match(val) {
				seen[val] = struct{}{}
			}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return &UnionView{values: values}
}

func (v *UnionView) Min() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

func (v *UnionView) Max() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[len(v.values)-1]
}

func (v *UnionView) Magnitude() int64 { return int64(len(v.values)) }

func (v *UnionView) Contains(s string) bool {
	i := sort.SearchStrings(v.values, s)
	return i < len(v.values) && v.values[i] == s
}

func (v *UnionView) Between(lo, hi string) keystore.Iterator {
	start := sort.SearchStrings(v.values, lo)
	end := sort.SearchStrings(v.values, hi)
	for end < len(v.values) && v.values[end] == hi {
		end++
	}
	return &sliceIterator{values: v.values[start:end], pos: -1}
}

func (v *UnionView) Enumerate() keystore.Iterator {
	return &sliceIterator{values: v.values, pos: -1}
}

type sliceIterator struct {
	values []string
	pos    int
}

func (it *sliceIterator) Next() bool {
	it.pos++
	return it.pos < len(it.values)
}

func (it *sliceIterator) Value() string { return it.values[it.pos] }
