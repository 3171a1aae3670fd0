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

// Package index implements the three-level ordered index over a keystore
// (spec.md §4.1), and the Constraint/View types the planner uses to reason
// about candidate values per position (spec.md §4.4).
package index

// Kind identifies which alternative of Constraint is in play.
type Kind int

const (
	// KindAny matches every value (spec.md's "Empty / wildcard").
	KindAny Kind = iota
	// KindSpecific matches exactly one value.
	KindSpecific
	// KindRange matches an inclusive [lo, hi] range.
	KindRange
	// KindInSet matches any value in an explicit set.
	KindInSet
)

// Constraint is one of Specific/Empty/Range/InSet (spec.md §3). Constraints
// compose by intersection during planning; this package's composition is
// conservative, not normative, per the spec.
type Constraint struct {
	kind Kind
	val  string
	lo   string
	hi   string
	set  map[string]struct{}
}

// Any returns the wildcard constraint: matches everything.
func Any() Constraint { return Constraint{kind: KindAny} }

// Specific returns a constraint matching exactly v.
func Specific(v string) Constraint { return Constraint{kind: KindSpecific, val: v} }

// Range returns a constraint matching the inclusive range [lo, hi].
func Range(lo, hi string) Constraint { return Constraint{kind: KindRange, lo: lo, hi: hi} }

// InSet returns a constraint matching any value in vs.
func InSet(vs []string) Constraint {
	set := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return Constraint{kind: KindInSet, set: set}
}

// Kind reports which alternative c is.
func (c Constraint) Kind() Kind { return c.kind }

// IsSpecific reports whether c is an exact-value constraint.
func (c Constraint) IsSpecific() bool { return c.kind == KindSpecific }

// IsAny reports whether c matches every value.
func (c Constraint) IsAny() bool { return c.kind == KindAny }

// Value returns the exact value of a Specific constraint, "" otherwise.
func (c Constraint) Value() string { return c.val }

// Bounds returns the inclusive bounds of a Range constraint.
func (c Constraint) Bounds() (lo, hi string) { return c.lo, c.hi }

// Match reports whether s satisfies the constraint.
func (c Constraint) Match(s string) bool {
	switch c.kind {
	case KindAny:
		return true
	case KindSpecific:
		return s == c.val
	case KindRange:
		return s >= c.lo && s <= c.hi
	case KindInSet:
		_, ok := c.set[s]
		return ok
	default:
		return false
	}
}
