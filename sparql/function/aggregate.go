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

package function

import (
	"strconv"

	"github.com/weftdb/weft/term"
)

// Accumulator is one step of a SPARQL aggregate fold (spec.md §4.8): given
// the current row's input value and the running accumulator, it returns
// the new accumulator. seen is non-nil only for a DISTINCT aggregate; the
// accumulator itself is responsible for consulting and updating it
// (content key = cur.Value(), per spec.md §4.8).
type Accumulator func(cur, acc term.Term, seen map[string]struct{}) term.Term

// dedup reports whether cur should be skipped because it has already been
// seen under a DISTINCT aggregate, recording it otherwise.
func dedup(cur term.Term, seen map[string]struct{}) bool {
	if seen == nil {
		return false
	}
	key := cur.Value()
	if _, ok := seen[key]; ok {
		return true
	}
	seen[key] = struct{}{}
	return false
}

// CountAccumulate implements COUNT(?x): counts bound, non-error inputs.
func CountAccumulate(cur, acc term.Term, seen map[string]struct{}) term.Term {
	if !cur.IsBound() || cur.IsError() || dedup(cur, seen) {
		return startOrKeep(acc)
	}
	n, _ := strconv.ParseInt(startOrKeep(acc).Lexical(), 10, 64)
	return term.TypedLiteral(strconv.FormatInt(n+1, 10), term.XSDInteger)
}

// CountStarAccumulate implements COUNT(*): counts every row regardless of
// binding.
func CountStarAccumulate(_ term.Term, acc term.Term, _ map[string]struct{}) term.Term {
	n, _ := strconv.ParseInt(startOrKeep(acc).Lexical(), 10, 64)
	return term.TypedLiteral(strconv.FormatInt(n+1, 10), term.XSDInteger)
}

func startOrKeep(acc term.Term) term.Term {
	if acc.Kind() == term.KindUnbound {
		return term.TypedLiteral("0", term.XSDInteger)
	}
	return acc
}

// SumAccumulate implements SUM(?x).
func SumAccumulate(cur, acc term.Term, seen map[string]struct{}) term.Term {
	if dedup(cur, seen) {
		return acc
	}
	if acc.Kind() == term.KindUnbound {
		acc = term.TypedLiteral("0", term.XSDInteger)
	}
	if !IsNumeric(cur) {
		return acc
	}
	return Add(acc, cur)
}

// MinAccumulate implements MIN(?x) using the SPARQL total order.
func MinAccumulate(cur, acc term.Term, seen map[string]struct{}) term.Term {
	if dedup(cur, seen) || !cur.IsBound() {
		return acc
	}
	if acc.Kind() == term.KindUnbound {
		return cur
	}
	if cmp, ok := Compare(cur, acc); ok && cmp < 0 {
		return cur
	}
	return acc
}

// MaxAccumulate implements MAX(?x).
func MaxAccumulate(cur, acc term.Term, seen map[string]struct{}) term.Term {
	if dedup(cur, seen) || !cur.IsBound() {
		return acc
	}
	if acc.Kind() == term.KindUnbound {
		return cur
	}
	if cmp, ok := Compare(cur, acc); ok && cmp > 0 {
		return cur
	}
	return acc
}

// AvgAccumulate implements AVG(?x) as the incremental pairwise mean
// "(acc+v)/2" (spec.md §4.8, §9: "retained for bit-for-bit parity" with
// the source implementation, not a true running mean).
func AvgAccumulate(cur, acc term.Term, seen map[string]struct{}) term.Term {
	if dedup(cur, seen) || !IsNumeric(cur) {
		return acc
	}
	if acc.Kind() == term.KindUnbound {
		return cur
	}
	return Div(Add(acc, cur), term.TypedLiteral("2", term.XSDInteger))
}

// SampleAccumulate implements SAMPLE(?x): the first bound value seen.
func SampleAccumulate(cur, acc term.Term, seen map[string]struct{}) term.Term {
	if dedup(cur, seen) {
		return acc
	}
	if acc.Kind() != term.KindUnbound {
		return acc
	}
	return cur
}

// GroupConcatAccumulate builds GROUP_CONCAT(?x; SEPARATOR=sep): sep
// defaults to a single space, matching the SPARQL 1.1 default.
func GroupConcatAccumulate(sep string) Accumulator {
	if sep == "" {
		sep = " "
	}
	return func(cur, acc term.Term, seen map[string]struct{}) term.Term {
		if dedup(cur, seen) || !cur.IsBound() {
			return acc
		}
		if acc.Kind() == term.KindUnbound {
			return term.SimpleLiteral(cur.Value())
		}
		return term.SimpleLiteral(acc.Lexical() + sep + cur.Value())
	}
}

// NewDistinctSet allocates the deduplication set an Accumulator consults
// when the aggregate carries DISTINCT.
func NewDistinctSet() map[string]struct{} { return make(map[string]struct{}) }
