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
	"strings"

	"github.com/weftdb/weft/term"
)

// bucket orders the cross-kind comparison per spec.md §4.8: "unbound <
// blank < IRI < literal".
func bucket(t term.Term) int {
	switch {
	case !t.IsBound():
		return 0
	case t.IsBlank():
		return 1
	case t.IsIRI():
		return 2
	default:
		return 3
	}
}

// Compare implements the SPARQL 1.1 total order spec.md §4.8 describes:
// numeric (after promotion), then simple/string, boolean and xsd:dateTime
// orderings within a literal kind, lexicographic on Value() otherwise, and
// the unbound/blank/IRI/literal bucket ordering across kinds. ok is false
// when either operand is an error term, matching "comparison of an error
// operand is itself an error" (spec.md §4.8, §7).
func Compare(a, b term.Term) (cmp int, ok bool) {
	if a.IsError() || b.IsError() {
		return 0, false
	}
	ba, bb := bucket(a), bucket(b)
	if ba != bb {
		return sign(ba - bb), true
	}
	if ba != 3 {
		return sign(strings.Compare(a.Value(), b.Value())), true
	}

	// Both literals: try numeric, then dateTime, falling back to
	// lexicographic on Value() (which also orders canonical booleans).
	if ka, _, ok1 := parseNumeric(a); ok1 {
		if kb, _, ok2 := parseNumeric(b); ok2 {
			_, promoted := promote(ka, kb)
			if !promoted {
				return 0, false
			}
			va, _ := numericFloat(a, ka)
			vb, _ := numericFloat(b, kb)
			switch {
			case va < vb:
				return -1, true
			case va > vb:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if a.EffectiveDatatype() == term.XSDDateTime && b.EffectiveDatatype() == term.XSDDateTime {
		ta, err1 := ParseDateTime(a.Lexical())
		tb, err2 := ParseDateTime(b.Lexical())
		if err1 == nil && err2 == nil {
			switch {
			case ta.Before(tb):
				return -1, true
			case ta.After(tb):
				return 1, true
			default:
				return 0, true
			}
		}
	}
	return sign(strings.Compare(a.Value(), b.Value())), true
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func comparisonOp(a, b term.Term, accept func(cmp int) bool) term.Term {
	cmp, ok := Compare(a, b)
	if !ok {
		return term.Err("function: comparison operand is an error")
	}
	return Bool(accept(cmp))
}

// Eq, Neq, Lt, Gt, Le, Ge implement SPARQL's comparison operators.
func Eq(a, b term.Term) term.Term { return comparisonOp(a, b, func(c int) bool { return c == 0 }) }
func Neq(a, b term.Term) term.Term { return comparisonOp(a, b, func(c int) bool { return c != 0 }) }
func Lt(a, b term.Term) term.Term  { return comparisonOp(a, b, func(c int) bool { return c < 0 }) }
func Gt(a, b term.Term) term.Term  { return comparisonOp(a, b, func(c int) bool { return c > 0 }) }
func Le(a, b term.Term) term.Term  { return comparisonOp(a, b, func(c int) bool { return c <= 0 }) }
func Ge(a, b term.Term) term.Term  { return comparisonOp(a, b, func(c int) bool { return c >= 0 }) }

// SameTerm implements sameTerm(): canonical term equality, not value
// equality (spec.md §4.8, §9's "RDF term identity").
func SameTerm(a, b term.Term) term.Term { return Bool(term.Equal(a, b)) }
