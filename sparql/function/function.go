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

// Package function implements the SPARQL 1.1 operator and builtin
// function library (spec.md §4.8): numeric promotion and comparison,
// Kleene's three-valued logic, the string/numeric/date-time builtin
// functions, type predicates, IF/COALESCE, and the aggregate
// accumulators. Every function here operates on and returns
// term.Term, using term.KindError and term.Unbound as the tri-state
// control values rather than a separate Go error return, matching
// how spec.md §7 describes evaluation errors as in-band values that
// propagate through operators instead of aborting evaluation.
package function

import "github.com/weftdb/weft/term"

// Tri is the result of an effective-boolean-value test: true, false, or
// unknown (an error or a value EBV is undefined for).
type Tri int

const (
	TriFalse Tri = iota
	TriTrue
	TriError
)

func boolToTri(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

func triTerm(tr Tri) term.Term {
	switch tr {
	case TriTrue:
		return term.TypedLiteral("true", term.XSDBoolean)
	case TriFalse:
		return term.TypedLiteral("false", term.XSDBoolean)
	default:
		return term.Err("function: effective boolean value is unknown")
	}
}

// Bool constructs an xsd:boolean literal term for b.
func Bool(b bool) term.Term { return triTerm(boolToTri(b)) }

// IsBound implements the SPARQL BOUND() test: per spec.md §4.8, "IsBound(r)
// is false iff r.full is empty" — concretely, false exactly for the
// Unbound control value.
func IsBound(t term.Term) bool { return t.IsBound() }

// EffectiveBooleanValue computes EBV (spec.md §4.8, §4.10): defined for
// xsd:boolean, every numeric type (nonzero, non-NaN is true), and
// xsd:string/simple literals (nonempty is true); everything else
// (including Error and Unbound) is TriError ("unknown").
func EffectiveBooleanValue(t term.Term) Tri {
	if !t.IsBound() || t.IsError() {
		return TriError
	}
	if !t.IsLiteral() {
		return TriError
	}
	switch t.EffectiveDatatype() {
	case term.XSDBoolean:
		switch t.Lexical() {
		case "true", "1":
			return TriTrue
		case "false", "0":
			return TriFalse
		default:
			return TriError
		}
	case term.XSDString:
		return boolToTri(t.Lexical() != "")
	default:
		if _, kind, ok := parseNumeric(t); ok {
			v, _ := numericFloat(t, kind)
			return boolToTri(v != 0 && !isNaN(v))
		}
		return TriError
	}
}

// EBV is the term-returning wrapper over EffectiveBooleanValue, used by
// FILTER/HAVING compiled closures (spec.md §4.9).
func EBV(t term.Term) term.Term { return triTerm(EffectiveBooleanValue(t)) }

// And implements Kleene's strong three-valued AND table (spec.md §4.8,
// §8): false dominates regardless of the other operand's truth value,
// otherwise an error/unknown operand propagates.
func And(a, b term.Term) term.Term {
	ta, tb := EffectiveBooleanValue(a), EffectiveBooleanValue(b)
	if ta == TriFalse || tb == TriFalse {
		return triTerm(TriFalse)
	}
	if ta == TriError || tb == TriError {
		return triTerm(TriError)
	}
	return triTerm(TriTrue)
}

// Or implements Kleene's strong three-valued OR table: true dominates.
func Or(a, b term.Term) term.Term {
	ta, tb := EffectiveBooleanValue(a), EffectiveBooleanValue(b)
	if ta == TriTrue || tb == TriTrue {
		return triTerm(TriTrue)
	}
	if ta == TriError || tb == TriError {
		return triTerm(TriError)
	}
	return triTerm(TriFalse)
}

// Not negates an EBV; NOT of error is error (spec.md §4.8).
func Not(a term.Term) term.Term {
	switch EffectiveBooleanValue(a) {
	case TriTrue:
		return triTerm(TriFalse)
	case TriFalse:
		return triTerm(TriTrue)
	default:
		return triTerm(TriError)
	}
}

// If implements SPARQL IF(cond, then, else) using EBV on cond.
func If(cond, then, els term.Term) term.Term {
	switch EffectiveBooleanValue(cond) {
	case TriTrue:
		return then
	case TriFalse:
		return els
	default:
		return term.Err("function: IF condition is not a valid boolean")
	}
}

// Coalesce returns the first bound, non-error argument, skipping errors
// inside the list (spec.md §4.8); Unbound if every argument is unbound or
// an error.
func Coalesce(args ...term.Term) term.Term {
	for _, a := range args {
		if a.IsBound() && !a.IsError() {
			return a
		}
	}
	return term.Unbound
}

func isNaN(f float64) bool { return f != f }
