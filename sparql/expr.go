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

import "github.com/weftdb/weft/term"

// The Expr* constructors below are the closure-building primitives
// sparql/grammar's semantic actions use to turn one node of a parsed
// expression AST into the next: each wraps a sparql/function operator (or
// a variable/constant leaf) as an Expr, exactly as spec.md §4.9's
// "compile each expression AST bottom-up into a closure" describes.

// ExprVar looks a variable up in the current row.
func ExprVar(name string) Expr {
	return func(b Bindings) term.Term { return b.Lookup(name) }
}

// ExprConst always returns t, ignoring the row; used for IRI/literal
// leaves and numeric literals in an expression.
func ExprConst(t term.Term) Expr {
	return func(Bindings) term.Term { return t }
}

// ExprUnary lifts a one-argument term.Term function (NOT, unary minus,
// STR, ...) into an Expr.
func ExprUnary(f func(term.Term) term.Term, a Expr) Expr {
	return func(b Bindings) term.Term { return f(a(b)) }
}

// ExprBinary lifts a two-argument term.Term function (arithmetic,
// comparison, AND/OR, ...) into an Expr.
func ExprBinary(f func(a, b term.Term) term.Term, left, right Expr) Expr {
	return func(b Bindings) term.Term { return f(left(b), right(b)) }
}

// ExprTernary lifts a three-argument term.Term function (IF, ...) into an
// Expr.
func ExprTernary(f func(a, b, c term.Term) term.Term, x, y, z Expr) Expr {
	return func(b Bindings) term.Term { return f(x(b), y(b), z(b)) }
}

// ExprN lifts a variadic term.Term function (COALESCE, CONCAT, ...) into
// an Expr.
func ExprN(f func(...term.Term) term.Term, args ...Expr) Expr {
	return func(b Bindings) term.Term {
		vs := make([]term.Term, len(args))
		for i, a := range args {
			vs[i] = a(b)
		}
		return f(vs...)
	}
}

// ExprBound reports whether name is bound in the current row: the BOUND()
// builtin is special-cased as an Expr rather than a term.Term function
// because, unlike every other builtin, it must not dereference the
// variable's value through Bindings.Lookup-then-function (an unbound
// variable's Lookup result and term.Unbound are the same value, so BOUND
// itself must be the thing reading the row).
func ExprBound(name string) Expr {
	return func(b Bindings) term.Term {
		if b.Lookup(name).IsBound() {
			return term.TypedLiteral("true", term.XSDBoolean)
		}
		return term.TypedLiteral("false", term.XSDBoolean)
	}
}
