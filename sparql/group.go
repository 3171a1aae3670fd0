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

// Package sparql implements the SPARQL query builder (spec.md §4.9): it
// assembles the tree of Groups and their compiled closures that
// sparql/exec walks to produce a Table. The grammar driving this package
// (sparql/grammar) is built on top of the grammar package, the same
// engine the turtle package uses for Turtle.
package sparql

import (
	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/term"
)

// Label identifies which alternative of the compiled query tree a Group
// is (spec.md §3, "Query group").
type Label string

const (
	LabelPlain     Label = ""
	LabelSelect    Label = "SELECT"
	LabelConstruct Label = "CONSTRUCT"
	LabelAsk       Label = "ASK"
	LabelDescribe  Label = "DESCRIBE"
	LabelOptional  Label = "OPTIONAL"
	LabelMinus     Label = "MINUS"
	LabelUnion     Label = "UNION"
	LabelValues    Label = "VALUES"
	LabelExists    Label = "EXISTS"
	LabelNotExists Label = "NOTEXISTS"
	LabelFilter    Label = "FILTER"
	LabelGraph     Label = "GRAPH"
	LabelService   Label = "SERVICE"
)

// TriplePattern is one clause of a Group's basic graph pattern: each of S,
// P, O is either a bound term.Term (IRI/blank/literal) or a
// term.Variable, per spec.md §3.
type TriplePattern struct {
	S, P, O term.Term
}

// Bindings is what a compiled Expr, Filter or order key reads variable
// values from: one row of a Table, addressed by column name. Unbound
// columns return term.Unbound.
type Bindings interface {
	Lookup(name string) term.Term
}

// Expr is a compiled expression closure: an arithmetic/logical/builtin
// expression tree reduced to a single function of the current row,
// exactly as spec.md §4.9 describes ("compile each expression AST...
// into a closure bindings → string" — weft's closures return term.Term
// rather than a raw string so intermediate results keep their datatype).
type Expr func(b Bindings) term.Term

// Filter is the boolean-producing specialisation of Expr used for
// FILTER/HAVING: spec.md §4.10 rule 1, "apply filters (drop rows whose
// EBV isn't true)".
type Filter func(b Bindings) bool

// CompileFilter wraps an Expr with the EBV short-circuit spec.md §4.8
// describes: "a filter whose expression evaluates to error or false
// removes the row".
func CompileFilter(e Expr) Filter {
	return func(b Bindings) bool {
		return function.EffectiveBooleanValue(e(b)) == function.TriTrue
	}
}

// Binder is an explicit variable binding: BIND(expr AS ?var) or a SELECT
// "AS" projection (spec.md §3).
type Binder struct {
	Var  string
	Expr Expr
}

// AggregateBinder computes one aggregate output column per group-by
// group (spec.md §3, §4.8): Arg is the compiled expression fed to
// Accumulate once per row of the group; Accumulate folds
// (current, accumulator, distinctSet) → accumulator, per spec.md §4.8.
type AggregateBinder struct {
	Var       string
	Arg       Expr
	Accumulate function.Accumulator
	Distinct  bool
}

// OrderKey is one ORDER BY clause: Expr computes the sort key for a row,
// Desc reverses the comparison (spec.md §3, §4.10 rule 2).
type OrderKey struct {
	Expr Expr
	Desc bool
}

// ValuesTable is a VALUES clause materialised ahead of time (spec.md
// §4.10 rule 7): Rows[i][j] is "" for UNDEF in column Columns[j].
type ValuesTable struct {
	Columns []string
	Rows    [][]string
}

// ExistsCheck is one FILTER [NOT] EXISTS {...} clause (spec.md §4.10 rule
// 8): Pattern is evaluated as its own group against the outer row's
// bindings carried forward as a single-row VALUES seed, and the row
// survives the filter iff the pattern produced at least one solution,
// negated when Negate is set.
type ExistsCheck struct {
	Pattern *Group
	Negate  bool
}

// Group is one node of the compiled query tree (spec.md §3, §4.9, §4.10).
// Its exact shape mirrors the spec's description directly: triple
// clauses, child groups, the four kinds of binder, group-by/order-by/
// limit/offset, VALUES rows and the DISTINCT flag all live on the same
// struct regardless of Label, since spec.md deliberately describes one
// generic node type rather than one Go type per operator.
type Group struct {
	Label Label

	// Clauses is this group's basic graph pattern.
	Clauses []TriplePattern

	// GraphTerm names the active named graph for a LabelGraph group: a
	// bound IRI selects it directly; a variable binds it per solution
	// (spec.md §4.3, §6's "multi-graph container").
	GraphTerm term.Term

	Children []*Group

	Binders         []Binder // explicit BIND(...)
	SelectBinders   []Binder // SELECT (expr AS ?var)
	ImplicitBinders []Binder // ORDER BY / aggregate-argument scratch columns

	Aggregates   []AggregateBinder
	GroupByVars  []string

	OrderBy []OrderKey

	// Limit/Offset of -1 means "none", per spec.md §3.
	Limit, Offset int

	Filters      []Filter
	ExistsChecks []ExistsCheck

	// HavingFilters holds HAVING's constraints, applied after GROUP
	// BY/aggregate folding rather than before like Filters (spec.md §4.8:
	// "HAVING filters the grouped results, not the rows feeding them").
	HavingFilters []Filter

	Values *ValuesTable

	Distinct bool

	// ConstructTemplate holds the CONSTRUCT {...} template triples, valid
	// only when Label == LabelConstruct.
	ConstructTemplate []TriplePattern

	// SelectVars is the explicit projection list for a SELECT group ("*"
	// is expanded by the builder before this is populated, per spec.md
	// §4.9's Finalise step).
	SelectVars []string

	// DescribeTerms holds the resource list of a DESCRIBE query: each
	// entry is either a bound IRI (described directly) or a variable
	// (resolved by evaluating this Group's own WHERE pattern first, then
	// describing every distinct binding it takes), valid only when Label
	// == LabelDescribe.
	DescribeTerms []term.Term
}

// NewGroup allocates a Group with Limit/Offset defaulted to "none".
func NewGroup(label Label) *Group {
	return &Group{Label: label, Limit: -1, Offset: -1}
}
