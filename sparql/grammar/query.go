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

package grammar

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/weftdb/weft/grammar"
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/term"
)

// Parse translates one SPARQL 1.1 query (spec.md §4.11) into a compiled
// sparql.Group tree: Prologue (PREFIX/BASE) followed by exactly one of
// SelectQuery, ConstructQuery, AskQuery or DescribeQuery. Comments are
// stripped first, since the grammar engine only ever skips whitespace
// between tokens (spec.md §4.5), never "#" comments. FROM/FROM NAMED
// dataset clauses are not supported: spec.md §4.3 has SPARQL evaluation
// always read the embedding dataset's active graph, so graph selection
// is the caller's job, not the query text's.
func Parse(query string) (*sparql.Group, error) {
	b := sparql.NewBuilder("", map[string]string{}, uuid.NewString()[:8])
	g := &grammar.Grammar{Root: topLevelQuery()}
	if _, err := g.Parse(stripComments(query), b); err != nil {
		return nil, err
	}
	return b.PopGroup(), nil
}

func topLevelQuery() grammar.Production {
	return grammar.All(
		prologue(),
		grammar.AnyOf(
			selectQuery(),
			constructQuery(),
			describeQuery(),
			askQuery(),
		),
	)
}

// --- Prologue ---

func prologue() grammar.Production {
	return grammar.ZeroOrMore(grammar.AnyOf(prefixDecl(), baseDecl()))
}

func prefixDecl() grammar.Production {
	return grammar.All(
		keyword("PREFIX"),
		grammar.CapturedCall("prefix_ns", grammar.Custom("PNAME_NS", scanPNameNS), func(ns string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				asBuilder(p).SetPendingPrefixName(strings.TrimSuffix(ns, ":"))
			}
		}),
		grammar.CapturedCall("prefix_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolveIRIRefCapture(builder, v)
				builder.SetPrefix(builder.TakePendingPrefixName(), t.Value())
			}
		}),
	)
}

func baseDecl() grammar.Production {
	return grammar.All(
		keyword("BASE"),
		grammar.CapturedCall("base_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				lexical, err := term.UnescapeLiteral(v[1 : len(v)-1])
				if err != nil {
					return
				}
				builder.SetBase(lexical)
			}
		}),
	)
}

// --- Query forms ---

func selectQuery() grammar.Production {
	return grammar.All(
		keyword("SELECT"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushGroup(sparql.LabelSelect) }),
		grammar.Optional(grammar.All(keyword("DISTINCT"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).SetDistinct(asBuilder(p).Current())
		}))),
		grammar.Optional(keyword("REDUCED")),
		selectClauseBody(),
		whereClause(),
		solutionModifier(),
		grammar.Optional(valuesClause()),
	)
}

// selectClauseBody is "*" or one-or-more projection terms, each either a
// bare variable or "(Expression AS ?var)"/"(Aggregate AS ?var)".
func selectClauseBody() grammar.Production {
	return grammar.AnyOf(
		grammar.All(grammar.Literal("*", true), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).FinalizeSelectStar(asBuilder(p).Current())
		})),
		grammar.OneOrMore(selectProjection()),
	)
}

func selectProjection() grammar.Production {
	return grammar.AnyOf(
		grammar.CapturedCall("proj_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				name := v[1:]
				builder.ResolveVar(name)
				builder.AddSelectVar(builder.Current(), name)
			}
		}),
		grammar.All(
			grammar.Literal("(", true),
			grammar.AnyOf(
				grammar.All(aggregateCall(), keyword("AS"), projectionVar(), grammar.Call(finishAggregateProjection)),
				grammar.All(expression(), keyword("AS"), projectionVar(), grammar.Call(finishExprProjection)),
			),
			grammar.Literal(")", true),
		),
	)
}

func projectionVar() grammar.Production {
	return grammar.CapturedCall("proj_as_var", varTerm(), func(v string) grammar.Action {
		return func(p any, b grammar.Bindings) { asBuilder(p).PushTerm(term.Variable(v[1:])) }
	})
}

func finishAggregateProjection(p any, b grammar.Bindings) {
	builder := asBuilder(p)
	asVar := builder.PopTerm()
	arg, acc, distinct := builder.PopPendingAggregate()
	builder.AddAggregate(builder.Current(), asVar.LocalName(), arg, sparql.AggregateBinder{Accumulate: acc, Distinct: distinct})
	builder.AddSelectVar(builder.Current(), asVar.LocalName())
}

func finishExprProjection(p any, b grammar.Bindings) {
	builder := asBuilder(p)
	asVar := builder.PopTerm()
	e := builder.PopExpr()
	builder.AddSelectBinder(builder.Current(), asVar.LocalName(), e)
}

func constructQuery() grammar.Production {
	return grammar.All(
		keyword("CONSTRUCT"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushGroup(sparql.LabelConstruct) }),
		grammar.Literal("{", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushGroup(sparql.LabelPlain) }),
		grammar.Optional(triplesBlock()),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			tmpl := builder.PopGroup()
			builder.SetConstructTemplate(builder.Current(), tmpl.Clauses)
		}),
		grammar.Literal("}", true),
		whereClause(),
		solutionModifier(),
	)
}

func askQuery() grammar.Production {
	return grammar.All(
		keyword("ASK"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushGroup(sparql.LabelAsk) }),
		whereClause(),
	)
}

func describeQuery() grammar.Production {
	return grammar.All(
		keyword("DESCRIBE"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushGroup(sparql.LabelDescribe) }),
		grammar.AnyOf(
			grammar.All(grammar.Literal("*", true), grammar.Call(func(p any, b grammar.Bindings) {
				asBuilder(p).FinalizeDescribeStar(asBuilder(p).Current())
			})),
			grammar.OneOrMore(describeTarget()),
		),
		grammar.Optional(whereClause()),
		solutionModifier(),
	)
}

func describeTarget() grammar.Production {
	return grammar.AnyOf(
		grammar.CapturedCall("desc_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.AddDescribeTerm(builder.Current(), resolveVarCapture(builder, v))
			}
		}),
		grammar.CapturedCall("desc_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.AddDescribeTerm(builder.Current(), resolveIRIRefCapture(builder, v))
			}
		}),
		grammar.CapturedCall("desc_pname", pnameTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.AddDescribeTerm(builder.Current(), resolvePNameCapture(builder, v))
			}
		}),
	)
}

// --- WHERE clause / GroupGraphPattern ---

func whereClause() grammar.Production {
	return grammar.All(grammar.Optional(keyword("WHERE")), groupGraphPattern())
}

// groupGraphPattern parses "{ ... }", pushing a fresh plain Group (or,
// for a subquery, a nested Select group) and attaching the finished
// Group as a child of whatever Group is current when '{' is seen. A
// pending GRAPH-clause term, if any, is attached to the pushed Group.
func groupGraphPattern() grammar.Production {
	return grammar.All(
		grammar.Literal("{", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			g := builder.PushGroup(sparql.LabelPlain)
			g.GraphTerm = builder.TakePendingGraphTerm()
		}),
		grammar.AnyOf(
			subSelectBody(),
			groupGraphPatternSub(),
		),
		grammar.Literal("}", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			g := builder.PopGroup()
			builder.AddChild(g)
		}),
	)
}

// subSelectBody lets a GroupGraphPattern directly contain a nested
// SELECT (a subquery): the subquery's own Select-labelled Group becomes
// a single child of the plain Group groupGraphPattern already pushed,
// which sparql/exec treats like any other child pattern whose rows join
// into the enclosing one. Its own WHERE is a grammar.Reference, since it
// reaches back into groupGraphPattern and would otherwise recurse
// without bound while this production tree is being built.
func subSelectBody() grammar.Production {
	return grammar.All(
		keyword("SELECT"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushGroup(sparql.LabelSelect) }),
		grammar.Optional(grammar.All(keyword("DISTINCT"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).SetDistinct(asBuilder(p).Current())
		}))),
		selectClauseBody(),
		grammar.Reference(whereClause),
		solutionModifier(),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			sub := builder.PopGroup()
			builder.AddChild(sub)
		}),
	)
}

// groupGraphPatternSub is TriplesBlock? (GraphPatternNotTriples '.'?
// TriplesBlock?)*, all directly inside the Group groupGraphPattern
// pushed.
func groupGraphPatternSub() grammar.Production {
	return grammar.All(
		grammar.Optional(triplesBlock()),
		grammar.ZeroOrMore(grammar.All(
			graphPatternNotTriples(),
			grammar.Optional(grammar.Literal(".", true)),
			grammar.Optional(triplesBlock()),
		)),
	)
}

func graphPatternNotTriples() grammar.Production {
	return grammar.AnyOf(
		groupOrUnionGraphPattern(),
		optionalGraphPattern(),
		minusGraphPattern(),
		graphGraphPattern(),
		bindClause(),
		valuesClause(),
		filterClause(),
	)
}

// groupOrUnionGraphPattern is GroupGraphPattern ('UNION'
// GroupGraphPattern)*: each alternative parses as its own plain child
// Group; two or more are wrapped in a synthetic UNION Group so
// sparql/exec's outer-union rule (spec.md §4.10 rule 6) sees exactly the
// alternatives, not the enclosing pattern's other clauses. Both
// GroupGraphPattern references are lazy for the same reason
// subSelectBody's WHERE is.
func groupOrUnionGraphPattern() grammar.Production {
	return grammar.All(
		grammar.Call(startUnionCollector),
		grammar.Reference(groupGraphPattern),
		grammar.ZeroOrMore(grammar.All(keyword("UNION"), grammar.Reference(groupGraphPattern))),
		grammar.Call(finishUnionCollector),
	)
}

func startUnionCollector(p any, b grammar.Bindings) {
	asBuilder(p).PushGroup(sparql.LabelUnion)
}

// finishUnionCollector moves every child appended to the current Group
// since startUnionCollector ran into a fresh UNION Group, unless exactly
// one alternative was parsed, in which case the plain child is kept as
// an ordinary nested pattern (a single GroupGraphPattern with no UNION
// keyword is not a union at all).
func finishUnionCollector(p any, b grammar.Bindings) {
	builder := asBuilder(p)
	marker := builder.PopGroup()
	switch len(marker.Children) {
	case 0:
		return
	case 1:
		builder.AddChild(marker.Children[0])
	default:
		marker.Label = sparql.LabelUnion
		builder.AddChild(marker)
	}
}

func optionalGraphPattern() grammar.Production {
	return grammar.All(keyword("OPTIONAL"), relabelNextChild(sparql.LabelOptional, groupGraphPattern))
}

func minusGraphPattern() grammar.Production {
	return grammar.All(keyword("MINUS"), relabelNextChild(sparql.LabelMinus, groupGraphPattern))
}

// relabelNextChild runs inner (a production that, on success, appends
// exactly one child to the current Group via AddChild) and then
// overwrites that child's Label, the shared shape OPTIONAL and MINUS
// both need around a plain GroupGraphPattern. inner is always
// groupGraphPattern here, reached back through graphPatternNotTriples,
// so it is run through grammar.Reference rather than called directly.
func relabelNextChild(label sparql.Label, inner func() grammar.Production) grammar.Production {
	return grammar.All(
		grammar.Reference(inner),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			cur := builder.Current()
			cur.Children[len(cur.Children)-1].Label = label
		}),
	)
}

func graphGraphPattern() grammar.Production {
	return grammar.All(
		keyword("GRAPH"),
		grammar.AnyOf(
			grammar.CapturedCall("graph_var", varTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) {
					builder := asBuilder(p)
					builder.SetPendingGraphTerm(resolveVarCapture(builder, v))
				}
			}),
			grammar.CapturedCall("graph_iri", iriRefTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) {
					builder := asBuilder(p)
					builder.SetPendingGraphTerm(resolveIRIRefCapture(builder, v))
				}
			}),
			grammar.CapturedCall("graph_pname", pnameTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) {
					builder := asBuilder(p)
					builder.SetPendingGraphTerm(resolvePNameCapture(builder, v))
				}
			}),
		),
		relabelNextChild(sparql.LabelGraph, groupGraphPattern),
	)
}

func bindClause() grammar.Production {
	return grammar.All(
		keyword("BIND"), grammar.Literal("(", true), expression(), keyword("AS"),
		grammar.CapturedCall("bind_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				e := builder.PopExpr()
				builder.AddBind(v[1:], e)
			}
		}),
		grammar.Literal(")", true),
	)
}

func filterClause() grammar.Production {
	return grammar.All(
		keyword("FILTER"),
		grammar.AnyOf(
			filterExists(),
			grammar.All(constraint(), grammar.Call(func(p any, b grammar.Bindings) {
				asBuilder(p).AddFilter(asBuilder(p).PopExpr())
			})),
		),
	)
}

// constraint is a FILTER's argument: a bracketed expression, a builtin
// call, or a function call — weft's grammar folds all three into
// bracketedExpression/builtInCall already, since BuiltInCall is itself
// one alternative of PrimaryExpression.
func constraint() grammar.Production { return expression() }

func filterExists() grammar.Production {
	return grammar.All(
		grammar.Optional(grammar.All(keyword("NOT"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).MarkNegatedExists()
		}))),
		keyword("EXISTS"),
		grammar.Reference(groupGraphPattern),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			cur := builder.Current()
			pattern := cur.Children[len(cur.Children)-1]
			cur.Children = cur.Children[:len(cur.Children)-1]
			builder.AddExistsCheck(pattern, builder.PopNegatedExists())
		}),
	)
}

// --- VALUES ---

func valuesClause() grammar.Production {
	return grammar.All(
		keyword("VALUES"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ResetValues() }),
		grammar.AnyOf(
			grammar.All(
				grammar.Literal("(", true),
				grammar.ZeroOrMore(grammar.CapturedCall("values_var", varTerm(), func(v string) grammar.Action {
					return func(p any, b grammar.Bindings) { asBuilder(p).AddValuesVar(v[1:]) }
				})),
				grammar.Literal(")", true),
			),
			grammar.CapturedCall("values_var1", varTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) { asBuilder(p).AddValuesVar(v[1:]) }
			}),
		),
		grammar.Literal("{", true),
		grammar.ZeroOrMore(valuesDataBlockValue()),
		grammar.Literal("}", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			child := sparql.NewGroup(sparql.LabelValues)
			child.Values = builder.TakeValues()
			builder.AddChild(child)
		}),
	)
}

// valuesDataBlockValue parses one VALUES row: either a single term (for
// the one-variable form) or a parenthesised tuple (for the
// multi-variable form), recording each cell in the canonical row-cell
// form sparql.ParseCell round-trips ("" for UNDEF).
func valuesDataBlockValue() grammar.Production {
	return grammar.AnyOf(
		grammar.All(
			grammar.Literal("(", true),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).BeginValuesRow() }),
			grammar.ZeroOrMore(valuesCell()),
			grammar.Literal(")", true),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).EndValuesRow() }),
		),
		grammar.All(
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).BeginValuesRow() }),
			valuesCell(),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).EndValuesRow() }),
		),
	)
}

func valuesCell() grammar.Production {
	return grammar.AnyOf(
		grammar.All(keyword("UNDEF"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).AddValuesCell("")
		})),
		grammar.CapturedCall("values_lit", stringLiteralTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolveStringWithSuffix(builder, v)
				builder.AddValuesCell(t.String())
			}
		}),
		grammar.CapturedCall("values_num", numberTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) { asBuilder(p).AddValuesCell(resolveNumberCapture(v).String()) }
		}),
		grammar.CapturedCall("values_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolveIRIRefCapture(builder, v)
				builder.AddValuesCell(t.String())
			}
		}),
		grammar.CapturedCall("values_pname", pnameTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolvePNameCapture(builder, v)
				builder.AddValuesCell(t.String())
			}
		}),
	)
}

// --- Aggregates ---

// aggregateExpression lets an Aggregate appear directly inside an
// ordinary expression — HAVING(COUNT(?x) > 3), ORDER BY SUM(?y) — as
// opposed to the SELECT-projection form, which always names its result
// with "(... AS ?var)". The aggregate is registered against the current
// group under a synthesised column name and replaced, in the expression
// being built, by a reference to that column: evalAggregate computes it
// once per group, same as any "(... AS ?var)" aggregate.
func aggregateExpression() grammar.Production {
	return grammar.All(aggregateCall(), grammar.Call(func(p any, b grammar.Bindings) {
		builder := asBuilder(p)
		arg, acc, distinct := builder.PopPendingAggregate()
		name := builder.NextAggregateVar()
		builder.AddAggregate(builder.Current(), name, arg, sparql.AggregateBinder{Accumulate: acc, Distinct: distinct})
		builder.PushExpr(sparql.ExprVar(name))
	}))
}

func aggregateCall() grammar.Production {
	return grammar.AnyOf(
		aggregateWithArg("COUNT", function.CountAccumulate, true),
		aggregateWithArg("SUM", function.SumAccumulate, false),
		aggregateWithArg("MIN", function.MinAccumulate, false),
		aggregateWithArg("MAX", function.MaxAccumulate, false),
		aggregateWithArg("AVG", function.AvgAccumulate, false),
		aggregateWithArg("SAMPLE", function.SampleAccumulate, false),
		groupConcatCall(),
	)
}

// aggregateWithArg wires one "NAME '(' 'DISTINCT'? (Expression|'*') ')'"
// aggregate (allowStar only for COUNT's COUNT(*) form, spec.md §4.8).
func aggregateWithArg(name string, acc function.Accumulator, allowStar bool) grammar.Production {
	alternatives := []grammar.Production{
		grammar.All(
			keyword(name), grammar.Literal("(", true),
			optionalDistinct(),
			expression(),
			grammar.Literal(")", true),
			grammar.Call(func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				arg := builder.PopExpr()
				builder.PushPendingAggregate(arg, acc, builder.PopDistinctMark())
			}),
		),
	}
	if allowStar {
		alternatives = append([]grammar.Production{grammar.All(
			keyword(name), grammar.Literal("(", true), grammar.Literal("*", true), grammar.Literal(")", true),
			grammar.Call(func(p any, b grammar.Bindings) {
				asBuilder(p).PushPendingAggregate(sparql.ExprConst(term.Unbound), function.CountStarAccumulate, false)
			}),
		)}, alternatives...)
	}
	return grammar.AnyOf(alternatives...)
}

func groupConcatCall() grammar.Production {
	return grammar.All(
		keyword("GROUP_CONCAT"), grammar.Literal("(", true),
		optionalDistinct(),
		expression(),
		grammar.Optional(grammar.All(
			grammar.Literal(";", true), keyword("SEPARATOR"), grammar.Literal("=", true),
			grammar.CapturedCall("gc_sep", stringLiteralTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) {
					builder := asBuilder(p)
					t := resolveStringWithSuffix(builder, v)
					builder.SetGroupConcatSeparator(t.Lexical())
				}
			}),
		)),
		grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			arg := builder.PopExpr()
			sep := builder.TakeGroupConcatSeparator()
			builder.PushPendingAggregate(arg, function.GroupConcatAccumulate(sep), builder.PopDistinctMark())
		}),
	)
}

// optionalDistinct parses an Aggregate's optional leading DISTINCT
// keyword, recording it on a one-shot scratch flag PopDistinctMark
// consumes.
func optionalDistinct() grammar.Production {
	return grammar.Optional(grammar.All(keyword("DISTINCT"), grammar.Call(func(p any, b grammar.Bindings) {
		asBuilder(p).SetDistinctMark()
	})))
}

// --- Solution modifiers ---

func solutionModifier() grammar.Production {
	return grammar.All(
		grammar.Optional(groupClause()),
		grammar.Optional(havingClause()),
		grammar.Optional(orderClause()),
		grammar.Optional(limitOffsetClauses()),
	)
}

func groupClause() grammar.Production {
	return grammar.All(
		keyword("GROUP"), keyword("BY"),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).BeginGroupByVars() }),
		grammar.OneOrMore(groupByVar()),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			builder.SetGroupBy(builder.Current(), builder.TakeGroupByVars())
		}),
	)
}

func groupByVar() grammar.Production {
	return grammar.AnyOf(
		grammar.CapturedCall("gb_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.ResolveVar(v[1:])
				builder.AppendGroupByVar(v[1:])
			}
		}),
		grammar.All(
			grammar.Literal("(", true), expression(), keyword("AS"),
			grammar.CapturedCall("gb_as_var", varTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) {
					builder := asBuilder(p)
					e := builder.PopExpr()
					builder.AddBind(v[1:], e)
					builder.AppendGroupByVar(v[1:])
				}
			}),
			grammar.Literal(")", true),
		),
	)
}

func havingClause() grammar.Production {
	return grammar.All(
		keyword("HAVING"), constraint(),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			builder.AddHaving(builder.PopExpr())
		}),
	)
}

func orderClause() grammar.Production {
	return grammar.All(keyword("ORDER"), keyword("BY"), grammar.OneOrMore(orderCondition()))
}

func orderCondition() grammar.Production {
	return grammar.AnyOf(
		grammar.All(keyword("ASC"), grammar.Literal("(", true), expression(), grammar.Literal(")", true),
			grammar.Call(func(p any, b grammar.Bindings) { addOrderBy(asBuilder(p), false) })),
		grammar.All(keyword("DESC"), grammar.Literal("(", true), expression(), grammar.Literal(")", true),
			grammar.Call(func(p any, b grammar.Bindings) { addOrderBy(asBuilder(p), true) })),
		grammar.All(
			grammar.CapturedCall("ord_var", varTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) { asBuilder(p).PushExpr(sparql.ExprVar(v[1:])) }
			}),
			grammar.Call(func(p any, b grammar.Bindings) { addOrderBy(asBuilder(p), false) }),
		),
		grammar.All(bracketedExpression(), grammar.Call(func(p any, b grammar.Bindings) { addOrderBy(asBuilder(p), false) })),
	)
}

func addOrderBy(b *sparql.Builder, desc bool) {
	e := b.PopExpr()
	b.AddOrderBy(b.Current(), e, desc)
}

func limitOffsetClauses() grammar.Production {
	return grammar.AnyOf(
		grammar.All(limitClause(), grammar.Optional(offsetClause())),
		grammar.All(offsetClause(), grammar.Optional(limitClause())),
	)
}

func limitClause() grammar.Production {
	return grammar.All(
		keyword("LIMIT"),
		grammar.CapturedCall("limit_n", numberTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				n, _ := strconv.Atoi(strings.TrimSpace(v))
				builder.SetLimitOffset(builder.Current(), n, -1)
			}
		}),
	)
}

func offsetClause() grammar.Production {
	return grammar.All(
		keyword("OFFSET"),
		grammar.CapturedCall("offset_n", numberTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				n, _ := strconv.Atoi(strings.TrimSpace(v))
				builder.SetLimitOffset(builder.Current(), -1, n)
			}
		}),
	)
}
