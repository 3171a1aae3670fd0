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
	"github.com/weftdb/weft/grammar"
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/term"
)

// expression is the grammar's entry point into the operator-precedence
// ladder below; each rung is a Reference so the whole ladder can be
// mutually recursive with PrimaryExpression's BrackettedExpression and
// BuiltInCall alternatives.
func expression() grammar.Production {
	return grammar.Reference(conditionalOrExpression)
}

func conditionalOrExpression() grammar.Production {
	return grammar.All(
		grammar.Reference(conditionalAndExpression),
		grammar.ZeroOrMore(grammar.All(
			grammar.Literal("||", true),
			grammar.Reference(conditionalAndExpression),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Or) }),
		)),
	)
}

func conditionalAndExpression() grammar.Production {
	return grammar.All(
		grammar.Reference(relationalExpression),
		grammar.ZeroOrMore(grammar.All(
			grammar.Literal("&&", true),
			grammar.Reference(relationalExpression),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.And) }),
		)),
	)
}

func relationalExpression() grammar.Production {
	return grammar.All(
		grammar.Reference(additiveExpression),
		grammar.Optional(grammar.AnyOf(
			grammar.All(grammar.Literal("!=", true), grammar.Reference(additiveExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Neq) })),
			grammar.All(grammar.Literal("<=", true), grammar.Reference(additiveExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Le) })),
			grammar.All(grammar.Literal(">=", true), grammar.Reference(additiveExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Ge) })),
			grammar.All(grammar.Literal("=", true), grammar.Reference(additiveExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Eq) })),
			grammar.All(grammar.Literal("<", true), grammar.Reference(additiveExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Lt) })),
			grammar.All(grammar.Literal(">", true), grammar.Reference(additiveExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Gt) })),
		)),
	)
}

func additiveExpression() grammar.Production {
	return grammar.All(
		grammar.Reference(multiplicativeExpression),
		grammar.ZeroOrMore(grammar.AnyOf(
			grammar.All(grammar.Literal("+", true), grammar.Reference(multiplicativeExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Add) })),
			grammar.All(grammar.Literal("-", true), grammar.Reference(multiplicativeExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Sub) })),
		)),
	)
}

func multiplicativeExpression() grammar.Production {
	return grammar.All(
		grammar.Reference(unaryExpression),
		grammar.ZeroOrMore(grammar.AnyOf(
			grammar.All(grammar.Literal("*", true), grammar.Reference(unaryExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Mul) })),
			grammar.All(grammar.Literal("/", true), grammar.Reference(unaryExpression),
				grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(function.Div) })),
		)),
	)
}

func unaryExpression() grammar.Production {
	return grammar.AnyOf(
		grammar.All(grammar.Literal("!", true), grammar.Reference(primaryExpression),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceUnary(function.Not) })),
		grammar.All(grammar.Literal("+", true), grammar.Reference(primaryExpression)),
		grammar.All(grammar.Literal("-", true), grammar.Reference(primaryExpression),
			grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceUnary(function.Neg) })),
		grammar.Reference(primaryExpression),
	)
}

func primaryExpression() grammar.Production {
	return grammar.AnyOf(
		bracketedExpression(),
		builtInCall(),
		aggregateExpression(),
		grammar.CapturedCall("expr_str", stringLiteralTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolveStringWithSuffix(builder, v)
				builder.PushExpr(sparql.ExprConst(t))
			}
		}),
		grammar.CapturedCall("expr_num", numberTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				asBuilder(p).PushExpr(sparql.ExprConst(resolveNumberCapture(v)))
			}
		}),
		grammar.All(keyword("true"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).PushExpr(sparql.ExprConst(term.TypedLiteral("true", term.XSDBoolean)))
		})),
		grammar.All(keyword("false"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).PushExpr(sparql.ExprConst(term.TypedLiteral("false", term.XSDBoolean)))
		})),
		grammar.CapturedCall("expr_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				name := v[1:]
				builder := asBuilder(p)
				builder.ResolveVar(name)
				builder.PushExpr(sparql.ExprVar(name))
			}
		}),
		grammar.CapturedCall("expr_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolveIRIRefCapture(builder, v)
				builder.PushExpr(sparql.ExprConst(t))
			}
		}),
		grammar.CapturedCall("expr_pname", pnameTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				t := resolvePNameCapture(builder, v)
				builder.PushExpr(sparql.ExprConst(t))
			}
		}),
	)
}

func bracketedExpression() grammar.Production {
	return grammar.All(grammar.Literal("(", true), expression(), grammar.Literal(")", true))
}

// unaryBuiltin wires one keyword("NAME") '(' Expression ')' builtin whose
// Go implementation is a one-argument term.Term function.
func unaryBuiltin(name string, f func(term.Term) term.Term) grammar.Production {
	return grammar.All(
		keyword(name), grammar.Literal("(", true), expression(), grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceUnary(f) }),
	)
}

// binaryBuiltin wires one keyword("NAME") '(' Expression ',' Expression ')'
// builtin.
func binaryBuiltin(name string, f func(a, b term.Term) term.Term) grammar.Production {
	return grammar.All(
		keyword(name), grammar.Literal("(", true), expression(), grammar.Literal(",", true), expression(), grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).ReduceBinary(f) }),
	)
}

func builtInCall() grammar.Production {
	return grammar.AnyOf(
		unaryBuiltin("STR", function.Str),
		unaryBuiltin("LANG", function.Lang),
		unaryBuiltin("DATATYPE", function.Datatype),
		grammar.All(keyword("BOUND"), grammar.Literal("(", true),
			grammar.CapturedCall("bound_var", varTerm(), func(v string) grammar.Action {
				return func(p any, b grammar.Bindings) { asBuilder(p).PushExpr(sparql.ExprBound(v[1:])) }
			}), grammar.Literal(")", true)),
		iriOrURIBuiltin("IRI"),
		iriOrURIBuiltin("URI"),
		bnodeBuiltin(),
		niladicBuiltin("RAND", function.Rand),
		unaryBuiltin("ABS", function.Abs),
		unaryBuiltin("CEIL", function.Ceil),
		unaryBuiltin("FLOOR", function.Floor),
		unaryBuiltin("ROUND", function.Round),
		unaryBuiltin("STRLEN", function.StrLen),
		unaryBuiltin("UCASE", function.UCase),
		unaryBuiltin("LCASE", function.LCase),
		unaryBuiltin("ENCODE_FOR_URI", function.EncodeForURI),
		binaryBuiltin("LANGMATCHES", function.LangMatches),
		binaryBuiltin("CONTAINS", function.Contains),
		binaryBuiltin("STRSTARTS", function.StrStarts),
		binaryBuiltin("STRENDS", function.StrEnds),
		binaryBuiltin("STRBEFORE", function.StrBefore),
		binaryBuiltin("STRAFTER", function.StrAfter),
		binaryBuiltin("STRLANG", function.StrLang),
		binaryBuiltin("STRDT", function.StrDT),
		binaryBuiltin("SAMETERM", function.SameTerm),
		unaryBuiltin("ISIRI", function.IsIRIFn),
		unaryBuiltin("ISURI", function.IsIRIFn),
		unaryBuiltin("ISBLANK", function.IsBlankFn),
		unaryBuiltin("ISLITERAL", function.IsLiteralFn),
		unaryBuiltin("ISNUMERIC", function.IsNumericFn),
		unaryBuiltin("MD5", function.MD5),
		unaryBuiltin("SHA1", function.SHA1),
		unaryBuiltin("SHA256", function.SHA256),
		unaryBuiltin("SHA384", function.SHA384),
		unaryBuiltin("SHA512", function.SHA512),
		unaryBuiltin("YEAR", function.Year),
		unaryBuiltin("MONTH", function.Month),
		unaryBuiltin("DAY", function.Day),
		unaryBuiltin("HOURS", function.Hours),
		unaryBuiltin("MINUTES", function.Minutes),
		unaryBuiltin("SECONDS", function.Seconds),
		unaryBuiltin("TIMEZONE", function.Timezone),
		unaryBuiltin("TZ", function.TZ),
		niladicBuiltin("UUID", function.UUIDFn),
		niladicBuiltin("STRUUID", function.StrUUID),
		ifBuiltin(),
		coalesceBuiltin(),
		concatBuiltin(),
		substrBuiltin(),
		replaceBuiltin(),
		regexBuiltin(),
	)
}

// niladicBuiltin wires a zero-argument builtin whose result may differ
// each time it runs (RAND, UUID, STRUUID, BNODE with no label); f is
// called once per solution row rather than once at parse time, since
// ExprConst would otherwise freeze the first call's result for every row.
func niladicBuiltin(name string, f func() term.Term) grammar.Production {
	return grammar.All(
		keyword(name), grammar.Literal("(", true), grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).PushExpr(func(row sparql.Bindings) term.Term { return f() })
		}),
	)
}

// iriOrURIBuiltin wires IRI(expr)/URI(expr), resolved against the base
// IRI in effect where the builtin was parsed.
func iriOrURIBuiltin(name string) grammar.Production {
	return grammar.All(
		keyword(name), grammar.Literal("(", true), expression(), grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			arg := builder.PopExpr()
			base := builder.Base()
			builder.PushExpr(func(row sparql.Bindings) term.Term { return function.IRIFn(arg(row), base) })
		}),
	)
}

// bnodeBuiltin wires both BNODE() and BNODE(expr): the zero-argument form
// allocates a fresh blank node per call, the one-argument form derives a
// label deterministically from its string argument (function.BNode's
// contract).
func bnodeBuiltin() grammar.Production {
	return grammar.AnyOf(
		grammar.All(keyword("BNODE"), grammar.Literal("(", true), expression(), grammar.Literal(")", true),
			grammar.Call(func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				arg := builder.PopExpr()
				builder.PushExpr(func(row sparql.Bindings) term.Term {
					v := arg(row)
					return function.BNode(&v)
				})
			})),
		niladicBuiltin("BNODE", func() term.Term { return function.BNode(nil) }),
	)
}

func ifBuiltin() grammar.Production {
	return grammar.All(
		keyword("IF"), grammar.Literal("(", true), expression(), grammar.Literal(",", true), expression(),
		grammar.Literal(",", true), expression(), grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			els := builder.PopExpr()
			then := builder.PopExpr()
			cond := builder.PopExpr()
			builder.PushExpr(sparql.ExprTernary(function.If, cond, then, els))
		}),
	)
}

func coalesceBuiltin() grammar.Production {
	return grammar.All(
		keyword("COALESCE"), grammar.Literal("(", true),
		argCountMarker(),
		grammar.Optional(grammar.All(expression(), grammar.ZeroOrMore(grammar.All(grammar.Literal(",", true), expression())))),
		grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) { reduceNAry(asBuilder(p), function.Coalesce) }),
	)
}

func concatBuiltin() grammar.Production {
	return grammar.All(
		keyword("CONCAT"), grammar.Literal("(", true),
		argCountMarker(),
		grammar.Optional(grammar.All(expression(), grammar.ZeroOrMore(grammar.All(grammar.Literal(",", true), expression())))),
		grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) { reduceNAry(asBuilder(p), function.Concat) }),
	)
}

// argCountMarker records the expression-stack depth a variadic builtin's
// argument list starts at, so the count of comma-separated expressions it
// received can be read back from the stack depth once parsing finishes
// rather than tallied incrementally.
func argCountMarker() grammar.Production {
	return grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushArgMark() })
}

func reduceNAry(b *sparql.Builder, f func(...term.Term) term.Term) {
	n := b.PopArgCount()
	args := make([]sparql.Expr, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = b.PopExpr()
	}
	b.PushExpr(sparql.ExprN(f, args...))
}

func substrBuiltin() grammar.Production {
	return grammar.All(
		keyword("SUBSTR"), grammar.Literal("(", true), expression(), grammar.Literal(",", true), expression(),
		argCountMarker(),
		grammar.Optional(grammar.All(grammar.Literal(",", true), expression())),
		grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			length, _ := builder.PopOptionalArg()
			start := builder.PopExpr()
			s := builder.PopExpr()
			builder.PushExpr(func(row sparql.Bindings) term.Term {
				sv, startv := s(row), start(row)
				if length == nil {
					return function.Substr(sv, startv, nil)
				}
				lv := length(row)
				return function.Substr(sv, startv, &lv)
			})
		}),
	)
}

func replaceBuiltin() grammar.Production {
	return grammar.All(
		keyword("REPLACE"), grammar.Literal("(", true), expression(), grammar.Literal(",", true), expression(),
		grammar.Literal(",", true), expression(),
		argCountMarker(),
		grammar.Optional(grammar.All(grammar.Literal(",", true), expression())),
		grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			flags, _ := builder.PopOptionalArg()
			replacement := builder.PopExpr()
			pattern := builder.PopExpr()
			s := builder.PopExpr()
			builder.PushExpr(func(row sparql.Bindings) term.Term {
				flagStr := ""
				if flags != nil {
					flagStr = flags(row).Lexical()
				}
				return function.Replace(s(row), pattern(row), replacement(row), flagStr)
			})
		}),
	)
}

func regexBuiltin() grammar.Production {
	return grammar.All(
		keyword("REGEX"), grammar.Literal("(", true), expression(), grammar.Literal(",", true), expression(),
		argCountMarker(),
		grammar.Optional(grammar.All(grammar.Literal(",", true), expression())),
		grammar.Literal(")", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			flags, _ := builder.PopOptionalArg()
			pattern := builder.PopExpr()
			text := builder.PopExpr()
			builder.PushExpr(func(row sparql.Bindings) term.Term {
				flagStr := ""
				if flags != nil {
					flagStr = flags(row).Lexical()
				}
				return function.Regex(text(row), pattern(row), flagStr)
			})
		}),
	)
}

// FILTER [NOT] EXISTS {...} is not a general expression operator here —
// it is recognised directly by the FILTER production in query.go, which
// attaches it to the enclosing group as an ExistsCheck rather than
// folding it into this expression grammar. SPARQL permits EXISTS to
// nest inside an arbitrary boolean expression (e.g.
// "FILTER(EXISTS{...} || ?x > 1)"); that composition is not supported,
// matching sparql/exec's model of ExistsChecks as clauses applied
// alongside, not inside, a group's ordinary Filters.
