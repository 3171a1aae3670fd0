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
	"github.com/weftdb/weft/term"
)

// triplesBlock is "TriplesSameSubjectPath ('.' TriplesSameSubjectPath)? '.'?",
// called once per BGP appearing directly inside a GroupGraphPattern.
func triplesBlock() grammar.Production {
	return grammar.All(
		triplesSameSubject(),
		grammar.ZeroOrMore(grammar.All(grammar.Literal(".", true), grammar.Optional(triplesSameSubject()))),
	)
}

func triplesSameSubject() grammar.Production {
	return grammar.All(
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			builder.Reset()
		}),
		subjectTerm(),
		propertyListNotEmpty(),
	)
}

func subjectTerm() grammar.Production {
	return grammar.AnyOf(
		grammar.CapturedCall("subj_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) { asBuilder(p).PushSubject(resolveVarCapture(asBuilder(p), v)) }
		}),
		grammar.CapturedCall("subj_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.PushSubject(resolveIRIRefCapture(builder, v))
			}
		}),
		grammar.CapturedCall("subj_pname", pnameTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.PushSubject(resolvePNameCapture(builder, v))
			}
		}),
		grammar.CapturedCall("subj_blank", blankLabelTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.PushSubject(resolveBlankCapture(builder, v))
			}
		}),
		collectionAsSubject(),
		blankNodePropertyListAsSubject(),
	)
}

// verbOrPath is the predicate position: a plain IRI/PName/"a", an
// inverse path "^iri", or a "/"-separated sequence of such steps, each
// step lowered to its own triple pattern joined through a fresh variable
// (spec.md's property-path primitives; the Kleene-closure path operators
// "*", "+", "?" and alternative "|" are not supported, since evaluating
// them needs a transitive search sparql/exec has no operator for — a
// query using one fails to parse rather than silently returning a
// wrong, non-transitive answer).
func verbOrPath() grammar.Production {
	return grammar.All(
		pathStep(),
		grammar.ZeroOrMore(grammar.All(grammar.Literal("/", true), pathStep())),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).FinalizePathSegments() }),
	)
}

func pathStep() grammar.Production {
	return grammar.AnyOf(
		grammar.All(grammar.Literal("^", true), pathPrimary(), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).SetPredicateInverse(true)
		})),
		pathPrimary(),
	)
}

func pathPrimary() grammar.Production {
	return grammar.AnyOf(
		grammar.All(keyword("a"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).AppendPathStep(sparql.RDFTypeIRI())
		})),
		grammar.CapturedCall("verb_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.AppendPathStep(resolveVarCapture(builder, v))
			}
		}),
		grammar.CapturedCall("verb_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.AppendPathStep(resolveIRIRefCapture(builder, v))
			}
		}),
		grammar.CapturedCall("verb_pname", pnameTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.AppendPathStep(resolvePNameCapture(builder, v))
			}
		}),
	)
}

func propertyListNotEmpty() grammar.Production {
	return grammar.All(
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushPredicateFrame() }),
		verbOrPath(),
		objectList(),
		grammar.ZeroOrMore(grammar.All(
			grammar.OneOrMore(grammar.Literal(";", true)),
			grammar.Optional(grammar.All(verbOrPath(), objectList())),
		)),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PopPredicateFrame() }),
	)
}

func objectList() grammar.Production {
	return grammar.All(
		object(),
		grammar.ZeroOrMore(grammar.All(grammar.Literal(",", true), object())),
	)
}

func object() grammar.Production {
	return grammar.AnyOf(
		grammar.CapturedCall("obj_var", varTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.Emit(resolveVarCapture(builder, v))
			}
		}),
		grammar.CapturedCall("obj_literal", stringLiteralTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.Emit(resolveStringWithSuffix(builder, v))
			}
		}),
		grammar.CapturedCall("obj_number", numberTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) { asBuilder(p).Emit(resolveNumberCapture(v)) }
		}),
		grammar.All(keyword("true"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).Emit(term.TypedLiteral("true", term.XSDBoolean))
		})),
		grammar.All(keyword("false"), grammar.Call(func(p any, b grammar.Bindings) {
			asBuilder(p).Emit(term.TypedLiteral("false", term.XSDBoolean))
		})),
		grammar.CapturedCall("obj_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.Emit(resolveIRIRefCapture(builder, v))
			}
		}),
		grammar.CapturedCall("obj_pname", pnameTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.Emit(resolvePNameCapture(builder, v))
			}
		}),
		grammar.CapturedCall("obj_blank", blankLabelTerm(), func(v string) grammar.Action {
			return func(p any, b grammar.Bindings) {
				builder := asBuilder(p)
				builder.Emit(resolveBlankCapture(builder, v))
			}
		}),
		collectionAsObject(),
		blankNodePropertyListAsObject(),
	)
}

func blankNodePropertyListAsObject() grammar.Production {
	return grammar.All(
		grammar.Literal("[", true),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			bn := builder.FreshBlank()
			builder.Emit(bn)
			builder.PushSubject(bn)
		}),
		grammar.Optional(grammar.Reference(func() grammar.Production { return propertyListNotEmpty() })),
		grammar.Literal("]", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PopSubject() }),
	)
}

func blankNodePropertyListAsSubject() grammar.Production {
	return grammar.All(
		grammar.Literal("[", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushSubject(asBuilder(p).FreshBlank()) }),
		grammar.Optional(grammar.Reference(func() grammar.Production { return propertyListNotEmpty() })),
		grammar.Literal("]", true),
	)
}

func collectionAsObject() grammar.Production {
	return grammar.All(
		grammar.Literal("(", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushCollection() }),
		grammar.ZeroOrMore(grammar.Reference(func() grammar.Production { return object() })),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			builder.Emit(builder.PopCollection().Close())
		}),
		grammar.Literal(")", true),
	)
}

func collectionAsSubject() grammar.Production {
	return grammar.All(
		grammar.Literal("(", true),
		grammar.Call(func(p any, b grammar.Bindings) { asBuilder(p).PushCollection() }),
		grammar.ZeroOrMore(grammar.Reference(func() grammar.Production { return object() })),
		grammar.Call(func(p any, b grammar.Bindings) {
			builder := asBuilder(p)
			builder.PushSubject(builder.PopCollection().Close())
		}),
		grammar.Literal(")", true),
	)
}
