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

package turtle

import (
	"strings"

	"github.com/weftdb/weft/grammar"
	"github.com/weftdb/weft/term"
)

func scanPNameNS(text []rune, pos int) (int, bool) {
	i := pos
	for i < len(text) && isPNChar(text[i]) {
		i++
	}
	if i >= len(text) || text[i] != ':' {
		return 0, false
	}
	return i - pos + 1, true
}

func prefixDirective() grammar.Production {
	return grammar.All(
		grammar.Literal("@prefix", true),
		grammar.CapturedCall("prefix_name", grammar.Custom("PNAME_NS", scanPNameNS), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				asProducer(producer).pendingPrefixName = strings.TrimSuffix(v, ":")
			}
		}),
		grammar.CapturedCall("prefix_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				if iri, err := iriRefValue(v); err == nil {
					p.setPrefix(p.pendingPrefixName, iri)
				}
			}
		}),
		grammar.Literal(".", true),
	)
}

func sparqlPrefixDirective() grammar.Production {
	return grammar.All(
		grammar.Literal("PREFIX", false),
		grammar.CapturedCall("prefix_name", grammar.Custom("PNAME_NS", scanPNameNS), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				asProducer(producer).pendingPrefixName = strings.TrimSuffix(v, ":")
			}
		}),
		grammar.CapturedCall("prefix_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				if iri, err := iriRefValue(v); err == nil {
					p.setPrefix(p.pendingPrefixName, iri)
				}
			}
		}),
	)
}

func baseDirective() grammar.Production {
	return grammar.AnyOf(
		grammar.All(
			grammar.Literal("@base", true),
			grammar.CapturedCall("base_iri", iriRefTerm(), func(v string) grammar.Action {
				return func(producer any, b grammar.Bindings) { asProducer(producer).setBase(iriRefValue(v)) }
			}),
			grammar.Literal(".", true),
		),
		grammar.All(
			grammar.Literal("BASE", false),
			grammar.CapturedCall("base_iri", iriRefTerm(), func(v string) grammar.Action {
				return func(producer any, b grammar.Bindings) { asProducer(producer).setBase(iriRefValue(v)) }
			}),
		),
	)
}

// triples is "subject predicateObjectList", called once per top-level
// statement; it resets the producer's per-statement stacks first.
func triples() grammar.Production {
	return grammar.All(
		grammar.Call(func(producer any, b grammar.Bindings) {
			p := asProducer(producer)
			p.subjectStack = p.subjectStack[:0]
			p.predicateStack = p.predicateStack[:0]
			p.emitterStack = p.emitterStack[:0]
		}),
		subject(),
		predicateObjectList(),
	)
}

func subject() grammar.Production {
	return grammar.AnyOf(
		grammar.CapturedCall("subj_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.pushSubject(resolveIRIRefCapture(p, v))
			}
		}),
		grammar.CapturedCall("subj_pname", pnameTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.pushSubject(resolvePNameCapture(p, v))
			}
		}),
		grammar.CapturedCall("subj_blank", blankLabelTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.pushSubject(p.internBlank(v[2:]))
			}
		}),
		collectionAsSubject(),
		blankNodePropertyListAsSubject(),
	)
}

func verb() grammar.Production {
	return grammar.AnyOf(
		grammar.All(keywordA(), grammar.Call(func(producer any, b grammar.Bindings) {
			asProducer(producer).setPredicate(term.PlainIRI(rdfType))
		})),
		grammar.CapturedCall("verb_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.setPredicate(resolveIRIRefCapture(p, v))
			}
		}),
		grammar.CapturedCall("verb_pname", pnameTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.setPredicate(resolvePNameCapture(p, v))
			}
		}),
	)
}

func predicateObjectList() grammar.Production {
	return grammar.All(
		grammar.Call(func(producer any, b grammar.Bindings) { asProducer(producer).pushPredicateFrame() }),
		verb(),
		objectList(),
		grammar.ZeroOrMore(grammar.All(
			grammar.OneOrMore(grammar.Literal(";", true)),
			grammar.Optional(grammar.All(verb(), objectList())),
		)),
		grammar.Call(func(producer any, b grammar.Bindings) { asProducer(producer).popPredicateFrame() }),
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
		grammar.CapturedCall("obj_literal", grammar.Custom("LITERAL", scanStringWithSuffix), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.emit(resolveStringWithSuffix(p, v))
			}
		}),
		grammar.CapturedCall("obj_number", numberTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) { asProducer(producer).emit(resolveNumberCapture(v)) }
		}),
		grammar.All(grammar.Literal("true", true), grammar.Call(func(producer any, b grammar.Bindings) {
			asProducer(producer).emit(term.TypedLiteral("true", term.XSDBoolean))
		})),
		grammar.All(grammar.Literal("false", true), grammar.Call(func(producer any, b grammar.Bindings) {
			asProducer(producer).emit(term.TypedLiteral("false", term.XSDBoolean))
		})),
		grammar.CapturedCall("obj_iri", iriRefTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.emit(resolveIRIRefCapture(p, v))
			}
		}),
		grammar.CapturedCall("obj_pname", pnameTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.emit(resolvePNameCapture(p, v))
			}
		}),
		grammar.CapturedCall("obj_blank", blankLabelTerm(), func(v string) grammar.Action {
			return func(producer any, b grammar.Bindings) {
				p := asProducer(producer)
				p.emit(p.internBlank(v[2:]))
			}
		}),
		collectionAsObject(),
		blankNodePropertyListAsObject(),
	)
}

func scanStringWithSuffix(text []rune, pos int) (int, bool) {
	n, ok := scanStringLiteral(text, pos)
	if !ok {
		return 0, false
	}
	sn, _ := scanLiteralSuffix(text, pos+n)
	return n + sn, true
}

func resolveStringWithSuffix(p *producer, raw string) term.Term {
	rs := []rune(raw)
	n, _ := scanStringLiteral(rs, 0)
	k := len(string(rs[:n])) // scanStringLiteral counts runes; raw is sliced by bytes
	return resolveStringCapture(p, raw[:k], k, raw[k:])
}

// blankNodePropertyListAsObject parses "[ predicateObjectList? ]" that
// appears where an object is expected: it emits a fresh blank node as the
// object of the enclosing triple, then becomes the subject for whatever
// properties it contains.
func blankNodePropertyListAsObject() grammar.Production {
	return grammar.All(
		grammar.Literal("[", true),
		grammar.Call(func(producer any, b grammar.Bindings) {
			p := asProducer(producer)
			bn := p.freshBlank()
			p.emit(bn)
			p.pushSubject(bn)
		}),
		grammar.Optional(grammar.Reference(func() grammar.Production { return predicateObjectList() })),
		grammar.Literal("]", true),
		grammar.Call(func(producer any, b grammar.Bindings) { asProducer(producer).popSubject() }),
	)
}

// blankNodePropertyListAsSubject parses the same syntax where it is the
// whole statement's subject: the fresh blank node is pushed but never
// popped here, so the trailing predicateObjectList in triples() also
// targets it.
func blankNodePropertyListAsSubject() grammar.Production {
	return grammar.All(
		grammar.Literal("[", true),
		grammar.Call(func(producer any, b grammar.Bindings) {
			p := asProducer(producer)
			p.pushSubject(p.freshBlank())
		}),
		grammar.Optional(grammar.Reference(func() grammar.Production { return predicateObjectList() })),
		grammar.Literal("]", true),
	)
}

func collectionAsObject() grammar.Production {
	return grammar.All(
		grammar.Literal("(", true),
		grammar.Call(func(producer any, b grammar.Bindings) { asProducer(producer).pushCollection() }),
		grammar.ZeroOrMore(grammar.Reference(func() grammar.Production { return object() })),
		grammar.Call(func(producer any, b grammar.Bindings) {
			p := asProducer(producer)
			p.emit(p.popCollection().close())
		}),
		grammar.Literal(")", true),
	)
}

func collectionAsSubject() grammar.Production {
	return grammar.All(
		grammar.Literal("(", true),
		grammar.Call(func(producer any, b grammar.Bindings) { asProducer(producer).pushCollection() }),
		grammar.ZeroOrMore(grammar.Reference(func() grammar.Production { return object() })),
		grammar.Call(func(producer any, b grammar.Bindings) {
			p := asProducer(producer)
			p.pushSubject(p.popCollection().close())
		}),
		grammar.Literal(")", true),
	)
}
