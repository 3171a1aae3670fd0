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

// Package term implements the RDF term model: IRIs, blank nodes, literals
// and variables, their canonical lexical forms, and equality.
package term

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Kind identifies which alternative of the RDF term model a Term holds. It
// is extended past the strict RDF vocabulary with Error and Unbound so that
// sparql/function can represent Kleene's three-valued logic and unbound
// variables with the same type it computes everything else with (see
// spec.md §4.8, §7).
type Kind int

const (
	// KindIRI is an absolute or prefixed IRI.
	KindIRI Kind = iota
	// KindBlank is a blank node.
	KindBlank
	// KindLiteral is a plain, language-tagged or typed literal.
	KindLiteral
	// KindVariable is a SPARQL variable, never stored in a graph.
	KindVariable
	// KindUnbound represents an absent binding (IsBound is false).
	KindUnbound
	// KindError is the distinguished error value used by SPARQL operators.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	case KindUnbound:
		return "unbound"
	case KindError:
		return "error"
	default:
		return "invalid"
	}
}

// Well-known XML Schema and RDF datatype IRIs used throughout the operator
// library and the Turtle producer.
const (
	XSDString          = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean         = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger         = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal         = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDFloat           = "http://www.w3.org/2001/XMLSchema#float"
	XSDDouble          = "http://www.w3.org/2001/XMLSchema#double"
	XSDDateTime        = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDDayTimeDuration = "http://www.w3.org/2001/XMLSchema#dayTimeDuration"
	RDFLangString      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Term is the immutable value used everywhere in weft for a single RDF term
// (or, for Unbound/Error, a control value layered on top of the model). The
// zero Term has KindIRI (the first Kind) and an empty value.
type Term struct {
	kind Kind

	// IRI fields. An IRI's Value() is namespace+local; local alone also holds
	// the Blank label and the Literal/Error/Unbound lexical text.
	prefix    string
	namespace string
	local     string

	// Literal fields, mutually exclusive per spec.md §3.
	datatype string
	lang     string
}

// IRI constructs an absolute IRI term. prefix is the namespace prefix it was
// parsed under, if any ("" for an unprefixed or angle-bracket IRI).
func IRI(prefix, namespace, local string) Term {
	return Term{kind: KindIRI, prefix: prefix, namespace: namespace, local: local}
}

// PlainIRI constructs an IRI term with no associated prefix.
func PlainIRI(value string) Term {
	return Term{kind: KindIRI, namespace: value}
}

var blankCounter uint64

// NewBlank allocates a run-unique blank node, using a uuid to guarantee
// uniqueness across goroutines and across independently loaded documents,
// per spec.md §4.6 ("so two distinct Turtle documents do not collide").
func NewBlank() Term {
	id := atomic.AddUint64(&blankCounter, 1)
	return Term{kind: KindBlank, local: fmt.Sprintf("b%d-%s", id, uuid.NewString()[:8])}
}

// Blank constructs a blank node with an explicit label. Used when
// re-hydrating a label already seen (e.g. within one Turtle document or one
// CONSTRUCT template row).
func Blank(label string) Term {
	return Term{kind: KindBlank, local: label}
}

// Variable constructs a SPARQL variable term.
func Variable(name string) Term {
	return Term{kind: KindVariable, local: name}
}

// IsAnonymousVariable reports whether v is a variable allocated internally
// by the query builder rather than written by the user, per spec.md §3
// ("an anonymous variable has a name starting with _:var").
func IsAnonymousVariable(v Term) bool {
	return v.kind == KindVariable && strings.HasPrefix(v.local, "_:var")
}

// SimpleLiteral constructs a literal with no language tag and no datatype,
// equivalent under comparison to xsd:string (spec.md §4.7).
func SimpleLiteral(lexical string) Term {
	return Term{kind: KindLiteral, local: lexical}
}

// TypedLiteral constructs a literal with an explicit datatype IRI.
func TypedLiteral(lexical, datatypeIRI string) Term {
	return Term{kind: KindLiteral, local: lexical, datatype: datatypeIRI}
}

// LangLiteral constructs a language-tagged literal (datatype rdf:langString).
func LangLiteral(lexical, lang string) Term {
	return Term{kind: KindLiteral, local: lexical, lang: lang}
}

// Unbound is the control value meaning "no binding"; IsBound(Unbound) is
// false, matching spec.md §4.8.
var Unbound = Term{kind: KindUnbound}

// Err constructs the distinguished SPARQL error value carrying a message
// for diagnostics; it participates in Kleene's three-valued logic (spec.md
// §4.8, §7) rather than being a Go error.
func Err(format string, args ...any) Term {
	return Term{kind: KindError, local: fmt.Sprintf(format, args...)}
}

// Kind returns which alternative of the term model t holds.
func (t Term) Kind() Kind { return t.kind }

// IsIRI, IsBlank, IsLiteral, IsVariable, IsError, IsBound implement the
// SPARQL 1.1 type predicates (spec.md §4.8).
func (t Term) IsIRI() bool      { return t.kind == KindIRI }
func (t Term) IsBlank() bool    { return t.kind == KindBlank }
func (t Term) IsLiteral() bool  { return t.kind == KindLiteral }
func (t Term) IsVariable() bool { return t.kind == KindVariable }
func (t Term) IsError() bool    { return t.kind == KindError }
func (t Term) IsBound() bool    { return t.kind != KindUnbound }

// Value returns the full lexical value of the term: namespace+localName for
// an IRI, the label for a blank node, and the lexical form for a literal,
// error or unbound term.
func (t Term) Value() string {
	switch t.kind {
	case KindIRI:
		return t.namespace + t.local
	default:
		return t.local
	}
}

// Prefix returns the namespace prefix an IRI was parsed under, if any.
func (t Term) Prefix() string { return t.prefix }

// Namespace returns the namespace portion of an IRI.
func (t Term) Namespace() string { return t.namespace }

// LocalName returns the local-name portion of an IRI, the blank node label,
// the literal's lexical form, or the variable's name.
func (t Term) LocalName() string { return t.local }

// Lexical is an alias of LocalName for literal terms, improving call-site
// readability.
func (t Term) Lexical() string { return t.local }

// Datatype returns the literal's datatype IRI, or "" if none (simple or
// language-tagged literal).
func (t Term) Datatype() string { return t.datatype }

// Lang returns the literal's language tag, or "" if none.
func (t Term) Lang() string { return t.lang }

// EffectiveDatatype returns the literal's datatype for comparison purposes:
// an explicit datatype if set, rdf:langString if a language tag is set, and
// xsd:string for a simple literal. Non-literal terms return "".
func (t Term) EffectiveDatatype() string {
	if t.kind != KindLiteral {
		return ""
	}
	switch {
	case t.datatype != "":
		return t.datatype
	case t.lang != "":
		return RDFLangString
	default:
		return XSDString
	}
}

// String renders the term's canonical syntax form: "<value>" for an IRI,
// "_:id" for a blank node, a quoted literal (with @lang or ^^<iri> suffix)
// for a literal, "?name" for a variable, and a debug form for the two
// control kinds.
func (t Term) String() string {
	switch t.kind {
	case KindIRI:
		return "<" + t.Value() + ">"
	case KindBlank:
		return "_:" + t.local
	case KindLiteral:
		var b strings.Builder
		b.WriteByte('"')
		b.WriteString(EscapeLiteral(t.local))
		b.WriteByte('"')
		if t.lang != "" {
			b.WriteByte('@')
			b.WriteString(t.lang)
		} else if t.datatype != "" {
			b.WriteString("^^<")
			b.WriteString(t.datatype)
			b.WriteByte('>')
		}
		return b.String()
	case KindVariable:
		return "?" + t.local
	case KindUnbound:
		return ""
	case KindError:
		return "#error(" + t.local + ")"
	default:
		return ""
	}
}

// Equal reports canonical equality: same kind, same full value, and for
// literals the same datatype/lang. Per spec.md §9 "RDF term identity",
// "5"^^xsd:integer is not equal to "05"^^xsd:integer — no numeric
// normalisation happens here; operators that need numeric equality use
// sparql/function's numeric promotion instead.
func Equal(a, b Term) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindLiteral:
		return a.local == b.local && a.datatype == b.datatype && a.lang == b.lang
	case KindIRI:
		return a.Value() == b.Value()
	default:
		return a.local == b.local
	}
}
