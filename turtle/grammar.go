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
	"strconv"
	"strings"
	"unicode"

	"github.com/weftdb/weft/grammar"
	"github.com/weftdb/weft/term"
)

// statementGrammar builds the production tree for exactly one Turtle
// statement (a directive or a triples block terminated by '.'). A fresh
// tree is built per statement since the producer's subject/predicate
// stacks must start empty at each top-level '.'.
func statementGrammar() *grammar.Grammar {
	root := grammar.AnyOf(
		prefixDirective(),
		sparqlPrefixDirective(),
		baseDirective(),
		grammar.All(triples(), grammar.Literal(".", true)),
	)
	return &grammar.Grammar{Root: root}
}

func asProducer(p any) *producer { return p.(*producer) }

// --- terminals ---

func iriRefTerm() grammar.Production {
	return grammar.Custom("IRIREF", scanIRIRef)
}

func scanIRIRef(text []rune, pos int) (int, bool) {
	if pos >= len(text) || text[pos] != '<' {
		return 0, false
	}
	i := pos + 1
	for i < len(text) {
		switch text[i] {
		case '>':
			return i - pos + 1, true
		case '\\':
			i += 2
			continue
		case '<', '"', '{', '}', '|', '^', '`', ' ', '\t', '\n', '\r':
			if text[i] == '<' {
				return 0, false
			}
		}
		i++
	}
	return 0, false
}

func iriRefValue(raw string) (string, error) {
	inner := raw[1 : len(raw)-1]
	return term.UnescapeLiteral(inner)
}

func pnameTerm() grammar.Production {
	return grammar.Custom("PNAME", scanPName)
}

func isPNChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

func scanPName(text []rune, pos int) (int, bool) {
	i := pos
	for i < len(text) && isPNChar(text[i]) {
		i++
	}
	if i >= len(text) || text[i] != ':' {
		return 0, false
	}
	i++
	for i < len(text) && (isPNChar(text[i]) || text[i] == '.') {
		i++
	}
	// trailing '.' is not part of a local name per the Turtle grammar.
	for i > pos && text[i-1] == '.' {
		i--
	}
	return i - pos, true
}

func splitPName(raw string) (prefix, local string) {
	idx := strings.IndexByte(raw, ':')
	return raw[:idx], raw[idx+1:]
}

func blankLabelTerm() grammar.Production {
	return grammar.Custom("BLANK_NODE_LABEL", scanBlankLabel)
}

func scanBlankLabel(text []rune, pos int) (int, bool) {
	if pos+1 >= len(text) || text[pos] != '_' || text[pos+1] != ':' {
		return 0, false
	}
	i := pos + 2
	for i < len(text) && (isPNChar(text[i]) || text[i] == '.') {
		i++
	}
	for i > pos+2 && text[i-1] == '.' {
		i--
	}
	if i == pos+2 {
		return 0, false
	}
	return i - pos, true
}

func stringLiteralTerm() grammar.Production {
	return grammar.Custom("STRING", scanStringLiteral)
}

func scanStringLiteral(text []rune, pos int) (int, bool) {
	if pos >= len(text) || (text[pos] != '"' && text[pos] != '\'') {
		return 0, false
	}
	q := text[pos]
	triple := pos+2 < len(text) && text[pos+1] == q && text[pos+2] == q
	delim := 1
	if triple {
		delim = 3
	}
	i := pos + delim
	for i < len(text) {
		if text[i] == '\\' && i+1 < len(text) {
			i += 2
			continue
		}
		if text[i] == q {
			if !triple {
				return i - pos + 1, true
			}
			if i+2 < len(text) && text[i+1] == q && text[i+2] == q {
				return i - pos + 3, true
			}
		}
		i++
	}
	return 0, false
}

// scanLiteralSuffix matches an optional "@lang" or "^^iri" suffix
// immediately following a string literal, with no intervening
// whitespace.
func scanLiteralSuffix(text []rune, pos int) (int, bool) {
	if pos >= len(text) {
		return 0, true
	}
	switch {
	case text[pos] == '@':
		i := pos + 1
		for i < len(text) && (unicode.IsLetter(text[i]) || unicode.IsDigit(text[i]) || text[i] == '-') {
			i++
		}
		return i - pos, true
	case pos+1 < len(text) && text[pos] == '^' && text[pos+1] == '^':
		i := pos + 2
		if n, ok := scanIRIRef(text, i); ok {
			return i - pos + n, true
		}
		if n, ok := scanPName(text, i); ok {
			return i - pos + n, true
		}
		return 0, false
	}
	return 0, true
}

func numberTerm() grammar.Production {
	return grammar.Custom("NUMBER", scanNumber)
}

func scanNumber(text []rune, pos int) (int, bool) {
	i := pos
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		i++
	}
	digitsBefore := i
	for i < len(text) && unicode.IsDigit(text[i]) {
		i++
	}
	sawDigits := i > digitsBefore
	if i < len(text) && text[i] == '.' {
		j := i + 1
		for j < len(text) && unicode.IsDigit(text[j]) {
			j++
		}
		if j > i+1 {
			i = j
			sawDigits = true
		}
	}
	if !sawDigits {
		return 0, false
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < len(text) && (text[j] == '+' || text[j] == '-') {
			j++
		}
		k := j
		for k < len(text) && unicode.IsDigit(text[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i - pos, true
}

func keywordA() grammar.Production {
	return grammar.Custom("KEYWORD_A", func(text []rune, pos int) (int, bool) {
		if pos >= len(text) || text[pos] != 'a' {
			return 0, false
		}
		if pos+1 < len(text) && isPNChar(text[pos+1]) {
			return 0, false
		}
		return 1, true
	})
}

// --- resource resolution ---

func resolveIRIRefCapture(p *producer, raw string) term.Term {
	value, err := iriRefValue(raw)
	if err != nil {
		return term.Err("turtle: %v", err)
	}
	resolved, err := term.ResolveRelative(value, p.base)
	if err != nil {
		return term.Err("turtle: %v", err)
	}
	return term.PlainIRI(resolved)
}

func resolvePNameCapture(p *producer, raw string) term.Term {
	prefix, local := splitPName(raw)
	ns, ok := p.namespaces[prefix]
	if !ok {
		return term.Err("turtle: unknown prefix %q", prefix)
	}
	return term.IRI(prefix, ns, term.UnescapeLocalName(local))
}

func resolveStringCapture(p *producer, raw string, _ int, suffix string) term.Term {
	triple := len(raw) >= 6 && raw[0] == raw[1] && raw[1] == raw[2]
	delim := 1
	if triple {
		delim = 3
	}
	body := raw[delim : len(raw)-delim]
	lexical, err := term.UnescapeLiteral(body)
	if err != nil {
		return term.Err("turtle: %v", err)
	}

	switch {
	case strings.HasPrefix(suffix, "@"):
		return term.LangLiteral(lexical, suffix[1:])
	case strings.HasPrefix(suffix, "^^"):
		dtRaw := suffix[2:]
		var dt term.Term
		if strings.HasPrefix(dtRaw, "<") {
			dt = resolveIRIRefCapture(p, dtRaw)
		} else {
			dt = resolvePNameCapture(p, dtRaw)
		}
		return term.TypedLiteral(lexical, dt.Value())
	default:
		return term.SimpleLiteral(lexical)
	}
}

func resolveNumberCapture(raw string) term.Term {
	switch {
	case strings.ContainsAny(raw, ".eE"):
		if strings.ContainsAny(raw, "eE") {
			return term.TypedLiteral(raw, term.XSDDouble)
		}
		return term.TypedLiteral(raw, term.XSDDecimal)
	default:
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return term.TypedLiteral(raw, term.XSDInteger)
		}
		return term.TypedLiteral(raw, term.XSDDecimal)
	}
}
