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

// Package grammar implements the SPARQL 1.1 query grammar, translating
// query text into a sparql.Group tree via the grammar package's
// backtracking production engine — the same engine the turtle package
// drives for Turtle, with sparql.Builder playing the producer role
// turtle.producer plays there.
package grammar

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/weftdb/weft/grammar"
)

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// keyword matches word case-insensitively, requiring it not be followed
// by another identifier character, so "DESC" never eats the first four
// letters of "DESCRIBE".
func keyword(word string) grammar.Production {
	runes := []rune(word)
	return grammar.Custom("KEYWORD_"+word, func(text []rune, pos int) (int, bool) {
		if pos+len(runes) > len(text) {
			return 0, false
		}
		if !strings.EqualFold(string(text[pos:pos+len(runes)]), word) {
			return 0, false
		}
		if pos+len(runes) < len(text) && isWordChar(text[pos+len(runes)]) {
			return 0, false
		}
		return len(runes), true
	})
}

func isPNChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

func iriRefTerm() grammar.Production { return grammar.Custom("IRIREF", scanIRIRef) }

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
			return 0, false
		}
		i++
	}
	return 0, false
}

func pnameTerm() grammar.Production { return grammar.Custom("PNAME", scanPName) }

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
	for i > pos && text[i-1] == '.' {
		i--
	}
	return i - pos, true
}

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

func splitPName(raw string) (prefix, local string) {
	idx := strings.IndexByte(raw, ':')
	return raw[:idx], raw[idx+1:]
}

func blankLabelTerm() grammar.Production { return grammar.Custom("BLANK_NODE_LABEL", scanBlankLabel) }

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

// varTerm matches a SPARQL variable: "?name" or "$name".
func varTerm() grammar.Production { return grammar.Custom("VAR", scanVar) }

func scanVar(text []rune, pos int) (int, bool) {
	if pos >= len(text) || (text[pos] != '?' && text[pos] != '$') {
		return 0, false
	}
	i := pos + 1
	start := i
	for i < len(text) && isPNChar(text[i]) {
		i++
	}
	if i == start {
		return 0, false
	}
	return i - pos, true
}

func stringLiteralTerm() grammar.Production { return grammar.Custom("STRING", scanStringWithSuffix) }

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

func scanStringWithSuffix(text []rune, pos int) (int, bool) {
	n, ok := scanStringLiteral(text, pos)
	if !ok {
		return 0, false
	}
	sn, _ := scanLiteralSuffix(text, pos+n)
	return n + sn, true
}

func numberTerm() grammar.Production { return grammar.Custom("NUMBER", scanNumber) }

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

func resolveNumberLexical(raw string) (string, string) {
	switch {
	case strings.ContainsAny(raw, "eE"):
		return raw, "http://www.w3.org/2001/XMLSchema#double"
	case strings.Contains(raw, "."):
		return raw, "http://www.w3.org/2001/XMLSchema#decimal"
	default:
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return raw, "http://www.w3.org/2001/XMLSchema#integer"
		}
		return raw, "http://www.w3.org/2001/XMLSchema#decimal"
	}
}

// stripComments removes every "#" to end-of-line comment that is not
// inside a string or IRIREF literal, so the grammar engine (which only
// skips whitespace between tokens, not comments) never has to know
// comments exist.
func stripComments(q string) string {
	runes := []rune(q)
	var b strings.Builder
	i := 0
	for i < len(runes) {
		switch runes[i] {
		case '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case '"', '\'':
			if n, ok := scanStringLiteral(runes, i); ok {
				b.WriteString(string(runes[i : i+n]))
				i += n
				continue
			}
			b.WriteRune(runes[i])
			i++
		case '<':
			if n, ok := scanIRIRef(runes, i); ok {
				b.WriteString(string(runes[i : i+n]))
				i += n
				continue
			}
			b.WriteRune(runes[i])
			i++
		default:
			b.WriteRune(runes[i])
			i++
		}
	}
	return b.String()
}
