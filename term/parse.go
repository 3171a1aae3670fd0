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

package term

import (
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrParse is returned for any malformed term literal form.
var ErrParse = errors.NewKind("term: cannot parse %q as a term: %s")

// Parse dispatches on the first character of text (spec.md §4.7,
// "Resource.parse"): a quote introduces a Literal, "_:" a Blank, and
// anything else an IRI (either <...> or a prefixed name).
func Parse(text string, namespaces map[string]string, base string) (Term, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Term{}, ErrParse.New(text, "empty input")
	}
	switch {
	case text[0] == '\'' || text[0] == '"':
		return parseLiteral(text, namespaces)
	case strings.HasPrefix(text, "_:"):
		return Blank(text[2:]), nil
	case text[0] == '<' && text[len(text)-1] == '>':
		return ParseAngleIRI(text[1:len(text)-1], base)
	default:
		return ResolvePrefixed(text, namespaces)
	}
}

// parseLiteral parses the four Turtle quoted-string forms plus an optional
// trailing @lang or ^^<iri>/^^prefix:local (spec.md §4.7).
func parseLiteral(text string, namespaces map[string]string) (Term, error) {
	quote, body, rest, err := splitQuoted(text)
	if err != nil {
		return Term{}, err
	}
	lexical, err := UnescapeLiteral(body)
	if err != nil {
		return Term{}, ErrParse.New(text, err.Error())
	}
	_ = quote

	switch {
	case rest == "":
		return SimpleLiteral(lexical), nil
	case rest[0] == '@':
		return LangLiteral(lexical, rest[1:]), nil
	case strings.HasPrefix(rest, "^^"):
		dt := rest[2:]
		if strings.HasPrefix(dt, "<") && strings.HasSuffix(dt, ">") {
			return TypedLiteral(lexical, dt[1:len(dt)-1]), nil
		}
		resolved, err := ResolvePrefixed(dt, namespaces)
		if err != nil {
			return Term{}, err
		}
		return TypedLiteral(lexical, resolved.Value()), nil
	default:
		return Term{}, ErrParse.New(text, "unexpected trailing characters")
	}
}

// splitQuoted identifies and strips one of the four Turtle string
// delimiters ("""…""", '''…''', "…", '…'), returning the quote rune used,
// the literal body, and whatever trails the closing quote.
func splitQuoted(text string) (quote byte, body, rest string, err error) {
	quote = text[0]
	long := len(text) >= 6 && text[1] == quote && text[2] == quote
	delim := string(quote)
	if long {
		delim = strings.Repeat(string(quote), 3)
	}
	remainder := text[len(delim):]
	end := findUnescapedDelim(remainder, delim)
	if end < 0 {
		return 0, "", "", ErrParse.New(text, "unterminated string literal")
	}
	return quote, remainder[:end], remainder[end+len(delim):], nil
}

func findUnescapedDelim(s, delim string) int {
	for i := 0; i+len(delim) <= len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i:i+len(delim)] == delim {
			return i
		}
	}
	return -1
}
