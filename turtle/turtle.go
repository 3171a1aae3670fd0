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

// Package turtle implements a W3C Turtle producer (spec.md §4.6) on top
// of the grammar package: it splits a document into top-level,
// statement-terminated chunks, parses each chunk with a Turtle grammar,
// and emits triples into a queue as the chunk's deferred actions run.
package turtle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/google/uuid"
	"github.com/weftdb/weft/term"
)

// Triple is one parsed RDF statement.
type Triple struct {
	Subject   term.Term
	Predicate term.Term
	Object    term.Term
}

// ErrParseDocument is returned when any statement in a document fails to
// parse; per spec.md §4.6 the whole document is then abandoned.
var ErrParseDocument = errors.NewKind("turtle: %s")

// Parse reads a complete Turtle document from r and returns every triple
// it asserts. base is the document's base IRI, used to resolve relative
// IRI references (term.ResolveRelative).
func Parse(r io.Reader, base string) ([]Triple, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	p := newProducer(base, uuid.NewString()[:8])
	for _, stmt := range splitStatements(string(data)) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		g := statementGrammar()
		if _, err := g.Parse(stmt, p); err != nil {
			return nil, ErrParseDocument.New(fmt.Sprintf("%v (in %q)", err, truncate(stmt, 80)))
		}
	}
	return p.triples, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

// splitStatements breaks a document into top-level, '.'-terminated
// chunks, respecting nested [...] / (...) and both single- and
// triple-quoted string literals so a '.' inside any of those does not
// end the statement early.
func splitStatements(text string) []string {
	var (
		stmts   []string
		cur     strings.Builder
		depth   int
		runes   = []rune(text)
		i       = 0
		n       = len(runes)
	)
	for i < n {
		r := runes[i]
		switch {
		case r == '#' && depth == 0 && !inToken(cur.String()):
			for i < n && runes[i] != '\n' {
				i++
			}
			continue
		case r == '"' || r == '\'':
			quote, width := readQuoted(runes, i)
			cur.WriteString(quote)
			i += width
			continue
		case r == '<':
			iriref, width := readIRIRef(runes, i)
			cur.WriteString(iriref)
			i += width
			continue
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case r == '.' && depth == 0:
			cur.WriteRune(r)
			stmts = append(stmts, cur.String())
			cur.Reset()
			i++
			continue
		}
		cur.WriteRune(r)
		i++
	}
	if strings.TrimSpace(cur.String()) != "" {
		stmts = append(stmts, cur.String())
	}
	return stmts
}

// inToken is a narrow heuristic: '#' only opens a comment when it is not
// part of a PN_LOCAL fragment identifier token already under
// construction; weft does not support fragment-bearing local names
// containing literal '#' outside IRIREFs, so this always returns false
// at the statement-splitting layer. A '#' inside an IRIREF never reaches
// this check at all, since readIRIRef consumes the whole "<...>" token
// first.
func inToken(string) bool { return false }

func readQuoted(runes []rune, i int) (string, int) {
	q := runes[i]
	n := len(runes)
	triple := i+2 < n && runes[i+1] == q && runes[i+2] == q
	delimLen := 1
	if triple {
		delimLen = 3
	}
	var b strings.Builder
	for k := 0; k < delimLen; k++ {
		b.WriteRune(q)
	}
	j := i + delimLen
	for j < n {
		if runes[j] == '\\' && j+1 < n {
			b.WriteRune(runes[j])
			b.WriteRune(runes[j+1])
			j += 2
			continue
		}
		if runes[j] == q {
			if !triple {
				b.WriteRune(runes[j])
				j++
				break
			}
			if j+2 < n && runes[j+1] == q && runes[j+2] == q {
				b.WriteRune(q)
				b.WriteRune(q)
				b.WriteRune(q)
				j += 3
				break
			}
		}
		b.WriteRune(runes[j])
		j++
	}
	return b.String(), j - i
}

// readIRIRef consumes a complete "<...>" token so that a '.' or '#'
// inside an IRI (e.g. "<http://example.org/a.ttl#frag>") is never
// mistaken for a statement terminator or a comment opener by
// splitStatements. It mirrors scanIRIRef's escaping rule but does not
// validate disallowed characters, since that is the parser's job; here
// only the boundary matters.
func readIRIRef(runes []rune, i int) (string, int) {
	n := len(runes)
	var b strings.Builder
	b.WriteRune(runes[i])
	j := i + 1
	for j < n {
		if runes[j] == '\\' && j+1 < n {
			b.WriteRune(runes[j])
			b.WriteRune(runes[j+1])
			j += 2
			continue
		}
		if runes[j] == '>' {
			b.WriteRune(runes[j])
			j++
			break
		}
		b.WriteRune(runes[j])
		j++
	}
	return b.String(), j - i
}
