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
	"fmt"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrInvalidBase is raised when ResolveRelative is given a base IRI with no
// scheme, matching spec.md §7's "argument error... base IRI without
// scheme".
var ErrInvalidBase = errors.NewKind("term: base IRI %q has no scheme")

// ResolveRelative resolves ref against base following RFC 3986 §5.3,
// including dot-segment removal, per spec.md §8 ("IRI resolution").
func ResolveRelative(ref, base string) (string, error) {
	if ref == "" {
		return base, nil
	}
	r, err := splitURI(ref)
	if err != nil {
		return "", err
	}
	if r.scheme != "" {
		return recompose(r.scheme, r.authority, removeDotSegments(r.path), r.query, r.fragment), nil
	}
	b, err := splitURI(base)
	if err != nil {
		return "", err
	}
	if b.scheme == "" {
		return "", ErrInvalidBase.New(base)
	}
	if r.hasAuthority {
		return recompose(b.scheme, r.authority, removeDotSegments(r.path), r.query, r.fragment), nil
	}
	if r.path == "" {
		path := b.path
		q := r.query
		if q == "" {
			q = b.query
		}
		return recompose(b.scheme, b.authority, path, q, r.fragment), nil
	}
	var mergedPath string
	if strings.HasPrefix(r.path, "/") {
		mergedPath = r.path
	} else {
		mergedPath = merge(b, r.path)
	}
	return recompose(b.scheme, b.authority, removeDotSegments(mergedPath), r.query, r.fragment), nil
}

type parsedURI struct {
	scheme       string
	authority    string
	hasAuthority bool
	path         string
	query        string
	hasQuery     bool
	fragment     string
	hasFragment  bool
}

func splitURI(s string) (parsedURI, error) {
	var p parsedURI
	rest := s
	if i := strings.Index(rest, "#"); i >= 0 {
		p.fragment = rest[i+1:]
		p.hasFragment = true
		rest = rest[:i]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		p.query = rest[i+1:]
		p.hasQuery = true
		rest = rest[:i]
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		scheme := rest[:i]
		if isScheme(scheme) {
			p.scheme = scheme
			rest = rest[i+1:]
		}
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		p.hasAuthority = true
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			p.authority = rest[:i]
			rest = rest[i:]
		} else {
			p.authority = rest
			rest = ""
		}
	}
	p.path = rest
	return p, nil
}

func isScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		case (r == '+' || r == '-' || r == '.') && i > 0:
		default:
			return false
		}
	}
	return true
}

func merge(base parsedURI, relPath string) string {
	if base.hasAuthority && base.path == "" {
		return "/" + relPath
	}
	if i := strings.LastIndexByte(base.path, '/'); i >= 0 {
		return base.path[:i+1] + relPath
	}
	return relPath
}

func removeDotSegments(path string) string {
	var out []string
	input := path
	for input != "" {
		switch {
		case strings.HasPrefix(input, "../"):
			input = input[3:]
		case strings.HasPrefix(input, "./"):
			input = input[2:]
		case strings.HasPrefix(input, "/./"):
			input = "/" + input[3:]
		case input == "/.":
			input = "/"
		case strings.HasPrefix(input, "/../"):
			input = "/" + input[4:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case input == "/..":
			input = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case input == ".", input == "..":
			input = ""
		default:
			var seg string
			rest := input
			if rest[0] == '/' {
				seg = "/"
				rest = rest[1:]
			}
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				seg += rest[:i]
				input = rest[i:]
			} else {
				seg += rest
				input = ""
			}
			out = append(out, seg)
		}
	}
	return strings.Join(out, "")
}

func recompose(scheme, authority, path, query, fragment string) string {
	var b strings.Builder
	if scheme != "" {
		b.WriteString(scheme)
		b.WriteByte(':')
	}
	if authority != "" || strings.HasPrefix(path, "//") {
		b.WriteString("//")
		b.WriteString(authority)
	}
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	if fragment != "" {
		b.WriteByte('#')
		b.WriteString(fragment)
	}
	return b.String()
}

// SplitPrefixed splits a "prefix:local" name into its two parts. A name
// with no colon is returned entirely as local with an empty prefix.
func SplitPrefixed(name string) (prefix, local string) {
	i := strings.IndexByte(name, ':')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

// ErrUnknownPrefix is returned when a prefixed name uses a prefix with no
// registered namespace.
var ErrUnknownPrefix = errors.NewKind("term: unknown namespace prefix %q")

// ResolvePrefixed resolves a "prefix:local" name against namespaces, a
// mapping of prefix to namespace IRI. An unregistered, non-empty prefix is
// an error; the empty prefix with no registration keeps the empty
// namespace, per spec.md §4.7 ("An IRI with no registered prefix keeps the
// empty prefix").
func ResolvePrefixed(name string, namespaces map[string]string) (Term, error) {
	prefix, local := SplitPrefixed(name)
	ns, ok := namespaces[prefix]
	if !ok {
		if prefix == "" {
			return IRI("", "", UnescapeLocalName(local)), nil
		}
		return Term{}, ErrUnknownPrefix.New(prefix)
	}
	return IRI(prefix, ns, UnescapeLocalName(local)), nil
}

// ErrInvalidIRI reports a malformed angle-bracketed IRI reference.
var ErrInvalidIRI = errors.NewKind("term: invalid IRI reference %q: %s")

// ParseAngleIRI resolves an angle-bracketed IRI reference "<...>" (brackets
// already stripped by the caller) against an optional base.
func ParseAngleIRI(ref, base string) (Term, error) {
	value := ref
	if base != "" {
		resolved, err := ResolveRelative(ref, base)
		if err != nil {
			return Term{}, ErrInvalidIRI.New(ref, err.Error())
		}
		value = resolved
	}
	return PlainIRI(value), nil
}

// ShortForm renders an IRI term using its prefix if it has one, e.g.
// "rdf:type"; absolute <...> form otherwise.
func ShortForm(t Term) string {
	if !t.IsIRI() || t.prefix == "" {
		return t.String()
	}
	return fmt.Sprintf("%s:%s", t.prefix, EscapeLocalName(t.local))
}
