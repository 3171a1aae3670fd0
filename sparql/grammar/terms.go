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
	"strings"

	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/term"
)

func asBuilder(p any) *sparql.Builder { return p.(*sparql.Builder) }

func resolveIRIRefCapture(b *sparql.Builder, raw string) term.Term {
	return b.ResolveIRIRef(raw)
}

func resolvePNameCapture(b *sparql.Builder, raw string) term.Term {
	prefix, local := splitPName(raw)
	return b.ResolvePName(prefix, local)
}

func resolveVarCapture(b *sparql.Builder, raw string) term.Term {
	return b.ResolveVar(raw[1:])
}

func resolveBlankCapture(b *sparql.Builder, raw string) term.Term {
	return b.InternBlank(raw[2:])
}

func resolveStringWithSuffix(b *sparql.Builder, raw string) term.Term {
	n, _ := scanStringLiteral([]rune(raw), 0)
	body := raw[:n]
	suffix := raw[n:]

	triple := len(body) >= 6 && body[0] == body[1] && body[1] == body[2]
	delim := 1
	if triple {
		delim = 3
	}
	lexical, err := term.UnescapeLiteral(body[delim : len(body)-delim])
	if err != nil {
		return term.Err("sparql: %v", err)
	}

	switch {
	case strings.HasPrefix(suffix, "@"):
		return term.LangLiteral(lexical, suffix[1:])
	case strings.HasPrefix(suffix, "^^"):
		dtRaw := suffix[2:]
		var dt term.Term
		if strings.HasPrefix(dtRaw, "<") {
			dt = resolveIRIRefCapture(b, dtRaw)
		} else {
			dt = resolvePNameCapture(b, dtRaw)
		}
		return term.TypedLiteral(lexical, dt.Value())
	default:
		return term.SimpleLiteral(lexical)
	}
}

func resolveNumberCapture(raw string) term.Term {
	lexical, datatype := resolveNumberLexical(raw)
	return term.TypedLiteral(lexical, datatype)
}
