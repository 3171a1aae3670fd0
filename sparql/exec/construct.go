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

package exec

import (
	"fmt"

	"github.com/weftdb/weft/index"
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/store"
	"github.com/weftdb/weft/term"
	"github.com/weftdb/weft/turtle"
)

// evalConstruct implements CONSTRUCT (spec.md §4.10 rule 3): the template
// is instantiated once per solution row, with a fresh blank node per
// template blank per row, and any template triple referencing an unbound
// variable is simply skipped rather than erroring.
func evalConstruct(ds *store.Dataset, g *store.Graph, grp *sparql.Group) []turtle.Triple {
	table := evalGroupContents(ds, g, grp, identityTable())
	var out []turtle.Triple
	for i, row := range table.Rows {
		b := sparql.Row{Columns: table.Columns, Values: row}
		blanks := map[string]term.Term{}
		for _, pat := range grp.ConstructTemplate {
			s, ok1 := instantiate(pat.S, b, blanks, i)
			p, ok2 := instantiate(pat.P, b, blanks, i)
			o, ok3 := instantiate(pat.O, b, blanks, i)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			out = append(out, turtle.Triple{Subject: s, Predicate: p, Object: o})
		}
	}
	return dedupTriples(out)
}

// instantiate resolves one template term against a solution row: a bound
// term.Term passes through unchanged, a variable is looked up (failing
// the triple if unbound), and a blank node is remapped to one fresh per
// (template label, row).
func instantiate(t term.Term, b sparql.Bindings, blanks map[string]term.Term, row int) (term.Term, bool) {
	switch t.Kind() {
	case term.KindVariable:
		v := b.Lookup(t.LocalName())
		return v, v.IsBound()
	case term.KindBlank:
		fresh, ok := blanks[t.LocalName()]
		if !ok {
			fresh = term.Blank(fmt.Sprintf("%s-row%d", t.LocalName(), row))
			blanks[t.LocalName()] = fresh
		}
		return fresh, true
	default:
		return t, true
	}
}

func dedupTriples(in []turtle.Triple) []turtle.Triple {
	seen := make(map[string]bool, len(in))
	out := make([]turtle.Triple, 0, len(in))
	for _, t := range in {
		key := t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// evalDescribe implements DESCRIBE as CONSTRUCT over "?r ?p ?o" for every
// described resource r, unioned and de-duplicated (SPEC_FULL.md's
// Supplemented Features, item 5).
func evalDescribe(ds *store.Dataset, g *store.Graph, resources []term.Term) []turtle.Triple {
	var out []turtle.Triple
	for _, r := range resources {
		sol := g.Enumerate(index.Specific(r.String()), index.Any(), index.Any())
		it := sol.Rows()
		for {
			vals, ok := it.Next()
			if !ok {
				break
			}
			out = append(out, turtle.Triple{
				Subject:   r,
				Predicate: sparql.ParseCell(vals[0]),
				Object:    sparql.ParseCell(vals[1]),
			})
		}
		it.Close()
	}
	return dedupTriples(out)
}
