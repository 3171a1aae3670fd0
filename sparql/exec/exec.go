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
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/store"
	"github.com/weftdb/weft/term"
	"github.com/weftdb/weft/turtle"
)

// Result is the outcome of executing one query: exactly one of Table,
// Ask or Triples is populated, depending on root.Label (spec.md §4.10).
type Result struct {
	Table   *sparql.Table
	Ask     *bool
	Triples []turtle.Triple
}

// Execute evaluates root against ds's active graph (spec.md §4.3, §4.10).
// A GRAPH clause within root may switch to a different named graph for
// its own subtree; Execute itself always starts from the dataset's
// currently active graph.
func Execute(ds *store.Dataset, root *sparql.Group) *Result {
	g := ds.Active()
	switch root.Label {
	case sparql.LabelAsk:
		ok := evalAsk(ds, g, root)
		return &Result{Ask: &ok}
	case sparql.LabelConstruct:
		return &Result{Triples: evalConstruct(ds, g, root)}
	case sparql.LabelDescribe:
		return &Result{Triples: evalDescribeQuery(ds, g, root)}
	default:
		return &Result{Table: evalSelect(ds, g, root)}
	}
}

// evalDescribeQuery resolves a DESCRIBE query's resource list (spec.md
// §4.10 rule 3's CONSTRUCT-based redefinition, SPEC_FULL.md's
// Supplemented Features): concrete IRIs are described directly; a
// variable is resolved by first evaluating root's own WHERE pattern, then
// describing every distinct value it took.
func evalDescribeQuery(ds *store.Dataset, g *store.Graph, root *sparql.Group) []turtle.Triple {
	var resources []term.Term
	var vars []string
	for _, t := range root.DescribeTerms {
		if t.IsVariable() {
			vars = append(vars, t.LocalName())
		} else {
			resources = append(resources, t)
		}
	}

	if len(vars) > 0 {
		table := evalGroupContents(ds, g, root, identityTable())
		seen := map[string]bool{}
		for _, v := range vars {
			idx := table.ColumnIndex(v)
			if idx < 0 {
				continue
			}
			for _, row := range table.Rows {
				cell := row[idx]
				if cell == "" || seen[cell] {
					continue
				}
				seen[cell] = true
				resources = append(resources, sparql.ParseCell(cell))
			}
		}
	}

	return evalDescribe(ds, g, resources)
}
