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

package store

import "github.com/weftdb/weft/index"

// TransitiveClosureRule returns a Rule that, whenever a triple using
// predicate p is asserted, also asserts the transitive edges it creates
// through existing p-edges: asserting (a, p, b) when (x, p, a) already
// holds also asserts (x, p, b), and symmetrically for (b, p, y). This is
// one of the two example rule constructors called out in SPEC_FULL.md §5
// as grounding for spec.md §4.2's inference hook ("user-provided rewrite
// rules"); it is opt-in and not registered by default.
func TransitiveClosureRule(p string) Rule {
	var self Rule
	self = func(g *Graph, s, pred, o string) {
		if pred != p {
			return
		}
		// x -p-> s, and we're about to add s -p-> o: also add x -p-> o.
		incoming := g.pos.Enumerate(index.Specific(p), index.Specific(s), index.Any())
		for _, r := range incoming {
			x := r.K3
			if x != s && !g.spo.Contains(x, p, o) {
				g.assertLocked(x, p, o)
			}
		}
		// o -p-> y already, and we're about to add s -p-> o: also add s -p-> y.
		outgoing := g.spo.Enumerate(index.Specific(o), index.Specific(p), index.Any())
		for _, r := range outgoing {
			y := r.K3
			if y != o && !g.spo.Contains(s, p, y) {
				g.assertLocked(s, p, y)
			}
		}
	}
	return self
}

// SubclassRewriteRule returns a Rule implementing RDFS-style subclass
// propagation: whenever (x, rdf:type, sub) is asserted and (sub, subPred,
// super) already holds, it also asserts (x, rdf:type, super). subPred is
// typically an rdfs:subClassOf-shaped predicate IRI supplied by the caller,
// since the core has no built-in RDFS vocabulary (spec.md §1, "no
// inference beyond user-provided rewrite rules").
func SubclassRewriteRule(typePred, subPred string) Rule {
	return func(g *Graph, s, pred, o string) {
		if pred != typePred {
			return
		}
		supers := g.spo.Enumerate(index.Specific(o), index.Specific(subPred), index.Any())
		for _, r := range supers {
			super := r.K3
			if !g.spo.Contains(s, typePred, super) {
				g.assertLocked(s, typePred, super)
			}
		}
	}
}
