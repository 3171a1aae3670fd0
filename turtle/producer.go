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
	"fmt"

	"github.com/weftdb/weft/term"
)

// producer holds the Turtle grammar's semantic-action state (spec.md
// §4.6): a subject/predicate/emitter stack for nested blank-node
// property lists and collections, plus a per-run blank-node remapping
// table so two distinct parses of "_:b0" never collide.
type producer struct {
	base       string
	namespaces map[string]string

	runPrefix   string
	blankRemap  map[string]string
	anonCounter int

	subjectStack   []term.Term
	predicateStack []term.Term
	// emitterStack holds, for each open collection, the object-consumer
	// (its collectionBuilder's add) that receives the collection's
	// members; blank-node property lists do not push onto it.
	emitterStack    []func(o term.Term)
	collectionStack []*collectionBuilder

	triples []Triple

	// pendingPrefixName is a short-lived scratch slot bridging the two
	// deferred actions of a single "@prefix"/"PREFIX" directive (name
	// capture, then IRI capture); safe because exactly one directive's
	// actions run per statement parse, strictly in append order, with
	// nothing else able to observe or mutate it in between.
	pendingPrefixName string
}

func newProducer(base, runPrefix string) *producer {
	return &producer{
		base:       base,
		namespaces: make(map[string]string),
		runPrefix:  runPrefix,
		blankRemap: make(map[string]string),
	}
}

func (p *producer) setPrefix(prefix, iri string) {
	p.namespaces[prefix] = iri
}

func (p *producer) setBase(iriRaw string, escErr error) {
	if escErr != nil {
		return
	}
	resolved, err := term.ResolveRelative(iriRaw, p.base)
	if err == nil {
		p.base = resolved
	} else {
		p.base = iriRaw
	}
}

// internBlank maps an external label (as written in the document, "b0"
// in "_:b0") to a run-unique internal label.
func (p *producer) internBlank(label string) term.Term {
	internal, ok := p.blankRemap[label]
	if !ok {
		internal = fmt.Sprintf("%s-%s", p.runPrefix, label)
		p.blankRemap[label] = internal
	}
	return term.Blank(internal)
}

func (p *producer) freshBlank() term.Term {
	p.anonCounter++
	return term.Blank(fmt.Sprintf("%s-anon%d", p.runPrefix, p.anonCounter))
}

func (p *producer) pushSubject(s term.Term) { p.subjectStack = append(p.subjectStack, s) }

func (p *producer) popSubject() {
	p.subjectStack = p.subjectStack[:len(p.subjectStack)-1]
}

func (p *producer) currentSubject() term.Term {
	return p.subjectStack[len(p.subjectStack)-1]
}

func (p *producer) setPredicate(pred term.Term) {
	if len(p.predicateStack) == 0 {
		p.predicateStack = append(p.predicateStack, pred)
		return
	}
	p.predicateStack[len(p.predicateStack)-1] = pred
}

func (p *producer) pushPredicateFrame() { p.predicateStack = append(p.predicateStack, term.Unbound) }

func (p *producer) popPredicateFrame() {
	p.predicateStack = p.predicateStack[:len(p.predicateStack)-1]
}

func (p *producer) currentPredicate() term.Term {
	return p.predicateStack[len(p.predicateStack)-1]
}

// pushEmitter installs a replacement object-consumer, used while a
// nested collection is being read: the collection's own rdf:first/
// rdf:rest structure is emitted against a synthetic subject, and once it
// closes the outer emitter resumes with the collection's head node as
// the object.
func (p *producer) pushEmitter(fn func(o term.Term)) { p.emitterStack = append(p.emitterStack, fn) }

func (p *producer) popEmitter() {
	p.emitterStack = p.emitterStack[:len(p.emitterStack)-1]
}

// pushCollection installs a fresh collectionBuilder both as the active
// object-emitter (members get appended to it, not turned into ordinary
// triples) and on a side stack so its owner can retrieve and close it
// again once the collection's closing ')' is reached.
func (p *producer) pushCollection() *collectionBuilder {
	cb := newCollectionBuilder(p)
	p.collectionStack = append(p.collectionStack, cb)
	p.pushEmitter(cb.add)
	return cb
}

// popCollection pops and returns the innermost active collectionBuilder.
func (p *producer) popCollection() *collectionBuilder {
	cb := p.collectionStack[len(p.collectionStack)-1]
	p.collectionStack = p.collectionStack[:len(p.collectionStack)-1]
	p.popEmitter()
	return cb
}

func (p *producer) emit(o term.Term) {
	if len(p.emitterStack) > 0 {
		p.emitterStack[len(p.emitterStack)-1](o)
		return
	}
	p.triples = append(p.triples, Triple{
		Subject:   p.currentSubject(),
		Predicate: p.currentPredicate(),
		Object:    o,
	})
}

const (
	rdfFirst = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	rdfRest  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	rdfNil   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
	rdfType  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// collectionBuilder accumulates the members of a "( … )" list and, once
// closed, unfolds them into an rdf:first/rdf:rest/rdf:nil chain rooted at
// a fresh blank node, which is what gets handed back to the enclosing
// emitter as the collection's value.
type collectionBuilder struct {
	p     *producer
	head  term.Term
	tail  term.Term
	empty bool
}

func newCollectionBuilder(p *producer) *collectionBuilder {
	return &collectionBuilder{p: p, empty: true}
}

func (c *collectionBuilder) add(member term.Term) {
	node := c.p.freshBlank()
	if c.empty {
		c.head = node
		c.empty = false
	} else {
		c.p.triples = append(c.p.triples, Triple{Subject: c.tail, Predicate: term.PlainIRI(rdfRest), Object: node})
	}
	c.p.triples = append(c.p.triples, Triple{Subject: node, Predicate: term.PlainIRI(rdfFirst), Object: member})
	c.tail = node
}

func (c *collectionBuilder) close() term.Term {
	if c.empty {
		return term.PlainIRI(rdfNil)
	}
	c.p.triples = append(c.p.triples, Triple{Subject: c.tail, Predicate: term.PlainIRI(rdfRest), Object: term.PlainIRI(rdfNil)})
	return c.head
}
