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

package sparql

import (
	"fmt"

	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/term"
)

// Builder holds the semantic-action state sparql/grammar's parse actions
// mutate while a query is read (spec.md §4.9): a stack of in-progress
// Groups mirroring the current nesting of "{ ... }", plus the prefix/base
// table and blank-node allocator a triple clause's terms are resolved
// through. It plays the same role for sparql/grammar that turtle's
// producer plays for the Turtle grammar.
type Builder struct {
	base       string
	namespaces map[string]string

	runPrefix   string
	anonCounter int

	groupStack []*Group

	// exprStack is scratch space for the expression grammar: each
	// operator production pops its operands off the top and pushes its
	// own compiled Expr back on, the same shift-reduce shape a
	// hand-written Pratt parser uses, adapted to the CapturedCall/Call
	// deferred-action style the rest of the grammar package runs in.
	exprStack []Expr

	// termStack holds terms.Term values as a triple pattern's S, P, O are
	// parsed one at a time (mirrors turtle's producer subject/predicate
	// stacks).
	termStack []term.Term

	// argMarks records exprStack depths at the start of each open
	// variadic or optional-trailing-argument builtin's argument list, so
	// COALESCE/CONCAT/SUBSTR/REPLACE/REGEX can recover how many
	// expressions they received without a separate counter per call.
	argMarks []int

	// vars collects every distinct variable name mentioned anywhere in
	// the query, in first-seen order, for SELECT *'s expansion.
	vars   []string
	varSet map[string]bool

	// blankLabels maps a "_:label" text to the term it was first resolved
	// to, so the same label mentioned more than once in one query denotes
	// one blank node throughout — SPARQL scopes a labelled blank node to
	// the whole query, unlike Turtle's whole-document scope but handled
	// the same way: intern on first sight, reuse after.
	blankLabels map[string]term.Term

	// subjectStack/predicateStack/emitterStack hold a triple pattern's
	// subject and predicate while its object(s) are parsed, the same
	// per-statement stacks turtle's producer keeps; emit appends a
	// finished (s, p, o) pattern to the innermost open Group via the
	// emitterStack's top function, so a blank node property list's nested
	// predicateObjectList can redirect emission at a fresh blank subject
	// without disturbing the enclosing triple's own assembly.
	subjectStack   []term.Term
	predicateStack []term.Term
	emitterStack   []func(term.Term)

	// predicateInverse and pathSubjectStack run parallel to
	// predicateStack, one entry per open predicate frame: predicateInverse
	// records whether the frame's final property-path hop runs
	// subject/object-swapped ("^iri"), pathSubjectStack records the
	// subject a multi-hop path's last segment connects from (the
	// original subject for a single-step predicate, or the final
	// synthesised intermediate variable for a "p1/p2/p3" sequence).
	predicateInverse []bool
	pathSubjectStack []term.Term

	// pathSegments accumulates one property-path's steps as "/"
	// alternatives are parsed, consumed and cleared by
	// FinalizePathSegments once the whole path has been read.
	pathSegments []pathSegment

	collectionStack []*collectionBuild

	// pendingPrefixName carries a PrefixDecl's PNAME_NS capture (e.g.
	// "ex:") from the moment it is scanned to the moment the IRIREF that
	// completes the declaration is resolved.
	pendingPrefixName string

	// pendingGraphTerm carries a parsed GRAPH clause's VarOrIri from the
	// moment it is resolved to the moment the GroupGraphPattern that
	// follows is pushed, since the grammar sees the two back to back with
	// nothing else able to intervene (a nested GRAPH inside the pattern
	// overwrites this only after the outer one has already consumed it).
	pendingGraphTerm term.Term

	// pendingAgg holds one SELECT/HAVING aggregate call's argument and
	// accumulator between the moment AddPendingAggregate records it and
	// the moment the enclosing "(... AS ?var)" wrapper consumes it.
	pendingAgg *pendingAggregate

	// valuesCols/valuesRows/valuesRow accumulate a VALUES clause's
	// declared columns and data rows as its DataBlock is parsed; "" marks
	// UNDEF in a cell.
	valuesCols []string
	valuesRows [][]string
	valuesRow  []string

	// distinctMark/groupConcatSep/negatedExists/groupByVars are one-shot
	// scratch flags for modifiers read earlier in a production than the
	// action that consumes them; see the "one-shot scratch flags" section
	// below.
	distinctMark   bool
	groupConcatSep *string
	negatedExists  bool
	groupByVars    []string
}

// pendingAggregate is the not-yet-bound-to-a-variable state of one
// Aggregate production match (spec.md §4.8).
type pendingAggregate struct {
	arg      Expr
	acc      function.Accumulator
	distinct bool
}

// pathSegment is one step of a property path: a predicate term and
// whether that step is traversed in reverse ("^iri").
type pathSegment struct {
	pred    term.Term
	inverse bool
}

// collectionBuild accumulates a SPARQL "( ... )" RDF collection's member
// terms as they are parsed, mirroring turtle's collection builder.
type collectionBuild struct {
	builder *Builder
	head    term.Term
	tail    term.Term
	empty   bool
}

// NewBuilder starts a build with the query's base IRI and any PREFIX
// declarations read from its Prologue, plus runPrefix, a caller-supplied
// token distinguishing this parse's blank nodes from every other's (same
// role as turtle.newProducer's runPrefix).
func NewBuilder(base string, namespaces map[string]string, runPrefix string) *Builder {
	ns := make(map[string]string, len(namespaces))
	for k, v := range namespaces {
		ns[k] = v
	}
	return &Builder{
		base:       base,
		namespaces: ns,
		runPrefix:  runPrefix,
		varSet:     make(map[string]bool),
	}
}

// SetPrefix records a PREFIX declaration read from the Prologue.
func (b *Builder) SetPrefix(prefix, iri string) { b.namespaces[prefix] = iri }

// SetPendingPrefixName records a PrefixDecl's PNAME_NS capture until the
// IRIREF that completes it is resolved.
func (b *Builder) SetPendingPrefixName(name string) { b.pendingPrefixName = name }

// TakePendingPrefixName consumes and clears the pending prefix name.
func (b *Builder) TakePendingPrefixName() string {
	name := b.pendingPrefixName
	b.pendingPrefixName = ""
	return name
}

// SetBase applies a BASE declaration, resolved against the previous base.
func (b *Builder) SetBase(iriRaw string) {
	if resolved, err := term.ResolveRelative(iriRaw, b.base); err == nil {
		b.base = resolved
	} else {
		b.base = iriRaw
	}
}

// --- group nesting ---

// PushGroup opens a new Group nested inside the current top of the
// stack (if any) and makes it current; the caller is responsible for
// appending it to the parent's Children once PopGroup returns it, which
// keeps the parent/child linkage explicit at each call site rather than
// implicit in PushGroup.
func (b *Builder) PushGroup(label Label) *Group {
	g := NewGroup(label)
	b.groupStack = append(b.groupStack, g)
	return g
}

// PopGroup closes and returns the innermost open Group.
func (b *Builder) PopGroup() *Group {
	g := b.groupStack[len(b.groupStack)-1]
	b.groupStack = b.groupStack[:len(b.groupStack)-1]
	return g
}

// Current returns the innermost open Group, the one a triple clause or
// filter currently being parsed belongs to.
func (b *Builder) Current() *Group {
	return b.groupStack[len(b.groupStack)-1]
}

// AddChild appends child as a nested pattern of the current group
// (OPTIONAL/MINUS/UNION/GRAPH/subselect/EXISTS all nest this way).
func (b *Builder) AddChild(child *Group) {
	cur := b.Current()
	cur.Children = append(cur.Children, child)
}

// --- triple clauses ---

// AddClause appends one triple pattern to the current group's basic
// graph pattern.
func (b *Builder) AddClause(s, p, o term.Term) {
	cur := b.Current()
	cur.Clauses = append(cur.Clauses, TriplePattern{S: s, P: p, O: o})
}

// FreshBlank allocates a blank node unique to this parse, for an
// unlabelled "[...]" or the nodes of a "(...)" collection, the same
// pattern as turtle.producer.freshBlank.
func (b *Builder) FreshBlank() term.Term {
	b.anonCounter++
	return term.Blank(fmt.Sprintf("%s-q%d", b.runPrefix, b.anonCounter))
}

// InternBlank maps a "_:label" text written in the query to one blank
// node for the whole query, allocating on first sight and reusing
// thereafter (SPARQL's blank-node-label scoping, unlike Turtle's
// per-document scoping but implemented the same way as
// turtle.producer.internBlank).
func (b *Builder) InternBlank(label string) term.Term {
	if b.blankLabels == nil {
		b.blankLabels = make(map[string]term.Term)
	}
	if t, ok := b.blankLabels[label]; ok {
		return t
	}
	t := b.FreshBlank()
	b.blankLabels[label] = t
	return t
}

// --- triple-pattern subject/predicate/emitter stacks ---
//
// These mirror turtle.producer's nested-structure stacks exactly:
// PushSubject/PopSubject track the subject a predicateObjectList applies
// to, PushPredicateFrame/PopPredicateFrame let ";"-separated verbs share
// one subject, and the emitter stack lets a blank-node property list or
// collection redirect where an object, once resolved, is recorded.

// PushSubject makes s the subject new objects are recorded against.
func (b *Builder) PushSubject(s term.Term) { b.subjectStack = append(b.subjectStack, s) }

// PopSubject discards the innermost subject frame.
func (b *Builder) PopSubject() { b.subjectStack = b.subjectStack[:len(b.subjectStack)-1] }

// CurrentSubject returns the innermost open subject.
func (b *Builder) CurrentSubject() term.Term { return b.subjectStack[len(b.subjectStack)-1] }

// PushPredicateFrame opens a fresh predicate slot for one
// predicateObjectList, distinct from any enclosing one.
func (b *Builder) PushPredicateFrame() {
	b.predicateStack = append(b.predicateStack, term.Unbound)
	b.predicateInverse = append(b.predicateInverse, false)
	b.pathSubjectStack = append(b.pathSubjectStack, b.CurrentSubject())
}

// PopPredicateFrame closes the innermost predicate slot.
func (b *Builder) PopPredicateFrame() {
	b.predicateStack = b.predicateStack[:len(b.predicateStack)-1]
	b.predicateInverse = b.predicateInverse[:len(b.predicateInverse)-1]
	b.pathSubjectStack = b.pathSubjectStack[:len(b.pathSubjectStack)-1]
}

// SetPredicate sets (or replaces, across a ";" list) the innermost
// predicate slot's value.
func (b *Builder) SetPredicate(pred term.Term) {
	if len(b.predicateStack) == 0 {
		b.predicateStack = append(b.predicateStack, pred)
		return
	}
	b.predicateStack[len(b.predicateStack)-1] = pred
}

// CurrentPredicate returns the innermost predicate.
func (b *Builder) CurrentPredicate() term.Term { return b.predicateStack[len(b.predicateStack)-1] }

func (b *Builder) pushEmitter(fn func(term.Term)) { b.emitterStack = append(b.emitterStack, fn) }

func (b *Builder) popEmitter() { b.emitterStack = b.emitterStack[:len(b.emitterStack)-1] }

// PushCollection installs a fresh RDF collection builder as the active
// object-consumer (so subsequent Emit calls append list members instead
// of ordinary triples) and returns it for PopCollection's caller to close.
func (b *Builder) PushCollection() *collectionBuild {
	cb := &collectionBuild{builder: b, empty: true}
	b.collectionStack = append(b.collectionStack, cb)
	b.pushEmitter(cb.add)
	return cb
}

// PopCollection pops and returns the innermost active collection
// builder, ready for its owner to call Close on.
func (b *Builder) PopCollection() *collectionBuild {
	cb := b.collectionStack[len(b.collectionStack)-1]
	b.collectionStack = b.collectionStack[:len(b.collectionStack)-1]
	b.popEmitter()
	return cb
}

const (
	rdfFirst = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	rdfRest  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	rdfNil   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
	rdfType  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// add appends one member to a collection being built, unfolding it
// immediately into an rdf:first/rdf:rest link from a fresh blank node,
// the same shape turtle.collectionBuilder.add uses.
func (c *collectionBuild) add(member term.Term) {
	node := c.builder.FreshBlank()
	if c.empty {
		c.head = node
		c.empty = false
	} else {
		c.builder.AddClause(c.tail, term.PlainIRI(rdfRest), node)
	}
	c.builder.AddClause(node, term.PlainIRI(rdfFirst), member)
	c.tail = node
}

// Close finishes a collection, linking its final member to rdf:nil (or
// returning rdf:nil directly for an empty "()"), and returns the term
// that denotes the whole list.
func (c *collectionBuild) Close() term.Term {
	if c.empty {
		return term.PlainIRI(rdfNil)
	}
	c.builder.AddClause(c.tail, term.PlainIRI(rdfRest), term.PlainIRI(rdfNil))
	return c.head
}

// Emit records one finished triple pattern's object: if a collection or
// blank-node property list is open, the object is redirected there;
// otherwise it completes a clause using the current path's effective
// subject (CurrentSubject, or a multi-hop path's last intermediate
// variable) and predicate, swapping subject/object if that hop is
// inverted ("^iri").
func (b *Builder) Emit(o term.Term) {
	if len(b.emitterStack) > 0 {
		b.emitterStack[len(b.emitterStack)-1](o)
		return
	}
	subj := b.currentPathSubject()
	pred := b.CurrentPredicate()
	if b.currentPredicateInverse() {
		b.AddClause(o, pred, subj)
		return
	}
	b.AddClause(subj, pred, o)
}

// RDFTypeIRI is the rdf:type predicate "a" abbreviates.
func RDFTypeIRI() term.Term { return term.PlainIRI(rdfType) }

// --- property paths ---

// AppendPathStep starts a fresh property-path segment with pred as its
// predicate, called once per step of a "p1/p2/p3" sequence (or once, for
// an ordinary single-predicate verb).
func (b *Builder) AppendPathStep(pred term.Term) {
	b.pathSegments = append(b.pathSegments, pathSegment{pred: pred})
}

// SetPredicateInverse marks the most recently appended path segment (or,
// once FinalizePathSegments has run, the current predicate frame) as
// traversed in reverse.
func (b *Builder) SetPredicateInverse(inv bool) {
	if len(b.pathSegments) > 0 {
		b.pathSegments[len(b.pathSegments)-1].inverse = inv
		return
	}
	if len(b.predicateInverse) > 0 {
		b.predicateInverse[len(b.predicateInverse)-1] = inv
	}
}

func (b *Builder) currentPredicateInverse() bool {
	if len(b.predicateInverse) == 0 {
		return false
	}
	return b.predicateInverse[len(b.predicateInverse)-1]
}

func (b *Builder) currentPathSubject() term.Term {
	if len(b.pathSubjectStack) == 0 {
		return b.CurrentSubject()
	}
	return b.pathSubjectStack[len(b.pathSubjectStack)-1]
}

func (b *Builder) setCurrentPathSubject(t term.Term) {
	b.pathSubjectStack[len(b.pathSubjectStack)-1] = t
}

// FinalizePathSegments resolves the property-path steps AppendPathStep
// collected into the current predicate frame: every step but the last is
// lowered immediately into its own triple pattern, chained through a
// fresh variable; the last step becomes the frame's predicate (and
// inversion flag) for Emit to apply against whatever objects follow.
func (b *Builder) FinalizePathSegments() {
	segs := b.pathSegments
	b.pathSegments = nil
	subj := b.currentPathSubject()
	for i := 0; i < len(segs)-1; i++ {
		next := b.FreshBlank()
		if segs[i].inverse {
			b.AddClause(next, segs[i].pred, subj)
		} else {
			b.AddClause(subj, segs[i].pred, next)
		}
		subj = next
	}
	b.setCurrentPathSubject(subj)
	last := segs[len(segs)-1]
	b.SetPredicate(last.pred)
	b.SetPredicateInverse(last.inverse)
}

// Reset clears the subject/predicate/emitter/collection scratch state
// before a fresh TriplesSameSubjectPath statement is parsed.
func (b *Builder) Reset() {
	b.subjectStack = b.subjectStack[:0]
	b.predicateStack = b.predicateStack[:0]
	b.predicateInverse = b.predicateInverse[:0]
	b.pathSubjectStack = b.pathSubjectStack[:0]
	b.emitterStack = b.emitterStack[:0]
	b.collectionStack = b.collectionStack[:0]
	b.pathSegments = nil
}

// --- term resolution ---

// ResolveIRIRef resolves a "<...>" IRI reference against the current
// base, as term.ResolveRelative does for Turtle.
func (b *Builder) ResolveIRIRef(raw string) term.Term {
	value, err := iriRefLexical(raw)
	if err != nil {
		return term.Err("sparql: %v", err)
	}
	resolved, err := term.ResolveRelative(value, b.base)
	if err != nil {
		return term.Err("sparql: %v", err)
	}
	return term.PlainIRI(resolved)
}

// ResolvePName resolves a "prefix:local" token against the Prologue's
// namespace table.
func (b *Builder) ResolvePName(prefix, local string) term.Term {
	ns, ok := b.namespaces[prefix]
	if !ok {
		return term.Err("sparql: unknown prefix %q", prefix)
	}
	return term.IRI(prefix, ns, term.UnescapeLocalName(local))
}

// ResolveVar returns the variable term for name, recording it (once) for
// SELECT *'s expansion.
func (b *Builder) ResolveVar(name string) term.Term {
	if !b.varSet[name] {
		b.varSet[name] = true
		b.vars = append(b.vars, name)
	}
	return term.Variable(name)
}

// AllVars returns every distinct variable name seen so far, in the order
// each was first mentioned.
func (b *Builder) AllVars() []string {
	return append([]string(nil), b.vars...)
}

// --- expression stack ---

// PushExpr pushes a compiled expression, used by a PrimaryExpression
// production (a literal, variable or parenthesised sub-expression).
func (b *Builder) PushExpr(e Expr) { b.exprStack = append(b.exprStack, e) }

// PopExpr pops and returns the top compiled expression.
func (b *Builder) PopExpr() Expr {
	e := b.exprStack[len(b.exprStack)-1]
	b.exprStack = b.exprStack[:len(b.exprStack)-1]
	return e
}

// ReduceUnary pops one operand and pushes f applied to it, the shape
// every prefix-operator production (unary +/-, NOT, ...) uses.
func (b *Builder) ReduceUnary(f func(term.Term) term.Term) {
	a := b.PopExpr()
	b.PushExpr(ExprUnary(f, a))
}

// ReduceBinary pops two operands (right first, since it was pushed last)
// and pushes f applied to them in left-to-right order.
func (b *Builder) ReduceBinary(f func(a, b term.Term) term.Term) {
	right := b.PopExpr()
	left := b.PopExpr()
	b.PushExpr(ExprBinary(f, left, right))
}

// PushArgMark records the current exprStack depth.
func (b *Builder) PushArgMark() { b.argMarks = append(b.argMarks, len(b.exprStack)) }

// PopArgCount pops the innermost arg mark and returns how many
// expressions have been pushed onto exprStack since it was recorded.
func (b *Builder) PopArgCount() int {
	mark := b.argMarks[len(b.argMarks)-1]
	b.argMarks = b.argMarks[:len(b.argMarks)-1]
	return len(b.exprStack) - mark
}

// PopOptionalArg pops the innermost arg mark and, if an expression was
// pushed since it was recorded, pops and returns it.
func (b *Builder) PopOptionalArg() (Expr, bool) {
	mark := b.argMarks[len(b.argMarks)-1]
	b.argMarks = b.argMarks[:len(b.argMarks)-1]
	if len(b.exprStack) > mark {
		return b.PopExpr(), true
	}
	return nil, false
}

// Base returns the base IRI currently in effect, resolved against by
// ResolveIRIRef and used by the IRI()/URI() builtins.
func (b *Builder) Base() string { return b.base }

// --- term stack ---

// PushTerm pushes a resolved term onto the triple-pattern assembly stack
// (a subject, predicate or object as it is parsed).
func (b *Builder) PushTerm(t term.Term) { b.termStack = append(b.termStack, t) }

// PopTerm pops and returns the top term.
func (b *Builder) PopTerm() term.Term {
	t := b.termStack[len(b.termStack)-1]
	b.termStack = b.termStack[:len(b.termStack)-1]
	return t
}

// iriRefLexical strips the angle brackets and resolves Turtle-style
// string escapes from a SPARQL IRIREF, which uses the same escaping rules
// as a Turtle IRIREF (spec.md §4.11).
func iriRefLexical(raw string) (string, error) {
	return term.UnescapeLiteral(raw[1 : len(raw)-1])
}

// --- modifiers ---

// AddFilter attaches a FILTER clause's compiled expression to the
// current group.
func (b *Builder) AddFilter(e Expr) {
	cur := b.Current()
	cur.Filters = append(cur.Filters, CompileFilter(e))
}

// AddExistsCheck attaches a FILTER [NOT] EXISTS {...} clause, pattern
// already built via Push/PopGroup, to the current group.
func (b *Builder) AddExistsCheck(pattern *Group, negate bool) {
	cur := b.Current()
	cur.ExistsChecks = append(cur.ExistsChecks, ExistsCheck{Pattern: pattern, Negate: negate})
}

// AddHaving attaches a HAVING clause's compiled expression to the
// current group, to be applied after GROUP BY/aggregate folding.
func (b *Builder) AddHaving(e Expr) {
	cur := b.Current()
	cur.HavingFilters = append(cur.HavingFilters, CompileFilter(e))
}

// AddBind attaches a BIND(expr AS ?var) clause to the current group.
func (b *Builder) AddBind(varName string, e Expr) {
	cur := b.Current()
	cur.Binders = append(cur.Binders, Binder{Var: varName, Expr: e})
}

// AddSelectBinder records a SELECT (expr AS ?var) projection.
func (b *Builder) AddSelectBinder(group *Group, varName string, e Expr) {
	group.SelectBinders = append(group.SelectBinders, Binder{Var: varName, Expr: e})
	group.SelectVars = append(group.SelectVars, varName)
}

// AddAggregate records one aggregate projection of a SELECT/HAVING
// clause; varName is the column the aggregate's result is bound to
// (synthesised for a bare HAVING(...) argument that isn't also
// projected).
func (b *Builder) AddAggregate(group *Group, varName string, arg Expr, acc AggregateBinder) {
	acc.Var = varName
	acc.Arg = arg
	group.Aggregates = append(group.Aggregates, acc)
}

// SetGroupBy records the GROUP BY variable list.
func (b *Builder) SetGroupBy(group *Group, vars []string) {
	group.GroupByVars = vars
}

// AddOrderBy appends one ORDER BY key.
func (b *Builder) AddOrderBy(group *Group, e Expr, desc bool) {
	group.OrderBy = append(group.OrderBy, OrderKey{Expr: e, Desc: desc})
}

// SetLimitOffset applies a LIMIT/OFFSET clause; a value of -1 leaves the
// corresponding field at its "none" default.
func (b *Builder) SetLimitOffset(group *Group, limit, offset int) {
	if limit >= 0 {
		group.Limit = limit
	}
	if offset >= 0 {
		group.Offset = offset
	}
}

// SetDistinct marks a SELECT/aggregate group DISTINCT.
func (b *Builder) SetDistinct(group *Group) { group.Distinct = true }

// SetValues installs a materialised VALUES clause.
func (b *Builder) SetValues(group *Group, v *ValuesTable) { group.Values = v }

// SetConstructTemplate installs a CONSTRUCT {...} template; valid only
// on a Group of LabelConstruct.
func (b *Builder) SetConstructTemplate(group *Group, clauses []TriplePattern) {
	group.ConstructTemplate = clauses
}

// FinalizeSelectStar expands a bare "SELECT *" into the explicit
// variable list AllVars returns, per spec.md §4.9's Finalise step. The
// grammar action calls this only when no explicit projection list was
// parsed.
func (b *Builder) FinalizeSelectStar(group *Group) {
	group.SelectVars = b.AllVars()
}

// AddSelectVar records a bare-variable SELECT projection (as opposed to
// a "(expr AS ?var)" one, which goes through AddSelectBinder).
func (b *Builder) AddSelectVar(group *Group, name string) {
	group.SelectVars = append(group.SelectVars, name)
}

// --- GRAPH clause ---

// SetPendingGraphTerm records a GRAPH clause's resolved VarOrIri until
// the GroupGraphPattern that follows it is pushed.
func (b *Builder) SetPendingGraphTerm(t term.Term) { b.pendingGraphTerm = t }

// TakePendingGraphTerm consumes and clears the pending GRAPH term, or
// returns term.Unbound if none is pending (an ordinary, non-GRAPH
// GroupGraphPattern).
func (b *Builder) TakePendingGraphTerm() term.Term {
	t := b.pendingGraphTerm
	b.pendingGraphTerm = term.Unbound
	return t
}

// --- Aggregates ---

// PushPendingAggregate records one Aggregate production's argument and
// accumulator (spec.md §4.8), to be claimed by the enclosing
// "(... AS ?var)" wrapper once the variable name is known.
func (b *Builder) PushPendingAggregate(arg Expr, acc function.Accumulator, distinct bool) {
	b.pendingAgg = &pendingAggregate{arg: arg, acc: acc, distinct: distinct}
}

// PopPendingAggregate claims the most recently pushed pending aggregate.
func (b *Builder) PopPendingAggregate() (arg Expr, acc function.Accumulator, distinct bool) {
	p := b.pendingAgg
	b.pendingAgg = nil
	return p.arg, p.acc, p.distinct
}

// NextAggregateVar allocates a name for an aggregate that appears
// directly in an expression (HAVING, ORDER BY) rather than through a
// "(... AS ?var)" projection: the aggregate's result still needs a
// column name for evalAggregate to write it to and an ExprVar to read
// it back by.
func (b *Builder) NextAggregateVar() string {
	b.anonCounter++
	return fmt.Sprintf("%s-agg%d", b.runPrefix, b.anonCounter)
}

// --- VALUES clause ---

// ResetValues clears the scratch state before a fresh VALUES DataBlock
// is parsed.
func (b *Builder) ResetValues() {
	b.valuesCols = nil
	b.valuesRows = nil
	b.valuesRow = nil
}

// AddValuesVar records one VALUES clause column name.
func (b *Builder) AddValuesVar(name string) { b.valuesCols = append(b.valuesCols, name) }

// BeginValuesRow opens one VALUES data row.
func (b *Builder) BeginValuesRow() { b.valuesRow = nil }

// AddValuesCell appends one cell to the row currently being built; an
// empty string marks UNDEF.
func (b *Builder) AddValuesCell(cell string) { b.valuesRow = append(b.valuesRow, cell) }

// EndValuesRow closes the row currently being built.
func (b *Builder) EndValuesRow() {
	b.valuesRows = append(b.valuesRows, b.valuesRow)
	b.valuesRow = nil
}

// TakeValues materialises the VALUES clause accumulated since the last
// ResetValues into a ValuesTable.
func (b *Builder) TakeValues() *ValuesTable {
	return &ValuesTable{Columns: b.valuesCols, Rows: b.valuesRows}
}

// --- DESCRIBE ---

// AddDescribeTerm appends one resource (bound IRI or variable) to a
// DESCRIBE query's resource list.
func (b *Builder) AddDescribeTerm(group *Group, t term.Term) {
	group.DescribeTerms = append(group.DescribeTerms, t)
}

// FinalizeDescribeStar expands a bare "DESCRIBE *" into every variable
// mentioned in the query so far, mirroring FinalizeSelectStar.
func (b *Builder) FinalizeDescribeStar(group *Group) {
	for _, v := range b.AllVars() {
		group.DescribeTerms = append(group.DescribeTerms, term.Variable(v))
	}
}

// --- one-shot scratch flags ---
//
// These record a modifier keyword parsed earlier in the same production
// for an action later in that production to consume, the same role
// pendingPrefixName/pendingGraphTerm/pendingAgg play for longer-lived
// state, kept as plain fields here since each is only ever live within
// one Aggregate or FilterExists match.

// SetDistinctMark records that the Aggregate currently being parsed had
// a leading DISTINCT keyword.
func (b *Builder) SetDistinctMark() { b.distinctMark = true }

// PopDistinctMark consumes and clears the distinct mark.
func (b *Builder) PopDistinctMark() bool {
	v := b.distinctMark
	b.distinctMark = false
	return v
}

// SetGroupConcatSeparator records a GROUP_CONCAT clause's explicit
// SEPARATOR string.
func (b *Builder) SetGroupConcatSeparator(sep string) { b.groupConcatSep = &sep }

// TakeGroupConcatSeparator consumes the recorded SEPARATOR, or returns
// GROUP_CONCAT's default " " if none was given.
func (b *Builder) TakeGroupConcatSeparator() string {
	if b.groupConcatSep == nil {
		return " "
	}
	sep := *b.groupConcatSep
	b.groupConcatSep = nil
	return sep
}

// MarkNegatedExists flags the FilterExists production currently being
// parsed as "NOT EXISTS" rather than plain "EXISTS".
func (b *Builder) MarkNegatedExists() { b.negatedExists = true }

// PopNegatedExists consumes and clears the negated-exists mark.
func (b *Builder) PopNegatedExists() bool {
	v := b.negatedExists
	b.negatedExists = false
	return v
}

// BeginGroupByVars starts accumulating a GROUP BY clause's variable
// list.
func (b *Builder) BeginGroupByVars() { b.groupByVars = nil }

// AppendGroupByVar appends one GROUP BY key (a plain variable, or the
// fresh variable an "(expr AS ?var)" key was bound to).
func (b *Builder) AppendGroupByVar(name string) { b.groupByVars = append(b.groupByVars, name) }

// TakeGroupByVars consumes the accumulated GROUP BY variable list.
func (b *Builder) TakeGroupByVars() []string {
	vars := b.groupByVars
	b.groupByVars = nil
	return vars
}
