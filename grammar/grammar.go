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

// Package grammar implements a reusable backtracking LL(*) production
// interpreter (spec.md §4.5): a tagged production tree with choice-point
// management, named-capture binding, cuts, and deferred semantic actions,
// driving a caller-supplied "producer" object. It underlies both the
// Turtle producer (turtle package) and the SPARQL translator
// (sparql/grammar package).
package grammar

// Production is one node of a grammar (spec.md §4.5). The concrete
// alternatives are Terminal, Condition and Structural productions,
// constructed with the functions below; Production itself is opaque.
type Production interface {
	isProduction()
}

// Action is a deferred semantic action: a closure that mutates producer
// (the caller's semantic-action target) using the bindings captured during
// a successful parse.
type Action func(producer any, bindings Bindings)

// Bindings is the mapping from captured dotted name to the substring
// consumed while the corresponding Named production was active (spec.md
// glossary).
type Bindings map[string]string

// Get returns the value bound at key and whether it was bound at all.
func (b Bindings) Get(key string) (string, bool) {
	v, ok := b[key]
	return v, ok
}

// --- Terminals ---

type literalProd struct {
	text          string
	caseSensitive bool
}

// Literal matches an exact string terminal, case-sensitively or not.
func Literal(text string, caseSensitive bool) Production {
	return literalProd{text: text, caseSensitive: caseSensitive}
}

func (literalProd) isProduction() {}

type charLiteralProd struct{ r rune }

// CharLiteral matches a single exact rune.
func CharLiteral(r rune) Production { return charLiteralProd{r: r} }

func (charLiteralProd) isProduction() {}

// RuneRange is an inclusive [Lo, Hi] rune range.
type RuneRange struct{ Lo, Hi rune }

type inRangeProd struct{ ranges []RuneRange }

// InRange matches a single rune falling in any of the given inclusive
// ranges.
func InRange(ranges ...RuneRange) Production { return inRangeProd{ranges: ranges} }

func (inRangeProd) isProduction() {}

type inRangeUProd struct{ lo, hi rune }

// InRangeU matches a single rune in the inclusive range [lo, hi], each
// given as a one-rune string; it is surrogate-aware in the sense that lo
// and hi are decoded as full Unicode code points (Go runes are already
// code points, not UTF-16 code units, so no surrogate pairing is needed
// internally — this constructor exists to accept the same loStr/hiStr
// shape the spec's terminal set uses).
func InRangeU(loStr, hiStr string) Production {
	lo := []rune(loStr)[0]
	hi := []rune(hiStr)[0]
	return inRangeUProd{lo: lo, hi: hi}
}

func (inRangeUProd) isProduction() {}

type notInProd struct{ chars string }

// NotIn matches a single rune that is not any of chars.
func NotIn(chars string) Production { return notInProd{chars: chars} }

func (notInProd) isProduction() {}

type notInRangeProd struct{ lo, hi rune }

// NotInRange matches a single rune r for which r >= lo or r <= hi. That
// test is true for every rune whenever lo <= hi, so NotInRange then
// matches any single rune (failing only at end of input); it does not
// exclude the runes inside [lo, hi]. See the notInRangeProd case of match
// in engine.go and DESIGN.md's open-questions entry.
func NotInRange(lo, hi rune) Production { return notInRangeProd{lo: lo, hi: hi} }

func (notInRangeProd) isProduction() {}

type inProd struct{ chars string }

// In matches a single rune that is one of chars.
func In(chars string) Production { return inProd{chars: chars} }

func (inProd) isProduction() {}

type inStringsProd struct{ options []string }

// InStrings matches the first of options (longest-match is not
// guaranteed; options should be ordered most-specific first) found at the
// current position.
func InStrings(options []string) Production { return inStringsProd{options: options} }

func (inStringsProd) isProduction() {}

type anyRuneProd struct{}

// Any matches a single arbitrary rune (fails only at end of input).
func Any() Production { return anyRuneProd{} }

func (anyRuneProd) isProduction() {}

// CustomScan is the signature for Custom: given the full input and the
// current rune position, it reports how many runes (if any) match at
// that position.
type CustomScan func(text []rune, pos int) (n int, ok bool)

type customProd struct {
	name string
	scan CustomScan
}

// Custom is an escape hatch for terminals whose shape is awkward to
// express purely in terms of the other Terminal constructors (e.g. a
// quote-delimited string literal that must treat its own escape
// sequences specially). name is used only for diagnostics.
func Custom(name string, scan CustomScan) Production { return customProd{name: name, scan: scan} }

func (customProd) isProduction() {}

// --- Conditions ---

type allProd struct{ prods []Production }

// All matches every production in order; equivalent to a grammar
// sequence that still allows whitespace skipping between elements.
func All(prods ...Production) Production { return allProd{prods: prods} }

func (allProd) isProduction() {}

type anyOfProd struct{ prods []Production }

// AnyOf tries each alternative in order, backtracking to the next on
// failure; this is the engine's sole choice-point-creating production.
func AnyOf(prods ...Production) Production { return anyOfProd{prods: prods} }

func (anyOfProd) isProduction() {}

type optionalProd struct{ prod Production }

// Optional matches p if possible, and otherwise trivially succeeds having
// consumed nothing.
func Optional(p Production) Production { return optionalProd{prod: p} }

func (optionalProd) isProduction() {}

type zeroOrMoreProd struct{ prod Production }

// ZeroOrMore repeats p greedily, stopping as soon as an iteration makes no
// progress (spec.md §4.5's progress guard), and always succeeds.
func ZeroOrMore(p Production) Production { return zeroOrMoreProd{prod: p} }

func (zeroOrMoreProd) isProduction() {}

type oneOrMoreProd struct{ prod Production }

// OneOrMore requires at least one match of p, then behaves like
// ZeroOrMore.
func OneOrMore(p Production) Production { return oneOrMoreProd{prod: p} }

func (oneOrMoreProd) isProduction() {}

type sequenceProd struct{ prods []Production }

// Sequence is the "token" form of All: while it is active, whitespace is
// never skipped before a terminal match (spec.md §4.5).
func Sequence(prods ...Production) Production { return sequenceProd{prods: prods} }

func (sequenceProd) isProduction() {}

type traceProd struct {
	label string
	prod  Production
}

// Trace wraps p with a debug log line naming label, emitted through the
// engine's optional logger.
func Trace(label string, p Production) Production { return traceProd{label: label, prod: p} }

func (traceProd) isProduction() {}

// --- Structural ---

type namedProd struct {
	name string
	prod Production
}

// Named captures the substring consumed while p is active, trimmed, and
// stores it at the dotted path "parent.name" (spec.md §4.5).
func Named(name string, p Production) Production { return namedProd{name: name, prod: p} }

func (namedProd) isProduction() {}

type referenceProd struct {
	resolve  func() Production
	resolved Production
}

// Reference is a lazy forward reference to a production defined elsewhere
// in the grammar, resolved (and memoised) the first time it is actually
// reached during matching; this is how mutually-recursive grammars are
// expressed without an initialisation cycle (spec.md §9).
func Reference(resolve func() Production) Production {
	return &referenceProd{resolve: resolve}
}

func (*referenceProd) isProduction() {}

type cutProd struct{}

// Cut unconditionally discards every pending choice point; once executed,
// earlier alternatives are irrevocably committed (spec.md §4.5).
func Cut() Production { return cutProd{} }

func (cutProd) isProduction() {}

type callProd struct{ action Action }

// Call defers a semantic action, appended to the producer's applier list
// on success and run (in append order) only once the whole parse
// succeeds (spec.md §4.5).
func Call(action Action) Production { return callProd{action: action} }

func (callProd) isProduction() {}

// CaptureBuilder builds a deferred Action from the exact substring a
// CapturedCall production consumed.
type CaptureBuilder func(value string) Action

type capturedCallProd struct {
	name  string
	prod  Production
	build CaptureBuilder
}

// CapturedCall composes Named's substring capture with Call's deferred
// action in the one shape real semantic-action grammars need most: an
// action parameterised by the text *this specific occurrence* of p
// matched, not by whatever the dotted bindings path holds once the whole
// parse finishes. Plain Named captures share one map key across every
// occurrence of a repeated production (e.g. each object in an
// RDF/SPARQL object list), so a deferred Call reading that key back out
// at the end would only ever see the last occurrence's value;
// CapturedCall closes over the matched text immediately, at the moment
// of the match, so the resulting Action is correct regardless of how
// many times the surrounding repetition runs. It also records the
// capture at the dotted path "parent.name" exactly like Named, for
// callers that only need the final value.
func CapturedCall(name string, p Production, build CaptureBuilder) Production {
	return capturedCallProd{name: name, prod: p, build: build}
}

func (capturedCallProd) isProduction() {}

type setNameProd struct {
	name  string
	value string
	prod  Production
}

// SetName eagerly sets a captured binding before running p.
func SetName(name, value string, p Production) Production {
	return setNameProd{name: name, value: value, prod: p}
}

func (setNameProd) isProduction() {}
