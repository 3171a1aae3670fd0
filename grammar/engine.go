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
	"fmt"
	"strings"
	"unicode"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/sirupsen/logrus"
)

// ErrParse is returned by Grammar.Parse when the root production cannot
// account for the whole of the input text.
var ErrParse = errors.NewKind("grammar: parse failed near %q")

const maxResidual = 42

// context carries the engine's mutable parse state. Only AnyOf takes a
// snapshot of it (pos, bindings, appliers length, inSequences) as a
// choice point and restores that snapshot on backtrack (ZeroOrMore also
// rolls back its one failed final iteration, but offers no alternative
// afterwards): every other production either
// cannot fail after partially succeeding (terminals) or delegates failure
// handling to the AnyOf it is nested under, so a single choice-point
// discipline at AnyOf is sufficient for the whole engine (see the doc
// comment on match below).
type context struct {
	text        []rune
	pos         int
	bindings    Bindings
	named       string // dotted path of the innermost enclosing Named
	appliers    []Action
	inSequences int
	cutGen      *int
	logger      *logrus.Logger
}

// continuation represents "everything that must still match after the
// current production succeeds". Because backtracking in this engine is
// expressed as continuation-passing rather than an explicit goal stack,
// the Go call stack plays the role spec.md §4.5 assigns to the goal
// stack, and a choice point is simply a saved (pos, bindings, appliers,
// cutGen) tuple captured right before AnyOf tries one alternative.
type continuation func(ctx *context) bool

// Grammar pairs a root production with the logger used by Trace nodes.
type Grammar struct {
	Root   Production
	Logger *logrus.Logger
}

// Parse runs the grammar against text, driving producer's semantic
// actions (Call productions) in append order once the whole input (modulo
// trailing whitespace) has been consumed, and returns the bindings
// captured by any top-level Named productions.
func (g *Grammar) Parse(text string, producer any) (Bindings, error) {
	cutGen := 0
	ctx := &context{
		text:     []rune(text),
		bindings: make(Bindings),
		cutGen:   &cutGen,
		logger:   g.Logger,
	}

	ok := match(g.Root, ctx, func(ctx *context) bool {
		skipWhitespace(ctx)
		return ctx.pos == len(ctx.text)
	})
	if !ok {
		return nil, ErrParse.New(residual(ctx))
	}

	for _, a := range ctx.appliers {
		a(producer, ctx.bindings)
	}
	return ctx.bindings, nil
}

func residual(ctx *context) string {
	rest := ctx.text[ctx.pos:]
	if len(rest) > maxResidual {
		rest = rest[:maxResidual]
	}
	return string(rest)
}

// match attempts to satisfy p at ctx's current position and, on success,
// calls k to continue matching whatever follows p; it returns k's result
// unmodified so that failures in k correctly drive backtracking into any
// choice point p (or one of p's descendants) established along the way.
// A production that fails outright (p itself, with no viable alternative)
// returns false without ever calling k.
func match(p Production, ctx *context, k continuation) bool {
	switch v := p.(type) {
	case literalProd:
		return matchLiteral(v, ctx, k)
	case charLiteralProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos < len(ctx.text) && ctx.text[ctx.pos] == v.r {
				return 1, true
			}
			return 0, false
		})
	case inRangeProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos >= len(ctx.text) {
				return 0, false
			}
			r := ctx.text[ctx.pos]
			for _, rr := range v.ranges {
				if r >= rr.Lo && r <= rr.Hi {
					return 1, true
				}
			}
			return 0, false
		})
	case inRangeUProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos >= len(ctx.text) {
				return 0, false
			}
			r := ctx.text[ctx.pos]
			if r >= v.lo && r <= v.hi {
				return 1, true
			}
			return 0, false
		})
	case notInProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos >= len(ctx.text) {
				return 0, false
			}
			r := ctx.text[ctx.pos]
			if strings.ContainsRune(v.chars, r) {
				return 0, false
			}
			return 1, true
		})
	case notInRangeProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos >= len(ctx.text) {
				return 0, false
			}
			// See the doc comment on NotInRange in grammar.go: this
			// condition is true for every rune whenever lo <= hi.
			r := ctx.text[ctx.pos]
			if r >= v.lo || r <= v.hi {
				return 1, true
			}
			return 0, false
		})
	case inProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos >= len(ctx.text) {
				return 0, false
			}
			r := ctx.text[ctx.pos]
			if strings.ContainsRune(v.chars, r) {
				return 1, true
			}
			return 0, false
		})
	case inStringsProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			rest := string(ctx.text[ctx.pos:])
			for _, opt := range v.options {
				if strings.HasPrefix(rest, opt) {
					return len([]rune(opt)), true
				}
			}
			return 0, false
		})
	case anyRuneProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			if ctx.pos >= len(ctx.text) {
				return 0, false
			}
			return 1, true
		})
	case customProd:
		return matchTerminal(ctx, k, func() (int, bool) {
			return v.scan(ctx.text, ctx.pos)
		})
	case allProd:
		return matchAll(v.prods, ctx, k)
	case sequenceProd:
		return matchSequence(v.prods, ctx, k)
	case anyOfProd:
		return matchAnyOf(v.prods, ctx, k)
	case optionalProd:
		return matchAnyOf([]Production{v.prod, emptyProd{}}, ctx, k)
	case zeroOrMoreProd:
		return matchZeroOrMore(v.prod, ctx, k)
	case oneOrMoreProd:
		return matchAll([]Production{v.prod, zeroOrMoreProd{prod: v.prod}}, ctx, k)
	case traceProd:
		if ctx.logger != nil {
			ctx.logger.WithField("production", v.label).WithField("pos", ctx.pos).Debug("grammar: enter")
		}
		return match(v.prod, ctx, k)
	case namedProd:
		return matchNamed(v, ctx, k)
	case capturedCallProd:
		return matchCapturedCall(v, ctx, k)
	case *referenceProd:
		if v.resolved == nil {
			v.resolved = v.resolve()
		}
		return match(v.resolved, ctx, k)
	case cutProd:
		*ctx.cutGen++
		return k(ctx)
	case callProd:
		ctx.appliers = append(ctx.appliers, v.action)
		return k(ctx)
	case setNameProd:
		key := v.name
		if ctx.named != "" {
			key = ctx.named + "." + v.name
		}
		ctx.bindings[key] = v.value
		return match(v.prod, ctx, k)
	case emptyProd:
		return k(ctx)
	default:
		panic(fmt.Sprintf("grammar: unknown production type %T", p))
	}
}

// emptyProd is an internal zero-width production that always succeeds,
// used to give Optional an AnyOf-shaped "or nothing" alternative.
type emptyProd struct{}

func (emptyProd) isProduction() {}

// matchTerminal is the shared body for every rune-level terminal: it
// skips whitespace unless a Sequence is active, then asks try for a match
// at the (possibly advanced) position.
func matchTerminal(ctx *context, k continuation, try func() (n int, ok bool)) bool {
	if ctx.inSequences == 0 {
		skipWhitespace(ctx)
	}
	n, ok := try()
	if !ok {
		return false
	}
	ctx.pos += n
	return k(ctx)
}

func matchLiteral(v literalProd, ctx *context, k continuation) bool {
	return matchTerminal(ctx, k, func() (int, bool) {
		want := []rune(v.text)
		if ctx.pos+len(want) > len(ctx.text) {
			return 0, false
		}
		got := ctx.text[ctx.pos : ctx.pos+len(want)]
		if v.caseSensitive {
			if string(got) != v.text {
				return 0, false
			}
		} else if !strings.EqualFold(string(got), v.text) {
			return 0, false
		}
		return len(want), true
	})
}

func skipWhitespace(ctx *context) {
	for ctx.pos < len(ctx.text) && unicode.IsSpace(ctx.text[ctx.pos]) {
		ctx.pos++
	}
}

// matchAll chains productions in order via nested continuations: prods[i]
// is matched with a continuation that matches prods[i+1..], so that a
// later failure backtracks into whichever earlier production (All's own
// child, or one further up the call chain) holds the relevant choice
// point.
func matchAll(prods []Production, ctx *context, k continuation) bool {
	if len(prods) == 0 {
		return k(ctx)
	}
	return match(prods[0], ctx, func(ctx *context) bool {
		return matchAll(prods[1:], ctx, k)
	})
}

// matchSequence behaves like matchAll but disables whitespace skipping
// for its whole (possibly backtracking) span, re-enabling it only once
// control has genuinely passed beyond the sequence: if k later fails and
// backtracking re-enters the sequence, in_sequences is restored so any
// retried terminal inside it still skips no whitespace.
func matchSequence(prods []Production, ctx *context, k continuation) bool {
	ctx.inSequences++
	ok := matchAll(prods, ctx, func(ctx *context) bool {
		ctx.inSequences--
		r := k(ctx)
		if !r {
			ctx.inSequences++
		}
		return r
	})
	if !ok {
		ctx.inSequences--
	}
	return ok
}

// matchAnyOf is the engine's only choice-point-creating production: for
// each alternative it snapshots enough state to undo everything the
// alternative (and its own continuation chain) may have mutated, tries
// it, and on failure restores the snapshot before trying the next one.
// When a Cut fires during an alternative's attempt, cutGen advances and
// remaining alternatives are abandoned even though this AnyOf's own
// attempt ultimately failed, which is what lets a cut committed deep
// inside a successful-so-far parse still block backtracking once a later
// sibling production fails.
func matchAnyOf(prods []Production, ctx *context, k continuation) bool {
	for _, p := range prods {
		posBefore := ctx.pos
		bindingsBefore := cloneBindings(ctx.bindings)
		appliersBefore := len(ctx.appliers)
		inSeqBefore := ctx.inSequences
		genBefore := *ctx.cutGen

		if match(p, ctx, k) {
			return true
		}

		if *ctx.cutGen != genBefore {
			// A cut fired during this alternative: restore state but do
			// not offer the remaining alternatives.
			ctx.pos = posBefore
			ctx.bindings = bindingsBefore
			ctx.appliers = ctx.appliers[:appliersBefore]
			ctx.inSequences = inSeqBefore
			return false
		}

		ctx.pos = posBefore
		ctx.bindings = bindingsBefore
		ctx.appliers = ctx.appliers[:appliersBefore]
		ctx.inSequences = inSeqBefore
	}
	return false
}

func cloneBindings(b Bindings) Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// matchZeroOrMore greedily repeats p, stopping the moment an iteration
// fails to consume anything (the progress guard in spec.md §4.5), and
// always succeeds itself. Repetition count is not itself a choice point:
// once the loop stops, control passes on to k with exactly that many
// repetitions; there is no backtracking across different repetition
// counts.
func matchZeroOrMore(p Production, ctx *context, k continuation) bool {
	for {
		before := ctx.pos
		bindingsBefore := cloneBindings(ctx.bindings)
		appliersBefore := len(ctx.appliers)

		matched := match(p, ctx, func(ctx *context) bool { return true })
		if !matched || ctx.pos == before {
			ctx.pos = before
			ctx.bindings = bindingsBefore
			ctx.appliers = ctx.appliers[:appliersBefore]
			break
		}
	}
	return k(ctx)
}

func matchCapturedCall(v capturedCallProd, ctx *context, k continuation) bool {
	start := ctx.pos
	key := v.name
	if ctx.named != "" {
		key = ctx.named + "." + v.name
	}
	prevNamed := ctx.named
	ctx.named = key

	return match(v.prod, ctx, func(ctx *context) bool {
		captured := strings.TrimSpace(string(ctx.text[start:ctx.pos]))
		ctx.bindings[key] = captured
		ctx.named = prevNamed
		ctx.appliers = append(ctx.appliers, v.build(captured))
		ok := k(ctx)
		if !ok {
			ctx.named = key
		}
		return ok
	})
}

func matchNamed(v namedProd, ctx *context, k continuation) bool {
	start := ctx.pos
	key := v.name
	if ctx.named != "" {
		key = ctx.named + "." + v.name
	}
	prevNamed := ctx.named
	ctx.named = key

	return match(v.prod, ctx, func(ctx *context) bool {
		captured := strings.TrimSpace(string(ctx.text[start:ctx.pos]))
		ctx.bindings[key] = captured
		ctx.named = prevNamed
		ok := k(ctx)
		if !ok {
			ctx.named = key
		}
		return ok
	})
}
