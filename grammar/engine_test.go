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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLiteralSequence(t *testing.T) {
	require := require.New(t)

	g := &Grammar{Root: All(Literal("foo", true), Literal("bar", true))}
	_, err := g.Parse("foo bar", nil)
	require.NoError(err)
}

func TestAnyOfBacktracksOnLaterFailure(t *testing.T) {
	require := require.New(t)

	// "ab" or "a" followed by "b"; AnyOf must try "a" (shorter) after "ab"
	// fails to let the trailing Literal("b") match.
	root := All(
		AnyOf(Literal("ab", true), Literal("a", true)),
		Literal("b", true),
	)
	g := &Grammar{Root: root}
	_, err := g.Parse("ab", nil)
	require.NoError(err)
}

func TestOptionalConsumesNothingWhenAbsent(t *testing.T) {
	require := require.New(t)

	root := All(Optional(Literal("x", true)), Literal("y", true))
	g := &Grammar{Root: root}
	_, err := g.Parse("y", nil)
	require.NoError(err)
}

func TestZeroOrMoreProgressGuard(t *testing.T) {
	require := require.New(t)

	root := All(ZeroOrMore(Optional(Literal("z", true))), Literal("end", true))
	g := &Grammar{Root: root}
	_, err := g.Parse("end", nil)
	require.NoError(err)
}

func TestNamedCapture(t *testing.T) {
	require := require.New(t)

	root := Named("word", OneOrMore(InRange(RuneRange{Lo: 'a', Hi: 'z'})))
	g := &Grammar{Root: root}
	bindings, err := g.Parse("hello", nil)
	require.NoError(err)
	v, ok := bindings.Get("word")
	require.True(ok)
	require.Equal("hello", v)
}

func TestNestedNamedDottedPath(t *testing.T) {
	require := require.New(t)

	root := Named("outer", Named("inner", OneOrMore(CharLiteral('x'))))
	g := &Grammar{Root: root}
	bindings, err := g.Parse("xxx", nil)
	require.NoError(err)
	v, ok := bindings.Get("outer.inner")
	require.True(ok)
	require.Equal("xxx", v)
}

func TestCallDefersActionToSuccess(t *testing.T) {
	require := require.New(t)

	var ran []string
	root := All(
		Call(func(producer any, b Bindings) { ran = append(ran, "first") }),
		Call(func(producer any, b Bindings) { ran = append(ran, "second") }),
	)
	g := &Grammar{Root: root}
	_, err := g.Parse("", nil)
	require.NoError(err)
	require.Equal([]string{"first", "second"}, ran)
}

func TestCallDiscardedOnBacktrackedAlternative(t *testing.T) {
	require := require.New(t)

	var ran []string
	root := All(
		AnyOf(
			All(Call(func(producer any, b Bindings) { ran = append(ran, "A") }), Literal("zzz", true)),
			All(Call(func(producer any, b Bindings) { ran = append(ran, "B") }), Literal("ok", true)),
		),
	)
	g := &Grammar{Root: root}
	_, err := g.Parse("ok", nil)
	require.NoError(err)
	require.Equal([]string{"B"}, ran)
}

func TestCutCommitsToFirstAlternative(t *testing.T) {
	require := require.New(t)

	// Once Cut fires inside the first alternative, a later failure must
	// not fall through to the second alternative even though it would
	// otherwise match.
	root := All(
		AnyOf(
			All(Literal("a", true), Cut(), Literal("never-matches", true)),
			Literal("a", true),
		),
	)
	g := &Grammar{Root: root}
	_, err := g.Parse("a", nil)
	require.Error(err)
}

func TestSequenceDisablesWhitespaceSkip(t *testing.T) {
	require := require.New(t)

	root := Sequence(Literal("a", true), Literal("b", true))
	g := &Grammar{Root: root}
	_, err := g.Parse("ab", nil)
	require.NoError(err)

	_, err = g.Parse("a b", nil)
	require.Error(err)
}

func TestReferenceResolvesCycle(t *testing.T) {
	require := require.New(t)

	var expr Production
	expr = AnyOf(
		All(CharLiteral('('), Reference(func() Production { return expr }), CharLiteral(')')),
		CharLiteral('x'),
	)
	g := &Grammar{Root: expr}
	_, err := g.Parse("((x))", nil)
	require.NoError(err)
}

func TestParseFailureReportsResidual(t *testing.T) {
	require := require.New(t)

	g := &Grammar{Root: Literal("foo", true)}
	_, err := g.Parse("foo bar baz", nil)
	require.Error(err)
	require.Contains(err.Error(), "bar baz")
}
