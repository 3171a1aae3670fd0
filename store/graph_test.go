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

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weftdb/weft/index"
)

func rowsOf(t *testing.T, s *Solution) [][]string {
	t.Helper()
	var out [][]string
	it := s.Rows()
	defer it.Close()
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, row)
	}
	return out
}

func TestAssertAndIsTrue(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")
	require.True(g.IsTrue("a", "p", "b"))
	require.False(g.IsTrue("a", "p", "c"))
}

func TestAssertIdempotent(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")
	g.Assert("a", "p", "b")
	sol := g.Enumerate(index.Any(), index.Any(), index.Any())
	require.Len(rowsOf(t, sol), 1)
}

func TestAssertRetractRoundTrip(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")
	s, p, o := "a", "p", "b"
	g.Retract(&s, &p, &o)
	require.False(g.IsTrue("a", "p", "b"))
	require.Empty(rowsOf(t, g.Enumerate(index.Any(), index.Any(), index.Any())))
}

func TestRetractWildcard(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")
	g.Assert("a", "p", "c")
	g.Assert("a", "q", "b")

	p := "p"
	g.Retract(nil, &p, nil)
	require.False(g.IsTrue("a", "p", "b"))
	require.False(g.IsTrue("a", "p", "c"))
	require.True(g.IsTrue("a", "q", "b"))
}

func TestEnumerateDispatchTwoSpecific(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	for _, tr := range [][3]string{
		{"a", "p", "b"}, {"a", "p", "c"}, {"a", "q", "b"}, {"d", "p", "b"},
	} {
		g.Assert(tr[0], tr[1], tr[2])
	}

	// SELECT ?s WHERE { ?s <p> <b> } — scenario 2 in spec.md §8.
	sol := g.Enumerate(index.Any(), index.Specific("p"), index.Specific("b"))
	require.Equal(1, sol.Width)
	rows := rowsOf(t, sol)
	var got []string
	for _, r := range rows {
		got = append(got, r[0])
	}
	require.ElementsMatch([]string{"a", "d"}, got)
}

func TestEnumerateDispatchOneSpecificReversedForPOS(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "x")
	g.Assert("b", "p", "y")

	// Only p bound: POS branch, output columns must be [s, o].
	sol := g.Enumerate(index.Any(), index.Specific("p"), index.Any())
	require.Equal(2, sol.Width)
	rows := rowsOf(t, sol)
	require.Len(rows, 2)
	for _, r := range rows {
		require.Len(r, 2)
	}
	require.Contains(rows, []string{"a", "x"})
	require.Contains(rows, []string{"b", "y"})
}

func TestEnumerateAllSpecific(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")

	sol := g.Enumerate(index.Specific("a"), index.Specific("p"), index.Specific("b"))
	require.Equal(0, sol.Width)
	require.Len(rowsOf(t, sol), 1)

	sol2 := g.Enumerate(index.Specific("a"), index.Specific("p"), index.Specific("c"))
	require.Empty(rowsOf(t, sol2))
}

func TestEnumerateNoneSpecific(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")
	g.Assert("c", "q", "d")

	sol := g.Enumerate(index.Any(), index.Any(), index.Any())
	require.Equal(3, sol.Width)
	require.Len(rowsOf(t, sol), 2)
	views := sol.Views()
	require.Len(views, 3)
}

func TestTriality(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.Assert("a", "p", "b")

	require.True(g.spo.Contains("a", "p", "b"))
	require.True(g.pos.Contains("p", "b", "a"))
	require.True(g.osp.Contains("b", "a", "p"))
}

func TestDatasetActiveGraph(t *testing.T) {
	require := require.New(t)

	d := NewDataset(Config{})
	require.Equal(DefaultGraphName, d.ActiveName())

	other := d.CreateGraph("other")
	other.Assert("x", "y", "z")
	d.SetActiveGraph("other")
	require.True(d.Active().IsTrue("x", "y", "z"))
}

func TestTransitiveClosureRule(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.AddRule(TransitiveClosureRule("knows"))
	g.Assert("a", "knows", "b")
	g.Assert("b", "knows", "c")

	require.True(g.IsTrue("a", "knows", "c"))
}

func TestSubclassRewriteRule(t *testing.T) {
	require := require.New(t)

	g := NewGraph()
	g.AddRule(SubclassRewriteRule("type", "subClassOf"))
	g.Assert("Dog", "subClassOf", "Animal")
	g.Assert("fido", "type", "Dog")

	require.True(g.IsTrue("fido", "type", "Animal"))
}
