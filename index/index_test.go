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

package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestIndexAddContains(t *testing.T) {
	require := require.New(t)

	ix := New()
	ix.Add("a", "p", "b")
	require.True(ix.Contains("a", "p", "b"))
	require.False(ix.Contains("a", "p", "c"))

	// idempotent re-add
	ix.Add("a", "p", "b")
	rows := ix.Enumerate(Any(), Any(), Any())
	require.Len(rows, 1)
}

func TestIndexEnumerateOrdering(t *testing.T) {
	require := require.New(t)

	ix := New()
	ix.Add("b", "p", "y")
	ix.Add("a", "p", "z")
	ix.Add("a", "p", "x")
	ix.Add("a", "q", "w")

	rows := ix.Enumerate(Any(), Any(), Any())
	require.Equal([]Row{
		{"a", "p", "x"},
		{"a", "p", "z"},
		{"a", "q", "w"},
		{"b", "p", "y"},
	}, rows)
}

func TestIndexRemoveWildcard(t *testing.T) {
	require := require.New(t)

	ix := New()
	ix.Add("a", "p", "x")
	ix.Add("a", "p", "y")
	ix.Add("a", "q", "z")

	ix.Remove(strp("a"), strp("p"), nil)
	require.False(ix.Contains("a", "p", "x"))
	require.False(ix.Contains("a", "p", "y"))
	require.True(ix.Contains("a", "q", "z"))
}

func TestIndexRemoveFullWildcard(t *testing.T) {
	require := require.New(t)

	ix := New()
	ix.Add("a", "p", "x")
	ix.Add("b", "q", "y")
	ix.Remove(nil, nil, nil)
	require.Empty(ix.Enumerate(Any(), Any(), Any()))
}

func TestIndexViewsMagnitude(t *testing.T) {
	require := require.New(t)

	ix := New()
	ix.Add("a", "p", "x")
	ix.Add("a", "p", "y")
	ix.Add("a", "q", "z")

	outer := ix.OuterView(Any())
	require.Equal(int64(1), outer.Magnitude())

	mid := ix.MidView("a", Any())
	require.Equal(int64(2), mid.Magnitude())

	inner := ix.InnerView("a", "p", Any())
	require.Equal(int64(2), inner.Magnitude())
}

func TestConstraintMatch(t *testing.T) {
	require := require.New(t)
	require.True(Any().Match("anything"))
	require.True(Specific("x").Match("x"))
	require.False(Specific("x").Match("y"))
	require.True(Range("a", "c").Match("b"))
	require.False(Range("a", "c").Match("d"))
	require.True(InSet([]string{"a", "b"}).Match("a"))
	require.False(InSet([]string{"a", "b"}).Match("c"))
}
