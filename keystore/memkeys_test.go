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

package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetOrderingAndMembership(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	for _, v := range []string{"banana", "apple", "cherry", "apple"} {
		s.Add(v)
	}
	require.Equal(int64(3), s.Magnitude())
	require.Equal("apple", s.Min())
	require.Equal("cherry", s.Max())
	require.True(s.Contains("banana"))
	require.False(s.Contains("durian"))

	var got []string
	it := s.Enumerate()
	for it.Next() {
		got = append(got, it.Value())
	}
	require.Equal([]string{"apple", "banana", "cherry"}, got)
}

func TestSetRemove(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	s.Add("a")
	s.Add("b")
	s.Remove("a")
	require.False(s.Contains("a"))
	require.Equal(int64(1), s.Magnitude())
	s.Remove("nonexistent")
	require.Equal(int64(1), s.Magnitude())
}

func TestSetBetween(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		s.Add(v)
	}
	var got []string
	it := s.Between("b", "d")
	for it.Next() {
		got = append(got, it.Value())
	}
	require.Equal([]string{"b", "c", "d"}, got)
}

func TestSetClear(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	s.Add("a")
	s.Clear()
	require.Equal(int64(0), s.Magnitude())
	require.Equal("", s.Min())
}

func TestSetEmpty(t *testing.T) {
	require := require.New(t)
	s := NewSet()
	require.Equal("", s.Min())
	require.Equal("", s.Max())
	require.False(s.Enumerate().Next())
}
