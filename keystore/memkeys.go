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
	"sort"

	"github.com/zeebo/xxh3"
)

// Set is the default in-memory MutableStore: a sorted slice for ordered
// operations (Min/Max/Between/Enumerate), backed by an xxh3-hashed bucket
// index for O(1)-average Contains/Add/Remove membership checks without
// leaning on Go's built-in map hashing.
type Set struct {
	values  []string
	buckets map[uint64][]string
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{buckets: make(map[uint64][]string)}
}

var _ MutableStore = (*Set)(nil)

func hashOf(s string) uint64 {
	return xxh3.HashString(s)
}

func bucketIndexOf(bucket []string, s string) int {
	for i, v := range bucket {
		if v == s {
			return i
		}
	}
	return -1
}

// Contains reports whether s is a member of the set.
func (s *Set) Contains(v string) bool {
	bucket := s.buckets[hashOf(v)]
	return bucketIndexOf(bucket, v) >= 0
}

// Add inserts v, a no-op if already present.
func (s *Set) Add(v string) {
	h := hashOf(v)
	bucket := s.buckets[h]
	if bucketIndexOf(bucket, v) >= 0 {
		return
	}
	s.buckets[h] = append(bucket, v)

	i := sort.SearchStrings(s.values, v)
	s.values = append(s.values, "")
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = v
}

// Remove deletes v, a no-op if absent.
func (s *Set) Remove(v string) {
	h := hashOf(v)
	bucket := s.buckets[h]
	idx := bucketIndexOf(bucket, v)
	if idx < 0 {
		return
	}
	bucket[idx] = bucket[len(bucket)-1]
	s.buckets[h] = bucket[:len(bucket)-1]

	i := sort.SearchStrings(s.values, v)
	if i < len(s.values) && s.values[i] == v {
		s.values = append(s.values[:i], s.values[i+1:]...)
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.values = nil
	s.buckets = make(map[uint64][]string)
}

// Min returns the smallest member, or "" if empty.
func (s *Set) Min() string {
	if len(s.values) == 0 {
		return ""
	}
	return s.values[0]
}

// Max returns the largest member, or "" if empty.
func (s *Set) Max() string {
	if len(s.values) == 0 {
		return ""
	}
	return s.values[len(s.values)-1]
}

// Magnitude returns the number of members.
func (s *Set) Magnitude() int64 {
	return int64(len(s.values))
}

// Between returns an ascending iterator over members in [lo, hi].
func (s *Set) Between(lo, hi string) Iterator {
	start := sort.SearchStrings(s.values, lo)
	end := sort.SearchStrings(s.values, hi)
	for end < len(s.values) && s.values[end] == hi {
		end++
	}
	return &sliceIterator{values: s.values[start:end], pos: -1}
}

// Enumerate returns an ascending iterator over every member.
func (s *Set) Enumerate() Iterator {
	return &sliceIterator{values: s.values, pos: -1}
}

type sliceIterator struct {
	values []string
	pos    int
}

func (it *sliceIterator) Next() bool {
	it.pos++
	return it.pos < len(it.values)
}

func (it *sliceIterator) Value() string {
	return it.values[it.pos]
}
