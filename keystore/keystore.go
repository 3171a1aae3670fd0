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

// Package keystore defines the external storage contract weft's index and
// graph layers consume (spec.md §6, "Ordered Key Store"): an ordered set of
// strings, plus one in-memory implementation used as the default backend.
// A persistent implementation (heap allocator, on-disk AA-tree, memory
// mapped files) is explicitly out of scope for this module; any type
// satisfying Store/MutableStore can be dropped in behind it.
package keystore

// Iterator walks an ordered key collection in ascending order.
type Iterator interface {
	// Next advances the iterator and reports whether a value is available.
	Next() bool
	// Value returns the current value. Only valid after a true Next.
	Value() string
}

// Store is the read-only ordered key collection interface the core depends
// on (spec.md §6). An empty store returns "" from Min/Max.
type Store interface {
	Min() string
	Max() string
	Magnitude() int64
	Contains(s string) bool
	Between(lo, hi string) Iterator
	Enumerate() Iterator
}

// MutableStore additionally supports the writes weft's index layer needs;
// the read-only Store above is the minimal contract an external, persistent
// collection must satisfy, but something has to originate the data.
type MutableStore interface {
	Store
	Add(s string)
	Remove(s string)
	Clear()
}
