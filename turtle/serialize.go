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
	"io"
)

// Write serializes triples as Turtle statements, one per line, using each
// term's canonical syntax. It does not abbreviate with prefixes or
// predicate-object lists; the goal is a stable, re-parseable
// representation for round-tripping and golden-file comparison, not
// pretty-printing (spec.md §4.6).
func Write(w io.Writer, triples []Triple) error {
	for _, t := range triples {
		if _, err := fmt.Fprintf(w, "%s %s %s .\n", t.Subject.String(), t.Predicate.String(), t.Object.String()); err != nil {
			return err
		}
	}
	return nil
}
