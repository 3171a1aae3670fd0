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

package function

import "github.com/weftdb/weft/term"

// IsIRIFn, IsBlankFn, IsLiteralFn, IsNumericFn, BoundFn implement the
// SPARQL 1.1 type-predicate builtins (spec.md §4.8, §9's "ensure the
// renamed set matches the SPARQL 1.1 spec" open question): each simply
// forwards to the corresponding term.Term/IsNumeric predicate, wrapped as
// an xsd:boolean term rather than dispatched through a stringified method
// name as the source implementation does.
func IsIRIFn(t term.Term) term.Term     { return Bool(t.IsIRI()) }
func IsBlankFn(t term.Term) term.Term   { return Bool(t.IsBlank()) }
func IsLiteralFn(t term.Term) term.Term { return Bool(t.IsLiteral()) }
func IsNumericFn(t term.Term) term.Term { return Bool(IsNumeric(t)) }
func BoundFn(t term.Term) term.Term     { return Bool(IsBound(t)) }
