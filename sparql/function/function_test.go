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

package function_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weftdb/weft/sparql/function"
	"github.com/weftdb/weft/term"
)

func int_(v string) term.Term { return term.TypedLiteral(v, term.XSDInteger) }

func TestThreeValuedLogic(t *testing.T) {
	tt, ff, ee := function.Bool(true), function.Bool(false), term.Err("boom")

	tests := []struct {
		name string
		got  term.Term
		want term.Term
	}{
		{"AND(true,false)", function.And(tt, ff), ff},
		{"AND(false,error)", function.And(ff, ee), ff},
		{"AND(true,error) is error", function.And(tt, ee), term.Err("x")},
		{"OR(false,true)", function.Or(ff, tt), tt},
		{"OR(true,error)", function.Or(tt, ee), tt},
		{"NOT(true)", function.Not(tt), ff},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got.IsError() {
				require.True(t, tc.want.IsError(), tc.name)
				return
			}
			require.Equal(t, tc.want.Lexical(), tc.got.Lexical(), tc.name)
		})
	}
}

func TestNumericPromotionAndDivision(t *testing.T) {
	sum := function.Add(int_("3"), int_("5"))
	require.Equal(t, term.XSDInteger, sum.Datatype())
	require.Equal(t, "8", sum.Lexical())

	quot := function.Div(int_("3"), int_("5"))
	require.Equal(t, term.XSDDecimal, quot.Datatype())

	mixed := function.Add(term.TypedLiteral("1.5", term.XSDFloat), term.TypedLiteral("2", term.XSDDecimal))
	require.True(t, mixed.IsError(), "mixing float and decimal must be an error")
}

func TestComparisonBuckets(t *testing.T) {
	iri := term.PlainIRI("http://example.org/a")
	lit := term.SimpleLiteral("a")
	cmp, ok := function.Compare(term.Unbound, iri)
	require.True(t, ok)
	require.Less(t, cmp, 0)

	cmp, ok = function.Compare(iri, lit)
	require.True(t, ok)
	require.Less(t, cmp, 0)
}

func TestAggregateCount(t *testing.T) {
	acc := term.Unbound
	for _, v := range []term.Term{int_("1"), int_("2"), term.Unbound, int_("3")} {
		acc = function.CountAccumulate(v, acc, nil)
	}
	require.Equal(t, "3", acc.Lexical())
}

func TestSubstr(t *testing.T) {
	s := term.SimpleLiteral("hello world")
	one := int_("7")
	got := function.Substr(s, one, nil)
	require.Equal(t, "world", got.Lexical())

	five := int_("5")
	got = function.Substr(s, int_("1"), &five)
	require.Equal(t, "hello", got.Lexical())
}

func TestRegexAndReplace(t *testing.T) {
	text := term.SimpleLiteral("Hello World")
	require.Equal(t, "true", function.Regex(text, term.SimpleLiteral("world"), "i").Lexical())

	replaced := function.Replace(text, term.SimpleLiteral("o"), term.SimpleLiteral("0"), "")
	require.Equal(t, "Hell0 W0rld", replaced.Lexical())
}
