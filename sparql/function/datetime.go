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

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/weftdb/weft/term"
)

// xsdDateTimeLayout is the XML-schema dateTime profile used by the
// constructors below; ParseDateTime additionally accepts a bare (no
// offset) form, matching the common case of literals written without a
// timezone.
const xsdDateTimeLayout = "2006-01-02T15:04:05.999999999Z07:00"

var xsdOffsetPattern = regexp.MustCompile(`(Z|[+-]\d{2}:\d{2})$`)

// ParseDateTime parses an xsd:dateTime lexical form per spec.md §4.8
// ("constructed via XML-schema-compliant parsing").
func ParseDateTime(lexical string) (time.Time, error) {
	if xsdOffsetPattern.MatchString(lexical) {
		return time.Parse(xsdDateTimeLayout, lexical)
	}
	return time.Parse("2006-01-02T15:04:05.999999999", lexical)
}

func parseDateTimeTerm(t term.Term) (time.Time, bool) {
	if !t.IsLiteral() || t.EffectiveDatatype() != term.XSDDateTime {
		return time.Time{}, false
	}
	v, err := ParseDateTime(t.Lexical())
	return v, err == nil
}

// Year, Month, Day, Hours, Minutes implement the corresponding SPARQL
// accessor functions on an xsd:dateTime literal.
func Year(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: YEAR() operand is not a dateTime")
	}
	return term.TypedLiteral(strconv.Itoa(v.Year()), term.XSDInteger)
}

func Month(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: MONTH() operand is not a dateTime")
	}
	return term.TypedLiteral(strconv.Itoa(int(v.Month())), term.XSDInteger)
}

func Day(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: DAY() operand is not a dateTime")
	}
	return term.TypedLiteral(strconv.Itoa(v.Day()), term.XSDInteger)
}

func Hours(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: HOURS() operand is not a dateTime")
	}
	return term.TypedLiteral(strconv.Itoa(v.Hour()), term.XSDInteger)
}

func Minutes(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: MINUTES() operand is not a dateTime")
	}
	return term.TypedLiteral(strconv.Itoa(v.Minute()), term.XSDInteger)
}

// Seconds returns the seconds component including fractional milliseconds
// (spec.md §4.8, "seconds includes fractional ms").
func Seconds(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: SECONDS() operand is not a dateTime")
	}
	sec := float64(v.Second()) + float64(v.Nanosecond())/1e9
	return term.TypedLiteral(formatNumeric(sec, numDecimal).Lexical(), term.XSDDecimal)
}

// Timezone returns the xsd:dayTimeDuration of the literal's offset.
func Timezone(t term.Term) term.Term {
	v, ok := parseDateTimeTerm(t)
	if !ok {
		return term.Err("function: TIMEZONE() operand is not a dateTime")
	}
	_, offset := v.Zone()
	if offset == 0 && !strings.Contains(t.Lexical(), "Z") && !xsdOffsetPattern.MatchString(t.Lexical()) {
		return term.Err("function: TIMEZONE() operand has no timezone")
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h, m := offset/3600, (offset%3600)/60
	return term.TypedLiteral(fmt.Sprintf("%sPT%dH%dM", sign, h, m), term.XSDDayTimeDuration)
}

// TZ returns the raw trailing offset string ("" if the literal has none,
// "Z" for UTC), per spec.md §4.8.
func TZ(t term.Term) term.Term {
	if !t.IsLiteral() || t.EffectiveDatatype() != term.XSDDateTime {
		return term.Err("function: TZ() operand is not a dateTime")
	}
	m := xsdOffsetPattern.FindString(t.Lexical())
	return term.SimpleLiteral(m)
}

// Now returns the constant-within-a-query current dateTime (spec.md
// §4.8): the caller supplies it so that every NOW() call within one query
// execution returns the same value.
func Now(at time.Time) term.Term {
	return term.TypedLiteral(at.Format(xsdDateTimeLayout), term.XSDDateTime)
}
