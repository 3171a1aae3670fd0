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
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"github.com/weftdb/weft/term"
)

func hashLiteral(t term.Term, sum func([]byte) string) term.Term {
	if !t.IsLiteral() {
		return term.Err("function: hash operand is not a literal")
	}
	return term.SimpleLiteral(sum([]byte(t.Lexical())))
}

// MD5 implements MD5() (spec.md §4.8): lowercase hex digest.
func MD5(t term.Term) term.Term {
	return hashLiteral(t, func(b []byte) string { s := md5.Sum(b); return hex.EncodeToString(s[:]) })
}

// SHA1 implements SHA1().
func SHA1(t term.Term) term.Term {
	return hashLiteral(t, func(b []byte) string { s := sha1.Sum(b); return hex.EncodeToString(s[:]) })
}

// SHA256 implements SHA256().
func SHA256(t term.Term) term.Term {
	return hashLiteral(t, func(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) })
}

// SHA384 implements SHA384().
func SHA384(t term.Term) term.Term {
	return hashLiteral(t, func(b []byte) string { s := sha512.Sum384(b); return hex.EncodeToString(s[:]) })
}

// SHA512 implements SHA512().
func SHA512(t term.Term) term.Term {
	return hashLiteral(t, func(b []byte) string { s := sha512.Sum512(b); return hex.EncodeToString(s[:]) })
}
