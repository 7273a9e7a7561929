// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alpaca

// capView bounds buf to MaxStringViewSize before any handler scans it. This
// is what makes "token does not fit in the maximum permitted buffer" a
// detectable condition independent of how large the caller's actual rolling
// buffer happens to be: a handler never sees more than MaxStringViewSize
// bytes of lookahead, so a token whose terminator lies beyond that always
// reports NeedMoreInput, which the driver promotes to
// StatusRequestHeaderFieldsTooLarge once the caller says the buffer is full.
func capView(buf []byte) stringView {
	return newStringView(buf)
}

// findFirstNotOf returns the index of the first byte in b for which match
// returns false, or -1 if every byte matches (including when b is empty).
func findFirstNotOf(b []byte, match func(byte) bool) int {
	for i, c := range b {
		if !match(c) {
			return i
		}
	}
	return -1
}

// extractMatchingPrefix splits view at the first byte for which match
// returns false. ok is false when every byte in view matches (the caller
// doesn't yet know whether the run continues, so it needs more input).
func extractMatchingPrefix(view stringView, match func(byte) bool) (prefix stringView, rest stringView, ok bool) {
	beyond := findFirstNotOf(view.Bytes(), match)
	if beyond == -1 {
		return stringView{}, view, false
	}
	return newStringView(view.Bytes()[:beyond]), newStringView(view.Bytes()[beyond:]), true
}

// matchLiteral reports whether view begins with lit. needMore is true when
// view is too short to decide either way but matches as far as it goes.
func matchLiteral(view stringView, lit string) (matched, needMore bool) {
	b := view.Bytes()
	if len(b) >= len(lit) {
		return string(b[:len(lit)]) == lit, false
	}
	return false, string(b) == lit[:len(b)]
}

// matchLiteralWithTerminator reports whether view begins with lit
// immediately followed by one of the bytes in terminators. It distinguishes
// three outcomes: a confirmed match (with the terminator byte consumed
// alongside lit), a confirmed mismatch (lit matched but was followed by
// something else, or didn't match at all), and "need more input" (not
// enough of view is available yet to tell).
func matchLiteralWithTerminator(view stringView, lit, terminators string) (status literalMatchStatus, termByte byte) {
	b := view.Bytes()
	if len(b) < len(lit) {
		if string(b) == lit[:len(b)] {
			return literalPending, 0
		}
		return literalMismatch, 0
	}
	if string(b[:len(lit)]) != lit {
		return literalMismatch, 0
	}
	if len(b) < len(lit)+1 {
		return literalPending, 0
	}
	nb := b[len(lit)]
	for i := 0; i < len(terminators); i++ {
		if terminators[i] == nb {
			return literalMatched, nb
		}
	}
	return literalMismatch, 0
}

type literalMatchStatus uint8

const (
	literalMismatch literalMatchStatus = iota
	literalPending
	literalMatched
)
