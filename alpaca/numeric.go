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

import "strconv"

const maxUint32 = 1<<32 - 1

// parseUint32 parses a decimal, unsigned, unsigned run of digits (no sign,
// no whitespace). Leading zeros are permitted and ignored. Overflow of the
// 32-bit range at any step is a parse failure, checked with a pre-multiply
// bound (per original_source/src/request_decoder.cpp's to_uint32) rather
// than detecting wraparound after the fact.
func parseUint32(v stringView) (uint32, bool) {
	b := v.Bytes()
	if len(b) == 0 {
		return 0, false
	}
	var n uint32
	for _, c := range b {
		if !isDigit(c) {
			return 0, false
		}
		d := uint32(c - '0')
		if n > (maxUint32-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}

// parseFloat64 parses the usual dotted decimal syntax used for the Switch
// device's Value parameter. Loss of precision is acceptable; out-of-range
// input is reported as a parse failure, per spec.md §4.4.
func parseFloat64(v stringView) (float64, bool) {
	if v.Empty() {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseBool parses the case-insensitive literals "true"/"false" used for
// the Switch device's State parameter.
func parseBool(v stringView) (bool, bool) {
	if v.equalsFold("true") {
		return true, true
	}
	if v.equalsFold("false") {
		return false, true
	}
	return false, false
}
