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

// token pairs a compile-time string constant with the enum value it maps
// to. Tables built from these are read-only and are scanned linearly: table
// sizes are small (the largest, ascomMethodTable, has 28 entries), so a linear scan
// costs less than maintaining a sorted/hashed structure would.
type token[E any] struct {
	str string
	id  E
}

// matchExact finds the table entry whose str is byte-for-byte identical to
// view, used for HTTP method names, device types and ASCOM method names —
// the Alpaca wire format mandates lowercase path segments and tests assert
// rejection of mis-cased ones, so no folding is done here.
func matchExact[E any](view stringView, unknown E, table []token[E]) E {
	s := view.String()
	for _, t := range table {
		if t.str == s {
			return t.id
		}
	}
	return unknown
}

// matchFold finds the table entry that case-insensitively equals view. The
// table entries are already lowercase; only the input side is folded, and
// it is folded byte-by-byte during comparison rather than materialized into
// a scratch buffer (spec.md §4.3 forbids allocating scratch buffers here).
func matchFold[E any](view stringView, unknown E, table []token[E]) E {
	b := view.Bytes()
	for _, t := range table {
		if equalFold(t.str, b) {
			return t.id
		}
	}
	return unknown
}

// equalFold reports whether lower (already lowercase ASCII) equals b once b
// is lowercased byte-by-byte.
func equalFold(lower string, b []byte) bool {
	if len(lower) != len(b) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if toLowerASCII(b[i]) != lower[i] {
			return false
		}
	}
	return true
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

var httpMethodTable = []token[HTTPMethod]{
	{"GET", MethodGET},
	{"PUT", MethodPUT},
	{"HEAD", MethodHEAD},
}

var deviceTypeTable = []token[DeviceType]{
	{"camera", DeviceTypeCamera},
	{"covercalibrator", DeviceTypeCoverCalibrator},
	{"dome", DeviceTypeDome},
	{"filterwheel", DeviceTypeFilterWheel},
	{"focuser", DeviceTypeFocuser},
	{"observingconditions", DeviceTypeObservingConditions},
	{"rotator", DeviceTypeRotator},
	{"safetymonitor", DeviceTypeSafetyMonitor},
	{"switch", DeviceTypeSwitch},
	{"telescope", DeviceTypeTelescope},
}

// ascomMethodTable is the closed set of recognized ASCOM method names,
// matched case-sensitively per spec.md §6. It mixes the common methods
// every device type supports with the handful of device-specific ones
// named in the spec's table; the decoder does not cross-check that a
// device-specific method was reached via the matching device_type.
var ascomMethodTable = []token[DeviceMethod]{
	{"connected", MethodTagConnected},
	{"description", MethodTagDescription},
	{"driverinfo", MethodTagDriverInfo},
	{"driverversion", MethodTagDriverVersion},
	{"interfaceversion", MethodTagInterfaceVersion},
	{"name", MethodTagName},
	{"supportedactions", MethodTagSupportedActions},
	{"setup", MethodTagSetup},

	{"averageperiod", MethodTagAveragePeriod},
	{"cloudcover", MethodTagCloudCover},
	{"dewpoint", MethodTagDewPoint},
	{"humidity", MethodTagHumidity},
	{"pressure", MethodTagPressure},
	{"rainrate", MethodTagRainRate},
	{"refresh", MethodTagRefresh},
	{"temperature", MethodTagTemperature},
	{"sensordescription", MethodTagSensorDescription},

	{"issafe", MethodTagIsSafe},

	{"getswitchvalue", MethodTagGetSwitchValue},
	{"setswitch", MethodTagSetSwitch},
	{"setswitchvalue", MethodTagSetSwitchValue},
	{"maxswitch", MethodTagMaxSwitch},
	{"getswitch", MethodTagGetSwitch},
	{"getswitchdescription", MethodTagGetSwitchDescription},
	{"getswitchname", MethodTagGetSwitchName},
	{"minswitchvalue", MethodTagMinSwitchValue},
	{"maxswitchvalue", MethodTagMaxSwitchValue},
	{"switchstep", MethodTagSwitchStep},
}

var parameterTable = []token[Parameter]{
	{"clientid", ParamClientID},
	{"clienttransactionid", ParamClientTransactionID},
	{"id", ParamID},
	{"state", ParamState},
	{"value", ParamValue},
	{"connected", ParamConnected},
	{"raw", ParamRaw},
}

var headerTable = []token[Header]{
	{"accept", HeaderAccept},
	{"content-length", HeaderContentLength},
	{"content-type", HeaderContentType},
	{"content-encoding", HeaderContentEncoding},
}

// Character classifiers. None allocate; each is a single switch/range test
// applied one byte at a time by the prefix-scanning helpers in scan.go.

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

// isNameChar matches characters allowed in a path segment, parameter name,
// or header name: the subset of URI/header grammar Alpaca actually needs.
func isNameChar(c byte) bool {
	return isAlphaNumeric(c) || c == '-' || c == '_'
}

// isParamValueChar matches characters allowed in a URL-encoded parameter
// value, whether in the query string or the body of a PUT request.
func isParamValueChar(c byte) bool {
	return isAlphaNumeric(c) || c == '-' || c == '_' || c == '=' || c == '%' || c == '.'
}

func isOptionalWhitespace(c byte) bool { return c == ' ' || c == '\t' }

func isParamSeparatorChar(c byte) bool { return c == '&' }

// isFieldContent matches RFC 7230 §3.2 field-content: printable ASCII or
// horizontal tab. Ported from original_source's IsFieldContent.
func isFieldContent(c byte) bool {
	return c == '\t' || (c >= 0x20 && c < 0x7f)
}

// isAssetSegmentChar matches bytes allowed within a single "/asset/..."
// path segment: printable ASCII other than the delimiters that end a
// segment or the path itself ('/', '?', ' ').
func isAssetSegmentChar(c byte) bool {
	return isFieldContent(c) && c != '/' && c != '?' && c != ' ' && c != '\t'
}
