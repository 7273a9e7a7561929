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

// decodeHTTPMethod extracts the request-line method token, terminated by a
// single space, and matches it case-sensitively against {GET, PUT, HEAD}.
func (d *Decoder) decodeHTTPMethod(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isNameChar)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] != ' ' {
		return StatusBadRequest, 0
	}
	method := matchExact(prefix, MethodUnknown, httpMethodTable)
	if method == MethodUnknown {
		return StatusNotImplemented, 0
	}
	d.req.HTTPMethod = method
	d.setState(stateAPIGroupPrefix)
	return statusContinue, prefix.Len() + 1
}

// decodeAPIGroupPrefix dispatches on the fixed set of recognized path
// prefixes. Every candidate is tried against the same view; a candidate
// that cannot yet be ruled in or out (not enough bytes buffered) marks the
// call pending, and only once every candidate is conclusively ruled out
// does the path fail with 400.
func (d *Decoder) decodeAPIGroupPrefix(buf []byte) (Status, int) {
	view := capView(buf)
	pending := false

	if matched, needMore := matchLiteral(view, "/api/v1/"); needMore {
		pending = true
	} else if matched {
		d.req.APIGroup = GroupDevice
		d.req.API = APIDeviceAPI
		d.setState(stateDeviceType)
		return statusContinue, len("/api/v1/")
	}

	if matched, needMore := matchLiteral(view, "/setup/v1/"); needMore {
		pending = true
	} else if matched {
		d.req.APIGroup = GroupSetup
		d.req.API = APIDeviceSetup
		d.forSetupGroup = true
		d.setState(stateDeviceType)
		return statusContinue, len("/setup/v1/")
	}

	const mgmtAPIVersions = "/management/apiversions"
	if st, _ := matchLiteralWithTerminator(view, mgmtAPIVersions, " "); st == literalPending {
		pending = true
	} else if st == literalMatched {
		if d.req.HTTPMethod == MethodPUT {
			return StatusMethodNotAllowed, 0
		}
		d.req.APIGroup = GroupManagement
		d.req.API = APIManagementAPIVersions
		d.setState(stateHTTPVersion)
		return statusContinue, len(mgmtAPIVersions) + 1
	}

	const mgmtDescription = "/management/v1/description"
	if st, _ := matchLiteralWithTerminator(view, mgmtDescription, " "); st == literalPending {
		pending = true
	} else if st == literalMatched {
		if d.req.HTTPMethod == MethodPUT {
			return StatusMethodNotAllowed, 0
		}
		d.req.APIGroup = GroupManagement
		d.req.API = APIManagementDescription
		d.setState(stateHTTPVersion)
		return statusContinue, len(mgmtDescription) + 1
	}

	const mgmtConfiguredDevices = "/management/v1/configureddevices"
	if st, _ := matchLiteralWithTerminator(view, mgmtConfiguredDevices, " "); st == literalPending {
		pending = true
	} else if st == literalMatched {
		if d.req.HTTPMethod == MethodPUT {
			return StatusMethodNotAllowed, 0
		}
		d.req.APIGroup = GroupManagement
		d.req.API = APIManagementConfiguredDevices
		d.setState(stateHTTPVersion)
		return statusContinue, len(mgmtConfiguredDevices) + 1
	}

	if st, _ := matchLiteralWithTerminator(view, "/setup", " "); st == literalPending {
		pending = true
	} else if st == literalMatched {
		if d.req.HTTPMethod != MethodGET {
			return StatusMethodNotAllowed, 0
		}
		d.req.APIGroup = GroupSetup
		d.req.API = APIServerSetup
		d.setState(stateHTTPVersion)
		return statusContinue, len("/setup") + 1
	}

	if st, term := matchLiteralWithTerminator(view, "/", " ?"); st == literalPending {
		pending = true
	} else if st == literalMatched {
		if d.req.HTTPMethod == MethodPUT {
			return StatusMethodNotAllowed, 0
		}
		d.req.APIGroup = GroupServerStatus
		d.req.API = APIServerStatus
		if term == '?' {
			d.setState(stateParamName)
		} else {
			d.setState(stateHTTPVersion)
		}
		return statusContinue, len("/") + 1
	}

	if matched, needMore := matchLiteral(view, "/asset/"); needMore {
		pending = true
	} else if matched {
		d.req.APIGroup = GroupAsset
		d.setState(stateAssetPath)
		return statusContinue, len("/asset/")
	}

	if pending {
		return StatusNeedMoreInput, 0
	}
	return StatusBadRequest, 0
}

// decodeDeviceType extracts the device-type path segment, terminated by
// '/', matched case-sensitively against the device-types table.
func (d *Decoder) decodeDeviceType(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isNameChar)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] != '/' {
		return StatusBadRequest, 0
	}
	dt := matchExact(prefix, DeviceTypeUnknown, deviceTypeTable)
	if dt == DeviceTypeUnknown {
		return StatusNotFound, 0
	}
	d.req.DeviceType = dt
	d.setState(stateDeviceNumber)
	return statusContinue, prefix.Len() + 1
}

// decodeDeviceNumber extracts a decimal device-number segment terminated
// by '/'.
func (d *Decoder) decodeDeviceNumber(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isDigit)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] != '/' || prefix.Empty() {
		return StatusBadRequest, 0
	}
	n, ok2 := parseUint32(prefix)
	if !ok2 {
		return StatusBadRequest, 0
	}
	d.req.DeviceNumber = n
	d.setState(stateDeviceMethod)
	return statusContinue, prefix.Len() + 1
}

// decodeDeviceMethod extracts the terminal ASCOM-method path segment,
// terminated by '?' (query follows) or ' ' (path ends). Under the Setup
// API group the only legal segment is the literal "setup".
func (d *Decoder) decodeDeviceMethod(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isNameChar)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	term := rest.Bytes()[0]
	if term != '?' && term != ' ' {
		return StatusBadRequest, 0
	}
	if d.forSetupGroup {
		if !prefix.equalsExact("setup") {
			return StatusNotFound, 0
		}
		d.req.DeviceMethod = MethodTagSetup
	} else {
		m := matchExact(prefix, MethodTagUnknown, ascomMethodTable)
		if m == MethodTagUnknown {
			return StatusNotFound, 0
		}
		d.req.DeviceMethod = m
	}
	if term == '?' {
		d.setState(stateParamName)
	} else {
		d.setState(stateHTTPVersion)
	}
	return statusContinue, prefix.Len() + 1
}

// decodeAssetPath feeds each '/'-delimited segment of a /asset/... path to
// the listener, one segment at a time, until the path ends at ' ' or '?'.
func (d *Decoder) decodeAssetPath(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isAssetSegmentChar)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	switch rest.Bytes()[0] {
	case '/':
		status := d.callListener(d.listener.OnAssetPathSegment(prefix.String(), false))
		if status != Continue {
			return status, 0
		}
		return statusContinue, prefix.Len() + 1
	case ' ':
		status := d.callListener(d.listener.OnAssetPathSegment(prefix.String(), true))
		if status != Continue {
			return status, 0
		}
		d.setState(stateHTTPVersion)
		return statusContinue, prefix.Len() + 1
	case '?':
		status := d.callListener(d.listener.OnAssetPathSegment(prefix.String(), true))
		if status != Continue {
			return status, 0
		}
		d.setState(stateParamName)
		return statusContinue, prefix.Len() + 1
	default:
		return StatusBadRequest, 0
	}
}

// decodeParamName extracts a query/body parameter name terminated by '=',
// matched case-insensitively against the parameters table.
func (d *Decoder) decodeParamName(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isNameChar)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] != '=' || prefix.Empty() {
		return StatusBadRequest, 0
	}
	tag := matchFold(prefix, ParamUnknown, parameterTable)
	d.pendingParam = tag
	if tag == ParamUnknown {
		status := d.callListener(d.listener.OnUnknownParameterName(prefix.String()))
		if status != Continue {
			return status, 0
		}
	}
	d.setState(stateParamValue)
	return statusContinue, prefix.Len() + 1
}

// decodeParamValue extracts a parameter value terminated by '&' or ' ', and
// interprets it according to the parameter tag recognized by the preceding
// ParamName call. The terminator itself is left in view for
// decodeParamSeparator to inspect, except when the value runs to the very
// last byte of the body, in which case end of input serves as the implicit
// terminator.
func (d *Decoder) decodeParamValue(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isParamValueChar)
	var consumed int
	switch {
	case ok:
		term := rest.Bytes()[0]
		if term != '&' && term != ' ' {
			return StatusBadRequest, 0
		}
		consumed = prefix.Len()
	case !d.isDecodingHeader && d.isFinalInput && view.Len() > 0 && uint32(view.Len()) == d.remainingContentLength:
		prefix = view
		consumed = view.Len()
	default:
		return StatusNeedMoreInput, 0
	}

	switch d.pendingParam {
	case ParamClientID:
		if d.req.HaveClientID {
			return d.overrideExtraParameter(ParamClientID, prefix, StatusBadRequest), 0
		}
		if n, ok := parseUint32(prefix); ok {
			d.req.ClientID = n
			d.req.HaveClientID = true
		} else {
			return d.overrideExtraParameter(ParamClientID, prefix, StatusBadRequest), 0
		}
	case ParamClientTransactionID:
		if d.req.HaveClientTransactionID {
			return d.overrideExtraParameter(ParamClientTransactionID, prefix, StatusBadRequest), 0
		}
		if n, ok := parseUint32(prefix); ok {
			d.req.ClientTransactionID = n
			d.req.HaveClientTransactionID = true
		} else {
			return d.overrideExtraParameter(ParamClientTransactionID, prefix, StatusBadRequest), 0
		}
	case ParamID:
		if d.req.HaveID {
			return d.overrideExtraParameter(ParamID, prefix, StatusBadRequest), 0
		}
		if n, ok := parseUint32(prefix); ok {
			d.req.ID = n
			d.req.HaveID = true
		} else {
			return d.overrideExtraParameter(ParamID, prefix, StatusBadRequest), 0
		}
	case ParamState:
		if d.req.HaveState {
			return StatusBadRequest, 0
		}
		b, ok := parseBool(prefix)
		if !ok {
			return StatusBadRequest, 0
		}
		d.req.State = b
		d.req.HaveState = true
	case ParamValue:
		if d.req.HaveValue {
			return StatusBadRequest, 0
		}
		f, ok := parseFloat64(prefix)
		if !ok {
			return StatusBadRequest, 0
		}
		d.req.Value = f
		d.req.HaveValue = true
	case ParamConnected, ParamRaw:
		status := d.callListener(d.listener.OnExtraParameter(d.pendingParam, prefix.String()))
		if status != Continue {
			return status, 0
		}
	default:
		status := d.callListener(d.listener.OnUnknownParameterValue(prefix.String()))
		if status != Continue {
			return status, 0
		}
	}

	d.setState(stateParamSeparator)
	return statusContinue, consumed
}

// overrideExtraParameter implements the "delegate to OnExtraParameter, and
// if it returns Continue substitute def" policy shared by the three typed
// numeric query/body parameters: a parse failure or duplicate is always
// terminal, whether the listener names an error of its own or defers to
// the decoder's default.
func (d *Decoder) overrideExtraParameter(tag Parameter, value stringView, def Status) Status {
	status := d.callListener(d.listener.OnExtraParameter(tag, value.String()))
	if status == Continue {
		status = def
	}
	return status
}

// decodeParamSeparator consumes a run of '&' characters between params, or
// detects the end of the query string / body.
func (d *Decoder) decodeParamSeparator(buf []byte) (Status, int) {
	if !d.isDecodingHeader && d.remainingContentLength == 0 {
		return StatusOK, 0
	}
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isParamSeparatorChar)
	if !ok {
		// The whole capped view is separator bytes: more input might extend
		// the run further, so retain exactly one trailing '&' and consume
		// the rest, guaranteeing the next call still sees a separator byte
		// to resume on instead of re-presenting the identical capped view.
		if !d.isDecodingHeader && view.Len() > 0 && uint32(view.Len()) == d.remainingContentLength {
			return StatusOK, view.Len()
		}
		if view.Len() > 1 {
			return statusContinue, view.Len() - 1
		}
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] == ' ' {
		if !d.isDecodingHeader {
			return StatusBadRequest, 0
		}
		d.setState(stateHTTPVersion)
		return statusContinue, prefix.Len() + 1
	}
	d.setState(stateParamName)
	return statusContinue, prefix.Len()
}

// decodeHTTPVersion matches the exact literal "HTTP/1.1\r\n".
func (d *Decoder) decodeHTTPVersion(buf []byte) (Status, int) {
	view := capView(buf)
	const lit = "HTTP/1.1\r\n"
	matched, needMore := matchLiteral(view, lit)
	if needMore {
		return StatusNeedMoreInput, 0
	}
	if !matched {
		return StatusVersionNotSupported, 0
	}
	d.isDecodingStartLine = false
	d.setState(stateHeaderLines)
	return statusContinue, len(lit)
}

// decodeHeaderLines checks for the CRLF that ends the header block;
// anything else begins a new header-name/value pair.
func (d *Decoder) decodeHeaderLines(buf []byte) (Status, int) {
	view := capView(buf)
	b := view.Bytes()
	if len(b) >= 1 && b[0] != '\r' {
		d.setState(stateHeaderName)
		return statusContinue, 0
	}
	if len(b) < 2 {
		return StatusNeedMoreInput, 0
	}
	if b[1] != '\n' {
		d.setState(stateHeaderName)
		return statusContinue, 0
	}
	return d.finishHeaderBlock(), 2
}

// finishHeaderBlock applies the header/body split rules once the blank
// line ending the header block has been recognized.
func (d *Decoder) finishHeaderBlock() Status {
	switch d.req.HTTPMethod {
	case MethodGET, MethodHEAD:
		return StatusOK
	case MethodPUT:
		if !d.foundContentLength {
			return StatusLengthRequired
		}
		if d.remainingContentLength == 0 {
			return StatusOK
		}
		d.isDecodingHeader = false
		d.setState(stateParamName)
		return StatusNeedMoreInput
	default:
		return StatusInternalServerError
	}
}

// decodeHeaderName extracts a header name terminated by ':', matched
// case-insensitively against the headers table.
func (d *Decoder) decodeHeaderName(buf []byte) (Status, int) {
	view := capView(buf)
	prefix, rest, ok := extractMatchingPrefix(view, isNameChar)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] != ':' || prefix.Empty() {
		return StatusBadRequest, 0
	}
	tag := matchFold(prefix, HeaderUnknown, headerTable)
	d.pendingHeader = tag
	if tag == HeaderUnknown {
		status := d.callListener(d.listener.OnUnknownHeaderName(prefix.String()))
		if status != Continue {
			return status, 0
		}
	}
	d.setState(stateHeaderValue)
	return statusContinue, prefix.Len() + 1
}

// decodeHeaderValue skips leading OWS, extracts the field-content value up
// to (but not including) the terminating CR, trims trailing OWS, and
// interprets the value according to the header tag recognized by the
// preceding HeaderName call.
func (d *Decoder) decodeHeaderValue(buf []byte) (Status, int) {
	view := capView(buf)
	_, afterLeadingWS, ok := extractMatchingPrefix(view, isOptionalWhitespace)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	leading := view.Len() - afterLeadingWS.Len()

	rawValue, rest, ok := extractMatchingPrefix(afterLeadingWS, isFieldContent)
	if !ok {
		return StatusNeedMoreInput, 0
	}
	if rest.Bytes()[0] != '\r' {
		return StatusBadRequest, 0
	}
	trimmed := newStringView(trimTrailingOWS(rawValue.Bytes()))
	consumed := leading + rawValue.Len()

	switch d.pendingHeader {
	case HeaderAccept:
		if !trimmed.contains("application/json") {
			status := d.callListener(d.listener.OnExtraHeader(HeaderAccept, trimmed.String()))
			if status != Continue {
				return status, 0
			}
		}
	case HeaderContentLength:
		if d.req.HTTPMethod == MethodPUT {
			if d.foundContentLength {
				status := d.callListener(d.listener.OnExtraHeader(HeaderContentLength, trimmed.String()))
				if status == Continue {
					status = StatusBadRequest
				}
				return status, 0
			}
			n, ok := parseUint32(trimmed)
			if !ok {
				return StatusBadRequest, 0
			}
			if n > MaxStringViewSize {
				return StatusPayloadTooLarge, 0
			}
			d.remainingContentLength = n
			d.foundContentLength = true
		}
	case HeaderContentType:
		if d.req.HTTPMethod == MethodPUT {
			if !trimmed.equalsExact("application/x-www-form-urlencoded") {
				status := d.callListener(d.listener.OnExtraHeader(HeaderContentType, trimmed.String()))
				if status == Continue {
					status = StatusUnsupportedMediaType
				}
				return status, 0
			}
		} else {
			status := d.callListener(d.listener.OnExtraHeader(HeaderContentType, trimmed.String()))
			if status != Continue {
				return status, 0
			}
		}
	case HeaderContentEncoding:
		status := d.callListener(d.listener.OnExtraHeader(HeaderContentEncoding, trimmed.String()))
		if status != Continue {
			return status, 0
		}
	default:
		status := d.callListener(d.listener.OnUnknownHeaderValue(trimmed.String()))
		if status != Continue {
			return status, 0
		}
	}

	d.setState(stateHeaderLineEnd)
	return statusContinue, consumed
}

func trimTrailingOWS(b []byte) []byte {
	for len(b) > 0 && isOptionalWhitespace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}

// decodeHeaderLineEnd matches the exact literal "\r\n" ending a header
// line, then loops back to HeaderLines for the next header or block end.
func (d *Decoder) decodeHeaderLineEnd(buf []byte) (Status, int) {
	view := capView(buf)
	matched, needMore := matchLiteral(view, "\r\n")
	if needMore {
		return StatusNeedMoreInput, 0
	}
	if !matched {
		return StatusBadRequest, 0
	}
	d.setState(stateHeaderLines)
	return statusContinue, 2
}
