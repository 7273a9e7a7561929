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

// Package alpaca implements a restartable, allocation-free decoder for
// ASCOM Alpaca HTTP/1.1 requests. A Decoder consumes bytes from a
// caller-owned rolling buffer, one call at a time, and incrementally
// populates a Request until it reaches a terminal HTTP status.
package alpaca

// state is the decoder's current grammar position, realized as a numeric
// enum dispatched through a switch in step rather than as function
// pointers: this keeps the state machine free of heap indirection and lets
// the switch be checked for exhaustiveness by inspection.
type state uint8

const (
	stateHTTPMethod state = iota
	stateAPIGroupPrefix
	stateDeviceType
	stateDeviceNumber
	stateDeviceMethod
	stateAssetPath
	stateParamName
	stateParamValue
	stateParamSeparator
	stateHTTPVersion
	stateHeaderLines
	stateHeaderName
	stateHeaderValue
	stateHeaderLineEnd
)

// Decoder is a single restartable HTTP/1.1 Alpaca request decoder. It holds
// no reference to any caller buffer between Decode calls; everything it
// retains across calls is O(1) scalar state.
type Decoder struct {
	req      *Request
	listener Listener

	active bool
	state  state

	isDecodingHeader    bool
	isDecodingStartLine bool
	isFinalInput        bool

	foundContentLength     bool
	remainingContentLength uint32

	// forSetupGroup is set once ApiGroupPrefix recognizes "/setup/v1/", so
	// DeviceMethod can require the literal terminal segment "setup" instead
	// of matching the full ASCOM method table.
	forSetupGroup bool

	// pendingParam/pendingHeader carry the tag recognized by ParamName /
	// HeaderName across to the paired ParamValue / HeaderValue call.
	pendingParam  Parameter
	pendingHeader Header
}

// New binds request and listener (listener may be nil, equivalent to
// NopListener) and returns a Decoder with uninitialized state; Reset must
// be called before the first Decode.
func New(request *Request, listener Listener) *Decoder {
	if listener == nil {
		listener = NopListener{}
	}
	return &Decoder{req: request, listener: listener}
}

// Reset clears the request record and returns the decoder to its initial
// state, ready to decode a new request from byte zero.
func (d *Decoder) Reset() {
	d.req.Reset()
	d.active = true
	d.state = stateHTTPMethod
	d.isDecodingHeader = true
	d.isDecodingStartLine = true
	d.isFinalInput = false
	d.foundContentLength = false
	d.remainingContentLength = 0
	d.forSetupGroup = false
	d.pendingParam = ParamUnknown
	d.pendingHeader = HeaderUnknown
}

// Decode feeds buf to the current handler, looping while it reports
// statusContinue, and returns the first terminal Status or
// StatusNeedMoreInput, plus the number of leading bytes of buf it consumed.
// The caller must discard exactly that many bytes from the front of its
// rolling buffer before the next call; the remaining suffix is untouched.
//
// bufferIsFull tells the driver the caller cannot grow buf further before
// calling again; atEndOfInput tells it no more bytes will ever arrive. Both
// only matter when this call would otherwise report StatusNeedMoreInput.
func (d *Decoder) Decode(buf []byte, bufferIsFull, atEndOfInput bool) (Status, int) {
	if !d.active {
		return StatusInternalServerError, 0
	}

	if !d.isDecodingHeader {
		if status, ok := d.checkBodyBounds(buf, atEndOfInput); !ok {
			d.active = false
			return status, 0
		}
	}

	remaining := buf
	consumed := 0
	var status Status
	for {
		var n int
		inBody := !d.isDecodingHeader
		status, n = d.step(remaining)
		remaining = remaining[n:]
		consumed += n
		if inBody && n > 0 {
			d.remainingContentLength -= uint32(n)
		}
		if status != statusContinue {
			break
		}
	}

	if status == StatusNeedMoreInput && bufferIsFull && consumed == 0 {
		status = StatusRequestHeaderFieldsTooLarge
	}
	if status.IsTerminal() {
		d.active = false
	}
	return status, consumed
}

// checkBodyBounds applies the header/body split's buffer-size rules from
// spec.md §4.1 before the first handler of a body-decoding call runs. ok is
// false when the call must be rejected outright without invoking a
// handler.
func (d *Decoder) checkBodyBounds(buf []byte, atEndOfInput bool) (Status, bool) {
	n := uint32(len(buf))
	switch {
	case n > d.remainingContentLength:
		// More bytes are available than the declared body length permits;
		// treat the excess as an oversized/pipelined payload.
		return StatusPayloadTooLarge, false
	case n == d.remainingContentLength:
		d.isFinalInput = true
	case atEndOfInput:
		return StatusBadRequest, false
	}
	return 0, true
}

// callListener sanitizes a listener's return value: only Continue and
// terminal HTTP statuses are legal listener results, so StatusNeedMoreInput
// and any other value below StatusOK are converted to 500.
func (d *Decoder) callListener(s Status) Status {
	if s != Continue && !s.IsTerminal() {
		return StatusInternalServerError
	}
	return s
}

// step dispatches to the handler for the current state and returns its
// result directly; handlers are responsible for advancing d.state
// themselves before returning statusContinue.
func (d *Decoder) step(buf []byte) (Status, int) {
	switch d.state {
	case stateHTTPMethod:
		return d.decodeHTTPMethod(buf)
	case stateAPIGroupPrefix:
		return d.decodeAPIGroupPrefix(buf)
	case stateDeviceType:
		return d.decodeDeviceType(buf)
	case stateDeviceNumber:
		return d.decodeDeviceNumber(buf)
	case stateDeviceMethod:
		return d.decodeDeviceMethod(buf)
	case stateAssetPath:
		return d.decodeAssetPath(buf)
	case stateParamName:
		return d.decodeParamName(buf)
	case stateParamValue:
		return d.decodeParamValue(buf)
	case stateParamSeparator:
		return d.decodeParamSeparator(buf)
	case stateHTTPVersion:
		return d.decodeHTTPVersion(buf)
	case stateHeaderLines:
		return d.decodeHeaderLines(buf)
	case stateHeaderName:
		return d.decodeHeaderName(buf)
	case stateHeaderValue:
		return d.decodeHeaderValue(buf)
	case stateHeaderLineEnd:
		return d.decodeHeaderLineEnd(buf)
	default:
		return StatusInternalServerError, 0
	}
}

func (d *Decoder) setState(s state) {
	d.state = s
}
