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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeAll feeds input to a fresh decoder one shot at a time, discarding
// consumed bytes between calls exactly as a real caller would, and returns
// the terminal status.
func decodeAll(t *testing.T, input string, listener Listener) (Status, *Request) {
	t.Helper()
	req := &Request{}
	dec := New(req, listener)
	dec.Reset()

	buf := []byte(input)
	for {
		status, n := dec.Decode(buf, false, true)
		buf = buf[n:]
		if status.IsTerminal() {
			return status, req
		}
		if status == StatusNeedMoreInput {
			require.NotEmpty(t, buf, "ran out of input before reaching a terminal status")
			continue
		}
	}
}

// decodeFragmented feeds input one byte at a time, exercising the same
// restart path a byte-at-a-time transport would.
func decodeFragmented(t *testing.T, input string, listener Listener) (Status, *Request) {
	t.Helper()
	req := &Request{}
	dec := New(req, listener)
	dec.Reset()

	remaining := []byte(input)
	var pending []byte
	for {
		if len(remaining) > 0 {
			pending = append(pending, remaining[0])
			remaining = remaining[1:]
		}
		status, n := dec.Decode(pending, false, len(remaining) == 0)
		pending = pending[n:]
		if status.IsTerminal() {
			return status, req
		}
		require.Equal(t, StatusNeedMoreInput, status)
		if len(remaining) == 0 && len(pending) == 0 {
			t.Fatalf("decoder stalled: no more input and no progress")
		}
	}
}

func TestDecodeServerStatusRoot(t *testing.T) {
	status, req := decodeAll(t, "GET / HTTP/1.1\r\n\r\n", nil)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, MethodGET, req.HTTPMethod)
	assert.Equal(t, GroupServerStatus, req.APIGroup)
	assert.Equal(t, APIServerStatus, req.API)
	assert.False(t, req.HaveClientID)
}

func TestDecodeDeviceGET(t *testing.T) {
	status, req := decodeAll(t, "GET /api/v1/safetymonitor/0/issafe HTTP/1.1\r\n\r\n", nil)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, MethodGET, req.HTTPMethod)
	assert.Equal(t, GroupDevice, req.APIGroup)
	assert.Equal(t, DeviceTypeSafetyMonitor, req.DeviceType)
	assert.EqualValues(t, 0, req.DeviceNumber)
	assert.Equal(t, MethodTagIsSafe, req.DeviceMethod)
}

func TestDecodeDevicePUTWithQueryParams(t *testing.T) {
	input := "PUT /api/v1/observingconditions/0/refresh?ClientID=123&clienttransactionid=432 HTTP/1.1\r\nContent-Length: 0\r\n\r\n"
	status, req := decodeAll(t, input, nil)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, MethodPUT, req.HTTPMethod)
	assert.Equal(t, DeviceTypeObservingConditions, req.DeviceType)
	assert.EqualValues(t, 0, req.DeviceNumber)
	assert.Equal(t, MethodTagRefresh, req.DeviceMethod)
	assert.True(t, req.HaveClientID)
	assert.EqualValues(t, 123, req.ClientID)
	assert.True(t, req.HaveClientTransactionID)
	assert.EqualValues(t, 432, req.ClientTransactionID)
}

func TestDecodePutWithBody(t *testing.T) {
	input := "PUT /api/v1/switch/0/setswitchvalue HTTP/1.1\r\n" +
		"content-TYPE:application/x-www-form-urlencoded\r\n" +
		"Content-Length:51\r\n\r\n" +
		"value=0.99999&id=0&clienttransactionid=9&clientid=7"
	status, req := decodeAll(t, input, nil)
	require.Equal(t, StatusOK, status)
	assert.True(t, req.HaveValue)
	assert.InDelta(t, 0.99999, req.Value, 1e-9)
	assert.True(t, req.HaveID)
	assert.EqualValues(t, 0, req.ID)
	assert.EqualValues(t, 9, req.ClientTransactionID)
	assert.EqualValues(t, 7, req.ClientID)
}

func TestDecodePutMissingContentLength(t *testing.T) {
	status, _ := decodeAll(t, "PUT /api/v1/safetymonitor/1/issafe HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusLengthRequired, status)
}

func TestDecodeDeviceNumberOverflow(t *testing.T) {
	status, req := decodeAll(t, "GET /api/v1/safetymonitor/4294967300/issafe HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusBadRequest, status)
	assert.False(t, req.HaveClientID)
	assert.False(t, req.HaveClientTransactionID)
}

func TestDecodeBodyExceedsDeclaredLength(t *testing.T) {
	status, _ := decodeAll(t, "PUT /api/v1/safetymonitor/1/issafe HTTP/1.1\r\nContent-Length: 1\r\n\r\n12", nil)
	assert.Equal(t, StatusPayloadTooLarge, status)
}

func TestDecodeUnknownMethod(t *testing.T) {
	status, _ := decodeAll(t, "POST / HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusNotImplemented, status)
}

func TestDecodeUnknownDeviceType(t *testing.T) {
	status, _ := decodeAll(t, "GET /api/v1/toaster/0/issafe HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusNotFound, status)
}

func TestDecodeUnknownDeviceMethod(t *testing.T) {
	status, _ := decodeAll(t, "GET /api/v1/safetymonitor/0/bogus HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusNotFound, status)
}

func TestDecodeBadHTTPVersion(t *testing.T) {
	status, _ := decodeAll(t, "GET / HTTP/1.0\r\n\r\n", nil)
	assert.Equal(t, StatusVersionNotSupported, status)
}

func TestDecodePutOnSetupRejected(t *testing.T) {
	status, _ := decodeAll(t, "PUT /setup HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusMethodNotAllowed, status)
}

func TestDecodePutOnRootRejected(t *testing.T) {
	status, _ := decodeAll(t, "PUT / HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusMethodNotAllowed, status)
}

func TestDecodePutOnManagementRejected(t *testing.T) {
	status, _ := decodeAll(t, "PUT /management/apiversions HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusMethodNotAllowed, status)
}

func TestDecodeManagementEndpoints(t *testing.T) {
	cases := []struct {
		path string
		api  API
	}{
		{"/management/apiversions", APIManagementAPIVersions},
		{"/management/v1/description", APIManagementDescription},
		{"/management/v1/configureddevices", APIManagementConfiguredDevices},
	}
	for _, c := range cases {
		status, req := decodeAll(t, "GET "+c.path+" HTTP/1.1\r\n\r\n", nil)
		require.Equal(t, StatusOK, status, c.path)
		assert.Equal(t, GroupManagement, req.APIGroup, c.path)
		assert.Equal(t, c.api, req.API, c.path)
	}
}

func TestDecodeSetupDeviceRequiresLiteralSetup(t *testing.T) {
	status, req := decodeAll(t, "GET /setup/v1/telescope/0/setup HTTP/1.1\r\n\r\n", nil)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, GroupSetup, req.APIGroup)
	assert.Equal(t, APIDeviceSetup, req.API)
	assert.Equal(t, MethodTagSetup, req.DeviceMethod)

	status, _ = decodeAll(t, "GET /setup/v1/telescope/0/connected HTTP/1.1\r\n\r\n", nil)
	assert.Equal(t, StatusNotFound, status)
}

type assetListener struct {
	NopListener
	segments []string
	last     []bool
}

func (l *assetListener) OnAssetPathSegment(segment string, isLast bool) Status {
	l.segments = append(l.segments, segment)
	l.last = append(l.last, isLast)
	return Continue
}

func TestDecodeAssetPath(t *testing.T) {
	l := &assetListener{}
	status, req := decodeAll(t, "GET /asset/img/logo.png HTTP/1.1\r\n\r\n", l)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, GroupAsset, req.APIGroup)
	require.Equal(t, []string{"img", "logo.png"}, l.segments)
	require.Equal(t, []bool{false, true}, l.last)
}

type recordingListener struct {
	NopListener
	unknownParamNames  []string
	unknownParamValues []string
	unknownHeaderNames []string
}

func (l *recordingListener) OnUnknownParameterName(name string) Status {
	l.unknownParamNames = append(l.unknownParamNames, name)
	return Continue
}

func (l *recordingListener) OnUnknownParameterValue(value string) Status {
	l.unknownParamValues = append(l.unknownParamValues, value)
	return Continue
}

func (l *recordingListener) OnUnknownHeaderName(name string) Status {
	l.unknownHeaderNames = append(l.unknownHeaderNames, name)
	return Continue
}

func TestDecodeUnknownParamAndHeaderCallbacksAreOrdered(t *testing.T) {
	l := &recordingListener{}
	status, _ := decodeAll(t, "GET /?foo=bar HTTP/1.1\r\nX-Custom: hi\r\n\r\n", l)
	require.Equal(t, StatusOK, status)
	require.Equal(t, []string{"foo"}, l.unknownParamNames)
	require.Equal(t, []string{"bar"}, l.unknownParamValues)
	require.Equal(t, []string{"X-Custom"}, l.unknownHeaderNames)
}

func TestDecodeListenerCanOverrideToError(t *testing.T) {
	l := &recordingListener{}
	overridden := &overrideListener{recordingListener: l, status: StatusNotAcceptable}
	status, _ := decodeAll(t, "GET /?foo=bar HTTP/1.1\r\n\r\n", overridden)
	assert.Equal(t, StatusNotAcceptable, status)
}

type overrideListener struct {
	*recordingListener
	status Status
}

func (l *overrideListener) OnUnknownParameterName(name string) Status {
	l.recordingListener.OnUnknownParameterName(name)
	return l.status
}

func TestDecodeFragmentationMatchesSingleShot(t *testing.T) {
	inputs := []string{
		"GET / HTTP/1.1\r\n\r\n",
		"GET /api/v1/safetymonitor/0/issafe HTTP/1.1\r\n\r\n",
		"PUT /api/v1/observingconditions/0/refresh?ClientID=123&clienttransactionid=432 HTTP/1.1\r\nContent-Length: 0\r\n\r\n",
		"GET /management/apiversions HTTP/1.1\r\n\r\n",
	}
	for _, input := range inputs {
		wantStatus, wantReq := decodeAll(t, input, nil)
		gotStatus, gotReq := decodeFragmented(t, input, nil)
		assert.Equal(t, wantStatus, gotStatus, input)
		assert.Equal(t, wantReq, gotReq, input)
	}
}

func TestDecodeWithoutResetReturns500(t *testing.T) {
	req := &Request{}
	dec := New(req, nil)
	status, n := dec.Decode([]byte("GET / HTTP/1.1\r\n\r\n"), false, true)
	assert.Equal(t, StatusInternalServerError, status)
	assert.Equal(t, 0, n)
}

func TestDecodeAfterTerminalRequiresReset(t *testing.T) {
	req := &Request{}
	dec := New(req, nil)
	dec.Reset()
	status, _ := dec.Decode([]byte("GET / HTTP/1.1\r\n\r\n"), false, true)
	require.Equal(t, StatusOK, status)

	status, n := dec.Decode([]byte("GET / HTTP/1.1\r\n\r\n"), false, true)
	assert.Equal(t, StatusInternalServerError, status)
	assert.Equal(t, 0, n)
}

func TestResetTwiceLeavesSentinelState(t *testing.T) {
	req := &Request{}
	dec := New(req, nil)
	dec.Reset()
	first := *req

	_, _ = dec.Decode([]byte("GET /api/v1/safetymonitor/0/issafe HTTP/1.1\r\n\r\n"), false, true)
	dec.Reset()
	assert.Equal(t, first, *req)
	assert.EqualValues(t, sentinelDeviceNumber, req.DeviceNumber)
	assert.EqualValues(t, sentinelClientID, req.ClientID)
	assert.EqualValues(t, sentinelClientTransactionID, req.ClientTransactionID)
}

func TestDecodeBufferFullPromotesToTooLarge(t *testing.T) {
	req := &Request{}
	dec := New(req, nil)
	dec.Reset()

	// A method name that doesn't fit in the tiny buffer the caller supplies,
	// with no terminating space anywhere in view.
	buf := []byte("GETGETGET")
	status, n := dec.Decode(buf, true, false)
	assert.Equal(t, StatusRequestHeaderFieldsTooLarge, status)
	assert.Equal(t, 0, n)
}

func TestDecodeNeedsMoreInputWithoutFullBuffer(t *testing.T) {
	req := &Request{}
	dec := New(req, nil)
	dec.Reset()

	buf := []byte("GET")
	status, n := dec.Decode(buf, false, false)
	assert.Equal(t, StatusNeedMoreInput, status)
	assert.Equal(t, 0, n)
}

func TestDecodeDoCloseSurvivesReset(t *testing.T) {
	req := &Request{DoClose: true}
	dec := New(req, nil)
	dec.Reset()
	assert.True(t, req.DoClose)
}
