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
)

func TestRequestResetSentinels(t *testing.T) {
	var r Request
	r.Reset()
	assert.Equal(t, MethodUnknown, r.HTTPMethod)
	assert.EqualValues(t, sentinelDeviceNumber, r.DeviceNumber)
	assert.EqualValues(t, sentinelClientID, r.ClientID)
	assert.EqualValues(t, sentinelClientTransactionID, r.ClientTransactionID)
	assert.EqualValues(t, sentinelServerTransactionID, r.ServerTransactionID)
	assert.False(t, r.HaveClientID)
	assert.False(t, r.HaveClientTransactionID)
	assert.False(t, r.HaveID)
	assert.False(t, r.HaveState)
	assert.False(t, r.HaveValue)
}

func TestRequestResetPreservesDoClose(t *testing.T) {
	r := Request{DoClose: true}
	r.Reset()
	assert.True(t, r.DoClose)

	r.DoClose = false
	r.Reset()
	assert.False(t, r.DoClose)
}
