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

// Sentinel values written by Reset, present purely so that a test (or a
// caller) can notice a field was never populated by decoding, per spec.md
// §6 "Sentinel values for reset".
const (
	sentinelDeviceNumber        uint32 = 123456789
	sentinelClientID            uint32 = 987654321
	sentinelClientTransactionID uint32 = 198765432
	sentinelServerTransactionID uint32 = 543212345
)

// Request is the decoded request record. The decoder populates it
// incrementally as it recognizes tokens; the caller inspects it once Decode
// returns a terminal Status. Reset must be called before decoding the first
// byte of a new request (Decode returns StatusInternalServerError if it
// wasn't).
type Request struct {
	HTTPMethod   HTTPMethod
	APIGroup     APIGroup
	API          API
	DeviceType   DeviceType
	DeviceNumber uint32
	DeviceMethod DeviceMethod

	ClientID            uint32
	ClientTransactionID uint32

	// ServerTransactionID is assigned by the layer that responds to the
	// request, not by the decoder; it is carried here only so that the
	// sentinel/reset contract in spec.md §6 has somewhere to live. The
	// decoder itself never writes to it.
	ServerTransactionID uint32

	// Switch-device typed parameters.
	ID    uint32
	State bool
	Value float64

	// DoClose may be set by the caller before Decode to request that the
	// connection be closed after the response is written. The decoder
	// never reads or clears it.
	DoClose bool

	HaveClientID            bool
	HaveClientTransactionID bool
	HaveID                  bool
	HaveState               bool
	HaveValue               bool
}

// Reset clears all flags and fields to their sentinel/zero values. It does
// not touch DoClose, which is caller state that outlives a single request's
// decode (spec.md §3: "never cleared by the decoder").
func (r *Request) Reset() {
	doClose := r.DoClose
	*r = Request{}
	r.HTTPMethod = MethodUnknown
	r.DeviceNumber = sentinelDeviceNumber
	r.ClientID = sentinelClientID
	r.ClientTransactionID = sentinelClientTransactionID
	r.ServerTransactionID = sentinelServerTransactionID
	r.DoClose = doClose
}
