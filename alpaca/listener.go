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

// Listener observes constructs the decoder recognizes but does not itself
// interpret: unsupported params/headers, and unrecognized param/header
// names and values. A nil Listener is equivalent to one that returns
// Continue (spelled statusContinue internally) from every method.
//
// Every method returns a Status. StatusNeedMoreInput is never a legal
// return value from a listener method; the driver promotes it (and any
// other value below StatusOK except Continue) to
// StatusInternalServerError. A returned
// status in the HTTP error range short-circuits decoding with that status.
// Any value the decoder treats as "proceed with default behavior" should be
// statusContinue — exported as Continue so callers outside the package can
// return it.
type Listener interface {
	// OnAssetPathSegment is called once per segment of a `/asset/...`
	// path. isLastSegment is true only for the final segment; if the path
	// ends in a slash, that final segment is empty.
	OnAssetPathSegment(segment string, isLastSegment bool) Status

	// OnExtraParameter is called for recognized parameters with no
	// built-in handling, and for duplicate or unparseable values of
	// parameters that ARE built in (ClientID, ClientTransactionID, Id).
	OnExtraParameter(param Parameter, value string) Status

	// OnUnknownParameterName/OnUnknownParameterValue are called, in that
	// order with no intervening listener call for the same request, for a
	// parameter whose name is not in the recognized table.
	OnUnknownParameterName(name string) Status
	OnUnknownParameterValue(value string) Status

	// OnExtraHeader is called for recognized headers with no built-in
	// handling, and for invalid/duplicate values of headers that ARE
	// built in (Content-Length, Content-Type, Accept).
	OnExtraHeader(header Header, value string) Status

	// OnUnknownHeaderName/OnUnknownHeaderValue mirror the unknown-
	// parameter pair, for headers not in the recognized table.
	OnUnknownHeaderName(name string) Status
	OnUnknownHeaderValue(value string) Status
}

// Continue tells the decoder to proceed with its default post-listener
// behavior. It is the zero Status value.
const Continue = statusContinue

// NopListener implements Listener with every method returning Continue. It
// is useful as an embeddable base for listeners that only care about one or
// two of the six hooks.
type NopListener struct{}

func (NopListener) OnAssetPathSegment(string, bool) Status   { return Continue }
func (NopListener) OnExtraParameter(Parameter, string) Status { return Continue }
func (NopListener) OnUnknownParameterName(string) Status     { return Continue }
func (NopListener) OnUnknownParameterValue(string) Status    { return Continue }
func (NopListener) OnExtraHeader(Header, string) Status      { return Continue }
func (NopListener) OnUnknownHeaderName(string) Status        { return Continue }
func (NopListener) OnUnknownHeaderValue(string) Status        { return Continue }

var _ Listener = NopListener{}
