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

package session

import (
	"github.com/google/uuid"

	"github.com/alpacad/alpacad/alpaca"
	"github.com/alpacad/alpacad/common"
	"github.com/alpacad/alpacad/logger"
)

// listenerGates toggles which of loggingListener's hooks actually log,
// the Go equivalent of the original decoder's TAS_ENABLE_* compile-time
// macros re-expressed as config read once at startup. Every hook still
// always returns alpaca.Continue regardless of gate state: these flags
// only change observability cost, never decoder behavior.
type listenerGates struct {
	assetPathDecoding        bool
	extraParameterDecoding   bool
	unknownParameterDecoding bool
	extraHeaderDecoding      bool
	unknownHeaderDecoding    bool
}

// newListenerGates reads each gate out of opts, defaulting to enabled when
// the key is absent or isn't a valid bool.
func newListenerGates(opts common.Options) listenerGates {
	return listenerGates{
		assetPathDecoding:        gateEnabled(opts, "assetPathDecoding"),
		extraParameterDecoding:   gateEnabled(opts, "extraParameterDecoding"),
		unknownParameterDecoding: gateEnabled(opts, "unknownParameterDecoding"),
		extraHeaderDecoding:      gateEnabled(opts, "extraHeaderDecoding"),
		unknownHeaderDecoding:    gateEnabled(opts, "unknownHeaderDecoding"),
	}
}

func gateEnabled(opts common.Options, key string) bool {
	if _, ok := opts[key]; !ok {
		return true
	}
	enabled, err := opts.GetBool(key)
	if err != nil {
		return true
	}
	return enabled
}

// loggingListener traces every construct the decoder itself doesn't
// interpret, tagged with the connection's correlation ID, and always
// defers to the decoder's default behavior (alpaca.Continue).
type loggingListener struct {
	connID uuid.UUID
	gates  listenerGates
}

func (l loggingListener) OnAssetPathSegment(segment string, isLastSegment bool) alpaca.Status {
	if l.gates.assetPathDecoding {
		logger.Debugf("conn %s: asset path segment %q (last=%v)", l.connID, segment, isLastSegment)
	}
	return alpaca.Continue
}

func (l loggingListener) OnExtraParameter(param alpaca.Parameter, value string) alpaca.Status {
	if l.gates.extraParameterDecoding {
		logger.Debugf("conn %s: extra parameter %v=%q", l.connID, param, value)
	}
	return alpaca.Continue
}

func (l loggingListener) OnUnknownParameterName(name string) alpaca.Status {
	if l.gates.unknownParameterDecoding {
		logger.Debugf("conn %s: unknown parameter name %q", l.connID, name)
	}
	return alpaca.Continue
}

func (l loggingListener) OnUnknownParameterValue(value string) alpaca.Status {
	if l.gates.unknownParameterDecoding {
		logger.Debugf("conn %s: unknown parameter value %q", l.connID, value)
	}
	return alpaca.Continue
}

func (l loggingListener) OnExtraHeader(header alpaca.Header, value string) alpaca.Status {
	if l.gates.extraHeaderDecoding {
		logger.Debugf("conn %s: extra header %v=%q", l.connID, header, value)
	}
	return alpaca.Continue
}

func (l loggingListener) OnUnknownHeaderName(name string) alpaca.Status {
	if l.gates.unknownHeaderDecoding {
		logger.Debugf("conn %s: unknown header name %q", l.connID, name)
	}
	return alpaca.Continue
}

func (l loggingListener) OnUnknownHeaderValue(value string) alpaca.Status {
	if l.gates.unknownHeaderDecoding {
		logger.Debugf("conn %s: unknown header value %q", l.connID, value)
	}
	return alpaca.Continue
}

var _ alpaca.Listener = loggingListener{}
