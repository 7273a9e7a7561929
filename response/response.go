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

// Package response turns a decoded *alpaca.Request plus its terminal
// alpaca.Status into the bytes written back on the wire: the Alpaca JSON
// envelope framed by an HTTP/1.1 status line and headers. This is the
// "Response encoding" external collaborator spec.md places outside the
// decoder core.
package response

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/alpacad/alpacad/alpaca"
)

// Envelope is the Alpaca JSON response body. ErrorNumber/ErrorMessage are
// populated only for non-2xx outcomes; Value carries a GET device method's
// result, set by whatever handles the request after the decoder, not by
// this package.
type Envelope struct {
	ClientTransactionID uint32 `json:"ClientTransactionID"`
	ServerTransactionID uint32 `json:"ServerTransactionID"`
	ErrorNumber         int    `json:"ErrorNumber"`
	ErrorMessage        string `json:"ErrorMessage"`
	Value               any    `json:"Value,omitempty"`
}

// NewEnvelope builds the envelope for a terminal status. value is carried
// through verbatim for StatusOK responses and ignored otherwise.
func NewEnvelope(req *alpaca.Request, status alpaca.Status, value any) Envelope {
	env := Envelope{
		ClientTransactionID: req.ClientTransactionID,
		ServerTransactionID: req.ServerTransactionID,
	}
	if status == alpaca.StatusOK {
		env.Value = value
		return env
	}
	env.ErrorNumber = int(status)
	env.ErrorMessage = status.String()
	return env
}

// Encode renders the full HTTP/1.1 response (status line, headers, JSON
// body) for status, ready to write to a connection. doClose adds
// "Connection: close"; the caller decides that from req.DoClose and
// whatever else it knows about the connection's fate.
func Encode(req *alpaca.Request, status alpaca.Status, value any, doClose bool) ([]byte, error) {
	env := NewEnvelope(req, status, value)
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal alpaca envelope: %w", err)
	}

	var buf bytes.Buffer
	reason := http.StatusText(int(status))
	if reason == "" {
		reason = status.String()
	}
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", int(status), reason)
	fmt.Fprintf(&buf, "Content-Type: application/json\r\n")
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(body))
	if doClose {
		buf.WriteString("Connection: close\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes(), nil
}
