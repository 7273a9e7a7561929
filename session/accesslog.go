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
	"strings"

	"github.com/alpacad/alpacad/internal/splitio"
)

// requestLine pulls the first line out of the raw bytes accumulated so far,
// for logging a rejected request's request-line without re-running the
// decoder over it. It never fails: a truncated request (no line ending yet)
// just returns whatever prefix was buffered, trimmed of its CRLF/LF.
func requestLine(raw []byte) string {
	r := splitio.NewReader(raw)
	line, eof := r.ReadLine()
	if eof {
		line = raw
	}
	return strings.TrimRight(string(line), "\r\n")
}
