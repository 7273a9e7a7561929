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
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// readResponse reads one HTTP response (status line, headers, body) off r
// and returns the status line with its trailing CRLF stripped.
func readResponse(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	status := strings.TrimRight(line, "\r\n")

	contentLength := 0
	for {
		l, err := r.ReadString('\n')
		require.NoError(t, err)
		if l == "\r\n" {
			break
		}
		name, value, ok := strings.Cut(strings.TrimRight(l, "\r\n"), ": ")
		if ok && strings.EqualFold(name, "Content-Length") {
			contentLength, _ = strconv.Atoi(value)
		}
	}
	_, err = io.ReadFull(r, make([]byte, contentLength))
	require.NoError(t, err)
	return status
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func TestServeHandlesServerStatusRequest(t *testing.T) {
	srv, err := New(Config{Address: "127.0.0.1:0"})
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	conn := dial(t, srv)
	defer conn.Close()

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 200 OK", readResponse(t, bufio.NewReader(conn)))
}

func TestServeRejectsUnsupportedMethod(t *testing.T) {
	srv, err := New(Config{Address: "127.0.0.1:0"})
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	conn := dial(t, srv)
	defer conn.Close()

	_, err = conn.Write([]byte("TRACE / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 501 Not Implemented", readResponse(t, bufio.NewReader(conn)))
}

func TestServeKeepsConnectionOpenAcrossRequests(t *testing.T) {
	srv, err := New(Config{Address: "127.0.0.1:0"})
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	conn := dial(t, srv)
	defer conn.Close()
	r := bufio.NewReader(conn)

	for i := 0; i < 2; i++ {
		_, err = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK", readResponse(t, r))
	}
}
