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

// Package session drives one alpaca.Decoder per accepted TCP connection: it
// owns the rolling input buffer, decides when the connection has read
// enough to declare bufferIsFull or atEndOfInput, and writes the encoded
// response back before deciding whether to keep the connection open.
package session

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/alpacad/alpacad/alpaca"
	"github.com/alpacad/alpacad/common"
	"github.com/alpacad/alpacad/internal/rescue"
	"github.com/alpacad/alpacad/internal/ringbuf"
	"github.com/alpacad/alpacad/logger"
	"github.com/alpacad/alpacad/response"
)

// Config controls the listener a Server runs and the bounds it enforces on
// each connection's rolling buffer.
type Config struct {
	Address        string         `config:"address"`
	MaxBufferSize  int            `config:"maxBufferSize"`
	MaxConnections int            `config:"maxConnections"`
	ReadTimeout    time.Duration  `config:"readTimeout"`
	IdleTimeout    time.Duration  `config:"idleTimeout"`
	ListenerGates  common.Options `config:"listenerGates"`
}

func (c Config) maxBufferSize() int {
	if c.MaxBufferSize <= 0 {
		return alpaca.MaxStringViewSize * 4
	}
	return c.MaxBufferSize
}

// maxConnections bounds how many connections Serve admits at once. Left
// unset, it scales off common.Concurrency() the same way Controller sizes
// its roundtrip worker channel off the machine's core count, just with a
// wider multiplier since a parked connection costs a goroutine and a
// pooled buffer rather than a CPU-bound worker slot.
func (c Config) maxConnections() int {
	if c.MaxConnections <= 0 {
		return common.Concurrency() * 256
	}
	return c.MaxConnections
}

// Server accepts connections on a single TCP listener and serves Alpaca
// requests off each one until the client closes it or a request asks to.
type Server struct {
	cfg   Config
	ln    net.Listener
	sem   chan struct{}
	gates listenerGates
}

// New binds the listener described by cfg.Address. The listener is not
// accepted from until Serve is called.
func New(cfg Config) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:   cfg,
		ln:    ln,
		sem:   make(chan struct{}, cfg.maxConnections()),
		gates: newListenerGates(cfg.ListenerGates),
	}, nil
}

// Serve accepts connections until the listener is closed, handling each on
// its own goroutine. Accepting blocks once maxConnections() are already in
// flight. It always returns a non-nil error.
func (s *Server) Serve() error {
	logger.Infof("alpaca server listening on %s", s.ln.Addr())
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		s.sem <- struct{}{}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer rescue.HandleCrash()
	defer conn.Close()
	defer func() { <-s.sem }()

	id := uuid.New()
	activeConns.Inc()
	defer activeConns.Dec()

	buf := ringbuf.Get()
	defer buf.Release()

	var req alpaca.Request
	dec := alpaca.New(&req, loggingListener{connID: id, gates: s.gates})

	for {
		dec.Reset()
		status, value, err := s.serveOne(conn, buf, dec, &req, id)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debugf("conn %s: %v", id, err)
			}
			return
		}

		recordStatus(int(status))
		doClose := req.DoClose || status != alpaca.StatusOK
		body, err := response.Encode(&req, status, value, doClose)
		if err != nil {
			logger.Errorf("conn %s: encode response: %v", id, err)
			return
		}
		if _, err := conn.Write(body); err != nil {
			logger.Debugf("conn %s: write response: %v", id, err)
			return
		}
		if doClose {
			return
		}
		buf.Compact()
	}
}

// serveOne drives a single request to a terminal status, reading more bytes
// off conn as the decoder asks for them.
//
// value is a placeholder for whatever a device-method dispatcher would
// attach to a successful response; the decoder itself never produces one,
// so this always returns nil. It exists so response.Encode's signature
// doesn't need to change once a dispatcher is wired in above this package.
func (s *Server) serveOne(conn net.Conn, buf *ringbuf.Buffer, dec *alpaca.Decoder, req *alpaca.Request, id uuid.UUID) (alpaca.Status, any, error) {
	maxSize := s.cfg.maxBufferSize()
	chunk := make([]byte, common.ReadWriteBlockSize)
	atEOF := false

	for {
		full := buf.Full(maxSize)
		status, n := dec.Decode(buf.Bytes(), full, atEOF)
		if status.IsTerminal() {
			if status != alpaca.StatusOK {
				logger.Debugf("conn %s: %s for %q", id, status, requestLine(buf.Bytes()))
			}
			buf.Discard(n)
			return status, nil, nil
		}
		buf.Discard(n)
		if atEOF {
			return 0, nil, io.ErrUnexpectedEOF
		}

		buf.Compact()
		// An empty buffer means this read starts a brand-new request (or is
		// the first read of the connection), so the longer IdleTimeout
		// applies; a non-empty buffer means a request is already underway,
		// so the tighter ReadTimeout bounds how long a slow peer gets to
		// finish sending it.
		timeout := s.cfg.ReadTimeout
		if buf.Len() == 0 && s.cfg.IdleTimeout > 0 {
			timeout = s.cfg.IdleTimeout
		}
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return 0, nil, err
			}
		}

		nr, err := conn.Read(chunk)
		if nr > 0 {
			receivedBytes.Add(float64(nr))
			buf.Append(chunk[:nr])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				atEOF = true
				continue
			}
			return 0, nil, err
		}
	}
}

// Stop closes the listener and reports any shutdown error, aggregating it
// with errs the way controller.Controller aggregates per-listener errors.
func (s *Server) Stop(errs ...error) error {
	var result *multierror.Error
	for _, e := range errs {
		result = multierror.Append(result, e)
	}
	if err := s.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
