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

// Package ringbuf provides a pooled, growable byte buffer for driving a
// restartable decoder across successive reads from a connection.
//
// A session reads bytes off the wire into a Buffer, hands Buffer.Bytes() to
// the decoder, then calls Discard with however many bytes the decoder
// consumed. Unconsumed bytes (a partial request line, a partial header, a
// truncated body) stay put until the next read appends more behind them.
// Discard never copies; Compact does, and only needs to run once the
// buffer's free space at the back has run out.
package ringbuf

import (
	"github.com/valyala/bytebufferpool"
)

var pool bytebufferpool.Pool

// Buffer is a growable byte slice with an independent read cursor, backed by
// a pooled allocation. The zero value is not usable; obtain one from Get.
type Buffer struct {
	bb  *bytebufferpool.ByteBuffer
	off int
}

// Get acquires a Buffer from the pool. Callers must call Release when done.
func Get() *Buffer {
	return &Buffer{bb: bytebufferpool.Get()}
}

// Release returns the underlying storage to the pool. The Buffer must not be
// used afterwards.
func (b *Buffer) Release() {
	b.bb.Reset()
	bytebufferpool.Put(b.bb)
	b.bb = nil
	b.off = 0
}

// Bytes returns the unconsumed bytes currently held by the buffer. The
// returned slice is only valid until the next Append or Compact call.
func (b *Buffer) Bytes() []byte {
	return b.bb.B[b.off:]
}

// Len reports the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.bb.B) - b.off
}

// Append copies p onto the back of the buffer, growing the underlying
// storage as needed.
func (b *Buffer) Append(p []byte) {
	b.bb.B = append(b.bb.B, p...)
}

// Discard drops the first n bytes of the unconsumed region, typically the
// count a decoder reported consuming. It never moves memory; stale bytes in
// front of the cursor are reclaimed lazily by Compact.
func (b *Buffer) Discard(n int) {
	b.off += n
	if b.off > len(b.bb.B) {
		b.off = len(b.bb.B)
	}
	if b.off == len(b.bb.B) {
		b.bb.B = b.bb.B[:0]
		b.off = 0
	}
}

// Compact slides the unconsumed region to the front of the underlying
// array, reclaiming the space held by already-discarded bytes. Call it
// before a read that would otherwise grow the buffer past its size cap.
func (b *Buffer) Compact() {
	if b.off == 0 {
		return
	}
	n := copy(b.bb.B, b.bb.B[b.off:])
	b.bb.B = b.bb.B[:n]
	b.off = 0
}

// Full reports whether the unconsumed region has reached maxSize, the
// signal a caller uses both to stop reading more off the wire and to tell
// the decoder bufferIsFull on its next Decode call.
func (b *Buffer) Full(maxSize int) bool {
	return b.Len() >= maxSize
}

// Reset discards all unconsumed bytes and rewinds the cursor, keeping the
// underlying storage for reuse by the next request on the same connection.
func (b *Buffer) Reset() {
	b.bb.Reset()
	b.off = 0
}
