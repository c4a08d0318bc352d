/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"time"

	"github.com/google/uuid"

	"microhttpd/hdr"
	"microhttpd/parse"
	"microhttpd/pool"
	"microhttpd/response"
)

// unknownSize is the remaining-upload-size sentinel for a request body
// whose length isn't known until a zero chunk arrives.
const unknownSize int64 = -1

// buffer is a pool-backed byte range with send/append bookkeeping. off
// and size describe the arena allocation; send/append are offsets
// relative to off, not absolute arena offsets.
type buffer struct {
	off    int
	size   int
	send   int // bytes already sent (write buffer only)
	append int // bytes filled so far
}

// Connection is the per-socket finite state machine: component E. One
// instance is created per accepted connection and destroyed on Closed.
// It is not safe for concurrent use - exactly one goroutine may call
// OnReadable/OnWritable at a time (there is no separate idle entry
// point; each of the two advances the FSM itself), mirroring the single-threaded-
// per-connection scheduling model the surrounding daemon is
// responsible for enforcing.
type Connection struct {
	ID     uuid.UUID
	daemon *Daemon

	pool            *pool.Arena
	headersReceived *hdr.Store

	method, url, query, version string

	read  buffer
	write buffer

	continueMsgOff      int
	responseWritePos    int64

	state         State
	responseCode  int
	resp          *response.Response

	readClosed          bool
	haveChunkedUpload   bool
	haveChunkedResponse bool
	suspended           bool

	remainingUpload    int64
	currentChunkSize   int64
	currentChunkOffset int64
	chunkSizeKnown     bool
	headerParser       *parse.HeaderLineParser
	footerParser       *parse.HeaderLineParser
	body               bodyAccum

	footerBlock  []byte // built lazily for FootersSending
	pendingChunk []byte // unsent tail of the body bytes currently being written

	lastActivity time.Time

	completionFired bool

	// consumedTail holds residual bytes of the next pipelined request,
	// preserved across a keep-alive Reset.
	consumedTail []byte
}

// NewConnection creates a fresh FSM in Init state, owned by daemon.
func NewConnection(daemon *Daemon) *Connection {
	c := &Connection{
		ID:     uuid.New(),
		daemon: daemon,
		state:  Init,
	}
	c.lastActivity = daemon.Clock.Now()
	return c
}

func (c *Connection) touch() {
	c.lastActivity = c.daemon.Clock.Now()
}

// TimedOut reports whether the connection's idle time exceeds the
// daemon's configured timeout.
func (c *Connection) TimedOut() bool {
	if c.daemon.Config.Timeout <= 0 {
		return false
	}
	return c.daemon.Clock.Now().Sub(c.lastActivity) > c.daemon.Config.Timeout
}

// Suspend marks the connection suspended until Resume is called;
// EventLoopInfo reports ReadyBlock while suspended. OnReadable and
// OnWritable do not check the flag themselves.
func (c *Connection) Suspend() { c.suspended = true }

// Resume clears a prior Suspend.
func (c *Connection) Resume() { c.suspended = false }

// State reports the current connection state, mainly for tests and diagnostics.
func (c *Connection) State() State { return c.state }

func (c *Connection) ensurePool() bool {
	if c.pool != nil {
		return true
	}
	c.pool = pool.New(c.daemon.Config.poolSize())
	c.headersReceived = hdr.NewReceivedStore()
	initial := c.daemon.Config.initialReadBufferSize()
	off, ok := c.pool.Allocate(initial, false)
	if !ok {
		c.pool = nil
		return false
	}
	c.read = buffer{off: off, size: initial}
	if len(c.consumedTail) > 0 {
		n := copy(c.pool.Slice(off, initial), c.consumedTail)
		c.read.append = n
		c.consumedTail = nil
	}
	return true
}

func (c *Connection) readBytes() []byte {
	return c.pool.Slice(c.read.off, c.read.size)[:c.read.append]
}

// growReadBuffer doubles the read buffer's capacity, used when a line
// or header block doesn't fit in the current allocation yet.
func (c *Connection) growReadBuffer() bool {
	newSize := c.read.size * 2
	if newSize == 0 {
		newSize = c.daemon.Config.initialReadBufferSize()
	}
	newOff, ok := c.pool.Reallocate(c.read.off, c.read.size, newSize)
	if !ok {
		return false
	}
	c.read.off = newOff
	c.read.size = newSize
	return true
}

// discardRead drops the first n bytes of the filled read region by
// shifting the remainder down within the same allocation - there is no
// free list, so this is a memmove within the existing block rather
// than a reallocation.
func (c *Connection) discardRead(n int) {
	buf := c.pool.Slice(c.read.off, c.read.size)
	copy(buf, buf[n:c.read.append])
	c.read.append -= n
}

func (c *Connection) ensureWriteBuffer(size int) bool {
	if c.write.size >= size {
		return true
	}
	if c.write.size == 0 {
		off, ok := c.pool.Allocate(size, false)
		if !ok {
			return false
		}
		c.write = buffer{off: off, size: size}
		return true
	}
	newOff, ok := c.pool.Reallocate(c.write.off, c.write.size, size)
	if !ok {
		return false
	}
	c.write.off = newOff
	c.write.size = size
	return true
}

func (c *Connection) writeBytes() []byte {
	return c.pool.Slice(c.write.off, c.write.size)[:c.write.append]
}

// resetForKeepAlive implements the FootersSent -> Init rewind: destroy
// the pool (invalidating every pool-backed field), preserve residual
// pipelined-request bytes, and return to Init.
func (c *Connection) resetForKeepAlive() {
	var tail []byte
	if c.pool != nil && c.read.append > 0 {
		tail = make([]byte, c.read.append)
		copy(tail, c.pool.Slice(c.read.off, c.read.size)[:c.read.append])
	}
	if c.resp != nil {
		c.resp.Release()
		c.resp = nil
	}
	if c.pool != nil {
		c.pool.Destroy()
		c.pool = nil
	}
	c.headersReceived = nil
	c.method, c.url, c.query, c.version = "", "", "", ""
	c.read = buffer{}
	c.write = buffer{}
	c.continueMsgOff = 0
	c.responseWritePos = 0
	c.responseCode = 0
	c.haveChunkedUpload = false
	c.haveChunkedResponse = false
	c.remainingUpload = 0
	c.currentChunkSize = 0
	c.currentChunkOffset = 0
	c.chunkSizeKnown = false
	c.headerParser = nil
	c.footerParser = nil
	c.body = bodyAccum{}
	c.footerBlock = nil
	c.pendingChunk = nil
	c.consumedTail = tail
	c.state = Init
}
