/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"errors"
	"io"

	"microhttpd/hdr"
	"microhttpd/parse"
	"microhttpd/response"
)

// Reader is the one-shot socket read the daemon performs on a readable
// event; *net.Conn satisfies it directly. Passing it in rather than
// owning a socket here keeps the platform's socket plumbing, which
// this package deliberately does not specify, out of the core.
type Reader interface {
	Read(p []byte) (int, error)
}

// OnReadable is the FSM's read entry point: the daemon calls it once
// per readable event. It performs a single Read into the pool-backed
// read buffer's free tail, then advances the state machine as far as
// the newly available bytes allow.
func (c *Connection) OnReadable(r Reader) {
	if c.state == Closed {
		return
	}
	if !c.ensurePool() {
		c.close(CompletedWithError)
		return
	}
	if c.read.append == c.read.size && !c.headersDone() {
		if !c.growReadBuffer() {
			c.queueTooLarge()
			return
		}
	}
	n, err := r.Read(c.pool.Slice(c.read.off, c.read.size)[c.read.append:])
	if n > 0 {
		c.read.append += n
		c.touch()
	}
	if n == 0 && err == nil {
		return
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.readClosed = true
		} else if isRetryable(err) {
			// EINTR/EAGAIN equivalent: retried on the next readable event.
		} else {
			c.close(CompletedReadError)
			return
		}
	}
	c.advance()
}

// isRetryable reports whether err is the kind of transient I/O error
// that simply means "try again on the next event" rather than a fatal
// socket error.
func isRetryable(err error) bool {
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

func (c *Connection) headersDone() bool {
	switch c.state {
	case Init, URLReceived, HeaderPartReceived:
		return false
	default:
		return true
	}
}

// queueTooLarge synthesizes a 413/414 depending on whether the URL has
// already been received, per the pool-exhaustion-while-parsing-headers
// error path, and transitions straight to writing that response. The
// rejected request's read buffer is released back to the arena so the
// response header block can be allocated, and the response carries
// Connection: close so the connection closes once it is sent.
func (c *Connection) queueTooLarge() {
	code := 414
	if c.state != Init {
		code = 413
	}
	if newOff, ok := c.pool.Reallocate(c.read.off, c.read.size, 0); ok {
		c.read = buffer{off: newOff}
	}
	c.responseCode = code
	c.haveChunkedResponse = false
	c.resp = response.FromBuffer(nil, response.Borrow)
	_ = c.resp.AddHeader(hdr.Connection, hdr.ConnectionClose)
	c.resp.Acquire()
	c.state = HeadersSending
}

// advance drives the state machine forward as far as currently
// buffered bytes allow, stopping when it needs more input or reaches a
// state that can only progress on a write or idle event.
func (c *Connection) advance() {
	for {
		progressed, stop := c.step()
		if stop || !progressed {
			return
		}
	}
}

// step performs one unit of state-machine work and reports whether it
// made progress (consumed bytes / changed state) and whether the
// caller should stop driving advance() regardless (e.g. the
// connection closed, or control passed to the write path).
func (c *Connection) step() (progressed, stop bool) {
	switch c.state {
	case Init, URLReceived, HeaderPartReceived:
		return c.stepRequestLineOrHeaders()
	case HeadersReceived:
		c.finishHeaders()
		return true, false
	case HeadersProcessed:
		if c.wantsContinue() {
			c.state = ContinueSending
			return true, true // write path takes over
		}
		c.state = ContinueSent
		return true, false
	case ContinueSent:
		return c.stepBody()
	case BodyReceived:
		c.dispatchRequest()
		return true, false
	case FooterPartReceived:
		done, err := c.consumeTrailers()
		if err != nil {
			c.close(CompletedWithError)
			return false, true
		}
		if !done {
			return false, true
		}
		c.state = FootersReceived
		return true, false
	case FootersReceived:
		c.dispatchRequest()
		return true, false
	default:
		return false, true
	}
}

func (c *Connection) stepRequestLineOrHeaders() (progressed, stop bool) {
	if c.state == Init {
		line, rest, ok := parse.NextLine(c.readBytes())
		if !ok {
			return false, true
		}
		consumed := len(c.readBytes()) - len(rest)
		if len(line) == 0 {
			// RFC 2616 4.1 tolerance: ignore leading blank lines before the request-line.
			c.discardRead(consumed)
			return true, false
		}
		rl, err := parse.ParseRequestLine(line)
		if err != nil {
			c.discardRead(consumed)
			c.close(CompletedWithError)
			return false, true
		}
		c.discardRead(consumed)
		c.method, c.url, c.query, c.version = rl.Method, rl.URL, rl.Query, rl.Version
		if c.query != "" {
			_ = parse.ParseQueryArgs(c.query, hdr.KindGetArg, c.headersReceived)
		}
		c.headerParser = parse.NewHeaderLineParser(c.headersReceived, hdr.KindHeader)
		c.state = URLReceived
		return true, false
	}

	// URLReceived / HeaderPartReceived: feed header lines until the
	// block-ending empty line is seen.
	line, rest, ok := parse.NextLine(c.readBytes())
	if !ok {
		c.state = HeaderPartReceived
		return false, true
	}
	consumed := len(c.readBytes()) - len(rest)
	done, err := c.headerParser.Feed(line)
	c.discardRead(consumed)
	if err != nil {
		c.close(CompletedWithError)
		return false, true
	}
	if done {
		c.state = HeadersReceived
	}
	return true, false
}

func (c *Connection) finishHeaders() {
	if cookies, ok := c.headersReceived.Get(hdr.KindHeader, hdr.Cookie); ok {
		parse.ParseCookies(cookies, c.headersReceived)
	}
	if err := c.decideBodyFraming(); err != nil {
		c.close(CompletedWithError)
		return
	}
	c.state = HeadersProcessed
}

func (c *Connection) stepBody() (progressed, stop bool) {
	if c.haveChunkedUpload {
		done, err := c.consumeChunkedBody()
		if err != nil {
			c.close(CompletedWithError)
			return false, true
		}
		if !done {
			return false, true
		}
		c.state = FooterPartReceived
		return true, false
	}
	if c.remainingUpload == 0 {
		c.state = BodyReceived
		return true, false
	}
	if !c.consumeFixedBody() {
		return false, true
	}
	c.state = BodyReceived
	return true, false
}

// dispatchRequest looks up and invokes the application handler. The
// handler is expected to call QueueResponse; ok=false or no response
// queued closes the connection with an error.
func (c *Connection) dispatchRequest() {
	handler := c.daemon.Dispatch.find(c.url)
	if handler == nil {
		c.close(CompletedWithError)
		return
	}
	_, ok := handler(c, c.url, c.method, c.version, c.body.data)
	if !ok {
		c.close(CompletedWithError)
		return
	}
	if c.resp == nil {
		c.close(CompletedWithError)
		return
	}
	c.state = HeadersSending
}
