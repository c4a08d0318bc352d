/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"errors"
	"strconv"
)

// continueLiteral is the fixed bytes emitted before reading an
// HTTP/1.1 body whose request carried a Content-Length or
// Transfer-Encoding.
const continueLiteral = "HTTP/1.1 100 Continue\r\n\r\n"

// Writer is the one-shot socket write the daemon performs on a
// writable event; *net.Conn satisfies it directly.
type Writer interface {
	Write(p []byte) (int, error)
}

// OnWritable is the FSM's write entry point: the daemon calls it once
// per writable event. It performs a single Write of whatever the
// current state has ready, then advances as far as that allows.
func (c *Connection) OnWritable(w Writer) {
	if c.state == Closed {
		return
	}
	for {
		progressed, stop := c.writeStep(w)
		if stop || !progressed {
			return
		}
	}
}

func (c *Connection) writeStep(w Writer) (progressed, stop bool) {
	switch c.state {
	case ContinueSending:
		return c.writeContinueLiteral(w)
	case HeadersSending:
		return c.writeHeaderBlock(w)
	case NormalBodyReady, ChunkedBodyReady:
		return c.writeBody(w)
	case NormalBodyUnready, ChunkedBodyUnready:
		// Waits for the application to resume the content source; the
		// next writable event retries the same Fill call.
		if c.state == NormalBodyUnready {
			c.state = NormalBodyReady
		} else {
			c.state = ChunkedBodyReady
		}
		return true, false
	case BodySent:
		if c.haveChunkedResponse && c.method != "HEAD" {
			c.state = FootersSending
			return true, false
		}
		c.state = FootersSent
		return true, false
	case FootersSending:
		return c.writeFooterBlock(w)
	case FootersSent:
		c.finishRequest()
		return false, true
	default:
		return false, true
	}
}

// writeOnce performs a single Write of data. advance is called with
// the number of bytes actually written (even on a partial write, so
// the caller's own offset/slice tracker stays correct); onDrain is
// called only once the whole of data has been written.
func (c *Connection) writeOnce(w Writer, data []byte, advance func(n int), onDrain func()) (progressed, stop bool) {
	n, err := w.Write(data)
	if n > 0 {
		c.touch()
		advance(n)
	}
	if err != nil && !isRetryable(err) {
		if errors.Is(err, errClientAbort) {
			c.close(CompletedClientAbort)
		} else {
			c.close(CompletedWithError)
		}
		return false, true
	}
	if n == len(data) {
		onDrain()
		return true, false
	}
	return n > 0, true
}

func (c *Connection) writeContinueLiteral(w Writer) (progressed, stop bool) {
	remaining := []byte(continueLiteral)[c.continueMsgOff:]
	n, err := w.Write(remaining)
	if n > 0 {
		c.continueMsgOff += n
		c.touch()
	}
	if err != nil && !isRetryable(err) {
		c.close(CompletedWithError)
		return false, true
	}
	if c.continueMsgOff == len(continueLiteral) {
		c.state = ContinueSent
		return true, false
	}
	return n > 0, true
}

func (c *Connection) writeHeaderBlock(w Writer) (progressed, stop bool) {
	if c.write.append == 0 {
		block := buildHeaderResponse(c)
		if !c.ensureWriteBuffer(len(block)) {
			c.close(CompletedWithError)
			return false, true
		}
		copy(c.pool.Slice(c.write.off, c.write.size), block)
		c.write.append = len(block)
	}
	data := c.writeBytes()[c.write.send:]
	return c.writeOnce(w, data, func(n int) { c.write.send += n }, func() {
		if c.method == "HEAD" {
			c.state = BodySent
			return
		}
		if c.haveChunkedResponse {
			c.state = ChunkedBodyReady
		} else {
			c.state = NormalBodyReady
		}
	})
}

func (c *Connection) writeBody(w Writer) (progressed, stop bool) {
	if len(c.pendingChunk) == 0 {
		if !c.fillPendingChunk() {
			return false, true // closed, or became Unready/BodySent already
		}
		if c.state == BodySent || c.state == Closed {
			return true, false
		}
	}
	return c.writeOnce(w, c.pendingChunk, func(n int) { c.pendingChunk = c.pendingChunk[n:] }, func() {
		c.pendingChunk = nil
	})
}

// fillPendingChunk stages the next write from the response's data
// source into pendingChunk. It returns false when no further write
// progress can happen this call (state already moved to Unready,
// BodySent, or Closed).
func (c *Connection) fillPendingChunk() bool {
	if c.resp.IsBuffer() {
		buf := c.resp.Buffer()
		remaining := buf[c.responseWritePos:]
		if len(remaining) == 0 {
			c.state = BodySent
			return false
		}
		if c.haveChunkedResponse {
			c.pendingChunk = encodeChunk(remaining)
			c.responseWritePos = int64(len(buf))
		} else {
			c.pendingChunk = remaining
			c.responseWritePos = int64(len(buf))
		}
		return true
	}

	scratch := make([]byte, 32*1024)
	n, eof := c.resp.Fill(c.responseWritePos, scratch)
	if eof {
		c.resp.SetTotalSize(c.responseWritePos)
		if c.haveChunkedResponse {
			c.state = FootersSending
		} else {
			c.close(CompletedOK)
		}
		return false
	}
	if n == 0 {
		if c.haveChunkedResponse {
			c.state = ChunkedBodyUnready
		} else {
			c.state = NormalBodyUnready
		}
		return false
	}
	payload := scratch[:n]
	c.responseWritePos += int64(n)
	if c.haveChunkedResponse {
		c.pendingChunk = encodeChunk(payload)
	} else {
		c.pendingChunk = payload
	}
	return true
}

func encodeChunk(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+16)
	out = append(out, []byte(strconv.FormatInt(int64(len(payload)), 16))...)
	out = append(out, '\r', '\n')
	out = append(out, payload...)
	out = append(out, '\r', '\n')
	return out
}

func (c *Connection) writeFooterBlock(w Writer) (progressed, stop bool) {
	if c.footerBlock == nil {
		c.footerBlock = buildFooterBlock(c)
	}
	return c.writeOnce(w, c.footerBlock, func(n int) { c.footerBlock = c.footerBlock[n:] }, func() {
		c.state = FootersSent
	})
}

// finishRequest implements the FootersSent terminal step: close for
// HTTP/1.0 or an explicit Connection: close, otherwise reset for
// keep-alive and resume reading the next pipelined request.
func (c *Connection) finishRequest() {
	closeWanted := c.readClosed || c.version != "HTTP/1.1"
	if !closeWanted {
		if v, ok := c.resp.Header("Connection"); ok && v == "close" {
			closeWanted = true
		}
	}
	if closeWanted {
		c.close(CompletedOK)
		return
	}
	c.resetForKeepAlive()
}

var errClientAbort = errors.New("microhttpd: client aborted connection")
