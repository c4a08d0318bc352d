/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"microhttpd/response"
)

func echoHandler(body string) RequestHandler {
	return func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		err := c.QueueResponse(200, response.FromBuffer([]byte(body), response.Borrow))
		return len(uploadData), err == nil
	}
}

// pumpWritable drives OnWritable until the connection either closes,
// resets for keep-alive, or a call makes no further progress - the
// same way a real event loop re-fires on repeated writable events.
func pumpWritable(c *Connection, w Writer, max int) {
	rw, _ := w.(*recordingWriter)
	written := func() int {
		if rw == nil {
			return 0
		}
		return len(rw.out)
	}
	for i := 0; i < max; i++ {
		before, beforeN := c.state, written()
		c.OnWritable(w)
		if c.state == Closed || c.state == Init {
			return
		}
		if c.state == before && written() == beforeN && i > 0 {
			return
		}
	}
}

func TestSimpleGETRoundTrip(t *testing.T) {
	d := newTestDaemon()
	d.Dispatch.Register("/", echoHandler("hi"))

	c := NewConnection(d)
	r := &chunkedReader{chunks: [][]byte{[]byte("GET / HTTP/1.1\r\nHost: example\r\n\r\n")}}
	c.OnReadable(r)
	require.Equal(t, HeadersSending, c.state)

	w := &recordingWriter{}
	pumpWritable(c, w, 8)

	out := string(w.out)
	require.True(t, strings.HasPrefix(out, "HTTP/1.1 200\r\n"))
	require.Contains(t, out, "Content-Length: 2\r\n")
	require.True(t, strings.HasSuffix(out, "hi"))
	require.Equal(t, Init, c.state, "keep-alive HTTP/1.1 request resets to Init")
}

func TestPartialSocketWritesDoNotDuplicateBytes(t *testing.T) {
	d := newTestDaemon()
	d.Dispatch.Register("/", echoHandler("hello world"))

	c := NewConnection(d)
	r := &chunkedReader{chunks: [][]byte{[]byte("GET / HTTP/1.1\r\nHost: example\r\n\r\n")}}
	c.OnReadable(r)

	w := &recordingWriter{maxWrite: 3}
	pumpWritable(c, w, 64)

	out := string(w.out)
	require.True(t, strings.HasSuffix(out, "hello world"), "body must appear exactly once despite short writes: %q", out)
	require.Equal(t, 1, strings.Count(out, "hello world"))
}

func TestHEADRequestSendsNoBody(t *testing.T) {
	d := newTestDaemon()
	d.Dispatch.Register("/", echoHandler("hi"))

	c := NewConnection(d)
	r := &chunkedReader{chunks: [][]byte{[]byte("HEAD / HTTP/1.1\r\nHost: example\r\n\r\n")}}
	c.OnReadable(r)

	w := &recordingWriter{}
	pumpWritable(c, w, 8)

	out := string(w.out)
	require.True(t, strings.HasPrefix(out, "HTTP/1.1 200\r\n"))
	require.False(t, strings.HasSuffix(out, "hi"))
}

func TestChunkedUploadBodyAccumulates(t *testing.T) {
	var captured string
	d := newTestDaemon()
	d.Dispatch.Register("/upload", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		captured = string(uploadData)
		err := c.QueueResponse(200, response.FromBuffer(nil, response.Borrow))
		return len(uploadData), err == nil
	})

	c := NewConnection(d)
	headers := "POST /upload HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n"
	body := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"

	c.OnReadable(&chunkedReader{chunks: [][]byte{[]byte(headers)}})
	require.Equal(t, ContinueSending, c.state, "chunked upload expects a 100-continue before the body")

	c.OnWritable(&recordingWriter{}) // flush the continue literal; client sends the body next
	require.Equal(t, ContinueSent, c.state)

	c.OnReadable(&chunkedReader{chunks: [][]byte{[]byte(body)}})

	require.Equal(t, "hello world", captured)
	require.Equal(t, HeadersSending, c.state)
}

func TestChunkedUploadAcrossMultipleReads(t *testing.T) {
	var captured string
	d := newTestDaemon()
	d.Dispatch.Register("/upload", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		captured = string(uploadData)
		err := c.QueueResponse(200, response.FromBuffer(nil, response.Borrow))
		return len(uploadData), err == nil
	})

	c := NewConnection(d)
	headers := "POST /upload HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n"
	c.OnReadable(&chunkedReader{chunks: [][]byte{[]byte(headers)}})
	c.OnWritable(&recordingWriter{})
	require.Equal(t, ContinueSent, c.state)

	body := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	const mid = 16 // lands mid-payload of the second chunk ("6\r\n wo" | "rld\r\n0\r\n\r\n")
	r := &chunkedReader{chunks: [][]byte{[]byte(body[:mid]), []byte(body[mid:])}}
	c.OnReadable(r)
	c.OnReadable(r)

	require.Equal(t, "hello world", captured)
}

func TestContinueSentBeforeBodyWhenContentLengthPresent(t *testing.T) {
	d := newTestDaemon()
	d.Dispatch.Register("/upload", echoHandler(""))

	c := NewConnection(d)
	r := &chunkedReader{chunks: [][]byte{[]byte("POST /upload HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\n")}}
	c.OnReadable(r)
	require.Equal(t, ContinueSending, c.state)

	w := &recordingWriter{}
	c.OnWritable(w)
	require.Equal(t, "HTTP/1.1 100 Continue\r\n\r\n", string(w.out))
	require.Equal(t, ContinueSent, c.state)
}

func TestQueueTooLargeSynthesizesResponseWithoutPanic(t *testing.T) {
	d := newTestDaemon()
	d.Config.InitialReadBufferSize = 128
	d.Config.PoolSize = 128 // exactly the initial read buffer: growing it can never succeed

	c := NewConnection(d)
	longLine := "GET /" + strings.Repeat("a", 200) + " HTTP/1.1\r\n\r\n"
	r := &streamReader{data: []byte(longLine)}
	require.NotPanics(t, func() { c.OnReadable(r) })
	require.NotEqual(t, HeadersSending, c.state, "first call only fills the undersized buffer")
	require.NotPanics(t, func() { c.OnReadable(r) })
	require.Equal(t, HeadersSending, c.state)
	require.Equal(t, 414, c.responseCode)

	w := &recordingWriter{}
	require.NotPanics(t, func() { pumpWritable(c, w, 8) })
	require.True(t, strings.HasPrefix(string(w.out), "HTTP/1.1 414\r\n"))
}

func TestTimedOut(t *testing.T) {
	clock := &fakeClock{now: fixedNow}
	d := NewDaemon(NewDispatch(nil))
	d.Clock = clock
	d.Config.Timeout = time.Minute

	c := NewConnection(d)
	require.False(t, c.TimedOut())

	clock.now = fixedNow.Add(2 * time.Minute)
	require.True(t, c.TimedOut())
}

func TestCloseIsIdempotentAndFiresCompletionOnce(t *testing.T) {
	d := newTestDaemon()
	var fired int
	var lastReason CompletionReason
	d.OnDone = func(c *Connection, reason CompletionReason) {
		fired++
		lastReason = reason
	}

	c := NewConnection(d)
	c.Close()
	c.Close()
	c.close(CompletedOK) // a different reason after already-closed must not re-fire

	require.Equal(t, 1, fired)
	require.Equal(t, CompletedWithError, lastReason)
	require.Equal(t, Closed, c.state)
}
