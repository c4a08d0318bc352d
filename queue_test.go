/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"microhttpd/hdr"
	"microhttpd/response"
)

func TestLookupValueSeesHeadersArgsAndCookies(t *testing.T) {
	var got map[string]bool
	d := newTestDaemon()
	d.Dispatch.Register("/greet", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		got = map[string]bool{}
		if v, ok := c.LookupValue(hdr.KindHeader, "Host"); ok {
			got["host="+v] = true
		}
		if v, ok := c.LookupValue(hdr.KindGetArg, "name"); ok {
			got["name="+v] = true
		}
		if v, ok := c.LookupValue(hdr.KindCookie, "session"); ok {
			got["session="+v] = true
		}
		err := c.QueueResponse(200, response.FromBuffer(nil, response.Borrow))
		return len(uploadData), err == nil
	})

	c := NewConnection(d)
	req := "GET /greet?name=ada HTTP/1.1\r\nHost: example.com\r\nCookie: session=abc123\r\n\r\n"
	c.OnReadable(&chunkedReader{chunks: [][]byte{[]byte(req)}})

	require.True(t, got["host=example.com"])
	require.True(t, got["name=ada"])
	require.True(t, got["session=abc123"])
}

func TestQueueResponseRejectsDoubleQueue(t *testing.T) {
	d := newTestDaemon()
	d.Dispatch.Register("/", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		err1 := c.QueueResponse(200, response.FromBuffer([]byte("a"), response.Borrow))
		require.NoError(t, err1)
		err2 := c.QueueResponse(200, response.FromBuffer([]byte("b"), response.Borrow))
		require.ErrorIs(t, err2, errResponseAlreadyQueued)
		return len(uploadData), true
	})

	c := NewConnection(d)
	c.OnReadable(&chunkedReader{chunks: [][]byte{[]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")}})
	require.Equal(t, HeadersSending, c.state)
}
