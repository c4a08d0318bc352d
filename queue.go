/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"microhttpd/hdr"
	"microhttpd/response"
)

// QueueResponse attaches resp to the connection with the given status
// code. It is rejected if a response is already queued, the body
// hasn't been fully received yet, or the header block isn't complete.
// For HEAD requests, response_write_position is set to the response's
// full size immediately; the write path itself moves straight from the
// header block to BodySent for HEAD, so only headers are emitted.
func (c *Connection) QueueResponse(code int, resp *response.Response) error {
	if c.resp != nil {
		return errResponseAlreadyQueued
	}
	if c.state != BodyReceived && c.state != FootersReceived {
		return errBodyNotYetReceived
	}
	resp.Acquire()
	c.resp = resp
	c.responseCode = code
	if c.method == "HEAD" {
		total := resp.TotalSize()
		if total == response.Unknown {
			total = 0
		}
		c.responseWritePos = total
	}
	return nil
}

// GetValues iterates every (kind-matching) value on the connection,
// received headers first then cookies/args, calling fn for each until
// it returns false.
func (c *Connection) GetValues(kindMask hdr.Kind, fn func(name, value string) bool) {
	if c.headersReceived == nil {
		return
	}
	c.headersReceived.Each(kindMask, fn)
}

// LookupValue returns the first value of kindMask matching name among
// the connection's received headers/cookies/args.
func (c *Connection) LookupValue(kindMask hdr.Kind, name string) (string, bool) {
	if c.headersReceived == nil {
		return "", false
	}
	return c.headersReceived.Get(kindMask, name)
}
