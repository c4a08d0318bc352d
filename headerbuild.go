/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"strconv"
	"strings"

	"microhttpd/hdr"
	"microhttpd/response"
)

// buildHeaderResponse formats the status line, response headers, and
// the Content-Length/Connection/Date defaults into a single byte
// block, per component H. It does not touch the connection's write
// buffer; callers copy the result in.
func buildHeaderResponse(c *Connection) []byte {
	var b strings.Builder

	total := c.resp.TotalSize()
	headers := c.resp.Headers()

	if total == response.Unknown {
		if !headers.Has(hdr.KindHeader, hdr.Connection) {
			if c.version == "HTTP/1.1" {
				c.haveChunkedResponse = true
			} else {
				headers.Add(hdr.KindHeader, hdr.Connection, hdr.ConnectionClose)
			}
		}
	} else if !headers.Has(hdr.KindHeader, hdr.ContentLength) {
		headers.Add(hdr.KindHeader, hdr.ContentLength, strconv.FormatInt(total, 10))
	}
	if c.haveChunkedResponse && !headers.Has(hdr.KindHeader, hdr.TransferEncoding) {
		headers.Add(hdr.KindHeader, hdr.TransferEncoding, hdr.ChunkedEncoding)
	}

	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(c.responseCode))
	b.WriteString("\r\n")

	headers.Each(hdr.KindHeader, func(name, value string) bool {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
		return true
	})

	if !headers.Has(hdr.KindHeader, hdr.Date) {
		b.WriteString("Date: ")
		b.WriteString(c.daemon.Clock.Now().UTC().Format(hdr.TimeFormat))
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")
	return []byte(b.String())
}

// buildFooterBlock formats the trailers queued on the response
// (kind Footer) for the end of a chunked response body, preceded by
// the zero-size chunk that terminates the body itself.
func buildFooterBlock(c *Connection) []byte {
	var b strings.Builder
	b.WriteString("0\r\n")
	c.resp.Headers().Each(hdr.KindFooter, func(name, value string) bool {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
		return true
	})
	b.WriteString("\r\n")
	return []byte(b.String())
}
