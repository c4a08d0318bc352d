/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package parse implements the in-place parsers shared by the
// connection state machine: the line splitter, request-line parser,
// header-line parser (with folded-line support), the RFC 2109 cookie
// parser, the URL-argument parser, and %HH/+ unescaping. NextLine,
// ParseRequestLine and HeaderLineParser.Feed take a []byte view of the
// connection's read buffer; the cookie and argument parsers and
// Unescape work on strings. None of them allocate the read buffer
// itself - that's the ConnectionFSM's and the pool.Arena's job.
package parse

import "bytes"

// NextLine scans buf for a line terminator (\r\n, or a bare \n for
// tolerance of old clients). It returns the line with the terminator
// stripped and the unconsumed remainder of buf. ok is false when no
// terminator was found yet - the caller (ConnectionFSM) must then
// either grow the read buffer via pool.Arena.Reallocate and retry, or,
// if growth fails, synthesize a 413/414 and close the connection.
func NextLine(buf []byte) (line, rest []byte, ok bool) {
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		end := i
		if end > 0 && buf[end-1] == '\r' {
			end--
		}
		return buf[:end], buf[i+1:], true
	}
	// No \n yet; a bare trailing \r with nothing after it is not a
	// terminator on its own (we can't tell it apart from "more text is
	// coming"), so we correctly report "need more data" here too.
	return nil, buf, false
}
