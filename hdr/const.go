/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

// Well-known header names, in their canonical wire casing. Using these
// instead of string literals keeps lookups and Store.Add call sites
// typo-proof across the connection FSM and the parsers.
const (
	Accept           = "Accept"
	AcceptEncoding   = "Accept-Encoding"
	CacheControl     = "Cache-Control"
	Connection       = "Connection"
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	Cookie           = "Cookie"
	Date             = "Date"
	Expect           = "Expect"
	Host             = "Host"
	SetCookie        = "Set-Cookie"
	TransferEncoding = "Transfer-Encoding"
	Trailer          = "Trailer"
	UserAgent        = "User-Agent"

	// TimeFormat is the RFC 1123 form BuildHeaderResponse uses to
	// synthesize a Date header when the application didn't set one.
	TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

	// ConnectionClose is the Connection header value that forces the
	// FSM to close after FOOTERS_SENT instead of resetting for keep-alive.
	ConnectionClose = "close"
	// ChunkedEncoding is the only Transfer-Encoding token the core understands.
	ChunkedEncoding = "chunked"
	// ContinueExpectation is the Expect token for 100-continue. The FSM
	// does not read the Expect header: it sends the continue literal for
	// any HTTP/1.1 request with a body, and never answers with a 417.
	ContinueExpectation = "100-continue"
)
