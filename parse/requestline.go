/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package parse

import (
	"bytes"

	"microhttpd/hdr"
)

// RequestLine is the parsed first line of a request: "METHOD target
// VERSION". Version is "" for an HTTP/0.9-style request with no
// version token at all - the caller treats that as "no body, no
// 100-continue, close after response" per the implied 0.9 semantics.
type RequestLine struct {
	Method, URL, Query, Version string
}

// ParseRequestLine splits the first line on the first space into method
// and the rest; trims leading spaces from the rest; splits the rest on
// its *last* space into target and version. The target is then split
// on '?' into URL and query string. Tolerates old buggy clients leading
// with extra CR/LF by simply not caring about leading blank lines here
// - NextLine's caller skips those before ever invoking ParseRequestLine.
func ParseRequestLine(line []byte) (RequestLine, error) {
	sp := bytes.IndexByte(line, ' ')
	if sp < 0 {
		return RequestLine{}, errMalformedRequestLine
	}
	method := string(line[:sp])
	rest := bytes.TrimLeft(line[sp+1:], " ")

	var target, version string
	if last := bytes.LastIndexByte(rest, ' '); last >= 0 {
		target = string(rest[:last])
		version = string(rest[last+1:])
	} else {
		target = string(rest)
		version = ""
	}

	url, query := target, ""
	if q := indexByte(target, '?'); q >= 0 {
		url, query = target[:q], target[q+1:]
	}

	return RequestLine{Method: method, URL: url, Query: query, Version: version}, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// ParseQueryArgs decodes a query string (as found after '?' in the
// request target) into store entries of the given kind - GetArg for
// the request line's own query, PostArg for a urlencoded POST body.
func ParseQueryArgs(raw string, kind hdr.Kind, store *hdr.Store) error {
	return parseArgs(raw, kind, store)
}
