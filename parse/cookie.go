/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package parse

import (
	"strings"

	"microhttpd/hdr"
)

// ParseCookies parses the value of a Cookie header per RFC 2109: pairs
// of name=value separated by ';' or ',', where a double-quoted value
// may itself contain ';' or ',' (those are preserved, and the outer
// quotes are stripped). Accepting ',' as well as ';' is looser than
// RFC 6265, kept deliberately rather than tightened to it.
func ParseCookies(cookieHeader string, store *hdr.Store) {
	for _, pair := range splitCookiePairs(cookieHeader) {
		pair = hdr.TrimOWS(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		name := hdr.TrimOWS(pair[:eq])
		value := unquoteCookieValue(hdr.TrimOWS(pair[eq+1:]))
		if name == "" {
			continue
		}
		store.Add(hdr.KindCookie, name, value)
	}
}

// splitCookiePairs splits on ';' or ',' except when inside a
// double-quoted value, so a value like "var4 with spaces" or a value
// containing a literal ';' survives intact.
func splitCookiePairs(s string) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ';', ',':
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func unquoteCookieValue(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}
