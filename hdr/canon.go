/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import "golang.org/x/net/http/httpguts"

// toLower is the distance between an upper and lower case ASCII letter,
// used by canonicalMIMEHeaderKey below.
const toLower = 'a' - 'A'

// commonHeader interns common header strings so CanonicalHeaderKey
// doesn't allocate a new string for names seen on every request.
var commonHeader = make(map[string]string)

func init() {
	for _, v := range []string{
		Accept, AcceptEncoding, CacheControl, Connection, ContentLength,
		ContentType, Cookie, Date, Expect, Host, SetCookie,
		TransferEncoding, Trailer, UserAgent,
	} {
		commonHeader[v] = v
	}
}

// CanonicalHeaderKey returns the canonical format of the header key s:
// first letter and any letter following a hyphen upper-cased, the rest
// lower-cased. Keys that aren't valid header field names are returned
// unmodified so lookups on malformed wire data degrade gracefully
// instead of panicking.
func CanonicalHeaderKey(s string) string {
	upper := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !httpguts.IsTokenRune(rune(c)) {
			return s
		}
		if upper && 'a' <= c && c <= 'z' {
			return canonicalMIMEHeaderKey([]byte(s))
		}
		if !upper && 'A' <= c && c <= 'Z' {
			return canonicalMIMEHeaderKey([]byte(s))
		}
		upper = c == '-'
	}
	return s
}

// canonicalMIMEHeaderKey mutates a in place (it's always a fresh copy
// from CanonicalHeaderKey's caller) and returns the canonical string,
// interning through commonHeader when possible.
func canonicalMIMEHeaderKey(a []byte) string {
	for _, c := range a {
		if !httpguts.IsTokenRune(rune(c)) {
			return string(a)
		}
	}
	upper := true
	for i, c := range a {
		if upper && 'a' <= c && c <= 'z' {
			c -= toLower
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += toLower
		}
		a[i] = c
		upper = c == '-'
	}
	if v := commonHeader[string(a)]; v != "" {
		return v
	}
	return string(a)
}

// ValidFieldName reports whether name is a syntactically valid HTTP
// header field name (RFC 7230 token grammar).
func ValidFieldName(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// ValidFieldValue reports whether value may be used as a header field
// value: no control bytes other than horizontal tab, and no DEL.
// response.AddHeader/AddFooter apply their own, different check (they
// reject \t, \r and \n) rather than this one.
func ValidFieldValue(value string) bool {
	return httpguts.ValidHeaderFieldValue(value)
}

// TrimOWS returns s with leading and trailing optional whitespace
// (space and tab) removed, per RFC 7230's OWS production.
func TrimOWS(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	n := len(s)
	for n > i && (s[n-1] == ' ' || s[n-1] == '\t') {
		n--
	}
	return s[i:n]
}
