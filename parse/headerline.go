/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package parse

import (
	"strings"

	"microhttpd/hdr"
)

// HeaderLineParser maintains the "last pending header" state across
// repeated Feed calls, so that folded (obsolete line-folding)
// continuation lines can be merged into the value of the header that
// precedes them before it is committed to the Store.
type HeaderLineParser struct {
	store      *hdr.Store
	kind       hdr.Kind
	pendingSet bool
	name       string
	value      strings.Builder
}

// NewHeaderLineParser returns a parser that commits finished headers
// into store with the given kind (KindHeader for request headers,
// KindFooter for chunked-upload trailers).
func NewHeaderLineParser(store *hdr.Store, kind hdr.Kind) *HeaderLineParser {
	return &HeaderLineParser{store: store, kind: kind}
}

// Feed processes one line (already stripped of its terminator by
// NextLine). done is true once the empty line ending the header block
// is seen, at which point any still-pending header has already been
// flushed.
func (p *HeaderLineParser) Feed(line []byte) (done bool, err error) {
	if len(line) == 0 {
		p.flush()
		return true, nil
	}

	if (line[0] == ' ' || line[0] == '\t') && p.pendingSet {
		// Continuation line: a single space separates folded segments
		// regardless of how much leading whitespace the continuation
		// itself carried.
		p.value.WriteByte(' ')
		p.value.WriteString(hdr.TrimOWS(string(line)))
		return false, nil
	}

	p.flush()

	colon := indexByte(string(line), ':')
	if colon < 0 {
		return false, errMalformedHeaderLine
	}
	name := string(line[:colon])
	if !hdr.ValidFieldName(name) {
		return false, errMalformedHeaderLine
	}
	value := hdr.TrimOWS(string(line[colon+1:]))

	p.name = name
	p.value.Reset()
	p.value.WriteString(value)
	p.pendingSet = true
	return false, nil
}

func (p *HeaderLineParser) flush() {
	if !p.pendingSet {
		return
	}
	p.store.Add(p.kind, p.name, p.value.String())
	p.pendingSet = false
	p.name = ""
	p.value.Reset()
}
