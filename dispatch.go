/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

// Dispatch is an ordered, append-only table from URI prefix to
// application handler, with a daemon-level default. Registration
// order is preserved; lookup is linear.
type Dispatch struct {
	entries []dispatchEntry
	Default RequestHandler
}

type dispatchEntry struct {
	uriPrefix string
	handler   RequestHandler
}

// NewDispatch builds an empty table with the given default handler,
// invoked when no registered entry matches.
func NewDispatch(def RequestHandler) *Dispatch {
	return &Dispatch{Default: def}
}

// Register appends a new (uriPrefix, handler) entry. Later
// registrations never shadow earlier ones; the first match in
// registration order wins.
func (d *Dispatch) Register(uriPrefix string, handler RequestHandler) {
	d.entries = append(d.entries, dispatchEntry{uriPrefix: uriPrefix, handler: handler})
}

// find walks the table in registration order and returns the first
// entry whose uriPrefix is exactly equal to url. Despite the "prefix"
// name, this is exact-string equality, not a prefix match - that
// mismatch between name and behavior is preserved deliberately rather
// than "corrected" into a real prefix match, since fixing it would
// change dispatch semantics for any caller relying on the existing
// behavior. Falls back to Default when nothing matches.
func (d *Dispatch) find(url string) RequestHandler {
	for _, e := range d.entries {
		if e.uriPrefix == url {
			return e.handler
		}
	}
	return d.Default
}
