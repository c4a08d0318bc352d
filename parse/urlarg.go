/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package parse

import (
	"strings"

	"microhttpd/hdr"
)

// parseArgs splits raw on '&', then each pair on its first '=',
// %HH/+-unescapes both name and value, and appends each to store under
// kind. A pair with no '=' is silently dropped rather than treated as
// name=empty.
func parseArgs(raw string, kind hdr.Kind, store *hdr.Store) error {
	if raw == "" {
		return nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		name := Unescape(pair[:eq])
		value := Unescape(pair[eq+1:])
		store.Add(kind, name, value)
	}
	return nil
}
