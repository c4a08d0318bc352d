/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import "github.com/pkg/errors"

// Protocol-error sentinels. The FSM closes the connection with
// CompletedWithError when it meets one; the error value itself is
// neither wrapped nor logged.
var (
	errInvalidContentLength        = errors.New("microhttpd: invalid Content-Length")
	errUnsupportedTransferEncoding = errors.New("microhttpd: unsupported Transfer-Encoding")
	errResponseAlreadyQueued       = errors.New("microhttpd: response already queued")
	errBodyNotYetReceived          = errors.New("microhttpd: body not yet received")
)
