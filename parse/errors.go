/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package parse

import "github.com/pkg/errors"

// Protocol-error sentinels: malformed request line, malformed header
// line. They are returned unwrapped; the FSM closes the connection with
// CompletedWithError on either and does not log the error value.
var (
	errMalformedRequestLine = errors.New("parse: malformed request line")
	errMalformedHeaderLine  = errors.New("parse: malformed header line")
)
