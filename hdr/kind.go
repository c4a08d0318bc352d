/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

// Kind is a bitmask over where a Store entry came from: it is what
// lookup and iteration over connection values filter by.
type Kind uint8

const (
	KindHeader Kind = 1 << iota
	KindFooter
	KindCookie
	KindGetArg
	KindPostArg

	// KindAny matches every entry; used by callers that want every
	// value regardless of origin.
	KindAny = KindHeader | KindFooter | KindCookie | KindGetArg | KindPostArg
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindFooter:
		return "footer"
	case KindCookie:
		return "cookie"
	case KindGetArg:
		return "get-arg"
	case KindPostArg:
		return "post-arg"
	default:
		return "mixed"
	}
}
