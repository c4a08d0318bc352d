/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

// State is the sequential connection state. Transitions move forward
// by one step, jump to Closed from any state on error, and FootersSent
// either loops back to Init (keep-alive) or moves to Closed.
type State int

const (
	Init State = iota
	URLReceived
	HeaderPartReceived
	HeadersReceived
	HeadersProcessed
	ContinueSending
	ContinueSent
	BodyReceived
	FooterPartReceived
	FootersReceived
	HeadersSending
	HeadersSent
	NormalBodyReady
	NormalBodyUnready
	ChunkedBodyReady
	ChunkedBodyUnready
	BodySent
	FootersSending
	FootersSent
	Closed
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case URLReceived:
		return "url-received"
	case HeaderPartReceived:
		return "header-part-received"
	case HeadersReceived:
		return "headers-received"
	case HeadersProcessed:
		return "headers-processed"
	case ContinueSending:
		return "continue-sending"
	case ContinueSent:
		return "continue-sent"
	case BodyReceived:
		return "body-received"
	case FooterPartReceived:
		return "footer-part-received"
	case FootersReceived:
		return "footers-received"
	case HeadersSending:
		return "headers-sending"
	case HeadersSent:
		return "headers-sent"
	case NormalBodyReady:
		return "normal-body-ready"
	case NormalBodyUnready:
		return "normal-body-unready"
	case ChunkedBodyReady:
		return "chunked-body-ready"
	case ChunkedBodyUnready:
		return "chunked-body-unready"
	case BodySent:
		return "body-sent"
	case FootersSending:
		return "footers-sending"
	case FootersSent:
		return "footers-sent"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Readiness is what EventLoopInfo reports back to the surrounding
// daemon's poll/epoll/select loop.
type Readiness int

const (
	ReadyRead Readiness = iota
	ReadyWrite
	ReadyBlock
	ReadyCleanup
)

func (r Readiness) String() string {
	switch r {
	case ReadyRead:
		return "read"
	case ReadyWrite:
		return "write"
	case ReadyBlock:
		return "block"
	case ReadyCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

func isReadingState(s State) bool {
	switch s {
	case Init, URLReceived, HeaderPartReceived, ContinueSent, BodyReceived, FooterPartReceived:
		return true
	default:
		return false
	}
}

func isWritingState(s State) bool {
	switch s {
	case ContinueSending, HeadersSending, NormalBodyReady, ChunkedBodyReady, FootersSending:
		return true
	default:
		return false
	}
}

func isBlockedState(s State) bool {
	switch s {
	case HeadersReceived, FootersReceived, NormalBodyUnready, ChunkedBodyUnready:
		return true
	default:
		return false
	}
}

// EventLoopInfo translates the FSM's current state into the readiness
// value the surrounding daemon feeds into its poll/epoll/select call.
// It is a pure function of state: no socket I/O happens here.
func (c *Connection) EventLoopInfo() Readiness {
	if c.state == Closed {
		return ReadyCleanup
	}
	if c.suspended {
		return ReadyBlock
	}
	if isReadingState(c.state) {
		if c.readClosed {
			return ReadyBlock
		}
		return ReadyRead
	}
	if isWritingState(c.state) {
		return ReadyWrite
	}
	// isBlockedState and anything else: work remains but no socket
	// readiness can progress it.
	return ReadyBlock
}
