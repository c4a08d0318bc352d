/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDaemon() *Daemon {
	d := NewDaemon(NewDispatch(nil))
	d.Clock = &fakeClock{now: fixedNow}
	return d
}

func TestEventLoopInfoReadingStates(t *testing.T) {
	c := NewConnection(newTestDaemon())
	for _, s := range []State{Init, URLReceived, HeaderPartReceived, ContinueSent, BodyReceived, FooterPartReceived} {
		c.state = s
		require.Equal(t, ReadyRead, c.EventLoopInfo(), "state %s", s)
	}
}

func TestEventLoopInfoReadClosedBlocksFurtherReads(t *testing.T) {
	c := NewConnection(newTestDaemon())
	c.state = BodyReceived
	c.readClosed = true
	require.Equal(t, ReadyBlock, c.EventLoopInfo())
}

func TestEventLoopInfoWritingStates(t *testing.T) {
	c := NewConnection(newTestDaemon())
	for _, s := range []State{ContinueSending, HeadersSending, NormalBodyReady, ChunkedBodyReady, FootersSending} {
		c.state = s
		require.Equal(t, ReadyWrite, c.EventLoopInfo(), "state %s", s)
	}
}

func TestEventLoopInfoBlockedStates(t *testing.T) {
	c := NewConnection(newTestDaemon())
	for _, s := range []State{HeadersReceived, FootersReceived, NormalBodyUnready, ChunkedBodyUnready} {
		c.state = s
		require.Equal(t, ReadyBlock, c.EventLoopInfo(), "state %s", s)
	}
}

func TestEventLoopInfoClosedReportsCleanup(t *testing.T) {
	c := NewConnection(newTestDaemon())
	c.state = Closed
	require.Equal(t, ReadyCleanup, c.EventLoopInfo())
}

func TestEventLoopInfoSuspendedBlocksRegardlessOfState(t *testing.T) {
	c := NewConnection(newTestDaemon())
	c.state = URLReceived
	c.Suspend()
	require.Equal(t, ReadyBlock, c.EventLoopInfo())
	c.Resume()
	require.Equal(t, ReadyRead, c.EventLoopInfo())
}
