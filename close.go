/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

// close transitions the FSM to Closed and invokes the daemon's
// completion callback exactly once, regardless of how many internal
// paths call close for the same connection.
func (c *Connection) close(reason CompletionReason) {
	if c.state == Closed {
		return
	}
	wasQueued := c.resp != nil
	c.state = Closed
	if c.resp != nil {
		c.resp.Release()
		c.resp = nil
	}
	if c.pool != nil {
		c.pool.Destroy()
		c.pool = nil
	}
	if !c.completionFired {
		c.completionFired = true
		if c.daemon.OnDone != nil {
			c.daemon.OnDone(c, reason)
		}
	}
	logFields := []interface{}{"connection_id", c.ID.String(), "reason", reason.String(), "response_queued", wasQueued}
	switch reason {
	case CompletedOK:
		c.daemon.Logger.Infow("connection closed", logFields...)
	default:
		c.daemon.Logger.Errorw("connection closed", logFields...)
	}
}

// Close is the daemon-facing forced-close entry point (e.g. on
// listener shutdown). It always reports WithError, matching the
// "close abruptly" contract; an already-closed connection is a no-op.
func (c *Connection) Close() {
	c.close(CompletedWithError)
}
