/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package microhttpd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func handlerNamed(name string) RequestHandler {
	return func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		return 0, true
	}
}

func TestDispatchExactMatchNotPrefixMatch(t *testing.T) {
	d := NewDispatch(nil)
	var called string
	d.Register("/api", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		called = "api"
		return 0, true
	})

	require.NotNil(t, d.find("/api"))
	require.Nil(t, d.find("/api/v2"), "the table's \"prefix\" field name does not mean prefix matching")
	require.Nil(t, d.find("/ap"))

	h := d.find("/api")
	h(nil, "/api", "GET", "HTTP/1.1", nil)
	require.Equal(t, "api", called)
}

func TestDispatchFirstRegistrationWins(t *testing.T) {
	d := NewDispatch(nil)
	var which string
	d.Register("/x", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		which = "first"
		return 0, true
	})
	d.Register("/x", func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		which = "second"
		return 0, true
	})

	d.find("/x")(nil, "/x", "GET", "HTTP/1.1", nil)
	require.Equal(t, "first", which)
}

func TestDispatchFallsBackToDefault(t *testing.T) {
	called := false
	def := func(c *Connection, url, method, version string, uploadData []byte) (int, bool) {
		called = true
		return 0, true
	}
	d := NewDispatch(def)
	d.Register("/known", handlerNamed("known"))

	h := d.find("/unknown")
	require.NotNil(t, h)
	h(nil, "/unknown", "GET", "HTTP/1.1", nil)
	require.True(t, called)
}
