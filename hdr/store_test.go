/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReceivedStoreHeaderLookupIsCaseInsensitive(t *testing.T) {
	s := NewReceivedStore()
	s.Add(KindHeader, "content-type", "text/plain")

	v, ok := s.Get(KindHeader, "Content-Type")
	require.True(t, ok)
	require.Equal(t, "text/plain", v)

	require.True(t, s.Has(KindHeader, "CONTENT-TYPE"))
}

func TestReceivedStoreCookieLookupIsCaseSensitive(t *testing.T) {
	s := NewReceivedStore()
	s.Add(KindCookie, "Session", "abc")

	_, ok := s.Get(KindCookie, "session")
	require.False(t, ok, "cookie names are wire data, not header-like case folding")

	v, ok := s.Get(KindCookie, "Session")
	require.True(t, ok)
	require.Equal(t, "abc", v)
}

func TestResponseStoreHeaderLookupIsCaseSensitive(t *testing.T) {
	s := NewResponseStore()
	s.Add(KindHeader, "X-Custom", "1")

	_, ok := s.Get(KindHeader, "x-custom")
	require.False(t, ok, "response headers preserve the application's exact casing")

	v, ok := s.Get(KindHeader, "X-Custom")
	require.True(t, ok)
	require.Equal(t, "1", v)
}

func TestStoreAllowsDuplicateEntries(t *testing.T) {
	s := NewResponseStore()
	s.Add(KindHeader, "Set-Cookie", "a=1")
	s.Add(KindHeader, "Set-Cookie", "b=2")

	require.Equal(t, []string{"a=1", "b=2"}, s.GetAll(KindHeader, "Set-Cookie"))
	require.Equal(t, 2, s.Len(KindHeader))
}

func TestStoreDelRemovesAllMatches(t *testing.T) {
	s := NewResponseStore()
	s.Add(KindHeader, "X", "1")
	s.Add(KindHeader, "X", "2")
	s.Add(KindHeader, "Y", "3")

	s.Del(KindHeader, "X")

	require.False(t, s.Has(KindHeader, "X"))
	require.True(t, s.Has(KindHeader, "Y"))
	require.Equal(t, 1, s.Len(KindHeader|KindFooter))
}

func TestStoreEachFiltersByKindMaskAndStopsEarly(t *testing.T) {
	s := NewResponseStore()
	s.Add(KindHeader, "H1", "1")
	s.Add(KindFooter, "F1", "2")
	s.Add(KindHeader, "H2", "3")

	var seen []string
	s.Each(KindHeader, func(name, value string) bool {
		seen = append(seen, name)
		return true
	})
	require.Equal(t, []string{"H1", "H2"}, seen)

	var first string
	s.Each(KindHeader, func(name, value string) bool {
		first = name
		return false
	})
	require.Equal(t, "H1", first)
}

func TestStoreResetEmptiesEntries(t *testing.T) {
	s := NewReceivedStore()
	s.Add(KindHeader, "X", "1")
	s.Reset()

	require.Equal(t, 0, s.Len(KindAny))
	require.False(t, s.Has(KindHeader, "X"))
}
