/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package pool implements a per-connection bump allocator: a
// fixed-size arena with two cursors (low growing forward, high growing
// backward) so that long-lived small records and large growing buffers
// (the read/write buffers) can share one allocation without a
// general-purpose free list. Header entries are not kept here: they
// live in hdr.Store, outside the arena.
//
// Backing storage is borrowed from a process-wide bytebufferpool.Pool
// instead of a bare make([]byte, n), the same way bufio.Reader/Writer
// pairs get recycled across connections elsewhere in this module -
// here the thing being recycled is the arena's backing array itself.
package pool

import "github.com/valyala/bytebufferpool"

const alignment = 8

var backing bytebufferpool.Pool

// Arena is a fixed-capacity byte region with three cursors: low bumps
// forward, high bumps backward, end is the capacity. It is not safe
// for concurrent use; exactly one ConnectionFSM owns an Arena at a time.
type Arena struct {
	buf         *bytebufferpool.ByteBuffer
	low, high, end int
}

// New creates an Arena with the given fixed capacity. The connection
// passes the daemon's configured pool size unchanged; New does no
// rounding.
func New(size int) *Arena {
	bb := backing.Get()
	growTo(bb, size)
	return &Arena{buf: bb, low: 0, high: size, end: size}
}

func growTo(bb *bytebufferpool.ByteBuffer, size int) {
	if cap(bb.B) < size {
		bb.B = append(bb.B[:cap(bb.B)], make([]byte, size-cap(bb.B))...)
	}
	bb.B = bb.B[:size]
}

// bytes returns the full backing array; callers index into it with
// offsets returned by Allocate/Reallocate, never raw pointers, so that
// Reset/regrow (which may move the backing array) can't leave a
// dangling reference the way the original C pool's raw pointers could.
func (a *Arena) bytes() []byte {
	return a.buf.B
}

// Slice resolves an (offset, length) pair - as produced by Allocate or
// Reallocate - into the live backing bytes. Call sites
// decide whether to keep using the []byte (zero-copy) or convert it to
// a string (one copy, accepted as the cost of the offset-pair approach
// over carrying raw pointers that Reset/regrow could invalidate).
func (a *Arena) Slice(off, length int) []byte {
	return a.bytes()[off : off+length]
}

func align(n int) int {
	if r := n % alignment; r != 0 {
		n += alignment - r
	}
	return n
}

// Allocate reserves n bytes and returns their offset into the arena.
// fromEnd selects the backward cursor, for small long-lived records
// that must not be shuffled by the forward cursor's grow-in-place
// reallocations; the connection FSM itself only allocates forward. ok
// is false when the arena is exhausted. The FSM treats a failed
// read-buffer grow as "request too big" and queues a 413/414; a failed
// initial or write-buffer allocation closes the connection.
func (a *Arena) Allocate(n int, fromEnd bool) (off int, ok bool) {
	n = align(n)
	if fromEnd {
		if a.low > a.high-n {
			return 0, false
		}
		a.high -= n
		return a.high, true
	}
	if a.low+n > a.high {
		return 0, false
	}
	off = a.low
	a.low += n
	return off, true
}

// Reallocate grows or shrinks the block at (off, oldLen) to newLen.
// When the block is the most recent forward allocation (off+oldLen ==
// a.low) this is O(1): the low cursor simply moves. Otherwise a fresh
// forward block is allocated and the old bytes are copied in; the old
// region is abandoned until the arena is destroyed or reset - there is
// no free list.
func (a *Arena) Reallocate(off, oldLen, newLen int) (newOff int, ok bool) {
	newLenAligned := align(newLen)
	if off+align(oldLen) == a.low {
		if off+newLenAligned > a.high {
			return 0, false
		}
		a.low = off + newLenAligned
		return off, true
	}
	newOff, ok = a.Allocate(newLen, false)
	if !ok {
		return 0, false
	}
	copy(a.bytes()[newOff:], a.bytes()[off:off+oldLen])
	return newOff, true
}

// Reset is used only on keep-alive: it preserves keepLen bytes starting
// at keepOff (the residual, already-received bytes of the next
// pipelined request) at the start of a fresh newSize arena, discarding
// everything else including the whole from-end region.
func (a *Arena) Reset(keepOff, keepLen, newSize int) {
	old := a.buf
	next := backing.Get()
	growTo(next, newSize)
	copy(next.B, old.B[keepOff:keepOff+keepLen])
	backing.Put(old)
	a.buf = next
	a.low = keepLen
	a.high = newSize
	a.end = newSize
}

// Destroy releases the underlying buffer back to the process pool.
// Every offset previously handed out by this Arena becomes invalid;
// this is enforced only by convention (callers must not resolve a
// Slice after Destroy), since Go offers no way to poison stale ints.
func (a *Arena) Destroy() {
	if a.buf == nil {
		return
	}
	backing.Put(a.buf)
	a.buf = nil
	a.low, a.high, a.end = 0, 0, 0
}

// Len reports the arena's total capacity (the "end" cursor).
func (a *Arena) Len() int { return a.end }

// Used reports how many bytes are currently claimed by the forward
// cursor.
func (a *Arena) Used() int { return a.low }

// Free reports the bytes available between the two cursors.
func (a *Arena) Free() int { return a.high - a.low }
