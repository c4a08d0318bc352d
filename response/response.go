/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package response implements a reference-counted, shareable Response
// that several ConnectionFSMs may queue concurrently. It owns the
// application-set header/footer Store and one of three data sources
// (buffer, callback, or file-backed callback). The reference count and
// the callback staging window are guarded by Mu; the header Store and
// the total size are not.
package response

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"microhttpd/hdr"
)

// errInvalidHeaderValue is returned by AddHeader/AddFooter when value
// contains a \t, \r or \n byte - those would let a caller smuggle an
// extra header or split the response into the wire stream.
var errInvalidHeaderValue = errors.New("microhttpd/response: invalid header value")

// Unknown is the total_size sentinel: the body length is not known in
// advance, forcing chunked (HTTP/1.1) or close-delimited (HTTP/1.0)
// framing.
const Unknown int64 = -1

// Mode governs buffer ownership for FromBuffer, mirroring the C
// source's BORROW/MUST_FREE/MUST_COPY. Go's garbage collector makes
// MustFree a no-op (there's nothing to explicitly free), but the mode
// is kept so callers porting from the C API have a 1:1 mapping and so
// MustCopy's actual behavior - taking an independent copy so the
// caller is free to reuse or mutate its buffer - is preserved.
type Mode int

const (
	Borrow Mode = iota
	MustFree
	MustCopy
)

// ReaderFunc is the content-generation callback: (offset, buf) -> n. A
// return of -1 signals end-of-stream: the connection then ends a
// chunked response with its terminating chunk, and closes the
// connection for any other response (a close-delimited end); 0 means
// "no data yet, try again on the next writable event"; a positive n is
// the number of bytes written into buf.
type ReaderFunc func(offset int64, buf []byte) int

type sourceKind int

const (
	sourceBuffer sourceKind = iota
	sourceCallback
	sourceFile
)

// Response is the shareable, reference-counted response object. The
// zero value is not usable; construct with FromBuffer, FromCallback,
// or FromFD.
type Response struct {
	Mu sync.Mutex // guards refCount and the callback staging window below

	headers *hdr.Store

	kind      sourceKind
	totalSize int64

	// sourceBuffer
	buf []byte

	// sourceCallback / sourceFile
	reader    ReaderFunc
	blockSize int
	freeCB    func()

	// Shared staging window for callback/file sources: the bytes most
	// recently produced by reader, and the absolute stream offset they
	// start at. Guarded by Mu because the same Response (and therefore
	// the same staging window) may be in flight on multiple connections
	// at once.
	data      []byte
	dataStart int64
	eof       bool

	refCount int32
}

// FromBuffer builds a Response whose entire body is already in memory.
func FromBuffer(data []byte, mode Mode) *Response {
	var owned []byte
	switch mode {
	case MustCopy:
		owned = make([]byte, len(data))
		copy(owned, data)
	default: // Borrow, MustFree: Go's GC makes these equivalent to holding the slice directly.
		owned = data
	}
	return &Response{
		headers:   hdr.NewResponseStore(),
		kind:      sourceBuffer,
		totalSize: int64(len(owned)),
		buf:       owned,
	}
}

// FromCallback builds a streaming Response. totalSize may be Unknown.
// blockSize is the maximum number of bytes requested per reader
// invocation. freeCB, if non-nil, runs exactly once when the last
// reference is released (Release reaching refCount 0).
func FromCallback(totalSize int64, blockSize int, reader ReaderFunc, freeCB func()) *Response {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &Response{
		headers:   hdr.NewResponseStore(),
		kind:      sourceCallback,
		totalSize: totalSize,
		reader:    reader,
		blockSize: blockSize,
		freeCB:    freeCB,
	}
}

// FromFD builds a Response that streams size bytes from fd starting at
// offset, implemented internally as a Callback using positional reads.
func FromFD(size int64, fd *os.File, offset int64) *Response {
	r := FromCallback(size, 32*1024, func(pos int64, buf []byte) int {
		if size != Unknown {
			if pos >= size {
				return -1
			}
			if rem := size - pos; int64(len(buf)) > rem {
				buf = buf[:rem]
			}
		}
		n, err := fd.ReadAt(buf, offset+pos)
		if n == 0 && err != nil {
			return -1
		}
		return n
	}, func() { fd.Close() })
	r.kind = sourceFile
	return r
}

// AddHeader appends a response header. Values containing \t, \r or \n
// are rejected; headers are otherwise unrestricted, including repeats
// (multiple Set-Cookie).
func (r *Response) AddHeader(name, value string) error {
	if !validHeaderValue(value) {
		return errInvalidHeaderValue
	}
	r.headers.Add(hdr.KindHeader, name, value)
	return nil
}

// AddFooter appends a response trailer, used only when the body is
// chunked-framed.
func (r *Response) AddFooter(name, value string) error {
	if !validHeaderValue(value) {
		return errInvalidHeaderValue
	}
	r.headers.Add(hdr.KindFooter, name, value)
	return nil
}

// Header returns the first response header matching name, with
// case-sensitive comparison against the exact casing the application
// used when it called AddHeader.
func (r *Response) Header(name string) (string, bool) {
	return r.headers.Get(hdr.KindHeader, name)
}

// DelHeader removes every response header matching name.
func (r *Response) DelHeader(name string) {
	r.headers.Del(hdr.KindHeader, name)
}

// Headers exposes the underlying Store so BuildHeaderResponse (root
// package) can iterate headers/footers in insertion order without this
// package needing to know about wire formatting.
func (r *Response) Headers() *hdr.Store { return r.headers }

// TotalSize returns the response's declared body length, or Unknown.
func (r *Response) TotalSize() int64 { return r.totalSize }

// SetTotalSize lets the FSM record the final size once a callback
// source signals end-of-stream mid-flight: on a callback return of -1
// total_size becomes the current write position.
func (r *Response) SetTotalSize(n int64) { r.totalSize = n }

// IsBuffer, IsCallback, IsFile classify the data source for the FSM's
// write path, which drives each one differently.
func (r *Response) IsBuffer() bool   { return r.kind == sourceBuffer }
func (r *Response) IsCallback() bool { return r.kind == sourceCallback || r.kind == sourceFile }

// Buffer returns the full in-memory body for a buffer-sourced Response.
func (r *Response) Buffer() []byte { return r.buf }

// Acquire increments the reference count; called when a ConnectionFSM
// queues this Response via queue_response.
func (r *Response) Acquire() {
	r.Mu.Lock()
	r.refCount++
	r.Mu.Unlock()
}

// Release decrements the reference count and, on the transition to
// zero, frees the body and runs freeCB exactly once: only the last
// release frees the body and runs the free callback.
func (r *Response) Release() {
	r.Mu.Lock()
	r.refCount--
	n := r.refCount
	var cb func()
	if n == 0 {
		cb = r.freeCB
		r.freeCB = nil
		r.buf = nil
		r.data = nil
	}
	r.Mu.Unlock()
	if n < 0 {
		panic("microhttpd/response: Release called more times than Acquire")
	}
	if cb != nil {
		cb()
	}
}

// RefCount reports the current reference count, for tests and invariants.
func (r *Response) RefCount() int32 {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.refCount
}

// Fill serves up to len(buf) bytes of the callback/file body starting
// at offset, acquiring Mu around both the reader invocation and the
// staging window it populates. It returns the number of bytes copied
// into buf and whether the stream has ended (reader returned -1).
func (r *Response) Fill(offset int64, buf []byte) (n int, eof bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if len(r.data) == 0 || r.dataStart != offset {
		want := r.blockSize
		if want > cap(r.scratch()) {
			r.data = make([]byte, want)
		} else {
			r.data = r.scratch()[:want]
		}
		got := r.reader(offset, r.data)
		if got == -1 {
			r.data = nil
			return 0, true
		}
		r.data = r.data[:got]
		r.dataStart = offset
	}

	n = copy(buf, r.data)
	r.data = r.data[n:]
	r.dataStart += int64(n)
	return n, false
}

// scratch returns the previous staging slice's backing array (possibly
// zero-length) so repeated Fill calls on the same Response don't
// reallocate a new block-sized buffer every time.
func (r *Response) scratch() []byte {
	if r.data == nil {
		return nil
	}
	return r.data[:cap(r.data)]
}

func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\t', '\r', '\n':
			return false
		}
	}
	return true
}
