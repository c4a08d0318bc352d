/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package microhttpd implements the per-connection HTTP/1.1 state
// machine and its supporting memory/response subsystems: the
// connection finite state machine, 100-continue handling, fixed and
// chunked body intake, handler dispatch, and response header/body
// emission. Listening sockets, the accept loop, thread pools, and
// poll/epoll/select plumbing are left to the embedding daemon; this
// package only specifies the interfaces the core consumes from it
// (Logger, Clock, RequestHandler) and exposes to it (OnReadable,
// OnWritable, EventLoopInfo, Suspend/Resume, Close).
package microhttpd

import (
	"time"

	"go.uber.org/zap"
)

// Logger is the logging hook the core calls into; the daemon supplies
// the implementation. DefaultLogger wraps a *zap.SugaredLogger.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct{ s *zap.SugaredLogger }

// NewZapLogger builds the default Logger implementation.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{s: l.Sugar()}
}

func (z *zapLogger) Debugw(msg string, kv ...interface{}) { z.s.Debugw(msg, kv...) }
func (z *zapLogger) Infow(msg string, kv ...interface{})  { z.s.Infow(msg, kv...) }
func (z *zapLogger) Errorw(msg string, kv ...interface{}) { z.s.Errorw(msg, kv...) }

type noopLogger struct{}

func (noopLogger) Debugw(string, ...interface{}) {}
func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

// Clock is the daemon's timeout clock. RealClock uses time.Now; tests
// substitute a fake to exercise the idle-timeout path deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

// Now returns the current wall-clock time.
func (RealClock) Now() time.Time { return time.Now() }

// RequestHandler is invoked once per request, after the whole request
// body has been received, with the full decoded body as uploadData.
// The consumed return value is ignored: the FSM does not re-deliver an
// unprocessed remainder in a later call. ok=false closes the
// connection with an error status.
type RequestHandler func(c *Connection, url, method, version string, uploadData []byte) (consumed int, ok bool)

// Config holds daemon-wide tunables the ConnectionFSM reads when it
// lazily creates its pool and buffers.
type Config struct {
	// PoolSize is the fixed arena capacity handed to pool.New per
	// connection. Zero uses DefaultPoolSize.
	PoolSize int
	// InitialReadBufferSize is how much of the pool the read buffer
	// claims before its first grow. Zero uses DefaultInitialReadBuffer.
	InitialReadBufferSize int
	// Timeout closes a connection whose last activity is older than
	// this. Zero disables the idle timeout.
	Timeout time.Duration
}

// DefaultPoolSize matches the ~32 KiB default a production embeddable
// HTTP core budgets per connection.
const DefaultPoolSize = 32 * 1024

// DefaultInitialReadBuffer is the read buffer's starting claim on the pool.
const DefaultInitialReadBuffer = 4 * 1024

func (c Config) poolSize() int {
	if c.PoolSize > 0 {
		return c.PoolSize
	}
	return DefaultPoolSize
}

func (c Config) initialReadBufferSize() int {
	if c.InitialReadBufferSize > 0 {
		return c.InitialReadBufferSize
	}
	return DefaultInitialReadBuffer
}

// CompletionReason is the terminal reason passed to a CompletionCallback.
type CompletionReason int

const (
	CompletedOK CompletionReason = iota
	CompletedWithError
	CompletedClientAbort
	CompletedReadError
	CompletedTimeout
)

func (r CompletionReason) String() string {
	switch r {
	case CompletedOK:
		return "completed-ok"
	case CompletedWithError:
		return "with-error"
	case CompletedClientAbort:
		return "client-abort"
	case CompletedReadError:
		return "read-error"
	case CompletedTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// CompletionCallback fires exactly once per connection, at termination.
type CompletionCallback func(c *Connection, reason CompletionReason)

// Daemon is the minimal collaborator the FSM reads from: dispatch
// table, logger, clock, config. Everything else (the listen socket,
// the accept loop) lives outside this package.
type Daemon struct {
	Dispatch *Dispatch
	Logger   Logger
	Clock    Clock
	Config   Config
	OnDone   CompletionCallback
}

// NewDaemon builds a Daemon with sane defaults for any nil field.
func NewDaemon(dispatch *Dispatch) *Daemon {
	return &Daemon{
		Dispatch: dispatch,
		Logger:   noopLogger{},
		Clock:    RealClock{},
	}
}
