// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for freehand and its sub-packages.
// By default, freehand produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used by freehand:
//   - [slog.LevelDebug]: mesh growth, frame sizes, GPU buffer reallocation
//   - [slog.LevelInfo]: adapter selection, persisted drawing loads
//   - [slog.LevelWarn]: rejected loads, resource release problems
//
// Example:
//
//	freehand.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by freehand.
// The gpu packages call this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
