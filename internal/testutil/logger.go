// Package testutil provides structured logging for tests.
package testutil

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes to t.Log, so
// pipeline logs show up only for failing tests or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := NewRecordingLogger(t)
	return logger
}

// Records holds the messages a recording logger emitted, in order.
type Records struct {
	mu   sync.Mutex
	msgs []string
}

// Messages returns a copy of the recorded messages.
func (r *Records) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.msgs)
}

// Has reports whether msg was logged at least once.
func (r *Records) Has(msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.msgs, msg)
}

func (r *Records) add(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// NewRecordingLogger is NewTestLogger that also records every message, for
// tests that assert a stage was logged.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *Records) {
	t.Helper()
	records := &Records{}
	inner := slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&recordingHandler{Handler: inner, records: records}), records
}

type recordingHandler struct {
	slog.Handler
	records *Records
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.records.add(r.Message)
	return h.Handler.Handle(ctx, r)
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{Handler: h.Handler.WithAttrs(attrs), records: h.records}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{Handler: h.Handler.WithGroup(name), records: h.records}
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
