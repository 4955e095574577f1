package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(LevelDebug)
	logger := FromZap(zap.New(core)).Named("resolver").With("upload_id", "u-1")

	logger.Warn("backfill skipped", "namespace", "fantrax", "error", errors.New("taken"), "dangling")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got=%d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "resolver" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}

	fields := entry.ContextMap()
	if fields["upload_id"] != "u-1" {
		t.Fatalf("expected inherited field, got=%v", fields["upload_id"])
	}
	if fields["namespace"] != "fantrax" {
		t.Fatalf("unexpected namespace field: %v", fields["namespace"])
	}
	if fields["error"] != "taken" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected odd trailing key to be kept")
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.Sync() != nil {
		t.Fatalf("expected nil sync error for nil logger")
	}
}

func TestLogger_MirrorReceivesEnabledEntries(t *testing.T) {
	type mirrored struct {
		level Level
		msg   string
		args  []any
	}
	var got []mirrored
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, mirrored{level: level, msg: msg, args: args})
	})
	t.Cleanup(func() { SetMirror(nil) })

	core, _ := observer.New(LevelInfo)
	logger := FromZap(zap.New(core))
	logger.Debug("dropped by level")
	logger.InfoContext(context.Background(), "projections fetched", "horizon", "ros")

	if len(got) != 1 {
		t.Fatalf("expected one mirrored entry, got=%d", len(got))
	}
	if got[0].level != LevelInfo || got[0].msg != "projections fetched" {
		t.Fatalf("unexpected mirrored entry: %+v", got[0])
	}
	if len(got[0].args) != 2 || got[0].args[1] != "ros" {
		t.Fatalf("unexpected mirrored args: %v", got[0].args)
	}

	SetMirror(nil)
	logger.Info("after removal")
	if len(got) != 1 {
		t.Fatalf("expected mirror to be removed")
	}
}

func TestNewJSONTo_EncodesTraceAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONTo(&buf, LevelInfo).Named("http")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.Debug("dropped")
	logger.InfoContext(ctx, "http request", "status", 201)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one encoded line, got=%q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["level"] != "INFO" || entry["msg"] != "http request" || entry["logger"] != "http" {
		t.Fatalf("unexpected entry header: %v", entry)
	}
	if entry["trace_id"] != traceID.String() || entry["span_id"] != spanID.String() {
		t.Fatalf("expected trace correlation fields, got=%v", entry)
	}
	if entry["status"] != float64(201) {
		t.Fatalf("unexpected status field: %v", entry["status"])
	}
	caller, _ := entry["caller"].(string)
	if !strings.HasPrefix(caller, "logging/logger_test.go:") {
		t.Fatalf("expected caller to point at the test, got=%q", caller)
	}
}
