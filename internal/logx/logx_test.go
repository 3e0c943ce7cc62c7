package logx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, slog.LevelInfo, "never")
	r := slog.NewRecord(time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC), slog.LevelInfo, "run start", 0)
	r.AddAttrs(slog.Int("sources", 3))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got := buf.String()
	want := "2026-09-01 10:30:00 [INFO] run start sources=3\n"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("color=never must not emit escapes")
	}
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, slog.LevelWarn, "never")
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info must be filtered at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error must pass at warn level")
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, slog.LevelDebug, "never").
		WithAttrs([]slog.Attr{slog.String("slug", "no5")})
	r := slog.NewRecord(time.Now(), slog.LevelWarn, "snapshot failed", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(buf.String(), "slug=no5") {
		t.Fatalf("handler attrs missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		got, ok := parseLevel(in).(slog.Level)
		if !ok || got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if silent, _ := parseLevel("none").(slog.Level); silent < 100 {
		t.Errorf("none must silence all levels, got %v", silent)
	}
}
