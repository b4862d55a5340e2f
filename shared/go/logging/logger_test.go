package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})

	zl := l.Zerolog()
	zl.Info().Msg("hidden")
	zl.Warn().Str("k", "v").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["message"] != "shown" || entry["k"] != "v" || entry["service"] != "mediaplayer" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewLevelDefaultsToInfo(t *testing.T) {
	for _, level := range []string{"loud", ""} {
		t.Run("level "+strconv.Quote(level), func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: level, Output: &buf})

			zl := l.Zerolog()
			zl.Debug().Msg("debug")
			zl.Info().Msg("info")
			zl.Error().Msg("error")

			out := buf.String()
			if strings.Contains(out, `"debug"`) || !strings.Contains(out, `"info"`) || !strings.Contains(out, `"error"`) {
				t.Fatalf("output = %q", out)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	SetGlobalLogger(New(Config{Output: &buf}))
	defer func() { log.Logger = prev }()

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")
	if RequestID(ctx) != "req-1" {
		t.Fatalf("request id = %q", RequestID(ctx))
	}
	WithContext(ctx).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"user_id":"user-1"`) {
		t.Fatalf("output = %q", out)
	}
}
