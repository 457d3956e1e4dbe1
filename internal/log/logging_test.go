package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestConsoleSplit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(slog.LevelDebug, &stdout, &stderr, nil))

	logger.Debug("parsing")
	logger.Info("generated")
	logger.Error("failed")

	assert.Contains(t, stdout.String(), "msg=parsing")
	assert.Contains(t, stdout.String(), "msg=generated")
	assert.NotContains(t, stdout.String(), "msg=failed")
	assert.Equal(t, 1, strings.Count(stderr.String(), "\n"))
	assert.Contains(t, stderr.String(), "msg=failed")
}

func TestFileHandler(t *testing.T) {
	var stdout, stderr, file bytes.Buffer
	logger := slog.New(NewHandler(LevelTrace, &stdout, &stderr, &file)).With("run", 1)

	logger.Log(context.Background(), LevelTrace, "node")
	logger.Info("done")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "level=TRACE")
	assert.Contains(t, file.String(), "level=TRACE msg=node run=1")
	assert.Contains(t, file.String(), "level=INFO msg=done run=1")
}

func TestLevelFiltering(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(slog.LevelWarn, &stdout, &stderr, nil))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "shown")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	raw := NewRaw(&buf)

	raw.Log(true, "GET https://example.org/feed", []byte("ping"))
	raw.Log(false, "GET https://example.org/feed", []byte("line\n"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], ">> GET https://example.org/feed: 4 bytes")
	assert.Equal(t, `"ping"`, lines[1])
	assert.Contains(t, lines[2], "<< GET https://example.org/feed: 5 bytes")
	assert.Equal(t, `"line\n"`, lines[3])
}

func TestRawLoggerTruncates(t *testing.T) {
	var buf bytes.Buffer
	raw := &rawLogger{w: &buf, limit: 3}
	raw.Log(false, "x", []byte("abcdef"))
	assert.Contains(t, buf.String(), "6 bytes (truncated to 3)\n\"abc\"\n")

	NewRaw(nil).Log(true, "x", []byte("dropped"))
}
