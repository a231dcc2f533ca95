package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetHandler(nil)
	defer SetLevel(LevelError)

	tests := []struct {
		name    string
		level   int
		logFn   func(string, ...any)
		message string
		written bool
	}{
		{
			name:    "error at error",
			level:   LevelError,
			logFn:   Error,
			message: "boom",
			written: true,
		},
		{
			name:    "debug at error",
			level:   LevelError,
			logFn:   Debug,
			message: "hidden",
			written: false,
		},
		{
			name:    "debug at debug",
			level:   LevelDebug,
			logFn:   Debug,
			message: "shown",
			written: true,
		},
		{
			name:    "trace at debug",
			level:   LevelDebug,
			logFn:   Trace,
			message: "too deep",
			written: false,
		},
		{
			name:    "trace at trace",
			level:   LevelTrace,
			logFn:   Trace,
			message: "leaf count",
			written: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf.Reset()
			SetLevel(test.level)
			test.logFn(test.message)
			assert.Equal(t, test.written, bytes.Contains(buf.Bytes(), []byte(test.message)))
		})
	}
}

func TestFormatting(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetLevel(LevelInfo)
	defer SetHandler(nil)
	defer SetLevel(LevelError)

	Info("reduced %d leaves to %d", 300, 255)
	assert.Contains(t, buf.String(), "reduced 300 leaves to 255")
}

func TestDiscardByDefault(t *testing.T) {
	SetHandler(nil)
	SetLevel(LevelTrace)
	defer SetLevel(LevelError)
	// must not panic or write anywhere
	Trace("nothing %d", 1)
	assert.NotNil(t, Handler())
}

func TestRaiseLevel(t *testing.T) {
	defer SetLevel(LevelError)
	tests := []struct {
		name  string
		start int
		raise int
		want  int
	}{
		{name: "raises", start: LevelError, raise: LevelDebug, want: LevelDebug},
		{name: "keeps more verbose", start: LevelTrace, raise: LevelInfo, want: LevelTrace},
		{name: "same", start: LevelWarn, raise: LevelWarn, want: LevelWarn},
		{name: "nothing enabled", start: LevelInfo, raise: -1, want: LevelInfo},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			SetLevel(test.start)
			RaiseLevel(test.raise)
			assert.Equal(t, test.want, Level())
		})
	}
}

func TestEnabledLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  int
	}{
		{name: "error", level: slog.LevelError, want: LevelError},
		{name: "info", level: slog.LevelInfo, want: LevelInfo},
		{name: "debug", level: slog.LevelDebug, want: LevelDebug},
		{name: "trace", level: slogTrace, want: LevelTrace},
		{name: "none", level: slog.LevelError + 4, want: -1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: test.level})
			assert.Equal(t, test.want, EnabledLevel(h))
		})
	}
}
