// Package log is the leveled logger used by the quantizers. Messages are
// printf style and are routed to a slog.Handler, which discards everything
// until SetOutput or SetHandler is called.
package log

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/exp/slog"
)

const (
	LevelError int = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// slogTrace is the slog level used for trace messages. slog has no trace
// level of its own
const slogTrace = slog.LevelDebug - 4

var (
	level  atomic.Int32
	logger atomic.Pointer[slog.Logger]
)

func init() {
	level.Store(int32(LevelError))
	logger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// LevelError = 0
// LevelWarn = 1
// LevelInfo  = 2
// LevelDebug  = 3
// LevelTrace = 4
func SetLevel(l int) {
	level.Store(int32(l))
}

// Level returns the current level
func Level() int {
	return int(level.Load())
}

// RaiseLevel sets the level to l unless the current level is already more
// verbose
func RaiseLevel(l int) {
	for {
		cur := level.Load()
		if int32(l) <= cur || level.CompareAndSwap(cur, int32(l)) {
			return
		}
	}
}

// EnabledLevel returns the most verbose level h accepts, or -1 if it
// accepts none
func EnabledLevel(h slog.Handler) int {
	ctx := context.Background()
	for l := LevelTrace; l >= LevelError; l-- {
		if h.Enabled(ctx, toSlog(l)) {
			return l
		}
	}
	return -1
}

// SetOutput writes human readable logs to w using a tint handler
func SetOutput(w io.Writer) {
	SetHandler(tint.NewHandler(w, &tint.Options{
		Level:      slogTrace,
		TimeFormat: "15:04:05.000",
		NoColor:    true,
	}))
}

// SetHandler routes all log messages to h. A nil handler discards them
func SetHandler(h slog.Handler) {
	if h == nil {
		h = slog.NewTextHandler(io.Discard, nil)
	}
	logger.Store(slog.New(h))
}

// Handler returns the handler currently receiving log messages
func Handler() slog.Handler {
	return logger.Load().Handler()
}

func toSlog(l int) slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slogTrace
	}
}

func output(l int, format string, args ...any) {
	if int(level.Load()) < l {
		return
	}
	lg := logger.Load()
	sl := toSlog(l)
	ctx := context.Background()
	if !lg.Enabled(ctx, sl) {
		return
	}
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	r := slog.NewRecord(time.Now(), sl, message, 0)
	_ = lg.Handler().Handle(ctx, r)
}

func Trace(format string, args ...any) {
	output(LevelTrace, format, args...)
}

func Debug(format string, args ...any) {
	output(LevelDebug, format, args...)
}

func Info(format string, args ...any) {
	output(LevelInfo, format, args...)
}

func Warn(format string, args ...any) {
	output(LevelWarn, format, args...)
}

func Error(format string, args ...any) {
	output(LevelError, format, args...)
}
