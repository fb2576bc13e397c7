// Package logger is a thin process-wide wrapper around log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	KeyRequestID = "request_id"
	KeyUserID    = "user_id"
)

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
)

// Init switches the process logger to the given level and format ("text" or "json").
func Init(lvl, format string) {
	InitWithWriter(os.Stdout, lvl, format)
}

// InitWithWriter is Init with a custom destination, used by tests.
func InitWithWriter(w io.Writer, lvl, format string) {
	level.Set(parseLevel(lvl))
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	slogger = slog.New(h)
	mu.Unlock()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Logger exposes the underlying slog logger, e.g. for libraries that accept one.
func Logger() *slog.Logger {
	return get()
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// DebugCtx logs at debug level with request fields taken from ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	get().DebugContext(ctx, msg, withContextFields(ctx, args)...)
}

// InfoCtx logs at info level with request fields taken from ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	get().InfoContext(ctx, msg, withContextFields(ctx, args)...)
}

// WarnCtx logs at warn level with request fields taken from ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	get().WarnContext(ctx, msg, withContextFields(ctx, args)...)
}

// ErrorCtx logs at error level with request fields taken from ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	get().ErrorContext(ctx, msg, withContextFields(ctx, args)...)
}

type userKey struct{}

// WithUserID records the authenticated user id for later log lines on ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func withContextFields(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	fields := make([]any, 0, 4+len(args))
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		fields = append(fields, KeyRequestID, reqID)
	}
	if id, ok := ctx.Value(userKey{}).(int64); ok {
		fields = append(fields, KeyUserID, id)
	}
	return append(fields, args...)
}
