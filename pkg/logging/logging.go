// Package logging configures the process-wide slog logger: text or JSON
// handlers, context-carried attributes, and rotating file sinks.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger builds a slog.Logger writing to w at the given level, optionally
// as JSON. Attributes attached to the context via AppendCtx are added to
// every record.
func Logger(w io.Writer, jsonFormat bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if jsonFormat {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(ctxHandler{h})
}

// Rotating returns a size-rotated log file writer.
func Rotating(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

type ctxAttrsKey struct{}

// AppendCtx attaches slog attributes to the context; handlers built by
// Logger emit them with every record logged through that context.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	if existing, ok := parent.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		attrs = append(existing[:len(existing):len(existing)], attrs...)
	}
	return context.WithValue(parent, ctxAttrsKey{}, attrs)
}

// ctxHandler folds context-carried attributes into each record.
type ctxHandler struct {
	slog.Handler
}

func (h ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h ctxHandler) WithGroup(name string) slog.Handler {
	return ctxHandler{h.Handler.WithGroup(name)}
}
