// Package logging builds the service slog.Logger and carries the request ID through contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom extracts the request ID, or "" if none.
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// contextHandler adds the request_id attribute from the context.
// The attribute belongs at the top level of the record, so the handler keeps
// the root and replays WithAttrs/WithGroup calls on top of it.
type contextHandler struct {
	handler slog.Handler
	root    slog.Handler
	ops     []func(slog.Handler) slog.Handler
}

func newContextHandler(root slog.Handler) *contextHandler {
	return &contextHandler{handler: root, root: root}
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	id := RequestIDFrom(ctx)
	if id == "" {
		return h.handler.Handle(ctx, r)
	}

	handler := h.root.WithAttrs([]slog.Attr{slog.String("request_id", id)})
	for _, op := range h.ops {
		handler = op(handler)
	}
	return handler.Handle(ctx, r)
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *contextHandler) with(op func(slog.Handler) slog.Handler) *contextHandler {
	return &contextHandler{
		handler: op(h.handler),
		root:    h.root,
		ops:     append(slices.Clip(h.ops), op),
	}
}

// ParseLevel maps debug/info/warn/error to a slog.Level; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var base slog.Handler
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	base = base.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("version", version),
	})

	return slog.New(newContextHandler(base))
}
