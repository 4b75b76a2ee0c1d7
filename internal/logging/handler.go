package logging

import (
	"context"
	"log/slog"
)

// categoryHandler filters debug records by category
type categoryHandler struct {
	category string
	next     slog.Handler
}

func (h *categoryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level <= slog.LevelDebug && !Enabled(h.category) {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *categoryHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *categoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &categoryHandler{category: h.category, next: h.next.WithAttrs(attrs)}
}

func (h *categoryHandler) WithGroup(name string) slog.Handler {
	return &categoryHandler{category: h.category, next: h.next.WithGroup(name)}
}
