// Package logger contains slog helpers.
package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// ContextAttrs extracts log attributes carried by a context.
type ContextAttrs func(ctx context.Context) []slog.Attr

// TraceAttrs returns trace_id and span_id of the span active in ctx.
func TraceAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}

// RequestIDAttrs returns the request_id stored by the HTTP middleware.
func RequestIDAttrs(ctx context.Context) []slog.Attr {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return []slog.Attr{slog.String("request_id", reqID)}
	}
	return nil
}

// ContextHandler is a slog.Handler that appends attributes found in the record's context.
type ContextHandler struct {
	slog.Handler
	extractors []ContextAttrs
}

// NewContextHandler wraps handler. Without extractors it adds trace and request ids.
func NewContextHandler(handler slog.Handler, extractors ...ContextAttrs) *ContextHandler {
	if len(extractors) == 0 {
		extractors = []ContextAttrs{TraceAttrs, RequestIDAttrs}
	}
	return &ContextHandler{Handler: handler, extractors: extractors}
}

// Handle adds the attributes carried by ctx and passes the record on.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		for _, extract := range h.extractors {
			r.AddAttrs(extract(ctx)...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes added.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

// WithGroup returns a new ContextHandler with the given group added.
func (h *ContextHandler) WithGroup(group string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(group), extractors: h.extractors}
}
