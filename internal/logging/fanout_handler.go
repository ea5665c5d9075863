package logging

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler sends every record to the console and the journal. A failing
// sink does not stop the others.
type fanoutHandler []slog.Handler

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	var sinks fanoutHandler
	for _, h := range handlers {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	switch len(sinks) {
	case 0:
		return slog.DiscardHandler
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range h {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, sink := range h {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		if err := sink.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(sink slog.Handler) slog.Handler { return sink.WithAttrs(attrs) })
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	return h.each(func(sink slog.Handler) slog.Handler { return sink.WithGroup(name) })
}

func (h fanoutHandler) each(fn func(slog.Handler) slog.Handler) fanoutHandler {
	next := make(fanoutHandler, len(h))
	for i, sink := range h {
		next[i] = fn(sink)
	}
	return next
}

// TeeHandler duplicates log output to multiple handlers.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	return newFanoutHandler(handlers...)
}
