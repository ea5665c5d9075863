package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name; nil yields a no-op base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

const defaultErrorHint = "see the log file for details"

// WarnWithContext logs a warning carrying event_type, error_hint, and impact.
// Missing fields receive defaults so every warning reads as cause, impact, and
// next step.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
		String(FieldImpact, "run continues with reduced output"),
	)
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
	)
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

func withDefaults(attrs []Attr, defaults ...Attr) []Attr {
	for _, def := range defaults {
		present := false
		for _, a := range attrs {
			if a.Key == def.Key {
				present = true
				break
			}
		}
		if !present {
			attrs = append(attrs, def)
		}
	}
	return attrs
}
