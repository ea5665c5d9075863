package services

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	courseIDKey
	stageKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func valueFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithRunID tags ctx with the identifier of the current download run.
func WithRunID(ctx context.Context, id string) context.Context { return withValue(ctx, runIDKey, id) }

// RunIDFromContext returns the run identifier, if any.
func RunIDFromContext(ctx context.Context) (string, bool) { return valueFrom(ctx, runIDKey) }

// WithCourseID tags ctx with the course code being processed.
func WithCourseID(ctx context.Context, id string) context.Context {
	return withValue(ctx, courseIDKey, id)
}

// CourseIDFromContext returns the course code, if any.
func CourseIDFromContext(ctx context.Context) (string, bool) { return valueFrom(ctx, courseIDKey) }

// WithStage tags ctx with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name, if any.
func StageFromContext(ctx context.Context) (string, bool) { return valueFrom(ctx, stageKey) }
