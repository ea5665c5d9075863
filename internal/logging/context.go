package logging

import (
	"context"
	"log/slog"

	"lecturedl/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID correlates every line emitted by one download run.
	FieldRunID = "run_id"
	// FieldCourseID is the course code the run targets.
	FieldCourseID = "course_id"
	// FieldStage names the pipeline stage (session, catalog, plan, download).
	FieldStage = "stage"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if course, ok := services.CourseIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCourseID, course))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
