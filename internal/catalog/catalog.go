package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
	"lecturedl/internal/services"
)

// Source fetches the raw recording list for a course.
type Source interface {
	Recordings(ctx context.Context, course *lecture.Course) ([]lecture.Recording, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "catalog")
		}
	}
}

// Catalog produces the canonical chronological recording list.
type Catalog struct {
	source Source
	logger *slog.Logger
}

// New constructs a catalog backed by source.
func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{source: source, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the course's recordings oldest first. Recordings sharing a date
// keep the order the source returned them in.
func (c *Catalog) List(ctx context.Context, course *lecture.Course) ([]lecture.Recording, error) {
	ctx = services.WithStage(ctx, "catalog")
	recordings, err := c.source.Recordings(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("list recordings for %s: %w", course.ID, err)
	}
	sorted := make([]lecture.Recording, len(recordings))
	copy(sorted, recordings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Day().Before(sorted[j].Day())
	})
	logging.WithContext(ctx, c.logger).Info("recordings listed", logging.Int("count", len(sorted)))
	return sorted, nil
}

// FilterByDate keeps recordings inside r, tagging each with its position in
// all. The relative order of all is preserved.
func FilterByDate(all []lecture.Recording, r lecture.DateRange) []lecture.IndexedRecording {
	kept := make([]lecture.IndexedRecording, 0, len(all))
	for i, rec := range all {
		if !r.Contains(rec.Date) {
			continue
		}
		kept = append(kept, lecture.IndexedRecording{Recording: rec, Position: i})
	}
	return kept
}
