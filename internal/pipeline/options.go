package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"lecturedl/internal/browser"
	"lecturedl/internal/catalog"
	"lecturedl/internal/credentials"
	"lecturedl/internal/download"
	"lecturedl/internal/history"
	"lecturedl/internal/planner"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDriverFactory replaces the rod browser launcher.
func WithDriverFactory(factory DriverFactory) Option {
	return func(p *Pipeline) {
		if factory != nil {
			p.newDriver = factory
		}
	}
}

// WithSourceFactory replaces the ESS section-data catalog source.
func WithSourceFactory(factory SourceFactory) Option {
	return func(p *Pipeline) {
		if factory != nil {
			p.newSource = factory
		}
	}
}

// WithCredentials sets the provider consulted when a login form appears.
func WithCredentials(provider credentials.Provider) Option {
	return func(p *Pipeline) { p.creds = provider }
}

// WithChooser enables interactive selection.
func WithChooser(chooser planner.Chooser) Option {
	return func(p *Pipeline) { p.chooser = chooser }
}

// WithDownloadOptions forwards options to the download orchestrator.
func WithDownloadOptions(opts ...download.Option) Option {
	return func(p *Pipeline) { p.downloadOpts = append(p.downloadOpts, opts...) }
}

// WithHistory records runs in store and enables skipping recordings that
// were already downloaded.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.history = store }
}

// WithOutput sets where the run banner is written.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.out = w
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// DriverFactory opens the browser used for a run.
type DriverFactory func(ctx context.Context) (browser.Driver, error)

// SourceFactory builds the catalog source for an open browser.
type SourceFactory func(driver browser.Driver) catalog.Source
