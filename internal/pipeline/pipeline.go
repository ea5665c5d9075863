package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lecturedl/internal/browser"
	"lecturedl/internal/catalog"
	"lecturedl/internal/config"
	"lecturedl/internal/credentials"
	"lecturedl/internal/download"
	"lecturedl/internal/history"
	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
	"lecturedl/internal/planner"
	"lecturedl/internal/services"
	"lecturedl/internal/session"
)

const lockFileSuffix = ".lock"

// ErrCourseLocked reports that another run is writing into the same course
// directory.
var ErrCourseLocked = errors.New("course directory is locked by another run")

// Request describes one run.
type Request struct {
	Course *lecture.Course
	Range  lecture.DateRange
	// OutputDir overrides the configured output directory when set.
	OutputDir string
	// SkipDownloaded drops recordings the history ledger lists as downloaded
	// when their file still exists.
	SkipDownloaded bool
}

// Result summarises a run. Report is nil when the run stopped before the
// download stage.
type Result struct {
	RunID     string
	Session   session.Outcome
	CourseDir string
	Available int
	Skipped   int
	Planned   []lecture.PlannedDownload
	Report    *download.Report
}

// Pipeline wires the session, catalog, planner and download stages.
type Pipeline struct {
	cfg          *config.Config
	logger       *slog.Logger
	newDriver    DriverFactory
	newSource    SourceFactory
	creds        credentials.Provider
	chooser      planner.Chooser
	downloadOpts []download.Option
	history      *history.Store
	out          io.Writer
	now          func() time.Time
}

// New constructs a pipeline from configuration.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "config required", nil)
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewNop(),
		out:    io.Discard,
		now:    time.Now,
	}
	p.newDriver = func(ctx context.Context) (browser.Driver, error) {
		return browser.NewRod(ctx, browser.Options{
			Headless:  cfg.Browser.Headless,
			Binary:    cfg.Browser.Binary,
			UserAgent: cfg.Browser.UserAgent,
			Timeout:   cfg.BrowserTimeout(),
			Logger:    p.logger,
		})
	}
	p.newSource = func(driver browser.Driver) catalog.Source {
		return catalog.NewSectionSource(driver)
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p, nil
}

// Run executes every stage for req.Course. The returned Result is non-nil
// whenever a run id was assigned, even on error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Course == nil || strings.TrimSpace(req.Course.URL) == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", "course url required", nil)
	}
	course := req.Course
	result := &Result{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, result.RunID)
	ctx = services.WithCourseID(ctx, course.ID)
	logger := logging.WithContext(ctx, p.logger)

	run := history.Run{
		ID:          result.RunID,
		CourseID:    course.ID,
		CourseName:  course.Name,
		CourseURL:   course.URL,
		CanonicalID: course.CanonicalID(),
		DateRange:   req.Range.String(),
		StartedAt:   p.now(),
	}
	recorded := p.beginHistory(ctx, logger, run)

	report, err := p.execute(ctx, logger, req, result)
	result.Report = report

	if recorded {
		p.finishHistory(ctx, logger, run, course, result, err)
	}
	return result, err
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, req Request, result *Result) (*download.Report, error) {
	course := req.Course

	driver, err := p.newDriver(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "pipeline", "launch browser", "", err)
	}
	closed := false
	closeDriver := func() {
		if closed {
			return
		}
		closed = true
		if cerr := driver.Close(); cerr != nil {
			logger.Debug("browser close failed", logging.Error(cerr))
		}
	}
	defer closeDriver()

	outcome, err := session.New(driver, p.creds, p.logger).Establish(ctx, course)
	result.Session = outcome
	if err != nil {
		return nil, err
	}

	recordings, err := catalog.New(p.newSource(driver), catalog.WithLogger(p.logger)).List(ctx, course)
	if err != nil {
		return nil, err
	}
	closeDriver()

	filtered := catalog.FilterByDate(recordings, req.Range)
	result.Available = len(filtered)
	logger.Info("recordings listed",
		logging.Int("total", len(recordings)),
		logging.Int("in_range", len(filtered)),
		logging.String("range", req.Range.String()),
	)

	outputDir, err := p.outputDir(req)
	if err != nil {
		return nil, err
	}
	result.CourseDir = filepath.Join(outputDir, planner.CourseDirName(course))

	planned := planner.Plan(course, filtered)
	if req.SkipDownloaded {
		planned, result.Skipped = p.skipDownloaded(ctx, logger, course, planned)
	}
	planned, err = planner.Select(ctx, planned, p.chooser)
	if err != nil {
		return nil, err
	}
	result.Planned = planned

	fmt.Fprintf(p.out, "Total videos to download: %d out of %d\n", len(planned), len(recordings))
	if len(planned) == 0 {
		return &download.Report{Course: course.Label(), OutputDir: result.CourseDir}, nil
	}

	unlock, err := p.lockCourse(result.CourseDir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	opts := append([]download.Option{download.WithLogger(p.logger)}, p.downloadOpts...)
	orchestrator, err := download.New(download.SettingsFromConfig(p.cfg), opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init downloader", "", err)
	}
	return orchestrator.DownloadAll(ctx, course, planned, result.CourseDir)
}

func (p *Pipeline) outputDir(req Request) (string, error) {
	dir := strings.TrimSpace(req.OutputDir)
	if dir == "" {
		dir = p.cfg.Paths.OutputDir
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "resolve output dir", dir, err)
	}
	return expanded, nil
}

// lockCourse takes an exclusive lock keyed by the course directory. Lock
// files live under the state dir so output directories stay clean.
func (p *Pipeline) lockCourse(courseDir string) (func(), error) {
	lockDir := filepath.Join(p.cfg.Paths.StateDir, "locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(filepath.Join(lockDir, filepath.Base(courseDir)+lockFileSuffix))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire course lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseLocked, courseDir)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release course lock", logging.Error(err))
		}
	}, nil
}

func (p *Pipeline) skipDownloaded(ctx context.Context, logger *slog.Logger, course *lecture.Course, planned []lecture.PlannedDownload) ([]lecture.PlannedDownload, int) {
	if p.history == nil {
		return planned, 0
	}
	completed, err := p.history.Completed(ctx, course.ID)
	if err != nil {
		logging.WarnWithContext(logger, "history lookup failed; downloading everything", "history_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "already-downloaded recordings are fetched again"),
		)
		return planned, 0
	}
	kept := planned[:0:0]
	skipped := 0
	for _, pd := range planned {
		path, ok := completed[pd.Key()]
		if ok && fileExists(path) {
			skipped++
			logger.Debug("skipping downloaded recording",
				logging.String("filename", pd.Filename),
				logging.String("path", path),
			)
			continue
		}
		kept = append(kept, pd)
	}
	if skipped > 0 {
		logger.Info("skipped previously downloaded recordings", logging.Int("skipped", skipped))
	}
	return kept, skipped
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
