package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"lecturedl/internal/config"
	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
	"lecturedl/internal/services"
)

// Settings controls how the downloader is invoked.
type Settings struct {
	Binary            string
	ResumeFlag        string
	Extension         string
	PlaypathDelimiter string
	// MaxConcurrent caps running downloads; 0 means unbounded.
	MaxConcurrent int
	FailFast      bool
}

// SettingsFromConfig maps the [download] config section.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Binary:            cfg.Download.Binary,
		ResumeFlag:        cfg.Download.ResumeFlag,
		Extension:         cfg.Download.Extension,
		PlaypathDelimiter: cfg.Download.PlaypathDelimiter,
		MaxConcurrent:     cfg.Download.MaxConcurrent,
		FailFast:          cfg.Download.FailFast,
	}
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithRunner injects a custom process runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logging.NewComponentLogger(logger, "download")
		}
	}
}

// WithProgress renders per-task progress.
func WithProgress(p Progress) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.progress = p
		}
	}
}

// Orchestrator spawns and tracks downloads.
type Orchestrator struct {
	settings Settings
	runner   Runner
	logger   *slog.Logger
	progress Progress
}

// New constructs an orchestrator.
func New(settings Settings, opts ...Option) (*Orchestrator, error) {
	settings.Binary = strings.TrimSpace(settings.Binary)
	if settings.Binary == "" {
		return nil, errors.New("download binary required")
	}
	if settings.MaxConcurrent < 0 {
		return nil, fmt.Errorf("max concurrent must be >= 0, got %d", settings.MaxConcurrent)
	}
	if settings.PlaypathDelimiter == "" {
		settings.PlaypathDelimiter = DefaultPlaypathDelimiter
	}
	o := &Orchestrator{
		settings: settings,
		runner:   execRunner{},
		logger:   logging.NewNop(),
		progress: nopProgress{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// DownloadAll downloads planned into outputDir. Tasks start in the order
// given and are reported in the order they finish. The Report is always
// non-nil; the error wraps ErrPartialFailure when any task failed or was
// canceled.
func (o *Orchestrator) DownloadAll(ctx context.Context, course *lecture.Course, planned []lecture.PlannedDownload, outputDir string) (*Report, error) {
	started := time.Now()
	ctx = services.WithStage(ctx, "download")
	logger := logging.WithContext(ctx, o.logger)
	report := &Report{OutputDir: outputDir}
	if course != nil {
		report.Course = course.Label()
	}
	if len(planned) == 0 {
		return report, nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "download", "prepare output", outputDir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := int64(o.settings.MaxConcurrent)
	if limit <= 0 {
		limit = int64(len(planned))
	}
	sem := semaphore.NewWeighted(limit)
	results := make(chan Task, len(planned))

	pending := 0
	for i, p := range planned {
		playpath, err := PlaybackPath(p.URL, o.settings.PlaypathDelimiter)
		if err != nil {
			results <- Task{Download: p, Outcome: OutcomeFailed, Err: &TaskError{Filename: p.Filename, Reason: "no playback path", Err: err}}
			pending++
			if o.settings.FailFast {
				cancel()
			}
			continue
		}
		if err := sem.Acquire(runCtx, 1); err != nil {
			for _, rest := range planned[i:] {
				report.add(canceledTask(runCtx, rest))
			}
			break
		}
		if runCtx.Err() != nil {
			sem.Release(1)
			for _, rest := range planned[i:] {
				report.add(canceledTask(runCtx, rest))
			}
			break
		}
		pending++
		go func(p lecture.PlannedDownload, playpath string) {
			defer sem.Release(1)
			task := o.run(runCtx, logger, p, playpath, outputDir)
			if task.Outcome == OutcomeFailed && o.settings.FailFast {
				cancel()
			}
			results <- task
		}(p, playpath)
	}

	for ; pending > 0; pending-- {
		task := <-results
		report.add(task)
	}
	o.progress.Wait()
	report.Elapsed = time.Since(started)

	logger.Info("downloads finished",
		logging.Int("succeeded", len(report.Succeeded)),
		logging.Int("failed", len(report.Failed)),
		logging.Int("canceled", len(report.Canceled)),
		logging.Duration("elapsed", report.Elapsed.Round(time.Millisecond)),
	)

	if report.OK() {
		return report, nil
	}
	err := fmt.Errorf("%w: %d failed, %d canceled of %d", ErrPartialFailure, len(report.Failed), len(report.Canceled), report.Total())
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", err, ctxErr)
	}
	return report, err
}

func canceledTask(ctx context.Context, p lecture.PlannedDownload) Task {
	return Task{
		Download: p,
		Outcome:  OutcomeCanceled,
		Err:      &TaskError{Filename: p.Filename, Reason: "canceled before start", Err: context.Cause(ctx)},
	}
}

func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, p lecture.PlannedDownload, playpath, outputDir string) Task {
	task := Task{Download: p, Outcome: OutcomeRunning}
	task.Path = OutputPath(outputDir, p.Filename, o.settings.Extension)
	args := BuildArgs(o.settings.ResumeFlag, p.URL, playpath, task.Path)
	taskLogger := logger.With(logging.String("filename", p.Filename), logging.Int("lecture", p.LectureNumber()))

	tracker := o.progress.Track(p.Filename)
	start := time.Now()
	proc, err := o.runner.Start(ctx, o.settings.Binary, args, func(line string) {
		if pct, ok := parsePercent(line); ok {
			tracker.Update(pct)
			return
		}
		taskLogger.Debug("downloader output", logging.String("line", line))
	})
	if err != nil {
		tracker.Finish(false)
		task.Outcome = OutcomeFailed
		task.Err = &TaskError{Filename: p.Filename, Reason: "start failed", Err: services.Wrap(services.ErrExternalTool, "download", "start", o.settings.Binary, err)}
		logging.ErrorWithContext(taskLogger, "download could not start", "download_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the downloader binary (lecturedl doctor)"),
		)
		return task
	}
	taskLogger.Info("download started", logging.Int("pid", proc.Pid()))

	waitErr := proc.Wait()
	task.Duration = time.Since(start)
	task.Outcome, task.Err = classify(ctx, p.Filename, waitErr)
	if task.Outcome == OutcomeSucceeded {
		info, statErr := os.Stat(task.Path)
		if statErr != nil {
			task.Outcome = OutcomeFailed
			task.Err = &TaskError{Filename: p.Filename, Reason: "no output file", Err: statErr}
		} else {
			task.Size = info.Size()
		}
	}
	tracker.Finish(task.Outcome == OutcomeSucceeded)

	switch task.Outcome {
	case OutcomeSucceeded:
		taskLogger.Info("download finished",
			logging.Int64("bytes", task.Size),
			logging.Duration("duration", task.Duration.Round(time.Millisecond)),
		)
	case OutcomeCanceled:
		taskLogger.Warn("download canceled",
			logging.String(logging.FieldEventType, "download_canceled"),
			logging.String(logging.FieldErrorHint, "rerun to resume the partial file"),
			logging.String(logging.FieldImpact, "recording not downloaded"),
		)
	default:
		logging.ErrorWithContext(taskLogger, "download failed", "download_failed", logging.Error(task.Err))
	}
	return task
}

type exitCoder interface {
	ExitCode() int
}

func classify(ctx context.Context, filename string, err error) (Outcome, error) {
	if err == nil {
		return OutcomeSucceeded, nil
	}
	if ctx.Err() != nil {
		return OutcomeCanceled, &TaskError{Filename: filename, Reason: "canceled", Err: context.Cause(ctx)}
	}
	var coder exitCoder
	if errors.As(err, &coder) && coder.ExitCode() >= 0 {
		return OutcomeFailed, &TaskError{Filename: filename, Reason: fmt.Sprintf("exit status %d", coder.ExitCode()), Err: err}
	}
	return OutcomeFailed, &TaskError{Filename: filename, Reason: err.Error(), Err: err}
}
