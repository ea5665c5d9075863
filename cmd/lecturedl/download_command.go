package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lecturedl/internal/credentials"
	"lecturedl/internal/download"
	"lecturedl/internal/history"
	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
	"lecturedl/internal/pipeline"
	"lecturedl/internal/planner"
	"lecturedl/internal/services"
	"lecturedl/internal/session"
)

type downloadFlags struct {
	courseID       string
	courseName     string
	canonicalID    string
	startDate      string
	endDate        string
	outputDir      string
	username       string
	interactive    bool
	maxConcurrent  int
	failFast       bool
	noProgress     bool
	skipDownloaded bool
	noHistory      bool
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:   "download <course-url>",
		Short: "Download a course's recordings",
		Long: `Open the course page, sign in when asked, and download every recording in
the date range (all recordings by default), newest first.

Files are written to <output_dir>/<id> - <name>/ and named
"<id> - <date> - Lecture <n> [<title>].flv".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			course, dateRange, err := flags.request(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-concurrent") {
				cfg.Download.MaxConcurrent = flags.maxConcurrent
			}
			if flags.failFast {
				cfg.Download.FailFast = true
			}
			if flags.username != "" {
				cfg.Auth.Username = flags.username
			}

			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithOutput(cmd.OutOrStdout()),
				pipeline.WithCredentials(credentials.FromConfig(cfg, credentials.NewPrompt())),
			}
			if flags.interactive {
				opts = append(opts, pipeline.WithChooser(planner.NewTerminalChooser(cmd.InOrStdin(), cmd.OutOrStdout())))
			}
			if cfg.Download.Progress && !flags.noProgress && shouldColorize(cmd.ErrOrStderr()) {
				opts = append(opts, pipeline.WithDownloadOptions(download.WithProgress(download.NewBarProgress(cmd.ErrOrStderr()))))
			}
			if !flags.noHistory {
				store, err := history.Open(cfg)
				if err != nil {
					logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "this run is not recorded; --skip-downloaded has no effect"),
					)
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithHistory(store))
				}
			}

			p, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}
			result, runErr := p.Run(cmd.Context(), pipeline.Request{
				Course:         course,
				Range:          dateRange,
				OutputDir:      flags.outputDir,
				SkipDownloaded: flags.skipDownloaded,
			})
			if result != nil && result.Report != nil {
				printReport(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
			}
			return runErr
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.courseID, "id", "", "Course identifier used in file names (required)")
	fs.StringVar(&flags.courseName, "name", "", "Course name used in the output directory")
	fs.StringVar(&flags.canonicalID, "section-id", "", "Platform section uuid when already known")
	fs.StringVar(&flags.startDate, "start", "", "First recording date to include (YYYY-MM-DD)")
	fs.StringVar(&flags.endDate, "end", "", "Last recording date to include (YYYY-MM-DD)")
	fs.StringVarP(&flags.outputDir, "output", "o", "", "Override paths.output_dir")
	fs.StringVarP(&flags.username, "username", "u", "", "Override auth.username")
	fs.BoolVarP(&flags.interactive, "interactive", "i", false, "Pick recordings from a numbered list")
	fs.IntVarP(&flags.maxConcurrent, "max-concurrent", "j", 0, "Override download.max_concurrent (0 = unlimited)")
	fs.BoolVar(&flags.failFast, "fail-fast", false, "Cancel remaining downloads after the first failure")
	fs.BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars")
	fs.BoolVar(&flags.skipDownloaded, "skip-downloaded", false, "Skip recordings a previous run already downloaded")
	fs.BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history database")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// request validates the flags and builds the course and date range.
func (f downloadFlags) request(courseURL string) (*lecture.Course, lecture.DateRange, error) {
	courseURL = strings.TrimSpace(courseURL)
	if !strings.HasPrefix(courseURL, "http://") && !strings.HasPrefix(courseURL, "https://") {
		return nil, lecture.DateRange{}, services.Wrap(services.ErrValidation, "cli", "download", fmt.Sprintf("course url %q must start with http:// or https://", courseURL), nil)
	}
	id := strings.TrimSpace(f.courseID)
	if id == "" {
		return nil, lecture.DateRange{}, services.Wrap(services.ErrValidation, "cli", "download", "--id is required", nil)
	}
	var dateRange lecture.DateRange
	if f.startDate != "" || f.endDate != "" {
		r, err := lecture.ParseDateRange(f.startDate, f.endDate)
		if err != nil {
			return nil, lecture.DateRange{}, services.Wrap(services.ErrValidation, "cli", "download", "date range", err)
		}
		dateRange = r
	}
	canonicalID := strings.TrimSpace(f.canonicalID)
	if canonicalID == "" {
		canonicalID, _ = session.SectionIDFromURL(courseURL)
	}
	return lecture.NewCourse(id, strings.TrimSpace(f.courseName), courseURL, canonicalID), dateRange, nil
}

func printReport(w io.Writer, result *pipeline.Result, colorize bool) {
	report := result.Report
	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Download report", colorize) {
		fmt.Fprintln(w, line)
	}
	if tasks := reportTasks(report); len(tasks) > 0 {
		fmt.Fprintln(w, renderReportTable(tasks))
	}
	fmt.Fprintln(w, renderStatusLine("Course", statusInfo, report.Course, colorize))
	fmt.Fprintln(w, renderStatusLine("Output", statusInfo, report.OutputDir, colorize))
	if result.Skipped > 0 {
		fmt.Fprintln(w, renderStatusLine("Skipped", statusInfo, fmt.Sprintf("%d already downloaded", result.Skipped), colorize))
	}
	summary := fmt.Sprintf("%d of %d downloaded in %s", len(report.Succeeded), report.Total(), report.Elapsed.Round(time.Second))
	kind := statusOK
	switch {
	case report.Total() == 0:
		kind = statusInfo
		summary = "nothing to download"
	case len(report.Succeeded) == 0:
		kind = statusError
	case !report.OK():
		kind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Summary", kind, summary, colorize))
}

func reportTasks(report *download.Report) []download.Task {
	tasks := make([]download.Task, 0, report.Total())
	tasks = append(tasks, report.Succeeded...)
	tasks = append(tasks, report.Failed...)
	tasks = append(tasks, report.Canceled...)
	return tasks
}

func taskReason(task download.Task) string {
	if task.Err == nil {
		return ""
	}
	var taskErr *download.TaskError
	if errors.As(task.Err, &taskErr) {
		return taskErr.Reason
	}
	return task.Err.Error()
}

