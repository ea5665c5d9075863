package pipeline

import (
	"context"
	"log/slog"

	"lecturedl/internal/download"
	"lecturedl/internal/history"
	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
)

func (p *Pipeline) beginHistory(ctx context.Context, logger *slog.Logger, run history.Run) bool {
	if p.history == nil {
		return false
	}
	if err := p.history.BeginRun(ctx, run); err != nil {
		logging.WarnWithContext(logger, "history unavailable; run will not be recorded", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from lecturedl history"),
		)
		return false
	}
	return true
}

// finishHistory stores the outcome even when ctx was canceled mid-run.
func (p *Pipeline) finishHistory(ctx context.Context, logger *slog.Logger, run history.Run, course *lecture.Course, result *Result, runErr error) {
	run.CanonicalID = course.CanonicalID()
	run.FinishedAt = p.now()
	run.Status = runStatus(result.Report, runErr)
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}

	var downloads []history.Download
	if report := result.Report; report != nil {
		run.Total = report.Total()
		run.Succeeded = len(report.Succeeded)
		run.Failed = len(report.Failed)
		run.Canceled = len(report.Canceled)
		for _, group := range [][]download.Task{report.Succeeded, report.Failed, report.Canceled} {
			for _, task := range group {
				downloads = append(downloads, historyDownload(course, task, run))
			}
		}
	}

	if err := p.history.FinishRun(context.WithoutCancel(ctx), run, downloads); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome is missing from lecturedl history"),
		)
	}
}

func runStatus(report *download.Report, runErr error) history.Status {
	switch {
	case report == nil:
		if runErr != nil {
			return history.StatusFailed
		}
		return history.StatusSucceeded
	case report.OK() && runErr == nil:
		return history.StatusSucceeded
	case len(report.Succeeded) > 0:
		return history.StatusPartial
	default:
		return history.StatusFailed
	}
}

func historyDownload(course *lecture.Course, task download.Task, run history.Run) history.Download {
	d := history.Download{
		CourseID:      course.ID,
		RecordingKey:  task.Download.Key(),
		Filename:      task.Download.Filename,
		LectureNumber: task.Download.LectureNumber(),
		RecordingDate: task.Download.DateString(),
		Outcome:       task.Outcome.String(),
		Path:          task.Path,
		SizeBytes:     task.Size,
		FinishedAt:    run.FinishedAt,
	}
	if task.Err != nil {
		d.ErrorMessage = task.Err.Error()
	}
	return d
}
