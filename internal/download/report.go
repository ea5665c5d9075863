package download

import (
	"errors"
	"fmt"
	"time"

	"lecturedl/internal/lecture"
)

// ErrPartialFailure is returned by DownloadAll when at least one task did
// not succeed. The accompanying Report lists what happened to each task.
var ErrPartialFailure = errors.New("some downloads did not complete")

// Outcome is the lifecycle state of a download task.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeRunning
	OutcomeSucceeded
	OutcomeFailed
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeRunning:
		return "running"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TaskError describes why one download did not succeed.
type TaskError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("download %s: %s", e.Filename, e.Reason)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Task is a planned download bound to its outcome.
type Task struct {
	Download lecture.PlannedDownload
	Outcome  Outcome
	Path     string
	Size     int64
	Duration time.Duration
	Err      error
}

// Report summarises a DownloadAll call. Succeeded is in finish order.
type Report struct {
	Course    string
	OutputDir string
	Succeeded []Task
	Failed    []Task
	Canceled  []Task
	Elapsed   time.Duration
}

// Total is the number of tasks the report covers.
func (r *Report) Total() int {
	return len(r.Succeeded) + len(r.Failed) + len(r.Canceled)
}

// SucceededFilenames lists downloaded filenames in finish order.
func (r *Report) SucceededFilenames() []string {
	names := make([]string, len(r.Succeeded))
	for i, t := range r.Succeeded {
		names[i] = t.Download.Filename
	}
	return names
}

// OK reports whether every task succeeded.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Canceled) == 0
}

func (r *Report) add(t Task) {
	switch t.Outcome {
	case OutcomeSucceeded:
		r.Succeeded = append(r.Succeeded, t)
	case OutcomeCanceled:
		r.Canceled = append(r.Canceled, t)
	default:
		r.Failed = append(r.Failed, t)
	}
}
