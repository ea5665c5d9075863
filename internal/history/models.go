package history

import "time"

// Status is the terminal state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// Run is one invocation of the download pipeline for a course.
type Run struct {
	ID           string
	CourseID     string
	CourseName   string
	CourseURL    string
	CanonicalID  string
	DateRange    string
	Status       Status
	Total        int
	Succeeded    int
	Failed       int
	Canceled     int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration is the wall-clock time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Download is the recorded outcome of one recording within a run.
type Download struct {
	RunID         string
	CourseID      string
	RecordingKey  string
	Filename      string
	LectureNumber int
	RecordingDate string
	Outcome       string
	Path          string
	SizeBytes     int64
	ErrorMessage  string
	FinishedAt    time.Time
}
