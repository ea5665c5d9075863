package history

import (
	"database/sql"
	"time"
)

const runColumns = "id, course_id, course_name, course_url, canonical_id, date_range, status, total, succeeded, failed, canceled, error_message, started_at, finished_at"

// timeLayout sorts lexically in the same order as time.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const downloadColumns = "run_id, course_id, recording_key, filename, lecture_number, recording_date, outcome, path, size_bytes, error_message, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		courseName   sql.NullString
		courseURL    sql.NullString
		canonicalID  sql.NullString
		dateRange    sql.NullString
		status       string
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.CourseID,
		&courseName,
		&courseURL,
		&canonicalID,
		&dateRange,
		&status,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&run.Canceled,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.CourseName = courseName.String
	run.CourseURL = courseURL.String
	run.CanonicalID = canonicalID.String
	run.DateRange = dateRange.String
	run.Status = Status(status)
	run.ErrorMessage = errorMessage.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return &run, nil
}

func scanDownload(scanner interface{ Scan(dest ...any) error }) (*Download, error) {
	var (
		d             Download
		recordingDate sql.NullString
		path          sql.NullString
		errorMessage  sql.NullString
		finishedRaw   string
	)
	if err := scanner.Scan(
		&d.RunID,
		&d.CourseID,
		&d.RecordingKey,
		&d.Filename,
		&d.LectureNumber,
		&recordingDate,
		&d.Outcome,
		&path,
		&d.SizeBytes,
		&errorMessage,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	d.RecordingDate = recordingDate.String
	d.Path = path.String
	d.ErrorMessage = errorMessage.String
	d.FinishedAt = parseTime(finishedRaw)
	return &d, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
