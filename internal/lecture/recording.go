package lecture

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used in filenames and flags.
const DateLayout = "2006-01-02"

// Recording is a single lecture capture as published by the platform.
type Recording struct {
	Title string
	Date  time.Time
	URL   string
}

// Day returns the recording date truncated to a UTC calendar day.
func (r Recording) Day() time.Time {
	return truncateDay(r.Date)
}

// DateString formats the recording date as YYYY-MM-DD.
func (r Recording) DateString() string {
	return r.Day().Format(DateLayout)
}

// Key returns a stable composite key. Two recordings that share date, title,
// and URL are indistinguishable for naming purposes.
func (r Recording) Key() string {
	return r.DateString() + "|" + r.Title + "|" + r.URL
}

// IndexedRecording pairs a recording with its 0-based position in the full,
// unfiltered chronological list.
type IndexedRecording struct {
	Recording
	Position int
}

// LectureNumber is the 1-based chronological position.
func (r IndexedRecording) LectureNumber() int {
	return r.Position + 1
}

// Label renders "Lecture <n> [<title>]".
func (r IndexedRecording) Label() string {
	return "Lecture " + strconv.Itoa(r.LectureNumber()) + " [" + r.Title + "]"
}

// PlannedDownload is an indexed recording with the sanitized output filename
// (without extension) it will be written to.
type PlannedDownload struct {
	IndexedRecording
	Filename string
}

// ErrInvalidDateRange reports a range whose start falls after its end.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is an inclusive calendar-day interval. A zero bound is open, so
// the zero value matches every date.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// All returns the unbounded range.
func All() DateRange { return DateRange{} }

// NewDateRange truncates both bounds to days and rejects start > end when
// both are set.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = truncateDay(start), truncateDay(end)
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return DateRange{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, start.Format(DateLayout), end.Format(DateLayout))
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses YYYY-MM-DD bounds. An empty bound leaves that side
// of the range open.
func ParseDateRange(start, end string) (DateRange, error) {
	var from, to time.Time
	var err error
	if start != "" {
		if from, err = time.Parse(DateLayout, start); err != nil {
			return DateRange{}, fmt.Errorf("parse start date %q: %w", start, err)
		}
	}
	if end != "" {
		if to, err = time.Parse(DateLayout, end); err != nil {
			return DateRange{}, fmt.Errorf("parse end date %q: %w", end, err)
		}
	}
	return NewDateRange(from, to)
}

// IsZero reports whether the range is unbounded.
func (d DateRange) IsZero() bool {
	return d.Start.IsZero() && d.End.IsZero()
}

// Contains reports whether t falls within the range, inclusive at both ends.
func (d DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !d.Start.IsZero() && day.Before(d.Start) {
		return false
	}
	if !d.End.IsZero() && day.After(d.End) {
		return false
	}
	return true
}

// String renders the range for logs; open bounds render empty.
func (d DateRange) String() string {
	if d.IsZero() {
		return "all"
	}
	return formatBound(d.Start) + ".." + formatBound(d.End)
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
