package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"lecturedl/internal/lecture"
	"lecturedl/internal/textutil"
)

// ErrNoSelection is returned when a chooser yields fewer than the required
// number of valid choices.
var ErrNoSelection = errors.New("no recordings selected")

// Chooser presents labels and returns the chosen 0-based indices.
type Chooser interface {
	Choose(ctx context.Context, labels []string, minCount int) ([]int, error)
}

// FileName renders "<course id> - <date> - Lecture <n> [<title>]" with unsafe
// characters replaced.
func FileName(course *lecture.Course, rec lecture.IndexedRecording) string {
	return textutil.SanitizeFileName(fmt.Sprintf("%s - %s - %s", course.ID, rec.DateString(), rec.Label()))
}

// CourseDirName renders the per-course output directory name.
func CourseDirName(course *lecture.Course) string {
	return textutil.SanitizePathSegment(course.ID+" - "+course.Name, textutil.SanitizePathSegment(course.ID, "course"))
}

// Plan builds one download per filtered recording, newest first. Names from
// FilterByDate output are already distinct through their lecture numbers;
// recordings passed in with a repeated position get " (2)", " (3)", ...
// suffixes, assigned oldest first.
func Plan(course *lecture.Course, filtered []lecture.IndexedRecording) []lecture.PlannedDownload {
	planned := make([]lecture.PlannedDownload, len(filtered))
	seen := make(map[string]int, len(filtered))
	for i, rec := range filtered {
		name := FileName(course, rec)
		key := strings.ToLower(name)
		seen[key]++
		if n := seen[key]; n > 1 {
			name = uniqueName(name, n, seen)
		}
		planned[i] = lecture.PlannedDownload{IndexedRecording: rec, Filename: name}
	}
	for i, j := 0, len(planned)-1; i < j; i, j = i+1, j-1 {
		planned[i], planned[j] = planned[j], planned[i]
	}
	return planned
}

func uniqueName(base string, n int, seen map[string]int) string {
	for {
		candidate := base + " (" + strconv.Itoa(n) + ")"
		key := strings.ToLower(candidate)
		if seen[key] == 0 {
			seen[key] = 1
			return candidate
		}
		n++
	}
}

// Labels returns the filenames of planned in order.
func Labels(planned []lecture.PlannedDownload) []string {
	labels := make([]string, len(planned))
	for i, p := range planned {
		labels[i] = p.Filename
	}
	return labels
}

// Select narrows planned to the entries chooser picks, keeping their
// relative order. A nil chooser selects everything.
func Select(ctx context.Context, planned []lecture.PlannedDownload, chooser Chooser) ([]lecture.PlannedDownload, error) {
	if chooser == nil || len(planned) == 0 {
		return planned, nil
	}
	indices, err := chooser.Choose(ctx, Labels(planned), 1)
	if err != nil {
		return nil, fmt.Errorf("choose recordings: %w", err)
	}
	unique := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(planned) {
			return nil, fmt.Errorf("choose recordings: index %d out of range", idx)
		}
		unique[idx] = struct{}{}
	}
	if len(unique) == 0 {
		return nil, ErrNoSelection
	}
	ordered := make([]int, 0, len(unique))
	for idx := range unique {
		ordered = append(ordered, idx)
	}
	sort.Ints(ordered)
	selected := make([]lecture.PlannedDownload, len(ordered))
	for i, idx := range ordered {
		selected[i] = planned[idx]
	}
	return selected, nil
}
