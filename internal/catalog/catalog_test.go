package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lecturedl/internal/catalog"
	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
)

type stubSource struct {
	recordings []lecture.Recording
	err        error
}

func (s stubSource) Recordings(context.Context, *lecture.Course) ([]lecture.Recording, error) {
	return s.recordings, s.err
}

func day(value string) time.Time {
	t, err := time.Parse(lecture.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(title, date string) lecture.Recording {
	return lecture.Recording{Title: title, Date: day(date), URL: "rtmp://media/_definst_/" + title}
}

func TestListSortsChronologicallyAndStably(t *testing.T) {
	src := stubSource{recordings: []lecture.Recording{
		rec("c", "2021-01-24"),
		rec("a1", "2021-01-10"),
		rec("a2", "2021-01-10"),
		rec("b", "2021-01-17"),
	}}
	got, err := catalog.New(src, catalog.WithLogger(logging.NewNop())).List(context.Background(), lecture.NewCourse("X", "", "https://x", ""))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []string{"a1", "a2", "b", "c"}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Title, title)
		}
	}
	if src.recordings[0].Title != "c" {
		t.Fatal("List must not reorder the source slice")
	}
}

func TestListWrapsSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := catalog.New(stubSource{err: boom}).List(context.Background(), lecture.NewCourse("X", "", "https://x", ""))
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error to propagate, got %v", err)
	}
}

func TestFilterByDateIsInclusive(t *testing.T) {
	all := []lecture.Recording{
		rec("before", "2021-01-14"),
		rec("start", "2021-01-15"),
		rec("mid", "2021-01-20"),
		rec("end", "2021-01-31"),
		rec("after", "2021-02-01"),
	}
	r, err := lecture.NewDateRange(day("2021-01-15"), day("2021-01-31"))
	if err != nil {
		t.Fatal(err)
	}
	got := catalog.FilterByDate(all, r)
	if len(got) != 3 {
		t.Fatalf("expected 3 recordings, got %d", len(got))
	}
	wantPositions := []int{1, 2, 3}
	for i, ir := range got {
		if ir.Position != wantPositions[i] {
			t.Fatalf("%s: position %d, want %d", ir.Title, ir.Position, wantPositions[i])
		}
	}
	if got[0].Title != "start" || got[2].Title != "end" {
		t.Fatalf("boundaries not kept: %v", got)
	}
}

func TestFilterByDateLectureNumbersComeFromFullList(t *testing.T) {
	all := []lecture.Recording{
		rec("one", "2021-01-10"),
		rec("two", "2021-01-17"),
		rec("three", "2021-01-24"),
	}
	r, _ := lecture.NewDateRange(day("2021-01-15"), day("2021-01-31"))
	got := catalog.FilterByDate(all, r)
	if len(got) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(got))
	}
	if got[0].LectureNumber() != 2 || got[1].LectureNumber() != 3 {
		t.Fatalf("unexpected lecture numbers: %d, %d", got[0].LectureNumber(), got[1].LectureNumber())
	}
}

func TestFilterByDateZeroRangeKeepsAll(t *testing.T) {
	all := []lecture.Recording{rec("a", "2020-01-01"), rec("b", "2030-01-01")}
	if got := catalog.FilterByDate(all, lecture.All()); len(got) != 2 {
		t.Fatalf("expected all recordings, got %d", len(got))
	}
}

func TestFilterByDateDuplicatesKeepDistinctPositions(t *testing.T) {
	dup := rec("same", "2021-03-01")
	got := catalog.FilterByDate([]lecture.Recording{dup, dup}, lecture.All())
	if got[0].Position != 0 || got[1].Position != 1 {
		t.Fatalf("value-equal recordings must keep their own positions: %v", got)
	}
}
