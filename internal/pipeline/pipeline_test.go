package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"lecturedl/internal/browser"
	"lecturedl/internal/browser/browsertest"
	"lecturedl/internal/download"
	"lecturedl/internal/history"
	"lecturedl/internal/lecture"
	"lecturedl/internal/pipeline"
	"lecturedl/internal/session"
	"lecturedl/internal/testsupport"
)

const (
	courseURL   = "https://echo.example.edu/ess/portal/section/CS101"
	canonicalID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	sectionURL  = "https://echo.example.edu/ess/client/api/sections/" + canonicalID + "/section-data.json?pageSize=100"
	sectionJSON = `{"section":{"presentations":{"pageContents":[
		{"title":"Intro","startTime":"2021-01-10T09:00:00Z","richMedia":"rtmp://media.example.edu/vod/_definst_/mp4:a.mp4"},
		{"title":"Sorting","startTime":"2021-01-17T09:00:00Z","richMedia":"rtmp://media.example.edu/vod/_definst_/mp4:b.mp4"},
		{"title":"Q&A: Week 3?","startTime":"2021-01-24T09:00:00Z","richMedia":"rtmp://media.example.edu/vod/_definst_/mp4:c.mp4"}
	]}}}`
)

type stubProcess struct{ wait func() error }

func (p stubProcess) Wait() error { return p.wait() }
func (p stubProcess) Pid() int    { return 1 }

type stubRunner struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *stubRunner) Start(_ context.Context, binary string, args []string, _ func(string)) (download.Process, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{binary}, args...))
	r.mu.Unlock()
	dest := args[len(args)-1]
	return stubProcess{wait: func() error {
		return os.WriteFile(dest, []byte("flv"), 0o644)
	}}, nil
}

func (r *stubRunner) destinations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = filepath.Base(c[len(c)-1])
	}
	return out
}

type pickChooser struct{ pick []int }

func (c pickChooser) Choose(context.Context, []string, int) ([]int, error) { return c.pick, nil }

type harness struct {
	fakes  []*browsertest.Fake
	runner *stubRunner
	out    *bytes.Buffer
}

func (h *harness) factory(pages ...browsertest.Page) pipeline.DriverFactory {
	return func(context.Context) (browser.Driver, error) {
		fake := browsertest.New(pages...)
		h.fakes = append(h.fakes, fake)
		return fake, nil
	}
}

func coursePages() []browsertest.Page {
	return []browsertest.Page{
		{
			URL:  courseURL,
			HTML: `<html><head></head><body><a href="/ess/client/section/` + canonicalID + `">Lectures</a></body></html>`,
			Body: "Lectures",
		},
		{URL: sectionURL, HTML: "<html><body><pre>json</pre></body></html>", Body: sectionJSON},
	}
}

func januaryRange(t *testing.T) lecture.DateRange {
	t.Helper()
	r, err := lecture.NewDateRange(
		time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	return r
}

func newPipeline(t *testing.T, h *harness, extra ...pipeline.Option) (*pipeline.Pipeline, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	opts := []pipeline.Option{
		pipeline.WithDriverFactory(h.factory(coursePages()...)),
		pipeline.WithDownloadOptions(download.WithRunner(h.runner)),
		pipeline.WithOutput(h.out),
	}
	p, err := pipeline.New(cfg, append(opts, extra...)...)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p, cfg.Paths.OutputDir
}

func newHarness() *harness {
	return &harness{runner: &stubRunner{}, out: &bytes.Buffer{}}
}

func TestRunDownloadsFilteredRecordingsNewestFirst(t *testing.T) {
	h := newHarness()
	p, outputDir := newPipeline(t, h)
	course := lecture.NewCourse("CS101", "Algorithms", courseURL, "")

	result, err := p.Run(context.Background(), pipeline.Request{Course: course, Range: januaryRange(t)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Session != session.LoginNotRequired {
		t.Fatalf("session outcome = %v", result.Session)
	}
	if course.CanonicalID() != canonicalID {
		t.Fatalf("canonical id = %q", course.CanonicalID())
	}
	wantDir := filepath.Join(outputDir, "CS101 - Algorithms")
	if result.CourseDir != wantDir {
		t.Fatalf("CourseDir = %q, want %q", result.CourseDir, wantDir)
	}
	if result.Available != 2 || len(result.Planned) != 2 {
		t.Fatalf("available=%d planned=%d", result.Available, len(result.Planned))
	}
	want := []string{
		"CS101 - 2021-01-24 - Lecture 3 [Q&A_ Week 3_]",
		"CS101 - 2021-01-17 - Lecture 2 [Sorting]",
	}
	for i, pd := range result.Planned {
		if pd.Filename != want[i] {
			t.Fatalf("planned[%d] = %q, want %q", i, pd.Filename, want[i])
		}
	}
	if !strings.Contains(h.out.String(), "Total videos to download: 2 out of 3") {
		t.Fatalf("missing banner in %q", h.out.String())
	}
	if result.Report == nil || !result.Report.OK() || len(result.Report.Succeeded) != 2 {
		t.Fatalf("unexpected report %+v", result.Report)
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(wantDir, name+".flv")); err != nil {
			t.Fatalf("expected output file %s: %v", name, err)
		}
	}
	if len(h.fakes) != 1 || !h.fakes[0].Closed {
		t.Fatal("expected browser to be closed")
	}
	if got := h.fakes[0].Navigated; len(got) != 2 || got[0] != courseURL || got[1] != sectionURL {
		t.Fatalf("unexpected navigation %v", got)
	}
}

func TestRunUsesSectionIDFromPortalURL(t *testing.T) {
	portalURL := "https://echo.example.edu/ess/portal/section/" + canonicalID
	pages := []browsertest.Page{
		{URL: portalURL, HTML: `<html><body><div id="app">Lectures</div></body></html>`, Body: "Lectures"},
		{URL: sectionURL, HTML: "<html><body><pre>json</pre></body></html>", Body: sectionJSON},
	}
	h := newHarness()
	p, _ := newPipeline(t, h, pipeline.WithDriverFactory(h.factory(pages...)))
	course := lecture.NewCourse("CS101", "Algorithms", portalURL, "")

	result, err := p.Run(context.Background(), pipeline.Request{Course: course})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if course.CanonicalID() != canonicalID {
		t.Fatalf("canonical id = %q", course.CanonicalID())
	}
	if result.Available != 3 || len(result.Report.Succeeded) != 3 {
		t.Fatalf("available=%d report=%+v", result.Available, result.Report)
	}
	if got := h.fakes[0].Navigated; len(got) != 2 || got[1] != sectionURL {
		t.Fatalf("unexpected navigation %v", got)
	}
}

func TestRunRecordsHistoryAndSkipsDownloaded(t *testing.T) {
	h := newHarness()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	p, err := pipeline.New(cfg,
		pipeline.WithDriverFactory(h.factory(coursePages()...)),
		pipeline.WithDownloadOptions(download.WithRunner(h.runner)),
		pipeline.WithOutput(h.out),
		pipeline.WithHistory(store),
	)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	ctx := context.Background()

	first, err := p.Run(ctx, pipeline.Request{Course: lecture.NewCourse("CS101", "Algorithms", courseURL, ""), Range: januaryRange(t)})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	run, err := store.GetRun(ctx, first.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v %v", run, err)
	}
	if run.Status != history.StatusSucceeded || run.Succeeded != 2 || run.CanonicalID != canonicalID {
		t.Fatalf("unexpected run record %+v", run)
	}
	downloads, err := store.Downloads(ctx, first.RunID)
	if err != nil || len(downloads) != 2 {
		t.Fatalf("Downloads: %d %v", len(downloads), err)
	}

	h.out.Reset()
	second, err := p.Run(ctx, pipeline.Request{
		Course:         lecture.NewCourse("CS101", "Algorithms", courseURL, ""),
		SkipDownloaded: true,
	})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Skipped != 2 || len(second.Planned) != 1 {
		t.Fatalf("skipped=%d planned=%d", second.Skipped, len(second.Planned))
	}
	if second.Planned[0].LectureNumber() != 1 {
		t.Fatalf("expected lecture 1 to remain, got %d", second.Planned[0].LectureNumber())
	}
	if !strings.Contains(h.out.String(), "Total videos to download: 1 out of 3") {
		t.Fatalf("missing banner in %q", h.out.String())
	}
	if second.RunID == first.RunID {
		t.Fatal("expected distinct run ids")
	}
}

func TestRunNarrowsWithChooser(t *testing.T) {
	h := newHarness()
	p, _ := newPipeline(t, h, pipeline.WithChooser(pickChooser{pick: []int{1}}))

	result, err := p.Run(context.Background(), pipeline.Request{
		Course: lecture.NewCourse("CS101", "Algorithms", courseURL, ""),
		Range:  lecture.All(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Planned) != 1 || result.Planned[0].LectureNumber() != 2 {
		t.Fatalf("unexpected selection %+v", result.Planned)
	}
	if got := h.runner.destinations(); len(got) != 1 || got[0] != "CS101 - 2021-01-17 - Lecture 2 [Sorting].flv" {
		t.Fatalf("unexpected downloads %v", got)
	}
}

func TestRunReportsAuthFailure(t *testing.T) {
	h := newHarness()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	p, err := pipeline.New(cfg,
		pipeline.WithDriverFactory(h.factory(browsertest.Page{
			URL:  courseURL,
			HTML: "<html><body><p>Please check your URL and try again.</p></body></html>",
			Body: "Please check your URL and try again.",
		})),
		pipeline.WithDownloadOptions(download.WithRunner(h.runner)),
		pipeline.WithHistory(store),
	)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	result, err := p.Run(context.Background(), pipeline.Request{Course: lecture.NewCourse("CS101", "", courseURL, "")})
	if !errors.Is(err, session.ErrInvalidCourseReference) {
		t.Fatalf("expected invalid course reference, got %v", err)
	}
	if result == nil || result.Report != nil {
		t.Fatalf("unexpected result %+v", result)
	}
	if !h.fakes[0].Closed {
		t.Fatal("expected browser to be closed after failure")
	}
	run, err := store.GetRun(context.Background(), result.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v %v", run, err)
	}
	if run.Status != history.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("unexpected run record %+v", run)
	}
	if len(h.runner.destinations()) != 0 {
		t.Fatal("expected no downloads")
	}
}

func TestRunRefusesLockedCourse(t *testing.T) {
	h := newHarness()
	cfg := testsupport.NewConfig(t)
	p, err := pipeline.New(cfg,
		pipeline.WithDriverFactory(h.factory(coursePages()...)),
		pipeline.WithDownloadOptions(download.WithRunner(h.runner)),
	)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	lockDir := filepath.Join(cfg.Paths.StateDir, "locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held := flock.New(filepath.Join(lockDir, "CS101 - Algorithms.lock"))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer held.Unlock()

	_, err = p.Run(context.Background(), pipeline.Request{Course: lecture.NewCourse("CS101", "Algorithms", courseURL, "")})
	if !errors.Is(err, pipeline.ErrCourseLocked) {
		t.Fatalf("expected ErrCourseLocked, got %v", err)
	}
	if len(h.runner.destinations()) != 0 {
		t.Fatal("expected no downloads while locked")
	}
}

func TestRunRejectsMissingCourse(t *testing.T) {
	p, err := pipeline.New(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	if _, err := p.Run(context.Background(), pipeline.Request{}); err == nil {
		t.Fatal("expected error for missing course")
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := pipeline.New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
