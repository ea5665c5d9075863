package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"lecturedl/internal/history"
	"lecturedl/internal/testsupport"
)

func seedRun(t *testing.T, store *history.Store, id string, started time.Time) {
	t.Helper()
	ctx := context.Background()
	run := history.Run{ID: id, CourseID: "CS101", CourseName: "Algorithms", DateRange: "all", StartedAt: started}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	run.Status = history.StatusPartial
	run.Total = 2
	run.Succeeded = 1
	run.Failed = 1
	run.FinishedAt = started.Add(time.Minute)
	downloads := []history.Download{
		{CourseID: "CS101", RecordingKey: "a", Filename: "CS101 - 2021-01-24 - Lecture 3 [C]", LectureNumber: 3, RecordingDate: "2021-01-24", Outcome: "succeeded", SizeBytes: 3 << 20},
		{CourseID: "CS101", RecordingKey: "b", Filename: "CS101 - 2021-01-17 - Lecture 2 [B]", LectureNumber: 2, RecordingDate: "2021-01-17", Outcome: "failed", ErrorMessage: "exit status 1"},
	}
	if err := store.FinishRun(ctx, run, downloads); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
}

func TestHistoryListsAndShowsRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	seedRun(t, store, "0f8fad5b-d9cb-469f-a165-70867728950e", time.Now().Add(-2*time.Hour))

	out, _, err := runCLI(t, []string{"history"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "0f8fad5b")
	requireContains(t, out, "CS101 - Algorithms")
	requireContains(t, out, "partial")
	requireContains(t, out, "1/2")

	out, _, err = runCLI(t, []string{"history", "show", "0f8fad5b-d9cb-469f-a165-70867728950e"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Lecture 3 [C]")
	requireContains(t, out, "3.0 MiB")
	requireContains(t, out, "exit status 1")

	if _, _, err := runCLI(t, []string{"history", "show", "missing"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestHistoryEmptyAndPrune(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	store := testsupport.MustOpenHistory(t, env.cfg)
	seedRun(t, store, "old-run", time.Now().Add(-200*24*time.Hour))

	out, _, err = runCLI(t, []string{"history", "prune", "--older-than", "2160h"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 1 runs")

	out, _, err = runCLI(t, []string{"history", "--course", "CS101"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded") {
		t.Fatalf("expected empty history after prune, got %q", out)
	}
}
