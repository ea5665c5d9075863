package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be reported as unconfigured, got %#v", results[2])
	}
}

func TestCheckBrowserConfiguredBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a unix-like OS")
	}
	path := filepath.Join(t.TempDir(), "chromium")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	status := CheckBrowser(path)
	if !status.Available {
		t.Fatalf("expected configured browser to be available, got %q", status.Detail)
	}
	if status.Command != path {
		t.Fatalf("expected command %q, got %q", path, status.Command)
	}
}

func TestCheckBrowserConfiguredMissing(t *testing.T) {
	status := CheckBrowser(filepath.Join(t.TempDir(), "missing-chrome"))
	if status.Available {
		t.Fatal("expected missing configured browser to be unavailable")
	}
	if status.Detail == "" {
		t.Fatal("expected detail for missing browser")
	}
}

func TestCheckBrowserFallsBackToLauncherLookup(t *testing.T) {
	original := lookPathBrowser
	t.Cleanup(func() { lookPathBrowser = original })

	lookPathBrowser = func() (string, bool) { return "/opt/chrome/chrome", true }
	status := CheckBrowser("")
	if !status.Available || status.Command != "/opt/chrome/chrome" {
		t.Fatalf("unexpected status: %#v", status)
	}

	lookPathBrowser = func() (string, bool) { return "", false }
	status = CheckBrowser("")
	if status.Available {
		t.Fatal("expected unavailable browser when lookup fails")
	}
}

func TestCheckBinariesRecordsResolvedPath(t *testing.T) {
	original := lookPath
	t.Cleanup(func() { lookPath = original })
	lookPath = func(name string) (string, error) { return "/usr/local/bin/" + name, nil }

	results := CheckBinaries([]Requirement{Downloader("rtmpdump")})
	if len(results) != 1 || !results[0].Available {
		t.Fatalf("expected downloader available, got %#v", results)
	}
	if results[0].Path != "/usr/local/bin/rtmpdump" || results[0].Name != "Downloader" {
		t.Fatalf("unexpected status %#v", results[0])
	}
}

func TestMissingSkipsOptional(t *testing.T) {
	got := Missing([]Status{
		{Name: "Downloader", Available: true},
		{Name: "Chrome"},
		{Name: "Extra", Optional: true},
	})
	if len(got) != 1 || got[0] != "Chrome" {
		t.Fatalf("Missing() = %v", got)
	}
}
