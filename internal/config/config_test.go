package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lecturedl/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("LECTUREDL_USERNAME", "")
	t.Setenv("LECTUREDL_PASSWORD", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, "Lectures"); cfg.Paths.OutputDir != want {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "state", "lecturedl"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if !cfg.Browser.Headless {
		t.Fatal("expected headless browser by default")
	}
	if cfg.Download.Binary != "rtmpdump" {
		t.Fatalf("unexpected download binary %q", cfg.Download.Binary)
	}
	if cfg.Download.Extension != "flv" {
		t.Fatalf("unexpected extension %q", cfg.Download.Extension)
	}
	if cfg.Download.PlaypathDelimiter != "_definst_/" {
		t.Fatalf("unexpected delimiter %q", cfg.Download.PlaypathDelimiter)
	}
	if cfg.Download.MaxConcurrent != 0 {
		t.Fatalf("expected unlimited concurrency by default, got %d", cfg.Download.MaxConcurrent)
	}
	if !strings.Contains(cfg.Browser.UserAgent, "iPad") {
		t.Fatalf("unexpected default user agent %q", cfg.Browser.UserAgent)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lecturedl.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Auth struct {
			Username string `toml:"username"`
		} `toml:"auth"`
		Download struct {
			Extension     string `toml:"extension"`
			MaxConcurrent int    `toml:"max_concurrent"`
			FailFast      bool   `toml:"fail_fast"`
		} `toml:"download"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "videos")
	custom.Auth.Username = "  student  "
	custom.Download.Extension = ".mp4"
	custom.Download.MaxConcurrent = 3
	custom.Download.FailFast = true

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != custom.Paths.OutputDir {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Auth.Username != "student" {
		t.Fatalf("expected trimmed username, got %q", cfg.Auth.Username)
	}
	if cfg.Download.Extension != "mp4" {
		t.Fatalf("expected leading dot stripped, got %q", cfg.Download.Extension)
	}
	if cfg.Download.MaxConcurrent != 3 || !cfg.Download.FailFast {
		t.Fatalf("unexpected download policy: %+v", cfg.Download)
	}
	if cfg.Download.Binary != "rtmpdump" {
		t.Fatalf("expected default binary to survive partial config, got %q", cfg.Download.Binary)
	}
}

func TestLoadUsesEnvCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LECTUREDL_USERNAME", "env-user")
	t.Setenv("LECTUREDL_PASSWORD", "env-pass")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Auth.Username != "env-user" || cfg.Auth.Password != "env-pass" {
		t.Fatalf("expected env credentials, got %+v", cfg.Auth)
	}
}

func TestValidateRejectsNegativeConcurrency(t *testing.T) {
	cfg := config.Default()
	cfg.Download.MaxConcurrent = -1
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "download.max_concurrent") {
		t.Fatalf("expected max_concurrent error, got %v", err)
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid log level to fail validation")
	}
}

func TestCreateSampleRoundTripsThroughLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Download.PlaypathDelimiter != "_definst_/" {
		t.Fatalf("unexpected delimiter from sample: %q", cfg.Download.PlaypathDelimiter)
	}
}
