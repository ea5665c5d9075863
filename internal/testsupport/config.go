package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lecturedl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Auth.UseKeyring = false
	cfgVal.Download.Progress = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCredentials sets static credentials on the test config.
func WithCredentials(username, password string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.Username = username
		b.cfg.Auth.Password = password
	}
}

// WithMaxConcurrent overrides the download concurrency cap.
func WithMaxConcurrent(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Download.MaxConcurrent = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default downloader binary
// is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Download.Binary}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WithStubbedBrowser writes a stub Chrome executable and points
// browser.binary at it.
func WithStubbedBrowser() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "browser")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir browser dir: %v", err)
		}
		target := filepath.Join(binDir, "chromium")
		if err := os.WriteFile(target, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			b.t.Fatalf("write browser stub: %v", err)
		}
		b.cfg.Browser.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
