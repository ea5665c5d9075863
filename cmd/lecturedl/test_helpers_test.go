package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lecturedl/internal/config"
	"lecturedl/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("LECTUREDL_USERNAME", "")
	t.Setenv("LECTUREDL_PASSWORD", "")

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "lecturedl", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
state_dir = %q

[browser]
binary = %q

[auth]
username = %q
use_keyring = %t
keyring_service = %q

[download]
binary = %q
`,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Paths.StateDir,
		cfg.Browser.Binary,
		cfg.Auth.Username,
		cfg.Auth.UseKeyring,
		cfg.Auth.KeyringService,
		cfg.Download.Binary,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}


func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
