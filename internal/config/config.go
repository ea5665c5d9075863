package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Browser contains configuration for the automated browser session.
type Browser struct {
	Headless       bool   `toml:"headless"`
	Binary         string `toml:"binary"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Auth contains credential configuration. Password is read from here only as
// a last resort; prefer the keyring or the interactive prompt.
type Auth struct {
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	UseKeyring     bool   `toml:"use_keyring"`
	KeyringService string `toml:"keyring_service"`
}

// Download contains configuration for the external download executable and
// the orchestration policy.
type Download struct {
	Binary            string `toml:"binary"`
	ResumeFlag        string `toml:"resume_flag"`
	Extension         string `toml:"extension"`
	PlaypathDelimiter string `toml:"playpath_delimiter"`
	MaxConcurrent     int    `toml:"max_concurrent"`
	FailFast          bool   `toml:"fail_fast"`
	Progress          bool   `toml:"progress"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lecturedl.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Browser: headless mode, Chrome binary, user agent, page timeout
//   - Auth: username and credential sources
//   - Download: external downloader invocation and concurrency policy
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Browser  Browser  `toml:"browser"`
	Auth     Auth     `toml:"auth"`
	Download Download `toml:"download"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lecturedl.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. The output
// directory is created lazily per course by the pipeline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BrowserTimeout returns the per-page browser timeout.
func (c *Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutSeconds) * time.Second
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogPath returns the location of the log file.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "lecturedl.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "lecturedl")
	}
	return defaultStateDirFallback
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
