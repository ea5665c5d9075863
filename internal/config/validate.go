package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateBrowser() error {
	if c.Browser.TimeoutSeconds <= 0 {
		return errors.New("browser.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if strings.ContainsAny(c.Download.Extension, `/\`) {
		return fmt.Errorf("download.extension %q must not contain path separators", c.Download.Extension)
	}
	if c.Download.MaxConcurrent < 0 {
		return errors.New("download.max_concurrent must be >= 0 (0 means unlimited)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
