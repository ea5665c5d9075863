package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBrowser()
	c.normalizeAuth()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBrowser() {
	c.Browser.Binary = strings.TrimSpace(c.Browser.Binary)
	c.Browser.UserAgent = strings.TrimSpace(c.Browser.UserAgent)
	if c.Browser.UserAgent == "" {
		c.Browser.UserAgent = defaultUserAgent
	}
	if c.Browser.TimeoutSeconds == 0 {
		c.Browser.TimeoutSeconds = defaultBrowserTimeout
	}
}

func (c *Config) normalizeAuth() {
	c.Auth.Username = strings.TrimSpace(c.Auth.Username)
	if c.Auth.Username == "" {
		if value, ok := os.LookupEnv("LECTUREDL_USERNAME"); ok {
			c.Auth.Username = strings.TrimSpace(value)
		}
	}
	if c.Auth.Password == "" {
		if value, ok := os.LookupEnv("LECTUREDL_PASSWORD"); ok {
			c.Auth.Password = value
		}
	}
	c.Auth.KeyringService = strings.TrimSpace(c.Auth.KeyringService)
	if c.Auth.KeyringService == "" {
		c.Auth.KeyringService = defaultKeyringService
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Binary = strings.TrimSpace(c.Download.Binary)
	if c.Download.Binary == "" {
		c.Download.Binary = defaultDownloadBinary
	}
	c.Download.ResumeFlag = strings.TrimSpace(c.Download.ResumeFlag)
	c.Download.Extension = strings.TrimPrefix(strings.TrimSpace(c.Download.Extension), ".")
	if c.Download.Extension == "" {
		c.Download.Extension = defaultExtension
	}
	if c.Download.PlaypathDelimiter == "" {
		c.Download.PlaypathDelimiter = defaultPlaypathDelimiter
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
