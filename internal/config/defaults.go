package config

const (
	defaultConfigPath        = "~/.config/lecturedl/config.toml"
	defaultOutputDir         = "~/Lectures"
	defaultLogDir            = "~/.local/share/lecturedl/logs"
	defaultStateDirFallback  = "~/.local/state/lecturedl"
	defaultBrowserHeadless   = true
	defaultBrowserTimeout    = 30
	defaultUserAgent         = "Mozilla/5.0 (iPad; CPU OS 6_0 like Mac OS X) AppleWebKit/536.26 (KHTML, like Gecko) Version/6.0 Mobile/10A5376e Safari/8536.25"
	defaultKeyringService    = "lecturedl"
	defaultDownloadBinary    = "rtmpdump"
	defaultResumeFlag        = "-R"
	defaultExtension         = "flv"
	defaultPlaypathDelimiter = "_definst_/"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir(),
		},
		Browser: Browser{
			Headless:       defaultBrowserHeadless,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultBrowserTimeout,
		},
		Auth: Auth{
			UseKeyring:     true,
			KeyringService: defaultKeyringService,
		},
		Download: Download{
			Binary:            defaultDownloadBinary,
			ResumeFlag:        defaultResumeFlag,
			Extension:         defaultExtension,
			PlaypathDelimiter: defaultPlaypathDelimiter,
			Progress:          true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
