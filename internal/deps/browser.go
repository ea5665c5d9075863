package deps

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

// lookPathBrowser resolves a system Chrome/Chromium; swapped in tests.
var lookPathBrowser = launcher.LookPath

// CheckBrowser reports the Chrome/Chromium binary the browser session will launch.
//
// An explicitly configured binary wins; otherwise the same lookup rod's
// launcher performs (well-known install locations, then PATH) is used.
func CheckBrowser(configured string) Status {
	result := Status{
		Name:        "Chrome",
		Description: "Drives the authenticated lecture-capture session",
	}

	configured = strings.TrimSpace(configured)
	if configured != "" {
		result.Command = configured
		resolved, err := lookPath(configured)
		if err != nil {
			result.Detail = fmt.Sprintf("configured browser %q not found", configured)
			return result
		}
		info, err := os.Stat(resolved)
		if err != nil || !isExecutable(info) {
			result.Detail = fmt.Sprintf("configured browser %q is not executable", configured)
			return result
		}
		result.Path = resolved
		result.Available = true
		return result
	}

	if path, ok := lookPathBrowser(); ok && path != "" {
		result.Command = path
		result.Path = path
		result.Available = true
		return result
	}

	result.Command = "chrome"
	result.Detail = "no Chrome or Chromium installation found; set browser.binary"
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
