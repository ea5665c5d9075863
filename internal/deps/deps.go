package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external executable lecturedl shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement resolved. Path holds the resolved
// location when Available is set.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Downloader is the requirement for the configured stream downloader.
func Downloader(binary string) Requirement {
	return Requirement{
		Name:        "Downloader",
		Command:     binary,
		Description: "Fetches each recording's RTMP stream",
	}
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch path, err := lookPath(status.Command); {
		case status.Command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		default:
			status.Path = path
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// Missing lists the names of required dependencies that did not resolve.
func Missing(statuses []Status) []string {
	var names []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			names = append(names, s.Name)
		}
	}
	return names
}

var lookPath = exec.LookPath
