package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns a short operator-facing suggestion for the marker carried by err.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "check the config file (lecturedl config validate)"
	case errors.Is(err, ErrExternalTool):
		return "verify required binaries (lecturedl doctor)"
	case errors.Is(err, ErrValidation):
		return "check command arguments"
	case errors.Is(err, ErrNotFound):
		return "check the course URL"
	case errors.Is(err, ErrTimeout):
		return "increase browser.timeout_seconds or retry"
	default:
		return "retry the run; see the log file for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
