package session

import (
	"regexp"
	"strings"
)

const invalidCourseMarker = "check your URL"

var bodyPattern = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)

// Outcome describes how a session was established.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	// LoginNotRequired means the course page loaded without a login form.
	LoginNotRequired
	// LoggedIn means credentials were submitted and accepted.
	LoggedIn
)

func (o Outcome) String() string {
	switch o {
	case LoginNotRequired:
		return "login_not_required"
	case LoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// classifyLanding inspects a page with no login form. It returns 0 when the
// page is a usable course page.
func classifyLanding(source string) Kind {
	if isEmptyShell(source) {
		return KindNetworkUnavailable
	}
	if strings.Contains(source, invalidCourseMarker) {
		return KindInvalidCourseReference
	}
	return 0
}

// isEmptyShell reports a document with no body markup, which is what the
// browser shows when the request never reached the platform.
func isEmptyShell(source string) bool {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return true
	}
	match := bodyPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return !strings.Contains(strings.ToLower(trimmed), "<body")
	}
	return strings.TrimSpace(match[1]) == ""
}
