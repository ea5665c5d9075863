package session

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication failure.
type Kind int

const (
	KindNetworkUnavailable Kind = iota + 1
	KindInvalidCourseReference
	KindInvalidCredentials
)

var (
	ErrNetworkUnavailable     = errors.New("network unavailable")
	ErrInvalidCourseReference = errors.New("invalid course reference")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

func (k Kind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindInvalidCourseReference:
		return "invalid_course_reference"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNetworkUnavailable:
		return ErrNetworkUnavailable
	case KindInvalidCourseReference:
		return ErrInvalidCourseReference
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	default:
		return nil
	}
}

// AuthError reports why a session could not be established. Snapshot holds
// the page source at the time of failure for diagnostics.
type AuthError struct {
	Kind     Kind
	URL      string
	Snapshot string
	Err      error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("establish session: %s", e.Kind.sentinel())
	if e.URL != "" {
		msg += " at " + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel for the error's kind.
func (e *AuthError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Hint suggests what the operator should check.
func (e *AuthError) Hint() string {
	switch e.Kind {
	case KindNetworkUnavailable:
		return "check the network connection and that the platform is reachable"
	case KindInvalidCourseReference:
		return "check the course URL"
	case KindInvalidCredentials:
		return "check the username and password (lecturedl credentials set)"
	default:
		return ""
	}
}
