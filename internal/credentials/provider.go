package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable reports that a provider has no value to offer. Chain moves on
// to the next provider when it sees this error.
var ErrUnavailable = errors.New("credential unavailable")

// Provider yields login credentials.
type Provider interface {
	Username(ctx context.Context) (string, error)
	Password(ctx context.Context, username string) (string, error)
}

// Credentials is a resolved username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Resolve queries p for both values. Either both are returned or an error is.
func Resolve(ctx context.Context, p Provider) (Credentials, error) {
	if p == nil {
		return Credentials{}, fmt.Errorf("resolve credentials: %w", ErrUnavailable)
	}
	username, err := p.Username(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return Credentials{}, fmt.Errorf("resolve username: %w", ErrUnavailable)
	}
	password, err := p.Password(ctx, username)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve password: %w", err)
	}
	if password == "" {
		return Credentials{}, fmt.Errorf("resolve password: %w", ErrUnavailable)
	}
	return Credentials{Username: username, Password: password}, nil
}

// Static serves fixed values, typically from config or the environment.
// Empty fields report ErrUnavailable.
type Static struct {
	User string
	Pass string
}

func (s Static) Username(context.Context) (string, error) {
	if strings.TrimSpace(s.User) == "" {
		return "", ErrUnavailable
	}
	return strings.TrimSpace(s.User), nil
}

func (s Static) Password(context.Context, string) (string, error) {
	if s.Pass == "" {
		return "", ErrUnavailable
	}
	return s.Pass, nil
}

// Chain asks each provider in turn, skipping those that report ErrUnavailable.
type Chain []Provider

func (c Chain) Username(ctx context.Context) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		value, err := p.Username(ctx)
		if errors.Is(err, ErrUnavailable) {
			continue
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) != "" {
			return value, nil
		}
	}
	return "", ErrUnavailable
}

func (c Chain) Password(ctx context.Context, username string) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		value, err := p.Password(ctx, username)
		if errors.Is(err, ErrUnavailable) {
			continue
		}
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
	}
	return "", ErrUnavailable
}
