package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// Keyring stores passwords in the operating system keyring, keyed by username.
// It never supplies a username.
type Keyring struct {
	Service string
}

// NewKeyring returns a keyring provider for the given service name.
func NewKeyring(service string) *Keyring {
	service = strings.TrimSpace(service)
	if service == "" {
		service = "lecturedl"
	}
	return &Keyring{Service: service}
}

func (k *Keyring) Username(context.Context) (string, error) {
	return "", ErrUnavailable
}

func (k *Keyring) Password(_ context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUnavailable
	}
	secret, err := keyringGet(k.Service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrUnsupportedPlatform) {
			return "", ErrUnavailable
		}
		return "", fmt.Errorf("keyring lookup: %w", err)
	}
	return secret, nil
}

// Store saves the password for username.
func (k *Keyring) Store(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username required")
	}
	if password == "" {
		return errors.New("password required")
	}
	if err := keyringSet(k.Service, username, password); err != nil {
		return fmt.Errorf("keyring store: %w", err)
	}
	return nil
}

// Forget removes the stored password for username. A missing entry is not an error.
func (k *Keyring) Forget(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username required")
	}
	if err := keyringDelete(k.Service, username); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
