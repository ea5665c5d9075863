package credentials_test

import (
	"context"
	"errors"
	"testing"

	"lecturedl/internal/credentials"
)

type countingProvider struct {
	user, pass   string
	userErr      error
	passErr      error
	usernameHits int
	passwordHits int
	lastUser     string
}

func (c *countingProvider) Username(context.Context) (string, error) {
	c.usernameHits++
	return c.user, c.userErr
}

func (c *countingProvider) Password(_ context.Context, username string) (string, error) {
	c.passwordHits++
	c.lastUser = username
	return c.pass, c.passErr
}

func TestResolveReturnsBothValues(t *testing.T) {
	p := &countingProvider{user: "  alice ", pass: "s3cret"}
	creds, err := credentials.Resolve(context.Background(), p)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if creds.Username != "alice" || creds.Password != "s3cret" {
		t.Fatalf("unexpected credentials: %#v", creds)
	}
	if p.lastUser != "alice" {
		t.Fatalf("password lookup used %q", p.lastUser)
	}
}

func TestResolveFailsWithoutPassword(t *testing.T) {
	p := &countingProvider{user: "alice"}
	if _, err := credentials.Resolve(context.Background(), p); !errors.Is(err, credentials.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestResolveSkipsPasswordWhenUsernameFails(t *testing.T) {
	boom := errors.New("boom")
	p := &countingProvider{userErr: boom, pass: "x"}
	if _, err := credentials.Resolve(context.Background(), p); !errors.Is(err, boom) {
		t.Fatalf("expected username error, got %v", err)
	}
	if p.passwordHits != 0 {
		t.Fatalf("password should not be requested after username failure")
	}
}

func TestChainFallsThrough(t *testing.T) {
	chain := credentials.Chain{
		credentials.Static{User: "bob"},
		&countingProvider{userErr: credentials.ErrUnavailable, pass: "from-second"},
	}
	creds, err := credentials.Resolve(context.Background(), chain)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if creds.Username != "bob" || creds.Password != "from-second" {
		t.Fatalf("unexpected credentials: %#v", creds)
	}
}

func TestChainStopsOnHardError(t *testing.T) {
	boom := errors.New("keyring locked")
	second := &countingProvider{pass: "never"}
	chain := credentials.Chain{
		&countingProvider{passErr: boom},
		second,
	}
	if _, err := chain.Password(context.Background(), "bob"); !errors.Is(err, boom) {
		t.Fatalf("expected hard error, got %v", err)
	}
	if second.passwordHits != 0 {
		t.Fatal("chain should stop at the first hard error")
	}
}

func TestEmptyChainIsUnavailable(t *testing.T) {
	if _, err := (credentials.Chain{}).Username(context.Background()); !errors.Is(err, credentials.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
