package credentials

import (
	"context"
	"testing"

	"github.com/zalando/go-keyring"

	"lecturedl/internal/config"
)

func TestFromConfigPrefersStaticThenKeyring(t *testing.T) {
	keyring.MockInit()
	cfg := config.Default()
	cfg.Auth.Username = "alice"
	cfg.Auth.KeyringService = "lecturedl-test"
	if err := NewKeyring(cfg.Auth.KeyringService).Store("alice", "from-keyring"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	creds, err := Resolve(context.Background(), FromConfig(&cfg, nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if creds.Username != "alice" || creds.Password != "from-keyring" {
		t.Fatalf("unexpected credentials %+v", creds)
	}

	cfg.Auth.Password = "from-config"
	creds, err = Resolve(context.Background(), FromConfig(&cfg, nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if creds.Password != "from-config" {
		t.Fatalf("expected static password first, got %q", creds.Password)
	}
}

func TestFromConfigSkipsKeyringWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.UseKeyring = false
	chain := FromConfig(&cfg, NewPrompt())
	if len(chain) != 2 {
		t.Fatalf("expected static and prompt providers, got %d", len(chain))
	}
	if _, ok := chain[1].(*Prompt); !ok {
		t.Fatalf("expected prompt last, got %T", chain[1])
	}
}
