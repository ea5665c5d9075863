package services_test

import (
	"errors"
	"strings"
	"testing"

	"lecturedl/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "download", "spawn", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"download", "spawn", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestHintMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"config", services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), "lecturedl config validate"},
		{"tool", services.Wrap(services.ErrExternalTool, "download", "spawn", "", nil), "lecturedl doctor"},
		{"other", errors.New("x"), "retry the run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.Hint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Fatalf("expected empty hint, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("hint %q does not contain %q", got, tt.want)
			}
		})
	}
}
