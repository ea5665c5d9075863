package download

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlaybackPath(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"rtmp://host/app/_definst_/mp4:2021/w1.mp4", "mp4:2021/w1.mp4", false},
		{"rtmp://host/_definst_/a/_definst_/b", "a/_definst_/b", false},
		{"rtmp://host/app/w1.mp4", "", true},
		{"rtmp://host/app/_definst_/", "", true},
	}
	for _, tt := range tests {
		got, err := PlaybackPath(tt.url, "")
		if tt.wantErr {
			if !errors.Is(err, ErrNoPlaybackPath) {
				t.Fatalf("PlaybackPath(%q) expected ErrNoPlaybackPath, got %v", tt.url, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("PlaybackPath(%q) = %q, %v; want %q", tt.url, got, err, tt.want)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	got := strings.Join(BuildArgs("-R", "u", "p", "/out/x.flv"), " ")
	if got != "-R -r u -y p -o /out/x.flv" {
		t.Fatalf("unexpected args %q", got)
	}
	if got := BuildArgs("", "u", "p", "d"); got[0] != "-r" {
		t.Fatalf("blank resume flag must be omitted: %v", got)
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/out", "name", ".flv"); got != filepath.Join("/out", "name.flv") {
		t.Fatalf("unexpected path %q", got)
	}
	if got := OutputPath("/out", "name", ""); got != filepath.Join("/out", "name") {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestParsePercent(t *testing.T) {
	if pct, ok := parsePercent("1834.329 kB / 12.35 sec (37.4%)"); !ok || pct != 37.4 {
		t.Fatalf("parsePercent = %v, %v", pct, ok)
	}
	if _, ok := parsePercent("Connecting ..."); ok {
		t.Fatal("expected no percentage")
	}
	if pct, _ := parsePercent("(120%)"); pct != 100 {
		t.Fatalf("expected clamp to 100, got %v", pct)
	}
}

func TestScanLinesOrCarriageReturns(t *testing.T) {
	data := []byte("a\rb\nc")
	var tokens []string
	for len(data) > 0 {
		advance, token, err := scanLinesOrCarriageReturns(data, true)
		if err != nil {
			t.Fatal(err)
		}
		tokens = append(tokens, string(token))
		data = data[advance:]
	}
	if strings.Join(tokens, ",") != "a,b,c" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}
