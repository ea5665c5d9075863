package browser

import "testing"

func TestPartialIDXPath(t *testing.T) {
	if got := partialIDXPath("username"); got != "//*[contains(@id,'username')]" {
		t.Fatalf("unexpected xpath: %s", got)
	}
	if got := exactIDXPath("login-btn"); got != "//*[@id='login-btn']" {
		t.Fatalf("unexpected xpath: %s", got)
	}
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"it's", `"it's"`},
		{`a'b"c`, `concat('a',"'",'b"c')`},
	}
	for _, tt := range tests {
		if got := xpathLiteral(tt.in); got != tt.want {
			t.Fatalf("xpathLiteral(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRodClosedRejectsCalls(t *testing.T) {
	r := &Rod{closed: true}
	if _, _, err := r.scoped(t.Context()); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
