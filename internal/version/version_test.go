package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, part := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, part) {
			t.Fatalf("expected %q in %q", part, s)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if !strings.HasPrefix(UserAgent(), "pos-terminal/") {
		t.Fatalf("unexpected user agent %q", UserAgent())
	}
}
