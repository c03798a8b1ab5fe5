package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	if got := truncate("  The Way of Kings  ", 0); got != "The Way of Kings" {
		t.Fatalf("truncate no limit = %q", got)
	}
	if got := truncate("The Way of Kings", 10); got != "The Way..." {
		t.Fatalf("truncate = %q, want The Way...", got)
	}
	if got := truncate("abcd", 2); got != "ab" {
		t.Fatalf("truncate limit<=3 = %q, want ab", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight should not cut, got %q", got)
	}
}

func TestFormatRuntime(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{-time.Second, "-"},
		{42 * time.Second, "42s"},
		{45 * time.Minute, "45m"},
		{12*time.Hour + 5*time.Minute + 20*time.Second, "12h 5m"},
	}
	for _, tc := range cases {
		if got := formatRuntime(tc.in); got != tc.want {
			t.Fatalf("formatRuntime(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJoinNames(t *testing.T) {
	if got := joinNames(nil, 2); got != "" {
		t.Fatalf("joinNames(nil) = %q, want empty", got)
	}
	if got := joinNames([]string{"A", "B"}, 2); got != "A, B" {
		t.Fatalf("joinNames = %q, want A, B", got)
	}
	if got := joinNames([]string{"A", "B", "C"}, 1); got != "A +2" {
		t.Fatalf("joinNames = %q, want A +2", got)
	}
}
