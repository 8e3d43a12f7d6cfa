package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "Lampara LED", 20, "Lampara LED"},
		{"trims", "  Lampara  ", 20, "Lampara"},
		{"cut", "Humidificador Smart", 10, "Humidif..."},
		{"tiny_limit", "abcdef", 2, "ab"},
		{"no_limit", "abcdef", 0, "abcdef"},
		{"runes", "Cañón portátil", 6, "Cañ..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	if got := truncateMiddle("abcd", 2); got != "ab" {
		t.Fatalf("truncateMiddle limit<=3 = %q, want ab", got)
	}
	got := truncateMiddle("/home/op/.local/state/dahell/dahell.log", 15)
	if len([]rune(got)) != 15 {
		t.Fatalf("got %q (%d runes), want 15", got, len([]rune(got)))
	}
	if got[:7] != "/home/o" {
		t.Fatalf("prefix lost: %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight must not cut, got %q", got)
	}
	if got := padRight("ñ", 3); got != "ñ  " {
		t.Fatalf("padRight counts runes, got %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(1234567); got != "$1,234,567" {
		t.Fatalf("formatPrice = %q", got)
	}
	if got := formatPrice(15000.9); got != "$15,000" {
		t.Fatalf("formatPrice truncates cents, got %q", got)
	}
}

func TestFormatScore(t *testing.T) {
	if got := formatScore(0.92); got != "92%" {
		t.Fatalf("formatScore = %q", got)
	}
	if got := formatScore(0); got != "0%" {
		t.Fatalf("formatScore zero = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"now", now, "just now"},
		{"seconds", now.Add(-12 * time.Second), "12s ago"},
		{"minutes", now.Add(-3 * time.Minute), "3m ago"},
		{"hours", now.Add(-2 * time.Hour), "2 hours ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatAge(tc.t, now); got != tc.want {
				t.Fatalf("formatAge = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseBound(t *testing.T) {
	if got := parseBound("25,000"); got == nil || *got != 25000 {
		t.Fatalf("parseBound(25,000) = %v", got)
	}
	for _, raw := range []string{"", "0", "-4", "abc"} {
		if got := parseBound(raw); got != nil {
			t.Fatalf("parseBound(%q) = %v, want nil", raw, *got)
		}
	}
	v := 1500.5
	if got := formatBound(&v); got != "1500.5" {
		t.Fatalf("formatBound = %q", got)
	}
	if got := formatBound(nil); got != "" {
		t.Fatalf("formatBound(nil) = %q", got)
	}
}
