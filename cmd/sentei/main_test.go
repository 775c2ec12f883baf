package main

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "fix typo", maxLen: 20, want: "fix typo"},
		{name: "exact length unchanged", input: "12345", maxLen: 5, want: "12345"},
		{name: "long string truncated", input: "a very long commit subject line", maxLen: 10, want: "a very ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero time", t: time.Time{}, want: "unknown date"},
		{name: "today", t: now.Add(-2 * time.Hour), want: "today"},
		{name: "one day", t: now.Add(-36 * time.Hour), want: "1 day ago"},
		{name: "days", t: now.AddDate(0, 0, -14), want: "14 days ago"},
		{name: "one month", t: now.AddDate(0, 0, -45), want: "1 month ago"},
		{name: "months", t: now.AddDate(0, 0, -200), want: "6 months ago"},
		{name: "one year", t: now.AddDate(0, 0, -400), want: "1 year ago"},
		{name: "years", t: now.AddDate(0, 0, -800), want: "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAge(tt.t)
			if got != tt.want {
				t.Errorf("formatAge(%v) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}
