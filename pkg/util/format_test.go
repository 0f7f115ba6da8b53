package util

import (
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Second, "01:30"},
		{60 * time.Second, "01:00"},
		{61 * time.Second, "01:01"},
		{10*time.Minute + 5*time.Second, "10:05"},
		{59 * time.Second, "59s"},
		{1 * time.Second, "1s"},
		{0, "0s"},
		{-3 * time.Second, "0s"},
		{1500 * time.Millisecond, "1s"},
	}
	for _, c := range cases {
		if got := FormatRemaining(c.d); got != c.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestFormatExpiration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{5, "5s"},
		{59, "59s"},
		{60, "1m"},
		{90, "2m"},
		{120, "2m"},
		{300, "5m"},
		{0, ""},
		{-1, ""},
	}
	for _, c := range cases {
		if got := FormatExpiration(c.seconds); got != c.want {
			t.Errorf("FormatExpiration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestEpochMillisRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 30, 45, 123e6, time.UTC)
	got, ok := ParseEpochMillis(FormatEpochMillis(at))
	if !ok {
		t.Fatal("round trip did not parse")
	}
	if !got.Equal(at) {
		t.Errorf("round trip = %v, want %v", got, at)
	}
}

func TestParseEpochMillisRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "-5", "0", "12.5"} {
		if _, ok := ParseEpochMillis(s); ok {
			t.Errorf("ParseEpochMillis(%q) parsed, want rejection", s)
		}
	}
}
