package util

import (
	"fmt"
	"strconv"
	"time"
)

// FormatRemaining renders a cooldown remainder: zero-padded MM:SS when at
// least a whole minute is left, otherwise a bare seconds count like "42s".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if m > 0 {
		return fmt.Sprintf("%02d:%02d", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatExpiration renders an expiration duration for the signal card:
// seconds below one minute, whole minutes (rounded) otherwise.
func FormatExpiration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm", (seconds+30)/60)
}

// ParseEpochMillis parses a persisted epoch-milliseconds value.
func ParseEpochMillis(s string) (time.Time, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// FormatEpochMillis renders an instant as the persisted decimal string.
func FormatEpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
