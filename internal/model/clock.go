package model

import (
	"strings"
	"time"
)

// GameTimeLayout is the clock format used across the game UI
const GameTimeLayout = "1/2/2006 3:04:05 PM"

// readyMarker is shown by timers that have already elapsed
const readyMarker = "1/1/2000"

// ParseGameTime parses a game clock string. The ready marker yields the zero time.
func ParseGameTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if s == readyMarker {
		return time.Time{}, true
	}
	t, err := time.Parse(GameTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LastOnline is a parsed profile "Last online" value
type LastOnline struct {
	At     time.Time
	Recent bool // "less than a minute ago", "5 minutes ago"
}

// After reports whether the player was seen strictly after t. A recent
// value is online now, which is after any crime still on the books, so
// it never depends on the host clock or time zone.
func (l LastOnline) After(t time.Time) bool {
	return l.Recent || l.At.After(t)
}

// ParseLastOnline parses a profile "Last online" value. Anything
// mentioning minutes is Recent; otherwise it is a game clock time.
func ParseLastOnline(s string) (LastOnline, bool) {
	if strings.Contains(strings.ToLower(s), "minute") {
		return LastOnline{Recent: true}, true
	}
	t, ok := ParseGameTime(s)
	if !ok || t.IsZero() {
		return LastOnline{}, false
	}
	return LastOnline{At: t}, true
}
