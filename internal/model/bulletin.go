package model

import "strings"

// Bulletin is one public 911 report, with who was online when it was copied
type Bulletin struct {
	Time        string   `json:"time"`
	Crime       string   `json:"crime"`
	Victim      string   `json:"victim"`
	Suspect     string   `json:"suspect"` // Name suffix as reported
	OnlineUsers []string `json:"-"`
}

// Key identifies a bulletin for deduplication
func (b Bulletin) Key() string {
	return strings.Join([]string{b.Time, b.Crime, b.Victim, b.Suspect}, "\x1f")
}

// IsWhack reports whether the bulletin reports a killing
func (b Bulletin) IsWhack() bool {
	return strings.Contains(strings.ToLower(b.Crime), "whack")
}
