package model

import (
	"strings"
)

// EvidenceKind names a forensic or investigative field on a case
type EvidenceKind string

const (
	EvidenceFingerprint       EvidenceKind = "fingerprint"
	EvidenceDNA               EvidenceKind = "dna"
	EvidenceTravel            EvidenceKind = "travel"
	EvidenceFireInvestigation EvidenceKind = "fire_investigation"
)

// EvidenceKinds lists every kind in collection order
var EvidenceKinds = []EvidenceKind{
	EvidenceFireInvestigation,
	EvidenceFingerprint,
	EvidenceDNA,
	EvidenceTravel,
}

// Label returns the case page label that precedes the evidence value
func (k EvidenceKind) Label() string {
	switch k {
	case EvidenceFingerprint:
		return "Fingerprint Evidence:"
	case EvidenceDNA:
		return "DNA Log:"
	case EvidenceTravel:
		return "Travel Log:"
	case EvidenceFireInvestigation:
		return "Fire Investigation:"
	default:
		return ""
	}
}

// EvidenceState classifies an evidence value
type EvidenceState int

const (
	StateAbsent  EvidenceState = iota // Nothing collected yet
	StatePending                      // Results still processing
	StateBlank                        // Collected, page says "None"
	StateValue                        // Collected, carries text
)

func (s EvidenceState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBlank:
		return "blank"
	case StateValue:
		return "value"
	default:
		return "absent"
	}
}

// Page texts with fixed meaning
const (
	AwaitingResultsText = "awaiting results"
	NoTravelEvidence    = "No valid travel evidence found."
)

// Evidence is one labelled field as read from the case page
type Evidence struct {
	Kind EvidenceKind `json:"kind" yaml:"kind"`
	Text string       `json:"text" yaml:"text"` // Trimmed cell text, "" when blank or absent
}

// State derives the evidence state from the cell text
func (e Evidence) State() EvidenceState {
	text := strings.TrimSpace(e.Text)
	switch {
	case text == "":
		return StateAbsent
	case strings.Contains(strings.ToLower(text), AwaitingResultsText):
		return StatePending
	case strings.EqualFold(text, "none"):
		return StateBlank
	default:
		return StateValue
	}
}

// IsNumeric reports whether the value is a records code (digits and spaces only)
func (e Evidence) IsNumeric() bool {
	return IsRecordCode(e.Text)
}

// IsRecordCode reports whether text is made of digits and spaces and starts with a digit
func IsRecordCode(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || text[0] < '0' || text[0] > '9' {
		return false
	}
	for _, r := range text {
		if (r < '0' || r > '9') && r != ' ' {
			return false
		}
	}
	return true
}

