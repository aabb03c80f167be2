package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CrimeType classifies the crime under investigation
type CrimeType string

const (
	CrimeTorch         CrimeType = "torch"
	CrimeHack          CrimeType = "hack"
	CrimeArmedRobbery  CrimeType = "armed_robbery"
	CrimeMugging       CrimeType = "mugging"
	CrimeBreakAndEnter CrimeType = "break_and_enter"
	CrimeUnknown       CrimeType = "unknown"
)

// Disposition is the outcome applied to a case
type Disposition string

const (
	DispositionOpen     Disposition = "open"
	DispositionClosed   Disposition = "closed"
	DispositionBuried   Disposition = "buried"
	DispositionReturned Disposition = "returned"
)

// Terminal reports whether the disposition ends the case for this run
func (d Disposition) Terminal() bool {
	return d == DispositionClosed || d == DispositionBuried
}

var (
	ErrIllegalTransition    = errors.New("illegal disposition transition")
	ErrClosedWithoutSuspect = errors.New("case closed without a suspect")
)

// Clues holds the narrative hints found in the case text.
// Full names point at a player outright; suffixes are name endings.
type Clues struct {
	DNAName         string `json:"dna_name,omitempty" yaml:"dna_name,omitempty"`
	FingerprintName string `json:"fingerprint_name,omitempty" yaml:"fingerprint_name,omitempty"`
	ForensicsName   string `json:"forensics_name,omitempty" yaml:"forensics_name,omitempty"`
	ForensicsSuffix string `json:"forensics_suffix,omitempty" yaml:"forensics_suffix,omitempty"`
	FireSuffix      string `json:"fire_suffix,omitempty" yaml:"fire_suffix,omitempty"`
	VictimSuffix    string `json:"victim_suffix,omitempty" yaml:"victim_suffix,omitempty"`
	WitnessSuffix   string `json:"witness_suffix,omitempty" yaml:"witness_suffix,omitempty"`
}

// HasNameClue reports whether any statement, forensics or fire text hints at a name
func (c Clues) HasNameClue() bool {
	return c.VictimSuffix != "" || c.WitnessSuffix != "" ||
		c.ForensicsName != "" || c.ForensicsSuffix != "" ||
		c.FireSuffix != ""
}

// Case is a snapshot of one open investigation
type Case struct {
	ID              int                       `json:"id" yaml:"id"`
	Crime           CrimeType                 `json:"crime" yaml:"crime"`
	Victim          string                    `json:"victim" yaml:"victim"`
	TimeOfCrime     string                    `json:"time_of_crime" yaml:"time_of_crime"`
	Evidence        map[EvidenceKind]Evidence `json:"evidence" yaml:"evidence"`
	Clues           Clues                     `json:"clues" yaml:"clues"`
	WitnessOnly     bool                      `json:"witness_only" yaml:"witness_only"`
	ForensicLog     bool                      `json:"forensic_log" yaml:"forensic_log"` // Forensics already ran
	Suspect         string                    `json:"suspect,omitempty" yaml:"suspect,omitempty"`
	Disposition     Disposition               `json:"disposition" yaml:"disposition"`
}

// NewCase returns an open case with no evidence read yet
func NewCase() *Case {
	return &Case{
		Crime:       CrimeUnknown,
		Evidence:    make(map[EvidenceKind]Evidence, len(EvidenceKinds)),
		Disposition: DispositionOpen,
	}
}

// Get returns the evidence for kind, Absent when the page did not show it
func (c *Case) Get(kind EvidenceKind) Evidence {
	if ev, ok := c.Evidence[kind]; ok {
		return ev
	}
	return Evidence{Kind: kind}
}

// IsTorch reports whether the case is a business torch
func (c *Case) IsTorch() bool {
	return c.Crime == CrimeTorch
}

// HasFireIdentity reports whether the fire investigation names an identity yet
func (c *Case) HasFireIdentity() bool {
	text := strings.ToLower(c.Get(EvidenceFireInvestigation).Text)
	return strings.Contains(text, "identity")
}

// EvidencePending reports the unrecoverable pending conditions that force a Return
func (c *Case) EvidencePending() (bool, string) {
	if c.Get(EvidenceDNA).State() == StatePending {
		return true, "dna awaiting results"
	}
	if c.IsTorch() && !c.HasFireIdentity() {
		return true, "fire investigation pending"
	}
	return false, ""
}

// NoForensicLeads reports whether DNA and fingerprint carry nothing usable at all
func (c *Case) NoForensicLeads() bool {
	for _, kind := range []EvidenceKind{EvidenceDNA, EvidenceFingerprint} {
		switch c.Get(kind).State() {
		case StateAbsent, StateBlank:
		default:
			return false
		}
	}
	return true
}

// CrimeTime parses the time of crime, false when unknown
func (c *Case) CrimeTime() (time.Time, bool) {
	return ParseGameTime(c.TimeOfCrime)
}

// Settle moves the case out of Open. Only Open cases may settle, and a
// Closed case must carry a suspect.
func (c *Case) Settle(d Disposition, suspect string) error {
	if c.Disposition != DispositionOpen && c.Disposition != "" {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.Disposition, d)
	}
	if d == DispositionOpen {
		return fmt.Errorf("%w: open -> open", ErrIllegalTransition)
	}
	suspect = strings.TrimSpace(suspect)
	if d == DispositionClosed && suspect == "" {
		return ErrClosedWithoutSuspect
	}
	c.Disposition = d
	if suspect != "" {
		c.Suspect = suspect
	}
	return nil
}
