// Package resolve turns case evidence and clues into at most one suspect.
// Every resolver is conservative: ambiguity is reported as unresolved and
// left to the next fallback, never settled by picking a candidate.
package resolve

import (
	"context"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/model"
)

// Source records which rule named the suspect
type Source string

const (
	SourceDNA         Source = "dna"
	SourceFingerprint Source = "fingerprint"
	SourceForensics   Source = "forensics"
	SourcePhonebook   Source = "phonebook"
	SourceBulletin    Source = "bulletin"
)

// RecordsLookup resolves a numeric evidence code to a player name
type RecordsLookup interface {
	Lookup(ctx context.Context, kind model.EvidenceKind, code string) (name string, found bool, err error)
}

// Directory is the player phonebook
type Directory interface {
	Search(ctx context.Context, term string) (extract.DirectoryResults, error)
	// LastOnline returns a profile's last-online text; opened is false
	// when the profile could not be shown
	LastOnline(ctx context.Context, name string) (text string, opened bool)
}

// BulletinSource lists the persisted 911 reports
type BulletinSource interface {
	ReadAll() []model.Bulletin
}
