package resolve

import (
	"regexp"
	"unicode/utf8"

	"github.com/ppiankov/casework/internal/model"
)

// maxClueLen is how much of a name ending is kept for a phonebook search
const maxClueLen = 3

var trailingNonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+$`)

// Resolution is what the case text alone says about the suspect. Name is
// set when a rule named someone outright; otherwise Clue may hold a name
// ending.
type Resolution struct {
	Name   string
	Source Source
	Clue   string
}

// Resolved reports whether a full name was found
func (r Resolution) Resolved() bool {
	return r.Name != ""
}

// ClueLen is the length of the name ending in characters
func (r Resolution) ClueLen() int {
	return utf8.RuneCountInString(r.Clue)
}

type nameRule struct {
	source Source
	name   func(c *model.Case) string
}

// Rules in priority order; the first that names someone wins
var nameRules = []nameRule{
	{SourceDNA, func(c *model.Case) string { return c.Clues.DNAName }},
	{SourceFingerprint, func(c *model.Case) string { return c.Clues.FingerprintName }},
	{SourceForensics, func(c *model.Case) string { return c.Clues.ForensicsName }},
}

// SuspectResolver applies the fixed-priority rule chain
type SuspectResolver struct{}

// NewSuspectResolver creates a resolver with the fixed rule chain
func NewSuspectResolver() *SuspectResolver {
	return &SuspectResolver{}
}

// Resolve names a suspect from the first matching rule, or falls back to
// the best name-ending clue
func (s *SuspectResolver) Resolve(c *model.Case) Resolution {
	for _, rule := range nameRules {
		if name := rule.name(c); name != "" {
			return Resolution{Name: name, Source: rule.source}
		}
	}
	return Resolution{Clue: NameEnding(c.Clues)}
}

// NameEnding picks the longest of the statement, fire and forensics
// suffixes, strips trailing punctuation and keeps the last three
// characters. Earlier sources win ties.
func NameEnding(cl model.Clues) string {
	best := ""
	for _, s := range []string{cl.VictimSuffix, cl.WitnessSuffix, cl.FireSuffix, cl.ForensicsSuffix} {
		if utf8.RuneCountInString(s) > utf8.RuneCountInString(best) {
			best = s
		}
	}

	best = trailingNonWord.ReplaceAllString(best, "")
	runes := []rune(best)
	if len(runes) > maxClueLen {
		runes = runes[len(runes)-maxClueLen:]
	}
	return string(runes)
}
