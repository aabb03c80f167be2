package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/casework/internal/model"
)

// CaseExtractor turns the markup of an open case into a Case snapshot.
// It holds no state; the same markup always yields the same snapshot.
type CaseExtractor struct{}

// NewCaseExtractor creates a new case extractor
func NewCaseExtractor() *CaseExtractor {
	return &CaseExtractor{}
}

// Extract parses case markup into a snapshot
func (e *CaseExtractor) Extract(markup string) (*model.Case, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, fmt.Errorf("extract case: %w", err)
	}

	text := doc.Text()
	c := model.NewCase()

	if cell, ok := labelCell(doc, labelCase); ok {
		c.ID = parseCaseID(cell.Text())
	}
	if cell, ok := labelCell(doc, labelTimeOfCrime); ok {
		c.TimeOfCrime = normalize(cell.Text())
	}
	if cell, ok := labelCell(doc, labelVictim); ok {
		c.Victim = victimName(cell)
	}

	c.Crime = classifyCrime(text)

	for _, kind := range model.EvidenceKinds {
		cell, ok := labelCell(doc, kind.Label())
		if !ok {
			continue
		}
		c.Evidence[kind] = model.Evidence{
			Kind: kind,
			Text: normalize(cell.Text()),
		}
	}

	c.WitnessOnly = isWitnessOnly(doc, text)
	c.Clues = e.clues(doc, text, c)
	c.ForensicLog = strings.Contains(text, strings.TrimSuffix(labelForensicLog, ":"))

	return c, nil
}

// clues reads the narrative hints out of evidence cells and statements
func (e *CaseExtractor) clues(doc *goquery.Document, text string, c *model.Case) model.Clues {
	var clues model.Clues

	if dna := c.Get(model.EvidenceDNA).Text; dna != "" {
		clues.DNAName = firstGroup(dnaNameRe, dna)
	}
	if fp := c.Get(model.EvidenceFingerprint).Text; fp != "" {
		clues.FingerprintName = firstGroup(ownerCouldBeRe, fp)
	}

	if forensics, ok := statement(doc, text, labelForensicLog); ok {
		if name := firstGroup(forensicsNameRe, forensics); name != "" {
			clues.ForensicsName = name
		} else {
			clues.ForensicsSuffix = firstGroup(forensicsSuffixRe, forensics)
		}
	}

	if c.IsTorch() && c.HasFireIdentity() {
		clues.FireSuffix = fireSuffix(c.Get(model.EvidenceFireInvestigation).Text)
	}

	if victim, ok := statement(doc, text, labelVictimStatement); ok {
		clues.VictimSuffix = firstGroup(victimSuffixRe, victim)
	}
	if witness, ok := statement(doc, text, labelWitnessStatement); ok {
		clues.WitnessSuffix = firstGroup(witnessSuffixRe, witness)
	}

	return clues
}

// statement returns the text of a narrative field, falling back to the
// free text after its label when the page has no value cell for it
func statement(doc *goquery.Document, text, label string) (string, bool) {
	if cell, ok := labelCell(doc, label); ok {
		return normalize(cell.Text()), true
	}
	s, ok := section(text, label)
	return normalize(s), ok
}

// isWitnessOnly reports a case nobody reported: only a witness saw it
func isWitnessOnly(doc *goquery.Document, text string) bool {
	notReported := false
	doc.Find("i").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.HasPrefix(strings.TrimSpace(s.Text()), notReportedMarker) {
			notReported = true
			return false
		}
		return true
	})
	if notReported {
		return true
	}
	return strings.Contains(text, labelWitnessStatement) && !strings.Contains(text, labelVictimStatement)
}

// victimName prefers the profile link username over the visible cell text
func victimName(cell *goquery.Selection) string {
	if names := usernames(cell); len(names) > 0 {
		return names[0]
	}
	return normalize(cell.Text())
}

// parseCaseID keeps the digits of a case number such as "#609658"
func parseCaseID(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	id, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return id
}
