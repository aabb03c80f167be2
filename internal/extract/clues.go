package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/casework/internal/model"
)

// Case page labels
const (
	labelCase             = "Case:"
	labelTimeOfCrime      = "Time of Crime:"
	labelVictim           = "Victim:"
	labelVictimStatement  = "Victim Statement:"
	labelWitnessStatement = "Witness Statement:"
	labelForensicLog      = "Forensic Log:"
	notReportedMarker     = "Not reported yet"
)

// knownLabels bound the free-text fallback used when a label has no value cell
var knownLabels = []string{
	labelCase,
	labelTimeOfCrime,
	labelVictim,
	labelVictimStatement,
	labelWitnessStatement,
	labelForensicLog,
	"DNA Log:",
	"Fingerprint Evidence:",
	"Travel Log:",
	"Fire Investigation:",
}

var (
	dnaNameRe         = regexp.MustCompile(`The DNA revealed\s+(.+?)\s+was at the crime scene`)
	ownerCouldBeRe    = regexp.MustCompile(`(?i)owner could be,\s*([^.]+)\.`)
	forensicsNameRe   = regexp.MustCompile(`name is\s*([^!]+)!`)
	forensicsSuffixRe = regexp.MustCompile(`name ended with\s*([^!]+)!`)
	victimSuffixRe    = regexp.MustCompile(`ended with[: ]\s*([^.<]+)`)
	witnessSuffixRe   = regexp.MustCompile(`name ended with\s*([^.<]+)`)
	fireIdentityRe    = regexp.MustCompile(`(?i)identity:\s*(.+)$`)
	fireSuffixRe      = regexp.MustCompile(`(?i)ended with[: ]\s*(.+)$`)
	identityCharsRe   = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// crimeRule maps page keywords to a crime type. Rules are tried in order.
type crimeRule struct {
	keywords []string
	crime    model.CrimeType
}

var crimeRules = []crimeRule{
	{keywords: []string{"BIZ TORCH", "Torch"}, crime: model.CrimeTorch},
	{keywords: []string{"HACK", "Hacking"}, crime: model.CrimeHack},
	{keywords: []string{"Armed Robbery"}, crime: model.CrimeArmedRobbery},
	{keywords: []string{"MUGGING", "Mugging"}, crime: model.CrimeMugging},
	{keywords: []string{"Breaking"}, crime: model.CrimeBreakAndEnter},
}

// classifyCrime returns the crime type of the first rule with a keyword in text
func classifyCrime(text string) model.CrimeType {
	for _, rule := range crimeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.crime
			}
		}
	}
	return model.CrimeUnknown
}

// firstGroup returns the trimmed first capture group of re in text
func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return cleanName(m[1])
}

// cleanName trims whitespace and surrounding quotes from a captured name
func cleanName(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`+"\u2018\u2019\u201c\u201d ")
}

// fireSuffix returns the identity hint of a fire investigation. Either form
// only feeds the name-ending clue; the investigation never names a suspect.
func fireSuffix(text string) string {
	for _, re := range []*regexp.Regexp{fireSuffixRe, fireIdentityRe} {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			return identityCharsRe.ReplaceAllString(m[1], "")
		}
	}
	return ""
}

// section returns the text following label up to the next known label
func section(text, label string) (string, bool) {
	idx := strings.Index(text, label)
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(label):]
	end := len(rest)
	for _, other := range knownLabels {
		if other == label {
			continue
		}
		if i := strings.Index(rest, other); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(rest[:end]), true
}
