package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gobwas/glob"
	"github.com/ppiankov/casework/internal/model"
)

// DefaultOnlineIgnore matches the header lines of a pasted online list
var DefaultOnlineIgnore = []string{
	"online list*",
	"players online*",
	"local*",
	"copy online list*",
}

var (
	tokenLead  = regexp.MustCompile(`^[-•*\x{200b}\s]+`)
	tokenTrail = regexp.MustCompile(`[\s)\].]+$`)
)

// ParseRegister reads the emergency call register table into bulletins.
// The header row and rows with fewer than four cells are skipped.
func ParseRegister(markup string) ([]model.Bulletin, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, fmt.Errorf("parse register: %w", err)
	}

	rows := doc.Find("table#casestable tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("parse register: no casestable rows")
	}

	var bulletins []model.Bulletin
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 4 {
			return
		}
		cell := func(n int) string { return normalize(cols.Eq(n).Text()) }
		bulletins = append(bulletins, model.Bulletin{
			Time:    cell(0),
			Crime:   cell(1),
			Victim:  cell(2),
			Suspect: cell(3),
		})
	})
	return bulletins, nil
}

// OnlineListParser turns a pasted online list into usernames
type OnlineListParser struct {
	ignore []glob.Glob
}

// NewOnlineListParser compiles the ignore patterns, matched against
// lower-cased lines. Nil patterns mean DefaultOnlineIgnore.
func NewOnlineListParser(patterns []string) (*OnlineListParser, error) {
	if patterns == nil {
		patterns = DefaultOnlineIgnore
	}
	p := &OnlineListParser{}
	for _, pattern := range patterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
		}
		p.ignore = append(p.ignore, g)
	}
	return p, nil
}

// Parse splits the block into names, drops header lines and list markers,
// and deduplicates case-insensitively keeping the first spelling
func (p *OnlineListParser) Parse(block string) []string {
	var users []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || p.ignored(line) {
			continue
		}
		for _, token := range strings.Split(line, ",") {
			token = tokenLead.ReplaceAllString(token, "")
			token = tokenTrail.ReplaceAllString(token, "")
			if token == "" {
				continue
			}
			key := strings.ToLower(token)
			if seen[key] {
				continue
			}
			seen[key] = true
			users = append(users, token)
		}
	}
	return users
}

func (p *OnlineListParser) ignored(line string) bool {
	low := strings.ToLower(line)
	for _, g := range p.ignore {
		if g.Match(low) {
			return true
		}
	}
	return false
}
