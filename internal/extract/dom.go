package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var spaceRun = regexp.MustCompile(`\s+`)

// parseDocument parses a page or fragment into a queryable document
func parseDocument(markup string) (*goquery.Document, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("empty markup")
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// normalize collapses whitespace runs and trims
func normalize(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(strings.ReplaceAll(s, "\u00a0", " "), " "))
}

// labelCell finds the value cell that follows the cell carrying label.
// An exact label cell wins over one that merely contains the label.
func labelCell(doc *goquery.Document, label string) (*goquery.Selection, bool) {
	var exact, loose *goquery.Selection
	doc.Find("td, th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalize(s.Text())
		if strings.EqualFold(text, label) {
			exact = s
			return false
		}
		if loose == nil && strings.Contains(strings.ToLower(text), strings.ToLower(label)) && s.Find("td").Length() == 0 {
			loose = s
		}
		return true
	})

	hit := exact
	if hit == nil {
		hit = loose
	}
	if hit == nil {
		return nil, false
	}
	value := hit.NextAllFiltered("td").First()
	if value.Length() == 0 {
		return nil, false
	}
	return value, true
}

// usernameFromHref returns the username query parameter of a profile link
func usernameFromHref(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("username"))
}

// usernames lists the profile names linked from s, in document order
func usernames(s *goquery.Selection) []string {
	var names []string
	s.Find("a[href*='username=']").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if name := usernameFromHref(href); name != "" {
			names = append(names, name)
		}
	})
	return names
}
