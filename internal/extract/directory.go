package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DirectoryResults are the names a phonebook search listed
type DirectoryResults struct {
	Alive    []string
	Deceased []string
}

// ParseDirectory reads a phonebook results page. Each result block is an
// h1 heading in #holder_top followed by a #holder_content list of profile
// links; forum account blocks are ignored.
func ParseDirectory(markup string) (DirectoryResults, error) {
	var res DirectoryResults

	doc, err := parseDocument(markup)
	if err != nil {
		return res, fmt.Errorf("parse directory: %w", err)
	}

	doc.Find("#holder_top h1").Each(func(_ int, h1 *goquery.Selection) {
		title := strings.ToLower(normalize(h1.Text()))
		content := h1.Closest("#holder_top").NextAllFiltered("#holder_content").First()
		names := usernames(content)

		switch {
		case strings.Contains(title, "obituar"):
			res.Deceased = append(res.Deceased, names...)
		case strings.Contains(title, "people accounts in the phonebook"):
			res.Alive = append(res.Alive, names...)
		}
	})
	return res, nil
}
