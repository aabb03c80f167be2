package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/casework/internal/model"
)

var backgroundRe = regexp.MustCompile(`background(?:-color)?:\s*([^;]+)`)

// statusCellOffset is the index of the first status cell (witness) in a row
const statusCellOffset = 3

// ParseTray reads the selectable case rows of a case list page
func ParseTray(markup string) ([]model.TrayRow, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, fmt.Errorf("parse tray: %w", err)
	}

	var rows []model.TrayRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		radio := tr.ChildrenFiltered("td").Find("input[type='radio']").FilterFunction(func(_ int, in *goquery.Selection) bool {
			name, _ := in.Attr("name")
			return strings.Contains(name, "case")
		})
		if radio.Length() == 0 {
			return
		}

		cells := tr.ChildrenFiltered("td")
		row := model.TrayRow{
			CaseID: parseCaseID(cells.Eq(0).Text()),
			Text:   normalize(tr.Text()),
		}
		if value, ok := radio.First().Attr("value"); ok && row.CaseID == 0 {
			row.CaseID = parseCaseID(value)
		}
		row.Whack = strings.Contains(strings.ToLower(row.Text), "whack")
		for col := model.ColWitness; col <= model.ColAutopsy; col++ {
			style, _ := cells.Eq(statusCellOffset + int(col)).Attr("style")
			row.Shades[col] = shade(style)
		}
		rows = append(rows, row)
	})
	return rows, nil
}

// shade extracts the background color of an inline style, lower-cased
// with spaces removed
func shade(style string) string {
	m := backgroundRe.FindStringSubmatch(strings.ToLower(style))
	if len(m) < 2 {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "")
}
