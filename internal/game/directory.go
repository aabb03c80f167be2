package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/logging"
)

// Directory is the city phonebook
type Directory struct {
	b      browser.Browser
	desk   *Desk
	logger *slog.Logger
}

// NewDirectory creates the phonebook adapter, pausing between pages like desk
func NewDirectory(b browser.Browser, desk *Desk, logger *slog.Logger) *Directory {
	return &Directory{
		b:      b,
		desk:   desk,
		logger: logging.OrDefault(logger, "directory"),
	}
}

// Search runs a phonebook search and returns every listed name, alive and
// deceased. Filtering by name ending is left to the caller.
func (d *Directory) Search(ctx context.Context, term string) (extract.DirectoryResults, error) {
	if !d.b.Navigate(ctx, cityMenu, phonebookLink) {
		return extract.DirectoryResults{}, fmt.Errorf("open phonebook: %w", browser.ErrTransient)
	}
	if !d.b.SendKeys(ctx, phonebookInput, term) || !d.b.Click(ctx, phonebookSubmit) {
		return extract.DirectoryResults{}, fmt.Errorf("submit phonebook search: %w", browser.ErrTransient)
	}
	if err := d.desk.pause(ctx); err != nil {
		return extract.DirectoryResults{}, err
	}

	markup, err := browser.ReadAttributeRetry(ctx, d.b, contentRoot, "innerHTML")
	if err != nil {
		return extract.DirectoryResults{}, fmt.Errorf("read phonebook results: %w", err)
	}
	res, err := extract.ParseDirectory(markup)
	if err != nil {
		return extract.DirectoryResults{}, err
	}
	d.logger.Debug("phonebook search", "term", term, "alive", len(res.Alive), "deceased", len(res.Deceased))
	return res, nil
}

// LastOnline opens a profile from the search results and reads its last
// online text, then goes back to the results. opened is false when the
// profile link could not be followed.
func (d *Directory) LastOnline(ctx context.Context, name string) (string, bool) {
	if !d.b.Click(ctx, profileLink(name)) {
		return "", false
	}
	_ = d.desk.pause(ctx)

	text, _ := d.b.ReadText(ctx, lastOnlineCell)
	if d.b.Back(ctx) {
		_ = d.desk.pause(ctx)
	}
	return strings.TrimSpace(text), true
}
