package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// settleSleep lets the page catch up after an action. Tests replace it.
var settleSleep = browser.Sleep

// Tray banners
const (
	BannerTooFast = "you must wait at least 30 seconds"
	BannerNoCases = "there are currently no new cases"
	BannerDead    = "is now dead"
)

// Tray is what the unassigned-cases screen showed
type Tray struct {
	Banner string // Lower-cased fail box text, empty when none
	Rows   []model.TrayRow
}

// Desk drives the police screens: the current case, the in-tray and the
// reported-cases list
type Desk struct {
	b      browser.Browser
	settle time.Duration
	logger *slog.Logger
}

// NewDesk creates a desk over b. settle is the pause after actions that
// change the page.
func NewDesk(b browser.Browser, settle time.Duration, logger *slog.Logger) *Desk {
	return &Desk{
		b:      b,
		settle: settle,
		logger: logging.OrDefault(logger, "desk"),
	}
}

// OpenPolice shows the current case screen and reports whether a case is
// active. The red fail box is only shown when no case is assigned.
func (d *Desk) OpenPolice(ctx context.Context) (bool, error) {
	if !d.b.Navigate(ctx, cityMenu, policeMenu) {
		return false, fmt.Errorf("open police: %w", browser.ErrTransient)
	}
	if err := d.pause(ctx); err != nil {
		return false, err
	}
	_, hasFailBox := d.b.ReadText(ctx, failBox)
	return !hasFailBox, nil
}

// OpenTray opens the unassigned cases and reads its banner and rows
func (d *Desk) OpenTray(ctx context.Context) (Tray, error) {
	if !d.b.Click(ctx, unassignedLink) {
		return Tray{}, fmt.Errorf("open unassigned cases: %w", browser.ErrTransient)
	}
	if err := d.pause(ctx); err != nil {
		return Tray{}, err
	}

	tray := Tray{Banner: d.Banner(ctx)}
	if strings.Contains(tray.Banner, BannerTooFast) || strings.Contains(tray.Banner, BannerNoCases) {
		return tray, nil
	}

	rows, err := d.readRows(ctx)
	if err != nil {
		return Tray{}, fmt.Errorf("read in-tray: %w", err)
	}
	tray.Rows = rows
	return tray, nil
}

// OpenReported opens the reported cases list and reads its rows
func (d *Desk) OpenReported(ctx context.Context) ([]model.TrayRow, error) {
	if !d.b.Navigate(ctx, policeIcon, reportedLink) {
		return nil, fmt.Errorf("open reported cases: %w", browser.ErrTransient)
	}
	if err := d.pause(ctx); err != nil {
		return nil, err
	}
	rows, err := d.readRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read reported cases: %w", err)
	}
	return rows, nil
}

// SelectCase picks a listed case and opens it
func (d *Desk) SelectCase(ctx context.Context, caseID int) bool {
	if !d.b.Click(ctx, caseRadio(caseID)) || !d.b.Click(ctx, selectButton) {
		d.logger.Warn("could not open case row", "case_id", caseID)
		return false
	}
	return d.pause(ctx) == nil
}

// ReadCase returns the markup of the open case body
func (d *Desk) ReadCase(ctx context.Context) (string, error) {
	markup, err := browser.ReadAttributeRetry(ctx, d.b, caseBody, "innerHTML")
	if err != nil {
		return "", fmt.Errorf("read case body: %w", err)
	}
	if strings.TrimSpace(markup) == "" {
		return "", fmt.Errorf("read case body: empty: %w", browser.ErrTransient)
	}
	return markup, nil
}

// RequestEvidence presses the button that collects one kind of evidence.
// Travel additionally acknowledges that there is no travel evidence.
func (d *Desk) RequestEvidence(ctx context.Context, kind model.EvidenceKind, torch bool) bool {
	var ok bool
	switch kind {
	case model.EvidenceFireInvestigation:
		ok = d.b.Click(ctx, caseButton(buttonFire))
	case model.EvidenceFingerprint:
		ok = d.b.Click(ctx, dustButton(torch))
	case model.EvidenceDNA:
		ok = d.b.Click(ctx, swabButton(torch))
	case model.EvidenceTravel:
		ok = d.b.Click(ctx, caseButton(buttonTravel)) &&
			d.b.Click(ctx, noEvidenceBox) &&
			d.b.Click(ctx, travelSubmit)
	default:
		return false
	}
	if !ok {
		d.logger.Warn("evidence request did not complete", "kind", kind)
		return false
	}
	return d.pause(ctx) == nil
}

// EnterSuspect types the suspect name into the case
func (d *Desk) EnterSuspect(ctx context.Context, name string) bool {
	if !d.b.SendKeys(ctx, suspectInput, name) {
		return false
	}
	return d.pause(ctx) == nil
}

// Update submits the entered suspect
func (d *Desk) Update(ctx context.Context, torch bool) bool {
	if !d.b.Click(ctx, updateButton(torch)) {
		return false
	}
	return d.pause(ctx) == nil
}

// Banner returns the lower-cased fail box text, or "" when there is none
func (d *Desk) Banner(ctx context.Context) string {
	text, ok := d.b.ReadAttribute(ctx, failBox, "innerText")
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(text))
}

// Close, Bury and Return settle the open case
func (d *Desk) Close(ctx context.Context) bool  { return d.press(ctx, buttonClose) }
func (d *Desk) Bury(ctx context.Context) bool   { return d.press(ctx, buttonBury) }
func (d *Desk) Return(ctx context.Context) bool { return d.press(ctx, buttonReturn) }

// PlayerName reads the logged-in character name from the side bar
func (d *Desk) PlayerName(ctx context.Context) (string, bool) {
	name, ok := d.b.ReadText(ctx, playerName)
	name = strings.TrimSpace(name)
	return name, ok && name != ""
}

func (d *Desk) press(ctx context.Context, button int) bool {
	if !d.b.Click(ctx, caseButton(button)) {
		return false
	}
	return d.pause(ctx) == nil
}

func (d *Desk) readRows(ctx context.Context) ([]model.TrayRow, error) {
	markup, err := browser.ReadAttributeRetry(ctx, d.b, contentRoot, "innerHTML")
	if err != nil {
		return nil, err
	}
	return extract.ParseTray(markup)
}

func (d *Desk) pause(ctx context.Context) error {
	return settleSleep(ctx, d.settle)
}
