package game

import (
	"context"
	"fmt"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/model"
)

// Register is the emergency call register listing public 911 reports
type Register struct {
	b browser.Browser
}

// NewRegister creates the 911 register adapter
func NewRegister(b browser.Browser) *Register {
	return &Register{b: b}
}

// Read opens the register and parses its rows. Online users are not part
// of the page and are left empty.
func (r *Register) Read(ctx context.Context) ([]model.Bulletin, error) {
	if !r.b.Navigate(ctx, cityMenu, policeMenu, registerLink) {
		return nil, fmt.Errorf("open emergency call register: %w", browser.ErrTransient)
	}
	markup, err := browser.ReadAttributeRetry(ctx, r.b, registerTable, "outerHTML")
	if err != nil {
		return nil, fmt.Errorf("read emergency call register: %w", err)
	}
	return extract.ParseRegister(markup)
}
