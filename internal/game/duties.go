package game

import (
	"context"
	"log/slog"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/logging"
)

// Duties requests police duties. Only forensics is used here.
type Duties struct {
	b      browser.Browser
	desk   *Desk
	logger *slog.Logger
}

// NewDuties creates the police duties adapter
func NewDuties(b browser.Browser, desk *Desk, logger *slog.Logger) *Duties {
	return &Duties{
		b:      b,
		desk:   desk,
		logger: logging.OrDefault(logger, "duties"),
	}
}

// RequestForensics asks for a forensics sweep on the current case and
// returns to the police screen. It spends the action resource.
func (d *Duties) RequestForensics(ctx context.Context) bool {
	if !d.b.Navigate(ctx, incomeMenu, dutiesLink) {
		d.logger.Warn("could not reach police duties")
		return false
	}
	if !d.b.Click(ctx, forensicsDuty) || !d.b.Click(ctx, dutySubmit) {
		d.logger.Warn("could not submit forensics duty")
		return false
	}
	if err := d.desk.pause(ctx); err != nil {
		return false
	}

	if !d.b.Navigate(ctx, cityMenu, policeMenu) {
		d.logger.Warn("could not return to the case after requesting forensics")
	}
	_ = d.desk.pause(ctx)
	d.logger.Info("forensics requested")
	return true
}
