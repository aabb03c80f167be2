package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/model"
)

// gameSession is a launched, paced browser plus the police desk over it
type gameSession struct {
	session *browser.Session
	browser browser.Browser
	guard   *browser.Guard
	desk    *game.Desk
	state   string
	logger  *slog.Logger
}

// openGame launches the browser described by cfg. Reads are paced four
// times faster than clicks and navigation.
func openGame(cfg *model.Config, logger *slog.Logger) (*gameSession, error) {
	session, err := browser.Launch(cfg.Browser, logger)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	pacer := browser.NewPacer(cfg.Browser.ActionsPerSecond, cfg.Browser.ActionBurst)
	pacer.SetActionRate(browser.ActionRead, cfg.Browser.ActionsPerSecond*4, cfg.Browser.ActionBurst*4)
	b := browser.Paced(session, pacer)

	return &gameSession{
		session: session,
		browser: b,
		guard:   browser.NewGuard(),
		desk:    game.NewDesk(b, cfg.Police.SettleDelay, logger),
		state:   cfg.Browser.StorageState,
		logger:  logger,
	}, nil
}

// Close saves the login state when one is configured and shuts the browser
func (g *gameSession) Close() {
	if g.state != "" {
		if err := os.MkdirAll(filepath.Dir(g.state), 0755); err == nil {
			if err := g.session.SaveState(g.state); err != nil {
				g.logger.Warn("could not save login state", "error", err)
			}
		}
	}
	if err := g.session.Close(); err != nil {
		g.logger.Warn("browser shutdown", "error", err)
	}
}
