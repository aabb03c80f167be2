package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// Session is a Browser backed by a Playwright Chromium page
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	baseURL string
	logger  *slog.Logger
}

// Launch starts Chromium with the configured viewport, proxy and stored
// session state. The caller owns the returned session and must Close it.
func Launch(cfg model.BrowserConfig, logger *slog.Logger) (*Session, error) {
	logger = logging.OrDefault(logger, "browser")

	proxy, err := NewProxy(cfg.HTTPProxy, cfg.ProxyBypass)
	if err != nil {
		return nil, err
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Proxy:    proxy,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
	}
	if cfg.StorageState != "" {
		if _, statErr := os.Stat(cfg.StorageState); statErr == nil {
			contextOpts.StorageStatePath = playwright.String(cfg.StorageState)
		} else {
			logger.Warn("storage state not found, starting without a session", "path", cfg.StorageState)
		}
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("create page: %w", err)
	}
	page.SetDefaultTimeout(float64(cfg.Timeout.Milliseconds()))

	s := &Session{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
	if s.baseURL != "" {
		if _, err := page.Goto(s.baseURL); err != nil {
			logger.Warn("initial navigation failed", "url", s.baseURL, "error", err)
		}
	}
	return s, nil
}

// Close releases the page, context, browser and driver
func (s *Session) Close() error {
	return errors.Join(
		s.page.Close(),
		s.context.Close(),
		s.browser.Close(),
		s.pw.Stop(),
	)
}

// SaveState writes cookies and local storage so the next launch reuses the login
func (s *Session) SaveState(path string) error {
	if _, err := s.context.StorageState(path); err != nil {
		return fmt.Errorf("save storage state: %w", err)
	}
	return nil
}

func (s *Session) locate(loc Locator) playwright.Locator {
	return s.page.Locator("xpath=" + string(loc)).First()
}

func (s *Session) Navigate(ctx context.Context, menuPath ...Locator) bool {
	for _, step := range menuPath {
		if ctx.Err() != nil {
			return false
		}
		target := string(step)
		if strings.HasPrefix(target, "http") || (strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")) {
			if strings.HasPrefix(target, "/") {
				target = s.baseURL + target
			}
			if _, err := s.page.Goto(target); err != nil {
				s.logger.Debug("goto failed", "url", target, "error", err)
				return false
			}
			continue
		}
		if !s.Click(ctx, step) {
			return false
		}
	}
	return true
}

func (s *Session) ReadText(ctx context.Context, loc Locator) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	text, err := s.locate(loc).InnerText()
	if err != nil {
		s.logger.Debug("read text failed", "locator", loc, "error", err)
		return "", false
	}
	return strings.TrimSpace(text), true
}

// ReadAttribute reads a DOM attribute. innerHTML, outerHTML, innerText and
// value are read as element properties.
func (s *Session) ReadAttribute(ctx context.Context, loc Locator, name string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	el := s.locate(loc)

	var (
		value string
		err   error
	)
	switch name {
	case "innerHTML":
		value, err = el.InnerHTML()
	case "innerText":
		value, err = el.InnerText()
	case "value":
		value, err = el.InputValue()
	case "outerHTML":
		var raw any
		raw, err = el.Evaluate("el => el.outerHTML", nil)
		value, _ = raw.(string)
	default:
		if n, countErr := el.Count(); countErr != nil || n == 0 {
			return "", false
		}
		value, err = el.GetAttribute(name)
	}
	if err != nil {
		s.logger.Debug("read attribute failed", "locator", loc, "name", name, "error", err)
		return "", false
	}
	return value, true
}

func (s *Session) Click(ctx context.Context, loc Locator) bool {
	if ctx.Err() != nil {
		return false
	}
	if err := s.locate(loc).Click(); err != nil {
		s.logger.Debug("click failed", "locator", loc, "error", err)
		return false
	}
	return true
}

// SendKeys replaces the field content with text
func (s *Session) SendKeys(ctx context.Context, loc Locator, text string) bool {
	if ctx.Err() != nil {
		return false
	}
	if err := s.locate(loc).Fill(text); err != nil {
		s.logger.Debug("send keys failed", "locator", loc, "error", err)
		return false
	}
	return true
}

func (s *Session) Back(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, err := s.page.GoBack(); err != nil {
		s.logger.Debug("back failed", "error", err)
		return false
	}
	return true
}
