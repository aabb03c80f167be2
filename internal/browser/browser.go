// Package browser is the only way the engine touches the game UI. The
// Browser interface is deliberately small: menus, text reads, attribute
// reads, clicks and typing, each reporting success as a bool so a missing
// or stale element is never mistaken for an empty value.
package browser

import (
	"context"
	"errors"
	"time"
)

// Locator addresses one element by XPath
type Locator string

// ErrTransient marks a UI read that failed even after a retry. Callers
// treat it as "not yet available", never as negative evidence.
var ErrTransient = errors.New("transient ui failure")

// Browser drives the game page
type Browser interface {
	// Navigate clicks each menu entry in turn. An entry starting with
	// "http" or "/" is loaded as a URL instead.
	Navigate(ctx context.Context, menuPath ...Locator) bool
	ReadText(ctx context.Context, loc Locator) (string, bool)
	ReadAttribute(ctx context.Context, loc Locator, name string) (string, bool)
	Click(ctx context.Context, loc Locator) bool
	SendKeys(ctx context.Context, loc Locator, text string) bool
	Back(ctx context.Context) bool
}

// retryPause separates the first read from its single retry
var retryPause = 750 * time.Millisecond

// ReadTextRetry reads text, retrying once after a short pause
func ReadTextRetry(ctx context.Context, b Browser, loc Locator) (string, error) {
	return retry(ctx, func() (string, bool) { return b.ReadText(ctx, loc) })
}

// ReadAttributeRetry reads an attribute, retrying once after a short pause
func ReadAttributeRetry(ctx context.Context, b Browser, loc Locator, name string) (string, error) {
	return retry(ctx, func() (string, bool) { return b.ReadAttribute(ctx, loc, name) })
}

func retry(ctx context.Context, read func() (string, bool)) (string, error) {
	if v, ok := read(); ok {
		return v, nil
	}
	if err := Sleep(ctx, retryPause); err != nil {
		return "", err
	}
	if v, ok := read(); ok {
		return v, nil
	}
	return "", ErrTransient
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
