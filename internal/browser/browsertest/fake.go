// Package browsertest provides an in-memory Browser for tests
package browsertest

import (
	"context"
	"slices"
	"sync"

	"github.com/ppiankov/casework/internal/browser"
)

// KeyPress records one SendKeys call
type KeyPress struct {
	Locator browser.Locator
	Text    string
}

// Fake is a scriptable page. Elements exist when they have text or
// attributes set; clicks succeed unless the locator is marked failing.
type Fake struct {
	mu sync.Mutex

	texts      map[browser.Locator]string
	attrs      map[browser.Locator]map[string]string
	flaky      map[browser.Locator]int
	failClicks map[browser.Locator]bool
	failKeys   map[browser.Locator]bool

	// OnClick runs after a successful click and may rewrite the page
	OnClick func(f *Fake, loc browser.Locator)

	clicks      []browser.Locator
	keys        []KeyPress
	navigations [][]browser.Locator
	backs       int
}

func New() *Fake {
	return &Fake{
		texts:      make(map[browser.Locator]string),
		attrs:      make(map[browser.Locator]map[string]string),
		flaky:      make(map[browser.Locator]int),
		failClicks: make(map[browser.Locator]bool),
		failKeys:   make(map[browser.Locator]bool),
	}
}

// SetText makes loc readable with the given text. Callers inside OnClick
// already hold the lock, so the setters below do not take it.
func (f *Fake) SetText(loc browser.Locator, text string) {
	f.texts[loc] = text
}

// SetAttr sets one attribute of loc
func (f *Fake) SetAttr(loc browser.Locator, name, value string) {
	if f.attrs[loc] == nil {
		f.attrs[loc] = make(map[string]string)
	}
	f.attrs[loc][name] = value
}

// Remove makes loc disappear from the page
func (f *Fake) Remove(loc browser.Locator) {
	delete(f.texts, loc)
	delete(f.attrs, loc)
}

// Flaky makes the next n reads of loc fail
func (f *Fake) Flaky(loc browser.Locator, n int) {
	f.flaky[loc] = n
}

// FailClick makes clicks on loc fail
func (f *Fake) FailClick(loc browser.Locator) {
	f.failClicks[loc] = true
}

// FailKeys makes typing into loc fail
func (f *Fake) FailKeys(loc browser.Locator) {
	f.failKeys[loc] = true
}

func (f *Fake) Navigate(ctx context.Context, menuPath ...browser.Locator) bool {
	f.mu.Lock()
	f.navigations = append(f.navigations, slices.Clone(menuPath))
	f.mu.Unlock()

	for _, step := range menuPath {
		if !f.Click(ctx, step) {
			return false
		}
	}
	return true
}

func (f *Fake) ReadText(ctx context.Context, loc browser.Locator) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil || f.consumeFlaky(loc) {
		return "", false
	}
	text, ok := f.texts[loc]
	return text, ok
}

func (f *Fake) ReadAttribute(ctx context.Context, loc browser.Locator, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil || f.consumeFlaky(loc) {
		return "", false
	}
	if name == "innerText" {
		text, ok := f.texts[loc]
		return text, ok
	}
	value, ok := f.attrs[loc][name]
	return value, ok
}

func (f *Fake) Click(ctx context.Context, loc browser.Locator) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil || f.failClicks[loc] {
		return false
	}
	f.clicks = append(f.clicks, loc)
	if f.OnClick != nil {
		f.OnClick(f, loc)
	}
	return true
}

func (f *Fake) SendKeys(ctx context.Context, loc browser.Locator, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil || f.failKeys[loc] {
		return false
	}
	f.keys = append(f.keys, KeyPress{Locator: loc, Text: text})
	f.SetAttr(loc, "value", text)
	return true
}

func (f *Fake) Back(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	f.backs++
	return true
}

// Clicks returns every successful click in order
func (f *Fake) Clicks() []browser.Locator {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.clicks)
}

// Clicked reports whether loc was clicked at least once
func (f *Fake) Clicked(loc browser.Locator) bool {
	return slices.Contains(f.Clicks(), loc)
}

// Keys returns every SendKeys call in order
func (f *Fake) Keys() []KeyPress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.keys)
}

// Navigations returns the menu paths passed to Navigate
func (f *Fake) Navigations() [][]browser.Locator {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.navigations)
}

// Backs counts Back calls
func (f *Fake) Backs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backs
}

func (f *Fake) consumeFlaky(loc browser.Locator) bool {
	if f.flaky[loc] > 0 {
		f.flaky[loc]--
		return true
	}
	return false
}

var _ browser.Browser = (*Fake)(nil)
