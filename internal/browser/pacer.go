package browser

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Action classes paced independently
const (
	ActionNavigate = "navigate"
	ActionClick    = "click"
	ActionType     = "type"
	ActionRead     = "read"
)

// Pacer spaces out UI actions per action class so the session never
// clicks faster than a person could
type Pacer struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewPacer creates a pacer allowing actionsPerSecond per class. A
// non-positive rate disables pacing.
func NewPacer(actionsPerSecond float64, burst int) *Pacer {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(actionsPerSecond)
	if actionsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Pacer{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until an action of the given class may run
func (p *Pacer) Wait(ctx context.Context, action string) error {
	return p.limiter(action).Wait(ctx)
}

// Allow reports whether an action may run now, consuming a token if so
func (p *Pacer) Allow(action string) bool {
	return p.limiter(action).Allow()
}

// SetActionRate overrides the pace of one action class
func (p *Pacer) SetActionRate(action string, actionsPerSecond float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if burst <= 0 {
		burst = p.defaultBurst
	}
	p.limiters[action] = rate.NewLimiter(rate.Limit(actionsPerSecond), burst)
}

func (p *Pacer) limiter(action string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[action]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists := p.limiters[action]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(p.defaultRate, p.defaultBurst)
	p.limiters[action] = limiter
	return limiter
}

// paced wraps a Browser so every action first clears the pacer
type paced struct {
	next  Browser
	pacer *Pacer
}

// Paced returns b with every action gated by p. Reads are paced under
// ActionRead, which callers may leave unlimited with SetActionRate.
func Paced(b Browser, p *Pacer) Browser {
	return &paced{next: b, pacer: p}
}

func (b *paced) Navigate(ctx context.Context, menuPath ...Locator) bool {
	if b.pacer.Wait(ctx, ActionNavigate) != nil {
		return false
	}
	return b.next.Navigate(ctx, menuPath...)
}

func (b *paced) ReadText(ctx context.Context, loc Locator) (string, bool) {
	if b.pacer.Wait(ctx, ActionRead) != nil {
		return "", false
	}
	return b.next.ReadText(ctx, loc)
}

func (b *paced) ReadAttribute(ctx context.Context, loc Locator, name string) (string, bool) {
	if b.pacer.Wait(ctx, ActionRead) != nil {
		return "", false
	}
	return b.next.ReadAttribute(ctx, loc, name)
}

func (b *paced) Click(ctx context.Context, loc Locator) bool {
	if b.pacer.Wait(ctx, ActionClick) != nil {
		return false
	}
	return b.next.Click(ctx, loc)
}

func (b *paced) SendKeys(ctx context.Context, loc Locator, text string) bool {
	if b.pacer.Wait(ctx, ActionType) != nil {
		return false
	}
	return b.next.SendKeys(ctx, loc, text)
}

func (b *paced) Back(ctx context.Context) bool {
	if b.pacer.Wait(ctx, ActionNavigate) != nil {
		return false
	}
	return b.next.Back(ctx)
}
