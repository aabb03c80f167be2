package game

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// Unknown is reported when a timer could not be read
const Unknown = time.Duration(math.MaxInt64)

const clockAttempts = 3

var clockRetryPause = 2 * time.Second

// HeaderClock reads game timers against the clock in the page header
type HeaderClock struct {
	b      browser.Browser
	logger *slog.Logger
}

// NewHeaderClock creates a clock reading through b
func NewHeaderClock(b browser.Browser, logger *slog.Logger) *HeaderClock {
	return &HeaderClock{b: b, logger: logging.OrDefault(logger, "clock")}
}

// ActionRemaining returns how long until the next action is available, 0
// when it is ready now and Unknown when the timer cannot be read.
func (h *HeaderClock) ActionRemaining(ctx context.Context) time.Duration {
	return h.remaining(ctx, actionTimer)
}

func (h *HeaderClock) remaining(ctx context.Context, timer browser.Locator) time.Duration {
	for attempt := 1; attempt <= clockAttempts; attempt++ {
		nowText, _ := h.b.ReadText(ctx, headerTime)
		endText, _ := h.b.ReadAttribute(ctx, timer, timerEndAttribute)

		now, nowOK := model.ParseGameTime(nowText)
		end, endOK := model.ParseGameTime(endText)
		if nowOK && endOK && !now.IsZero() {
			return max(0, end.Sub(now))
		}

		h.logger.Debug("timer unreadable", "attempt", attempt, "now", nowText, "end", endText)
		if attempt < clockAttempts {
			if err := settleSleep(ctx, clockRetryPause); err != nil {
				break
			}
		}
	}
	h.logger.Warn("giving up on timer", "timer", string(timer))
	return Unknown
}
