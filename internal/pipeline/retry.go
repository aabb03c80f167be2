package pipeline

import (
	"math/rand/v2"
	"time"
)

// Suggested waits before the next invocation
var (
	progressWait = waitRange{30 * time.Second, 45 * time.Second}
	idleWait     = waitRange{10 * time.Minute, 15 * time.Minute}
	tooFastWait  = waitRange{33 * time.Second, 42 * time.Second}
	waitingWait  = waitRange{5 * time.Minute, 7 * time.Minute}
)

type waitRange struct {
	min, max time.Duration
}

func (w waitRange) pick() time.Duration {
	return w.min + rand.N(w.max-w.min+1)
}

// RetryAfter suggests how long the caller should wait before the next
// invocation: a short anti-spam pause after progress, a long idle wait
// when nothing was available
func RetryAfter(progress bool) time.Duration {
	if progress {
		return progressWait.pick()
	}
	return idleWait.pick()
}
