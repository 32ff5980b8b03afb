package checkout

import (
	"sync/atomic"
	"time"
)

// attemptClock hands out strictly increasing millisecond stamps so two
// checkouts in the same millisecond still get distinct attempt ids.
type attemptClock struct {
	last atomic.Int64
	now  func() time.Time
}

func newAttemptClock(now func() time.Time) *attemptClock {
	if now == nil {
		now = time.Now
	}
	return &attemptClock{now: now}
}

func (c *attemptClock) Next() int64 {
	for {
		last := c.last.Load()
		next := c.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if c.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
