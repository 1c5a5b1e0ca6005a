package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const zeroDisplay = "00:00"

// Clock tracks when the session started and renders the elapsed time as
// mm:ss. Minutes keep counting past 59.
type Clock struct {
	mu      sync.Mutex
	start   time.Time
	started bool
	display string
	now     func() time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{display: zeroDisplay, now: now}
}

// Start sets the start epoch unless one is already set.
func (c *Clock) Start(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.start = t
		c.started = true
	}
}

func (c *Clock) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Tick recomputes the display for now and returns it.
func (c *Clock) Tick(now time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		c.display = FormatDuration(now.Sub(c.start))
	}
	return c.display
}

func (c *Clock) Reset() {
	c.mu.Lock()
	c.start = time.Time{}
	c.started = false
	c.display = zeroDisplay
	c.mu.Unlock()
}

func (c *Clock) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Run ticks every interval until ctx is done.
func (c *Clock) Run(ctx context.Context, interval time.Duration, onTick func(string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d := c.Tick(c.now())
			if onTick != nil {
				onTick(d)
			}
		}
	}
}

// FormatDuration renders whole seconds as zero-padded mm:ss. Negative
// durations render as 00:00.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
