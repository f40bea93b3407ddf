package auth

import (
	"context"
	"sync"
	"time"
)

const DefaultCheckInterval = 5 * time.Minute

// Checker runs a function on a fixed interval until stopped. Stop does not
// wait for the loop, so the function itself may stop its own checker.
type Checker struct {
	interval time.Duration
	tick     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewChecker(interval time.Duration, tick func(ctx context.Context)) *Checker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Checker{interval: interval, tick: tick}
}

// Start launches the loop, replacing a running one.
func (c *Checker) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go c.loop(loopCtx, done)
}

func (c *Checker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Checker) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Done is closed once the most recently started loop has exited.
func (c *Checker) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}
