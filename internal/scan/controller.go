package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/seitool/sei/internal/rules"
)

// Outcome is the terminal result of a controlled scan.
type Outcome struct {
	Payload *Payload
	Err     error
}

// Cancelled reports whether the scan ended by cancellation rather
// than completing or failing.
func (o Outcome) Cancelled() bool {
	return errors.Is(o.Err, context.Canceled)
}

// Controller serializes scan execution: at most one scan is active at
// a time. Starting a new scan first cancels the active one and waits
// for it to settle.
type Controller struct {
	startMu sync.Mutex // serializes Start callers

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	scanner *Scanner
}

// NewController creates an idle controller.
func NewController() *Controller {
	return &Controller{}
}

// Start launches a scan on a background goroutine and returns a
// channel that receives exactly one Outcome. Any scan already running
// is cancelled and awaited first.
func (c *Controller) Start(parent context.Context, root string, ruleList []rules.Rule, opts *Options, onProgress ProgressFunc) <-chan Outcome {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.Cancel()
	c.Wait()

	ctx, cancel := context.WithCancel(parent)
	scanner := NewScanner(opts)
	scanner.SetProgressFunc(onProgress)
	done := make(chan struct{})
	outcome := make(chan Outcome, 1)

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.scanner = scanner
	c.mu.Unlock()

	go func() {
		payload, err := scanner.Run(ctx, root, ruleList)
		cancel()

		c.mu.Lock()
		if c.done == done {
			c.cancel = nil
			c.done = nil
			c.scanner = nil
		}
		c.mu.Unlock()

		outcome <- Outcome{Payload: payload, Err: err}
		close(done)
	}()

	return outcome
}

// Cancel requests cancellation of the active scan, if any. Idempotent
// and safe to call after the scan has finished.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the active scan has settled, if one is running.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Pause suspends the active scan, if any.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanner != nil {
		c.scanner.Pauser().Pause()
	}
}

// Resume releases a paused scan, if any.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanner != nil {
		c.scanner.Pauser().Resume()
	}
}
