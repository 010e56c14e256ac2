// Package poll provides the cancellable refresh loop the widgets use in
// place of browser interval timers. Each widget owns its pollers and stops
// them on teardown, so remounting never leaks a loop.
package poll

import (
	"context"
	"sync"
	"time"
)

// Poller runs a function immediately on start and then on a fixed interval
// until stopped.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}
}

// New creates a poller. fn must tolerate overlapping data (last response
// wins); it is never invoked concurrently with itself.
func New(interval time.Duration, fn func(context.Context)) *Poller {
	return &Poller{interval: interval, fn: fn}
}

// Start begins polling. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.trigger = make(chan struct{}, 1)
	p.done = make(chan struct{})

	go p.run(ctx, p.trigger, p.done)
}

func (p *Poller) run(ctx context.Context, trigger chan struct{}, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fn(ctx)
		case <-trigger:
			p.fn(ctx)
			ticker.Reset(p.interval)
		}
	}
}

// Trigger requests an immediate refresh (used right after a mutation).
// No-op when the poller is not running; coalesces when one is pending.
func (p *Poller) Trigger() {
	p.mu.Lock()
	trigger := p.trigger
	p.mu.Unlock()
	if trigger == nil {
		return
	}
	select {
	case trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for the in-flight invocation to return.
// Safe to call on a poller that was never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.trigger = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
