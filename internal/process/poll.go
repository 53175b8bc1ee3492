package process

import (
	"context"
	"time"

	"github.com/distantorigin/osb-installer/internal/installerr"
)

// Clock is the time source of a Poller
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poller checks a condition at a fixed interval up to a timeout
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
	Clock    Clock
}

// NewPoller creates a poller on the wall clock
func NewPoller(interval, timeout time.Duration) *Poller {
	return &Poller{Interval: interval, Timeout: timeout, Clock: realClock{}}
}

func (p *Poller) clock() Clock {
	if p.Clock == nil {
		return realClock{}
	}
	return p.Clock
}

// Now reads the poller's clock
func (p *Poller) Now() time.Time {
	return p.clock().Now()
}

// Sleep pauses on the poller's clock
func (p *Poller) Sleep(ctx context.Context, d time.Duration) error {
	return p.clock().Sleep(ctx, d)
}

// WaitUntil evaluates pred immediately and then once per interval. It returns
// nil as soon as pred is true, and a timeout error once at least Timeout has
// elapsed without pred becoming true.
func (p *Poller) WaitUntil(ctx context.Context, pred func() bool) error {
	clock := p.clock()

	start := clock.Now()
	for {
		if pred() {
			return nil
		}

		elapsed := clock.Now().Sub(start)
		if elapsed >= p.Timeout {
			return installerr.Errorf(installerr.Timeout, "wait", "condition not met after %s", p.Timeout)
		}

		wait := p.Interval
		if remaining := p.Timeout - elapsed; remaining < wait {
			wait = remaining
		}
		if err := clock.Sleep(ctx, wait); err != nil {
			return installerr.New(installerr.Timeout, "wait", err)
		}
	}
}
