package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

// Pacer enforces a fixed pause after each outbound request.
type Pacer struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer returns a pacer that pauses for delay. A zero delay never blocks.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, sleep: sleepCtx}
}

// Wait blocks for the configured delay. Returns an error if the context is
// cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	if err := p.sleep(ctx, p.delay); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PacedFetcher is a decorator that pauses after every page fetch, whether it
// succeeded or not.
type PacedFetcher struct {
	inner model.PageFetcher
	pacer *Pacer
}

// NewPacedFetcher wraps a PageFetcher with a fixed post-request pause.
func NewPacedFetcher(inner model.PageFetcher, pacer *Pacer) *PacedFetcher {
	return &PacedFetcher{inner: inner, pacer: pacer}
}

// FetchPage delegates to the wrapped fetcher, then waits.
func (f *PacedFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	page, err := f.inner.FetchPage(ctx, url)
	if werr := f.pacer.Wait(ctx); werr != nil && err == nil {
		err = werr
	}
	return page, err
}
