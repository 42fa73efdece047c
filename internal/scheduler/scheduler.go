// Package scheduler finalizes auctions that see no further traffic. End
// conditions are only evaluated inside calls, so an auction whose window
// expired quietly needs an external nudge; the sweeper provides it and
// settles whatever has ended.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/observability"
	"dutch-auction-lab/internal/registry"
)

// Sweeper periodically evaluates every live auction and settles the ones
// that have ended.
type Sweeper struct {
	registry *registry.Registry
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// Options contains configuration for creating a Sweeper.
type Options struct {
	Registry *registry.Registry
	Interval time.Duration // Default: 5s
	Logger   *log.Logger
	Now      func() time.Time // Default: time.Now, overridable in tests
}

// New creates a sweeper over the registry.
func New(opts Options) *Sweeper {
	interval := opts.Interval
	if interval == 0 {
		interval = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		registry: opts.Registry,
		interval: interval,
		logger:   logger,
		now:      now,
	}
}

// Run sweeps on the configured interval. It blocks until the context is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Printf("Sweeper started, interval: %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// One final pass so auctions that ended during shutdown still settle.
			s.Sweep(ctx)
			s.logger.Println("Sweeper stopping...")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one evaluation pass over all live auctions and settles every
// one that has ended. It returns the number of auctions settled.
func (s *Sweeper) Sweep(ctx context.Context) int {
	started := time.Now()
	now := s.now()
	settled := 0

	for _, id := range s.registry.IDs() {
		ended, err := s.registry.Evaluate(ctx, id, now)
		if err != nil {
			s.logger.Printf("Error evaluating auction %s: %v", id, err)
			continue
		}
		if !ended {
			continue
		}

		if _, err := s.registry.Settle(ctx, id, now); err != nil {
			if errors.Is(err, domain.ErrAlreadySettled) {
				continue
			}
			// ErrTransferFailed settlements still count: the result is
			// committed and recipients retry via Withdraw.
			if errors.Is(err, domain.ErrTransferFailed) {
				settled++
				continue
			}
			s.logger.Printf("Error settling auction %s: %v", id, err)
			continue
		}
		settled++
		s.logger.Printf("Auction %s settled by sweep", id)
	}

	observability.RecordSweep(time.Since(started).Seconds())
	return settled
}
