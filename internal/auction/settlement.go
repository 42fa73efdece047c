package auction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/numeric"
)

// Settle computes the clearing allocation exactly once.
//
// The walk visits ledger entries in arrival order against the frozen
// clearing price: each entry is entitled to floor(commitment/price) units,
// capped by remaining capacity, and refunded commitment - allocated*price
// exactly. Once capacity reaches zero every later entry is fully refunded
// by the same arithmetic, no special case.
//
// The state transition to Settled and the stored result strictly precede
// any treasury instruction, so code running during payout can only observe
// terminal state. Treasury failures are reported wrapped in
// ErrTransferFailed but never roll settlement back; affected recipients
// retry via Withdraw.
func (a *Auction) Settle(now time.Time) (*domain.ClearingResult, error) {
	a.mu.Lock()

	// Settlement is itself an external call, so it observes expiry lazily.
	a.evaluateLocked(now)

	switch a.state {
	case domain.StateSettled:
		a.mu.Unlock()
		return nil, domain.ErrAlreadySettled
	case domain.StateOpen:
		a.mu.Unlock()
		return nil, domain.ErrNotEnded
	}

	result := a.clearLocked(now)

	// Authoritative state mutation. Committed before the lock is released,
	// so any call racing the treasury instructions below already observes
	// terminal state.
	a.state = domain.StateSettled
	a.result = result
	a.mu.Unlock()

	err := a.instructTreasury(result)

	a.events.Publish(domain.Settled{
		AuctionID:    a.id,
		UnsoldBurned: result.UnsoldBurned,
		Proceeds:     result.Proceeds,
		At:           now,
	})
	return result, err
}

// clearLocked runs the single-pass capped sequential walk. Caller holds
// a.mu and has verified state == Ended.
func (a *Auction) clearLocked(now time.Time) *domain.ClearingResult {
	price := a.clearingPrice

	var (
		runningAllocated int64
		proceeds         = decimal.Zero
		order            []string
		byBidder         = make(map[string]*domain.BidderOutcome)
	)

	for _, entry := range a.ledger.Entries() {
		capacity := a.cfg.Supply - runningAllocated

		entitlement, ok := numeric.FloorQuoInt64(entry.Commitment, price)
		if !ok || entitlement > capacity {
			entitlement = capacity
		}
		allocated := entitlement

		cost := price.Mul(decimal.NewFromInt(allocated))
		refund := entry.Commitment.Sub(cost)

		out, seen := byBidder[entry.Bidder]
		if !seen {
			out = &domain.BidderOutcome{Bidder: entry.Bidder, Cost: decimal.Zero, Refund: decimal.Zero}
			byBidder[entry.Bidder] = out
			order = append(order, entry.Bidder)
		}
		out.Allocated += allocated
		out.Cost = out.Cost.Add(cost)
		out.Refund = out.Refund.Add(refund)

		runningAllocated += allocated
		proceeds = proceeds.Add(cost)
	}

	outcomes := make([]domain.BidderOutcome, 0, len(order))
	for _, bidder := range order {
		outcomes = append(outcomes, *byBidder[bidder])
	}

	return &domain.ClearingResult{
		ClearingPrice: price,
		Outcomes:      outcomes,
		UnsoldBurned:  a.cfg.Supply - runningAllocated,
		Proceeds:      proceeds,
		SettledAt:     now,
	}
}

// instructTreasury issues burn, proceeds and per-bidder instructions.
// Failures are isolated per recipient and joined into one ErrTransferFailed.
func (a *Auction) instructTreasury(result *domain.ClearingResult) error {
	var failures []error

	if err := a.tokens.Burn(result.UnsoldBurned); err != nil {
		failures = append(failures, fmt.Errorf("burn %d units: %w", result.UnsoldBurned, err))
	}
	if err := a.funds.SchedulePayout(a.cfg.Creator, result.Proceeds); err != nil {
		failures = append(failures, fmt.Errorf("proceeds for %s: %w", a.cfg.Creator, err))
	}
	for _, out := range result.Outcomes {
		if err := a.tokens.CreditAllocation(out.Bidder, out.Allocated); err != nil {
			failures = append(failures, fmt.Errorf("allocation for %s: %w", out.Bidder, err))
		}
		if err := a.funds.SchedulePayout(out.Bidder, out.Refund); err != nil {
			failures = append(failures, fmt.Errorf("refund for %s: %w", out.Bidder, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, errors.Join(failures...))
	}
	return nil
}
