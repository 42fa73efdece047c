// Package auction implements the batch Dutch auction state machine and its
// one-shot settlement.
//
// Every PlaceBid, Evaluate and Settle call on an instance is applied as one
// indivisible unit under the instance mutex; there is no interleaving of
// read/decide/mutate across calls. Different instances are independent.
//
// Time is always supplied by the caller. There is no internal clock, so a
// wrapping scheduler is required to finalize auctions that see no further
// calls after expiry.
package auction

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/ledger"
	"dutch-auction-lab/internal/numeric"
	"dutch-auction-lab/internal/pricing"
	"dutch-auction-lab/internal/treasury"
)

// Auction is one fixed-supply Dutch auction round.
type Auction struct {
	id  string
	cfg domain.AuctionConfig

	schedule *pricing.Schedule
	ledger   *ledger.Ledger
	funds    treasury.FundTreasury
	tokens   treasury.TokenLedger
	events   domain.EventSink

	mu            sync.Mutex
	state         domain.AuctionState
	clearingPrice decimal.Decimal // frozen at the Ended transition
	endedAt       time.Time
	result        *domain.ClearingResult
}

// New creates an open auction for a validated config. The token ledger must
// already hold the full supply.
func New(id string, cfg domain.AuctionConfig, funds treasury.FundTreasury, tokens treasury.TokenLedger, events domain.EventSink) *Auction {
	if events == nil {
		events = domain.NopSink{}
	}
	return &Auction{
		id:       id,
		cfg:      cfg,
		schedule: pricing.NewSchedule(cfg),
		ledger:   ledger.New(),
		funds:    funds,
		tokens:   tokens,
		events:   events,
		state:    domain.StateOpen,
	}
}

// ID returns the opaque auction identifier.
func (a *Auction) ID() string { return a.id }

// Config returns the immutable auction parameters.
func (a *Auction) Config() domain.AuctionConfig { return a.cfg }

// PlaceBid appends a funded commitment and immediately re-evaluates end
// conditions with the post-append total. Fails with ErrAuctionNotOpen once
// the auction has ended, ErrZeroAmount for non-positive amounts, and the
// treasury's error when the deposit fails; in every case no state changes.
func (a *Auction) PlaceBid(bidder string, amount decimal.Decimal, now time.Time) (domain.BidEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Observe expiry before accepting: a bid arriving after the window
	// closed must not enter the ledger.
	a.evaluateLocked(now)

	if a.state != domain.StateOpen {
		return domain.BidEntry{}, domain.ErrAuctionNotOpen
	}

	if !amount.IsPositive() {
		return domain.BidEntry{}, domain.ErrZeroAmount
	}

	// Funds enter custody before the entry exists: a failed deposit rejects
	// the bid with the ledger untouched, so settlement can never allocate
	// against funds that were never taken in.
	if err := a.funds.RecordDeposit(bidder, amount); err != nil {
		return domain.BidEntry{}, err
	}
	entry, err := a.ledger.Append(bidder, amount, now)
	if err != nil {
		return domain.BidEntry{}, err
	}

	a.events.Publish(domain.BidRecorded{
		AuctionID: a.id,
		Sequence:  entry.Sequence,
		Bidder:    bidder,
		Amount:    amount,
		At:        now,
	})

	a.evaluateLocked(now)
	return entry, nil
}

// Evaluate applies the lazy end-condition check. It returns true once the
// auction is no longer open. Safe to call at any time; a no-op after the
// Ended transition.
func (a *Auction) Evaluate(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.evaluateLocked(now)
	return a.state != domain.StateOpen
}

// evaluateLocked transitions Open→Ended when the window expired or demand
// at the current price covers supply, freezing the clearing price at the
// moment the condition is observed. Caller holds a.mu.
func (a *Auction) evaluateLocked(now time.Time) {
	if a.state != domain.StateOpen {
		return
	}

	price := a.schedule.PriceAt(now)

	if !now.Before(a.cfg.EndTime()) {
		a.endLocked(price, now) // price == reserved price here
		return
	}

	// demand(now) = floor(totalCommitment / currentPrice) in asset units.
	// This heuristic only decides when the auction ends; the settlement
	// walk is the allocation authority and always enforces the supply cap.
	demand, ok := numeric.FloorQuoInt64(a.ledger.TotalCommitment(), price)
	if !ok || demand >= a.cfg.Supply {
		a.endLocked(price, now)
	}
}

func (a *Auction) endLocked(clearingPrice decimal.Decimal, now time.Time) {
	a.state = domain.StateEnded
	a.clearingPrice = clearingPrice
	a.endedAt = now

	a.events.Publish(domain.AuctionEnded{
		AuctionID:     a.id,
		ClearingPrice: clearingPrice,
		At:            now,
	})
}

// Status is a point-in-time snapshot for status queries. It does not
// mutate state.
type Status struct {
	ID              string
	State           domain.AuctionState
	CurrentPrice    decimal.Decimal // frozen clearing price once ended
	TotalCommitment decimal.Decimal
	Bids            int
	EndTime         time.Time
	EndedAt         time.Time // zero while open
}

// Status reports the auction as of now without triggering transitions;
// CurrentPrice reflects the schedule while open and the frozen clearing
// price afterwards.
func (a *Auction) Status(now time.Time) Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	price := a.clearingPrice
	if a.state == domain.StateOpen {
		price = a.schedule.PriceAt(now)
	}
	return Status{
		ID:              a.id,
		State:           a.state,
		CurrentPrice:    price,
		TotalCommitment: a.ledger.TotalCommitment(),
		Bids:            a.ledger.Len(),
		EndTime:         a.cfg.EndTime(),
		EndedAt:         a.endedAt,
	}
}

// Result returns the stored clearing result, or nil before settlement.
func (a *Auction) Result() *domain.ClearingResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}
