package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidderOutcome is the aggregated settlement outcome for one bidder across
// all of their ledger entries.
//
// Invariant: Allocated*ClearingPrice + Refund == total commitment, exactly.
type BidderOutcome struct {
	Bidder    string          `json:"bidder"`
	Allocated int64           `json:"allocated"` // asset units
	Cost      decimal.Decimal `json:"cost"`      // Allocated * clearing price
	Refund    decimal.Decimal `json:"refund"`    // funds returned
}

// ClearingResult is the output of the one-shot settlement pass.
//
// Invariants: sum(Allocated) + UnsoldBurned == supply, and
// Proceeds == sum(Cost).
type ClearingResult struct {
	ClearingPrice decimal.Decimal `json:"clearing_price"`
	Outcomes      []BidderOutcome `json:"outcomes"`      // first-appearance order
	UnsoldBurned  int64           `json:"unsold_burned"` // asset units destroyed
	Proceeds      decimal.Decimal `json:"proceeds"`      // funds payable to the creator
	SettledAt     time.Time       `json:"settled_at"`
}

// Outcome returns the outcome for the given bidder, if any.
func (r *ClearingResult) Outcome(bidder string) (BidderOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Bidder == bidder {
			return o, true
		}
	}
	return BidderOutcome{}, false
}

// TotalAllocated returns the sum of all bidder allocations.
func (r *ClearingResult) TotalAllocated() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += o.Allocated
	}
	return total
}
