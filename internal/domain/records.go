package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionRecord is the persisted snapshot of an auction. The in-memory
// engine remains the authority while the process runs; records exist for
// audit and restart inspection.
type AuctionRecord struct {
	ID            string
	Creator       string
	Symbol        string
	Name          string
	Supply        int64
	StartPrice    decimal.Decimal
	ReservedPrice decimal.Decimal
	StartTime     time.Time
	DurationSec   int64
	State         string // StateName* constants

	// Set once the auction ends.
	ClearingPrice *decimal.Decimal
	EndedAt       *time.Time

	// Set once the auction settles.
	SettledAt *time.Time

	CreatedAt time.Time
}

// BidEvent is the persisted form of one ledger entry.
type BidEvent struct {
	AuctionID string          `json:"auction_id"`
	Sequence  uint64          `json:"sequence"`
	Bidder    string          `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// SettlementRecord is the persisted clearing result, written atomically as
// a single row per auction.
type SettlementRecord struct {
	AuctionID     string
	ClearingPrice decimal.Decimal
	UnsoldBurned  int64
	Proceeds      decimal.Decimal
	Outcomes      []BidderOutcome
	SettledAt     time.Time
}
