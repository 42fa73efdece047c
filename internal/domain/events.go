package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is an observable lifecycle event emitted by the engine for audit
// and UI consumption.
type Event interface {
	EventType() string
}

// Event type tags.
const (
	EventTypeBidRecorded  = "bid_recorded"
	EventTypeAuctionEnded = "auction_ended"
	EventTypeSettled      = "settled"
)

// BidRecorded is emitted after a commitment is appended to the ledger.
type BidRecorded struct {
	AuctionID string          `json:"auction_id"`
	Sequence  uint64          `json:"sequence"`
	Bidder    string          `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	At        time.Time       `json:"at"`
}

func (BidRecorded) EventType() string { return EventTypeBidRecorded }

// AuctionEnded is emitted the first time an end condition is observed.
type AuctionEnded struct {
	AuctionID     string          `json:"auction_id"`
	ClearingPrice decimal.Decimal `json:"clearing_price"`
	At            time.Time       `json:"at"`
}

func (AuctionEnded) EventType() string { return EventTypeAuctionEnded }

// Settled is emitted after the clearing result is committed.
type Settled struct {
	AuctionID    string          `json:"auction_id"`
	UnsoldBurned int64           `json:"unsold_burned"`
	Proceeds     decimal.Decimal `json:"proceeds"`
	At           time.Time       `json:"at"`
}

func (Settled) EventType() string { return EventTypeSettled }

// EventSink receives engine events. Publish must not block; slow consumers
// drop rather than stall the engine.
type EventSink interface {
	Publish(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}
