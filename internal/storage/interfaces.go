// Package storage defines the persistent audit trail: auction records, bid
// events and clearing results. The in-memory engine is the authority while
// the process runs; these stores exist for audit and restart inspection.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
)

// AuctionStore provides access to auction record storage.
type AuctionStore interface {
	// Insert adds a new auction record. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, rec *domain.AuctionRecord) error

	// GetByID retrieves a record by auction id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.AuctionRecord, error)

	// GetByCreator retrieves all records for a creator, ordered by creation time ASC.
	GetByCreator(ctx context.Context, creator string) ([]*domain.AuctionRecord, error)

	// List retrieves all records ordered by creation time ASC.
	List(ctx context.Context) ([]*domain.AuctionRecord, error)

	// MarkEnded records the Ended transition with its frozen clearing price.
	MarkEnded(ctx context.Context, id string, clearingPrice decimal.Decimal, endedAt time.Time) error

	// MarkSettled records the Settled transition.
	MarkSettled(ctx context.Context, id string, settledAt time.Time) error
}

// BidEventStore provides access to the persisted bid ledger.
type BidEventStore interface {
	// Insert adds a bid event. Returns ErrDuplicateKey if (auction_id, sequence) exists.
	Insert(ctx context.Context, e *domain.BidEvent) error

	// GetByAuctionID retrieves all events for an auction, ordered by sequence ASC.
	GetByAuctionID(ctx context.Context, auctionID string) ([]*domain.BidEvent, error)
}

// SettlementStore provides access to persisted clearing results. Each
// auction has at most one settlement row, written atomically.
type SettlementStore interface {
	// Insert adds the clearing result. Returns ErrDuplicateKey if the
	// auction already has one.
	Insert(ctx context.Context, rec *domain.SettlementRecord) error

	// GetByAuctionID retrieves the clearing result. Returns ErrNotFound if
	// the auction has not settled.
	GetByAuctionID(ctx context.Context, auctionID string) (*domain.SettlementRecord, error)
}
