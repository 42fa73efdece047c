package postgres

import (
	"context"
	"fmt"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

// BidEventStore implements storage.BidEventStore using PostgreSQL.
type BidEventStore struct {
	pool *Pool
}

// NewBidEventStore creates a new BidEventStore.
func NewBidEventStore(pool *Pool) *BidEventStore {
	return &BidEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BidEventStore = (*BidEventStore)(nil)

// Insert adds a bid event. Returns ErrDuplicateKey if (auction_id, sequence) exists.
func (s *BidEventStore) Insert(ctx context.Context, e *domain.BidEvent) error {
	if e == nil || e.AuctionID == "" || e.Sequence == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO bid_events (auction_id, sequence, bidder, amount, bid_time)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		e.AuctionID,
		e.Sequence,
		e.Bidder,
		e.Amount,
		e.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert bid event: %w", err)
	}
	return nil
}

// GetByAuctionID retrieves all events for an auction, ordered by sequence ASC.
func (s *BidEventStore) GetByAuctionID(ctx context.Context, auctionID string) ([]*domain.BidEvent, error) {
	query := `
		SELECT auction_id, sequence, bidder, amount, bid_time
		FROM bid_events
		WHERE auction_id = $1
		ORDER BY sequence ASC
	`

	rows, err := s.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bid events: %w", err)
	}
	defer rows.Close()

	var events []*domain.BidEvent
	for rows.Next() {
		var e domain.BidEvent
		if err := rows.Scan(&e.AuctionID, &e.Sequence, &e.Bidder, &e.Amount, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan bid event row: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bid event rows: %w", err)
	}

	return events, nil
}
