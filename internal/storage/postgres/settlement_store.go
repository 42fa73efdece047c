package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

// SettlementStore implements storage.SettlementStore using PostgreSQL.
// The per-bidder outcome detail is stored as a JSONB column so the whole
// clearing result commits as one row.
type SettlementStore struct {
	pool *Pool
}

// NewSettlementStore creates a new SettlementStore.
func NewSettlementStore(pool *Pool) *SettlementStore {
	return &SettlementStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SettlementStore = (*SettlementStore)(nil)

// Insert adds the clearing result. Returns ErrDuplicateKey if the auction
// already has one.
func (s *SettlementStore) Insert(ctx context.Context, rec *domain.SettlementRecord) error {
	if rec == nil || rec.AuctionID == "" {
		return storage.ErrInvalidInput
	}

	outcomes, err := json.Marshal(rec.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	query := `
		INSERT INTO settlements (
			auction_id, clearing_price, unsold_burned, proceeds, outcomes, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		rec.AuctionID,
		rec.ClearingPrice,
		rec.UnsoldBurned,
		rec.Proceeds,
		outcomes,
		rec.SettledAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// GetByAuctionID retrieves the clearing result. Returns ErrNotFound if the
// auction has not settled.
func (s *SettlementStore) GetByAuctionID(ctx context.Context, auctionID string) (*domain.SettlementRecord, error) {
	query := `
		SELECT auction_id, clearing_price, unsold_burned, proceeds, outcomes, settled_at
		FROM settlements
		WHERE auction_id = $1
	`

	var (
		rec      domain.SettlementRecord
		outcomes []byte
	)
	err := s.pool.QueryRow(ctx, query, auctionID).Scan(
		&rec.AuctionID,
		&rec.ClearingPrice,
		&rec.UnsoldBurned,
		&rec.Proceeds,
		&outcomes,
		&rec.SettledAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get settlement: %w", err)
	}

	if err := json.Unmarshal(outcomes, &rec.Outcomes); err != nil {
		return nil, fmt.Errorf("unmarshal outcomes: %w", err)
	}
	return &rec, nil
}
