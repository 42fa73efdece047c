package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

// AuctionStore implements storage.AuctionStore using PostgreSQL.
type AuctionStore struct {
	pool *Pool
}

// NewAuctionStore creates a new AuctionStore.
func NewAuctionStore(pool *Pool) *AuctionStore {
	return &AuctionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuctionStore = (*AuctionStore)(nil)

// Insert adds a new auction record. Returns ErrDuplicateKey if the id exists.
func (s *AuctionStore) Insert(ctx context.Context, rec *domain.AuctionRecord) error {
	if rec == nil || rec.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO auctions (
			id, creator, symbol, name, supply, start_price, reserved_price,
			start_time, duration_sec, state, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.Creator,
		rec.Symbol,
		rec.Name,
		rec.Supply,
		rec.StartPrice,
		rec.ReservedPrice,
		rec.StartTime,
		rec.DurationSec,
		rec.State,
		rec.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert auction: %w", err)
	}
	return nil
}

// GetByID retrieves a record by auction id. Returns ErrNotFound if not exists.
func (s *AuctionStore) GetByID(ctx context.Context, id string) (*domain.AuctionRecord, error) {
	query := selectAuctionColumns + ` WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	rec, err := scanAuction(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get auction by id: %w", err)
	}
	return rec, nil
}

// GetByCreator retrieves all records for a creator, ordered by creation time ASC.
func (s *AuctionStore) GetByCreator(ctx context.Context, creator string) ([]*domain.AuctionRecord, error) {
	query := selectAuctionColumns + ` WHERE creator = $1 ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, creator)
	if err != nil {
		return nil, fmt.Errorf("get auctions by creator: %w", err)
	}
	defer rows.Close()

	return scanAuctions(rows)
}

// List retrieves all records ordered by creation time ASC.
func (s *AuctionStore) List(ctx context.Context) ([]*domain.AuctionRecord, error) {
	query := selectAuctionColumns + ` ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	return scanAuctions(rows)
}

// MarkEnded records the Ended transition with its frozen clearing price.
func (s *AuctionStore) MarkEnded(ctx context.Context, id string, clearingPrice decimal.Decimal, endedAt time.Time) error {
	query := `
		UPDATE auctions
		SET state = $2, clearing_price = $3, ended_at = $4
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, domain.StateNameEnded, clearingPrice, endedAt)
	if err != nil {
		return fmt.Errorf("mark auction ended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkSettled records the Settled transition.
func (s *AuctionStore) MarkSettled(ctx context.Context, id string, settledAt time.Time) error {
	query := `
		UPDATE auctions
		SET state = $2, settled_at = $3
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, domain.StateNameSettled, settledAt)
	if err != nil {
		return fmt.Errorf("mark auction settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const selectAuctionColumns = `
	SELECT id, creator, symbol, name, supply, start_price, reserved_price,
	       start_time, duration_sec, state, clearing_price, ended_at,
	       settled_at, created_at
	FROM auctions
`

// scanAuction scans one row into an AuctionRecord.
func scanAuction(row pgx.Row) (*domain.AuctionRecord, error) {
	var rec domain.AuctionRecord

	err := row.Scan(
		&rec.ID,
		&rec.Creator,
		&rec.Symbol,
		&rec.Name,
		&rec.Supply,
		&rec.StartPrice,
		&rec.ReservedPrice,
		&rec.StartTime,
		&rec.DurationSec,
		&rec.State,
		&rec.ClearingPrice,
		&rec.EndedAt,
		&rec.SettledAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanAuctions scans multiple rows into a slice of AuctionRecord.
func scanAuctions(rows pgx.Rows) ([]*domain.AuctionRecord, error) {
	var recs []*domain.AuctionRecord

	for rows.Next() {
		rec, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction row: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auction rows: %w", err)
	}

	return recs, nil
}
