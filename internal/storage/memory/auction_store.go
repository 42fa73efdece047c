package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

// AuctionStore is an in-memory implementation of storage.AuctionStore.
type AuctionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AuctionRecord
}

// NewAuctionStore creates a new in-memory auction store.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		data: make(map[string]*domain.AuctionRecord),
	}
}

// Insert adds a new auction record. Returns ErrDuplicateKey if the id exists.
func (s *AuctionStore) Insert(_ context.Context, rec *domain.AuctionRecord) error {
	if rec == nil || rec.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *rec
	s.data[rec.ID] = &copy
	return nil
}

// GetByID retrieves a record by auction id. Returns ErrNotFound if not exists.
func (s *AuctionStore) GetByID(_ context.Context, id string) (*domain.AuctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *rec
	return &copy, nil
}

// GetByCreator retrieves all records for a creator, ordered by creation time ASC.
func (s *AuctionStore) GetByCreator(_ context.Context, creator string) ([]*domain.AuctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuctionRecord
	for _, rec := range s.data {
		if rec.Creator == creator {
			copy := *rec
			result = append(result, &copy)
		}
	}
	sortByCreatedAt(result)
	return result, nil
}

// List retrieves all records ordered by creation time ASC.
func (s *AuctionStore) List(_ context.Context) ([]*domain.AuctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AuctionRecord, 0, len(s.data))
	for _, rec := range s.data {
		copy := *rec
		result = append(result, &copy)
	}
	sortByCreatedAt(result)
	return result, nil
}

// MarkEnded records the Ended transition with its frozen clearing price.
func (s *AuctionStore) MarkEnded(_ context.Context, id string, clearingPrice decimal.Decimal, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}
	price := clearingPrice
	at := endedAt
	rec.State = domain.StateNameEnded
	rec.ClearingPrice = &price
	rec.EndedAt = &at
	return nil
}

// MarkSettled records the Settled transition.
func (s *AuctionStore) MarkSettled(_ context.Context, id string, settledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}
	at := settledAt
	rec.State = domain.StateNameSettled
	rec.SettledAt = &at
	return nil
}

func sortByCreatedAt(recs []*domain.AuctionRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

var _ storage.AuctionStore = (*AuctionStore)(nil)
