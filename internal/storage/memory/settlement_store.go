package memory

import (
	"context"
	"sync"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

// SettlementStore is an in-memory implementation of storage.SettlementStore.
type SettlementStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SettlementRecord // keyed by auction id
}

// NewSettlementStore creates a new in-memory settlement store.
func NewSettlementStore() *SettlementStore {
	return &SettlementStore{
		data: make(map[string]*domain.SettlementRecord),
	}
}

// Insert adds the clearing result. Returns ErrDuplicateKey if the auction
// already has one.
func (s *SettlementStore) Insert(_ context.Context, rec *domain.SettlementRecord) error {
	if rec == nil || rec.AuctionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.AuctionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *rec
	copy.Outcomes = append([]domain.BidderOutcome(nil), rec.Outcomes...)
	s.data[rec.AuctionID] = &copy
	return nil
}

// GetByAuctionID retrieves the clearing result. Returns ErrNotFound if the
// auction has not settled.
func (s *SettlementStore) GetByAuctionID(_ context.Context, auctionID string) (*domain.SettlementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[auctionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *rec
	copy.Outcomes = append([]domain.BidderOutcome(nil), rec.Outcomes...)
	return &copy, nil
}

var _ storage.SettlementStore = (*SettlementStore)(nil)
