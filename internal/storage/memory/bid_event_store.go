package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

// BidEventStore is an in-memory implementation of storage.BidEventStore.
type BidEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BidEvent // keyed by composite key
}

// NewBidEventStore creates a new in-memory bid event store.
func NewBidEventStore() *BidEventStore {
	return &BidEventStore{
		data: make(map[string]*domain.BidEvent),
	}
}

// bidEventKey generates a unique key for a bid event.
func bidEventKey(auctionID string, sequence uint64) string {
	return fmt.Sprintf("%s|%d", auctionID, sequence)
}

// Insert adds a bid event. Returns ErrDuplicateKey if (auction_id, sequence) exists.
func (s *BidEventStore) Insert(_ context.Context, e *domain.BidEvent) error {
	if e == nil || e.AuctionID == "" || e.Sequence == 0 {
		return storage.ErrInvalidInput
	}

	key := bidEventKey(e.AuctionID, e.Sequence)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[key] = &copy
	return nil
}

// GetByAuctionID retrieves all events for an auction, ordered by sequence ASC.
func (s *BidEventStore) GetByAuctionID(_ context.Context, auctionID string) ([]*domain.BidEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BidEvent
	for _, e := range s.data {
		if e.AuctionID == auctionID {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})

	return result, nil
}

var _ storage.BidEventStore = (*BidEventStore)(nil)
