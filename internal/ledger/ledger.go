// Package ledger implements the append-only bid ledger.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
)

// Ledger is an append-only, sequence-ordered record of commitments and
// their running sum. Entries are never mutated or removed; iteration
// replays them in arrival order.
type Ledger struct {
	mu      sync.RWMutex
	entries []domain.BidEntry
	total   decimal.Decimal
}

// New creates an empty ledger. Sequence numbers start at 1.
func New() *Ledger {
	return &Ledger{total: decimal.Zero}
}

// Append records a new commitment and returns the entry with its assigned
// sequence. Fails with ErrZeroAmount for non-positive amounts; duplicate
// bidders always append new entries, preserving arrival order.
func (l *Ledger) Append(bidder string, amount decimal.Decimal, now time.Time) (domain.BidEntry, error) {
	if !amount.IsPositive() {
		return domain.BidEntry{}, fmt.Errorf("%w: got %s", domain.ErrZeroAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := domain.BidEntry{
		Sequence:   uint64(len(l.entries)) + 1,
		Bidder:     bidder,
		Commitment: amount,
		Timestamp:  now,
	}
	l.entries = append(l.entries, entry)
	l.total = l.total.Add(amount)
	return entry, nil
}

// TotalCommitment returns the running sum of all commitments.
func (l *Ledger) TotalCommitment() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copied snapshot of all entries in arrival order.
func (l *Ledger) Entries() []domain.BidEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.BidEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
