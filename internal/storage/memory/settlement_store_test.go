package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/storage"
)

func settlementRecord(auctionID string) *domain.SettlementRecord {
	return &domain.SettlementRecord{
		AuctionID:     auctionID,
		ClearingPrice: decimal.RequireFromString("0.5"),
		UnsoldBurned:  0,
		Proceeds:      decimal.NewFromInt(500),
		Outcomes: []domain.BidderOutcome{
			{Bidder: "A", Allocated: 800, Cost: decimal.NewFromInt(400), Refund: decimal.Zero},
			{Bidder: "B", Allocated: 200, Cost: decimal.NewFromInt(100), Refund: decimal.NewFromInt(200)},
		},
		SettledAt: now,
	}
}

func TestSettlementStore_InsertAndGet(t *testing.T) {
	store := NewSettlementStore()
	ctx := context.Background()

	if err := store.Insert(ctx, settlementRecord("a1")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByAuctionID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByAuctionID failed: %v", err)
	}
	if len(got.Outcomes) != 2 || got.Outcomes[0].Bidder != "A" {
		t.Errorf("unexpected outcomes: %+v", got.Outcomes)
	}
	if !got.Proceeds.Equal(decimal.NewFromInt(500)) {
		t.Errorf("proceeds = %s, want 500", got.Proceeds)
	}
}

func TestSettlementStore_OneRowPerAuction(t *testing.T) {
	store := NewSettlementStore()
	ctx := context.Background()

	if err := store.Insert(ctx, settlementRecord("a1")); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := store.Insert(ctx, settlementRecord("a1"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestSettlementStore_NotFound(t *testing.T) {
	store := NewSettlementStore()
	ctx := context.Background()

	if _, err := store.GetByAuctionID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSettlementStore_OutcomeSnapshotIsolation(t *testing.T) {
	store := NewSettlementStore()
	ctx := context.Background()

	_ = store.Insert(ctx, settlementRecord("a1"))

	got, _ := store.GetByAuctionID(ctx, "a1")
	got.Outcomes[0].Allocated = 0

	again, _ := store.GetByAuctionID(ctx, "a1")
	if again.Outcomes[0].Allocated != 800 {
		t.Error("mutating returned outcomes must not affect the store")
	}
}
