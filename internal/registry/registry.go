// Package registry coordinates auction instances and their persistent
// audit trail. It is the factory for new auctions and the single entry
// point the API and scheduler use to reach live ones.
//
// The in-memory engine stays authoritative while the process runs. Store
// writes are an audit trail: a failed write is logged and never rolls back
// an engine transition that already happened.
package registry

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/auction"
	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/idhash"
	"dutch-auction-lab/internal/observability"
	"dutch-auction-lab/internal/storage"
	"dutch-auction-lab/internal/treasury"
)

// ErrUnknownAuction is returned for an id the registry never created.
var ErrUnknownAuction = errors.New("unknown auction")

// Registry owns the live auction instances and the shared fund treasury.
type Registry struct {
	logger *log.Logger
	funds  treasury.FundTreasury
	events domain.EventSink

	auctions    storage.AuctionStore
	bids        storage.BidEventStore
	settlements storage.SettlementStore

	mu        sync.RWMutex
	instances map[string]*instance
	order     []string // creation order, for IDs
}

// instance pairs a live auction with its minted asset ledger and tracks
// which lifecycle transitions have reached the audit trail.
type instance struct {
	auction *auction.Auction
	tokens  *treasury.AssetLedger

	mu          sync.Mutex
	endSaved    bool
	settleSaved bool
}

// New creates a registry over the given treasury and stores. The event sink
// may be nil.
func New(logger *log.Logger, funds treasury.FundTreasury, events domain.EventSink,
	auctions storage.AuctionStore, bids storage.BidEventStore, settlements storage.SettlementStore) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	if events == nil {
		events = domain.NopSink{}
	}
	return &Registry{
		logger:      logger,
		funds:       funds,
		events:      events,
		auctions:    auctions,
		bids:        bids,
		settlements: settlements,
		instances:   make(map[string]*instance),
	}
}

// Create validates the config, mints the full supply into a fresh asset
// ledger and opens the auction. The returned id is deterministic over
// (creator, symbol, createdAt).
func (r *Registry) Create(ctx context.Context, cfg domain.AuctionConfig, createdAt time.Time) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	id := idhash.ComputeAuctionID(cfg.Creator, cfg.Symbol, createdAt.UnixNano())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[id]; exists {
		return "", storage.ErrDuplicateKey
	}

	rec := &domain.AuctionRecord{
		ID:            id,
		Creator:       cfg.Creator,
		Symbol:        cfg.Symbol,
		Name:          cfg.Name,
		Supply:        cfg.Supply,
		StartPrice:    cfg.StartPrice,
		ReservedPrice: cfg.ReservedPrice,
		StartTime:     cfg.StartTime,
		DurationSec:   int64(cfg.Duration / time.Second),
		State:         domain.StateNameOpen,
		CreatedAt:     createdAt,
	}
	if err := r.auctions.Insert(ctx, rec); err != nil {
		return "", err
	}

	tokens := treasury.NewAssetLedger(cfg.Symbol, cfg.Supply)
	r.instances[id] = &instance{
		auction: auction.New(id, cfg, r.funds, tokens, r.events),
		tokens:  tokens,
	}
	r.order = append(r.order, id)

	observability.RecordAuctionCreated()
	r.logger.Printf("auction %s created: %s supply=%d start=%s reserved=%s duration=%s",
		id, cfg.Symbol, cfg.Supply, cfg.StartPrice, cfg.ReservedPrice, cfg.Duration)
	return id, nil
}

// Get returns the live auction for an id.
func (r *Registry) Get(id string) (*auction.Auction, error) {
	inst, err := r.instance(id)
	if err != nil {
		return nil, err
	}
	return inst.auction, nil
}

// Tokens returns the asset ledger minted for an auction.
func (r *Registry) Tokens(id string) (*treasury.AssetLedger, error) {
	inst, err := r.instance(id)
	if err != nil {
		return nil, err
	}
	return inst.tokens, nil
}

// IDs returns all live auction ids in creation order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Status reports a live auction as of now without triggering transitions.
func (r *Registry) Status(id string, now time.Time) (auction.Status, error) {
	inst, err := r.instance(id)
	if err != nil {
		return auction.Status{}, err
	}
	return inst.auction.Status(now), nil
}

// PlaceBid delegates to the auction and appends the accepted bid to the
// audit trail.
func (r *Registry) PlaceBid(ctx context.Context, id, bidder string, amount decimal.Decimal, now time.Time) (domain.BidEntry, error) {
	inst, err := r.instance(id)
	if err != nil {
		return domain.BidEntry{}, err
	}

	entry, err := inst.auction.PlaceBid(bidder, amount, now)
	if err != nil {
		observability.RecordBidRejected(rejectionReason(err))
		r.persistEnd(ctx, id, inst, now)
		return domain.BidEntry{}, err
	}

	observability.RecordBidPlaced(amount.InexactFloat64())
	if storeErr := r.bids.Insert(ctx, &domain.BidEvent{
		AuctionID: id,
		Sequence:  entry.Sequence,
		Bidder:    bidder,
		Amount:    amount,
		Timestamp: entry.Timestamp,
	}); storeErr != nil {
		r.logger.Printf("auction %s: persisting bid %d failed: %v", id, entry.Sequence, storeErr)
	}

	r.persistEnd(ctx, id, inst, now)
	return entry, nil
}

// Evaluate applies the lazy end-condition check to one auction. It returns
// true once the auction is no longer open.
func (r *Registry) Evaluate(ctx context.Context, id string, now time.Time) (bool, error) {
	inst, err := r.instance(id)
	if err != nil {
		return false, err
	}
	ended := inst.auction.Evaluate(now)
	if ended {
		r.persistEnd(ctx, id, inst, now)
	}
	return ended, nil
}

// Settle runs the one-shot clearing walk and persists the result.
func (r *Registry) Settle(ctx context.Context, id string, now time.Time) (*domain.ClearingResult, error) {
	inst, err := r.instance(id)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, settleErr := inst.auction.Settle(now)
	if result == nil {
		return nil, settleErr
	}

	r.persistEnd(ctx, id, inst, now)

	observability.RecordAuctionSettled(result.TotalAllocated(), result.UnsoldBurned, time.Since(started).Seconds())
	if settleErr != nil {
		observability.RecordSettlementError()
		r.logger.Printf("auction %s: settlement transfers incomplete: %v", id, settleErr)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.settleSaved {
		return result, settleErr
	}
	if storeErr := r.settlements.Insert(ctx, &domain.SettlementRecord{
		AuctionID:     id,
		ClearingPrice: result.ClearingPrice,
		UnsoldBurned:  result.UnsoldBurned,
		Proceeds:      result.Proceeds,
		Outcomes:      result.Outcomes,
		SettledAt:     result.SettledAt,
	}); storeErr != nil {
		r.logger.Printf("auction %s: persisting settlement failed: %v", id, storeErr)
		return result, settleErr
	}
	if storeErr := r.auctions.MarkSettled(ctx, id, result.SettledAt); storeErr != nil {
		r.logger.Printf("auction %s: marking settled failed: %v", id, storeErr)
		return result, settleErr
	}
	inst.settleSaved = true
	return result, settleErr
}

// Result returns the stored clearing result of a live auction, or nil
// before settlement.
func (r *Registry) Result(id string) (*domain.ClearingResult, error) {
	inst, err := r.instance(id)
	if err != nil {
		return nil, err
	}
	return inst.auction.Result(), nil
}

// Withdraw claims the caller's pending treasury balance.
func (r *Registry) Withdraw(recipient string) (decimal.Decimal, error) {
	amount, err := r.funds.Withdraw(recipient)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsPositive() {
		observability.RecordWithdrawal()
		r.logger.Printf("withdrawal: %s claimed %s", recipient, amount)
	}
	return amount, nil
}

// Pending reports the recipient's unclaimed treasury balance.
func (r *Registry) Pending(recipient string) decimal.Decimal {
	return r.funds.Pending(recipient)
}

// GetRecord retrieves the persisted auction record.
func (r *Registry) GetRecord(ctx context.Context, id string) (*domain.AuctionRecord, error) {
	return r.auctions.GetByID(ctx, id)
}

// ListRecords retrieves all persisted auction records in creation order.
func (r *Registry) ListRecords(ctx context.Context) ([]*domain.AuctionRecord, error) {
	return r.auctions.List(ctx)
}

// RecordsByCreator retrieves the persisted records for one creator.
func (r *Registry) RecordsByCreator(ctx context.Context, creator string) ([]*domain.AuctionRecord, error) {
	return r.auctions.GetByCreator(ctx, creator)
}

// BidHistory retrieves the persisted bid ledger in sequence order.
func (r *Registry) BidHistory(ctx context.Context, id string) ([]*domain.BidEvent, error) {
	return r.bids.GetByAuctionID(ctx, id)
}

// Settlement retrieves the persisted clearing result.
func (r *Registry) Settlement(ctx context.Context, id string) (*domain.SettlementRecord, error) {
	return r.settlements.GetByAuctionID(ctx, id)
}

func (r *Registry) instance(id string) (*instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[id]
	if !ok {
		return nil, ErrUnknownAuction
	}
	return inst, nil
}

// persistEnd writes the Ended transition once the engine has taken it. The
// frozen clearing price comes from the engine snapshot, never recomputed.
func (r *Registry) persistEnd(ctx context.Context, id string, inst *instance, now time.Time) {
	st := inst.auction.Status(now)
	if st.State == domain.StateOpen {
		return
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.endSaved {
		return
	}
	if err := r.auctions.MarkEnded(ctx, id, st.CurrentPrice, st.EndedAt); err != nil {
		r.logger.Printf("auction %s: marking ended failed: %v", id, err)
		return
	}
	inst.endSaved = true

	reason := "demand"
	if !st.EndedAt.Before(st.EndTime) {
		reason = "expired"
	}
	observability.RecordAuctionEnded(reason)
	r.logger.Printf("auction %s ended (%s): clearing price %s over %d bids", id, reason, st.CurrentPrice, st.Bids)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuctionNotOpen):
		return "not_open"
	case errors.Is(err, domain.ErrZeroAmount):
		return "zero_amount"
	default:
		return "other"
	}
}
