package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/registry"
	"dutch-auction-lab/internal/storage"
)

type createAuctionRequest struct {
	Creator       string          `json:"creator"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Supply        int64           `json:"supply"`
	StartPrice    decimal.Decimal `json:"start_price"`
	ReservedPrice decimal.Decimal `json:"reserved_price"`
	StartTime     *time.Time      `json:"start_time,omitempty"` // defaults to now
	DurationSec   int64           `json:"duration_sec"`
}

type createAuctionResponse struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := s.now()
	start := now
	if req.StartTime != nil {
		start = *req.StartTime
	}

	cfg := domain.AuctionConfig{
		Creator:       req.Creator,
		Symbol:        req.Symbol,
		Name:          req.Name,
		Supply:        req.Supply,
		StartPrice:    req.StartPrice,
		ReservedPrice: req.ReservedPrice,
		StartTime:     start,
		Duration:      time.Duration(req.DurationSec) * time.Second,
	}

	id, err := s.registry.Create(r.Context(), cfg, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createAuctionResponse{
		ID:        id,
		StartTime: cfg.StartTime,
		EndTime:   cfg.EndTime(),
	})
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	var (
		records []*domain.AuctionRecord
		err     error
	)
	if creator := r.URL.Query().Get("creator"); creator != "" {
		records, err = s.registry.RecordsByCreator(r.Context(), creator)
	} else {
		records, err = s.registry.ListRecords(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"auctions": recordViews(records)})
}

type auctionView struct {
	ID            string           `json:"id"`
	Creator       string           `json:"creator"`
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Supply        int64            `json:"supply"`
	StartPrice    decimal.Decimal  `json:"start_price"`
	ReservedPrice decimal.Decimal  `json:"reserved_price"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	State         string           `json:"state"`
	ClearingPrice *decimal.Decimal `json:"clearing_price,omitempty"`
	EndedAt       *time.Time       `json:"ended_at,omitempty"`
	SettledAt     *time.Time       `json:"settled_at,omitempty"`
}

func recordViews(records []*domain.AuctionRecord) []auctionView {
	views := make([]auctionView, 0, len(records))
	for _, rec := range records {
		views = append(views, auctionView{
			ID:            rec.ID,
			Creator:       rec.Creator,
			Symbol:        rec.Symbol,
			Name:          rec.Name,
			Supply:        rec.Supply,
			StartPrice:    rec.StartPrice,
			ReservedPrice: rec.ReservedPrice,
			StartTime:     rec.StartTime,
			EndTime:       rec.StartTime.Add(time.Duration(rec.DurationSec) * time.Second),
			State:         rec.State,
			ClearingPrice: rec.ClearingPrice,
			EndedAt:       rec.EndedAt,
			SettledAt:     rec.SettledAt,
		})
	}
	return views
}

type statusResponse struct {
	ID              string          `json:"id"`
	State           string          `json:"state"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	TotalCommitment decimal.Decimal `json:"total_commitment"`
	Bids            int             `json:"bids"`
	EndTime         time.Time       `json:"end_time"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionID")

	st, err := s.registry.Status(id, s.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := statusResponse{
		ID:              st.ID,
		State:           st.State.String(),
		CurrentPrice:    st.CurrentPrice,
		TotalCommitment: st.TotalCommitment,
		Bids:            st.Bids,
		EndTime:         st.EndTime,
	}
	if !st.EndedAt.IsZero() {
		resp.EndedAt = &st.EndedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type placeBidRequest struct {
	Bidder string          `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
}

type placeBidResponse struct {
	Sequence  uint64          `json:"sequence"`
	Bidder    string          `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionID")

	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Bidder == "" {
		writeError(w, http.StatusBadRequest, "bidder is required")
		return
	}

	entry, err := s.registry.PlaceBid(r.Context(), id, req.Bidder, req.Amount, s.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeBidResponse{
		Sequence:  entry.Sequence,
		Bidder:    entry.Bidder,
		Amount:    entry.Commitment,
		Timestamp: entry.Timestamp,
	})
}

func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionID")

	if _, err := s.registry.Get(id); err != nil {
		writeDomainError(w, err)
		return
	}
	events, err := s.registry.BidHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bids": events})
}

type settleResponse struct {
	*domain.ClearingResult
	TransfersComplete bool `json:"transfers_complete"`
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionID")

	result, err := s.registry.Settle(r.Context(), id, s.now())
	if result == nil {
		writeDomainError(w, err)
		return
	}

	// A transfer failure does not undo settlement; the result is committed
	// and affected recipients retry via withdrawal.
	writeJSON(w, http.StatusOK, settleResponse{
		ClearingResult:    result,
		TransfersComplete: err == nil,
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionID")

	if _, err := s.registry.Get(id); err != nil {
		writeDomainError(w, err)
		return
	}
	result, err := s.registry.Result(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "auction has not settled")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type holdingsResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

func (s *Server) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionID")
	account := chi.URLParam(r, "account")

	tokens, err := s.registry.Tokens(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holdingsResponse{
		Account: account,
		Balance: tokens.BalanceOf(account),
	})
}

type withdrawRequest struct {
	Recipient string `json:"recipient"`
}

type withdrawResponse struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Recipient == "" {
		writeError(w, http.StatusBadRequest, "recipient is required")
		return
	}

	amount, err := s.registry.Withdraw(req.Recipient)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{Recipient: req.Recipient, Amount: amount})
}

func (s *Server) handleGetPending(w http.ResponseWriter, r *http.Request) {
	recipient := chi.URLParam(r, "recipient")
	writeJSON(w, http.StatusOK, withdrawResponse{
		Recipient: recipient,
		Amount:    s.registry.Pending(recipient),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps engine and storage errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrUnknownAuction), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrZeroAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAuctionNotOpen),
		errors.Is(err, domain.ErrNotEnded),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, storage.ErrDuplicateKey):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
