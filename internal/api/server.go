// Package api exposes the auction registry over HTTP: a JSON API for
// creating auctions, bidding, settlement and withdrawals, plus a websocket
// feed of engine events.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dutch-auction-lab/internal/observability"
	"dutch-auction-lab/internal/registry"
)

// Server is the HTTP front end over one registry.
type Server struct {
	registry *registry.Registry
	hub      *Hub
	logger   *log.Logger
	now      func() time.Time
	srv      *http.Server
}

// Options contains configuration for creating a Server.
type Options struct {
	Registry   *registry.Registry
	Hub        *Hub // nil disables the websocket feed
	ListenAddr string
	Logger     *log.Logger
	Now        func() time.Time // Default: time.Now, overridable in tests

	ReadTimeout time.Duration // Default: 10s
}

// New creates the server and builds its router.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	readTimeout := opts.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}

	s := &Server{
		registry: opts.Registry,
		hub:      opts.Hub,
		logger:   logger,
		now:      now,
	}
	s.srv = &http.Server{
		Addr:        opts.ListenAddr,
		Handler:     s.Router(),
		ReadTimeout: readTimeout,
		// No WriteTimeout: the websocket feed holds its connection open.
	}
	return s
}

// Router builds the chi router. Exposed for httptest-based handler tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auctions", s.handleCreateAuction)
		r.Get("/auctions", s.handleListAuctions)
		r.Route("/auctions/{auctionID}", func(r chi.Router) {
			r.Get("/", s.handleGetAuction)
			r.Post("/bids", s.handlePlaceBid)
			r.Get("/bids", s.handleListBids)
			r.Post("/settle", s.handleSettle)
			r.Get("/result", s.handleGetResult)
			r.Get("/holdings/{account}", s.handleGetHoldings)
		})
		r.Post("/withdrawals", s.handleWithdraw)
		r.Get("/withdrawals/{recipient}", s.handleGetPending)
	})

	if s.hub != nil {
		r.Get("/ws", s.handleWebsocket)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Println("HTTP server stopped")
	return ctx.Err()
}
