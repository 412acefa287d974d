// Package api serves the read-side HTTP endpoints over the loaded store:
// per-user transaction summaries, top users by volume, daily totals, plus
// health and log-level monitoring.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"txnetl/internal/logger"
	"txnetl/internal/storage"
)

// Queries is the read-only slice of the store the API needs.
type Queries interface {
	UserTransactionSummary(ctx context.Context, userID int64) (storage.UserSummary, error)
	TopUsersByVolume(ctx context.Context, limit int) ([]storage.TopUser, error)
	DailyTotals(ctx context.Context) ([]storage.DailyTotal, error)
}

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, e.g. "localhost:5000".
	Addr string
}

// Server is the API HTTP server.
type Server struct {
	cfg    Config
	store  Queries
	counts *logger.LevelCounts
	log    logger.Logger
}

// NewServer wires the handlers over the given store. counts may be nil; the
// log monitor endpoint then reports all zeros.
func NewServer(cfg Config, store Queries, counts *logger.LevelCounts, log logger.Logger) *Server {
	return &Server{cfg: cfg, store: store, counts: counts, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user_transaction_summary", s.handleUserSummary)
	mux.HandleFunc("GET /api/top_users", s.handleTopUsers)
	mux.HandleFunc("GET /api/daily_transactions", s.handleDailyTransactions)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/log_monitor", s.handleLogMonitor)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
