// Package api exposes the backtest service over HTTP: symbol search, symbol
// detail, backtest runs, and run history.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"vantage/internal/backtest"
	"vantage/internal/marketdata"
	"vantage/internal/store"
)

// Server hosts the HTTP API.
type Server struct {
	runner   *backtest.Runner
	catalog  *marketdata.Catalog
	source   marketdata.Source
	resolver marketdata.Resolver
	runs     store.RunStore
	log      *slog.Logger

	httpServer *http.Server
}

// NewServer creates a Server. source, resolver, and runs may be nil: symbol
// detail then answers from the catalog only (without a latest close), and
// run history returns empty.
func NewServer(runner *backtest.Runner, catalog *marketdata.Catalog, source marketdata.Source, resolver marketdata.Resolver, runs store.RunStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		runner:   runner,
		catalog:  catalog,
		source:   source,
		resolver: resolver,
		runs:     runs,
		log:      log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/symbols/search", s.handleSearch)
	mux.HandleFunc("GET /api/symbols/{symbol}", s.handleSymbolDetail)
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// ListenAndServe starts the HTTP listener on addr and blocks until the
// context is cancelled or a fatal error occurs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.log.Info("http server listening", "addr", addr)

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown performs a graceful shutdown of the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
