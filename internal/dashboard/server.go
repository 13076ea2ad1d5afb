// Package dashboard serves read-only views of the engine state over HTTP:
// the option-chain snapshot the Streamlit boards render and the recent alert
// history. It is a display-only consumer; nothing here mutates engine state.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/engine"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/logger"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// defaultHistoryLimit matches the 20-row history cap of the original board.
const defaultHistoryLimit = 20

// AlertHistory is the read side of the alert journal.
type AlertHistory interface {
	Recent(k int) ([]models.AlertEvent, error)
}

// Server exposes engine snapshots and alert history.
type Server struct {
	engine  *engine.Engine
	history AlertHistory
}

// NewServer creates a dashboard server. history may be nil when journaling is
// disabled; /api/alerts then returns an empty list.
func NewServer(eng *engine.Engine, history AlertHistory) *Server {
	return &Server{engine: eng, history: history}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/chain", s.handleChain)
	r.Get("/api/alerts", s.handleAlerts)

	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("Dashboard listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	if s.history == nil {
		writeJSON(w, http.StatusOK, []models.AlertEvent{})
		return
	}

	alerts, err := s.history.Recent(limit)
	if err != nil {
		logger.Error("Failed to load alert history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load alerts"})
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
