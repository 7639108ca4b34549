package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"economy/domain/interfaces"
	"economy/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Server serves the mini-app API and the charge endpoint
type Server struct {
	market      interfaces.MarketService
	coins       interfaces.CoinService
	leaderboard interfaces.Leaderboard
	keys        *KeyVerifier
	mux         *http.ServeMux
}

// NewServer creates a new HTTP server. leaderboard may be nil, which disables /api/top.
func NewServer(market interfaces.MarketService, coins interfaces.CoinService, leaderboard interfaces.Leaderboard, keys *KeyVerifier) *Server {
	s := &Server{
		market:      market,
		coins:       coins,
		leaderboard: leaderboard,
		keys:        keys,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /api/poll/{id}", "poll", s.getPoll)
	s.handle("GET /api/balance/{uid}", "balance", s.getBalance)
	s.handle("GET /api/bet/{poll}/{uid}", "bet", s.getBet)
	s.handle("POST /api/bet", "place_bet", s.placeBet)
	s.handle("GET /api/top", "top", s.getTop)
	s.handle("POST /charge", "charge", s.charge)
	s.handle("GET /health", "health", s.health)
}

func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	s.mux.Handle(pattern, instrument(route, h))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("Shutting down HTTP server...")
	return srv.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		observability.GetMetrics().RecordHTTPRequest(route, rec.status)
	})
}
