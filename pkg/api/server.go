// Package api is the read-only reporting HTTP surface: it exposes the
// trade journal, performance view, and per-cycle reports the orchestrator
// already persisted to disk. It never accepts an order, a candle, or an
// option-chain payload — those remain internal/external's concern.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/logger"
	"github.com/ridopark/options-engine/internal/tradelog"
	"github.com/ridopark/options-engine/pkg/api/handlers"
)

// Config tunes the reporting server.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	EnableCORS   bool
	ReportDir    string
	Version      string
}

// Server is the gorilla/mux reporting HTTP server.
type Server struct {
	cfg        Config
	logger     zerolog.Logger
	router     *mux.Router
	httpServer *http.Server
}

// New builds a Server over journal's trade data and the persisted
// per-cycle reports in cfg.ReportDir.
func New(cfg Config, journal *tradelog.Journal, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.With().Str("component", "api_server").Logger(),
		router: mux.NewRouter(),
	}
	s.setupRoutes(journal)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes(journal *tradelog.Journal) {
	if s.cfg.EnableCORS {
		s.router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
	}

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.NewRequestLogger(uuid.NewString(), r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
			logger.LogPerformance(reqLog, "http_request", start, true)
		})
	})

	health := handlers.NewHealthHandler(s.logger, s.cfg.Version)
	s.router.HandleFunc("/health", health.GetHealth).Methods(http.MethodGet)

	reports := handlers.NewReportHandler(journal, s.cfg.ReportDir, s.logger)
	apiRouter := s.router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/trades", reports.GetTrades).Methods(http.MethodGet)
	apiRouter.HandleFunc("/performance", reports.GetPerformance).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports", reports.ListReports).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/{index}", reports.GetLatestReport).Methods(http.MethodGet)
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("address", s.httpServer.Addr).Msg("reporting server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("reporting server failed")
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
