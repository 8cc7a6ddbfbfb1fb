// Package server exposes the REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresilva/b3folio/internal/app"
	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	config    *common.Config
	logger    *common.Logger
	storage   interfaces.StorageManager
	quotes    interfaces.QuoteClient
	ai        interfaces.AIClient
	ledger    interfaces.LedgerService
	portfolio interfaces.PortfolioService
	backtest  interfaces.BacktestService
	tickets   interfaces.TicketService
	valuation interfaces.ValuationEngine
	startup   time.Time

	server *http.Server
}

// NewServer creates a new HTTP REST API server.
func NewServer(a *app.App) *Server {
	s := &Server{
		config:    a.Config,
		logger:    a.Logger,
		storage:   a.Storage,
		quotes:    a.QuoteClient,
		ai:        a.AIClient,
		ledger:    a.LedgerService,
		portfolio: a.PortfolioService,
		backtest:  a.BacktestService,
		tickets:   a.TicketService,
		valuation: a.ValuationEngine,
		startup:   a.StartupTime,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, a.Logger, a.Config, a.Storage.InternalStore())

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
