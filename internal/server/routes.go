package server

import (
	"net/http"
	"strings"
)

// registerRoutes wires all REST API endpoints.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Portfolios
	mux.HandleFunc("/api/portfolios", s.handleListPortfolios)
	mux.HandleFunc("/api/portfolios/", s.routePortfolio)

	// Market data
	mux.HandleFunc("/api/market/quote/", s.handleQuote)

	// Valuation engine passthrough
	mux.HandleFunc("/api/analysis/", s.handleAnalysis)

	// Support tickets
	mux.HandleFunc("/api/tickets", s.handleTickets)
	mux.HandleFunc("/api/tickets/", s.handleTicketByID)

	// Admin
	mux.HandleFunc("/api/admin/users", s.handleAdminUsers)
	mux.HandleFunc("/api/admin/users/", s.handleAdminUserByID)
	mux.HandleFunc("/api/admin/config/", s.handleAdminConfig)
}

// routePortfolio dispatches /api/portfolios/{name}[/...] requests.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	name, sub, _ := strings.Cut(rest, "/")
	if name == "" {
		WriteError(w, http.StatusNotFound, "Portfolio name is required")
		return
	}

	switch sub {
	case "":
		s.handleGetPortfolio(w, r, name)
	case "transactions":
		s.handleTransactions(w, r, name)
	case "transactions/import":
		s.handleImportTransactions(w, r, name)
	case "reconcile":
		s.handleReconcile(w, r, name)
	case "backtest":
		s.handleBacktest(w, r, name)
	case "chat":
		s.handleChat(w, r, name)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
