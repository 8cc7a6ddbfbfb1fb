package server

import (
	"net/http"
	"strings"

	"github.com/andresilva/b3folio/internal/models"
)

// handleListPortfolios returns the names of portfolios with stored transactions.
func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	names, err := s.portfolio.ListPortfolios(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"portfolios": names})
}

// handleGetPortfolio returns the computed positions and totals for one portfolio.
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	p, err := s.portfolio.GetPortfolio(r.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// setTransactionsRequest is the PUT /transactions and POST /reconcile payload.
type setTransactionsRequest struct {
	InitialBalance float64                 `json:"initial_balance"`
	Transactions   []models.RawTransaction `json:"transactions"`
}

// handleTransactions lists or replaces the stored batch.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		batch, err := s.portfolio.GetTransactions(r.Context(), name)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, batch)

	case http.MethodPut:
		var req setTransactionsRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		result, err := s.portfolio.SetTransactions(r.Context(), name, req.InitialBalance, req.Transactions)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, result)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// importRequest is the POST /transactions/import payload.
type importRequest struct {
	Text string `json:"text"`
}

// handleImportTransactions extracts transactions from statement text and
// merges them into the stored batch.
func (s *Server) handleImportTransactions(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.ai == nil {
		WriteError(w, http.StatusServiceUnavailable, "AI client not configured")
		return
	}
	var req importRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "Statement text is required")
		return
	}
	result, err := s.portfolio.ImportTransactions(r.Context(), name, req.Text)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleReconcile runs a reconciliation pass without persisting anything.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req setTransactionsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	result := s.ledger.Reconcile(req.InitialBalance, req.Transactions)
	WriteJSON(w, http.StatusOK, result)
}

// handleBacktest runs a simulation for the portfolio.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.quotes == nil {
		WriteError(w, http.StatusServiceUnavailable, "Quote client not configured")
		return
	}
	var req models.BacktestRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	result, err := s.backtest.Run(r.Context(), name, req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// chatRequest is the POST /chat payload.
type chatRequest struct {
	Question string `json:"question"`
}

// handleChat answers a question about the portfolio via the AI client.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.ai == nil {
		WriteError(w, http.StatusServiceUnavailable, "AI client not configured")
		return
	}
	var req chatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		WriteError(w, http.StatusBadRequest, "Question is required")
		return
	}

	p, err := s.portfolio.GetPortfolio(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	answer, err := s.ai.Chat(r.Context(), req.Question, p)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
