package server

import (
	"net/http"
	"strings"

	"github.com/andresilva/b3folio/internal/models"
)

// handleQuote returns the live quote for one ticker.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.quotes == nil {
		WriteError(w, http.StatusServiceUnavailable, "Quote client not configured")
		return
	}

	ticker := strings.ToUpper(PathParam(r, "/api/market/quote/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	quote, err := s.quotes.GetQuote(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, quote)
}

// analysisRequest is the POST /api/analysis/{ticker} payload.
type analysisRequest struct {
	Strategy string             `json:"strategy"`
	Data     models.CompanyData `json:"data"`
}

// handleAnalysis passes company ratios through to the valuation engine.
// Returns 503 when no engine is configured.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.valuation == nil {
		WriteError(w, http.StatusServiceUnavailable, "Valuation engine not configured")
		return
	}

	ticker := strings.ToUpper(PathParam(r, "/api/analysis/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	var req analysisRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Data.Ticker = ticker

	result, err := s.valuation.RunAnalysis(r.Context(), req.Data, req.Strategy)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
