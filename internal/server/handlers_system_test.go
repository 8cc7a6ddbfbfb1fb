package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresilva/b3folio/internal/models"
)

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})

	var resp map[string]interface{}
	rec := doJSON(t, handler, http.MethodGet, "/api/health", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestVersionEndpoint(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})

	var resp map[string]string
	rec := doJSON(t, handler, http.MethodGet, "/api/version", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp["version"])
}

func TestConfigEndpointReportsAvailability(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{
		quotes: &mockQuoteClient{},
	})

	var resp map[string]interface{}
	rec := doJSON(t, handler, http.MethodGet, "/api/config", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["quotes_available"])
	assert.Equal(t, false, resp["ai_available"])
	assert.Equal(t, false, resp["valuation_enabled"])
}

func TestQuoteEndpoint(t *testing.T) {
	quotes := &mockQuoteClient{prices: map[string]float64{"PETR4": 32.50}}
	handler, _ := newTestServer(t, testServerOptions{quotes: quotes})

	var quote models.Quote
	rec := doJSON(t, handler, http.MethodGet, "/api/market/quote/petr4", nil, &quote)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PETR4", quote.Ticker)
	assert.InDelta(t, 32.50, quote.Price, 1e-9)
}

func TestQuoteEndpointWithoutClient(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})
	rec := doJSON(t, handler, http.MethodGet, "/api/market/quote/PETR4", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalysisUnconfiguredReturns503(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})
	rec := doJSON(t, handler, http.MethodPost, "/api/analysis/PETR4", analysisRequest{Strategy: "bazin"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalysisPassthrough(t *testing.T) {
	engine := &mockValuationEngine{result: &models.AnalysisResult{
		FairValue:  41.20,
		UpsidePct:  26.8,
		IsEligible: true,
		Score:      0.82,
	}}
	handler, _ := newTestServer(t, testServerOptions{valuation: engine})

	var result models.AnalysisResult
	rec := doJSON(t, handler, http.MethodPost, "/api/analysis/petr4", analysisRequest{
		Strategy: "bazin",
		Data:     models.CompanyData{Price: 32.50, DividendPerShare: 2.47},
	}, &result)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PETR4", result.Ticker)
	assert.Equal(t, "bazin", result.Strategy)
	assert.True(t, result.IsEligible)
}
