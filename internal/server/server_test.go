package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
	"github.com/andresilva/b3folio/internal/services/backtest"
	"github.com/andresilva/b3folio/internal/services/ledger"
	"github.com/andresilva/b3folio/internal/services/portfolio"
	"github.com/andresilva/b3folio/internal/services/ticket"
	"github.com/andresilva/b3folio/internal/storage"

	"github.com/stretchr/testify/require"
)

// mockQuoteClient serves canned quotes and history.
type mockQuoteClient struct {
	prices  map[string]float64
	history map[string][]models.MonthlyClose
}

func (m *mockQuoteClient) GetQuote(_ context.Context, ticker string) (*models.Quote, error) {
	price, ok := m.prices[ticker]
	if !ok {
		return nil, fmt.Errorf("no quote for %s", ticker)
	}
	return &models.Quote{Ticker: ticker, Price: price, Currency: "BRL"}, nil
}

func (m *mockQuoteClient) GetQuotes(ctx context.Context, tickers []string) ([]*models.Quote, error) {
	var quotes []*models.Quote
	for _, t := range tickers {
		if q, err := m.GetQuote(ctx, t); err == nil {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

func (m *mockQuoteClient) GetMonthlyHistory(_ context.Context, ticker, _, _ string) ([]models.MonthlyClose, error) {
	h, ok := m.history[ticker]
	if !ok {
		return nil, fmt.Errorf("no history for %s", ticker)
	}
	return h, nil
}

// mockAIClient returns fixed responses.
type mockAIClient struct {
	extraction *interfaces.ExtractionResult
	answer     string
}

func (m *mockAIClient) ExtractTransactions(context.Context, string) (*interfaces.ExtractionResult, error) {
	if m.extraction == nil {
		return nil, fmt.Errorf("extraction failed")
	}
	return m.extraction, nil
}

func (m *mockAIClient) Chat(context.Context, string, *models.Portfolio) (string, error) {
	return m.answer, nil
}

// mockValuationEngine echoes a canned verdict.
type mockValuationEngine struct {
	result *models.AnalysisResult
}

func (m *mockValuationEngine) RunAnalysis(_ context.Context, data models.CompanyData, strategy string) (*models.AnalysisResult, error) {
	r := *m.result
	r.Ticker = data.Ticker
	r.Strategy = strategy
	return &r, nil
}

// testServerOptions configures newTestServer.
type testServerOptions struct {
	quotes    interfaces.QuoteClient
	ai        interfaces.AIClient
	valuation interfaces.ValuationEngine
}

// newTestServer builds a full server over temp storage with the middleware
// stack applied, returning the handler for httptest requests.
func newTestServer(t *testing.T, opts testServerOptions) (http.Handler, *Server) {
	t.Helper()

	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	dir := t.TempDir()
	cfg.Storage.Internal.Path = dir + "/internal"
	cfg.Storage.User.Path = dir + "/user"

	mgr, err := storage.NewManager(logger, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	ledgerSvc := ledger.NewService(logger)

	s := &Server{
		config:    cfg,
		logger:    logger,
		storage:   mgr,
		quotes:    opts.quotes,
		ai:        opts.ai,
		ledger:    ledgerSvc,
		portfolio: portfolio.NewService(mgr, ledgerSvc, opts.quotes, opts.ai, logger),
		backtest:  backtest.NewService(mgr, ledgerSvc, opts.quotes, logger),
		tickets:   ticket.NewService(mgr, logger),
		valuation: opts.valuation,
		startup:   time.Now(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return applyMiddleware(mux, logger, cfg, mgr.InternalStore()), s
}

// jsonBody encodes v as a JSON request body.
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}
