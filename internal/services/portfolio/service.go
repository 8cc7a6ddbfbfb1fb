// Package portfolio manages stored transaction batches and the positions
// derived from them.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
	"github.com/andresilva/b3folio/internal/services/ledger"
)

// subjectTransactions is the UserRecord subject for stored batches.
const subjectTransactions = "transactions"

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Service implements PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	ledger  interfaces.LedgerService
	quotes  interfaces.QuoteClient
	ai      interfaces.AIClient
	logger  *common.Logger
}

// NewService creates a new portfolio service. quotes and ai may be nil; the
// service degrades to stored data only.
func NewService(
	storage interfaces.StorageManager,
	ledgerSvc interfaces.LedgerService,
	quotes interfaces.QuoteClient,
	ai interfaces.AIClient,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		storage: storage,
		ledger:  ledgerSvc,
		quotes:  quotes,
		ai:      ai,
		logger:  logger,
	}
}

// SetTransactions reconciles a raw batch and persists the result. Rejected
// records are reported in the result, not persisted.
func (s *Service) SetTransactions(ctx context.Context, portfolioName string, initialBalance float64, raw []models.RawTransaction) (*models.ReconcileResult, error) {
	if portfolioName == "" {
		return nil, fmt.Errorf("portfolio name is required")
	}

	result := s.ledger.Reconcile(initialBalance, raw)

	batch := &models.TransactionBatch{
		PortfolioName:  portfolioName,
		InitialBalance: initialBalance,
		Transactions:   withIDs(result.Transactions),
		UpdatedAt:      time.Now(),
	}
	if err := s.saveBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("portfolio", portfolioName).
		Int("transactions", len(batch.Transactions)).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("Transaction batch saved")

	return result, nil
}

// GetTransactions returns the stored reconciled batch.
func (s *Service) GetTransactions(ctx context.Context, portfolioName string) (*models.TransactionBatch, error) {
	return s.loadBatch(ctx, portfolioName)
}

// GetPortfolio derives positions and totals from the stored batch, enriched
// with live quotes when the quote client is available.
func (s *Service) GetPortfolio(ctx context.Context, portfolioName string) (*models.Portfolio, error) {
	batch, err := s.loadBatch(ctx, portfolioName)
	if err != nil {
		return nil, err
	}

	p := derivePortfolio(batch)

	if s.quotes != nil && len(p.Positions) > 0 {
		s.enrichWithQuotes(ctx, p)
	}

	return p, nil
}

// ListPortfolios returns the names of portfolios with stored transactions.
func (s *Service) ListPortfolios(ctx context.Context) ([]string, error) {
	userID := common.ResolveUserID(ctx)
	records, err := s.storage.UserDataStore().List(ctx, userID, subjectTransactions)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Key)
	}
	return names, nil
}

// ImportTransactions extracts transactions from free-form statement text via
// the AI client, merges them with the stored batch, reconciles, and persists.
func (s *Service) ImportTransactions(ctx context.Context, portfolioName string, text string) (*models.ReconcileResult, error) {
	if s.ai == nil {
		return nil, fmt.Errorf("AI client not configured")
	}

	extraction, err := s.ai.ExtractTransactions(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract transactions: %w", err)
	}

	// Merge with the existing batch when one exists. Extracted records go
	// after stored ones so same-day ordering favors history.
	var raw []models.RawTransaction
	initialBalance := 0.0
	if batch, err := s.loadBatch(ctx, portfolioName); err == nil {
		raw = ledger.RawBatch(batch.Transactions)
		initialBalance = batch.InitialBalance
	}
	raw = append(raw, extraction.Transactions...)

	result, err := s.SetTransactions(ctx, portfolioName, initialBalance, raw)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, extraction.Warnings...)

	s.logger.Info().
		Str("portfolio", portfolioName).
		Int("extracted", len(extraction.Transactions)).
		Msg("Statement import complete")

	return result, nil
}

// --- persistence helpers ---

func (s *Service) saveBatch(ctx context.Context, batch *models.TransactionBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}
	rec := &models.UserRecord{
		UserID:  common.ResolveUserID(ctx),
		Subject: subjectTransactions,
		Key:     batch.PortfolioName,
		Value:   string(payload),
	}
	if err := s.storage.UserDataStore().Put(ctx, rec); err != nil {
		return fmt.Errorf("failed to save batch '%s': %w", batch.PortfolioName, err)
	}
	return nil
}

func (s *Service) loadBatch(ctx context.Context, portfolioName string) (*models.TransactionBatch, error) {
	userID := common.ResolveUserID(ctx)
	rec, err := s.storage.UserDataStore().Get(ctx, userID, subjectTransactions, portfolioName)
	if err != nil {
		return nil, fmt.Errorf("portfolio '%s' not found", portfolioName)
	}
	var batch models.TransactionBatch
	if err := json.Unmarshal([]byte(rec.Value), &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch '%s': %w", portfolioName, err)
	}
	return &batch, nil
}

// enrichWithQuotes fills last price, market value, and gain/loss per position.
// Quote failures degrade silently to stored data.
func (s *Service) enrichWithQuotes(ctx context.Context, p *models.Portfolio) {
	tickers := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		if pos.Quantity > 0 {
			tickers = append(tickers, pos.Ticker)
		}
	}
	if len(tickers) == 0 {
		return
	}

	quotes, err := s.quotes.GetQuotes(ctx, tickers)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Quote enrichment failed, returning stored data")
		return
	}

	byTicker := make(map[string]*models.Quote, len(quotes))
	for _, q := range quotes {
		byTicker[q.Ticker] = q
	}

	p.TotalMarketValue = 0
	for i := range p.Positions {
		pos := &p.Positions[i]
		q, ok := byTicker[pos.Ticker]
		if !ok || pos.Quantity <= 0 {
			continue
		}
		pos.LastPrice = q.Price
		pos.MarketValue = common.RoundCents(pos.Quantity * q.Price)
		cost := common.RoundCents(pos.Quantity * pos.AveragePrice)
		pos.GainLoss = common.RoundCents(pos.MarketValue - cost)
		if cost > 0 {
			pos.GainLossPct = common.RoundCents(pos.GainLoss / cost * 100)
		}
		p.TotalMarketValue += pos.MarketValue
	}
	p.TotalMarketValue = common.RoundCents(p.TotalMarketValue)
	p.TotalValue = common.RoundCents(p.TotalMarketValue + p.CashBalance)
}

// withIDs assigns IDs to transactions that lack one.
func withIDs(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		out[i] = tx
	}
	return out
}
