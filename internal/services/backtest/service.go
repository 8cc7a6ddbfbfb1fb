// Package backtest replays a transaction batch month by month against
// historical closes, producing an equity curve.
package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
)

// subjectBacktest is the UserRecord subject for stored simulation results.
const subjectBacktest = "backtest"

const monthLayout = "2006-01"

// Compile-time interface check
var _ interfaces.BacktestService = (*Service)(nil)

// Service implements BacktestService.
type Service struct {
	storage interfaces.StorageManager
	ledger  interfaces.LedgerService
	quotes  interfaces.QuoteClient
	logger  *common.Logger
}

// NewService creates a new backtest service.
func NewService(
	storage interfaces.StorageManager,
	ledgerSvc interfaces.LedgerService,
	quotes interfaces.QuoteClient,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		storage: storage,
		ledger:  ledgerSvc,
		quotes:  quotes,
		logger:  logger,
	}
}

// Run reconciles the request batch, replays it month by month valuing holdings
// at each month's close, and stores the result under the portfolio name.
func (s *Service) Run(ctx context.Context, portfolioName string, req models.BacktestRequest) (*models.BacktestResult, error) {
	if s.quotes == nil {
		return nil, fmt.Errorf("quote client not configured")
	}

	reconciled := s.ledger.Reconcile(req.InitialBalance, req.Transactions)
	if len(reconciled.Transactions) == 0 {
		return nil, fmt.Errorf("no valid transactions to simulate")
	}

	start := monthOf(reconciled.Transactions[0].Date)
	end := monthOf(time.Now())
	if req.EndDate != "" {
		parsed, err := time.Parse(monthLayout, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end month %q: expected YYYY-MM", req.EndDate)
		}
		end = parsed
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end month %s precedes first transaction month %s",
			end.Format(monthLayout), start.Format(monthLayout))
	}
	startMonth := start.Format(monthLayout)
	endMonth := end.Format(monthLayout)

	result := &models.BacktestResult{
		PortfolioName: portfolioName,
		StartMonth:    startMonth,
		EndMonth:      endMonth,
		Warnings:      reconciled.Warnings,
		Errors:        reconciled.Errors,
		RanAt:         time.Now(),
	}

	closes := s.fetchCloses(ctx, reconciled.Transactions, startMonth, endMonth, result)
	s.simulate(reconciled.Transactions, req.InitialBalance, start, end, closes, result)

	if err := s.saveResult(ctx, portfolioName, result); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("portfolio", portfolioName).
		Str("start", startMonth).
		Str("end", endMonth).
		Float64("final_value", result.FinalValue).
		Msg("Backtest complete")

	return result, nil
}

// fetchCloses loads monthly close maps per ticker. Tickers without history get
// a warning and are valued at zero.
func (s *Service) fetchCloses(ctx context.Context, txs []models.Transaction, startMonth, endMonth string, result *models.BacktestResult) map[string]map[string]float64 {
	closes := make(map[string]map[string]float64)
	for _, tx := range txs {
		if tx.Ticker == "" {
			continue
		}
		if _, done := closes[tx.Ticker]; done {
			continue
		}
		history, err := s.quotes.GetMonthlyHistory(ctx, tx.Ticker, startMonth, endMonth)
		if err != nil || len(history) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Sem histórico de preços para %s; posição avaliada como zero", tx.Ticker))
			closes[tx.Ticker] = map[string]float64{}
			continue
		}
		byMonth := make(map[string]float64, len(history))
		for _, h := range history {
			byMonth[h.Month] = h.Close
		}
		closes[tx.Ticker] = byMonth
	}
	return closes
}

// simulate walks the month range applying transactions and valuing holdings
// at each month's close. Missing closes carry the last known price forward.
func (s *Service) simulate(txs []models.Transaction, initialBalance float64, start, end time.Time, closes map[string]map[string]float64, result *models.BacktestResult) {
	holdings := make(map[string]float64)
	lastPrice := make(map[string]float64)
	cash := initialBalance
	contributed := initialBalance

	idx := 0
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		month := cur.Format(monthLayout)
		for idx < len(txs) && txs[idx].Date.Format(monthLayout) <= month {
			tx := txs[idx]
			cash += tx.SignedAmount()
			switch tx.Type {
			case models.TxCashCredit:
				contributed += tx.Amount
			case models.TxBuy:
				holdings[tx.Ticker] += tx.Quantity
			case models.TxSellWithdrawal:
				if tx.Quantity > 0 {
					holdings[tx.Ticker] -= tx.Quantity
					if holdings[tx.Ticker] < 0 {
						holdings[tx.Ticker] = 0
					}
				}
			}
			idx++
		}

		marketValue := 0.0
		for ticker, qty := range holdings {
			if qty <= 0 {
				continue
			}
			price, ok := closes[ticker][month]
			if ok {
				lastPrice[ticker] = price
			} else {
				price = lastPrice[ticker]
			}
			marketValue += qty * price
		}

		result.EquityCurve = append(result.EquityCurve, models.EquityPoint{
			Month:       month,
			MarketValue: common.RoundCents(marketValue),
			CashBalance: common.RoundCents(cash),
			TotalValue:  common.RoundCents(marketValue + cash),
			Contributed: common.RoundCents(contributed),
		})
	}

	last := result.EquityCurve[len(result.EquityCurve)-1]
	result.TotalContributed = last.Contributed
	result.FinalValue = last.TotalValue
	if result.TotalContributed > 0 {
		result.SimpleReturnPct = common.RoundCents(
			(result.FinalValue - result.TotalContributed) / result.TotalContributed * 100)
	}
}

func (s *Service) saveResult(ctx context.Context, portfolioName string, result *models.BacktestResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result: %w", err)
	}
	rec := &models.UserRecord{
		UserID:  common.ResolveUserID(ctx),
		Subject: subjectBacktest,
		Key:     portfolioName,
		Value:   string(payload),
	}
	if err := s.storage.UserDataStore().Put(ctx, rec); err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// monthOf truncates a date to the first day of its month in UTC, so month
// stepping and comparisons never depend on day-of-month or zone.
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
