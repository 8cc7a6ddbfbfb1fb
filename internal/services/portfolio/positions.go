package portfolio

import (
	"sort"
	"time"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/models"
	"github.com/andresilva/b3folio/internal/services/ledger"
)

// derivePortfolio replays the reconciled batch into per-ticker positions.
// Buys accumulate quantity and cost at the running average price; sales
// release cost at that average and book the difference as proceeds.
func derivePortfolio(batch *models.TransactionBatch) *models.Portfolio {
	byTicker := make(map[string]*models.Position)
	order := []string{}

	position := func(ticker string) *models.Position {
		if pos, ok := byTicker[ticker]; ok {
			return pos
		}
		pos := &models.Position{Ticker: ticker}
		byTicker[ticker] = pos
		order = append(order, ticker)
		return pos
	}

	for _, tx := range batch.Transactions {
		if tx.Ticker == "" {
			continue
		}
		pos := position(tx.Ticker)
		touch(pos, tx.Date)

		switch tx.Type {
		case models.TxBuy:
			pos.Quantity += tx.Quantity
			pos.Invested = common.RoundCents(pos.Invested + tx.Amount)
			if pos.Quantity > 0 {
				pos.AveragePrice = pos.Invested / pos.Quantity
			}

		case models.TxSellWithdrawal:
			pos.Proceeds = common.RoundCents(pos.Proceeds + tx.Amount)
			if tx.Quantity > 0 && pos.Quantity > 0 {
				sold := tx.Quantity
				if sold > pos.Quantity {
					sold = pos.Quantity
				}
				pos.Invested = common.RoundCents(pos.Invested - sold*pos.AveragePrice)
				pos.Quantity -= sold
				if pos.Quantity <= 0 {
					pos.Quantity = 0
					pos.Invested = 0
				}
			}

		case models.TxDividend:
			pos.Dividends = common.RoundCents(pos.Dividends + tx.Amount)
		}
	}

	cash, _ := ledger.ReplayBalance(batch.InitialBalance, batch.Transactions)

	p := &models.Portfolio{
		Name:             batch.PortfolioName,
		Positions:        make([]models.Position, 0, len(order)),
		CashBalance:      cash,
		TransactionCount: len(batch.Transactions),
		UpdatedAt:        batch.UpdatedAt,
	}
	sort.Strings(order)
	for _, ticker := range order {
		pos := byTicker[ticker]
		p.TotalInvested = common.RoundCents(p.TotalInvested + pos.Invested)
		p.TotalDividends = common.RoundCents(p.TotalDividends + pos.Dividends)
		p.Positions = append(p.Positions, *pos)
	}
	p.TotalValue = common.RoundCents(p.TotalInvested + p.CashBalance)
	return p
}

func touch(pos *models.Position, date time.Time) {
	if pos.FirstTradeAt == nil || date.Before(*pos.FirstTradeAt) {
		d := date
		pos.FirstTradeAt = &d
	}
	if pos.LastTradeAt == nil || date.After(*pos.LastTradeAt) {
		d := date
		pos.LastTradeAt = &d
	}
}
