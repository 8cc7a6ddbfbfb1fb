package models

import "time"

// Position is a per-ticker holding derived by replaying reconciled transactions.
type Position struct {
	Ticker       string     `json:"ticker"`
	Quantity     float64    `json:"quantity"`
	AveragePrice float64    `json:"average_price"`
	Invested     float64    `json:"invested"`
	Proceeds     float64    `json:"proceeds"`
	Dividends    float64    `json:"dividends"`
	LastPrice    float64    `json:"last_price,omitempty"`
	MarketValue  float64    `json:"market_value,omitempty"`
	GainLoss     float64    `json:"gain_loss,omitempty"`
	GainLossPct  float64    `json:"gain_loss_pct,omitempty"`
	FirstTradeAt *time.Time `json:"first_trade_at,omitempty"`
	LastTradeAt  *time.Time `json:"last_trade_at,omitempty"`
}

// Portfolio is the computed view of one portfolio: positions plus cash.
type Portfolio struct {
	Name             string     `json:"name"`
	Positions        []Position `json:"positions"`
	CashBalance      float64    `json:"cash_balance"`
	TotalInvested    float64    `json:"total_invested"`
	TotalDividends   float64    `json:"total_dividends"`
	TotalMarketValue float64    `json:"total_market_value"`
	TotalValue       float64    `json:"total_value"` // market value + cash
	TransactionCount int        `json:"transaction_count"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
