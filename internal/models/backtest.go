package models

import "time"

// BacktestRequest configures a portfolio simulation run.
type BacktestRequest struct {
	InitialBalance float64          `json:"initial_balance"`
	Transactions   []RawTransaction `json:"transactions"`
	EndDate        string           `json:"end_date,omitempty"` // "2006-01" month, defaults to current
}

// EquityPoint is one month of the simulated equity curve.
type EquityPoint struct {
	Month       string  `json:"month"` // "2006-01"
	MarketValue float64 `json:"market_value"`
	CashBalance float64 `json:"cash_balance"`
	TotalValue  float64 `json:"total_value"`
	Contributed float64 `json:"contributed"` // cumulative cash in
}

// BacktestResult is the outcome of one simulation run.
type BacktestResult struct {
	PortfolioName    string        `json:"portfolio_name"`
	StartMonth       string        `json:"start_month"`
	EndMonth         string        `json:"end_month"`
	TotalContributed float64       `json:"total_contributed"`
	FinalValue       float64       `json:"final_value"`
	SimpleReturnPct  float64       `json:"simple_return_pct"`
	EquityCurve      []EquityPoint `json:"equity_curve"`
	Warnings         []string      `json:"warnings,omitempty"`
	Errors           []string      `json:"errors,omitempty"`
	RanAt            time.Time     `json:"ran_at"`
}
