package models

import "time"

// Quote is a single B3 security quote as returned by the quote provider.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePct     float64   `json:"change_pct"`
	PreviousClose float64   `json:"previous_close,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MonthlyClose is one month of price history for a ticker.
type MonthlyClose struct {
	Month string  `json:"month"` // "2006-01"
	Close float64 `json:"close"`
}

// CompanyData carries the fundamental ratios handed to the valuation engine.
// The engine itself is an external collaborator; these fields are its input
// contract, not a full fundamentals model.
type CompanyData struct {
	Ticker           string  `json:"ticker"`
	Price            float64 `json:"price"`
	EarningsPerShare float64 `json:"earnings_per_share,omitempty"`
	BookValuePerShare float64 `json:"book_value_per_share,omitempty"`
	DividendPerShare float64 `json:"dividend_per_share,omitempty"`
	DividendYield    float64 `json:"dividend_yield,omitempty"`
	PayoutRatio      float64 `json:"payout_ratio,omitempty"`
	NetMargin        float64 `json:"net_margin,omitempty"`
	ROE              float64 `json:"roe,omitempty"`
}

// AnalysisResult is the valuation engine's verdict for one security.
type AnalysisResult struct {
	Ticker     string  `json:"ticker"`
	Strategy   string  `json:"strategy"`
	FairValue  float64 `json:"fair_value"`
	UpsidePct  float64 `json:"upside_pct"`
	IsEligible bool    `json:"is_eligible"`
	Score      float64 `json:"score"`
	Reasons    []string `json:"reasons,omitempty"`
}
