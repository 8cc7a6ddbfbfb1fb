// Package interfaces defines service contracts for b3folio
package interfaces

import (
	"context"

	"github.com/andresilva/b3folio/internal/models"
)

// QuoteClient provides B3 quote and price-history data.
type QuoteClient interface {
	// GetQuote fetches the latest quote for a ticker (e.g. "PETR4").
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetQuotes fetches quotes for multiple tickers in one call.
	GetQuotes(ctx context.Context, tickers []string) ([]*models.Quote, error)

	// GetMonthlyHistory returns monthly closes for a ticker, oldest first.
	GetMonthlyHistory(ctx context.Context, ticker string, fromMonth, toMonth string) ([]models.MonthlyClose, error)
}

// ExtractionResult carries AI-extracted candidate transactions plus advisory
// findings. The extraction output is untrusted; the ledger parser fully
// re-validates every record.
type ExtractionResult struct {
	Transactions []models.RawTransaction `json:"transactions"`
	Warnings     []string                `json:"warnings,omitempty"`
}

// AIClient provides LLM-backed extraction and chat.
type AIClient interface {
	// ExtractTransactions parses free-form brokerage statement text into
	// candidate transaction records.
	ExtractTransactions(ctx context.Context, text string) (*ExtractionResult, error)

	// Chat answers a question about a portfolio.
	Chat(ctx context.Context, question string, portfolio *models.Portfolio) (string, error)
}
