// Package interfaces defines service contracts for b3folio
package interfaces

import (
	"context"

	"github.com/andresilva/b3folio/internal/models"
)

// LedgerService is the transaction reconciliation and cash-matching engine.
// Reconcile is a pure in-process pass over one batch: it validates, orders
// chronologically, maintains a running cash balance, and synthesizes
// contributions to cover purchase shortfalls. It always returns a result,
// never an error, for individually bad records.
type LedgerService interface {
	Reconcile(initialBalance float64, raw []models.RawTransaction) *models.ReconcileResult
}

// PortfolioService manages stored transaction batches and derived positions.
type PortfolioService interface {
	// SetTransactions validates and reconciles a raw batch, then persists it.
	SetTransactions(ctx context.Context, portfolioName string, initialBalance float64, raw []models.RawTransaction) (*models.ReconcileResult, error)

	// GetTransactions returns the stored reconciled batch.
	GetTransactions(ctx context.Context, portfolioName string) (*models.TransactionBatch, error)

	// GetPortfolio computes positions and totals from the stored batch,
	// enriched with live quotes when the quote client is available.
	GetPortfolio(ctx context.Context, portfolioName string) (*models.Portfolio, error)

	// ListPortfolios returns portfolio names with stored transactions.
	ListPortfolios(ctx context.Context) ([]string, error)

	// ImportTransactions extracts transactions from free-form statement text
	// via the AI client, reconciles them against the stored batch, and persists
	// the merged result.
	ImportTransactions(ctx context.Context, portfolioName string, text string) (*models.ReconcileResult, error)
}

// BacktestService replays a transaction batch against historical prices.
type BacktestService interface {
	// Run simulates the batch and stores the result under the portfolio name.
	Run(ctx context.Context, portfolioName string, req models.BacktestRequest) (*models.BacktestResult, error)
}

// TicketService manages support tickets.
type TicketService interface {
	Create(ctx context.Context, subject, body string) (*models.Ticket, error)
	Get(ctx context.Context, id string) (*models.Ticket, error)
	List(ctx context.Context) ([]*models.Ticket, error)
	AddMessage(ctx context.Context, id, author, body string) (*models.Ticket, error)
	SetStatus(ctx context.Context, id, status string) (*models.Ticket, error)
}

// ValuationEngine is the external fundamental-analysis collaborator.
// Implementations evaluate a strategy's formulas over company ratios;
// b3folio treats the scoring itself as a black box.
type ValuationEngine interface {
	RunAnalysis(ctx context.Context, data models.CompanyData, strategy string) (*models.AnalysisResult, error)
}
