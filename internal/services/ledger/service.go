// Package ledger implements the transaction reconciliation and cash-matching
// engine: a single chronological pass over one batch that maintains a running
// cash balance and synthesizes contributions to cover purchase shortfalls.
package ledger

import (
	"fmt"
	"sort"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
)

// Compile-time interface check
var _ interfaces.LedgerService = (*Service)(nil)

// centEpsilon guards the cent boundary: balances within half a cent of a
// purchase cost are treated as sufficient, so replaying an already-reconciled
// batch never re-synthesizes a 1-cent contribution.
const centEpsilon = 0.005

// Service implements LedgerService.
type Service struct {
	logger *common.Logger
}

// NewService creates a new ledger service.
func NewService(logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{logger: logger}
}

// Reconcile runs one reconciliation pass: validate each record, order the
// valid ones chronologically (stable for equal dates, preserving caller
// order), then walk the sequence applying the cash-balance transition rules.
// The pass is O(n), single-threaded, and never aborts the batch for an
// individually bad record: the result always carries every validly-processed
// transaction plus the error and warning lists.
func (s *Service) Reconcile(initialBalance float64, raw []models.RawTransaction) *models.ReconcileResult {
	result := &models.ReconcileResult{
		Transactions: []models.Transaction{},
		Errors:       []string{},
		Warnings:     []string{},
	}

	valid := make([]models.Transaction, 0, len(raw))
	for i, r := range raw {
		tx, reason := parseTransaction(r)
		if reason != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("transação %d: %s", i+1, reason))
			continue
		}
		valid = append(valid, tx)
	}

	// Stable keeps caller-supplied same-day ordering (contribution before purchase).
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Date.Before(valid[j].Date)
	})

	balance := initialBalance
	for _, tx := range valid {
		switch tx.Type {
		case models.TxCashCredit, models.TxDividend:
			balance += tx.Amount
			result.Transactions = append(result.Transactions, tx)

		case models.TxSellWithdrawal:
			// Sale proceeds land in cash.
			balance += tx.Amount
			result.Transactions = append(result.Transactions, tx)

		case models.TxCashDebit:
			if tx.Amount > balance+centEpsilon {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Saldo insuficiente para o resgate em %s. Saldo atual: %s, valor solicitado: %s",
					tx.Date.Format("2006-01-02"), common.FormatBRL(balance), common.FormatBRL(tx.Amount)))
				continue
			}
			balance -= tx.Amount
			result.Transactions = append(result.Transactions, tx)

		case models.TxBuy:
			shortfall := common.RoundCents(tx.Amount - balance)
			if shortfall >= 0.01 {
				credit := synthesizeContribution(tx, shortfall)
				result.Transactions = append(result.Transactions, credit)
				balance += shortfall
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"Aporte automático de %s criado para cobrir a compra de %s em %s",
					common.FormatBRL(shortfall), tx.Ticker, tx.Date.Format("2006-01-02")))
				s.logger.Debug().
					Str("ticker", tx.Ticker).
					Float64("shortfall", shortfall).
					Msg("Synthesized contribution for purchase shortfall")
			}
			balance -= tx.Amount
			result.Transactions = append(result.Transactions, tx)

		default:
			// Backstop for types the parser doesn't know yet: pass through
			// without touching the balance.
			result.Transactions = append(result.Transactions, tx)
		}
	}

	result.FinalBalance = common.RoundCents(balance)

	s.logger.Debug().
		Int("input", len(raw)).
		Int("output", len(result.Transactions)).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Float64("final_balance", result.FinalBalance).
		Msg("Reconciliation pass complete")

	return result
}

// synthesizeContribution manufactures the implicit CASH_CREDIT backing a
// purchase shortfall. It carries the purchase date so chronological order is
// preserved, and is distinguishable from a user-entered contribution only by
// its note.
func synthesizeContribution(buy models.Transaction, shortfall float64) models.Transaction {
	return models.Transaction{
		Type:        models.TxCashCredit,
		Amount:      shortfall,
		Date:        buy.Date,
		Notes:       fmt.Sprintf("Aporte automático para compra de %s", buy.Ticker),
		Synthesized: true,
	}
}

// RawBatch converts validated transactions back to raw records, so a stored
// batch can be fed through Reconcile again. Reconciliation is idempotent:
// replaying a reconciled batch synthesizes nothing new.
func RawBatch(txs []models.Transaction) []models.RawTransaction {
	raw := make([]models.RawTransaction, 0, len(txs))
	for _, tx := range txs {
		raw = append(raw, models.RawTransaction{
			Type:     string(tx.Type),
			Ticker:   tx.Ticker,
			Amount:   tx.Amount,
			Price:    tx.Price,
			Quantity: tx.Quantity,
			Date:     tx.Date.Format("2006-01-02"),
			Notes:    tx.Notes,
		})
	}
	return raw
}

// ReplayBalance recomputes the running balance over an already-reconciled
// sequence, returning the minimum prefix balance seen. Used by callers that
// want to assert the non-negative balance invariant after edits.
func ReplayBalance(initialBalance float64, txs []models.Transaction) (final float64, minimum float64) {
	balance := initialBalance
	minimum = balance
	for _, tx := range txs {
		balance += tx.SignedAmount()
		if balance < minimum {
			minimum = balance
		}
	}
	return common.RoundCents(balance), common.RoundCents(minimum)
}
