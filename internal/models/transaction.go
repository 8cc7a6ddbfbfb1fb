package models

import "time"

// TransactionType categorizes the direction and purpose of a portfolio transaction.
type TransactionType string

const (
	TxCashCredit     TransactionType = "CASH_CREDIT"
	TxCashDebit      TransactionType = "CASH_DEBIT"
	TxBuy            TransactionType = "BUY"
	TxSellWithdrawal TransactionType = "SELL_WITHDRAWAL"
	TxDividend       TransactionType = "DIVIDEND"
)

// validTransactionTypes lists all accepted transaction types.
var validTransactionTypes = map[TransactionType]bool{
	TxCashCredit:     true,
	TxCashDebit:      true,
	TxBuy:            true,
	TxSellWithdrawal: true,
	TxDividend:       true,
}

// ValidTransactionType returns true if t is a recognized transaction type.
func ValidTransactionType(t TransactionType) bool {
	return validTransactionTypes[t]
}

// RequiresTicker returns true if the transaction type must carry a ticker.
// Pure cash movements (credit/debit) have no ticker.
func RequiresTicker(t TransactionType) bool {
	switch t {
	case TxBuy, TxSellWithdrawal, TxDividend:
		return true
	default:
		return false
	}
}

// RawTransaction is an untrusted transaction record as supplied by a caller —
// either user input or AI extraction output. All fields are loosely typed;
// the ledger parser validates and derives before anything else touches it.
type RawTransaction struct {
	Type     string  `json:"type"`
	Ticker   string  `json:"ticker,omitempty"`
	Amount   float64 `json:"amount"`
	Price    float64 `json:"price,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	Date     string  `json:"date"`
	Notes    string  `json:"notes,omitempty"`
}

// Transaction is a validated, fully-derived portfolio transaction.
// Instances are immutable once produced by the parser; derivation steps
// return new records rather than mutating in place.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	Type        TransactionType `json:"type"`
	Ticker      string          `json:"ticker,omitempty"`
	Amount      float64         `json:"amount"`
	Price       float64         `json:"price,omitempty"`
	Quantity    float64         `json:"quantity,omitempty"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes,omitempty"`
	Synthesized bool            `json:"synthesized,omitempty"`
}

// SignedAmount returns the amount with cash-flow direction applied:
// positive for money entering the cash balance, negative for money leaving it.
func (t Transaction) SignedAmount() float64 {
	switch t.Type {
	case TxCashCredit, TxDividend, TxSellWithdrawal:
		return t.Amount
	case TxCashDebit, TxBuy:
		return -t.Amount
	default:
		return 0
	}
}

// ReconcileResult is the outcome of one reconciliation pass over a batch.
// Transactions are in chronological order with synthesized contributions
// interleaved immediately before the purchases they back. Errors describe
// individually rejected records; warnings are non-fatal findings. The pass
// never aborts a batch for a single bad record.
type ReconcileResult struct {
	Transactions []Transaction `json:"transactions"`
	Errors       []string      `json:"errors"`
	Warnings     []string      `json:"warnings"`
	FinalBalance float64       `json:"final_balance"`
}

// TransactionBatch stores the reconciled transaction history for a portfolio.
type TransactionBatch struct {
	PortfolioName  string        `json:"portfolio_name"`
	InitialBalance float64       `json:"initial_balance"`
	Transactions   []Transaction `json:"transactions"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
