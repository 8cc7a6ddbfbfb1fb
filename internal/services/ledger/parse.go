package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/models"
)

// dateLayouts are the accepted transaction date formats: ISO, ISO with time,
// and the Brazilian day-first convention seen in broker statements.
var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", "02/01/2006"}

// parseDate parses a transaction date string, trying each accepted layout.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTransaction validates a raw record and returns a fully-derived
// Transaction. The input is never mutated; every derivation produces the
// output record in one step. On rejection the returned string describes the
// problem in user-facing terms.
func parseTransaction(raw models.RawTransaction) (models.Transaction, string) {
	var zero models.Transaction

	txType := models.TransactionType(strings.ToUpper(strings.TrimSpace(raw.Type)))
	if !models.ValidTransactionType(txType) {
		return zero, fmt.Sprintf("tipo de transação inválido: %q", raw.Type)
	}

	ticker := strings.ToUpper(strings.TrimSpace(raw.Ticker))
	if models.RequiresTicker(txType) && ticker == "" {
		return zero, fmt.Sprintf("transação %s deve informar o ticker", txType)
	}

	date, ok := parseDate(raw.Date)
	if !ok {
		return zero, fmt.Sprintf("data inválida: %q (use o formato AAAA-MM-DD)", raw.Date)
	}

	if raw.Price < 0 || math.IsNaN(raw.Price) || math.IsInf(raw.Price, 0) {
		return zero, fmt.Sprintf("preço inválido para %s: %v", ticker, raw.Price)
	}
	if raw.Quantity < 0 || math.IsNaN(raw.Quantity) || math.IsInf(raw.Quantity, 0) {
		return zero, fmt.Sprintf("quantidade inválida para %s: %v", ticker, raw.Quantity)
	}
	if math.IsNaN(raw.Amount) || math.IsInf(raw.Amount, 0) {
		return zero, "valor da transação deve ser um número finito"
	}

	tx := models.Transaction{
		Type:     txType,
		Ticker:   ticker,
		Amount:   raw.Amount,
		Price:    raw.Price,
		Quantity: raw.Quantity,
		Date:     date,
		Notes:    strings.TrimSpace(raw.Notes),
	}

	if txType == models.TxBuy {
		derived, reason := deriveBuy(tx)
		if reason != "" {
			return zero, reason
		}
		tx = derived
	}

	if tx.Amount <= 0 {
		return zero, fmt.Sprintf("valor da transação %s deve ser positivo, recebido %v", txType, raw.Amount)
	}

	return tx, ""
}

// deriveBuy completes a BUY record: at least two of {amount, price, quantity}
// must be present and the third is derived. A supplied amount that already
// agrees with price × quantity within a cent is kept as-is, so a record that
// went through derivation once replays to the same amount (the cent-rounded
// price would otherwise drift the recomputed total).
func deriveBuy(tx models.Transaction) (models.Transaction, string) {
	hasAmount := tx.Amount > 0
	hasPrice := tx.Price > 0
	hasQuantity := tx.Quantity > 0

	switch {
	case hasAmount && hasPrice && hasQuantity:
		if math.Abs(tx.Amount-tx.Quantity*tx.Price) > 0.01*tx.Quantity {
			tx.Amount = common.RoundCents(tx.Quantity * tx.Price)
		}
	case hasPrice && hasQuantity:
		tx.Amount = common.RoundCents(tx.Quantity * tx.Price)
	case hasAmount && hasQuantity:
		tx.Price = common.RoundCents(tx.Amount / tx.Quantity)
	case hasAmount && hasPrice:
		tx.Quantity = tx.Amount / tx.Price
	case hasAmount:
		return tx, fmt.Sprintf(
			"compra de %s deve informar quantidade (ex: 100) ou preço (ex: 32.50) além do valor",
			tx.Ticker)
	default:
		return tx, fmt.Sprintf(
			"compra de %s deve informar ao menos dois entre valor, quantidade e preço (ex: valor=3250.00 quantidade=100)",
			tx.Ticker)
	}

	return tx, ""
}
