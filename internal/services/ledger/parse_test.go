package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresilva/b3folio/internal/models"
)

func TestParseTransactionRejectsUnknownType(t *testing.T) {
	_, reason := parseTransaction(models.RawTransaction{
		Type: "SHORT_SELL", Amount: 100, Date: "2024-10-22",
	})
	assert.Contains(t, reason, "tipo de transação inválido")
}

func TestParseTransactionRequiresTicker(t *testing.T) {
	for _, typ := range []string{"BUY", "SELL_WITHDRAWAL", "DIVIDEND"} {
		_, reason := parseTransaction(models.RawTransaction{
			Type: typ, Amount: 100, Quantity: 10, Date: "2024-10-22",
		})
		assert.Contains(t, reason, "deve informar o ticker", "type %s", typ)
	}

	// Cash movements carry no ticker
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "CASH_CREDIT", Amount: 100, Date: "2024-10-22",
	})
	require.Empty(t, reason)
	assert.Equal(t, models.TxCashCredit, tx.Type)
}

func TestParseTransactionRejectsBadDate(t *testing.T) {
	_, reason := parseTransaction(models.RawTransaction{
		Type: "CASH_CREDIT", Amount: 100, Date: "22 de outubro",
	})
	assert.Contains(t, reason, "data inválida")
}

func TestParseTransactionAcceptsBrazilianDate(t *testing.T) {
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "CASH_CREDIT", Amount: 100, Date: "22/10/2024",
	})
	require.Empty(t, reason)
	assert.Equal(t, "2024-10-22", tx.Date.Format("2006-01-02"))
}

func TestParseTransactionRejectsNonPositiveAmount(t *testing.T) {
	_, reason := parseTransaction(models.RawTransaction{
		Type: "CASH_DEBIT", Amount: -50, Date: "2024-10-22",
	})
	assert.Contains(t, reason, "deve ser positivo")

	_, reason = parseTransaction(models.RawTransaction{
		Type: "DIVIDEND", Ticker: "ITSA4", Date: "2024-10-22",
	})
	assert.Contains(t, reason, "deve ser positivo")
}

func TestParseBuyDerivesPriceFromAmountAndQuantity(t *testing.T) {
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "BUY", Ticker: "PETR4", Amount: 3250.00, Quantity: 100, Date: "2024-10-22",
	})
	require.Empty(t, reason)
	assert.InDelta(t, 32.50, tx.Price, 1e-9)
	assert.InDelta(t, 3250.00, tx.Amount, 1e-9)
}

func TestParseBuyOverwritesAmountFromPriceAndQuantity(t *testing.T) {
	// Inconsistent caller amount is recomputed from quantity × price.
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "BUY", Ticker: "VALE3", Amount: 9999, Price: 61.20, Quantity: 50, Date: "2024-10-22",
	})
	require.Empty(t, reason)
	assert.InDelta(t, 3060.00, tx.Amount, 1e-9)
}

func TestParseBuyKeepsAmountConsistentWithinCentPerShare(t *testing.T) {
	// 3060.33 / 50 rounds to a unit price of 61.21; 50 × 61.21 = 3060.50.
	// On replay the original amount must survive, not the recomputed total.
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "BUY", Ticker: "VALE3", Amount: 3060.33, Price: 61.21, Quantity: 50, Date: "2024-03-10",
	})
	require.Empty(t, reason)
	assert.InDelta(t, 3060.33, tx.Amount, 1e-9)
	assert.InDelta(t, 61.21, tx.Price, 1e-9)
}

func TestParseBuyDerivesQuantityFromAmountAndPrice(t *testing.T) {
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "BUY", Ticker: "BBAS3", Amount: 2700.00, Price: 27.00, Date: "2024-10-22",
	})
	require.Empty(t, reason)
	assert.InDelta(t, 100, tx.Quantity, 1e-9)
}

func TestParseBuyMissingDerivablePairIsRejected(t *testing.T) {
	_, reason := parseTransaction(models.RawTransaction{
		Type: "BUY", Ticker: "PETR4", Amount: 5000, Date: "2024-10-22",
	})
	assert.Contains(t, reason, "deve informar quantidade")
	assert.Contains(t, reason, "ou preço")
}

func TestParseTransactionNormalizesTickerAndType(t *testing.T) {
	tx, reason := parseTransaction(models.RawTransaction{
		Type: "buy", Ticker: " petr4 ", Amount: 100, Quantity: 10, Date: "2024-10-22",
	})
	require.Empty(t, reason)
	assert.Equal(t, models.TxBuy, tx.Type)
	assert.Equal(t, "PETR4", tx.Ticker)
}

func TestParseTransactionDoesNotMutateInput(t *testing.T) {
	raw := models.RawTransaction{
		Type: "BUY", Ticker: "PETR4", Amount: 3250.00, Quantity: 100, Date: "2024-10-22",
	}
	_, reason := parseTransaction(raw)
	require.Empty(t, reason)
	assert.Zero(t, raw.Price, "input record must stay untouched")
}
