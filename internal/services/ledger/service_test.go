package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/models"
)

func testService() *Service {
	return NewService(common.NewSilentLogger())
}

// Worked example: a purchase with zero balance gets an exact automatic
// contribution immediately before it.
func TestReconcileSynthesizesContributionForShortfall(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(0, []models.RawTransaction{
		{Type: "BUY", Ticker: "PETR4", Amount: 3250.00, Quantity: 100, Date: "2024-10-22"},
	})

	require.Empty(t, result.Errors)
	require.Len(t, result.Transactions, 2)
	require.Len(t, result.Warnings, 1)

	credit := result.Transactions[0]
	buy := result.Transactions[1]

	assert.Equal(t, models.TxCashCredit, credit.Type)
	assert.InDelta(t, 3250.00, credit.Amount, 1e-9)
	assert.Equal(t, "2024-10-22", credit.Date.Format("2006-01-02"))
	assert.Equal(t, "Aporte automático para compra de PETR4", credit.Notes)
	assert.True(t, credit.Synthesized)

	assert.Equal(t, models.TxBuy, buy.Type)
	assert.InDelta(t, 32.50, buy.Price, 1e-9)
	assert.InDelta(t, 0, result.FinalBalance, 1e-9)
	assert.Contains(t, result.Warnings[0], "PETR4")
}

// Worked example: a withdrawal exceeding the balance is rejected with the
// current balance and requested amount, in BRL formatting.
func TestReconcileRejectsInsufficientDebit(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(5000, []models.RawTransaction{
		{Type: "CASH_DEBIT", Amount: 10000, Date: "2024-10-22"},
	})

	assert.Empty(t, result.Transactions)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Saldo insuficiente")
	assert.Contains(t, result.Errors[0], "R$ 5.000,00")
	assert.Contains(t, result.Errors[0], "R$ 10.000,00")
	assert.InDelta(t, 5000, result.FinalBalance, 1e-9)
}

// Worked example: a BUY with neither price nor quantity is rejected and
// nothing is emitted for it.
func TestReconcileRejectsUnderivableBuy(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(0, []models.RawTransaction{
		{Type: "BUY", Ticker: "PETR4", Amount: 5000, Date: "2024-10-22"},
	})

	assert.Empty(t, result.Transactions)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "deve informar quantidade")
}

func TestReconcileChronologicalOrder(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(100000, []models.RawTransaction{
		{Type: "BUY", Ticker: "VALE3", Amount: 3060, Quantity: 50, Date: "2024-06-10"},
		{Type: "CASH_CREDIT", Amount: 2000, Date: "2024-01-05"},
		{Type: "DIVIDEND", Ticker: "ITSA4", Amount: 120, Date: "2024-03-15"},
		{Type: "BUY", Ticker: "PETR4", Amount: 3250, Quantity: 100, Date: "2024-02-01"},
	})

	require.Empty(t, result.Errors)
	for i := 1; i < len(result.Transactions); i++ {
		prev := result.Transactions[i-1].Date
		cur := result.Transactions[i].Date
		assert.False(t, cur.Before(prev), "output must be date-ordered at index %d", i)
	}
}

func TestReconcileStableForEqualDates(t *testing.T) {
	svc := testService()

	// Caller supplies contribution-then-purchase on the same day; the
	// contribution must stay first, so no synthesis happens.
	result := svc.Reconcile(0, []models.RawTransaction{
		{Type: "CASH_CREDIT", Amount: 3250, Date: "2024-10-22"},
		{Type: "BUY", Ticker: "PETR4", Amount: 3250, Quantity: 100, Date: "2024-10-22"},
	})

	require.Empty(t, result.Errors)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, models.TxCashCredit, result.Transactions[0].Type)
	assert.False(t, result.Transactions[0].Synthesized)
	assert.InDelta(t, 0, result.FinalBalance, 1e-9)
}

// Non-negative balance invariant: replaying the output never goes negative
// at any prefix.
func TestReconcileNonNegativePrefixBalances(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(0, []models.RawTransaction{
		{Type: "BUY", Ticker: "PETR4", Amount: 3250, Quantity: 100, Date: "2024-01-10"},
		{Type: "SELL_WITHDRAWAL", Ticker: "PETR4", Amount: 1700, Quantity: 50, Price: 34, Date: "2024-02-10"},
		{Type: "BUY", Ticker: "VALE3", Amount: 3060, Quantity: 50, Date: "2024-03-10"},
		{Type: "CASH_CREDIT", Amount: 600, Date: "2024-03-20"},
		{Type: "CASH_DEBIT", Amount: 500, Date: "2024-04-10"},
		{Type: "DIVIDEND", Ticker: "PETR4", Amount: 85.50, Date: "2024-05-10"},
	})

	require.Empty(t, result.Errors)
	_, minimum := ReplayBalance(0, result.Transactions)
	assert.GreaterOrEqual(t, minimum, 0.0)
}

// Shortfall-coverage property: every purchase exceeding the running balance
// is immediately preceded by a synthesized credit of exactly the shortfall.
func TestReconcileShortfallCoverage(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(1000, []models.RawTransaction{
		{Type: "BUY", Ticker: "PETR4", Amount: 3250, Quantity: 100, Date: "2024-01-10"},
	})

	require.Empty(t, result.Errors)
	require.Len(t, result.Transactions, 2)
	credit := result.Transactions[0]
	assert.True(t, credit.Synthesized)
	assert.InDelta(t, 2250.00, credit.Amount, 1e-9)
	assert.Equal(t, credit.Date, result.Transactions[1].Date)
}

// Idempotence: re-reconciling an already-reconciled batch produces an
// identical list with no new synthesized credits.
func TestReconcileIdempotent(t *testing.T) {
	svc := testService()

	first := svc.Reconcile(0, []models.RawTransaction{
		{Type: "BUY", Ticker: "PETR4", Amount: 3250, Quantity: 100, Date: "2024-01-10"},
		{Type: "DIVIDEND", Ticker: "PETR4", Amount: 85.50, Date: "2024-02-10"},
		{Type: "BUY", Ticker: "VALE3", Amount: 3060.33, Quantity: 50, Date: "2024-03-10"},
	})
	require.Empty(t, first.Errors)

	second := svc.Reconcile(0, RawBatch(first.Transactions))
	require.Empty(t, second.Errors)
	assert.Empty(t, second.Warnings, "replay must not synthesize again")
	require.Len(t, second.Transactions, len(first.Transactions))
	for i := range first.Transactions {
		assert.Equal(t, first.Transactions[i].Type, second.Transactions[i].Type)
		assert.InDelta(t, first.Transactions[i].Amount, second.Transactions[i].Amount, 1e-9)
		assert.Equal(t, first.Transactions[i].Date, second.Transactions[i].Date)
	}
	assert.InDelta(t, first.FinalBalance, second.FinalBalance, 1e-9)
}

// Replaying a purchase whose derived unit price was cent-rounded must keep
// the stored amount: recomputing it from 50 × 61.21 would leave a 17-cent
// residue and synthesize a phantom contribution.
func TestReconcileReplayKeepsRoundedPriceAmount(t *testing.T) {
	svc := testService()

	first := svc.Reconcile(0, []models.RawTransaction{
		{Type: "BUY", Ticker: "VALE3", Amount: 3060.33, Quantity: 50, Date: "2024-03-10"},
	})
	require.Empty(t, first.Errors)
	require.Len(t, first.Transactions, 2)
	assert.InDelta(t, 61.21, first.Transactions[1].Price, 1e-9)

	second := svc.Reconcile(0, RawBatch(first.Transactions))
	require.Empty(t, second.Errors)
	assert.Empty(t, second.Warnings, "rounded price must not create a residue contribution")
	require.Len(t, second.Transactions, 2)
	assert.InDelta(t, 3060.33, second.Transactions[1].Amount, 1e-9)
	assert.InDelta(t, first.FinalBalance, second.FinalBalance, 1e-9)
}

// Cent-boundary guard: a balance half a cent short of the purchase cost must
// not trigger a 1-cent re-synthesis.
func TestReconcileCentBoundaryNoResynthesis(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(3250.004, []models.RawTransaction{
		{Type: "BUY", Ticker: "PETR4", Amount: 3250.00, Quantity: 100, Date: "2024-01-10"},
	})

	require.Empty(t, result.Errors)
	assert.Len(t, result.Transactions, 1)
	assert.Empty(t, result.Warnings)
}

// Conservation: final balance equals initial plus signed sum over the full
// output, synthesized credits included.
func TestReconcileConservation(t *testing.T) {
	svc := testService()
	initial := 1500.0

	result := svc.Reconcile(initial, []models.RawTransaction{
		{Type: "CASH_CREDIT", Amount: 2000, Date: "2024-01-05"},
		{Type: "BUY", Ticker: "PETR4", Amount: 3250, Quantity: 100, Date: "2024-02-01"},
		{Type: "DIVIDEND", Ticker: "PETR4", Amount: 85.50, Date: "2024-03-15"},
		{Type: "SELL_WITHDRAWAL", Ticker: "PETR4", Amount: 1700, Quantity: 50, Price: 34, Date: "2024-04-10"},
		{Type: "CASH_DEBIT", Amount: 900, Date: "2024-05-02"},
	})

	require.Empty(t, result.Errors)
	sum := initial
	for _, tx := range result.Transactions {
		sum += tx.SignedAmount()
	}
	assert.InDelta(t, result.FinalBalance, common.RoundCents(sum), 1e-9)
}

// A batch with both valid and invalid records returns the valid ones plus
// errors for the rest; no all-or-nothing abort.
func TestReconcilePartialBatch(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(10000, []models.RawTransaction{
		{Type: "CASH_CREDIT", Amount: 500, Date: "2024-01-05"},
		{Type: "BUY", Ticker: "", Amount: 1000, Quantity: 10, Date: "2024-01-06"},
		{Type: "DIVIDEND", Ticker: "ITSA4", Amount: 50, Date: "not-a-date"},
		{Type: "BUY", Ticker: "VALE3", Amount: 3060, Quantity: 50, Date: "2024-01-07"},
	})

	assert.Len(t, result.Transactions, 2)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "transação 2")
	assert.Contains(t, result.Errors[1], "transação 3")
}

// A rejected debit must not affect later unrelated records.
func TestReconcileRejectedDebitDoesNotBlockBatch(t *testing.T) {
	svc := testService()

	result := svc.Reconcile(1000, []models.RawTransaction{
		{Type: "CASH_DEBIT", Amount: 5000, Date: "2024-01-05"},
		{Type: "CASH_CREDIT", Amount: 300, Date: "2024-02-01"},
	})

	require.Len(t, result.Errors, 1)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.TxCashCredit, result.Transactions[0].Type)
	assert.InDelta(t, 1300, result.FinalBalance, 1e-9)
}
