package drawer

import (
	"testing"

	"api_pos/internal/sales"
	"api_pos/internal/tender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sessionFixture() *Session {
	return &Session{
		ID:           "sess-1",
		OperatorID:   "op-1",
		StoreID:      "store-1",
		Date:         "2024-03-14",
		Status:       StatusOpen,
		OpeningFloat: 100.00,
	}
}

func TestBuildReport_PercentagesAndLines(t *testing.T) {
	totals := sales.NewDailyTotals()
	totals.ByTender[tender.Cash] = 750.00
	totals.ByTender[tender.Pix] = 250.00
	totals.CountByTender[tender.Cash] = 3
	totals.CountByTender[tender.Pix] = 1
	totals.TotalAmount = 1000.00
	totals.SaleCount = 4

	r := BuildReport(sessionFixture(), nil, totals)

	require.Len(t, r.Lines, 2)
	assert.Equal(t, tender.Cash, r.Lines[0].Type)
	assert.InDelta(t, 75.0, r.Lines[0].Percent, 0.001)
	assert.Equal(t, tender.Pix, r.Lines[1].Type)
	assert.InDelta(t, 25.0, r.Lines[1].Percent, 0.001)
	assert.Equal(t, tender.Cash, r.DominantTender)
	assert.InDelta(t, 250.00, r.AverageTicket, 0.001)
}

// On a tie the dominant tender is the earliest in canonical order.
func TestBuildReport_DominantTieBreak(t *testing.T) {
	totals := sales.NewDailyTotals()
	totals.ByTender[tender.DebitCard] = 500.00
	totals.ByTender[tender.Pix] = 500.00
	totals.CountByTender[tender.DebitCard] = 1
	totals.CountByTender[tender.Pix] = 1
	totals.TotalAmount = 1000.00
	totals.SaleCount = 2

	r := BuildReport(sessionFixture(), nil, totals)

	assert.Equal(t, tender.DebitCard, r.DominantTender)
}

func TestBuildReport_EmptyDay(t *testing.T) {
	r := BuildReport(sessionFixture(), nil, sales.NewDailyTotals())

	assert.Empty(t, r.Lines)
	assert.Equal(t, 0.0, r.AverageTicket, "no division by zero on an empty day")
	assert.Equal(t, tender.Cash, r.DominantTender)
	assert.InDelta(t, 100.00, r.ExpectedCash, 0.001, "just the opening float")
}

func TestBuildReport_IncludesWithdrawals(t *testing.T) {
	session := sessionFixture()
	session.WithdrawalTotal = 50.00
	withdrawals := []Withdrawal{
		{ID: "w1", Amount: 30.00, Reason: "sangria"},
		{ID: "w2", Amount: 20.00, Reason: "troco para outra caixa"},
	}

	r := BuildReport(session, withdrawals, cashTotals(200.00, 0))

	assert.Equal(t, 2, r.WithdrawalCount)
	assert.InDelta(t, 50.00, r.WithdrawalTotal, 0.001)
	assert.InDelta(t, 250.00, r.ExpectedCash, 0.001)
}

func TestManagerReport_FetchesSessionAndWithdrawals(t *testing.T) {
	storage := NewLocalStorage()
	m := NewManager(storage, zaptest.NewLogger(t))

	_, err := m.Open("op-1", "store-1", "2024-03-14", 100.00)
	require.NoError(t, err)
	_, err = m.RecordWithdrawal("op-1", "store-1", "2024-03-14", 25.00, "sangria")
	require.NoError(t, err)

	r, err := m.Report("op-1", "store-1", "2024-03-14", cashTotals(300.00, 10.00))

	require.NoError(t, err)
	assert.Equal(t, 1, r.WithdrawalCount)
	assert.InDelta(t, 365.00, r.ExpectedCash, 0.001)
	assert.Equal(t, SessionStatus("open"), r.SessionStatus)
}

func TestManagerReport_NoSession(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Report("op-1", "store-1", "2024-03-14", sales.NewDailyTotals())

	assert.ErrorIs(t, err, ErrNoSession)
}
