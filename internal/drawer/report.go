package drawer

import (
	"time"

	"api_pos/internal/sales"
	"api_pos/internal/tender"
)

// TenderLine is one tender row on the closing report.
type TenderLine struct {
	Type    tender.Type `json:"type"`
	Amount  float64     `json:"amount"`
	Count   int         `json:"count"`
	Percent float64     `json:"percent"`
}

// Report is the drawer reconciliation summary handed to the printing
// collaborator. Pure projection: building it persists nothing.
type Report struct {
	StoreID         string       `json:"store_id"`
	OperatorID      string       `json:"operator_id"`
	Date            string       `json:"date"`
	Lines           []TenderLine `json:"lines"`
	DominantTender  tender.Type  `json:"dominant_tender"`
	TotalAmount     float64      `json:"total_amount"`
	SaleCount       int          `json:"sale_count"`
	AverageTicket   float64      `json:"average_ticket"`
	ChangeGiven     float64      `json:"change_given"`
	OpeningFloat    float64      `json:"opening_float"`
	ExpectedCash    float64      `json:"expected_cash"`
	WithdrawalCount int          `json:"withdrawal_count"`
	WithdrawalTotal float64      `json:"withdrawal_total"`
	SessionStatus   SessionStatus `json:"session_status"`
	ClosedAt        *time.Time   `json:"closed_at,omitempty"`
}

// BuildReport composes the session state and the day's totals into the
// closing report. Percentages are over the recognized total; the
// dominant tender is the largest amount, ties resolving to the earliest
// tender in canonical order.
func BuildReport(session *Session, withdrawals []Withdrawal, totals sales.DailyTotals) Report {
	r := Report{
		StoreID:         session.StoreID,
		OperatorID:      session.OperatorID,
		Date:            session.Date,
		TotalAmount:     totals.TotalAmount,
		SaleCount:       totals.SaleCount,
		ChangeGiven:     totals.ChangeGiven,
		OpeningFloat:    session.OpeningFloat,
		ExpectedCash:    ExpectedCash(session, totals),
		WithdrawalCount: len(withdrawals),
		WithdrawalTotal: session.WithdrawalTotal,
		SessionStatus:   session.Status,
		ClosedAt:        session.ClosedAt,
	}

	dominant := tender.Order[0]
	best := totals.ByTender[dominant]
	for _, t := range tender.Order {
		amount := totals.ByTender[t]
		count := totals.CountByTender[t]
		if amount == 0 && count == 0 {
			continue
		}
		var pct float64
		if totals.TotalAmount != 0 {
			pct = amount / totals.TotalAmount * 100
		}
		r.Lines = append(r.Lines, TenderLine{Type: t, Amount: amount, Count: count, Percent: pct})
		if amount > best {
			best = amount
			dominant = t
		}
	}
	r.DominantTender = dominant

	if totals.SaleCount > 0 {
		r.AverageTicket = totals.TotalAmount / float64(totals.SaleCount)
	}
	return r
}

// Report fetches the session and its withdrawals and builds the report
// for the given totals.
func (m *Manager) Report(operatorID, storeID, date string, totals sales.DailyTotals) (Report, error) {
	session, err := m.storage.Find(operatorID, storeID, date)
	if err != nil {
		return Report{}, err
	}
	withdrawals, err := m.storage.Withdrawals(session.ID)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(session, withdrawals, totals), nil
}
