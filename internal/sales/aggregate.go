package sales

import (
	"time"

	"api_pos/internal/tender"
)

// DailyTotals is the per-tender reduction of a set of sales: the
// metadata block behind every drawer close and vendor dashboard.
type DailyTotals struct {
	ByTender      map[tender.Type]float64 `json:"by_tender"`
	CountByTender map[tender.Type]int     `json:"count_by_tender"`
	// TotalAmount is the recognized amount: the sum of decoded tender
	// amounts across included sales.
	TotalAmount float64 `json:"total_amount"`
	ChangeGiven float64 `json:"change_given"`
	SaleCount   int     `json:"sale_count"`
}

// NewDailyTotals returns an empty totals value with initialized maps.
func NewDailyTotals() DailyTotals {
	return DailyTotals{
		ByTender:      map[tender.Type]float64{},
		CountByTender: map[tender.Type]int{},
	}
}

// Aggregate reduces sale records into daily totals for the given period
// (zero bounds mean unbounded). Pure and idempotent: inputs are not
// mutated and the same records always produce the same totals.
//
// Rules:
//   - cancelled sales and pending_cash sales are excluded;
//   - duplicate records (same ID) count once, so callers may merge the
//     results of more than one query without double-counting;
//   - a sale increments a tender's count iff its decoded amount for that
//     tender is positive, so a composite sale counts on every tender it
//     touches.
func Aggregate(records []*SaleRecord, from, to time.Time) DailyTotals {
	totals := NewDailyTotals()
	seen := map[string]struct{}{}

	for _, r := range records {
		if r == nil {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}

		if r.Status == StatusCancelled || r.Status == StatusPendingCash {
			continue
		}
		if !from.IsZero() && r.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !r.CreatedAt.Before(to) {
			continue
		}

		b := r.Breakdown()
		for t, amount := range b.Amounts {
			totals.ByTender[t] += amount
			totals.TotalAmount += amount
			if amount > 0 {
				totals.CountByTender[t]++
			}
		}
		totals.ChangeGiven += r.Change
		totals.SaleCount++
	}
	return totals
}
