package drawer

import "time"

// SessionStatus is the state of a cash drawer session.
type SessionStatus string

const (
	StatusOpen   SessionStatus = "open"
	StatusClosed SessionStatus = "closed"
)

// DateLayout is the business-date format used as part of the session
// key.
const DateLayout = "2006-01-02"

// Session is one cashier's drawer accounting period: unique per
// (operator, store, date), re-openable the same day, never deleted.
// Closing snapshots the day's totals onto the row; a sale cancelled
// after that does not rewrite the snapshot.
type Session struct {
	ID           string        `gorm:"primaryKey" json:"id"`
	OperatorID   string        `gorm:"uniqueIndex:idx_drawer_key" json:"operator_id"`
	StoreID      string        `gorm:"uniqueIndex:idx_drawer_key" json:"store_id"`
	Date         string        `gorm:"uniqueIndex:idx_drawer_key" json:"date"`
	Status       SessionStatus `json:"status"`
	OpeningFloat float64       `json:"opening_float"`
	OpenedAt     time.Time     `json:"opened_at"`
	ClosedAt     *time.Time    `json:"closed_at,omitempty"`
	// ClosingTotals is the per-tender snapshot taken at close, stored in
	// the same descriptor format the sales carry.
	ClosingTotals   string   `json:"closing_totals,omitempty"`
	ExpectedCash    float64  `json:"expected_cash"`
	CountedCash     *float64 `json:"counted_cash,omitempty"`
	Difference      *float64 `json:"difference,omitempty"`
	WithdrawalTotal float64  `json:"withdrawal_total"`
}

// Key identifies the session's (operator, store, date) tuple.
func (s *Session) Key() string {
	return sessionKey(s.OperatorID, s.StoreID, s.Date)
}

func sessionKey(operatorID, storeID, date string) string {
	return operatorID + "/" + storeID + "/" + date
}

// Withdrawal is cash taken out of an open drawer, append-only.
type Withdrawal struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"index" json:"session_id"`
	OperatorID string    `json:"operator_id"`
	Amount     float64   `json:"amount"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
