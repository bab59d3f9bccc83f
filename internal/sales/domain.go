package sales

import (
	"time"

	"api_pos/internal/tender"
)

// Status is the lifecycle state of a sale.
//
// pending_cash: closed by the salesperson, waiting for the cashier to
// collect. Not counted in any total until finalized.
type Status string

const (
	StatusPendingCash Status = "pending_cash"
	StatusFinalized   Status = "finalized"
	StatusCancelled   Status = "cancelled"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPendingCash, StatusFinalized, StatusCancelled:
		return true
	}
	return false
}

// SaleRecord is a sales transaction in one store's ledger. Amounts are
// set at creation; only the status (and the payment fields captured at
// finalize time) change afterwards.
type SaleRecord struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	StoreID     string  `gorm:"index" json:"store_id"`
	OperatorID  string  `json:"operator_id"`
	GrossAmount float64 `json:"gross_amount"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"final_amount"`
	// Descriptor is the raw tender string as received. It is a durable
	// wire format: stored verbatim, decoded on demand, never rewritten.
	Descriptor     string     `json:"descriptor"`
	AmountTendered float64    `json:"amount_tendered"`
	Change         float64    `json:"change"`
	Status         Status     `gorm:"index" json:"status"`
	Items          []LineItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// Breakdown decodes the sale's tender descriptor against its final
// amount. Derived data only; the descriptor stays canonical.
func (r *SaleRecord) Breakdown() tender.Breakdown {
	return tender.Decode(r.Descriptor, r.FinalAmount)
}

// LineItem is one product line of a sale, with the unit price captured
// at sale time.
type LineItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SaleID    string  `gorm:"index" json:"sale_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CancellationEvent is the audit record emitted when a sale is
// cancelled: which sale, why, and what went back to stock.
type CancellationEvent struct {
	SaleID       string                `json:"sale_id"`
	StoreID      string                `json:"store_id"`
	BusinessDate string                `json:"business_date"`
	Reason       string                `json:"reason"`
	Restocked    []StockRestockRequest `json:"restocked"`
	CancelledAt  time.Time             `json:"cancelled_at"`
}
