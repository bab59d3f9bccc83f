package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"api_pos/internal/tender"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidTransition is returned for status transitions the lifecycle
// does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidStatus is returned for unknown status values.
var ErrInvalidStatus = errors.New("invalid status value")

// ValidationError is a request problem the caller can correct and
// resubmit (bad amounts, missing reason, tender sum mismatch).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Service provides sale lifecycle operations on a Storage backend. One
// Service serves every store; the store id travels on the record.
type Service struct {
	storage Storage
	stock   StockPort
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, stock StockPort, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if stock == nil {
		stock = NewLogStock(logger)
	}
	return &Service{
		storage: storage,
		stock:   stock,
		logger:  logger,
	}
}

// Create registers a new sale in pending_cash: closed by the
// salesperson, waiting for the cashier to collect payment.
func (s *Service) Create(storeID, operatorID string, items []LineItem, discount float64) (*SaleRecord, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, validationf("store id is required")
	}
	if strings.TrimSpace(operatorID) == "" {
		return nil, validationf("operator id is required")
	}
	if len(items) == 0 {
		return nil, validationf("a sale needs at least one item")
	}

	var gross float64
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, validationf("item %d: quantity must be greater than zero", i)
		}
		if item.UnitPrice < 0 {
			return nil, validationf("item %d: unit price must not be negative", i)
		}
		gross += float64(item.Quantity) * item.UnitPrice
	}
	if discount < 0 {
		return nil, validationf("discount must not be negative")
	}
	final := gross - discount
	if final < 0 {
		return nil, validationf("discount exceeds the sale amount")
	}

	now := time.Now()
	sale := &SaleRecord{
		ID:          uuid.NewString(),
		StoreID:     storeID,
		OperatorID:  operatorID,
		GrossAmount: gross,
		Discount:    discount,
		FinalAmount: final,
		Status:      StatusPendingCash,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	if err := s.storage.Set(sale); err != nil {
		s.logger.Error("failed to save sale", zap.String("sale_id", sale.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID),
		zap.String("store_id", storeID),
		zap.Float64("final_amount", final),
	)
	return sale, nil
}

// Finalize settles a pending sale with the cashier: attaches the tender
// descriptor, validates the breakdown and computes the change. The
// transition is a compare-and-swap on pending_cash; a lost race returns
// ErrConflict and the caller must re-read.
func (s *Service) Finalize(saleID, descriptor string, amountTendered float64) (*SaleRecord, error) {
	sale, err := s.storage.Read(saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != StatusPendingCash {
		return nil, ErrInvalidTransition
	}

	b := tender.Decode(descriptor, sale.FinalAmount)
	if b.Fallback {
		// Legacy fallback branch: the sale still goes through as cash,
		// but loudly, so audits can tell it apart from a real cash sale.
		s.logger.Warn("unrecognized tender token, amount degraded to cash",
			zap.String("sale_id", sale.ID),
			zap.String("descriptor", descriptor),
		)
	}
	if tender.IsComposite(descriptor) && !b.Sums(sale.FinalAmount) {
		return nil, validationf("tender amounts sum %.2f, sale total is %.2f", b.Total(), sale.FinalAmount)
	}
	if tender.IsMixed(descriptor) && b.ActiveTenders() < 2 {
		return nil, validationf("mixed payment needs at least two tenders with a positive amount")
	}

	cashDue := b.Amounts[tender.Cash]
	var change float64
	if cashDue > 0 {
		if amountTendered+tender.Epsilon < cashDue {
			return nil, validationf("insufficient cash tendered: got %.2f, need %.2f", amountTendered, cashDue)
		}
		change = amountTendered - cashDue
	}

	sale.Descriptor = descriptor
	sale.AmountTendered = amountTendered
	sale.Change = change
	sale.Status = StatusFinalized
	sale.UpdatedAt = time.Now()
	sale.Version++

	if err := s.storage.Transition(sale, StatusPendingCash); err != nil {
		if errors.Is(err, ErrConflict) {
			s.logger.Warn("finalize lost a status race", zap.String("sale_id", sale.ID))
			return nil, ErrConflict
		}
		s.logger.Error("failed to finalize sale", zap.String("sale_id", sale.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale finalized",
		zap.String("sale_id", sale.ID),
		zap.String("descriptor", descriptor),
		zap.Float64("change", change),
	)
	return sale, nil
}

// Cancel voids a pending or finalized sale, emits one restock request
// per line item and returns the audit event. A cancelled sale never
// counts in aggregation again. If the sale's drawer session has already
// closed, the session's snapshot stays as it was; the business date on
// the event is what back-office needs to correct it deliberately.
func (s *Service) Cancel(saleID, reason string) (*CancellationEvent, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("cancellation reason is required")
	}

	sale, err := s.storage.Read(saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == StatusCancelled {
		return nil, ErrInvalidTransition
	}

	prior := sale.Status
	sale.Status = StatusCancelled
	sale.UpdatedAt = time.Now()
	sale.Version++

	if err := s.storage.Transition(sale, prior); err != nil {
		if errors.Is(err, ErrConflict) {
			s.logger.Warn("cancel lost a status race", zap.String("sale_id", sale.ID))
			return nil, ErrConflict
		}
		s.logger.Error("failed to cancel sale", zap.String("sale_id", sale.ID), zap.Error(err))
		return nil, err
	}

	event := &CancellationEvent{
		SaleID:       sale.ID,
		StoreID:      sale.StoreID,
		BusinessDate: sale.CreatedAt.Format("2006-01-02"),
		Reason:       reason,
		CancelledAt:  time.Now(),
	}
	for _, item := range sale.Items {
		req := StockRestockRequest{ProductID: item.ProductID, Quantity: item.Quantity}
		if err := s.stock.Restock(req); err != nil {
			// The sale is already cancelled; a restock failure is the
			// stock collaborator's to retry, not a reason to undo.
			s.logger.Error("restock request failed",
				zap.String("sale_id", sale.ID),
				zap.String("product_id", req.ProductID),
				zap.Error(err),
			)
			continue
		}
		event.Restocked = append(event.Restocked, req)
	}

	s.logger.Info("sale cancelled",
		zap.String("sale_id", sale.ID),
		zap.String("store_id", sale.StoreID),
		zap.String("business_date", event.BusinessDate),
		zap.String("reason", reason),
	)
	return event, nil
}

// Search returns the sales matching the filter plus their aggregated
// totals as metadata.
func (s *Service) Search(f Filter) ([]*SaleRecord, DailyTotals, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		s.logger.Warn("invalid status filter provided", zap.String("status_filter", string(f.Status)))
		return nil, DailyTotals{}, fmt.Errorf("%w: '%s'", ErrInvalidStatus, f.Status)
	}

	records, err := s.storage.Search(f)
	if err != nil {
		s.logger.Error("failed to retrieve sales", zap.Error(err))
		return nil, DailyTotals{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	totals := Aggregate(records, f.From, f.To)

	s.logger.Info("sales search completed",
		zap.String("store_filter", f.StoreID),
		zap.String("status_filter", string(f.Status)),
		zap.Int("results_count", len(records)),
	)
	return records, totals, nil
}

// DayTotals aggregates one store's business day.
func (s *Service) DayTotals(storeID string, day time.Time) (DailyTotals, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	records, err := s.storage.Search(Filter{StoreID: storeID, From: from, To: to})
	if err != nil {
		return DailyTotals{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}
	return Aggregate(records, from, to), nil
}
