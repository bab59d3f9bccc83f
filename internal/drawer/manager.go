package drawer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"api_pos/internal/sales"
	"api_pos/internal/tender"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned when an operation needs an open drawer
// and the session is closed.
var ErrSessionClosed = errors.New("drawer session is not open")

// Manager runs the drawer state machine. All mutations for one
// (operator, store, date) tuple are serialized through a per-key lock;
// the storage port itself does not need to arbitrate concurrent
// writers.
type Manager struct {
	storage Storage
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a new Manager.
func NewManager(storage Storage, logger *zap.Logger) *Manager {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Manager{
		storage: storage,
		logger:  logger,
		locks:   map[string]*sync.Mutex{},
	}
}

func (m *Manager) keyLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func validateKey(operatorID, storeID, date string) error {
	if strings.TrimSpace(operatorID) == "" {
		return &sales.ValidationError{Msg: "operator id is required"}
	}
	if strings.TrimSpace(storeID) == "" {
		return &sales.ValidationError{Msg: "store id is required"}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &sales.ValidationError{Msg: "date must be YYYY-MM-DD"}
	}
	return nil
}

// Open starts (or re-opens) the drawer for an operator, store and
// business date. Opening an existing session updates its opening float
// and flips it back to open instead of erroring: operators do re-open
// the drawer on the same day, and there must never be a second row for
// the same key.
func (m *Manager) Open(operatorID, storeID, date string, openingFloat float64) (*Session, error) {
	if err := validateKey(operatorID, storeID, date); err != nil {
		return nil, err
	}
	if openingFloat < 0 {
		return nil, &sales.ValidationError{Msg: "opening float must not be negative"}
	}

	lock := m.keyLock(sessionKey(operatorID, storeID, date))
	lock.Lock()
	defer lock.Unlock()

	session, err := m.storage.Find(operatorID, storeID, date)
	switch {
	case err == nil:
		session.OpeningFloat = openingFloat
		session.Status = StatusOpen
		session.OpenedAt = time.Now()
		session.ClosedAt = nil
	case err == ErrNoSession:
		session = &Session{
			ID:           uuid.NewString(),
			OperatorID:   operatorID,
			StoreID:      storeID,
			Date:         date,
			Status:       StatusOpen,
			OpeningFloat: openingFloat,
			OpenedAt:     time.Now(),
		}
	default:
		return nil, fmt.Errorf("failed to load drawer session: %w", err)
	}

	if err := m.storage.Upsert(session); err != nil {
		m.logger.Error("failed to open drawer session", zap.String("key", session.Key()), zap.Error(err))
		return nil, fmt.Errorf("failed to open drawer session: %w", err)
	}

	m.logger.Info("drawer session opened",
		zap.String("session_id", session.ID),
		zap.String("key", session.Key()),
		zap.Float64("opening_float", openingFloat),
	)
	return session, nil
}

// RecordWithdrawal takes cash out of an open drawer. Requires a
// positive amount and a reason; both come back to the cashier on the
// closing report.
func (m *Manager) RecordWithdrawal(operatorID, storeID, date string, amount float64, reason string) (*Withdrawal, error) {
	if err := validateKey(operatorID, storeID, date); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, &sales.ValidationError{Msg: "withdrawal amount must be greater than zero"}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, &sales.ValidationError{Msg: "withdrawal reason is required"}
	}

	lock := m.keyLock(sessionKey(operatorID, storeID, date))
	lock.Lock()
	defer lock.Unlock()

	session, err := m.storage.Find(operatorID, storeID, date)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusOpen {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, session.Key())
	}

	w := &Withdrawal{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		OperatorID: operatorID,
		Amount:     amount,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := m.storage.AddWithdrawal(w); err != nil {
		m.logger.Error("failed to record withdrawal", zap.String("session_id", session.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	session.WithdrawalTotal += amount
	if err := m.storage.Upsert(session); err != nil {
		return nil, fmt.Errorf("failed to update drawer session: %w", err)
	}

	m.logger.Info("withdrawal recorded",
		zap.String("session_id", session.ID),
		zap.Float64("amount", amount),
		zap.String("reason", reason),
	)
	return w, nil
}

// Close ends the day for an open drawer: computes the expected cash
// from the day's totals, snapshots the per-tender amounts onto the row
// and records the counted-vs-expected difference. The snapshot is
// frozen from here on.
func (m *Manager) Close(operatorID, storeID, date string, countedCash float64, totals sales.DailyTotals) (*Session, error) {
	if err := validateKey(operatorID, storeID, date); err != nil {
		return nil, err
	}

	lock := m.keyLock(sessionKey(operatorID, storeID, date))
	lock.Lock()
	defer lock.Unlock()

	session, err := m.storage.Find(operatorID, storeID, date)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusOpen {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, session.Key())
	}

	expected := ExpectedCash(session, totals)
	diff := countedCash - expected
	now := time.Now()

	session.Status = StatusClosed
	session.ClosedAt = &now
	session.ClosingTotals = tender.Encode(totalsBreakdown(totals))
	session.ExpectedCash = expected
	session.CountedCash = &countedCash
	session.Difference = &diff

	if err := m.storage.Upsert(session); err != nil {
		m.logger.Error("failed to close drawer session", zap.String("session_id", session.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to close drawer session: %w", err)
	}

	m.logger.Info("drawer session closed",
		zap.String("session_id", session.ID),
		zap.Float64("expected_cash", expected),
		zap.Float64("counted_cash", countedCash),
		zap.Float64("difference", diff),
	)
	return session, nil
}

// Find returns the session for the tuple, ErrNoSession if none exists.
func (m *Manager) Find(operatorID, storeID, date string) (*Session, error) {
	return m.storage.Find(operatorID, storeID, date)
}

// ExpectedCash is what should physically be in the drawer: the opening
// float plus cash taken in, minus withdrawals and change handed out.
func ExpectedCash(session *Session, totals sales.DailyTotals) float64 {
	return session.OpeningFloat +
		totals.ByTender[tender.Cash] -
		session.WithdrawalTotal -
		totals.ChangeGiven
}

func totalsBreakdown(totals sales.DailyTotals) tender.Breakdown {
	b := tender.Breakdown{Amounts: map[tender.Type]float64{}}
	for t, amount := range totals.ByTender {
		if amount != 0 {
			b.Amounts[t] = amount
		}
	}
	return b
}
