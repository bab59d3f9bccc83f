package drawer

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage persists drawer sessions through gorm.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage migrates the drawer schema and returns the adapter.
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&Session{}, &Withdrawal{}); err != nil {
		return nil, fmt.Errorf("migrate drawer schema: %w", err)
	}
	return &GormStorage{db: db}, nil
}

// Upsert writes the session row, keyed by (operator, store, date). The
// unique index backs the one-row-per-key invariant at the schema level.
func (g *GormStorage) Upsert(session *Session) error {
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operator_id"}, {Name: "store_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(session).Error
	if err != nil {
		return fmt.Errorf("upsert drawer session: %w", err)
	}
	return nil
}

func (g *GormStorage) Find(operatorID, storeID, date string) (*Session, error) {
	var session Session
	err := g.db.First(&session, "operator_id = ? AND store_id = ? AND date = ?",
		operatorID, storeID, date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("find drawer session: %w", err)
	}
	return &session, nil
}

func (g *GormStorage) AddWithdrawal(w *Withdrawal) error {
	if err := g.db.Create(w).Error; err != nil {
		return fmt.Errorf("add withdrawal: %w", err)
	}
	return nil
}

func (g *GormStorage) Withdrawals(sessionID string) ([]Withdrawal, error) {
	var ws []Withdrawal
	if err := g.db.Where("session_id = ?", sessionID).Order("created_at").Find(&ws).Error; err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return ws, nil
}
