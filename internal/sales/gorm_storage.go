package sales

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormStorage persists the sales ledger through gorm.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage migrates the sales schema and returns the adapter.
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&SaleRecord{}, &LineItem{}); err != nil {
		return nil, fmt.Errorf("migrate sales schema: %w", err)
	}
	return &GormStorage{db: db}, nil
}

func (g *GormStorage) Set(sale *SaleRecord) error {
	if sale.ID == "" {
		return ErrEmptyID
	}
	if err := g.db.Save(sale).Error; err != nil {
		return fmt.Errorf("save sale: %w", err)
	}
	return nil
}

func (g *GormStorage) Read(id string) (*SaleRecord, error) {
	var sale SaleRecord
	err := g.db.Preload("Items").First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read sale: %w", err)
	}
	return &sale, nil
}

func (g *GormStorage) Search(f Filter) ([]*SaleRecord, error) {
	q := g.db.Preload("Items")
	if f.StoreID != "" {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	var records []*SaleRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("search sales: %w", err)
	}
	return records, nil
}

// Transition maps the compare-and-swap to a conditional UPDATE: zero
// rows affected means another writer changed the status first.
func (g *GormStorage) Transition(sale *SaleRecord, from Status) error {
	res := g.db.Model(&SaleRecord{}).
		Where("id = ? AND status = ?", sale.ID, from).
		Updates(map[string]any{
			"status":          sale.Status,
			"descriptor":      sale.Descriptor,
			"amount_tendered": sale.AmountTendered,
			"change":          sale.Change,
			"updated_at":      sale.UpdatedAt,
			"version":         sale.Version,
		})
	if res.Error != nil {
		return fmt.Errorf("transition sale: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := g.db.Model(&SaleRecord{}).Where("id = ?", sale.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("transition sale: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
