package sales

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// ErrConflict is returned when a status transition loses the race: the
// stored row no longer has the status the caller read. The operation is
// terminal for this attempt; re-read and retry.
var ErrConflict = errors.New("concurrent status transition")

// Filter narrows a Search. Zero values mean "no filter".
type Filter struct {
	StoreID string
	Status  Status
	From    time.Time
	To      time.Time
}

func (f Filter) matches(r *SaleRecord) bool {
	if f.StoreID != "" && r.StoreID != f.StoreID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && r.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !r.CreatedAt.Before(f.To) {
		return false
	}
	return true
}

// Storage is the persistence port for the sales ledger. The engine is
// agnostic of what sits behind it; errors other than the sentinels above
// pass through to the caller unchanged.
type Storage interface {
	Set(sale *SaleRecord) error
	Read(id string) (*SaleRecord, error)
	Search(f Filter) ([]*SaleRecord, error)
	// Transition persists sale only if the stored row still has status
	// `from` (compare-and-swap). Returns ErrConflict when another writer
	// got there first.
	Transition(sale *SaleRecord, from Status) error
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]*SaleRecord
}

// NewLocalStorage instantiates a new LocalStorage with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[string]*SaleRecord{},
	}
}

func cloneSale(r *SaleRecord) *SaleRecord {
	c := *r
	c.Items = append([]LineItem(nil), r.Items...)
	return &c
}

// Set stores a copy of the sale. Returns ErrEmptyID if the sale has an
// empty ID.
func (l *LocalStorage) Set(sale *SaleRecord) error {
	if sale.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[sale.ID] = cloneSale(sale)
	return nil
}

// Read retrieves a sale by ID. The copy it returns can be staged for a
// Transition without touching the stored row.
func (l *LocalStorage) Read(id string) (*SaleRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSale(s), nil
}

// Search retrieves all sales matching the filter.
func (l *LocalStorage) Search(f Filter) ([]*SaleRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	results := make([]*SaleRecord, 0, len(l.m))
	for _, s := range l.m {
		if f.matches(s) {
			results = append(results, cloneSale(s))
		}
	}
	return results, nil
}

// Transition applies the staged sale iff the stored status still equals
// `from`.
func (l *LocalStorage) Transition(sale *SaleRecord, from Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.m[sale.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != from {
		return ErrConflict
	}
	l.m[sale.ID] = cloneSale(sale)
	return nil
}
