package drawer

import (
	"errors"
	"sync"
)

// ErrNoSession is returned when no drawer session exists for the
// (operator, store, date) tuple.
var ErrNoSession = errors.New("drawer session not found")

// Storage is the persistence port for drawer sessions. Upsert is keyed
// by (operator, store, date): a session row is reused across same-day
// re-opens, never duplicated. Withdrawals are append-only.
type Storage interface {
	Upsert(session *Session) error
	Find(operatorID, storeID, date string) (*Session, error)
	AddWithdrawal(w *Withdrawal) error
	Withdrawals(sessionID string) ([]Withdrawal, error)
}

// LocalStorage provides an in-memory implementation for drawer
// sessions.
type LocalStorage struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	withdrawals map[string][]Withdrawal
}

// NewLocalStorage instantiates a new LocalStorage with empty maps.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		sessions:    map[string]*Session{},
		withdrawals: map[string][]Withdrawal{},
	}
}

func cloneSession(s *Session) *Session {
	c := *s
	return &c
}

func (l *LocalStorage) Upsert(session *Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[session.Key()] = cloneSession(session)
	return nil
}

func (l *LocalStorage) Find(operatorID, storeID, date string) (*Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sessions[sessionKey(operatorID, storeID, date)]
	if !ok {
		return nil, ErrNoSession
	}
	return cloneSession(s), nil
}

func (l *LocalStorage) AddWithdrawal(w *Withdrawal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.withdrawals[w.SessionID] = append(l.withdrawals[w.SessionID], *w)
	return nil
}

func (l *LocalStorage) Withdrawals(sessionID string) ([]Withdrawal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Withdrawal(nil), l.withdrawals[sessionID]...), nil
}
