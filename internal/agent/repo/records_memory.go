package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
)

// Op names a record store operation, used to target injected faults.
type Op string

const (
	OpGetBook           Op = "GetBook"
	OpListBooks         Op = "ListBooks"
	OpSetBookQuantity   Op = "SetBookQuantity"
	OpGetAccount        Op = "GetAccount"
	OpSetAccountBalance Op = "SetAccountBalance"
)

// FaultFunc is consulted before every operation; a non-nil error aborts it.
// key is the title query, canonical title or user id the call targets.
type FaultFunc func(op Op, key string) error

// MemoryRecordStore keeps books and accounts in-process.
// Natural lookup order is insertion order.
type MemoryRecordStore struct {
	mu       sync.RWMutex
	books    []model.Book
	accounts map[int64]model.Account
	fault    FaultFunc
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{accounts: make(map[int64]model.Account)}
}

// InjectFault installs f for subsequent calls; nil clears it.
func (m *MemoryRecordStore) InjectFault(f FaultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = f
}

func (m *MemoryRecordStore) check(op Op, key string) error {
	if m.fault == nil {
		return nil
	}
	if err := m.fault(op, key); err != nil {
		return fmt.Errorf("%s %q: %w", op, key, err)
	}
	return nil
}

func (m *MemoryRecordStore) GetBook(_ context.Context, titleQuery string) (model.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(OpGetBook, titleQuery); err != nil {
		return model.Book{}, false, err
	}
	q := normalize(titleQuery)
	if q == "" {
		return model.Book{}, false, nil
	}
	for _, b := range m.books {
		if strings.Contains(normalize(b.Title), q) {
			return b, true, nil
		}
	}
	return model.Book{}, false, nil
}

func (m *MemoryRecordStore) ListBooks(_ context.Context, query string) ([]model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(OpListBooks, query); err != nil {
		return nil, err
	}
	q := normalize(query)
	res := make([]model.Book, 0)
	for _, b := range m.books {
		if strings.Contains(normalize(b.Title), q) || strings.Contains(normalize(b.Author), q) {
			res = append(res, b)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return normalize(res[i].Title) < normalize(res[j].Title)
	})
	return res, nil
}

func (m *MemoryRecordStore) SetBookQuantity(_ context.Context, title string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpSetBookQuantity, title); err != nil {
		return err
	}
	if qty < 0 {
		return ErrNegativeValue
	}
	for i := range m.books {
		if m.books[i].Title == title {
			m.books[i].Quantity = qty
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrBookNotFound, title)
}

func (m *MemoryRecordStore) GetAccount(_ context.Context, userID int64) (model.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(OpGetAccount, fmt.Sprint(userID)); err != nil {
		return model.Account{}, false, err
	}
	a, ok := m.accounts[userID]
	return a, ok, nil
}

func (m *MemoryRecordStore) SetAccountBalance(_ context.Context, userID int64, balance int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpSetAccountBalance, fmt.Sprint(userID)); err != nil {
		return err
	}
	if balance < 0 {
		return ErrNegativeValue
	}
	a, ok := m.accounts[userID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrAccountNotFound, userID)
	}
	a.Balance = balance
	m.accounts[userID] = a
	return nil
}

// SaveBook stores or replaces a book, keeping its original position.
func (m *MemoryRecordStore) SaveBook(_ context.Context, b model.Book) error {
	if b.Quantity < 0 {
		return ErrNegativeValue
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.books {
		if m.books[i].Title == b.Title {
			m.books[i] = b
			return nil
		}
	}
	m.books = append(m.books, b)
	return nil
}

func (m *MemoryRecordStore) SaveAccount(_ context.Context, a model.Account) error {
	if a.Balance < 0 {
		return ErrNegativeValue
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.UserID] = a
	return nil
}

// Snapshot returns copies of every record, for before/after comparisons.
func (m *MemoryRecordStore) Snapshot() ([]model.Book, map[int64]model.Account) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	books := make([]model.Book, len(m.books))
	copy(books, m.books)
	accounts := make(map[int64]model.Account, len(m.accounts))
	for k, v := range m.accounts {
		accounts[k] = v
	}
	return books, accounts
}

var (
	_ model.RecordStore = (*MemoryRecordStore)(nil)
	_ model.Seeder      = (*MemoryRecordStore)(nil)
)
