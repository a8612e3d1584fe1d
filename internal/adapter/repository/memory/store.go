package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// DefaultLockTimeout bounds how long a transaction waits for a row lock.
const DefaultLockTimeout = 2 * time.Second

// ErrForeignTransaction is returned when a repository receives a transaction
// that was not started by a memory TxManager.
var ErrForeignTransaction = errors.New("memory: transaction not started by this store")

// Store is an in-process ledger backend. Committed state lives in maps guarded
// by mu. Row locks are one-slot channels held from acquisition until the owning
// transaction commits or rolls back; writes are buffered in the transaction and
// applied atomically on commit.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	usernames    map[string]string
	accounts     map[string]*domain.Account
	owners       map[string]string
	transactions []*domain.Transaction
	txIndex      map[string]int
	outbox       []*domain.OutboxEvent

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore creates an empty store. A non-positive lockTimeout uses DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		users:       make(map[string]*domain.User),
		usernames:   make(map[string]string),
		accounts:    make(map[string]*domain.Account),
		owners:      make(map[string]string),
		txIndex:     make(map[string]int),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func (s *Store) lockChan(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, held: make(map[string]chan struct{})}, nil
}

// Tx is a memory transaction.
type Tx struct {
	store  *Store
	held   map[string]chan struct{}
	order  []string
	writes []func()
	done   bool
}

// lock acquires the row lock for key, waiting at most the store lock timeout.
// Locks already held by this transaction are not re-acquired.
func (t *Tx) lock(ctx context.Context, key string) error {
	if t.done {
		return ErrForeignTransaction
	}
	if _, ok := t.held[key]; ok {
		return nil
	}

	ch := t.store.lockChan(key)
	timer := time.NewTimer(t.store.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		t.order = append(t.order, key)
		return nil
	case <-timer.C:
		return usecase.ErrLockContention
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tx) buffer(write func()) {
	t.writes = append(t.writes, write)
}

// Commit applies buffered writes atomically and releases all locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrForeignTransaction
	}

	t.store.mu.Lock()
	for _, w := range t.writes {
		w()
	}
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards buffered writes and releases all locks. It is safe to call
// after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.writes = nil
	for i := len(t.order) - 1; i >= 0; i-- {
		<-t.held[t.order[i]]
	}
	t.held = nil
	t.order = nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt == nil || mt.done {
		return nil, ErrForeignTransaction
	}
	return mt, nil
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	if t.SourceAccountID != nil {
		s := *t.SourceAccountID
		c.SourceAccountID = &s
	}
	if t.DestAccountID != nil {
		d := *t.DestAccountID
		c.DestAccountID = &d
	}
	return &c
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
