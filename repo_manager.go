package auth

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Transactor gives repositories guarded access to the in-memory collection
type Transactor interface {
	// RunInTx hands f a private copy of the collection. When f succeeds the
	// copy is flushed to the store and becomes the current state. If f or
	// the flush fails nothing changes.
	RunInTx(ctx context.Context, f func(ctx context.Context, tx *Collection) error) error
	// View runs f under a read lock. f must not retain or mutate c.
	View(ctx context.Context, f func(c Collection) error) error
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Transactor
	Validate() error
	MustValidate()
	Users() Users
	Snapshot() Collection
}

type mngr struct {
	mu     sync.RWMutex
	store  DocumentStore
	data   Collection
	users  Users
	logger Logger
}

// ManagerOption configures the repository manager
type ManagerOption func(*mngr)

// WithManagerLogger sets the logger used to report storage failures
func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *mngr) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewRepositoryManager loads the collection from store once and keeps
// it as the single source of truth for every repository.
func NewRepositoryManager(ctx context.Context, store DocumentStore, opts ...ManagerOption) RepositoryManager {
	m := &mngr{
		store:  store,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if store != nil {
		m.data = store.Load(ctx)
	} else {
		m.data = NewCollection()
	}
	m.data.Normalize()

	m.users = NewUsersRepository(m)

	m.logger.Debug("user collection loaded", "users", len(m.data.Users), "next_id", m.data.NextID)

	return m
}

func (m *mngr) Validate() error {
	if m.store == nil {
		return errors.New("repository store should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	return nil
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *mngr) RunInTx(ctx context.Context, f func(ctx context.Context, tx *Collection) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.store == nil {
		return NewStorageError(errors.New("no document store configured"), "save")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := m.data.Clone()
	if err := f(ctx, &tx); err != nil {
		return err
	}

	if err := m.store.Save(ctx, tx); err != nil {
		m.logger.Error("failed to persist user collection", "error", err)
		return NewStorageError(err, "save")
	}

	m.data = tx
	return nil
}

func (m *mngr) View(ctx context.Context, f func(c Collection) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return f(m.data)
}

func (m *mngr) Users() Users {
	return m.users
}

func (m *mngr) Snapshot() Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.Clone()
}
