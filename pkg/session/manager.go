package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/postman/internal/logging"
	"github.com/aretw0/postman/pkg/adapters/memory"
)

// ErrPageNotFound is returned by the default factory and by Get for unknown pages.
var ErrPageNotFound = errors.New("page not found")

// Factory builds the tree of a page the first time it is requested.
type Factory func(ctx context.Context, pageID string) (*memory.Component, error)

// lockEntry holds the mutex and the number of goroutines waiting on or holding it.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns live pages. Locks are reference counted so idle pages do not
// accumulate mutexes.
type Manager struct {
	factory Factory

	mu    sync.Mutex
	locks map[string]*lockEntry
	pages map[string]*memory.Component

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager that builds missing pages with factory.
// A nil factory only serves pages added with Put.
func NewManager(factory Factory, opts ...Option) *Manager {
	if factory == nil {
		factory = func(_ context.Context, id string) (*memory.Component, error) {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
		}
	}
	m := &Manager{
		factory: factory,
		locks:   make(map[string]*lockEntry),
		pages:   make(map[string]*memory.Component),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(pageID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[pageID]
	if !ok {
		entry = &lockEntry{}
		m.locks[pageID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[pageID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, pageID)
	}
}

// WithPage runs fn with exclusive access to the page, building it first if needed.
func (m *Manager) WithPage(ctx context.Context, pageID string, fn func(context.Context, *memory.Component) error) error {
	entry := m.acquire(pageID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(pageID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	page, ok := m.pages[pageID]
	m.mu.Unlock()

	if !ok {
		var err error
		page, err = m.factory(ctx, pageID)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.pages[pageID] = page
		m.mu.Unlock()
		m.logger.Debug("page created", "page_id", pageID)
	}

	return fn(ctx, page)
}

// Put registers a prebuilt page, replacing any existing one.
func (m *Manager) Put(ctx context.Context, pageID string, page *memory.Component) error {
	return m.withLock(pageID, func() {
		m.mu.Lock()
		m.pages[pageID] = page
		m.mu.Unlock()
	})
}

// Drop forgets a page; the next request rebuilds it.
func (m *Manager) Drop(ctx context.Context, pageID string) error {
	return m.withLock(pageID, func() {
		m.mu.Lock()
		delete(m.pages, pageID)
		m.mu.Unlock()
	})
}

// List returns the IDs of live pages, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.pages))
	for id := range m.pages {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Manager) withLock(pageID string, fn func()) error {
	entry := m.acquire(pageID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(pageID)
	}()
	fn()
	return nil
}
