package atom

import (
	"context"
	"sync"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
	"github.com/groundworklabs/groundwork/internal/store"
)

// Manager is what the grounder requires of an atom manager: query dispatch
// over the current view and interning construction of ground atoms.
type Manager interface {
	// ExecuteQuery runs q over the manager's database view, materializing
	// the rows.
	ExecuteQuery(ctx context.Context, q query.Query) (*store.ResultList, error)

	// GetAtom returns the canonical ground atom for (predicate, args),
	// creating it if absent. Two calls with equal arguments return the
	// same object.
	GetAtom(p *model.Predicate, args []model.Constant) (*model.GroundAtom, error)
}

// PersistedManager is the Manager over a data store database view. It
// retains canonical handles for every ground atom it has produced.
//
// Thread-safety: safe for concurrent use; only the manager mutates the
// intern table, under its own lock.
type PersistedManager struct {
	db *store.Database

	mu    sync.Mutex
	cache map[string]*model.GroundAtom
}

// NewPersistedManager creates a manager over the database view.
func NewPersistedManager(db *store.Database) *PersistedManager {
	return &PersistedManager{
		db:    db,
		cache: make(map[string]*model.GroundAtom),
	}
}

// Database returns the underlying view.
func (m *PersistedManager) Database() *store.Database { return m.db }

// ExecuteQuery implements Manager.
func (m *PersistedManager) ExecuteQuery(ctx context.Context, q query.Query) (*store.ResultList, error) {
	return m.db.ExecuteQuery(ctx, q)
}

// GetAtom implements Manager. The returned atom is canonical: repeat calls
// with equal identity return the same object.
func (m *PersistedManager) GetAtom(p *model.Predicate, args []model.Constant) (*model.GroundAtom, error) {
	a, err := model.NewGroundAtom(p, args)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if canonical, ok := m.cache[a.Key()]; ok {
		return canonical, nil
	}
	m.cache[a.Key()] = a
	return a, nil
}
