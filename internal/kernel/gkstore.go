package kernel

import (
	"sync"

	"github.com/groundworklabs/groundwork/internal/model"
)

// GroundKernelStore is a set-like collection of ground rules with
// merge-on-duplicate semantics. Identity is the unordered multiset of
// signed ground atoms (GroundRule.Key); a duplicate grounding increments
// the existing rule's multiplicity instead of inserting.
//
// Ground rules are never removed by the grounder. Iteration order is
// insertion order, which for a deterministic store makes grounding traces
// reproducible.
//
// Thread-safety: all methods are safe for concurrent use; merge-or-insert
// is serializable per candidate identity.
type GroundKernelStore struct {
	mu      sync.Mutex
	byKey   map[string]*model.GroundRule
	order   []*model.GroundRule
	changed []func(*model.GroundRule)
}

// NewGroundKernelStore creates an empty store.
func NewGroundKernelStore() *GroundKernelStore {
	return &GroundKernelStore{byKey: make(map[string]*model.GroundRule)}
}

// Get returns the stored rule equal to the candidate, or nil.
func (s *GroundKernelStore) Get(candidate *model.GroundRule) *model.GroundRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKey[candidate.Key()]
}

// Add inserts a new rule. Adding a rule whose identity is already present
// is a programming error; use MergeOrInsert for the combined operation.
func (s *GroundKernelStore) Add(r *model.GroundRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(r)
}

// NotifyChanged informs observers that an existing rule changed (its
// multiplicity was increased).
func (s *GroundKernelStore) NotifyChanged(r *model.GroundRule) {
	s.mu.Lock()
	observers := s.observersLocked()
	s.mu.Unlock()
	for _, fn := range observers {
		fn(r)
	}
}

// MergeOrInsert merges the candidate into the store: if an equal rule
// exists its multiplicity is incremented and observers are notified,
// otherwise the candidate is inserted. Returns the stored rule and whether
// a merge happened. The check and the mutation are one critical section,
// so the operation is serializable per candidate identity.
func (s *GroundKernelStore) MergeOrInsert(candidate *model.GroundRule) (*model.GroundRule, bool) {
	s.mu.Lock()
	existing := s.byKey[candidate.Key()]
	if existing != nil {
		existing.IncreaseGroundings()
	} else {
		s.insertLocked(candidate)
	}
	observers := s.observersLocked()
	s.mu.Unlock()

	if existing != nil {
		for _, fn := range observers {
			fn(existing)
		}
		return existing, true
	}
	return candidate, false
}

// OnChanged registers an observer invoked whenever an existing rule's
// multiplicity increases.
func (s *GroundKernelStore) OnChanged(fn func(*model.GroundRule)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = append(s.changed, fn)
}

// GroundRules returns the stored rules in insertion order.
func (s *GroundKernelStore) GroundRules() []*model.GroundRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.GroundRule(nil), s.order...)
}

// Size returns the number of distinct rules.
func (s *GroundKernelStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *GroundKernelStore) insertLocked(r *model.GroundRule) {
	s.byKey[r.Key()] = r
	s.order = append(s.order, r)
}

func (s *GroundKernelStore) observersLocked() []func(*model.GroundRule) {
	observers := make([]func(*model.GroundRule), len(s.changed))
	copy(observers, s.changed)
	return observers
}
