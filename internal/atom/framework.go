package atom

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/groundworklabs/groundwork/internal/formula"
	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
	"github.com/groundworklabs/groundwork/internal/store"
)

// EventSet names the event kinds a registration subscribes to.
type EventSet uint8

const (
	// ActivatedEventSet subscribes to atom activations. It is the only
	// event set the framework supports.
	ActivatedEventSet EventSet = 1 << iota
)

// Handler receives activation events. Implementations are not re-entered:
// the framework does not deliver another activation to a handler until the
// current call returns.
type Handler interface {
	OnAtomActivated(ctx context.Context, a *model.GroundAtom, fw *Framework) error
}

// registration subscribes one handler for one clause's predicates.
type registration struct {
	handler Handler
	token   int64
}

// Framework owns the activation queue and the handler registrations.
//
// Activating an atom commits it to the database's write partition (so
// subsequent queries see it) and enqueues an event; Drain delivers queued
// events serially, in activation order, to every handler registered for
// the atom's predicate.
//
// The framework also implements Manager by delegating to its persisted
// manager, so handlers can query and intern through the framework during
// event delivery.
type Framework struct {
	mgr   *PersistedManager
	clock *Clock
	queue *eventQueue

	mu        sync.Mutex
	handlers  map[model.PredicateID][]registration
	tokens    map[Handler]int64
	nextToken int64
	active    map[string]bool
	draining  bool
}

// NewFramework creates an event framework over the manager's view.
func NewFramework(mgr *PersistedManager) *Framework {
	return &Framework{
		mgr:      mgr,
		clock:    NewClock(),
		queue:    newEventQueue(),
		handlers: make(map[model.PredicateID][]registration),
		tokens:   make(map[Handler]int64),
		active:   make(map[string]bool),
	}
}

// Manager returns the persisted manager backing the framework.
func (f *Framework) Manager() *PersistedManager { return f.mgr }

// ExecuteQuery implements Manager by delegation.
func (f *Framework) ExecuteQuery(ctx context.Context, q query.Query) (*store.ResultList, error) {
	return f.mgr.ExecuteQuery(ctx, q)
}

// GetAtom implements Manager by delegation.
func (f *Framework) GetAtom(p *model.Predicate, args []model.Constant) (*model.GroundAtom, error) {
	return f.mgr.GetAtom(p, args)
}

// RegisterFormula subscribes the handler to the given events for every
// predicate appearing in the clause. Registering the same handler twice is
// an error; unregister first.
func (f *Framework) RegisterFormula(clause *formula.DNFClause, h Handler, events EventSet) error {
	if events != ActivatedEventSet {
		return fmt.Errorf("register formula: unsupported event set %d (only atom-activated is supported)", events)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tokens[h]; ok {
		return fmt.Errorf("register formula: handler already registered")
	}

	f.nextToken++
	token := f.nextToken
	f.tokens[h] = token

	for _, id := range clause.Predicates() {
		f.handlers[id] = append(f.handlers[id], registration{handler: h, token: token})
	}
	return nil
}

// UnregisterFormula removes the handler's subscriptions for the clause.
func (f *Framework) UnregisterFormula(clause *formula.DNFClause, h Handler, events EventSet) error {
	if events != ActivatedEventSet {
		return fmt.Errorf("unregister formula: unsupported event set %d", events)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[h]
	if !ok {
		return fmt.Errorf("unregister formula: handler is not registered")
	}
	delete(f.tokens, h)

	for _, id := range clause.Predicates() {
		regs := f.handlers[id]
		kept := regs[:0]
		for _, r := range regs {
			if r.token != token {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(f.handlers, id)
		} else {
			f.handlers[id] = kept
		}
	}
	return nil
}

// Activate marks the atom active: commits it to the write partition with
// the given value and enqueues an activation event. Activating an atom
// that is already active (committed earlier or present in the view's
// partitions) is a no-op.
func (f *Framework) Activate(ctx context.Context, a *model.GroundAtom, value float64) error {
	f.mu.Lock()
	if f.active[a.Key()] {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	// Atoms already persisted in the view count as active; re-activating
	// them must not retrigger grounding.
	has, err := f.mgr.Database().HasAtom(ctx, a)
	if err != nil {
		return err
	}

	// Closed-world predicates hold observed atoms only; no candidates are
	// created for them.
	if !has && f.mgr.Database().IsClosed(a.Predicate) {
		return fmt.Errorf("activate: predicate %d is closed in this view", int(a.Predicate))
	}

	f.mu.Lock()
	if f.active[a.Key()] {
		f.mu.Unlock()
		return nil
	}
	f.active[a.Key()] = true
	f.mu.Unlock()

	if has {
		return nil
	}

	if err := f.mgr.Database().CommitAtom(ctx, a, value); err != nil {
		return err
	}

	seq := f.clock.Next()
	f.queue.Enqueue(Event{Type: EventAtomActivated, Atom: a, Seq: seq})
	slog.Debug("atom activated", "atom", a.Key(), "seq", seq)
	return nil
}

// Pending returns the number of undelivered activation events.
func (f *Framework) Pending() int { return f.queue.Len() }

// Drain delivers queued activations serially until the queue is empty.
// Events are delivered in activation order; for each event, handlers run
// in registration order. Handler errors propagate immediately; events
// already delivered stay delivered (grounding is idempotent under merge,
// so replay is safe).
//
// CRITICAL: Drain must be called from exactly one goroutine at a time; it
// is the serialization point across activations.
func (f *Framework) Drain(ctx context.Context) error {
	f.mu.Lock()
	if f.draining {
		f.mu.Unlock()
		return fmt.Errorf("drain: already draining")
	}
	f.draining = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.draining = false
		f.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e, ok := f.queue.TryDequeue()
		if !ok {
			return nil
		}

		f.mu.Lock()
		regs := append([]registration(nil), f.handlers[e.Atom.Predicate]...)
		f.mu.Unlock()

		for _, r := range regs {
			if err := r.handler.OnAtomActivated(ctx, e.Atom, f); err != nil {
				return fmt.Errorf("deliver activation seq %d: %w", e.Seq, err)
			}
		}
	}
}
