package kernel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/groundworklabs/groundwork/internal/atom"
	"github.com/groundworklabs/groundwork/internal/formula"
	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
	"github.com/groundworklabs/groundwork/internal/store"
)

// RuleKernel owns a validated clause and drives its grounding.
//
// A kernel's own methods are not re-entered concurrently: grounding is
// single-threaded cooperative per kernel. Multiple kernels may be grounded
// in parallel when the atom manager, data store, and ground-kernel store
// are shared - those are thread-safe; the per-kernel scratch buffers are
// not.
type RuleKernel struct {
	formula formula.Formula
	clause  *formula.DNFClause
	inst    GroundInstancer
	reg     *model.Registry

	// gks is the store used for event-driven grounding, set at event
	// registration.
	gks *GroundKernelStore

	// Scratch buffers reused across result rows. GroundInstance copies
	// what it keeps, so resetting between rows is safe.
	pos []*model.GroundAtom
	neg []*model.GroundAtom
}

// New builds a rule kernel from a formula. The formula is negated, reduced
// to DNF, and validated; see formula.Analyze for the rejection conditions.
// The clause is immutable thereafter.
func New(f formula.Formula, inst GroundInstancer, reg *model.Registry) (*RuleKernel, error) {
	clause, err := formula.Analyze(f, reg)
	if err != nil {
		return nil, err
	}
	return &RuleKernel{
		formula: f,
		clause:  clause,
		inst:    inst,
		reg:     reg,
		pos:     make([]*model.GroundAtom, 0, 4),
		neg:     make([]*model.GroundAtom, 0, 4),
	}, nil
}

// Clause returns the kernel's validated clause.
func (k *RuleKernel) Clause() *formula.DNFClause { return k.clause }

// Clone refuses: rule kernels are identity-stable.
func (k *RuleKernel) Clone() (*RuleKernel, error) {
	return nil, &Error{Code: CodeCloneUnsupported, Message: "rule kernels cannot be duplicated"}
}

// GroundAll enumerates every ground rule the clause induces against the
// manager's current view and merges each into gks, in store-row order.
func (k *RuleKernel) GroundAll(ctx context.Context, m atom.Manager, gks *GroundKernelStore) error {
	res, err := m.ExecuteQuery(ctx, query.New(k.clause.QueryFormula()))
	if err != nil {
		return err
	}
	slog.Debug("grounding rule instances", "rows", res.Len(), "clause", k.clause.String())
	return k.groundClause(ctx, m, gks, res, nil)
}

// groundClause expands every result row into a ground rule and merges it
// into gks. A non-nil partial assignment takes precedence over row values
// during substitution, so an activating atom's constants reach the
// produced rules.
func (k *RuleKernel) groundClause(ctx context.Context, m atom.Manager, gks *GroundKernelStore, res *store.ResultList, partial query.PartialGrounding) error {
	for i := 0; i < res.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, lit := range k.clause.PosLiterals() {
			ga, err := k.groundAtom(m, lit, res, i, partial)
			if err != nil {
				return err
			}
			k.pos = append(k.pos, ga)
		}
		for _, lit := range k.clause.NegLiterals() {
			ga, err := k.groundAtom(m, lit, res, i, partial)
			if err != nil {
				return err
			}
			k.neg = append(k.neg, ga)
		}

		candidate := k.inst.GroundInstance(k.pos, k.neg)
		if _, merged := gks.MergeOrInsert(candidate); merged {
			slog.Debug("ground rule merged", "rule", candidate.Key())
		}

		k.pos = k.pos[:0]
		k.neg = k.neg[:0]
	}
	return nil
}

// groundAtom materializes one literal for one result row: variables take
// the partial assignment first, then the row; ground terms pass through.
// The canonical atom comes from the manager's interning constructor.
func (k *RuleKernel) groundAtom(m atom.Manager, a model.Atom, res *store.ResultList, row int, partial query.PartialGrounding) (*model.GroundAtom, error) {
	p := k.reg.MustByID(a.Predicate)
	args := make([]model.Constant, len(a.Args))
	for j, t := range a.Args {
		switch term := t.(type) {
		case model.Variable:
			if c, ok := partial[term]; ok {
				args[j] = c
				continue
			}
			c, ok := res.Get(row, term)
			if !ok {
				return nil, fmt.Errorf("variable %s is not covered by the query result", term)
			}
			args[j] = c
		case model.Constant:
			args[j] = term
		default:
			return nil, &Error{
				Code:    CodeUnknownTermKind,
				Message: fmt.Sprintf("term %v of %s is neither a variable nor a ground term", t, p.Name),
			}
		}
	}
	return m.GetAtom(p, args)
}

// OnAtomActivated produces exactly the ground rules newly enabled by the
// atom's activation: for every way the atom unifies with a literal of the
// clause, the query is re-run under that partial grounding and the rows
// expand as in GroundAll.
func (k *RuleKernel) OnAtomActivated(ctx context.Context, a *model.GroundAtom, fw *atom.Framework) error {
	if k.gks == nil {
		return fmt.Errorf("kernel received activation without event registration")
	}

	assignments := k.clause.TraceAtom(a)
	if len(assignments) == 0 {
		return nil
	}

	for _, v := range assignments {
		q := query.New(k.clause.QueryFormula()).WithPartial(v)
		res, err := fw.ExecuteQuery(ctx, q)
		if err != nil {
			return err
		}
		if err := k.groundClause(ctx, fw, k.gks, res, v); err != nil {
			return err
		}
	}
	return nil
}

// RegisterForAtomEvents subscribes the kernel to atom activations on the
// framework; activations ground into gks. The event set is exactly
// atom-activated.
func (k *RuleKernel) RegisterForAtomEvents(fw *atom.Framework, gks *GroundKernelStore) error {
	k.gks = gks
	if err := fw.RegisterFormula(k.clause, k, atom.ActivatedEventSet); err != nil {
		k.gks = nil
		return err
	}
	return nil
}

// UnregisterForAtomEvents removes the kernel's subscription.
func (k *RuleKernel) UnregisterForAtomEvents(fw *atom.Framework) error {
	if err := fw.UnregisterFormula(k.clause, k, atom.ActivatedEventSet); err != nil {
		return err
	}
	k.gks = nil
	return nil
}
