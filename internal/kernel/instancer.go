package kernel

import (
	"github.com/groundworklabs/groundwork/internal/model"
)

// GroundInstancer builds a concrete ground rule from the two literal lists
// of one grounding. Supplied at kernel construction.
//
// Contract: pos and neg are transient buffers owned by the grounder, reset
// between rows; an instance must copy the references it intends to retain.
// Order in pos/neg follows the clause's literal order.
type GroundInstancer interface {
	GroundInstance(pos, neg []*model.GroundAtom) *model.GroundRule
}

// WeightedLogicalRule instances soft logical rules: every grounding carries
// the rule's weight.
type WeightedLogicalRule struct {
	Weight float64
}

// GroundInstance implements GroundInstancer. The literal lists are copied.
func (r WeightedLogicalRule) GroundInstance(pos, neg []*model.GroundAtom) *model.GroundRule {
	gr := model.NewGroundRule(pos, neg)
	gr.Weight = r.Weight
	return gr
}

// ConstraintLogicalRule instances hard constraints.
type ConstraintLogicalRule struct{}

// GroundInstance implements GroundInstancer. The literal lists are copied.
func (ConstraintLogicalRule) GroundInstance(pos, neg []*model.GroundAtom) *model.GroundRule {
	gr := model.NewGroundRule(pos, neg)
	gr.Hard = true
	return gr
}
