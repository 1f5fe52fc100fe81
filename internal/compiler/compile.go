// Package compiler turns CUE model definitions into predicates and rule
// formulas.
//
// A model file declares predicates and rules structurally:
//
//	predicates: {
//		Friend: {args: ["string", "string"], closed: true}
//		Likes:  {args: ["string", "string"]}
//	}
//	rules: [
//		{
//			name:   "friends-share-likes"
//			weight: 5.0
//			implies: {
//				body: {and: [
//					{atom: {pred: "Friend", args: ["X", "Y"]}},
//					{atom: {pred: "Likes", args: ["X", "Z"]}},
//				]}
//				head: {atom: {pred: "Likes", args: ["Y", "Z"]}}
//			}
//		},
//	]
//
// A formula node carries exactly one of: atom, not, and, or, implies,
// equiv. Atom arguments starting with an upper-case letter are variables;
// anything else parses as a constant of the predicate's declared kind.
package compiler

import (
	"fmt"
	"strconv"
	"unicode"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/groundworklabs/groundwork/internal/formula"
	"github.com/groundworklabs/groundwork/internal/kernel"
	"github.com/groundworklabs/groundwork/internal/model"
)

// CompileError reports a model definition problem with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RuleSpec is a compiled rule: a formula plus its weight or hard marker.
type RuleSpec struct {
	Name    string
	Weight  float64
	Hard    bool
	Formula formula.Formula
}

// Model is the compiled form of a model definition.
type Model struct {
	Registry *model.Registry
	Closed   []*model.Predicate
	Rules    []RuleSpec
}

// Kernels validates every rule and returns one rule kernel per rule, in
// declaration order. Weighted rules get a WeightedLogicalRule instancer,
// hard rules a ConstraintLogicalRule.
func (m *Model) Kernels() ([]*kernel.RuleKernel, error) {
	kernels := make([]*kernel.RuleKernel, 0, len(m.Rules))
	for _, spec := range m.Rules {
		var inst kernel.GroundInstancer
		if spec.Hard {
			inst = kernel.ConstraintLogicalRule{}
		} else {
			inst = kernel.WeightedLogicalRule{Weight: spec.Weight}
		}
		k, err := kernel.New(spec.Formula, inst, m.Registry)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.Name, err)
		}
		kernels = append(kernels, k)
	}
	return kernels, nil
}

// CompileModel parses a CUE value holding predicates and rules.
func CompileModel(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}

	m := &Model{Registry: model.NewRegistry()}

	predsVal := v.LookupPath(cue.ParsePath("predicates"))
	if !predsVal.Exists() {
		return nil, &CompileError{Field: "predicates", Message: "predicates section is required", Pos: v.Pos()}
	}
	if err := compilePredicates(predsVal, m); err != nil {
		return nil, err
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if rulesVal.Exists() {
		if err := compileRules(rulesVal, m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func compilePredicates(v cue.Value, m *Model) error {
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{Field: "predicates", Message: err.Error(), Pos: v.Pos()}
	}

	for iter.Next() {
		name := iter.Label()
		pv := iter.Value()

		argsVal := pv.LookupPath(cue.ParsePath("args"))
		if !argsVal.Exists() {
			return &CompileError{Field: "predicates." + name, Message: "args is required", Pos: pv.Pos()}
		}
		argIter, err := argsVal.List()
		if err != nil {
			return &CompileError{Field: "predicates." + name, Message: err.Error(), Pos: argsVal.Pos()}
		}

		var kinds []model.ArgKind
		for argIter.Next() {
			s, err := argIter.Value().String()
			if err != nil {
				return &CompileError{Field: "predicates." + name, Message: err.Error(), Pos: argIter.Value().Pos()}
			}
			k, err := model.ParseArgKind(s)
			if err != nil {
				return &CompileError{Field: "predicates." + name, Message: err.Error(), Pos: argIter.Value().Pos()}
			}
			kinds = append(kinds, k)
		}

		derived := boolField(pv, "derived")

		var p *model.Predicate
		if derived {
			p, err = m.Registry.Derived(name, kinds...)
		} else {
			p, err = m.Registry.Standard(name, kinds...)
		}
		if err != nil {
			return &CompileError{Field: "predicates." + name, Message: err.Error(), Pos: pv.Pos()}
		}

		if boolField(pv, "closed") {
			m.Closed = append(m.Closed, p)
		}
	}

	return nil
}

func compileRules(v cue.Value, m *Model) error {
	iter, err := v.List()
	if err != nil {
		return &CompileError{Field: "rules", Message: err.Error(), Pos: v.Pos()}
	}

	idx := 0
	for iter.Next() {
		rv := iter.Value()
		field := fmt.Sprintf("rules[%d]", idx)
		idx++

		spec := RuleSpec{Name: fmt.Sprintf("rule-%d", idx)}
		if nameVal := rv.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
			name, err := nameVal.String()
			if err != nil {
				return &CompileError{Field: field + ".name", Message: err.Error(), Pos: nameVal.Pos()}
			}
			spec.Name = name
		}

		weightVal := rv.LookupPath(cue.ParsePath("weight"))
		spec.Hard = boolField(rv, "hard")
		switch {
		case spec.Hard && weightVal.Exists():
			return &CompileError{Field: field, Message: "a rule is weighted or hard, not both", Pos: rv.Pos()}
		case weightVal.Exists():
			w, err := weightVal.Float64()
			if err != nil {
				return &CompileError{Field: field + ".weight", Message: err.Error(), Pos: weightVal.Pos()}
			}
			spec.Weight = w
		case !spec.Hard:
			return &CompileError{Field: field, Message: "a rule needs a weight or hard: true", Pos: rv.Pos()}
		}

		f, err := compileFormula(rv, m.Registry, field)
		if err != nil {
			return err
		}
		spec.Formula = f

		m.Rules = append(m.Rules, spec)
	}

	return nil
}

// formulaKeys are the connective fields a formula node may carry.
var formulaKeys = []string{"atom", "not", "and", "or", "implies", "equiv"}

// compileFormula parses the single connective field of a formula node.
func compileFormula(v cue.Value, reg *model.Registry, field string) (formula.Formula, error) {
	var key string
	for _, k := range formulaKeys {
		if v.LookupPath(cue.ParsePath(k)).Exists() {
			if key != "" {
				return nil, &CompileError{Field: field, Message: "formula node must carry exactly one connective", Pos: v.Pos()}
			}
			key = k
		}
	}
	if key == "" {
		return nil, &CompileError{Field: field, Message: "formula node has no connective (atom, not, and, or, implies, equiv)", Pos: v.Pos()}
	}

	nv := v.LookupPath(cue.ParsePath(key))
	switch key {
	case "atom":
		return compileAtom(nv, reg, field+".atom")

	case "not":
		inner, err := compileFormula(nv, reg, field+".not")
		if err != nil {
			return nil, err
		}
		return formula.Not(inner), nil

	case "and", "or":
		parts, err := compileFormulaList(nv, reg, field+"."+key)
		if err != nil {
			return nil, err
		}
		if key == "and" {
			return formula.And(parts...), nil
		}
		return formula.Or(parts...), nil

	case "implies":
		body, err := compileFormula(nv.LookupPath(cue.ParsePath("body")), reg, field+".implies.body")
		if err != nil {
			return nil, err
		}
		head, err := compileFormula(nv.LookupPath(cue.ParsePath("head")), reg, field+".implies.head")
		if err != nil {
			return nil, err
		}
		return formula.Implies(body, head), nil

	default: // equiv
		left, err := compileFormula(nv.LookupPath(cue.ParsePath("left")), reg, field+".equiv.left")
		if err != nil {
			return nil, err
		}
		right, err := compileFormula(nv.LookupPath(cue.ParsePath("right")), reg, field+".equiv.right")
		if err != nil {
			return nil, err
		}
		return formula.Equiv(left, right), nil
	}
}

func compileFormulaList(v cue.Value, reg *model.Registry, field string) ([]formula.Formula, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	var parts []formula.Formula
	i := 0
	for iter.Next() {
		f, err := compileFormula(iter.Value(), reg, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
		i++
	}
	if len(parts) == 0 {
		return nil, &CompileError{Field: field, Message: "connective needs at least one part", Pos: v.Pos()}
	}
	return parts, nil
}

func compileAtom(v cue.Value, reg *model.Registry, field string) (formula.Atom, error) {
	predVal := v.LookupPath(cue.ParsePath("pred"))
	name, err := predVal.String()
	if err != nil {
		return formula.Atom{}, &CompileError{Field: field + ".pred", Message: err.Error(), Pos: v.Pos()}
	}
	p, ok := reg.ByName(name)
	if !ok {
		return formula.Atom{}, &CompileError{Field: field + ".pred", Message: "unknown predicate " + name, Pos: predVal.Pos()}
	}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	iter, err := argsVal.List()
	if err != nil {
		return formula.Atom{}, &CompileError{Field: field + ".args", Message: err.Error(), Pos: argsVal.Pos()}
	}

	var terms []model.Term
	i := 0
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return formula.Atom{}, &CompileError{Field: fmt.Sprintf("%s.args[%d]", field, i), Message: err.Error(), Pos: iter.Value().Pos()}
		}
		if i >= p.Arity() {
			return formula.Atom{}, &CompileError{Field: field + ".args", Message: fmt.Sprintf("too many arguments for %s", name), Pos: argsVal.Pos()}
		}
		term, err := ParseTerm(s, p.Args[i])
		if err != nil {
			return formula.Atom{}, &CompileError{Field: fmt.Sprintf("%s.args[%d]", field, i), Message: err.Error(), Pos: iter.Value().Pos()}
		}
		terms = append(terms, term)
		i++
	}

	a, err := formula.NewAtom(p, terms...)
	if err != nil {
		return formula.Atom{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return a, nil
}

// ParseTerm interprets an argument string: an upper-case initial letter
// makes a variable, anything else a constant of the given kind.
func ParseTerm(s string, kind model.ArgKind) (model.Term, error) {
	if s == "" {
		return nil, fmt.Errorf("empty argument")
	}
	runes := []rune(s)
	if unicode.IsUpper(runes[0]) {
		return model.Variable(s), nil
	}
	return ParseConstant(s, kind)
}

// ParseConstant parses a constant literal of the given kind.
func ParseConstant(s string, kind model.ArgKind) (model.Constant, error) {
	switch kind {
	case model.ArgInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse int constant %q: %w", s, err)
		}
		return model.Int(n), nil
	case model.ArgString:
		return model.String(s), nil
	case model.ArgUniqueID:
		return model.ParseUniqueID(s)
	case model.ArgDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse double constant %q: %w", s, err)
		}
		return model.Double(f), nil
	default:
		return nil, fmt.Errorf("unknown argument kind %d", int(kind))
	}
}

func boolField(v cue.Value, name string) bool {
	bv := v.LookupPath(cue.ParsePath(name))
	if !bv.Exists() {
		return false
	}
	b, err := bv.Bool()
	return err == nil && b
}
