// Package harness provides a declarative conformance harness for the
// grounding pipeline. A scenario names a model, facts per partition, and a
// sequence of atom activations; running it captures the ground-kernel
// store after the initial full grounding and after every activation, for
// assertion or golden-trace comparison.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/groundworklabs/groundwork/internal/atom"
	"github.com/groundworklabs/groundwork/internal/compiler"
	"github.com/groundworklabs/groundwork/internal/kernel"
	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/store"
)

// Scenario defines a grounding conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Model is the CUE model path, relative to the scenario file.
	Model string `yaml:"model"`

	// Facts lists the atoms loaded per partition before grounding.
	Facts map[string][]Fact `yaml:"facts"`

	// Activations are delivered in order after the initial full grounding.
	Activations []Activation `yaml:"activations,omitempty"`

	dir string
}

// Fact is one atom row. A missing value defaults to 1.0 (observed true).
type Fact struct {
	Pred  string   `yaml:"pred"`
	Args  []string `yaml:"args"`
	Value *float64 `yaml:"value,omitempty"`
}

// Activation is one atom activation event.
type Activation struct {
	Pred  string   `yaml:"pred"`
	Args  []string `yaml:"args"`
	Value float64  `yaml:"value"`
}

// Stage is the ground-kernel store state at one point of the run.
type Stage struct {
	// Label is "ground_all" or "activate <atom>".
	Label string

	// Rules renders every stored rule in insertion order, prefixed by its
	// weight, or by "hard" for a hard rule.
	Rules []string
}

// Result captures a scenario run.
type Result struct {
	Name   string
	Stages []Stage
}

// LoadScenario parses a scenario file. Relative paths inside the scenario
// resolve against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// Run executes the scenario against a fresh store under workDir: load the
// model, insert the facts, ground every rule, then deliver the activations
// one at a time, snapshotting the ground-kernel store at each stage.
func (s *Scenario) Run(ctx context.Context, workDir string) (*Result, error) {
	m, err := compiler.LoadModel(filepath.Join(s.dir, s.Model))
	if err != nil {
		return nil, err
	}
	kernels, err := m.Kernels()
	if err != nil {
		return nil, err
	}

	ds, err := store.Open(filepath.Join(workDir, s.Name+".db"), m.Registry)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	for _, p := range m.Registry.Predicates() {
		if err := ds.RegisterPredicate(p); err != nil {
			return nil, err
		}
	}

	readNames := make([]string, 0, len(s.Facts))
	for name := range s.Facts {
		readNames = append(readNames, name)
	}
	// Partition order is irrelevant to grounding but keep it stable.
	sort.Strings(readNames)

	var reads []store.Partition
	for _, name := range readNames {
		part, err := ds.Partition(name)
		if err != nil {
			return nil, err
		}
		if err := s.insertFacts(ctx, ds, m, part, s.Facts[name]); err != nil {
			return nil, err
		}
		reads = append(reads, part)
	}

	write, err := ds.Partition("targets")
	if err != nil {
		return nil, err
	}

	db, err := ds.GetDatabaseWithClosed(write, m.Closed, reads...)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	mgr := atom.NewPersistedManager(db)
	fw := atom.NewFramework(mgr)
	gks := kernel.NewGroundKernelStore()

	for _, k := range kernels {
		if err := k.RegisterForAtomEvents(fw, gks); err != nil {
			return nil, err
		}
		if err := k.GroundAll(ctx, fw, gks); err != nil {
			return nil, err
		}
	}

	result := &Result{Name: s.Name}
	result.Stages = append(result.Stages, snapshot("ground_all", gks, m.Registry))

	for _, act := range s.Activations {
		p, ok := m.Registry.ByName(act.Pred)
		if !ok {
			return nil, fmt.Errorf("activation: unknown predicate %s", act.Pred)
		}
		args, err := parseArgs(p, act.Args)
		if err != nil {
			return nil, err
		}
		a, err := fw.GetAtom(p, args)
		if err != nil {
			return nil, err
		}
		if err := fw.Activate(ctx, a, act.Value); err != nil {
			return nil, err
		}
		if err := fw.Drain(ctx); err != nil {
			return nil, err
		}
		result.Stages = append(result.Stages, snapshot("activate "+a.String(m.Registry), gks, m.Registry))
	}

	return result, nil
}

func (s *Scenario) insertFacts(ctx context.Context, ds *store.DataStore, m *compiler.Model, part store.Partition, facts []Fact) error {
	for _, fact := range facts {
		p, ok := m.Registry.ByName(fact.Pred)
		if !ok {
			return fmt.Errorf("fact: unknown predicate %s", fact.Pred)
		}
		args, err := parseArgs(p, fact.Args)
		if err != nil {
			return err
		}
		ins, err := ds.GetInserter(p, part)
		if err != nil {
			return err
		}
		value := 1.0
		if fact.Value != nil {
			value = *fact.Value
		}
		if err := ins.InsertValue(ctx, value, args...); err != nil {
			return err
		}
	}
	return nil
}

func parseArgs(p *model.Predicate, raw []string) ([]model.Constant, error) {
	if len(raw) != p.Arity() {
		return nil, fmt.Errorf("%s: got %d arguments, want %d", p.Name, len(raw), p.Arity())
	}
	args := make([]model.Constant, len(raw))
	for i, s := range raw {
		c, err := compiler.ParseConstant(s, p.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		args[i] = c
	}
	return args, nil
}

func snapshot(label string, gks *kernel.GroundKernelStore, reg *model.Registry) Stage {
	stage := Stage{Label: label}
	for _, r := range gks.GroundRules() {
		if r.Hard {
			stage.Rules = append(stage.Rules, "hard: "+r.String(reg))
		} else {
			stage.Rules = append(stage.Rules, fmt.Sprintf("%g: %s", r.Weight, r.String(reg)))
		}
	}
	return stage
}

// RenderText formats the result for golden-trace comparison.
func (r *Result) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Name)
	for _, stage := range r.Stages {
		fmt.Fprintf(&b, "== %s\n", stage.Label)
		for _, rule := range stage.Rules {
			fmt.Fprintln(&b, rule)
		}
	}
	return b.String()
}
