package cli

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/groundworklabs/groundwork/internal/compiler"
	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/store"
)

// FactFile is a YAML data file mapping partition names to atom rows:
//
//	partitions:
//	  observations:
//	    - pred: Friend
//	      args: [alice, bob]
//	    - pred: Likes
//	      args: [alice, tea]
//	      value: 0.8
type FactFile struct {
	Partitions map[string][]Fact `yaml:"partitions"`
}

// Fact is one atom row. A missing value defaults to 1.0 (observed true).
type Fact struct {
	Pred  string   `yaml:"pred"`
	Args  []string `yaml:"args"`
	Value *float64 `yaml:"value,omitempty"`
}

// LoadFacts parses a YAML fact file.
func LoadFacts(path string) (*FactFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fact file: %w", err)
	}
	var facts FactFile
	if err := yaml.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("parse fact file %s: %w", path, err)
	}
	return &facts, nil
}

// InsertFacts loads every fact into its partition. Partition names resolve
// through the data store, creating them on first use. Returns the resolved
// partitions by name.
func InsertFacts(ctx context.Context, ds *store.DataStore, m *compiler.Model, facts *FactFile) (map[string]store.Partition, error) {
	partitions := make(map[string]store.Partition, len(facts.Partitions))

	for name, rows := range facts.Partitions {
		part, err := ds.Partition(name)
		if err != nil {
			return nil, err
		}
		partitions[name] = part

		for _, fact := range rows {
			p, ok := m.Registry.ByName(fact.Pred)
			if !ok {
				return nil, fmt.Errorf("fact in partition %s: unknown predicate %s", name, fact.Pred)
			}
			if len(fact.Args) != p.Arity() {
				return nil, fmt.Errorf("fact %s: got %d arguments, want %d", fact.Pred, len(fact.Args), p.Arity())
			}

			args := make([]model.Constant, len(fact.Args))
			for i, s := range fact.Args {
				c, err := compiler.ParseConstant(s, p.Args[i])
				if err != nil {
					return nil, fmt.Errorf("fact %s: %w", fact.Pred, err)
				}
				args[i] = c
			}

			ins, err := ds.GetInserter(p, part)
			if err != nil {
				return nil, err
			}
			value := 1.0
			if fact.Value != nil {
				value = *fact.Value
			}
			if err := ins.InsertValue(ctx, value, args...); err != nil {
				return nil, err
			}
		}
	}

	return partitions, nil
}
