// Package querysql compiles conjunctive queries to parameterized SQL for
// SQLite.
//
// CRITICAL: every query includes ORDER BY over the full projection so row
// order is deterministic for a given store state.
// CRITICAL: all values are parameterized, never interpolated.
package querysql

import (
	"fmt"
	"strings"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
)

// Compiled is the SQL rendering of a conjunctive query.
type Compiled struct {
	// SQL is the parameterized statement.
	SQL string

	// Params are the statement parameters in placeholder order.
	Params []any

	// Columns are the projected variables in first-occurrence order,
	// matching the result columns left to right.
	Columns []model.Variable

	// Kinds are the argument kinds of the projected columns, used to
	// decode the TEXT-encoded constants when scanning.
	Kinds []model.ArgKind
}

// TableName maps a predicate name to its relation name.
func TableName(predName string) string {
	return "p_" + strings.ToLower(predName)
}

// Compile translates a conjunctive query restricted to the given partitions
// into parameterized SQL. Shared variables become equi-join conditions,
// constants and the partial grounding become equality selections, and each
// table carries a partition_id restriction.
func Compile(q query.Query, reg *model.Registry, partitions []int64) (*Compiled, error) {
	if err := query.Validate(q, reg); err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("compile query: no partitions to read")
	}

	type colRef struct {
		expr string
		kind model.ArgKind
	}

	firstOcc := make(map[model.Variable]colRef)
	var proj []model.Variable
	var fromParts []string
	var whereParts []string
	var params []any

	partitionList := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(partitions)), ", ") + ")"

	for i, a := range q.Formula.Atoms {
		p := reg.MustByID(a.Predicate)
		alias := fmt.Sprintf("t%d", i)

		var onParts []string
		for j, term := range a.Args {
			col := fmt.Sprintf("%s.arg_%d", alias, j)
			switch arg := term.(type) {
			case model.Constant:
				whereParts = append(whereParts, col+" = ?")
				params = append(params, arg.Encode())

			case model.Variable:
				if ref, ok := firstOcc[arg]; ok {
					cond := col + " = " + ref.expr
					if i == 0 {
						// A repeat within the first table has no join to
						// attach to.
						whereParts = append(whereParts, cond)
					} else {
						onParts = append(onParts, cond)
					}
					continue
				}
				firstOcc[arg] = colRef{expr: col, kind: p.Args[j]}
				proj = append(proj, arg)
				if c, ok := q.Partial[arg]; ok {
					if c.Kind() != p.Args[j] {
						return nil, fmt.Errorf("compile query: partial grounding for %s is %s, want %s", arg, c.Kind(), p.Args[j])
					}
					whereParts = append(whereParts, col+" = ?")
					params = append(params, c.Encode())
				}

			default:
				return nil, fmt.Errorf("compile query: unknown term kind %T", term)
			}
		}

		whereParts = append(whereParts, fmt.Sprintf("%s.partition_id IN %s", alias, partitionList))
		for _, part := range partitions {
			params = append(params, part)
		}

		if i == 0 {
			fromParts = append(fromParts, TableName(p.Name)+" AS "+alias)
		} else {
			on := "1 = 1"
			if len(onParts) > 0 {
				on = strings.Join(onParts, " AND ")
			}
			fromParts = append(fromParts, "INNER JOIN "+TableName(p.Name)+" AS "+alias+" ON "+on)
		}
	}

	selectParts := make([]string, len(proj))
	orderParts := make([]string, len(proj))
	kinds := make([]model.ArgKind, len(proj))
	for k, v := range proj {
		ref := firstOcc[v]
		colAlias := fmt.Sprintf("v%d", k)
		selectParts[k] = ref.expr + " AS " + colAlias
		// COLLATE BINARY keeps text ordering identical across SQLite
		// versions and locales.
		orderParts[k] = colAlias + " COLLATE BINARY ASC"
		kinds[k] = ref.kind
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s",
		strings.Join(selectParts, ", "),
		strings.Join(fromParts, " "),
		strings.Join(whereParts, " AND "),
		strings.Join(orderParts, ", "))

	return &Compiled{
		SQL:     sql,
		Params:  params,
		Columns: proj,
		Kinds:   kinds,
	}, nil
}
