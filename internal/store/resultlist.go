package store

import (
	"github.com/groundworklabs/groundwork/internal/model"
)

// ResultList is the materialized result of a conjunctive query: an indexed
// mapping from (row index, variable) to the ground term assigned in that
// row. Row order is the store's deterministic result order.
type ResultList struct {
	vars  []model.Variable
	index map[model.Variable]int
	rows  [][]model.Constant
}

func newResultList(vars []model.Variable) *ResultList {
	index := make(map[model.Variable]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	return &ResultList{vars: vars, index: index}
}

func (r *ResultList) appendRow(row []model.Constant) {
	r.rows = append(r.rows, row)
}

// Len returns the number of rows.
func (r *ResultList) Len() int { return len(r.rows) }

// Variables returns the projected variables in column order.
func (r *ResultList) Variables() []model.Variable { return r.vars }

// Get returns the constant assigned to v in row i. The second return is
// false when v is not a projected variable.
func (r *ResultList) Get(i int, v model.Variable) (model.Constant, bool) {
	col, ok := r.index[v]
	if !ok {
		return nil, false
	}
	return r.rows[i][col], true
}

// Row returns row i's constants in column order. The returned slice is
// shared; callers must not modify it.
func (r *ResultList) Row(i int) []model.Constant { return r.rows[i] }
