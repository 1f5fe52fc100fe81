package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/querysql"
)

// Inserter loads rows of one predicate into one partition. Obtained from
// DataStore.GetInserter; the partition must stay out of use by open
// databases while loading.
type Inserter struct {
	ds        *DataStore
	pred      *model.Predicate
	partition Partition
}

// Insert writes an observed atom with value 1.0.
func (ins *Inserter) Insert(ctx context.Context, args ...model.Constant) error {
	return ins.InsertValue(ctx, 1.0, args...)
}

// InsertValue writes an atom with an explicit value. Repeat inserts of the
// same tuple upsert the value.
func (ins *Inserter) InsertValue(ctx context.Context, value float64, args ...model.Constant) error {
	if len(args) != ins.pred.Arity() {
		return fmt.Errorf("insert %s: got %d arguments, want %d", ins.pred.Name, len(args), ins.pred.Arity())
	}

	argCols := make([]string, len(args))
	placeholders := make([]string, len(args))
	params := make([]any, 0, len(args)+2)
	for i, c := range args {
		if c.Kind() != ins.pred.Args[i] {
			return fmt.Errorf("insert %s: argument %d is %s, want %s", ins.pred.Name, i, c.Kind(), ins.pred.Args[i])
		}
		argCols[i] = fmt.Sprintf("arg_%d", i)
		placeholders[i] = "?"
		params = append(params, c.Encode())
	}
	params = append(params, int64(ins.partition), value)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (%s, partition_id, value)
		VALUES (%s, ?, ?)
		ON CONFLICT(%s, partition_id) DO UPDATE SET value = excluded.value
	`,
		querysql.TableName(ins.pred.Name),
		strings.Join(argCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(argCols, ", "))

	if _, err := ins.ds.db.ExecContext(ctx, stmt, params...); err != nil {
		return fmt.Errorf("insert %s: %w", ins.pred.Name, err)
	}
	return nil
}
