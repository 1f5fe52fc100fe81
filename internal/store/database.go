package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
	"github.com/groundworklabs/groundwork/internal/querysql"
)

// Database is a view of a data store pinned to exactly one write partition
// and a set of read partitions. Queries see the read partitions plus the
// write partition; writes go to the write partition only.
type Database struct {
	ds     *DataStore
	write  Partition
	reads  []Partition
	closed map[model.PredicateID]bool

	mu       sync.Mutex
	released bool
}

// WritePartition returns the view's write partition.
func (d *Database) WritePartition() Partition { return d.write }

// ReadPartitions returns the view's read partitions. The returned slice is
// shared; callers must not modify it.
func (d *Database) ReadPartitions() []Partition { return d.reads }

// Registry returns the predicate registry backing the view.
func (d *Database) Registry() *model.Registry { return d.ds.reg }

// IsClosed reports whether the predicate is closed-world in this view.
func (d *Database) IsClosed(id model.PredicateID) bool { return d.closed[id] }

// partitionIDs returns read partitions plus the write partition, for query
// scoping.
func (d *Database) partitionIDs() []int64 {
	ids := make([]int64, 0, len(d.reads)+1)
	for _, p := range d.reads {
		ids = append(ids, int64(p))
	}
	ids = append(ids, int64(d.write))
	return ids
}

// ExecuteQuery runs a conjunctive query over the view's partitions and
// materializes the rows. Row order is deterministic for a given store
// state. Query failures are returned unchanged; no retries.
func (d *Database) ExecuteQuery(ctx context.Context, q query.Query) (*ResultList, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	compiled, err := querysql.Compile(q, d.ds.reg, d.partitionIDs())
	if err != nil {
		return nil, err
	}

	slog.Debug("executing query", "sql", compiled.SQL, "params", len(compiled.Params))

	rows, err := d.ds.db.QueryContext(ctx, compiled.SQL, compiled.Params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	res := newResultList(compiled.Columns)
	raw := make([]string, len(compiled.Columns))
	scan := make([]any, len(compiled.Columns))
	for i := range raw {
		scan[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan query row: %w", err)
		}
		row := make([]model.Constant, len(raw))
		for i, s := range raw {
			c, err := model.DecodeConstant(compiled.Kinds[i], s)
			if err != nil {
				return nil, fmt.Errorf("decode query column %s: %w", compiled.Columns[i], err)
			}
			row[i] = c
		}
		res.appendRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query rows: %w", err)
	}

	return res, nil
}

// CommitAtom writes a ground atom into the write partition with the given
// value, upserting on repeat commits.
func (d *Database) CommitAtom(ctx context.Context, a *model.GroundAtom, value float64) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	p := d.ds.reg.MustByID(a.Predicate)
	if p.Kind != model.Standard {
		return fmt.Errorf("commit atom: predicate %s is not a standard predicate", p.Name)
	}

	argCols := make([]string, p.Arity())
	placeholders := make([]string, p.Arity())
	args := make([]any, 0, p.Arity()+2)
	for i, c := range a.Args {
		argCols[i] = fmt.Sprintf("arg_%d", i)
		placeholders[i] = "?"
		args = append(args, c.Encode())
	}
	args = append(args, int64(d.write), value)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (%s, partition_id, value)
		VALUES (%s, ?, ?)
		ON CONFLICT(%s, partition_id) DO UPDATE SET value = excluded.value
	`,
		querysql.TableName(p.Name),
		strings.Join(argCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(argCols, ", "))

	if _, err := d.ds.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("commit atom %s: %w", a.String(d.ds.reg), err)
	}
	return nil
}

// HasAtom reports whether the atom is persisted in any of the view's
// partitions.
func (d *Database) HasAtom(ctx context.Context, a *model.GroundAtom) (bool, error) {
	if err := d.checkOpen(); err != nil {
		return false, err
	}

	p := d.ds.reg.MustByID(a.Predicate)
	if p.Kind != model.Standard {
		return false, nil
	}

	conds := make([]string, p.Arity())
	args := make([]any, 0, p.Arity()+len(d.reads)+1)
	for i, c := range a.Args {
		conds[i] = fmt.Sprintf("arg_%d = ?", i)
		args = append(args, c.Encode())
	}

	parts := d.partitionIDs()
	partitionList := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(parts)), ", ") + ")"
	for _, id := range parts {
		args = append(args, id)
	}

	stmt := fmt.Sprintf("SELECT 1 FROM %s WHERE %s AND partition_id IN %s LIMIT 1",
		querysql.TableName(p.Name),
		strings.Join(conds, " AND "),
		partitionList)

	var one int
	err := d.ds.db.QueryRowContext(ctx, stmt, args...).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("lookup atom %s: %w", a.String(d.ds.reg), err)
}

// Close releases the view's partition pins. Idempotent.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true
	d.ds.releasePartitions(d)
	return nil
}

func (d *Database) checkOpen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return fmt.Errorf("database is closed")
	}
	return nil
}
