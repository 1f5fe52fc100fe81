package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/querysql"
)

// Partition is an opaque identifier tagging rows in the store.
type Partition int64

// DataStore owns a SQLite database holding one relation per registered
// Standard predicate plus partition and predicate metadata.
//
// Thread-safety: all exported methods are safe for concurrent use. Open
// databases and write partitions are tracked so that partition exclusivity
// can be enforced.
type DataStore struct {
	mu  sync.Mutex
	db  *sql.DB
	reg *model.Registry

	// openDatabases maps each read partition to the databases reading it;
	// writePartitions is the set of write partitions currently pinned.
	openDatabases   map[Partition][]*Database
	writePartitions map[Partition]bool

	// tables tracks which predicates have their relation created.
	tables map[model.PredicateID]bool

	closed bool
}

// Open creates or opens a data store at path. Predicates persisted by an
// earlier run are re-registered into reg; a signature conflict with an
// already-registered predicate is an error. The store is added to the
// process-wide open-store registry.
func Open(path string, reg *model.Registry) (*DataStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open data store: %w", err)
	}

	ds := &DataStore{
		db:              db,
		reg:             reg,
		openDatabases:   make(map[Partition][]*Database),
		writePartitions: make(map[Partition]bool),
		tables:          make(map[model.PredicateID]bool),
	}

	if err := ds.loadPredicates(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open data store: %w", err)
	}

	registerOpenStore(ds)
	slog.Debug("data store opened", "path", path)
	return ds, nil
}

// Registry returns the predicate registry backing this store.
func (ds *DataStore) Registry() *model.Registry { return ds.reg }

// loadPredicates re-registers predicates persisted in the metadata table.
func (ds *DataStore) loadPredicates() error {
	rows, err := ds.db.Query(`SELECT name, kind, args FROM groundwork_predicates`)
	if err != nil {
		return fmt.Errorf("load predicates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, kindName, argsList string
		if err := rows.Scan(&name, &kindName, &argsList); err != nil {
			return fmt.Errorf("load predicates: %w", err)
		}

		kind, err := model.ParsePredicateKind(kindName)
		if err != nil {
			return fmt.Errorf("load predicate %s: %w", name, err)
		}

		var args []model.ArgKind
		for _, n := range strings.Split(argsList, ",") {
			k, err := model.ParseArgKind(n)
			if err != nil {
				return fmt.Errorf("load predicate %s: %w", name, err)
			}
			args = append(args, k)
		}

		var p *model.Predicate
		switch kind {
		case model.Standard:
			p, err = ds.reg.Standard(name, args...)
		case model.Derived:
			p, err = ds.reg.Derived(name, args...)
		}
		if err != nil {
			return fmt.Errorf("load predicate %s: %w", name, err)
		}
		if kind == model.Standard {
			ds.tables[p.ID] = true
		}
	}

	return rows.Err()
}

// RegisterPredicate records a predicate with the store, creating the
// backing relation and its partition index for Standard predicates.
// Registering an already-known predicate is a no-op.
func (ds *DataStore) RegisterPredicate(p *model.Predicate) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return fmt.Errorf("register predicate %s: data store is closed", p.Name)
	}
	if ds.tables[p.ID] {
		return nil
	}

	argNames := make([]string, len(p.Args))
	for i, k := range p.Args {
		argNames[i] = k.String()
	}
	if _, err := ds.db.Exec(`
		INSERT INTO groundwork_predicates (name, kind, args)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, p.Name, p.Kind.String(), strings.Join(argNames, ",")); err != nil {
		return fmt.Errorf("register predicate %s: %w", p.Name, err)
	}

	if p.Kind != model.Standard {
		return nil
	}

	if err := ds.createTable(p); err != nil {
		return err
	}
	ds.tables[p.ID] = true
	slog.Debug("predicate registered", "predicate", p.Name, "arity", p.Arity())
	return nil
}

// createTable builds the predicate relation and its indexes.
func (ds *DataStore) createTable(p *model.Predicate) error {
	table := querysql.TableName(p.Name)

	cols := make([]string, 0, p.Arity()+3)
	argCols := make([]string, 0, p.Arity())
	for i := 0; i < p.Arity(); i++ {
		col := fmt.Sprintf("arg_%d", i)
		argCols = append(argCols, col)
		cols = append(cols, col+" TEXT NOT NULL")
	}
	cols = append(cols,
		"partition_id INTEGER NOT NULL",
		"value REAL NOT NULL DEFAULT 1.0",
		"confidence REAL",
		fmt.Sprintf("UNIQUE(%s, partition_id)", strings.Join(argCols, ", ")),
	)

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
	if _, err := ds.db.Exec(ddl); err != nil {
		return fmt.Errorf("create table for %s: %w", p.Name, err)
	}

	idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_partition ON %s(partition_id)", table, table)
	if _, err := ds.db.Exec(idx); err != nil {
		return fmt.Errorf("index table for %s: %w", p.Name, err)
	}

	return nil
}

// Partition returns the partition registered under name, creating it on
// first use.
func (ds *DataStore) Partition(name string) (Partition, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return 0, fmt.Errorf("partition %q: data store is closed", name)
	}

	if _, err := ds.db.Exec(`
		INSERT INTO groundwork_partitions (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return 0, fmt.Errorf("partition %q: %w", name, err)
	}

	var id int64
	if err := ds.db.QueryRow(`SELECT id FROM groundwork_partitions WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("partition %q: %w", name, err)
	}
	return Partition(id), nil
}

// NewPartition allocates a fresh anonymous partition.
func (ds *DataStore) NewPartition() (Partition, error) {
	return ds.Partition("anon-" + uuid.NewString())
}

// GetDatabase opens a view pinned to the write partition and the given read
// partitions, enforcing partition exclusivity:
//
//  1. no other database may be writing to the write partition
//  2. no other database may be reading from the write partition
//  3. no other database may be writing to any of the read partitions
func (ds *DataStore) GetDatabase(write Partition, read ...Partition) (*Database, error) {
	return ds.GetDatabaseWithClosed(write, nil, read...)
}

// GetDatabaseWithClosed is GetDatabase with a set of predicates marked
// closed-world for the returned view: observed atoms only, no candidates.
func (ds *DataStore) GetDatabaseWithClosed(write Partition, closed []*model.Predicate, read ...Partition) (*Database, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil, fmt.Errorf("get database: data store is closed")
	}
	if ds.writePartitions[write] {
		return nil, fmt.Errorf("get database: write partition %d is already used by another database", int64(write))
	}
	if len(ds.openDatabases[write]) > 0 {
		return nil, fmt.Errorf("get database: write partition %d is a read partition of another database", int64(write))
	}
	for _, p := range read {
		if ds.writePartitions[p] {
			return nil, fmt.Errorf("get database: another database is writing to read partition %d", int64(p))
		}
	}

	closedSet := make(map[model.PredicateID]bool, len(closed))
	for _, p := range closed {
		closedSet[p.ID] = true
	}

	db := &Database{
		ds:     ds,
		write:  write,
		reads:  append([]Partition(nil), read...),
		closed: closedSet,
	}

	for _, p := range read {
		ds.openDatabases[p] = append(ds.openDatabases[p], db)
	}
	ds.writePartitions[write] = true

	return db, nil
}

// releasePartitions drops the partition pins held by db.
func (ds *DataStore) releasePartitions(db *Database) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for _, p := range db.reads {
		dbs := ds.openDatabases[p]
		for i, have := range dbs {
			if have == db {
				ds.openDatabases[p] = append(dbs[:i], dbs[i+1:]...)
				break
			}
		}
		if len(ds.openDatabases[p]) == 0 {
			delete(ds.openDatabases, p)
		}
	}
	delete(ds.writePartitions, db.write)
}

// GetInserter returns an inserter loading rows of p into partition. The
// partition must not be in use by any open database.
func (ds *DataStore) GetInserter(p *model.Predicate, partition Partition) (*Inserter, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil, fmt.Errorf("get inserter: data store is closed")
	}
	if p.Kind != model.Standard {
		return nil, fmt.Errorf("get inserter: predicate %s is not a standard predicate", p.Name)
	}
	if !ds.tables[p.ID] {
		return nil, fmt.Errorf("get inserter: predicate %s is not registered", p.Name)
	}
	if ds.writePartitions[partition] || len(ds.openDatabases[partition]) > 0 {
		return nil, fmt.Errorf("get inserter: partition %d is currently in use", int64(partition))
	}

	return &Inserter{ds: ds, pred: p, partition: partition}, nil
}

// DeletePartition removes every row tagged with the partition from every
// predicate relation and drops the partition's metadata. The partition must
// not be in use. Returns the number of deleted rows.
func (ds *DataStore) DeletePartition(partition Partition) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return 0, fmt.Errorf("delete partition: data store is closed")
	}
	if ds.writePartitions[partition] || len(ds.openDatabases[partition]) > 0 {
		return 0, fmt.Errorf("delete partition: partition %d is in use", int64(partition))
	}

	var deleted int64
	for _, p := range ds.reg.Predicates() {
		if !ds.tables[p.ID] {
			continue
		}
		res, err := ds.db.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE partition_id = ?", querysql.TableName(p.Name)),
			int64(partition))
		if err != nil {
			return deleted, fmt.Errorf("delete partition %d from %s: %w", int64(partition), p.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("delete partition %d: %w", int64(partition), err)
		}
		deleted += n
	}

	if _, err := ds.db.Exec(`DELETE FROM groundwork_partitions WHERE id = ?`, int64(partition)); err != nil {
		return deleted, fmt.Errorf("delete partition %d metadata: %w", int64(partition), err)
	}

	return deleted, nil
}

// Close shuts the store down. Closing fails while databases remain open.
// The store is removed from the process-wide registry.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil
	}
	if len(ds.writePartitions) > 0 || len(ds.openDatabases) > 0 {
		return fmt.Errorf("close data store: databases are still open")
	}

	ds.closed = true
	unregisterOpenStore(ds)
	if err := ds.db.Close(); err != nil {
		return fmt.Errorf("close data store: %w", err)
	}
	return nil
}

// forceClose releases every open database, then closes. Used by Drain.
func (ds *DataStore) forceClose() error {
	ds.mu.Lock()
	var open []*Database
	for _, dbs := range ds.openDatabases {
		open = append(open, dbs...)
	}
	ds.mu.Unlock()

	seen := make(map[*Database]bool)
	for _, db := range open {
		if !seen[db] {
			seen[db] = true
			db.Close()
		}
	}

	// Databases with a write partition but no read partitions are not in
	// openDatabases; drop any leftover write pins.
	ds.mu.Lock()
	for p := range ds.writePartitions {
		delete(ds.writePartitions, p)
	}
	ds.mu.Unlock()

	return ds.Close()
}
