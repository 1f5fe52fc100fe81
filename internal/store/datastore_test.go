package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/internal/model"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	ds, _, _ := createTestStore(t)

	require.NoError(t, verifyPragma(ds.db, "journal_mode", "wal"))
	require.NoError(t, verifyPragma(ds.db, "foreign_keys", "1"))
}

func TestPartition_NamedAndStable(t *testing.T) {
	ds, _, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	again, err := ds.Partition("observations")
	require.NoError(t, err)
	assert.Equal(t, obs, again)

	targets, err := ds.Partition("targets")
	require.NoError(t, err)
	assert.NotEqual(t, obs, targets)
}

func TestNewPartition_Distinct(t *testing.T) {
	ds, _, _ := createTestStore(t)

	p1, err := ds.NewPartition()
	require.NoError(t, err)
	p2, err := ds.NewPartition()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestGetDatabase_PartitionExclusivity(t *testing.T) {
	ds, _, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)
	other, err := ds.Partition("other")
	require.NoError(t, err)

	db, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)
	defer db.Close()

	// Write partition already written by another database.
	_, err = ds.GetDatabase(targets, other)
	assert.Error(t, err)

	// Write partition is a read partition of another database.
	_, err = ds.GetDatabase(obs, other)
	assert.Error(t, err)

	// Read partition is written by another database.
	_, err = ds.GetDatabase(other, targets)
	assert.Error(t, err)

	// Sharing read partitions is allowed.
	db2, err := ds.GetDatabase(other, obs)
	require.NoError(t, err)
	db2.Close()
}

func TestGetDatabase_ReleasedPartitionsReusable(t *testing.T) {
	ds, _, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)

	db, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)
	assert.NoError(t, db2.Close())
}

func TestGetInserter_RefusesPartitionInUse(t *testing.T) {
	ds, friend, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)

	db, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)
	defer db.Close()

	_, err = ds.GetInserter(friend, obs)
	assert.Error(t, err, "read partition in use")

	_, err = ds.GetInserter(friend, targets)
	assert.Error(t, err, "write partition in use")
}

func TestDeletePartition(t *testing.T) {
	ds, friend, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	insertPairs(t, ds, friend, obs, [][2]string{{"alice", "bob"}, {"bob", "carol"}})

	deleted, err := ds.DeletePartition(obs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestDeletePartition_RefusesInUse(t *testing.T) {
	ds, _, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)

	db, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)
	defer db.Close()

	_, err = ds.DeletePartition(obs)
	assert.Error(t, err)
}

func TestClose_RefusesWithOpenDatabases(t *testing.T) {
	ds, _, _ := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)

	db, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)

	assert.Error(t, ds.Close())

	require.NoError(t, db.Close())
	assert.NoError(t, ds.Close())
}

func TestOpenDataStores_Registry(t *testing.T) {
	ds, _, _ := createTestStore(t)

	found := false
	for _, have := range OpenDataStores() {
		if have == ds {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, ds.Close())
	for _, have := range OpenDataStores() {
		assert.NotSame(t, ds, have)
	}
}

func TestOpen_ReloadsPersistedPredicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	reg := model.NewRegistry()
	friend, err := reg.Standard("Friend", model.ArgString, model.ArgString)
	require.NoError(t, err)

	ds, err := Open(path, reg)
	require.NoError(t, err)
	require.NoError(t, ds.RegisterPredicate(friend))
	require.NoError(t, ds.Close())

	// A fresh registry learns the persisted predicate on open.
	reg2 := model.NewRegistry()
	ds2, err := Open(path, reg2)
	require.NoError(t, err)
	defer ds2.Close()

	p, ok := reg2.ByName("Friend")
	require.True(t, ok)
	assert.Equal(t, model.Standard, p.Kind)
	assert.Equal(t, []model.ArgKind{model.ArgString, model.ArgString}, p.Args)
}
