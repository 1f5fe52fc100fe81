package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/internal/model"
)

// createTestStore opens a fresh data store with Friend/Likes registered.
func createTestStore(t *testing.T) (*DataStore, *model.Predicate, *model.Predicate) {
	t.Helper()
	reg := model.NewRegistry()
	friend, err := reg.Standard("Friend", model.ArgString, model.ArgString)
	require.NoError(t, err)
	likes, err := reg.Standard("Likes", model.ArgString, model.ArgString)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.db")
	ds, err := Open(path, reg)
	require.NoError(t, err)
	t.Cleanup(func() { ds.forceClose() })

	require.NoError(t, ds.RegisterPredicate(friend))
	require.NoError(t, ds.RegisterPredicate(likes))
	return ds, friend, likes
}

// insertPairs loads string pairs of pred into the partition.
func insertPairs(t *testing.T, ds *DataStore, pred *model.Predicate, part Partition, pairs [][2]string) {
	t.Helper()
	ins, err := ds.GetInserter(pred, part)
	require.NoError(t, err)
	for _, pair := range pairs {
		require.NoError(t, ins.Insert(context.Background(), model.String(pair[0]), model.String(pair[1])))
	}
}
