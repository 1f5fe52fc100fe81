package atom

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/store"
)

func TestActivate_ClosedPredicateRefusesCandidates(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()
	friend, err := reg.Standard("Friend", model.ArgString, model.ArgString)
	require.NoError(t, err)

	ds, err := store.Open(filepath.Join(t.TempDir(), "closed.db"), reg)
	require.NoError(t, err)
	require.NoError(t, ds.RegisterPredicate(friend))

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)

	ins, err := ds.GetInserter(friend, obs)
	require.NoError(t, err)
	require.NoError(t, ins.Insert(ctx, model.String("alice"), model.String("bob")))

	db, err := ds.GetDatabaseWithClosed(targets, []*model.Predicate{friend}, obs)
	require.NoError(t, err)
	defer func() {
		db.Close()
		ds.Close()
	}()

	fw := NewFramework(NewPersistedManager(db))

	// An observed atom of a closed predicate activates as a no-op.
	observed, err := fw.GetAtom(friend, []model.Constant{model.String("alice"), model.String("bob")})
	require.NoError(t, err)
	require.NoError(t, fw.Activate(ctx, observed, 1.0))
	assert.Equal(t, 0, fw.Pending())

	// A candidate atom of a closed predicate is refused.
	candidate, err := fw.GetAtom(friend, []model.Constant{model.String("bob"), model.String("carol")})
	require.NoError(t, err)
	assert.Error(t, fw.Activate(ctx, candidate, 1.0))
}
