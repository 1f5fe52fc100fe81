package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
)

// openTestDatabase loads the transitive-likes fixture and opens a database
// over it: Friend(alice,bob), Friend(bob,carol) and Likes(alice,tea),
// Likes(bob,coffee) in the observations partition.
func openTestDatabase(t *testing.T) (*Database, *model.Predicate, *model.Predicate) {
	t.Helper()
	ds, friend, likes := createTestStore(t)

	obs, err := ds.Partition("observations")
	require.NoError(t, err)
	targets, err := ds.Partition("targets")
	require.NoError(t, err)

	insertPairs(t, ds, friend, obs, [][2]string{{"alice", "bob"}, {"bob", "carol"}})
	insertPairs(t, ds, likes, obs, [][2]string{{"alice", "tea"}, {"bob", "coffee"}})

	db, err := ds.GetDatabase(targets, obs)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, friend, likes
}

func joinQuery(t *testing.T, friend, likes *model.Predicate) query.Query {
	t.Helper()
	fa, err := model.NewAtom(friend, model.Variable("X"), model.Variable("Y"))
	require.NoError(t, err)
	la, err := model.NewAtom(likes, model.Variable("X"), model.Variable("Z"))
	require.NoError(t, err)
	return query.New(query.Conjunction{Atoms: []model.Atom{fa, la}})
}

func TestExecuteQuery_Join(t *testing.T) {
	db, friend, likes := openTestDatabase(t)

	res, err := db.ExecuteQuery(context.Background(), joinQuery(t, friend, likes))
	require.NoError(t, err)

	require.Equal(t, 2, res.Len())
	assert.Equal(t, []model.Variable{"X", "Y", "Z"}, res.Variables())

	// Rows ordered by the projected columns: alice before bob.
	x, ok := res.Get(0, "X")
	require.True(t, ok)
	assert.Equal(t, model.String("alice"), x)
	z, ok := res.Get(0, "Z")
	require.True(t, ok)
	assert.Equal(t, model.String("tea"), z)

	x, _ = res.Get(1, "X")
	assert.Equal(t, model.String("bob"), x)
	y, _ := res.Get(1, "Y")
	assert.Equal(t, model.String("carol"), y)
}

func TestExecuteQuery_PartialGrounding(t *testing.T) {
	db, friend, likes := openTestDatabase(t)

	q := joinQuery(t, friend, likes).WithPartial(query.PartialGrounding{"X": model.String("bob")})
	res, err := db.ExecuteQuery(context.Background(), q)
	require.NoError(t, err)

	require.Equal(t, 1, res.Len())
	y, _ := res.Get(0, "Y")
	assert.Equal(t, model.String("carol"), y)
	z, _ := res.Get(0, "Z")
	assert.Equal(t, model.String("coffee"), z)
}

func TestExecuteQuery_DeterministicOrder(t *testing.T) {
	db, friend, likes := openTestDatabase(t)

	first, err := db.ExecuteQuery(context.Background(), joinQuery(t, friend, likes))
	require.NoError(t, err)
	second, err := db.ExecuteQuery(context.Background(), joinQuery(t, friend, likes))
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.Row(i), second.Row(i))
	}
}

func TestExecuteQuery_UnknownVariableLookup(t *testing.T) {
	db, friend, likes := openTestDatabase(t)

	res, err := db.ExecuteQuery(context.Background(), joinQuery(t, friend, likes))
	require.NoError(t, err)
	require.Positive(t, res.Len())

	_, ok := res.Get(0, "Nope")
	assert.False(t, ok)
}

func TestCommitAtom_VisibleToQueries(t *testing.T) {
	db, friend, likes := openTestDatabase(t)
	_ = friend

	a, err := model.NewGroundAtom(likes, []model.Constant{model.String("carol"), model.String("tea")})
	require.NoError(t, err)

	has, err := db.HasAtom(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, db.CommitAtom(context.Background(), a, 1.0))

	has, err = db.HasAtom(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, has)

	// Committing again upserts rather than failing.
	assert.NoError(t, db.CommitAtom(context.Background(), a, 0.5))
}

func TestDatabase_ClosedRefusesOperations(t *testing.T) {
	db, friend, likes := openTestDatabase(t)

	require.NoError(t, db.Close())

	_, err := db.ExecuteQuery(context.Background(), joinQuery(t, friend, likes))
	assert.Error(t, err)
}
