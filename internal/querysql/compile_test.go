package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
)

func testConjunction(t *testing.T) (query.Conjunction, *model.Registry) {
	t.Helper()
	reg := model.NewRegistry()
	friend, err := reg.Standard("Friend", model.ArgString, model.ArgString)
	require.NoError(t, err)
	likes, err := reg.Standard("Likes", model.ArgString, model.ArgString)
	require.NoError(t, err)

	fa, err := model.NewAtom(friend, model.Variable("X"), model.Variable("Y"))
	require.NoError(t, err)
	la, err := model.NewAtom(likes, model.Variable("X"), model.Variable("Z"))
	require.NoError(t, err)

	return query.Conjunction{Atoms: []model.Atom{fa, la}}, reg
}

func TestCompile_JoinOnSharedVariable(t *testing.T) {
	c, reg := testConjunction(t)

	compiled, err := Compile(query.New(c), reg, []int64{1, 2})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.arg_0 AS v0, t0.arg_1 AS v1, t1.arg_1 AS v2 "+
			"FROM p_friend AS t0 "+
			"INNER JOIN p_likes AS t1 ON t1.arg_0 = t0.arg_0 "+
			"WHERE t0.partition_id IN (?, ?) AND t1.partition_id IN (?, ?) "+
			"ORDER BY v0 COLLATE BINARY ASC, v1 COLLATE BINARY ASC, v2 COLLATE BINARY ASC",
		compiled.SQL)
	assert.Equal(t, []any{int64(1), int64(2), int64(1), int64(2)}, compiled.Params)
	assert.Equal(t, []model.Variable{"X", "Y", "Z"}, compiled.Columns)
	assert.Equal(t, []model.ArgKind{model.ArgString, model.ArgString, model.ArgString}, compiled.Kinds)
}

func TestCompile_ConstantSelection(t *testing.T) {
	reg := model.NewRegistry()
	friend, err := reg.Standard("Friend", model.ArgString, model.ArgString)
	require.NoError(t, err)

	fa, err := model.NewAtom(friend, model.String("alice"), model.Variable("Y"))
	require.NoError(t, err)

	compiled, err := Compile(query.New(query.Conjunction{Atoms: []model.Atom{fa}}), reg, []int64{7})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.arg_1 AS v0 "+
			"FROM p_friend AS t0 "+
			"WHERE t0.arg_0 = ? AND t0.partition_id IN (?) "+
			"ORDER BY v0 COLLATE BINARY ASC",
		compiled.SQL)
	assert.Equal(t, []any{"alice", int64(7)}, compiled.Params)
}

func TestCompile_PartialGroundingAddsSelection(t *testing.T) {
	c, reg := testConjunction(t)

	q := query.New(c).WithPartial(query.PartialGrounding{"X": model.String("bob")})
	compiled, err := Compile(q, reg, []int64{1})
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "t0.arg_0 = ?")
	assert.Equal(t, []any{"bob", int64(1), int64(1)}, compiled.Params)
}

func TestCompile_RepeatedVariableInOneAtom(t *testing.T) {
	reg := model.NewRegistry()
	friend, err := reg.Standard("Friend", model.ArgString, model.ArgString)
	require.NoError(t, err)

	fa, err := model.NewAtom(friend, model.Variable("X"), model.Variable("X"))
	require.NoError(t, err)

	compiled, err := Compile(query.New(query.Conjunction{Atoms: []model.Atom{fa}}), reg, []int64{1})
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "t0.arg_1 = t0.arg_0")
	assert.Equal(t, []model.Variable{"X"}, compiled.Columns)
}

func TestCompile_PartialKindMismatch(t *testing.T) {
	c, reg := testConjunction(t)

	q := query.New(c).WithPartial(query.PartialGrounding{"X": model.Int(1)})
	_, err := Compile(q, reg, []int64{1})
	assert.Error(t, err)
}

func TestCompile_NoPartitions(t *testing.T) {
	c, reg := testConjunction(t)
	_, err := Compile(query.New(c), reg, nil)
	assert.Error(t, err)
}
