package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/internal/model"
)

const transitiveModel = `
predicates: {
	Friend: {args: ["string", "string"], closed: true}
	Likes:  {args: ["string", "string"]}
}
rules: [
	{
		name:   "friends-share-likes"
		weight: 5.0
		implies: {
			body: {and: [
				{atom: {pred: "Friend", args: ["X", "Y"]}},
				{atom: {pred: "Likes", args: ["X", "Z"]}},
			]}
			head: {atom: {pred: "Likes", args: ["Y", "Z"]}}
		}
	},
]
`

func compileString(t *testing.T, src string) (*Model, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileModel(v)
}

func TestCompileModel_Transitive(t *testing.T) {
	m, err := compileString(t, transitiveModel)
	require.NoError(t, err)

	friend, ok := m.Registry.ByName("Friend")
	require.True(t, ok)
	assert.Equal(t, model.Standard, friend.Kind)
	assert.Equal(t, 2, friend.Arity())

	require.Len(t, m.Closed, 1)
	assert.Same(t, friend, m.Closed[0])

	require.Len(t, m.Rules, 1)
	assert.Equal(t, "friends-share-likes", m.Rules[0].Name)
	assert.Equal(t, 5.0, m.Rules[0].Weight)
	assert.False(t, m.Rules[0].Hard)

	kernels, err := m.Kernels()
	require.NoError(t, err)
	require.Len(t, kernels, 1)
	assert.Equal(t, "Friend(X, Y) & Likes(X, Z) & !Likes(Y, Z)", kernels[0].Clause().String())
}

func TestCompileModel_HardConstraint(t *testing.T) {
	src := `
predicates: {
	Spam:      {args: ["string"]}
	Important: {args: ["string"]}
}
rules: [
	{
		name: "no-important-spam"
		hard: true
		or: [
			{not: {atom: {pred: "Spam", args: ["X"]}}},
			{not: {atom: {pred: "Important", args: ["X"]}}},
		]
	},
]
`
	m, err := compileString(t, src)
	require.NoError(t, err)
	require.Len(t, m.Rules, 1)
	assert.True(t, m.Rules[0].Hard)

	kernels, err := m.Kernels()
	require.NoError(t, err)
	assert.Equal(t, "Spam(X) & Important(X)", kernels[0].Clause().String())
}

func TestCompileModel_ConstantArgs(t *testing.T) {
	src := `
predicates: {
	Rated: {args: ["string", "int"]}
	Liked: {args: ["string"]}
}
rules: [
	{
		name:   "five-stars-liked"
		weight: 1.0
		implies: {
			body: {atom: {pred: "Rated", args: ["X", "5"]}}
			head: {atom: {pred: "Liked", args: ["X"]}}
		}
	},
]
`
	m, err := compileString(t, src)
	require.NoError(t, err)

	kernels, err := m.Kernels()
	require.NoError(t, err)
	assert.Equal(t, "Rated(X, 5) & !Liked(X)", kernels[0].Clause().String())
}

func TestCompileModel_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"missing predicates", `rules: []`},
		{"unknown kind", `predicates: {P: {args: ["float"]}}`},
		{"unknown predicate in rule", `
predicates: {P: {args: ["string"]}}
rules: [{name: "r", weight: 1.0, atom: {pred: "Q", args: ["X"]}}]
`},
		{"rule without weight or hard", `
predicates: {P: {args: ["string"]}}
rules: [{name: "r", atom: {pred: "P", args: ["X"]}}]
`},
		{"weighted and hard", `
predicates: {P: {args: ["string"]}}
rules: [{name: "r", weight: 1.0, hard: true, atom: {pred: "P", args: ["X"]}}]
`},
		{"two connectives", `
predicates: {P: {args: ["string"]}}
rules: [{name: "r", weight: 1.0, atom: {pred: "P", args: ["X"]}, not: {atom: {pred: "P", args: ["X"]}}}]
`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileString(t, tc.src)
			assert.Error(t, err)
		})
	}
}

func TestParseTerm(t *testing.T) {
	v, err := ParseTerm("X", model.ArgString)
	require.NoError(t, err)
	assert.Equal(t, model.Variable("X"), v)

	c, err := ParseTerm("alice", model.ArgString)
	require.NoError(t, err)
	assert.Equal(t, model.String("alice"), c)

	n, err := ParseTerm("42", model.ArgInt)
	require.NoError(t, err)
	assert.Equal(t, model.Int(42), n)

	_, err = ParseTerm("nope", model.ArgInt)
	assert.Error(t, err)
}
