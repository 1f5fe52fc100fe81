package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *Predicate, *Predicate) {
	t.Helper()
	reg := NewRegistry()
	friend, err := reg.Standard("Friend", ArgString, ArgString)
	require.NoError(t, err)
	likes, err := reg.Standard("Likes", ArgString, ArgString)
	require.NoError(t, err)
	return reg, friend, likes
}

func TestConstantEncodeDecode(t *testing.T) {
	uid := NewUniqueID()

	testCases := []struct {
		name string
		kind ArgKind
		c    Constant
	}{
		{"int", ArgInt, Int(-42)},
		{"string", ArgString, String("alice")},
		{"uid", ArgUniqueID, uid},
		{"double", ArgDouble, Double(0.5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodeConstant(tc.kind, tc.c.Encode())
			require.NoError(t, err)
			assert.Equal(t, tc.c, decoded)
		})
	}
}

func TestDecodeConstant_Invalid(t *testing.T) {
	_, err := DecodeConstant(ArgInt, "not-a-number")
	assert.Error(t, err)

	_, err = DecodeConstant(ArgUniqueID, "not-a-uuid")
	assert.Error(t, err)
}

func TestStringConstant_NFCNormalized(t *testing.T) {
	// U+00E9 vs e + U+0301 combining acute
	composed := String("caf\u00e9")
	decomposed := String("cafe\u0301")
	assert.Equal(t, composed, decomposed)
}

func TestRegistry_StableIDs(t *testing.T) {
	reg, friend, likes := newTestRegistry(t)

	assert.NotEqual(t, friend.ID, likes.ID)

	got, ok := reg.ByID(friend.ID)
	require.True(t, ok)
	assert.Same(t, friend, got)

	got, ok = reg.ByName("Likes")
	require.True(t, ok)
	assert.Same(t, likes, got)
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg, friend, _ := newTestRegistry(t)

	// Same signature returns the existing predicate.
	again, err := reg.Standard("Friend", ArgString, ArgString)
	require.NoError(t, err)
	assert.Same(t, friend, again)

	// Different signature is rejected.
	_, err = reg.Standard("Friend", ArgInt, ArgString)
	assert.Error(t, err)

	_, err = reg.Derived("Friend", ArgString, ArgString)
	assert.Error(t, err)
}

func TestNewAtom_ArityAndKindChecks(t *testing.T) {
	_, friend, _ := newTestRegistry(t)

	_, err := NewAtom(friend, Variable("X"))
	assert.Error(t, err, "arity mismatch")

	_, err = NewAtom(friend, Variable("X"), Int(1))
	assert.Error(t, err, "kind mismatch")

	a, err := NewAtom(friend, Variable("X"), String("bob"))
	require.NoError(t, err)
	assert.False(t, a.IsGround())
	assert.Equal(t, []Variable{"X"}, a.Variables())
}

func TestAtom_VariablesFirstOccurrenceOrder(t *testing.T) {
	_, friend, _ := newTestRegistry(t)

	a, err := NewAtom(friend, Variable("Y"), Variable("X"))
	require.NoError(t, err)
	assert.Equal(t, []Variable{"Y", "X"}, a.Variables())

	b, err := NewAtom(friend, Variable("X"), Variable("X"))
	require.NoError(t, err)
	assert.Equal(t, []Variable{"X"}, b.Variables())
}

func TestGroundAtom_IdentityKey(t *testing.T) {
	_, friend, likes := newTestRegistry(t)

	a1, err := NewGroundAtom(friend, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)
	a2, err := NewGroundAtom(friend, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)
	assert.Equal(t, a1.Key(), a2.Key())

	b, err := NewGroundAtom(friend, []Constant{String("bob"), String("alice")})
	require.NoError(t, err)
	assert.NotEqual(t, a1.Key(), b.Key(), "argument order is part of atom identity")

	c, err := NewGroundAtom(likes, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)
	assert.NotEqual(t, a1.Key(), c.Key(), "predicate is part of atom identity")
}

func TestAtomIdentity_KindTagged(t *testing.T) {
	reg := NewRegistry()
	byInt, err := reg.Standard("ByInt", ArgInt)
	require.NoError(t, err)
	byStr, err := reg.Standard("ByStr", ArgString)
	require.NoError(t, err)

	a, err := NewGroundAtom(byInt, []Constant{Int(1)})
	require.NoError(t, err)
	b, err := NewGroundAtom(byStr, []Constant{String("1")})
	require.NoError(t, err)
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestGroundRule_IdentityIsUnorderedMultiset(t *testing.T) {
	reg, friend, likes := newTestRegistry(t)
	_ = reg

	fab, err := NewGroundAtom(friend, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)
	lat, err := NewGroundAtom(likes, []Constant{String("alice"), String("tea")})
	require.NoError(t, err)
	lbt, err := NewGroundAtom(likes, []Constant{String("bob"), String("tea")})
	require.NoError(t, err)

	r1 := NewGroundRule([]*GroundAtom{fab, lat}, []*GroundAtom{lbt})
	r2 := NewGroundRule([]*GroundAtom{lat, fab}, []*GroundAtom{lbt})
	assert.Equal(t, r1.Key(), r2.Key(), "literal order must not affect identity")

	// Polarity is part of identity.
	r3 := NewGroundRule([]*GroundAtom{fab, lat, lbt}, nil)
	assert.NotEqual(t, r1.Key(), r3.Key())
}

func TestGroundRule_CopiesBuffers(t *testing.T) {
	_, friend, _ := newTestRegistry(t)

	fab, err := NewGroundAtom(friend, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)

	buf := []*GroundAtom{fab}
	r := NewGroundRule(buf, nil)

	key := r.Key()
	buf[0] = nil
	assert.Equal(t, key, r.Key())
	require.Len(t, r.Pos, 1)
	assert.Same(t, fab, r.Pos[0])
}

func TestGroundRule_Multiplicity(t *testing.T) {
	_, friend, _ := newTestRegistry(t)

	fab, err := NewGroundAtom(friend, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)

	r := NewGroundRule([]*GroundAtom{fab}, nil)
	assert.Equal(t, 1, r.Multiplicity())
	r.IncreaseGroundings()
	assert.Equal(t, 2, r.Multiplicity())
}

func TestGroundRule_String(t *testing.T) {
	reg, friend, likes := newTestRegistry(t)

	fab, err := NewGroundAtom(friend, []Constant{String("alice"), String("bob")})
	require.NoError(t, err)
	lbt, err := NewGroundAtom(likes, []Constant{String("bob"), String("tea")})
	require.NoError(t, err)

	r := NewGroundRule([]*GroundAtom{fab}, []*GroundAtom{lbt})
	assert.Equal(t, "Friend(alice, bob) & !Likes(bob, tea)", r.String(reg))

	r.IncreaseGroundings()
	assert.Equal(t, "Friend(alice, bob) & !Likes(bob, tea) x2", r.String(reg))
}
