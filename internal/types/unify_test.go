package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyGroundTypesYieldsEmpty(t *testing.T) {
	for _, ty := range []Type{Int64, Double64, NewArray(Int64), NewFunc([]Type{Int64}, Double64)} {
		s, err := Unify(ty, ty)
		require.NoError(t, err, "unify(%s, %s)", ty, ty)
		assert.Empty(t, s)
	}
}

func TestUnifyBindsVariables(t *testing.T) {
	s, err := Unify(NewVar("a"), Int64)
	require.NoError(t, err)
	assert.True(t, s.Apply(NewVar("a")).Equal(Int64))

	s, err = Unify(Double64, NewVar("b"))
	require.NoError(t, err)
	assert.True(t, s.Apply(NewVar("b")).Equal(Double64))

	// Binding a variable to itself is a no-op.
	s, err = Unify(NewVar("a"), NewVar("a"))
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestUnifyGeneric(t *testing.T) {
	s, err := Unify(NewArray(NewVar("e")), NewArray(Int64))
	require.NoError(t, err)
	assert.True(t, s.Apply(NewVar("e")).Equal(Int64))
}

func TestUnifyFunc(t *testing.T) {
	inferred := NewFunc([]Type{NewVar("a"), NewVar("a")}, NewVar("r"))
	spec := NewFunc([]Type{Int64, Int64}, NewVar("r"))
	s, err := Unify(inferred, spec)
	require.NoError(t, err)
	assert.True(t, s.Apply(NewVar("a")).Equal(Int64))

	_, err = Unify(NewFunc([]Type{Int64}, Void), NewFunc([]Type{Int64, Int64}, Void))
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestUnifyMismatch(t *testing.T) {
	_, err := Unify(Int64, Double64)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Given.Equal(Int64))
	assert.True(t, mismatch.Expected.Equal(Double64))
}

func TestOccursCheck(t *testing.T) {
	_, err := Unify(NewVar("a"), NewArray(NewVar("a")))
	var inf *InfiniteTypeError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, "a", inf.Var)
}

func TestComposeAppliesRightToLeft(t *testing.T) {
	s2 := Subst{"a": NewVar("b")}
	s1 := Subst{"b": Int64}
	composed := Compose(s1, s2)

	// apply(compose(s1,s2), T) == apply(s1, apply(s2, T))
	for _, ty := range []Type{
		NewVar("a"),
		NewVar("b"),
		NewArray(NewVar("a")),
		NewFunc([]Type{NewVar("a"), NewVar("b")}, NewVar("c")),
	} {
		want := s1.Apply(s2.Apply(ty))
		got := composed.Apply(ty)
		assert.True(t, got.Equal(want), "compose mismatch on %s: got %s, want %s", ty, got, want)
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	s2 := Subst{"a": NewVar("b")}
	s1 := Subst{"b": Int64}
	composed := Compose(s1, s2)
	once := composed.Apply(NewVar("a"))
	twice := composed.Apply(once)
	assert.True(t, once.Equal(twice))
}

func TestSolve(t *testing.T) {
	// Constraints of a two-argument addition: both arguments share one type,
	// which flows into the return variable.
	ret := NewVar("$return_var")
	cs := []Constraint{
		{Left: NewVar("a"), Right: NewVar("b")},
		{Left: NewVar("b"), Right: ret},
	}
	mgu, err := Solve(cs)
	require.NoError(t, err)
	assert.True(t, mgu.Apply(NewVar("a")).Equal(mgu.Apply(NewVar("b"))))
	assert.True(t, mgu.Apply(NewVar("a")).Equal(mgu.Apply(ret)))
}

func TestSolveConflict(t *testing.T) {
	cs := []Constraint{
		{Left: NewVar("a"), Right: Int64},
		{Left: NewVar("a"), Right: Double64},
	}
	_, err := Solve(cs)
	require.Error(t, err)
}
