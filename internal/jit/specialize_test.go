package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/infer"
	"github.com/LanceMoe/gojiting/internal/lower"
	"github.com/LanceMoe/gojiting/internal/types"
	"github.com/LanceMoe/gojiting/testutil"
)

func TestSpecializeAdd(t *testing.T) {
	coreFn, err := lower.Function(testutil.AddFn())
	require.NoError(t, err)
	inferred, mgu, err := infer.Function(coreFn, nil)
	require.NoError(t, err)

	_, ret, args, err := specialize(inferred, mgu, []types.Type{types.Int64, types.Int64})
	require.NoError(t, err)
	assert.True(t, ret.Equal(types.Int64))
	require.Len(t, args, 2)
	assert.True(t, args[0].Equal(types.Int64))

	_, ret, _, err = specialize(inferred, mgu, []types.Type{types.Double64, types.Double64})
	require.NoError(t, err)
	assert.True(t, ret.Equal(types.Double64))
}

func TestSpecializeMismatchedArgs(t *testing.T) {
	coreFn, err := lower.Function(testutil.AddFn())
	require.NoError(t, err)
	inferred, mgu, err := infer.Function(coreFn, nil)
	require.NoError(t, err)

	// Both arguments flow into one type variable; mixing fails to unify.
	_, _, _, err = specialize(inferred, mgu, []types.Type{types.Int64, types.Double64})
	var mismatch *types.MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestSpecializeUnderDetermined(t *testing.T) {
	// The return value is a bare polymorphic literal: no argument pins it.
	fn := &core.Fun{
		Name: "f",
		Body: []core.Node{&core.Return{Value: &core.LitInt{N: 1}}},
	}
	inferred, mgu, err := infer.Function(fn, nil)
	require.NoError(t, err)

	_, _, _, err = specialize(inferred, mgu, nil)
	var under *UnderDeterminedError
	require.ErrorAs(t, err, &under)
}

func TestSpecializeArrayElement(t *testing.T) {
	// def first(a): return a[0]
	fn := &core.Fun{
		Name:   "first",
		Params: []*core.Var{{ID: "a"}},
		Body: []core.Node{
			&core.Return{Value: &core.Index{
				Value: &core.Var{ID: "a"},
				Ix:    &core.Const{Value: int64(0)},
			}},
		},
	}
	inferred, mgu, err := infer.Function(fn, nil)
	require.NoError(t, err)
	assert.False(t, types.Determined(inferred))

	_, ret, _, err := specialize(inferred, mgu, []types.Type{types.NewArray(types.Float32)})
	require.NoError(t, err)
	assert.True(t, ret.Equal(types.Float32))
}
