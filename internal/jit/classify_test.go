package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanceMoe/gojiting/internal/runtime"
	"github.com/LanceMoe/gojiting/internal/types"
)

func TestClassifyScalars(t *testing.T) {
	ty, err := classifyValue(7)
	require.NoError(t, err)
	assert.True(t, ty.Equal(types.Int64))

	ty, err = classifyValue(int64(7))
	require.NoError(t, err)
	assert.True(t, ty.Equal(types.Int64))

	ty, err = classifyValue(2.5)
	require.NoError(t, err)
	assert.True(t, ty.Equal(types.Double64))
}

func TestClassifyArrays(t *testing.T) {
	ints, err := runtime.NewInt64Array([]int64{1})
	require.NoError(t, err)
	doubles, err := runtime.NewFloat64Array([]float64{1})
	require.NoError(t, err)
	floats, err := runtime.NewFloat32Array([]float32{1})
	require.NoError(t, err)

	ty, err := classifyValue(ints)
	require.NoError(t, err)
	assert.True(t, ty.Equal(types.NewArray(types.Int64)))

	ty, err = classifyValue(doubles)
	require.NoError(t, err)
	assert.True(t, ty.Equal(types.NewArray(types.Double64)))

	ty, err = classifyValue(floats)
	require.NoError(t, err)
	assert.True(t, ty.Equal(types.NewArray(types.Float32)))
}

func TestClassifyRejectsEverythingElse(t *testing.T) {
	for _, v := range []interface{}{"text", true, []int64{1}, nil, struct{}{}} {
		_, err := classifyValue(v)
		var unsup *UnsupportedRuntimeTypeError
		require.ErrorAs(t, err, &unsup, "value %#v", v)
	}
}
