package hostfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanceMoe/gojiting/internal/types"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	fn := &Func{
		Name:   "scale",
		Params: []types.Type{types.Double64, types.Int64},
		Return: types.Double64,
		Addr:   0xdeadbeef,
	}
	require.NoError(t, r.Register(fn))

	got, ok := r.Lookup("scale")
	require.True(t, ok)
	assert.Equal(t, fn, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegisterRejectsBadSignatures(t *testing.T) {
	r := NewRegistry()

	// Only int and float scalars are registrable.
	err := r.Register(&Func{
		Name:   "first",
		Params: []types.Type{types.NewArray(types.Int64)},
		Return: types.Int64,
		Addr:   1,
	})
	require.Error(t, err)

	err = r.Register(&Func{
		Name:   "nothing",
		Params: nil,
		Return: types.Void,
		Addr:   1,
	})
	require.Error(t, err)

	err = r.Register(&Func{Name: "", Return: types.Int64, Addr: 1})
	require.Error(t, err)

	err = r.Register(&Func{Name: "noaddr", Return: types.Int64})
	require.Error(t, err)
}

func TestNilRegistryLookup(t *testing.T) {
	var r *Registry
	_, ok := r.Lookup("anything")
	assert.False(t, ok)
}

func TestUnregisteredCalleeError(t *testing.T) {
	err := &UnregisteredCalleeError{Name: "foo"}
	assert.Contains(t, err.Error(), "foo")
}
