package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualIsStructural(t *testing.T) {
	assert.True(t, Int64.Equal(&Base{Name: "Int64"}))
	assert.False(t, Int64.Equal(Double64))
	assert.True(t, NewArray(Int64).Equal(NewArray(Int64)))
	assert.False(t, NewArray(Int64).Equal(NewArray(Double64)))
	assert.True(t, NewVar("a").Equal(NewVar("a")))
	assert.False(t, NewVar("a").Equal(NewVar("b")))

	f1 := NewFunc([]Type{Int64, Double64}, Void)
	f2 := NewFunc([]Type{Int64, Double64}, Void)
	f3 := NewFunc([]Type{Int64}, Void)
	assert.True(t, f1.Equal(f2))
	assert.False(t, f1.Equal(f3))
}

func TestFreeVars(t *testing.T) {
	tests := []struct {
		name string
		ty   Type
		want []string
	}{
		{"base", Int64, nil},
		{"var", NewVar("a"), []string{"a"}},
		{"array of var", NewArray(NewVar("e")), []string{"e"}},
		{"func", NewFunc([]Type{NewVar("a"), Int64}, NewVar("r")), []string{"a", "r"}},
		{"ground func", NewFunc([]Type{Int64}, Double64), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeVars(tt.ty)
			want := make(map[string]struct{})
			for _, v := range tt.want {
				want[v] = struct{}{}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FreeVars mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tt.want) == 0, Determined(tt.ty))
		})
	}
}

func TestIsArray(t *testing.T) {
	assert.True(t, IsArray(NewArray(Int64)))
	assert.False(t, IsArray(Int64))
	assert.False(t, IsArray(NewVar("a")))
	require.NotNil(t, ElemType(NewArray(Float32)))
	assert.True(t, ElemType(NewArray(Float32)).Equal(Float32))
	assert.Nil(t, ElemType(Int64))
}

func TestString(t *testing.T) {
	assert.Equal(t, "Int64", Int64.String())
	assert.Equal(t, "Array Int64", NewArray(Int64).String())
	assert.Equal(t, "(Int64, Double64) -> Void", NewFunc([]Type{Int64, Double64}, Void).String())
}
