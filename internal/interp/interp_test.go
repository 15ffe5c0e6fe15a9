package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanceMoe/gojiting/internal/ast"
	"github.com/LanceMoe/gojiting/internal/lower"
	"github.com/LanceMoe/gojiting/internal/runtime"
	"github.com/LanceMoe/gojiting/testutil"
)

func run(t *testing.T, fn *ast.Function, args ...runtime.Value) runtime.Value {
	t.Helper()
	coreFn, err := lower.Function(fn)
	require.NoError(t, err)
	val, err := Run(coreFn, args...)
	require.NoError(t, err)
	return val
}

func TestAdd(t *testing.T) {
	got, err := run(t, testutil.AddFn(), runtime.NewInt(1), runtime.NewInt(2)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	f, err := run(t, testutil.AddFn(), runtime.NewFloat(1.0), runtime.NewFloat(2.5)).AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)
}

func TestIsPrime(t *testing.T) {
	got, err := run(t, testutil.IsPrimeFn(), runtime.NewInt(3571)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = run(t, testutil.IsPrimeFn(), runtime.NewInt(3570)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestFib(t *testing.T) {
	got, err := run(t, testutil.FibFn(), runtime.NewInt(10)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(55), got)
}

func TestDot(t *testing.T) {
	a, err := runtime.NewInt64Array([]int64{1, 2, 3})
	require.NoError(t, err)
	b, err := runtime.NewInt64Array([]int64{4, 5, 6})
	require.NoError(t, err)
	got, err := run(t, testutil.DotFn(), runtime.NewArrayValue(a), runtime.NewArrayValue(b)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(32), got)
}

func TestLoopDoubles(t *testing.T) {
	got, err := run(t, testutil.LoopFn(), runtime.NewInt(10)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(20), got)
}

func TestWhile(t *testing.T) {
	got, err := run(t, testutil.CountUpFn(), runtime.NewInt(100)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)
}

func TestBreakLeavesInnermostLoop(t *testing.T) {
	// def f(n):
	//     c = 0
	//     for i in range(n):
	//         if i == 3: break
	//         c += 1
	//     return c
	fn := &ast.Function{
		Type:   ast.FunctionType,
		Name:   "f",
		Params: []ast.Param{{Name: "n"}},
		Body: []ast.Statement{
			{Type: ast.StmtAssign, Target: "c", Value: &ast.Expression{Type: ast.ExprConst, Value: 0}},
			{
				Type:   ast.StmtFor,
				Target: "i",
				Iter: &ast.Expression{Type: ast.ExprCall, Name: "range",
					Args: []ast.Expression{{Type: ast.ExprName, Name: "n"}}},
				Body: []ast.Statement{
					{
						Type: ast.StmtIf,
						Cond: &ast.Expression{
							Type:        ast.ExprCompare,
							Left:        &ast.Expression{Type: ast.ExprName, Name: "i"},
							Ops:         []string{ast.OpEq},
							Comparators: []ast.Expression{{Type: ast.ExprConst, Value: 3}},
						},
						Then: []ast.Statement{{Type: ast.StmtBreak}},
					},
					{Type: ast.StmtAugAssign, Target: "c", Op: ast.OpAdd,
						Value: &ast.Expression{Type: ast.ExprConst, Value: 1}},
				},
			},
			{Type: ast.StmtReturn, Value: &ast.Expression{Type: ast.ExprName, Name: "c"}},
		},
	}
	got, err := run(t, fn, runtime.NewInt(10)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestVoidFunction(t *testing.T) {
	fn := &ast.Function{
		Type: ast.FunctionType,
		Name: "f",
		Body: []ast.Statement{{Type: ast.StmtPass}},
	}
	val := run(t, fn)
	assert.True(t, val.IsVoid())
}
