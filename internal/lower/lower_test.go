package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanceMoe/gojiting/internal/ast"
	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/types"
)

func name(id string) *ast.Expression {
	return &ast.Expression{Type: ast.ExprName, Name: id}
}

func num(v interface{}) *ast.Expression {
	return &ast.Expression{Type: ast.ExprConst, Value: v}
}

func rangeCall(args ...ast.Expression) *ast.Expression {
	return &ast.Expression{Type: ast.ExprCall, Name: "range", Args: args}
}

func fnWith(body ...ast.Statement) *ast.Function {
	return &ast.Function{Type: ast.FunctionType, Name: "f", Body: body}
}

func TestLowerRangeArities(t *testing.T) {
	tests := []struct {
		name      string
		args      []ast.Expression
		wantBegin int64
		wantStep  int64
	}{
		{"one argument", []ast.Expression{*num(10)}, 0, 1},
		{"two arguments", []ast.Expression{*num(2), *num(10)}, 2, 1},
		{"three arguments", []ast.Expression{*num(2), *num(10), *num(3)}, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := fnWith(ast.Statement{
				Type:   ast.StmtFor,
				Target: "i",
				Iter:   rangeCall(tt.args...),
				Body:   []ast.Statement{{Type: ast.StmtPass}},
			})
			got, err := Function(fn)
			require.NoError(t, err)
			require.Len(t, got.Body, 1)
			loop, ok := got.Body[0].(*core.Loop)
			require.True(t, ok, "expected Loop, got %T", got.Body[0])

			begin, ok := loop.Begin.(*core.Const)
			require.True(t, ok)
			assert.Equal(t, tt.wantBegin, begin.Value)
			step, ok := loop.Step.(*core.Const)
			require.True(t, ok)
			assert.Equal(t, tt.wantStep, step.Value)
			assert.Equal(t, "i", loop.Var.ID)
		})
	}
}

func TestLowerForRejectsNonRange(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type:   ast.StmtFor,
		Target: "i",
		Iter:   &ast.Expression{Type: ast.ExprCall, Name: "items"},
	})
	_, err := Function(fn)
	var unsup *UnsupportedError
	require.ErrorAs(t, err, &unsup)
}

func TestLowerAugAssign(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type:   ast.StmtAugAssign,
		Target: "x",
		Op:     ast.OpAdd,
		Value:  num(1),
	})
	got, err := Function(fn)
	require.NoError(t, err)
	assign, ok := got.Body[0].(*core.Assign)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Ref)
	prim, ok := assign.Value.(*core.Prim)
	require.True(t, ok)
	assert.Equal(t, core.OpAdd, prim.Op)
	v, ok := prim.Args[0].(*core.Var)
	require.True(t, ok)
	assert.Equal(t, "x", v.ID)
}

func TestLowerAugAssignRejectsOtherOps(t *testing.T) {
	for _, op := range []string{ast.OpSub, ast.OpDiv, ast.OpMod} {
		fn := fnWith(ast.Statement{Type: ast.StmtAugAssign, Target: "x", Op: op, Value: num(1)})
		_, err := Function(fn)
		var unsup *UnsupportedError
		require.ErrorAs(t, err, &unsup, "operator %s", op)
	}
}

func TestLowerAttribute(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type:   ast.StmtAssign,
		Target: "n",
		Value:  &ast.Expression{Type: ast.ExprAttribute, Object: name("a"), Attr: "shape"},
	})
	got, err := Function(fn)
	require.NoError(t, err)
	assign := got.Body[0].(*core.Assign)
	prim, ok := assign.Value.(*core.Prim)
	require.True(t, ok)
	assert.Equal(t, core.OpShape, prim.Op)

	fn = fnWith(ast.Statement{
		Type:   ast.StmtAssign,
		Target: "n",
		Value:  &ast.Expression{Type: ast.ExprAttribute, Object: name("a"), Attr: "dtype"},
	})
	_, err = Function(fn)
	var unsup *UnsupportedError
	require.ErrorAs(t, err, &unsup)
}

func TestLowerSubscript(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type:   ast.StmtAssign,
		Target: "x",
		Value:  &ast.Expression{Type: ast.ExprSubscript, Object: name("a"), Index: num(0)},
	})
	got, err := Function(fn)
	require.NoError(t, err)
	_, ok := got.Body[0].(*core.Assign).Value.(*core.Index)
	assert.True(t, ok)

	fn = fnWith(ast.Statement{
		Type:   ast.StmtAssign,
		Target: "x",
		Value:  &ast.Expression{Type: ast.ExprSubscript, Object: name("a"), Index: num(0), Store: true},
	})
	_, err = Function(fn)
	var unsup *UnsupportedError
	require.ErrorAs(t, err, &unsup)
}

func TestLowerCompare(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type: ast.StmtIf,
		Cond: &ast.Expression{
			Type:        ast.ExprCompare,
			Left:        name("x"),
			Ops:         []string{ast.OpLt},
			Comparators: []ast.Expression{*num(3)},
		},
		Then: []ast.Statement{{Type: ast.StmtPass}},
	})
	got, err := Function(fn)
	require.NoError(t, err)
	iff := got.Body[0].(*core.If)
	cmp, ok := iff.Test.(*core.Compare)
	require.True(t, ok)
	assert.Equal(t, []string{core.OpLt}, cmp.Ops)

	// Chains longer than one comparator are outside the subset.
	fn = fnWith(ast.Statement{
		Type: ast.StmtIf,
		Cond: &ast.Expression{
			Type:        ast.ExprCompare,
			Left:        name("x"),
			Ops:         []string{ast.OpLt, ast.OpLt},
			Comparators: []ast.Expression{*num(3), *num(5)},
		},
		Then: []ast.Statement{{Type: ast.StmtPass}},
	})
	_, err = Function(fn)
	var unsup *UnsupportedError
	require.ErrorAs(t, err, &unsup)
}

func TestLowerWhileAndBreak(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type: ast.StmtWhile,
		Cond: &ast.Expression{
			Type:        ast.ExprCompare,
			Left:        name("x"),
			Ops:         []string{ast.OpGt},
			Comparators: []ast.Expression{*num(0)},
		},
		Body: []ast.Statement{{Type: ast.StmtBreak}},
	})
	got, err := Function(fn)
	require.NoError(t, err)
	while, ok := got.Body[0].(*core.While)
	require.True(t, ok)
	_, ok = while.Body[0].(*core.Break)
	assert.True(t, ok)
}

func TestLowerUnary(t *testing.T) {
	fn := fnWith(ast.Statement{
		Type:   ast.StmtAssign,
		Target: "x",
		Value:  &ast.Expression{Type: ast.ExprUnaryOp, Op: ast.OpNeg, Operand: name("y")},
	})
	got, err := Function(fn)
	require.NoError(t, err)
	prim := got.Body[0].(*core.Assign).Value.(*core.Prim)
	assert.Equal(t, core.OpNeg, prim.Op)
}

func TestLowerConstNormalization(t *testing.T) {
	// JSON decodes numbers as float64; integral values fold back to int64.
	got, err := lowerConst(float64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.(*core.Const).Value)

	got, err = lowerConst(2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.(*core.Const).Value)

	got, err = lowerConst(true)
	require.NoError(t, err)
	assert.Equal(t, true, got.(*core.Const).Value)
}

func TestLowerAnnotations(t *testing.T) {
	fn := &ast.Function{
		Type: ast.FunctionType,
		Name: "f",
		Params: []ast.Param{
			{Name: "a", Annotation: ast.AnnotInt},
			{Name: "b", Annotation: ast.AnnotFloat},
			{Name: "c", Annotation: ast.AnnotBool},
			{Name: "d"},
		},
		Body: []ast.Statement{},
	}
	got, err := Function(fn)
	require.NoError(t, err)
	assert.True(t, got.Params[0].Type().Equal(types.Int64))
	assert.True(t, got.Params[1].Type().Equal(types.Double64))
	assert.True(t, got.Params[2].Type().Equal(types.Int64))
	assert.Nil(t, got.Params[3].Type())
}

func TestLowerExprStatementIsNoop(t *testing.T) {
	fn := fnWith(ast.Statement{Type: ast.StmtExpr, Value: num(1)})
	got, err := Function(fn)
	require.NoError(t, err)
	_, ok := got.Body[0].(*core.Noop)
	assert.True(t, ok)
}
