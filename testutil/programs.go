// Package testutil provides the surface-AST sample programs shared by the
// compiler tests: the classic numeric kernels the pipeline is expected to
// handle end to end.
package testutil

import "github.com/LanceMoe/gojiting/internal/ast"

func name(id string) *ast.Expression {
	return &ast.Expression{Type: ast.ExprName, Name: id}
}

func num(v interface{}) *ast.Expression {
	return &ast.Expression{Type: ast.ExprConst, Value: v}
}

func binop(op string, left, right *ast.Expression) *ast.Expression {
	return &ast.Expression{Type: ast.ExprBinOp, Op: op, Left: left, Right: right}
}

func compare(op string, left, right *ast.Expression) *ast.Expression {
	return &ast.Expression{
		Type:        ast.ExprCompare,
		Left:        left,
		Ops:         []string{op},
		Comparators: []ast.Expression{*right},
	}
}

func ret(value *ast.Expression) ast.Statement {
	return ast.Statement{Type: ast.StmtReturn, Value: value}
}

// AddFn is: def add(a, b): return a + b
func AddFn() *ast.Function {
	return &ast.Function{
		Type:   ast.FunctionType,
		Name:   "add",
		Params: []ast.Param{{Name: "a"}, {Name: "b"}},
		Body: []ast.Statement{
			ret(binop(ast.OpAdd, name("a"), name("b"))),
		},
	}
}

// IsPrimeFn is:
//
//	def is_prime(x):
//	    for i in range(2, x):
//	        if x % i == 0:
//	            return 0
//	    return 1
func IsPrimeFn() *ast.Function {
	return &ast.Function{
		Type:   ast.FunctionType,
		Name:   "is_prime",
		Params: []ast.Param{{Name: "x"}},
		Body: []ast.Statement{
			{
				Type:   ast.StmtFor,
				Target: "i",
				Iter:   &ast.Expression{Type: ast.ExprCall, Name: "range", Args: []ast.Expression{*num(2), *name("x")}},
				Body: []ast.Statement{
					{
						Type: ast.StmtIf,
						Cond: compare(ast.OpEq, binop(ast.OpMod, name("x"), name("i")), num(0)),
						Then: []ast.Statement{ret(num(0))},
					},
				},
			},
			ret(num(1)),
		},
	}
}

// FibFn is:
//
//	def fib(x):
//	    if x < 3:
//	        return 1
//	    return fib(x-1) + fib(x-2)
func FibFn() *ast.Function {
	call := func(arg *ast.Expression) *ast.Expression {
		return &ast.Expression{Type: ast.ExprCall, Name: "fib", Args: []ast.Expression{*arg}}
	}
	return &ast.Function{
		Type:   ast.FunctionType,
		Name:   "fib",
		Params: []ast.Param{{Name: "x"}},
		Body: []ast.Statement{
			{
				Type: ast.StmtIf,
				Cond: compare(ast.OpLt, name("x"), num(3)),
				Then: []ast.Statement{ret(num(1))},
			},
			ret(binop(ast.OpAdd,
				call(binop(ast.OpSub, name("x"), num(1))),
				call(binop(ast.OpSub, name("x"), num(2))))),
		},
	}
}

// DotFn is:
//
//	def dot(a, b):
//	    c = 0
//	    n = a.shape[0]
//	    for i in range(n):
//	        c += a[i] * b[i]
//	    return c
func DotFn() *ast.Function {
	index := func(obj, ix *ast.Expression) *ast.Expression {
		return &ast.Expression{Type: ast.ExprSubscript, Object: obj, Index: ix}
	}
	return &ast.Function{
		Type:   ast.FunctionType,
		Name:   "dot",
		Params: []ast.Param{{Name: "a"}, {Name: "b"}},
		Body: []ast.Statement{
			{Type: ast.StmtAssign, Target: "c", Value: num(0)},
			{
				Type:   ast.StmtAssign,
				Target: "n",
				Value: index(
					&ast.Expression{Type: ast.ExprAttribute, Object: name("a"), Attr: "shape"},
					num(0)),
			},
			{
				Type:   ast.StmtFor,
				Target: "i",
				Iter:   &ast.Expression{Type: ast.ExprCall, Name: "range", Args: []ast.Expression{*name("n")}},
				Body: []ast.Statement{
					{
						Type:   ast.StmtAugAssign,
						Target: "c",
						Op:     ast.OpAdd,
						Value:  binop(ast.OpMul, index(name("a"), name("i")), index(name("b"), name("i"))),
					},
				},
			},
			ret(name("c")),
		},
	}
}

// LoopFn is:
//
//	def loop(n):
//	    for _ in range(n):
//	        n += 1
//	    return n
func LoopFn() *ast.Function {
	return &ast.Function{
		Type:   ast.FunctionType,
		Name:   "loop",
		Params: []ast.Param{{Name: "n"}},
		Body: []ast.Statement{
			{
				Type:   ast.StmtFor,
				Target: "_",
				Iter:   &ast.Expression{Type: ast.ExprCall, Name: "range", Args: []ast.Expression{*name("n")}},
				Body: []ast.Statement{
					{Type: ast.StmtAugAssign, Target: "n", Op: ast.OpAdd, Value: num(1)},
				},
			},
			ret(name("n")),
		},
	}
}

// CountUpFn is:
//
//	def count_up(x):
//	    res = 0
//	    while res < x:
//	        res = res + 1
//	    return res
func CountUpFn() *ast.Function {
	return &ast.Function{
		Type:   ast.FunctionType,
		Name:   "count_up",
		Params: []ast.Param{{Name: "x"}},
		Body: []ast.Statement{
			{Type: ast.StmtAssign, Target: "res", Value: num(0)},
			{
				Type: ast.StmtWhile,
				Cond: compare(ast.OpLt, name("res"), name("x")),
				Body: []ast.Statement{
					{Type: ast.StmtAssign, Target: "res", Value: binop(ast.OpAdd, name("res"), num(1))},
				},
			},
			ret(name("res")),
		},
	}
}
