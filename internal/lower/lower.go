// Package lower translates the surface AST into Core IR. It is the only
// layer that knows surface vocabulary; everything past it operates on Core
// IR alone. Constructs outside the compilable subset fail with
// UnsupportedError.
package lower

import (
	"fmt"

	"github.com/LanceMoe/gojiting/internal/ast"
	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/types"
)

// UnsupportedError marks a surface construct outside the accepted subset.
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

func unsupported(format string, args ...interface{}) error {
	return &UnsupportedError{Construct: fmt.Sprintf(format, args...)}
}

// binOps maps surface binary operators to primitive tags.
var binOps = map[string]string{
	ast.OpAdd: core.OpAdd,
	ast.OpSub: core.OpSub,
	ast.OpMul: core.OpMult,
	ast.OpDiv: core.OpDiv,
	ast.OpPow: core.OpPow,
	ast.OpMod: core.OpMod,
	ast.OpAnd: core.OpAnd,
	ast.OpOr:  core.OpOr,
	ast.OpEq:  core.OpEq,
	ast.OpNe:  core.OpNe,
	ast.OpLt:  core.OpLt,
	ast.OpLe:  core.OpLe,
	ast.OpGt:  core.OpGt,
	ast.OpGe:  core.OpGe,
}

// annotations maps recognized parameter annotations to pinned base types.
// The dialect treats bool as integer-wide, so a bool annotation pins Int64.
var annotations = map[string]types.Type{
	ast.AnnotInt:   types.Int64,
	ast.AnnotFloat: types.Double64,
	ast.AnnotBool:  types.Int64,
}

// Function lowers a surface function definition to a Core IR Fun node.
func Function(fn *ast.Function) (*core.Fun, error) {
	params := make([]*core.Var, len(fn.Params))
	for i, p := range fn.Params {
		v := &core.Var{ID: p.Name}
		if p.Annotation != "" {
			pin, ok := annotations[p.Annotation]
			if !ok {
				return nil, unsupported("parameter annotation %q", p.Annotation)
			}
			v.SetType(pin)
		}
		params[i] = v
	}
	body, err := lowerBody(fn.Body)
	if err != nil {
		return nil, err
	}
	return &core.Fun{Name: fn.Name, Params: params, Body: body}, nil
}

func lowerBody(stmts []ast.Statement) ([]core.Node, error) {
	out := make([]core.Node, 0, len(stmts))
	for i := range stmts {
		node, err := lowerStatement(&stmts[i])
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func lowerStatement(stmt *ast.Statement) (core.Node, error) {
	switch stmt.Type {
	case ast.StmtAssign:
		value, err := lowerExpression(stmt.Value)
		if err != nil {
			return nil, err
		}
		return &core.Assign{Ref: stmt.Target, Value: value}, nil

	case ast.StmtAugAssign:
		value, err := lowerExpression(stmt.Value)
		if err != nil {
			return nil, err
		}
		var tag string
		switch stmt.Op {
		case ast.OpAdd:
			tag = core.OpAdd
		case ast.OpMul:
			tag = core.OpMult
		default:
			return nil, unsupported("augmented assignment operator %q", stmt.Op)
		}
		prim := &core.Prim{Op: tag, Args: []core.Expr{&core.Var{ID: stmt.Target}, value}}
		return &core.Assign{Ref: stmt.Target, Value: prim}, nil

	case ast.StmtFor:
		return lowerFor(stmt)

	case ast.StmtWhile:
		test, err := lowerExpression(stmt.Cond)
		if err != nil {
			return nil, err
		}
		body, err := lowerBody(stmt.Body)
		if err != nil {
			return nil, err
		}
		return &core.While{Test: test, Body: body}, nil

	case ast.StmtIf:
		test, err := lowerExpression(stmt.Cond)
		if err != nil {
			return nil, err
		}
		body, err := lowerBody(stmt.Then)
		if err != nil {
			return nil, err
		}
		orelse, err := lowerBody(stmt.Else)
		if err != nil {
			return nil, err
		}
		return &core.If{Test: test, Body: body, Orelse: orelse}, nil

	case ast.StmtReturn:
		if stmt.Value == nil {
			return &core.Return{}, nil
		}
		value, err := lowerExpression(stmt.Value)
		if err != nil {
			return nil, err
		}
		return &core.Return{Value: value}, nil

	case ast.StmtBreak:
		return &core.Break{}, nil

	case ast.StmtPass:
		return &core.Noop{}, nil

	case ast.StmtExpr:
		// Expression statements have no observable effect in this dialect;
		// they lower to a no-op rather than an error.
		return &core.Noop{}, nil

	default:
		return nil, unsupported("statement %q", stmt.Type)
	}
}

// lowerFor recognizes counted loops of the form `for target in range(...)`.
// Any other iterable is outside the subset.
func lowerFor(stmt *ast.Statement) (core.Node, error) {
	iter := stmt.Iter
	if iter == nil {
		return nil, unsupported("loop without an iterable")
	}
	if iter.Type != ast.ExprCall || (iter.Name != "range" && iter.Name != "xrange") {
		return nil, unsupported("loop over %q; loops must be over range", iter.Name)
	}

	args := make([]core.Expr, len(iter.Args))
	for i := range iter.Args {
		a, err := lowerExpression(&iter.Args[i])
		if err != nil {
			return nil, err
		}
		args[i] = a
	}

	begin := core.Expr(&core.Const{Value: int64(0)})
	step := core.Expr(&core.Const{Value: int64(1)})
	var end core.Expr
	switch len(args) {
	case 1:
		end = args[0]
	case 2:
		begin, end = args[0], args[1]
	case 3:
		begin, end, step = args[0], args[1], args[2]
	default:
		return nil, unsupported("range with %d arguments", len(args))
	}

	body, err := lowerBody(stmt.Body)
	if err != nil {
		return nil, err
	}
	return &core.Loop{
		Var:   &core.Var{ID: stmt.Target},
		Begin: begin,
		End:   end,
		Step:  step,
		Body:  body,
	}, nil
}

func lowerExpression(expr *ast.Expression) (core.Expr, error) {
	if expr == nil {
		return nil, unsupported("missing expression")
	}
	switch expr.Type {
	case ast.ExprConst:
		return lowerConst(expr.Value)

	case ast.ExprName:
		return &core.Var{ID: expr.Name}, nil

	case ast.ExprBinOp, ast.ExprBoolOp:
		tag, ok := binOps[expr.Op]
		if !ok {
			return nil, unsupported("binary operator %q", expr.Op)
		}
		left, err := lowerExpression(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerExpression(expr.Right)
		if err != nil {
			return nil, err
		}
		return &core.Prim{Op: tag, Args: []core.Expr{left, right}}, nil

	case ast.ExprUnaryOp:
		operand, err := lowerExpression(expr.Operand)
		if err != nil {
			return nil, err
		}
		switch expr.Op {
		case ast.OpNeg:
			return &core.Prim{Op: core.OpNeg, Args: []core.Expr{operand}}, nil
		case ast.OpNot:
			return &core.Prim{Op: core.OpNot, Args: []core.Expr{operand}}, nil
		default:
			return nil, unsupported("unary operator %q", expr.Op)
		}

	case ast.ExprCompare:
		if len(expr.Ops) != 1 || len(expr.Comparators) != 1 {
			return nil, unsupported("comparison chain of length %d", len(expr.Ops))
		}
		tag, ok := binOps[expr.Ops[0]]
		if !ok || !core.IsCompareOp(tag) {
			return nil, unsupported("comparison operator %q", expr.Ops[0])
		}
		left, err := lowerExpression(expr.Left)
		if err != nil {
			return nil, err
		}
		comparator, err := lowerExpression(&expr.Comparators[0])
		if err != nil {
			return nil, err
		}
		return &core.Compare{
			Left:        left,
			Ops:         []string{tag},
			Comparators: []core.Expr{comparator},
		}, nil

	case ast.ExprCall:
		args := make([]core.Expr, len(expr.Args))
		for i := range expr.Args {
			a, err := lowerExpression(&expr.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return &core.CallFunc{Func: &core.Var{ID: expr.Name}, Args: args}, nil

	case ast.ExprAttribute:
		if expr.Attr != "shape" {
			return nil, unsupported("attribute %q", expr.Attr)
		}
		object, err := lowerExpression(expr.Object)
		if err != nil {
			return nil, err
		}
		return &core.Prim{Op: core.OpShape, Args: []core.Expr{object}}, nil

	case ast.ExprSubscript:
		if expr.Store {
			return nil, unsupported("subscript in store context")
		}
		object, err := lowerExpression(expr.Object)
		if err != nil {
			return nil, err
		}
		ix, err := lowerExpression(expr.Index)
		if err != nil {
			return nil, err
		}
		return &core.Index{Value: object, Ix: ix}, nil

	default:
		return nil, unsupported("expression %q", expr.Type)
	}
}

// lowerConst normalizes a surface constant value. JSON decodes every number
// as float64, so integral floats are folded back to int64 the way the host
// frontend would have produced them.
func lowerConst(value interface{}) (core.Expr, error) {
	switch v := value.(type) {
	case bool:
		return &core.Const{Value: v}, nil
	case int:
		return &core.Const{Value: int64(v)}, nil
	case int64:
		return &core.Const{Value: v}, nil
	case float64:
		if float64(int64(v)) == v {
			return &core.Const{Value: int64(v)}, nil
		}
		return &core.Const{Value: v}, nil
	default:
		return nil, unsupported("constant of type %T", value)
	}
}
