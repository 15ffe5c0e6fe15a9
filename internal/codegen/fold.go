package codegen

import "github.com/LanceMoe/gojiting/internal/core"

// FoldConstants rewrites constant arithmetic in a freshly lowered tree.
// It runs before inference, so replacement nodes carry no type annotations
// yet. Division is left alone to keep the divide-by-zero behavior of the
// emitted code.
func FoldConstants(fn *core.Fun) *core.Fun {
	body := foldBody(fn.Body)
	return &core.Fun{Name: fn.Name, Params: fn.Params, Body: body}
}

func foldBody(body []core.Node) []core.Node {
	out := make([]core.Node, len(body))
	for i, node := range body {
		out[i] = foldStmt(node)
	}
	return out
}

func foldStmt(node core.Node) core.Node {
	switch node := node.(type) {
	case *core.Assign:
		return &core.Assign{Ref: node.Ref, Value: foldExpr(node.Value)}
	case *core.Return:
		if node.Value == nil {
			return node
		}
		return &core.Return{Value: foldExpr(node.Value)}
	case *core.Loop:
		return &core.Loop{
			Var:   node.Var,
			Begin: foldExpr(node.Begin),
			End:   foldExpr(node.End),
			Step:  foldExpr(node.Step),
			Body:  foldBody(node.Body),
		}
	case *core.While:
		return &core.While{Test: foldExpr(node.Test), Body: foldBody(node.Body)}
	case *core.If:
		return &core.If{
			Test:   foldExpr(node.Test),
			Body:   foldBody(node.Body),
			Orelse: foldBody(node.Orelse),
		}
	default:
		return node
	}
}

func foldExpr(node core.Expr) core.Expr {
	switch node := node.(type) {
	case *core.Prim:
		args := make([]core.Expr, len(node.Args))
		for i, a := range node.Args {
			args[i] = foldExpr(a)
		}
		folded := &core.Prim{Op: node.Op, Args: args}
		if out, ok := foldPrim(folded); ok {
			return out
		}
		return folded
	case *core.Index:
		return &core.Index{Value: foldExpr(node.Value), Ix: foldExpr(node.Ix)}
	case *core.Compare:
		comparators := make([]core.Expr, len(node.Comparators))
		for i, c := range node.Comparators {
			comparators[i] = foldExpr(c)
		}
		return &core.Compare{Left: foldExpr(node.Left), Ops: node.Ops, Comparators: comparators}
	case *core.CallFunc:
		args := make([]core.Expr, len(node.Args))
		for i, a := range node.Args {
			args[i] = foldExpr(a)
		}
		return &core.CallFunc{Func: node.Func, Args: args}
	default:
		return node
	}
}

func foldPrim(node *core.Prim) (core.Expr, bool) {
	switch node.Op {
	case core.OpAdd, core.OpSub, core.OpMult:
		if len(node.Args) != 2 {
			return nil, false
		}
		a, aok := constValue(node.Args[0])
		b, bok := constValue(node.Args[1])
		if !aok || !bok {
			return nil, false
		}
		return foldArith(node.Op, a, b)
	case core.OpNeg:
		v, ok := constValue(node.Args[0])
		if !ok {
			return nil, false
		}
		switch v := v.(type) {
		case int64:
			return &core.Const{Value: -v}, true
		case float64:
			return &core.Const{Value: -v}, true
		}
	}
	return nil, false
}

func constValue(node core.Expr) (interface{}, bool) {
	c, ok := node.(*core.Const)
	if !ok {
		return nil, false
	}
	switch c.Value.(type) {
	case int64, float64:
		return c.Value, true
	}
	return nil, false
}

func foldArith(op string, a, b interface{}) (core.Expr, bool) {
	if x, ok := a.(int64); ok {
		y, ok := b.(int64)
		if !ok {
			return nil, false
		}
		switch op {
		case core.OpAdd:
			return &core.Const{Value: x + y}, true
		case core.OpSub:
			return &core.Const{Value: x - y}, true
		default:
			return &core.Const{Value: x * y}, true
		}
	}
	x, ok := a.(float64)
	if !ok {
		return nil, false
	}
	y, ok := b.(float64)
	if !ok {
		return nil, false
	}
	switch op {
	case core.OpAdd:
		return &core.Const{Value: x + y}, true
	case core.OpSub:
		return &core.Const{Value: x - y}, true
	default:
		return &core.Const{Value: x * y}, true
	}
}
