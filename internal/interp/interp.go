// Package interp evaluates Core IR directly over host values. It is the
// uncompiled reference for the dialect's semantics: tests cross-check native
// results against it, and callers can use it to run a function without
// touching LLVM at all. Host calls are not available here; only
// self-recursion is.
package interp

import (
	"fmt"

	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/runtime"
)

type control int

const (
	ctrlNone control = iota
	ctrlReturn
	ctrlBreak
)

// Interp evaluates one function, including recursive calls to itself.
type Interp struct {
	fn  *core.Fun
	env map[string]runtime.Value
}

// Run evaluates fn with the given arguments.
func Run(fn *core.Fun, args ...runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return runtime.Value{}, fmt.Errorf("function %s takes %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	in := &Interp{fn: fn, env: make(map[string]runtime.Value, len(args))}
	for i, p := range fn.Params {
		in.env[p.ID] = args[i]
	}
	ctrl, val, err := in.execBody(fn.Body)
	if err != nil {
		return runtime.Value{}, err
	}
	if ctrl != ctrlReturn {
		return runtime.NewVoid(), nil
	}
	return val, nil
}

func (in *Interp) execBody(body []core.Node) (control, runtime.Value, error) {
	for _, node := range body {
		ctrl, val, err := in.execStmt(node)
		if err != nil {
			return ctrlNone, runtime.Value{}, err
		}
		if ctrl != ctrlNone {
			return ctrl, val, nil
		}
	}
	return ctrlNone, runtime.Value{}, nil
}

func (in *Interp) execStmt(node core.Node) (control, runtime.Value, error) {
	switch node := node.(type) {
	case *core.Assign:
		val, err := in.eval(node.Value)
		if err != nil {
			return ctrlNone, runtime.Value{}, err
		}
		in.env[node.Ref] = val
		return ctrlNone, runtime.Value{}, nil

	case *core.Return:
		if node.Value == nil {
			return ctrlReturn, runtime.NewVoid(), nil
		}
		val, err := in.eval(node.Value)
		if err != nil {
			return ctrlNone, runtime.Value{}, err
		}
		return ctrlReturn, val, nil

	case *core.Loop:
		return in.execLoop(node)

	case *core.While:
		for {
			test, err := in.eval(node.Test)
			if err != nil {
				return ctrlNone, runtime.Value{}, err
			}
			ok, err := test.AsBool()
			if err != nil {
				return ctrlNone, runtime.Value{}, err
			}
			if !ok {
				return ctrlNone, runtime.Value{}, nil
			}
			ctrl, val, err := in.execBody(node.Body)
			if err != nil {
				return ctrlNone, runtime.Value{}, err
			}
			if ctrl == ctrlReturn {
				return ctrl, val, nil
			}
			if ctrl == ctrlBreak {
				return ctrlNone, runtime.Value{}, nil
			}
		}

	case *core.If:
		test, err := in.eval(node.Test)
		if err != nil {
			return ctrlNone, runtime.Value{}, err
		}
		ok, err := test.AsBool()
		if err != nil {
			return ctrlNone, runtime.Value{}, err
		}
		if ok {
			return in.execBody(node.Body)
		}
		return in.execBody(node.Orelse)

	case *core.Break:
		return ctrlBreak, runtime.Value{}, nil

	case *core.Noop:
		return ctrlNone, runtime.Value{}, nil

	default:
		if expr, ok := node.(core.Expr); ok {
			_, err := in.eval(expr)
			return ctrlNone, runtime.Value{}, err
		}
		return ctrlNone, runtime.Value{}, fmt.Errorf("interp: unexpected statement %T", node)
	}
}

func (in *Interp) execLoop(node *core.Loop) (control, runtime.Value, error) {
	begin, err := in.evalInt(node.Begin)
	if err != nil {
		return ctrlNone, runtime.Value{}, err
	}
	end, err := in.evalInt(node.End)
	if err != nil {
		return ctrlNone, runtime.Value{}, err
	}
	step, err := in.evalInt(node.Step)
	if err != nil {
		return ctrlNone, runtime.Value{}, err
	}
	for i := begin; i < end; i += step {
		in.env[node.Var.ID] = runtime.NewInt(i)
		ctrl, val, err := in.execBody(node.Body)
		if err != nil {
			return ctrlNone, runtime.Value{}, err
		}
		if ctrl == ctrlReturn {
			return ctrl, val, nil
		}
		if ctrl == ctrlBreak {
			break
		}
	}
	return ctrlNone, runtime.Value{}, nil
}

func (in *Interp) evalInt(node core.Expr) (int64, error) {
	val, err := in.eval(node)
	if err != nil {
		return 0, err
	}
	return val.AsInt()
}

func (in *Interp) eval(node core.Expr) (runtime.Value, error) {
	switch node := node.(type) {
	case *core.Var:
		val, ok := in.env[node.ID]
		if !ok {
			return runtime.Value{}, fmt.Errorf("undefined variable: %s", node.ID)
		}
		return val, nil

	case *core.LitInt:
		return runtime.NewInt(node.N), nil

	case *core.LitFloat:
		return runtime.NewFloat(node.N), nil

	case *core.LitBool:
		return runtime.NewBool(node.N), nil

	case *core.Const:
		switch v := node.Value.(type) {
		case bool:
			return runtime.NewBool(v), nil
		case int:
			return runtime.NewInt(int64(v)), nil
		case int64:
			return runtime.NewInt(v), nil
		case float64:
			return runtime.NewFloat(v), nil
		default:
			return runtime.Value{}, fmt.Errorf("interp: unsupported constant %T", node.Value)
		}

	case *core.Prim:
		return in.evalPrim(node)

	case *core.Index:
		val, err := in.eval(node.Value)
		if err != nil {
			return runtime.Value{}, err
		}
		arr, err := val.AsArray()
		if err != nil {
			return runtime.Value{}, err
		}
		ix, err := in.evalInt(node.Ix)
		if err != nil {
			return runtime.Value{}, err
		}
		return arr.Index(ix)

	case *core.Compare:
		left, err := in.eval(node.Left)
		if err != nil {
			return runtime.Value{}, err
		}
		right, err := in.eval(node.Comparators[0])
		if err != nil {
			return runtime.Value{}, err
		}
		return compare(node.Ops[0], left, right)

	case *core.CallFunc:
		if node.Func.ID != in.fn.Name {
			return runtime.Value{}, fmt.Errorf("interp: cannot call host function %s", node.Func.ID)
		}
		args := make([]runtime.Value, len(node.Args))
		for i, a := range node.Args {
			v, err := in.eval(a)
			if err != nil {
				return runtime.Value{}, err
			}
			args[i] = v
		}
		return Run(in.fn, args...)

	default:
		return runtime.Value{}, fmt.Errorf("interp: unexpected expression %T", node)
	}
}

func (in *Interp) evalPrim(node *core.Prim) (runtime.Value, error) {
	if node.Op == core.OpShape {
		val, err := in.eval(node.Args[0])
		if err != nil {
			return runtime.Value{}, err
		}
		arr, err := val.AsArray()
		if err != nil {
			return runtime.Value{}, err
		}
		shape := arr.Shape()
		dims := make([]int64, len(shape))
		for i, d := range shape {
			dims[i] = int64(d)
		}
		out, err := runtime.NewInt64Array(dims)
		if err != nil {
			return runtime.Value{}, err
		}
		return runtime.NewArrayValue(out), nil
	}

	if node.Op == core.OpNeg || node.Op == core.OpNot {
		a, err := in.eval(node.Args[0])
		if err != nil {
			return runtime.Value{}, err
		}
		switch node.Op {
		case core.OpNeg:
			if a.Type == runtime.ValueTypeFloat {
				f, _ := a.AsFloat()
				return runtime.NewFloat(-f), nil
			}
			n, err := a.AsInt()
			if err != nil {
				return runtime.Value{}, err
			}
			return runtime.NewInt(-n), nil
		default:
			n, err := a.AsInt()
			if err != nil {
				return runtime.Value{}, err
			}
			return runtime.NewInt(^n), nil
		}
	}

	if !core.IsBinaryOp(node.Op) {
		return runtime.Value{}, fmt.Errorf("interp: unknown primitive %q", node.Op)
	}
	a, err := in.eval(node.Args[0])
	if err != nil {
		return runtime.Value{}, err
	}
	b, err := in.eval(node.Args[1])
	if err != nil {
		return runtime.Value{}, err
	}
	if core.IsCompareOp(node.Op) {
		return compare(node.Op, a, b)
	}
	return arith(node.Op, a, b)
}

func arith(op string, a, b runtime.Value) (runtime.Value, error) {
	if a.Type == runtime.ValueTypeFloat || b.Type == runtime.ValueTypeFloat {
		x, err := a.AsFloat()
		if err != nil {
			return runtime.Value{}, err
		}
		y, err := b.AsFloat()
		if err != nil {
			return runtime.Value{}, err
		}
		switch op {
		case core.OpAdd:
			return runtime.NewFloat(x + y), nil
		case core.OpSub:
			return runtime.NewFloat(x - y), nil
		case core.OpMult:
			return runtime.NewFloat(x * y), nil
		case core.OpDiv:
			return runtime.NewFloat(x / y), nil
		}
		return runtime.Value{}, fmt.Errorf("interp: %q is not defined on floats", op)
	}

	x, err := a.AsInt()
	if err != nil {
		return runtime.Value{}, err
	}
	y, err := b.AsInt()
	if err != nil {
		return runtime.Value{}, err
	}
	switch op {
	case core.OpAdd:
		return runtime.NewInt(x + y), nil
	case core.OpSub:
		return runtime.NewInt(x - y), nil
	case core.OpMult:
		return runtime.NewInt(x * y), nil
	case core.OpDiv:
		if y == 0 {
			return runtime.Value{}, fmt.Errorf("interp: integer division by zero")
		}
		return runtime.NewInt(x / y), nil
	case core.OpMod:
		if y == 0 {
			return runtime.Value{}, fmt.Errorf("interp: integer modulo by zero")
		}
		return runtime.NewInt(x % y), nil
	case core.OpAnd:
		return runtime.NewInt(x & y), nil
	case core.OpOr:
		return runtime.NewInt(x | y), nil
	}
	return runtime.Value{}, fmt.Errorf("interp: %q is not implemented", op)
}

func compare(op string, a, b runtime.Value) (runtime.Value, error) {
	if a.Type == runtime.ValueTypeFloat || b.Type == runtime.ValueTypeFloat {
		x, err := a.AsFloat()
		if err != nil {
			return runtime.Value{}, err
		}
		y, err := b.AsFloat()
		if err != nil {
			return runtime.Value{}, err
		}
		return runtime.NewBool(compareFloat(op, x, y)), nil
	}
	x, err := a.AsInt()
	if err != nil {
		return runtime.Value{}, err
	}
	y, err := b.AsInt()
	if err != nil {
		return runtime.Value{}, err
	}
	return runtime.NewBool(compareInt(op, x, y)), nil
}

func compareInt(op string, x, y int64) bool {
	switch op {
	case core.OpEq:
		return x == y
	case core.OpNe:
		return x != y
	case core.OpLt:
		return x < y
	case core.OpLe:
		return x <= y
	case core.OpGt:
		return x > y
	}
	return x >= y
}

func compareFloat(op string, x, y float64) bool {
	switch op {
	case core.OpEq:
		return x == y
	case core.OpNe:
		return x != y
	case core.OpLt:
		return x < y
	case core.OpLe:
		return x <= y
	case core.OpGt:
		return x > y
	}
	return x >= y
}
