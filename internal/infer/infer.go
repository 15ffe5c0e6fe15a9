// Package infer walks Core IR generating equality constraints and assigns
// type annotations to expression nodes. Solving the constraints yields the
// function's principal type; specialization against runtime argument types
// happens later, in the jit layer.
package infer

import (
	"fmt"

	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/hostfn"
	"github.com/LanceMoe/gojiting/internal/types"
)

// ReturnVarName is the distinguished type variable standing for the
// function's return type in the inferred scheme.
const ReturnVarName = "$return_var"

// Inferencer generates constraints over one function body.
type Inferencer struct {
	constraints []types.Constraint
	env         map[string]types.Type
	names       nameSupply
	registry    *hostfn.Registry

	fn        *core.Fun
	params    []types.Type
	returnVar *types.Var
	sawReturn bool
}

// New creates an inferencer. The registry may be nil when the function calls
// no host functions.
func New(registry *hostfn.Registry) *Inferencer {
	return &Inferencer{
		env:      make(map[string]types.Type),
		registry: registry,
	}
}

// Function infers the principal type of fn: it generates constraints, solves
// them and returns the inferred function type together with the most general
// unifier. Expression nodes of fn are annotated as a side effect.
func Function(fn *core.Fun, registry *hostfn.Registry) (*types.Func, types.Subst, error) {
	inf := New(registry)
	ty, err := inf.visitFun(fn)
	if err != nil {
		return nil, nil, err
	}
	mgu, err := types.Solve(inf.constraints)
	if err != nil {
		return nil, nil, err
	}
	inferred := mgu.Apply(ty).(*types.Func)
	return inferred, mgu, nil
}

// Constraints returns the constraints generated so far.
func (inf *Inferencer) Constraints() []types.Constraint {
	return inf.constraints
}

func (inf *Inferencer) fresh() *types.Var {
	return types.NewVar(inf.names.next())
}

func (inf *Inferencer) constrain(a, b types.Type) {
	inf.constraints = append(inf.constraints, types.Constraint{Left: a, Right: b})
}

func (inf *Inferencer) visitFun(fn *core.Fun) (*types.Func, error) {
	inf.fn = fn
	inf.params = make([]types.Type, len(fn.Params))
	inf.returnVar = types.NewVar(ReturnVarName)

	for i, p := range fn.Params {
		tv := inf.fresh()
		if pin := p.Type(); pin != nil {
			// Annotated parameters pin their base type.
			inf.constrain(tv, pin)
		}
		p.SetType(tv)
		inf.env[p.ID] = tv
		inf.params[i] = tv
	}

	if err := inf.visitBody(fn.Body); err != nil {
		return nil, err
	}
	if !inf.sawReturn {
		// A function without an explicit return returns void.
		inf.constrain(inf.returnVar, types.Void)
	}
	return types.NewFunc(inf.params, inf.returnVar), nil
}

func (inf *Inferencer) visitBody(body []core.Node) error {
	for _, node := range body {
		if err := inf.visitStmt(node); err != nil {
			return err
		}
	}
	return nil
}

func (inf *Inferencer) visitStmt(node core.Node) error {
	switch node := node.(type) {
	case *core.Assign:
		ty, err := inf.visitExpr(node.Value)
		if err != nil {
			return err
		}
		if prev, ok := inf.env[node.Ref]; ok {
			// Subsequent uses of a binding must keep the same type.
			inf.constrain(ty, prev)
		}
		inf.env[node.Ref] = ty
		node.SetType(ty)
		return nil

	case *core.Return:
		inf.sawReturn = true
		if node.Value == nil {
			inf.constrain(types.Void, inf.returnVar)
			return nil
		}
		ty, err := inf.visitExpr(node.Value)
		if err != nil {
			return err
		}
		inf.constrain(ty, inf.returnVar)
		return nil

	case *core.Loop:
		inf.env[node.Var.ID] = types.Int64
		varTy, err := inf.visitExpr(node.Var)
		if err != nil {
			return err
		}
		beginTy, err := inf.visitExpr(node.Begin)
		if err != nil {
			return err
		}
		endTy, err := inf.visitExpr(node.End)
		if err != nil {
			return err
		}
		stepTy, err := inf.visitExpr(node.Step)
		if err != nil {
			return err
		}
		inf.constrain(varTy, types.Int64)
		inf.constrain(beginTy, types.Int64)
		inf.constrain(endTy, types.Int64)
		inf.constrain(stepTy, types.Int64)
		return inf.visitBody(node.Body)

	case *core.While:
		if _, err := inf.visitExpr(node.Test); err != nil {
			return err
		}
		return inf.visitBody(node.Body)

	case *core.If:
		// The test type is discarded; the dialect has no bool-typing
		// constraint on conditions.
		if _, err := inf.visitExpr(node.Test); err != nil {
			return err
		}
		if err := inf.visitBody(node.Body); err != nil {
			return err
		}
		return inf.visitBody(node.Orelse)

	case *core.Noop, *core.Break:
		return nil

	default:
		if expr, ok := node.(core.Expr); ok {
			_, err := inf.visitExpr(expr)
			return err
		}
		return fmt.Errorf("infer: unexpected statement %T", node)
	}
}

func (inf *Inferencer) visitExpr(node core.Expr) (types.Type, error) {
	switch node := node.(type) {
	case *core.Var:
		ty, ok := inf.env[node.ID]
		if !ok {
			return nil, fmt.Errorf("undefined variable: %s", node.ID)
		}
		node.SetType(ty)
		return ty, nil

	case *core.LitInt:
		tv := inf.fresh()
		node.SetType(tv)
		return tv, nil

	case *core.LitFloat:
		tv := inf.fresh()
		node.SetType(tv)
		return tv, nil

	case *core.LitBool:
		node.SetType(types.Bool)
		return types.Bool, nil

	case *core.Const:
		ty, err := constType(node.Value)
		if err != nil {
			return nil, err
		}
		node.SetType(ty)
		return ty, nil

	case *core.Prim:
		return inf.visitPrim(node)

	case *core.Index:
		elem := inf.fresh()
		valueTy, err := inf.visitExpr(node.Value)
		if err != nil {
			return nil, err
		}
		ixTy, err := inf.visitExpr(node.Ix)
		if err != nil {
			return nil, err
		}
		inf.constrain(valueTy, types.NewArray(elem))
		inf.constrain(ixTy, types.Int64)
		node.SetType(elem)
		return elem, nil

	case *core.Compare:
		leftTy, err := inf.visitExpr(node.Left)
		if err != nil {
			return nil, err
		}
		for _, c := range node.Comparators {
			compTy, err := inf.visitExpr(c)
			if err != nil {
				return nil, err
			}
			inf.constrain(compTy, leftTy)
		}
		node.SetType(leftTy)
		return leftTy, nil

	case *core.CallFunc:
		return inf.visitCall(node)

	default:
		return nil, fmt.Errorf("infer: unexpected expression %T", node)
	}
}

func (inf *Inferencer) visitPrim(node *core.Prim) (types.Type, error) {
	switch {
	case node.Op == core.OpShape:
		// The shape descriptor is an integer vector regardless of the
		// element type of the array it describes.
		ty := types.NewArray(types.Int64)
		node.SetType(ty)
		return ty, nil

	case node.Op == core.OpNot || node.Op == core.OpNeg:
		ty, err := inf.visitExpr(node.Args[0])
		if err != nil {
			return nil, err
		}
		node.SetType(ty)
		return ty, nil

	case core.IsBinaryOp(node.Op):
		tya, err := inf.visitExpr(node.Args[0])
		if err != nil {
			return nil, err
		}
		tyb, err := inf.visitExpr(node.Args[1])
		if err != nil {
			return nil, err
		}
		inf.constrain(tya, tyb)
		node.SetType(tyb)
		return tyb, nil

	default:
		return nil, fmt.Errorf("infer: unknown primitive %q", node.Op)
	}
}

// visitCall types a function call. Self-recursive calls constrain the
// arguments against the parameter variables and yield the return variable;
// any other callee must be registered in the host table, whose annotated
// signature is concrete.
func (inf *Inferencer) visitCall(node *core.CallFunc) (types.Type, error) {
	name := node.Func.ID

	argTys := make([]types.Type, len(node.Args))
	for i, arg := range node.Args {
		ty, err := inf.visitExpr(arg)
		if err != nil {
			return nil, err
		}
		argTys[i] = ty
	}

	if name == inf.fn.Name {
		if len(argTys) != len(inf.params) {
			return nil, &types.MismatchError{
				Given:    types.NewFunc(argTys, inf.returnVar),
				Expected: types.NewFunc(inf.params, inf.returnVar),
			}
		}
		for i, ty := range argTys {
			inf.constrain(ty, inf.params[i])
		}
		node.SetType(inf.returnVar)
		return inf.returnVar, nil
	}

	host, ok := inf.registry.Lookup(name)
	if !ok {
		return nil, &hostfn.UnregisteredCalleeError{Name: name}
	}
	if len(argTys) != len(host.Params) {
		return nil, &types.MismatchError{
			Given:    types.NewFunc(argTys, host.Return),
			Expected: types.NewFunc(host.Params, host.Return),
		}
	}
	for i, ty := range argTys {
		inf.constrain(ty, host.Params[i])
	}
	node.SetType(host.Return)
	return host.Return, nil
}

func constType(value interface{}) (types.Type, error) {
	switch value.(type) {
	case bool:
		return types.Bool, nil
	case int, int64:
		return types.Int64, nil
	case float64:
		return types.Double64, nil
	}
	return nil, fmt.Errorf("infer: unsupported constant %T", value)
}
