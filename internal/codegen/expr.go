package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/LanceMoe/gojiting/internal/core"
)

func (g *Codegen) genExpr(node core.Expr) (value.Value, error) {
	switch node := node.(type) {
	case *core.Const:
		return g.genConst(node.Value)
	case *core.LitInt:
		return g.genLitInt(node)
	case *core.LitFloat:
		return g.genLitFloat(node)
	case *core.LitBool:
		if node.N {
			return constant.NewInt(lltypes.I64, 1), nil
		}
		return constant.NewInt(lltypes.I64, 0), nil
	case *core.Var:
		return g.genVar(node)
	case *core.Prim:
		return g.genPrim(node)
	case *core.Index:
		return g.genIndex(node)
	case *core.Compare:
		return g.genCompare(node)
	case *core.CallFunc:
		return g.genCall(node)
	default:
		return nil, failf("unexpected expression %T", node)
	}
}

// genConst emits a constant by host value class. Booleans are integer-wide.
func (g *Codegen) genConst(v interface{}) (value.Value, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return constant.NewInt(lltypes.I64, 1), nil
		}
		return constant.NewInt(lltypes.I64, 0), nil
	case int:
		return constant.NewInt(lltypes.I64, int64(v)), nil
	case int64:
		return constant.NewInt(lltypes.I64, v), nil
	case float64:
		return constant.NewFloat(lltypes.Double, v), nil
	default:
		return nil, failf("unsupported constant %T", v)
	}
}

// genLitInt emits an integer literal at whatever numeric type the literal
// was monomorphized to.
func (g *Codegen) genLitInt(node *core.LitInt) (value.Value, error) {
	ty, err := g.specialize(node)
	if err != nil {
		return nil, err
	}
	ll, err := g.lltypes.convert(ty)
	if err != nil {
		return nil, err
	}
	switch ll := ll.(type) {
	case *lltypes.IntType:
		return constant.NewInt(ll, node.N), nil
	case *lltypes.FloatType:
		return constant.NewFloat(ll, float64(node.N)), nil
	}
	return nil, failf("integer literal specialized to %s", ty)
}

func (g *Codegen) genLitFloat(node *core.LitFloat) (value.Value, error) {
	ty, err := g.specialize(node)
	if err != nil {
		return nil, err
	}
	ll, err := g.lltypes.convert(ty)
	if err != nil {
		return nil, err
	}
	switch ll := ll.(type) {
	case *lltypes.FloatType:
		return constant.NewFloat(ll, node.N), nil
	case *lltypes.IntType:
		return constant.NewInt(ll, int64(node.N)), nil
	}
	return nil, failf("float literal specialized to %s", ty)
}

func (g *Codegen) genVar(node *core.Var) (value.Value, error) {
	if info, ok := g.arrays[node.ID]; ok {
		return info.param, nil
	}
	s, ok := g.locals[node.ID]
	if !ok {
		return nil, failf("undefined local %s", node.ID)
	}
	return g.block.NewLoad(s.elem, s.ptr), nil
}

// genIndex loads an element. Array parameters are read through the cached
// data pointer; any other indexed value must itself be a pointer, such as
// the shape vector. Narrower integer loads widen to the specialized type.
func (g *Codegen) genIndex(node *core.Index) (value.Value, error) {
	ty, err := g.specialize(node)
	if err != nil {
		return nil, err
	}
	ll, err := g.lltypes.convert(ty)
	if err != nil {
		return nil, err
	}

	if v, ok := node.Value.(*core.Var); ok {
		if info, ok := g.arrays[v.ID]; ok {
			ix, err := g.genExpr(node.Ix)
			if err != nil {
				return nil, err
			}
			ptr := g.block.NewGetElementPtr(info.elem, info.data, ix)
			return g.block.NewLoad(info.elem, ptr), nil
		}
	}

	val, err := g.genExpr(node.Value)
	if err != nil {
		return nil, err
	}
	ix, err := g.genExpr(node.Ix)
	if err != nil {
		return nil, err
	}
	ptrType, ok := val.Type().(*lltypes.PointerType)
	if !ok {
		return nil, failf("indexed value of type %s is not a pointer", val.Type())
	}
	ptr := g.block.NewGetElementPtr(ptrType.ElemType, val, ix)
	loaded := g.block.NewLoad(ptrType.ElemType, ptr)

	// The shape vector holds i32 entries but is typed Int64 by inference.
	if from, ok := ptrType.ElemType.(*lltypes.IntType); ok {
		if to, ok := ll.(*lltypes.IntType); ok && from.BitSize < to.BitSize {
			return g.block.NewSExt(loaded, to), nil
		}
	}
	return loaded, nil
}

func (g *Codegen) genPrim(node *core.Prim) (value.Value, error) {
	switch node.Op {
	case core.OpShape:
		ref, ok := node.Args[0].(*core.Var)
		if !ok {
			return nil, failf("shape# applied to a non-variable")
		}
		info, ok := g.arrays[ref.ID]
		if !ok {
			return nil, failf("shape# applied to non-array %s", ref.ID)
		}
		return info.shape, nil

	case core.OpNot:
		a, err := g.genExpr(node.Args[0])
		if err != nil {
			return nil, err
		}
		intTy, ok := a.Type().(*lltypes.IntType)
		if !ok {
			return nil, failf("not# applied to %s", a.Type())
		}
		return g.block.NewXor(a, constant.NewInt(intTy, -1)), nil

	case core.OpNeg:
		a, err := g.genExpr(node.Args[0])
		if err != nil {
			return nil, err
		}
		if isFloating(a.Type()) {
			return g.block.NewFSub(constant.NewFloat(a.Type().(*lltypes.FloatType), 0), a), nil
		}
		intTy, ok := a.Type().(*lltypes.IntType)
		if !ok {
			return nil, failf("neg# applied to %s", a.Type())
		}
		return g.block.NewSub(constant.NewInt(intTy, 0), a), nil

	case core.OpPow:
		return nil, failf("pow# is not implemented")
	}

	if !core.IsBinaryOp(node.Op) {
		return nil, failf("unknown primitive %q", node.Op)
	}
	a, err := g.genExpr(node.Args[0])
	if err != nil {
		return nil, err
	}
	b, err := g.genExpr(node.Args[1])
	if err != nil {
		return nil, err
	}
	return g.genBinary(node.Op, a, b)
}

// genBinary selects the instruction by operand class: floating operands use
// floating instructions with unordered comparison predicates, everything
// else uses the signed integer forms.
func (g *Codegen) genBinary(op string, a, b value.Value) (value.Value, error) {
	floating := isFloating(a.Type())
	switch op {
	case core.OpAdd:
		if floating {
			return g.block.NewFAdd(a, b), nil
		}
		return g.block.NewAdd(a, b), nil
	case core.OpSub:
		if floating {
			return g.block.NewFSub(a, b), nil
		}
		return g.block.NewSub(a, b), nil
	case core.OpMult:
		if floating {
			return g.block.NewFMul(a, b), nil
		}
		return g.block.NewMul(a, b), nil
	case core.OpDiv:
		if floating {
			return g.block.NewFDiv(a, b), nil
		}
		return g.block.NewSDiv(a, b), nil
	case core.OpMod:
		if floating {
			return g.block.NewFRem(a, b), nil
		}
		return g.block.NewSRem(a, b), nil
	case core.OpAnd:
		return g.block.NewAnd(a, b), nil
	case core.OpOr:
		return g.block.NewOr(a, b), nil
	}

	if !core.IsCompareOp(op) {
		return nil, failf("unknown binary primitive %q", op)
	}
	if floating {
		return g.block.NewFCmp(fpred(op), a, b), nil
	}
	return g.block.NewICmp(ipred(op), a, b), nil
}

func (g *Codegen) genCompare(node *core.Compare) (value.Value, error) {
	left, err := g.genExpr(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.genExpr(node.Comparators[0])
	if err != nil {
		return nil, err
	}
	op := node.Ops[0]
	if !core.IsCompareOp(op) {
		return nil, failf("unknown comparison %q", op)
	}
	if isFloating(left.Type()) {
		return g.block.NewFCmp(fpred(op), left, right), nil
	}
	return g.block.NewICmp(ipred(op), left, right), nil
}

// genCall emits a call. A self-recursive call targets the function under
// construction; any other callee is resolved through the host registry and
// called indirectly through its baked-in code address.
func (g *Codegen) genCall(node *core.CallFunc) (value.Value, error) {
	args := make([]value.Value, len(node.Args))
	for i, a := range node.Args {
		v, err := g.genExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if node.Func.ID == g.orgName {
		return g.block.NewCall(g.fn, args...), nil
	}

	host, ok := g.registry.Lookup(node.Func.ID)
	if !ok {
		return nil, failf("callee %s is not registered", node.Func.ID)
	}
	if len(args) != len(host.Params) {
		return nil, failf("callee %s expects %d arguments, got %d", host.Name, len(host.Params), len(args))
	}

	retLL, err := g.lltypes.convert(host.Return)
	if err != nil {
		return nil, err
	}
	paramLLs := make([]lltypes.Type, len(host.Params))
	for i, p := range host.Params {
		paramLLs[i], err = g.lltypes.convert(p)
		if err != nil {
			return nil, err
		}
		if !args[i].Type().Equal(paramLLs[i]) {
			return nil, failf("callee %s argument %d has type %s, want %s",
				host.Name, i, args[i].Type(), paramLLs[i])
		}
	}

	fnType := lltypes.NewFunc(retLL, paramLLs...)
	addr := constant.NewInt(lltypes.I64, int64(host.Addr))
	fptr := g.block.NewIntToPtr(addr, lltypes.NewPointer(fnType))
	fptr.SetName(host.Name + "_ptr")
	return g.block.NewCall(fptr, args...), nil
}

func isFloating(t lltypes.Type) bool {
	_, ok := t.(*lltypes.FloatType)
	return ok
}

func ipred(op string) enum.IPred {
	switch op {
	case core.OpEq:
		return enum.IPredEQ
	case core.OpNe:
		return enum.IPredNE
	case core.OpLt:
		return enum.IPredSLT
	case core.OpLe:
		return enum.IPredSLE
	case core.OpGt:
		return enum.IPredSGT
	}
	return enum.IPredSGE
}

func fpred(op string) enum.FPred {
	switch op {
	case core.OpEq:
		return enum.FPredUEQ
	case core.OpNe:
		return enum.FPredUNE
	case core.OpLt:
		return enum.FPredULT
	case core.OpLe:
		return enum.FPredULE
	case core.OpGt:
		return enum.FPredUGT
	}
	return enum.FPredUGE
}
