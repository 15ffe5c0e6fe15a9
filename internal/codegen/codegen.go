// Package codegen lowers typed Core IR to LLVM IR under a specialization
// substitution. Every variant it emits is fully monomorphic: instruction
// selection follows the specialized type of each expression.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/hostfn"
	"github.com/LanceMoe/gojiting/internal/types"
)

// slot is a stack slot holding one local.
type slot struct {
	ptr  value.Value
	elem lltypes.Type
}

// arrayInfo caches the unpacked metadata of an array parameter.
type arrayInfo struct {
	param value.Value
	data  value.Value
	dims  value.Value
	shape value.Value
	elem  lltypes.Type
}

// Codegen emits one specialized function into an LLVM module.
type Codegen struct {
	module   *ir.Module
	lltypes  *llTypes
	registry *hostfn.Registry

	spec    types.Subst
	retType types.Type
	args    []types.Type

	fn         *ir.Func
	block      *ir.Block
	exitBlock  *ir.Block
	locals     map[string]slot
	arrays     map[string]*arrayInfo
	orgName    string
	breakStack []*ir.Block

	loopCount  int
	whileCount int
	ifCount    int
}

// New creates a code generator for one variant. The substitution must make
// the return type and every argument type ground.
func New(module *ir.Module, registry *hostfn.Registry, spec types.Subst, retType types.Type, args []types.Type) *Codegen {
	return &Codegen{
		module:   module,
		lltypes:  newLLTypes(module),
		registry: registry,
		spec:     spec,
		retType:  retType,
		args:     args,
		locals:   make(map[string]slot),
		arrays:   make(map[string]*arrayInfo),
	}
}

// Generate emits the specialized variant of fn and returns the LLVM function
// carrying the mangled name.
func (g *Codegen) Generate(fn *core.Fun) (*ir.Func, error) {
	if len(fn.Params) != len(g.args) {
		return nil, failf("function %s has %d parameters but %d argument types", fn.Name, len(fn.Params), len(g.args))
	}

	retLL, err := g.lltypes.convert(g.retType)
	if err != nil {
		return nil, err
	}
	params := make([]*ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		argLL, err := g.lltypes.convert(g.args[i])
		if err != nil {
			return nil, err
		}
		params[i] = ir.NewParam(p.ID, argLL)
	}

	g.orgName = fn.Name
	g.fn = g.module.NewFunc(Mangle(fn.Name, g.args), retLL, params...)
	entry := g.fn.NewBlock("entry")
	g.exitBlock = g.fn.NewBlock("exit")
	g.block = entry

	for i, p := range fn.Params {
		if types.IsArray(g.args[i]) {
			if err := g.unpackArrayParam(p.ID, params[i], g.args[i]); err != nil {
				return nil, err
			}
			continue
		}
		ref := g.block.NewAlloca(params[i].Typ)
		ref.SetName(p.ID + "_ptr")
		g.block.NewStore(params[i], ref)
		g.locals[p.ID] = slot{ptr: ref, elem: params[i].Typ}
	}

	if !retLL.Equal(lltypes.Void) {
		retval := g.block.NewAlloca(retLL)
		retval.SetName("retval")
		g.locals["retval"] = slot{ptr: retval, elem: retLL}
	}

	if err := g.genBody(fn.Body); err != nil {
		return nil, err
	}
	if g.block.Term == nil {
		g.block.NewBr(g.exitBlock)
	}
	g.genEpilogue(retLL)
	return g.fn, nil
}

// unpackArrayParam loads the data pointer, dimension count and shape pointer
// out of an incoming array struct. Indexing later bypasses the struct and
// goes through the cached data pointer.
func (g *Codegen) unpackArrayParam(name string, param *ir.Param, argType types.Type) error {
	st, err := g.lltypes.arrayStruct(types.ElemType(argType))
	if err != nil {
		return err
	}
	elemLL, err := g.lltypes.convert(types.ElemType(argType))
	if err != nil {
		return err
	}

	zero := constant.NewInt(lltypes.I32, 0)
	one := constant.NewInt(lltypes.I32, 1)
	two := constant.NewInt(lltypes.I32, 2)

	dataPtr := g.block.NewGetElementPtr(st, param, zero, zero)
	dataPtr.SetName(name + "_data")
	dimsPtr := g.block.NewGetElementPtr(st, param, zero, one)
	dimsPtr.SetName(name + "_dims")
	shapePtr := g.block.NewGetElementPtr(st, param, zero, two)
	shapePtr.SetName(name + "_shape")

	g.arrays[name] = &arrayInfo{
		param: param,
		data:  g.block.NewLoad(lltypes.NewPointer(elemLL), dataPtr),
		dims:  g.block.NewLoad(lltypes.I32, dimsPtr),
		shape: g.block.NewLoad(lltypes.NewPointer(lltypes.I32), shapePtr),
		elem:  elemLL,
	}
	return nil
}

func (g *Codegen) genEpilogue(retLL lltypes.Type) {
	if retval, ok := g.locals["retval"]; ok {
		loaded := g.exitBlock.NewLoad(retLL, retval.ptr)
		g.exitBlock.NewRet(loaded)
		return
	}
	g.exitBlock.NewRet(nil)
}

func (g *Codegen) genBody(body []core.Node) error {
	for _, node := range body {
		if err := g.genStmt(node); err != nil {
			return err
		}
	}
	return nil
}

func (g *Codegen) genStmt(node core.Node) error {
	switch node := node.(type) {
	case *core.Assign:
		return g.genAssign(node)
	case *core.Return:
		return g.genReturn(node)
	case *core.Loop:
		return g.genLoop(node)
	case *core.While:
		return g.genWhile(node)
	case *core.If:
		return g.genIf(node)
	case *core.Break:
		return g.genBreak()
	case *core.Noop:
		return nil
	default:
		if expr, ok := node.(core.Expr); ok {
			_, err := g.genExpr(expr)
			return err
		}
		return failf("unexpected statement %T", node)
	}
}

func (g *Codegen) genAssign(node *core.Assign) error {
	val, err := g.genExpr(node.Value)
	if err != nil {
		return err
	}
	if s, ok := g.locals[node.Ref]; ok {
		g.block.NewStore(val, s.ptr)
		return nil
	}
	// First assignment allocates the slot at the specialized type.
	ty, err := g.specialize(node)
	if err != nil {
		return err
	}
	elemLL, err := g.lltypes.convert(ty)
	if err != nil {
		return err
	}
	ref := g.block.NewAlloca(elemLL)
	ref.SetName(node.Ref + "_ptr")
	g.block.NewStore(val, ref)
	g.locals[node.Ref] = slot{ptr: ref, elem: elemLL}
	return nil
}

func (g *Codegen) genReturn(node *core.Return) error {
	if node.Value != nil {
		val, err := g.genExpr(node.Value)
		if err != nil {
			return err
		}
		if retval, ok := g.locals["retval"]; ok {
			g.block.NewStore(val, retval.ptr)
		}
	}
	if g.block.Term == nil {
		g.block.NewBr(g.exitBlock)
	}
	return nil
}

// genLoop emits the four-block counted loop: init stores the begin value
// into the counter slot, cond compares against end with signed less-than,
// body re-enters cond after advancing the counter by step.
func (g *Codegen) genLoop(node *core.Loop) error {
	g.loopCount++
	n := g.loopCount
	initBlock := g.fn.NewBlock(fmt.Sprintf("for.init.%d", n))
	condBlock := g.fn.NewBlock(fmt.Sprintf("for.cond.%d", n))
	bodyBlock := g.fn.NewBlock(fmt.Sprintf("for.body.%d", n))
	endBlock := g.fn.NewBlock(fmt.Sprintf("for.end.%d", n))
	g.breakStack = append(g.breakStack, endBlock)

	g.block.NewBr(initBlock)
	g.block = initBlock

	begin, err := g.genExpr(node.Begin)
	if err != nil {
		return err
	}
	end, err := g.genExpr(node.End)
	if err != nil {
		return err
	}
	step, err := g.genExpr(node.Step)
	if err != nil {
		return err
	}

	counter := g.block.NewAlloca(lltypes.I64)
	counter.SetName(node.Var.ID)
	g.block.NewStore(begin, counter)
	g.locals[node.Var.ID] = slot{ptr: counter, elem: lltypes.I64}
	g.block.NewBr(condBlock)

	g.block = condBlock
	cond := g.block.NewICmp(enum.IPredSLT, g.block.NewLoad(lltypes.I64, counter), end)
	g.block.NewCondBr(cond, bodyBlock, endBlock)

	g.block = bodyBlock
	if err := g.genBody(node.Body); err != nil {
		return err
	}
	if g.block.Term == nil {
		next := g.block.NewAdd(step, g.block.NewLoad(lltypes.I64, counter))
		g.block.NewStore(next, counter)
		g.block.NewBr(condBlock)
	}

	g.block = endBlock
	g.breakStack = g.breakStack[:len(g.breakStack)-1]
	return nil
}

func (g *Codegen) genWhile(node *core.While) error {
	g.whileCount++
	n := g.whileCount
	condBlock := g.fn.NewBlock(fmt.Sprintf("while.cond.%d", n))
	bodyBlock := g.fn.NewBlock(fmt.Sprintf("while.body.%d", n))
	endBlock := g.fn.NewBlock(fmt.Sprintf("while.end.%d", n))
	g.breakStack = append(g.breakStack, endBlock)

	g.block.NewBr(condBlock)
	g.block = condBlock
	test, err := g.genExpr(node.Test)
	if err != nil {
		return err
	}
	cond, err := g.truthy(test)
	if err != nil {
		return err
	}
	g.block.NewCondBr(cond, bodyBlock, endBlock)

	g.block = bodyBlock
	if err := g.genBody(node.Body); err != nil {
		return err
	}
	if g.block.Term == nil {
		g.block.NewBr(condBlock)
	}

	g.block = endBlock
	g.breakStack = g.breakStack[:len(g.breakStack)-1]
	return nil
}

func (g *Codegen) genIf(node *core.If) error {
	g.ifCount++
	n := g.ifCount
	condBlock := g.fn.NewBlock(fmt.Sprintf("if.cond.%d", n))
	thenBlock := g.fn.NewBlock(fmt.Sprintf("if.then.%d", n))
	var elseBlock *ir.Block
	if len(node.Orelse) > 0 {
		elseBlock = g.fn.NewBlock(fmt.Sprintf("if.else.%d", n))
	}
	endBlock := g.fn.NewBlock(fmt.Sprintf("if.end.%d", n))

	g.block.NewBr(condBlock)
	g.block = condBlock
	test, err := g.genExpr(node.Test)
	if err != nil {
		return err
	}
	cond, err := g.truthy(test)
	if err != nil {
		return err
	}
	if elseBlock != nil {
		g.block.NewCondBr(cond, thenBlock, elseBlock)
	} else {
		g.block.NewCondBr(cond, thenBlock, endBlock)
	}

	g.block = thenBlock
	if err := g.genBody(node.Body); err != nil {
		return err
	}
	if g.block.Term == nil {
		g.block.NewBr(endBlock)
	}

	if elseBlock != nil {
		g.block = elseBlock
		if err := g.genBody(node.Orelse); err != nil {
			return err
		}
		if g.block.Term == nil {
			g.block.NewBr(endBlock)
		}
	}

	g.block = endBlock
	return nil
}

func (g *Codegen) genBreak() error {
	if len(g.breakStack) == 0 {
		return failf("break outside of a loop")
	}
	if g.block.Term == nil {
		g.block.NewBr(g.breakStack[len(g.breakStack)-1])
	}
	return nil
}

// specialize resolves the inferred type of node under the specialization
// substitution. Reaching an annotation-free or still-polymorphic node here is
// a pipeline defect, not a user error.
func (g *Codegen) specialize(node core.Expr) (types.Type, error) {
	ty := node.Type()
	if ty == nil {
		return nil, failf("expression %T carries no inferred type", node)
	}
	ty = g.spec.Apply(ty)
	if !types.Determined(ty) {
		return nil, failf("expression %T is not fully specialized: %s", node, ty)
	}
	return ty, nil
}

// truthy coerces a test value to i1 for a conditional branch. Comparison
// results already are i1; integer-wide booleans compare against zero.
func (g *Codegen) truthy(v value.Value) (value.Value, error) {
	if intTy, ok := v.Type().(*lltypes.IntType); ok {
		if intTy.BitSize == 1 {
			return v, nil
		}
		return g.block.NewICmp(enum.IPredNE, v, constant.NewInt(intTy, 0)), nil
	}
	if fltTy, ok := v.Type().(*lltypes.FloatType); ok {
		return g.block.NewFCmp(enum.FPredUNE, v, constant.NewFloat(fltTy, 0)), nil
	}
	return nil, failf("condition of type %s is not truth-testable", v.Type())
}
