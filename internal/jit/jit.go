// Package jit drives the compilation pipeline: lowering and inference happen
// eagerly when a function is handed over, specialization and code emission
// happen lazily on the first call with a previously unseen argument type
// signature.
//
// A Compiler holds process-wide mutable state: the execution engine, the
// variant cache and the host function registry. None of it is safe for
// concurrent use; callers must serialize access externally.
package jit

import (
	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"

	"github.com/LanceMoe/gojiting/internal/ast"
	"github.com/LanceMoe/gojiting/internal/codegen"
	"github.com/LanceMoe/gojiting/internal/core"
	"github.com/LanceMoe/gojiting/internal/hostfn"
	"github.com/LanceMoe/gojiting/internal/infer"
	"github.com/LanceMoe/gojiting/internal/lower"
	"github.com/LanceMoe/gojiting/internal/types"
)

// Compiler is the long-lived compilation context.
type Compiler struct {
	engine   *engine
	registry *hostfn.Registry
	cache    map[string]*native
	trace    *tracer
}

// New creates a compiler context. The execution engine is brought up on the
// first native compilation, so contexts used only for emission never touch
// the JIT machinery.
func New() (*Compiler, error) {
	return &Compiler{
		registry: hostfn.NewRegistry(),
		cache:    make(map[string]*native),
		trace:    newTracer(),
	}, nil
}

// Function is a compiled-on-demand function. Call dispatches to a cached
// native variant or compiles a new one for the argument type signature.
type Function struct {
	compiler *Compiler
	fn       *core.Fun
	inferred *types.Func
	mgu      types.Subst
}

// Compile lowers and type-infers a surface function. Specialization is
// deferred to call time.
func (c *Compiler) Compile(fn *ast.Function) (*Function, error) {
	coreFn, err := lower.Function(fn)
	if err != nil {
		return nil, err
	}
	return c.CompileCore(codegen.FoldConstants(coreFn))
}

// CompileCore runs inference over an already-lowered function.
func (c *Compiler) CompileCore(fn *core.Fun) (*Function, error) {
	inferred, mgu, err := infer.Function(fn, c.registry)
	if err != nil {
		return nil, err
	}
	c.trace.printf("inferred %s :: %s", fn.Name, inferred)
	return &Function{
		compiler: c,
		fn:       fn,
		inferred: inferred,
		mgu:      mgu,
	}, nil
}

// InferredType returns the principal type of the function.
func (f *Function) InferredType() *types.Func {
	return f.inferred
}

// Call classifies the runtime arguments, specializes the function against
// them and executes the matching native variant, compiling it on a cache
// miss.
func (f *Function) Call(args ...interface{}) (interface{}, error) {
	argTypes, err := classifyArgs(args)
	if err != nil {
		return nil, err
	}
	nat, err := f.variant(argTypes)
	if err != nil {
		return nil, err
	}
	return nat.call(args)
}

// variant returns the native entry for the classified signature, emitting
// and installing it on first use.
func (f *Function) variant(argTypes []types.Type) (*native, error) {
	c := f.compiler
	specializer, retType, specArgs, err := specialize(f.inferred, f.mgu, argTypes)
	if err != nil {
		return nil, err
	}
	key := codegen.Mangle(f.fn.Name, specArgs)
	if nat, ok := c.cache[key]; ok {
		return nat, nil
	}
	c.trace.printf("specializing %s :: %s", f.fn.Name, types.NewFunc(specArgs, retType))

	module := ir.NewModule()
	cg := codegen.New(module, c.registry, specializer, retType, specArgs)
	llfn, err := cg.Generate(f.fn)
	if err != nil {
		return nil, err
	}
	c.trace.printf("emitted module:\n%s", module.String())

	if c.engine == nil {
		c.engine, err = newEngine()
		if err != nil {
			return nil, err
		}
	}
	addr, err := c.engine.addModule(module.String(), llfn.Name())
	if err != nil {
		return nil, errors.Wrapf(err, "compiling variant %s", key)
	}
	nat, err := newNative(addr, llfn.Sig)
	if err != nil {
		return nil, errors.Wrapf(err, "wrapping variant %s", key)
	}
	c.cache[key] = nat
	return nat, nil
}

// Specialize resolves the monomorphic signature for a classified argument
// type vector without emitting code. It runs the same specialization step
// that Call uses to build the cache key.
func (f *Function) Specialize(argTypes []types.Type) (types.Type, []types.Type, error) {
	_, retType, specArgs, err := specialize(f.inferred, f.mgu, argTypes)
	return retType, specArgs, err
}

// EmitVariant compiles the variant for the classified signature into a fresh
// module and returns its textual IR without installing anything.
func (f *Function) EmitVariant(argTypes []types.Type) (string, error) {
	specializer, retType, specArgs, err := specialize(f.inferred, f.mgu, argTypes)
	if err != nil {
		return "", err
	}
	module := ir.NewModule()
	cg := codegen.New(module, f.compiler.registry, specializer, retType, specArgs)
	if _, err := cg.Generate(f.fn); err != nil {
		return "", err
	}
	return module.String(), nil
}
