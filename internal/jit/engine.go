package jit

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	gollvm "tinygo.org/x/go-llvm"
)

var llvmInitOnce sync.Once

// engine owns the MCJIT execution engine. Modules handed to it live for the
// remainder of the process; they are never removed.
type engine struct {
	ctx gollvm.Context
	ee  gollvm.ExecutionEngine
}

func newEngine() (*engine, error) {
	var initErr error
	llvmInitOnce.Do(func() {
		if err := gollvm.InitializeNativeTarget(); err != nil {
			initErr = err
			return
		}
		initErr = gollvm.InitializeNativeAsmPrinter()
	})
	if initErr != nil {
		return nil, errors.Wrap(initErr, "initializing native target")
	}

	ctx := gollvm.NewContext()
	backing := ctx.NewModule("gojiting.backing")
	opts := gollvm.NewMCJITCompilerOptions()
	opts.SetMCJITOptimizationLevel(3)
	ee, err := gollvm.NewMCJITCompiler(backing, opts)
	if err != nil {
		return nil, errors.Wrap(err, "creating MCJIT compiler")
	}
	return &engine{ctx: ctx, ee: ee}, nil
}

// addModule parses the textual IR of one compiled variant, verifies it, runs
// the O3 pipeline over it and hands it to the execution engine. It returns
// the address of the named function inside the freshly emitted code.
func (e *engine) addModule(irText, name string) (uintptr, error) {
	mod, err := e.parseIR(irText)
	if err != nil {
		return 0, errors.Wrap(err, "parsing emitted IR")
	}
	if err := gollvm.VerifyModule(mod, gollvm.ReturnStatusAction); err != nil {
		return 0, errors.Wrap(err, "verifying emitted IR")
	}

	pmb := gollvm.NewPassManagerBuilder()
	pmb.SetOptLevel(3)
	pm := gollvm.NewPassManager()
	defer pm.Dispose()
	pmb.Populate(pm)
	pm.Run(mod)

	e.ee.AddModule(mod)
	addr := e.ee.GetFunctionAddress(name)
	if addr == 0 {
		return 0, errors.Errorf("function %s not found after adding module", name)
	}
	return uintptr(addr), nil
}

// parseIR round-trips the textual module through a scratch file; the IR
// reader only consumes memory buffers.
func (e *engine) parseIR(irText string) (gollvm.Module, error) {
	f, err := os.CreateTemp("", "gojiting-*.ll")
	if err != nil {
		return gollvm.Module{}, err
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(irText); err != nil {
		f.Close()
		return gollvm.Module{}, err
	}
	if err := f.Close(); err != nil {
		return gollvm.Module{}, err
	}

	buf, err := gollvm.NewMemoryBufferFromFile(path)
	if err != nil {
		return gollvm.Module{}, err
	}
	return e.ctx.ParseIR(buf)
}
