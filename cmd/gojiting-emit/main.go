// gojiting-emit prints the specialized LLVM IR of one function for a given
// argument type signature, without executing anything.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/LanceMoe/gojiting/internal/ast"
	"github.com/LanceMoe/gojiting/internal/jit"
	"github.com/LanceMoe/gojiting/internal/types"
	"github.com/LanceMoe/gojiting/internal/validator"
)

func main() {
	var (
		fnName = flag.String("fn", "", "function to emit (defaults to the first function)")
		sig    = flag.String("sig", "", "comma-separated argument types: int, float, []int, []float, []float32")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gojiting-emit [-fn name] -sig types module.json")
		os.Exit(1)
	}

	module, err := ast.LoadModule(flag.Arg(0))
	if err != nil {
		fatalf("load module: %v", err)
	}
	if err := validator.New().ValidateModule(module); err != nil {
		fatalf("validate module: %v", err)
	}

	fn := module.FindFunction(*fnName)
	if *fnName == "" && len(module.Functions) > 0 {
		fn = &module.Functions[0]
	}
	if fn == nil {
		fatalf("function %q not found in module", *fnName)
	}

	argTypes, err := parseSignature(*sig)
	if err != nil {
		fatalf("parse signature: %v", err)
	}

	compiler, err := jit.New()
	if err != nil {
		fatalf("create compiler: %v", err)
	}
	compiled, err := compiler.Compile(fn)
	if err != nil {
		fatalf("compile %s: %v", fn.Name, err)
	}

	retType, specArgs, err := compiled.Specialize(argTypes)
	if err != nil {
		fatalf("specialize %s: %v", fn.Name, err)
	}
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(os.Stderr, "; %s :: %s\n", fn.Name, types.NewFunc(specArgs, retType))

	text, err := compiled.EmitVariant(argTypes)
	if err != nil {
		fatalf("emit %s: %v", fn.Name, err)
	}
	fmt.Print(text)
}

func parseSignature(sig string) ([]types.Type, error) {
	if strings.TrimSpace(sig) == "" {
		return nil, nil
	}
	parts := strings.Split(sig, ",")
	out := make([]types.Type, len(parts))
	for i, p := range parts {
		switch strings.TrimSpace(p) {
		case "int":
			out[i] = types.Int64
		case "float":
			out[i] = types.Double64
		case "[]int":
			out[i] = types.NewArray(types.Int64)
		case "[]float":
			out[i] = types.NewArray(types.Double64)
		case "[]float32":
			out[i] = types.NewArray(types.Float32)
		default:
			return nil, fmt.Errorf("unknown argument type %q", p)
		}
	}
	return out, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
