// gojiting-run compiles one function from a surface-AST JSON module and
// calls it with the given arguments. With -interp the function is evaluated
// by the reference interpreter instead of being compiled.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/LanceMoe/gojiting/internal/ast"
	"github.com/LanceMoe/gojiting/internal/interp"
	"github.com/LanceMoe/gojiting/internal/jit"
	"github.com/LanceMoe/gojiting/internal/lower"
	"github.com/LanceMoe/gojiting/internal/runtime"
	"github.com/LanceMoe/gojiting/internal/validator"
)

func main() {
	var (
		fnName    = flag.String("fn", "", "function to run (defaults to the first function)")
		useInterp = flag.Bool("interp", false, "evaluate with the reference interpreter")
		trace     = flag.Bool("trace", false, "print compilation stages")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: gojiting-run [-fn name] [-interp] [-trace] module.json [arg ...]")
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

	args, err := parseArgs(flag.Args()[1:])
	if err != nil {
		fatalf("parse arguments: %v", err)
	}

	if *useInterp {
		runInterp(fn, args)
		return
	}

	compiler, err := jit.New()
	if err != nil {
		fatalf("create compiler: %v", err)
	}
	if *trace {
		compiler.SetTrace(os.Stderr)
	}
	compiled, err := compiler.Compile(fn)
	if err != nil {
		fatalf("compile %s: %v", fn.Name, err)
	}
	result, err := compiled.Call(args...)
	if err != nil {
		fatalf("call %s: %v", fn.Name, err)
	}
	if result != nil {
		fmt.Println(result)
	}
}

func runInterp(fn *ast.Function, args []interface{}) {
	coreFn, err := lower.Function(fn)
	if err != nil {
		fatalf("lower %s: %v", fn.Name, err)
	}
	values := make([]runtime.Value, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case int64:
			values[i] = runtime.NewInt(a)
		case float64:
			values[i] = runtime.NewFloat(a)
		case *runtime.Array:
			values[i] = runtime.NewArrayValue(a)
		}
	}
	result, err := interp.Run(coreFn, values...)
	if err != nil {
		fatalf("run %s: %v", fn.Name, err)
	}
	if !result.IsVoid() {
		fmt.Println(result.Value)
	}
}

// parseArgs turns command line words into runtime values. Comma-separated
// numbers become a one-dimensional array of their common type.
func parseArgs(words []string) ([]interface{}, error) {
	out := make([]interface{}, len(words))
	for i, w := range words {
		v, err := parseArg(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseArg(w string) (interface{}, error) {
	if strings.Contains(w, ",") {
		return parseArrayArg(w)
	}
	if n, err := strconv.ParseInt(w, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(w, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("cannot parse %q as a number", w)
}

func parseArrayArg(w string) (interface{}, error) {
	parts := strings.Split(w, ",")
	ints := make([]int64, 0, len(parts))
	floats := make([]float64, 0, len(parts))
	isFloat := false
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if n, err := strconv.ParseInt(p, 10, 64); err == nil && !isFloat {
			ints = append(ints, n)
			floats = append(floats, float64(n))
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse array element %q", p)
		}
		isFloat = true
		floats = append(floats, f)
	}
	if isFloat {
		return runtime.NewFloat64Array(floats)
	}
	return runtime.NewInt64Array(ints)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
