package jit

import (
	"github.com/LanceMoe/gojiting/internal/runtime"
	"github.com/LanceMoe/gojiting/internal/types"
)

// classifyValue maps a runtime argument value into the recognized type set.
// The complete list: integers become Int64, floats Double64, and arrays map
// by element dtype. Everything else is rejected.
func classifyValue(v interface{}) (types.Type, error) {
	switch v := v.(type) {
	case int, int64:
		return types.Int64, nil
	case float64:
		return types.Double64, nil
	case *runtime.Array:
		switch v.DType() {
		case runtime.DTypeInt64:
			return types.NewArray(types.Int64), nil
		case runtime.DTypeFloat64:
			return types.NewArray(types.Double64), nil
		case runtime.DTypeFloat32:
			return types.NewArray(types.Float32), nil
		}
	}
	return nil, &UnsupportedRuntimeTypeError{Value: v}
}

// classifyArgs classifies every call argument.
func classifyArgs(args []interface{}) ([]types.Type, error) {
	out := make([]types.Type, len(args))
	for i, a := range args {
		ty, err := classifyValue(a)
		if err != nil {
			return nil, err
		}
		out[i] = ty
	}
	return out, nil
}
