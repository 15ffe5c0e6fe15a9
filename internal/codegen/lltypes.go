package codegen

import (
	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/LanceMoe/gojiting/internal/types"
)

// llTypes maps core type terms to LLVM types for one module under
// construction. Array types become pointers to identified structs carrying
// the data pointer, the dimension count and the shape vector.
type llTypes struct {
	module  *ir.Module
	ndarray map[string]*lltypes.StructType
}

func newLLTypes(module *ir.Module) *llTypes {
	return &llTypes{
		module:  module,
		ndarray: make(map[string]*lltypes.StructType),
	}
}

// convert maps a monomorphic type term to its LLVM representation. Bool is
// integer-wide in this dialect.
func (lt *llTypes) convert(t types.Type) (lltypes.Type, error) {
	switch {
	case t.Equal(types.Int32):
		return lltypes.I32, nil
	case t.Equal(types.Int64), t.Equal(types.Bool):
		return lltypes.I64, nil
	case t.Equal(types.Float32):
		return lltypes.Float, nil
	case t.Equal(types.Double64):
		return lltypes.Double, nil
	case t.Equal(types.Void):
		return lltypes.Void, nil
	}
	if elem := types.ElemType(t); elem != nil {
		st, err := lt.arrayStruct(elem)
		if err != nil {
			return nil, err
		}
		return lltypes.NewPointer(st), nil
	}
	return nil, &CodegenError{Reason: "no LLVM mapping for type " + t.String()}
}

// arrayStruct returns the identified struct type of the array ABI for the
// given element type: { *elt, i32 dims, *i32 shape }.
func (lt *llTypes) arrayStruct(elem types.Type) (*lltypes.StructType, error) {
	elemLL, err := lt.convert(elem)
	if err != nil {
		return nil, err
	}
	name := "ndarray_" + elemLL.String()
	if st, ok := lt.ndarray[name]; ok {
		return st, nil
	}
	st := lltypes.NewStruct(
		lltypes.NewPointer(elemLL),      // data
		lltypes.I32,                     // dimensions
		lltypes.NewPointer(lltypes.I32), // shape
	)
	lt.module.NewTypeDef(name, st)
	lt.ndarray[name] = st
	return st, nil
}
