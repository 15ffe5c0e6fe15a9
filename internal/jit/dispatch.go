package jit

/*
#cgo LDFLAGS: -lffi
#include <ffi.h>
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	gort "runtime"
	"unsafe"

	lltypes "github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"

	"github.com/LanceMoe/gojiting/internal/runtime"
)

// argKind tells the dispatcher how to marshal one argument.
type argKind int

const (
	argInt64 argKind = iota
	argDouble
	argFloat
	argArray
)

// retKind tells the dispatcher how to read the return buffer.
type retKind int

const (
	retVoid retKind = iota
	retInt64
	retDouble
	retFloat
)

// native wraps one compiled variant behind a libffi call interface whose
// descriptor mirrors the LLVM signature of the function.
type native struct {
	addr   unsafe.Pointer
	cif    C.ffi_cif
	atypes []*C.ffi_type
	args   []argKind
	ret    retKind
}

// newNative builds the native function descriptor for a compiled variant
// from its LLVM signature.
func newNative(addr uintptr, sig *lltypes.FuncType) (*native, error) {
	n := &native{addr: unsafe.Pointer(addr)}

	switch ret := sig.RetType.(type) {
	case *lltypes.VoidType:
		n.ret = retVoid
	case *lltypes.IntType:
		if ret.BitSize != 64 {
			return nil, errors.Errorf("unsupported return width i%d", ret.BitSize)
		}
		n.ret = retInt64
	case *lltypes.FloatType:
		if ret.Kind == lltypes.FloatKindFloat {
			n.ret = retFloat
		} else {
			n.ret = retDouble
		}
	default:
		return nil, errors.Errorf("unsupported return type %s", sig.RetType)
	}

	n.args = make([]argKind, len(sig.Params))
	n.atypes = make([]*C.ffi_type, len(sig.Params))
	for i, p := range sig.Params {
		switch p := p.(type) {
		case *lltypes.IntType:
			if p.BitSize != 64 {
				return nil, errors.Errorf("unsupported argument width i%d", p.BitSize)
			}
			n.args[i] = argInt64
			n.atypes[i] = &C.ffi_type_sint64
		case *lltypes.FloatType:
			if p.Kind == lltypes.FloatKindFloat {
				n.args[i] = argFloat
				n.atypes[i] = &C.ffi_type_float
			} else {
				n.args[i] = argDouble
				n.atypes[i] = &C.ffi_type_double
			}
		case *lltypes.PointerType:
			n.args[i] = argArray
			n.atypes[i] = &C.ffi_type_pointer
		default:
			return nil, errors.Errorf("unsupported argument type %s", p)
		}
	}

	rtype := n.retFFIType()
	var atypes **C.ffi_type
	if len(n.atypes) > 0 {
		atypes = &n.atypes[0]
	}
	if ok := C.ffi_prep_cif(&n.cif, C.FFI_DEFAULT_ABI, C.uint(len(n.atypes)), rtype, atypes); ok != C.FFI_OK {
		return nil, errors.Errorf("ffi_prep_cif failed with status %d", int(ok))
	}
	return n, nil
}

func (n *native) retFFIType() *C.ffi_type {
	switch n.ret {
	case retInt64:
		return &C.ffi_type_sint64
	case retDouble:
		return &C.ffi_type_double
	case retFloat:
		return &C.ffi_type_float
	}
	return &C.ffi_type_void
}

// arrayHeader is the on-wire array ABI: element pointer, dimension count and
// shape vector, passed to compiled code by pointer.
type arrayHeader struct {
	data  unsafe.Pointer
	dims  int32
	_     int32
	shape *C.int32_t
}

// call marshals args through the descriptor, performs the native call and
// reads back the result. Array data buffers are pinned for the duration of
// the call; the header and shape vector are C-allocated per call and freed
// before returning.
func (n *native) call(args []interface{}) (interface{}, error) {
	if len(args) != len(n.args) {
		return nil, errors.Errorf("variant takes %d arguments, got %d", len(n.args), len(args))
	}

	var pinner gort.Pinner
	defer pinner.Unpin()
	var cMem []unsafe.Pointer
	defer func() {
		for _, p := range cMem {
			C.free(p)
		}
	}()
	calloc := func(size int) unsafe.Pointer {
		p := C.malloc(C.size_t(size))
		cMem = append(cMem, p)
		return p
	}

	avalues := make([]unsafe.Pointer, len(args))
	for i, a := range args {
		slot := calloc(8)
		switch n.args[i] {
		case argInt64:
			v, err := asInt64(a)
			if err != nil {
				return nil, err
			}
			*(*int64)(slot) = v
		case argDouble:
			v, ok := a.(float64)
			if !ok {
				return nil, errors.Errorf("argument %d: expected float, got %T", i, a)
			}
			*(*float64)(slot) = v
		case argFloat:
			v, ok := a.(float64)
			if !ok {
				return nil, errors.Errorf("argument %d: expected float, got %T", i, a)
			}
			*(*float32)(slot) = float32(v)
		case argArray:
			arr, ok := a.(*runtime.Array)
			if !ok {
				return nil, errors.Errorf("argument %d: expected array, got %T", i, a)
			}
			hdr := (*arrayHeader)(calloc(int(unsafe.Sizeof(arrayHeader{}))))
			data := arr.Data()
			if data != nil {
				pinner.Pin(data)
			}
			hdr.data = data
			hdr.dims = arr.Dims()
			shape := arr.Shape()
			shapeMem := (*C.int32_t)(calloc(4 * len(shape)))
			for j, d := range shape {
				*(*C.int32_t)(unsafe.Pointer(uintptr(unsafe.Pointer(shapeMem)) + uintptr(j)*4)) = C.int32_t(d)
			}
			hdr.shape = shapeMem
			*(*unsafe.Pointer)(slot) = unsafe.Pointer(hdr)
		}
		avalues[i] = slot
	}

	rvalue := calloc(8)
	var avalue *unsafe.Pointer
	if len(avalues) > 0 {
		avalue = &avalues[0]
	}
	C.ffi_call(&n.cif, (*[0]byte)(n.addr), rvalue, avalue)
	gort.KeepAlive(args)

	switch n.ret {
	case retInt64:
		return *(*int64)(rvalue), nil
	case retDouble:
		return *(*float64)(rvalue), nil
	case retFloat:
		return *(*float32)(rvalue), nil
	}
	return nil, nil
}

func asInt64(a interface{}) (int64, error) {
	switch v := a.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, errors.Errorf("expected integer, got %T", a)
}
