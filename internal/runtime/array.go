// Package runtime defines the host-side values the compiler understands:
// numeric scalars and dense numeric arrays. Arrays expose the contiguous
// backing buffer used by the native array ABI.
package runtime

import (
	"fmt"
	"unsafe"
)

// DType identifies the element type of an Array.
type DType int

const (
	DTypeInt64 DType = iota
	DTypeFloat64
	DTypeFloat32
)

func (d DType) String() string {
	switch d {
	case DTypeInt64:
		return "int64"
	case DTypeFloat64:
		return "float64"
	case DTypeFloat32:
		return "float32"
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// Array is a dense numeric array with a contiguous backing buffer. The
// buffer is borrowed by compiled code for the duration of a call; compiled
// code must not retain pointers into it across returns.
type Array struct {
	dtype DType
	shape []int32

	i64 []int64
	f64 []float64
	f32 []float32
}

// NewInt64Array wraps data as an array. With no shape the array is
// one-dimensional.
func NewInt64Array(data []int64, shape ...int32) (*Array, error) {
	s, err := checkShape(len(data), shape)
	if err != nil {
		return nil, err
	}
	return &Array{dtype: DTypeInt64, shape: s, i64: data}, nil
}

// NewFloat64Array wraps data as an array.
func NewFloat64Array(data []float64, shape ...int32) (*Array, error) {
	s, err := checkShape(len(data), shape)
	if err != nil {
		return nil, err
	}
	return &Array{dtype: DTypeFloat64, shape: s, f64: data}, nil
}

// NewFloat32Array wraps data as an array.
func NewFloat32Array(data []float32, shape ...int32) (*Array, error) {
	s, err := checkShape(len(data), shape)
	if err != nil {
		return nil, err
	}
	return &Array{dtype: DTypeFloat32, shape: s, f32: data}, nil
}

func checkShape(n int, shape []int32) ([]int32, error) {
	if len(shape) == 0 {
		return []int32{int32(n)}, nil
	}
	total := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d", d)
		}
		total *= int(d)
	}
	if total != n {
		return nil, fmt.Errorf("shape %v does not cover %d elements", shape, n)
	}
	out := make([]int32, len(shape))
	copy(out, shape)
	return out, nil
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Dims returns the number of dimensions.
func (a *Array) Dims() int32 { return int32(len(a.shape)) }

// Shape returns the dimension sizes.
func (a *Array) Shape() []int32 { return a.shape }

// Len returns the total element count.
func (a *Array) Len() int {
	switch a.dtype {
	case DTypeInt64:
		return len(a.i64)
	case DTypeFloat64:
		return len(a.f64)
	default:
		return len(a.f32)
	}
}

// Data returns the pointer to the first element of the backing buffer. The
// caller must keep the Array alive while the pointer is in use.
func (a *Array) Data() unsafe.Pointer {
	switch a.dtype {
	case DTypeInt64:
		if len(a.i64) == 0 {
			return nil
		}
		return unsafe.Pointer(&a.i64[0])
	case DTypeFloat64:
		if len(a.f64) == 0 {
			return nil
		}
		return unsafe.Pointer(&a.f64[0])
	default:
		if len(a.f32) == 0 {
			return nil
		}
		return unsafe.Pointer(&a.f32[0])
	}
}

// Int64s returns the backing buffer of an int64 array.
func (a *Array) Int64s() []int64 { return a.i64 }

// Float64s returns the backing buffer of a float64 array.
func (a *Array) Float64s() []float64 { return a.f64 }

// Float32s returns the backing buffer of a float32 array.
func (a *Array) Float32s() []float32 { return a.f32 }

// Index returns element i of a one-dimensional view as a host value.
func (a *Array) Index(i int64) (Value, error) {
	if i < 0 || i >= int64(a.Len()) {
		return Value{}, fmt.Errorf("index %d out of range [0, %d)", i, a.Len())
	}
	switch a.dtype {
	case DTypeInt64:
		return NewInt(a.i64[i]), nil
	case DTypeFloat64:
		return NewFloat(a.f64[i]), nil
	default:
		return NewFloat(float64(a.f32[i])), nil
	}
}
