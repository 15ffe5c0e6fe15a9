package jit

import "fmt"

// UnderDeterminedError is raised when specialization leaves free type
// variables in the argument or return types.
type UnderDeterminedError struct{}

func (e *UnderDeterminedError) Error() string {
	return "the types in the function are not fully determined by the input types; add annotations"
}

// UnsupportedRuntimeTypeError is raised when a call-site value does not map
// into the recognized runtime type set.
type UnsupportedRuntimeTypeError struct {
	Value interface{}
}

func (e *UnsupportedRuntimeTypeError) Error() string {
	return fmt.Sprintf("unsupported runtime type: %T", e.Value)
}
