package codegen

import "fmt"

// CodegenError aborts emission of the current variant.
type CodegenError struct {
	Reason string
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("codegen failure: %s", e.Reason)
}

func failf(format string, args ...interface{}) error {
	return &CodegenError{Reason: fmt.Sprintf(format, args...)}
}
