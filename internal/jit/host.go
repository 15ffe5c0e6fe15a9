package jit

import (
	"fmt"

	"github.com/LanceMoe/gojiting/internal/hostfn"
	"github.com/LanceMoe/gojiting/internal/types"
)

// AnnotationType resolves a host function annotation. Only int and float are
// accepted for registered callees.
func AnnotationType(name string) (types.Type, error) {
	switch name {
	case "int":
		return types.Int64, nil
	case "float":
		return types.Double64, nil
	}
	return nil, fmt.Errorf("unsupported host annotation %q", name)
}

// RegisterHost records a host function so compiled code can call it by name.
// The address must point at code following the C calling convention for the
// annotated signature and must stay valid for the process lifetime.
func (c *Compiler) RegisterHost(name string, params []types.Type, ret types.Type, addr uintptr) error {
	return c.registry.Register(&hostfn.Func{
		Name:   name,
		Params: params,
		Return: ret,
		Addr:   addr,
	})
}

// Registry exposes the host function table, for callers that integrate their
// own registration surface.
func (c *Compiler) Registry() *hostfn.Registry {
	return c.registry
}
