// Package types defines the type terms of the numeric core language and the
// unifier that solves equality constraints over them.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by all type terms.
type Type interface {
	String() string
	Equal(Type) bool
}

// Base is a ground base type, identified by name.
type Base struct {
	Name string
}

func (t *Base) String() string {
	return t.Name
}

func (t *Base) Equal(other Type) bool {
	o, ok := other.(*Base)
	return ok && t.Name == o.Name
}

// Var is a type variable; identity is by name.
type Var struct {
	Name string
}

func (t *Var) String() string {
	return t.Name
}

func (t *Var) Equal(other Type) bool {
	o, ok := other.(*Var)
	return ok && t.Name == o.Name
}

// Generic is a unary parametric type constructor. The pipeline only ever
// produces Generic(Array, elem).
type Generic struct {
	Head Type
	Arg  Type
}

func (t *Generic) String() string {
	return t.Head.String() + " " + t.Arg.String()
}

func (t *Generic) Equal(other Type) bool {
	o, ok := other.(*Generic)
	return ok && t.Head.Equal(o.Head) && t.Arg.Equal(o.Arg)
}

// Func is an n-ary function type.
type Func struct {
	Args   []Type
	Return Type
}

func (t *Func) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return "(" + strings.Join(args, ", ") + ") -> " + t.Return.String()
}

func (t *Func) Equal(other Type) bool {
	o, ok := other.(*Func)
	if !ok || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return t.Return.Equal(o.Return)
}

// The base types of the dialect. Array is a sentinel: it never stands alone as
// a value type, only as the head of a Generic.
var (
	Int32    = &Base{Name: "Int32"}
	Int64    = &Base{Name: "Int64"}
	Float32  = &Base{Name: "Float32"}
	Double64 = &Base{Name: "Double64"}
	Bool     = &Base{Name: "Bool"}
	Void     = &Base{Name: "Void"}
	Array    = &Base{Name: "Array"}
)

// NewVar returns a type variable with the given name.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// NewArray returns the array type with the given element type.
func NewArray(elem Type) *Generic {
	return &Generic{Head: Array, Arg: elem}
}

// NewFunc returns the function type with the given argument and return types.
func NewFunc(args []Type, ret Type) *Func {
	return &Func{Args: args, Return: ret}
}

// IsArray reports whether t is an array type.
func IsArray(t Type) bool {
	g, ok := t.(*Generic)
	return ok && g.Head.Equal(Array)
}

// ElemType returns the element type of an array type, or nil if t is not one.
func ElemType(t Type) Type {
	if g, ok := t.(*Generic); ok && g.Head.Equal(Array) {
		return g.Arg
	}
	return nil
}

// FreeVars returns the set of free type variable names in t.
func FreeVars(t Type) map[string]struct{} {
	set := make(map[string]struct{})
	collectFreeVars(t, set)
	return set
}

func collectFreeVars(t Type, set map[string]struct{}) {
	switch t := t.(type) {
	case *Base:
	case *Var:
		set[t.Name] = struct{}{}
	case *Generic:
		collectFreeVars(t.Head, set)
		collectFreeVars(t.Arg, set)
	case *Func:
		for _, a := range t.Args {
			collectFreeVars(a, set)
		}
		collectFreeVars(t.Return, set)
	default:
		panic(fmt.Sprintf("types: unknown type term %T", t))
	}
}

// Determined reports whether t contains no free type variables.
func Determined(t Type) bool {
	return len(FreeVars(t)) == 0
}
