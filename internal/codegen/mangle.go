package codegen

import (
	"fmt"
	"hash/fnv"

	"github.com/LanceMoe/gojiting/internal/types"
)

// Mangle derives the cache and symbol name of a specialized variant from the
// function name and its monomorphic argument type vector. The hash is stable
// within a process, which is all the per-process cache needs.
func Mangle(name string, args []types.Type) string {
	h := fnv.New64a()
	for _, a := range args {
		h.Write([]byte(a.String()))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s_%016x", name, h.Sum64())
}
