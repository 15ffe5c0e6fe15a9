package jit

import (
	"github.com/LanceMoe/gojiting/internal/infer"
	"github.com/LanceMoe/gojiting/internal/types"
)

// specialize unifies the inferred function type against the runtime argument
// type vector, composes the unifier with the MGU, and resolves the
// monomorphic signature of the variant to compile. A signature that still
// contains free variables cannot be compiled.
func specialize(inferred *types.Func, mgu types.Subst, argTypes []types.Type) (types.Subst, types.Type, []types.Type, error) {
	specTy := types.NewFunc(argTypes, types.NewVar(infer.ReturnVarName))
	unifier, err := types.Unify(inferred, specTy)
	if err != nil {
		return nil, nil, nil, err
	}
	specializer := types.Compose(unifier, mgu)

	retType := specializer.Apply(types.NewVar(infer.ReturnVarName))
	args := make([]types.Type, len(argTypes))
	for i, a := range argTypes {
		args[i] = specializer.Apply(a)
	}

	if !types.Determined(retType) {
		return nil, nil, nil, &UnderDeterminedError{}
	}
	for _, a := range args {
		if !types.Determined(a) {
			return nil, nil, nil, &UnderDeterminedError{}
		}
	}
	return specializer, retType, args, nil
}
