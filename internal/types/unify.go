package types

// Unify returns the most general substitution making x and y equal, or a
// MismatchError / InfiniteTypeError when none exists.
func Unify(x, y Type) (Subst, error) {
	xg, xok := x.(*Generic)
	yg, yok := y.(*Generic)
	if xok && yok {
		s1, err := Unify(xg.Head, yg.Head)
		if err != nil {
			return nil, err
		}
		s2, err := Unify(s1.Apply(xg.Arg), s1.Apply(yg.Arg))
		if err != nil {
			return nil, err
		}
		return Compose(s2, s1), nil
	}

	if xb, ok := x.(*Base); ok {
		if yb, ok := y.(*Base); ok && xb.Equal(yb) {
			return Subst{}, nil
		}
	}

	xf, xok := x.(*Func)
	yf, yok := y.(*Func)
	if xok && yok {
		if len(xf.Args) != len(yf.Args) {
			return nil, &MismatchError{Given: x, Expected: y}
		}
		cs := make([]Constraint, len(xf.Args))
		for i := range xf.Args {
			cs[i] = Constraint{Left: xf.Args[i], Right: yf.Args[i]}
		}
		s1, err := Solve(cs)
		if err != nil {
			return nil, err
		}
		s2, err := Unify(s1.Apply(xf.Return), s1.Apply(yf.Return))
		if err != nil {
			return nil, err
		}
		return Compose(s2, s1), nil
	}

	if v, ok := x.(*Var); ok {
		return bind(v.Name, y)
	}
	if v, ok := y.(*Var); ok {
		return bind(v.Name, x)
	}
	return nil, &MismatchError{Given: x, Expected: y}
}

// Solve computes the most general unifier of a constraint set. Constraints are
// consumed from the back; each intermediate substitution is composed into the
// running MGU and applied to the remaining pairs.
func Solve(cs []Constraint) (Subst, error) {
	mgu := Subst{}
	rest := make([]Constraint, len(cs))
	copy(rest, cs)
	for len(rest) > 0 {
		c := rest[len(rest)-1]
		rest = rest[:len(rest)-1]
		s, err := Unify(c.Left, c.Right)
		if err != nil {
			return nil, err
		}
		mgu = Compose(s, mgu)
		rest = s.ApplyConstraints(rest)
	}
	return mgu, nil
}

func bind(name string, t Type) (Subst, error) {
	if v, ok := t.(*Var); ok && v.Name == name {
		return Subst{}, nil
	}
	if occurs(name, t) {
		return nil, &InfiniteTypeError{Var: name, Type: t}
	}
	return Subst{name: t}, nil
}

func occurs(name string, t Type) bool {
	_, ok := FreeVars(t)[name]
	return ok
}
