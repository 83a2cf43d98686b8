package speclogic

// Substitute replaces every free occurrence of v in e by r and rebuilds
// composite nodes through their smart constructors, so the result is
// folded again. Substituting under the Exists that binds v is rejected with
// a *CaptureError.
func Substitute(e Expr, v *Variable, r any) (Expr, error) {
	if v == nil {
		return e, nil
	}
	return substitute(e, v, Lift(r))
}

func substitute(e Expr, v *Variable, r Expr) (Expr, error) {
	switch n := e.(type) {
	case Const, TimeIndex:
		return e, nil

	case *Variable:
		if n.id == v.id {
			return r, nil
		}
		return n, nil

	case LessExpr:
		a, b, err := substitutePair(n.A, n.B, v, r)
		if err != nil {
			return nil, err
		}
		return Lt(a, b)

	case EqualExpr:
		a, b, err := substitutePair(n.A, n.B, v, r)
		if err != nil {
			return nil, err
		}
		return Eq(a, b), nil

	case IndexExpr:
		x, k, err := substitutePair(n.X, n.Key, v, r)
		if err != nil {
			return nil, err
		}
		return Index(x, k)

	case NotExpr:
		x, err := substitute(n.X, v, r)
		if err != nil {
			return nil, err
		}
		return Not(x), nil

	case AndExpr:
		args, err := substituteAll(n.Args, v, r)
		if err != nil {
			return nil, err
		}
		conj := make([]any, len(args))
		for i, arg := range args {
			conj[i] = arg
		}
		return And(conj...), nil

	case ExistsExpr:
		if n.Var != nil && n.Var.id == v.id {
			return nil, &CaptureError{Var: v}
		}
		body, err := substitute(n.Body, v, r)
		if err != nil {
			return nil, err
		}
		return ExistsExpr{Var: n.Var, Body: body}, nil

	case ReceivedExpr:
		out := n
		if n.Time != nil {
			t, err := substitute(n.Time, v, r)
			if err != nil {
				return nil, err
			}
			out.Time = t
		}
		if n.HasArgs {
			args, err := substituteAll(n.Args, v, r)
			if err != nil {
				return nil, err
			}
			out.Args = args
		}
		return out, nil
	}
	return e, nil
}

func substitutePair(a, b Expr, v *Variable, r Expr) (Expr, Expr, error) {
	sa, err := substitute(a, v, r)
	if err != nil {
		return nil, nil, err
	}
	sb, err := substitute(b, v, r)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

func substituteAll(exprs []Expr, v *Variable, r Expr) ([]Expr, error) {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		se, err := substitute(e, v, r)
		if err != nil {
			return nil, err
		}
		out[i] = se
	}
	return out, nil
}

// FreeVariables lists the variables occurring free in e, in order of first
// occurrence.
func FreeVariables(e Expr) []*Variable {
	var (
		out  []*Variable
		seen = make(map[uint64]bool)
	)
	var walk func(e Expr, bound map[uint64]bool)
	walk = func(e Expr, bound map[uint64]bool) {
		switch n := e.(type) {
		case *Variable:
			if !bound[n.id] && !seen[n.id] {
				seen[n.id] = true
				out = append(out, n)
			}
		case LessExpr:
			walk(n.A, bound)
			walk(n.B, bound)
		case EqualExpr:
			walk(n.A, bound)
			walk(n.B, bound)
		case IndexExpr:
			walk(n.X, bound)
			walk(n.Key, bound)
		case NotExpr:
			walk(n.X, bound)
		case AndExpr:
			for _, arg := range n.Args {
				walk(arg, bound)
			}
		case ExistsExpr:
			inner := make(map[uint64]bool, len(bound)+1)
			for id := range bound {
				inner[id] = true
			}
			if n.Var != nil {
				inner[n.Var.id] = true
			}
			walk(n.Body, inner)
		case ReceivedExpr:
			if n.Time != nil {
				walk(n.Time, bound)
			}
			for _, arg := range n.Args {
				walk(arg, bound)
			}
		}
	}
	walk(e, map[uint64]bool{})
	return out
}
