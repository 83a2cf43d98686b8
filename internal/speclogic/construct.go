package speclogic

// Lt builds a < b. Two constants, two time indices, or a time index and an
// integer constant fold to a boolean; a concrete pair without a natural
// order is an error.
func Lt(a, b any) (Expr, error) {
	ae, be := Lift(a), Lift(b)
	x, xok := orderable(ae)
	y, yok := orderable(be)
	if xok && yok {
		c, ok := compareValues(x, y)
		if !ok {
			return nil, &CompareError{A: x, B: y}
		}
		return Bool(c < 0), nil
	}
	return LessExpr{A: ae, B: be}, nil
}

// Gt builds a > b as b < a.
func Gt(a, b any) (Expr, error) {
	return Lt(b, a)
}

// orderable extracts the concrete value of a node that can take part in an
// ordering.
func orderable(e Expr) (any, bool) {
	switch n := e.(type) {
	case Const:
		return n.Value, true
	case TimeIndex:
		return int64(n.N), true
	}
	return nil, false
}

// Eq builds structural equality. Any pair of constants and time indices
// folds to a boolean; a time index equals an integer constant of the same
// value, as in Lt.
func Eq(a, b any) Expr {
	ae, be := Lift(a), Lift(b)
	switch x := ae.(type) {
	case Const:
		switch y := be.(type) {
		case Const:
			return Bool(valuesEqual(x.Value, y.Value))
		case TimeIndex:
			return Bool(valuesEqual(x.Value, int64(y.N)))
		}
	case TimeIndex:
		switch y := be.(type) {
		case TimeIndex:
			return Bool(x.N == y.N)
		case Const:
			return Bool(valuesEqual(int64(x.N), y.Value))
		}
	}
	return EqualExpr{A: ae, B: be}
}

// Index builds x[key]. Two constants fold to the looked-up component; an
// absent key or position is a *LookupError, never false.
func Index(x, key any) (Expr, error) {
	xe, ke := Lift(x), Lift(key)
	xc, xok := xe.(Const)
	kc, kok := ke.(Const)
	if xok && kok {
		v, err := lookup(xc.Value, kc.Value)
		if err != nil {
			return nil, err
		}
		return Const{Value: v}, nil
	}
	return IndexExpr{X: xe, Key: ke}, nil
}

// Not builds boolean negation with double-negation elimination. A
// non-boolean constant is left unfolded.
func Not(x any) Expr {
	xe := Lift(x)
	switch n := xe.(type) {
	case Const:
		if b, ok := n.Value.(bool); ok {
			return Bool(!b)
		}
	case NotExpr:
		return n.X
	}
	return NotExpr{X: xe}
}

// And builds a conjunction. A false operand yields false, true operands
// are dropped, nested conjunctions are flattened, no operands yields true
// and a single operand is returned as is.
func And(args ...any) Expr {
	kept := make([]Expr, 0, len(args))
	for _, arg := range args {
		ae := Lift(arg)
		switch n := ae.(type) {
		case Const:
			if b, ok := n.Value.(bool); ok {
				if !b {
					return False
				}
				continue
			}
		case AndExpr:
			kept = append(kept, n.Args...)
			continue
		}
		kept = append(kept, ae)
	}
	switch len(kept) {
	case 0:
		return True
	case 1:
		return kept[0]
	}
	return AndExpr{Args: kept}
}

// Either builds a disjunction as not(and(not a, not b)).
func Either(a, b any) Expr {
	return Not(And(Not(a), Not(b)))
}

// IfThenElse builds (c and t) or (not c and f).
func IfThenElse(c, t, f any) Expr {
	ce := Lift(c)
	return Either(And(ce, t), And(Not(ce), f))
}

// Exists binds v over body.
func Exists(v *Variable, body any) ExistsExpr {
	return ExistsExpr{Var: v, Body: Lift(body)}
}

// Received starts a predicate for a call to method. Time and arguments are
// attached with At and With.
func Received(method string) ReceivedExpr {
	return ReceivedExpr{Method: method}
}
