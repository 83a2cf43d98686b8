package speclogic

import (
	"math"

	"go.uber.org/zap"
)

// Evaluator reduces formulas against a call history.
type Evaluator struct {
	logger *zap.Logger
}

// EvalOption configures an Evaluator.
type EvalOption func(*Evaluator)

// WithLogger traces quantifier searches at debug level.
func WithLogger(logger *zap.Logger) EvalOption {
	return func(ev *Evaluator) {
		if logger != nil {
			ev.logger = logger
		}
	}
}

// NewEvaluator creates a new evaluator with the given options.
func NewEvaluator(opts ...EvalOption) *Evaluator {
	ev := &Evaluator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

var defaultEvaluator = NewEvaluator()

// Evaluate reduces e against h with the default evaluator.
func Evaluate(e Expr, h History) (Expr, error) {
	return defaultEvaluator.Eval(e, h)
}

// Eval reduces e to the most specific form decidable from h. Free variables
// are never resolved. A false obtained from a time quantifier holds for
// this history only; a longer history may contain a witness.
func (ev *Evaluator) Eval(e Expr, h History) (Expr, error) {
	switch n := e.(type) {
	case Const, TimeIndex, *Variable:
		return e, nil

	case LessExpr:
		a, b, err := ev.evalPair(n.A, n.B, h)
		if err != nil {
			return nil, err
		}
		return Lt(a, b)

	case EqualExpr:
		a, b, err := ev.evalPair(n.A, n.B, h)
		if err != nil {
			return nil, err
		}
		return Eq(a, b), nil

	case IndexExpr:
		x, k, err := ev.evalPair(n.X, n.Key, h)
		if err != nil {
			return nil, err
		}
		return Index(x, k)

	case NotExpr:
		x, err := ev.Eval(n.X, h)
		if err != nil {
			return nil, err
		}
		return Not(x), nil

	case AndExpr:
		args := make([]any, 0, len(n.Args))
		for _, arg := range n.Args {
			ae, err := ev.Eval(arg, h)
			if err != nil {
				return nil, err
			}
			if IsFalse(ae) {
				return False, nil
			}
			args = append(args, ae)
		}
		return And(args...), nil

	case ExistsExpr:
		return ev.evalExists(n, h)

	case ReceivedExpr:
		return ev.evalReceived(n, h)
	}
	return e, nil
}

func (ev *Evaluator) evalPair(a, b Expr, h History) (Expr, Expr, error) {
	ea, err := ev.Eval(a, h)
	if err != nil {
		return nil, nil, err
	}
	eb, err := ev.Eval(b, h)
	if err != nil {
		return nil, nil, err
	}
	return ea, eb, nil
}

func (ev *Evaluator) evalExists(n ExistsExpr, h History) (Expr, error) {
	if n.Var == nil {
		return nil, &InferenceError{}
	}

	switch n.Var.role {
	case RoleValue:
		return ev.evalValueExists(n, h)
	case RoleTime:
	default:
		return nil, &InferenceError{Var: n.Var}
	}

	size := h.Len()
	allFalse := true
	for t := range size {
		inst, err := substitute(n.Body, n.Var, TimeIndex{N: t})
		if err != nil {
			return nil, err
		}
		res, err := ev.Eval(inst, h)
		if err != nil {
			return nil, err
		}
		if IsTrue(res) {
			ev.logger.Debug("time quantifier witnessed",
				zap.Stringer("var", n.Var),
				zap.Int("witness", t),
				zap.Int("domain", size))
			return True, nil
		}
		if !IsFalse(res) {
			allFalse = false
		}
	}

	if allFalse {
		return False, nil
	}
	ev.logger.Debug("time quantifier undecided",
		zap.Stringer("var", n.Var),
		zap.Int("domain", size))
	return n, nil
}

// evalValueExists never enumerates the value domain. The body is evaluated
// first; a boolean body no longer depends on the variable and is the
// result. Otherwise the quantifier is closed only when the body pins the
// variable to a constant with an equality conjunct: exists v. (v == c and P)
// reduces to P[v := c]. In every other case the original node is returned.
func (ev *Evaluator) evalValueExists(n ExistsExpr, h History) (Expr, error) {
	body, err := ev.Eval(n.Body, h)
	if err != nil {
		return nil, err
	}
	if IsTrue(body) || IsFalse(body) {
		return body, nil
	}
	c, ok := pinnedValue(body, n.Var)
	if !ok {
		return n, nil
	}
	inst, err := substitute(body, n.Var, c)
	if err != nil {
		return nil, err
	}
	res, err := ev.Eval(inst, h)
	if err != nil {
		return nil, err
	}
	ev.logger.Debug("value quantifier pinned",
		zap.Stringer("var", n.Var),
		zap.Stringer("value", c))
	return res, nil
}

// pinnedValue finds a conjunct of e of the form v == c or c == v.
func pinnedValue(e Expr, v *Variable) (Const, bool) {
	switch n := e.(type) {
	case EqualExpr:
		if x, ok := n.A.(*Variable); ok && x.id == v.id {
			if c, isConst := n.B.(Const); isConst {
				return c, true
			}
		}
		if x, ok := n.B.(*Variable); ok && x.id == v.id {
			if c, isConst := n.A.(Const); isConst {
				return c, true
			}
		}
	case AndExpr:
		for _, arg := range n.Args {
			if c, ok := pinnedValue(arg, v); ok {
				return c, true
			}
		}
	}
	return Const{}, false
}

func (ev *Evaluator) evalReceived(n ReceivedExpr, h History) (Expr, error) {
	if n.Time == nil {
		return n, nil
	}
	te, err := ev.Eval(n.Time, h)
	if err != nil {
		return nil, err
	}
	t, ok := asTimeIndex(te)
	if !ok {
		return n, nil
	}
	if t.N < 0 || t.N >= h.Len() {
		return False, nil
	}

	call := h.Call(t.N)
	if call.Method != n.Method {
		return False, nil
	}
	if !n.HasArgs {
		return True, nil
	}
	if len(call.Args) != len(n.Args) {
		return False, nil
	}

	eqs := make([]any, len(n.Args))
	for i, arg := range n.Args {
		ae, err := ev.Eval(arg, h)
		if err != nil {
			return nil, err
		}
		eqs[i] = Eq(Lift(call.Args[i]), ae)
	}
	return And(eqs...), nil
}

// asTimeIndex accepts a time index or an integer constant, the latter
// typically looked up from the call's arguments after substitution.
func asTimeIndex(e Expr) (TimeIndex, bool) {
	switch n := e.(type) {
	case TimeIndex:
		return n, true
	case Const:
		if i, ok := n.Value.(int64); ok {
			if i < 0 || i > math.MaxInt32 {
				return TimeIndex{N: -1}, true
			}
			return TimeIndex{N: int(i)}, true
		}
	}
	return TimeIndex{}, false
}

// IsTrue reports whether e is the constant true.
func IsTrue(e Expr) bool {
	c, ok := e.(Const)
	if !ok {
		return false
	}
	b, isBool := c.Value.(bool)
	return isBool && b
}

// IsFalse reports whether e is the constant false.
func IsFalse(e Expr) bool {
	c, ok := e.(Const)
	if !ok {
		return false
	}
	b, isBool := c.Value.(bool)
	return isBool && !b
}
