package speclogic

import (
	"fmt"
	"sort"
)

// Behavior is a formula template checked against every call of Method.
// Args and Result are the reserved variables standing for the call's
// argument list and its result. The template is never modified; every
// check works on a freshly substituted copy.
type Behavior struct {
	Method  string
	Args    *Variable
	Result  *Variable
	Formula Expr
}

// Instantiate substitutes the actual result and then the actual argument
// list, the latter as an indexable constant.
func (b Behavior) Instantiate(args []any, result any) (Expr, error) {
	e, err := Substitute(b.Formula, b.Result, result)
	if err != nil {
		return nil, fmt.Errorf("substituting result of %s: %w", b.Method, err)
	}
	if args == nil {
		args = []any{}
	}
	e, err = Substitute(e, b.Args, args)
	if err != nil {
		return nil, fmt.Errorf("substituting arguments of %s: %w", b.Method, err)
	}
	return e, nil
}

// Check instantiates the behavior for one call and evaluates it against h,
// the history before that call. The returned error is non-nil only for a
// malformed formula; a formula that does not hold is reported through the
// Report's verdict.
func (b Behavior) Check(args []any, result any, h History) (Report, error) {
	return defaultEvaluator.Check(b, args, result, h)
}

// Check is Behavior.Check using ev.
func (ev *Evaluator) Check(b Behavior, args []any, result any, h History) (Report, error) {
	e, err := b.Instantiate(args, result)
	if err != nil {
		return Report{}, err
	}
	res, err := ev.Eval(e, h)
	if err != nil {
		return Report{}, fmt.Errorf("evaluating %s: %w", b.Method, err)
	}
	return Report{Verdict: VerdictOf(res), Residual: res}, nil
}

// Registry maps method names to behaviors. It is built once and read-only
// afterwards.
type Registry struct {
	behaviors map[string]Behavior
}

// NewRegistry builds a registry from behaviors. Two behaviors for the same
// method are rejected.
func NewRegistry(behaviors ...Behavior) (*Registry, error) {
	r := &Registry{behaviors: make(map[string]Behavior, len(behaviors))}
	for _, b := range behaviors {
		if _, dup := r.behaviors[b.Method]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBehavior, b.Method)
		}
		r.behaviors[b.Method] = b
	}
	return r, nil
}

// Lookup returns the behavior for method.
func (r *Registry) Lookup(method string) (Behavior, bool) {
	if r == nil {
		return Behavior{}, false
	}
	b, ok := r.behaviors[method]
	return b, ok
}

// Methods returns the methods with a behavior, sorted.
func (r *Registry) Methods() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.behaviors))
	for m := range r.behaviors {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
