// Package behave is the authoring surface for behaviors.
//
// A behavior is written once as a Go function over a Builder and the two
// reserved expressions for the call's arguments and result:
//
//	get := behave.MustDefine("get", func(b *behave.Builder, args, output speclogic.Expr) speclogic.Expr {
//		key := b.Index(args, 0)
//		return b.Exist(func(t *speclogic.Variable) speclogic.Expr {
//			return b.Received("set").At(t).With(key, output).Expr()
//		})
//	})
//
// Builder methods never return errors. The first authoring error (a
// variable used as both time and value, a failed constant lookup, an
// ordering of incomparable constants) is kept and returned by Define.
package behave

import (
	"fmt"

	"github.com/gnolang/specobj/internal/speclogic"
)

// Builder constructs formulas and remembers the first authoring error.
type Builder struct {
	err error
}

// Err returns the first error recorded by the builder.
func (b *Builder) Err() error { return b.err }

func (b *Builder) record(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Lit lifts a host value.
func (b *Builder) Lit(v any) speclogic.Expr {
	return speclogic.Lift(v)
}

// Eq builds x == y.
func (b *Builder) Eq(x, y any) speclogic.Expr {
	return speclogic.Eq(x, y)
}

// Lt builds x < y.
func (b *Builder) Lt(x, y any) speclogic.Expr {
	e, err := speclogic.Lt(x, y)
	if err != nil {
		b.record(err)
		return speclogic.False
	}
	return e
}

// Gt builds x > y.
func (b *Builder) Gt(x, y any) speclogic.Expr {
	return b.Lt(y, x)
}

// Not builds !x.
func (b *Builder) Not(x any) speclogic.Expr {
	return speclogic.Not(x)
}

// Index builds x[key].
func (b *Builder) Index(x, key any) speclogic.Expr {
	e, err := speclogic.Index(x, key)
	if err != nil {
		b.record(err)
		return speclogic.False
	}
	return e
}

// Both builds x and y.
func (b *Builder) Both(x, y any) speclogic.Expr {
	return speclogic.And(x, y)
}

// All builds the conjunction of args.
func (b *Builder) All(args ...any) speclogic.Expr {
	return speclogic.And(args...)
}

// Either builds x or y.
func (b *Builder) Either(x, y any) speclogic.Expr {
	return speclogic.Either(x, y)
}

// Ite builds if c then t else f.
func (b *Builder) Ite(c, t, f any) speclogic.Expr {
	return speclogic.IfThenElse(c, t, f)
}

// Exist allocates a fresh variable, builds the body with it and binds it.
func (b *Builder) Exist(body func(v *speclogic.Variable) speclogic.Expr) speclogic.Expr {
	return b.ExistNamed("", body)
}

// ExistNamed is Exist with a variable name used when rendering.
func (b *Builder) ExistNamed(name string, body func(v *speclogic.Variable) speclogic.Expr) speclogic.Expr {
	v := speclogic.NewVariable(name)
	return speclogic.Exists(v, body(v))
}

// Received starts a received predicate for method.
func (b *Builder) Received(method string) *Call {
	return &Call{b: b, expr: speclogic.Received(method)}
}

// Call incrementally builds a received predicate.
type Call struct {
	b    *Builder
	expr speclogic.ReceivedExpr
}

// At pins the time of the call.
func (c *Call) At(t any) *Call {
	e, err := c.expr.At(t)
	c.b.record(err)
	return &Call{b: c.b, expr: e}
}

// With fixes the arguments of the call.
func (c *Call) With(args ...any) *Call {
	e, err := c.expr.With(args...)
	c.b.record(err)
	return &Call{b: c.b, expr: e}
}

// Expr returns the predicate.
func (c *Call) Expr() speclogic.Expr {
	return c.expr
}

// Func builds the formula of a behavior from its reserved arguments and
// result expressions.
type Func func(b *Builder, args, output speclogic.Expr) speclogic.Expr

// Define builds the behavior for method.
func Define(method string, fn Func) (speclogic.Behavior, error) {
	args := speclogic.NewVariable("args")
	output := speclogic.NewVariable("output")

	b := &Builder{}
	formula := fn(b, args, output)
	if err := b.Err(); err != nil {
		return speclogic.Behavior{}, fmt.Errorf("defining behavior %s: %w", method, err)
	}
	if formula == nil {
		formula = speclogic.True
	}

	return speclogic.Behavior{
		Method:  method,
		Args:    args,
		Result:  output,
		Formula: formula,
	}, nil
}

// MustDefine is like Define but panics on an authoring error.
func MustDefine(method string, fn Func) speclogic.Behavior {
	bh, err := Define(method, fn)
	if err != nil {
		panic(err)
	}
	return bh
}
