package speclogic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setLog() *Log {
	return NewLog(
		Call{Method: "set", Args: []any{"foo", "bar"}},
		Call{Method: "set", Args: []any{"foo", 5}},
	)
}

func mustReceived(t *testing.T, method string, at any, args ...any) ReceivedExpr {
	t.Helper()
	r := Received(method)
	var err error
	if at != nil {
		r, err = r.At(at)
		require.NoError(t, err)
	}
	if args != nil {
		r, err = r.With(args...)
		require.NoError(t, err)
	}
	return r
}

func TestEvaluateReceivedMatching(t *testing.T) {
	t.Parallel()
	log := setLog()

	tests := []struct {
		name string
		expr Expr
		want Expr
	}{
		{"matching call", mustReceived(t, "set", TimeIndex{N: 1}, "foo", 5), True},
		{"argument mismatch", mustReceived(t, "set", TimeIndex{N: 0}, "foo", 5), False},
		{"method mismatch", mustReceived(t, "del", TimeIndex{N: 0}), False},
		{"arity mismatch", mustReceived(t, "set", TimeIndex{N: 0}, "foo"), False},
		{"any arguments", mustReceived(t, "set", TimeIndex{N: 0}), True},
		{"beyond the log", mustReceived(t, "set", TimeIndex{N: 2}, "foo", 5), False},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, log)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateReceivedWithoutTimeIsUndecided(t *testing.T) {
	t.Parallel()

	r := mustReceived(t, "set", nil, "foo", 5)
	got, err := Evaluate(r, setLog())
	require.NoError(t, err)
	assert.Equal(t, Expr(r), got)

	tv := NewVariable("t")
	require.NoError(t, tv.AssertTime())
	pending := mustReceived(t, "set", tv, "foo", 5)
	got, err = Evaluate(pending, setLog())
	require.NoError(t, err)
	assert.Equal(t, Expr(pending), got)
}

func TestEvaluateReceivedLeavesValueVariable(t *testing.T) {
	t.Parallel()

	v := NewVariable("v")
	got, err := Evaluate(mustReceived(t, "set", TimeIndex{N: 1}, "foo", v), setLog())
	require.NoError(t, err)
	assert.Equal(t, EqualExpr{A: Const{Value: int64(5)}, B: v}, got)
}

func TestEvaluateFinalNodes(t *testing.T) {
	t.Parallel()

	v := NewVariable("x")
	for _, e := range []Expr{Const{Value: "a"}, TimeIndex{N: 7}, v} {
		got, err := Evaluate(e, setLog())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
}

func TestEvaluateTimeExists(t *testing.T) {
	t.Parallel()

	tv := NewVariable("t")
	e := Exists(tv, mustReceived(t, "set", tv, "foo", 5))

	got, err := Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, True, got)

	missing := NewVariable("t")
	e = Exists(missing, mustReceived(t, "del", missing, "foo"))
	got, err = Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, False, got)
}

func TestEvaluateTimeExistsEmptyLog(t *testing.T) {
	t.Parallel()

	tv := NewVariable("t")
	require.NoError(t, tv.AssertTime())
	e := Exists(tv, False)

	got, err := Evaluate(e, NewLog())
	require.NoError(t, err)
	assert.Equal(t, False, got)

	lt, err := Lt(tv, 100)
	require.NoError(t, err)
	got, err = Evaluate(Exists(tv, lt), setLog().Snapshot(0))
	require.NoError(t, err)
	assert.Equal(t, False, got)
}

func TestEvaluateTimeExistsWitnessIsMonotone(t *testing.T) {
	t.Parallel()

	tv := NewVariable("t")
	e := Exists(tv, mustReceived(t, "set", tv, "foo", "bar"))

	log := NewLog()
	got, err := Evaluate(e, log)
	require.NoError(t, err)
	assert.Equal(t, False, got)

	log.Append(Call{Method: "set", Args: []any{"foo", "bar"}})
	for range 5 {
		got, err = Evaluate(e, log)
		require.NoError(t, err)
		assert.Equal(t, True, got, "at log length %d", log.Len())
		log.Append(Call{Method: "del", Args: []any{"foo"}})
	}
}

func TestEvaluateTimeExistsFalseIsProvisional(t *testing.T) {
	t.Parallel()

	tv := NewVariable("t")
	e := Exists(tv, mustReceived(t, "del", tv, "foo"))

	log := setLog()
	got, err := Evaluate(e, log)
	require.NoError(t, err)
	assert.Equal(t, False, got)

	log.Append(Call{Method: "del", Args: []any{"foo"}})
	got, err = Evaluate(e, log)
	require.NoError(t, err)
	assert.Equal(t, True, got)
}

func TestEvaluateTimeExistsMixedIsUndecided(t *testing.T) {
	t.Parallel()

	tv, v := NewVariable("t"), NewVariable("v")
	// the second set matches only once v is known
	body := And(Not(Eq(tv, TimeIndex{N: 0})), mustReceived(t, "set", tv, "foo", v))
	e := Exists(tv, body)

	got, err := Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, Expr(e), got)
}

func TestEvaluateValueExistsIsUndecided(t *testing.T) {
	t.Parallel()

	v := NewVariable("v")
	e := Exists(v, mustReceived(t, "set", nil, "foo", v))

	got, err := Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, Expr(e), got)

	unpinned := NewVariable("v")
	e = Exists(unpinned, Not(mustReceived(t, "get", TimeIndex{N: 0}, unpinned)))
	got, err = Evaluate(e, NewLog(Call{Method: "get", Args: []any{"foo"}}))
	require.NoError(t, err)
	assert.Equal(t, Expr(e), got)
}

func TestEvaluateValueExistsPinnedByEquality(t *testing.T) {
	t.Parallel()

	v := NewVariable("v")
	e := Exists(v, mustReceived(t, "set", TimeIndex{N: 1}, "foo", v))

	got, err := Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, True, got)
}

func TestEvaluateUntypedExistsFails(t *testing.T) {
	t.Parallel()

	v := NewVariable("v")
	_, err := Evaluate(Exists(v, True), setLog())
	require.Error(t, err)
	var ierr *InferenceError
	require.True(t, errors.As(err, &ierr))
	assert.Same(t, v, ierr.Var)
	assert.ErrorIs(t, err, ErrTypeInference)
}

func TestEvaluateAndShortCircuits(t *testing.T) {
	t.Parallel()

	v := NewVariable("v")
	e := And(mustReceived(t, "del", TimeIndex{N: 0}), Exists(v, True))

	// the untyped quantifier after a false conjunct is never reached
	got, err := Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, False, got)
}

func TestEvaluatorWithLogger(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(WithLogger(zaptest.NewLogger(t)))
	tv := NewVariable("t")
	got, err := ev.Eval(Exists(tv, mustReceived(t, "set", tv, "foo", 5)), setLog())
	require.NoError(t, err)
	assert.Equal(t, True, got)
}

func TestEvaluateValueExistsOverConstantBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body func(t *testing.T, v *Variable) Expr
		want Expr
	}{
		{
			name: "false",
			body: func(*testing.T, *Variable) Expr { return False },
			want: False,
		},
		{
			name: "true",
			body: func(*testing.T, *Variable) Expr { return True },
			want: True,
		},
		{
			name: "received method mismatch",
			body: func(t *testing.T, v *Variable) Expr { return mustReceived(t, "get", TimeIndex{N: 0}, "foo", v) },
			want: False,
		},
		{
			name: "received other key",
			body: func(t *testing.T, v *Variable) Expr { return mustReceived(t, "set", TimeIndex{N: 1}, "baz", v) },
			want: False,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewVariable("v")
			require.NoError(t, v.AssertValue())
			got, err := Evaluate(Exists(v, tt.body(t, v)), setLog())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateTimeExistsOverFalseValueQuantifiers(t *testing.T) {
	t.Parallel()

	// no set of baz in the log: every instance closes to false
	tv, v := NewVariable("t"), NewVariable("v")
	e := Exists(tv, Exists(v, mustReceived(t, "set", tv, "baz", v)))

	got, err := Evaluate(e, setLog())
	require.NoError(t, err)
	assert.Equal(t, False, got)
}

func TestEvaluateValueExistsOnePointRule(t *testing.T) {
	t.Parallel()

	v := NewVariable("v")
	require.NoError(t, v.AssertValue())

	got, err := Evaluate(Exists(v, Eq(v, 5)), NewLog())
	require.NoError(t, err)
	assert.Equal(t, True, got)

	lt, err := Lt(v, 3)
	require.NoError(t, err)
	got, err = Evaluate(Exists(v, And(Eq(v, 5), lt)), NewLog())
	require.NoError(t, err)
	assert.Equal(t, False, got)

	// an order constraint alone does not pin the variable
	e := Exists(v, lt)
	got, err = Evaluate(e, NewLog())
	require.NoError(t, err)
	assert.Equal(t, Expr(e), got)
}

func TestEvaluateValueExistsReportsUntypedInnerQuantifier(t *testing.T) {
	t.Parallel()

	w, u := NewVariable("w"), NewVariable("u")
	require.NoError(t, w.AssertValue())

	_, err := Evaluate(Exists(w, And(Eq(w, 1), Exists(u, True))), NewLog())
	assert.ErrorIs(t, err, ErrTypeInference)
}

func TestEvaluateReceivedAtSubstitutedInteger(t *testing.T) {
	t.Parallel()

	args := NewVariable("args")
	at, err := Index(args, 0)
	require.NoError(t, err)
	r := mustReceived(t, "set", at, "foo", 5)

	tests := []struct {
		name string
		time any
		want Expr
	}{
		{name: "matching call", time: 1, want: True},
		{name: "other call", time: 0, want: False},
		{name: "beyond the log", time: 9, want: False},
		{name: "negative", time: -1, want: False},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := Substitute(r, args, []any{tt.time})
			require.NoError(t, err)
			got, err := Evaluate(e, setLog())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
