package speclogic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiftNormalizesIntegers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Const{Value: int64(5)}, Lift(5))
	assert.Equal(t, Const{Value: int64(5)}, Lift(uint8(5)))
	assert.Equal(t, Const{Value: []any{"foo", int64(5)}}, Lift([]any{"foo", int32(5)}))
	assert.Equal(t, Const{Value: []any{int64(1), int64(2)}}, Lift([]int{1, 2}))
	assert.Equal(t, Const{Value: nil}, Lift(nil))

	v := NewVariable("x")
	assert.Same(t, v, Lift(v))
}

func TestLtFolding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b any
		want Expr
	}{
		{"ints", 1, 2, True},
		{"ints reversed", 2, 1, False},
		{"equal ints", 3, 3, False},
		{"int and float", 1, 1.5, True},
		{"strings", "a", "b", True},
		{"time indices", TimeIndex{N: 0}, TimeIndex{N: 1}, True},
		{"time and int", TimeIndex{N: 4}, 2, False},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lt(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLtKeepsSymbolicOperands(t *testing.T) {
	t.Parallel()

	v := NewVariable("t")
	got, err := Lt(v, TimeIndex{N: 1})
	require.NoError(t, err)
	assert.Equal(t, LessExpr{A: v, B: TimeIndex{N: 1}}, got)

	gt, err := Gt(v, TimeIndex{N: 1})
	require.NoError(t, err)
	assert.Equal(t, LessExpr{A: TimeIndex{N: 1}, B: v}, gt)
}

func TestLtIncomparable(t *testing.T) {
	t.Parallel()

	_, err := Lt("a", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomparable))

	_, err = Lt(true, false)
	assert.ErrorIs(t, err, ErrIncomparable)
}

func TestEqFolding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, True, Eq(5, int64(5)))
	assert.Equal(t, False, Eq(5, "5"))
	assert.Equal(t, True, Eq(nil, nil))
	assert.Equal(t, False, Eq(5, nil))
	assert.Equal(t, True, Eq([]any{"foo", 1}, []any{"foo", 1}))
	assert.Equal(t, True, Eq(TimeIndex{N: 2}, TimeIndex{N: 2}))
	assert.Equal(t, True, Eq(TimeIndex{N: 2}, 2))
	assert.Equal(t, True, Eq(int64(3), TimeIndex{N: 3}))
	assert.Equal(t, False, Eq(TimeIndex{N: 2}, 3))
	assert.Equal(t, False, Eq(TimeIndex{N: 2}, "2"))

	v := NewVariable("")
	assert.Equal(t, EqualExpr{A: v, B: Const{Value: int64(1)}}, Eq(v, 1))
}

func TestIndexFolding(t *testing.T) {
	t.Parallel()

	got, err := Index([]any{"foo", 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, Const{Value: int64(5)}, got)

	got, err = Index(map[string]any{"k": "v"}, "k")
	require.NoError(t, err)
	assert.Equal(t, Const{Value: "v"}, got)

	v := NewVariable("args")
	got, err = Index(v, 0)
	require.NoError(t, err)
	assert.Equal(t, IndexExpr{X: v, Key: Const{Value: int64(0)}}, got)
}

func TestIndexLookupFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x    any
		key  any
	}{
		{"out of range", []any{"foo"}, 1},
		{"negative", []any{"foo"}, -1},
		{"non integer position", []any{"foo"}, "0"},
		{"missing key", map[string]any{"k": 1}, "j"},
		{"not indexable", 42, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Index(tt.x, tt.key)
			require.Error(t, err)
			var lerr *LookupError
			assert.True(t, errors.As(err, &lerr))
			assert.ErrorIs(t, err, ErrLookup)
		})
	}
}

func TestNot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, False, Not(true))
	assert.Equal(t, True, Not(False))

	r := Received("set")
	assert.Equal(t, NotExpr{X: r}, Not(r))
	assert.Equal(t, r, Not(Not(r)))

	// non-boolean constants stay unfolded
	assert.Equal(t, NotExpr{X: Const{Value: int64(1)}}, Not(1))
}

func TestDoubleNegation(t *testing.T) {
	t.Parallel()

	v := NewVariable("x")
	exprs := []Expr{
		True,
		False,
		v,
		Eq(v, 1),
		And(Eq(v, 1), Eq(v, 2)),
		Exists(NewVariable("t"), Received("set")),
	}
	for _, e := range exprs {
		assert.Equal(t, e, Not(Not(e)), e.String())
	}
}

func TestAnd(t *testing.T) {
	t.Parallel()

	v := NewVariable("x")
	a, b := Eq(v, 1), Eq(v, 2)

	assert.Equal(t, True, And())
	assert.Equal(t, a, And(a))
	assert.Equal(t, a, And(true, a, True))
	assert.Equal(t, AndExpr{Args: []Expr{a, b}}, And(a, b))

	for _, args := range [][]any{
		{false},
		{false, a},
		{a, false},
		{a, b, False, a},
		{true, a, false},
	} {
		assert.Equal(t, False, And(args...))
	}
}

func TestAndFlattensNested(t *testing.T) {
	t.Parallel()

	v := NewVariable("x")
	a, b, c := Eq(v, 1), Eq(v, 2), Eq(v, 3)
	assert.Equal(t, AndExpr{Args: []Expr{a, b, c}}, And(And(a, b), c))
}

func TestEitherAndIfThenElse(t *testing.T) {
	t.Parallel()

	v := NewVariable("x")
	a := Eq(v, 1)

	assert.Equal(t, True, Either(true, a))
	assert.Equal(t, True, Either(a, true))
	assert.Equal(t, a, Either(false, a))
	assert.Equal(t, False, Either(false, false))

	b := Eq(v, 2)
	assert.Equal(t, a, IfThenElse(true, a, b))
	assert.Equal(t, b, IfThenElse(false, a, b))
}

func TestReceivedRoles(t *testing.T) {
	t.Parallel()

	tv := NewVariable("t")
	r, err := Received("set").At(tv)
	require.NoError(t, err)
	assert.Equal(t, RoleTime, tv.Role())

	_, err = r.With(tv)
	require.Error(t, err)
	var rerr *RoleConflictError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, RoleTime, rerr.Have)
	assert.Equal(t, RoleValue, rerr.Want)
	assert.ErrorIs(t, err, ErrRoleConflict)

	vv := NewVariable("v")
	r, err = r.With("foo", vv)
	require.NoError(t, err)
	assert.Equal(t, RoleValue, vv.Role())
	assert.True(t, r.HasArgs)
	assert.Len(t, r.Args, 2)

	_, err = Received("del").At(vv)
	assert.ErrorIs(t, err, ErrRoleConflict)
}

func TestReceivedAtIntegerIsTimeIndex(t *testing.T) {
	t.Parallel()

	r, err := Received("set").At(3)
	require.NoError(t, err)
	assert.Equal(t, TimeIndex{N: 3}, r.Time)
}

func TestLiftMapWithArrayKeys(t *testing.T) {
	t.Parallel()

	m := map[[2]int]string{{1, 2}: "a", {3, 4}: "b"}

	var lifted Expr
	require.NotPanics(t, func() { lifted = Lift(m) })
	assert.Equal(t, True, Eq(lifted, map[[2]int]string{{3, 4}: "b", {1, 2}: "a"}))

	got, err := Index(lifted, [2]int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, Const{Value: "b"}, got)

	got, err = Index(lifted, []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, Const{Value: "a"}, got)

	_, err = Index(lifted, [2]int{5, 6})
	assert.ErrorIs(t, err, ErrLookup)
}
