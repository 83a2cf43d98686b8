package speclogic

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Expr represents a node of a behavior formula.
//
// The set of implementations is closed: Const, TimeIndex, *Variable,
// LessExpr, EqualExpr, IndexExpr, NotExpr, AndExpr, ExistsExpr and
// ReceivedExpr. Composite nodes should be built through the smart
// constructors (Lt, Eq, Index, Not, And, Exists, Received) rather than as
// struct literals, so constant operands are folded.
type Expr interface {
	isExpr()
	String() string
}

// Const is a literal host value. Values are normalized by Lift.
type Const struct {
	Value any
}

func (Const) isExpr() {}
func (c Const) String() string {
	return formatValue(c.Value)
}

// True and False are the boolean verdict constants.
var (
	True  = Const{Value: true}
	False = Const{Value: false}
)

// Bool lifts a Go bool into a boolean Const.
func Bool(b bool) Const {
	if b {
		return True
	}
	return False
}

// TimeIndex is a position in the call log.
type TimeIndex struct {
	N int
}

func (TimeIndex) isExpr() {}
func (t TimeIndex) String() string {
	return "t" + strconv.Itoa(t.N)
}

// Role is the position a Variable has been used in.
type Role int

const (
	RoleUnset Role = iota
	RoleTime
	RoleValue
)

func (r Role) String() string {
	switch r {
	case RoleUnset:
		return "unset"
	case RoleTime:
		return "time"
	case RoleValue:
		return "value"
	default:
		return "?"
	}
}

var nextVariableID atomic.Uint64

// Variable is a placeholder bound by substitution or by an Exists.
// Identity is the id assigned at creation; two variables are the same
// variable iff their ids are equal.
//
// The role is fixed by the first use of the variable as a time or value
// operand, which happens while a formula is authored. It is read-only once
// the formula is complete.
type Variable struct {
	id   uint64
	name string
	role Role
}

// NewVariable allocates a variable with a fresh identity. The name is only
// used for rendering and may be empty.
func NewVariable(name string) *Variable {
	return &Variable{id: nextVariableID.Add(1), name: name}
}

func (*Variable) isExpr() {}
func (v *Variable) String() string {
	id := strconv.FormatUint(v.id, 10)
	if v.name == "" {
		return "v" + id
	}
	return v.name + "_" + id
}

// ID returns the unique identity of the variable.
func (v *Variable) ID() uint64 { return v.id }

// Name returns the debug name of the variable.
func (v *Variable) Name() string { return v.name }

// Role returns the role the variable has been asserted to play.
func (v *Variable) Role() Role { return v.role }

// AssertTime marks the variable as standing for a time index.
func (v *Variable) AssertTime() error {
	return v.assert(RoleTime)
}

// AssertValue marks the variable as standing for a host value.
func (v *Variable) AssertValue() error {
	return v.assert(RoleValue)
}

func (v *Variable) assert(role Role) error {
	if v.role != RoleUnset && v.role != role {
		return &RoleConflictError{Var: v, Have: v.role, Want: role}
	}
	v.role = role
	return nil
}

// LessExpr is the ordering a < b.
type LessExpr struct {
	A, B Expr
}

func (LessExpr) isExpr() {}
func (e LessExpr) String() string {
	return "(< " + e.A.String() + " " + e.B.String() + ")"
}

// EqualExpr is structural equality a == b.
type EqualExpr struct {
	A, B Expr
}

func (EqualExpr) isExpr() {}
func (e EqualExpr) String() string {
	return "(== " + e.A.String() + " " + e.B.String() + ")"
}

// IndexExpr is component Key of X.
type IndexExpr struct {
	X, Key Expr
}

func (IndexExpr) isExpr() {}
func (e IndexExpr) String() string {
	return e.X.String() + "[" + e.Key.String() + "]"
}

// NotExpr is boolean negation.
type NotExpr struct {
	X Expr
}

func (NotExpr) isExpr() {}
func (e NotExpr) String() string {
	return "(not " + e.X.String() + ")"
}

// AndExpr is a conjunction of two or more operands.
type AndExpr struct {
	Args []Expr
}

func (AndExpr) isExpr() {}
func (e AndExpr) String() string {
	return "(and " + joinExprs(e.Args) + ")"
}

// ExistsExpr quantifies Var existentially over Body.
type ExistsExpr struct {
	Var  *Variable
	Body Expr
}

func (ExistsExpr) isExpr() {}
func (e ExistsExpr) String() string {
	return "(exists " + e.Var.String() + " " + e.Body.String() + ")"
}

// ReceivedExpr states that a call to Method occurred, at Time when it is
// set and with Args when HasArgs is true. A nil Time leaves the predicate
// undecided; HasArgs false matches any arguments.
type ReceivedExpr struct {
	Method  string
	Time    Expr
	Args    []Expr
	HasArgs bool
}

func (ReceivedExpr) isExpr() {}
func (e ReceivedExpr) String() string {
	var sb strings.Builder
	sb.WriteString("(received ")
	sb.WriteString(strconv.Quote(e.Method))
	sb.WriteString(" ")
	if e.Time == nil {
		sb.WriteString("nil")
	} else {
		sb.WriteString(e.Time.String())
	}
	if e.HasArgs {
		sb.WriteString(" (")
		sb.WriteString(joinExprs(e.Args))
		sb.WriteString(")")
	}
	sb.WriteString(")")
	return sb.String()
}

// At pins the time of the call. An integer constant is taken as a time
// index; a variable is asserted to play the time role.
func (e ReceivedExpr) At(t any) (ReceivedExpr, error) {
	te := Lift(t)
	if c, ok := te.(Const); ok {
		if n, isInt := c.Value.(int64); isInt && n >= 0 {
			te = TimeIndex{N: int(n)}
		}
	}
	if v, ok := te.(*Variable); ok {
		if err := v.AssertTime(); err != nil {
			return e, err
		}
	}
	e.Time = te
	return e, nil
}

// With fixes the positional arguments of the call. Variables among them are
// asserted to play the value role.
func (e ReceivedExpr) With(args ...any) (ReceivedExpr, error) {
	exprs := make([]Expr, len(args))
	for i, arg := range args {
		ae := Lift(arg)
		if v, ok := ae.(*Variable); ok {
			if err := v.AssertValue(); err != nil {
				return e, err
			}
		}
		exprs[i] = ae
	}
	e.Args = exprs
	e.HasArgs = true
	return e, nil
}

// Lift turns a host value into an expression. Expressions are returned
// unchanged; anything else becomes a normalized Const.
func Lift(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Const{Value: normalize(v)}
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
