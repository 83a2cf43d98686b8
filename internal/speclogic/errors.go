package speclogic

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRoleConflict reports a variable used both as a time and as a value.
	ErrRoleConflict = errors.New("variable used as both time and value")
	// ErrTypeInference reports an Exists whose variable never got a role.
	ErrTypeInference = errors.New("cannot infer the role of quantified variable")
	// ErrCapture reports a substitution targeting a variable bound by an
	// enclosing Exists.
	ErrCapture = errors.New("substitution targets a bound variable")
	// ErrLookup reports an index into a constant that lacks the component.
	ErrLookup = errors.New("index lookup failed")
	// ErrIncomparable reports an ordering over values with no natural order.
	ErrIncomparable = errors.New("values cannot be ordered")
	// ErrViolation reports a behavior that did not decide to true.
	ErrViolation = errors.New("behavior violated")
	// ErrDuplicateBehavior reports two behaviors registered for one method.
	ErrDuplicateBehavior = errors.New("duplicate behavior")
)

// RoleConflictError is returned when a variable already asserted to one
// role is used in the other.
type RoleConflictError struct {
	Var  *Variable
	Have Role
	Want Role
}

func (e *RoleConflictError) Error() string {
	return fmt.Sprintf("%s: %s is a %s variable, used as %s", ErrRoleConflict, e.Var, e.Have, e.Want)
}

func (e *RoleConflictError) Unwrap() error { return ErrRoleConflict }

// InferenceError is returned when evaluation reaches an Exists whose
// variable is neither a time nor a value variable.
type InferenceError struct {
	Var *Variable
}

func (e *InferenceError) Error() string {
	if e.Var == nil {
		return ErrTypeInference.Error() + ": nil variable"
	}
	return fmt.Sprintf("%s: %s", ErrTypeInference, e.Var)
}

func (e *InferenceError) Unwrap() error { return ErrTypeInference }

// CaptureError is returned when Substitute would replace a variable inside
// the Exists that binds it.
type CaptureError struct {
	Var *Variable
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCapture, e.Var)
}

func (e *CaptureError) Unwrap() error { return ErrCapture }

// LookupError is returned when Index is applied to a constant lacking the
// requested key or position.
type LookupError struct {
	Value  any
	Key    any
	Reason string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s[%s]: %s", ErrLookup, formatValue(e.Value), formatValue(e.Key), e.Reason)
}

func (e *LookupError) Unwrap() error { return ErrLookup }

// CompareError is returned when Lt is applied to two concrete values that
// have no natural order.
type CompareError struct {
	A, B any
}

func (e *CompareError) Error() string {
	return fmt.Sprintf("%s: %s < %s", ErrIncomparable, formatValue(e.A), formatValue(e.B))
}

func (e *CompareError) Unwrap() error { return ErrIncomparable }

// ViolationError reports a call whose behavior did not decide to true.
// Residual is the formula the check reduced to.
type ViolationError struct {
	Method   string
	Index    int
	Args     []any
	Result   any
	Verdict  Verdict
	Residual Expr
}

func (e *ViolationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s%s -> %s at call %d (%s)",
		ErrViolation, e.Method, formatArgs(e.Args), formatValue(normalize(e.Result)), e.Index, e.Verdict)
	if e.Residual != nil {
		sb.WriteString("\n")
		sb.WriteString(Pretty(e.Residual))
	}
	return sb.String()
}

func (e *ViolationError) Unwrap() error { return ErrViolation }

// IsViolation reports whether err is a behavior violation, as opposed to a
// malformed formula or a failure of the monitored object.
func IsViolation(err error) bool {
	return errors.Is(err, ErrViolation)
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(normalize(arg))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
