package speclogic

// Verdict is the outcome of checking a behavior against one call.
type Verdict int

const (
	_ Verdict = iota
	// Holds indicates the formula decided to true.
	Holds
	// Violated indicates the formula decided to false.
	Violated
	// Undecided indicates the formula could not be reduced to a constant
	// boolean from the current log.
	Undecided
)

func (v Verdict) String() string {
	switch v {
	case Holds:
		return "holds"
	case Violated:
		return "violated"
	case Undecided:
		return "undecided"
	default:
		return "?"
	}
}

// VerdictOf classifies an evaluated formula.
func VerdictOf(e Expr) Verdict {
	switch {
	case IsTrue(e):
		return Holds
	case IsFalse(e):
		return Violated
	default:
		return Undecided
	}
}

// Report is the result of one behavior check.
type Report struct {
	Verdict  Verdict
	Residual Expr
}

// OK reports whether the behavior held.
func (r Report) OK() bool { return r.Verdict == Holds }
