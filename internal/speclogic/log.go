package speclogic

// Call is one completed invocation of a monitored object.
type Call struct {
	Method string
	Args   []any
	Result any
}

// History is a read-only ordered sequence of calls, indexed by TimeIndex.
type History interface {
	Len() int
	Call(i int) Call
}

// Log is an append-only call log. The zero value is an empty log.
type Log struct {
	calls []Call
}

// NewLog returns a log holding the given calls in order.
func NewLog(calls ...Call) *Log {
	l := &Log{}
	for _, c := range calls {
		l.Append(c)
	}
	return l
}

// Append records a call at index Len(). The argument slice is copied.
func (l *Log) Append(c Call) {
	args := make([]any, len(c.Args))
	copy(args, c.Args)
	c.Args = args
	l.calls = append(l.calls, c)
}

// Len returns the number of recorded calls.
func (l *Log) Len() int { return len(l.calls) }

// Call returns the call recorded at index i.
func (l *Log) Call(i int) Call { return l.calls[i] }

// Calls returns a copy of the recorded calls.
func (l *Log) Calls() []Call {
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// Snapshot returns a view of the first n calls. Later appends to l are not
// visible through it.
func (l *Log) Snapshot(n int) History {
	if n > len(l.calls) {
		n = len(l.calls)
	}
	if n < 0 {
		n = 0
	}
	return logView(l.calls[:n:n])
}

type logView []Call

func (v logView) Len() int        { return len(v) }
func (v logView) Call(i int) Call { return v[i] }
