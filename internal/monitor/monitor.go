// Package monitor wraps an object and checks every call against its
// behaviors before recording it.
package monitor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gnolang/specobj/internal/metrics"
	"github.com/gnolang/specobj/internal/speclogic"
)

// ErrHalted is returned by Invoke after a violation under PolicyHalt or
// after a malformed behavior.
var ErrHalted = errors.New("monitor halted after behavior violation")

// Target is the monitored object.
type Target interface {
	Invoke(method string, args []any) (any, error)
}

// Policy decides what happens after a violation.
type Policy int

const (
	_ Policy = iota
	// PolicyHalt drops the violating call from the log and rejects every
	// later call.
	PolicyHalt
	// PolicyContinue records the violating call and keeps going.
	PolicyContinue
)

func (p Policy) String() string {
	switch p {
	case PolicyHalt:
		return "halt"
	case PolicyContinue:
		return "continue"
	default:
		return "?"
	}
}

// ParsePolicy parses "halt" or "continue".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "halt", "":
		return PolicyHalt, nil
	case "continue":
		return PolicyContinue, nil
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

// Monitor is a proxy around a Target. Calls are expected to be sequential;
// the mutex only keeps concurrent misuse from corrupting the log.
type Monitor struct {
	mu         sync.Mutex
	target     Target
	registry   *speclogic.Registry
	evaluator  *speclogic.Evaluator
	log        speclogic.Log
	logger     *zap.Logger
	recorder   *metrics.Recorder
	policy     Policy
	session    string
	halted     error
	violations []*speclogic.ViolationError
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPolicy sets the violation policy.
func WithPolicy(p Policy) Option {
	return func(m *Monitor) { m.policy = p }
}

// WithRecorder records check metrics.
func WithRecorder(r *metrics.Recorder) Option {
	return func(m *Monitor) { m.recorder = r }
}

// New wraps target. registry is read-only and may be shared between
// monitors.
func New(target Target, registry *speclogic.Registry, opts ...Option) *Monitor {
	m := &Monitor{
		target:   target,
		registry: registry,
		logger:   zap.NewNop(),
		policy:   PolicyHalt,
		session:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("session", m.session))
	m.evaluator = speclogic.NewEvaluator(speclogic.WithLogger(m.logger))
	return m
}

// Session returns the id that tags this monitor's log lines.
func (m *Monitor) Session() string { return m.session }

// Invoke calls method on the target, checks the method's behavior against
// the log as it stood before the call, and records the call.
//
// A failing target returns its error and nothing is recorded. A malformed
// behavior returns its error wrapped, nothing is recorded and the monitor
// stops accepting calls whatever the policy. A violation
// returns the result together with a *speclogic.ViolationError; under
// PolicyHalt the call is not recorded and the monitor stops accepting
// calls.
func (m *Monitor) Invoke(method string, args ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.halted != nil {
		return nil, fmt.Errorf("%w: %w", ErrHalted, m.halted)
	}

	result, err := m.target.Invoke(method, args)
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", method, err)
	}

	call := speclogic.Call{Method: method, Args: args, Result: result}
	behavior, ok := m.registry.Lookup(method)
	if !ok {
		m.logger.Debug("no behavior, recording unchecked", zap.String("method", method))
		m.record(call)
		return result, nil
	}

	start := time.Now()
	report, err := m.evaluator.Check(behavior, args, result, &m.log)
	if err != nil {
		// the target already ran, so the log no longer matches it
		err = fmt.Errorf("checking %s: %w", method, err)
		m.halted = err
		m.logger.Error("malformed behavior", zap.String("method", method), zap.Error(err))
		return nil, err
	}
	if m.recorder != nil {
		m.recorder.ObserveCheck(method, report.Verdict.String(), time.Since(start))
	}

	if report.OK() {
		m.logger.Debug("behavior holds",
			zap.String("method", method),
			zap.Int("index", m.log.Len()))
		m.record(call)
		return result, nil
	}

	verr := &speclogic.ViolationError{
		Method:   method,
		Index:    m.log.Len(),
		Args:     append([]any(nil), args...),
		Result:   result,
		Verdict:  report.Verdict,
		Residual: report.Residual,
	}
	m.violations = append(m.violations, verr)
	m.logger.Warn("behavior violated",
		zap.String("method", method),
		zap.Int("index", verr.Index),
		zap.Stringer("verdict", report.Verdict),
		zap.String("residual", report.Residual.String()))

	if m.policy == PolicyHalt {
		m.halted = verr
	} else {
		m.record(call)
	}
	return result, verr
}

func (m *Monitor) record(call speclogic.Call) {
	m.log.Append(call)
	if m.recorder != nil {
		m.recorder.SetLogLength(m.log.Len())
	}
}

// Log returns a copy of the recorded calls.
func (m *Monitor) Log() []speclogic.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Calls()
}

// Len returns the number of recorded calls.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Len()
}

// Violations returns the violations seen so far.
func (m *Monitor) Violations() []*speclogic.ViolationError {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*speclogic.ViolationError, len(m.violations))
	copy(out, m.violations)
	return out
}

// Halted reports whether the monitor stopped after a violation or a
// malformed behavior.
func (m *Monitor) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted != nil
}
