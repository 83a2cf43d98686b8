package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gnolang/specobj/internal/kvstore"
	"github.com/gnolang/specobj/internal/metrics"
	"github.com/gnolang/specobj/internal/monitor"
	"github.com/gnolang/specobj/internal/speclogic"
)

// ErrUnknownTarget is returned for a scenario naming an unregistered target.
var ErrUnknownTarget = errors.New("unknown target")

// Target creates fresh instances of a monitored object together with the
// behaviors that specify it.
type Target struct {
	New      func() monitor.Target
	Registry *speclogic.Registry
}

// Mismatch is a step whose real result differs from its expectation.
type Mismatch struct {
	Index  int
	Method string
	Want   any
	Got    any
}

// Result is the outcome of running one scenario.
type Result struct {
	Name       string
	Path       string
	Calls      int
	Violations []*speclogic.ViolationError
	Mismatches []Mismatch
	Err        error
}

// Failed reports whether the scenario had a violation, a mismatch or an
// error.
func (r Result) Failed() bool {
	return r.Err != nil || len(r.Violations) > 0 || len(r.Mismatches) > 0
}

// Runner drives scenarios. It is safe for concurrent use; every run gets
// its own target and monitor.
type Runner struct {
	logger   *zap.Logger
	policy   monitor.Policy
	recorder   *metrics.Recorder
	targets    map[string]Target
	extensions extensionSet
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPolicy sets the policy used by scenarios that do not name one.
func WithPolicy(p monitor.Policy) RunnerOption {
	return func(r *Runner) { r.policy = p }
}

// WithRecorder records check metrics for every run.
func WithRecorder(rec *metrics.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithExtensions sets the file extensions treated as scenario files when
// walking directories.
func WithExtensions(exts []string) RunnerOption {
	return func(r *Runner) { r.extensions = newExtensionSet(exts) }
}

// WithTarget registers an additional target under name.
func WithTarget(name string, t Target) RunnerOption {
	return func(r *Runner) { r.targets[name] = t }
}

// NewRunner creates a runner knowing the built-in targets "kv" and
// "kv-stale".
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	registry, err := kvstore.Registry()
	if err != nil {
		return nil, fmt.Errorf("building kv behaviors: %w", err)
	}

	r := &Runner{
		logger:     zap.NewNop(),
		policy:     monitor.PolicyHalt,
		extensions: newExtensionSet(nil),
		targets: map[string]Target{
			"kv": {
				New:      func() monitor.Target { return kvstore.New() },
				Registry: registry,
			},
			"kv-stale": {
				New:      func() monitor.Target { return kvstore.New(kvstore.WithStaleReads()) },
				Registry: registry,
			},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Targets returns the registered target names, sorted.
func (r *Runner) Targets() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Matches reports whether path has one of the runner's scenario
// extensions.
func (r *Runner) Matches(path string) bool {
	return r.extensions.matches(path)
}

// Target returns the target registered under name.
func (r *Runner) Target(name string) (Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// Run drives s through a fresh monitor. Running stops at the first target
// or formula error, when a halting monitor rejects a call, or when ctx is
// done.
func (r *Runner) Run(ctx context.Context, s *Scenario) Result {
	res := Result{Name: s.Name, Path: s.Path}

	target, ok := r.targets[s.Target]
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrUnknownTarget, s.Target)
		return res
	}

	policy := r.policy
	if s.Policy != "" {
		p, err := monitor.ParsePolicy(s.Policy)
		if err != nil {
			res.Err = err
			return res
		}
		policy = p
	}

	logger := r.logger.With(zap.String("scenario", s.Name))
	opts := []monitor.Option{monitor.WithLogger(logger), monitor.WithPolicy(policy)}
	if r.recorder != nil {
		opts = append(opts, monitor.WithRecorder(r.recorder))
	}
	mon := monitor.New(target.New(), target.Registry, opts...)

	for i, step := range s.Calls {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}

		got, err := mon.Invoke(step.Method, step.Args...)
		if err != nil && !speclogic.IsViolation(err) {
			res.Err = fmt.Errorf("call %d: %w", i, err)
			break
		}
		if step.HasExpect() && !speclogic.IsTrue(speclogic.Eq(got, step.Expect)) {
			res.Mismatches = append(res.Mismatches, Mismatch{
				Index:  i,
				Method: step.Method,
				Want:   step.Expect,
				Got:    got,
			})
		}
		if mon.Halted() {
			break
		}
	}

	res.Calls = mon.Len()
	res.Violations = mon.Violations()
	logger.Info("scenario finished",
		zap.Int("calls", res.Calls),
		zap.Int("violations", len(res.Violations)),
		zap.Int("mismatches", len(res.Mismatches)),
		zap.Bool("failed", res.Failed()))
	return res
}
