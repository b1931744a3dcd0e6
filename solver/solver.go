package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/internal/logging"
)

// RHSFunc writes dy/dt at (t, y) into dy.
type RHSFunc func(t float64, y, dy []float64) error

// EventFunc is a scalar function of the state; integration stops where it
// changes sign.
type EventFunc func(t float64, y []float64) float64

// Solution holds the state at each output time, one row per time. When an
// event stopped the integration, the last row is at the event root.
type Solution struct {
	T []float64
	Y *mat.Dense
	// Event is the index of the event that stopped integration, or -1.
	Event int
	// Termination is "final time" or "event: <name>".
	Termination string
}

// Final returns the last state.
func (s *Solution) Final() []float64 {
	return mat.Row(nil, len(s.T)-1, s.Y)
}

// Solver integrates with one backend at one tolerance.
type Solver struct {
	backend  Backend
	tol      float64
	maxSteps int
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Solver)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// WithMetrics records work done by the solver.
func WithMetrics(m *Metrics) Option {
	return func(s *Solver) { s.metrics = m }
}

// WithMaxSteps bounds the number of attempted steps per integration.
func WithMaxSteps(n int) Option {
	return func(s *Solver) { s.maxSteps = n }
}

// New returns a solver using the backend registered as method. tol is used
// as both the absolute and the relative tolerance.
func New(method string, tol float64, opts ...Option) (*Solver, error) {
	if !(tol > 0) {
		return nil, fmt.Errorf("%w: tolerance must be positive, got %g", gobamm.ErrConfiguration, tol)
	}
	factory, err := lookup(method)
	if err != nil {
		return nil, err
	}
	backend, err := factory(tol)
	if err != nil {
		return nil, err
	}
	s := &Solver{
		backend:  backend,
		tol:      tol,
		maxSteps: 500000,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Solver) Method() string     { return s.backend.Name() }
func (s *Solver) Tolerance() float64 { return s.tol }

// Integrate solves dy/dt = rhs(t, y) from y0 at tEval[0], recording the state
// at every time in tEval, which must be strictly increasing.
func (s *Solver) Integrate(ctx context.Context, rhs RHSFunc, y0, tEval []float64, events ...EventFunc) (*Solution, error) {
	if len(y0) == 0 {
		return nil, fmt.Errorf("%w: empty initial state", gobamm.ErrConfiguration)
	}
	if len(tEval) == 0 {
		return nil, fmt.Errorf("%w: no output times", gobamm.ErrConfiguration)
	}
	for i := 1; i < len(tEval); i++ {
		if !(tEval[i] > tEval[i-1]) {
			return nil, fmt.Errorf("%w: output times must be strictly increasing (%g after %g)", gobamm.ErrConfiguration, tEval[i], tEval[i-1])
		}
	}

	method := s.backend.Name()
	f := func(t float64, y, dy []float64) error {
		s.metrics.evaluated(method)
		return rhs(t, y, dy)
	}

	n := len(y0)
	t := tEval[0]
	y := append([]float64(nil), y0...)
	ts := []float64{t}
	rows := append([]float64(nil), y...)

	g, err := eventValues(events, t, y)
	if err != nil {
		return nil, err
	}

	span := tEval[len(tEval)-1] - t
	h := span / 100
	next := 1
	exponent := 1 / float64(s.backend.Order()+1)
	for steps := 0; next < len(tEval); steps++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if steps >= s.maxSteps {
			return nil, fmt.Errorf("%w: step limit %d reached at t=%g", gobamm.ErrEvaluation, s.maxSteps, t)
		}
		if h < 1e-14*math.Max(1, math.Abs(t)) {
			return nil, fmt.Errorf("%w: step size underflow at t=%g", gobamm.ErrEvaluation, t)
		}

		target := tEval[next]
		step := math.Min(h, target-t)
		landing := step == target-t

		ynew, errEst, err := s.backend.Step(f, t, step, y)
		if errors.Is(err, ErrStepFailed) {
			s.metrics.rejected(method)
			s.logger.Debug("step failed", "method", method, "t", t, "h", step, "error", err)
			h = step / 4
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("integrating at t=%g: %w", t, err)
		}
		norm := errorNorm(errEst, y, ynew, s.tol)
		if math.IsNaN(norm) {
			return nil, fmt.Errorf("%w: non-finite state at t=%g", gobamm.ErrEvaluation, t+step)
		}
		if norm > 1 {
			s.metrics.rejected(method)
			h = step * math.Max(0.1, 0.9*math.Pow(1/norm, exponent))
			continue
		}

		s.metrics.accepted(method, step)
		tnew := t + step
		if landing {
			tnew = target
		}
		s.logger.Debug("step accepted", "method", method, "t", tnew, "h", step, "error", norm)

		gnew, err := eventValues(events, tnew, ynew)
		if err != nil {
			return nil, err
		}
		if k := crossed(g, gnew); k >= 0 {
			troot, yroot, err := s.locate(f, events[k], t, y, step)
			if err != nil {
				return nil, err
			}
			s.logger.Debug("event", "method", method, "index", k, "t", troot)
			ts = append(ts, troot)
			rows = append(rows, yroot...)
			return &Solution{T: ts, Y: mat.NewDense(len(ts), n, rows), Event: k, Termination: fmt.Sprintf("event: %d", k)}, nil
		}

		t, y, g = tnew, ynew, gnew
		if landing {
			ts = append(ts, t)
			rows = append(rows, y...)
			next++
		}
		// Grow from the attempted step, not the one clipped to an output time.
		factor := 5.0
		if norm > 0 {
			factor = math.Min(5, 0.9*math.Pow(1/norm, exponent))
		}
		h *= factor
		if h > span {
			h = span
		}
	}
	return &Solution{T: ts, Y: mat.NewDense(len(ts), n, rows), Event: -1, Termination: "final time"}, nil
}

// errorNorm is the max over entries of |e| / (tol + tol*max(|y|, |ynew|)).
func errorNorm(e, y, ynew []float64, tol float64) float64 {
	var norm float64
	for i, v := range e {
		scale := tol + tol*math.Max(math.Abs(y[i]), math.Abs(ynew[i]))
		r := math.Abs(v) / scale
		if math.IsNaN(r) || math.IsNaN(ynew[i]) || math.IsInf(ynew[i], 0) {
			return math.NaN()
		}
		norm = math.Max(norm, r)
	}
	return norm
}

func eventValues(events []EventFunc, t float64, y []float64) ([]float64, error) {
	out := make([]float64, len(events))
	for i, ev := range events {
		out[i] = ev(t, y)
		if math.IsNaN(out[i]) {
			return nil, fmt.Errorf("%w: event %d is not a number at t=%g", gobamm.ErrEvaluation, i, t)
		}
	}
	return out, nil
}

// crossed returns the first event that reached zero or changed sign, or -1.
func crossed(before, after []float64) int {
	for i := range after {
		if before[i] != 0 && (after[i] == 0 || math.Signbit(before[i]) != math.Signbit(after[i])) {
			return i
		}
	}
	return -1
}

// locate bisects the step from (t, y) of size h for the root of ev,
// re-stepping from t for each trial size.
func (s *Solver) locate(f RHSFunc, ev EventFunc, t float64, y []float64, h float64) (float64, []float64, error) {
	g0 := ev(t, y)
	lo, hi := 0.0, h
	var yhi []float64
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		ym, _, err := s.backend.Step(f, t, mid, y)
		if err != nil {
			return 0, nil, fmt.Errorf("locating event near t=%g: %w", t+mid, err)
		}
		gm := ev(t+mid, ym)
		if gm == 0 {
			return t + mid, ym, nil
		}
		if math.Signbit(gm) == math.Signbit(g0) {
			lo = mid
		} else {
			hi, yhi = mid, ym
		}
		if hi-lo <= 1e-3*s.tol*math.Max(1, math.Abs(t)) {
			break
		}
	}
	if yhi == nil {
		var err error
		if yhi, _, err = s.backend.Step(f, t, hi, y); err != nil {
			return 0, nil, err
		}
	}
	return t + hi, yhi, nil
}
