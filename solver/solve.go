package solver

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/discretisation"
)

// Solve integrates a discretised model. Its events are checked in name
// order, and an event that stops the integration is named in Termination.
func (s *Solver) Solve(ctx context.Context, d *discretisation.Discretised, tEval []float64) (*Solution, error) {
	if len(tEval) == 0 {
		return nil, fmt.Errorf("%w: no output times", gobamm.ErrConfiguration)
	}
	n := d.Size()
	if len(d.Y0) != n {
		return nil, fmt.Errorf("%w: initial state has %d entries for %d unknowns", gobamm.ErrConfiguration, len(d.Y0), n)
	}
	rhs := func(t float64, y, dy []float64) error {
		v, err := gobamm.Evaluate(d.RHS, t, y)
		if err != nil {
			return err
		}
		out, err := v.Float64s(n)
		if err != nil {
			return err
		}
		copy(dy, out)
		return nil
	}

	names := make([]string, 0, len(d.Events))
	for name := range d.Events {
		names = append(names, name)
	}
	slices.Sort(names)
	events := make([]EventFunc, len(names))
	for i, name := range names {
		expr := d.Events[name]
		// Surface evaluation errors now; later failures become NaN.
		v, err := gobamm.Evaluate(expr, tEval[0], d.Y0)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", name, err)
		}
		if v.IsMatrix() || v.Len() != 1 {
			return nil, fmt.Errorf("%w: event %q has %d values, want one", gobamm.ErrConfiguration, name, v.Len())
		}
		events[i] = func(t float64, y []float64) float64 {
			v, err := gobamm.Evaluate(expr, t, y)
			if err != nil {
				return math.NaN()
			}
			return v.Scalar()
		}
	}

	sol, err := s.Integrate(ctx, rhs, d.Y0, tEval, events...)
	if err != nil {
		return nil, err
	}
	if sol.Event >= 0 {
		sol.Termination = "event: " + names[sol.Event]
	}
	return sol, nil
}

// Observe evaluates a discretised expression at every row of the solution.
// Each row of the result holds the values at one time.
func (sol *Solution) Observe(expr gobamm.Symbol) (*mat.Dense, error) {
	var out *mat.Dense
	for i, t := range sol.T {
		v, err := gobamm.Evaluate(expr, t, sol.Y.RawRowView(i))
		if err != nil {
			return nil, fmt.Errorf("%s at t=%g: %w", expr, t, err)
		}
		if out == nil {
			out = mat.NewDense(len(sol.T), v.Len(), nil)
		}
		vals, err := v.Float64s(v.Len())
		if err != nil {
			return nil, err
		}
		if _, c := out.Dims(); len(vals) != c {
			return nil, fmt.Errorf("%w: %s changes length over time", gobamm.ErrEvaluation, expr)
		}
		out.SetRow(i, vals)
	}
	return out, nil
}
