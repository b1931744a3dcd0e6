package solver_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/solver"
)

func decay(_ float64, y, dy []float64) error {
	for i := range y {
		dy[i] = -y[i]
	}
	return nil
}

func linspace(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// ============================================================
// Configuration
// ============================================================

func TestNew_UnavailableBackends(t *testing.T) {
	for _, name := range []string{"cvode", "ida", "lsoda", "no-such-solver"} {
		_, err := solver.New(name, 1e-6)
		assert.ErrorIs(t, err, gobamm.ErrBackendUnavailable, name)
	}
}

func TestNew_BadTolerance(t *testing.T) {
	_, err := solver.New("rk45", 0)
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}

func TestBackends_Listed(t *testing.T) {
	names := solver.Backends()
	assert.Contains(t, names, "rk45")
	assert.Contains(t, names, "bdf1")
	assert.Contains(t, names, "cvode")
	assert.IsNonDecreasing(t, names)
}

func TestRegister_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		solver.Register("rk45", func(float64) (solver.Backend, error) { return solver.RK45{}, nil })
	})
	assert.Panics(t, func() { solver.Register("nil-factory", nil) })
}

func TestRegister_Custom(t *testing.T) {
	solver.Register("test-euler", func(float64) (solver.Backend, error) { return &solver.BDF1{}, nil })
	s, err := solver.New("test-euler", 1e-4)
	require.NoError(t, err)
	assert.Equal(t, "bdf1", s.Method())
}

// ============================================================
// Integrate
// ============================================================

func TestIntegrate_ExponentialDecay(t *testing.T) {
	tests := []struct {
		method string
		tol    float64
		delta  float64
	}{
		{"rk45", 1e-8, 1e-6},
		{"bdf1", 1e-6, 2e-3},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			s, err := solver.New(tt.method, tt.tol)
			require.NoError(t, err)
			tEval := linspace(0, 1, 11)
			sol, err := s.Integrate(context.Background(), decay, []float64{1, 2}, tEval)
			require.NoError(t, err)

			assert.Equal(t, tEval, sol.T)
			assert.Equal(t, -1, sol.Event)
			assert.Equal(t, "final time", sol.Termination)
			r, c := sol.Y.Dims()
			assert.Equal(t, 11, r)
			assert.Equal(t, 2, c)
			for i, ti := range sol.T {
				assert.InDelta(t, math.Exp(-ti), sol.Y.At(i, 0), tt.delta)
				assert.InDelta(t, 2*math.Exp(-ti), sol.Y.At(i, 1), 2*tt.delta)
			}
			assert.Equal(t, sol.Y.RawRowView(10), sol.Final())
		})
	}
}

func TestIntegrate_EventStops(t *testing.T) {
	tests := []struct {
		method string
		delta  float64
	}{
		{"rk45", 1e-6},
		{"bdf1", 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			s, err := solver.New(tt.method, 1e-8)
			require.NoError(t, err)
			half := func(_ float64, y []float64) float64 { return y[0] - 0.5 }
			never := func(_ float64, y []float64) float64 { return y[0] + 1 }

			sol, err := s.Integrate(context.Background(), decay, []float64{1}, linspace(0, 2, 5), never, half)
			require.NoError(t, err)
			assert.Equal(t, 1, sol.Event)
			assert.Equal(t, "event: 1", sol.Termination)
			last := len(sol.T) - 1
			assert.InDelta(t, math.Ln2, sol.T[last], tt.delta)
			assert.InDelta(t, 0.5, sol.Y.At(last, 0), 1e-6)
			assert.Equal(t, []float64{0, 0.5}, sol.T[:2])
		})
	}
}

func TestIntegrate_StiffWithBDF1(t *testing.T) {
	stiff := func(_ float64, y, dy []float64) error {
		dy[0] = -1000 * y[0]
		return nil
	}
	s, err := solver.New("bdf1", 1e-4, solver.WithMaxSteps(2000))
	require.NoError(t, err)
	sol, err := s.Integrate(context.Background(), stiff, []float64{1}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, sol.Final()[0], 1e-3)
}

func TestIntegrate_Errors(t *testing.T) {
	s, err := solver.New("rk45", 1e-6)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Integrate(ctx, decay, []float64{1}, []float64{0, 1, 1})
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)

	_, err = s.Integrate(ctx, decay, nil, []float64{0, 1})
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)

	_, err = s.Integrate(ctx, decay, []float64{1}, nil)
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)

	boom := errors.New("boom")
	_, err = s.Integrate(ctx, func(float64, []float64, []float64) error { return boom }, []float64{1}, []float64{0, 1})
	assert.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Integrate(cancelled, decay, []float64{1}, []float64{0, 1})
	assert.ErrorIs(t, err, context.Canceled)

	limited, err := solver.New("rk45", 1e-10, solver.WithMaxSteps(3))
	require.NoError(t, err)
	_, err = limited.Integrate(ctx, decay, []float64{1}, []float64{0, 10})
	assert.ErrorIs(t, err, gobamm.ErrEvaluation)
}

func TestIntegrate_SingleTime(t *testing.T) {
	s, err := solver.New("rk45", 1e-6)
	require.NoError(t, err)
	sol, err := s.Integrate(context.Background(), decay, []float64{3}, []float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, sol.T)
	assert.Equal(t, []float64{3}, sol.Final())
}

// ============================================================
// Metrics
// ============================================================

func TestMetrics_Recorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := solver.NewMetrics(reg)
	require.NoError(t, err)
	s, err := solver.New("rk45", 1e-6, solver.WithMetrics(m))
	require.NoError(t, err)
	_, err = s.Integrate(context.Background(), decay, []float64{1}, []float64{0, 1})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.Greater(t, values["gobamm_solver_rhs_evaluations_total"], 6.0)
	assert.Greater(t, values["gobamm_solver_steps_total"], 0.0)

	_, err = solver.NewMetrics(reg)
	assert.Error(t, err, "metrics register once per registry")
}
