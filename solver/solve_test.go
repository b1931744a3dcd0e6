package solver_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/discretisation"
	"github.com/njchilds90/gobamm/mesh"
	"github.com/njchilds90/gobamm/solver"
)

func discretised(t *testing.T) *discretisation.Discretised {
	t.Helper()
	var b gobamm.Builder
	c := b.Variable("c", gobamm.TestDomain)
	q := b.Variable("q")
	require.NoError(t, b.Err())

	m := gobamm.NewModel()
	m.RHS.Set(c, b.Neg(c))
	m.RHS.Set(q, b.Mul(-2, q))
	m.InitialConditions.Set(c, gobamm.S(1))
	m.InitialConditions.Set(q, gobamm.S(1))
	m.Variables["c"] = c
	m.Events["q half"] = b.Sub(q, 0.5)
	require.NoError(t, b.Err())

	sub, err := mesh.Uniform1D(0, 1, 4)
	require.NoError(t, err)
	msh, err := mesh.FromSubMeshes(map[string]*mesh.SubMesh{gobamm.TestDomain: sub})
	require.NoError(t, err)
	d, err := discretisation.New(msh, nil)
	require.NoError(t, err)
	disc, err := d.ProcessModel(m)
	require.NoError(t, err)
	return disc
}

func TestSolve_DiscretisedModel(t *testing.T) {
	disc := discretised(t)
	s, err := solver.New("rk45", 1e-8)
	require.NoError(t, err)

	sol, err := s.Solve(context.Background(), disc, linspace(0, 1, 11))
	require.NoError(t, err)
	assert.Equal(t, "event: q half", sol.Termination)
	last := len(sol.T) - 1
	assert.InDelta(t, math.Ln2/2, sol.T[last], 1e-6)

	c, err := sol.Observe(disc.Variables["c"])
	require.NoError(t, err)
	r, cols := c.Dims()
	assert.Equal(t, len(sol.T), r)
	assert.Equal(t, 4, cols)
	for i, ti := range sol.T {
		for j := 0; j < cols; j++ {
			assert.InDelta(t, math.Exp(-ti), c.At(i, j), 1e-6)
		}
	}
}

func TestSolve_NoTimes(t *testing.T) {
	s, err := solver.New("rk45", 1e-6)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), discretised(t), nil)
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}

func TestSolve_VectorEventRejected(t *testing.T) {
	disc := discretised(t)
	sv, err := gobamm.NewStateVector(0, 2)
	require.NoError(t, err)
	var b gobamm.Builder
	disc.Events["c low"] = b.Sub(sv, 0.5)
	require.NoError(t, b.Err())

	s, err := solver.New("rk45", 1e-6)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), disc, linspace(0, 1, 11))
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
	assert.ErrorContains(t, err, `event "c low"`)
}
