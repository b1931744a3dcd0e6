package gobamm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
)

// ============================================================
// Builder tests
// ============================================================

func TestBuilder_StickyError(t *testing.T) {
	n := variable(t, "a", gobamm.NegativeElectrode)
	p := variable(t, "b", gobamm.PositiveElectrode)

	var b gobamm.Builder
	bad := b.Add(n, p)
	assert.Nil(t, bad)
	assert.ErrorIs(t, b.Err(), gobamm.ErrDomain)

	assert.Nil(t, b.Mul(n, 2), "later calls are no-ops")
	assert.ErrorIs(t, b.Err(), gobamm.ErrDomain)
}

func TestBuilder_Leaves(t *testing.T) {
	var b gobamm.Builder
	c := b.Variable("c", gobamm.WholeCell()...)
	d := b.FunctionParameter("D", c)
	flux := b.Neg(b.Mul(d, b.Grad(c)))
	rhs := b.Divergence(flux)
	require.NoError(t, b.Err())
	assert.Equal(t, "div(-(D(c) * grad(c)))", rhs.String())
	assert.Equal(t, gobamm.WholeCell(), rhs.Domain())

	b.Parameter("p", "nowhere")
	assert.ErrorIs(t, b.Err(), gobamm.ErrDomain)
}

// ============================================================
// Equations and Model tests
// ============================================================

func TestEquations_InsertionOrder(t *testing.T) {
	eqs := gobamm.NewEquations()
	a := variable(t, "a")
	b := variable(t, "b")
	eqs.Set(b, gobamm.S(1))
	eqs.Set(a, gobamm.S(2))
	eqs.Set(b, gobamm.S(3))

	require.Equal(t, 2, eqs.Len())
	all := eqs.All()
	assert.Equal(t, "b", all[0].Key.Name())
	assert.Equal(t, "3", all[0].Expr.Name())
	assert.Equal(t, "a", all[1].Key.Name())

	eq, ok := eqs.Get(a.ID())
	require.True(t, ok)
	assert.Equal(t, "2", eq.Expr.Name())
}

func TestModel_Update(t *testing.T) {
	c := variable(t, "c")
	e := variable(t, "eps")

	m1 := gobamm.NewModel()
	m1.RHS.Set(c, gobamm.S(-1))
	m1.InitialConditions.Set(c, gobamm.S(1))
	m1.Variables["c"] = c

	m2 := gobamm.NewModel()
	m2.RHS.Set(e, gobamm.S(0))
	m2.InitialConditions.Set(e, gobamm.S(0.5))
	m2.Variables["c"] = variable(t, "c")
	m2.Events["empty"] = e

	m := gobamm.NewModel()
	require.NoError(t, m.Update(m1, m2))
	assert.Equal(t, 2, m.RHS.Len())
	assert.Len(t, m.Variables, 1)
	assert.Len(t, m.Events, 1)
	require.NoError(t, m.Check())
}

func TestModel_UpdateConflicts(t *testing.T) {
	c := variable(t, "c")

	m1 := gobamm.NewModel()
	m1.RHS.Set(c, gobamm.S(-1))
	m2 := gobamm.NewModel()
	m2.RHS.Set(c, gobamm.S(-2))
	assert.ErrorIs(t, gobamm.NewModel().Update(m1, m2), gobamm.ErrConfiguration)

	v1 := gobamm.NewModel()
	v1.Variables["x"] = c
	v2 := gobamm.NewModel()
	v2.Variables["x"] = gobamm.S(1)
	assert.ErrorIs(t, gobamm.NewModel().Update(v1, v2), gobamm.ErrConfiguration)

	b1 := gobamm.NewModel()
	b1.BoundaryConditions[c.ID()] = gobamm.BoundaryCondition{Left: gobamm.S(0), Right: gobamm.S(0)}
	b2 := gobamm.NewModel()
	b2.BoundaryConditions[c.ID()] = gobamm.BoundaryCondition{Left: gobamm.S(1), Right: gobamm.S(0)}
	assert.ErrorIs(t, gobamm.NewModel().Update(b1, b2), gobamm.ErrConfiguration)
}

func TestModel_Check(t *testing.T) {
	c := variable(t, "c")

	m := gobamm.NewModel()
	m.RHS.Set(c, gobamm.S(-1))
	assert.ErrorIs(t, m.Check(), gobamm.ErrConfiguration, "missing initial condition")

	m.InitialConditions.Set(c, c)
	assert.ErrorIs(t, m.Check(), gobamm.ErrConfiguration, "non-constant initial condition")

	m.InitialConditions.Set(c, parameter(t, "c0"))
	assert.ErrorIs(t, m.Check(), gobamm.ErrConfiguration, "unresolved parameter")

	m.InitialConditions.Set(c, gobamm.S(1))
	assert.NoError(t, m.Check())
}
