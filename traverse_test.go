package gobamm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
)

func TestPreOrder_ParentFirst(t *testing.T) {
	a := variable(t, "a")
	b := variable(t, "b")
	var bld gobamm.Builder
	e := bld.Mul(bld.Add(a, b), 3)
	require.NoError(t, bld.Err())

	var names []string
	for _, s := range gobamm.PreOrder(e) {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"*", "+", "a", "b", "3"}, names)
}

func TestWalk_SkipChildren(t *testing.T) {
	a := variable(t, "a")
	e := must[gobamm.Symbol](t)(gobamm.NegOf(must[gobamm.Symbol](t)(gobamm.AbsOf(a))))
	visited := 0
	gobamm.Walk(e, func(s gobamm.Symbol) bool {
		visited++
		return s.Kind() != gobamm.KindAbsoluteValue
	})
	assert.Equal(t, 2, visited)
}

func TestIsConstant(t *testing.T) {
	c := variable(t, "c")
	p := parameter(t, "p")
	sv := must[*gobamm.StateVector](t)(gobamm.NewStateVector(0, 1))
	v := must[*gobamm.Vector](t)(gobamm.NewVector([]float64{1}))

	assert.True(t, gobamm.IsConstant(gobamm.S(1)))
	assert.True(t, gobamm.IsConstant(must[gobamm.Symbol](t)(gobamm.AddOf(v, 2))))
	assert.False(t, gobamm.IsConstant(c))
	assert.False(t, gobamm.IsConstant(sv))
	assert.False(t, gobamm.IsConstant(must[gobamm.Symbol](t)(gobamm.MulOf(p, 2))))
}

func TestEvaluatesToNumber(t *testing.T) {
	v := must[*gobamm.Vector](t)(gobamm.NewVector([]float64{1, 2}))
	assert.True(t, gobamm.EvaluatesToNumber(must[gobamm.Symbol](t)(gobamm.AddOf(1, 2))))
	assert.False(t, gobamm.EvaluatesToNumber(v))
	assert.False(t, gobamm.EvaluatesToNumber(parameter(t, "p")))
}

func TestHasSpatialDerivatives(t *testing.T) {
	c := variable(t, "c", gobamm.TestDomain)
	g := must[gobamm.Symbol](t)(gobamm.GradOf(c))
	d := must[gobamm.Symbol](t)(gobamm.DivergenceOf(g))
	assert.True(t, gobamm.HasGradient(d))
	assert.True(t, gobamm.HasDivergence(d))
	assert.False(t, gobamm.HasDivergence(g))
	assert.False(t, gobamm.HasSpatialDerivatives(c))
}

func TestToJSON(t *testing.T) {
	c := variable(t, "c", gobamm.Separator)
	e := must[gobamm.Symbol](t)(gobamm.MulOf(2, c))
	out, err := gobamm.ToJSON(e)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "Multiplication", tree["kind"])
	assert.Equal(t, []any{gobamm.Separator}, tree["domain"])
	children, ok := tree["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 2)
	assert.Equal(t, 2.0, children[0].(map[string]any)["value"])
	assert.Equal(t, "c", children[1].(map[string]any)["name"])
}
