package models_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/discretisation"
	"github.com/njchilds90/gobamm/mesh"
	"github.com/njchilds90/gobamm/models"
	"github.com/njchilds90/gobamm/parameters"
)

// ============================================================
// Helpers
// ============================================================

func defaultParameters(t *testing.T) *parameters.Values {
	t.Helper()
	p, err := models.DefaultParameters()
	require.NoError(t, err)
	return p
}

func defaultDiscretisation(t *testing.T, p *parameters.Values) *discretisation.Discretisation {
	t.Helper()
	geo, err := models.DefaultGeometry()
	require.NoError(t, err)
	geo, err = p.ProcessGeometry(geo)
	require.NoError(t, err)
	m, err := mesh.New(geo, nil, models.DefaultSubmeshPts())
	require.NoError(t, err)
	d, err := discretisation.New(m, nil)
	require.NoError(t, err)
	return d
}

func hasParameters(s gobamm.Symbol) bool {
	return gobamm.Contains(s, gobamm.KindParameter, gobamm.KindFunctionParameter)
}

func variable(t *testing.T, name string, domain ...string) gobamm.Symbol {
	t.Helper()
	v, err := gobamm.NewVariable(name, domain...)
	require.NoError(t, err)
	return v
}

func concat(t *testing.T, children ...gobamm.Symbol) gobamm.Symbol {
	t.Helper()
	c, err := gobamm.ConcatOf(children...)
	require.NoError(t, err)
	return c
}

// ============================================================
// Parameters
// ============================================================

func TestDefaultParameters_Functions(t *testing.T) {
	f := models.Functions()
	assert.InDelta(t, 1, f["electrolyte_diffusivity_Gu1997"](1), 1e-15)
	un := f["lead_electrode_ocv_Bode1977"]
	up := f["lead_dioxide_electrode_ocv_Bode1977"]
	assert.Less(t, un(1), un(0.5))
	assert.Greater(t, up(1), up(0.5))

	p := defaultParameters(t)
	e, err := p.Get(models.ElectrolyteDiffusivity)
	require.NoError(t, err)
	assert.True(t, e.IsFunction())
	e, err = p.Get(models.SeparatorWidth)
	require.NoError(t, err)
	assert.Equal(t, 0.25, e.Value)
}

// ============================================================
// Interface
// ============================================================

func TestHomogeneousReaction_Process(t *testing.T) {
	p := defaultParameters(t)
	rxn, err := models.HomogeneousReaction()
	require.NoError(t, err)
	assert.Equal(t, gobamm.WholeCell(), rxn.Domain())

	processed, err := p.ProcessSymbol(rxn)
	require.NoError(t, err)
	require.Equal(t, gobamm.KindConcatenation, processed.Kind())
	assert.False(t, hasParameters(processed))

	children := processed.Children()
	assert.Equal(t, gobamm.KindScalar, children[1].Kind())
	for i, want := range []float64{1 / 0.25, 0, -1 / 0.5} {
		v, err := gobamm.Evaluate(children[i], 0, nil)
		require.NoError(t, err)
		assert.InDelta(t, want, v.Scalar(), 1e-12)
	}

	d := defaultDiscretisation(t, p)
	sl, err := d.VariableSlices()
	require.NoError(t, err)
	disc, err := d.ProcessSymbol(processed, sl, nil)
	require.NoError(t, err)
	vec, ok := disc.(*gobamm.Vector)
	require.True(t, ok, "got %s", disc.Kind())
	assert.Equal(t, 30, vec.Len())
}

func TestExchangeCurrentDensity_Domains(t *testing.T) {
	c := variable(t, "c")
	for _, d := range []string{gobamm.NegativeElectrode, gobamm.PositiveElectrode} {
		j0, err := models.ExchangeCurrentDensity(c, gobamm.Domain{d})
		require.NoError(t, err, d)
		assert.Equal(t, gobamm.Domain{d}, j0.Domain(), d)
	}

	cn := variable(t, "concentration", gobamm.NegativeElectrode)
	cp := variable(t, "concentration", gobamm.PositiveElectrode)
	j0n, err := models.ExchangeCurrentDensity(cn, nil)
	require.NoError(t, err)
	assert.Equal(t, gobamm.Domain{gobamm.NegativeElectrode}, j0n.Domain())
	j0p, err := models.ExchangeCurrentDensity(cp, nil)
	require.NoError(t, err)
	assert.Equal(t, gobamm.Domain{gobamm.PositiveElectrode}, j0p.Domain())

	_, err = models.ExchangeCurrentDensity(cp, gobamm.Domain{gobamm.NegativeElectrode})
	assert.ErrorIs(t, err, gobamm.ErrDomain)
	_, err = models.ExchangeCurrentDensity(cn, gobamm.Domain{gobamm.PositiveElectrode})
	assert.ErrorIs(t, err, gobamm.ErrDomain)
	_, err = models.ExchangeCurrentDensity(nil, gobamm.Domain{"not a domain"})
	assert.ErrorIs(t, err, gobamm.ErrDomain)
	_, err = models.ExchangeCurrentDensity(nil, nil)
	assert.ErrorIs(t, err, gobamm.ErrDomain)
}

func TestExchangeCurrentDensity_Values(t *testing.T) {
	p := defaultParameters(t)
	for _, tt := range []struct {
		domain string
		want   float64
	}{
		{gobamm.NegativeElectrode, 0.5 * 2},
		{gobamm.PositiveElectrode, 0.6 * 4 * (1 - 2*0.05) / 0.02},
	} {
		j0, err := models.ExchangeCurrentDensity(gobamm.S(2), gobamm.Domain{tt.domain})
		require.NoError(t, err)
		processed, err := p.ProcessSymbol(j0)
		require.NoError(t, err)
		v, err := gobamm.Evaluate(processed, 0, nil)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, v.Scalar(), 1e-9, tt.domain)
	}
}

func TestInterfacialCurrent_Creation(t *testing.T) {
	cn := variable(t, "concentration", gobamm.NegativeElectrode)
	cs := variable(t, "concentration", gobamm.Separator)
	cp := variable(t, "concentration", gobamm.PositiveElectrode)
	phin := variable(t, "potential difference", gobamm.NegativeElectrode)
	phis := variable(t, "potential difference", gobamm.Separator)
	phip := variable(t, "potential difference", gobamm.PositiveElectrode)
	c := concat(t, cn, cs, cp)
	phi := concat(t, phin, phis, phip)

	jn, err := models.InterfacialCurrent(cn, phin, gobamm.Domain{gobamm.NegativeElectrode})
	require.NoError(t, err)
	assert.Equal(t, gobamm.KindMultiplication, jn.Kind())
	assert.Equal(t, gobamm.Domain{gobamm.NegativeElectrode}, jn.Domain())

	jp, err := models.InterfacialCurrent(cp, phip, gobamm.Domain{gobamm.PositiveElectrode})
	require.NoError(t, err)
	assert.Equal(t, gobamm.Domain{gobamm.PositiveElectrode}, jp.Domain())

	whole, err := models.InterfacialCurrent(c, phi, nil)
	require.NoError(t, err)
	assert.Equal(t, gobamm.KindConcatenation, whole.Kind())
	assert.Equal(t, gobamm.WholeCell(), whole.Domain())

	defaults, err := models.InterfacialCurrent(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, gobamm.KindConcatenation, defaults.Kind())
	assert.Equal(t, gobamm.WholeCell(), defaults.Domain())

	_, err = models.InterfacialCurrent(nil, nil, gobamm.Domain{"not a domain"})
	assert.ErrorIs(t, err, gobamm.ErrDomain)
	_, err = models.InterfacialCurrent(cn, phi, nil)
	assert.ErrorIs(t, err, gobamm.ErrDomain)
}

func TestInterfacialCurrent_Discretise(t *testing.T) {
	cn := variable(t, "concentration", gobamm.NegativeElectrode)
	cs := variable(t, "concentration", gobamm.Separator)
	cp := variable(t, "concentration", gobamm.PositiveElectrode)
	phin := variable(t, "potential difference", gobamm.NegativeElectrode)
	phis := variable(t, "potential difference", gobamm.Separator)
	phip := variable(t, "potential difference", gobamm.PositiveElectrode)

	p := defaultParameters(t)
	d := defaultDiscretisation(t, p)
	sl, err := d.VariableSlices(cn, cp, phin, phip)
	require.NoError(t, err)
	y := make([]float64, sl.Size())
	for i := range y {
		y[i] = 0.5 + float64(i)/100
	}

	for _, tt := range []struct {
		c, phi gobamm.Symbol
		domain gobamm.Domain
		want   int
	}{
		{cn, phin, gobamm.Domain{gobamm.NegativeElectrode}, 10},
		{cp, phip, gobamm.Domain{gobamm.PositiveElectrode}, 10},
		{concat(t, cn, cs, cp), concat(t, phin, phis, phip), nil, 30},
	} {
		j, err := models.InterfacialCurrent(tt.c, tt.phi, tt.domain)
		require.NoError(t, err)
		processed, err := p.ProcessSymbol(j)
		require.NoError(t, err)
		assert.False(t, hasParameters(processed))
		disc, err := d.ProcessSymbol(processed, sl, nil)
		require.NoError(t, err)
		v, err := gobamm.Evaluate(disc, 0, y)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Len())
	}
}

// ============================================================
// Models
// ============================================================

func discretiseModel(t *testing.T, m *gobamm.Model) *discretisation.Discretised {
	t.Helper()
	p := defaultParameters(t)
	processed, err := p.ProcessModel(m)
	require.NoError(t, err)
	disc, err := defaultDiscretisation(t, p).ProcessModel(processed)
	require.NoError(t, err)
	return disc
}

func TestStefanMaxwellDiffusion_UniformStateIsSteady(t *testing.T) {
	m, err := models.StefanMaxwellDiffusion(gobamm.S(0))
	require.NoError(t, err)
	disc := discretiseModel(t, m)
	assert.Equal(t, 30, disc.Size())

	v, err := gobamm.Evaluate(disc.RHS, 0, disc.Y0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, make([]float64, 30), v.Vector(), 1e-12)
	assert.Contains(t, disc.Variables, "N_e")
}

func TestStefanMaxwellDiffusion_ReactionSource(t *testing.T) {
	m, err := models.StefanMaxwellDiffusion(gobamm.S(0.001))
	require.NoError(t, err)
	disc := discretiseModel(t, m)
	v, err := gobamm.Evaluate(disc.RHS, 0, disc.Y0)
	require.NoError(t, err)
	// nu*(1-t_plus)*G with a flat concentration.
	for _, x := range v.Vector() {
		assert.InDelta(t, 2*0.6*0.001, x, 1e-12)
	}
}

func TestPorosity_Process(t *testing.T) {
	m, err := models.Porosity(gobamm.S(0.001))
	require.NoError(t, err)
	disc := discretiseModel(t, m)
	require.Equal(t, 30, disc.Size())
	assert.Equal(t, 0.53, disc.Y0[0])
	assert.Equal(t, 0.73, disc.Y0[15])
	assert.Equal(t, 0.53, disc.Y0[29])

	v, err := gobamm.Evaluate(disc.RHS, 0, disc.Y0)
	require.NoError(t, err)
	assert.InDelta(t, 0.05*0.001, v.At(0), 1e-15)
	assert.Equal(t, 0.0, v.At(15))
	assert.InDelta(t, -0.08*0.001, v.At(29), 1e-15)
}

func TestLeadAcidFull1D_Process(t *testing.T) {
	m, err := models.LeadAcidFull1D()
	require.NoError(t, err)
	assert.Equal(t, "lead-acid full 1D", m.Name)
	assert.Equal(t, 2, m.RHS.Len())
	assert.Contains(t, m.Variables, "porosity")
	assert.Contains(t, m.Variables, "flux")

	disc := discretiseModel(t, m.Model)
	assert.Equal(t, 60, disc.Size())
	v, err := gobamm.Evaluate(disc.RHS, 0, disc.Y0)
	require.NoError(t, err)
	require.Equal(t, 60, v.Len())
	for _, x := range v.Vector() {
		assert.False(t, math.IsNaN(x))
	}
}

func TestReactionDiffusion_Defaults(t *testing.T) {
	m, err := models.ReactionDiffusion()
	require.NoError(t, err)
	assert.Equal(t, "bdf1", m.Defaults.Solver)
	assert.NotNil(t, m.Defaults.Parameters)
	assert.Contains(t, m.Defaults.Geometry, gobamm.Separator)
	assert.NoError(t, discretiseModelErr(m.Model))
}

func discretiseModelErr(m *gobamm.Model) error {
	p, err := models.DefaultParameters()
	if err != nil {
		return err
	}
	processed, err := p.ProcessModel(m)
	if err != nil {
		return err
	}
	return processed.Check()
}

func TestGet(t *testing.T) {
	assert.Equal(t, []string{"lead-acid-full-1d", "reaction-diffusion"}, models.Names())
	for _, name := range models.Names() {
		m, err := models.Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, m.Model)
	}
	_, err := models.Get("spm")
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}
