package models

import (
	"github.com/njchilds90/gobamm"
)

// StefanMaxwellDiffusion is electrolyte diffusion across the cell driven by
// the interfacial flux G:
//
//	dc_e/dt = -div(N_e)/delta/eps + nu*(1-t_plus)*G,  N_e = -eps^b grad(c_e)
//
// with no flux through either end of the cell.
func StefanMaxwellDiffusion(g gobamm.Symbol) (*gobamm.Model, error) {
	var b gobamm.Builder
	eps := b.Parameter(ElectrodePorosity)
	ce := b.Variable("c_e", gobamm.WholeCell()...)
	flux := b.Mul(b.Neg(b.Pow(eps, b.Parameter(BruggemanCoefficient))), b.Grad(ce))
	rhs := b.Add(
		b.Div(b.Div(b.Neg(b.Divergence(flux)), b.Parameter(DiffusionTimescaleRatio)), eps),
		b.Mul(b.Mul(b.Parameter(IonsInSalt), b.Sub(1, b.Parameter(CationTransference))), g),
	)
	ce0 := b.Parameter(InitialElectrolyteConc)
	if err := b.Err(); err != nil {
		return nil, err
	}

	m := gobamm.NewModel()
	m.RHS.Set(ce, rhs)
	m.InitialConditions.Set(ce, ce0)
	m.BoundaryConditions[flux.ID()] = gobamm.BoundaryCondition{Left: gobamm.S(0), Right: gobamm.S(0)}
	m.Variables["c_e"] = ce
	m.Variables["N_e"] = flux
	return m, nil
}

// porosityVariable concatenates the per-domain porosity variables.
func porosityVariable(b *gobamm.Builder) gobamm.Symbol {
	return b.Concat(
		b.Variable("porosity_n", gobamm.NegativeElectrode),
		b.Variable("porosity_s", gobamm.Separator),
		b.Variable("porosity_p", gobamm.PositiveElectrode),
	)
}

// StefanMaxwellDiffusionWithPorosity is acid diffusion in a porous cell
// whose porosity is itself a state:
//
//	dc/dt = 1/eps * (-div(N)/Cd + (s + beta_surf)*j),  N = -D(c) eps^1.5 grad(c)
//
// with no flux through either end of the cell.
func StefanMaxwellDiffusionWithPorosity(j gobamm.Symbol) (*gobamm.Model, error) {
	var b gobamm.Builder
	c := b.Variable("concentration", gobamm.WholeCell()...)
	eps := porosityVariable(&b)
	d := b.FunctionParameter(ElectrolyteDiffusivity, c)
	flux := b.Mul(b.Neg(b.Mul(d, b.Pow(eps, 1.5))), b.Grad(c))
	s := perElectrode(&b, NegativeReactionCoefficient, PositiveReactionCoefficient)
	beta := perElectrode(&b, NegativeSurfaceVolumeChange, PositiveSurfaceVolumeChange)
	rhs := b.Mul(
		b.Div(1, eps),
		b.Add(
			b.Div(b.Neg(b.Divergence(flux)), b.Parameter(DiffusionalCRate)),
			b.Mul(b.Add(s, beta), j),
		),
	)
	cInit := b.Parameter(InitialConcentration)
	if err := b.Err(); err != nil {
		return nil, err
	}

	m := gobamm.NewModel()
	m.RHS.Set(c, rhs)
	m.InitialConditions.Set(c, cInit)
	m.BoundaryConditions[flux.ID()] = gobamm.BoundaryCondition{Left: gobamm.S(0), Right: gobamm.S(0)}
	m.Variables["concentration"] = c
	m.Variables["flux"] = flux
	m.Variables["porosity"] = eps
	return m, nil
}

// Porosity is the change of porosity with reaction: deps/dt = -beta_surf*j.
func Porosity(j gobamm.Symbol) (*gobamm.Model, error) {
	var b gobamm.Builder
	eps := porosityVariable(&b)
	beta := perElectrode(&b, NegativeSurfaceVolumeChange, PositiveSurfaceVolumeChange)
	rhs := b.Neg(b.Mul(beta, j))
	epsInit := perDomain(&b, NegativeInitialPorosity, SeparatorInitialPorosity, PositiveInitialPorosity)
	if err := b.Err(); err != nil {
		return nil, err
	}

	m := gobamm.NewModel()
	m.RHS.Set(eps, rhs)
	m.InitialConditions.Set(eps, epsInit)
	m.Variables["porosity"] = eps
	return m, nil
}
