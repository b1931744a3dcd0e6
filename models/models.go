package models

import (
	"fmt"
	"maps"
	"slices"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/mesh"
	"github.com/njchilds90/gobamm/parameters"
)

// Model is a set of equations with the settings it runs with by default.
type Model struct {
	*gobamm.Model
	Name     string
	Defaults Defaults
}

// Defaults are the settings a simulation uses unless told otherwise.
type Defaults struct {
	// Parameters builds a fresh parameter table.
	Parameters   func(...parameters.Option) (*parameters.Values, error)
	Geometry     mesh.Geometry
	SubmeshTypes map[string]mesh.Generator
	SubmeshPts   map[string]map[string]int
	Solver       string
	Tolerance    float64
}

// DefaultGeometry is the through-cell geometry with the electrode and
// separator widths left as parameters.
func DefaultGeometry() (mesh.Geometry, error) {
	var b gobamm.Builder
	ln := b.Parameter(NegativeElectrodeWidth)
	ls := b.Parameter(SeparatorWidth)
	if err := b.Err(); err != nil {
		return nil, err
	}
	return mesh.Geometry1DMacro(ln, ls)
}

// DefaultSubmeshPts is the number of points per domain for each spatial
// variable.
func DefaultSubmeshPts() map[string]map[string]int {
	return map[string]map[string]int{
		gobamm.NegativeElectrode: {mesh.X: 10},
		gobamm.Separator:         {mesh.X: 10},
		gobamm.PositiveElectrode: {mesh.X: 10},
		gobamm.NegativeParticle:  {mesh.R: 10},
		gobamm.PositiveParticle:  {mesh.R: 10},
	}
}

func defaults() (Defaults, error) {
	geo, err := DefaultGeometry()
	if err != nil {
		return Defaults{}, err
	}
	return Defaults{
		Parameters: DefaultParameters,
		Geometry:   geo,
		SubmeshPts: DefaultSubmeshPts(),
		Solver:     "bdf1",
		Tolerance:  1e-4,
	}, nil
}

// ReactionDiffusion is electrolyte diffusion with a homogeneous reaction.
func ReactionDiffusion() (*Model, error) {
	g, err := HomogeneousReaction()
	if err != nil {
		return nil, err
	}
	sub, err := StefanMaxwellDiffusion(g)
	if err != nil {
		return nil, err
	}
	return compose("reaction-diffusion", sub)
}

// LeadAcidFull1D is acid diffusion with evolving porosity across a lead-acid
// cell. The interfacial current is homogeneous: a Butler-Volmer current
// would need the potentials, which are algebraic unknowns.
func LeadAcidFull1D() (*Model, error) {
	j, err := HomogeneousReaction()
	if err != nil {
		return nil, err
	}
	conc, err := StefanMaxwellDiffusionWithPorosity(j)
	if err != nil {
		return nil, err
	}
	porosity, err := Porosity(j)
	if err != nil {
		return nil, err
	}
	return compose("lead-acid full 1D", conc, porosity)
}

func compose(name string, subs ...*gobamm.Model) (*Model, error) {
	m := gobamm.NewModel()
	if err := m.Update(subs...); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	d, err := defaults()
	if err != nil {
		return nil, err
	}
	return &Model{Model: m, Name: name, Defaults: d}, nil
}

var registry = map[string]func() (*Model, error){
	"reaction-diffusion": ReactionDiffusion,
	"lead-acid-full-1d":  LeadAcidFull1D,
}

// Names lists the models Get knows, sorted.
func Names() []string { return slices.Sorted(maps.Keys(registry)) }

// Get builds the model registered as name.
func Get(name string) (*Model, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q (known: %v)", gobamm.ErrConfiguration, name, Names())
	}
	return build()
}
