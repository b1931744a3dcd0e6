package discretisation

import (
	"fmt"

	"github.com/njchilds90/gobamm"
)

// Discretised is a model lowered to a system dy/dt = RHS(t, y) on a flat
// state vector.
type Discretised struct {
	Slices    *Slices
	RHS       gobamm.Symbol
	Y0        []float64
	Variables map[string]gobamm.Symbol
	Events    map[string]gobamm.Symbol
}

// Size is the length of the state vector.
func (d *Discretised) Size() int { return d.Slices.Size() }

// ProcessModel checks m, lays out its unknowns, discretises every equation,
// output variable and event, and evaluates the initial state. m must be
// free of parameters.
func (d *Discretisation) ProcessModel(m *gobamm.Model) (*Discretised, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	keys := m.RHS.Keys()
	sl, err := d.VariableSlices(keys...)
	if err != nil {
		return nil, err
	}
	p := d.processor(sl, m.BoundaryConditions)

	out := &Discretised{
		Slices:    sl,
		Y0:        make([]float64, 0, sl.Size()),
		Variables: map[string]gobamm.Symbol{},
		Events:    map[string]gobamm.Symbol{},
	}
	rhs := make([]gobamm.Symbol, len(keys))
	for i, key := range keys {
		eq, _ := m.RHS.Get(key.ID())
		n, err := keyLen(sl, key)
		if err != nil {
			return nil, err
		}
		expr, err := p.symbol(eq.Expr)
		if err != nil {
			return nil, fmt.Errorf("rhs of %s: %w", key, err)
		}
		size, err := p.size(expr)
		if err != nil {
			return nil, fmt.Errorf("rhs of %s: %w", key, err)
		}
		switch {
		case size < 0:
			if expr, err = broadcast(expr, n, key.Domain()); err != nil {
				return nil, err
			}
		case size != n:
			return nil, fmt.Errorf("%w: rhs of %s has %d values for %d unknowns", gobamm.ErrConfiguration, key, size, n)
		}
		rhs[i] = expr

		ic, _ := m.InitialConditions.Get(key.ID())
		y0, err := p.initial(ic.Expr, n)
		if err != nil {
			return nil, fmt.Errorf("initial condition of %s: %w", key, err)
		}
		out.Y0 = append(out.Y0, y0...)
	}
	if out.RHS, err = gobamm.NewStack(nil, rhs...); err != nil {
		return nil, err
	}
	for name, s := range m.Variables {
		if out.Variables[name], err = p.symbol(s); err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
	}
	for name, s := range m.Events {
		if out.Events[name], err = p.symbol(s); err != nil {
			return nil, fmt.Errorf("event %q: %w", name, err)
		}
	}
	d.logger.Debug("model discretised", "method", d.method.Name(), "unknowns", sl.Size(), "equations", len(keys))
	return out, nil
}

func keyLen(sl *Slices, key gobamm.Symbol) (int, error) {
	if key.Kind() == gobamm.KindConcatenation {
		n := 0
		for _, c := range key.Children() {
			cn, err := keyLen(sl, c)
			if err != nil {
				return 0, err
			}
			n += cn
		}
		return n, nil
	}
	r, ok := sl.Get(key.ID())
	if !ok {
		return 0, fmt.Errorf("%w: %s has no state slice", gobamm.ErrConfiguration, key)
	}
	return r.Len(), nil
}

// initial evaluates a constant initial condition to n values, broadcasting
// scalars.
func (p *processor) initial(ic gobamm.Symbol, n int) ([]float64, error) {
	s, err := p.symbol(ic)
	if err != nil {
		return nil, err
	}
	v, err := gobamm.Evaluate(s, 0, nil)
	if err != nil {
		return nil, err
	}
	out, err := v.Float64s(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gobamm.ErrConfiguration, err)
	}
	return out, nil
}
