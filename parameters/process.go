package parameters

import (
	"fmt"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/mesh"
)

// processor substitutes parameters in one or more trees, sharing results for
// repeated subtrees. seen maps the ID of every visited node to its result.
type processor struct {
	v    *Values
	seen map[gobamm.ID]gobamm.Symbol
}

func (v *Values) processor() *processor {
	return &processor{v: v, seen: map[gobamm.ID]gobamm.Symbol{}}
}

// ProcessSymbol returns s with every Parameter replaced by a Scalar carrying
// the parameter's domain and every FunctionParameter replaced by a Function
// of the processed arguments. Other nodes are rebuilt only when a descendant
// changed.
func (v *Values) ProcessSymbol(s gobamm.Symbol) (gobamm.Symbol, error) {
	return v.processor().symbol(s)
}

func (p *processor) symbol(s gobamm.Symbol) (gobamm.Symbol, error) {
	if out, ok := p.seen[s.ID()]; ok {
		return out, nil
	}
	out, err := p.rewrite(s)
	if err != nil {
		return nil, err
	}
	p.seen[s.ID()] = out
	return out, nil
}

func (p *processor) rewrite(s gobamm.Symbol) (gobamm.Symbol, error) {
	switch n := s.(type) {
	case *gobamm.Parameter:
		e, err := p.v.Get(n.Name())
		if err != nil {
			return nil, err
		}
		if e.IsFunction() {
			return nil, fmt.Errorf("%w: parameter %q is function-valued (%s) but has no arguments", gobamm.ErrConfiguration, n.Name(), e.Function)
		}
		return gobamm.NewScalar(e.Value, n.Domain()...)
	case *gobamm.FunctionParameter:
		e, err := p.v.Get(n.Name())
		if err != nil {
			return nil, err
		}
		if !e.IsFunction() {
			return gobamm.NewScalar(e.Value, n.Domain()...)
		}
		fn, ok := p.v.funcs[e.Function]
		if !ok {
			return nil, fmt.Errorf("parameter %q: %w", n.Name(), &gobamm.MissingParameterError{Name: e.Function})
		}
		args, err := p.children(n)
		if err != nil {
			return nil, err
		}
		return gobamm.FuncOf(e.Function, fn, args...)
	}
	children, err := p.children(s)
	if err != nil {
		return nil, err
	}
	return gobamm.WithChildren(s, children)
}

func (p *processor) children(s gobamm.Symbol) ([]gobamm.Symbol, error) {
	children := s.Children()
	for i, c := range children {
		pc, err := p.symbol(c)
		if err != nil {
			return nil, err
		}
		children[i] = pc
	}
	return children, nil
}

// ProcessModel returns a new model with parameters substituted in every
// equation, key, boundary condition, output variable and event. Boundary
// conditions are re-keyed by the IDs of the processed operands.
func (v *Values) ProcessModel(m *gobamm.Model) (*gobamm.Model, error) {
	p := v.processor()
	out := gobamm.NewModel()

	equations := func(dst, src *gobamm.Equations) error {
		for _, eq := range src.All() {
			key, err := p.symbol(eq.Key)
			if err != nil {
				return err
			}
			expr, err := p.symbol(eq.Expr)
			if err != nil {
				return fmt.Errorf("equation for %s: %w", eq.Key, err)
			}
			dst.Set(key, expr)
		}
		return nil
	}
	if err := equations(out.RHS, m.RHS); err != nil {
		return nil, err
	}
	if err := equations(out.InitialConditions, m.InitialConditions); err != nil {
		return nil, err
	}
	for name, s := range m.Variables {
		ps, err := p.symbol(s)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		out.Variables[name] = ps
	}
	for name, s := range m.Events {
		ps, err := p.symbol(s)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", name, err)
		}
		out.Events[name] = ps
	}
	for id, bc := range m.BoundaryConditions {
		operand, ok := p.seen[id]
		if !ok {
			return nil, fmt.Errorf("%w: boundary condition %s does not match any expression of the model", gobamm.ErrConfiguration, id)
		}
		left, err := p.symbol(bc.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.symbol(bc.Right)
		if err != nil {
			return nil, err
		}
		out.BoundaryConditions[operand.ID()] = gobamm.BoundaryCondition{Left: left, Right: right}
	}
	v.logger.Debug("parameters processed",
		"equations", out.RHS.Len(),
		"boundary_conditions", len(out.BoundaryConditions),
		"nodes", len(p.seen))
	return out, nil
}

// ProcessGeometry returns a copy of g with every limit reduced to a Scalar.
func (v *Values) ProcessGeometry(g mesh.Geometry) (mesh.Geometry, error) {
	p := v.processor()
	out := mesh.Geometry{}
	for domain, vars := range g {
		out[domain] = map[string]mesh.Limits{}
		for name, lims := range vars {
			min, err := p.number(lims.Min)
			if err != nil {
				return nil, fmt.Errorf("geometry %s.%s: %w", domain, name, err)
			}
			max, err := p.number(lims.Max)
			if err != nil {
				return nil, fmt.Errorf("geometry %s.%s: %w", domain, name, err)
			}
			out[domain][name] = mesh.Limits{Min: gobamm.S(min), Max: gobamm.S(max)}
		}
	}
	return out, nil
}

func (p *processor) number(s gobamm.Symbol) (float64, error) {
	ps, err := p.symbol(s)
	if err != nil {
		return 0, err
	}
	val, err := gobamm.Evaluate(ps, 0, nil)
	if err != nil {
		return 0, err
	}
	if !val.IsScalar() {
		return 0, fmt.Errorf("%w: limit %s is not a number", gobamm.ErrConfiguration, s)
	}
	return val.Scalar(), nil
}
