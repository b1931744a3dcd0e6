package discretisation

import (
	"fmt"

	"github.com/njchilds90/gobamm"
)

// Slice is the half-open range [Start, Stop) of the state vector.
type Slice struct {
	Start, Stop int
}

func (s Slice) Len() int { return s.Stop - s.Start }

// Slices assigns each variable a contiguous range of the state vector, in
// the order the variables were given.
type Slices struct {
	order  []gobamm.Symbol
	ranges map[gobamm.ID]Slice
	size   int
}

// Get returns the range of the variable with the given ID.
func (s *Slices) Get(id gobamm.ID) (Slice, bool) {
	r, ok := s.ranges[id]
	return r, ok
}

// Variables lists the variables in state order.
func (s *Slices) Variables() []gobamm.Symbol { return append([]gobamm.Symbol(nil), s.order...) }

// Size is the length of the state vector.
func (s *Slices) Size() int { return s.size }

// VariableSlices lays out the given variables one after another. A
// Concatenation of variables is expanded into its children. Each variable
// takes as many entries as its domain has nodes, or one if it has no domain.
func (d *Discretisation) VariableSlices(vars ...gobamm.Symbol) (*Slices, error) {
	s := &Slices{ranges: map[gobamm.ID]Slice{}}
	var add func(v gobamm.Symbol) error
	add = func(v gobamm.Symbol) error {
		switch v.Kind() {
		case gobamm.KindConcatenation:
			for _, c := range v.Children() {
				if err := add(c); err != nil {
					return err
				}
			}
			return nil
		case gobamm.KindVariable:
		default:
			return fmt.Errorf("%w: state key %s is a %s, not a variable", gobamm.ErrConfiguration, v, v.Kind())
		}
		if _, dup := s.ranges[v.ID()]; dup {
			return fmt.Errorf("%w: variable %s appears twice in the state", gobamm.ErrConfiguration, v)
		}
		n, err := d.npts(v.Domain())
		if err != nil {
			return fmt.Errorf("variable %s: %w", v, err)
		}
		s.ranges[v.ID()] = Slice{Start: s.size, Stop: s.size + n}
		s.order = append(s.order, v)
		s.size += n
		d.logger.Debug("allocated state slice", "variable", v.Name(), "domain", v.Domain().String(), "start", s.size-n, "stop", s.size)
		return nil
	}
	for _, v := range vars {
		if err := add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (d *Discretisation) npts(domain gobamm.Domain) (int, error) {
	if len(domain) == 0 {
		return 1, nil
	}
	sub, err := d.mesh.CombineSubmeshes(domain...)
	if err != nil {
		return 0, err
	}
	return sub.Npts, nil
}
