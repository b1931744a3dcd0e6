package mesh

import (
	"fmt"
	"maps"
	"slices"

	"github.com/njchilds90/gobamm"
)

// Limits bounds one spatial variable. Min and Max may be parameter
// expressions until the geometry is processed.
type Limits struct {
	Min gobamm.Symbol
	Max gobamm.Symbol
}

// Geometry maps domain name to spatial variable name to limits.
type Geometry map[string]map[string]Limits

// Spatial variable names.
const (
	X = "x"
	R = "r"
)

// Geometry1DMacro is the through-cell geometry: the negative electrode on
// [0, ln], the separator on [ln, ln+ls] and the positive electrode on
// [ln+ls, 1].
func Geometry1DMacro(ln, ls gobamm.Symbol) (Geometry, error) {
	var b gobamm.Builder
	lnls := b.Add(ln, ls)
	if err := b.Err(); err != nil {
		return nil, err
	}
	return Geometry{
		gobamm.NegativeElectrode: {X: {Min: gobamm.S(0), Max: ln}},
		gobamm.Separator:         {X: {Min: ln, Max: lnls}},
		gobamm.PositiveElectrode: {X: {Min: lnls, Max: gobamm.S(1)}},
	}, nil
}

// Geometry1DMicro is the particle geometry: each particle on r in [0, 1].
func Geometry1DMicro() Geometry {
	return Geometry{
		gobamm.NegativeParticle: {R: {Min: gobamm.S(0), Max: gobamm.S(1)}},
		gobamm.PositiveParticle: {R: {Min: gobamm.S(0), Max: gobamm.S(1)}},
	}
}

// Merge returns the union of geometries. A domain defined twice is an error.
func Merge(gs ...Geometry) (Geometry, error) {
	out := Geometry{}
	for _, g := range gs {
		for _, d := range slices.Sorted(maps.Keys(g)) {
			if _, ok := out[d]; ok {
				return nil, fmt.Errorf("%w: domain %q defined twice in geometry", gobamm.ErrConfiguration, d)
			}
			out[d] = maps.Clone(g[d])
		}
	}
	return out, nil
}

// evaluate resolves limits to numbers. Limits that still hold parameters
// cannot be evaluated and fail with ErrConfiguration.
func (l Limits) evaluate() (min, max float64, err error) {
	if min, err = number(l.Min); err != nil {
		return 0, 0, err
	}
	if max, err = number(l.Max); err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func number(s gobamm.Symbol) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: missing geometry limit", gobamm.ErrConfiguration)
	}
	v, err := gobamm.Evaluate(s, 0, nil)
	if err != nil || !v.IsScalar() {
		return 0, fmt.Errorf("%w: geometry limit %s does not evaluate to a number (process the geometry first)", gobamm.ErrConfiguration, s)
	}
	return v.Scalar(), nil
}
