// Package fem assembles one-dimensional weak-form operators.
//
// Trial functions are continuous piecewise-linear hats, one per point. Test
// functions are piecewise constant, one per element between consecutive
// points. Integrals are computed element by element with Gauss-Legendre
// quadrature.
package fem

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/gobamm"
)

// Backend assembles, for the elements between consecutive points, the
// derivative matrix G (elements × points) with G[k][j] = ∫ ψ_k φ_j' dx and the
// element mass matrix M (elements × elements) with M[k][l] = ∫ ψ_k ψ_l dx.
type Backend interface {
	Name() string
	Assemble(points []float64) (g, m mat.Matrix, err error)
}

// P1 is the piecewise-linear trial / piecewise-constant test backend.
type P1 struct {
	// QuadratureOrder is the number of Gauss-Legendre points per element.
	// Zero means 2, which integrates the element products exactly.
	QuadratureOrder int
}

func (P1) Name() string { return "p1" }

func (b P1) Assemble(points []float64) (mat.Matrix, mat.Matrix, error) {
	n := len(points)
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least two points to assemble, got %d", gobamm.ErrConfiguration, n)
	}
	order := b.QuadratureOrder
	if order <= 0 {
		order = 2
	}
	k := n - 1
	g := mat.NewDense(k, n, nil)
	m := mat.NewDiagDense(k, nil)
	for e := 0; e < k; e++ {
		lo, hi := points[e], points[e+1]
		h := hi - lo
		if !(h > 0) {
			return nil, nil, fmt.Errorf("%w: points must be strictly increasing (%g, %g)", gobamm.ErrConfiguration, lo, hi)
		}
		// The hats of points e and e+1 are the only ones supported on the
		// element; their slopes are -1/h and +1/h.
		down := quad.Fixed(func(float64) float64 { return -1 / h }, lo, hi, order, quad.Legendre{}, 0)
		up := quad.Fixed(func(float64) float64 { return 1 / h }, lo, hi, order, quad.Legendre{}, 0)
		g.Set(e, e, down)
		g.Set(e, e+1, up)
		m.SetDiag(e, quad.Fixed(func(float64) float64 { return 1 }, lo, hi, order, quad.Legendre{}, 0))
	}
	return g, m, nil
}

// Derivative returns M⁻¹G, the discrete first derivative mapping point values
// to element values.
func Derivative(b Backend, points []float64) (*mat.Dense, error) {
	g, m, err := b.Assemble(points)
	if err != nil {
		return nil, err
	}
	var d mat.Dense
	if err := d.Solve(m, g); err != nil {
		return nil, fmt.Errorf("%w: %s mass matrix: %v", gobamm.ErrConfiguration, b.Name(), err)
	}
	return &d, nil
}
