package discretisation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/discretisation/fem"
	"github.com/njchilds90/gobamm/mesh"
)

// SpatialMethod supplies the matrices of the discrete spatial operators.
type SpatialMethod interface {
	Name() string
	// GradientMatrix maps the npts node values of sub to the npts-1 values
	// on the edges between nodes.
	GradientMatrix(sub *mesh.SubMesh) (mat.Matrix, error)
	// DivergenceMatrix maps the npts+1 edge values of sub to npts node values.
	DivergenceMatrix(sub *mesh.SubMesh) (mat.Matrix, error)
	// ComputeDiffusivity moves a node-valued coefficient s, which multiplies
	// a gradient, onto the npts-1 gradient values of sub.
	ComputeDiffusivity(s gobamm.Symbol, sub *mesh.SubMesh) (gobamm.Symbol, error)
}

// ============================================================
// FiniteVolume
// ============================================================

// FiniteVolume differences neighbouring values: gradients by
// (v[i+1]-v[i])/DNodes[i] and divergences by (f[i+1]-f[i])/DEdges[i].
type FiniteVolume struct{}

func (FiniteVolume) Name() string { return "finite volume" }

func (FiniteVolume) GradientMatrix(sub *mesh.SubMesh) (mat.Matrix, error) {
	return difference(sub.DNodes, "gradient")
}

func (FiniteVolume) DivergenceMatrix(sub *mesh.SubMesh) (mat.Matrix, error) {
	return difference(sub.DEdges, "divergence")
}

// ComputeDiffusivity averages neighbouring node values onto the interior
// edges.
func (FiniteVolume) ComputeDiffusivity(s gobamm.Symbol, sub *mesh.SubMesh) (gobamm.Symbol, error) {
	return averageNodes(s, sub.Npts)
}

// averageNodes maps the n node values of s to the n-1 means of neighbouring
// nodes.
func averageNodes(s gobamm.Symbol, n int) (gobamm.Symbol, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: cannot average over %d node", gobamm.ErrConfiguration, n)
	}
	a := mat.NewBandDense(n-1, n, 0, 1, nil)
	for i := 0; i < n-1; i++ {
		a.SetBand(i, i, 0.5)
		a.SetBand(i, i+1, 0.5)
	}
	return gobamm.MatMulIn(s.Domain(), gobamm.NewMatrix(a), s)
}

// difference returns the len(h)×(len(h)+1) banded matrix with rows
// [-1/h[i], 1/h[i]].
func difference(h []float64, what string) (mat.Matrix, error) {
	if len(h) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least two points", gobamm.ErrConfiguration, what)
	}
	m := mat.NewBandDense(len(h), len(h)+1, 0, 1, nil)
	for i, d := range h {
		m.SetBand(i, i, -1/d)
		m.SetBand(i, i+1, 1/d)
	}
	return m, nil
}

// ============================================================
// FiniteElement
// ============================================================

// FiniteElement assembles its operators from weak-form integrals computed by
// an assembly backend.
type FiniteElement struct {
	backend fem.Backend
}

// NewFiniteElement returns the finite-element method for backend. A nil
// backend fails with ErrBackendUnavailable.
func NewFiniteElement(backend fem.Backend) (*FiniteElement, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: finite elements need an assembly backend", gobamm.ErrBackendUnavailable)
	}
	return &FiniteElement{backend: backend}, nil
}

func (f *FiniteElement) Name() string { return "finite element (" + f.backend.Name() + ")" }

func (f *FiniteElement) GradientMatrix(sub *mesh.SubMesh) (mat.Matrix, error) {
	return fem.Derivative(f.backend, sub.Nodes)
}

func (f *FiniteElement) DivergenceMatrix(sub *mesh.SubMesh) (mat.Matrix, error) {
	return fem.Derivative(f.backend, sub.Edges)
}

// ComputeDiffusivity projects a linear coefficient onto the elements, where
// its mean is the average of the two element nodes.
func (f *FiniteElement) ComputeDiffusivity(s gobamm.Symbol, sub *mesh.SubMesh) (gobamm.Symbol, error) {
	return averageNodes(s, sub.Npts)
}
