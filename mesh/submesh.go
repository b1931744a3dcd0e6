package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/njchilds90/gobamm"
)

// SubMesh is a 1-D cell-centred mesh. Nodes are the cell midpoints.
type SubMesh struct {
	Edges  []float64
	Nodes  []float64
	DEdges []float64
	DNodes []float64
	Npts   int
}

// NewSubMesh builds a submesh from strictly increasing edges.
func NewSubMesh(edges []float64) (*SubMesh, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: submesh needs at least two edges, got %d", gobamm.ErrConfiguration, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, fmt.Errorf("%w: submesh edges must be strictly increasing (edge %d: %g <= %g)",
				gobamm.ErrConfiguration, i, edges[i], edges[i-1])
		}
	}
	m := &SubMesh{
		Edges: append([]float64(nil), edges...),
		Npts:  len(edges) - 1,
	}
	m.Nodes = make([]float64, m.Npts)
	m.DEdges = make([]float64, m.Npts)
	for i := range m.Nodes {
		m.Nodes[i] = (edges[i] + edges[i+1]) / 2
		m.DEdges[i] = edges[i+1] - edges[i]
	}
	m.DNodes = make([]float64, m.Npts-1)
	for i := range m.DNodes {
		m.DNodes[i] = m.Nodes[i+1] - m.Nodes[i]
	}
	return m, nil
}

// Generator builds a submesh with npts cells on [min, max].
type Generator func(min, max float64, npts int) (*SubMesh, error)

// Uniform1D is the Generator for equally sized cells.
func Uniform1D(min, max float64, npts int) (*SubMesh, error) {
	if npts < 1 {
		return nil, fmt.Errorf("%w: submesh needs at least one point, got %d", gobamm.ErrConfiguration, npts)
	}
	if !(max > min) {
		return nil, fmt.Errorf("%w: submesh limits [%g, %g] are empty", gobamm.ErrConfiguration, min, max)
	}
	edges := floats.Span(make([]float64, npts+1), min, max)
	edges[npts] = max
	return NewSubMesh(edges)
}

// ghosts returns the one-cell submeshes mirrored across each end of m.
func (m *SubMesh) ghosts() (left, right *SubMesh, err error) {
	e := m.Edges
	n := len(e) - 1
	if left, err = NewSubMesh([]float64{2*e[0] - e[1], e[0]}); err != nil {
		return nil, nil, err
	}
	if right, err = NewSubMesh([]float64{e[n], 2*e[n] - e[n-1]}); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
