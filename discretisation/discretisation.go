package discretisation

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/internal/logging"
	"github.com/njchilds90/gobamm/mesh"
	"gonum.org/v1/gonum/mat"
)

// Discretisation lowers trees onto one mesh with one spatial method.
// Operator matrices are built once per domain and shared. It is safe for
// concurrent use.
type Discretisation struct {
	mesh   *mesh.Mesh
	method SpatialMethod
	logger *slog.Logger

	mu       sync.Mutex
	matrices map[matrixKey]*gobamm.Matrix
}

type matrixKey struct {
	kind   gobamm.Kind
	domain string
}

type Option func(*Discretisation)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Discretisation) { d.logger = l }
}

// New returns a discretisation on m. A nil method means FiniteVolume.
func New(m *mesh.Mesh, method SpatialMethod, opts ...Option) (*Discretisation, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: discretisation needs a mesh", gobamm.ErrConfiguration)
	}
	if method == nil {
		method = FiniteVolume{}
	}
	d := &Discretisation{
		mesh:     m,
		method:   method,
		logger:   logging.NewNop(),
		matrices: map[matrixKey]*gobamm.Matrix{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Discretisation) Mesh() *mesh.Mesh      { return d.mesh }
func (d *Discretisation) Method() SpatialMethod { return d.method }

// matrix returns the cached operator of the given kind over domain.
func (d *Discretisation) matrix(kind gobamm.Kind, domain gobamm.Domain) (*gobamm.Matrix, *mesh.SubMesh, error) {
	sub, err := d.mesh.CombineSubmeshes(domain...)
	if err != nil {
		return nil, nil, err
	}
	key := matrixKey{kind: kind, domain: strings.Join(domain, "\x00")}

	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.matrices[key]; ok {
		return m, sub, nil
	}
	build := d.method.GradientMatrix
	if kind == gobamm.KindDivergence {
		build = d.method.DivergenceMatrix
	}
	raw, err := build(sub)
	if err != nil {
		return nil, nil, fmt.Errorf("%s over %v: %w", kind, domain, err)
	}
	m := gobamm.NewMatrix(raw)
	d.matrices[key] = m
	d.logger.Debug("built operator matrix", "method", d.method.Name(), "operator", kind.String(), "domain", domain.String(), "npts", sub.Npts)
	return m, sub, nil
}

// ============================================================
// ProcessSymbol
// ============================================================

// ProcessSymbol discretises s. Variables must have a range in slices;
// boundary conditions are looked up by the ID of the operand of each
// gradient (values) and divergence (fluxes).
func (d *Discretisation) ProcessSymbol(s gobamm.Symbol, sl *Slices, bcs gobamm.BoundaryConditions) (gobamm.Symbol, error) {
	return d.processor(sl, bcs).symbol(s)
}

type processor struct {
	d    *Discretisation
	sl   *Slices
	bcs  gobamm.BoundaryConditions
	seen map[gobamm.ID]gobamm.Symbol
	ones []float64
}

func (d *Discretisation) processor(sl *Slices, bcs gobamm.BoundaryConditions) *processor {
	ones := make([]float64, sl.Size())
	for i := range ones {
		ones[i] = 1
	}
	return &processor{d: d, sl: sl, bcs: bcs, seen: map[gobamm.ID]gobamm.Symbol{}, ones: ones}
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
	case *gobamm.Scalar, *gobamm.Vector, *gobamm.Matrix, *gobamm.StateVector:
		return s, nil
	case *gobamm.Variable:
		r, ok := p.sl.Get(n.ID())
		if !ok {
			return nil, fmt.Errorf("%w: variable %s%v has no state slice", gobamm.ErrConfiguration, n, n.Domain())
		}
		return gobamm.NewStateVector(r.Start, r.Stop, n.Domain()...)
	case *gobamm.Parameter, *gobamm.FunctionParameter:
		return nil, fmt.Errorf("%w: parameter %q must be processed before discretisation: %w",
			gobamm.ErrConfiguration, s.Name(), &gobamm.MissingParameterError{Name: s.Name()})
	case *gobamm.SpatialOperator:
		if n.Kind() == gobamm.KindGradient {
			return p.gradient(n)
		}
		return p.divergence(n)
	case *gobamm.Concatenation:
		return p.concatenation(n)
	case *gobamm.Binary:
		if n.Kind() == gobamm.KindMultiplication && n.Right().Kind() == gobamm.KindGradient {
			return p.diffusivity(n)
		}
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

// size evaluates s on a state of ones and returns its length, or -1 for a
// scalar.
func (p *processor) size(s gobamm.Symbol) (int, error) {
	v, err := gobamm.Evaluate(s, 0, p.ones)
	if err != nil {
		return 0, err
	}
	if v.IsScalar() {
		return -1, nil
	}
	return v.Len(), nil
}

// gradient discretises grad(u). With boundary values for u, a ghost node is
// placed beyond each end so that the mean of the ghost and the end node is
// the boundary value; the result then also covers the two boundary edges.
func (p *processor) gradient(n *gobamm.SpatialOperator) (gobamm.Symbol, error) {
	operand := n.Child()
	domain := operand.Domain()
	if len(domain) == 0 {
		return nil, fmt.Errorf("%w: gradient of %s, which has no domain", gobamm.ErrDomain, operand)
	}
	u, err := p.symbol(operand)
	if err != nil {
		return nil, err
	}
	bc, ok := p.bcs[operand.ID()]
	if !ok {
		m, _, err := p.d.matrix(gobamm.KindGradient, domain)
		if err != nil {
			return nil, err
		}
		return gobamm.MatMulIn(domain, m, u)
	}

	left, right, err := p.boundaryValues(bc)
	if err != nil {
		return nil, err
	}
	first, err := gobamm.NewIndex(u, 0)
	if err != nil {
		return nil, err
	}
	last, err := gobamm.NewIndex(u, -1)
	if err != nil {
		return nil, err
	}
	var b gobamm.Builder
	ghostLeft := b.Sub(b.Mul(2, left), first)
	ghostRight := b.Sub(b.Mul(2, right), last)
	if err := b.Err(); err != nil {
		return nil, err
	}
	extended := slices.Concat(
		gobamm.Domain{gobamm.LeftGhost(domain[0])},
		domain,
		gobamm.Domain{gobamm.RightGhost(domain[len(domain)-1])},
	)
	ghosted, err := gobamm.NewStack(extended, ghostLeft, u, ghostRight)
	if err != nil {
		return nil, err
	}
	m, _, err := p.d.matrix(gobamm.KindGradient, extended)
	if err != nil {
		return nil, err
	}
	return gobamm.MatMulIn(domain, m, ghosted)
}

// divergence discretises div(f). f must supply a value on every edge of its
// domain: either it already does (a gradient with boundary values) or
// boundary fluxes for f are given and are stacked on both ends.
func (p *processor) divergence(n *gobamm.SpatialOperator) (gobamm.Symbol, error) {
	operand := n.Child()
	domain := operand.Domain()
	if len(domain) == 0 {
		return nil, fmt.Errorf("%w: divergence of %s, which has no domain", gobamm.ErrDomain, operand)
	}
	f, err := p.symbol(operand)
	if err != nil {
		return nil, err
	}
	m, sub, err := p.d.matrix(gobamm.KindDivergence, domain)
	if err != nil {
		return nil, err
	}
	if bc, ok := p.bcs[operand.ID()]; ok {
		left, right, err := p.boundaryValues(bc)
		if err != nil {
			return nil, err
		}
		if f, err = gobamm.NewStack(domain, left, f, right); err != nil {
			return nil, err
		}
	}
	size, err := p.size(f)
	if err != nil {
		return nil, fmt.Errorf("divergence of %s: %w", operand, err)
	}
	if size != sub.Npts+1 {
		return nil, fmt.Errorf("%w: divergence of %s needs %d edge values, has %d (missing boundary conditions?)",
			gobamm.ErrConfiguration, operand, sub.Npts+1, size)
	}
	return gobamm.MatMulIn(domain, m, f)
}

func (p *processor) boundaryValues(bc gobamm.BoundaryCondition) (left, right gobamm.Symbol, err error) {
	if bc.Left == nil || bc.Right == nil {
		return nil, nil, fmt.Errorf("%w: boundary condition needs left and right values", gobamm.ErrConfiguration)
	}
	if left, err = p.symbol(bc.Left); err != nil {
		return nil, nil, err
	}
	if right, err = p.symbol(bc.Right); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// diffusivity discretises k * grad(u), moving a node-valued k onto the
// edges of the gradient. A gradient with boundary values also covers the two
// boundary edges, where k takes the value of the end node.
func (p *processor) diffusivity(n *gobamm.Binary) (gobamm.Symbol, error) {
	k, err := p.symbol(n.Left())
	if err != nil {
		return nil, err
	}
	g, err := p.symbol(n.Right())
	if err != nil {
		return nil, err
	}
	domain := n.Right().Domain()
	sub, err := p.d.mesh.CombineSubmeshes(domain...)
	if err != nil {
		return nil, err
	}
	kn, err := p.size(k)
	if err != nil {
		return nil, err
	}
	gn, err := p.size(g)
	if err != nil {
		return nil, err
	}
	if kn != sub.Npts {
		return gobamm.WithChildren(n, []gobamm.Symbol{k, g})
	}
	switch gn {
	case sub.Npts - 1:
		if k, err = p.d.method.ComputeDiffusivity(k, sub); err != nil {
			return nil, err
		}
	case sub.Npts + 1:
		extended := slices.Concat(
			gobamm.Domain{gobamm.LeftGhost(domain[0])},
			domain,
			gobamm.Domain{gobamm.RightGhost(domain[len(domain)-1])},
		)
		ext, err := p.d.mesh.CombineSubmeshes(extended...)
		if err != nil {
			return nil, err
		}
		if k, err = gobamm.MatMulIn(k.Domain(), gobamm.NewMatrix(padEnds(kn)), k); err != nil {
			return nil, err
		}
		if k, err = p.d.method.ComputeDiffusivity(k, ext); err != nil {
			return nil, err
		}
	}
	return gobamm.WithChildren(n, []gobamm.Symbol{k, g})
}

// padEnds returns the (n+2)×n matrix that repeats the first and last of n
// values beyond each end.
func padEnds(n int) mat.Matrix {
	m := mat.NewDense(n+2, n, nil)
	m.Set(0, 0, 1)
	for i := 0; i < n; i++ {
		m.Set(i+1, i, 1)
	}
	m.Set(n+1, n-1, 1)
	return m
}

// concatenation stacks the discretised children. Scalar children are
// broadcast over the nodes of their domain, and a constant result is folded
// into a Vector.
func (p *processor) concatenation(n *gobamm.Concatenation) (gobamm.Symbol, error) {
	children := n.Children()
	constant := true
	for i, c := range children {
		dc, err := p.symbol(c)
		if err != nil {
			return nil, err
		}
		npts, err := p.d.npts(c.Domain())
		if err != nil {
			return nil, err
		}
		size, err := p.size(dc)
		if err != nil {
			return nil, fmt.Errorf("concatenation child %s: %w", c, err)
		}
		switch {
		case size < 0:
			if dc, err = broadcast(dc, npts, c.Domain()); err != nil {
				return nil, err
			}
		case size != npts:
			return nil, fmt.Errorf("%w: concatenation child %s has %d values, its domain %v has %d nodes",
				gobamm.ErrConfiguration, c, size, c.Domain(), npts)
		}
		children[i] = dc
		constant = constant && gobamm.IsConstant(dc)
	}
	st, err := gobamm.NewStack(n.Domain(), children...)
	if err != nil {
		return nil, err
	}
	if !constant {
		return st, nil
	}
	v, err := gobamm.Evaluate(st, 0, nil)
	if err != nil {
		return nil, err
	}
	return gobamm.NewVector(v.Vector(), n.Domain()...)
}

// broadcast repeats the scalar-valued s over npts entries.
func broadcast(s gobamm.Symbol, npts int, domain gobamm.Domain) (gobamm.Symbol, error) {
	ones := make([]float64, npts)
	for i := range ones {
		ones[i] = 1
	}
	if gobamm.IsConstant(s) {
		v, err := gobamm.Evaluate(s, 0, nil)
		if err != nil {
			return nil, err
		}
		for i := range ones {
			ones[i] = v.Scalar()
		}
		return gobamm.NewVector(ones, domain...)
	}
	vec, err := gobamm.NewVector(ones, domain...)
	if err != nil {
		return nil, err
	}
	return gobamm.MulOf(vec, s)
}
