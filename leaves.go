package gobamm

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Scalar: numeric constant
// ============================================================

type Scalar struct {
	base
	value float64
}

// S returns a Scalar without a domain.
func S(v float64) *Scalar {
	s := &Scalar{value: v}
	s.init(KindScalar, formatFloat(v), nil, nil)
	return s
}

// NewScalar returns a Scalar tagged with domain.
func NewScalar(v float64, domain ...string) (*Scalar, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	s := &Scalar{value: v}
	s.init(KindScalar, formatFloat(v), domain, nil)
	return s, nil
}

func (s *Scalar) Value() float64 { return s.value }
func (s *Scalar) String() string { return s.name }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ============================================================
// Parameter: named value resolved by substitution
// ============================================================

type Parameter struct{ base }

func NewParameter(name string, domain ...string) (*Parameter, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	p := &Parameter{}
	p.init(KindParameter, name, domain, nil)
	return p, nil
}

func (p *Parameter) String() string { return p.name }

// ============================================================
// FunctionParameter: function-valued parameter applied to arguments
// ============================================================

type FunctionParameter struct{ base }

// NewFunctionParameter returns the parameter name applied to args, e.g. D(c).
// Its domain is the common domain of the arguments.
func NewFunctionParameter(name string, args ...Symbol) (*FunctionParameter, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: function parameter %q needs at least one argument", ErrConfiguration, name)
	}
	domain, err := commonDomain(args)
	if err != nil {
		return nil, err
	}
	p := &FunctionParameter{}
	p.init(KindFunctionParameter, name, domain, slices.Clone(args))
	return p, nil
}

func (p *FunctionParameter) String() string { return callString(p.name, p.children) }

// ============================================================
// Variable: unknown function of space and time
// ============================================================

type Variable struct{ base }

func NewVariable(name string, domain ...string) (*Variable, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	v := &Variable{}
	v.init(KindVariable, name, domain, nil)
	return v, nil
}

func (v *Variable) String() string { return v.name }

// ============================================================
// Vector: numeric column vector
// ============================================================

type Vector struct {
	base
	data []float64
}

// NewVector copies data into a new Vector leaf.
func NewVector(data []float64, domain ...string) (*Vector, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	v := &Vector{data: slices.Clone(data)}
	if v.data == nil {
		v.data = []float64{}
	}
	v.init(KindVector, "Vector", domain, nil, floatBits(v.data)...)
	return v, nil
}

// Data returns a copy of the vector entries.
func (v *Vector) Data() []float64 { return slices.Clone(v.data) }
func (v *Vector) Len() int        { return len(v.data) }
func (v *Vector) String() string  { return fmt.Sprintf("Vector(%d)", len(v.data)) }

// ============================================================
// Matrix: numeric matrix, usually a discretised operator
// ============================================================

type Matrix struct {
	base
	m mat.Matrix
}

// NewMatrix wraps m. The caller must not modify m afterwards.
func NewMatrix(m mat.Matrix) *Matrix {
	r, c := m.Dims()
	payload := []uint64{uint64(r), uint64(c)}
	add := func(i, j int, v float64) {
		payload = append(payload, uint64(i*c+j), math.Float64bits(v))
	}
	if nz, ok := m.(mat.NonZeroDoer); ok {
		nz.DoNonZero(add)
	} else {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if v := m.At(i, j); v != 0 {
					add(i, j, v)
				}
			}
		}
	}
	x := &Matrix{m: m}
	x.init(KindMatrix, "Matrix", nil, nil, payload...)
	return x
}

func (m *Matrix) Mat() mat.Matrix { return m.m }
func (m *Matrix) String() string {
	r, c := m.m.Dims()
	return fmt.Sprintf("Matrix(%dx%d)", r, c)
}

// ============================================================
// StateVector: slice of the global state vector
// ============================================================

type StateVector struct {
	base
	start, stop int
}

func NewStateVector(start, stop int, domain ...string) (*StateVector, error) {
	if start < 0 || stop < start {
		return nil, fmt.Errorf("%w: invalid state vector slice [%d:%d]", ErrConfiguration, start, stop)
	}
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	sv := &StateVector{start: start, stop: stop}
	sv.init(KindStateVector, fmt.Sprintf("y[%d:%d]", start, stop), domain, nil)
	return sv, nil
}

func (s *StateVector) Start() int     { return s.start }
func (s *StateVector) Stop() int      { return s.stop }
func (s *StateVector) Len() int       { return s.stop - s.start }
func (s *StateVector) String() string { return s.name }

func callString(name string, args []Symbol) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func commonDomain(children []Symbol) (Domain, error) {
	var d Domain
	for _, c := range children {
		var err error
		if d, err = mergeDomains(d, c.node().domain); err != nil {
			return nil, err
		}
	}
	return d, nil
}
