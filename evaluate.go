package gobamm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Value: result of an evaluation
// ============================================================

// Value is a scalar, a column vector or a matrix.
type Value struct {
	scalar float64
	vec    []float64
	mat    mat.Matrix
}

func ScalarValue(v float64) Value    { return Value{scalar: v} }
func VectorValue(v []float64) Value  { return Value{vec: nonNil(v)} }
func MatrixValue(m mat.Matrix) Value { return Value{mat: m} }

func (v Value) IsScalar() bool { return v.vec == nil && v.mat == nil }
func (v Value) IsVector() bool { return v.vec != nil }
func (v Value) IsMatrix() bool { return v.mat != nil }

// Scalar returns the scalar value, or the only entry of a length-1 vector.
// Any other value is NaN.
func (v Value) Scalar() float64 {
	switch {
	case v.IsScalar():
		return v.scalar
	case len(v.vec) == 1:
		return v.vec[0]
	}
	return math.NaN()
}

// Vector returns the entries of a vector value. The slice may alias the state
// vector passed to Evaluate and must not be modified.
func (v Value) Vector() []float64  { return v.vec }
func (v Value) Matrix() mat.Matrix { return v.mat }

// Len is 1 for scalars, the length for vectors and the row count for matrices.
func (v Value) Len() int {
	switch {
	case v.vec != nil:
		return len(v.vec)
	case v.mat != nil:
		r, _ := v.mat.Dims()
		return r
	}
	return 1
}

// At returns entry i of a vector, or the scalar for every i.
func (v Value) At(i int) float64 {
	if v.vec != nil {
		return v.vec[i]
	}
	return v.scalar
}

// Float64s returns the value as a new slice of length n, broadcasting scalars.
func (v Value) Float64s(n int) ([]float64, error) {
	out := make([]float64, n)
	switch {
	case v.IsScalar():
		for i := range out {
			out[i] = v.scalar
		}
	case v.vec != nil && len(v.vec) == n:
		copy(out, v.vec)
	default:
		return nil, fmt.Errorf("%w: value of length %d does not fit %d entries", ErrEvaluation, v.Len(), n)
	}
	return out, nil
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// ============================================================
// Evaluate
// ============================================================

// Evaluate computes the value of a fully resolved tree at time t and state y.
// It fails with ErrEvaluation on parameters, variables and symbolic spatial
// operators.
func Evaluate(s Symbol, t float64, y []float64) (Value, error) {
	switch n := s.(type) {
	case *Scalar:
		return ScalarValue(n.value), nil
	case *Vector:
		return VectorValue(n.data), nil
	case *Matrix:
		return MatrixValue(n.m), nil
	case *StateVector:
		if n.stop > len(y) {
			return Value{}, fmt.Errorf("%w: %s out of range for state of length %d", ErrEvaluation, n.name, len(y))
		}
		return VectorValue(y[n.start:n.stop]), nil
	case *Parameter, *FunctionParameter, *Variable, *SpatialOperator:
		return Value{}, fmt.Errorf("%w: cannot evaluate unresolved %s %q", ErrEvaluation, s.Kind(), s.Name())
	case *Unary:
		v, err := Evaluate(n.children[0], t, y)
		if err != nil {
			return Value{}, err
		}
		if n.kind == KindNegate {
			return mapValue(v, func(x float64) float64 { return -x })
		}
		return mapValue(v, math.Abs)
	case *Binary:
		l, err := Evaluate(n.children[0], t, y)
		if err != nil {
			return Value{}, err
		}
		r, err := Evaluate(n.children[1], t, y)
		if err != nil {
			return Value{}, err
		}
		return evalBinary(n.kind, l, r)
	case *Concatenation:
		return evalStack(n.children, t, y)
	case *Stack:
		return evalStack(n.children, t, y)
	case *Index:
		v, err := Evaluate(n.children[0], t, y)
		if err != nil {
			return Value{}, err
		}
		if !v.IsVector() {
			return Value{}, fmt.Errorf("%w: index of non-vector %s", ErrEvaluation, n.children[0])
		}
		i := n.index
		if i < 0 {
			i += len(v.vec)
		}
		if i < 0 || i >= len(v.vec) {
			return Value{}, fmt.Errorf("%w: index %d out of range for length %d", ErrEvaluation, n.index, len(v.vec))
		}
		return ScalarValue(v.vec[i]), nil
	case *Function:
		return evalFunction(n, t, y)
	}
	return Value{}, fmt.Errorf("%w: unknown node %T", ErrEvaluation, s)
}

func mapValue(v Value, f func(float64) float64) (Value, error) {
	switch {
	case v.IsMatrix():
		return Value{}, fmt.Errorf("%w: elementwise operation on a matrix", ErrEvaluation)
	case v.IsScalar():
		return ScalarValue(f(v.scalar)), nil
	}
	out := make([]float64, len(v.vec))
	for i, x := range v.vec {
		out[i] = f(x)
	}
	return VectorValue(out), nil
}

func evalBinary(kind Kind, l, r Value) (Value, error) {
	if kind == KindMatrixMultiplication {
		return matVec(l, r)
	}
	if l.IsMatrix() || r.IsMatrix() {
		return Value{}, fmt.Errorf("%w: %s with a matrix operand", ErrEvaluation, kind)
	}
	var op func(a, b float64) float64
	switch kind {
	case KindAddition:
		op = func(a, b float64) float64 { return a + b }
	case KindSubtraction:
		op = func(a, b float64) float64 { return a - b }
	case KindMultiplication:
		op = func(a, b float64) float64 { return a * b }
	case KindDivision:
		op = func(a, b float64) float64 { return a / b }
	case KindPower:
		op = math.Pow
	default:
		return Value{}, fmt.Errorf("%w: unknown binary operator %s", ErrEvaluation, kind)
	}
	if l.IsScalar() && r.IsScalar() {
		return ScalarValue(op(l.scalar, r.scalar)), nil
	}
	n, err := broadcastLen(l, r)
	if err != nil {
		return Value{}, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = op(l.At(i), r.At(i))
	}
	return VectorValue(out), nil
}

func broadcastLen(vs ...Value) (int, error) {
	n := -1
	for _, v := range vs {
		if v.IsScalar() {
			continue
		}
		switch {
		case n < 0:
			n = len(v.vec)
		case n != len(v.vec):
			return 0, fmt.Errorf("%w: vector lengths %d and %d do not match", ErrEvaluation, n, len(v.vec))
		}
	}
	return n, nil
}

func matVec(l, r Value) (Value, error) {
	if !l.IsMatrix() {
		return Value{}, fmt.Errorf("%w: left operand of @ is not a matrix", ErrEvaluation)
	}
	rows, cols := l.mat.Dims()
	if rows == 0 || cols == 0 {
		return Value{}, fmt.Errorf("%w: empty %dx%d matrix", ErrEvaluation, rows, cols)
	}
	if !r.IsVector() || len(r.vec) != cols {
		return Value{}, fmt.Errorf("%w: %dx%d matrix times operand of length %d", ErrEvaluation, rows, cols, r.Len())
	}
	out := mat.NewVecDense(rows, nil)
	out.MulVec(l.mat, mat.NewVecDense(cols, r.vec))
	return VectorValue(out.RawVector().Data), nil
}

func evalStack(children []Symbol, t float64, y []float64) (Value, error) {
	parts := make([]Value, len(children))
	n := 0
	for i, c := range children {
		v, err := Evaluate(c, t, y)
		if err != nil {
			return Value{}, err
		}
		if v.IsMatrix() {
			return Value{}, fmt.Errorf("%w: cannot stack a matrix", ErrEvaluation)
		}
		parts[i] = v
		n += v.Len()
	}
	out := make([]float64, 0, n)
	for _, v := range parts {
		if v.IsScalar() {
			out = append(out, v.scalar)
		} else {
			out = append(out, v.vec...)
		}
	}
	return VectorValue(out), nil
}

func evalFunction(f *Function, t float64, y []float64) (Value, error) {
	args := make([]Value, len(f.children))
	for i, c := range f.children {
		v, err := Evaluate(c, t, y)
		if err != nil {
			return Value{}, err
		}
		if v.IsMatrix() {
			return Value{}, fmt.Errorf("%w: matrix argument to %s", ErrEvaluation, f.name)
		}
		args[i] = v
	}
	buf := make([]float64, len(args))
	n, err := broadcastLen(args...)
	if err != nil {
		return Value{}, err
	}
	if n < 0 {
		for i, a := range args {
			buf[i] = a.scalar
		}
		return ScalarValue(f.fn(buf...)), nil
	}
	out := make([]float64, n)
	for j := range out {
		for i, a := range args {
			buf[i] = a.At(j)
		}
		out[j] = f.fn(buf...)
	}
	return VectorValue(out), nil
}
