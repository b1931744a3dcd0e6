package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrStepFailed reports a step the backend could not complete at the
// requested size.
var ErrStepFailed = errors.New("solver: step failed")

// BDF1 is the implicit backward Euler method. Each step is taken once with
// h and twice with h/2; the difference estimates the local error and the
// half-step result is returned. The Newton iteration uses a finite-difference
// Jacobian frozen at the start of the step.
type BDF1 struct {
	// NewtonTol bounds the max-norm of the final Newton update relative to
	// 1+|z|. Zero means 1e-10.
	NewtonTol float64
	// MaxNewton is the iteration limit per step. Zero means 10.
	MaxNewton int
}

func (*BDF1) Name() string { return "bdf1" }
func (*BDF1) Order() int   { return 1 }

func (b *BDF1) Step(f RHSFunc, t, h float64, y []float64) ([]float64, []float64, error) {
	full, err := b.euler(f, t, h, y)
	if err != nil {
		return nil, nil, err
	}
	half, err := b.euler(f, t, h/2, y)
	if err != nil {
		return nil, nil, err
	}
	next, err := b.euler(f, t+h/2, h/2, half)
	if err != nil {
		return nil, nil, err
	}
	errEst := make([]float64, len(y))
	floats.SubTo(errEst, next, full)
	return next, errEst, nil
}

// euler solves z = y + h f(t+h, z) by Newton's method.
func (b *BDF1) euler(f RHSFunc, t, h float64, y []float64) ([]float64, error) {
	n := len(y)
	tol := b.NewtonTol
	if tol <= 0 {
		tol = 1e-10
	}
	maxIter := b.MaxNewton
	if maxIter <= 0 {
		maxIter = 10
	}

	var ferr error
	g := func(dy, x []float64) {
		if err := f(t+h, x, dy); err != nil && ferr == nil {
			ferr = err
		}
	}
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, g, y, nil)
	if ferr != nil {
		return nil, ferr
	}
	// Newton matrix I - h J.
	jac.Scale(-h, jac)
	for i := 0; i < n; i++ {
		jac.Set(i, i, jac.At(i, i)+1)
	}

	z := make([]float64, n)
	copy(z, y)
	dz := make([]float64, n)
	res := mat.NewVecDense(n, nil)
	var step mat.VecDense
	for iter := 0; iter < maxIter; iter++ {
		if err := f(t+h, z, dz); err != nil {
			return nil, err
		}
		for i := range z {
			res.SetVec(i, -(z[i] - y[i] - h*dz[i]))
		}
		if err := step.SolveVec(jac, res); err != nil && !errors.As(err, new(mat.Condition)) {
			return nil, fmt.Errorf("%w: singular Newton matrix at t=%g: %v", ErrStepFailed, t+h, err)
		}
		update := step.RawVector().Data
		floats.Add(z, update)
		if floats.HasNaN(z) {
			return nil, fmt.Errorf("%w: Newton iteration diverged at t=%g", ErrStepFailed, t+h)
		}
		if floats.Norm(update, math.Inf(1)) <= tol*(1+floats.Norm(z, math.Inf(1))) {
			return z, nil
		}
	}
	return nil, fmt.Errorf("%w: Newton iteration did not converge in %d steps at t=%g", ErrStepFailed, maxIter, t+h)
}
