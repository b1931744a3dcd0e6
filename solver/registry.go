package solver

import (
	"fmt"
	"slices"
	"sync"

	"github.com/njchilds90/gobamm"
)

// Backend advances a system by one step and estimates the local error of
// that step.
type Backend interface {
	Name() string
	// Order is the order of the error estimate, used for step-size control.
	Order() int
	// Step returns the state at t+h from y at t and the per-entry error
	// estimate. A step that cannot be completed, such as a Newton iteration
	// that does not converge, returns ErrStepFailed and is retried smaller.
	Step(f RHSFunc, t, h float64, y []float64) (next, errEst []float64, err error)
}

// Factory builds a backend for the given tolerance.
type Factory func(tol float64) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available under name. It panics if name is
// already registered or factory is nil.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("solver: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("solver: Register called twice for backend " + name)
	}
	registry[name] = factory
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", gobamm.ErrBackendUnavailable, name)
	}
	return f, nil
}

// unavailable is registered for integrators that live outside this module.
func unavailable(name string) Factory {
	return func(float64) (Backend, error) {
		return nil, fmt.Errorf("%w: integrator %q is not built in", gobamm.ErrBackendUnavailable, name)
	}
}

func init() {
	Register("rk45", func(float64) (Backend, error) { return RK45{}, nil })
	Register("bdf1", func(tol float64) (Backend, error) { return &BDF1{NewtonTol: tol / 100}, nil })
	for _, name := range []string{"cvode", "ida", "lsoda", "casadi", "scikits-odes"} {
		Register(name, unavailable(name))
	}
}
