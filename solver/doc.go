// Package solver integrates discretised models in time.
//
// A Solver wraps one stepping backend chosen by name from a registry. The
// shared driver controls the step size, lands exactly on every requested
// output time and stops at the first root of any event function. Backends
// for external integrators that are not built in are recognised by name and
// reported as unavailable.
package solver
