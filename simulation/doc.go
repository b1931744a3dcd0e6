// Package simulation runs a model end to end: parameter substitution, mesh
// generation, discretisation and time integration.
package simulation
