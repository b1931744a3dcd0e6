// Package discretisation lowers a parameter-free model onto a mesh.
//
// Variables become slices of one flat state vector, gradients and
// divergences become matrix products, concatenations become stacks, and
// boundary conditions are injected as ghost nodes (values) or boundary
// fluxes. The result is evaluated with gobamm.Evaluate.
package discretisation
