// Package gobamm provides the expression-tree kernel of a battery-model compiler.
//
// Models are written as immutable symbolic trees over named spatial domains,
// then lowered in two passes:
//   - parameter substitution (package parameters) replaces named parameters
//     with numbers or registered callables
//   - discretisation (package discretisation) replaces variables with slices
//     of one flat state vector and spatial operators with matrix products
//
// The lowered tree is evaluated with Evaluate and integrated by package solver.
//
// Every node carries a structural ID. Trees with the same structure share the
// same ID, so IDs key the right-hand-side, boundary-condition and
// state-vector tables of a model.
package gobamm
