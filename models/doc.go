// Package models defines dimensionless battery models as gobamm trees.
//
// Each constructor returns a Model: the equations plus the parameter table,
// geometry, mesh resolution and integrator it runs with by default.
// Sub-models are composed with gobamm.Model.Update.
package models
