// Package mesh builds one-dimensional meshes over the named domains of a
// geometry. A Mesh holds one SubMesh per domain, plus the ghost-cell
// submeshes that flank each of them, and combines adjacent submeshes on
// demand.
package mesh
