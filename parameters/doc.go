// Package parameters replaces the Parameter and FunctionParameter leaves of
// an expression tree with numbers and registered callables.
//
// A Values table maps parameter names to entries. An entry is either a number
// or the name of a function registered in a FunctionRegistry. Tables are read
// from CSV, YAML or TOML files and may be overridden from decoded
// configuration maps.
package parameters
