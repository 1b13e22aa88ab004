// Package resolver contains the dependency resolver core for target graphs.
// It inspects definitions, instantiates actions from the registry, orders
// targets dependencies-first, and tracks per-node progress for the engine.
package resolver
