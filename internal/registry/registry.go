// Package registry implements the pluggable script-identifier-to-source
// resolvers: in-memory, HTTP, filesystem, composite, cached, environment,
// and hosted (repository-style) variants, all sharing one Resolve contract.
//
// Grounded on evaluators.createLoaderFromSource's dispatch-by-identifier-
// shape idea (inline vs file:// vs http(s)://), generalised into separate
// composable types rather than one switch.
package registry

import "context"

// Registry resolves a script identifier to source text.
type Registry interface {
	Resolve(ctx context.Context, id string) (string, error)
}
