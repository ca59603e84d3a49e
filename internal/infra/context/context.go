// Package context carries request-scoped values (trace id, authenticated
// principal) through context.Context.
package context

type contextKey string
