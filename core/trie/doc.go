// Package trie implements the routing tree that maps (method, path) pairs to
// registered bindings.
//
// The tree is keyed by path segments. Every node may have any number of
// static children, at most one parameter child, and at most one wildcard
// child. Lookup walks the tree preferring static children over the parameter
// child over the wildcard child, so /users/me always beats /users/{id}, and
// backtracks out of static dead-ends so that /a/{x}/c is still reachable
// when /a/b/d exists and the request is /a/q/c.
//
// All insertion happens at startup. Ambiguities are rejected at insertion
// time: two routes placing differently typed parameters at the same position
// cannot be told apart by a concrete path and fail with ErrAmbiguousRoute.
// A built tree is immutable and safe to share across request goroutines.
package trie
