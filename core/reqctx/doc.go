// Package reqctx holds the per-request execution context and runs
// precomputed execution plans against it.
//
// A Context is created per request after the routing trie has matched a
// handler. Evaluate walks the handler's plan: it extracts and coerces raw
// request values (path, query, header, cookie, state), invokes providers in
// topological batches, and assembles the final argument set. Provider
// results are memoized so a provider referenced by several dependents runs
// exactly once per request; the memo latch also serializes concurrent
// attempts within one request. Contexts are discarded with their request and
// never reused.
//
// All failures here are request-scoped and recoverable: they are returned as
// structured errors (parameter name, expected type, provider name) for the
// caller to translate into a client response.
package reqctx
