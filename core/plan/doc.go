// Package plan turns a handler's declared parameters and its provider scope
// chain into a precomputed execution plan.
//
// A plan is an ordered list of batches. The first batch extracts raw request
// values (path, query, header, cookie, state); subsequent batches invoke
// providers in topological order, so every provider runs after everything it
// depends on. Steps within one batch have no mutual ordering constraints and
// may be evaluated concurrently.
//
// Building happens once, at route registration. Cycles among providers and
// names that no scope level defines are registration-time failures, so a
// started application can never hit them at request time. Request-time cost
// is limited to walking the precomputed plan.
package plan
