// Package template parses path template strings into ordered segment lists
// used by the routing trie and the request parameter extractor.
//
// A template is an absolute path whose segments are static literals, named
// parameters, or a single trailing wildcard:
//
//	/users
//	/users/{id:int}
//	/users/{id:uuid}/posts/{slug:str:^[a-z-]+$}
//	/files/*path
//
// Parameter types determine request-time coercion of the raw segment text:
// str (default), int, float, bool, uuid, date. An optional third field adds
// a regexp constraint that must match the raw segment before coercion.
//
// Parsing happens once at route registration; parsed templates are immutable
// and safe for concurrent reads.
package template
