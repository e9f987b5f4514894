package trie

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrymomot/dispatch/core/template"
)

var knownMethods = map[string]struct{}{
	http.MethodConnect: {},
	http.MethodDelete:  {},
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodPatch:   {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodTrace:   {},
}

// Trie is a path-segment routing tree. Each level branches on one segment;
// lookup prefers static children over the parameter child over the wildcard
// child, backtracking when a greedy static descent dead-ends.
//
// Insertion happens at startup only. A fully built Trie is read-only and may
// be shared across goroutines without locking.
type Trie[B any] struct {
	root *node[B]
}

// Match is the result of a successful lookup: the bound value, the template
// it was registered under, and the raw (uncoerced) parameter strings.
type Match[B any] struct {
	Binding  B
	Template template.Template
	Params   map[string]string
}

// Route describes one registered binding, for introspection.
type Route struct {
	Method  string
	Pattern string
}

type entry[B any] struct {
	binding B
	tmpl    template.Template
}

type node[B any] struct {
	static   map[string]*node[B]
	param    *node[B]
	wildcard *node[B]
	bindings map[string]*entry[B] // method -> binding

	// Declared identity of the param child, used for ambiguity detection.
	// All routes sharing a param position must agree on type and constraint.
	paramType       template.ParamType
	paramConstraint string
	constraintRex   *regexp.Regexp
}

// New creates an empty routing trie.
func New[B any]() *Trie[B] {
	return &Trie[B]{root: &node[B]{}}
}

// Insert registers a binding for the given parsed template and HTTP method.
//
// Two templates whose parameter segments at the same position declare
// different types (or constraints) cannot be disambiguated at request time
// and fail with ErrAmbiguousRoute. Re-binding an already registered
// (path, method) pair fails with ErrDuplicateRoute.
func (t *Trie[B]) Insert(tmpl template.Template, method string, binding B) error {
	method = strings.ToUpper(method)
	if _, ok := knownMethods[method]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	n := t.root
	for _, seg := range tmpl.Segments {
		switch seg.Kind {
		case template.KindStatic:
			if n.static == nil {
				n.static = make(map[string]*node[B])
			}
			child, ok := n.static[seg.Literal]
			if !ok {
				child = &node[B]{}
				n.static[seg.Literal] = child
			}
			n = child

		case template.KindParam:
			constraint := ""
			if seg.Constraint != nil {
				constraint = seg.Constraint.String()
			}
			if n.param != nil {
				if n.param.paramType != seg.Type || n.param.paramConstraint != constraint {
					return fmt.Errorf("%w: parameter %q of type %s conflicts with existing %s parameter in %q",
						ErrAmbiguousRoute, seg.Name, seg.Type, n.param.paramType, tmpl.Raw)
				}
			} else {
				n.param = &node[B]{paramType: seg.Type, paramConstraint: constraint, constraintRex: seg.Constraint}
			}
			n = n.param

		case template.KindWildcard:
			if n.wildcard == nil {
				n.wildcard = &node[B]{}
			}
			n = n.wildcard
		}
	}

	if n.bindings == nil {
		n.bindings = make(map[string]*entry[B])
	}
	if _, ok := n.bindings[method]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, method, tmpl.Raw)
	}
	n.bindings[method] = &entry[B]{binding: binding, tmpl: tmpl}
	return nil
}

// Lookup finds the binding for a concrete method and path.
//
// Resolution is structural first: the path is matched against the tree
// ignoring the method, with static segments preferred over parameters and
// parameters over wildcards. The method is then looked up on the matched
// node; a structural hit without a binding for the method yields
// *MethodNotAllowedError. No structural hit yields ErrNotFound.
func (t *Trie[B]) Lookup(method, path string) (Match[B], error) {
	method = strings.ToUpper(method)
	segs := splitPath(path)

	leaf, values := t.root.search(segs, nil)
	if leaf == nil {
		return Match[B]{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	e, ok := leaf.bindings[method]
	if !ok {
		allowed := make([]string, 0, len(leaf.bindings))
		for m := range leaf.bindings {
			allowed = append(allowed, m)
		}
		sort.Strings(allowed)
		return Match[B]{}, &MethodNotAllowedError{Method: method, Path: path, Allowed: allowed}
	}

	names := e.tmpl.ParamNames()
	var params map[string]string
	if len(names) > 0 {
		params = make(map[string]string, len(names))
		for i, name := range names {
			if i < len(values) {
				params[name] = values[i]
			}
		}
	}

	return Match[B]{Binding: e.binding, Template: e.tmpl, Params: params}, nil
}

// search walks the tree recursively. It returns the first leaf reached in
// static > param > wildcard order together with the captured raw values.
// Returning nil from a branch backtracks into the next alternative.
func (n *node[B]) search(segs []string, values []string) (*node[B], []string) {
	if len(segs) == 0 {
		if len(n.bindings) > 0 {
			return n, values
		}
		// A trailing wildcard may match the empty remainder.
		if n.wildcard != nil && len(n.wildcard.bindings) > 0 {
			return n.wildcard, append(values, "")
		}
		return nil, nil
	}

	head, rest := segs[0], segs[1:]

	if child, ok := n.static[head]; ok {
		if leaf, vals := child.search(rest, values); leaf != nil {
			return leaf, vals
		}
	}

	if n.param != nil && head != "" && n.param.matchesConstraint(head) {
		if leaf, vals := n.param.search(rest, append(values, head)); leaf != nil {
			return leaf, vals
		}
	}

	if n.wildcard != nil && len(n.wildcard.bindings) > 0 {
		return n.wildcard, append(values, strings.Join(segs, "/"))
	}

	return nil, nil
}

func (n *node[B]) matchesConstraint(raw string) bool {
	if n.constraintRex == nil {
		return true
	}
	return n.constraintRex.MatchString(raw)
}

// Routes returns every registered (method, pattern) pair, sorted by pattern
// then method. Useful for startup logging and debugging.
func (t *Trie[B]) Routes() []Route {
	var routes []Route
	t.root.walk(func(e *entry[B], method string) {
		routes = append(routes, Route{Method: method, Pattern: e.tmpl.Raw})
	})
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

func (n *node[B]) walk(fn func(e *entry[B], method string)) {
	for method, e := range n.bindings {
		fn(e, method)
	}
	for _, child := range n.static {
		child.walk(fn)
	}
	if n.param != nil {
		n.param.walk(fn)
	}
	if n.wildcard != nil {
		n.wildcard.walk(fn)
	}
}

// splitPath splits a concrete request path into segments. The root path
// yields an empty slice.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
