package trie_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/template"
	"github.com/dmitrymomot/dispatch/core/trie"
)

func insert(t *testing.T, tr *trie.Trie[string], method, pattern, binding string) {
	t.Helper()
	require.NoError(t, tr.Insert(template.MustParse(pattern), method, binding))
}

func TestLookupStaticRoutes(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	patterns := []string{"/", "/users", "/users/profile", "/api/v1/posts", "/api/v2/posts"}
	for _, p := range patterns {
		insert(t, tr, http.MethodGet, p, p)
	}

	for _, p := range patterns {
		m, err := tr.Lookup(http.MethodGet, p)
		require.NoError(t, err, p)
		assert.Equal(t, p, m.Binding)
		assert.Empty(t, m.Params)
	}
}

func TestLookupExtractsParams(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users/{id:int}/posts/{slug}", "show-post")

	m, err := tr.Lookup(http.MethodGet, "/users/42/posts/hello-world")
	require.NoError(t, err)
	assert.Equal(t, "show-post", m.Binding)
	assert.Equal(t, map[string]string{"id": "42", "slug": "hello-world"}, m.Params)
}

func TestStaticBeatsParam(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users/me", "me")
	insert(t, tr, http.MethodGet, "/users/{id}", "by-id")

	m, err := tr.Lookup(http.MethodGet, "/users/me")
	require.NoError(t, err)
	assert.Equal(t, "me", m.Binding)

	m, err = tr.Lookup(http.MethodGet, "/users/123")
	require.NoError(t, err)
	assert.Equal(t, "by-id", m.Binding)
	assert.Equal(t, "123", m.Params["id"])
}

func TestBacktracking(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/a/{x}/c", "param")
	insert(t, tr, http.MethodGet, "/a/b/d", "static")

	// The static branch /a/b matches greedily but dead-ends at /c; the
	// matcher must back out and retry via the parameter child.
	m, err := tr.Lookup(http.MethodGet, "/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "param", m.Binding)
	assert.Equal(t, "b", m.Params["x"])

	m, err = tr.Lookup(http.MethodGet, "/a/b/d")
	require.NoError(t, err)
	assert.Equal(t, "static", m.Binding)

	m, err = tr.Lookup(http.MethodGet, "/a/q/c")
	require.NoError(t, err)
	assert.Equal(t, "param", m.Binding)
	assert.Equal(t, "q", m.Params["x"])
}

func TestParamBeatsWildcard(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/files/{name}", "by-name")
	insert(t, tr, http.MethodGet, "/files/*path", "catchall")

	m, err := tr.Lookup(http.MethodGet, "/files/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "by-name", m.Binding)

	// Multi-segment remainders cannot match the single param, so the
	// wildcard is the last resort.
	m, err = tr.Lookup(http.MethodGet, "/files/2023/04/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "catchall", m.Binding)
	assert.Equal(t, "2023/04/report.txt", m.Params["path"])
}

func TestWildcardMatchesEmptyRemainder(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/static/*filepath", "static-files")

	m, err := tr.Lookup(http.MethodGet, "/static")
	require.NoError(t, err)
	assert.Equal(t, "static-files", m.Binding)
	assert.Equal(t, "", m.Params["filepath"])
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users/{id}", "get")
	insert(t, tr, http.MethodDelete, "/users/{id}", "delete")

	_, err := tr.Lookup(http.MethodPost, "/users/42")
	require.Error(t, err)
	assert.ErrorIs(t, err, trie.ErrMethodNotAllowed)

	var mna *trie.MethodNotAllowedError
	require.ErrorAs(t, err, &mna)
	assert.Equal(t, []string{http.MethodDelete, http.MethodGet}, mna.Allowed)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users", "list")

	_, err := tr.Lookup(http.MethodGet, "/posts")
	assert.ErrorIs(t, err, trie.ErrNotFound)

	// An intermediate node with no bindings is not a structural match.
	insert(t, tr, http.MethodGet, "/api/v1/posts", "posts")
	_, err = tr.Lookup(http.MethodGet, "/api/v1")
	assert.ErrorIs(t, err, trie.ErrNotFound)
}

func TestAmbiguousParamTypes(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users/{id:int}", "by-int")

	err := tr.Insert(template.MustParse("/users/{name:str}"), http.MethodPost, "by-name")
	require.Error(t, err)
	assert.ErrorIs(t, err, trie.ErrAmbiguousRoute)

	// The same type at the same position merges fine, even with a
	// different parameter name.
	require.NoError(t, tr.Insert(template.MustParse("/users/{uid:int}"), http.MethodDelete, "delete"))
}

func TestDuplicateRoute(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users/{id}", "first")

	err := tr.Insert(template.MustParse("/users/{id}"), http.MethodGet, "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, trie.ErrDuplicateRoute)

	// Same path, different method is fine.
	require.NoError(t, tr.Insert(template.MustParse("/users/{id}"), http.MethodPut, "update"))
}

func TestConstraintGuardsParamBranch(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/tags/{tag:str:[a-z]+}", "tag")
	insert(t, tr, http.MethodGet, "/tags/*rest", "fallback")

	m, err := tr.Lookup(http.MethodGet, "/tags/golang")
	require.NoError(t, err)
	assert.Equal(t, "tag", m.Binding)

	// Constraint mismatch falls through to the wildcard.
	m, err = tr.Lookup(http.MethodGet, "/tags/Go1")
	require.NoError(t, err)
	assert.Equal(t, "fallback", m.Binding)
}

func TestInvalidMethod(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	err := tr.Insert(template.MustParse("/users"), "FETCH", "nope")
	assert.ErrorIs(t, err, trie.ErrInvalidMethod)
}

func TestRoutesIntrospection(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users", "list")
	insert(t, tr, http.MethodPost, "/users", "create")
	insert(t, tr, http.MethodGet, "/users/{id:int}", "show")

	routes := tr.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, trie.Route{Method: http.MethodGet, Pattern: "/users"}, routes[0])
	assert.Equal(t, trie.Route{Method: http.MethodPost, Pattern: "/users"}, routes[1])
	assert.Equal(t, trie.Route{Method: http.MethodGet, Pattern: "/users/{id:int}"}, routes[2])
}

func TestTrailingSlashNormalization(t *testing.T) {
	t.Parallel()

	tr := trie.New[string]()
	insert(t, tr, http.MethodGet, "/users/{id}", "show")

	m, err := tr.Lookup(http.MethodGet, "/users/42/")
	require.NoError(t, err)
	assert.Equal(t, "show", m.Binding)
}
