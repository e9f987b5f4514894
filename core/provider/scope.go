package provider

import "fmt"

// Scope identifies the nesting level a provider table belongs to.
// Resolution walks from the innermost (handler) to the outermost
// (application) level, so an inner registration shadows an outer one
// with the same name.
type Scope uint8

const (
	ScopeApplication Scope = iota
	ScopeRouter
	ScopeController
	ScopeHandler
)

var scopeNames = map[Scope]string{
	ScopeApplication: "application",
	ScopeRouter:      "router",
	ScopeController:  "controller",
	ScopeHandler:     "handler",
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Table is the provider registry of a single scope level. Tables are
// populated during application setup and read-only afterwards.
type Table struct {
	scope     Scope
	providers map[string]Provider
}

// NewTable creates an empty provider table for the given scope level.
func NewTable(scope Scope) *Table {
	return &Table{
		scope:     scope,
		providers: make(map[string]Provider),
	}
}

// Scope returns the level this table was created for.
func (t *Table) Scope() Scope {
	return t.scope
}

// Register adds a provider to the table. Registering the same name twice at
// the same level is an error; shadowing happens across levels, not within
// one.
func (t *Table) Register(p Provider) error {
	if err := p.validate(); err != nil {
		return err
	}
	if _, ok := t.providers[p.Name]; ok {
		return fmt.Errorf("%w: %q at %s scope", ErrDuplicateProvider, p.Name, t.scope)
	}
	t.providers[p.Name] = p
	return nil
}

// Lookup returns the provider registered under name at this level only.
func (t *Table) Lookup(name string) (Provider, bool) {
	p, ok := t.providers[name]
	return p, ok
}

// Len returns the number of providers registered at this level.
func (t *Table) Len() int {
	return len(t.providers)
}

// Chain is a flattened snapshot of the scope levels visible from one
// handler, innermost first: handler, controller, router, application.
// It is computed once at registration time and stored with the handler
// binding; resolution never walks the nesting structure at request time.
type Chain struct {
	tables []*Table
}

// NewChain builds a chain from tables ordered innermost first. Nil tables
// are skipped so callers can pass absent levels directly.
func NewChain(tables ...*Table) Chain {
	c := Chain{tables: make([]*Table, 0, len(tables))}
	for _, t := range tables {
		if t != nil {
			c.tables = append(c.tables, t)
		}
	}
	return c
}

// Resolve returns the innermost provider registered under name, or
// ErrUnknownDependency if no level defines it.
func (c Chain) Resolve(name string) (Provider, error) {
	for _, t := range c.tables {
		if p, ok := t.Lookup(name); ok {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("%w: %q", ErrUnknownDependency, name)
}

// Names returns every provider name visible from this chain, with inner
// shadows already applied.
func (c Chain) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range c.tables {
		for name := range t.providers {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
