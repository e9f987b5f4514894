package plan

import (
	"fmt"
	"sort"

	"github.com/dmitrymomot/dispatch/core/provider"
)

// StepKind discriminates the two kinds of plan steps.
type StepKind uint8

const (
	StepExtract StepKind = iota // read and coerce a raw request value
	StepProvide                 // invoke a provider with resolved prerequisites
)

// Step is one unit of work in an execution plan.
type Step struct {
	Kind     StepKind
	Param    Param             // set for StepExtract
	Provider provider.Provider // set for StepProvide
}

// Batch groups steps with no ordering constraints between them. Batches run
// in order; steps within one batch may run concurrently.
type Batch []Step

// Plan is the precomputed, topologically ordered recipe for assembling one
// handler's arguments. It is built once at registration and never mutated,
// so it is shared by all concurrent requests for the route.
type Plan struct {
	Batches []Batch
	Args    []string // handler argument names, in declared order
}

// Build computes the execution plan for a handler's declared parameters
// against its scope chain.
//
// Extract steps form the first batch. Provider steps are layered by
// Kahn's algorithm: each batch contains every provider whose dependencies
// are satisfied by earlier batches. A provider reachable through several
// paths (a diamond) is planned exactly once. Unresolvable names surface
// provider.ErrUnknownDependency; cycles surface *CyclicDependencyError.
// Build runs at registration time only, never per request.
func Build(params []Param, chain provider.Chain) (*Plan, error) {
	p := &Plan{Args: make([]string, 0, len(params))}

	seen := make(map[string]struct{}, len(params))
	var extracts Batch
	var pending []string // provider names awaiting resolution, BFS order

	for _, prm := range params {
		if prm.Name == "" {
			return nil, ErrEmptyParamName
		}
		if _, ok := seen[prm.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrParamRedeclared, prm.Name)
		}
		seen[prm.Name] = struct{}{}
		p.Args = append(p.Args, prm.Name)

		if prm.Source == SourceProvided {
			pending = append(pending, prm.Name)
		} else {
			extracts = append(extracts, Step{Kind: StepExtract, Param: prm})
		}
	}

	if len(extracts) > 0 {
		p.Batches = append(p.Batches, extracts)
	}

	// Collect the transitive provider closure. Each name resolves through
	// the scope chain to its innermost definition.
	providers := make(map[string]provider.Provider)
	requiredBy := map[string]string{}
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if _, ok := providers[name]; ok {
			continue
		}

		prov, err := chain.Resolve(name)
		if err != nil {
			if by, ok := requiredBy[name]; ok {
				return nil, fmt.Errorf("%w (required by provider %q)", err, by)
			}
			return nil, err
		}
		providers[name] = prov

		for _, dep := range prov.DependsOn {
			if _, ok := providers[dep]; !ok {
				if _, ok := requiredBy[dep]; !ok {
					requiredBy[dep] = name
				}
				pending = append(pending, dep)
			}
		}
	}

	// Layer the providers topologically.
	done := make(map[string]struct{}, len(providers))
	remaining := len(providers)
	for remaining > 0 {
		var ready []string
		for name, prov := range providers {
			if _, ok := done[name]; ok {
				continue
			}
			if depsSatisfied(prov, done) {
				ready = append(ready, name)
			}
		}

		if len(ready) == 0 {
			return nil, findCycle(providers, done)
		}

		sort.Strings(ready) // deterministic plans simplify testing and debugging

		batch := make(Batch, 0, len(ready))
		for _, name := range ready {
			batch = append(batch, Step{Kind: StepProvide, Provider: providers[name]})
			done[name] = struct{}{}
		}
		p.Batches = append(p.Batches, batch)
		remaining -= len(ready)
	}

	return p, nil
}

func depsSatisfied(p provider.Provider, done map[string]struct{}) bool {
	for _, dep := range p.DependsOn {
		if _, ok := done[dep]; !ok {
			return false
		}
	}
	return true
}

// findCycle locates one cycle among the unplanned providers and names it.
// Called only when layering stalls, so a cycle is guaranteed to exist.
func findCycle(providers map[string]provider.Provider, done map[string]struct{}) error {
	var start string
	remaining := make([]string, 0, len(providers))
	for name := range providers {
		if _, ok := done[name]; !ok {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	start = remaining[0]

	var stack []string
	onStack := make(map[string]int)

	var walk func(name string) []string
	walk = func(name string) []string {
		if at, ok := onStack[name]; ok {
			return append(stack[at:], name)
		}
		onStack[name] = len(stack)
		stack = append(stack, name)
		for _, dep := range providers[name].DependsOn {
			if _, planned := done[dep]; planned {
				continue
			}
			if cycle := walk(dep); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, name)
		return nil
	}

	for _, name := range append([]string{start}, remaining...) {
		if cycle := walk(name); cycle != nil {
			return &CyclicDependencyError{Cycle: cycle}
		}
	}

	// Unreachable when layering stalled, kept as a guard.
	return ErrCyclicDependency
}

// Providers returns the names of all providers in the plan, batch by batch.
func (p *Plan) Providers() []string {
	var names []string
	for _, batch := range p.Batches {
		for _, step := range batch {
			if step.Kind == StepProvide {
				names = append(names, step.Provider.Name)
			}
		}
	}
	return names
}
