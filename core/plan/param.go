package plan

import "github.com/dmitrymomot/dispatch/core/template"

// Source declares where a handler parameter's value comes from.
type Source uint8

const (
	SourcePath Source = iota
	SourceQuery
	SourceHeader
	SourceCookie
	SourceState
	SourceProvided
)

var sourceNames = map[Source]string{
	SourcePath:     "path",
	SourceQuery:    "query",
	SourceHeader:   "header",
	SourceCookie:   "cookie",
	SourceState:    "state",
	SourceProvided: "provided",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return "unknown"
}

// Param declares one value a handler requires, by name, source, and type.
// Path, query, header, and cookie params are extracted from the request and
// coerced; state params come from application state; provided params are
// computed by the provider resolved under the same name.
type Param struct {
	Name       string
	Source     Source
	Type       template.ParamType
	Required   bool
	Default    any
	HasDefault bool
}

// Path declares a required path parameter. Its type must agree with the
// route template; this is validated at registration.
func Path(name string, typ template.ParamType) Param {
	return Param{Name: name, Source: SourcePath, Type: typ, Required: true}
}

// Query declares a required query string parameter.
func Query(name string, typ template.ParamType) Param {
	return Param{Name: name, Source: SourceQuery, Type: typ, Required: true}
}

// Header declares a required request header.
func Header(name string, typ template.ParamType) Param {
	return Param{Name: name, Source: SourceHeader, Type: typ, Required: true}
}

// Cookie declares a required request cookie.
func Cookie(name string, typ template.ParamType) Param {
	return Param{Name: name, Source: SourceCookie, Type: typ, Required: true}
}

// State declares a value taken from application state as-is, no coercion.
func State(name string) Param {
	return Param{Name: name, Source: SourceState, Required: true}
}

// Provided declares a value computed by the provider registered under the
// same name in the handler's scope chain.
func Provided(name string) Param {
	return Param{Name: name, Source: SourceProvided, Required: true}
}

// Optional marks the parameter as not required; an absent value yields the
// declared default, or the type's zero value.
func (p Param) Optional() Param {
	p.Required = false
	return p
}

// WithDefault sets the value used when an optional parameter is absent.
// It implies Optional.
func (p Param) WithDefault(v any) Param {
	p.Required = false
	p.Default = v
	p.HasDefault = true
	return p
}
