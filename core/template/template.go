package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a single path segment matches.
type Kind uint8

const (
	KindStatic   Kind = iota // /users
	KindParam                // /{id:int}
	KindWildcard             // /*rest
)

// ParamType is the declared type of a named path parameter. Raw segment text
// is coerced to this type during request evaluation.
type ParamType uint8

const (
	TypeString ParamType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeUUID
	TypeDate
)

var paramTypeNames = map[ParamType]string{
	TypeString: "str",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeUUID:   "uuid",
	TypeDate:   "date",
}

var paramTypes = map[string]ParamType{
	"str":   TypeString,
	"int":   TypeInt,
	"float": TypeFloat,
	"bool":  TypeBool,
	"uuid":  TypeUUID,
	"date":  TypeDate,
}

// String returns the type token used in templates, e.g. "int" in "{id:int}".
func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Coerce converts a raw path or query value to the Go value of the declared
// type. Dates accept RFC 3339 timestamps or plain "2006-01-02" dates.
func (t ParamType) Coerce(raw string) (any, error) {
	switch t {
	case TypeString:
		return raw, nil
	case TypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid int", ErrCoerce, raw)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid float", ErrCoerce, raw)
		}
		return v, nil
	case TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid bool", ErrCoerce, raw)
		}
		return v, nil
	case TypeUUID:
		v, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid uuid", ErrCoerce, raw)
		}
		return v, nil
	case TypeDate:
		if v, err := time.Parse(time.RFC3339, raw); err == nil {
			return v, nil
		}
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid date", ErrCoerce, raw)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported type", ErrCoerce)
}

// Segment is a single parsed element of a path template.
type Segment struct {
	Kind       Kind
	Literal    string         // static text, only for KindStatic
	Name       string         // parameter or wildcard name
	Type       ParamType      // declared type, only for KindParam
	Constraint *regexp.Regexp // optional regexp constraint, only for KindParam
}

// Template is the parsed, immutable form of a path template string.
type Template struct {
	Raw      string
	Segments []Segment
}

// HasWildcard reports whether the final segment is a wildcard.
func (t Template) HasWildcard() bool {
	n := len(t.Segments)
	return n > 0 && t.Segments[n-1].Kind == KindWildcard
}

// ParamNames returns the parameter and wildcard names in segment order.
func (t Template) ParamNames() []string {
	names := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if s.Kind != KindStatic {
			names = append(names, s.Name)
		}
	}
	return names
}

// ParamType returns the declared type of the named parameter. Wildcard
// captures are always strings.
func (t Template) ParamType(name string) (ParamType, bool) {
	for _, s := range t.Segments {
		if s.Kind == KindParam && s.Name == name {
			return s.Type, true
		}
		if s.Kind == KindWildcard && s.Name == name {
			return TypeString, true
		}
	}
	return TypeString, false
}

// Parse converts a path template string into an ordered segment list.
//
// Grammar per segment:
//
//	users            static literal
//	{id}             string parameter
//	{id:int}         typed parameter
//	{slug:str:^[a-z-]+$}  typed parameter with a regexp constraint
//	*rest            wildcard, final segment only
//
// Parse is pure and deterministic; the returned Template is immutable.
func Parse(raw string) (Template, error) {
	if raw == "" || raw[0] != '/' {
		return Template{}, fmt.Errorf("%w: %q", ErrEmptyTemplate, raw)
	}

	tmpl := Template{Raw: raw}
	seen := make(map[string]struct{})

	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return tmpl, nil // root template "/"
	}

	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		switch {
		case part == "":
			return Template{}, fmt.Errorf("%w: empty segment in %q", ErrMalformedTemplate, raw)

		case part[0] == '*':
			if i != len(parts)-1 {
				return Template{}, fmt.Errorf("%w: %q", ErrWildcardPosition, raw)
			}
			name := part[1:]
			if name == "" {
				name = "*"
			}
			if err := markSeen(seen, name, raw); err != nil {
				return Template{}, err
			}
			tmpl.Segments = append(tmpl.Segments, Segment{Kind: KindWildcard, Name: name})

		case part[0] == '{':
			seg, err := parseParam(part, raw)
			if err != nil {
				return Template{}, err
			}
			if err := markSeen(seen, seg.Name, raw); err != nil {
				return Template{}, err
			}
			tmpl.Segments = append(tmpl.Segments, seg)

		default:
			if strings.ContainsAny(part, "{}*") {
				return Template{}, fmt.Errorf("%w: stray delimiter in segment %q", ErrMalformedTemplate, part)
			}
			tmpl.Segments = append(tmpl.Segments, Segment{Kind: KindStatic, Literal: part})
		}
	}

	return tmpl, nil
}

// MustParse is like Parse but panics on error. Intended for static templates
// in tests and composition roots.
func MustParse(raw string) Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseParam(part, raw string) (Segment, error) {
	if part[len(part)-1] != '}' || strings.Count(part, "{") != 1 || strings.Count(part, "}") != 1 {
		return Segment{}, fmt.Errorf("%w: segment %q in %q", ErrParamDelimiter, part, raw)
	}

	body := part[1 : len(part)-1]

	// name[:type[:constraint]] — the constraint may itself contain colons.
	pieces := strings.SplitN(body, ":", 3)

	name := pieces[0]
	if name == "" {
		return Segment{}, fmt.Errorf("%w: segment %q in %q", ErrEmptyParamName, part, raw)
	}

	seg := Segment{Kind: KindParam, Name: name, Type: TypeString}

	if len(pieces) > 1 {
		pt, ok := paramTypes[pieces[1]]
		if !ok {
			return Segment{}, fmt.Errorf("%w: %q in segment %q", ErrUnknownParamType, pieces[1], part)
		}
		seg.Type = pt
	}

	if len(pieces) > 2 {
		pattern := pieces[2]
		if !strings.HasPrefix(pattern, "^") {
			pattern = "^" + pattern
		}
		if !strings.HasSuffix(pattern, "$") {
			pattern += "$"
		}
		rex, err := regexp.Compile(pattern)
		if err != nil {
			return Segment{}, fmt.Errorf("%w: %q in segment %q", ErrInvalidConstraint, pieces[2], part)
		}
		seg.Constraint = rex
	}

	return seg, nil
}

func markSeen(seen map[string]struct{}, name, raw string) error {
	if _, ok := seen[name]; ok {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, raw)
	}
	seen[name] = struct{}{}
	return nil
}
