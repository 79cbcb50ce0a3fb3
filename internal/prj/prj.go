// Package prj resolves shapefile projection descriptions (.prj) into coordinate
// transforms to WGS84 longitude/latitude.
//
// Resolution order:
//  1. an explicitly supplied identifier (e.g. "3857"), looked up in Identifiers
//  2. the first References entry with a substring contained in the description
//  3. a direct parse of the description by the Engine (WKT or PROJ string)
//
// An unresolvable description yields a nil Transform and the geometry is left
// unprojected. ModeStrict also reports why.
package prj

import (
	"fmt"
	"strings"
	"sync"
)

// Transform converts coordinates of one CRS into WGS84 longitude/latitude.
type Transform interface {
	Inverse(x, y float64) (lon, lat float64, err error)

	// Definition returns the CRS definition the transform was built from.
	Definition() string
}

// Engine builds transforms from CRS definitions.
type Engine interface {
	New(definition string) (Transform, error)
}

// Mode selects how direct-parse failures are reported.
type Mode int

const (
	// ModeStrict returns the parse error with a nil Transform so the caller can
	// record that a projection was present but unusable.
	ModeStrict Mode = iota

	// ModeLenient discards the parse error.
	ModeLenient
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ErrUnresolved is returned in strict mode when no step produced a transform
type ErrUnresolved struct {
	Description string
	Err         error
}

func (e *ErrUnresolved) Error() string {
	desc := e.Description
	if len(desc) > 60 {
		desc = desc[:60] + "..."
	}
	return fmt.Sprintf("unresolved projection %q: %v", desc, e.Err)
}

func (e *ErrUnresolved) Unwrap() error {
	return e.Err
}

// Resolver resolves identifiers and descriptions through an Engine.
//
// Transforms resolved by identifier are registered and reused, so two
// resolutions of the same identifier return the same Transform.
type Resolver struct {
	engine      Engine
	identifiers map[string]string
	references  []Reference

	mu       sync.Mutex
	registry map[string]Transform
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithIdentifiers replaces the identifier → definition table.
func WithIdentifiers(table map[string]string) ResolverOption {
	return func(r *Resolver) {
		r.identifiers = table
	}
}

// WithReferences replaces the ordered reference table.
func WithReferences(table []Reference) ResolverOption {
	return func(r *Resolver) {
		r.references = table
	}
}

// NewResolver creates a resolver using the built-in tables.
func NewResolver(engine Engine, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		engine:      engine,
		identifiers: Identifiers,
		references:  References,
		registry:    make(map[string]Transform),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveByIdentifier returns the transform for an identifier such as "3857" or
// "EPSG:3857". It returns nil for an empty or unknown identifier, or when the
// engine rejects the table definition.
func (r *Resolver) ResolveByIdentifier(id string) Transform {
	id = normalizeIdentifier(id)
	if id == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.registry[id]; ok {
		return t
	}
	definition, ok := r.identifiers[id]
	if !ok {
		return nil
	}
	t, err := r.engine.New(definition)
	if err != nil {
		return nil
	}
	r.registry[id] = t
	return t
}

// ResolveByDescription matches a projection description against the reference
// table. The first entry with any substring contained in text wins. It returns
// nil for empty text or when nothing matches.
func (r *Resolver) ResolveByDescription(text string) Transform {
	if text == "" {
		return nil
	}
	for _, ref := range r.references {
		for _, sub := range ref.Match {
			if strings.Contains(text, sub) {
				return r.ResolveByIdentifier(ref.Identifier)
			}
		}
	}
	return nil
}

// Parse builds a transform directly from a WKT or PROJ definition.
func (r *Resolver) Parse(text string) (Transform, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty projection definition")
	}
	return r.engine.New(text)
}

// Resolve runs the full chain: identifier, description match, direct parse.
//
// A nil Transform with a nil error means there was nothing to resolve. In
// ModeStrict a failed direct parse is returned as *ErrUnresolved; in
// ModeLenient it is dropped.
func (r *Resolver) Resolve(description, id string, mode Mode) (Transform, error) {
	if t := r.ResolveByIdentifier(id); t != nil {
		return t, nil
	}
	if description == "" {
		return nil, nil
	}
	if t := r.ResolveByDescription(description); t != nil {
		return t, nil
	}
	t, err := r.Parse(description)
	if err != nil {
		if mode == ModeLenient {
			return nil, nil
		}
		return nil, &ErrUnresolved{Description: description, Err: err}
	}
	return t, nil
}

func normalizeIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[i+1:]
	}
	return id
}
