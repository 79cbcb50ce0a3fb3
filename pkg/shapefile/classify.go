package shapefile

import (
	"log/slog"
	"path"
	"strings"
)

// Role is what a member contributes to a layer.
type Role int

const (
	RoleIgnored Role = iota
	RoleGeometry
	RoleProjection
	RoleAttributes
	RoleEncoding
	RolePassThrough
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleGeometry:
		return "geometry"
	case RoleProjection:
		return "projection"
	case RoleAttributes:
		return "attributes"
	case RoleEncoding:
		return "encoding"
	case RolePassThrough:
		return "pass-through"
	default:
		return "ignored"
	}
}

// extensionRoles maps lower-case extensions to roles. Whitelisted extensions
// are checked after shp/prj/json and before dbf/cpg.
var extensionRoles = map[string]Role{
	"shp":     RoleGeometry,
	"prj":     RoleProjection,
	"json":    RolePassThrough,
	"geojson": RolePassThrough,
	"dbf":     RoleAttributes,
	"cpg":     RoleEncoding,
}

// Kind identifies how a layer is assembled.
type Kind int

const (
	KindShapefile Kind = iota
	KindJSON
	KindRaw
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindShapefile:
		return "shapefile"
	case KindJSON:
		return "json"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// LayerRef names a layer found during classification.
//
// For shapefile layers Name is the shared base name of the .shp/.dbf/.prj/.cpg
// members. For pass-through layers Name is the canonical member name.
type LayerRef struct {
	Name string
	Kind Kind
}

// SplitName splits a member name into base and lower-case extension.
// Names without a dot have an empty extension.
func SplitName(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || strings.IndexByte(name[i:], '/') >= 0 {
		return name, ""
	}
	return name[:i], strings.ToLower(name[i+1:])
}

// Canonical returns name with its extension lower-cased.
func Canonical(name string) string {
	base, ext := SplitName(name)
	if ext == "" {
		return name
	}
	return base + "." + ext
}

// RoleOf returns the role of a member name given the whitelisted extensions.
// Whitelist entries match the extension case-insensitively, with or without a
// leading dot, like every other extension. A whitelisted extension takes the
// .dbf and .cpg names away from their shapefile layer.
func RoleOf(name string, whitelist []string) Role {
	_, ext := SplitName(name)
	if ext == "" {
		return RoleIgnored
	}
	switch role := extensionRoles[ext]; role {
	case RoleGeometry, RoleProjection, RolePassThrough:
		return role
	}
	for _, w := range whitelist {
		if strings.EqualFold(strings.TrimPrefix(w, "."), ext) {
			return RolePassThrough
		}
	}
	return extensionRoles[ext]
}

// ResolveFunc turns the text of a .prj member into a spatial reference.
// A nil reference with a non-nil error records a present but unusable projection.
type ResolveFunc func(description string) (SpatialReference, error)

// Classify canonicalizes member names in place, resolves every .prj member
// and returns the layers in member order.
//
// Members under a __MACOSX directory are skipped. Members with an unknown
// extension stay in the map but produce nothing. It returns ErrNoLayersFound
// when no member yields a layer.
func Classify(c *Components, whitelist []string, resolve ResolveFunc, logger *slog.Logger) ([]LayerRef, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var refs []LayerRef
	seen := make(map[string]bool)
	add := func(ref LayerRef) {
		if seen[ref.Name] {
			return
		}
		seen[ref.Name] = true
		refs = append(refs, ref)
	}

	for _, name := range c.Names() {
		if isResourceFork(name) {
			continue
		}

		role := RoleOf(name, whitelist)
		canonical := Canonical(name)
		if canonical != name {
			c.Rename(name, canonical)
		}
		base, ext := SplitName(canonical)

		switch role {
		case RoleGeometry:
			add(LayerRef{Name: base, Kind: KindShapefile})
		case RoleProjection:
			data, _ := c.Get(canonical)
			ref, err := resolve(string(data))
			if err != nil {
				logger.Warn("projection unresolved, geometry left unprojected",
					"member", canonical, "error", err)
				c.MarkFailed(canonical, err)
				continue
			}
			c.SetReference(canonical, ref)
		case RolePassThrough:
			if ext == "json" || ext == "geojson" {
				add(LayerRef{Name: canonical, Kind: KindJSON})
			} else {
				add(LayerRef{Name: canonical, Kind: KindRaw})
			}
		}
	}

	if len(refs) == 0 {
		return nil, ErrNoLayersFound
	}

	logger.Debug("classified archive", "members", c.Len(), "layers", len(refs))
	return refs, nil
}

func isResourceFork(name string) bool {
	for _, seg := range strings.Split(path.Clean(strings.ReplaceAll(name, "\\", "/")), "/") {
		if seg == "__MACOSX" {
			return true
		}
	}
	return false
}
