package shapefile

import (
	"slices"
)

// SpatialReference converts projected coordinates into WGS84 longitude/latitude.
type SpatialReference interface {
	Inverse(x, y float64) (lon, lat float64, err error)

	// Definition returns the CRS definition the reference was built from.
	Definition() string
}

// Components holds the members of one archive or file set by name, together
// with the spatial references resolved from its .prj members.
//
// Names keep insertion order. Components is not safe for concurrent mutation;
// concurrent reads after classification are fine.
type Components struct {
	names   []string
	members map[string][]byte
	refs    map[string]SpatialReference
	failed  map[string]error
}

// NewComponents creates an empty component map.
func NewComponents() *Components {
	return &Components{
		members: make(map[string][]byte),
		refs:    make(map[string]SpatialReference),
		failed:  make(map[string]error),
	}
}

// Set stores data under name. A repeated name replaces the earlier data.
func (c *Components) Set(name string, data []byte) {
	if _, ok := c.members[name]; !ok {
		c.names = append(c.names, name)
	}
	c.members[name] = data
}

// Get returns the bytes stored under name.
func (c *Components) Get(name string) ([]byte, bool) {
	data, ok := c.members[name]
	return data, ok
}

// Names returns member names in insertion order.
func (c *Components) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of members.
func (c *Components) Len() int {
	return len(c.names)
}

// Rename moves the member stored under from to to. If to already exists its
// data is replaced and from is dropped from the order.
func (c *Components) Rename(from, to string) {
	data, ok := c.members[from]
	if !ok || from == to {
		return
	}
	delete(c.members, from)
	i := slices.Index(c.names, from)
	if _, exists := c.members[to]; exists {
		c.names = slices.Delete(c.names, i, i+1)
	} else {
		c.names[i] = to
	}
	c.members[to] = data
}

// SetReference records the spatial reference resolved from a .prj member.
func (c *Components) SetReference(name string, ref SpatialReference) {
	delete(c.failed, name)
	c.refs[name] = ref
}

// MarkFailed records that a .prj member was present but could not be resolved.
func (c *Components) MarkFailed(name string, err error) {
	delete(c.refs, name)
	c.failed[name] = err
}

// Reference returns the spatial reference for a .prj member. A nil reference
// means the member was absent, empty or failed.
func (c *Components) Reference(name string) SpatialReference {
	return c.refs[name]
}

// Failed returns the resolution error recorded for a .prj member.
func (c *Components) Failed(name string) error {
	return c.failed[name]
}
