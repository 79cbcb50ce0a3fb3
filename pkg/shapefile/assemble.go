package shapefile

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/jsonc"

	"github.com/beetlebugorg/shapefile/internal/dbf"
	"github.com/beetlebugorg/shapefile/internal/parser"
)

// Combine pairs geometries and attribute records positionally into features.
//
// The result has min(len(geoms), len(attrs)) features; surplus entries of the
// longer slice are dropped. A nil attrs slice means there is no attribute
// table: every geometry is kept with nil properties. Feature i's properties
// share the map attrs[i].
func Combine(geoms []orb.Geometry, attrs []map[string]any) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	n := len(geoms)
	if attrs != nil {
		n = min(n, len(attrs))
	}

	fc.Features = make([]*geojson.Feature, 0, n)
	for i := 0; i < n; i++ {
		f := geojson.NewFeature(geoms[i])
		f.Properties = nil
		if attrs != nil {
			f.Properties = geojson.Properties(attrs[i])
		}
		fc.Features = append(fc.Features, f)
	}
	return fc
}

// assemble builds the layer named by ref from the classified components.
func assemble(ref LayerRef, c *Components, validate bool) (*Layer, error) {
	switch ref.Kind {
	case KindJSON:
		return assembleJSON(ref, c)
	case KindRaw:
		data, _ := c.Get(ref.Name)
		return &Layer{FileName: ref.Name, Kind: KindRaw, Raw: data}, nil
	default:
		return assembleShapefile(ref, c, validate)
	}
}

func assembleJSON(ref LayerRef, c *Components) (*Layer, error) {
	data, _ := c.Get(ref.Name)
	base, _ := SplitName(ref.Name)

	var doc any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, &LayerError{Layer: base, Component: "json", Err: err}
	}

	layer := &Layer{FileName: base, Kind: KindJSON, Document: doc}
	if obj, ok := doc.(map[string]any); ok {
		obj["fileName"] = base
		if obj["type"] == "FeatureCollection" {
			// Non-conforming collections are still returned as Document.
			if fc, err := geojson.UnmarshalFeatureCollection(jsonc.ToJSON(data)); err == nil {
				layer.Collection = fc
			}
		}
	}
	return layer, nil
}

func assembleShapefile(ref LayerRef, c *Components, validate bool) (*Layer, error) {
	var attrs []map[string]any
	if table, ok := c.Get(ref.Name + ".dbf"); ok {
		cpg, _ := c.Get(ref.Name + ".cpg")
		records, err := dbf.Decode(table, cpg)
		if err != nil {
			return nil, &LayerError{Layer: ref.Name, Component: "dbf", Err: err}
		}
		attrs = records
	}

	shp, ok := c.Get(ref.Name + ".shp")
	if !ok {
		return nil, &LayerError{Layer: ref.Name, Component: "shp", Err: fmt.Errorf("member %s.shp missing", ref.Name)}
	}

	geoms, err := decodeGeometry(shp, c.Reference(ref.Name+".prj"), validate)
	if err != nil {
		return nil, &LayerError{Layer: ref.Name, Component: "shp", Err: err}
	}

	fc := Combine(geoms, attrs)
	fc.ExtraMembers = geojson.Properties{"fileName": ref.Name}
	return &Layer{FileName: ref.Name, Kind: KindShapefile, Collection: fc}, nil
}

// decodeGeometry decodes shp, validating the result when validate is set and
// a spatial reference was applied.
func decodeGeometry(shp []byte, ref SpatialReference, validate bool) ([]orb.Geometry, error) {
	geoms, err := parser.Decode(shp, transformFor(ref))
	if err != nil {
		return nil, err
	}
	if validate && ref != nil {
		for i, g := range geoms {
			if err := parser.ValidateGeometry(i, g); err != nil {
				return nil, err
			}
		}
	}
	return geoms, nil
}

// transformFor returns ref as a decoder transform, or an untyped nil.
func transformFor(ref SpatialReference) parser.Transform {
	if ref == nil {
		return nil
	}
	return ref
}
