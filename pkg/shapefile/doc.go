// Package shapefile converts ESRI shapefiles into GeoJSON feature collections.
//
// A source is either raw zip bytes or a string. A string ending in ".zip" is
// fetched and read as an archive; any other string is a base location whose
// .shp, .prj, .dbf and .cpg siblings are fetched concurrently.
//
// # Quick Start
//
//	reader, err := shapefile.NewReader()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := reader.GetShapefile(ctx, "https://example.com/data/roads.zip", shapefile.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, layer := range result.Layers {
//	    fmt.Printf("%s: %d features\n", layer.FileName, len(layer.Features()))
//	}
//
// # Archives
//
// Each .shp member becomes a layer named after its base name, combined with
// the .dbf, .prj and .cpg members sharing that base name. Extension case is
// ignored. .json members are parsed and returned as documents; members whose
// extension is listed in Options.Whitelist are returned as raw bytes.
//
// # Projections
//
// Coordinates are reprojected to WGS84 longitude/latitude when a spatial
// reference can be resolved. Options.EPSG takes priority, then a table of
// well-known systems matched against the .prj text, then a direct parse by
// PROJ. When nothing resolves, coordinates are returned as stored.
//
// # Caching
//
// Results for string sources are kept in an LRU ResultCache of
// DefaultCacheSize entries. The cache key is the source string only.
//
// # Spatial Queries
//
//	viewport := orb.Bound{Min: orb.Point{-71.5, 42.0}, Max: orb.Point{-71.0, 42.5}}
//	visible := layer.FeaturesInBounds(viewport)
//
// The R-tree index is built on first use.
package shapefile
