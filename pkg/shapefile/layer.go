package shapefile

import (
	"encoding/json"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer is one assembled layer of a shapefile result.
//
// Exactly one of Collection, Document or Raw carries the content, depending
// on Kind. JSON layers whose document is a FeatureCollection also have
// Collection set.
type Layer struct {
	FileName   string
	Kind       Kind
	Collection *geojson.FeatureCollection
	Document   any
	Raw        []byte

	indexOnce sync.Once
	index     *spatialIndex
}

// Result holds every layer produced from one source.
type Result struct {
	Layers []*Layer
}

// Single returns the only layer of a single-layer result.
func (r *Result) Single() (*Layer, bool) {
	if r == nil || len(r.Layers) != 1 {
		return nil, false
	}
	return r.Layers[0], true
}

// Layer returns the layer with the given file name.
func (r *Result) Layer(fileName string) (*Layer, bool) {
	if r == nil {
		return nil, false
	}
	for _, l := range r.Layers {
		if l.FileName == fileName {
			return l, true
		}
	}
	return nil, false
}

// MarshalJSON encodes a single-layer result as that layer and anything else
// as an array of layers.
func (r *Result) MarshalJSON() ([]byte, error) {
	if l, ok := r.Single(); ok {
		return json.Marshal(l)
	}
	layers := r.Layers
	if layers == nil {
		layers = []*Layer{}
	}
	return json.Marshal(layers)
}

// MarshalJSON encodes the layer content. Raw layers are encoded as an object
// with fileName and base64 data.
func (l *Layer) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case KindJSON:
		return json.Marshal(l.Document)
	case KindRaw:
		return json.Marshal(struct {
			FileName string `json:"fileName"`
			Data     []byte `json:"data"`
		}{l.FileName, l.Raw})
	default:
		return json.Marshal(l.Collection)
	}
}

// Features returns the layer's features, or nil for layers without a collection.
func (l *Layer) Features() []*geojson.Feature {
	if l.Collection == nil {
		return nil
	}
	return l.Collection.Features
}

// Bounds returns the bounding box of every non-empty geometry in the layer.
func (l *Layer) Bounds() orb.Bound {
	l.indexOnce.Do(l.buildSpatialIndex)
	if l.index == nil {
		return orb.Bound{}
	}
	return l.index.bounds
}

// FeaturesInBounds returns the features whose bounding box intersects b.
// The index is built on first use.
func (l *Layer) FeaturesInBounds(b orb.Bound) []*geojson.Feature {
	l.indexOnce.Do(l.buildSpatialIndex)
	if l.index == nil {
		return nil
	}

	point := rtreego.Point{b.Min.X(), b.Min.Y()}
	lengths := []float64{
		max(b.Max.X()-b.Min.X(), epsilon),
		max(b.Max.Y()-b.Min.Y(), epsilon),
	}
	query, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	spatials := l.index.rtree.SearchIntersect(query)
	result := make([]*geojson.Feature, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(*indexedFeature).feature)
	}
	return result
}

// spatialIndex is an R-tree over feature bounding boxes.
type spatialIndex struct {
	rtree  *rtreego.Rtree
	bounds orb.Bound
}

// epsilon keeps points and axis-aligned lines from producing zero-length rects.
const epsilon = 0.0001

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature *geojson.Feature
	bounds  orb.Bound
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	point := rtreego.Point{f.bounds.Min.X(), f.bounds.Min.Y()}
	lengths := []float64{
		max(f.bounds.Max.X()-f.bounds.Min.X(), epsilon),
		max(f.bounds.Max.Y()-f.bounds.Min.Y(), epsilon),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func (l *Layer) buildSpatialIndex() {
	features := l.Features()
	if len(features) == 0 {
		return
	}

	// 2D, min 25 and max 50 children per node
	rtree := rtreego.NewTree(2, 25, 50)

	var layerBounds *orb.Bound
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		fb := f.Geometry.Bound()
		if fb.IsEmpty() {
			continue
		}
		rtree.Insert(&indexedFeature{feature: f, bounds: fb})

		if layerBounds == nil {
			layerBounds = &fb
		} else {
			*layerBounds = layerBounds.Union(fb)
		}
	}

	if layerBounds == nil {
		return
	}
	l.index = &spatialIndex{rtree: rtree, bounds: *layerBounds}
}
