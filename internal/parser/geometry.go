package parser

import (
	"github.com/paulmach/orb"
)

// ShapeType is the shape type code stored in the main header and in every record.
type ShapeType int

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyLine    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolyLineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolyLineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
	ShapeMultiPatch  ShapeType = 31
)

// String returns the name used in the technical description.
func (s ShapeType) String() string {
	switch s {
	case ShapeNull:
		return "Null"
	case ShapePoint:
		return "Point"
	case ShapePolyLine:
		return "PolyLine"
	case ShapePolygon:
		return "Polygon"
	case ShapeMultiPoint:
		return "MultiPoint"
	case ShapePointZ:
		return "PointZ"
	case ShapePolyLineZ:
		return "PolyLineZ"
	case ShapePolygonZ:
		return "PolygonZ"
	case ShapeMultiPointZ:
		return "MultiPointZ"
	case ShapePointM:
		return "PointM"
	case ShapePolyLineM:
		return "PolyLineM"
	case ShapePolygonM:
		return "PolygonM"
	case ShapeMultiPointM:
		return "MultiPointM"
	case ShapeMultiPatch:
		return "MultiPatch"
	default:
		return "Unknown"
	}
}

// base returns the 2D shape type for Z and M variants.
// Z and M values follow the XY block, so the XY layout is identical.
func (s ShapeType) base() ShapeType {
	switch s {
	case ShapePointZ, ShapePointM:
		return ShapePoint
	case ShapePolyLineZ, ShapePolyLineM:
		return ShapePolyLine
	case ShapePolygonZ, ShapePolygonM:
		return ShapePolygon
	case ShapeMultiPointZ, ShapeMultiPointM:
		return ShapeMultiPoint
	default:
		return s
	}
}

// decoder carries per-stream state across records
type decoder struct {
	transform Transform
	record    int
}

// decodeRecord builds a geometry from one record's content (shape type included)
func (d *decoder) decodeRecord(content []byte) (orb.Geometry, error) {
	if len(content) < 4 {
		return nil, d.truncated(4, len(content))
	}

	shapeType := ShapeType(readInt(content, 0))
	body := content[4:]

	switch shapeType.base() {
	case ShapeNull:
		return orb.Collection{}, nil
	case ShapePoint:
		return d.decodePoint(body)
	case ShapeMultiPoint:
		return d.decodeMultiPoint(body)
	case ShapePolyLine:
		return d.decodePolyLine(body)
	case ShapePolygon:
		return d.decodePolygon(body)
	default:
		return nil, &ErrUnsupportedShapeType{Record: d.record, Type: shapeType}
	}
}

// decodePoint reads X, Y (Z and M, if present, are ignored)
func (d *decoder) decodePoint(body []byte) (orb.Geometry, error) {
	if len(body) < 16 {
		return nil, d.truncated(16, len(body))
	}
	return d.point(readFloat(body, 0), readFloat(body, 8))
}

// decodeMultiPoint reads Box[4], NumPoints, Points[NumPoints].
// A single point is returned as orb.Point.
func (d *decoder) decodeMultiPoint(body []byte) (orb.Geometry, error) {
	if len(body) < 36 {
		return nil, d.truncated(36, len(body))
	}
	numPoints := readInt(body, 32)
	points, err := d.points(body, 36, numPoints)
	if err != nil {
		return nil, err
	}
	if len(points) == 1 {
		return points[0], nil
	}
	return orb.MultiPoint(points), nil
}

// decodePolyLine reads Box[4], NumParts, NumPoints, Parts[NumParts], Points[NumPoints].
// A single part is returned as orb.LineString.
func (d *decoder) decodePolyLine(body []byte) (orb.Geometry, error) {
	parts, err := d.parts(body)
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return orb.LineString(parts[0]), nil
	}
	lines := make(orb.MultiLineString, len(parts))
	for i, part := range parts {
		lines[i] = orb.LineString(part)
	}
	return lines, nil
}

// decodePolygon groups rings into polygons.
//
// Outer rings are clockwise; each counter-clockwise ring is a hole of the most
// recent outer ring. A leading hole with no outer ring starts its own polygon.
// A single polygon is returned as orb.Polygon.
func (d *decoder) decodePolygon(body []byte) (orb.Geometry, error) {
	parts, err := d.parts(body)
	if err != nil {
		return nil, err
	}

	polygons := make(orb.MultiPolygon, 0, 1)
	for _, part := range parts {
		ring := orb.Ring(part)
		if clockwise(ring) || len(polygons) == 0 {
			polygons = append(polygons, orb.Polygon{ring})
			continue
		}
		last := len(polygons) - 1
		polygons[last] = append(polygons[last], ring)
	}

	if len(polygons) == 1 {
		return polygons[0], nil
	}
	return polygons, nil
}

// parts splits the point array of a PolyLine or Polygon body by the Parts index array
func (d *decoder) parts(body []byte) ([][]orb.Point, error) {
	if len(body) < 40 {
		return nil, d.truncated(40, len(body))
	}
	numParts := readInt(body, 32)
	numPoints := readInt(body, 36)
	if numParts < 0 || numPoints < 0 {
		return nil, d.truncated(40, len(body))
	}

	indexEnd := 40 + numParts*4
	if indexEnd > len(body) {
		return nil, d.truncated(indexEnd, len(body))
	}
	points, err := d.points(body, indexEnd, numPoints)
	if err != nil {
		return nil, err
	}

	parts := make([][]orb.Point, 0, numParts)
	for i := 0; i < numParts; i++ {
		start := readInt(body, 40+i*4)
		stop := numPoints
		if i+1 < numParts {
			stop = readInt(body, 40+(i+1)*4)
		}
		if start < 0 || stop > numPoints || start > stop {
			return nil, d.truncated(stop, numPoints)
		}
		parts = append(parts, points[start:stop])
	}
	return parts, nil
}

// points reads count XY pairs starting at offset
func (d *decoder) points(body []byte, offset, count int) ([]orb.Point, error) {
	if count < 0 {
		return nil, d.truncated(0, len(body))
	}
	need := offset + count*16
	if need > len(body) {
		return nil, d.truncated(need, len(body))
	}

	points := make([]orb.Point, count)
	for i := 0; i < count; i++ {
		o := offset + i*16
		p, err := d.point(readFloat(body, o), readFloat(body, o+8))
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}

// point applies the transform, if any
func (d *decoder) point(x, y float64) (orb.Point, error) {
	if d.transform == nil {
		return orb.Point{x, y}, nil
	}
	lon, lat, err := d.transform.Inverse(x, y)
	if err != nil {
		return orb.Point{}, &ErrTransform{Record: d.record, X: x, Y: y, Err: err}
	}
	return orb.Point{lon, lat}, nil
}

func (d *decoder) truncated(need, have int) error {
	return &ErrTruncatedRecord{Record: d.record, Need: need, Have: have}
}

// clockwise reports whether a ring winds clockwise (shoelace sum > 0)
func clockwise(ring orb.Ring) bool {
	sum := 0.0
	for i := 1; i < len(ring); i++ {
		prev, cur := ring[i-1], ring[i]
		sum += (cur[0] - prev[0]) * (cur[1] + prev[1])
	}
	return sum > 0
}
