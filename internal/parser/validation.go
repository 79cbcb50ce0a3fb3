package parser

import (
	"fmt"

	"github.com/paulmach/orb"
)

// ValidateCoordinate checks that a coordinate lies within WGS84 bounds
func ValidateCoordinate(lon, lat float64) error {
	if lat < -90.0 || lat > 90.0 || lon < -180.0 || lon > 180.0 {
		return &ErrInvalidCoordinate{Lon: lon, Lat: lat}
	}
	return nil
}

// ValidateGeometry checks a geometry decoded into longitude/latitude.
//
// Null shapes (empty collections) are valid. Lines need two points and rings
// four; rings must be closed.
func ValidateGeometry(index int, g orb.Geometry) error {
	invalid := func(format string, args ...any) error {
		return &ErrInvalidGeometry{Index: index, Reason: fmt.Sprintf(format, args...)}
	}

	switch g := g.(type) {
	case orb.Collection:
		for _, child := range g {
			if err := ValidateGeometry(index, child); err != nil {
				return err
			}
		}
		return nil
	case orb.LineString:
		if len(g) < 2 {
			return invalid("line has %d points", len(g))
		}
	case orb.MultiLineString:
		for i, ls := range g {
			if len(ls) < 2 {
				return invalid("part %d has %d points", i, len(ls))
			}
		}
	case orb.Polygon:
		if err := validateRings(g); err != nil {
			return invalid("%v", err)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			if err := validateRings(p); err != nil {
				return invalid("%v", err)
			}
		}
	}

	var err error
	forEachPoint(g, func(p orb.Point) bool {
		if e := ValidateCoordinate(p[0], p[1]); e != nil {
			err = invalid("%v", e)
			return false
		}
		return true
	})
	return err
}

func validateRings(p orb.Polygon) error {
	for i, ring := range p {
		if len(ring) < 4 {
			return fmt.Errorf("ring %d has %d points", i, len(ring))
		}
		if !ring.Closed() {
			return fmt.Errorf("ring %d is not closed", i)
		}
	}
	return nil
}

// forEachPoint calls fn for every point of g until fn returns false.
func forEachPoint(g orb.Geometry, fn func(orb.Point) bool) {
	switch g := g.(type) {
	case orb.Point:
		fn(g)
	case orb.MultiPoint:
		for _, p := range g {
			if !fn(p) {
				return
			}
		}
	case orb.LineString:
		for _, p := range g {
			if !fn(p) {
				return
			}
		}
	case orb.MultiLineString:
		for _, ls := range g {
			for _, p := range ls {
				if !fn(p) {
					return
				}
			}
		}
	case orb.Polygon:
		for _, r := range g {
			for _, p := range r {
				if !fn(p) {
					return
				}
			}
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, r := range poly {
				for _, p := range r {
					if !fn(p) {
						return
					}
				}
			}
		}
	}
}
