package parser

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// TestValidateCoordinate tests coordinate validation
func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lon     float64
		lat     float64
		wantErr bool
	}{
		{"valid", -71.05, 42.35, false},
		{"lat max boundary", 0.0, 90.0, false},
		{"lat min boundary", 0.0, -90.0, false},
		{"lon max boundary", 180.0, 0.0, false},
		{"lon min boundary", -180.0, 0.0, false},
		{"lat too high", 0.0, 90.1, true},
		{"lat too low", 0.0, -90.1, true},
		{"lon too high", 180.1, 0.0, true},
		{"lon too low", -180.1, 0.0, true},
		{"projected metres", -7909249.82, 5213552.79, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.lon, tt.lat)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateGeometry tests geometry validation
func TestValidateGeometry(t *testing.T) {
	square := orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}

	tests := []struct {
		name     string
		geometry orb.Geometry
		wantErr  bool
	}{
		{"valid point", orb.Point{-71.0, 42.0}, false},
		{"null shape", orb.Collection{}, false},
		{"valid line", orb.LineString{{0, 0}, {1, 1}}, false},
		{"valid polygon", orb.Polygon{square}, false},
		{"valid multipolygon", orb.MultiPolygon{{square}, {square}}, false},
		{"point out of range", orb.Point{200, 0}, true},
		{"multipoint out of range", orb.MultiPoint{{0, 0}, {0, 91}}, true},
		{"short line", orb.LineString{{0, 0}}, true},
		{"short part", orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}}}, true},
		{"short ring", orb.Polygon{{{0, 0}, {1, 1}, {0, 0}}}, true},
		{"open ring", orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}}}, true},
		{"ring out of range", orb.Polygon{{{0, 0}, {0, 100}, {1, 100}, {0, 0}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeometry(3, tt.geometry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGeometry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var geomErr *ErrInvalidGeometry
			if !errors.As(err, &geomErr) || geomErr.Index != 3 {
				t.Errorf("Expected *ErrInvalidGeometry for index 3, got %v", err)
			}
		})
	}
}
