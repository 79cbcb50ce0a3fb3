package parser

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/shapefile/internal/testutil"
)

// TestParseHeader tests main file header fields
func TestParseHeader(t *testing.T) {
	data := testutil.PointShp([2]float64{1, 2}, [2]float64{3, 4})

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Version != 1000 {
		t.Errorf("Expected version 1000, got %d", h.Version)
	}
	if h.ShapeType != ShapePoint {
		t.Errorf("Expected shape type Point, got %v", h.ShapeType)
	}
	if h.FileLength != len(data) {
		t.Errorf("Expected file length %d, got %d", len(data), h.FileLength)
	}
}

// TestParseHeaderInvalid tests header rejection
func TestParseHeaderInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short", make([]byte, 50)},
		{"bad file code", make([]byte, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.data)
			var headerErr *ErrInvalidHeader
			if !errors.As(err, &headerErr) {
				t.Errorf("Expected ErrInvalidHeader, got %v", err)
			}
		})
	}
}

// TestDecodePoints tests point records in file order
func TestDecodePoints(t *testing.T) {
	data := testutil.PointShp([2]float64{-71.05, 42.35}, [2]float64{-71.04, 42.36})

	geoms, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(geoms) != 2 {
		t.Fatalf("Expected 2 geometries, got %d", len(geoms))
	}

	first, ok := geoms[0].(orb.Point)
	if !ok {
		t.Fatalf("Expected orb.Point, got %T", geoms[0])
	}
	if first != (orb.Point{-71.05, 42.35}) {
		t.Errorf("Unexpected first point: %v", first)
	}
	if geoms[1].(orb.Point) != (orb.Point{-71.04, 42.36}) {
		t.Errorf("Unexpected second point: %v", geoms[1])
	}
}

// offsetTransform shifts every coordinate, standing in for a projection
type offsetTransform struct {
	dx, dy float64
	err    error
}

func (o offsetTransform) Inverse(x, y float64) (float64, float64, error) {
	if o.err != nil {
		return 0, 0, o.err
	}
	return x + o.dx, y + o.dy, nil
}

// TestDecodeWithTransform tests that the transform is applied to every coordinate
func TestDecodeWithTransform(t *testing.T) {
	data := testutil.PointShp([2]float64{1, 2})

	geoms, err := Decode(data, offsetTransform{dx: 10, dy: 20})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := geoms[0].(orb.Point); got != (orb.Point{11, 22}) {
		t.Errorf("Expected transformed point [11 22], got %v", got)
	}
}

// TestDecodeTransformError tests that transform failures carry the record number
func TestDecodeTransformError(t *testing.T) {
	data := testutil.PointShp([2]float64{1, 2})
	cause := errors.New("out of domain")

	_, err := Decode(data, offsetTransform{err: cause})
	var transformErr *ErrTransform
	if !errors.As(err, &transformErr) {
		t.Fatalf("Expected ErrTransform, got %v", err)
	}
	if transformErr.Record != 1 {
		t.Errorf("Expected record 1, got %d", transformErr.Record)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to unwrap to cause")
	}
}

// TestDecodeTruncated tests a record whose content length overruns the stream
func TestDecodeTruncated(t *testing.T) {
	data := testutil.PointShp([2]float64{1, 2})
	// Claim a longer content length than is present
	binary.BigEndian.PutUint32(data[104:108], 100)

	_, err := Decode(data, nil)
	var truncErr *ErrTruncatedRecord
	if !errors.As(err, &truncErr) {
		t.Fatalf("Expected ErrTruncatedRecord, got %v", err)
	}
	if truncErr.Record != 1 {
		t.Errorf("Expected record 1, got %d", truncErr.Record)
	}
}

// TestDecodeUnsupported tests MultiPatch rejection
func TestDecodeUnsupported(t *testing.T) {
	data := testutil.PointShp([2]float64{1, 2})
	binary.LittleEndian.PutUint32(data[108:112], uint32(ShapeMultiPatch))

	_, err := Decode(data, nil)
	var typeErr *ErrUnsupportedShapeType
	if !errors.As(err, &typeErr) {
		t.Fatalf("Expected ErrUnsupportedShapeType, got %v", err)
	}
	if typeErr.Type != ShapeMultiPatch {
		t.Errorf("Expected MultiPatch, got %v", typeErr.Type)
	}
}

// TestDecodeEmpty tests a header-only stream
func TestDecodeEmpty(t *testing.T) {
	geoms, err := Decode(testutil.EncodeShp(testutil.TypePoint), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(geoms) != 0 {
		t.Errorf("Expected no geometries, got %d", len(geoms))
	}
}
