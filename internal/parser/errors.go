package parser

import (
	"fmt"
)

// ErrInvalidHeader indicates the 100-byte main file header is missing or malformed
type ErrInvalidHeader struct {
	Reason string
}

func (e *ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid shp header: %s", e.Reason)
}

// ErrTruncatedRecord indicates a record extends past the end of the geometry stream
type ErrTruncatedRecord struct {
	Record int // 1-based record number from the record header
	Offset int // byte offset of the record content
	Need   int // bytes required
	Have   int // bytes available
}

func (e *ErrTruncatedRecord) Error() string {
	return fmt.Sprintf("record %d at offset %d truncated: need %d bytes, have %d",
		e.Record, e.Offset, e.Need, e.Have)
}

// ErrUnsupportedShapeType indicates a shape type this decoder does not handle (e.g. MultiPatch)
type ErrUnsupportedShapeType struct {
	Record int
	Type   ShapeType
}

func (e *ErrUnsupportedShapeType) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("record %d: unsupported shape type %v", e.Record, e.Type)
	}
	return fmt.Sprintf("unsupported shape type %v", e.Type)
}

// ErrTransform indicates a coordinate could not be converted to WGS84
type ErrTransform struct {
	Record int
	X, Y   float64
	Err    error
}

func (e *ErrTransform) Error() string {
	return fmt.Sprintf("record %d: transform (%f, %f): %v", e.Record, e.X, e.Y, e.Err)
}

func (e *ErrTransform) Unwrap() error {
	return e.Err
}

// ErrInvalidCoordinate indicates a longitude/latitude outside WGS84 bounds
type ErrInvalidCoordinate struct {
	Lon, Lat float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("coordinate out of range: lon=%f, lat=%f", e.Lon, e.Lat)
}

// ErrInvalidGeometry indicates a decoded geometry failed validation
type ErrInvalidGeometry struct {
	Index  int // 0-based geometry index within the file
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("geometry %d: %s", e.Index, e.Reason)
}
