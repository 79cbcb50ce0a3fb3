// Package parser decodes the ESRI shapefile geometry stream (.shp) into orb geometries.
//
// A .shp file is a 100-byte main header followed by variable-length records. Each
// record has an 8-byte big-endian header (record number, content length in 16-bit
// words) and little-endian content starting with the shape type.
//
// Reference: ESRI Shapefile Technical Description (July 1998)
package parser

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
)

const (
	headerSize       = 100
	recordHeaderSize = 8

	// fileCode is the big-endian magic number at offset 0
	fileCode = 9994
)

// Transform converts source coordinates into WGS84 longitude/latitude.
//
// A nil Transform leaves coordinates untouched.
type Transform interface {
	Inverse(x, y float64) (lon, lat float64, err error)
}

// Header is the parsed 100-byte main file header.
type Header struct {
	FileLength int       // total file length in bytes (header value is in 16-bit words)
	Version    int       // always 1000 for conforming files
	ShapeType  ShapeType // shape type shared by all non-null records
	BBox       [4]float64
	ZRange     [2]float64
	MRange     [2]float64
}

// ParseHeader reads the main file header.
//
// Offsets per the technical description, table 1:
//
//	0   int32 BE  file code (9994)
//	24  int32 BE  file length in 16-bit words
//	28  int32 LE  version (1000)
//	32  int32 LE  shape type
//	36  8x f64 LE Xmin, Ymin, Xmax, Ymax, Zmin, Zmax, Mmin, Mmax
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, &ErrInvalidHeader{Reason: "stream shorter than 100 bytes"}
	}
	if code := int32(binary.BigEndian.Uint32(data[0:4])); code != fileCode {
		return Header{}, &ErrInvalidHeader{Reason: "bad file code"}
	}

	h := Header{
		FileLength: int(binary.BigEndian.Uint32(data[24:28])) * 2,
		Version:    int(int32(binary.LittleEndian.Uint32(data[28:32]))),
		ShapeType:  ShapeType(int32(binary.LittleEndian.Uint32(data[32:36]))),
	}
	for i := 0; i < 4; i++ {
		h.BBox[i] = readFloat(data, 36+i*8)
	}
	h.ZRange = [2]float64{readFloat(data, 68), readFloat(data, 76)}
	h.MRange = [2]float64{readFloat(data, 84), readFloat(data, 92)}
	return h, nil
}

// Decode parses every record of a geometry stream, in file order.
//
// Coordinates are passed through t when it is non-nil. Null shapes decode to an
// empty orb.Collection so that the output stays positionally aligned with the
// attribute table.
func Decode(data []byte, t Transform) ([]orb.Geometry, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	end := header.FileLength
	if end <= 0 || end > len(data) {
		end = len(data)
	}

	d := &decoder{transform: t}
	geometries := make([]orb.Geometry, 0)

	offset := headerSize
	for offset+recordHeaderSize <= end {
		number := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		length := int(binary.BigEndian.Uint32(data[offset+4:offset+8])) * 2
		offset += recordHeaderSize

		if offset+length > end {
			return nil, &ErrTruncatedRecord{
				Record: number,
				Offset: offset,
				Need:   length,
				Have:   end - offset,
			}
		}

		d.record = number
		geom, err := d.decodeRecord(data[offset : offset+length])
		if err != nil {
			return nil, err
		}
		geometries = append(geometries, geom)
		offset += length
	}

	return geometries, nil
}

func readFloat(data []byte, offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
}

func readInt(data []byte, offset int) int {
	return int(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
}
