// Package testutil builds in-memory shapefile fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zip"
)

// Shape type codes used by the encoders
const (
	TypeNull       = 0
	TypePoint      = 1
	TypePolyLine   = 3
	TypePolygon    = 5
	TypeMultiPoint = 8
)

// Record is one shape: a list of parts, each a list of XY pairs.
// Points use a single part with a single coordinate; null shapes use nil.
type Record [][][2]float64

// EncodeShp encodes records of a single shape type into a .shp stream.
func EncodeShp(shapeType int, records ...Record) []byte {
	var body bytes.Buffer
	for i, rec := range records {
		content := encodeContent(shapeType, rec)
		_ = binary.Write(&body, binary.BigEndian, int32(i+1))
		_ = binary.Write(&body, binary.BigEndian, int32(len(content)/2))
		body.Write(content)
	}

	header := make([]byte, 100)
	binary.BigEndian.PutUint32(header[0:4], 9994)
	binary.BigEndian.PutUint32(header[24:28], uint32((100+body.Len())/2))
	binary.LittleEndian.PutUint32(header[28:32], 1000)
	binary.LittleEndian.PutUint32(header[32:36], uint32(shapeType))

	return append(header, body.Bytes()...)
}

// PointShp encodes one Point record per coordinate.
func PointShp(points ...[2]float64) []byte {
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{{p}}
	}
	return EncodeShp(TypePoint, records...)
}

func encodeContent(shapeType int, rec Record) []byte {
	var buf bytes.Buffer
	if rec == nil {
		_ = binary.Write(&buf, binary.LittleEndian, int32(TypeNull))
		return buf.Bytes()
	}
	_ = binary.Write(&buf, binary.LittleEndian, int32(shapeType))

	switch shapeType {
	case TypePoint:
		p := rec[0][0]
		writeFloats(&buf, p[0], p[1])
	case TypeMultiPoint:
		writeFloats(&buf, 0, 0, 0, 0)
		_ = binary.Write(&buf, binary.LittleEndian, int32(len(rec[0])))
		for _, p := range rec[0] {
			writeFloats(&buf, p[0], p[1])
		}
	default:
		writeFloats(&buf, 0, 0, 0, 0)
		total := 0
		for _, part := range rec {
			total += len(part)
		}
		_ = binary.Write(&buf, binary.LittleEndian, int32(len(rec)))
		_ = binary.Write(&buf, binary.LittleEndian, int32(total))
		index := 0
		for _, part := range rec {
			_ = binary.Write(&buf, binary.LittleEndian, int32(index))
			index += len(part)
		}
		for _, part := range rec {
			for _, p := range part {
				writeFloats(&buf, p[0], p[1])
			}
		}
	}
	return buf.Bytes()
}

func writeFloats(buf *bytes.Buffer, values ...float64) {
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, math.Float64bits(v))
	}
}

// Field describes one dBASE column.
type Field struct {
	Name     string
	Type     byte // 'C', 'N', 'F', 'L', 'D'
	Length   int
	Decimals int
}

// EncodeDBF encodes a dBASE III table. Each row holds one raw value per field,
// padded or truncated to the field length.
func EncodeDBF(fields []Field, rows [][]string) []byte {
	recordLen := 1
	for _, f := range fields {
		recordLen += f.Length
	}
	headerLen := 32 + 32*len(fields) + 1

	var buf bytes.Buffer
	header := make([]byte, 32)
	header[0] = 0x03
	header[1], header[2], header[3] = 124, 1, 1
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLen))
	buf.Write(header)

	for _, f := range fields {
		desc := make([]byte, 32)
		copy(desc[0:11], f.Name)
		desc[11] = f.Type
		desc[16] = byte(f.Length)
		desc[17] = byte(f.Decimals)
		buf.Write(desc)
	}
	buf.WriteByte(0x0D)

	for _, row := range rows {
		buf.WriteByte(' ')
		for i, f := range fields {
			value := []byte(row[i])
			cell := bytes.Repeat([]byte{' '}, f.Length)
			copy(cell, value)
			buf.Write(cell)
		}
	}
	buf.WriteByte(0x1A)
	return buf.Bytes()
}

// Zip builds an archive with members written in the given order.
func Zip(members ...Member) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		f, err := w.Create(m.Name)
		if err != nil {
			panic(err)
		}
		if _, err := f.Write(m.Data); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Member is one archive entry.
type Member struct {
	Name string
	Data []byte
}

// WGS84 is an ESRI .prj description of geographic WGS84.
const WGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// WebMercator is an ESRI .prj description of Web Mercator.
const WebMercator = `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_Auxiliary_Sphere"],PARAMETER["False_Easting",0.0],PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",0.0],PARAMETER["Standard_Parallel_1",0.0],PARAMETER["Auxiliary_Sphere_Type",0.0],UNIT["Meter",1.0]]`
