// Package dbf decodes dBASE III attribute tables (.dbf) that accompany shapefiles.
//
// Records are returned in file order, one map per record, so that record i pairs
// with geometry i of the .shp stream. Deleted records are kept for that reason.
package dbf

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
)

const (
	headerSize     = 32
	descriptorSize = 32

	fieldTerminator = 0x0D
)

// ErrInvalidHeader indicates a table header that cannot be parsed
type ErrInvalidHeader struct {
	Reason string
}

func (e *ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid dbf header: %s", e.Reason)
}

// ErrTruncatedRecord indicates the table ends before the declared record count
type ErrTruncatedRecord struct {
	Record int // 0-based
	Offset int
}

func (e *ErrTruncatedRecord) Error() string {
	return fmt.Sprintf("dbf record %d at offset %d truncated", e.Record, e.Offset)
}

// Field is one column descriptor.
type Field struct {
	Name     string
	Type     byte // C, N, F, L, D (others decode as text)
	Length   int
	Decimals int
}

// Header is the table header and column layout.
type Header struct {
	LastUpdated  time.Time
	Records      int
	HeaderLength int
	RecordLength int
	Fields       []Field
}

// ParseHeader reads the 32-byte table header and the field descriptor array.
// Field names are decoded with dec.
func ParseHeader(data []byte, dec *encoding.Decoder) (Header, error) {
	if len(data) < headerSize {
		return Header{}, &ErrInvalidHeader{Reason: "table shorter than 32 bytes"}
	}

	h := Header{
		LastUpdated:  time.Date(1900+int(data[1]), time.Month(data[2]), int(data[3]), 0, 0, 0, 0, time.UTC),
		Records:      int(binary.LittleEndian.Uint32(data[4:8])),
		HeaderLength: int(binary.LittleEndian.Uint16(data[8:10])),
		RecordLength: int(binary.LittleEndian.Uint16(data[10:12])),
	}
	if h.HeaderLength > len(data) {
		return Header{}, &ErrInvalidHeader{Reason: "header length exceeds table size"}
	}

	for offset := headerSize; offset+descriptorSize <= h.HeaderLength; offset += descriptorSize {
		if data[offset] == fieldTerminator {
			break
		}
		desc := data[offset : offset+descriptorSize]
		h.Fields = append(h.Fields, Field{
			Name:     decodeText(dec, trimName(desc[0:11])),
			Type:     desc[11],
			Length:   int(desc[16]),
			Decimals: int(desc[17]),
		})
	}
	return h, nil
}

// Decode parses every record of the table.
//
// cpg is the content of the companion .cpg file naming the code page; nil or an
// unknown code page means UTF-8.
func Decode(data []byte, cpg []byte) ([]map[string]any, error) {
	dec := Decoder(cpg)

	h, err := ParseHeader(data, dec)
	if err != nil {
		return nil, err
	}

	if h.Records == 0 {
		return []map[string]any{}, nil
	}
	if h.RecordLength == 0 {
		return nil, &ErrInvalidHeader{Reason: fmt.Sprintf("%d records of length 0", h.Records)}
	}

	// The declared count is checked against the bytes present before anything
	// is allocated for it.
	available := (len(data) - h.HeaderLength) / h.RecordLength
	if h.Records > available {
		return nil, &ErrTruncatedRecord{Record: available, Offset: h.HeaderLength + available*h.RecordLength}
	}

	records := make([]map[string]any, 0, h.Records)
	offset := h.HeaderLength
	for i := 0; i < h.Records; i++ {
		records = append(records, decodeRecord(data[offset:offset+h.RecordLength], h.Fields, dec))
		offset += h.RecordLength
	}
	return records, nil
}

// decodeRecord decodes one record; byte 0 is the deletion flag
func decodeRecord(row []byte, fields []Field, dec *encoding.Decoder) map[string]any {
	out := make(map[string]any, len(fields))
	pos := 1
	for _, f := range fields {
		end := pos + f.Length
		if end > len(row) {
			end = len(row)
		}
		out[f.Name] = decodeValue(row[pos:end], f, dec)
		pos = end
	}
	return out
}

// decodeValue converts a raw cell. Unparseable numbers, dates and logicals are nil.
func decodeValue(raw []byte, f Field, dec *encoding.Decoder) any {
	switch f.Type {
	case 'N', 'F':
		text := strings.TrimSpace(string(raw))
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil
		}
		return v
	case 'D':
		t, err := time.Parse("20060102", strings.TrimSpace(string(raw)))
		if err != nil {
			return nil
		}
		return t
	case 'L':
		switch strings.TrimSpace(string(raw)) {
		case "Y", "y", "T", "t":
			return true
		case "N", "n", "F", "f":
			return false
		default:
			return nil
		}
	default:
		return strings.TrimSpace(decodeText(dec, raw))
	}
}

func trimName(raw []byte) []byte {
	if i := strings.IndexByte(string(raw), 0); i >= 0 {
		raw = raw[:i]
	}
	return []byte(strings.TrimSpace(string(raw)))
}
