package dbf

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/beetlebugorg/shapefile/internal/testutil"
)

var testFields = []testutil.Field{
	{Name: "NAME", Type: 'C', Length: 10},
	{Name: "DEPTH", Type: 'N', Length: 8, Decimals: 2},
	{Name: "LIT", Type: 'L', Length: 1},
	{Name: "SURVEYED", Type: 'D', Length: 8},
}

// TestDecodeRecords tests value conversion for each field type
func TestDecodeRecords(t *testing.T) {
	data := testutil.EncodeDBF(testFields, [][]string{
		{"Buoy", "12.50", "T", "20240131"},
		{"Light", "abc", "?", "bad"},
	})

	records, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first["NAME"] != "Buoy" {
		t.Errorf("Expected NAME=Buoy, got %v", first["NAME"])
	}
	if first["DEPTH"] != 12.5 {
		t.Errorf("Expected DEPTH=12.5, got %v", first["DEPTH"])
	}
	if first["LIT"] != true {
		t.Errorf("Expected LIT=true, got %v", first["LIT"])
	}
	want := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	if got, ok := first["SURVEYED"].(time.Time); !ok || !got.Equal(want) {
		t.Errorf("Expected SURVEYED=%v, got %v", want, first["SURVEYED"])
	}

	// Unparseable values decode to nil, not errors
	second := records[1]
	for _, name := range []string{"DEPTH", "LIT", "SURVEYED"} {
		if v, ok := second[name]; !ok || v != nil {
			t.Errorf("Expected %s=nil, got %v (present=%v)", name, v, ok)
		}
	}
}

// TestParseHeader tests field descriptor parsing
func TestParseHeader(t *testing.T) {
	data := testutil.EncodeDBF(testFields, [][]string{{"a", "1", "F", "20200101"}})

	h, err := ParseHeader(data, Decoder(nil))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Records != 1 {
		t.Errorf("Expected 1 record, got %d", h.Records)
	}
	if len(h.Fields) != len(testFields) {
		t.Fatalf("Expected %d fields, got %d", len(testFields), len(h.Fields))
	}
	for i, f := range testFields {
		if h.Fields[i].Name != f.Name || h.Fields[i].Type != f.Type || h.Fields[i].Length != f.Length {
			t.Errorf("Field %d: expected %+v, got %+v", i, f, h.Fields[i])
		}
	}
}

// rawHeader builds a bare 33-byte table: header plus field terminator.
func rawHeader(records uint32, recordLength uint16) []byte {
	data := make([]byte, headerSize+1)
	data[0] = 0x03
	binary.LittleEndian.PutUint32(data[4:8], records)
	binary.LittleEndian.PutUint16(data[8:10], uint16(len(data)))
	binary.LittleEndian.PutUint16(data[10:12], recordLength)
	data[headerSize] = fieldTerminator
	return data
}

// TestDecodeTruncated tests tables that declare more rows than they hold
func TestDecodeTruncated(t *testing.T) {
	short := testutil.EncodeDBF(testFields, [][]string{{"a", "1", "F", "20200101"}})
	// Drop the EOF marker and part of the only record
	short = short[:len(short)-10]

	tests := []struct {
		name   string
		data   []byte
		record int
	}{
		{"partial record", short, 0},
		{"huge record count", rawHeader(0xFFFFFFFF, 10), 0},
		{"one of three present", append(rawHeader(3, 4), 0x20, 'a', 'b', 'c'), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, nil)
			var truncErr *ErrTruncatedRecord
			if !errors.As(err, &truncErr) {
				t.Fatalf("Expected ErrTruncatedRecord, got %v", err)
			}
			if truncErr.Record != tt.record {
				t.Errorf("Expected record %d, got %d", tt.record, truncErr.Record)
			}
		})
	}
}

// TestDecodeZeroRecordLength tests a header declaring rows of length zero
func TestDecodeZeroRecordLength(t *testing.T) {
	_, err := Decode(rawHeader(0xFFFFFFFF, 0), nil)
	var headerErr *ErrInvalidHeader
	if !errors.As(err, &headerErr) {
		t.Fatalf("Expected ErrInvalidHeader, got %v", err)
	}

	records, err := Decode(rawHeader(0, 0), nil)
	if err != nil {
		t.Fatalf("Decode of empty table failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

// TestDecodeInvalidHeader tests rejection of short input
func TestDecodeInvalidHeader(t *testing.T) {
	_, err := Decode([]byte{0x03, 0x00}, nil)
	var headerErr *ErrInvalidHeader
	if !errors.As(err, &headerErr) {
		t.Fatalf("Expected ErrInvalidHeader, got %v", err)
	}
}

// TestCodePage tests .cpg driven decoding
func TestCodePage(t *testing.T) {
	fields := []testutil.Field{{Name: "NAME", Type: 'C', Length: 8}}
	// "Café" in windows-1252: 0xE9 for é
	data := testutil.EncodeDBF(fields, [][]string{{"Caf\xe9"}})

	tests := []struct {
		cpg      string
		expected string
	}{
		{"1252", "Café"},
		{"CP1252", "Café"},
		{"ISO-8859-1", "Café"},
		{"88591", "Café"},
	}

	for _, tt := range tests {
		t.Run(tt.cpg, func(t *testing.T) {
			records, err := Decode(data, []byte(tt.cpg))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if records[0]["NAME"] != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, records[0]["NAME"])
			}
		})
	}
}

// TestNormalizeCodePage tests .cpg name normalization
func TestNormalizeCodePage(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"", ""},
		{"  UTF-8\n", "utf-8"},
		{"1252", "windows-1252"},
		{"ANSI 1251", "windows-1251"},
		{"cp874", "windows-874"},
		{"8859-5", "iso-8859-5"},
		{"ISO8859-2", "iso-8859-2"},
	}

	for _, tt := range tests {
		if got := normalizeCodePage(tt.in); got != tt.out {
			t.Errorf("normalizeCodePage(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
