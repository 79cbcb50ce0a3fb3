package shapefile

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unsafe"
)

// Normalize coerces supported raw inputs into a byte slice.
//
// Accepted inputs:
//   - []byte: returned unchanged
//   - *bytes.Buffer: its unread bytes, shared
//   - io.Reader: read to EOF
//   - []int8: element size 1, reinterpreted element for element
//   - []uint16, []int16, []uint32, []int32, []uint64, []int64, []float32, []float64:
//     treated as a view over a larger buffer; the whole backing array (up to
//     cap) is reinterpreted as bytes
//
// A nil input of any of these types, including a nil pointer reader, fails
// with ErrInvalidInput. An empty but non-nil []byte is present and returned
// as is. Present but malformed bytes are not validated here.
func Normalize(input any) ([]byte, error) {
	switch v := input.(type) {
	case nil:
		return nil, &InputError{Type: "nil", Reason: "no bytes supplied"}
	case []byte:
		if v == nil {
			return nil, absent(v)
		}
		return v, nil
	case *bytes.Buffer:
		if v == nil {
			return nil, absent(v)
		}
		return v.Bytes(), nil
	case []int8:
		if v == nil {
			return nil, absent(v)
		}
		if len(v) == 0 {
			return []byte{}, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(v))), len(v)), nil
	case []uint16:
		return backing(v)
	case []int16:
		return backing(v)
	case []uint32:
		return backing(v)
	case []int32:
		return backing(v)
	case []uint64:
		return backing(v)
	case []int64:
		return backing(v)
	case []float32:
		return backing(v)
	case []float64:
		return backing(v)
	case *bytes.Reader:
		if v == nil {
			return nil, absent(v)
		}
		return readAll(v)
	case *strings.Reader:
		if v == nil {
			return nil, absent(v)
		}
		return readAll(v)
	case io.Reader:
		return readAll(v)
	default:
		return nil, &InputError{Type: fmt.Sprintf("%T", input), Reason: "unsupported input type"}
	}
}

type wideElement interface {
	uint16 | int16 | uint32 | int32 | uint64 | int64 | float32 | float64
}

// backing returns the whole array behind s as bytes
func backing[T wideElement](s []T) ([]byte, error) {
	if s == nil {
		return nil, absent(s)
	}
	if cap(s) == 0 {
		return []byte{}, nil
	}
	var zero T
	full := s[:cap(s)]
	size := cap(s) * int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(full))), size), nil
}

// readAll reads r to EOF. A reader that panics, typically a nil pointer
// whose Read dereferences its receiver, counts as absent input.
func readAll(r io.Reader) (data []byte, err error) {
	defer func() {
		if recover() != nil {
			data, err = nil, absent(r)
		}
	}()

	data, err = io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func absent(v any) error {
	return &InputError{Type: fmt.Sprintf("%T", v), Reason: "no bytes supplied"}
}
