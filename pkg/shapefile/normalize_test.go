package shapefile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBytes(t *testing.T) {
	data := []byte{1, 2, 3}

	got, err := Normalize(data)
	require.NoError(t, err)
	assert.Same(t, &data[0], &got[0], "byte slices are returned without copying")

	got, err = Normalize(bytes.NewBuffer([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got, err = Normalize(strings.NewReader("stream"))
	require.NoError(t, err)
	assert.Equal(t, []byte("stream"), got)
}

func TestNormalizeInt8View(t *testing.T) {
	view := []int8{1, -1, 127, -128}

	got, err := Normalize(view)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xff, 0x7f, 0x80}, got)

	// backed by the same memory
	view[0] = 5
	assert.Equal(t, byte(5), got[0])
}

func TestNormalizeWideView(t *testing.T) {
	backingArray := make([]uint32, 4)
	for i := range backingArray {
		backingArray[i] = uint32(i + 1)
	}
	view := backingArray[:1]

	got, err := Normalize(view)
	require.NoError(t, err)
	require.Len(t, got, 16, "the whole backing array is reinterpreted")
	assert.Equal(t, uint32(4), binary.NativeEndian.Uint32(got[12:16]))

	got, err = Normalize([]float64{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// panickyReader dereferences its receiver like most pointer readers do.
type panickyReader struct{ data []byte }

func (r *panickyReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	r.data = r.data[n:]
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func TestNormalizeEmptyBytes(t *testing.T) {
	got, err := Normalize([]byte{})
	require.NoError(t, err, "an empty buffer is present, not absent")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"nil bytes", []byte(nil)},
		{"nil buffer", (*bytes.Buffer)(nil)},
		{"nil int8", []int8(nil)},
		{"nil float64", []float64(nil)},
		{"typed nil reader", (*strings.Reader)(nil)},
		{"typed nil bytes reader", (*bytes.Reader)(nil)},
		{"nil pointer custom reader", (*panickyReader)(nil)},
		{"unsupported", 42},
		{"string", "roads.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var inputErr *InputError
			assert.ErrorAs(t, err, &inputErr)
		})
	}
}
