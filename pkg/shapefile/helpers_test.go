package shapefile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/shapefile/internal/fetch"
	"github.com/beetlebugorg/shapefile/internal/testutil"
)

// scaleEngine treats any Mercator definition as metres / 100000 and any
// longlat definition as identity. Everything else fails to parse.
type scaleEngine struct {
	mu    sync.Mutex
	calls []string
}

type scaleReference struct {
	definition string
	factor     float64
}

func (s *scaleReference) Inverse(x, y float64) (float64, float64, error) {
	return x / s.factor, y / s.factor, nil
}

func (s *scaleReference) Definition() string { return s.definition }

func (e *scaleEngine) New(definition string) (SpatialReference, error) {
	e.mu.Lock()
	e.calls = append(e.calls, definition)
	e.mu.Unlock()

	switch {
	case strings.Contains(definition, "+proj=merc"):
		return &scaleReference{definition: definition, factor: 100000}, nil
	case strings.Contains(definition, "+proj=longlat"):
		return &scaleReference{definition: definition, factor: 1}, nil
	default:
		return nil, errors.New("unparseable definition")
	}
}

// memFetcher serves fixtures from memory and counts requests.
type memFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls map[string]int
}

func newMemFetcher(files map[string][]byte) *memFetcher {
	return &memFetcher{files: files, calls: make(map[string]int)}
}

func (f *memFetcher) Fetch(ctx context.Context, location, suffix string) ([]byte, error) {
	target := fetch.Join(location, suffix)

	f.mu.Lock()
	f.calls[target]++
	data, ok := f.files[target]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &fetch.Error{Location: target, Err: err}
	}
	if !ok {
		return nil, &fetch.Error{Location: target, StatusCode: 404, Err: errors.New("404 Not Found")}
	}
	return data, nil
}

func (f *memFetcher) count(target string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[target]
}

func (f *memFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func newTestReader(t *testing.T, f Fetcher, opts ...Option) *Reader {
	t.Helper()
	opts = append([]Option{
		WithFetcher(f),
		WithProjectionEngine(&scaleEngine{}),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	r, err := NewReader(opts...)
	require.NoError(t, err)
	return r
}

var cityFields = []testutil.Field{
	{Name: "NAME", Type: 'C', Length: 12},
	{Name: "POP", Type: 'N', Length: 8},
}

// cityLayer returns .shp and .dbf bytes for three Web Mercator points.
func cityLayer() (shp, table []byte) {
	shp = testutil.PointShp(
		[2]float64{-7100000, 4200000},
		[2]float64{-7200000, 4300000},
		[2]float64{-7300000, 4400000},
	)
	table = testutil.EncodeDBF(cityFields, [][]string{
		{"Boston", "675647"},
		{"Worcester", "206518"},
		{"Springfield", "155929"},
	})
	return shp, table
}
