package shapefile

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/beetlebugorg/shapefile/internal/fetch"
	"github.com/beetlebugorg/shapefile/internal/prj"
)

// Options configures a single GetShapefile call.
type Options struct {
	// Whitelist lists extra member extensions (without the dot) that are
	// returned as raw pass-through layers.
	Whitelist []string

	// EPSG forces the spatial reference by identifier ("3857" or "EPSG:3857"),
	// taking priority over any .prj content.
	EPSG string

	// ValidateGeometry rejects layers with a resolved spatial reference whose
	// decoded geometries are malformed or fall outside WGS84 bounds.
	ValidateGeometry bool
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Whitelist:        nil,
		EPSG:             "",
		ValidateGeometry: false,
	}
}

// DefaultHTTPTimeout bounds each HTTP request made by the default fetcher.
const DefaultHTTPTimeout = 30 * time.Second

// Fetcher retrieves the bytes at location + "." + suffix, or at location when
// suffix is empty. Failures should be returned as *FetchError.
type Fetcher = fetch.Fetcher

// ProjectionEngine builds spatial references from WKT or PROJ definitions.
type ProjectionEngine interface {
	New(definition string) (SpatialReference, error)
}

// Option configures a Reader.
type Option func(*config)

type config struct {
	fetcher     Fetcher
	httpTimeout time.Duration
	engine      ProjectionEngine
	cache       *ResultCache
	cacheSize   int
	logger      *slog.Logger
	registerer  prometheus.Registerer
}

// WithFetcher replaces the HTTP/filesystem fetcher.
func WithFetcher(f Fetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithHTTPTimeout sets the per-request timeout of the default fetcher.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *config) { c.httpTimeout = d }
}

// WithProjectionEngine replaces the PROJ-backed projection engine.
func WithProjectionEngine(e ProjectionEngine) Option {
	return func(c *config) { c.engine = e }
}

// WithCache shares an existing cache between readers.
func WithCache(cache *ResultCache) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheSize sets the capacity of the reader's own cache.
// Ignored when WithCache is given.
func WithCacheSize(n int) Option {
	return func(c *config) { c.cacheSize = n }
}

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics registers cache metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// engineAdapter exposes a ProjectionEngine as a prj.Engine.
type engineAdapter struct {
	engine ProjectionEngine
}

func (a engineAdapter) New(definition string) (prj.Transform, error) {
	ref, err := a.engine.New(definition)
	if err != nil || ref == nil {
		return nil, err
	}
	return ref, nil
}
