package shapefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/beetlebugorg/shapefile/internal/archive"
	"github.com/beetlebugorg/shapefile/internal/dbf"
	"github.com/beetlebugorg/shapefile/internal/fetch"
	"github.com/beetlebugorg/shapefile/internal/parser"
	"github.com/beetlebugorg/shapefile/internal/prj"
)

// Reader turns shapefile sources into GeoJSON layers.
//
// A Reader is safe for concurrent use. Results for string sources are cached
// by the source string.
type Reader struct {
	fetcher  Fetcher
	resolver *prj.Resolver
	cache    *ResultCache
	logger   *slog.Logger
}

// NewReader creates a reader.
//
// Example:
//
//	reader, err := shapefile.NewReader(shapefile.WithCacheSize(50))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := reader.GetShapefile(ctx, "https://example.com/data/roads.zip", shapefile.DefaultOptions())
func NewReader(opts ...Option) (*Reader, error) {
	cfg := config{
		httpTimeout: DefaultHTTPTimeout,
		cacheSize:   DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Reader{
		fetcher: cfg.fetcher,
		cache:   cfg.cache,
		logger:  cfg.logger,
	}
	if r.fetcher == nil {
		r.fetcher = fetch.NewClient(cfg.httpTimeout)
	}
	if r.cache == nil {
		r.cache = NewResultCache(cfg.cacheSize)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	var engine prj.Engine = prj.NewProjEngine()
	if cfg.engine != nil {
		engine = engineAdapter{engine: cfg.engine}
	}
	r.resolver = prj.NewResolver(engine)

	if cfg.registerer != nil {
		if err := r.cache.Instrument(cfg.registerer); err != nil {
			return nil, fmt.Errorf("register cache metrics: %w", err)
		}
	}
	return r, nil
}

// Cache returns the reader's result cache.
func (r *Reader) Cache() *ResultCache {
	return r.cache
}

// GetShapefile resolves source into layers.
//
// source is either a string or raw zip bytes in any form Normalize accepts.
// A string whose last path segment ends in ".zip" is fetched and read as an
// archive. Any other string is a base location: location.shp, .prj, .dbf and
// .cpg are fetched and combined into one layer; only the .shp is required.
// Strings may be http(s) URLs, file:// URLs or filesystem paths.
//
// String sources are served from the cache when present and cached on success.
func (r *Reader) GetShapefile(ctx context.Context, source any, opts Options) (*Result, error) {
	location, isString := source.(string)
	if isString {
		if res, ok := r.cache.Get(location); ok {
			r.logger.Debug("cache hit", "source", location)
			return res, nil
		}
		r.logger.Debug("cache miss", "source", location)
	}

	var (
		res *Result
		err error
	)
	switch {
	case !isString:
		res, err = r.parseArchive(ctx, source, opts)
	case isArchive(location):
		res, err = r.fetchArchive(ctx, location, opts)
	default:
		res, err = r.fetchBase(ctx, location, opts)
	}
	if err != nil {
		return nil, err
	}

	if isString {
		r.cache.Set(location, res)
	}
	return res, nil
}

// ParseArchive reads zip bytes into one layer per .shp, .json or whitelisted
// member, in archive order.
//
// A .prj that cannot be resolved is logged and its layer left unprojected.
// epsg, when set, overrides every .prj.
func (r *Reader) ParseArchive(ctx context.Context, data any, whitelist []string, epsg string) (*Result, error) {
	opts := DefaultOptions()
	opts.Whitelist = whitelist
	opts.EPSG = epsg
	return r.parseArchive(ctx, data, opts)
}

func (r *Reader) parseArchive(ctx context.Context, data any, opts Options) (*Result, error) {
	buf, err := Normalize(data)
	if err != nil {
		return nil, err
	}

	members, err := archive.Extract(ctx, buf)
	if err != nil {
		return nil, err
	}

	components := NewComponents()
	for _, m := range members {
		components.Set(m.Name, m.Data)
	}

	resolve := func(description string) (SpatialReference, error) {
		t, err := r.resolver.Resolve(description, opts.EPSG, prj.ModeStrict)
		if err != nil || t == nil {
			return nil, err
		}
		return t, nil
	}
	refs, err := Classify(components, opts.Whitelist, resolve, r.logger)
	if err != nil {
		return nil, err
	}
	if opts.EPSG != "" {
		for _, ref := range refs {
			name := ref.Name + ".prj"
			if _, ok := components.Get(name); ref.Kind == KindShapefile && !ok {
				components.SetReference(name, r.lenientReference("", opts.EPSG))
			}
		}
	}

	layers := make([]*Layer, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			layer, err := assemble(ref, components, opts.ValidateGeometry)
			if err != nil {
				return err
			}
			layers[i] = layer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("parsed archive", "members", len(members), "layers", len(layers))
	return &Result{Layers: layers}, nil
}

// ParseGeometry decodes .shp bytes into geometries.
//
// ref is a SpatialReference, a .prj description as string or []byte, or nil.
// A description that cannot be resolved leaves coordinates unprojected.
func (r *Reader) ParseGeometry(data any, ref any) ([]orb.Geometry, error) {
	buf, err := Normalize(data)
	if err != nil {
		return nil, err
	}

	var sr SpatialReference
	switch v := ref.(type) {
	case nil:
	case SpatialReference:
		sr = v
	case string:
		sr = r.lenientReference(v, "")
	case []byte:
		sr = r.lenientReference(string(v), "")
	default:
		return nil, &InputError{Type: fmt.Sprintf("%T", ref), Reason: "unsupported spatial reference"}
	}

	return parser.Decode(buf, transformFor(sr))
}

// ParseAttributes decodes .dbf bytes into one record per row. cpg is the
// content of the .cpg member naming the text encoding; nil means UTF-8.
func ParseAttributes(data any, cpg []byte) ([]map[string]any, error) {
	buf, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	return dbf.Decode(buf, cpg)
}

func (r *Reader) lenientReference(description, epsg string) SpatialReference {
	t, _ := r.resolver.Resolve(description, epsg, prj.ModeLenient)
	if t == nil {
		return nil
	}
	return t
}

func (r *Reader) fetchArchive(ctx context.Context, location string, opts Options) (*Result, error) {
	r.logger.Debug("fetching archive", "location", location)
	data, err := r.fetcher.Fetch(ctx, location, "")
	if err != nil {
		return nil, fetchFailed(err)
	}
	return r.parseArchive(ctx, data, opts)
}

// fetchBase fetches the components of a base location concurrently and
// combines them into a single layer.
func (r *Reader) fetchBase(ctx context.Context, location string, opts Options) (*Result, error) {
	r.logger.Debug("fetching components", "location", location)

	var (
		mu         sync.Mutex
		components = make(map[string][]byte)
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, suffix := range []string{"shp", "prj", "dbf", "cpg"} {
		g.Go(func() error {
			data, err := r.fetcher.Fetch(gctx, location, suffix)
			if err != nil {
				if suffix == "shp" {
					return fetchFailed(err)
				}
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				r.logger.Debug("optional component unavailable", "location", location, "suffix", suffix, "error", err)
				return nil
			}
			mu.Lock()
			components[suffix] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sr := r.lenientReference(string(components["prj"]), opts.EPSG)

	geoms, err := decodeGeometry(components["shp"], sr, opts.ValidateGeometry)
	if err != nil {
		return nil, &LayerError{Layer: fetch.Base(location), Component: "shp", Err: err}
	}

	var attrs []map[string]any
	if table, ok := components["dbf"]; ok {
		attrs, err = dbf.Decode(table, components["cpg"])
		if err != nil {
			return nil, &LayerError{Layer: fetch.Base(location), Component: "dbf", Err: err}
		}
	}

	layer := &Layer{Kind: KindShapefile, Collection: Combine(geoms, attrs)}
	return &Result{Layers: []*Layer{layer}}, nil
}

// isArchive reports whether the last path segment of location ends in ".zip".
func isArchive(location string) bool {
	return strings.HasSuffix(strings.ToLower(fetch.Base(location)), ".zip")
}

var defaultReader = sync.OnceValues(func() (*Reader, error) {
	return NewReader()
})

// GetShapefile resolves source with a lazily created default Reader.
func GetShapefile(ctx context.Context, source any, opts Options) (*Result, error) {
	r, err := defaultReader()
	if err != nil {
		return nil, err
	}
	return r.GetShapefile(ctx, source, opts)
}
