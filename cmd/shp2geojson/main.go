// shp2geojson converts shapefiles into GeoJSON on stdout.
//
// Each argument is a source: a .zip URL or path, a base location whose .shp,
// .dbf, .prj and .cpg siblings are fetched, or "-" to read zip bytes from
// stdin. One JSON document is written per source.
//
//	shp2geojson https://example.com/data/roads.zip
//	shp2geojson --bbox -71.5,42,-71,42.5 --indent ./data/parcels
//	curl -s https://example.com/data/roads.zip | shp2geojson -
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/pflag"

	"github.com/beetlebugorg/shapefile/internal/config"
	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		configPath string
		whitelist  []string
		epsg       string
		timeout    time.Duration
		logLevel   string
		bbox       string
		indent     bool
		workers    int
		keepGoing  bool
		validate   bool
	)

	flagSet := pflag.NewFlagSet("shp2geojson", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file (default: $"+config.EnvVar+")")
	flagSet.StringSliceVar(&whitelist, "whitelist", nil, "extra archive extensions returned as raw layers")
	flagSet.StringVar(&epsg, "epsg", "", "force the spatial reference, e.g. 3857")
	flagSet.DurationVar(&timeout, "timeout", 0, "per-request HTTP timeout")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringVar(&bbox, "bbox", "", "only keep features intersecting minLon,minLat,maxLon,maxLat")
	flagSet.BoolVar(&indent, "indent", false, "indent JSON output")
	flagSet.IntVar(&workers, "workers", 0, "sources converted concurrently (default: number of CPUs)")
	flagSet.BoolVar(&keepGoing, "keep-going", false, "convert remaining sources after a failure")
	flagSet.BoolVar(&validate, "validate", false, "reject projected layers with malformed or out-of-range geometry")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	sources := flagSet.Args()
	if len(sources) == 0 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("no source given")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("whitelist") {
		cfg.Whitelist = whitelist
	}
	if flagSet.Changed("epsg") {
		cfg.EPSG = epsg
	}
	if flagSet.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	var bound *orb.Bound
	if bbox != "" {
		b, err := parseBound(bbox)
		if err != nil {
			return err
		}
		bound = &b
	}

	logger, err := cfg.Logger(stderr)
	if err != nil {
		return err
	}

	reader, err := shapefile.NewReader(
		shapefile.WithCacheSize(cfg.CacheSize),
		shapefile.WithHTTPTimeout(cfg.HTTP.Timeout),
		shapefile.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	opts := shapefile.DefaultOptions()
	opts.Whitelist = cfg.Whitelist
	opts.EPSG = cfg.EPSG
	opts.ValidateGeometry = validate

	inputs := make([]any, len(sources))
	for i, source := range sources {
		inputs[i] = source
		if source == "-" {
			inputs[i] = stdin
		}
	}

	batch := shapefile.DefaultBatchOptions()
	if workers > 0 {
		batch.Workers = workers
	}
	batch.SkipErrors = keepGoing

	results, errs := reader.GetShapefiles(ctx, inputs, opts, batch)
	if !keepGoing && len(errs) > 0 {
		return errs[0]
	}

	encoder := json.NewEncoder(stdout)
	if indent {
		encoder.SetIndent("", "  ")
	}

	for i, result := range results {
		if result == nil {
			continue
		}
		if bound != nil {
			result = clip(result, *bound)
		}

		logger.Info("converted", "source", sources[i], "layers", len(result.Layers))
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("write %s: %w", sources[i], err)
		}
	}
	return errors.Join(errs...)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// parseBound parses "minLon,minLat,maxLon,maxLat".
func parseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("bbox %q: minimum exceeds maximum", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// clip keeps only features intersecting b. Layers without features are
// passed through unchanged.
func clip(result *shapefile.Result, b orb.Bound) *shapefile.Result {
	clipped := &shapefile.Result{Layers: make([]*shapefile.Layer, 0, len(result.Layers))}
	for _, layer := range result.Layers {
		if layer.Collection == nil || layer.Kind != shapefile.KindShapefile {
			clipped.Layers = append(clipped.Layers, layer)
			continue
		}

		hits := make(map[*geojson.Feature]bool)
		for _, f := range layer.FeaturesInBounds(b) {
			hits[f] = true
		}

		// keep file order
		fc := geojson.NewFeatureCollection()
		fc.ExtraMembers = layer.Collection.ExtraMembers
		for _, f := range layer.Features() {
			if hits[f] {
				fc.Features = append(fc.Features, f)
			}
		}
		clipped.Layers = append(clipped.Layers, &shapefile.Layer{
			FileName:   layer.FileName,
			Kind:       layer.Kind,
			Collection: fc,
		})
	}
	return clipped
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "usage: shp2geojson [flags] <source>...\n\n")
	fmt.Fprintf(w, "Converts shapefiles (.zip archives or base locations) to GeoJSON.\n\n")
	fmt.Fprintf(w, "flags:\n%s", flagSet.FlagUsages())
}
