// Command rank runs the school transfer ranking as a one-shot batch job:
// it reads a school list workbook, geocodes every school, and writes a new
// workbook sorted by category priority and distance from the given location.
//
// Usage:
//
//	rank -input schools.xlsx -output ranked.xlsx -location "Bapatla"
//	rank -input schools.xlsx -output ranked.xlsx -lat 15.902 -lon 80.467
//	rank -input schools.xlsx -output ranked.xlsx -lat 15.902 -lon 80.467 -priority "2 4 3 1"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/geocache"
	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/nominatim"
	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/xlsx"
	"github.com/kanishkseth/APTeachersTransfers/internal/config"
	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
	"github.com/kanishkseth/APTeachersTransfers/internal/observability"
	"github.com/kanishkseth/APTeachersTransfers/internal/pipeline"
	"github.com/kanishkseth/APTeachersTransfers/internal/resolver"
)

type options struct {
	input    string
	output   string
	location string
	lat      float64
	lon      float64
	priority string
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "path to the school list workbook (.xlsx)")
	flag.StringVar(&opts.output, "output", "ranked_schools.xlsx", "path for the ranked output workbook")
	flag.StringVar(&opts.location, "location", "", "free-text location, resolved within the configured region")
	flag.Float64Var(&opts.lat, "lat", 0, "explicit latitude (with -lon, bypasses geocoding)")
	flag.Float64Var(&opts.lon, "lon", 0, "explicit longitude (with -lat, bypasses geocoding)")
	flag.StringVar(&opts.priority, "priority", "", "category priority, most preferred first (e.g. \"4 3 2 1\")")
	flag.Parse()

	if opts.input == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts, observability.NewMetrics()); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, metrics *observability.Metrics) error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	cache, err := geocache.Load(cfg.CachePath)
	if err != nil {
		return err
	}
	logger.Info("geocode cache loaded", "path", cfg.CachePath, "entries", cache.Len())

	geocoder := nominatim.NewClient(cfg.NominatimURL, cfg.UserAgent, cfg.GeocodeTimeout)
	pacer := resolver.NewPacer(cfg.GeocodeInterval, nil)
	res := resolver.New(geocoder, cache, pacer, logger, metrics)
	p := pipeline.New(res, cache, cfg.District, cfg.Region, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Read the input before spending any geocoding quota: the pipeline run
	// persists the cache itself, so by resolving the user location last every
	// paid lookup reaches disk even when a later stage fails.
	in, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("open input workbook: %w", err)
	}
	schools, err := xlsx.ReadSchools(in)
	in.Close()
	if err != nil {
		return err
	}
	logger.Info("school list loaded", "rows", len(schools))

	origin, err := userLocation(ctx, p, opts.location, opts.lat, opts.lon)
	if err != nil {
		return err
	}

	priority := cfg.DefaultPriority
	if opts.priority != "" {
		priority = config.ParsePriority(opts.priority)
	}

	ranked, err := p.Run(ctx, schools, origin, priority)
	if err != nil {
		return err
	}

	f, err := xlsx.WriteRanked(ranked)
	if err != nil {
		return err
	}
	if err := f.SaveAs(opts.output); err != nil {
		return fmt.Errorf("save output workbook: %w", err)
	}

	logger.Info("done", "output", opts.output, "rows", len(ranked))
	return nil
}

// userLocation picks explicit coordinates when both are given, otherwise
// geocodes the free-text location.
func userLocation(ctx context.Context, p *pipeline.Pipeline, location string, lat, lon float64) (domain.Coordinates, error) {
	if lat != 0 || lon != 0 {
		return domain.Coordinates{Lat: lat, Lon: lon}, nil
	}
	if location == "" {
		return domain.Coordinates{}, fmt.Errorf("provide -location, or -lat and -lon")
	}
	coords, err := p.ResolveUserLocation(ctx, location)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: retry with explicit -lat and -lon", err)
	}
	return coords, nil
}
