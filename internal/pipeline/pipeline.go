// Package pipeline orchestrates the resolve-rank-assemble run: every school is
// geocoded at full-address granularity, failures retry at Mandal granularity,
// and each tier is ranked by (category priority, distance) before the
// full-address block is emitted ahead of the fallback block.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/geocache"
	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
	"github.com/kanishkseth/APTeachersTransfers/internal/observability"
	"github.com/kanishkseth/APTeachersTransfers/internal/resolver"
)

// ErrUserLocationUnresolved means the teacher's free-text location failed to
// geocode. The run cannot proceed; callers should ask for explicit
// latitude/longitude instead.
var ErrUserLocationUnresolved = errors.New("could not geocode user location")

// Pipeline runs the two-tier resolution and ranking for one school list.
type Pipeline struct {
	resolver *resolver.Resolver
	cache    *geocache.Cache
	district string
	region   string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline. district and region are the fixed address suffixes
// appended to every lookup.
func New(res *resolver.Resolver, cache *geocache.Cache, district, region string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		resolver: res,
		cache:    cache,
		district: district,
		region:   region,
		logger:   logger,
		metrics:  metrics,
	}
}

// ResolveUserLocation geocodes the teacher's free-text location, suffixed with
// the configured region. Failure is fatal for the run.
func (p *Pipeline) ResolveUserLocation(ctx context.Context, freeText string) (domain.Coordinates, error) {
	address := fmt.Sprintf("%s, %s", freeText, p.region)
	coords, ok := p.resolver.Resolve(ctx, address)
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", ErrUserLocationUnresolved, freeText)
	}
	return coords, nil
}

// Run resolves, ranks, and assembles the school list. The returned slice holds
// every input row exactly once: the full-address tier first, then the
// Mandal-only and unresolved rows, each tier independently sorted by
// (priority rank, distance, unresolved last). Resolved lookups are persisted
// to the cache file before ranking, so an unknown-category failure does not
// forfeit the external calls already paid for.
func (p *Pipeline) Run(ctx context.Context, schools []domain.School, origin domain.Coordinates, priority []string) ([]domain.School, error) {
	start := time.Now()
	p.logger.Info("run started",
		"schools", len(schools),
		"district", p.district,
		"origin_lat", origin.Lat,
		"origin_lon", origin.Lon,
	)

	resolved, fallback, err := p.resolveAll(ctx, schools, origin)

	// Persist whatever was resolved even if the run is about to fail.
	if saveErr := p.cache.Save(); saveErr != nil {
		p.logger.Warn("saving geocode cache failed", "error", saveErr)
	}
	if err != nil {
		return nil, err
	}

	rankedResolved, err := domain.Rank(resolved, priority)
	if err != nil {
		return nil, fmt.Errorf("rank resolved schools: %w", err)
	}
	rankedFallback, err := domain.Rank(fallback, priority)
	if err != nil {
		return nil, fmt.Errorf("rank fallback schools: %w", err)
	}

	// Tier boundary is a hard separator: every full-address row precedes
	// every fallback row regardless of priority or distance.
	out := make([]domain.School, 0, len(rankedResolved)+len(rankedFallback))
	out = append(out, rankedResolved...)
	out = append(out, rankedFallback...)

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("run finished",
		"full_address", len(rankedResolved),
		"fallback", len(rankedFallback),
		"duration", time.Since(start),
	)
	return out, nil
}

// resolveAll performs both resolution passes. The Mandal pass runs only after
// the full pass completes, so schools sharing a Mandal hit the cache instead
// of re-querying the provider and re-paying the pacing delay.
func (p *Pipeline) resolveAll(ctx context.Context, schools []domain.School, origin domain.Coordinates) (resolved, fallback []domain.School, err error) {
	fallback = make([]domain.School, 0)

	for _, s := range schools {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		p.metrics.SchoolsProcessed.Inc()

		coords, ok := p.resolver.Resolve(ctx, s.FullAddress(p.district, p.region))
		if !ok {
			p.logger.Debug("full address unresolved, deferring to mandal pass",
				"school", s.Name, "mandal", s.Mandal)
			fallback = append(fallback, s)
			continue
		}

		d := domain.DistanceKm(origin, coords)
		s.Coords = coords
		s.DistanceKm = &d
		s.Tier = domain.TierFullAddress
		p.metrics.Resolutions.WithLabelValues(s.Tier.String()).Inc()
		resolved = append(resolved, s)
	}

	for i := range fallback {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		s := &fallback[i]

		coords, ok := p.resolver.Resolve(ctx, s.MandalAddress(p.district, p.region))
		if !ok {
			s.Tier = domain.TierUnresolved
			p.metrics.Resolutions.WithLabelValues(s.Tier.String()).Inc()
			p.logger.Warn("school unresolved at both tiers",
				"school", s.Name, "mandal", s.Mandal)
			continue
		}

		d := domain.DistanceKm(origin, coords)
		s.Coords = coords
		s.DistanceKm = &d
		s.Tier = domain.TierMandalOnly
		p.metrics.Resolutions.WithLabelValues(s.Tier.String()).Inc()
	}

	return resolved, fallback, nil
}
