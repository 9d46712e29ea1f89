// Package resolver combines the durable geocode cache, the pacing policy, and
// an external geocoder into a single lookup with error containment: provider
// failures are logged and degrade to "not found", never returned.
package resolver

import (
	"context"
	"log/slog"

	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/geocache"
	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
	"github.com/kanishkseth/APTeachersTransfers/internal/observability"
)

// Resolver answers address→coordinates lookups, consulting the cache before
// the external provider.
type Resolver struct {
	geocoder domain.Geocoder
	cache    *geocache.Cache
	pacer    *Pacer
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Resolver over the given geocoder, cache, and pacing policy.
func New(geocoder domain.Geocoder, cache *geocache.Cache, pacer *Pacer, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		pacer:    pacer,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns coordinates for an address. Cache hits return immediately
// and never touch the provider or the pacer. Misses wait out the pacing
// interval, issue one external call, and write successful results through to
// the cache. Any provider error or empty result is reported as (zero, false).
func (r *Resolver) Resolve(ctx context.Context, address string) (domain.Coordinates, bool) {
	if coords, ok := r.cache.Get(address); ok {
		r.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coords, true
	}
	r.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	if err := r.pacer.Wait(ctx); err != nil {
		r.logger.Warn("geocoding aborted while pacing", "address", address, "error", err)
		return domain.Coordinates{}, false
	}

	result, found, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		r.logger.Warn("geocoding failed", "address", address, "error", err)
		return domain.Coordinates{}, false
	}
	if !found {
		r.metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		r.logger.Debug("no geocoding match", "address", address)
		return domain.Coordinates{}, false
	}

	r.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	r.cache.Put(address, result.Coords)
	return result.Coords, true
}
