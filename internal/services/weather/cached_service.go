package weather

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shuv1824/skycast/internal/types"
)

// Fetcher is the set of upstream queries the dashboard needs.
type Fetcher interface {
	CurrentWeather(ctx context.Context, coords types.Coordinates) (*types.CurrentWeather, error)
	Forecast(ctx context.Context, coords types.Coordinates) (*types.Forecast, error)
	ReverseGeocode(ctx context.Context, coords types.Coordinates) ([]types.GeocodingLocation, error)
}

// CachedWeatherService wraps a Fetcher with a per-coordinate TTL cache
type CachedWeatherService struct {
	service  Fetcher
	cache    *cache.Cache
	cacheTTL time.Duration
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewCachedWeatherService creates a cached weather service
func NewCachedWeatherService(service Fetcher, cacheTTL time.Duration) *CachedWeatherService {
	return &CachedWeatherService{
		service:  service,
		cache:    cache.New(cacheTTL, 2*cacheTTL),
		cacheTTL: cacheTTL,
	}
}

func (c *CachedWeatherService) CurrentWeather(ctx context.Context, coords types.Coordinates) (*types.CurrentWeather, error) {
	return cached(c, "current:"+coords.Key(), func() (*types.CurrentWeather, error) {
		return c.service.CurrentWeather(ctx, coords)
	}, func(v *types.CurrentWeather) *types.CurrentWeather {
		cp := *v
		return &cp
	})
}

func (c *CachedWeatherService) Forecast(ctx context.Context, coords types.Coordinates) (*types.Forecast, error) {
	return cached(c, "forecast:"+coords.Key(), func() (*types.Forecast, error) {
		return c.service.Forecast(ctx, coords)
	}, func(v *types.Forecast) *types.Forecast {
		cp := *v
		cp.Samples = slices.Clone(v.Samples)
		return &cp
	})
}

func (c *CachedWeatherService) ReverseGeocode(ctx context.Context, coords types.Coordinates) ([]types.GeocodingLocation, error) {
	return cached(c, "reverse:"+coords.Key(), func() ([]types.GeocodingLocation, error) {
		return c.service.ReverseGeocode(ctx, coords)
	}, func(v []types.GeocodingLocation) []types.GeocodingLocation {
		return slices.Clone(v)
	})
}

// Invalidate drops every cached answer for coords so the next call refetches.
func (c *CachedWeatherService) Invalidate(coords types.Coordinates) {
	for _, prefix := range []string{"current:", "forecast:", "reverse:"} {
		c.cache.Delete(prefix + coords.Key())
	}
}

// CacheStats returns cache hits and misses since start.
func (c *CachedWeatherService) CacheStats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// WarmCache pre-fetches the current weather and forecast for coords
func (c *CachedWeatherService) WarmCache(ctx context.Context, coords types.Coordinates) error {
	if _, err := c.CurrentWeather(ctx, coords); err != nil {
		return err
	}
	_, err := c.Forecast(ctx, coords)
	return err
}

// StartBackgroundRefresh keeps coords warm by refetching before entries expire
func (c *CachedWeatherService) StartBackgroundRefresh(ctx context.Context, coords types.Coordinates) {
	go func() {
		ticker := time.NewTicker(c.cacheTTL / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				c.Invalidate(coords)
				if err := c.WarmCache(refreshCtx, coords); err != nil {
					slog.Warn("background refresh failed", "coords", coords.Key(), "error", err)
				}
				cancel()
			}
		}
	}()
}

func cached[T any](c *CachedWeatherService, key string, fetch func() (T, error), clone func(T) T) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return clone(v.(T)), nil
	}
	c.misses.Add(1)

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.cache.Set(key, v, cache.DefaultExpiration)
	return clone(v), nil
}
