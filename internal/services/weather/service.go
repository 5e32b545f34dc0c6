package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/shuv1824/skycast/internal/types"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"

	currentPath  = "/data/2.5/weather"
	forecastPath = "/data/2.5/forecast"
	reversePath  = "/geo/1.0/reverse"

	userAgent = "skycast/1.0"
)

type Config struct {
	APIKey  string
	BaseURL string
	Units   string

	// HTTPClient replaces the default pooled client, mostly for tests.
	HTTPClient *http.Client

	// RequestsPerSecond and Burst throttle outgoing calls. The free
	// OpenWeatherMap tier allows 60 calls per minute.
	RequestsPerSecond float64
	Burst             int
	Retries           int
}

type WeatherService struct {
	client  *resty.Client
	apiKey  string
	units   string
	limiter *rate.Limiter
}

func NewWeatherService(cfg Config) *WeatherService {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	client := resty.NewWithClient(httpClient).
		SetBaseURL(cfg.BaseURL).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		slog.Debug("openweathermap response",
			"path", resp.Request.RawRequest.URL.Path,
			"status", resp.StatusCode(),
			"duration", resp.Time().String(),
		)
		return nil
	})

	return &WeatherService{
		client:  client,
		apiKey:  cfg.APIKey,
		units:   cfg.Units,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// CurrentWeather fetches the current conditions at coords.
func (s *WeatherService) CurrentWeather(ctx context.Context, coords types.Coordinates) (*types.CurrentWeather, error) {
	var data owmCurrentResponse
	if err := s.get(ctx, currentPath, s.params(coords), &data); err != nil {
		return nil, fmt.Errorf("current weather: %w", err)
	}
	return data.toCurrent(), nil
}

// Forecast fetches the 5-day forecast in 3-hour steps.
func (s *WeatherService) Forecast(ctx context.Context, coords types.Coordinates) (*types.Forecast, error) {
	var data owmForecastResponse
	if err := s.get(ctx, forecastPath, s.params(coords), &data); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return data.toForecast(), nil
}

// ReverseGeocode resolves coords to named places, best match first.
func (s *WeatherService) ReverseGeocode(ctx context.Context, coords types.Coordinates) ([]types.GeocodingLocation, error) {
	params := map[string]string{
		"lat":   formatCoord(coords.Lat),
		"lon":   formatCoord(coords.Lon),
		"limit": "1",
	}

	var data []owmGeocodingResult
	if err := s.get(ctx, reversePath, params, &data); err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}

	locations := make([]types.GeocodingLocation, 0, len(data))
	for _, d := range data {
		locations = append(locations, types.GeocodingLocation{
			Name:    d.Name,
			State:   d.State,
			Country: d.Country,
			Lat:     d.Lat,
			Lon:     d.Lon,
		})
	}
	return locations, nil
}

func (s *WeatherService) params(coords types.Coordinates) map[string]string {
	return map[string]string{
		"lat":   formatCoord(coords.Lat),
		"lon":   formatCoord(coords.Lon),
		"units": s.units,
	}
}

func (s *WeatherService) get(ctx context.Context, path string, params map[string]string, out any) error {
	if s.apiKey == "" {
		return ErrMissingAPIKey
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("appid", s.apiKey).
		SetResult(out).
		SetError(&owmErrorBody{}).
		ForceContentType("application/json").
		Get(path)

	switch {
	case resp != nil && resp.IsError():
		return apiError(resp)
	case err != nil && resp != nil && resp.IsSuccess():
		return fmt.Errorf("failed to parse response: %w", err)
	case err != nil:
		return err
	}
	return nil
}

func apiError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*owmErrorBody); ok && body != nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
