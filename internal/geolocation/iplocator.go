package geolocation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shuv1824/skycast/internal/types"
)

const DefaultIPLookupURL = "http://ip-api.com/json"

// IPLocator approximates the host location from its public IP. Lookups run
// in the background so callers observe a loading state meanwhile.
type IPLocator struct {
	client *resty.Client
	url    string

	mu      sync.RWMutex
	coords  *types.Coordinates
	err     error
	loading bool
}

func NewIPLocator(url string, httpClient *http.Client) *IPLocator {
	if url == "" {
		url = DefaultIPLookupURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &IPLocator{
		client: resty.NewWithClient(httpClient).SetRetryCount(2),
		url:    url,
	}
}

func (l *IPLocator) Coordinates() *types.Coordinates {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.coords
}

func (l *IPLocator) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *IPLocator) IsLoading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// GetLocation starts a lookup unless one is already running. The lookup
// outlives the caller's request.
func (l *IPLocator) GetLocation(ctx context.Context) {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return
	}
	l.loading = true
	l.err = nil
	l.mu.Unlock()

	go func() {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		_ = l.Locate(lookupCtx)
	}()
}

// Locate performs the lookup synchronously.
func (l *IPLocator) Locate(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	coords, err := l.lookup(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.err = err
	if err == nil {
		l.coords = &coords
		slog.Info("resolved location from ip", "coords", coords.Key())
	} else {
		slog.Warn("ip location lookup failed", "error", err)
	}
	return err
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l *IPLocator) lookup(ctx context.Context) (types.Coordinates, error) {
	var data ipLookupResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&data).
		ForceContentType("application/json").
		Get(l.url)

	switch {
	case resp != nil && resp.IsError():
		return types.Coordinates{}, fmt.Errorf("ip location lookup returned status %d", resp.StatusCode())
	case err != nil && resp != nil && resp.IsSuccess():
		return types.Coordinates{}, fmt.Errorf("failed to parse ip location: %w", err)
	case err != nil:
		return types.Coordinates{}, fmt.Errorf("ip location lookup: %w", err)
	}
	if data.Status != "success" {
		return types.Coordinates{}, fmt.Errorf("ip location unavailable: %s", data.Message)
	}

	coords := types.Coordinates{Lat: data.Lat, Lon: data.Lon}
	if !coords.Valid() {
		return types.Coordinates{}, fmt.Errorf("%w: %s", ErrInvalidCoordinates, coords.Key())
	}
	return coords, nil
}
