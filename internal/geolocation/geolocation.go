package geolocation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shuv1824/skycast/internal/types"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Provider supplies the coordinates the dashboard is built for.
// At most one of Coordinates and Err is set; neither is set while loading
// or when no location is known.
type Provider interface {
	Coordinates() *types.Coordinates
	Err() error
	IsLoading() bool
	// GetLocation (re)requests the location. It may complete asynchronously.
	GetLocation(ctx context.Context)
}

// Static is a fixed, possibly absent, location.
type Static struct {
	coords *types.Coordinates
}

func NewStatic(coords *types.Coordinates) *Static {
	return &Static{coords: coords}
}

func (s *Static) Coordinates() *types.Coordinates { return s.coords }
func (s *Static) Err() error                      { return nil }
func (s *Static) IsLoading() bool                 { return false }
func (s *Static) GetLocation(context.Context)     {}

// Request reads lat/lon from the query string and defers to fallback when
// both are absent.
type Request struct {
	coords   *types.Coordinates
	err      error
	fallback Provider
}

func FromRequest(r *http.Request, fallback Provider) *Request {
	p := &Request{fallback: fallback}

	q := r.URL.Query()
	lat, lon := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if lat == "" && lon == "" {
		return p
	}

	coords, err := ParseCoordinates(lat, lon)
	if err != nil {
		p.err = err
		return p
	}
	p.coords = &coords
	return p
}

func (p *Request) Coordinates() *types.Coordinates {
	if p.coords != nil || p.err != nil || p.fallback == nil {
		return p.coords
	}
	return p.fallback.Coordinates()
}

func (p *Request) Err() error {
	if p.err != nil || p.coords != nil || p.fallback == nil {
		return p.err
	}
	return p.fallback.Err()
}

func (p *Request) IsLoading() bool {
	if p.err != nil || p.coords != nil || p.fallback == nil {
		return false
	}
	return p.fallback.IsLoading()
}

func (p *Request) GetLocation(ctx context.Context) {
	if p.err == nil && p.coords == nil && p.fallback != nil {
		p.fallback.GetLocation(ctx)
	}
}

// ParseCoordinates validates a textual latitude/longitude pair.
func ParseCoordinates(lat, lon string) (types.Coordinates, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, lon)
	}

	coords := types.Coordinates{Lat: la, Lon: lo}
	if !coords.Valid() {
		return types.Coordinates{}, fmt.Errorf("%w: %s out of range", ErrInvalidCoordinates, coords.Key())
	}
	return coords, nil
}
