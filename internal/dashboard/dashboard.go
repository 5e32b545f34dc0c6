// Package dashboard turns a location and the three upstream queries into one
// of the mutually exclusive dashboard render states.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/shuv1824/skycast/internal/forecast"
	"github.com/shuv1824/skycast/internal/geolocation"
	"github.com/shuv1824/skycast/internal/modelspec"
	"github.com/shuv1824/skycast/internal/query"
	"github.com/shuv1824/skycast/internal/services/weather"
	"github.com/shuv1824/skycast/internal/types"
)

type State string

const (
	StateLoading         State = "loading"
	StateLocationError   State = "location_error"
	StateLocationMissing State = "location_missing"
	StateDataError       State = "data_error"
	StateReady           State = "ready"
)

type Options struct {
	Page    int
	Model   string
	Refresh bool
}

type View struct {
	State        State                 `json:"state"`
	Message      string                `json:"message,omitempty"`
	Coordinates  *types.Coordinates    `json:"coordinates,omitempty"`
	LocationName string                `json:"location_name,omitempty"`
	Current      *types.CurrentWeather `json:"current,omitempty"`
	Hourly       []types.HourlyPoint   `json:"hourly,omitempty"`
	Daily        *forecast.Page        `json:"daily,omitempty"`
	Model        *modelspec.Spec       `json:"model,omitempty"`
	Models       []string              `json:"models,omitempty"`
	Favorites    []types.City          `json:"favorites,omitempty"`
	GeneratedAt  string                `json:"generated_at"`
}

// Invalidator drops cached upstream answers for a location.
type Invalidator interface {
	Invalidate(coords types.Coordinates)
}

// FavoriteLister is the read side of the favorites store.
type FavoriteLister interface {
	List(ctx context.Context) ([]types.City, error)
}

type Dashboard struct {
	weather   weather.Fetcher
	models    *modelspec.Catalog
	favorites FavoriteLister
	pageSize  int
	now       func() time.Time
}

func New(fetcher weather.Fetcher, models *modelspec.Catalog, favorites FavoriteLister) *Dashboard {
	return &Dashboard{
		weather:   fetcher,
		models:    models,
		favorites: favorites,
		pageSize:  forecast.DefaultPageSize,
		now:       time.Now,
	}
}

type queries struct {
	current  *query.Query[*types.CurrentWeather]
	forecast *query.Query[*types.Forecast]
	location *query.Query[[]types.GeocodingLocation]
}

func (d *Dashboard) queriesFor(coords types.Coordinates) queries {
	return queries{
		current: query.New(func(ctx context.Context) (*types.CurrentWeather, error) {
			return d.weather.CurrentWeather(ctx, coords)
		}),
		forecast: query.New(func(ctx context.Context) (*types.Forecast, error) {
			return d.weather.Forecast(ctx, coords)
		}),
		location: query.New(func(ctx context.Context) ([]types.GeocodingLocation, error) {
			return d.weather.ReverseGeocode(ctx, coords)
		}),
	}
}

// Load resolves the view for the location reported by geo.
func (d *Dashboard) Load(ctx context.Context, geo geolocation.Provider, opts Options) View {
	view := View{GeneratedAt: d.now().Format(time.RFC3339)}

	if opts.Refresh {
		geo.GetLocation(ctx)
	}

	if geo.IsLoading() {
		view.State = StateLoading
		return view
	}
	if err := geo.Err(); err != nil {
		view.State = StateLocationError
		view.Message = err.Error()
		return view
	}

	coords := geo.Coordinates()
	if coords == nil {
		view.State = StateLocationMissing
		view.Message = "Please enable location access to see your local weather."
		return view
	}
	view.Coordinates = coords

	if inv, ok := d.weather.(Invalidator); ok && opts.Refresh {
		inv.Invalidate(*coords)
	}

	q := d.queriesFor(*coords)
	query.RefetchAll(ctx, q.current, q.forecast, q.location)

	spec := d.models.Get(opts.Model)
	view.Model = &spec
	view.Models = d.models.IDs()

	if err := firstErr(q.current.Err(), q.forecast.Err()); err != nil {
		slog.Warn("weather data unavailable", "coords", coords.Key(), "error", err)
		view.State = StateDataError
		view.Message = err.Error()
		return view
	}

	current, okCurrent := q.current.Data()
	fc, okForecast := q.forecast.Data()
	if !okCurrent || !okForecast || current == nil || fc == nil {
		view.State = StateLoading
		return view
	}

	loc := forecast.Location(fc.Timezone)
	page := d.dailyPage(fc, loc, opts.Page)

	view.State = StateReady
	view.Current = current
	view.Hourly = forecast.Hourly(fc.Samples, loc, forecast.HourlyPoints)
	view.Daily = &page
	view.LocationName = locationName(q.location, current)
	view.Favorites = d.listFavorites(ctx)
	return view
}

// DailyForecast returns one page of the merged real and placeholder days.
func (d *Dashboard) DailyForecast(ctx context.Context, coords types.Coordinates, page int) (forecast.Page, error) {
	fc, err := d.weather.Forecast(ctx, coords)
	if err != nil {
		return forecast.Page{}, err
	}
	return d.dailyPage(fc, forecast.Location(fc.Timezone), page), nil
}

func (d *Dashboard) dailyPage(fc *types.Forecast, loc *time.Location, page int) forecast.Page {
	days := forecast.Merge(forecast.Aggregate(fc.Samples, loc), d.now(), loc)
	return forecast.Paginate(days, page, d.pageSize)
}

func (d *Dashboard) listFavorites(ctx context.Context) []types.City {
	if d.favorites == nil {
		return nil
	}
	list, err := d.favorites.List(ctx)
	if err != nil {
		slog.Warn("failed to list favorites", "error", err)
		return nil
	}
	return list
}

// locationName prefers the reverse geocoding match; its failure is not fatal.
func locationName(q *query.Query[[]types.GeocodingLocation], current *types.CurrentWeather) string {
	if locs, ok := q.Data(); ok && len(locs) > 0 {
		return locs[0].Display()
	}
	if current.Country != "" {
		return current.Name + ", " + current.Country
	}
	return current.Name
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
