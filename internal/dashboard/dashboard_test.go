package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuv1824/skycast/internal/geolocation"
	"github.com/shuv1824/skycast/internal/modelspec"
	"github.com/shuv1824/skycast/internal/types"
)

type fakeFetcher struct {
	mu          sync.Mutex
	currentErr  error
	forecastErr error
	reverseErr  error
	samples     []types.ForecastSample
	calls       int
	invalidated []types.Coordinates
}

func (f *fakeFetcher) CurrentWeather(context.Context, types.Coordinates) (*types.CurrentWeather, error) {
	f.count()
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return &types.CurrentWeather{Name: "Dhaka", Country: "BD", Temp: 31}, nil
}

func (f *fakeFetcher) Forecast(context.Context, types.Coordinates) (*types.Forecast, error) {
	f.count()
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return &types.Forecast{City: "Dhaka", Samples: f.samples}, nil
}

func (f *fakeFetcher) ReverseGeocode(context.Context, types.Coordinates) ([]types.GeocodingLocation, error) {
	f.count()
	if f.reverseErr != nil {
		return nil, f.reverseErr
	}
	return []types.GeocodingLocation{{Name: "Dhaka", State: "Dhaka Division", Country: "BD"}}, nil
}

func (f *fakeFetcher) Invalidate(coords types.Coordinates) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, coords)
}

func (f *fakeFetcher) count() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

type fakeProvider struct {
	coords    *types.Coordinates
	err       error
	loading   bool
	getCalled int
}

func (p *fakeProvider) Coordinates() *types.Coordinates { return p.coords }
func (p *fakeProvider) Err() error                      { return p.err }
func (p *fakeProvider) IsLoading() bool                 { return p.loading }
func (p *fakeProvider) GetLocation(context.Context)     { p.getCalled++ }

var _ geolocation.Provider = (*fakeProvider)(nil)

type fakeFavorites struct {
	cities []types.City
	err    error
}

func (f fakeFavorites) List(context.Context) ([]types.City, error) { return f.cities, f.err }

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// sevenDays yields eight 3-hour samples per day from fixedNow's date.
func sevenDays() []types.ForecastSample {
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC).Unix()
	var out []types.ForecastSample
	for i := 0; i < 8*7; i++ {
		out = append(out, types.ForecastSample{
			Timestamp: start + int64(i)*3*3600,
			Temp:      20,
			TempMin:   float64(15 + i%8),
			TempMax:   float64(20 + i%8),
			Humidity:  60,
			WindSpeed: 3,
		})
	}
	return out
}

func newTestDashboard(f *fakeFetcher, favs FavoriteLister) *Dashboard {
	d := New(f, modelspec.Builtin(), favs)
	d.now = func() time.Time { return fixedNow }
	return d
}

func TestLoadStates(t *testing.T) {
	here := &types.Coordinates{Lat: 23.8103, Lon: 90.4125}
	ctx := context.Background()

	tests := []struct {
		name      string
		provider  *fakeProvider
		fetcher   *fakeFetcher
		wantState State
		wantCalls int
	}{
		{"location loading", &fakeProvider{loading: true}, &fakeFetcher{}, StateLoading, 0},
		{"location error", &fakeProvider{err: errors.New("permission denied")}, &fakeFetcher{}, StateLocationError, 0},
		{"location missing", &fakeProvider{}, &fakeFetcher{}, StateLocationMissing, 0},
		{"current weather fails", &fakeProvider{coords: here}, &fakeFetcher{currentErr: errors.New("boom")}, StateDataError, 3},
		{"forecast fails", &fakeProvider{coords: here}, &fakeFetcher{forecastErr: errors.New("boom")}, StateDataError, 3},
		{"reverse geocode failure is not fatal", &fakeProvider{coords: here}, &fakeFetcher{reverseErr: errors.New("boom"), samples: sevenDays()}, StateReady, 3},
		{"ready", &fakeProvider{coords: here}, &fakeFetcher{samples: sevenDays()}, StateReady, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := newTestDashboard(tt.fetcher, nil).Load(ctx, tt.provider, Options{Page: 1})
			assert.Equal(t, tt.wantState, view.State)
			assert.Equal(t, tt.wantCalls, tt.fetcher.calls)
		})
	}
}

func TestLoadDataErrorShowsModelPanel(t *testing.T) {
	f := &fakeFetcher{forecastErr: errors.New("upstream unavailable")}
	view := newTestDashboard(f, nil).Load(context.Background(), &fakeProvider{coords: &types.Coordinates{Lat: 1, Lon: 2}}, Options{Model: "ocean"})

	require.Equal(t, StateDataError, view.State)
	require.NotNil(t, view.Model)
	assert.Equal(t, "ocean", view.Model.ID)
	assert.Contains(t, view.Message, "upstream unavailable")
	assert.Nil(t, view.Daily)
}

func TestLoadReady(t *testing.T) {
	f := &fakeFetcher{samples: sevenDays()}
	favs := fakeFavorites{cities: []types.City{{Name: "Mumbai"}}}
	view := newTestDashboard(f, favs).Load(context.Background(), &fakeProvider{coords: &types.Coordinates{Lat: 1, Lon: 2}}, Options{Page: 2})

	require.Equal(t, StateReady, view.State)
	assert.Equal(t, "Dhaka, Dhaka Division", view.LocationName)
	assert.Equal(t, 31.0, view.Current.Temp)
	assert.Len(t, view.Hourly, 8)
	assert.Equal(t, "medium-res", view.Model.ID)
	assert.Len(t, view.Favorites, 1)

	// five real days plus five placeholders
	require.NotNil(t, view.Daily)
	assert.Equal(t, 10, view.Daily.Total)
	assert.Equal(t, 2, view.Daily.TotalPages)
	assert.Equal(t, 2, view.Daily.Number)
	require.Len(t, view.Daily.Items, 5)
	assert.True(t, view.Daily.Items[0].Fallback)
	assert.Equal(t, time.Date(2026, 10, 25, 12, 0, 0, 0, time.UTC).Unix(), view.Daily.Items[0].Date)
}

func TestLoadLocationNameFallsBackToCurrentWeather(t *testing.T) {
	f := &fakeFetcher{samples: sevenDays(), reverseErr: errors.New("no match")}
	view := newTestDashboard(f, fakeFavorites{err: errors.New("db closed")}).Load(context.Background(), &fakeProvider{coords: &types.Coordinates{Lat: 1, Lon: 2}}, Options{})

	require.Equal(t, StateReady, view.State)
	assert.Equal(t, "Dhaka, BD", view.LocationName)
	assert.Nil(t, view.Favorites)
	assert.Equal(t, 1, view.Daily.Number, "page 0 clamps to 1")
}

func TestLoadRefresh(t *testing.T) {
	here := &types.Coordinates{Lat: 1, Lon: 2}
	f := &fakeFetcher{samples: sevenDays()}
	p := &fakeProvider{coords: here}

	newTestDashboard(f, nil).Load(context.Background(), p, Options{Refresh: true})

	assert.Equal(t, 1, p.getCalled)
	assert.Equal(t, []types.Coordinates{*here}, f.invalidated)
}

func TestDailyForecast(t *testing.T) {
	d := newTestDashboard(&fakeFetcher{samples: sevenDays()}, nil)
	coords := types.Coordinates{Lat: 1, Lon: 2}

	first, err := d.DailyForecast(context.Background(), coords, 1)
	require.NoError(t, err)
	require.NotEmpty(t, first.Items)
	assert.False(t, first.Items[0].Fallback)
	assert.Equal(t, 15.0, first.Items[0].TempMin)
	assert.Equal(t, 27.0, first.Items[0].TempMax)

	clamped, err := d.DailyForecast(context.Background(), coords, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)

	_, err = newTestDashboard(&fakeFetcher{forecastErr: errors.New("down")}, nil).
		DailyForecast(context.Background(), coords, 1)
	assert.Error(t, err)
}
