package geolocation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuv1824/skycast/internal/types"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		want    types.Coordinates
		wantErr bool
	}{
		{"valid", "23.8103", "90.4125", types.Coordinates{Lat: 23.8103, Lon: 90.4125}, false},
		{"negative", "-33.86", "-151.2", types.Coordinates{Lat: -33.86, Lon: -151.2}, false},
		{"latitude not a number", "north", "90", types.Coordinates{}, true},
		{"longitude missing", "23.8", "", types.Coordinates{}, true},
		{"latitude out of range", "91", "10", types.Coordinates{}, true},
		{"longitude out of range", "10", "-181", types.Coordinates{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinates(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRequest(t *testing.T) {
	home := &types.Coordinates{Lat: 1, Lon: 2}
	fallback := NewStatic(home)

	t.Run("query coordinates win", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?lat=10&lon=20", nil)
		p := FromRequest(r, fallback)
		require.NotNil(t, p.Coordinates())
		assert.Equal(t, types.Coordinates{Lat: 10, Lon: 20}, *p.Coordinates())
		assert.NoError(t, p.Err())
	})

	t.Run("malformed coordinates are a location error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?lat=abc&lon=20", nil)
		p := FromRequest(r, fallback)
		assert.Nil(t, p.Coordinates())
		assert.ErrorIs(t, p.Err(), ErrInvalidCoordinates)
		assert.False(t, p.IsLoading())
	})

	t.Run("absent coordinates use fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		p := FromRequest(r, fallback)
		assert.Equal(t, home, p.Coordinates())
	})

	t.Run("no fallback means missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		p := FromRequest(r, NewStatic(nil))
		assert.Nil(t, p.Coordinates())
		assert.NoError(t, p.Err())
	})
}

type stubTransport struct {
	status int
	body   string
	calls  int
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestIPLocator(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves coordinates", func(t *testing.T) {
		transport := &stubTransport{status: http.StatusOK, body: `{"status":"success","lat":23.7,"lon":90.4,"city":"Dhaka"}`}
		l := NewIPLocator("http://ip.test/json", &http.Client{Transport: transport})

		require.NoError(t, l.Locate(ctx))
		assert.Equal(t, &types.Coordinates{Lat: 23.7, Lon: 90.4}, l.Coordinates())
		assert.False(t, l.IsLoading())
	})

	t.Run("failed lookup is a location error", func(t *testing.T) {
		transport := &stubTransport{status: http.StatusOK, body: `{"status":"fail","message":"private range"}`}
		l := NewIPLocator("http://ip.test/json", &http.Client{Transport: transport})

		err := l.Locate(ctx)
		assert.ErrorContains(t, err, "private range")
		assert.Equal(t, err, l.Err())
		assert.Nil(t, l.Coordinates())
	})

	t.Run("upstream status error", func(t *testing.T) {
		transport := &stubTransport{status: http.StatusServiceUnavailable, body: `{"status":"fail"}`}
		l := NewIPLocator("http://ip.test/json", &http.Client{Transport: transport})
		l.client.SetRetryCount(0)

		err := l.Locate(ctx)
		assert.ErrorContains(t, err, "status 503")
		assert.Nil(t, l.Coordinates())
	})

	t.Run("malformed body", func(t *testing.T) {
		transport := &stubTransport{status: http.StatusOK, body: `{"status":`}
		l := NewIPLocator("http://ip.test/json", &http.Client{Transport: transport})
		l.client.SetRetryCount(0)

		assert.ErrorContains(t, l.Locate(ctx), "failed to parse ip location")
	})

	t.Run("GetLocation resolves in background", func(t *testing.T) {
		transport := &stubTransport{status: http.StatusOK, body: `{"status":"success","lat":1.5,"lon":2.5}`}
		l := NewIPLocator("http://ip.test/json", &http.Client{Transport: transport})

		l.GetLocation(ctx)
		assert.Eventually(t, func() bool {
			return !l.IsLoading() && l.Coordinates() != nil
		}, 2*time.Second, 10*time.Millisecond)
	})
}
