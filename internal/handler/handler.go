package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/shuv1824/skycast/internal/dashboard"
	"github.com/shuv1824/skycast/internal/forecast"
	"github.com/shuv1824/skycast/internal/geolocation"
	"github.com/shuv1824/skycast/internal/modelspec"
	"github.com/shuv1824/skycast/internal/response"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultRequestTimeout = 15 * time.Second

var errInvalidPage = errors.New("page must be a positive integer")

type DashboardHandler struct {
	dashboard *dashboard.Dashboard
	models    *modelspec.Catalog
	location  geolocation.Provider
	templates *template.Template
	timeout   time.Duration
}

// NewDashboardHandler serves the dashboard for the coordinates in the query
// string, or for location when none are given.
func NewDashboardHandler(d *dashboard.Dashboard, models *modelspec.Catalog, location geolocation.Provider) *DashboardHandler {
	return &DashboardHandler{
		dashboard: d,
		models:    models,
		location:  location,
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
		timeout:   defaultRequestTimeout,
	}
}

// Health returns a simple health check response
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Page renders the HTML dashboard.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	geo := geolocation.FromRequest(r, h.location)
	view := h.dashboard.Load(ctx, geo, opts)

	response.HTML(w, statusFor(ctx, geo, view), h.templates, "dashboard", newPageData(r, view))
}

// View returns the same dashboard view as JSON.
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()

	geo := geolocation.FromRequest(r, h.location)
	view := h.dashboard.Load(ctx, geo, opts)

	status := statusFor(ctx, geo, view)
	switch {
	case status == http.StatusOK:
		w.Header().Set("X-Response-Time", time.Since(start).String())
		response.JSON(w, status, view)
	case view.State == dashboard.StateDataError:
		// the data error view still carries the model panel
		response.ErrorJSONWithData(w, status, view.Message, view)
	default:
		response.ErrorJSON(w, status, view.Message)
	}
}

// DailyForecast returns one page of the merged daily forecast.
func (h *DashboardHandler) DailyForecast(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query().Get("page"))
	if err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	geo := geolocation.FromRequest(r, h.location)
	if err := geo.Err(); err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	coords := geo.Coordinates()
	if coords == nil {
		response.ErrorJSON(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.dashboard.DailyForecast(ctx, *coords, page)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			response.ErrorJSON(w, http.StatusGatewayTimeout, "request timeout - try again")
			return
		}
		response.ErrorJSON(w, http.StatusBadGateway, "failed to fetch forecast data")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Model returns a single model specification.
func (h *DashboardHandler) Model(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	spec, ok := h.models.Models[id]
	if !ok {
		response.ErrorJSON(w, http.StatusNotFound, fmt.Sprintf("unknown model %q", id))
		return
	}
	response.JSON(w, http.StatusOK, spec)
}

func parseOptions(r *http.Request) (dashboard.Options, error) {
	q := r.URL.Query()

	page, err := parsePage(q.Get("page"))
	if err != nil {
		return dashboard.Options{}, err
	}

	refresh := false
	if v := q.Get("refresh"); v != "" {
		refresh, err = strconv.ParseBool(v)
		if err != nil {
			return dashboard.Options{}, errors.New("refresh must be a boolean")
		}
	}

	return dashboard.Options{
		Page:    page,
		Model:   strings.TrimSpace(q.Get("model")),
		Refresh: refresh,
	}, nil
}

// parsePage accepts any positive integer; values past the last page are
// clamped later.
func parsePage(v string) (int, error) {
	if v == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errInvalidPage
	}
	return n, nil
}

func statusFor(ctx context.Context, geo geolocation.Provider, view dashboard.View) int {
	switch view.State {
	case dashboard.StateLocationError:
		if errors.Is(geo.Err(), geolocation.ErrInvalidCoordinates) {
			return http.StatusBadRequest
		}
	case dashboard.StateDataError:
		if ctx.Err() == context.DeadlineExceeded {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// pageData decorates a view with the links the HTML page needs.
type pageData struct {
	dashboard.View
	query url.Values
}

func newPageData(r *http.Request, view dashboard.View) pageData {
	q := url.Values{}
	for _, key := range []string{"lat", "lon", "model"} {
		if v := r.URL.Query().Get(key); v != "" {
			q.Set(key, v)
		}
	}
	return pageData{View: view, query: q}
}

func (p pageData) link(key, value string) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	if key != "" {
		q.Set(key, value)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func (p pageData) PageLink(n int) string { return p.link("page", strconv.Itoa(n)) }

func (p pageData) ModelLink(id string) string { return p.link("model", id) }

func (p pageData) RefreshLink() string { return p.link("refresh", "true") }

func (p pageData) SelfLink() string { return p.link("", "") }

func (p pageData) Timezone() int {
	if p.Current == nil {
		return 0
	}
	return p.Current.Timezone
}

var templateFuncs = template.FuncMap{
	"temp": func(v float64) string {
		return fmt.Sprintf("%.0f°", v)
	},
	"day": func(unix int64, offset int) string {
		return time.Unix(unix, 0).In(forecast.Location(offset)).Format("Mon, Jan 2")
	},
	"clock": func(unix int64, offset int) string {
		return time.Unix(unix, 0).In(forecast.Location(offset)).Format("15:04")
	},
	"cityLink": func(lat, lon float64) string {
		q := url.Values{}
		q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
		q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
		return "/?" + q.Encode()
	},
}
