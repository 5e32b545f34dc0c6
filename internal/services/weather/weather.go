package weather

import (
	"errors"
	"fmt"

	"github.com/shuv1824/skycast/internal/types"
)

var ErrMissingAPIKey = errors.New("openweathermap api key is not configured")

// APIError is a non-2xx answer from OpenWeatherMap.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openweathermap returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("openweathermap returned status %d: %s", e.StatusCode, e.Message)
}

// owmErrorBody is the JSON body of a non-2xx answer.
type owmErrorBody struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// owmCurrentResponse is the /data/2.5/weather payload.
type owmCurrentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []owmCondition `json:"weather"`
	Main    owmMain        `json:"main"`
	Wind    owmWind        `json:"wind"`
	Dt      int64          `json:"dt"`
	Sys     struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

// owmForecastResponse is the /data/2.5/forecast payload (3-hour steps).
type owmForecastResponse struct {
	List []struct {
		Dt      int64          `json:"dt"`
		Main    owmMain        `json:"main"`
		Weather []owmCondition `json:"weather"`
		Wind    owmWind        `json:"wind"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

type owmGeocodingResult struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func firstCondition(conditions []owmCondition) types.Condition {
	if len(conditions) == 0 {
		return types.Condition{}
	}
	c := conditions[0]
	return types.Condition{ID: c.ID, Main: c.Main, Description: c.Description, Icon: c.Icon}
}

func (r owmCurrentResponse) toCurrent() *types.CurrentWeather {
	return &types.CurrentWeather{
		Coordinates: types.Coordinates{Lat: r.Coord.Lat, Lon: r.Coord.Lon},
		Timestamp:   r.Dt,
		Name:        r.Name,
		Country:     r.Sys.Country,
		Temp:        r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		TempMin:     r.Main.TempMin,
		TempMax:     r.Main.TempMax,
		Pressure:    r.Main.Pressure,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		WindDeg:     r.Wind.Deg,
		Sunrise:     r.Sys.Sunrise,
		Sunset:      r.Sys.Sunset,
		Timezone:    r.Timezone,
		Weather:     firstCondition(r.Weather),
	}
}

func (r owmForecastResponse) toForecast() *types.Forecast {
	fc := &types.Forecast{
		City:     r.City.Name,
		Country:  r.City.Country,
		Timezone: r.City.Timezone,
		Samples:  make([]types.ForecastSample, 0, len(r.List)),
	}

	for _, item := range r.List {
		fc.Samples = append(fc.Samples, types.ForecastSample{
			Timestamp: item.Dt,
			Temp:      item.Main.Temp,
			FeelsLike: item.Main.FeelsLike,
			TempMin:   item.Main.TempMin,
			TempMax:   item.Main.TempMax,
			Humidity:  item.Main.Humidity,
			WindSpeed: item.Wind.Speed,
			Weather:   firstCondition(item.Weather),
		})
	}
	return fc
}
