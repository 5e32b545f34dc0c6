package types

import "fmt"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key identifies a coordinate pair at roughly 11m precision. Used for cache keys
// and favorite de-duplication.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ForecastSample is one 3-hour entry of the upstream forecast.
type ForecastSample struct {
	Timestamp int64     `json:"dt"`
	Temp      float64   `json:"temp"`
	FeelsLike float64   `json:"feels_like"`
	TempMin   float64   `json:"temp_min"`
	TempMax   float64   `json:"temp_max"`
	Humidity  int       `json:"humidity"`
	WindSpeed float64   `json:"wind_speed"`
	Weather   Condition `json:"weather"`
}

// DailyForecast summarises every sample of one calendar day.
type DailyForecast struct {
	Date     int64     `json:"date"`
	TempMin  float64   `json:"temp_min"`
	TempMax  float64   `json:"temp_max"`
	Humidity int       `json:"humidity"`
	Wind     float64   `json:"wind"`
	Weather  Condition `json:"weather"`
	Fallback bool      `json:"fallback,omitempty"`
}

type HourlyPoint struct {
	Time      string  `json:"time"`
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
}

type CurrentWeather struct {
	Coordinates Coordinates `json:"coord"`
	Timestamp   int64       `json:"dt"`
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Temp        float64     `json:"temp"`
	FeelsLike   float64     `json:"feels_like"`
	TempMin     float64     `json:"temp_min"`
	TempMax     float64     `json:"temp_max"`
	Pressure    int         `json:"pressure"`
	Humidity    int         `json:"humidity"`
	WindSpeed   float64     `json:"wind_speed"`
	WindDeg     int         `json:"wind_deg"`
	Sunrise     int64       `json:"sunrise"`
	Sunset      int64       `json:"sunset"`
	Timezone    int         `json:"timezone"`
	Weather     Condition   `json:"weather"`
}

type Forecast struct {
	City     string           `json:"city"`
	Country  string           `json:"country"`
	Timezone int              `json:"timezone"`
	Samples  []ForecastSample `json:"samples"`
}

// GeocodingLocation is one reverse geocoding match.
type GeocodingLocation struct {
	Name    string  `json:"name"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (g GeocodingLocation) Display() string {
	switch {
	case g.State != "":
		return fmt.Sprintf("%s, %s", g.Name, g.State)
	case g.Country != "":
		return fmt.Sprintf("%s, %s", g.Name, g.Country)
	default:
		return g.Name
	}
}

type City struct {
	ID      string  `json:"id" yaml:"-"`
	Name    string  `json:"name" yaml:"name"`
	Country string  `json:"country" yaml:"country"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lon     float64 `json:"lon" yaml:"lon"`
	AddedAt int64   `json:"added_at" yaml:"-"`
}

func (c City) Coordinates() Coordinates {
	return Coordinates{Lat: c.Lat, Lon: c.Lon}
}

type CitiesFile struct {
	Cities []City `yaml:"cities"`
}
