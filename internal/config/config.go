// Package config loads runtime settings from an optional YAML file and
// overlays environment variables on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shuv1824/skycast/internal/types"
)

type OpenWeatherMap struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Units             string  `yaml:"units"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	Retries           int     `yaml:"retries"`
}

type IPLookup struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type Config struct {
	Env             string             `yaml:"env"`
	Addr            string             `yaml:"addr"`
	OpenWeatherMap  OpenWeatherMap     `yaml:"openweathermap"`
	DefaultLocation *types.Coordinates `yaml:"default_location"`
	CacheTTL        time.Duration      `yaml:"cache_ttl"`
	DBPath          string             `yaml:"db_path"`
	CitiesFile      string             `yaml:"cities_file"`
	IPLookup        IPLookup           `yaml:"ip_lookup"`
}

func Default() *Config {
	return &Config{
		Env:  "development",
		Addr: ":8080",
		OpenWeatherMap: OpenWeatherMap{
			Units:             "metric",
			RequestsPerSecond: 1,
			Burst:             5,
			Retries:           2,
		},
		CacheTTL:   10 * time.Minute,
		DBPath:     "skycast.db",
		CitiesFile: "data/cities.yaml",
	}
}

// Load reads path (when it exists) over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("no config file, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.DefaultLocation != nil && !c.DefaultLocation.Valid() {
		return fmt.Errorf("default location %s out of range", c.DefaultLocation.Key())
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("ENV"); ok {
		cfg.Env = v
	}
	if v, ok := get("ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := get("OWM_API_KEY"); ok {
		cfg.OpenWeatherMap.APIKey = v
	}
	if v, ok := get("OWM_BASE_URL"); ok {
		cfg.OpenWeatherMap.BaseURL = v
	}
	if v, ok := get("DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := get("CITIES_FILE"); ok {
		cfg.CitiesFile = v
	}
	if v, ok := get("CACHE_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = ttl
	}
	if v, ok := get("IP_LOOKUP"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IP_LOOKUP: %w", err)
		}
		cfg.IPLookup.Enabled = enabled
	}
	if v, ok := get("IP_LOOKUP_URL"); ok {
		cfg.IPLookup.URL = v
	}

	lat, hasLat := get("DEFAULT_LAT")
	lon, hasLon := get("DEFAULT_LON")
	if hasLat != hasLon {
		return errors.New("DEFAULT_LAT and DEFAULT_LON must be set together")
	}
	if hasLat {
		la, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return fmt.Errorf("DEFAULT_LAT: %w", err)
		}
		lo, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return fmt.Errorf("DEFAULT_LON: %w", err)
		}
		cfg.DefaultLocation = &types.Coordinates{Lat: la, Lon: lo}
	}

	return nil
}
