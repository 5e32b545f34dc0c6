package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/shuv1824/skycast/internal/config"
	"github.com/shuv1824/skycast/internal/dashboard"
	"github.com/shuv1824/skycast/internal/favorites"
	"github.com/shuv1824/skycast/internal/geolocation"
	"github.com/shuv1824/skycast/internal/handler"
	"github.com/shuv1824/skycast/internal/modelspec"
	"github.com/shuv1824/skycast/internal/services/weather"
	"github.com/shuv1824/skycast/internal/utils/geodata"
)

func Run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.IsDevelopment())
	slog.SetDefault(logger)

	if cfg.OpenWeatherMap.APIKey == "" {
		slog.Warn("OWM_API_KEY is not set, the dashboard will show a data error")
	}

	// Favorite cities, seeded from the preset file on first run
	store, err := favorites.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open favorites store: %w", err)
	}
	defer store.Close()

	if err := geodata.Load(cfg.CitiesFile); err != nil {
		slog.Warn("failed to load preset cities", "path", cfg.CitiesFile, "error", err)
	} else if n, err := store.Seed(context.Background(), geodata.Cities()); err != nil {
		return fmt.Errorf("failed to seed favorites: %w", err)
	} else if n > 0 {
		slog.Info("Seeded favorite cities", "count", n)
	}

	weatherService := weather.NewCachedWeatherService(weather.NewWeatherService(weather.Config{
		APIKey:            cfg.OpenWeatherMap.APIKey,
		BaseURL:           cfg.OpenWeatherMap.BaseURL,
		Units:             cfg.OpenWeatherMap.Units,
		RequestsPerSecond: cfg.OpenWeatherMap.RequestsPerSecond,
		Burst:             cfg.OpenWeatherMap.Burst,
		Retries:           cfg.OpenWeatherMap.Retries,
	}), cfg.CacheTTL)

	location := setupLocation(cfg)

	// Warm cache on startup for the configured location
	if coords := cfg.DefaultLocation; coords != nil && cfg.OpenWeatherMap.APIKey != "" {
		slog.Info("Warming weather cache...", "coords", coords.Key())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := weatherService.WarmCache(ctx, *coords); err != nil {
			slog.Error("failed to warm cache", "error", err)
		} else {
			slog.Info("Cache warmed successfully")
		}
		cancel()

		// Start background cache refresh
		weatherService.StartBackgroundRefresh(context.Background(), *coords)
	}

	models := modelspec.Builtin()
	dashboardHandler := handler.NewDashboardHandler(dashboard.New(weatherService, models, store), models, location)
	favoritesHandler := handler.NewFavoritesHandler(store)

	// Initialize router
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	// HTML dashboard
	r.HandleFunc("/", dashboardHandler.Page).Methods(http.MethodGet)

	// API v1 subrouter
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/dashboard", dashboardHandler.View).Methods(http.MethodGet)
	api.HandleFunc("/forecast/daily", dashboardHandler.DailyForecast).Methods(http.MethodGet)
	api.HandleFunc("/models/{id}", dashboardHandler.Model).Methods(http.MethodGet)

	api.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/favorites", favoritesHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{id}", favoritesHandler.Remove).Methods(http.MethodDelete)

	var h http.Handler = r

	// Recovery (catches panics)
	h = handlers.RecoveryHandler()(h)

	// CORS
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)

	// Logging
	h = handlers.LoggingHandler(os.Stdout, h)

	slog.Info("starting dashboard server")

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return startServer(server)
}

// setupLocation picks the location used when a request carries no
// coordinates: the configured default, else an IP based lookup.
func setupLocation(cfg *config.Config) geolocation.Provider {
	if cfg.DefaultLocation != nil {
		return geolocation.NewStatic(cfg.DefaultLocation)
	}
	if !cfg.IPLookup.Enabled {
		return geolocation.NewStatic(nil)
	}

	locator := geolocation.NewIPLocator(cfg.IPLookup.URL, nil)
	locator.GetLocation(context.Background())
	return locator
}

func setupLogger(isDevelopment bool) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if isDevelopment {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func startServer(server *http.Server) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverError := make(chan error, 1)

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case err := <-serverError:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		slog.Info("server stopped gracefully")
	}

	return nil
}
