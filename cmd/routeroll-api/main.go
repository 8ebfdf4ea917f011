// README: Entry point; loads config, wires services, and serves the HTTP API until SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"routeroll/internal/config"
	"routeroll/internal/events"
	httptransport "routeroll/internal/http"
	"routeroll/internal/infra"
	"routeroll/internal/logging"
	"routeroll/internal/maps"
	"routeroll/internal/modules/history"
	"routeroll/internal/modules/preferences"
	"routeroll/internal/modules/route"
	"routeroll/internal/modules/weather"
	"routeroll/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("routeroll-api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return err
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher history.Events
	if cfg.NATS.URL != "" {
		nc, err := infra.NewNATS(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer func() { _ = nc.Drain() }()
		publisher = events.NewPublisher(nc)
	} else {
		logger.Info("nats.url not set; route events disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	telemetry.RegisterPoolStats(reg, dbPool)

	directions, err := maps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		return err
	}
	routeSvc := route.NewService(directions, cfg.Routing,
		route.WithMetrics(telemetry.NewRouteMetrics(reg)),
		route.WithLogger(logger.With("component", "route")),
	)

	var weatherProvider weather.Provider
	if cfg.Weather.APIKey != "" {
		weatherProvider = weather.NewClient(nil, cfg.Weather.BaseURL, cfg.Weather.APIKey)
	} else {
		logger.Info("weather.api_key not set; serving default conditions")
	}
	weatherSvc := weather.NewService(weatherProvider, weather.NewRedisCache(redisClient, cfg.Weather.CacheTTL),
		weather.WithLogger(logger.With("component", "weather")))

	historySvc := history.NewService(history.NewStore(dbPool), publisher, nil,
		history.WithLogger(logger.With("component", "history")))
	prefsSvc := preferences.NewService(preferences.NewStore(dbPool),
		preferences.WithLogger(logger.With("component", "preferences")))

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Routes:      routeSvc,
		History:     historySvc,
		Preferences: prefsSvc,
		Weather:     weatherSvc,
		Verifier:    verifier,
		Gatherer:    reg,
		HTTPMetrics: telemetry.NewHTTPMetrics(reg),
		Logger:      logger,
	})

	return httptransport.NewServer(cfg.HTTP.Addr, router).Run(ctx)
}
