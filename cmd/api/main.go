package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/funnelcart/api/controllers"
	"github.com/angelmondragon/funnelcart/api/routes"
	enginecart "github.com/angelmondragon/funnelcart/internal/cart"
	"github.com/angelmondragon/funnelcart/internal/catalog"
	"github.com/angelmondragon/funnelcart/internal/discount"
	"github.com/angelmondragon/funnelcart/internal/history"
	"github.com/angelmondragon/funnelcart/internal/profile"
	"github.com/angelmondragon/funnelcart/pkg/config"
	"github.com/angelmondragon/funnelcart/pkg/db"
	"github.com/angelmondragon/funnelcart/pkg/db/models"
	"github.com/angelmondragon/funnelcart/pkg/logger"
	"github.com/angelmondragon/funnelcart/pkg/metrics"
	"github.com/angelmondragon/funnelcart/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.DB().AutoMigrate(&models.CartEvent{}); err != nil {
		logg.Error(context.Background(), "failed to migrate cart events", err)
		os.Exit(1)
	}

	events, err := history.NewService(history.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{"database": dbClient}

	catalogRegistry, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to load catalog", err)
		os.Exit(1)
	}
	var lookup catalog.Lookup = catalogRegistry

	if cfg.Redis.Enabled {
		redisClient, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		lookup = catalog.NewCachedLookup(lookup, redisClient, cfg.Catalog.CacheTTL, logg)
		pingers["redis"] = redisClient
	}

	coupons, err := discount.LoadFile(cfg.Coupons.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to load coupons", err)
		os.Exit(1)
	}

	profiles, err := profile.LoadFile(cfg.Profiles.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to load profiles", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	cart, err := enginecart.New(enginecart.Options{
		Catalog:     lookup,
		Coupons:     coupons,
		Profiles:    profiles,
		History:     events,
		Logger:      logg,
		Metrics:     engineMetrics,
		Currency:    cfg.Engine.CurrencyCode(),
		TaxRate:     cfg.Engine.TaxRateDecimal(),
		QueueBuffer: cfg.Engine.QueueBuffer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build cart engine", err)
		os.Exit(1)
	}
	defer cart.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"cart_id": cart.ID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Cart:     cart,
			Catalog:  lookup,
			Currency: cfg.Engine.CurrencyCode(),
			Events:   events,
			Pingers:  pingers,
			Registry: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
