package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/andesgear/tienda-backend/api/routes"
	"github.com/andesgear/tienda-backend/internal/customers"
	ordersvc "github.com/andesgear/tienda-backend/internal/orders"
	paymentsvc "github.com/andesgear/tienda-backend/internal/payments"
	shippingsvc "github.com/andesgear/tienda-backend/internal/shipping"
	"github.com/andesgear/tienda-backend/pkg/config"
	"github.com/andesgear/tienda-backend/pkg/db"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/metrics"
	"github.com/andesgear/tienda-backend/pkg/migrate"
	"github.com/andesgear/tienda-backend/pkg/redis"
	"github.com/andesgear/tienda-backend/pkg/webpay"
)

const shutdownGrace = 15 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// redis only backs the advisory callback guard, so the api comes up
	// without it and readiness reports degraded
	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "redis unavailable, webpay callbacks lose replay protection", err)
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	shippingRepo := shippingsvc.NewRepository(dbClient.DB())
	calculator, err := shippingsvc.NewCalculator(shippingRepo, shippingsvc.DefaultRegionalRates())
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping calculator", err)
		os.Exit(1)
	}
	shippingService, err := shippingsvc.NewService(shippingRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	ordersService, err := ordersvc.NewService(
		dbClient,
		ordersRepo,
		customers.NewRepository(dbClient.DB()),
		calculator,
		cfg.Checkout,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	webpayOpts := []webpay.Option{webpay.WithHTTPClient(&http.Client{Timeout: cfg.Webpay.Timeout})}
	if cfg.Webpay.BaseURL != "" {
		webpayOpts = append(webpayOpts, webpay.WithBaseURL(cfg.Webpay.BaseURL))
	}
	gateway, err := webpay.NewClient(cfg.Webpay.CommerceCode, cfg.Webpay.APIKey, webpayOpts...)
	if err != nil {
		logg.Error(context.Background(), "failed to create webpay client", err)
		os.Exit(1)
	}

	var paymentsService *paymentsvc.Service
	if redisClient != nil {
		callbackGuard, err := paymentsvc.NewIdempotencyGuard(redisClient, cfg.Checkout.CallbackIdempotencyTTL, "webpay-return")
		if err != nil {
			logg.Error(context.Background(), "failed to create callback guard", err)
			os.Exit(1)
		}
		paymentsService, err = paymentsvc.NewService(dbClient, ordersRepo, gateway, callbackGuard, cfg.Webpay.ReturnURL, logg, checkoutMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to create payments service", err)
			os.Exit(1)
		}
	} else {
		paymentsService, err = paymentsvc.NewService(dbClient, ordersRepo, gateway, nil, cfg.Webpay.ReturnURL, logg, checkoutMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to create payments service", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	deps := routes.Dependencies{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Registry:   registry,
		Orders:     ordersService,
		Payments:   paymentsService,
		Shipping:   shippingService,
		Calculator: calculator,
		Metrics:    checkoutMetrics,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
