package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbit-delivery/orbit-backend/api/controllers"
	"github.com/orbit-delivery/orbit-backend/api/routes"
	"github.com/orbit-delivery/orbit-backend/internal/couriers"
	"github.com/orbit-delivery/orbit-backend/internal/notify"
	"github.com/orbit-delivery/orbit-backend/internal/payments"
	"github.com/orbit-delivery/orbit-backend/internal/pricing"
	"github.com/orbit-delivery/orbit-backend/internal/promotions"
	"github.com/orbit-delivery/orbit-backend/internal/shipments"
	"github.com/orbit-delivery/orbit-backend/internal/tasks"
	"github.com/orbit-delivery/orbit-backend/internal/wallet"
	"github.com/orbit-delivery/orbit-backend/pkg/config"
	"github.com/orbit-delivery/orbit-backend/pkg/db"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
	"github.com/orbit-delivery/orbit-backend/pkg/metrics"
	"github.com/orbit-delivery/orbit-backend/pkg/migrate"
	pkgpubsub "github.com/orbit-delivery/orbit-backend/pkg/pubsub"
	"github.com/orbit-delivery/orbit-backend/pkg/redis"
	pkgstripe "github.com/orbit-delivery/orbit-backend/pkg/stripe"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	// The notification broker is optional; without a GCP project the sink
	// degrades to logging.
	var sink notify.Sink = notify.NoopSink{}
	readyChecks := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pkgpubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		sink = notify.NewPubSubSink(pubsubClient.NotificationPublisher(), logg)
		readyChecks["pubsub"] = pubsubClient
	}

	walletService, err := wallet.NewService(
		wallet.NewRepository(dbClient.DB()),
		dbClient,
		wallet.NewPaymentGateway(stripeClient),
		logg,
		cfg.Wallet.TopUpCeiling,
		cfg.Wallet.DefaultCurrency,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	promoService, err := promotions.NewService(
		promotions.NewRepository(dbClient.DB()),
		cfg.Wallet.DefaultCurrency,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotions service", err)
		os.Exit(1)
	}

	courierService, err := couriers.NewService(couriers.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier service", err)
		os.Exit(1)
	}

	taskService, err := tasks.NewService(tasks.ServiceParams{
		Repo:              tasks.NewRepository(dbClient.DB()),
		TransactionRunner: dbClient,
		Couriers:          courierService,
		Sink:              sink,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create task service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(dbClient.DB()), cfg.Wallet.DefaultCurrency)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	shipmentService, err := shipments.NewService(
		shipments.NewRepository(dbClient.DB()),
		dbClient,
		pricingService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipments service", err)
		os.Exit(1)
	}

	webhookService, err := payments.NewService(payments.ServiceParams{
		Repo:              payments.NewRepository(dbClient.DB()),
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	webhookGuard, err := payments.NewIdempotencyGuard(redisClient, cfg.Stripe.EventDedupTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			IdempotencyStore: redisClient,
			RateLimiter:      redisClient,
			Metrics:          httpMetrics,
			MetricsReg:       registry,
			ReadyChecks:      readyChecks,
			WalletService:    walletService,
			PromoService:     promoService,
			CourierService:   courierService,
			TaskService:      taskService,
			PricingService:   pricingService,
			ShipmentService:  shipmentService,
			StripeClient:     stripeClient,
			WebhookService:   webhookService,
			WebhookGuard:     webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
