package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orbit-delivery/orbit-backend/api/controllers"
	webhookcontrollers "github.com/orbit-delivery/orbit-backend/api/controllers/webhooks"
	"github.com/orbit-delivery/orbit-backend/api/middleware"
	"github.com/orbit-delivery/orbit-backend/internal/couriers"
	"github.com/orbit-delivery/orbit-backend/internal/payments"
	"github.com/orbit-delivery/orbit-backend/internal/pricing"
	"github.com/orbit-delivery/orbit-backend/internal/promotions"
	"github.com/orbit-delivery/orbit-backend/internal/shipments"
	"github.com/orbit-delivery/orbit-backend/internal/tasks"
	"github.com/orbit-delivery/orbit-backend/internal/wallet"
	"github.com/orbit-delivery/orbit-backend/pkg/config"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
	"github.com/orbit-delivery/orbit-backend/pkg/metrics"
	"github.com/orbit-delivery/orbit-backend/pkg/redis"
	"github.com/orbit-delivery/orbit-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	IdempotencyStore redis.IdempotencyStore
	RateLimiter      middleware.RateLimiterStore
	Metrics          *metrics.HTTPMetrics
	MetricsReg       prometheus.Gatherer

	ReadyChecks map[string]controllers.Pinger

	WalletService   wallet.Service
	PromoService    promotions.Service
	CourierService  couriers.Service
	TaskService     tasks.Service
	PricingService  pricing.Service
	ShipmentService shipments.Service
	StripeClient    *stripe.Client
	WebhookService  *payments.Service
	WebhookGuard    *payments.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if p.Metrics != nil {
		r.Use(p.Metrics.Middleware())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.ReadyChecks))
	})

	if p.MetricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsReg, promhttp.HandlerOpts{}))
	}

	// The gateway verifies itself through the Stripe signature, not the
	// identity header.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.WebhookService, p.StripeClient, p.WebhookGuard, logg))
	})

	topUpPolicy := middleware.NewRateLimitPolicy(
		"wallet-topup",
		cfg.RateLimit.TopUpWindow,
		cfg.RateLimit.TopUpUserLimit,
		cfg.RateLimit.TopUpIPLimit,
	)
	locationPolicy := middleware.NewRateLimitPolicy(
		"courier-location",
		cfg.RateLimit.LocationWindow,
		cfg.RateLimit.LocationUserLimit,
		cfg.RateLimit.LocationIPLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		r.Use(middleware.Idempotency(p.IdempotencyStore, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletGet(p.WalletService, logg))
			r.Get("/transactions", controllers.WalletTransactions(p.WalletService, logg))
			r.With(middleware.RateLimit(topUpPolicy, p.RateLimiter, logg)).Post("/topup", controllers.WalletTopUp(p.WalletService, logg))
			r.Post("/promo", controllers.WalletPromoApply(p.PromoService, logg))
		})

		r.Route("/courier", func(r chi.Router) {
			r.Get("/tasks", controllers.CourierListTasks(p.TaskService, logg))
			r.Post("/online", controllers.CourierToggleOnline(p.CourierService, logg))
			r.With(middleware.RateLimit(locationPolicy, p.RateLimiter, logg)).Post("/location", controllers.CourierLocation(p.CourierService, logg))
			r.Post("/tasks/{taskID}/accept", controllers.CourierAcceptTask(p.TaskService, logg))
			r.Patch("/tasks/{taskID}/status", controllers.CourierUpdateTaskStatus(p.TaskService, logg))
		})

		r.Route("/admin/tasks", func(r chi.Router) {
			r.Post("/assign", controllers.AdminAssignTask(p.TaskService, logg))
			r.Patch("/{taskID}/status", controllers.AdminUpdateTaskStatus(p.TaskService, logg))
		})

		r.Route("/box", func(r chi.Router) {
			r.Post("/estimate", controllers.BoxEstimate(p.PricingService, logg))
			r.Post("/shipments", controllers.BoxCreateShipment(p.ShipmentService, logg))
			r.Get("/shipments/{id}", controllers.BoxGetShipment(p.ShipmentService, logg))
		})
	})

	return r
}
