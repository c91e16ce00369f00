package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andesgear/tienda-backend/api/controllers"
	"github.com/andesgear/tienda-backend/api/middleware"
	ordersvc "github.com/andesgear/tienda-backend/internal/orders"
	paymentsvc "github.com/andesgear/tienda-backend/internal/payments"
	shippingsvc "github.com/andesgear/tienda-backend/internal/shipping"
	"github.com/andesgear/tienda-backend/pkg/config"
	"github.com/andesgear/tienda-backend/pkg/db"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/metrics"
	"github.com/andesgear/tienda-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Registry *prometheus.Registry

	Orders     *ordersvc.Service
	Payments   *paymentsvc.Service
	Shipping   *shippingsvc.Service
	Calculator *shippingsvc.Calculator
	Metrics    *metrics.CheckoutMetrics
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", controllers.Checkout(deps.Orders, logg))

		r.Route("/shipping", func(r chi.Router) {
			r.Get("/quote", controllers.ShippingQuote(deps.Calculator, deps.Metrics, logg))
			r.Post("/quote", controllers.ShippingQuote(deps.Calculator, deps.Metrics, logg))
			r.Post("/options", controllers.ShippingOptions(deps.Shipping, logg))
		})

		r.Get("/orders/track", controllers.TrackOrder(deps.Orders, logg))

		r.Route("/payments/webpay", func(r chi.Router) {
			r.Post("/start", controllers.WebpayStart(deps.Payments, logg))
			// the gateway redirects with GET or POST depending on outcome
			r.Get("/return", controllers.WebpayReturn(deps.Payments, logg))
			r.Post("/return", controllers.WebpayReturn(deps.Payments, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.StaffAuth(cfg.JWT, logg))

		r.With(middleware.RequireCancelPermission(logg)).
			Post("/orders/{orderNumber}/cancel", controllers.CancelOrder(deps.Orders, logg))
	})

	return r
}
