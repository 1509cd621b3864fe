package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sherryseats/orders-backend/api/controllers"
	"github.com/sherryseats/orders-backend/api/middleware"
	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/internal/cityrequests"
	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/internal/events"
	"github.com/sherryseats/orders-backend/internal/inventory"
	"github.com/sherryseats/orders-backend/internal/orders"
	"github.com/sherryseats/orders-backend/internal/production"
	"github.com/sherryseats/orders-backend/pkg/config"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/logger"
	pkgredis "github.com/sherryseats/orders-backend/pkg/redis"
)

// Cache is the redis surface the HTTP layer needs for replay and throttling.
type Cache interface {
	middleware.ReplayStore
	Allow(ctx context.Context, scope string, limit int64, window time.Duration) (pkgredis.Verdict, error)
}

type Params struct {
	Config       *config.Config
	Logger       *logger.Logger
	Cache        Cache
	Gatherer     prometheus.Gatherer
	Ready        map[string]controllers.Pinger
	Clock        func() time.Time
	Orders       orders.Service
	Production   production.Service
	Inventory    inventory.Service
	Customers    customers.Service
	Events       events.Service
	CityRequests cityrequests.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	cache := p.Cache

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	orderPolicy := middleware.NewRateLimitPolicy("order_intake", cfg.RateLimit.Window, cfg.RateLimit.OrderIntakeLimit)
	cityPolicy := middleware.NewRateLimitPolicy("city_requests", cfg.RateLimit.Window, cfg.RateLimit.CityRequestLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Ready))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(cache, cfg.Idempotency.TTL, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RateLimit(orderPolicy, cache, logg)).Post("/", controllers.CreateOrder(p.Orders, logg))
			r.Get("/", controllers.ListOrders(p.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(p.Orders, logg))
			r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(p.Orders, logg))
		})

		r.Route("/production-list", func(r chi.Router) {
			r.Get("/", controllers.ProductionList(p.Production, clock, logg))
			r.Get("/unmatched", controllers.UnmatchedProducts(p.Production, clock, logg))
			r.Get("/event/{eventId}", controllers.EventProductionList(p.Production, clock, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(p.Inventory, logg))
			r.Put("/", controllers.UpdateInventory(p.Inventory, logg))
		})

		r.Get("/customers", controllers.ListCustomers(p.Customers, logg))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(p.Events, logg))
			r.Post("/", controllers.CreateEvent(p.Events, logg))
			r.Get("/city/{city}", controllers.EventsInCity(p.Events, clock, logg))
			r.Get("/{eventId}", controllers.GetEvent(p.Events, logg))
			r.Put("/{eventId}", controllers.UpdateEvent(p.Events, logg))
			r.Delete("/{eventId}", controllers.DeleteEvent(p.Events, logg))
			r.Get("/{eventId}/orders", controllers.ListEventOrders(p.Orders, logg))
			r.Get("/{eventId}/customers", controllers.ListEventCustomers(p.Customers, logg))
		})

		r.Get("/calendar-events", controllers.CalendarEvents(p.Events))
		r.Get("/cities", controllers.ServedCities())

		r.Route("/city-requests", func(r chi.Router) {
			r.With(middleware.RateLimit(cityPolicy, cache, logg)).Post("/", controllers.CreateCityRequest(p.CityRequests, logg))
			r.Get("/", controllers.ListCityRequests(p.CityRequests, logg))
			r.Patch("/{requestId}/status", controllers.UpdateCityRequestStatus(p.CityRequests, logg))
		})
	})

	return r
}
