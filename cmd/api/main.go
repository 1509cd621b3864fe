// Command api serves the HTTP API for order intake and production planning.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sherryseats/orders-backend/api/controllers"
	"github.com/sherryseats/orders-backend/api/routes"
	"github.com/sherryseats/orders-backend/internal/bootstrap"
	"github.com/sherryseats/orders-backend/internal/cityrequests"
	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/internal/events"
	"github.com/sherryseats/orders-backend/internal/inventory"
	"github.com/sherryseats/orders-backend/internal/orders"
	"github.com/sherryseats/orders-backend/internal/production"
	"github.com/sherryseats/orders-backend/pkg/calendar"
	"github.com/sherryseats/orders-backend/pkg/metrics"
	"github.com/sherryseats/orders-backend/pkg/outbox"
)

const shutdownTimeout = 15 * time.Second

func main() {
	bootstrap.Main("api", func(ctx context.Context, rt *bootstrap.Runtime) error {
		cache, err := rt.Redis(ctx)
		if err != nil {
			return err
		}
		gatherer := prometheus.NewRegistry()
		params, err := services(ctx, rt, metrics.NewOrderMetrics(gatherer))
		if err != nil {
			return err
		}
		params.Config = rt.Config
		params.Logger = rt.Logger
		params.Cache = cache
		params.Gatherer = gatherer
		params.Ready = map[string]controllers.Pinger{"db": rt.DB, "redis": cache}

		port := os.Getenv("PORT")
		if port == "" {
			port = rt.Config.App.Port
		}
		return serve(ctx, rt, &http.Server{
			Addr:              ":" + port,
			Handler:           routes.NewRouter(params),
			ReadHeaderTimeout: 10 * time.Second,
		})
	})
}

// services wires every domain service against the shared database.
func services(ctx context.Context, rt *bootstrap.Runtime, orderMetrics *metrics.OrderMetrics) (routes.Params, error) {
	var p routes.Params
	loc, err := rt.Config.Business.Location()
	if err != nil {
		return p, err
	}
	cal, err := calendar.NewClient(ctx, rt.Config.Calendar, loc, rt.Logger)
	if err != nil {
		return p, err
	}

	store := rt.DB.DB()
	emitter := outbox.NewEmitter(outbox.NewStore(store), rt.Logger)
	people := customers.NewRepository(store)

	var errs []error
	keep := func(err error) { errs = append(errs, err) }

	p.Customers, err = customers.NewService(people, rt.DB)
	keep(err)
	p.Orders, err = orders.NewService(orders.NewRepository(store), people, rt.DB, emitter, orderMetrics)
	keep(err)
	p.Production, err = production.NewService(production.NewRepository(store), rt.DB, loc, orderMetrics)
	keep(err)
	p.Inventory, err = inventory.NewService(inventory.NewRepository(store), rt.DB, emitter)
	keep(err)
	p.Events, err = events.NewService(events.NewRepository(store), rt.DB, cal, rt.Logger)
	keep(err)
	p.CityRequests, err = cityrequests.NewService(store, rt.DB)
	keep(err)
	return p, errors.Join(errs...)
}

func serve(ctx context.Context, rt *bootstrap.Runtime, srv *http.Server) error {
	failed := make(chan error, 1)
	go func() {
		rt.Logger.Info(rt.Logger.WithField(ctx, "addr", srv.Addr), "listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
