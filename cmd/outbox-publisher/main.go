// Command outbox-publisher relays committed outbox rows to Pub/Sub.
package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sherryseats/orders-backend/internal/bootstrap"
	"github.com/sherryseats/orders-backend/pkg/metrics"
	"github.com/sherryseats/orders-backend/pkg/outbox"
	"github.com/sherryseats/orders-backend/pkg/outbox/registry"
	"github.com/sherryseats/orders-backend/pkg/pubsub"
)

func main() {
	bootstrap.Main("outbox-publisher", func(ctx context.Context, rt *bootstrap.Runtime) error {
		events, err := registry.NewEventRegistry(rt.Config.PubSub)
		if err != nil {
			return err
		}
		topics, err := pubsub.NewClient(ctx, rt.Config.GCP, events.Topics(), rt.Logger)
		if err != nil {
			return err
		}
		rt.OnClose("pubsub", topics.Close)

		relay, err := NewRelay(RelayParams{
			Config:      rt.Config,
			Logger:      rt.Logger,
			DB:          rt.DB,
			Store:       outbox.NewStore(rt.DB.DB()),
			DeadLetters: outbox.NewDeadLetters(rt.DB.DB()),
			Registry:    events,
			Sender:      pubsubSender{topics: topics},
			Metrics:     metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
			Pingers: map[string]func(context.Context) error{
				"database": rt.DB.Ping,
				"pubsub":   topics.Ping,
			},
		})
		if err != nil {
			return err
		}
		return relay.Run(ctx)
	})
}
