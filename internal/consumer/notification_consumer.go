package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/notify"
)

// NotificationConsumer stores the notification intents published by the
// lifecycle driver.
type NotificationConsumer struct {
	store notify.Store
	log   zerolog.Logger
	done  chan struct{}
}

func NewNotificationConsumer(store notify.Store, log zerolog.Logger) *NotificationConsumer {
	return &NotificationConsumer{store: store, log: log, done: make(chan struct{})}
}

// Start handles deliveries until msgs is closed.
func (nc *NotificationConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		defer close(nc.done)
		for msg := range msgs {
			nc.handleMessage(ctx, msg)
		}
		nc.log.Info().Msg("delivery channel closed, stopping notification consumer")
	}()
}

// Done is closed once the delivery channel has been drained.
func (nc *NotificationConsumer) Done() <-chan struct{} {
	return nc.done
}

func (nc *NotificationConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var intent notify.Intent
	if err := json.Unmarshal(msg.Body, &intent); err != nil || intent.ID == "" {
		nc.log.Error().Err(err).Str("routing_key", msg.RoutingKey).Msg("dropping malformed notification")
		_ = msg.Nack(false, false)
		return
	}

	if err := nc.store.Create(ctx, notify.ToNotification(intent)); err != nil {
		// Storage outages are retried; anything else would fail again.
		requeue := apperror.KindOf(err) == apperror.StorageUnavailable
		nc.log.Error().Err(err).
			Str("notification_id", intent.ID).
			Str("event_id", intent.EventID).
			Bool("requeue", requeue).
			Msg("failed to store notification")
		_ = msg.Nack(false, requeue)
		return
	}

	nc.log.Debug().
		Str("notification_id", intent.ID).
		Str("recipient_id", intent.RecipientID).
		Str("kind", string(intent.Kind)).
		Msg("notification stored")
	_ = msg.Ack(false)
}
