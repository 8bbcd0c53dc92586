package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Eursukkul/group-events/internal/models"
)

// RoutingKeyPrefix prefixes the kind in the routing key of published intents.
const RoutingKeyPrefix = "notification."

// Sink accepts one intent at a time. What happens after is out of our hands.
type Sink interface {
	Deliver(ctx context.Context, intent Intent) error
}

// Publisher is satisfied by *rabbitmq.Publisher.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// PublisherSink fans intents out over the message broker.
type PublisherSink struct {
	pub Publisher
}

func NewPublisherSink(pub Publisher) *PublisherSink {
	return &PublisherSink{pub: pub}
}

func (s *PublisherSink) Deliver(_ context.Context, intent Intent) error {
	if err := s.pub.Publish(RoutingKeyPrefix+string(intent.Kind), intent); err != nil {
		return fmt.Errorf("publish intent %s: %w", intent.ID, err)
	}
	return nil
}

// Store is satisfied by repository.NotificationRepository.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
}

// StoreSink writes intents straight into the notification table.
type StoreSink struct {
	store Store
}

func NewStoreSink(store Store) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Deliver(ctx context.Context, intent Intent) error {
	return s.store.Create(ctx, ToNotification(intent))
}

// ToNotification converts an intent into its stored form.
func ToNotification(intent Intent) *models.Notification {
	c := make(datatypes.JSONMap, len(intent.Context))
	for k, v := range intent.Context {
		c[k] = v
	}
	return &models.Notification{
		ID:          intent.ID,
		EventID:     intent.EventID,
		RecipientID: intent.RecipientID,
		Kind:        intent.Kind,
		Context:     c,
	}
}

// Dispatch delivers a batch in order. Delivery failures are logged and do
// not stop the batch; the transition that produced it is already committed.
func Dispatch(ctx context.Context, sink Sink, log zerolog.Logger, intents []Intent) int {
	delivered := 0
	for _, in := range intents {
		if err := sink.Deliver(ctx, in); err != nil {
			log.Warn().Err(err).
				Str("event_id", in.EventID).
				Str("recipient_id", in.RecipientID).
				Str("kind", string(in.Kind)).
				Msg("failed to deliver notification")
			continue
		}
		delivered++
	}
	return delivered
}
