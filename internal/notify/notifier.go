// Package notify turns lifecycle transitions into notification-intents and
// hands them to a delivery sink.
package notify

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/cost"
	"github.com/Eursukkul/group-events/internal/lifecycle"
	"github.com/Eursukkul/group-events/internal/models"
)

// Intent describes one message to generate for one recipient.
type Intent struct {
	ID          string                  `json:"id"`
	EventID     string                  `json:"event_id"`
	RecipientID string                  `json:"recipient_id"`
	Kind        models.NotificationKind `json:"kind"`
	Context     map[string]string       `json:"context"`
}

// Directory is the part of the user directory the notifier reads.
type Directory interface {
	UsernameOf(ctx context.Context, userID string) (string, error)
	UserIDsByFavoriteCategory(ctx context.Context, category string) ([]string, error)
}

// Notifier maps transitions to intent batches.
type Notifier struct {
	dir   Directory
	newID func() string
}

func NewNotifier(dir Directory) *Notifier {
	return &Notifier{dir: dir, newID: uuid.NewString}
}

// Intents returns the batch for transition t. ev must be the event as it
// was when t fired; for WITHDRAWN that is the snapshot taken before the
// ledger was emptied. Callers invoke it exactly once per observed
// transition.
func (n *Notifier) Intents(ctx context.Context, ev *models.Event, t lifecycle.Transition) ([]Intent, error) {
	switch t.To {
	case models.StateOpen:
		if t.Reopened() {
			return nil, nil
		}
		return n.favorites(ctx, ev)
	case models.StateClosed:
		return n.participantsAndCreator(ctx, ev, models.KindEventSucceeded, true)
	case models.StateFailed:
		return n.participantsAndCreator(ctx, ev, models.KindEventFailed, false)
	case models.StateWithdrawn:
		return n.participants(ctx, ev, models.KindEventWithdrawn)
	}
	return nil, nil
}

func (n *Notifier) favorites(ctx context.Context, ev *models.Event) ([]Intent, error) {
	ids, err := n.dir.UserIDsByFavoriteCategory(ctx, ev.Type)
	if err != nil {
		return nil, err
	}
	intents := make([]Intent, 0, len(ids))
	for _, id := range ids {
		in, err := n.intent(ctx, ev, id, models.KindNewFavoriteCategoryEvent)
		if err != nil {
			return nil, err
		}
		intents = append(intents, in)
	}
	return intents, nil
}

func (n *Notifier) participants(ctx context.Context, ev *models.Event, kind models.NotificationKind) ([]Intent, error) {
	ids := ev.ParticipantIDs()
	intents := make([]Intent, 0, len(ids))
	for _, id := range ids {
		in, err := n.intent(ctx, ev, id, kind)
		if err != nil {
			return nil, err
		}
		intents = append(intents, in)
	}
	return intents, nil
}

func (n *Notifier) participantsAndCreator(ctx context.Context, ev *models.Event, kind models.NotificationKind, withCost bool) ([]Intent, error) {
	intents, err := n.participants(ctx, ev, kind)
	if err != nil {
		return nil, err
	}
	if withCost {
		for i := range intents {
			total, err := cost.ForParticipant(ev, intents[i].RecipientID)
			if err != nil {
				return nil, err
			}
			intents[i].Context["total_cost"] = strconv.FormatFloat(total, 'f', 2, 64)
		}
	}
	if ev.Registration(ev.CreatorID) != nil {
		return intents, nil
	}

	in, err := n.intent(ctx, ev, ev.CreatorID, kind)
	if err != nil {
		return nil, err
	}
	in.Context["role"] = "creator"
	in.Context["participants"] = strconv.Itoa(ev.Size())
	return append(intents, in), nil
}

func (n *Notifier) intent(ctx context.Context, ev *models.Event, recipientID string, kind models.NotificationKind) (Intent, error) {
	// Recipients missing from the directory still get their intent; the
	// renderer falls back to a generic greeting.
	name, err := n.dir.UsernameOf(ctx, recipientID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return Intent{}, err
	}
	return Intent{
		ID:          n.newID(),
		EventID:     ev.ID,
		RecipientID: recipientID,
		Kind:        kind,
		Context: map[string]string{
			"event_id":   ev.ID,
			"event_type": ev.Type,
			"title":      ev.Title,
			"start_date": ev.StartDate.Format(time.RFC3339),
			"username":   name,
		},
	}, nil
}
