package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/cost"
	"github.com/Eursukkul/group-events/internal/ledger"
	"github.com/Eursukkul/group-events/internal/lifecycle"
	"github.com/Eursukkul/group-events/internal/models"
	"github.com/Eursukkul/group-events/internal/notify"
	"github.com/Eursukkul/group-events/internal/repository"
	"github.com/Eursukkul/group-events/internal/schema"
)

type EventService interface {
	CreateEvent(ctx context.Context, creatorID string, d *schema.Draft) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListByCreator(ctx context.Context, creatorID string) ([]models.Event, error)
	ListByRegistrant(ctx context.Context, participantID string) ([]models.Event, error)
	Publish(ctx context.Context, id string) (*models.Event, error)
	Register(ctx context.Context, eventID, participantID string, costNames []string) (*models.Event, error)
	Deregister(ctx context.Context, eventID, participantID string) (*models.Event, error)
	Withdraw(ctx context.Context, eventID string) (*models.Event, error)
	TotalCost(ctx context.Context, eventID, participantID string) (float64, error)
	SuggestInvitees(ctx context.Context, eventID string) ([]string, error)
	// Sweep drives every non-terminal event to the current time and returns
	// the number of transitions that fired.
	Sweep(ctx context.Context) (int, error)
}

type eventService struct {
	events   repository.EventRepository
	users    repository.UserRepository
	notifier *notify.Notifier
	sink     notify.Sink
	engine   *lifecycle.Engine
	log      zerolog.Logger
	now      func() time.Time
}

func NewEventService(
	events repository.EventRepository,
	users repository.UserRepository,
	sink notify.Sink,
	engine *lifecycle.Engine,
	log zerolog.Logger,
	now func() time.Time,
) EventService {
	if now == nil {
		now = time.Now
	}
	return &eventService{
		events:   events,
		users:    users,
		notifier: notify.NewNotifier(users),
		sink:     sink,
		engine:   engine,
		log:      log,
		now:      now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, creatorID string, d *schema.Draft) (*models.Event, error) {
	if creatorID == "" {
		return nil, apperror.New(apperror.InvalidInput, "creator id is required")
	}
	now := s.now()
	ev := newEvent(creatorID, d)
	if err := lifecycle.CheckLegality(ev, now); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	s.log.Info().Str("event_id", ev.ID).Str("type", ev.Type).Str("creator_id", creatorID).Msg("event created")

	return s.mutate(ctx, ev.ID, func(*models.Event, time.Time, *batches) error { return nil })
}

func newEvent(creatorID string, d *schema.Draft) *models.Event {
	ev := &models.Event{
		ID:                   uuid.NewString(),
		CreatorID:            creatorID,
		Type:                 string(d.Kind),
		Title:                d.Title,
		State:                models.StateUnknown,
		ParticipantsMin:      d.ParticipantsMin,
		ParticipantsMax:      d.ParticipantsMin + d.Surplus,
		RegistrationDeadline: d.RegistrationDeadline,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		Duration:             d.Duration,
		BaseCost:             d.BaseCost,
		Registrations:        []models.Registration{},
	}
	// Without an explicit value participants may leave until registration closes.
	ev.DeregistrationDeadline = d.RegistrationDeadline
	if d.DeregistrationDeadline != nil {
		ev.DeregistrationDeadline = *d.DeregistrationDeadline
	}

	names := make([]string, 0, len(d.OptionalCosts))
	for name := range d.OptionalCosts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ev.OptionalCosts = append(ev.OptionalCosts, models.OptionalCost{
			ID:      uuid.NewString(),
			EventID: ev.ID,
			Name:    name,
			Amount:  d.OptionalCosts[name],
		})
	}

	if len(d.Attributes) > 0 {
		ev.Attributes = make(datatypes.JSONMap, len(d.Attributes))
		for k, v := range d.Attributes {
			ev.Attributes[k] = v
		}
	}
	return ev
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *eventService) ListByCreator(ctx context.Context, creatorID string) ([]models.Event, error) {
	return s.events.ListByCreator(ctx, creatorID)
}

func (s *eventService) ListByRegistrant(ctx context.Context, participantID string) ([]models.Event, error) {
	return s.events.ListByRegistrant(ctx, participantID)
}

func (s *eventService) Publish(ctx context.Context, id string) (*models.Event, error) {
	return s.mutate(ctx, id, func(ev *models.Event, now time.Time, _ *batches) error {
		return lifecycle.Publish(ev, now)
	})
}

func (s *eventService) Register(ctx context.Context, eventID, participantID string, costNames []string) (*models.Event, error) {
	if participantID == "" {
		return nil, apperror.New(apperror.InvalidInput, "participant id is required")
	}
	return s.mutate(ctx, eventID, func(ev *models.Event, now time.Time, _ *batches) error {
		if now.After(ev.RegistrationDeadline) {
			return apperror.WithMetadata(apperror.DeadlinePassed, "registration deadline has passed",
				map[string]string{"event_id": ev.ID, "deadline": ev.RegistrationDeadline.Format(time.RFC3339)})
		}
		if ev.State != models.StateOpen && ev.State != models.StateClosed {
			return apperror.WithMetadata(apperror.NotOpen, "event is not open for registration",
				map[string]string{"event_id": ev.ID, "state": string(ev.State)})
		}

		sch, err := schema.Lookup(ev.Type)
		if err != nil {
			return err
		}
		profile, err := s.users.ProfileOf(ctx, participantID)
		if err != nil {
			return err
		}
		if !sch.Eligible(ev, profile, now) {
			return apperror.WithMetadata(apperror.NotEligible, "participant does not meet the event requirements",
				map[string]string{"event_id": ev.ID, "participant_id": participantID})
		}

		costIDs, err := resolveCosts(ev, costNames)
		if err != nil {
			return err
		}
		return ledger.Register(ev, participantID, now, costIDs...)
	})
}

// resolveCosts maps the cost names a participant picked to the event's cost
// ids. Names come from the client, so an unknown one is bad input rather
// than UnknownCost.
func resolveCosts(ev *models.Event, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		c := ev.CostByName(name)
		if c == nil {
			return nil, apperror.WithMetadata(apperror.InvalidInput, "event has no optional cost "+name,
				map[string]string{"event_id": ev.ID, "cost": name})
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *eventService) Deregister(ctx context.Context, eventID, participantID string) (*models.Event, error) {
	return s.mutate(ctx, eventID, func(ev *models.Event, now time.Time, _ *batches) error {
		return ledger.Deregister(ev, participantID, now)
	})
}

func (s *eventService) Withdraw(ctx context.Context, eventID string) (*models.Event, error) {
	return s.mutate(ctx, eventID, func(ev *models.Event, _ time.Time, b *batches) error {
		before := ev.Clone()
		t, err := lifecycle.Withdraw(ev)
		if err != nil {
			return err
		}
		return b.observe(ctx, s.notifier, t, before)
	})
}

func (s *eventService) TotalCost(ctx context.Context, eventID, participantID string) (float64, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return cost.ForParticipant(ev, participantID)
}

func (s *eventService) SuggestInvitees(ctx context.Context, eventID string) ([]string, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids, err := s.users.UserIDsWithPriorRegistration(ctx, ev.CreatorID, ev.Type)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ev.Registration(id) == nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *eventService) Sweep(ctx context.Context) (int, error) {
	ids, err := s.events.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fired, err
		}
		n, err := s.drive(ctx, id, func(*models.Event, time.Time, *batches) error { return nil })
		if err != nil {
			s.log.Error().Err(err).Str("event_id", id).Msg("sweep failed for event")
			continue
		}
		fired += n
	}
	return fired, nil
}

// batches collects one intent batch per observed transition, in order.
type batches struct {
	transitions []lifecycle.Transition
	intents     [][]notify.Intent
}

func (b *batches) observe(ctx context.Context, n *notify.Notifier, t lifecycle.Transition, ev *models.Event) error {
	in, err := n.Intents(ctx, ev, t)
	if err != nil {
		return err
	}
	b.transitions = append(b.transitions, t)
	b.intents = append(b.intents, in)
	return nil
}

type mutation func(ev *models.Event, now time.Time, b *batches) error

func (s *eventService) mutate(ctx context.Context, id string, fn mutation) (*models.Event, error) {
	ev, _, err := s.run(ctx, id, fn)
	return ev, err
}

func (s *eventService) drive(ctx context.Context, id string, fn mutation) (int, error) {
	_, n, err := s.run(ctx, id, fn)
	return n, err
}

// run applies fn and the lifecycle loop to the event under its row lock.
// Intents are built inside the transaction so a directory failure rolls the
// whole step back; they are delivered only after commit.
func (s *eventService) run(ctx context.Context, id string, fn mutation) (*models.Event, int, error) {
	now := s.now()
	var (
		b      batches
		result *models.Event
	)
	err := s.events.Update(ctx, id, func(ev *models.Event) error {
		b = batches{}
		if err := fn(ev, now, &b); err != nil {
			return err
		}
		_, err := s.engine.Drive(ev, now, func(t lifecycle.Transition, snap *models.Event) error {
			return b.observe(ctx, s.notifier, t, snap)
		})
		result = ev
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	for i, t := range b.transitions {
		s.log.Info().Str("event_id", id).Str("transition", t.String()).Int("intents", len(b.intents[i])).Msg("event transitioned")
		notify.Dispatch(ctx, s.sink, s.log, b.intents[i])
	}
	return result, len(b.transitions), nil
}
