package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
	"github.com/Eursukkul/group-events/internal/notify"
)

// --- In-memory EventRepository ---

// memEvents mirrors the transactional contract of the gorm repository:
// Update works on a copy and stores it only when fn succeeds.
type memEvents struct {
	mu      sync.Mutex
	events  map[string]*models.Event
	nextReg uint
	saveErr error
}

func newMemEvents() *memEvents {
	return &memEvents{events: map[string]*models.Event{}}
}

func (m *memEvents) put(ev *models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = ev.Clone()
}

func (m *memEvents) get(id string) *models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id].Clone()
}

func (m *memEvents) Create(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = ev.Clone()
	return nil
}

func (m *memEvents) FindByID(_ context.Context, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "find event")
	}
	return ev.Clone(), nil
}

func (m *memEvents) Save(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = ev.Clone()
	return nil
}

func (m *memEvents) Update(_ context.Context, id string, fn func(ev *models.Event) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.events[id]
	if !ok {
		return apperror.New(apperror.NotFound, "update event")
	}
	ev := stored.Clone()
	if err := fn(ev); err != nil {
		return err
	}
	if m.saveErr != nil {
		return apperror.Wrap(apperror.StorageUnavailable, "update event", m.saveErr)
	}
	for i := range ev.Registrations {
		if ev.Registrations[i].ID == 0 {
			m.nextReg++
			ev.Registrations[i].ID = m.nextReg
		}
	}
	m.events[id] = ev.Clone()
	return nil
}

func (m *memEvents) ListActive(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, ev := range m.events {
		if !ev.State.IsTerminal() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memEvents) ListByCreator(_ context.Context, creatorID string) ([]models.Event, error) {
	return m.filter(func(ev *models.Event) bool { return ev.CreatorID == creatorID }), nil
}

func (m *memEvents) ListByRegistrant(_ context.Context, participantID string) ([]models.Event, error) {
	return m.filter(func(ev *models.Event) bool { return ev.Registration(participantID) != nil }), nil
}

func (m *memEvents) filter(keep func(ev *models.Event) bool) []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, ev := range m.events {
		if keep(ev) {
			out = append(out, *ev.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- Mock UserRepository ---

type mockUsers struct {
	profiles     map[string]models.Profile
	favorites    map[string][]string
	prior        []string
	usernameErr  error
	upsertFn     func(ctx context.Context, user *models.User) error
	priorCreator string
}

func (m *mockUsers) UsernameOf(_ context.Context, userID string) (string, error) {
	if m.usernameErr != nil {
		return "", m.usernameErr
	}
	return "name-" + userID, nil
}

func (m *mockUsers) ProfileOf(_ context.Context, userID string) (models.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return models.Profile{}, apperror.New(apperror.NotFound, "find profile")
	}
	return p, nil
}

func (m *mockUsers) UserIDsByFavoriteCategory(_ context.Context, category string) ([]string, error) {
	return m.favorites[category], nil
}

func (m *mockUsers) UserIDsWithPriorRegistration(_ context.Context, creatorID, _ string) ([]string, error) {
	m.priorCreator = creatorID
	return m.prior, nil
}

func (m *mockUsers) Upsert(ctx context.Context, user *models.User) error {
	return m.upsertFn(ctx, user)
}

// --- Recording sink ---

type recordingSink struct {
	mu      sync.Mutex
	intents []notify.Intent
}

func (s *recordingSink) Deliver(_ context.Context, in notify.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, in)
	return nil
}

func (s *recordingSink) kinds() []models.NotificationKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NotificationKind, len(s.intents))
	for i, in := range s.intents {
		out[i] = in.Kind
	}
	return out
}

func (s *recordingSink) recipients(kind models.NotificationKind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, in := range s.intents {
		if in.Kind == kind {
			out = append(out, in.RecipientID)
		}
	}
	return out
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = nil
}
