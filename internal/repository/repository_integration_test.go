//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/ledger"
	"github.com/Eursukkul/group-events/internal/models"
)

var base = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleEvent(id, creator string) *models.Event {
	d := 2 * time.Hour
	return &models.Event{
		ID:                     id,
		CreatorID:              creator,
		Type:                   "mountain_hiking",
		Title:                  "Ridge walk",
		Published:              true,
		State:                  models.StateOpen,
		ParticipantsMin:        2,
		ParticipantsMax:        3,
		RegistrationDeadline:   base.Add(72 * time.Hour),
		DeregistrationDeadline: base.Add(48 * time.Hour),
		StartDate:              base.Add(96 * time.Hour),
		Duration:               &d,
		BaseCost:               18.5,
		Attributes:             map[string]any{"difficulty": "medium"},
		OptionalCosts: []models.OptionalCost{
			{ID: id + "-guide", EventID: id, Name: "guide", Amount: 30},
			{ID: id + "-lunch", EventID: id, Name: "lunch", Amount: 9.5},
		},
		Registrations: []models.Registration{},
	}
}

func TestEventRepository_RoundTrip(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	repo := NewEventRepository(testDB)
	ev := sampleEvent("ev-1", "carol")
	require.NoError(t, repo.Create(ctx, ev))

	err := repo.Update(ctx, ev.ID, func(e *models.Event) error {
		if err := ledger.Register(e, "alice", base, "ev-1-guide"); err != nil {
			return err
		}
		if err := ledger.Register(e, "bob", base); err != nil {
			return err
		}
		e.State = models.StateClosed
		return nil
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateClosed, got.State)
	assert.Equal(t, []string{"alice", "bob"}, got.ParticipantIDs())
	assert.Equal(t, []string{"ev-1-guide"}, []string(got.Registration("alice").SelectedCostIDs))
	assert.True(t, ev.RegistrationDeadline.Equal(got.RegistrationDeadline))
	assert.True(t, ev.DeregistrationDeadline.Equal(got.DeregistrationDeadline))
	assert.True(t, ev.StartDate.Equal(got.StartDate))
	require.NotNil(t, got.Duration)
	assert.Equal(t, *ev.Duration, *got.Duration)
	assert.Nil(t, got.EndDate)
	assert.InDelta(t, 18.5, got.BaseCost, 1e-9)
	assert.Equal(t, "medium", got.Attributes["difficulty"])
	require.Len(t, got.OptionalCosts, 2)
	assert.Equal(t, "guide", got.OptionalCosts[0].Name)
	assert.InDelta(t, 9.5, got.OptionalCosts[1].Amount, 1e-9)
}

func TestEventRepository_UpdateCallbackErrorRollsBack(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	repo := NewEventRepository(testDB)
	require.NoError(t, repo.Create(ctx, sampleEvent("ev-2", "carol")))

	err := repo.Update(ctx, "ev-2", func(e *models.Event) error {
		_ = ledger.Register(e, "alice", base)
		return apperror.New(apperror.NotEligible, "nope")
	})

	assert.ErrorIs(t, err, apperror.ErrNotEligible)
	got, err := repo.FindByID(ctx, "ev-2")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Size())
}

func TestEventRepository_DeregisterRemovesRow(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	repo := NewEventRepository(testDB)
	require.NoError(t, repo.Create(ctx, sampleEvent("ev-3", "carol")))

	require.NoError(t, repo.Update(ctx, "ev-3", func(e *models.Event) error {
		return ledger.Register(e, "alice", base)
	}))
	require.NoError(t, repo.Update(ctx, "ev-3", func(e *models.Event) error {
		return ledger.Deregister(e, "alice", base)
	}))

	got, err := repo.FindByID(ctx, "ev-3")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Size())

	var rows int64
	testDB.Model(&models.Registration{}).Where("event_id = ?", "ev-3").Count(&rows)
	assert.Zero(t, rows)
}

func TestEventRepository_NotFound(t *testing.T) {
	cleanTables()
	repo := NewEventRepository(testDB)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = repo.Update(context.Background(), "missing", func(*models.Event) error { return nil })
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEventRepository_Listings(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	repo := NewEventRepository(testDB)

	open := sampleEvent("ev-open", "carol")
	ended := sampleEvent("ev-ended", "carol")
	ended.State = models.StateEnded
	other := sampleEvent("ev-other", "dave")
	for _, ev := range []*models.Event{open, ended, other} {
		require.NoError(t, repo.Create(ctx, ev))
	}
	require.NoError(t, repo.Update(ctx, "ev-other", func(e *models.Event) error {
		return ledger.Register(e, "alice", base)
	}))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ev-open", "ev-other"}, active)

	mine, err := repo.ListByCreator(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	joined, err := repo.ListByRegistrant(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "ev-other", joined[0].ID)
}

func TestUserRepository(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	users := NewUserRepository(testDB)
	events := NewEventRepository(testDB)

	alice := &models.User{
		ID:        "alice",
		Username:  "Alice",
		Sex:       models.SexFemale,
		BirthDate: time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC),
		Favorites: []models.FavoriteCategory{{Category: "cinema"}, {Category: "mountain_hiking"}},
	}
	require.NoError(t, users.Upsert(ctx, alice))
	alice.Favorites = []models.FavoriteCategory{{Category: "mountain_hiking"}}
	require.NoError(t, users.Upsert(ctx, alice))

	name, err := users.UsernameOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = users.UsernameOf(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err := users.ProfileOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.SexFemale, p.Sex)

	ids, err := users.UserIDsByFavoriteCategory(ctx, "cinema")
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = users.UserIDsByFavoriteCategory(ctx, "mountain_hiking")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)

	past := sampleEvent("ev-past", "carol")
	past.State = models.StateEnded
	require.NoError(t, events.Create(ctx, past))
	require.NoError(t, events.Update(ctx, "ev-past", func(e *models.Event) error {
		if err := ledger.Register(e, "alice", base); err != nil {
			return err
		}
		return ledger.Register(e, "carol", base)
	}))

	ids, err = users.UserIDsWithPriorRegistration(ctx, "carol", "mountain_hiking")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)
}

func TestNotificationRepository(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	repo := NewNotificationRepository(testDB)

	n := &models.Notification{
		ID:          "n-1",
		EventID:     "ev-1",
		RecipientID: "alice",
		Kind:        models.KindEventSucceeded,
		Context:     map[string]any{"total_cost": "48.50"},
	}
	require.NoError(t, repo.Create(ctx, n))
	dup := *n
	require.NoError(t, repo.Create(ctx, &dup), "redelivery is ignored")

	all, err := repo.ListByRecipient(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "48.50", all[0].Context["total_cost"])

	require.NoError(t, repo.MarkRead(ctx, "alice", "n-1"))
	unread, err := repo.ListByRecipient(ctx, "alice", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	err = repo.MarkRead(ctx, "bob", "n-1")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
