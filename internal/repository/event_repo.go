package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Eursukkul/group-events/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, ev *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Save(ctx context.Context, ev *models.Event) error
	// Update loads the event under a row lock, runs fn and saves the result
	// in one transaction. Nothing is written when fn fails.
	Update(ctx context.Context, id string, fn func(ev *models.Event) error) error
	ListActive(ctx context.Context) ([]string, error)
	ListByCreator(ctx context.Context, creatorID string) ([]models.Event, error)
	ListByRegistrant(ctx context.Context, participantID string) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, ev *models.Event) error {
	return storageErr("create event", r.db.WithContext(ctx).Create(ev).Error)
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	ev, err := findEvent(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, storageErr("find event", err)
	}
	return ev, nil
}

func (r *eventRepository) Save(ctx context.Context, ev *models.Event) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveEvent(tx, ev)
	})
	return storageErr("save event", err)
}

func (r *eventRepository) Update(ctx context.Context, id string, fn func(ev *models.Event) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the event row; serializes writers of the same event.
		var locked models.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", id).Error; err != nil {
			return err
		}

		ev, err := findEvent(tx, id)
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return &callbackError{err: err}
		}
		return saveEvent(tx, ev)
	})
	return storageErr("update event", err)
}

func (r *eventRepository) ListActive(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("state NOT IN ?", models.TerminalStates).
		Order("registration_deadline ASC, id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, storageErr("list active events", err)
	}
	return ids, nil
}

func (r *eventRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.Event, error) {
	var events []models.Event
	err := withLedger(r.db.WithContext(ctx)).
		Where("creator_id = ?", creatorID).
		Order("start_date ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, storageErr("list events by creator", err)
	}
	return events, nil
}

func (r *eventRepository) ListByRegistrant(ctx context.Context, participantID string) ([]models.Event, error) {
	db := r.db.WithContext(ctx)
	sub := db.Model(&models.Registration{}).Select("event_id").Where("participant_id = ?", participantID)

	var events []models.Event
	err := withLedger(db).
		Where("id IN (?)", sub).
		Order("start_date ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, storageErr("list events by registrant", err)
	}
	return events, nil
}

func withLedger(q *gorm.DB) *gorm.DB {
	return q.
		Preload("OptionalCosts", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func findEvent(q *gorm.DB, id string) (*models.Event, error) {
	var ev models.Event
	if err := withLedger(q).First(&ev, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// saveEvent writes the event row and reconciles the ledger rows with
// ev.Registrations. Optional costs are fixed at creation and left alone.
func saveEvent(tx *gorm.DB, ev *models.Event) error {
	if err := tx.Omit(clause.Associations).Save(ev).Error; err != nil {
		return err
	}

	gone := tx.Where("event_id = ?", ev.ID)
	if ids := ev.ParticipantIDs(); len(ids) > 0 {
		gone = gone.Where("participant_id NOT IN ?", ids)
	}
	if err := gone.Delete(&models.Registration{}).Error; err != nil {
		return err
	}

	for i := range ev.Registrations {
		reg := &ev.Registrations[i]
		if reg.ID != 0 {
			continue
		}
		reg.EventID = ev.ID
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
	}
	return nil
}
