// Package ledger adds and removes participants from an event's registration
// ledger. It enforces capacity, duplicate and deadline rules only; callers
// check schema eligibility before Register and run the lifecycle engine
// afterwards.
package ledger

import (
	"time"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/cost"
	"github.com/Eursukkul/group-events/internal/models"
)

// Register adds participantID to the ledger with the given optional cost
// selection. The event is left untouched when an error is returned.
func Register(ev *models.Event, participantID string, now time.Time, selectedCostIDs ...string) error {
	if ev.Size() >= ev.ParticipantsMax {
		return apperror.WithMetadata(apperror.Full, "event is full", map[string]string{"event_id": ev.ID})
	}
	if ev.Registration(participantID) != nil {
		return alreadyRegistered(ev, participantID)
	}
	if err := cost.Validate(ev, selectedCostIDs); err != nil {
		return err
	}
	add(ev, participantID, now, selectedCostIDs)
	return nil
}

// RegisterRestoring rebuilds a ledger entry from storage. Capacity is not
// checked, duplicates still are.
func RegisterRestoring(ev *models.Event, participantID string, selectedCostIDs ...string) error {
	if ev.Registration(participantID) != nil {
		return alreadyRegistered(ev, participantID)
	}
	add(ev, participantID, time.Time{}, selectedCostIDs)
	return nil
}

// Deregister removes participantID from the ledger.
func Deregister(ev *models.Event, participantID string, now time.Time) error {
	if ev.Size() == 0 {
		return apperror.WithMetadata(apperror.Empty, "no participants registered", map[string]string{"event_id": ev.ID})
	}
	if ev.Registration(participantID) == nil {
		return apperror.WithMetadata(apperror.NotRegistered, "participant not registered",
			map[string]string{"event_id": ev.ID, "participant_id": participantID})
	}
	if now.After(ev.DeregistrationDeadline) {
		return apperror.WithMetadata(apperror.DeadlinePassed, "deregistration deadline has passed",
			map[string]string{"event_id": ev.ID, "deadline": ev.DeregistrationDeadline.Format(time.RFC3339)})
	}

	kept := make([]models.Registration, 0, len(ev.Registrations)-1)
	for _, r := range ev.Registrations {
		if r.ParticipantID != participantID {
			kept = append(kept, r)
		}
	}
	ev.Registrations = kept
	return nil
}

func add(ev *models.Event, participantID string, now time.Time, selectedCostIDs []string) {
	reg := models.Registration{
		EventID:       ev.ID,
		ParticipantID: participantID,
		CreatedAt:     now,
	}
	if len(selectedCostIDs) > 0 {
		reg.SelectedCostIDs = append([]string(nil), selectedCostIDs...)
	}
	ev.Registrations = append(ev.Registrations, reg)
}

func alreadyRegistered(ev *models.Event, participantID string) error {
	return apperror.WithMetadata(apperror.AlreadyRegistered, "participant already registered",
		map[string]string{"event_id": ev.ID, "participant_id": participantID})
}
