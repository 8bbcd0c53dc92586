package lifecycle

import (
	"time"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
)

// Publish marks ev as published. Publishing twice is a no-op. The first
// publish fails with NotLegal, leaving ev unchanged, when the legality
// invariants do not hold at now.
func Publish(ev *models.Event, now time.Time) error {
	if ev.Published {
		return nil
	}
	if err := CheckLegality(ev, now); err != nil {
		return err
	}
	ev.Published = true
	return nil
}

// Withdraw is the creator-initiated exit from OPEN or CLOSED. It empties
// the ledger, so notification recipients must be computed from a snapshot
// taken before calling it.
func Withdraw(ev *models.Event) (Transition, error) {
	if ev.State != models.StateOpen && ev.State != models.StateClosed {
		return Transition{}, apperror.WithMetadata(apperror.InvalidState, "event cannot be withdrawn from its current state",
			map[string]string{"event_id": ev.ID, "state": string(ev.State)})
	}
	t := Transition{From: ev.State, To: models.StateWithdrawn}
	ev.State = models.StateWithdrawn
	ev.Registrations = []models.Registration{}
	return t, nil
}
