// Package cost aggregates an event's base cost with the optional costs a
// participant selected.
package cost

import (
	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
)

// Total returns the event's base cost plus the amount of every selected
// optional cost. Selections always come from the event's own cost list, so
// an unknown id is a caller defect and fails with UnknownCost.
func Total(ev *models.Event, selectedIDs []string) (float64, error) {
	total := ev.BaseCost
	for _, id := range selectedIDs {
		c := ev.Cost(id)
		if c == nil {
			return 0, apperror.WithMetadata(apperror.UnknownCost, "unknown optional cost",
				map[string]string{"event_id": ev.ID, "cost_id": id})
		}
		total += c.Amount
	}
	return total, nil
}

// Validate checks that every selected id belongs to the event without
// computing the total.
func Validate(ev *models.Event, selectedIDs []string) error {
	_, err := Total(ev, selectedIDs)
	return err
}

// ForParticipant returns the total for a ledger member using the costs
// stored with their registration.
func ForParticipant(ev *models.Event, participantID string) (float64, error) {
	reg := ev.Registration(participantID)
	if reg == nil {
		return 0, apperror.WithMetadata(apperror.NotRegistered, "participant not registered",
			map[string]string{"event_id": ev.ID, "participant_id": participantID})
	}
	return Total(ev, reg.SelectedCostIDs)
}
