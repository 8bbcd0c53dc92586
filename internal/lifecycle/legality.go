package lifecycle

import (
	"math"
	"time"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
)

// Rule names reported in the NotLegal error metadata.
const (
	RuleStartAfterRegistration  = "start_after_registration_deadline"
	RuleRegistrationInFuture    = "registration_deadline_not_passed"
	RuleEndAfterStart           = "end_after_start"
	RuleEndCoversDuration       = "end_covers_duration"
	RuleNonNegativeDuration     = "non_negative_duration"
	RuleDeregistrationBeforeReg = "deregistration_before_registration_deadline"
	RuleNonNegativeCosts        = "non_negative_costs"
	RuleParticipantBounds       = "participant_bounds"
)

// CheckLegality verifies the temporal and numeric invariants an event must
// satisfy to become VALID or be published. It returns a NotLegal error
// naming the first violated rule.
func CheckLegality(ev *models.Event, now time.Time) error {
	switch {
	case ev.StartDate.Before(ev.RegistrationDeadline):
		return notLegal(ev, RuleStartAfterRegistration, "start date is before the registration deadline")
	case now.After(ev.RegistrationDeadline):
		return notLegal(ev, RuleRegistrationInFuture, "registration deadline has already passed")
	case ev.EndDate != nil && ev.EndDate.Before(ev.StartDate):
		return notLegal(ev, RuleEndAfterStart, "end date is before the start date")
	case ev.Duration != nil && *ev.Duration < 0:
		return notLegal(ev, RuleNonNegativeDuration, "duration is negative")
	case ev.EndDate != nil && ev.Duration != nil && ev.EndDate.Before(ev.StartDate.Add(*ev.Duration)):
		return notLegal(ev, RuleEndCoversDuration, "end date is before start date plus duration")
	case ev.DeregistrationDeadline.After(ev.RegistrationDeadline):
		return notLegal(ev, RuleDeregistrationBeforeReg, "deregistration deadline is after the registration deadline")
	case ev.ParticipantsMin < 0 || ev.ParticipantsMax < ev.ParticipantsMin:
		return notLegal(ev, RuleParticipantBounds, "participant bounds are inconsistent")
	case ev.ParticipantsMax < 1:
		return notLegal(ev, RuleParticipantBounds, "event admits no participants")
	}

	// Negated comparisons so NaN fails too.
	if !(ev.BaseCost >= 0) || math.IsInf(ev.BaseCost, 1) {
		return notLegal(ev, RuleNonNegativeCosts, "base cost is negative or not finite")
	}
	for _, c := range ev.OptionalCosts {
		if !(c.Amount >= 0) || math.IsInf(c.Amount, 1) {
			return notLegal(ev, RuleNonNegativeCosts, "optional cost "+c.Name+" is negative or not finite")
		}
	}
	return nil
}

func notLegal(ev *models.Event, rule, msg string) error {
	return apperror.WithMetadata(apperror.NotLegal, msg, map[string]string{
		"event_id": ev.ID,
		"rule":     rule,
	})
}
