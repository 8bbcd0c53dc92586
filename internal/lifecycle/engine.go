// Package lifecycle decides when an event moves between states.
//
// Advance is a pure function of an event snapshot and the current time. It
// reports at most one transition per call; drivers apply it, persist, and
// call again until nothing fires, producing one notification batch for each
// transition they observed.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/Eursukkul/group-events/internal/models"
)

// DefaultEndGrace is how long after its start an event without end date or
// duration is considered over.
const DefaultEndGrace = 24 * time.Hour

// Transition is a single state change.
type Transition struct {
	From models.EventState
	To   models.EventState
}

func (t Transition) String() string {
	return fmt.Sprintf("%s->%s", t.From, t.To)
}

// Reopened reports whether t is a CLOSED->OPEN transition caused by a freed slot.
func (t Transition) Reopened() bool {
	return t.From == models.StateClosed && t.To == models.StateOpen
}

// Engine evaluates the transition table.
type Engine struct {
	// EndGrace replaces DefaultEndGrace when positive.
	EndGrace time.Duration
}

// NewEngine returns an engine using the given end grace, or DefaultEndGrace
// when grace is not positive.
func NewEngine(grace time.Duration) *Engine {
	if grace <= 0 {
		grace = DefaultEndGrace
	}
	return &Engine{EndGrace: grace}
}

func (e *Engine) endGrace() time.Duration {
	if e == nil || e.EndGrace <= 0 {
		return DefaultEndGrace
	}
	return e.EndGrace
}

// Advance returns the transition that fires for ev at now, if any.
func (e *Engine) Advance(ev *models.Event, now time.Time) (Transition, bool) {
	next, ok := e.next(ev, now)
	if !ok {
		return Transition{}, false
	}
	return Transition{From: ev.State, To: next}, true
}

func (e *Engine) next(ev *models.Event, now time.Time) (models.EventState, bool) {
	beforeDeadline := !now.After(ev.RegistrationDeadline)
	size := ev.Size()

	switch ev.State {
	case models.StateUnknown:
		if CheckLegality(ev, now) == nil {
			return models.StateValid, true
		}
	case models.StateValid:
		if ev.Published && beforeDeadline {
			return models.StateOpen, true
		}
	case models.StateOpen:
		switch {
		case beforeDeadline && size >= ev.ParticipantsMax:
			return models.StateClosed, true
		case !beforeDeadline && size < ev.ParticipantsMin:
			return models.StateFailed, true
		case !beforeDeadline:
			return models.StateClosed, true
		}
	case models.StateClosed:
		// A freed slot only reopens while registration is still possible;
		// after the deadline the event stays closed however many remain.
		if size < ev.ParticipantsMax && beforeDeadline {
			return models.StateOpen, true
		}
		if now.After(e.EndOf(ev)) {
			return models.StateEnded, true
		}
	}
	return "", false
}

// EndOf returns the instant after which a closed event counts as over. An
// explicit end date wins over a duration; with neither, the engine's end
// grace after the start applies.
func (e *Engine) EndOf(ev *models.Event) time.Time {
	switch {
	case ev.EndDate != nil:
		return *ev.EndDate
	case ev.Duration != nil:
		return ev.StartDate.Add(*ev.Duration)
	default:
		return ev.StartDate.Add(e.endGrace())
	}
}

// Apply commits t to ev. It refuses transitions whose source does not match
// the current state so a stale transition cannot be applied twice.
func Apply(ev *models.Event, t Transition) error {
	if ev.State != t.From {
		return fmt.Errorf("apply %s: event %s is in state %s", t, ev.ID, ev.State)
	}
	ev.State = t.To
	return nil
}

// maxSteps bounds Drive. At one instant the table fires at most three
// transitions (UNKNOWN->VALID->OPEN->CLOSED); reaching the bound means a cycle.
const maxSteps = 8

// Drive applies transitions to ev until none fires, calling observe after
// each one with the transition and a snapshot of the event right after it.
// An observe error stops the loop and is returned.
func (e *Engine) Drive(ev *models.Event, now time.Time, observe func(Transition, *models.Event) error) ([]Transition, error) {
	var fired []Transition
	for i := 0; i < maxSteps; i++ {
		t, ok := e.Advance(ev, now)
		if !ok {
			return fired, nil
		}
		if err := Apply(ev, t); err != nil {
			return fired, err
		}
		fired = append(fired, t)
		if observe != nil {
			if err := observe(t, ev.Clone()); err != nil {
				return fired, err
			}
		}
	}
	return fired, fmt.Errorf("event %s: lifecycle did not settle after %d transitions", ev.ID, maxSteps)
}
