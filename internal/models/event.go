package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

type EventState string

const (
	StateUnknown   EventState = "UNKNOWN"
	StateValid     EventState = "VALID"
	StateOpen      EventState = "OPEN"
	StateClosed    EventState = "CLOSED"
	StateEnded     EventState = "ENDED"
	StateFailed    EventState = "FAILED"
	StateWithdrawn EventState = "WITHDRAWN"
)

// TerminalStates never transition again.
var TerminalStates = []EventState{StateEnded, StateFailed, StateWithdrawn}

// IsTerminal reports whether s is ENDED, FAILED or WITHDRAWN.
func (s EventState) IsTerminal() bool {
	for _, t := range TerminalStates {
		if s == t {
			return true
		}
	}
	return false
}

// Event is the record of one group event together with its registration
// ledger. It is owned by a single writer at a time; see repository.Update.
type Event struct {
	ID                     string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatorID              string            `gorm:"type:varchar(36);not null;index" json:"creator_id"`
	Type                   string            `gorm:"type:varchar(50);not null;index" json:"type"`
	Title                  string            `gorm:"not null" json:"title"`
	Published              bool              `gorm:"not null;default:false" json:"published"`
	State                  EventState        `gorm:"type:varchar(20);not null;default:'UNKNOWN';index" json:"state"`
	ParticipantsMin        int               `gorm:"not null" json:"participants_min"`
	ParticipantsMax        int               `gorm:"not null" json:"participants_max"`
	RegistrationDeadline   time.Time         `gorm:"not null" json:"registration_deadline"`
	DeregistrationDeadline time.Time         `gorm:"not null" json:"deregistration_deadline"`
	StartDate              time.Time         `gorm:"not null" json:"start_date"`
	EndDate                *time.Time        `json:"end_date,omitempty"`
	Duration               *time.Duration    `json:"duration,omitempty"`
	BaseCost               float64           `gorm:"not null" json:"base_cost"`
	Attributes             datatypes.JSONMap `gorm:"type:jsonb" json:"attributes,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`

	OptionalCosts []OptionalCost `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"optional_costs"`
	Registrations []Registration `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"registrations"`
}

// OptionalCost is a named add-on a participant may select.
type OptionalCost struct {
	ID      string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_cost_event_name" json:"event_id"`
	Name    string  `gorm:"not null;uniqueIndex:idx_cost_event_name" json:"name"`
	Amount  float64 `gorm:"not null" json:"amount"`
}

// Size returns the number of ledger entries.
func (e *Event) Size() int {
	return len(e.Registrations)
}

// IsFull reports whether the ledger reached participantsMax.
func (e *Event) IsFull() bool {
	return len(e.Registrations) >= e.ParticipantsMax
}

// Registration returns the ledger entry for participantID, or nil.
func (e *Event) Registration(participantID string) *Registration {
	for i := range e.Registrations {
		if e.Registrations[i].ParticipantID == participantID {
			return &e.Registrations[i]
		}
	}
	return nil
}

// ParticipantIDs returns the ledger members sorted by id.
func (e *Event) ParticipantIDs() []string {
	ids := make([]string, 0, len(e.Registrations))
	for _, r := range e.Registrations {
		ids = append(ids, r.ParticipantID)
	}
	sort.Strings(ids)
	return ids
}

// Cost returns the optional cost with the given id, or nil.
func (e *Event) Cost(id string) *OptionalCost {
	for i := range e.OptionalCosts {
		if e.OptionalCosts[i].ID == id {
			return &e.OptionalCosts[i]
		}
	}
	return nil
}

// CostByName returns the optional cost with the given name, or nil.
func (e *Event) CostByName(name string) *OptionalCost {
	for i := range e.OptionalCosts {
		if e.OptionalCosts[i].Name == name {
			return &e.OptionalCosts[i]
		}
	}
	return nil
}

// Attribute returns a schema attribute as a string.
func (e *Event) Attribute(name string) (string, bool) {
	v, ok := e.Attributes[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Clone returns a deep copy. The lifecycle core works on snapshots when it
// must see the ledger as it was before a mutation.
func (e *Event) Clone() *Event {
	c := *e
	if e.EndDate != nil {
		end := *e.EndDate
		c.EndDate = &end
	}
	if e.Duration != nil {
		d := *e.Duration
		c.Duration = &d
	}
	if e.Attributes != nil {
		c.Attributes = make(datatypes.JSONMap, len(e.Attributes))
		for k, v := range e.Attributes {
			c.Attributes[k] = v
		}
	}
	if e.OptionalCosts != nil {
		c.OptionalCosts = append([]OptionalCost(nil), e.OptionalCosts...)
	}
	if e.Registrations != nil {
		c.Registrations = make([]Registration, len(e.Registrations))
		for i, r := range e.Registrations {
			c.Registrations[i] = r
			if r.SelectedCostIDs != nil {
				c.Registrations[i].SelectedCostIDs = append(datatypes.JSONSlice[string](nil), r.SelectedCostIDs...)
			}
		}
	}
	return &c
}
