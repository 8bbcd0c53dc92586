package models

import (
	"time"

	"gorm.io/datatypes"
)

// Registration is one ledger entry. (EventID, ParticipantID) is unique.
type Registration struct {
	ID              uint                        `gorm:"primaryKey" json:"-"`
	EventID         string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_registration_event_participant" json:"event_id"`
	ParticipantID   string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_registration_event_participant;index" json:"participant_id"`
	SelectedCostIDs datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"selected_cost_ids,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}
