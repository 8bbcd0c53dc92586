package dto

import "time"

// CreateEventRequest carries the raw form values for the schema named by Type.
type CreateEventRequest struct {
	CreatorID string            `json:"creator_id" validate:"required"`
	Type      string            `json:"type" validate:"required"`
	Values    map[string]string `json:"values" validate:"required"`
}

type RegisterRequest struct {
	ParticipantID string   `json:"participant_id" validate:"required"`
	OptionalCosts []string `json:"optional_costs" validate:"omitempty,dive,required"`
}

type UpsertUserRequest struct {
	Username  string    `json:"username" validate:"required,max=64"`
	Sex       string    `json:"sex" validate:"omitempty,oneof=female male other"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Favorites []string  `json:"favorites" validate:"omitempty,dive,required"`
}
