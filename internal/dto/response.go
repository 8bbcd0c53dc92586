package dto

import (
	"time"

	"github.com/Eursukkul/group-events/internal/models"
	"github.com/Eursukkul/group-events/internal/schema"
)

type OptionalCostResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type EventResponse struct {
	ID                     string                 `json:"id"`
	CreatorID              string                 `json:"creator_id"`
	Type                   string                 `json:"type"`
	Title                  string                 `json:"title"`
	State                  models.EventState      `json:"state"`
	Published              bool                   `json:"published"`
	ParticipantsMin        int                    `json:"participants_min"`
	ParticipantsMax        int                    `json:"participants_max"`
	Participants           []string               `json:"participants"`
	RegistrationDeadline   time.Time              `json:"registration_deadline"`
	DeregistrationDeadline time.Time              `json:"deregistration_deadline"`
	StartDate              time.Time              `json:"start_date"`
	EndDate                *time.Time             `json:"end_date,omitempty"`
	Duration               string                 `json:"duration,omitempty"`
	BaseCost               float64                `json:"base_cost"`
	OptionalCosts          []OptionalCostResponse `json:"optional_costs"`
	Attributes             map[string]any         `json:"attributes,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
}

type CostResponse struct {
	EventID       string  `json:"event_id"`
	ParticipantID string  `json:"participant_id"`
	Total         float64 `json:"total"`
}

type InviteesResponse struct {
	EventID  string   `json:"event_id"`
	Invitees []string `json:"invitees"`
}

type SchemaResponse struct {
	Kind          schema.Kind    `json:"kind"`
	Fields        []schema.Field `json:"fields"`
	OptionalCosts []string       `json:"optional_costs"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Sex       string    `json:"sex,omitempty"`
	BirthDate time.Time `json:"birth_date"`
	Favorites []string  `json:"favorites"`
}

type ErrorResponse struct {
	Message  string            `json:"message"`
	Kind     string            `json:"kind,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func ToEventResponse(e *models.Event) EventResponse {
	resp := EventResponse{
		ID:                     e.ID,
		CreatorID:              e.CreatorID,
		Type:                   e.Type,
		Title:                  e.Title,
		State:                  e.State,
		Published:              e.Published,
		ParticipantsMin:        e.ParticipantsMin,
		ParticipantsMax:        e.ParticipantsMax,
		Participants:           e.ParticipantIDs(),
		RegistrationDeadline:   e.RegistrationDeadline,
		DeregistrationDeadline: e.DeregistrationDeadline,
		StartDate:              e.StartDate,
		EndDate:                e.EndDate,
		BaseCost:               e.BaseCost,
		OptionalCosts:          make([]OptionalCostResponse, len(e.OptionalCosts)),
		Attributes:             e.Attributes,
		CreatedAt:              e.CreatedAt,
	}
	if e.Duration != nil {
		resp.Duration = e.Duration.String()
	}
	for i, c := range e.OptionalCosts {
		resp.OptionalCosts[i] = OptionalCostResponse{ID: c.ID, Name: c.Name, Amount: c.Amount}
	}
	return resp
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

func ToSchemaResponse(s schema.Schema) SchemaResponse {
	return SchemaResponse{
		Kind:          s.Kind(),
		Fields:        s.Fields(),
		OptionalCosts: s.OptionalCostNames(),
	}
}

func ToUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Sex:       string(u.Sex),
		BirthDate: u.BirthDate,
		Favorites: make([]string, len(u.Favorites)),
	}
	for i, f := range u.Favorites {
		resp.Favorites[i] = f.Category
	}
	return resp
}
