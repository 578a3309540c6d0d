package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateEventRequest struct {
	TeamID           uint   `json:"teamId"`
	Type             string `json:"type"`
	Description      string `json:"description"`
	Points           *int   `json:"points"`
	OfficersInvolved string `json:"officersInvolved"`
	CreatedBy        string `json:"createdBy"`
	EventDate        string `json:"eventDate"`
	MonthYear        string `json:"monthYear"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TeamID, validation.Required),
		validation.Field(&req.Type, validation.Required),
		validation.Field(&req.Description, validation.Required),
		validation.Field(&req.Points, validation.NotNil),
	)
}

// UpdateEventRequest serves both PUT and PATCH; any subset of fields
// may be present.
type UpdateEventRequest struct {
	TeamID           *uint   `json:"teamId"`
	Type             *string `json:"type"`
	Description      *string `json:"description"`
	Points           *int    `json:"points"`
	OfficersInvolved *string `json:"officersInvolved"`
	CreatedBy        *string `json:"createdBy"`
	EventDate        *string `json:"eventDate"`
	MonthYear        *string `json:"monthYear"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.NilOrNotEmpty),
		validation.Field(&req.Description, validation.NilOrNotEmpty),
	)
}

type MonthRequest struct {
	Month string `json:"month"`
}

func (req *MonthRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Month, validation.Required),
	)
}

type SaveDataRequest struct {
	Month string         `json:"month"`
	Data  map[string]int `json:"data"`
}

func (req *SaveDataRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Month, validation.Required),
		validation.Field(&req.Data, validation.NotNil),
	)
}
