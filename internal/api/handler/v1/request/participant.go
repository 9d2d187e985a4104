package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/credenciamento/event-api/internal/domain"
)

type ParticipantRequest struct {
	Name         string   `json:"name"`
	CPF          string   `json:"cpf"`
	Document     string   `json:"document"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	CredentialID *uint    `json:"credential_id"`
	WorkDays     []string `json:"work_days"`
	Notes        string   `json:"notes"`
}

func (req *ParticipantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 150)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Company, validation.Length(0, 150)),
		validation.Field(&req.Role, validation.Length(0, 100)),
		validation.Field(&req.WorkDays, validation.Each(validation.Date(domain.DayLayout))),
		validation.Field(&req.Notes, validation.Length(0, 1000)),
	)
}

func (req *ParticipantRequest) ToDomain(eventID uint) domain.Participant {
	workDays := req.WorkDays
	if workDays == nil {
		workDays = []string{}
	}
	return domain.Participant{
		EventID:      eventID,
		Name:         req.Name,
		CPF:          req.CPF,
		Document:     req.Document,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Role:         req.Role,
		CredentialID: req.CredentialID,
		WorkDays:     workDays,
		Notes:        req.Notes,
	}
}

type CredentialRequest struct {
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Active   *bool    `json:"active"`
	WorkDays []string `json:"work_days"`
}

func (req *CredentialRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&req.Color, validation.Required),
		validation.Field(&req.WorkDays, validation.Each(validation.Date(domain.DayLayout))),
	)
}

func (req *CredentialRequest) ToDomain(eventID uint) domain.Credential {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	workDays := req.WorkDays
	if workDays == nil {
		workDays = []string{}
	}
	return domain.Credential{
		EventID:  eventID,
		Name:     req.Name,
		Color:    req.Color,
		Active:   active,
		WorkDays: workDays,
	}
}

type AssignCodeRequest struct {
	Code string `json:"code"`
}

func (req *AssignCodeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, 64)),
	)
}
