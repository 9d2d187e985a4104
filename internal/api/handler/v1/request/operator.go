package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/credenciamento/event-api/internal/domain"
)

type OperatorRequest struct {
	Name     string `json:"name"`
	CPF      string `json:"cpf"`
	Password string `json:"password"`
	EventIDs []uint `json:"event_ids"`
}

func (req *OperatorRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.CPF, validation.Required),
		validation.Field(&req.Password, validation.By(validPassword)),
	)
}

// ValidateCreate also requires the initial password.
func (req *OperatorRequest) ValidateCreate() error {
	if err := req.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Password, validation.Required),
	)
}

func (req *OperatorRequest) ToDomain() domain.Operator {
	eventIDs := req.EventIDs
	if eventIDs == nil {
		eventIDs = []uint{}
	}
	return domain.Operator{
		Name:     req.Name,
		CPF:      req.CPF,
		Password: req.Password,
		EventIDs: eventIDs,
	}
}

type OperatorAction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	EventID       uint      `json:"event_id"`
	ParticipantID uint      `json:"participant_id"`
	At            time.Time `json:"at"`
}

func (a OperatorAction) Validate() error {
	return validation.ValidateStruct(
		&a,
		validation.Field(&a.Type, validation.Required),
		validation.Field(&a.At, validation.Required),
	)
}

func (a OperatorAction) ToDomain() domain.OperatorAction {
	return domain.OperatorAction{
		ID:            a.ID,
		Type:          a.Type,
		EventID:       a.EventID,
		ParticipantID: a.ParticipantID,
		At:            a.At,
	}
}

// OperatorSyncRequest carries the client copy of an operator record.
type OperatorSyncRequest struct {
	Name      string           `json:"name"`
	EventIDs  []uint           `json:"event_ids"`
	Actions   []OperatorAction `json:"actions"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (req *OperatorSyncRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.UpdatedAt, validation.Required),
		validation.Field(&req.Actions, validation.Length(0, domain.MaxOperatorActions)),
	)
}

func (req *OperatorSyncRequest) ToDomain(id uint) domain.Operator {
	op := domain.Operator{
		ID:        id,
		Name:      req.Name,
		EventIDs:  req.EventIDs,
		UpdatedAt: req.UpdatedAt,
		Actions:   make([]domain.OperatorAction, 0, len(req.Actions)),
	}
	if op.EventIDs == nil {
		op.EventIDs = []uint{}
	}
	for _, a := range req.Actions {
		op.Actions = append(op.Actions, a.ToDomain())
	}
	return op
}
