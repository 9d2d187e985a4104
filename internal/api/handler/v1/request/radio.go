package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/credenciamento/event-api/internal/domain"
)

type RadioLoanRequest struct {
	BorrowerName string     `json:"borrower_name"`
	BorrowerCPF  string     `json:"borrower_cpf"`
	Company      string     `json:"company"`
	Phone        string     `json:"phone"`
	Radios       []string   `json:"radios"`
	PickedUpAt   *time.Time `json:"picked_up_at"`
	Notes        string     `json:"notes"`
}

func (req *RadioLoanRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.BorrowerName, validation.Required, validation.Length(2, 150)),
		validation.Field(&req.Radios, validation.Required, validation.Each(validation.Required, validation.Length(1, 32))),
		validation.Field(&req.Notes, validation.Length(0, 500)),
	)
}

func (req *RadioLoanRequest) ToDomain(eventID uint) domain.RadioLoan {
	loan := domain.RadioLoan{
		EventID:      eventID,
		BorrowerName: req.BorrowerName,
		BorrowerCPF:  req.BorrowerCPF,
		Company:      req.Company,
		Phone:        req.Phone,
		Radios:       req.Radios,
		Notes:        req.Notes,
	}
	if req.PickedUpAt != nil {
		loan.PickedUpAt = *req.PickedUpAt
	}
	return loan
}

type RadioExchangeRequest struct {
	OldCode string `json:"old_code"`
	NewCode string `json:"new_code"`
	Reason  string `json:"reason"`
}

func (req *RadioExchangeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.OldCode, validation.Required),
		validation.Field(&req.NewCode, validation.Required),
		validation.Field(&req.Reason, validation.Length(0, 300)),
	)
}

type RadioReturnRequest struct {
	Codes []string   `json:"codes"`
	At    *time.Time `json:"at"`
}

func (req *RadioReturnRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Codes, validation.Required, validation.Each(validation.Required)),
	)
}
