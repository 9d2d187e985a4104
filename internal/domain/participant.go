package domain

import "time"

type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "present"
	StatusCheckedOut AttendanceStatus = "checked_out"
	StatusAbsent     AttendanceStatus = "absent"
)

type Participant struct {
	ID           uint        `json:"id"`
	EventID      uint        `json:"event_id"`
	Name         string      `json:"name"`
	CPF          string      `json:"cpf"`
	Document     string      `json:"document,omitempty"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Company      string      `json:"company"`
	Role         string      `json:"role"`
	CredentialID *uint       `json:"credential_id"`
	Credential   *Credential `json:"credential,omitempty"`
	CheckIn      *time.Time  `json:"check_in"`
	CheckOut     *time.Time  `json:"check_out"`
	WorkDays     []string    `json:"work_days"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CurrentStatus derives the presence of the participant from the base
// check-in/check-out fields.
func (p Participant) CurrentStatus() AttendanceStatus {
	switch {
	case p.CheckIn == nil:
		return StatusAbsent
	case p.CheckOut != nil && !p.CheckOut.Before(*p.CheckIn):
		return StatusCheckedOut
	default:
		return StatusPresent
	}
}

func (p Participant) WorksOn(day string) bool {
	if len(p.WorkDays) == 0 {
		return true
	}
	for _, d := range p.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}

type ParticipantFilter struct {
	Search       string
	CredentialID *uint
	Company      string
	Status       AttendanceStatus
	WorkDay      string
	Page         int
	PageSize     int
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
