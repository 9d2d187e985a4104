package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// AttendanceRequest is the body of check-in and check-out. At defaults to
// the server time.
type AttendanceRequest struct {
	At    *time.Time `json:"at"`
	Notes string     `json:"notes"`
}

func (req *AttendanceRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Notes, validation.Length(0, 500)),
	)
}
