package request

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/credenciamento/event-api/internal/domain"
)

type StaffMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (m StaffMember) Validate() error {
	return validation.ValidateStruct(
		&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Email, is.Email),
	)
}

type EventDay struct {
	Date  string `json:"date"`
	Phase string `json:"phase"`
}

func (d EventDay) Validate() error {
	return validation.ValidateStruct(
		&d,
		validation.Field(&d.Date, validation.Required, validation.Date(domain.DayLayout)),
		validation.Field(&d.Phase, validation.Required, validation.In(string(domain.PhaseSetup), string(domain.PhaseEvent), string(domain.PhaseTeardown))),
	)
}

// EventRequest is the body of event create and update. Dates are
// YYYY-MM-DD.
type EventRequest struct {
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Venue             string        `json:"venue"`
	Address           string        `json:"address"`
	StartDate         string        `json:"start_date"`
	EndDate           string        `json:"end_date"`
	SetupStartDate    string        `json:"setup_start_date"`
	SetupEndDate      string        `json:"setup_end_date"`
	TeardownStartDate string        `json:"teardown_start_date"`
	TeardownEndDate   string        `json:"teardown_end_date"`
	Days              []EventDay    `json:"days"`
	Status            string        `json:"status"`
	Visibility        string        `json:"visibility"`
	Managers          []StaffMember `json:"managers"`
	Staff             []StaffMember `json:"staff"`
}

func (req *EventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.StartDate, validation.Required, validation.Date(domain.DayLayout)),
		validation.Field(&req.EndDate, validation.Date(domain.DayLayout)),
		validation.Field(&req.SetupStartDate, validation.Date(domain.DayLayout)),
		validation.Field(&req.SetupEndDate, validation.Date(domain.DayLayout)),
		validation.Field(&req.TeardownStartDate, validation.Date(domain.DayLayout)),
		validation.Field(&req.TeardownEndDate, validation.Date(domain.DayLayout)),
		validation.Field(&req.Days),
		validation.Field(&req.Status, validation.In(
			string(domain.EventActive), string(domain.EventInactive), string(domain.EventFinished), string(domain.EventCanceled),
		)),
		validation.Field(&req.Visibility, validation.In(string(domain.VisibilityPublic), string(domain.VisibilityPrivate))),
		validation.Field(&req.Managers),
		validation.Field(&req.Staff),
	)
}

// ToDomain converts a validated request.
func (req *EventRequest) ToDomain() (domain.Event, error) {
	event := domain.Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Address:     req.Address,
		Status:      domain.EventStatus(req.Status),
		Visibility:  domain.EventVisibility(req.Visibility),
		Days:        make([]domain.EventDay, 0, len(req.Days)),
		Managers:    toStaff(req.Managers),
		Staff:       toStaff(req.Staff),
	}

	var err error
	if event.StartDate, err = parseDay(req.StartDate); err != nil {
		return domain.Event{}, err
	}
	if event.EndDate, err = parseDay(req.EndDate); err != nil {
		return domain.Event{}, err
	}
	if event.SetupStartDate, err = parseOptionalDay(req.SetupStartDate); err != nil {
		return domain.Event{}, err
	}
	if event.SetupEndDate, err = parseOptionalDay(req.SetupEndDate); err != nil {
		return domain.Event{}, err
	}
	if event.TeardownStartDate, err = parseOptionalDay(req.TeardownStartDate); err != nil {
		return domain.Event{}, err
	}
	if event.TeardownEndDate, err = parseOptionalDay(req.TeardownEndDate); err != nil {
		return domain.Event{}, err
	}

	for _, d := range req.Days {
		event.Days = append(event.Days, domain.EventDay{Date: d.Date, Phase: domain.DayPhase(d.Phase)})
	}

	return event, nil
}

type EventStatusRequest struct {
	Status string `json:"status"`
}

func (req *EventStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.EventActive), string(domain.EventInactive), string(domain.EventFinished), string(domain.EventCanceled),
		)),
	)
}

type EventStaffRequest struct {
	Managers []StaffMember `json:"managers"`
	Staff    []StaffMember `json:"staff"`
}

func (req *EventStaffRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Managers),
		validation.Field(&req.Staff),
	)
}

func (req *EventStaffRequest) ToDomain() (managers, staff []domain.StaffMember) {
	return toStaff(req.Managers), toStaff(req.Staff)
}

func toStaff(in []StaffMember) []domain.StaffMember {
	out := make([]domain.StaffMember, 0, len(in))
	for _, m := range in {
		out = append(out, domain.StaffMember{Name: m.Name, Email: m.Email, Phone: m.Phone, Role: m.Role})
	}
	return out
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func parseOptionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
