package domain

import (
	"sort"
	"time"
)

// DayLayout is the wire and storage format of calendar days.
const DayLayout = "2006-01-02"

type EventStatus string

const (
	EventActive   EventStatus = "active"
	EventInactive EventStatus = "inactive"
	EventFinished EventStatus = "finished"
	EventCanceled EventStatus = "canceled"
)

type EventVisibility string

const (
	VisibilityPublic  EventVisibility = "public"
	VisibilityPrivate EventVisibility = "private"
)

type DayPhase string

const (
	PhaseSetup    DayPhase = "setup"
	PhaseEvent    DayPhase = "event"
	PhaseTeardown DayPhase = "teardown"
)

var phaseOrder = map[DayPhase]int{
	PhaseSetup:    0,
	PhaseEvent:    1,
	PhaseTeardown: 2,
}

type EventDay struct {
	Date  string   `json:"date"`
	Phase DayPhase `json:"phase"`
}

type StaffMember struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

type HistoryEntry struct {
	Action  string    `json:"action"`
	ActorID uint      `json:"actor_id"`
	Details string    `json:"details,omitempty"`
	At      time.Time `json:"at"`
}

type Event struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Address     string `json:"address"`

	// Legacy day ranges. Days is derived from them when empty.
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	SetupStartDate    *time.Time `json:"setup_start_date,omitempty"`
	SetupEndDate      *time.Time `json:"setup_end_date,omitempty"`
	TeardownStartDate *time.Time `json:"teardown_start_date,omitempty"`
	TeardownEndDate   *time.Time `json:"teardown_end_date,omitempty"`
	Days              []EventDay `json:"days"`

	Status     EventStatus     `json:"status"`
	Visibility EventVisibility `json:"visibility"`

	Managers []StaffMember  `json:"managers"`
	Staff    []StaffMember  `json:"staff"`
	History  []HistoryEntry `json:"history"`

	ParticipantCount int64 `json:"participant_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EventFilter struct {
	Status     EventStatus
	Visibility EventVisibility
	Search     string
}

// NormalizeDays returns the event days, deriving them from the legacy ranges
// when none were set. The result is unique per (date, phase) and sorted.
func (e Event) NormalizeDays() []EventDay {
	seen := make(map[EventDay]struct{})
	days := make([]EventDay, 0, len(e.Days))

	add := func(d EventDay) {
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}

	if len(e.Days) > 0 {
		for _, d := range e.Days {
			add(d)
		}
	} else {
		if e.SetupStartDate != nil && e.SetupEndDate != nil {
			for _, day := range DaysBetween(*e.SetupStartDate, *e.SetupEndDate) {
				add(EventDay{Date: day, Phase: PhaseSetup})
			}
		}
		if !e.StartDate.IsZero() {
			end := e.EndDate
			if end.IsZero() {
				end = e.StartDate
			}
			for _, day := range DaysBetween(e.StartDate, end) {
				add(EventDay{Date: day, Phase: PhaseEvent})
			}
		}
		if e.TeardownStartDate != nil && e.TeardownEndDate != nil {
			for _, day := range DaysBetween(*e.TeardownStartDate, *e.TeardownEndDate) {
				add(EventDay{Date: day, Phase: PhaseTeardown})
			}
		}
	}

	sort.SliceStable(days, func(i, j int) bool {
		if days[i].Date != days[j].Date {
			return days[i].Date < days[j].Date
		}
		return phaseOrder[days[i].Phase] < phaseOrder[days[j].Phase]
	})

	return days
}

// HasDay reports whether day belongs to the normalized event days.
func (e Event) HasDay(day string) bool {
	for _, d := range e.NormalizeDays() {
		if d.Date == day {
			return true
		}
	}
	return false
}

func (e *Event) AppendHistory(action string, actorID uint, details string, at time.Time) {
	e.History = append(e.History, HistoryEntry{
		Action:  action,
		ActorID: actorID,
		Details: details,
		At:      at,
	})
}

// DaysBetween lists every calendar day from start to end inclusive.
// It returns nil when end is before start.
func DaysBetween(start, end time.Time) []string {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return nil
	}

	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayLayout))
	}
	return days
}

func IsValidEventStatus(s EventStatus) bool {
	switch s {
	case EventActive, EventInactive, EventFinished, EventCanceled:
		return true
	}
	return false
}
