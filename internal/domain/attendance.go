package domain

import (
	"sort"
	"time"
)

type AttendanceRecord struct {
	ID            uint       `json:"id"`
	EventID       uint       `json:"event_id"`
	ParticipantID uint       `json:"participant_id"`
	Day           string     `json:"day"`
	CheckIn       time.Time  `json:"check_in"`
	CheckOut      *time.Time `json:"check_out"`
	OperatorID    *uint      `json:"operator_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (r AttendanceRecord) IsOpen() bool {
	return r.CheckOut == nil
}

// AttendanceDay is the reconciled presence of a participant on one day.
type AttendanceDay struct {
	Day      string           `json:"day"`
	Status   AttendanceStatus `json:"status"`
	CheckIn  *time.Time       `json:"check_in"`
	CheckOut *time.Time       `json:"check_out"`
	Legacy   bool             `json:"legacy,omitempty"`
}

// ReconcileAttendance merges the base check-in/check-out of a participant
// with its attendance history. Records always win over the base fields; a
// base check-in with no record on its day is reported as a legacy entry.
// Work days without any movement are reported as absent.
func ReconcileAttendance(p Participant, records []AttendanceRecord, loc *time.Location) []AttendanceDay {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]*AttendanceDay)

	sorted := make([]AttendanceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CheckIn.Before(sorted[j].CheckIn) })

	for _, r := range sorted {
		if r.ParticipantID != p.ID {
			continue
		}
		checkIn := r.CheckIn
		day, ok := byDay[r.Day]
		if !ok {
			day = &AttendanceDay{Day: r.Day, CheckIn: &checkIn}
			byDay[r.Day] = day
		}
		// The first check-in of the day is kept, the latest movement decides the status.
		if r.CheckOut != nil {
			checkOut := *r.CheckOut
			day.CheckOut = &checkOut
			day.Status = StatusCheckedOut
		} else {
			day.CheckOut = nil
			day.Status = StatusPresent
		}
	}

	if p.CheckIn != nil {
		day := p.CheckIn.In(loc).Format(DayLayout)
		if _, ok := byDay[day]; !ok {
			checkIn := *p.CheckIn
			entry := &AttendanceDay{Day: day, CheckIn: &checkIn, Status: StatusPresent, Legacy: true}
			if p.CheckOut != nil && !p.CheckOut.Before(*p.CheckIn) {
				checkOut := *p.CheckOut
				entry.CheckOut = &checkOut
				entry.Status = StatusCheckedOut
			}
			byDay[day] = entry
		}
	}

	for _, wd := range p.WorkDays {
		if _, ok := byDay[wd]; !ok {
			byDay[wd] = &AttendanceDay{Day: wd, Status: StatusAbsent}
		}
	}

	out := make([]AttendanceDay, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })

	return out
}

// StatusOn returns the reconciled status of a single day.
func StatusOn(days []AttendanceDay, day string) AttendanceStatus {
	for _, d := range days {
		if d.Day == day {
			return d.Status
		}
	}
	return StatusAbsent
}

type AttendanceReportRow struct {
	Participant Participant      `json:"participant"`
	Status      AttendanceStatus `json:"status"`
	CheckIn     *time.Time       `json:"check_in"`
	CheckOut    *time.Time       `json:"check_out"`
}
