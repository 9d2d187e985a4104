package response

import "github.com/credenciamento/event-api/internal/domain"

type AttendanceHistory struct {
	ParticipantID uint                      `json:"participant_id"`
	Records       []domain.AttendanceRecord `json:"records"`
	Days          []domain.AttendanceDay    `json:"days"`
}

type MovementHolder struct {
	Participant domain.Participant        `json:"participant"`
	Movement    domain.MovementCredential `json:"movement"`
}

type DayReport struct {
	Day  string                       `json:"day"`
	Rows []domain.AttendanceReportRow `json:"rows"`
}

type Outstanding struct {
	EventID     uint  `json:"event_id"`
	Outstanding int64 `json:"outstanding"`
}
