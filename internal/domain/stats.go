package domain

type CountByLabel struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type EventStats struct {
	EventID           uint           `json:"event_id"`
	TotalParticipants int64          `json:"total_participants"`
	CheckedIn         int64          `json:"checked_in"`
	CheckedOut        int64          `json:"checked_out"`
	Absent            int64          `json:"absent"`
	ByCredential      []CountByLabel `json:"by_credential"`
	ByCompany         []CountByLabel `json:"by_company"`
	RadiosOut         int64          `json:"radios_out"`
}
