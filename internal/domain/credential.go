package domain

import "time"

type Credential struct {
	ID               uint      `json:"id"`
	EventID          uint      `json:"event_id"`
	Name             string    `json:"name"`
	Color            string    `json:"color"`
	Active           bool      `json:"active"`
	Distributed      bool      `json:"distributed"`
	WorkDays         []string  `json:"work_days"`
	ParticipantCount int64     `json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CodeChange struct {
	Code      string    `json:"code"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy uint      `json:"changed_by"`
}

// MovementCredential tracks the wristband code currently held by a
// participant and the codes held before it.
type MovementCredential struct {
	ID            uint         `json:"id"`
	EventID       uint         `json:"event_id"`
	ParticipantID uint         `json:"participant_id"`
	CurrentCode   string       `json:"current_code"`
	History       []CodeChange `json:"history"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Assign moves the current code into the history and installs code.
// It reports false when code is already the current one.
func (m *MovementCredential) Assign(code string, by uint, at time.Time) bool {
	if m.CurrentCode == code {
		return false
	}
	if m.CurrentCode != "" {
		m.History = append(m.History, CodeChange{
			Code:      m.CurrentCode,
			ChangedAt: at,
			ChangedBy: by,
		})
	}
	m.CurrentCode = code
	return true
}
