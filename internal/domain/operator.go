package domain

import (
	"sort"
	"time"
)

// MaxOperatorActions bounds the action log kept on an operator record.
const MaxOperatorActions = 500

type OperatorAction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	EventID       uint      `json:"event_id"`
	ParticipantID uint      `json:"participant_id,omitempty"`
	At            time.Time `json:"at"`
}

type Operator struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	CPF       string           `json:"cpf"`
	Password  string           `json:"-"`
	EventIDs  []uint           `json:"event_ids"`
	Actions   []OperatorAction `json:"actions"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (o Operator) CanOperate(eventID uint) bool {
	for _, id := range o.EventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// MergeOperator resolves a client copy against the stored record. Scalar
// fields follow the most recent UpdatedAt; actions are unioned by ID.
func MergeOperator(stored, incoming Operator) Operator {
	merged := stored
	if incoming.UpdatedAt.After(stored.UpdatedAt) {
		merged.Name = incoming.Name
		merged.EventIDs = incoming.EventIDs
		merged.UpdatedAt = incoming.UpdatedAt
	}
	merged.Actions = MergeActions(stored.Actions, incoming.Actions)
	return merged
}

func MergeActions(a, b []OperatorAction) []OperatorAction {
	byID := make(map[string]OperatorAction, len(a)+len(b))
	for _, act := range a {
		byID[act.ID] = act
	}
	for _, act := range b {
		if act.ID == "" {
			continue
		}
		if _, ok := byID[act.ID]; !ok {
			byID[act.ID] = act
		}
	}

	out := make([]OperatorAction, 0, len(byID))
	for _, act := range byID {
		out = append(out, act)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})

	if len(out) > MaxOperatorActions {
		out = out[len(out)-MaxOperatorActions:]
	}
	return out
}
