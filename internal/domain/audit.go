package domain

import (
	"encoding/json"
	"time"
)

type ActorType string

const (
	ActorUser     ActorType = "user"
	ActorOperator ActorType = "operator"
	ActorSystem   ActorType = "system"
)

// Actor identifies who performs an operation.
type Actor struct {
	ID        uint
	Type      ActorType
	RequestID string
}

type AuditEntry struct {
	ID        uint            `json:"id"`
	ActorID   uint            `json:"actor_id"`
	ActorType ActorType       `json:"actor_type"`
	EventID   *uint           `json:"event_id,omitempty"`
	Entity    string          `json:"entity"`
	EntityID  uint            `json:"entity_id"`
	Action    string          `json:"action"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type AuditFilter struct {
	EventID  *uint
	Entity   string
	ActorID  *uint
	Action   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
