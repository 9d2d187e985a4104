// Package realtime publishes row changes of the operators table so that
// connected dashboards and field devices can refresh their local copies.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

type Change struct {
	ID        string          `json:"id"`
	Table     string          `json:"table"`
	Type      ChangeType      `json:"type"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
	At        time.Time       `json:"at"`
}

// NewChange encodes record and old (either may be nil) into a change.
func NewChange(table string, typ ChangeType, record, old any) (Change, error) {
	c := Change{
		ID:    uuid.NewString(),
		Table: table,
		Type:  typ,
		At:    time.Now().UTC(),
	}

	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return Change{}, fmt.Errorf("json.Marshal record -> %w", err)
		}
		c.Record = raw
	}
	if old != nil {
		raw, err := json.Marshal(old)
		if err != nil {
			return Change{}, fmt.Errorf("json.Marshal old record -> %w", err)
		}
		c.OldRecord = raw
	}

	return c, nil
}

// Broker fans changes out to subscribers. Subscribe returns a channel that
// is closed once ctx is done.
type Broker interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context) (<-chan Change, error)
	Close() error
}
