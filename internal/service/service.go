package service

import (
	"context"
	"errors"
	"time"

	"github.com/credenciamento/event-api/internal/cache"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/search"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

var (
	ErrPermissionDenied = errors.New("permission denied")
)

// now is replaced in tests.
var now = func() time.Time {
	return time.Now().UTC()
}

// Auditor records mutations. Failures are logged by the implementation and
// never abort the audited operation.
type Auditor interface {
	Record(ctx context.Context, actor domain.Actor, eventID *uint, entity string, entityID uint, action string, before, after any)
}

// Invalidator drops every cached value derived from an event.
type Invalidator interface {
	InvalidateEvent(eventID uint)
}

// EventCaches groups the per-event caches so that writes invalidate both.
type EventCaches struct {
	Search *search.Cache
	Stats  *cache.Cache
}

func (c *EventCaches) InvalidateEvent(eventID uint) {
	if c == nil {
		return
	}
	if c.Search != nil {
		c.Search.Invalidate(eventID)
	}
	if c.Stats != nil {
		c.Stats.InvalidateEvent(eventID)
	}
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, domain.Actor, *uint, string, uint, string, any, any) {}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateEvent(uint) {}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func eventRef(id uint) *uint {
	return &id
}
