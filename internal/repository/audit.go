package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

type AuditDAO interface {
	Insert(ctx context.Context, entry dao.AuditEntry) (dao.AuditEntry, error)
	Find(ctx context.Context, q dao.AuditQuery) ([]dao.AuditEntry, int64, error)
}

type AuditRepository struct {
	dao AuditDAO
}

func NewAuditRepository(dao AuditDAO) *AuditRepository {
	return &AuditRepository{
		dao: dao,
	}
}

func (r *AuditRepository) Create(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	created, err := r.dao.Insert(ctx, dao.AuditEntry{
		ActorID:   entry.ActorID,
		ActorType: string(entry.ActorType),
		EventID:   entry.EventID,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Action:    entry.Action,
		Before:    string(entry.Before),
		After:     string(entry.After),
		RequestID: entry.RequestID,
	})
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return auditDaoToDomain(created), nil
}

func (r *AuditRepository) Find(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	found, total, err := r.dao.Find(ctx, dao.AuditQuery{
		EventID:  filter.EventID,
		Entity:   filter.Entity,
		ActorID:  filter.ActorID,
		Action:   filter.Action,
		From:     filter.From,
		To:       filter.To,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Find -> %w", err)
	}

	entries := make([]domain.AuditEntry, len(found))
	for i, e := range found {
		entries[i] = auditDaoToDomain(e)
	}
	return entries, total, nil
}

func auditDaoToDomain(e dao.AuditEntry) domain.AuditEntry {
	entry := domain.AuditEntry{
		ID:        e.ID,
		ActorID:   e.ActorID,
		ActorType: domain.ActorType(e.ActorType),
		EventID:   e.EventID,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Action:    e.Action,
		RequestID: e.RequestID,
		CreatedAt: e.CreatedAt,
	}
	if e.Before != "" {
		entry.Before = json.RawMessage(e.Before)
	}
	if e.After != "" {
		entry.After = json.RawMessage(e.After)
	}
	return entry
}
