package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/credenciamento/event-api/internal/domain"
)

type AuditRepository interface {
	Create(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	Find(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
}

type AuditService struct {
	repo AuditRepository
}

func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

func (s *AuditService) Record(ctx context.Context, actor domain.Actor, eventID *uint, entity string, entityID uint, action string, before, after any) {
	entry := domain.AuditEntry{
		ActorID:   actor.ID,
		ActorType: actor.Type,
		EventID:   eventID,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		RequestID: actor.RequestID,
	}
	if entry.ActorType == "" {
		entry.ActorType = domain.ActorSystem
	}

	var err error
	if entry.Before, err = marshalSnapshot(before); err != nil {
		zap.L().Warn("audit: encode before snapshot", zap.String("entity", entity), zap.Error(err))
	}
	if entry.After, err = marshalSnapshot(after); err != nil {
		zap.L().Warn("audit: encode after snapshot", zap.String("entity", entity), zap.Error(err))
	}

	if _, err = s.repo.Create(ctx, entry); err != nil {
		zap.L().Error("audit: s.repo.Create",
			zap.String("entity", entity),
			zap.Uint("entity_id", entityID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) (domain.Page[domain.AuditEntry], error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	entries, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return domain.Page[domain.AuditEntry]{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return domain.Page[domain.AuditEntry]{
		Items:    entries,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
