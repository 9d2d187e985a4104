package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrMovementNotFound   = dao.ErrMovementNotFound
	ErrMovementCodeExists = dao.ErrMovementCodeExists
)

type MovementDAO interface {
	FindByParticipant(ctx context.Context, participantID uint) (dao.MovementCredential, error)
	FindByCode(ctx context.Context, eventID uint, code string) (dao.MovementCredential, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.MovementCredential, error)
	Save(ctx context.Context, m dao.MovementCredential) (dao.MovementCredential, error)
}

type MovementRepository struct {
	dao MovementDAO
}

func NewMovementRepository(dao MovementDAO) *MovementRepository {
	return &MovementRepository{
		dao: dao,
	}
}

func (r *MovementRepository) FindByParticipant(ctx context.Context, participantID uint) (domain.MovementCredential, error) {
	found, err := r.dao.FindByParticipant(ctx, participantID)
	if err != nil {
		return domain.MovementCredential{}, fmt.Errorf("r.dao.FindByParticipant -> %w", err)
	}

	return movementDaoToDomain(found), nil
}

func (r *MovementRepository) FindByCode(ctx context.Context, eventID uint, code string) (domain.MovementCredential, error) {
	found, err := r.dao.FindByCode(ctx, eventID, code)
	if err != nil {
		return domain.MovementCredential{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return movementDaoToDomain(found), nil
}

func (r *MovementRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.MovementCredential, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	movements := make([]domain.MovementCredential, len(found))
	for i, m := range found {
		movements[i] = movementDaoToDomain(m)
	}
	return movements, nil
}

func (r *MovementRepository) Save(ctx context.Context, m domain.MovementCredential) (domain.MovementCredential, error) {
	saved, err := r.dao.Save(ctx, dao.MovementCredential{
		ID:            m.ID,
		EventID:       m.EventID,
		ParticipantID: m.ParticipantID,
		CurrentCode:   m.CurrentCode,
		History:       m.History,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	})
	if err != nil {
		return domain.MovementCredential{}, fmt.Errorf("r.dao.Save -> %w", err)
	}

	return movementDaoToDomain(saved), nil
}

func movementDaoToDomain(m dao.MovementCredential) domain.MovementCredential {
	return domain.MovementCredential{
		ID:            m.ID,
		EventID:       m.EventID,
		ParticipantID: m.ParticipantID,
		CurrentCode:   m.CurrentCode,
		History:       m.History,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
