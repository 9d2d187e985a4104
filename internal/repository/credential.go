package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrCredentialNotFound   = dao.ErrCredentialNotFound
	ErrCredentialNameExists = dao.ErrCredentialNameExists
)

type CredentialDAO interface {
	Insert(ctx context.Context, credential dao.Credential) (dao.Credential, error)
	Update(ctx context.Context, credential dao.Credential) (dao.Credential, error)
	FindByID(ctx context.Context, id uint) (dao.Credential, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.Credential, error)
	FindByName(ctx context.Context, eventID uint, name string) (dao.Credential, error)
	Delete(ctx context.Context, id uint) error
	CountParticipants(ctx context.Context, eventID uint) (map[uint]int64, error)
}

type CredentialRepository struct {
	dao CredentialDAO
}

func NewCredentialRepository(dao CredentialDAO) *CredentialRepository {
	return &CredentialRepository{
		dao: dao,
	}
}

func (r *CredentialRepository) Create(ctx context.Context, credential domain.Credential) (domain.Credential, error) {
	created, err := r.dao.Insert(ctx, credentialDomainToDao(credential))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return credentialDaoToDomain(created), nil
}

func (r *CredentialRepository) Update(ctx context.Context, credential domain.Credential) (domain.Credential, error) {
	updated, err := r.dao.Update(ctx, credentialDomainToDao(credential))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return credentialDaoToDomain(updated), nil
}

func (r *CredentialRepository) FindByID(ctx context.Context, id uint) (domain.Credential, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	counts, err := r.dao.CountParticipants(ctx, found.EventID)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	credential := credentialDaoToDomain(found)
	credential.ParticipantCount = counts[found.ID]
	return credential, nil
}

func (r *CredentialRepository) FindByName(ctx context.Context, eventID uint, name string) (domain.Credential, error) {
	found, err := r.dao.FindByName(ctx, eventID, name)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("r.dao.FindByName -> %w", err)
	}

	return credentialDaoToDomain(found), nil
}

// FindByEvent lists the credentials of an event with their participant counts.
func (r *CredentialRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.Credential, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	counts, err := r.dao.CountParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	credentials := make([]domain.Credential, len(found))
	for i, c := range found {
		credentials[i] = credentialDaoToDomain(c)
		credentials[i].ParticipantCount = counts[c.ID]
	}
	return credentials, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func credentialDomainToDao(c domain.Credential) dao.Credential {
	return dao.Credential{
		ID:          c.ID,
		EventID:     c.EventID,
		Name:        c.Name,
		Color:       c.Color,
		Active:      c.Active,
		Distributed: c.Distributed,
		WorkDays:    c.WorkDays,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func credentialDaoToDomain(c dao.Credential) domain.Credential {
	return domain.Credential{
		ID:          c.ID,
		EventID:     c.EventID,
		Name:        c.Name,
		Color:       c.Color,
		Active:      c.Active,
		Distributed: c.Distributed,
		WorkDays:    c.WorkDays,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
