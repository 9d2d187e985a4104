package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrCredentialNotFound   = repository.ErrCredentialNotFound
	ErrCredentialNameExists = repository.ErrCredentialNameExists
	ErrCredentialInUse      = errors.New("credential is still assigned to participants")
	ErrInvalidColor         = errors.New("color must be in #RRGGBB format")
)

var colorExp = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const defaultCredentialColor = "#000000"

type CredentialRepository interface {
	Create(ctx context.Context, credential domain.Credential) (domain.Credential, error)
	Update(ctx context.Context, credential domain.Credential) (domain.Credential, error)
	FindByID(ctx context.Context, id uint) (domain.Credential, error)
	FindByName(ctx context.Context, eventID uint, name string) (domain.Credential, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Credential, error)
	Delete(ctx context.Context, id uint) error
}

type CredentialService struct {
	repo   CredentialRepository
	events EventReader
	audit  Auditor
	caches Invalidator
}

func NewCredentialService(repo CredentialRepository, events EventReader, audit Auditor, caches Invalidator) *CredentialService {
	if audit == nil {
		audit = nopAuditor{}
	}
	if caches == nil {
		caches = nopInvalidator{}
	}
	return &CredentialService{
		repo:   repo,
		events: events,
		audit:  audit,
		caches: caches,
	}
}

func (s *CredentialService) CreateCredential(ctx context.Context, actor domain.Actor, c domain.Credential) (domain.Credential, error) {
	if err := s.prepare(ctx, &c, 0); err != nil {
		return domain.Credential{}, err
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.caches.InvalidateEvent(c.EventID)
	s.audit.Record(ctx, actor, eventRef(c.EventID), "credential", created.ID, "create", nil, created)
	return created, nil
}

func (s *CredentialService) GetCredential(ctx context.Context, eventID, id uint) (domain.Credential, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if c.EventID != eventID {
		return domain.Credential{}, ErrCredentialNotFound
	}

	return c, nil
}

func (s *CredentialService) ListCredentials(ctx context.Context, eventID uint) ([]domain.Credential, error) {
	credentials, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
	}

	return credentials, nil
}

func (s *CredentialService) UpdateCredential(ctx context.Context, actor domain.Actor, c domain.Credential) (domain.Credential, error) {
	existing, err := s.GetCredential(ctx, c.EventID, c.ID)
	if err != nil {
		return domain.Credential{}, err
	}

	if err = s.prepare(ctx, &c, existing.ID); err != nil {
		return domain.Credential{}, err
	}
	c.CreatedAt = existing.CreatedAt

	return s.save(ctx, actor, existing, c, "update")
}

func (s *CredentialService) ToggleActive(ctx context.Context, actor domain.Actor, eventID, id uint) (domain.Credential, error) {
	existing, err := s.GetCredential(ctx, eventID, id)
	if err != nil {
		return domain.Credential{}, err
	}

	updated := existing
	updated.Active = !existing.Active
	return s.save(ctx, actor, existing, updated, "toggle_active")
}

func (s *CredentialService) ToggleDistributed(ctx context.Context, actor domain.Actor, eventID, id uint) (domain.Credential, error) {
	existing, err := s.GetCredential(ctx, eventID, id)
	if err != nil {
		return domain.Credential{}, err
	}

	updated := existing
	updated.Distributed = !existing.Distributed
	return s.save(ctx, actor, existing, updated, "toggle_distributed")
}

// DeleteCredential refuses to delete a credential that participants still hold.
func (s *CredentialService) DeleteCredential(ctx context.Context, actor domain.Actor, eventID, id uint) error {
	existing, err := s.GetCredential(ctx, eventID, id)
	if err != nil {
		return err
	}
	if existing.ParticipantCount > 0 {
		return ErrCredentialInUse
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.caches.InvalidateEvent(eventID)
	s.audit.Record(ctx, actor, eventRef(eventID), "credential", id, "delete", existing, nil)
	return nil
}

func (s *CredentialService) save(ctx context.Context, actor domain.Actor, before, c domain.Credential, action string) (domain.Credential, error) {
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("s.repo.Update -> %w", err)
	}
	updated.ParticipantCount = before.ParticipantCount

	s.caches.InvalidateEvent(c.EventID)
	s.audit.Record(ctx, actor, eventRef(c.EventID), "credential", c.ID, action, before, updated)
	return updated, nil
}

func (s *CredentialService) prepare(ctx context.Context, c *domain.Credential, selfID uint) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if c.Color == "" {
		c.Color = defaultCredentialColor
	}
	if !colorExp.MatchString(c.Color) {
		return ErrInvalidColor
	}

	event, err := s.events.FindByID(ctx, c.EventID)
	if err != nil {
		return fmt.Errorf("s.events.FindByID -> %w", err)
	}

	found, err := s.repo.FindByName(ctx, c.EventID, c.Name)
	switch {
	case err == nil && found.ID != selfID:
		return ErrCredentialNameExists
	case err != nil && !errors.Is(err, repository.ErrCredentialNotFound):
		return fmt.Errorf("s.repo.FindByName -> %w", err)
	}

	days, err := checkWorkDays(event, c.WorkDays)
	if err != nil {
		return err
	}
	c.WorkDays = days

	return nil
}
