package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrMovementNotFound    = repository.ErrMovementNotFound
	ErrEmptyCredentialCode = errors.New("credential code is required")
	ErrCredentialCodeInUse = errors.New("credential code is held by another participant")
)

type MovementRepository interface {
	FindByParticipant(ctx context.Context, participantID uint) (domain.MovementCredential, error)
	FindByCode(ctx context.Context, eventID uint, code string) (domain.MovementCredential, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.MovementCredential, error)
	Save(ctx context.Context, m domain.MovementCredential) (domain.MovementCredential, error)
}

type ParticipantReader interface {
	FindByID(ctx context.Context, id uint) (domain.Participant, error)
}

type MovementService struct {
	repo         MovementRepository
	participants ParticipantReader
	audit        Auditor
}

func NewMovementService(repo MovementRepository, participants ParticipantReader, audit Auditor) *MovementService {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &MovementService{
		repo:         repo,
		participants: participants,
		audit:        audit,
	}
}

// AssignCode gives the wristband code to the participant. Re-assigning the
// current code is a no-op.
func (s *MovementService) AssignCode(ctx context.Context, actor domain.Actor, eventID, participantID uint, code string) (domain.MovementCredential, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.MovementCredential{}, ErrEmptyCredentialCode
	}

	if _, err := participantOfEvent(ctx, s.participants, eventID, participantID); err != nil {
		return domain.MovementCredential{}, err
	}

	holder, err := s.repo.FindByCode(ctx, eventID, code)
	switch {
	case err == nil && holder.ParticipantID != participantID:
		return domain.MovementCredential{}, ErrCredentialCodeInUse
	case err != nil && !errors.Is(err, repository.ErrMovementNotFound):
		return domain.MovementCredential{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	m, err := s.repo.FindByParticipant(ctx, participantID)
	if err != nil {
		if !errors.Is(err, repository.ErrMovementNotFound) {
			return domain.MovementCredential{}, fmt.Errorf("s.repo.FindByParticipant -> %w", err)
		}
		m = domain.MovementCredential{EventID: eventID, ParticipantID: participantID}
	}

	before := m
	if !m.Assign(code, actor.ID, now()) {
		return m, nil
	}

	saved, err := s.repo.Save(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrMovementCodeExists) {
			return domain.MovementCredential{}, ErrCredentialCodeInUse
		}
		return domain.MovementCredential{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	var old any
	if before.ID != 0 {
		old = before
	}
	s.audit.Record(ctx, actor, eventRef(eventID), "credential_movement", saved.ID, "assign_code", old, saved)
	return saved, nil
}

func (s *MovementService) GetMovement(ctx context.Context, eventID, participantID uint) (domain.MovementCredential, error) {
	if _, err := participantOfEvent(ctx, s.participants, eventID, participantID); err != nil {
		return domain.MovementCredential{}, err
	}

	m, err := s.repo.FindByParticipant(ctx, participantID)
	if err != nil {
		return domain.MovementCredential{}, fmt.Errorf("s.repo.FindByParticipant -> %w", err)
	}

	return m, nil
}

// FindHolder returns the participant currently holding code.
func (s *MovementService) FindHolder(ctx context.Context, eventID uint, code string) (domain.Participant, domain.MovementCredential, error) {
	m, err := s.repo.FindByCode(ctx, eventID, strings.TrimSpace(code))
	if err != nil {
		return domain.Participant{}, domain.MovementCredential{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	p, err := s.participants.FindByID(ctx, m.ParticipantID)
	if err != nil {
		return domain.Participant{}, domain.MovementCredential{}, fmt.Errorf("s.participants.FindByID -> %w", err)
	}

	return p, m, nil
}

func (s *MovementService) ListMovements(ctx context.Context, eventID uint) ([]domain.MovementCredential, error) {
	movements, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
	}

	return movements, nil
}

func participantOfEvent(ctx context.Context, repo ParticipantReader, eventID, participantID uint) (domain.Participant, error) {
	p, err := repo.FindByID(ctx, participantID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.FindByID -> %w", err)
	}
	if p.EventID != eventID {
		return domain.Participant{}, ErrParticipantNotFound
	}
	return p, nil
}
