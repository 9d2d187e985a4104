package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrParticipantNotFound  = dao.ErrParticipantNotFound
	ErrParticipantCPFExists = dao.ErrParticipantCPFExists
)

type ParticipantDAO interface {
	Insert(ctx context.Context, participant dao.Participant) (dao.Participant, error)
	Update(ctx context.Context, participant dao.Participant) (dao.Participant, error)
	FindByID(ctx context.Context, id uint) (dao.Participant, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Participant, error)
	FindByCPF(ctx context.Context, eventID uint, cpf string) (dao.Participant, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.Participant, error)
	List(ctx context.Context, q dao.ParticipantQuery) ([]dao.Participant, int64, error)
	ListIDs(ctx context.Context, q dao.ParticipantQuery) ([]uint, error)
	Delete(ctx context.Context, id uint) error
	Import(ctx context.Context, batch dao.ImportBatch) (dao.ImportResult, error)
	CountByStatus(ctx context.Context, eventID uint) (dao.StatusCounts, error)
	CountByCredential(ctx context.Context, eventID uint) ([]dao.LabelCount, error)
	CountByCompany(ctx context.Context, eventID uint, limit int) ([]dao.LabelCount, error)
}

type ParticipantRepository struct {
	dao ParticipantDAO
}

func NewParticipantRepository(dao ParticipantDAO) *ParticipantRepository {
	return &ParticipantRepository{
		dao: dao,
	}
}

func (r *ParticipantRepository) Create(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	created, err := r.dao.Insert(ctx, participantDomainToDao(participant))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return participantDaoToDomain(created), nil
}

func (r *ParticipantRepository) Update(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	updated, err := r.dao.Update(ctx, participantDomainToDao(participant))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return participantDaoToDomain(updated), nil
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id uint) (domain.Participant, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return participantDaoToDomain(found), nil
}

func (r *ParticipantRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Participant, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	return participantsDaoToDomain(found), nil
}

func (r *ParticipantRepository) FindByCPF(ctx context.Context, eventID uint, cpf string) (domain.Participant, error) {
	found, err := r.dao.FindByCPF(ctx, eventID, cpf)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByCPF -> %w", err)
	}

	return participantDaoToDomain(found), nil
}

func (r *ParticipantRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	return participantsDaoToDomain(found), nil
}

// List applies every filter except the free text search.
func (r *ParticipantRepository) List(ctx context.Context, eventID uint, filter domain.ParticipantFilter) ([]domain.Participant, int64, error) {
	found, total, err := r.dao.List(ctx, participantQuery(eventID, filter))
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	return participantsDaoToDomain(found), total, nil
}

func (r *ParticipantRepository) ListIDs(ctx context.Context, eventID uint, filter domain.ParticipantFilter) ([]uint, error) {
	ids, err := r.dao.ListIDs(ctx, participantQuery(eventID, filter))
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListIDs -> %w", err)
	}

	return ids, nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// ImportRow pairs a participant with the name of a credential created in the
// same import.
type ImportRow struct {
	Participant    domain.Participant
	CredentialName string
}

// Import writes new credentials and participants atomically. Participants
// with an ID are updated.
func (r *ParticipantRepository) Import(ctx context.Context, eventID uint, credentials []domain.Credential, rows []ImportRow) ([]domain.Credential, []domain.Participant, error) {
	batch := dao.ImportBatch{EventID: eventID}
	for _, c := range credentials {
		batch.Credentials = append(batch.Credentials, credentialDomainToDao(c))
	}
	for _, row := range rows {
		batch.Rows = append(batch.Rows, dao.ImportRow{
			Participant:    participantDomainToDao(row.Participant),
			CredentialName: row.CredentialName,
		})
	}

	result, err := r.dao.Import(ctx, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("r.dao.Import -> %w", err)
	}

	created := make([]domain.Credential, len(result.Credentials))
	for i, c := range result.Credentials {
		created[i] = credentialDaoToDomain(c)
	}
	return created, participantsDaoToDomain(result.Participants), nil
}

// CountByStatus fills the attendance totals of the event stats.
func (r *ParticipantRepository) CountByStatus(ctx context.Context, eventID uint) (domain.EventStats, error) {
	counts, err := r.dao.CountByStatus(ctx, eventID)
	if err != nil {
		return domain.EventStats{}, fmt.Errorf("r.dao.CountByStatus -> %w", err)
	}

	return domain.EventStats{
		EventID:           eventID,
		TotalParticipants: counts.Total,
		CheckedIn:         counts.Present,
		CheckedOut:        counts.CheckedOut,
		Absent:            counts.Absent,
	}, nil
}

func (r *ParticipantRepository) CountByCredential(ctx context.Context, eventID uint) ([]domain.CountByLabel, error) {
	rows, err := r.dao.CountByCredential(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountByCredential -> %w", err)
	}

	return labelCountsToDomain(rows), nil
}

func (r *ParticipantRepository) CountByCompany(ctx context.Context, eventID uint, limit int) ([]domain.CountByLabel, error) {
	rows, err := r.dao.CountByCompany(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountByCompany -> %w", err)
	}

	return labelCountsToDomain(rows), nil
}

func participantQuery(eventID uint, f domain.ParticipantFilter) dao.ParticipantQuery {
	return dao.ParticipantQuery{
		EventID:      eventID,
		CredentialID: f.CredentialID,
		Company:      f.Company,
		Status:       string(f.Status),
		WorkDay:      f.WorkDay,
		Page:         f.Page,
		PageSize:     f.PageSize,
	}
}

func labelCountsToDomain(rows []dao.LabelCount) []domain.CountByLabel {
	out := make([]domain.CountByLabel, len(rows))
	for i, row := range rows {
		out[i] = domain.CountByLabel{Label: row.Label, Count: row.Count}
	}
	return out
}

func participantDomainToDao(p domain.Participant) dao.Participant {
	return dao.Participant{
		ID:           p.ID,
		EventID:      p.EventID,
		Name:         p.Name,
		CPF:          p.CPF,
		Document:     p.Document,
		Email:        p.Email,
		Phone:        p.Phone,
		Company:      p.Company,
		Role:         p.Role,
		CredentialID: p.CredentialID,
		CheckIn:      p.CheckIn,
		CheckOut:     p.CheckOut,
		WorkDays:     p.WorkDays,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func participantDaoToDomain(p dao.Participant) domain.Participant {
	participant := domain.Participant{
		ID:           p.ID,
		EventID:      p.EventID,
		Name:         p.Name,
		CPF:          p.CPF,
		Document:     p.Document,
		Email:        p.Email,
		Phone:        p.Phone,
		Company:      p.Company,
		Role:         p.Role,
		CredentialID: p.CredentialID,
		CheckIn:      p.CheckIn,
		CheckOut:     p.CheckOut,
		WorkDays:     p.WorkDays,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Credential != nil && p.Credential.ID != 0 {
		credential := credentialDaoToDomain(*p.Credential)
		participant.Credential = &credential
	}
	return participant
}

func participantsDaoToDomain(found []dao.Participant) []domain.Participant {
	participants := make([]domain.Participant, len(found))
	for i, p := range found {
		participants[i] = participantDaoToDomain(p)
	}
	return participants
}
