package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrAttendanceNotFound   = dao.ErrAttendanceNotFound
	ErrAttendanceOpenExists = dao.ErrAttendanceOpenExists
)

type AttendanceDAO interface {
	FindByID(ctx context.Context, id uint) (dao.AttendanceRecord, error)
	FindOpen(ctx context.Context, participantID uint, day string) (dao.AttendanceRecord, error)
	FindByParticipant(ctx context.Context, participantID uint) ([]dao.AttendanceRecord, error)
	FindByEventDay(ctx context.Context, eventID uint, day string) ([]dao.AttendanceRecord, error)
	CheckIn(ctx context.Context, record dao.AttendanceRecord) (dao.AttendanceRecord, error)
	CheckOut(ctx context.Context, record dao.AttendanceRecord) (dao.AttendanceRecord, error)
	Delete(ctx context.Context, record dao.AttendanceRecord) error
}

type AttendanceRepository struct {
	dao AttendanceDAO
}

func NewAttendanceRepository(dao AttendanceDAO) *AttendanceRepository {
	return &AttendanceRepository{
		dao: dao,
	}
}

func (r *AttendanceRepository) FindByID(ctx context.Context, id uint) (domain.AttendanceRecord, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return attendanceDaoToDomain(found), nil
}

func (r *AttendanceRepository) FindOpen(ctx context.Context, participantID uint, day string) (domain.AttendanceRecord, error) {
	found, err := r.dao.FindOpen(ctx, participantID, day)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.FindOpen -> %w", err)
	}

	return attendanceDaoToDomain(found), nil
}

func (r *AttendanceRepository) FindByParticipant(ctx context.Context, participantID uint) ([]domain.AttendanceRecord, error) {
	found, err := r.dao.FindByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByParticipant -> %w", err)
	}

	return attendancesDaoToDomain(found), nil
}

func (r *AttendanceRepository) FindByEventDay(ctx context.Context, eventID uint, day string) ([]domain.AttendanceRecord, error) {
	found, err := r.dao.FindByEventDay(ctx, eventID, day)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventDay -> %w", err)
	}

	return attendancesDaoToDomain(found), nil
}

func (r *AttendanceRepository) CheckIn(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	created, err := r.dao.CheckIn(ctx, attendanceDomainToDao(record))
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.CheckIn -> %w", err)
	}

	return attendanceDaoToDomain(created), nil
}

func (r *AttendanceRepository) CheckOut(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	updated, err := r.dao.CheckOut(ctx, attendanceDomainToDao(record))
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.CheckOut -> %w", err)
	}

	return attendanceDaoToDomain(updated), nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, record domain.AttendanceRecord) error {
	if err := r.dao.Delete(ctx, attendanceDomainToDao(record)); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func attendanceDomainToDao(a domain.AttendanceRecord) dao.AttendanceRecord {
	return dao.AttendanceRecord{
		ID:            a.ID,
		EventID:       a.EventID,
		ParticipantID: a.ParticipantID,
		Day:           a.Day,
		CheckIn:       a.CheckIn,
		CheckOut:      a.CheckOut,
		OperatorID:    a.OperatorID,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func attendanceDaoToDomain(a dao.AttendanceRecord) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:            a.ID,
		EventID:       a.EventID,
		ParticipantID: a.ParticipantID,
		Day:           a.Day,
		CheckIn:       a.CheckIn,
		CheckOut:      a.CheckOut,
		OperatorID:    a.OperatorID,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func attendancesDaoToDomain(found []dao.AttendanceRecord) []domain.AttendanceRecord {
	records := make([]domain.AttendanceRecord, len(found))
	for i, a := range found {
		records[i] = attendanceDaoToDomain(a)
	}
	return records
}
