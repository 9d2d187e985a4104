package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/credenciamento/event-api/internal/config"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrAttendanceNotFound    = repository.ErrAttendanceNotFound
	ErrAlreadyCheckedIn      = errors.New("participant is already checked in on this day")
	ErrNotCheckedIn          = errors.New("participant has no open check-in on this day")
	ErrCheckOutBeforeCheckIn = errors.New("check-out must not precede check-in")
	ErrNotAWorkDay           = errors.New("participant is not scheduled to work on this day")
	ErrInvalidDay            = errors.New("day must be in YYYY-MM-DD format")
)

// Operator action types written by attendance operations.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
	ActionUndo     = "undo"
)

type AttendanceRepository interface {
	FindByID(ctx context.Context, id uint) (domain.AttendanceRecord, error)
	FindOpen(ctx context.Context, participantID uint, day string) (domain.AttendanceRecord, error)
	FindByParticipant(ctx context.Context, participantID uint) ([]domain.AttendanceRecord, error)
	FindByEventDay(ctx context.Context, eventID uint, day string) ([]domain.AttendanceRecord, error)
	CheckIn(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error)
	Delete(ctx context.Context, record domain.AttendanceRecord) error
}

type AttendanceParticipantRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Participant, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error)
}

// ActionRecorder keeps the action log of field operators.
type ActionRecorder interface {
	RecordAction(ctx context.Context, operatorID uint, action domain.OperatorAction) error
}

type AttendanceService struct {
	repo         AttendanceRepository
	participants AttendanceParticipantRepository
	operators    ActionRecorder
	conf         *config.AttendanceConfig
	loc          *time.Location
	metrics      *metrics.Registry
	audit        Auditor
	caches       Invalidator
}

func NewAttendanceService(
	repo AttendanceRepository,
	participants AttendanceParticipantRepository,
	operators ActionRecorder,
	conf *config.AttendanceConfig,
	m *metrics.Registry,
	audit Auditor,
	caches Invalidator,
) *AttendanceService {
	if conf == nil {
		conf = &config.AttendanceConfig{}
	}
	if audit == nil {
		audit = nopAuditor{}
	}
	if caches == nil {
		caches = nopInvalidator{}
	}
	return &AttendanceService{
		repo:         repo,
		participants: participants,
		operators:    operators,
		conf:         conf,
		loc:          conf.Location(),
		metrics:      m,
		audit:        audit,
		caches:       caches,
	}
}

// Day returns the calendar day t falls on in the attendance timezone.
func (s *AttendanceService) Day(t time.Time) string {
	return t.In(s.loc).Format(domain.DayLayout)
}

// CheckIn opens an attendance record for the day of at (now when nil).
func (s *AttendanceService) CheckIn(ctx context.Context, actor domain.Actor, eventID, participantID uint, at *time.Time, notes string) (domain.AttendanceRecord, error) {
	p, err := participantOfEvent(ctx, s.participants, eventID, participantID)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}

	t := s.instant(at)
	day := s.Day(t)

	if s.conf.EnforceWorkDays && len(p.WorkDays) > 0 && !p.WorksOn(day) {
		return domain.AttendanceRecord{}, ErrNotAWorkDay
	}

	_, err = s.repo.FindOpen(ctx, p.ID, day)
	switch {
	case err == nil:
		return domain.AttendanceRecord{}, ErrAlreadyCheckedIn
	case !errors.Is(err, repository.ErrAttendanceNotFound):
		return domain.AttendanceRecord{}, fmt.Errorf("s.repo.FindOpen -> %w", err)
	}

	record := domain.AttendanceRecord{
		EventID:       eventID,
		ParticipantID: p.ID,
		Day:           day,
		CheckIn:       t,
		Notes:         strings.TrimSpace(notes),
	}
	if actor.Type == domain.ActorOperator {
		record.OperatorID = &actor.ID
	}

	created, err := s.repo.CheckIn(ctx, record)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceOpenExists) {
			return domain.AttendanceRecord{}, ErrAlreadyCheckedIn
		}
		return domain.AttendanceRecord{}, fmt.Errorf("s.repo.CheckIn -> %w", err)
	}

	s.after(ctx, actor, eventID, p.ID, created.ID, ActionCheckIn, nil, created)
	return created, nil
}

// CheckOut closes the open record of the day of at (now when nil).
func (s *AttendanceService) CheckOut(ctx context.Context, actor domain.Actor, eventID, participantID uint, at *time.Time) (domain.AttendanceRecord, error) {
	p, err := participantOfEvent(ctx, s.participants, eventID, participantID)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}

	t := s.instant(at)

	open, err := s.repo.FindOpen(ctx, p.ID, s.Day(t))
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return domain.AttendanceRecord{}, ErrNotCheckedIn
		}
		return domain.AttendanceRecord{}, fmt.Errorf("s.repo.FindOpen -> %w", err)
	}
	if t.Before(open.CheckIn) {
		return domain.AttendanceRecord{}, ErrCheckOutBeforeCheckIn
	}

	before := open
	open.CheckOut = &t

	updated, err := s.repo.CheckOut(ctx, open)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("s.repo.CheckOut -> %w", err)
	}

	s.after(ctx, actor, eventID, p.ID, updated.ID, ActionCheckOut, before, updated)
	return updated, nil
}

// Undo deletes an attendance record. The participant's base check-in and
// check-out follow the latest remaining record.
func (s *AttendanceService) Undo(ctx context.Context, actor domain.Actor, eventID, recordID uint) error {
	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if record.EventID != eventID {
		return ErrAttendanceNotFound
	}

	if err = s.repo.Delete(ctx, record); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.after(ctx, actor, eventID, record.ParticipantID, record.ID, ActionUndo, record, nil)
	return nil
}

// History returns the raw records of a participant and their per-day
// reconciliation.
func (s *AttendanceService) History(ctx context.Context, eventID, participantID uint) ([]domain.AttendanceRecord, []domain.AttendanceDay, error) {
	p, err := participantOfEvent(ctx, s.participants, eventID, participantID)
	if err != nil {
		return nil, nil, err
	}

	records, err := s.repo.FindByParticipant(ctx, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("s.repo.FindByParticipant -> %w", err)
	}

	return records, domain.ReconcileAttendance(p, records, s.loc), nil
}

// DayReport lists the presence on day of every participant expected that day
// or with a movement on it.
func (s *AttendanceService) DayReport(ctx context.Context, eventID uint, day string) ([]domain.AttendanceReportRow, error) {
	if _, err := time.Parse(domain.DayLayout, day); err != nil {
		return nil, ErrInvalidDay
	}

	participants, err := s.participants.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.participants.FindByEvent -> %w", err)
	}

	records, err := s.repo.FindByEventDay(ctx, eventID, day)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEventDay -> %w", err)
	}
	byParticipant := make(map[uint][]domain.AttendanceRecord)
	for _, r := range records {
		byParticipant[r.ParticipantID] = append(byParticipant[r.ParticipantID], r)
	}

	rows := make([]domain.AttendanceReportRow, 0, len(participants))
	for _, p := range participants {
		days := domain.ReconcileAttendance(p, byParticipant[p.ID], s.loc)

		var entry *domain.AttendanceDay
		for i := range days {
			if days[i].Day == day {
				entry = &days[i]
				break
			}
		}
		if entry == nil && !p.WorksOn(day) {
			continue
		}

		row := domain.AttendanceReportRow{Participant: p, Status: domain.StatusAbsent}
		if entry != nil {
			row.Status = entry.Status
			row.CheckIn = entry.CheckIn
			row.CheckOut = entry.CheckOut
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (s *AttendanceService) instant(at *time.Time) time.Time {
	if at == nil || at.IsZero() {
		return now()
	}
	return at.UTC()
}

func (s *AttendanceService) after(ctx context.Context, actor domain.Actor, eventID, participantID, recordID uint, action string, old, updated any) {
	if s.metrics != nil {
		s.metrics.CheckInsTotal.WithLabelValues(action).Inc()
	}

	s.caches.InvalidateEvent(eventID)
	s.audit.Record(ctx, actor, eventRef(eventID), "attendance", recordID, action, old, updated)

	if actor.Type != domain.ActorOperator || s.operators == nil {
		return
	}
	err := s.operators.RecordAction(ctx, actor.ID, domain.OperatorAction{
		Type:          action,
		EventID:       eventID,
		ParticipantID: participantID,
		At:            now(),
	})
	if err != nil {
		zap.L().Warn("s.operators.RecordAction", zap.Uint("operator_id", actor.ID), zap.Error(err))
	}
}
