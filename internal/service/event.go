package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrEventNotFound      = repository.ErrEventNotFound
	ErrInvalidEventDates  = errors.New("end date must not be before start date")
	ErrInvalidEventDay    = errors.New("event days must be YYYY-MM-DD dates with phase setup, event or teardown")
	ErrInvalidEventStatus = errors.New("invalid event status")
)

// History actions of an event.
const (
	EventActionCreated       = "created"
	EventActionUpdated       = "updated"
	EventActionStatusChanged = "status_changed"
	EventActionStaffChanged  = "staff_changed"
	EventActionDeleted       = "deleted"
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	Find(ctx context.Context, filter domain.EventFilter, ids []uint) ([]domain.Event, error)
	SoftDelete(ctx context.Context, event domain.Event) error
}

type EventService struct {
	repo   EventRepository
	audit  Auditor
	caches Invalidator
}

func NewEventService(repo EventRepository, audit Auditor, caches Invalidator) *EventService {
	if audit == nil {
		audit = nopAuditor{}
	}
	if caches == nil {
		caches = nopInvalidator{}
	}
	return &EventService{
		repo:   repo,
		audit:  audit,
		caches: caches,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, actor domain.Actor, event domain.Event) (domain.Event, error) {
	if err := prepareEvent(&event); err != nil {
		return domain.Event{}, err
	}
	if event.Status == "" {
		event.Status = domain.EventActive
	}
	if event.Visibility == "" {
		event.Visibility = domain.VisibilityPrivate
	}
	event.History = nil
	event.AppendHistory(EventActionCreated, actor.ID, "", now())

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.audit.Record(ctx, actor, eventRef(created.ID), "event", created.ID, "create", nil, created)
	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// ListEvents returns the events matching filter. A non-nil allowed restricts
// the result to those event ids.
func (s *EventService) ListEvents(ctx context.Context, filter domain.EventFilter, allowed []uint) ([]domain.Event, error) {
	if allowed != nil && len(allowed) == 0 {
		return []domain.Event{}, nil
	}

	events, err := s.repo.Find(ctx, filter, allowed)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return events, nil
}

// UpdateEvent replaces the editable fields of the event. Status, staff and
// history are kept; they have dedicated operations.
func (s *EventService) UpdateEvent(ctx context.Context, actor domain.Actor, event domain.Event) (domain.Event, error) {
	existing, err := s.repo.FindByID(ctx, event.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = prepareEvent(&event); err != nil {
		return domain.Event{}, err
	}

	updated := existing
	updated.Name = event.Name
	updated.Description = event.Description
	updated.Venue = event.Venue
	updated.Address = event.Address
	updated.StartDate = event.StartDate
	updated.EndDate = event.EndDate
	updated.SetupStartDate = event.SetupStartDate
	updated.SetupEndDate = event.SetupEndDate
	updated.TeardownStartDate = event.TeardownStartDate
	updated.TeardownEndDate = event.TeardownEndDate
	updated.Days = event.Days
	if event.Visibility != "" {
		updated.Visibility = event.Visibility
	}
	updated.AppendHistory(EventActionUpdated, actor.ID, "", now())

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}
	saved.ParticipantCount = existing.ParticipantCount

	s.caches.InvalidateEvent(saved.ID)
	s.audit.Record(ctx, actor, eventRef(saved.ID), "event", saved.ID, "update", existing, saved)
	return saved, nil
}

func (s *EventService) UpdateStatus(ctx context.Context, actor domain.Actor, id uint, status domain.EventStatus) (domain.Event, error) {
	if !domain.IsValidEventStatus(status) {
		return domain.Event{}, ErrInvalidEventStatus
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if existing.Status == status {
		return existing, nil
	}

	updated := existing
	updated.Status = status
	updated.AppendHistory(EventActionStatusChanged, actor.ID, fmt.Sprintf("%s -> %s", existing.Status, status), now())

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}
	saved.ParticipantCount = existing.ParticipantCount

	s.audit.Record(ctx, actor, eventRef(id), "event", id, "status", existing, saved)
	return saved, nil
}

func (s *EventService) UpdateStaff(ctx context.Context, actor domain.Actor, id uint, managers, staff []domain.StaffMember) (domain.Event, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	updated := existing
	updated.Managers = trimStaff(managers)
	updated.Staff = trimStaff(staff)
	updated.AppendHistory(EventActionStaffChanged, actor.ID,
		fmt.Sprintf("%d managers, %d staff", len(updated.Managers), len(updated.Staff)), now())

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}
	saved.ParticipantCount = existing.ParticipantCount

	s.audit.Record(ctx, actor, eventRef(id), "event", id, "staff", existing, saved)
	return saved, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, actor domain.Actor, id uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	existing.AppendHistory(EventActionDeleted, actor.ID, "", now())
	if err = s.repo.SoftDelete(ctx, existing); err != nil {
		return fmt.Errorf("s.repo.SoftDelete -> %w", err)
	}

	s.caches.InvalidateEvent(id)
	s.audit.Record(ctx, actor, eventRef(id), "event", id, "delete", existing, nil)
	return nil
}

// prepareEvent checks the schedule and stores the normalized days.
func prepareEvent(event *domain.Event) error {
	event.Name = strings.TrimSpace(event.Name)

	if !event.EndDate.IsZero() && event.EndDate.Before(event.StartDate) {
		return ErrInvalidEventDates
	}
	if event.SetupStartDate != nil && event.SetupEndDate != nil && event.SetupEndDate.Before(*event.SetupStartDate) {
		return ErrInvalidEventDates
	}
	if event.TeardownStartDate != nil && event.TeardownEndDate != nil && event.TeardownEndDate.Before(*event.TeardownStartDate) {
		return ErrInvalidEventDates
	}

	for _, d := range event.Days {
		if _, err := time.Parse(domain.DayLayout, d.Date); err != nil {
			return ErrInvalidEventDay
		}
		switch d.Phase {
		case domain.PhaseSetup, domain.PhaseEvent, domain.PhaseTeardown:
		default:
			return ErrInvalidEventDay
		}
	}

	event.Days = event.NormalizeDays()
	return nil
}

func trimStaff(members []domain.StaffMember) []domain.StaffMember {
	out := make([]domain.StaffMember, 0, len(members))
	for _, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		m.Email = strings.ToLower(strings.TrimSpace(m.Email))
		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
