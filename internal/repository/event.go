package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	Find(ctx context.Context, q dao.EventQuery) ([]dao.Event, error)
	SoftDelete(ctx context.Context, event dao.Event) error
	CountParticipants(ctx context.Context, eventIDs []uint) (map[uint]int64, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	counts, err := r.dao.CountParticipants(ctx, []uint{id})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	event := r.daoToDomain(found)
	event.ParticipantCount = counts[id]
	return event, nil
}

// Find lists events matching filter. A non-nil ids restricts the result to
// those events.
func (r *EventRepository) Find(ctx context.Context, filter domain.EventFilter, ids []uint) ([]domain.Event, error) {
	found, err := r.dao.Find(ctx, dao.EventQuery{
		Status:     string(filter.Status),
		Visibility: string(filter.Visibility),
		Search:     filter.Search,
		IDs:        ids,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.Find -> %w", err)
	}

	eventIDs := make([]uint, len(found))
	for i, e := range found {
		eventIDs[i] = e.ID
	}
	counts, err := r.dao.CountParticipants(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
		events[i].ParticipantCount = counts[e.ID]
	}
	return events, nil
}

func (r *EventRepository) SoftDelete(ctx context.Context, event domain.Event) error {
	if err := r.dao.SoftDelete(ctx, r.domainToDao(event)); err != nil {
		return fmt.Errorf("r.dao.SoftDelete -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		Venue:             e.Venue,
		Address:           e.Address,
		StartDate:         e.StartDate,
		EndDate:           e.EndDate,
		SetupStartDate:    e.SetupStartDate,
		SetupEndDate:      e.SetupEndDate,
		TeardownStartDate: e.TeardownStartDate,
		TeardownEndDate:   e.TeardownEndDate,
		Days:              e.Days,
		Status:            string(e.Status),
		Visibility:        string(e.Visibility),
		Managers:          e.Managers,
		Staff:             e.Staff,
		History:           e.History,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		Venue:             e.Venue,
		Address:           e.Address,
		StartDate:         e.StartDate,
		EndDate:           e.EndDate,
		SetupStartDate:    e.SetupStartDate,
		SetupEndDate:      e.SetupEndDate,
		TeardownStartDate: e.TeardownStartDate,
		TeardownEndDate:   e.TeardownEndDate,
		Days:              e.Days,
		Status:            domain.EventStatus(e.Status),
		Visibility:        domain.EventVisibility(e.Visibility),
		Managers:          e.Managers,
		Staff:             e.Staff,
		History:           e.History,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
