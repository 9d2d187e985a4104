package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/cpf"
	"github.com/credenciamento/event-api/internal/pkg/search"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrParticipantNotFound  = repository.ErrParticipantNotFound
	ErrParticipantCPFExists = repository.ErrParticipantCPFExists
	ErrInvalidCPF           = cpf.ErrInvalid
	ErrCredentialNotInEvent = errors.New("credential does not belong to the event")
	ErrInvalidWorkDays      = errors.New("work days must be days of the event")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant domain.Participant) (domain.Participant, error)
	Update(ctx context.Context, participant domain.Participant) (domain.Participant, error)
	FindByID(ctx context.Context, id uint) (domain.Participant, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Participant, error)
	FindByCPF(ctx context.Context, eventID uint, cpf string) (domain.Participant, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error)
	List(ctx context.Context, eventID uint, filter domain.ParticipantFilter) ([]domain.Participant, int64, error)
	ListIDs(ctx context.Context, eventID uint, filter domain.ParticipantFilter) ([]uint, error)
	Delete(ctx context.Context, id uint) error
}

// EventReader is the read side of the event repository shared by services
// that validate against the event schedule.
type EventReader interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type CredentialReader interface {
	FindByID(ctx context.Context, id uint) (domain.Credential, error)
}

type ParticipantService struct {
	repo        ParticipantRepository
	events      EventReader
	credentials CredentialReader
	index       *search.Cache
	audit       Auditor
	caches      Invalidator
}

func NewParticipantService(
	repo ParticipantRepository,
	events EventReader,
	credentials CredentialReader,
	index *search.Cache,
	audit Auditor,
	caches Invalidator,
) *ParticipantService {
	if audit == nil {
		audit = nopAuditor{}
	}
	if caches == nil {
		caches = nopInvalidator{}
	}
	return &ParticipantService{
		repo:        repo,
		events:      events,
		credentials: credentials,
		index:       index,
		audit:       audit,
		caches:      caches,
	}
}

func (s *ParticipantService) CreateParticipant(ctx context.Context, actor domain.Actor, p domain.Participant) (domain.Participant, error) {
	event, err := s.events.FindByID(ctx, p.EventID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if err = s.prepare(ctx, event, &p, 0); err != nil {
		return domain.Participant{}, err
	}
	p.CheckIn, p.CheckOut = nil, nil

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.caches.InvalidateEvent(p.EventID)
	s.audit.Record(ctx, actor, eventRef(p.EventID), "participant", created.ID, "create", nil, created)
	return created, nil
}

func (s *ParticipantService) GetParticipant(ctx context.Context, eventID, id uint) (domain.Participant, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if p.EventID != eventID {
		return domain.Participant{}, ErrParticipantNotFound
	}

	return p, nil
}

// UpdateParticipant replaces the registration data. Attendance fields are
// only changed through check-in and check-out.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, actor domain.Actor, p domain.Participant) (domain.Participant, error) {
	existing, err := s.GetParticipant(ctx, p.EventID, p.ID)
	if err != nil {
		return domain.Participant{}, err
	}

	event, err := s.events.FindByID(ctx, p.EventID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if err = s.prepare(ctx, event, &p, existing.ID); err != nil {
		return domain.Participant{}, err
	}
	p.CheckIn = existing.CheckIn
	p.CheckOut = existing.CheckOut
	p.CreatedAt = existing.CreatedAt

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.caches.InvalidateEvent(p.EventID)
	s.audit.Record(ctx, actor, eventRef(p.EventID), "participant", p.ID, "update", existing, updated)
	return updated, nil
}

func (s *ParticipantService) DeleteParticipant(ctx context.Context, actor domain.Actor, eventID, id uint) error {
	existing, err := s.GetParticipant(ctx, eventID, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.caches.InvalidateEvent(eventID)
	s.audit.Record(ctx, actor, eventRef(eventID), "participant", id, "delete", existing, nil)
	return nil
}

// ListParticipants filters and paginates the participants of an event. When
// a search query is present results follow the search ranking, otherwise
// they are ordered by name.
func (s *ParticipantService) ListParticipants(ctx context.Context, eventID uint, filter domain.ParticipantFilter) (domain.Page[domain.Participant], error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	result := domain.Page[domain.Participant]{
		Items:    []domain.Participant{},
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	if strings.TrimSpace(filter.Search) == "" {
		items, total, err := s.repo.List(ctx, eventID, filter)
		if err != nil {
			return domain.Page[domain.Participant]{}, fmt.Errorf("s.repo.List -> %w", err)
		}
		result.Items = items
		result.Total = total
		return result, nil
	}

	ranked, err := s.Search(ctx, eventID, filter.Search)
	if err != nil {
		return domain.Page[domain.Participant]{}, err
	}
	if len(ranked) == 0 {
		return result, nil
	}

	if hasStructuredFilter(filter) {
		allowedIDs, err := s.repo.ListIDs(ctx, eventID, filter)
		if err != nil {
			return domain.Page[domain.Participant]{}, fmt.Errorf("s.repo.ListIDs -> %w", err)
		}
		allowed := make(map[uint]struct{}, len(allowedIDs))
		for _, id := range allowedIDs {
			allowed[id] = struct{}{}
		}
		kept := make([]uint, 0, len(ranked))
		for _, id := range ranked {
			if _, ok := allowed[id]; ok {
				kept = append(kept, id)
			}
		}
		ranked = kept
	}

	result.Total = int64(len(ranked))
	from := (filter.Page - 1) * filter.PageSize
	if from >= len(ranked) {
		return result, nil
	}
	to := min(from+filter.PageSize, len(ranked))

	items, err := s.repo.FindByIDs(ctx, ranked[from:to])
	if err != nil {
		return domain.Page[domain.Participant]{}, fmt.Errorf("s.repo.FindByIDs -> %w", err)
	}
	result.Items = items
	return result, nil
}

// Search returns the ids of the participants matching query, best first.
func (s *ParticipantService) Search(ctx context.Context, eventID uint, query string) ([]uint, error) {
	ix, err := s.index.GetOrBuild(eventID, func() ([]search.Document, error) {
		participants, err := s.repo.FindByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
		}
		return participantDocuments(participants), nil
	})
	if err != nil {
		return nil, err
	}

	return ix.Search(query), nil
}

// prepare normalizes p and checks it against the event. selfID is the id of
// the participant being updated, zero on create.
func (s *ParticipantService) prepare(ctx context.Context, event domain.Event, p *domain.Participant, selfID uint) error {
	p.EventID = event.ID
	p.Name = strings.TrimSpace(p.Name)
	p.Company = strings.TrimSpace(p.Company)
	p.Role = strings.TrimSpace(p.Role)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	if p.CPF != "" {
		normalized, err := cpf.Parse(p.CPF)
		if err != nil {
			return ErrInvalidCPF
		}
		p.CPF = normalized

		found, err := s.repo.FindByCPF(ctx, event.ID, normalized)
		switch {
		case err == nil && found.ID != selfID:
			return ErrParticipantCPFExists
		case err != nil && !errors.Is(err, repository.ErrParticipantNotFound):
			return fmt.Errorf("s.repo.FindByCPF -> %w", err)
		}
	}

	if p.CredentialID != nil {
		credential, err := s.credentials.FindByID(ctx, *p.CredentialID)
		if err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return ErrCredentialNotInEvent
			}
			return fmt.Errorf("s.credentials.FindByID -> %w", err)
		}
		if credential.EventID != event.ID {
			return ErrCredentialNotInEvent
		}
	}

	days, err := checkWorkDays(event, p.WorkDays)
	if err != nil {
		return err
	}
	p.WorkDays = days
	p.Credential = nil

	return nil
}

// checkWorkDays deduplicates and sorts days, and makes sure every day
// belongs to the event when the event has a schedule.
func checkWorkDays(event domain.Event, days []string) ([]string, error) {
	if len(days) == 0 {
		return []string{}, nil
	}

	eventDays := make(map[string]struct{})
	for _, d := range event.NormalizeDays() {
		eventDays[d.Date] = struct{}{}
	}

	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if _, ok := seen[d]; ok {
			continue
		}
		if _, err := time.Parse(domain.DayLayout, d); err != nil {
			return nil, ErrInvalidWorkDays
		}
		if len(eventDays) > 0 {
			if _, ok := eventDays[d]; !ok {
				return nil, ErrInvalidWorkDays
			}
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)

	return out, nil
}

func hasStructuredFilter(f domain.ParticipantFilter) bool {
	return f.CredentialID != nil || f.Company != "" || f.Status != "" || f.WorkDay != ""
}

func participantDocuments(participants []domain.Participant) []search.Document {
	docs := make([]search.Document, len(participants))
	for i, p := range participants {
		doc := search.Document{
			ID:     p.ID,
			Title:  p.Name,
			Fields: []string{p.Company, p.Role, p.Document, p.Email},
		}
		if p.CPF != "" {
			doc.Keys = append(doc.Keys, p.CPF)
		}
		if p.Credential != nil {
			doc.Fields = append(doc.Fields, p.Credential.Name)
		}
		docs[i] = doc
	}
	return docs
}
