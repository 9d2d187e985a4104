package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/cpf"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrRadioLoanNotFound = repository.ErrRadioLoanNotFound
	ErrNoRadios          = errors.New("at least one radio is required")
	ErrDuplicateRadio    = errors.New("radio codes must be unique")
	ErrRadioUnavailable  = errors.New("radio is already on loan")
	ErrRadioNotOnLoan    = errors.New("radio is not outstanding on this loan")
	ErrLoanClosed        = errors.New("loan is already fully returned")
)

type RadioRepository interface {
	Create(ctx context.Context, loan domain.RadioLoan) (domain.RadioLoan, error)
	Update(ctx context.Context, loan domain.RadioLoan) (domain.RadioLoan, error)
	FindByID(ctx context.Context, id uint) (domain.RadioLoan, error)
	Find(ctx context.Context, eventID uint, filter domain.RadioLoanFilter) ([]domain.RadioLoan, error)
	FindOpen(ctx context.Context, eventID uint) ([]domain.RadioLoan, error)
}

type RadioService struct {
	repo   RadioRepository
	events EventReader
	audit  Auditor
	caches Invalidator
}

func NewRadioService(repo RadioRepository, events EventReader, audit Auditor, caches Invalidator) *RadioService {
	if audit == nil {
		audit = nopAuditor{}
	}
	if caches == nil {
		caches = nopInvalidator{}
	}
	return &RadioService{
		repo:   repo,
		events: events,
		audit:  audit,
		caches: caches,
	}
}

func (s *RadioService) CreateLoan(ctx context.Context, actor domain.Actor, loan domain.RadioLoan) (domain.RadioLoan, error) {
	if _, err := s.events.FindByID(ctx, loan.EventID); err != nil {
		return domain.RadioLoan{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	radios, err := cleanCodes(loan.Radios)
	if err != nil {
		return domain.RadioLoan{}, err
	}

	outstanding, err := s.outstanding(ctx, loan.EventID)
	if err != nil {
		return domain.RadioLoan{}, err
	}
	for _, code := range radios {
		if _, ok := outstanding[code]; ok {
			return domain.RadioLoan{}, fmt.Errorf("%w: %s", ErrRadioUnavailable, code)
		}
	}

	if loan.BorrowerCPF != "" {
		if loan.BorrowerCPF, err = cpf.Parse(loan.BorrowerCPF); err != nil {
			return domain.RadioLoan{}, ErrInvalidCPF
		}
	}

	loan.BorrowerName = strings.TrimSpace(loan.BorrowerName)
	loan.Radios = radios
	loan.ReturnedRadios = []string{}
	loan.Exchanges = []domain.RadioExchange{}
	loan.Returns = []domain.RadioReturn{}
	loan.Status = domain.LoanActive
	loan.ReturnedAt = nil
	if loan.PickedUpAt.IsZero() {
		loan.PickedUpAt = now()
	}

	created, err := s.repo.Create(ctx, loan)
	if err != nil {
		return domain.RadioLoan{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.caches.InvalidateEvent(loan.EventID)
	s.audit.Record(ctx, actor, eventRef(loan.EventID), "radio_loan", created.ID, "create", nil, created)
	return created, nil
}

func (s *RadioService) GetLoan(ctx context.Context, eventID, id uint) (domain.RadioLoan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.RadioLoan{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if loan.EventID != eventID {
		return domain.RadioLoan{}, ErrRadioLoanNotFound
	}

	return loan, nil
}

func (s *RadioService) ListLoans(ctx context.Context, eventID uint, filter domain.RadioLoanFilter) ([]domain.RadioLoan, error) {
	loans, err := s.repo.Find(ctx, eventID, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return loans, nil
}

// ExchangeRadio swaps an outstanding radio of the loan for one that is not on
// loan anywhere in the event.
func (s *RadioService) ExchangeRadio(ctx context.Context, actor domain.Actor, eventID, loanID uint, oldCode, newCode, reason string) (domain.RadioLoan, error) {
	loan, err := s.GetLoan(ctx, eventID, loanID)
	if err != nil {
		return domain.RadioLoan{}, err
	}
	if loan.IsClosed() {
		return domain.RadioLoan{}, ErrLoanClosed
	}

	oldCode, newCode = strings.TrimSpace(oldCode), strings.TrimSpace(newCode)
	if newCode == "" {
		return domain.RadioLoan{}, ErrNoRadios
	}
	if !loan.Holds(oldCode) {
		return domain.RadioLoan{}, ErrRadioNotOnLoan
	}

	outstanding, err := s.outstanding(ctx, eventID)
	if err != nil {
		return domain.RadioLoan{}, err
	}
	if _, ok := outstanding[newCode]; ok {
		return domain.RadioLoan{}, fmt.Errorf("%w: %s", ErrRadioUnavailable, newCode)
	}

	before := cloneLoan(loan)
	loan.Exchange(oldCode, newCode, strings.TrimSpace(reason), now())

	return s.save(ctx, actor, before, loan, "exchange")
}

// ReturnRadios registers a partial or full return.
func (s *RadioService) ReturnRadios(ctx context.Context, actor domain.Actor, eventID, loanID uint, codes []string, at *time.Time) (domain.RadioLoan, error) {
	loan, err := s.GetLoan(ctx, eventID, loanID)
	if err != nil {
		return domain.RadioLoan{}, err
	}
	if loan.IsClosed() {
		return domain.RadioLoan{}, ErrLoanClosed
	}

	codes, err = cleanCodes(codes)
	if err != nil {
		return domain.RadioLoan{}, err
	}
	for _, code := range codes {
		if !loan.Holds(code) {
			return domain.RadioLoan{}, fmt.Errorf("%w: %s", ErrRadioNotOnLoan, code)
		}
	}

	returnedAt := now()
	if at != nil && !at.IsZero() {
		returnedAt = at.UTC()
	}

	before := cloneLoan(loan)
	loan.Return(codes, returnedAt)

	return s.save(ctx, actor, before, loan, "return")
}

// OutstandingCount is the number of radios currently on loan in the event.
func (s *RadioService) OutstandingCount(ctx context.Context, eventID uint) (int64, error) {
	outstanding, err := s.outstanding(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return int64(len(outstanding)), nil
}

func (s *RadioService) save(ctx context.Context, actor domain.Actor, before, loan domain.RadioLoan, action string) (domain.RadioLoan, error) {
	updated, err := s.repo.Update(ctx, loan)
	if err != nil {
		return domain.RadioLoan{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.caches.InvalidateEvent(loan.EventID)
	s.audit.Record(ctx, actor, eventRef(loan.EventID), "radio_loan", loan.ID, action, before, updated)
	return updated, nil
}

// outstanding maps every radio on loan in the event to its loan id.
func (s *RadioService) outstanding(ctx context.Context, eventID uint) (map[string]uint, error) {
	loans, err := s.repo.FindOpen(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindOpen -> %w", err)
	}

	out := make(map[string]uint)
	for _, l := range loans {
		for _, code := range l.Outstanding() {
			out[code] = l.ID
		}
	}
	return out, nil
}

func cleanCodes(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRadio, c)
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, ErrNoRadios
	}
	return out, nil
}

// cloneLoan copies the slices that Exchange and Return modify in place.
func cloneLoan(l domain.RadioLoan) domain.RadioLoan {
	c := l
	c.Radios = append([]string(nil), l.Radios...)
	c.ReturnedRadios = append([]string(nil), l.ReturnedRadios...)
	c.Exchanges = append([]domain.RadioExchange(nil), l.Exchanges...)
	c.Returns = append([]domain.RadioReturn(nil), l.Returns...)
	return c
}
