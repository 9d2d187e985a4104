package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrRadioLoanNotFound = dao.ErrRadioLoanNotFound
)

type RadioDAO interface {
	Insert(ctx context.Context, loan dao.RadioLoan) (dao.RadioLoan, error)
	Update(ctx context.Context, loan dao.RadioLoan) (dao.RadioLoan, error)
	FindByID(ctx context.Context, id uint) (dao.RadioLoan, error)
	Find(ctx context.Context, q dao.RadioLoanQuery) ([]dao.RadioLoan, error)
}

type RadioRepository struct {
	dao RadioDAO
}

func NewRadioRepository(dao RadioDAO) *RadioRepository {
	return &RadioRepository{
		dao: dao,
	}
}

func (r *RadioRepository) Create(ctx context.Context, loan domain.RadioLoan) (domain.RadioLoan, error) {
	created, err := r.dao.Insert(ctx, radioDomainToDao(loan))
	if err != nil {
		return domain.RadioLoan{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return radioDaoToDomain(created), nil
}

func (r *RadioRepository) Update(ctx context.Context, loan domain.RadioLoan) (domain.RadioLoan, error) {
	updated, err := r.dao.Update(ctx, radioDomainToDao(loan))
	if err != nil {
		return domain.RadioLoan{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return radioDaoToDomain(updated), nil
}

func (r *RadioRepository) FindByID(ctx context.Context, id uint) (domain.RadioLoan, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.RadioLoan{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return radioDaoToDomain(found), nil
}

func (r *RadioRepository) Find(ctx context.Context, eventID uint, filter domain.RadioLoanFilter) ([]domain.RadioLoan, error) {
	q := dao.RadioLoanQuery{EventID: eventID, Search: filter.Search}
	if filter.Status != "" {
		q.Statuses = []string{string(filter.Status)}
	}
	return r.find(ctx, q)
}

// FindOpen lists loans that still hold at least one radio.
func (r *RadioRepository) FindOpen(ctx context.Context, eventID uint) ([]domain.RadioLoan, error) {
	return r.find(ctx, dao.RadioLoanQuery{
		EventID:  eventID,
		Statuses: []string{string(domain.LoanActive), string(domain.LoanPartial)},
	})
}

func (r *RadioRepository) find(ctx context.Context, q dao.RadioLoanQuery) ([]domain.RadioLoan, error) {
	found, err := r.dao.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Find -> %w", err)
	}

	loans := make([]domain.RadioLoan, len(found))
	for i, l := range found {
		loans[i] = radioDaoToDomain(l)
	}
	return loans, nil
}

func radioDomainToDao(l domain.RadioLoan) dao.RadioLoan {
	return dao.RadioLoan{
		ID:             l.ID,
		EventID:        l.EventID,
		BorrowerName:   l.BorrowerName,
		BorrowerCPF:    l.BorrowerCPF,
		Company:        l.Company,
		Phone:          l.Phone,
		Radios:         l.Radios,
		ReturnedRadios: l.ReturnedRadios,
		Status:         string(l.Status),
		PickedUpAt:     l.PickedUpAt,
		ReturnedAt:     l.ReturnedAt,
		Exchanges:      l.Exchanges,
		Returns:        l.Returns,
		Notes:          l.Notes,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func radioDaoToDomain(l dao.RadioLoan) domain.RadioLoan {
	return domain.RadioLoan{
		ID:             l.ID,
		EventID:        l.EventID,
		BorrowerName:   l.BorrowerName,
		BorrowerCPF:    l.BorrowerCPF,
		Company:        l.Company,
		Phone:          l.Phone,
		Radios:         l.Radios,
		ReturnedRadios: l.ReturnedRadios,
		Status:         domain.LoanStatus(l.Status),
		PickedUpAt:     l.PickedUpAt,
		ReturnedAt:     l.ReturnedAt,
		Exchanges:      l.Exchanges,
		Returns:        l.Returns,
		Notes:          l.Notes,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
