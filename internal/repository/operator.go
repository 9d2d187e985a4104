package repository

import (
	"context"
	"fmt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var (
	ErrOperatorNotFound  = dao.ErrOperatorNotFound
	ErrOperatorCPFExists = dao.ErrOperatorCPFExists
)

type OperatorDAO interface {
	Insert(ctx context.Context, operator dao.Operator) (dao.Operator, error)
	Update(ctx context.Context, operator dao.Operator) (dao.Operator, error)
	FindByID(ctx context.Context, id uint) (dao.Operator, error)
	FindByCPF(ctx context.Context, cpf string) (dao.Operator, error)
	Find(ctx context.Context, search string) ([]dao.Operator, error)
	Delete(ctx context.Context, id uint) error
}

type OperatorRepository struct {
	dao OperatorDAO
}

func NewOperatorRepository(dao OperatorDAO) *OperatorRepository {
	return &OperatorRepository{
		dao: dao,
	}
}

func (r *OperatorRepository) Create(ctx context.Context, operator domain.Operator) (domain.Operator, error) {
	created, err := r.dao.Insert(ctx, operatorDomainToDao(operator))
	if err != nil {
		return domain.Operator{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return operatorDaoToDomain(created), nil
}

func (r *OperatorRepository) Update(ctx context.Context, operator domain.Operator) (domain.Operator, error) {
	updated, err := r.dao.Update(ctx, operatorDomainToDao(operator))
	if err != nil {
		return domain.Operator{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return operatorDaoToDomain(updated), nil
}

func (r *OperatorRepository) FindByID(ctx context.Context, id uint) (domain.Operator, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return operatorDaoToDomain(found), nil
}

func (r *OperatorRepository) FindByCPF(ctx context.Context, cpf string) (domain.Operator, error) {
	found, err := r.dao.FindByCPF(ctx, cpf)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("r.dao.FindByCPF -> %w", err)
	}

	return operatorDaoToDomain(found), nil
}

func (r *OperatorRepository) Find(ctx context.Context, search string) ([]domain.Operator, error) {
	found, err := r.dao.Find(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Find -> %w", err)
	}

	operators := make([]domain.Operator, len(found))
	for i, o := range found {
		operators[i] = operatorDaoToDomain(o)
	}
	return operators, nil
}

func (r *OperatorRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func operatorDomainToDao(o domain.Operator) dao.Operator {
	return dao.Operator{
		ID:        o.ID,
		Name:      o.Name,
		CPF:       o.CPF,
		Password:  o.Password,
		EventIDs:  o.EventIDs,
		Actions:   o.Actions,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func operatorDaoToDomain(o dao.Operator) domain.Operator {
	return domain.Operator{
		ID:        o.ID,
		Name:      o.Name,
		CPF:       o.CPF,
		Password:  o.Password,
		EventIDs:  o.EventIDs,
		Actions:   o.Actions,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
