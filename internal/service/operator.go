package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/pkg/cpf"
	"github.com/credenciamento/event-api/internal/realtime"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrOperatorNotFound   = repository.ErrOperatorNotFound
	ErrOperatorCPFExists  = repository.ErrOperatorCPFExists
	ErrOperatorNotAllowed = errors.New("operator is not assigned to this event")
)

// OperatorsTable names the operators rows on the changefeed.
const OperatorsTable = "operators"

type OperatorRepository interface {
	Create(ctx context.Context, operator domain.Operator) (domain.Operator, error)
	Update(ctx context.Context, operator domain.Operator) (domain.Operator, error)
	FindByID(ctx context.Context, id uint) (domain.Operator, error)
	Find(ctx context.Context, search string) ([]domain.Operator, error)
	Delete(ctx context.Context, id uint) error
}

type OperatorService struct {
	repo    OperatorRepository
	broker  realtime.Broker
	metrics *metrics.Registry
	audit   Auditor
}

func NewOperatorService(repo OperatorRepository, broker realtime.Broker, m *metrics.Registry, audit Auditor) *OperatorService {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &OperatorService{
		repo:    repo,
		broker:  broker,
		metrics: m,
		audit:   audit,
	}
}

func (s *OperatorService) CreateOperator(ctx context.Context, actor domain.Actor, op domain.Operator) (domain.Operator, error) {
	normalized, err := cpf.Parse(op.CPF)
	if err != nil {
		return domain.Operator{}, ErrInvalidCPF
	}
	op.CPF = normalized
	op.Name = strings.TrimSpace(op.Name)
	op.EventIDs = uniqueIDs(op.EventIDs)
	op.Actions = nil

	if op.Password, err = hashPassword(op.Password); err != nil {
		return domain.Operator{}, err
	}

	created, err := s.repo.Create(ctx, op)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.publish(ctx, realtime.ChangeInsert, created, nil)
	s.audit.Record(ctx, actor, nil, "operator", created.ID, "create", nil, created)
	return created, nil
}

func (s *OperatorService) GetOperator(ctx context.Context, id uint) (domain.Operator, error) {
	op, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return op, nil
}

func (s *OperatorService) ListOperators(ctx context.Context, search string) ([]domain.Operator, error) {
	ops, err := s.repo.Find(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return ops, nil
}

// UpdateOperator changes the profile of an operator. An empty password keeps
// the current one.
func (s *OperatorService) UpdateOperator(ctx context.Context, actor domain.Actor, op domain.Operator) (domain.Operator, error) {
	existing, err := s.repo.FindByID(ctx, op.ID)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	updated := existing
	updated.Name = strings.TrimSpace(op.Name)
	updated.EventIDs = uniqueIDs(op.EventIDs)
	if op.CPF != "" {
		normalized, err := cpf.Parse(op.CPF)
		if err != nil {
			return domain.Operator{}, ErrInvalidCPF
		}
		updated.CPF = normalized
	}
	if op.Password != "" {
		if updated.Password, err = hashPassword(op.Password); err != nil {
			return domain.Operator{}, err
		}
	}
	updated.UpdatedAt = now()

	return s.save(ctx, actor, existing, updated, "update")
}

// SyncOperator reconciles a copy edited offline by a field device. Scalar
// fields follow the newest UpdatedAt; the action logs are merged. A client
// clock ahead of the server counts as now, and an operator syncing its own
// record cannot change its event assignments.
func (s *OperatorService) SyncOperator(ctx context.Context, actor domain.Actor, incoming domain.Operator) (domain.Operator, error) {
	stored, err := s.repo.FindByID(ctx, incoming.ID)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if at := now(); incoming.UpdatedAt.After(at) {
		incoming.UpdatedAt = at
	}
	if actor.Type == domain.ActorOperator {
		incoming.EventIDs = stored.EventIDs
	}
	incoming.EventIDs = uniqueIDs(incoming.EventIDs)
	for i := range incoming.Actions {
		if incoming.Actions[i].ID == "" {
			incoming.Actions[i].ID = uuid.NewString()
		}
	}

	merged := domain.MergeOperator(stored, incoming)
	return s.save(ctx, actor, stored, merged, "sync")
}

// RecordAction appends an action to the operator log.
func (s *OperatorService) RecordAction(ctx context.Context, operatorID uint, action domain.OperatorAction) error {
	existing, err := s.repo.FindByID(ctx, operatorID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.At.IsZero() {
		action.At = now()
	}

	updated := existing
	updated.Actions = domain.MergeActions(existing.Actions, []domain.OperatorAction{action})
	updated.UpdatedAt = now()

	updated, err = s.repo.Update(ctx, updated)
	if err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.publish(ctx, realtime.ChangeUpdate, updated, existing)
	return nil
}

func (s *OperatorService) DeleteOperator(ctx context.Context, actor domain.Actor, id uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.publish(ctx, realtime.ChangeDelete, nil, existing)
	s.audit.Record(ctx, actor, nil, "operator", id, "delete", existing, nil)
	return nil
}

func (s *OperatorService) save(ctx context.Context, actor domain.Actor, before, op domain.Operator, action string) (domain.Operator, error) {
	saved, err := s.repo.Update(ctx, op)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.publish(ctx, realtime.ChangeUpdate, saved, before)
	s.audit.Record(ctx, actor, nil, "operator", saved.ID, action, before, saved)
	return saved, nil
}

// publish never fails the caller; subscribers resync on reconnect.
func (s *OperatorService) publish(ctx context.Context, typ realtime.ChangeType, record, old any) {
	if s.broker == nil {
		return
	}

	change, err := realtime.NewChange(OperatorsTable, typ, record, old)
	if err != nil {
		zap.L().Error("realtime.NewChange", zap.Error(err))
		return
	}

	if err = s.broker.Publish(ctx, change); err != nil {
		zap.L().Warn("s.broker.Publish", zap.String("type", string(typ)), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RealtimePublished.Inc()
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
