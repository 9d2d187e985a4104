package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/cpf"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrWrongPassword   = errors.New("wrong password")
	ErrInvalidUserRole = errors.New("invalid user role")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type AuthOperatorRepository interface {
	FindByCPF(ctx context.Context, cpf string) (domain.Operator, error)
}

type AuthService struct {
	repo      AuthUserRepository
	operators AuthOperatorRepository
}

func NewAuthService(repo AuthUserRepository, operators AuthOperatorRepository) *AuthService {
	return &AuthService{
		repo:      repo,
		operators: operators,
	}
}

// Signup creates a dashboard account. The very first account is always an
// admin and needs no requester; afterwards only admins may create accounts.
func (s *AuthService) Signup(ctx context.Context, user domain.User, requester *domain.User) (domain.User, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Count -> %w", err)
	}

	if count == 0 {
		user.Role = domain.RoleAdmin
	} else {
		if requester == nil || requester.Role != domain.RoleAdmin {
			return domain.User{}, ErrPermissionDenied
		}
		if user.Role != domain.RoleAdmin && user.Role != domain.RoleCoordinator {
			return domain.User{}, ErrInvalidUserRole
		}
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Password, err = hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

// LoginOperator authenticates a field operator by CPF.
func (s *AuthService) LoginOperator(ctx context.Context, document, password string) (domain.Operator, error) {
	operator, err := s.operators.FindByCPF(ctx, cpf.Normalize(document))
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return domain.Operator{}, ErrOperatorNotFound
		}

		return domain.Operator{}, fmt.Errorf("s.operators.FindByCPF -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(password)); err != nil {
		return domain.Operator{}, ErrWrongPassword
	}

	return operator, nil
}

// Helper function for password hashing
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
