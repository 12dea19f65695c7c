package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type UserStore interface {
	GetByName(ctx context.Context, name string, isTest bool) (*models.User, error)
	Create(ctx context.Context, user *models.User, isTest bool) (store.Outcome, error)
	UpdatePassword(ctx context.Context, name, passwordHash string, isTest bool) (store.Outcome, error)
	Delete(ctx context.Context, name string, isTest bool) (store.Outcome, error)
}

type PortfolioStore interface {
	Get(ctx context.Context, name string, isTest bool) (*models.Portfolio, error)
	Put(ctx context.Context, portfolio *models.Portfolio, isTest bool) (store.Outcome, error)
	Delete(ctx context.Context, name string, isTest bool) (store.Outcome, error)
}

// AccountOpener creates the ledger account of a new user.
type AccountOpener interface {
	CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (store.Outcome, error)
}

// UserCommandService registers users. A new user starts with a 0.00 ledger
// account and an empty portfolio; registering a taken name writes nothing.
type UserCommandService struct {
	users      UserStore
	accounts   AccountOpener
	portfolios PortfolioStore
	logger     *zap.Logger
}

func NewUserCommandService(users UserStore, accounts AccountOpener, portfolios PortfolioStore, logger *zap.Logger) *UserCommandService {
	return &UserCommandService{users: users, accounts: accounts, portfolios: portfolios, logger: logger}
}

func (s *UserCommandService) CreateUser(ctx context.Context, cmd cqrs.CreateUserCommand) (store.Outcome, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return store.OutcomeNotApplied, err
	}
	switch _, err := s.users.GetByName(ctx, name, cmd.IsTest); {
	case err == nil:
		return store.OutcomeNotApplied, appError("create user", ErrUserExists)
	case !errors.Is(err, store.ErrNotFound):
		return store.OutcomeNotApplied, appError("create user", err)
	}
	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return store.OutcomeNotApplied, appError("create user", fmt.Errorf("failed to hash password: %w", err))
	}

	outcome, err := s.users.Create(ctx, &models.User{Name: name, PasswordHash: hash}, cmd.IsTest)
	if err != nil {
		return outcome, appError("create user", err)
	}
	if _, err := s.accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{
		Name:    name,
		Balance: decimal.Zero,
		IsTest:  cmd.IsTest,
	}); err != nil {
		return store.OutcomeNotApplied, appError("create user", err)
	}
	if _, err := s.portfolios.Put(ctx, &models.Portfolio{Name: name}, cmd.IsTest); err != nil {
		return store.OutcomeNotApplied, appError("create user", err)
	}

	s.logger.Info("user registered", zap.String("user", name), zap.Bool("is_test", cmd.IsTest))
	return outcome, nil
}

func (s *UserCommandService) UpdateUser(ctx context.Context, cmd cqrs.UpdateUserCommand) (store.Outcome, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return store.OutcomeNotApplied, err
	}
	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return store.OutcomeNotApplied, appError("update user", fmt.Errorf("failed to hash password: %w", err))
	}
	outcome, err := s.users.UpdatePassword(ctx, name, hash, cmd.IsTest)
	if err != nil {
		return outcome, appError("update user", err)
	}
	if !outcome.Applied() {
		return outcome, appError("update user", store.ErrNotFound)
	}
	return outcome, nil
}

// DeleteUser removes the credentials and the portfolio. The ledger account is
// deleted through DeleteAccount so its history is projected.
func (s *UserCommandService) DeleteUser(ctx context.Context, cmd cqrs.DeleteUserCommand) (store.Outcome, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return store.OutcomeNotApplied, err
	}
	outcome, err := s.users.Delete(ctx, name, cmd.IsTest)
	if err != nil {
		return outcome, appError("delete user", err)
	}
	if _, err := s.portfolios.Delete(ctx, name, cmd.IsTest); err != nil {
		return store.OutcomeNotApplied, appError("delete user", err)
	}
	return outcome, nil
}
